// Package telemetry writes structured JSON log lines, one object per line.
package telemetry

import (
	"encoding/json"
	"io"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// Level orders log severities.
type Level int32

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "debug"
	case LevelWarn:
		return "warn"
	case LevelError:
		return "error"
	default:
		return "info"
	}
}

// ParseLevel maps debug, info, warn(ing) and error. Anything else is info.
func ParseLevel(raw string) Level {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "debug":
		return LevelDebug
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}

var (
	outMu    sync.Mutex
	out      io.Writer = os.Stdout
	minLevel atomic.Int32
	now      = time.Now
)

func init() {
	minLevel.Store(int32(LevelInfo))
}

// SetOutput redirects log lines to w and returns the previous writer.
func SetOutput(w io.Writer) io.Writer {
	outMu.Lock()
	defer outMu.Unlock()
	prev := out
	if w == nil {
		w = os.Stdout
	}
	out = w
	return prev
}

// SetLevel drops lines below l and returns the previous level.
func SetLevel(l Level) Level {
	return Level(minLevel.Swap(int32(l)))
}

// Debug writes a debug-level line.
func Debug(msg string, fields map[string]any) { write(LevelDebug, msg, fields) }

// Info writes an info-level line.
func Info(msg string, fields map[string]any) { write(LevelInfo, msg, fields) }

// Warn writes a warn-level line.
func Warn(msg string, fields map[string]any) { write(LevelWarn, msg, fields) }

// Error writes an error-level line.
func Error(msg string, fields map[string]any) { write(LevelError, msg, fields) }

// ts, level and msg always win over caller fields of the same name.
func write(level Level, msg string, fields map[string]any) {
	if level < Level(minLevel.Load()) {
		return
	}
	entry := make(map[string]any, len(fields)+3)
	for k, v := range fields {
		switch val := v.(type) {
		case error:
			if val != nil {
				v = val.Error()
			}
		case time.Duration:
			v = val.String()
		}
		entry[k] = v
	}
	entry["ts"] = now().UTC().Format(time.RFC3339Nano)
	entry["level"] = level.String()
	entry["msg"] = msg

	line, err := json.Marshal(entry)
	if err != nil {
		line, _ = json.Marshal(map[string]any{
			"ts":    entry["ts"],
			"level": LevelError.String(),
			"msg":   "telemetry.marshal_failed",
			"event": msg,
			"error": err.Error(),
		})
	}
	line = append(line, '\n')

	outMu.Lock()
	defer outMu.Unlock()
	_, _ = out.Write(line)
}
