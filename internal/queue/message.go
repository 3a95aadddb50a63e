package queue

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// CurrentVersion is the payload version this build writes and understands.
const CurrentVersion = 1

var (
	// ErrMissingImportID is returned when a decoded message carries no import id.
	ErrMissingImportID = errors.New("queue message missing importId")
	// ErrUnsupportedVersion is returned for payloads written by a newer producer.
	ErrUnsupportedVersion = errors.New("unsupported queue message version")
)

// Message asks the worker to process one queued import.
type Message struct {
	ImportID   string    `json:"importId"`
	RequestID  string    `json:"requestId,omitempty"`
	EnqueuedAt time.Time `json:"enqueuedAt"`
	Version    int       `json:"version"`
}

// NewMessage builds a current-version message for importID.
func NewMessage(importID, requestID string, at time.Time) Message {
	return Message{
		ImportID:   importID,
		RequestID:  requestID,
		EnqueuedAt: at.UTC().Truncate(time.Second),
		Version:    CurrentVersion,
	}
}

// Wait is how long the message sat in the queue. Unknown enqueue times yield 0.
func (m Message) Wait(now time.Time) time.Duration {
	if m.EnqueuedAt.IsZero() || now.Before(m.EnqueuedAt) {
		return 0
	}
	return now.Sub(m.EnqueuedAt)
}

// EncodeMessage returns the JSON representation of a message.
func EncodeMessage(msg Message) ([]byte, error) {
	return json.Marshal(msg)
}

// DecodeMessage parses a payload. A missing version is read as version 1.
// The decoded message is returned alongside ErrMissingImportID so callers can
// still log its request id.
func DecodeMessage(payload []byte) (Message, error) {
	var msg Message
	if err := json.Unmarshal(payload, &msg); err != nil {
		return Message{}, err
	}
	msg.ImportID = strings.TrimSpace(msg.ImportID)
	if msg.Version == 0 {
		msg.Version = 1
	}
	if msg.Version < 0 || msg.Version > CurrentVersion {
		return msg, fmt.Errorf("%w: %d", ErrUnsupportedVersion, msg.Version)
	}
	if msg.ImportID == "" {
		return msg, ErrMissingImportID
	}
	return msg, nil
}
