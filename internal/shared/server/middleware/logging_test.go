package middleware

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"resume-importer/internal/shared/telemetry"
)

func lastLogLine(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	var payload map[string]any
	if err := json.Unmarshal([]byte(lines[len(lines)-1]), &payload); err != nil {
		t.Fatalf("decode log line %q: %v", lines[len(lines)-1], err)
	}
	return payload
}

func TestLoggingRecordsImportContext(t *testing.T) {
	gin.SetMode(gin.TestMode)
	var buf bytes.Buffer
	prev := telemetry.SetOutput(&buf)
	defer telemetry.SetOutput(prev)

	r := gin.New()
	r.Use(RequestID(), Auth("dev"), Logging())
	r.POST("/api/v1/imports", func(c *gin.Context) {
		c.Set("importId", "imp-1")
		c.Set("statusTransition", "processing->completed")
		c.JSON(http.StatusCreated, gin.H{"id": "imp-1"})
	})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/imports", nil)
	req.Header.Set("X-Guest-Id", "guest1")
	req.Header.Set("X-Request-Id", "req-42")
	r.ServeHTTP(httptest.NewRecorder(), req)

	line := lastLogLine(t, &buf)
	want := map[string]any{
		"msg":               "request.complete",
		"request_id":        "req-42",
		"user_id":           "guest:guest1",
		"is_guest":          true,
		"import_id":         "imp-1",
		"status_transition": "processing->completed",
		"route":             "/api/v1/imports",
		"status":            float64(http.StatusCreated),
	}
	for k, v := range want {
		if line[k] != v {
			t.Fatalf("field %s: expected %v, got %v", k, v, line[k])
		}
	}
	if _, ok := line["duration_ms"]; !ok {
		t.Fatalf("missing duration_ms")
	}
}

func TestLoggingSkipsMetricsScrapes(t *testing.T) {
	gin.SetMode(gin.TestMode)
	var buf bytes.Buffer
	prev := telemetry.SetOutput(&buf)
	defer telemetry.SetOutput(prev)

	r := gin.New()
	r.Use(Logging())
	r.GET("/metrics", func(c *gin.Context) { c.String(http.StatusOK, "") })
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if buf.Len() != 0 {
		t.Fatalf("expected no log output, got %s", buf.String())
	}
}
