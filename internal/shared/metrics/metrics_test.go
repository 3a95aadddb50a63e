package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMiddlewareCountsByRoutePattern(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Middleware())
	r.GET("/api/v1/imports/:id", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	before := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("GET", "/api/v1/imports/:id", "200"))
	for _, id := range []string{"a", "b"} {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/imports/"+id, nil)
		r.ServeHTTP(httptest.NewRecorder(), req)
	}
	after := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("GET", "/api/v1/imports/:id", "200"))
	if after-before != 2 {
		t.Fatalf("expected 2 counted requests, got %v", after-before)
	}
}

func TestHandlerExposesImportMetrics(t *testing.T) {
	gin.SetMode(gin.TestMode)
	IncImportStarted()
	IncImportCompleted("fallback")
	IncImportRejected("file_too_large")
	ObserveImportDurationMs(42)

	r := gin.New()
	r.GET("/metrics", Handler())
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	body, _ := io.ReadAll(resp.Body)
	for _, want := range []string{
		"import_started_total",
		`import_completed_total{path="fallback"}`,
		`import_rejected_total{reason="file_too_large"}`,
		"import_duration_ms_bucket",
	} {
		if !strings.Contains(string(body), want) {
			t.Fatalf("metrics output missing %q", want)
		}
	}
}
