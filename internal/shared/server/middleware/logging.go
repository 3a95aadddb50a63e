package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"resume-importer/internal/shared/telemetry"
)

// Logging writes one "request.complete" line per request once handlers have run.
// Preflights and /metrics scrapes are not logged. Handlers may set "importId"
// and "statusTransition" on the context to enrich the line.
func Logging() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodOptions || c.Request.URL.Path == "/metrics" {
			c.Next()
			return
		}
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		fields := map[string]any{
			"request_id":        RequestIDFromContext(c),
			"method":            c.Request.Method,
			"path":              c.Request.URL.Path,
			"route":             c.FullPath(),
			"status":            status,
			"bytes":             c.Writer.Size(),
			"duration_ms":       float64(time.Since(start).Microseconds()) / 1000.0,
			"user_id":           UserIDFromContext(c),
			"is_guest":          IsGuest(c),
			"import_id":         c.GetString("importId"),
			"status_transition": c.GetString("statusTransition"),
			"client_ip":         c.ClientIP(),
		}
		if status >= http.StatusInternalServerError {
			telemetry.Error("request.complete", fields)
			return
		}
		telemetry.Info("request.complete", fields)
	}
}
