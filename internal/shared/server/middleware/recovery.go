package middleware

import (
	"fmt"
	"runtime/debug"

	"github.com/gin-gonic/gin"

	"resume-importer/internal/shared/server/respond"
	"resume-importer/internal/shared/telemetry"
)

// Recovery turns a handler panic into a logged 500 in the standard error envelope.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if rec := recover(); rec != nil {
				fields := map[string]any{
					"request_id": RequestIDFromContext(c),
					"error":      fmt.Sprint(rec),
					"stack":      string(debug.Stack()),
					"path":       c.Request.URL.Path,
					"method":     c.Request.Method,
				}
				if userID := UserIDFromContext(c); userID != "" {
					fields["user_id"] = userID
				}
				if importID := c.GetString("importId"); importID != "" {
					fields["import_id"] = importID
				}
				telemetry.Error("http.panic", fields)
				if !c.Writer.Written() {
					respond.Internal(c, "Unexpected server error")
				}
				c.Abort()
			}
		}()
		c.Next()
	}
}
