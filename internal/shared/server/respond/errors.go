package respond

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"resume-importer/internal/shared/telemetry"
)

// ErrorBody is the object clients see under "error".
type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// ErrorResponse is the envelope for every non-2xx JSON reply.
type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

// Error logs the failure and aborts the request with the error envelope.
// 5xx responses log at error level, everything else at warn.
func Error(c *gin.Context, status int, code, message string, details any) {
	logFailure(c, status, code, message)
	c.AbortWithStatusJSON(status, ErrorResponse{Error: ErrorBody{Code: code, Message: message, Details: details}})
}

// Validation replies 400 validation_error.
func Validation(c *gin.Context, message string) {
	Error(c, http.StatusBadRequest, "validation_error", message, nil)
}

// NotFound replies 404 not_found.
func NotFound(c *gin.Context, message string) {
	Error(c, http.StatusNotFound, "not_found", message, nil)
}

// Internal replies 500 internal_error. The message must be safe for clients.
func Internal(c *gin.Context, message string) {
	Error(c, http.StatusInternalServerError, "internal_error", message, nil)
}

func logFailure(c *gin.Context, status int, code, message string) {
	fields := map[string]any{
		"status":     status,
		"code":       code,
		"message":    message,
		"request_id": c.GetString("requestId"),
	}
	if req := c.Request; req != nil {
		fields["method"] = req.Method
		fields["path"] = req.URL.Path
	}
	if userID := c.GetString("userId"); userID != "" {
		fields["user_id"] = userID
		fields["is_guest"] = c.GetBool("isGuest")
	}
	if importID := c.GetString("importId"); importID != "" {
		fields["import_id"] = importID
	}
	log := telemetry.Warn
	if status >= http.StatusInternalServerError {
		log = telemetry.Error
	}
	log("http.error", fields)
}
