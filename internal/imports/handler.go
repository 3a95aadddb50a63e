package imports

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"resume-importer/internal/extract"
	"resume-importer/internal/shared/server/middleware"
	"resume-importer/internal/shared/server/respond"
)

// multipart framing allowance on top of the file ceiling
const formOverheadBytes = 1 << 20

// Handler wires HTTP handlers to the service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches import routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/imports", h.create)
	rg.POST("/imports/from-s3", h.createFromS3)
	rg.GET("/imports", h.list)
	rg.GET("/imports/:id", h.get)
	rg.GET("/imports/:id/ats-score", h.score)
	rg.POST("/parse", h.parse)
}

func (h *Handler) create(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, extract.MaxFileBytes+formOverheadBytes)

	form, err := readUploadForm(c.Request)
	if err != nil {
		if errors.Is(err, errNoFile) {
			respond.Validation(c, err.Error())
			return
		}
		h.writeImportError(c, err, "")
		return
	}

	up := form.upload(userID)
	ctx := WithRequestID(c.Request.Context(), middleware.RequestIDFromContext(c))

	if form.Async {
		imp, err := h.Svc.Enqueue(ctx, up)
		if imp.ID != "" {
			c.Set("importId", imp.ID)
		}
		if err != nil {
			h.writeImportError(c, err, imp.ID)
			return
		}
		c.Set("statusTransition", "received->queued")
		respond.Accepted(c, toResponse(imp))
		return
	}

	imp, err := h.Svc.Import(ctx, up)
	if imp.ID != "" {
		c.Set("importId", imp.ID)
	}
	if err != nil {
		h.writeImportError(c, err, imp.ID)
		return
	}
	c.Set("statusTransition", "processing->completed")
	respond.Created(c, toResponse(imp))
}

type createFromS3Request struct {
	S3Key       string `json:"s3Key"`
	FileName    string `json:"fileName"`
	ContentType string `json:"contentType"`
	SizeBytes   int64  `json:"sizeBytes"`
}

func (h *Handler) createFromS3(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	var req createFromS3Request
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Validation(c, "invalid request body")
		return
	}
	if strings.TrimSpace(req.S3Key) == "" {
		respond.Validation(c, "s3Key is required")
		return
	}
	if strings.TrimSpace(req.FileName) == "" {
		respond.Validation(c, "fileName is required")
		return
	}

	ctx := WithRequestID(c.Request.Context(), middleware.RequestIDFromContext(c))
	imp, err := h.Svc.ImportFromObject(ctx, userID, req.S3Key, req.FileName, req.ContentType, req.SizeBytes)
	if imp.ID != "" {
		c.Set("importId", imp.ID)
	}
	if err != nil {
		h.writeImportError(c, err, imp.ID)
		return
	}
	respond.Created(c, toResponse(imp))
}

func (h *Handler) get(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	importID := strings.TrimSpace(c.Param("id"))
	c.Set("importId", importID)

	imp, err := h.Svc.Get(c.Request.Context(), userID, importID)
	if err != nil {
		h.writeLookupError(c, err)
		return
	}
	respond.OK(c, toResponse(imp))
}

func (h *Handler) score(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	importID := strings.TrimSpace(c.Param("id"))
	c.Set("importId", importID)

	report, err := h.Svc.Score(c.Request.Context(), userID, importID)
	if err != nil {
		if errors.Is(err, ErrNotCompleted) {
			respond.Error(c, http.StatusConflict, "import_not_completed", "import has no result to score", nil)
			return
		}
		h.writeLookupError(c, err)
		return
	}
	respond.OK(c, report)
}

func (h *Handler) list(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	limit := defaultListLimit
	offset := 0
	if v := c.Query("limit"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			limit = parsed
		}
	}
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > 50 {
		limit = 50
	}
	if v := c.Query("offset"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			offset = parsed
		}
	}
	if offset < 0 {
		offset = 0
	}

	items, err := h.Svc.List(c.Request.Context(), userID, limit, offset)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidInput):
			respond.Validation(c, err.Error())
		default:
			respond.Internal(c, "failed to list imports")
		}
		return
	}

	resp := make([]gin.H, 0, len(items))
	for _, imp := range items {
		resp = append(resp, gin.H{
			"importId":       imp.ID,
			"status":         imp.Status,
			"fileName":       imp.FileName,
			"sizeBytes":      imp.SizeBytes,
			"extractionPath": imp.ExtractionPath,
			"createdAt":      imp.CreatedAt,
		})
	}
	respond.OK(c, gin.H{"items": resp, "limit": limit, "offset": offset})
}

type parseRequest struct {
	Text string `json:"text"`
}

func (h *Handler) parse(c *gin.Context) {
	var req parseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Validation(c, "invalid request body")
		return
	}
	respond.OK(c, gin.H{"result": h.Svc.Infer(req.Text)})
}

func (h *Handler) writeImportError(c *gin.Context, err error, importID string) {
	notification := NotificationFor(err)
	details := gin.H{
		"title":       notification.Title,
		"description": notification.Description,
		"kind":        notification.Kind,
	}
	if importID != "" {
		details["importId"] = importID
	}

	if rejected, ok := extract.IsInputRejected(err); ok {
		status := http.StatusUnsupportedMediaType
		if rejected.Reason == extract.ReasonFileTooLarge {
			status = http.StatusRequestEntityTooLarge
		}
		respond.Error(c, status, rejected.Reason, notification.Title, details)
		return
	}

	switch {
	case errors.Is(err, extract.ErrExtractionFailed):
		respond.Error(c, http.StatusUnprocessableEntity, ErrorCodeImportFailed, notification.Title, details)
	case errors.Is(err, ErrInvalidInput):
		respond.Validation(c, err.Error())
	case errors.Is(err, ErrUploadKeyNotOwned):
		respond.Error(c, http.StatusForbidden, "forbidden", "upload key does not belong to caller", nil)
	case errors.Is(err, ErrQueueNotConfigured), errors.Is(err, ErrUploadsNotConfigured), errors.Is(err, ErrStoreNotConfigured):
		respond.Error(c, http.StatusServiceUnavailable, "not_configured", err.Error(), nil)
	default:
		respond.Internal(c, "failed to import file")
	}
}

func (h *Handler) writeLookupError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		respond.NotFound(c, "import not found")
	case errors.Is(err, ErrInvalidInput):
		respond.Validation(c, err.Error())
	default:
		respond.Internal(c, "failed to fetch import")
	}
}
