package resumes

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"resume-importer/internal/imports"
	"resume-importer/internal/shared/server/middleware"
	"resume-importer/internal/shared/server/respond"
)

const maxSectionBytes = 1 << 20

// Handler exposes the résumé document over HTTP.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches résumé routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/resume", h.get)
	rg.PUT("/resume/:section", h.replaceSection)
	rg.POST("/resume/apply-import/:importId", h.applyImport)
	rg.DELETE("/resume", h.clear)
	rg.GET("/resume/ats-score", h.score)
}

func (h *Handler) get(c *gin.Context) {
	data, err := h.Svc.Current(c.Request.Context(), middleware.UserIDFromContext(c))
	if err != nil {
		writeError(c, err)
		return
	}
	respond.OK(c, data)
}

func (h *Handler) replaceSection(c *gin.Context) {
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxSectionBytes+1))
	if err != nil || len(body) > maxSectionBytes || !json.Valid(body) {
		respond.Validation(c, "invalid request body")
		return
	}
	data, err := h.Svc.ReplaceSection(c.Request.Context(), middleware.UserIDFromContext(c), c.Param("section"), body)
	if err != nil {
		writeError(c, err)
		return
	}
	respond.OK(c, data)
}

func (h *Handler) applyImport(c *gin.Context) {
	importID := strings.TrimSpace(c.Param("importId"))
	c.Set("importId", importID)
	data, err := h.Svc.ApplyImport(c.Request.Context(), middleware.UserIDFromContext(c), importID)
	if err != nil {
		writeError(c, err)
		return
	}
	respond.OK(c, data)
}

func (h *Handler) clear(c *gin.Context) {
	if err := h.Svc.Clear(c.Request.Context(), middleware.UserIDFromContext(c)); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) score(c *gin.Context) {
	report, err := h.Svc.Score(c.Request.Context(), middleware.UserIDFromContext(c))
	if err != nil {
		writeError(c, err)
		return
	}
	respond.OK(c, report)
}

func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrUnknownSection):
		respond.Error(c, http.StatusNotFound, "unknown_section", err.Error(), nil)
	case errors.Is(err, ErrInvalidInput):
		respond.Validation(c, err.Error())
	case errors.Is(err, imports.ErrNotFound):
		respond.NotFound(c, "import not found")
	case errors.Is(err, ErrImportNotReady):
		respond.Error(c, http.StatusConflict, "import_not_completed", err.Error(), nil)
	default:
		respond.Internal(c, "failed to update resume")
	}
}
