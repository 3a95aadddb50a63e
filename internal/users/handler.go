package users

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"resume-importer/internal/shared/server/middleware"
	"resume-importer/internal/shared/server/respond"
)

type Handler struct {
	Svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/me", h.me)
}

type meResponse struct {
	ID          string     `json:"id"`
	Email       string     `json:"email"`
	FullName    string     `json:"fullName"`
	PictureURL  string     `json:"pictureUrl"`
	LastLoginAt *time.Time `json:"lastLoginAt,omitempty"`
}

func (h *Handler) me(c *gin.Context) {
	if middleware.IsGuest(c) {
		respond.Error(c, http.StatusUnauthorized, "unauthorized", "login required", nil)
		return
	}
	user, err := h.Svc.GetByID(c.Request.Context(), middleware.UserIDFromContext(c))
	switch {
	case errors.Is(err, ErrNotFound):
		respond.NotFound(c, "user not found")
	case errors.Is(err, ErrNotConfigured):
		respond.Error(c, http.StatusServiceUnavailable, "not_configured", "user profiles are not available", nil)
	case err != nil:
		respond.Internal(c, "failed to load user")
	default:
		respond.OK(c, meResponse{
			ID:          user.ID,
			Email:       user.Email,
			FullName:    user.FullName,
			PictureURL:  user.PictureURL,
			LastLoginAt: user.LastLoginAt,
		})
	}
}
