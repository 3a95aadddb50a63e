package account

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"resume-importer/internal/shared/server/middleware"
	"resume-importer/internal/shared/server/respond"
)

// Handler serves account endpoints for signed-in users.
type Handler struct {
	Svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/account/claim-guest", h.claimGuest)
}

type claimRequest struct {
	GuestID string `json:"guestId"`
}

type claimResponse struct {
	UserID string `json:"userId"`
	ClaimResult
}

// claimGuest moves guest data onto the signed-in caller. The guest id comes from
// X-Guest-Id or, when the header is absent, a {"guestId"} body.
func (h *Handler) claimGuest(c *gin.Context) {
	if h.Svc == nil {
		respond.Error(c, http.StatusServiceUnavailable, "not_configured", "service unavailable", nil)
		return
	}
	authedUserID := strings.TrimSpace(middleware.UserIDFromContext(c))
	if middleware.IsGuest(c) || authedUserID == "" {
		respond.Error(c, http.StatusUnauthorized, "unauthorized", "login required", nil)
		return
	}

	guestID, issue := guestIDFromRequest(c)
	if issue != "" {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid guest id", []map[string]string{
			{"field": "X-Guest-Id", "issue": issue},
		})
		return
	}

	result, err := h.Svc.ClaimGuest(c.Request.Context(), middleware.GuestPrefix+guestID, authedUserID)
	if err != nil {
		respond.Internal(c, "failed to claim guest data")
		return
	}
	respond.OK(c, claimResponse{UserID: authedUserID, ClaimResult: result})
}

func guestIDFromRequest(c *gin.Context) (string, string) {
	guestID := strings.TrimSpace(c.GetHeader("X-Guest-Id"))
	if guestID == "" && c.Request.ContentLength > 0 {
		var req claimRequest
		if err := c.ShouldBindJSON(&req); err == nil {
			guestID = strings.TrimSpace(req.GuestID)
		}
	}
	if guestID == "" {
		return "", "required"
	}
	if _, err := uuid.Parse(guestID); err != nil {
		return "", "invalid"
	}
	return guestID, ""
}
