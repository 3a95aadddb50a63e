package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"resume-importer/internal/shared/auth"
	"resume-importer/internal/shared/server/respond"
)

const (
	userIDKey      = "userId"
	userEmailKey   = "userEmail"
	userNameKey    = "userName"
	userPictureKey = "userPicture"
	isGuestKey     = "isGuest"

	// GuestPrefix marks user ids derived from the X-Guest-Id header.
	GuestPrefix = "guest:"

	maxGuestIDLen = 64
)

// paths reachable without any identity
var publicPrefixes = []string{"/api/v1/auth/google/"}

var (
	errBadToken = errors.New("missing or invalid token")
	errNoGuest  = errors.New("missing identity")
	errBadGuest = errors.New("invalid guest id")
)

type identity struct {
	userID string
	guest  bool
	claims *auth.Claims
}

// Auth resolves the caller from a bearer JWT or the X-Guest-Id header and stores it in context.
// In production guest ids must be UUIDs.
func Auth(env string) gin.HandlerFunc {
	strictGuests := env == "production"
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodOptions {
			c.Status(http.StatusNoContent)
			return
		}
		for _, prefix := range publicPrefixes {
			if strings.HasPrefix(c.Request.URL.Path, prefix) {
				c.Next()
				return
			}
		}

		id, err := resolveIdentity(c, strictGuests)
		if err != nil {
			respond.Error(c, http.StatusUnauthorized, "unauthorized", err.Error(), nil)
			return
		}

		c.Set(userIDKey, id.userID)
		c.Set(isGuestKey, id.guest)
		if id.claims != nil {
			setIfPresent(c, userEmailKey, id.claims.Email)
			setIfPresent(c, userNameKey, id.claims.Name)
			setIfPresent(c, userPictureKey, id.claims.Picture)
		}
		c.Next()
	}
}

func resolveIdentity(c *gin.Context, strictGuests bool) (identity, error) {
	if header := strings.TrimSpace(c.GetHeader("Authorization")); header != "" {
		raw, ok := strings.CutPrefix(header, "Bearer ")
		raw = strings.TrimSpace(raw)
		if !ok || raw == "" {
			return identity{}, errBadToken
		}
		claims, err := auth.VerifyJWT(raw)
		if err != nil {
			return identity{}, errBadToken
		}
		return identity{userID: claims.Subject, claims: &claims}, nil
	}

	guestID := strings.TrimSpace(c.GetHeader("X-Guest-Id"))
	switch {
	case guestID == "":
		return identity{}, errNoGuest
	case len(guestID) > maxGuestIDLen:
		return identity{}, errBadGuest
	case strictGuests:
		if _, err := uuid.Parse(guestID); err != nil {
			return identity{}, errBadGuest
		}
	}
	return identity{userID: GuestPrefix + guestID, guest: true}, nil
}

func setIfPresent(c *gin.Context, key, value string) {
	if value != "" {
		c.Set(key, value)
	}
}

func stringFromContext(c *gin.Context, key string) string {
	if c == nil {
		return ""
	}
	return c.GetString(key)
}

// UserIDFromContext fetches the user ID set by the auth middleware.
func UserIDFromContext(c *gin.Context) string { return stringFromContext(c, userIDKey) }

// UserEmailFromContext fetches the user email set by the auth middleware.
func UserEmailFromContext(c *gin.Context) string { return stringFromContext(c, userEmailKey) }

// UserNameFromContext fetches the user name set by the auth middleware.
func UserNameFromContext(c *gin.Context) string { return stringFromContext(c, userNameKey) }

// UserPictureFromContext fetches the user picture set by the auth middleware.
func UserPictureFromContext(c *gin.Context) string { return stringFromContext(c, userPictureKey) }

// IsGuest reports whether the caller authenticated with a guest header.
func IsGuest(c *gin.Context) bool {
	if c == nil {
		return false
	}
	return c.GetBool(isGuestKey)
}
