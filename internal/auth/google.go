package auth

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	sharedauth "resume-importer/internal/shared/auth"
	"resume-importer/internal/shared/metrics"
	"resume-importer/internal/shared/server/respond"
	"resume-importer/internal/shared/telemetry"
	"resume-importer/internal/users"
)

// Login outcomes reported to metrics.
const (
	loginSucceeded = "succeeded"
	loginRejected  = "rejected"
	loginFailed    = "failed"
)

// UserRecorder persists the identity of a user who completed login.
type UserRecorder interface {
	UpsertFromAuth(ctx context.Context, user users.User) error
}

// GoogleService signs users in with Google and hands the UI a session token.
type GoogleService struct {
	oauthConfig *oauth2.Config
	uiRedirect  string
	states      *stateStore
	users       UserRecorder
	userInfoURL string
}

// NewGoogleService builds a GoogleService. userSvc may be nil.
func NewGoogleService(clientID, clientSecret, redirectURL, uiRedirect string, userSvc UserRecorder) *GoogleService {
	return &GoogleService{
		oauthConfig: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURL,
			Scopes:       []string{"openid", "email", "profile"},
			Endpoint:     google.Endpoint,
		},
		uiRedirect:  uiRedirect,
		states:      newStateStore(5 * time.Minute),
		users:       userSvc,
		userInfoURL: defaultUserInfoURL,
	}
}

func (s *GoogleService) configured() bool {
	cfg := s.oauthConfig
	return cfg.ClientID != "" && cfg.ClientSecret != "" && cfg.RedirectURL != "" && s.uiRedirect != ""
}

// RegisterRoutes attaches Google auth routes.
func (s *GoogleService) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/auth/google/start", s.start)
	rg.GET("/auth/google/callback", s.callback)
}

// start redirects to Google. An optional next query parameter is an app path
// the UI returns to after sign-in.
func (s *GoogleService) start(c *gin.Context) {
	if !s.configured() {
		respond.Error(c, http.StatusServiceUnavailable, "auth_not_configured", "Google auth not configured", nil)
		return
	}

	state := uuid.NewString()
	if !s.states.put(state, safeNext(c.Query("next"))) {
		c.Header("Retry-After", "60")
		respond.Error(c, http.StatusTooManyRequests, "rate_limited", "Too many pending sign-ins", nil)
		return
	}
	c.Redirect(http.StatusFound, s.oauthConfig.AuthCodeURL(state, oauth2.SetAuthURLParam("prompt", "select_account")))
}

func (s *GoogleService) callback(c *gin.Context) {
	if reason := c.Query("error"); reason != "" {
		metrics.IncLogin(loginRejected)
		s.redirectWithError(c, reason)
		return
	}

	state, code := c.Query("state"), c.Query("code")
	if state == "" || code == "" {
		metrics.IncLogin(loginRejected)
		respond.Validation(c, "missing state or code")
		return
	}
	login, ok := s.states.consume(state)
	if !ok {
		metrics.IncLogin(loginRejected)
		respond.Validation(c, "invalid or expired state")
		return
	}

	ctx := c.Request.Context()
	token, err := s.oauthConfig.Exchange(ctx, code)
	if err != nil {
		metrics.IncLogin(loginRejected)
		telemetry.Warn("auth.google.exchange_failed", map[string]any{"error": err.Error()})
		respond.Validation(c, "failed to exchange code")
		return
	}

	p, err := s.fetchProfile(ctx, token)
	if err != nil || p.subject() == "" {
		metrics.IncLogin(loginFailed)
		fields := map[string]any{}
		if err != nil {
			fields["error"] = err.Error()
		}
		telemetry.Error("auth.google.profile_failed", fields)
		respond.Error(c, http.StatusBadGateway, "auth_failed", "failed to fetch user profile", nil)
		return
	}
	if p.Verified != nil && !*p.Verified {
		metrics.IncLogin(loginRejected)
		respond.Error(c, http.StatusForbidden, "email_unverified", "Google account email is not verified", nil)
		return
	}

	userID := "google:" + p.subject()
	s.recordUser(ctx, userID, p)

	session, err := sharedauth.SignJWT(sharedauth.Claims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: userID},
		Email:            p.Email,
		Name:             p.Name,
		Picture:          p.Picture,
	})
	if err != nil {
		metrics.IncLogin(loginFailed)
		respond.Internal(c, "failed to issue token")
		return
	}

	params := url.Values{"token": {session}}
	if login.next != "" {
		params.Set("next", login.next)
	}
	target, err := withParams(s.uiRedirect, params)
	if err != nil {
		metrics.IncLogin(loginFailed)
		respond.Internal(c, "failed to redirect")
		return
	}

	metrics.IncLogin(loginSucceeded)
	telemetry.Info("auth.google.signed_in", map[string]any{"user_id": userID})
	c.Redirect(http.StatusFound, target)
}

// redirectWithError sends a user who cancelled at Google back to the UI.
func (s *GoogleService) redirectWithError(c *gin.Context, reason string) {
	if len(reason) > 64 {
		reason = reason[:64]
	}
	target, err := withParams(s.uiRedirect, url.Values{"authError": {reason}})
	if err != nil {
		respond.Validation(c, "sign-in was not completed")
		return
	}
	c.Redirect(http.StatusFound, target)
}

// recordUser upserts the profile. A failure does not block login.
func (s *GoogleService) recordUser(ctx context.Context, userID string, p profile) {
	if s.users == nil || p.Email == "" {
		return
	}
	err := s.users.UpsertFromAuth(ctx, users.User{
		ID:         userID,
		Email:      p.Email,
		FullName:   p.Name,
		GivenName:  p.GivenName,
		FamilyName: p.FamilyName,
		PictureURL: p.Picture,
	})
	if err != nil {
		telemetry.Warn("auth.user_upsert_failed", map[string]any{
			"user_id": userID,
			"error":   err.Error(),
		})
	}
}

func withParams(rawURL string, params url.Values) (string, error) {
	if rawURL == "" {
		return "", errors.New("redirect url required")
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", err
	}
	q := u.Query()
	for k, v := range params {
		q[k] = v
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}
