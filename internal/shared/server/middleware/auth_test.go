package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"resume-importer/internal/shared/auth"
)

func TestAuthAllowsOptionsWithoutIdentity(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(Auth("dev"))
	router.OPTIONS("/api/v1/imports", func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/imports", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", resp.Code)
	}
}

func TestAuthRejectsMissingIdentity(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(Auth("dev"))
	router.GET("/api/v1/resume", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/resume", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.Code)
	}
}

func TestAuthGuestHeaderAndBearerToken(t *testing.T) {
	gin.SetMode(gin.TestMode)
	t.Setenv("ENV", "dev")
	t.Setenv("JWT_SECRET", "middleware-secret")

	router := gin.New()
	router.Use(Auth("dev"))
	router.GET("/whoami", func(c *gin.Context) {
		isGuest, _ := c.Get("isGuest")
		c.JSON(http.StatusOK, gin.H{
			"userId":  UserIDFromContext(c),
			"isGuest": isGuest,
			"email":   UserEmailFromContext(c),
			"name":    UserNameFromContext(c),
		})
	})

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("X-Guest-Id", "abc")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK || !strings.Contains(resp.Body.String(), `"userId":"guest:abc"`) {
		t.Fatalf("unexpected guest response %d %s", resp.Code, resp.Body.String())
	}

	token, err := auth.SignJWT(auth.Claims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: "google:42"},
		Email:            "jane@example.com",
		Name:             "Jane Doe",
	})
	if err != nil {
		t.Fatalf("SignJWT: %v", err)
	}
	req = httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	body := resp.Body.String()
	if resp.Code != http.StatusOK || !strings.Contains(body, `"userId":"google:42"`) || !strings.Contains(body, `"isGuest":false`) {
		t.Fatalf("unexpected bearer response %d %s", resp.Code, body)
	}
	if !strings.Contains(body, `"email":"jane@example.com"`) || !strings.Contains(body, `"name":"Jane Doe"`) {
		t.Fatalf("expected token claims in context, got %s", body)
	}

	req = httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for bad token, got %d", resp.Code)
	}
}

func TestAuthRequiresUUIDGuestsInProduction(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(Auth("production"))
	router.GET("/whoami", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"userId": UserIDFromContext(c), "guest": IsGuest(c)})
	})

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("X-Guest-Id", "abc")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for non-uuid guest, got %d", resp.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("X-Guest-Id", "11111111-1111-1111-1111-111111111111")
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK || !strings.Contains(resp.Body.String(), `"guest":true`) {
		t.Fatalf("unexpected response %d %s", resp.Code, resp.Body.String())
	}
}

func TestAuthSkipsGoogleRoutes(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(Auth("dev"))
	router.GET("/api/v1/auth/google/start", func(c *gin.Context) {
		c.Status(http.StatusFound)
	})

	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/v1/auth/google/start", nil))
	if resp.Code != http.StatusFound {
		t.Fatalf("expected passthrough, got %d", resp.Code)
	}
}
