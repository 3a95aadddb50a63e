package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func corsRouter(origins ...string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(CORS(origins))
	r.POST("/api/v1/imports", func(c *gin.Context) { c.JSON(http.StatusCreated, gin.H{"id": "imp-1"}) })
	return r
}

func TestCORS(t *testing.T) {
	cases := []struct {
		name       string
		origins    []string
		method     string
		origin     string
		wantStatus int
		wantAllow  string
	}{
		{"preflight allowed", []string{"http://localhost:5173/"}, http.MethodOptions, "http://localhost:5173", http.StatusNoContent, "http://localhost:5173"},
		{"post allowed", []string{"http://localhost:5173"}, http.MethodPost, "http://localhost:5173", http.StatusCreated, "http://localhost:5173"},
		{"unknown origin", []string{"http://localhost:5173"}, http.MethodPost, "https://evil.example", http.StatusCreated, ""},
		{"wildcard", []string{"*"}, http.MethodOptions, "https://app.example", http.StatusNoContent, "https://app.example"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(tc.method, "/api/v1/imports", nil)
			req.Header.Set("Origin", tc.origin)
			w := httptest.NewRecorder()
			corsRouter(tc.origins...).ServeHTTP(w, req)

			if w.Code != tc.wantStatus {
				t.Fatalf("expected %d, got %d", tc.wantStatus, w.Code)
			}
			if got := w.Header().Get("Access-Control-Allow-Origin"); got != tc.wantAllow {
				t.Fatalf("expected Allow-Origin %q, got %q", tc.wantAllow, got)
			}
			if tc.wantAllow != "" && w.Header().Get("Access-Control-Max-Age") != "600" {
				t.Fatalf("expected Max-Age header")
			}
		})
	}
}
