package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"resume-importer/internal/account"
	googleauth "resume-importer/internal/auth"
	"resume-importer/internal/imports"
	"resume-importer/internal/resumes"
	"resume-importer/internal/shared/config"
	"resume-importer/internal/shared/metrics"
	"resume-importer/internal/shared/server/middleware"
	"resume-importer/internal/shared/server/respond"
	"resume-importer/internal/uploads"
	"resume-importer/internal/users"
)

const (
	rateGroupDefault = "DEFAULT"
	rateGroupImport  = "IMPORT"
)

// RouterDeps carries the handlers mounted under /api/v1. Nil handlers are skipped.
type RouterDeps struct {
	Config         config.Config
	ImportsHandler *imports.Handler
	ResumesHandler *resumes.Handler
	UploadsHandler *uploads.Handler
	AccountHandler *account.Handler
	UserHandler    *users.Handler
	GoogleAuth     *googleauth.GoogleService
	RateLimiter    *middleware.RateLimiter
}

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	if deps.Config.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(deps.Config.CORSAllowOrigin),
		metrics.Middleware(),
	)

	r.GET("/metrics", metrics.Handler())
	r.GET("/api/v1/health", func(c *gin.Context) {
		respond.OK(c, gin.H{"ok": true})
	})

	api := r.Group("/api/v1",
		middleware.Auth(deps.Config.Env),
		middleware.RateLimit(middleware.RateLimitConfig{
			DefaultGroup: rateGroupDefault,
			GroupFor:     rateGroupFor,
			Limiter:      deps.RateLimiter,
			Rules: map[string]middleware.RateLimitRule{
				rateGroupDefault: {Rate: 10, Burst: 30},
				rateGroupImport:  {Rate: 0.5, Burst: 5},
			},
		}),
	)

	if deps.GoogleAuth != nil {
		deps.GoogleAuth.RegisterRoutes(api)
	}
	if deps.UserHandler != nil {
		deps.UserHandler.RegisterRoutes(api)
	}
	if deps.AccountHandler != nil {
		deps.AccountHandler.RegisterRoutes(api)
	}
	if deps.UploadsHandler != nil {
		deps.UploadsHandler.RegisterRoutes(api)
	}
	if deps.ImportsHandler != nil {
		deps.ImportsHandler.RegisterRoutes(api)
	}
	if deps.ResumesHandler != nil {
		deps.ResumesHandler.RegisterRoutes(api)
	}

	return r
}

// rateGroupFor puts the CPU-heavy import routes in their own bucket.
func rateGroupFor(c *gin.Context) string {
	if c.Request.Method != http.MethodPost {
		return rateGroupDefault
	}
	switch strings.TrimSuffix(c.FullPath(), "/") {
	case "/api/v1/imports", "/api/v1/imports/from-s3", "/api/v1/parse":
		return rateGroupImport
	}
	return rateGroupDefault
}

// Addr normalizes the listen address.
func Addr(port string) string {
	if port == "" {
		return ":8080"
	}
	if port[0] == ':' {
		return port
	}
	return ":" + port
}
