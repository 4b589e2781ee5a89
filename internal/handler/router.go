package handler

import (
	"io/fs"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/brightwash/catalog-server/internal/config"
	"github.com/brightwash/catalog-server/internal/middleware"
	"github.com/brightwash/catalog-server/internal/service"
)

type RouterConfig struct {
	AuthService    *service.AuthService
	PackageService *service.PackageService
	Verifier       middleware.TokenVerifier
	LoginLimiter   service.AttemptLimiter
	Static         fs.FS
	DB             Pinger
	AllowedOrigins []string
	IsProduction   bool
}

// NewRouter assembles the HTTP surface: the JSON API under /api, the health
// probe and the embedded pages. CORS wraps everything so preflight requests
// never reach a route.
func NewRouter(cfg RouterConfig) http.Handler {
	authMiddleware := middleware.NewAuthMiddleware(cfg.Verifier)
	bodyLimitMiddleware := middleware.NewBodyLimitMiddleware(config.MaxRequestBodySize)
	securityHeadersMiddleware := middleware.NewSecurityHeadersMiddleware(cfg.IsProduction)

	var loginLimiter func(http.Handler) http.Handler
	if cfg.LoginLimiter != nil {
		loginLimiter = middleware.NewLoginRateLimiter(cfg.LoginLimiter).Handler
	}

	authHandler := NewAuthHandler(cfg.AuthService, loginLimiter)
	packageHandler := NewPackageHandler(cfg.PackageService, authMiddleware.Handler)

	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestLogger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(config.ServerRequestTimeout))
	r.Use(bodyLimitMiddleware.Handler)

	r.MethodNotAllowed(methodNotAllowed)

	r.Method(http.MethodGet, "/health", NewHealthHandler(cfg.DB))

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.NoStore)
		r.Mount("/auth", authHandler.Routes())
		r.Mount("/packages", packageHandler.Routes())
		r.NotFound(notFound)
	})

	if cfg.Static != nil {
		r.Group(func(r chi.Router) {
			r.Use(securityHeadersMiddleware.Handler)
			r.Handle("/*", NewStaticHandler(cfg.Static))
		})
	}

	return middleware.NewCORS(cfg.AllowedOrigins).Handler(r)
}
