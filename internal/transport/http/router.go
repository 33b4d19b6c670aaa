package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-otp-auth/internal/config"
	"github.com/go-otp-auth/internal/domain"
	"github.com/go-otp-auth/internal/pkg/logger"
	"github.com/go-otp-auth/internal/transport/http/handler"
	appmiddleware "github.com/go-otp-auth/internal/transport/http/middleware"
	"golang.org/x/time/rate"
)

// NewRouter builds and returns the application router.
func NewRouter(cfg *config.Config, deps *Deps) http.Handler {
	var obs appmiddleware.HTTPObserver
	if deps.Metrics != nil {
		obs = deps.Metrics
	}

	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.Recoverer)
	r.Use(appmiddleware.Observe(logger.Named("http"), obs))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// Code issuance and exchange are the brute-force targets.
	sensitiveRL := appmiddleware.NewRateLimiter(rate.Limit(cfg.RateLimitRPS), cfg.RateLimitBurst,
		appmiddleware.WithTrustedProxies(cfg.TrustedProxies...))

	healthH := handler.NewHealthHandler()
	authH := handler.NewAuthHandler(deps.Auth, cfg.VerificationCodeLength)
	userH := handler.NewUserHandler(deps.Users)

	r.Get("/health", healthH.Health)
	if deps.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", deps.Metrics.Handler())
	}

	r.Route("/api/v1", func(r chi.Router) {
		// ── Public routes (no auth) ──────────────────────────────────────────
		r.With(sensitiveRL.Limit).Post("/auth/request-verification", authH.RequestVerification)
		r.With(sensitiveRL.Limit).Post("/auth/token", authH.Token)
		r.Post("/auth/token/refresh", authH.Refresh)

		// ── Access-token routes ──────────────────────────────────────────────
		r.Group(func(r chi.Router) {
			r.Use(appmiddleware.Auth(deps.Tokens))
			r.Use(appmiddleware.RequireScope(domain.ScopeProfile))

			r.Post("/auth", authH.Ping)
			r.Get("/user/me", userH.Me)
		})
	})

	return r
}
