package api

import (
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/foldspace-protocol/foldspace/internal/api/middleware"
	"github.com/foldspace-protocol/foldspace/internal/config"
	"github.com/foldspace-protocol/foldspace/internal/handlers"
)

// NewRouter creates and configures the HTTP router. rdb may be nil, in
// which case rate limiting is disabled.
func NewRouter(cfg *config.Config, h *handlers.Handler, rdb *redis.Client, logger zerolog.Logger) *chi.Mux {
	r := chi.NewRouter()

	// Metrics middleware (first to capture all requests)
	r.Use(middleware.Metrics)

	// Security middleware (order matters!)
	r.Use(middleware.SecurityHeaders)
	r.Use(middleware.MaxBodySize(64 * 1024)) // 64KB max body
	r.Use(middleware.ValidateRequest)

	// Standard middleware
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.Logger(logger))
	r.Use(chimw.Recoverer)

	// Rate limiting (only when Redis is configured)
	if rdb != nil {
		limiter := middleware.NewRateLimiter(rdb, logger, middleware.RateLimiterConfig{
			Whitelist:        cfg.RateLimitWhitelist,
			AutoBlockEnabled: cfg.AutoBlockEnabled,
		})
		r.Use(limiter.Middleware)
	}

	// CORS - allow all origins (agents call from anywhere)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset", "Retry-After"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// Metrics endpoint (for Prometheus scraping)
	r.Handle("/metrics", promhttp.Handler())

	// Liveness
	r.Get("/", h.Root)
	r.Get("/health", h.Health)
	r.Get("/status", h.Status)

	// Chat adapter
	r.Post("/chat", h.Chat)

	// Pricing and payment stubs
	r.Get("/request_pricing", h.GetPricing)
	r.Post("/request_pricing", h.PostPricing)
	r.Get("/sessions/{sessionID}", h.GetSession)
	r.Post("/sessions/{sessionID}/payment", h.PostSessionPayment)
	r.Post("/facilitator/resources", h.FacilitatorResources)
	r.Get("/facilitator/supported", h.FacilitatorSupported)
	r.Post("/payments/verify", h.PaymentEcho("/payments/verify"))
	r.Post("/payments/settle", h.PaymentEcho("/payments/settle"))
	r.Post("/payments/verify/onchain", h.PaymentEcho("/payments/verify/onchain"))
	r.Post("/payments/settle/onchain", h.PaymentEcho("/payments/settle/onchain"))

	// Registration stub
	r.Post("/agentverse/register", h.AgentverseRegister)

	return r
}
