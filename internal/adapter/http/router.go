package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/iho/bizdesk/internal/adapter/http/handler"
	"github.com/iho/bizdesk/internal/adapter/http/middleware"
	"github.com/iho/bizdesk/internal/infrastructure/metrics"
	"github.com/iho/bizdesk/internal/usecase"
)

// RouterConfig holds dependencies for the router.
type RouterConfig struct {
	SessionHandler *handler.SessionHandler
	HealthHandler  *handler.HealthHandler
	Logger         zerolog.Logger

	// Optional
	Metrics          *metrics.Metrics
	Gatherer         prometheus.Gatherer
	RateLimiter      *middleware.RateLimiter
	IdempotencyStore usecase.IdempotencyStore
	IdempotencyTTL   time.Duration
}

// NewRouter creates a new HTTP router.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewLoggingMiddleware(cfg.Logger).Wrap)
	r.Use(middleware.Recovery(cfg.Logger))
	if cfg.Metrics != nil {
		r.Use(middleware.NewMetricsMiddleware(cfg.Metrics).Wrap)
	}

	// Health endpoints
	r.Get("/health", cfg.HealthHandler.Liveness)
	r.Get("/ready", cfg.HealthHandler.Readiness)

	if cfg.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(cfg.Gatherer, promhttp.HandlerOpts{}))
	}

	// API v1
	r.Route("/api/v1", func(r chi.Router) {
		if cfg.RateLimiter != nil {
			r.Use(cfg.RateLimiter.Limit)
		}

		// Idempotency middleware for mutating requests
		if cfg.IdempotencyStore != nil {
			var replays prometheus.Counter
			if cfg.Metrics != nil {
				replays = cfg.Metrics.IdempotentReplays
			}
			idempotencyMiddleware := middleware.NewIdempotencyMiddleware(cfg.IdempotencyStore, cfg.IdempotencyTTL, replays, cfg.Logger)
			r.Use(idempotencyMiddleware.Wrap)
		}

		// Sessions
		r.Route("/sessions", func(r chi.Router) {
			h := cfg.SessionHandler

			r.Post("/", h.Open)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", h.Get)
				r.Delete("/", h.Close)
				r.Put("/search", h.Search)
				r.Put("/page", h.SetPage)
				r.Get("/draft", h.Draft)

				r.Post("/records", h.CreateRecord)
				r.Put("/records/{recordID}", h.UpdateRecord)
				r.Post("/records/{recordID}/edit", h.BeginEdit)
				r.Post("/records/{recordID}/delete", h.BeginDelete)

				r.Post("/edit/confirm", h.ConfirmEdit)
				r.Post("/edit/cancel", h.CancelEdit)
				r.Post("/delete/confirm", h.ConfirmDelete)
				r.Post("/delete/cancel", h.CancelDelete)
			})
		})
	})

	return r
}
