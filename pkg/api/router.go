package api

import (
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/time/rate"
)

// RouterConfig tunes the middleware stack
type RouterConfig struct {
	RequestTimeout time.Duration
	RateLimit      float64
	RateBurst      int
}

func (h *Handler) RegisterRoutes(r chi.Router, cfg RouterConfig) *RateLimiter {
	rateLimiter := NewRateLimiter(rate.Limit(cfg.RateLimit), cfg.RateBurst)

	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(Instrument)
	if cfg.RequestTimeout > 0 {
		r.Use(middleware.Timeout(cfg.RequestTimeout))
	}

	r.Get("/health", h.Health)

	r.Group(func(r chi.Router) {
		r.Use(rateLimiter.RateLimit)

		r.Get("/api/v1/assets", h.GetAssets)
		r.Get("/api/v1/migration/status", h.GetStatus)
		r.Get("/api/v1/migration/state", h.GetRunState)
		r.Post("/api/v1/migration", h.Migrate)
	})
	return rateLimiter
}
