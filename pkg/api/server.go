package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

type Server struct {
	handler     *Handler
	server      *http.Server
	rateLimiter *RateLimiter
}

func NewServer(handler *Handler, host string, port int, cfg RouterConfig) *Server {
	r := chi.NewRouter()
	rateLimiter := handler.RegisterRoutes(r, cfg)

	return &Server{
		handler:     handler,
		rateLimiter: rateLimiter,
		server: &http.Server{
			Addr:              fmt.Sprintf("%s:%d", host, port),
			Handler:           r,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}
}

// Start serves until Stop is called
func (s *Server) Start(ctx context.Context) error {
	go s.cleanupLoop(ctx)

	log.Info().Str("addr", s.server.Addr).Msg("Starting API server")
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Stop(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

// cleanupLoop drops idle rate limiter entries every hour
func (s *Server) cleanupLoop(ctx context.Context) {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.rateLimiter.Cleanup(time.Hour)
		}
	}
}
