package api

import (
	"log"
	"net/http"

	"battlecore/internal/config"

	"github.com/go-chi/chi/v5"
)

// Server is the HTTP API server for the combat service.
type Server struct {
	registry    *Registry
	router      *chi.Mux
	rateLimiter *IPRateLimiter
}

// NewServer creates an API server with production-default rate limiting
// and CORS, bound to the given combat registry and resource limits.
//
// IMPORTANT: no goroutines or listeners are started until Start() is
// called, so the server can be constructed in tests and driven through
// Router() with httptest.NewServer.
func NewServer(registry *Registry, limits config.ResourceLimits) *Server {
	s := &Server{registry: registry}

	s.rateLimiter = NewIPRateLimiter(DefaultRateLimitConfig)

	s.router = NewRouter(RouterConfig{
		Registry:        registry,
		EventBufferSize: limits.EventBufferSize,
		RateLimiter:     s.rateLimiter,
	})

	return s
}

// Start begins serving HTTP on addr. Call this only once; to stop the
// server, signal the process.
func (s *Server) Start(addr string) error {
	log.Printf("combat service listening on %s", addr)
	return http.ListenAndServe(addr, s.router)
}

// Router returns the HTTP handler for use with httptest.
func (s *Server) Router() http.Handler {
	return s.router
}

// Stop performs graceful shutdown of background workers owned directly
// by the server (the rate limiter's cleanup loop).
func (s *Server) Stop() {
	if s.rateLimiter != nil {
		s.rateLimiter.Stop()
	}
}
