package core

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"weatherdash/internal/types"
)

// MountRoutes wires the middleware chain and all route groups onto the
// server's router: the versioned API under /v1 plus the unversioned
// health probe.
func (s *Server) MountRoutes() {
	s.registerGlobalMiddleware()
	s.router.Route("/v1", s.mountV1)
	s.router.Get("/health", s.HandleHealth)
}

// Middleware order is load-bearing: the recoverer wraps everything, the
// request ID must exist before the logger runs, and metrics sit innermost
// so they time only handler work. The context timeout slot is skipped
// entirely when SERVER_REQUEST_TIMEOUT is zero (the default) - the
// secondary upstream clients carry no timeout of their own, so bounding a
// slow render is an operator opt-in.
func (s *Server) registerGlobalMiddleware() {
	s.router.Use(s.Recoverer)
	if timeout := s.requestTimeout(); timeout > 0 {
		s.router.Use(ContextTimeoutMiddleware(timeout))
	}
	s.router.Use(RequestIDMiddleware)
	s.router.Use(s.SecurityHeadersMiddleware)
	s.router.Use(RequestLogger(s.Logger, defaultRedactedHeaders))
	s.router.Use(NewCORSMiddleware(s.corsAllowedOrigins()))
	s.router.Use(s.MetricsMiddleware)
}

// Header values masked in request logs.
var defaultRedactedHeaders = []string{
	"Authorization",
	"Cookie",
}

// mountV1 registers all v1 endpoints. Domain handler routes are registered
// via V1RouteRegistrars, which are populated by the application entry point
// (main.go). This indirection avoids import cycles between core and handler
// packages.
func (s *Server) mountV1(r chi.Router) {
	for _, registrar := range s.V1RouteRegistrars {
		registrar(r)
	}
}

func (s *Server) requestTimeout() time.Duration {
	if s.Config == nil {
		return 0
	}
	return s.Config.Server.RequestTimeout
}

func (s *Server) corsAllowedOrigins() []string {
	if s.Config != nil && len(s.Config.Security.CorsAllowedOrigins) > 0 {
		return s.Config.Security.CorsAllowedOrigins
	}
	return []string{"*"}
}

// ContextTimeoutMiddleware puts a deadline on every request context. What
// the client sees on expiry depends on how the handler reacts to
// cancellation; the middleware itself writes nothing.
func ContextTimeoutMiddleware(duration time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), duration)
			defer cancel()
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequestIDMiddleware assigns each request a correlation ID of the form
// "req_" + UUID, reusing an X-Request-Id header when the caller supplies
// one. The ID travels in the request context (types.WithRequestID) and is
// echoed back in the X-Request-Id response header.
func RequestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get("X-Request-Id")
		if requestID == "" {
			requestID = "req_" + uuid.NewString()
		}

		ctx := types.WithRequestID(r.Context(), requestID)
		w.Header().Set("X-Request-Id", requestID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
