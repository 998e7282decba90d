// Package core provides the API chassis for the weatherdash service. It
// creates the chi router and enforces cross-cutting concerns -- security
// headers, logging, observability, and error handling -- before requests
// reach the domain handlers.
package core

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"weatherdash/internal/config"
)

// MetricsCollector receives per-request telemetry from the metrics
// middleware. The CloudWatch collector in internal/telemetry is the real
// implementation; a no-op stands in when metrics are disabled.
type MetricsCollector interface {
	RecordRequest(method, endpoint, status string, duration time.Duration)
}

// RouteRegistrar mounts a handler group onto the versioned router. Registrars
// are populated by the application entry point, which keeps core free of
// handler package imports.
type RouteRegistrar func(r chi.Router)

// Server carries everything the HTTP surface needs. Fields are exported so
// the entry point can attach collaborators (metrics, probes, registrars)
// between construction and MountRoutes.
type Server struct {
	Config    *config.Config
	Logger    *slog.Logger
	Validator *Validator
	Metrics   MetricsCollector

	// V1RouteRegistrars holds the domain handler mounts for the /v1 group.
	V1RouteRegistrars []RouteRegistrar

	// HealthProbes reports dependency health on GET /health. Probes must
	// not make outbound calls; see health.go.
	HealthProbes []HealthProbe

	// Internal router
	router *chi.Mux
}

// NewServer builds an unmounted server. Routes are mounted separately so
// tests can register their own; a nil config or logger is rejected up front
// rather than discovered on the first request.
func NewServer(cfg *config.Config, logger *slog.Logger) (*Server, error) {
	if cfg == nil {
		return nil, fmt.Errorf("server requires a non-nil config")
	}
	if logger == nil {
		return nil, fmt.Errorf("server requires a non-nil logger")
	}

	s := &Server{
		Config:    cfg,
		Logger:    logger,
		Validator: NewValidator(logger),
		router:    chi.NewRouter(),
	}

	return s, nil
}

// Handler exposes the router as a plain http.Handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Router exposes the underlying mux for tests that mount routes directly.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// Shutdown performs a graceful termination of server resources. The server
// holds no pooled connections of its own; the hook exists so the entry point
// has one place to release future resources as they are added.
func (s *Server) Shutdown(ctx context.Context) error {
	s.Logger.Info("server shutdown initiated")
	s.Logger.Info("server shutdown complete")
	return nil
}
