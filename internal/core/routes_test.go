package core

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"weatherdash/internal/config"
)

func newMountedServer(t *testing.T, cfg *config.Config) *Server {
	t.Helper()
	srv, err := NewServer(cfg, testLogger())
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}
	return srv
}

func TestMountRoutes_HealthEndpoint(t *testing.T) {
	srv := newMountedServer(t, testConfig())
	srv.MountRoutes()

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"status":"healthy"`) {
		t.Errorf("unexpected body: %s", rec.Body.String())
	}
}

func TestMountRoutes_V1Registrars(t *testing.T) {
	srv := newMountedServer(t, testConfig())
	srv.V1RouteRegistrars = append(srv.V1RouteRegistrars, func(r chi.Router) {
		r.Get("/ping", func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte("pong"))
		})
	})
	srv.MountRoutes()

	req := httptest.NewRequest(http.MethodGet, "/v1/ping", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if rec.Body.String() != "pong" {
		t.Errorf("unexpected body %q", rec.Body.String())
	}
}

func TestRequestIDMiddleware_GeneratesID(t *testing.T) {
	var captured string
	handler := RequestIDMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured = w.Header().Get("X-Request-Id")
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if captured == "" {
		t.Fatal("expected a generated request ID")
	}
	if !strings.HasPrefix(captured, "req_") {
		t.Errorf("expected req_ prefix, got %q", captured)
	}
	if rec.Header().Get("X-Request-Id") != captured {
		t.Error("expected the ID on the response header")
	}
}

func TestRequestIDMiddleware_PropagatesIncomingID(t *testing.T) {
	handler := RequestIDMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-Id", "req_incoming")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if got := rec.Header().Get("X-Request-Id"); got != "req_incoming" {
		t.Errorf("expected req_incoming, got %q", got)
	}
}

func TestContextTimeoutMiddleware_SetsDeadline(t *testing.T) {
	var deadline time.Time
	var ok bool
	handler := ContextTimeoutMiddleware(5 * time.Second)(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		deadline, ok = r.Context().Deadline()
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	handler.ServeHTTP(httptest.NewRecorder(), req)

	if !ok {
		t.Fatal("expected a context deadline")
	}
	if until := time.Until(deadline); until > 5*time.Second {
		t.Errorf("deadline too far in the future: %v", until)
	}
}

func TestMountRoutes_NoTimeoutByDefault(t *testing.T) {
	// RequestTimeout defaults to zero: the configured chain must not set a
	// deadline, preserving the unbounded-render behavior on slow upstreams.
	srv := newMountedServer(t, testConfig())
	var hasDeadline bool
	srv.V1RouteRegistrars = append(srv.V1RouteRegistrars, func(r chi.Router) {
		r.Get("/deadline", func(w http.ResponseWriter, r *http.Request) {
			_, hasDeadline = r.Context().Deadline()
			w.WriteHeader(http.StatusOK)
		})
	})
	srv.MountRoutes()

	req := httptest.NewRequest(http.MethodGet, "/v1/deadline", nil)
	srv.Handler().ServeHTTP(httptest.NewRecorder(), req)

	if hasDeadline {
		t.Error("expected no request deadline with the default config")
	}
}

func TestMountRoutes_OptInTimeout(t *testing.T) {
	cfg := testConfig()
	cfg.Server.RequestTimeout = 3 * time.Second
	srv := newMountedServer(t, cfg)
	var hasDeadline bool
	srv.V1RouteRegistrars = append(srv.V1RouteRegistrars, func(r chi.Router) {
		r.Get("/deadline", func(w http.ResponseWriter, r *http.Request) {
			_, hasDeadline = r.Context().Deadline()
			w.WriteHeader(http.StatusOK)
		})
	})
	srv.MountRoutes()

	req := httptest.NewRequest(http.MethodGet, "/v1/deadline", nil)
	srv.Handler().ServeHTTP(httptest.NewRecorder(), req)

	if !hasDeadline {
		t.Error("expected a request deadline when SERVER_REQUEST_TIMEOUT is set")
	}
}

func TestCorsAllowedOrigins_Fallback(t *testing.T) {
	cfg := testConfig()
	cfg.Security.CorsAllowedOrigins = nil
	srv := newMountedServer(t, cfg)

	origins := srv.corsAllowedOrigins()
	if len(origins) != 1 || origins[0] != "*" {
		t.Errorf("expected wildcard fallback, got %v", origins)
	}
}

func TestHandleHealth_RespectsRequestContext(t *testing.T) {
	srv := newMountedServer(t, testConfig())
	srv.HealthProbes = []HealthProbe{&MockHealthProbe{
		ProbeName: "slow",
		CheckFunc: func(ctx context.Context) error {
			<-ctx.Done()
			return ctx.Err()
		},
	}}
	srv.MountRoutes()

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 for a probe that never succeeds, got %d", rec.Code)
	}
}
