package core

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/sony/gobreaker/v2"
)

// healthCheckTimeout is the maximum time allowed for all health probes to complete.
// If any probe exceeds this deadline, the health check returns 503 Service Unavailable.
const healthCheckTimeout = 2 * time.Second

// HealthProbe defines the interface for a dependency health check. Probes
// must not make outbound calls: the upstream weather providers are reported
// through their circuit breaker state, which reflects recent real traffic
// without adding synthetic load. This also means /health cannot wake a slow
// secondary provider that carries no client timeout.
type HealthProbe interface {
	// Name returns a human-readable identifier for the probe
	// (e.g., "openweather", "nasa-power").
	Name() string

	// Check reports the dependency's health. It should respect the context
	// deadline and return an error if the dependency is unhealthy.
	Check(ctx context.Context) error
}

// BreakerState exposes a provider client's circuit breaker for health
// reporting. The external.BaseClient satisfies it.
type BreakerState interface {
	Name() string
	State() gobreaker.State
}

// BreakerProbe reports a provider's circuit breaker state. A closed or
// half-open breaker is healthy (half-open means the provider is being
// re-probed by live traffic); an open breaker is unhealthy.
type BreakerProbe struct {
	breaker BreakerState
}

// NewBreakerProbe wraps a provider client's breaker as a HealthProbe.
func NewBreakerProbe(breaker BreakerState) *BreakerProbe {
	return &BreakerProbe{breaker: breaker}
}

// Name returns the provider name carried by the breaker.
func (p *BreakerProbe) Name() string {
	return p.breaker.Name()
}

// Check reports an error only when the circuit is open.
func (p *BreakerProbe) Check(_ context.Context) error {
	state := p.breaker.State()
	if state == gobreaker.StateOpen {
		return fmt.Errorf("circuit breaker is open")
	}
	return nil
}

// componentStatus is the per-dependency entry in the health response.
type componentStatus struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

type healthResponse struct {
	Status     string                     `json:"status"`
	Components map[string]componentStatus `json:"components,omitempty"`
}

type probeResult struct {
	name string
	err  error
}

// HandleHealth serves GET /health. All registered probes run concurrently
// under a 2-second deadline; any failing or unfinished probe turns the
// overall status unhealthy and the response code to 503. With no probes
// registered the endpoint reports healthy with no component detail.
func (s *Server) HandleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
	defer cancel()

	probes := s.HealthProbes
	if len(probes) == 0 {
		JSON(w, r, http.StatusOK, healthResponse{Status: "healthy"})
		return
	}

	results := make(chan probeResult, len(probes))
	for _, probe := range probes {
		go func(p HealthProbe) {
			results <- probeResult{name: p.Name(), err: runProbe(ctx, p)}
		}(probe)
	}

	// Collect until every probe has reported or the deadline fires.
	// Probes that miss the deadline are simply absent from the map.
	completed := make(map[string]error, len(probes))
collect:
	for range probes {
		select {
		case res := <-results:
			completed[res.name] = res.err
		case <-ctx.Done():
			break collect
		}
	}

	components := make(map[string]componentStatus, len(probes))
	healthy := true
	for _, probe := range probes {
		name := probe.Name()
		err, done := completed[name]
		switch {
		case !done:
			healthy = false
			components[name] = componentStatus{Status: "unhealthy", Message: "health check timed out"}
		case err != nil:
			healthy = false
			components[name] = componentStatus{Status: "unhealthy", Message: err.Error()}
		default:
			components[name] = componentStatus{Status: "healthy"}
		}
	}

	resp := healthResponse{Status: "healthy", Components: components}
	code := http.StatusOK
	if !healthy {
		resp.Status = "unhealthy"
		code = http.StatusServiceUnavailable
	}
	JSON(w, r, code, resp)
}

// runProbe shields the handler from a panicking probe.
func runProbe(ctx context.Context, p HealthProbe) (err error) {
	defer func() {
		if rvr := recover(); rvr != nil {
			err = fmt.Errorf("probe panicked: %v", rvr)
		}
	}()
	return p.Check(ctx)
}
