package core

import (
	"context"
	"sync"
	"time"
)

// --- MockMetricsCollector ---

// RecordedRequest captures one RecordRequest invocation for assertions.
type RecordedRequest struct {
	Method   string
	Endpoint string
	Status   string
	Duration time.Duration
}

// MockMetricsCollector implements MetricsCollector for testing. It is safe
// for concurrent use, matching the collector's middleware call sites.
type MockMetricsCollector struct {
	mu       sync.Mutex
	Requests []RecordedRequest
}

// RecordRequest appends the invocation to Requests.
func (m *MockMetricsCollector) RecordRequest(method, endpoint, status string, duration time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Requests = append(m.Requests, RecordedRequest{
		Method:   method,
		Endpoint: endpoint,
		Status:   status,
		Duration: duration,
	})
}

// Recorded returns a copy of the captured invocations.
func (m *MockMetricsCollector) Recorded() []RecordedRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]RecordedRequest, len(m.Requests))
	copy(out, m.Requests)
	return out
}

// --- MockHealthProbe ---

// MockHealthProbe implements HealthProbe with a fixed name and result.
//
// Usage:
//
//	probe := &MockHealthProbe{ProbeName: "openweather"}
//	probe.Err = errors.New("circuit breaker is open")
type MockHealthProbe struct {
	ProbeName string
	Err       error

	// CheckFunc optionally overrides the default behavior, e.g. to block
	// until the context expires in timeout tests.
	CheckFunc func(ctx context.Context) error
}

// Name returns the probe's configured name.
func (m *MockHealthProbe) Name() string { return m.ProbeName }

// Check returns Err, or delegates to CheckFunc when set.
func (m *MockHealthProbe) Check(ctx context.Context) error {
	if m.CheckFunc != nil {
		return m.CheckFunc(ctx)
	}
	return m.Err
}

// Compile-time interface assertions.
var (
	_ MetricsCollector = (*MockMetricsCollector)(nil)
	_ HealthProbe      = (*MockHealthProbe)(nil)
)
