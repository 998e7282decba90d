// Package external provides the anti-corruption layer between weatherdash
// domain logic and the upstream weather data providers. All outbound HTTP
// calls are routed through the BaseClient, which enforces consistent
// resilience patterns: circuit breaking, trace propagation, and error
// mapping. Each upstream call is attempted exactly once; failures surface
// immediately as domain errors rather than being retried.
package external

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"weatherdash/internal/types"

	"github.com/sony/gobreaker/v2"
)

// BaseClient wraps an *http.Client and a circuit breaker to enforce
// consistent resilience patterns on all outbound HTTP calls. Provider
// clients embed BaseClient to inherit this behavior.
type BaseClient struct {
	client    *http.Client
	breaker   *gobreaker.CircuitBreaker[*http.Response]
	userAgent string
}

// NewBaseClient creates a BaseClient with the given http client, circuit
// breaker name, and user agent string.
func NewBaseClient(httpClient *http.Client, breakerName string, userAgent string) *BaseClient {
	cb := gobreaker.NewCircuitBreaker[*http.Response](gobreaker.Settings{
		Name:        breakerName,
		MaxRequests: 1,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures > 5
		},
		IsSuccessful: func(err error) bool {
			return err == nil
		},
	})

	return &BaseClient{
		client:    httpClient,
		breaker:   cb,
		userAgent: userAgent,
	}
}

// NewBaseClientWithBreaker accepts a ready-made breaker, for tests and for
// provider clients that share one breaker across several endpoints.
func NewBaseClientWithBreaker(
	httpClient *http.Client,
	breaker *gobreaker.CircuitBreaker[*http.Response],
	userAgent string,
) *BaseClient {
	return &BaseClient{
		client:    httpClient,
		breaker:   breaker,
		userAgent: userAgent,
	}
}

// Name returns the circuit breaker name identifying the provider.
func (c *BaseClient) Name() string {
	return c.breaker.Name()
}

// State returns the current circuit breaker state for health reporting.
func (c *BaseClient) State() gobreaker.State {
	return c.breaker.State()
}

// Do sends the request through the breaker, stamping the X-B3-TraceId and
// User-Agent headers first. Any response that arrives is handed back to the
// caller whatever its status code - provider clients own status-to-error
// mapping - but 5xx responses still count against the breaker. Only a
// transport failure or an open breaker comes back as a types.AppError with
// no response; the caller closes the body otherwise.
func (c *BaseClient) Do(req *http.Request) (*http.Response, error) {
	if traceID := types.GetRequestID(req.Context()); traceID != "" {
		req.Header.Set("X-B3-TraceId", traceID)
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.breaker.Execute(func() (*http.Response, error) {
		r, doErr := c.client.Do(req)
		if doErr != nil {
			return nil, doErr
		}
		// Count 5xx against the breaker without consuming the response.
		if r.StatusCode >= 500 {
			return r, fmt.Errorf("upstream returned %d", r.StatusCode)
		}
		return r, nil
	})

	if err != nil {
		// A 5xx made the breaker record a failure, but the response is
		// still the caller's to interpret.
		if resp != nil {
			return resp, nil
		}
		return nil, c.mapError(err)
	}

	return resp, nil
}

// mapError turns transport and breaker failures into domain errors. An
// open breaker means the provider was never contacted.
func (c *BaseClient) mapError(err error) *types.AppError {
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return types.NewAppError(
			types.ErrCodeUpstreamUnavailable,
			fmt.Sprintf("%s is unavailable; circuit breaker is open", c.breaker.Name()),
			err,
		)
	}

	// Transport failure (connection refused, DNS failure, timeout).
	return types.NewAppError(
		types.ErrCodeUpstreamConnection,
		fmt.Sprintf("Connection error: %v", err),
		err,
	)
}
