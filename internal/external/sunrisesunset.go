package external

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"weatherdash/internal/types"
)

// sunriseSunsetAPIBase is the default sunrise-sunset.org API base URL.
const sunriseSunsetAPIBase = "https://api.sunrise-sunset.org"

// sunUnavailableMessage is the warning surfaced when sun times cannot be
// fetched. Sun data is decorative; its absence never fails a request.
const sunUnavailableMessage = "Could not fetch sunrise/sunset data."

// SunClientConfig holds the configuration for creating a SunHTTPClient.
type SunClientConfig struct {
	BaseURL string // Override for testing; defaults to sunriseSunsetAPIBase
	Logger  *slog.Logger
}

// sunResponse is the envelope returned by the sunrise-sunset.org /json
// endpoint with formatted=0 (ISO 8601 timestamps).
type sunResponse struct {
	Results struct {
		Sunrise string `json:"sunrise"`
		Sunset  string `json:"sunset"`
	} `json:"results"`
	Status string `json:"status"`
}

// SunHTTPClient fetches sunrise and sunset instants from sunrise-sunset.org.
// Every failure mode maps to the same soft data_unavailable error so callers
// can downgrade it to a warning.
type SunHTTPClient struct {
	base    *BaseClient
	baseURL string
	logger  *slog.Logger
}

// NewSunClient creates a new SunHTTPClient.
func NewSunClient(httpClient *http.Client, cfg SunClientConfig) *SunHTTPClient {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = sunriseSunsetAPIBase
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	base := NewBaseClient(httpClient, "sunrise-sunset", "weatherdash/1.0")

	return &SunHTTPClient{
		base:    base,
		baseURL: strings.TrimSuffix(baseURL, "/"),
		logger:  logger,
	}
}

// NewSunClientWithBase creates a SunHTTPClient with a pre-configured BaseClient.
func NewSunClientWithBase(base *BaseClient, cfg SunClientConfig) *SunHTTPClient {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = sunriseSunsetAPIBase
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &SunHTTPClient{
		base:    base,
		baseURL: strings.TrimSuffix(baseURL, "/"),
		logger:  logger,
	}
}

// Breaker exposes the underlying BaseClient for health reporting.
func (c *SunHTTPClient) Breaker() *BaseClient {
	return c.base
}

// Times fetches sunrise and sunset for a coordinate pair. The instants are
// UTC as reported by the provider (formatted=0). Any failure, including a
// non-OK provider status, returns a data_unavailable error.
func (c *SunHTTPClient) Times(ctx context.Context, lat, lon float64) (types.SunTimes, error) {
	q := url.Values{}
	q.Set("lat", formatCoord(lat))
	q.Set("lng", formatCoord(lon))
	q.Set("formatted", "0")

	reqURL := fmt.Sprintf("%s/json?%s", c.baseURL, q.Encode())

	c.logger.DebugContext(ctx, "fetching sun times", "lat", lat, "lon", lon)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return types.SunTimes{}, c.unavailable(err)
	}

	resp, err := c.base.Do(req)
	if err != nil {
		return types.SunTimes{}, c.unavailable(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return types.SunTimes{}, c.unavailable(fmt.Errorf("sunrise-sunset returned %d", resp.StatusCode))
	}

	var payload sunResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return types.SunTimes{}, c.unavailable(err)
	}
	if payload.Status != "OK" {
		return types.SunTimes{}, c.unavailable(fmt.Errorf("sunrise-sunset status %q", payload.Status))
	}

	sunrise, err := time.Parse(time.RFC3339, payload.Results.Sunrise)
	if err != nil {
		return types.SunTimes{}, c.unavailable(err)
	}
	sunset, err := time.Parse(time.RFC3339, payload.Results.Sunset)
	if err != nil {
		return types.SunTimes{}, c.unavailable(err)
	}

	return types.SunTimes{Sunrise: sunrise, Sunset: sunset}, nil
}

// unavailable wraps any failure in the soft sun-times error.
func (c *SunHTTPClient) unavailable(cause error) *types.AppError {
	return types.NewAppError(types.ErrCodeDataUnavailable, sunUnavailableMessage, cause)
}
