package external

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"weatherdash/internal/types"
)

// geoNamesAPIBase is the default GeoNames API base URL. The free tier is
// plain HTTP.
const geoNamesAPIBase = "http://api.geonames.org"

// GeoNamesClientConfig holds the configuration for creating a
// GeoNamesHTTPClient.
type GeoNamesClientConfig struct {
	Username string
	BaseURL  string // Override for testing; defaults to geoNamesAPIBase
	Logger   *slog.Logger
}

// geoNamesResponse is the envelope returned by the searchJSON endpoint.
// Population is a pointer so an absent field is distinguishable from a
// reported count of zero.
type geoNamesResponse struct {
	GeoNames []struct {
		Population *int64 `json:"population"`
	} `json:"geonames"`
}

// GeoNamesHTTPClient fetches city populations from the GeoNames search API.
// Population is best-effort decoration for the comparison view: every
// failure mode maps to the same soft data_unavailable error, and callers
// are expected to fall back to the unavailable sentinel.
type GeoNamesHTTPClient struct {
	base     *BaseClient
	username string
	baseURL  string
	logger   *slog.Logger
}

// NewGeoNamesClient creates a new GeoNamesHTTPClient.
func NewGeoNamesClient(httpClient *http.Client, cfg GeoNamesClientConfig) *GeoNamesHTTPClient {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = geoNamesAPIBase
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	base := NewBaseClient(httpClient, "geonames", "weatherdash/1.0")

	return &GeoNamesHTTPClient{
		base:     base,
		username: cfg.Username,
		baseURL:  strings.TrimSuffix(baseURL, "/"),
		logger:   logger,
	}
}

// NewGeoNamesClientWithBase creates a GeoNamesHTTPClient with a
// pre-configured BaseClient.
func NewGeoNamesClientWithBase(base *BaseClient, cfg GeoNamesClientConfig) *GeoNamesHTTPClient {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = geoNamesAPIBase
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &GeoNamesHTTPClient{
		base:     base,
		username: cfg.Username,
		baseURL:  strings.TrimSuffix(baseURL, "/"),
		logger:   logger,
	}
}

// Breaker exposes the underlying BaseClient for health reporting.
func (c *GeoNamesHTTPClient) Breaker() *BaseClient {
	return c.base
}

// Population looks up the population for a city name. On any failure the
// unavailable sentinel is returned alongside a soft error describing the
// cause; callers should keep the sentinel and downgrade the error.
func (c *GeoNamesHTTPClient) Population(ctx context.Context, city string) (types.Population, error) {
	q := url.Values{}
	q.Set("name", city)
	q.Set("maxRows", "1")
	q.Set("username", c.username)

	reqURL := fmt.Sprintf("%s/searchJSON?%s", c.baseURL, q.Encode())

	c.logger.DebugContext(ctx, "fetching population", "city", city)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return types.PopulationUnavailable, c.unavailable(err)
	}

	resp, err := c.base.Do(req)
	if err != nil {
		return types.PopulationUnavailable, c.unavailable(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return types.PopulationUnavailable, c.unavailable(fmt.Errorf("geonames returned %d", resp.StatusCode))
	}

	var payload geoNamesResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return types.PopulationUnavailable, c.unavailable(err)
	}

	if len(payload.GeoNames) == 0 || payload.GeoNames[0].Population == nil {
		return types.PopulationUnavailable, c.unavailable(fmt.Errorf("no population entry for %q", city))
	}

	return types.Population{
		Value:     *payload.GeoNames[0].Population,
		Available: true,
	}, nil
}

// unavailable wraps any failure in the soft population error.
func (c *GeoNamesHTTPClient) unavailable(cause error) *types.AppError {
	return types.NewAppError(types.ErrCodeDataUnavailable, "population data unavailable", cause)
}
