package external

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"weatherdash/internal/types"
)

// nasaPowerAPIBase is the default NASA POWER API base URL.
const nasaPowerAPIBase = "https://power.larc.nasa.gov"

// The POWER archive slice the dashboard serves. The full window is fetched
// per lookup and filtered to the requested range afterwards.
const (
	powerArchiveStart = "20220101"
	powerArchiveEnd   = "20241231"
	powerParameters   = "T2M,PRECTOTCORR,RH2M"
	powerCommunity    = "AG"
)

// powerResponse is the envelope returned by the POWER daily point endpoint.
// Parameter maps are keyed by YYYYMMDD date strings.
type powerResponse struct {
	Properties *struct {
		Parameter map[string]map[string]float64 `json:"parameter"`
	} `json:"properties"`
}

// PowerClientConfig holds the configuration for creating a PowerHTTPClient.
type PowerClientConfig struct {
	BaseURL string // Override for testing; defaults to nasaPowerAPIBase
	Logger  *slog.Logger
}

// PowerHTTPClient fetches the historical daily climate series from the NASA
// POWER archive: 2m air temperature, corrected precipitation, and relative
// humidity. Values are passed through verbatim, including the provider's
// -999 fill markers for days without measurements.
type PowerHTTPClient struct {
	base    *BaseClient
	baseURL string
	logger  *slog.Logger
}

// NewPowerClient creates a new PowerHTTPClient.
func NewPowerClient(httpClient *http.Client, cfg PowerClientConfig) *PowerHTTPClient {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = nasaPowerAPIBase
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	base := NewBaseClient(httpClient, "nasa-power", "weatherdash/1.0")

	return &PowerHTTPClient{
		base:    base,
		baseURL: strings.TrimSuffix(baseURL, "/"),
		logger:  logger,
	}
}

// NewPowerClientWithBase creates a PowerHTTPClient with a pre-configured
// BaseClient.
func NewPowerClientWithBase(base *BaseClient, cfg PowerClientConfig) *PowerHTTPClient {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = nasaPowerAPIBase
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &PowerHTTPClient{
		base:    base,
		baseURL: strings.TrimSuffix(baseURL, "/"),
		logger:  logger,
	}
}

// Breaker exposes the underlying BaseClient for health reporting.
func (c *PowerHTTPClient) Breaker() *BaseClient {
	return c.base
}

// DailyArchive fetches the full archive window for a coordinate pair,
// sorted by date ascending. A 200 payload without the expected properties
// block is a malformed response, not a soft miss: the climate endpoint has
// no fallback for its primary data source.
func (c *PowerHTTPClient) DailyArchive(ctx context.Context, lat, lon float64) ([]types.ClimateDay, error) {
	q := url.Values{}
	q.Set("parameters", powerParameters)
	q.Set("start", powerArchiveStart)
	q.Set("end", powerArchiveEnd)
	q.Set("latitude", formatCoord(lat))
	q.Set("longitude", formatCoord(lon))
	q.Set("format", "JSON")
	q.Set("community", powerCommunity)

	reqURL := fmt.Sprintf("%s/api/temporal/daily/point?%s", c.baseURL, q.Encode())

	c.logger.DebugContext(ctx, "fetching climate archive", "lat", lat, "lon", lon)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, types.NewAppError(
			types.ErrCodeInternalUnexpected,
			"failed to create NASA POWER request",
			err,
		)
	}

	resp, err := c.base.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, statusError(resp.StatusCode)
	}

	var payload powerResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, types.NewAppError(
			types.ErrCodeUpstreamMalformed,
			"malformed response from NASA POWER endpoint",
			err,
		)
	}

	if payload.Properties == nil {
		return nil, c.notFound(nil)
	}

	params := payload.Properties.Parameter
	temps := params["T2M"]
	precip := params["PRECTOTCORR"]
	humidity := params["RH2M"]
	if len(temps) == 0 {
		return nil, c.notFound(nil)
	}

	// Parameter maps are keyed by YYYYMMDD; sorting the keys yields
	// chronological order.
	keys := make([]string, 0, len(temps))
	for k := range temps {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	days := make([]types.ClimateDay, 0, len(keys))
	for _, key := range keys {
		date, err := time.Parse("20060102", key)
		if err != nil {
			return nil, types.NewAppError(
				types.ErrCodeUpstreamMalformed,
				fmt.Sprintf("NASA POWER returned unparseable date key %q", key),
				err,
			)
		}
		p, pok := precip[key]
		h, hok := humidity[key]
		if !pok || !hok {
			// A date present in one series but absent from another
			// makes the archive unusable.
			return nil, c.notFound(fmt.Errorf("misaligned parameter series at %s", key))
		}
		days = append(days, types.ClimateDay{
			Date:            date.Format(time.DateOnly),
			TemperatureC:    temps[key],
			PrecipitationMM: p,
			Humidity:        h,
		})
	}

	return days, nil
}

// notFound is the archive-missing error contract. The code is fatal
// (upstream_malformed_response) so it surfaces as the request error;
// data_unavailable is reserved for enrichments a caller can degrade around.
func (c *PowerHTTPClient) notFound(cause error) *types.AppError {
	return types.NewAppError(types.ErrCodeUpstreamMalformed, "Data not found.", cause)
}
