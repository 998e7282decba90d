package external

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"weatherdash/internal/types"
)

// openWeatherAPIBase is the default OpenWeatherMap API base URL.
// Overridable in tests via OpenWeatherClientConfig.BaseURL.
const openWeatherAPIBase = "https://api.openweathermap.org"

// OpenWeatherClientConfig holds the configuration for creating an
// OpenWeatherHTTPClient.
type OpenWeatherClientConfig struct {
	APIKey  string
	BaseURL string // Override for testing; defaults to openWeatherAPIBase
	Logger  *slog.Logger
}

// geocodeEntry is a single result from the OpenWeatherMap geocoding endpoint.
type geocodeEntry struct {
	Name string  `json:"name"`
	Lat  float64 `json:"lat"`
	Lon  float64 `json:"lon"`
}

// forecastResponse is the envelope returned by the 5-day/3-hour forecast
// endpoint. Only the fields the dashboard consumes are declared.
type forecastResponse struct {
	List []forecastItem `json:"list"`
	City struct {
		Name     string `json:"name"`
		Timezone int    `json:"timezone"` // shift in seconds from UTC
		Sunrise  int64  `json:"sunrise"`
		Sunset   int64  `json:"sunset"`
	} `json:"city"`
	Message any `json:"message"` // numeric on success, text on errors
}

// forecastItem is one 3-hour forecast slot.
type forecastItem struct {
	Dt   int64 `json:"dt"`
	Main struct {
		Temp     float64 `json:"temp"`
		Humidity float64 `json:"humidity"`
	} `json:"main"`
	Wind struct {
		Speed float64 `json:"speed"`
	} `json:"wind"`
	Weather []struct {
		Description string `json:"description"`
		Icon        string `json:"icon"`
	} `json:"weather"`
}

// currentResponse is the envelope returned by the current weather endpoint.
type currentResponse struct {
	Name  string `json:"name"`
	Coord struct {
		Lat float64 `json:"lat"`
		Lon float64 `json:"lon"`
	} `json:"coord"`
	Main struct {
		Temp     float64 `json:"temp"`
		Humidity float64 `json:"humidity"`
	} `json:"main"`
	Weather []struct {
		Description string `json:"description"`
		Icon        string `json:"icon"`
	} `json:"weather"`
}

// OpenWeatherHTTPClient talks to the OpenWeatherMap REST API through
// BaseClient. It is the primary provider: geocoding, 5-day forecasts, and
// current conditions all come from here.
type OpenWeatherHTTPClient struct {
	base    *BaseClient
	apiKey  string
	baseURL string
	logger  *slog.Logger
}

// NewOpenWeatherClient creates a new OpenWeatherHTTPClient. The httpClient
// timeout should be set to the primary provider budget (10 seconds).
func NewOpenWeatherClient(httpClient *http.Client, cfg OpenWeatherClientConfig) *OpenWeatherHTTPClient {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = openWeatherAPIBase
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	base := NewBaseClient(httpClient, "openweather", "weatherdash/1.0")

	return &OpenWeatherHTTPClient{
		base:    base,
		apiKey:  cfg.APIKey,
		baseURL: strings.TrimSuffix(baseURL, "/"),
		logger:  logger,
	}
}

// NewOpenWeatherClientWithBase creates an OpenWeatherHTTPClient with a
// pre-configured BaseClient. This is useful for testing when you want to
// control the BaseClient configuration.
func NewOpenWeatherClientWithBase(base *BaseClient, cfg OpenWeatherClientConfig) *OpenWeatherHTTPClient {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = openWeatherAPIBase
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &OpenWeatherHTTPClient{
		base:    base,
		apiKey:  cfg.APIKey,
		baseURL: strings.TrimSuffix(baseURL, "/"),
		logger:  logger,
	}
}

// Breaker exposes the underlying BaseClient for health reporting.
func (c *OpenWeatherHTTPClient) Breaker() *BaseClient {
	return c.base
}

// Geocode resolves a city name to coordinates via the geocoding endpoint.
// An empty result set means the city is unknown.
func (c *OpenWeatherHTTPClient) Geocode(ctx context.Context, city string) (types.Location, error) {
	q := url.Values{}
	q.Set("q", city)
	q.Set("limit", "1")
	q.Set("appid", c.apiKey)

	reqURL := fmt.Sprintf("%s/geo/1.0/direct?%s", c.baseURL, q.Encode())

	c.logger.DebugContext(ctx, "geocoding city", "city", city)

	resp, err := c.get(ctx, reqURL)
	if err != nil {
		return types.Location{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return types.Location{}, statusError(resp.StatusCode)
	}

	var entries []geocodeEntry
	if err := json.NewDecoder(resp.Body).Decode(&entries); err != nil {
		return types.Location{}, types.NewAppError(
			types.ErrCodeUpstreamMalformed,
			"malformed response from geocoding endpoint",
			err,
		)
	}

	if len(entries) == 0 {
		return types.Location{}, types.NewAppError(
			types.ErrCodeNotFoundCity,
			"City not found.",
			nil,
		)
	}

	entry := entries[0]
	name := entry.Name
	if name == "" {
		name = cases.Title(language.English).String(city)
	}

	return types.Location{
		Name: name,
		Lat:  entry.Lat,
		Lon:  entry.Lon,
	}, nil
}

// Forecast fetches the full 5-day/3-hour forecast feed for a city in metric
// units. Point timestamps and sun times are expressed in the timezone the
// feed reports for the city. Day-window truncation is the caller's concern;
// the full feed is returned so it can be cached once per city.
func (c *OpenWeatherHTTPClient) Forecast(ctx context.Context, city string) (types.ForecastFeed, error) {
	q := url.Values{}
	q.Set("q", city)
	q.Set("units", "metric")
	q.Set("appid", c.apiKey)

	reqURL := fmt.Sprintf("%s/data/2.5/forecast?%s", c.baseURL, q.Encode())

	c.logger.DebugContext(ctx, "fetching forecast feed", "city", city)

	resp, err := c.get(ctx, reqURL)
	if err != nil {
		return types.ForecastFeed{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return types.ForecastFeed{}, statusError(resp.StatusCode)
	}

	var payload forecastResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return types.ForecastFeed{}, types.NewAppError(
			types.ErrCodeUpstreamMalformed,
			"malformed response from forecast endpoint",
			err,
		)
	}

	if len(payload.List) == 0 {
		// A 200 without forecast slots carries a textual message field.
		detail := "Unknown error"
		if msg, ok := payload.Message.(string); ok && msg != "" {
			detail = msg
		}
		return types.ForecastFeed{}, types.NewAppError(
			types.ErrCodeUpstreamMalformed,
			fmt.Sprintf("Forecast API error: %s", detail),
			nil,
		)
	}

	zone := time.FixedZone("", payload.City.Timezone)
	titleCaser := cases.Title(language.English)

	points := make([]types.ForecastPoint, 0, len(payload.List))
	for _, item := range payload.List {
		point := types.ForecastPoint{
			Timestamp:    time.Unix(item.Dt, 0).In(zone),
			TemperatureC: item.Main.Temp,
			Humidity:     item.Main.Humidity,
			WindSpeed:    item.Wind.Speed,
		}
		if len(item.Weather) > 0 {
			point.Description = titleCaser.String(item.Weather[0].Description)
			point.Icon = item.Weather[0].Icon
		}
		points = append(points, point)
	}

	feed := types.ForecastFeed{
		City:     payload.City.Name,
		Points:   points,
		TZOffset: payload.City.Timezone,
	}
	if payload.City.Sunrise != 0 && payload.City.Sunset != 0 {
		feed.Sunrise = time.Unix(payload.City.Sunrise, 0).In(zone)
		feed.Sunset = time.Unix(payload.City.Sunset, 0).In(zone)
	}

	return feed, nil
}

// CurrentByCoord fetches current conditions for a coordinate pair in metric
// units. The description is returned exactly as the provider reports it
// (lowercase); display casing is the caller's concern.
func (c *OpenWeatherHTTPClient) CurrentByCoord(ctx context.Context, lat, lon float64) (types.CurrentObservation, error) {
	q := url.Values{}
	q.Set("lat", formatCoord(lat))
	q.Set("lon", formatCoord(lon))
	q.Set("units", "metric")
	q.Set("appid", c.apiKey)

	reqURL := fmt.Sprintf("%s/data/2.5/weather?%s", c.baseURL, q.Encode())

	c.logger.DebugContext(ctx, "fetching current conditions", "lat", lat, "lon", lon)

	resp, err := c.get(ctx, reqURL)
	if err != nil {
		return types.CurrentObservation{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return types.CurrentObservation{}, statusError(resp.StatusCode)
	}

	var payload currentResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return types.CurrentObservation{}, types.NewAppError(
			types.ErrCodeUpstreamMalformed,
			"malformed response from current weather endpoint",
			err,
		)
	}

	obs := types.CurrentObservation{
		Name:         payload.Name,
		Lat:          payload.Coord.Lat,
		Lon:          payload.Coord.Lon,
		TemperatureC: payload.Main.Temp,
		Humidity:     payload.Main.Humidity,
	}
	if len(payload.Weather) > 0 {
		obs.Description = payload.Weather[0].Description
		obs.Icon = payload.Weather[0].Icon
	}

	return obs, nil
}

// get issues a GET through the BaseClient.
func (c *OpenWeatherHTTPClient) get(ctx context.Context, reqURL string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, types.NewAppError(
			types.ErrCodeInternalUnexpected,
			"failed to create OpenWeatherMap request",
			err,
		)
	}
	return c.base.Do(req)
}

// statusError maps a non-200 provider status to the upstream error contract.
func statusError(code int) *types.AppError {
	return types.NewAppError(
		types.ErrCodeUpstreamStatus,
		fmt.Sprintf("API Error: %d", code),
		nil,
	)
}

// formatCoord renders a coordinate for a query string without scientific
// notation or trailing zeros.
func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
