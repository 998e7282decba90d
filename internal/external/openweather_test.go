package external

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"weatherdash/internal/types"
)

func newTestOpenWeatherClient(serverURL string) *OpenWeatherHTTPClient {
	return NewOpenWeatherClient(
		&http.Client{Timeout: 5 * time.Second},
		OpenWeatherClientConfig{
			APIKey:  "test-key",
			BaseURL: serverURL,
		},
	)
}

func TestGeocode_Success(t *testing.T) {
	var gotPath string
	var gotQuery url.Values
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.Query()
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[{"name":"Johannesburg","lat":-26.205,"lon":28.049}]`))
	}))
	defer server.Close()

	client := newTestOpenWeatherClient(server.URL)

	loc, err := client.Geocode(context.Background(), "Johannesburg")
	if err != nil {
		t.Fatalf("Geocode returned error: %v", err)
	}

	if gotPath != "/geo/1.0/direct" {
		t.Errorf("path = %q", gotPath)
	}
	if gotQuery.Get("q") != "Johannesburg" || gotQuery.Get("limit") != "1" || gotQuery.Get("appid") != "test-key" {
		t.Errorf("unexpected query: %v", gotQuery)
	}

	if loc.Name != "Johannesburg" || loc.Lat != -26.205 || loc.Lon != 28.049 {
		t.Errorf("unexpected location: %+v", loc)
	}
}

func TestGeocode_CityNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	}))
	defer server.Close()

	client := newTestOpenWeatherClient(server.URL)

	_, err := client.Geocode(context.Background(), "Atlantis")
	if err == nil {
		t.Fatal("expected error for unknown city")
	}

	var appErr *types.AppError
	if !errors.As(err, &appErr) {
		t.Fatalf("error is not an AppError: %v", err)
	}
	if appErr.Code != types.ErrCodeNotFoundCity {
		t.Errorf("Code = %q, want %q", appErr.Code, types.ErrCodeNotFoundCity)
	}
	if appErr.Message != "City not found." {
		t.Errorf("Message = %q, want %q", appErr.Message, "City not found.")
	}
}

func TestGeocode_UpstreamStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	client := newTestOpenWeatherClient(server.URL)

	_, err := client.Geocode(context.Background(), "Johannesburg")
	if err == nil {
		t.Fatal("expected error for non-200 status")
	}

	var appErr *types.AppError
	if !errors.As(err, &appErr) {
		t.Fatalf("error is not an AppError: %v", err)
	}
	if appErr.Code != types.ErrCodeUpstreamStatus {
		t.Errorf("Code = %q, want %q", appErr.Code, types.ErrCodeUpstreamStatus)
	}
	if appErr.Message != "API Error: 401" {
		t.Errorf("Message = %q, want %q", appErr.Message, "API Error: 401")
	}
}

func TestGeocode_MalformedResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"not":"an array"`))
	}))
	defer server.Close()

	client := newTestOpenWeatherClient(server.URL)

	_, err := client.Geocode(context.Background(), "Johannesburg")
	if err == nil {
		t.Fatal("expected error for malformed body")
	}

	var appErr *types.AppError
	if !errors.As(err, &appErr) || appErr.Code != types.ErrCodeUpstreamMalformed {
		t.Errorf("error = %v, want code %q", err, types.ErrCodeUpstreamMalformed)
	}
}

// forecastFixture is a minimal two-slot feed for a city two hours east of UTC.
const forecastFixture = `{
	"list": [
		{
			"dt": 1767254400,
			"main": {"temp": 21.5, "humidity": 60},
			"wind": {"speed": 4.2},
			"weather": [{"description": "scattered clouds", "icon": "03d"}]
		},
		{
			"dt": 1767265200,
			"main": {"temp": 24.0, "humidity": 55},
			"wind": {"speed": 11.5},
			"weather": [{"description": "clear sky", "icon": "01d"}]
		}
	],
	"city": {
		"name": "Johannesburg",
		"timezone": 7200,
		"sunrise": 1767236439,
		"sunset": 1767286622
	}
}`

func TestForecast_Success(t *testing.T) {
	var gotQuery url.Values
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()
		w.Write([]byte(forecastFixture))
	}))
	defer server.Close()

	client := newTestOpenWeatherClient(server.URL)

	feed, err := client.Forecast(context.Background(), "Johannesburg")
	if err != nil {
		t.Fatalf("Forecast returned error: %v", err)
	}

	if gotQuery.Get("q") != "Johannesburg" || gotQuery.Get("units") != "metric" || gotQuery.Get("appid") != "test-key" {
		t.Errorf("unexpected query: %v", gotQuery)
	}

	if feed.City != "Johannesburg" {
		t.Errorf("City = %q", feed.City)
	}
	if feed.TZOffset != 7200 {
		t.Errorf("TZOffset = %d, want 7200", feed.TZOffset)
	}
	if len(feed.Points) != 2 {
		t.Fatalf("Points = %d, want 2", len(feed.Points))
	}

	first := feed.Points[0]
	if first.TemperatureC != 21.5 || first.Humidity != 60 || first.WindSpeed != 4.2 {
		t.Errorf("unexpected first point: %+v", first)
	}
	if first.Description != "Scattered Clouds" {
		t.Errorf("Description = %q, want title case", first.Description)
	}
	if first.Icon != "03d" {
		t.Errorf("Icon = %q", first.Icon)
	}

	// Timestamps are expressed in the feed-reported zone.
	_, offset := first.Timestamp.Zone()
	if offset != 7200 {
		t.Errorf("timestamp zone offset = %d, want 7200", offset)
	}
	if first.Timestamp.Unix() != 1767254400 {
		t.Errorf("timestamp instant changed: %d", first.Timestamp.Unix())
	}

	if feed.Sunrise.IsZero() || feed.Sunset.IsZero() {
		t.Error("sun times not populated from the city block")
	}
	if feed.Sunrise.Unix() != 1767236439 {
		t.Errorf("Sunrise = %d", feed.Sunrise.Unix())
	}
}

func TestForecast_MissingListCarriesMessage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"cod":"404","message":"city not found"}`))
	}))
	defer server.Close()

	client := newTestOpenWeatherClient(server.URL)

	_, err := client.Forecast(context.Background(), "Johannesburg")
	if err == nil {
		t.Fatal("expected error when the feed has no list")
	}

	var appErr *types.AppError
	if !errors.As(err, &appErr) {
		t.Fatalf("error is not an AppError: %v", err)
	}
	if appErr.Code != types.ErrCodeUpstreamMalformed {
		t.Errorf("Code = %q, want %q", appErr.Code, types.ErrCodeUpstreamMalformed)
	}
	if appErr.Message != "Forecast API error: city not found" {
		t.Errorf("Message = %q", appErr.Message)
	}
}

func TestForecast_UpstreamStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := newTestOpenWeatherClient(server.URL)

	_, err := client.Forecast(context.Background(), "Johannesburg")
	if err == nil {
		t.Fatal("expected error for non-200 status")
	}

	var appErr *types.AppError
	if !errors.As(err, &appErr) || appErr.Message != "API Error: 429" {
		t.Errorf("error = %v, want API Error: 429", err)
	}
}

func TestCurrentByCoord_Success(t *testing.T) {
	var gotQuery url.Values
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()
		w.Write([]byte(`{
			"name": "Cape Town",
			"coord": {"lat": -33.92, "lon": 18.42},
			"main": {"temp": 18.3, "humidity": 72},
			"weather": [{"description": "light rain", "icon": "10d"}]
		}`))
	}))
	defer server.Close()

	client := newTestOpenWeatherClient(server.URL)

	obs, err := client.CurrentByCoord(context.Background(), -33.92, 18.42)
	if err != nil {
		t.Fatalf("CurrentByCoord returned error: %v", err)
	}

	if gotQuery.Get("lat") != "-33.92" || gotQuery.Get("lon") != "18.42" || gotQuery.Get("units") != "metric" {
		t.Errorf("unexpected query: %v", gotQuery)
	}

	if obs.Name != "Cape Town" || obs.TemperatureC != 18.3 || obs.Humidity != 72 {
		t.Errorf("unexpected observation: %+v", obs)
	}
	// Raw provider casing is preserved for the comparison view.
	if obs.Description != "light rain" {
		t.Errorf("Description = %q, want lowercase provider text", obs.Description)
	}
	if obs.Icon != "10d" {
		t.Errorf("Icon = %q", obs.Icon)
	}
}
