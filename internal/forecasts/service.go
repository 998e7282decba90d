// Package forecasts implements the primary forecast pipeline: fetch a city's
// 3-hour forecast series, normalize temperatures to the requested unit,
// bucket the series into daily aggregates, and evaluate threshold alerts.
//
// The network stages (geocoding and the feed fetch) sit behind memoizing
// wrappers; the transformation stages are pure functions over the fetched
// series and are exercised offline in tests.
package forecasts

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"weatherdash/internal/types"
)

// Geocoder resolves a free-text city name to a coordinate.
type Geocoder interface {
	Geocode(ctx context.Context, city string) (types.Location, error)
}

// FeedFetcher retrieves the raw 3-hour forecast series for a city.
type FeedFetcher interface {
	Forecast(ctx context.Context, city string) (types.ForecastFeed, error)
}

// AlertPublisher hands fired alerts to the out-of-band notification path.
type AlertPublisher interface {
	Publish(ctx context.Context, event types.AlertEvent) error
}

// ForecastService defines the business logic interface for the forecast path.
type ForecastService interface {
	GetForecast(ctx context.Context, city string, days int, unit types.Unit) (*types.ForecastBundle, error)
}

// forecastService is the concrete implementation of ForecastService.
type forecastService struct {
	geocoder  Geocoder
	feed      FeedFetcher
	publisher AlertPublisher
	logger    *slog.Logger
	clock     types.Clock
}

// NewForecastService creates a ForecastService with the provided
// dependencies. publisher may be nil when no alert queue is configured;
// logger and clock fall back to defaults when nil.
func NewForecastService(
	geocoder Geocoder,
	feed FeedFetcher,
	publisher AlertPublisher,
	logger *slog.Logger,
	clock types.Clock,
) ForecastService {
	if logger == nil {
		logger = slog.Default()
	}
	if clock == nil {
		clock = types.RealClock{}
	}
	return &forecastService{
		geocoder:  geocoder,
		feed:      feed,
		publisher: publisher,
		logger:    logger,
		clock:     clock,
	}
}

// GetForecast runs the full pipeline for one render:
//  1. Validate the city, day count, and unit.
//  2. Resolve the city to a coordinate (memoized lookup).
//  3. Fetch the 3-hour series (memoized, keyed by city alone).
//  4. Truncate to days*8 samples and normalize to the requested unit.
//  5. Aggregate the series per day and evaluate threshold alerts.
//  6. Publish fired alerts to the alert queue, best effort.
//
// The render is all-or-nothing: any failure in steps 2-3 aborts it with no
// partial result. Step 6 never fails the render.
func (s *forecastService) GetForecast(ctx context.Context, city string, days int, unit types.Unit) (*types.ForecastBundle, error) {
	if err := validateForecastInput(city, days, unit); err != nil {
		return nil, err
	}

	location, err := s.geocoder.Geocode(ctx, city)
	if err != nil {
		return nil, err
	}

	feed, err := s.feed.Forecast(ctx, city)
	if err != nil {
		return nil, err
	}

	normalized := Normalize(Truncate(feed.Points, days), unit)
	bundle := &types.ForecastBundle{
		Location: location,
		Unit:     unit,
		Sun:      sunTimes(feed),
		Points:   normalized,
		Daily:    Aggregate(normalized),
		Alerts:   EvaluateAlerts(normalized, unit),
	}

	s.logger.InfoContext(ctx, "forecast render complete",
		"city", location.Name,
		"days", days,
		"unit", string(unit),
		"points", len(bundle.Points),
		"alerts", len(bundle.Alerts),
	)

	if len(bundle.Alerts) > 0 {
		s.publishAlerts(ctx, location.Name, unit, bundle.Alerts)
	}

	return bundle, nil
}

// validateForecastInput rejects out-of-range renders before any network call.
func validateForecastInput(city string, days int, unit types.Unit) error {
	if strings.TrimSpace(city) == "" {
		return types.NewAppError(types.ErrCodeValidationMissingCity, "city must not be empty", nil)
	}
	if len(city) > types.MaxCityNameLength {
		return types.NewAppError(types.ErrCodeValidationInvalidQuery,
			fmt.Sprintf("city must be at most %d characters", types.MaxCityNameLength), nil)
	}
	if err := types.ValidateForecastDays(days); err != nil {
		return err
	}
	if !unit.Valid() {
		return types.NewAppError(types.ErrCodeValidationInvalidUnit,
			fmt.Sprintf("unit must be %q or %q", types.UnitCelsius, types.UnitFahrenheit), nil)
	}
	return nil
}

// sunTimes lifts the feed's optional sunrise/sunset block. The feed carries
// either both instants or neither.
func sunTimes(feed types.ForecastFeed) *types.SunTimes {
	if feed.Sunrise.IsZero() || feed.Sunset.IsZero() {
		return nil
	}
	return &types.SunTimes{Sunrise: feed.Sunrise, Sunset: feed.Sunset}
}

// publishAlerts forwards fired alerts to the alert queue. Publish failures
// are logged and swallowed; alert delivery never fails a render.
func (s *forecastService) publishAlerts(ctx context.Context, city string, unit types.Unit, alerts []types.Alert) {
	if s.publisher == nil {
		return
	}
	event := types.AlertEvent{
		EventID:   "evt_" + uuid.NewString(),
		City:      city,
		Unit:      unit,
		Alerts:    alerts,
		RequestID: types.GetRequestID(ctx),
		EmittedAt: s.clock.Now(),
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.WarnContext(ctx, "alert publish failed",
			"event_id", event.EventID,
			"city", city,
			"error", err,
		)
		return
	}
	s.logger.InfoContext(ctx, "alert event published",
		"event_id", event.EventID,
		"city", city,
		"alerts", len(alerts),
	)
}
