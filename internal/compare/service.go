// Package compare implements the two-city comparison path: each city is
// resolved and snapshotted independently, then the pair is composed into one
// set with a naive coordinate midpoint. It also serves single-city current
// conditions, which reuse the same provider chain minus the population
// lookup.
package compare

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"weatherdash/internal/forecasts"
	"weatherdash/internal/types"
)

// compareFailureMessage is the aggregate error shown when either city's
// fetch fails. The comparison never renders one-sided.
const compareFailureMessage = "Could not fetch data for one or both cities. Please check the city names."

// WeatherClient is the slice of the weather provider the composer needs.
type WeatherClient interface {
	Geocode(ctx context.Context, city string) (types.Location, error)
	CurrentByCoord(ctx context.Context, lat, lon float64) (types.CurrentObservation, error)
}

// PopulationClient looks up a city's population count.
type PopulationClient interface {
	Population(ctx context.Context, city string) (types.Population, error)
}

// CompareService defines the business logic interface for the comparison and
// current-conditions paths.
type CompareService interface {
	Compare(ctx context.Context, city1, city2 string) (*types.ComparisonSet, error)
	GetCurrent(ctx context.Context, city string, unit types.Unit) (*types.CurrentConditions, error)
}

// compareService is the concrete implementation of CompareService.
type compareService struct {
	weather    WeatherClient
	population PopulationClient
	logger     *slog.Logger
}

// NewCompareService creates a CompareService with the provided dependencies.
// logger falls back to the default logger when nil.
func NewCompareService(weather WeatherClient, population PopulationClient, logger *slog.Logger) CompareService {
	if logger == nil {
		logger = slog.Default()
	}
	return &compareService{
		weather:    weather,
		population: population,
		logger:     logger,
	}
}

// Compare resolves both cities and composes the comparison set. Both cities
// are always fetched; failures are evaluated afterwards, so a miss on the
// first city does not short-circuit the second. Any failure on either side
// collapses the whole comparison.
func (s *compareService) Compare(ctx context.Context, city1, city2 string) (*types.ComparisonSet, error) {
	if err := validateCity(city1, "city1"); err != nil {
		return nil, err
	}
	if err := validateCity(city2, "city2"); err != nil {
		return nil, err
	}

	record1, err1 := s.cityRecord(ctx, city1)
	record2, err2 := s.cityRecord(ctx, city2)
	if err1 != nil || err2 != nil {
		cause := err1
		if cause == nil {
			cause = err2
		}
		s.logger.WarnContext(ctx, "comparison incomplete",
			"city1", city1,
			"city2", city2,
			"error", cause,
		)
		return nil, types.NewAppError(types.ErrCodeCompareIncomplete, compareFailureMessage, cause)
	}

	set := &types.ComparisonSet{
		Records: [2]types.CityWeatherRecord{record1, record2},
		Midpoint: types.Location{
			Lat: (record1.Lat + record2.Lat) / 2,
			Lon: (record1.Lon + record2.Lon) / 2,
		},
		PopulationComparable: record1.Population.Available && record2.Population.Available,
	}

	s.logger.InfoContext(ctx, "comparison composed",
		"city1", record1.City,
		"city2", record2.City,
		"population_comparable", set.PopulationComparable,
	)
	return set, nil
}

// GetCurrent returns one city's current conditions in the requested unit.
func (s *compareService) GetCurrent(ctx context.Context, city string, unit types.Unit) (*types.CurrentConditions, error) {
	if err := validateCity(city, "city"); err != nil {
		return nil, err
	}
	if !unit.Valid() {
		return nil, types.NewAppError(types.ErrCodeValidationInvalidUnit,
			fmt.Sprintf("unit must be %q or %q", types.UnitCelsius, types.UnitFahrenheit), nil)
	}

	loc, err := s.weather.Geocode(ctx, city)
	if err != nil {
		return nil, err
	}
	obs, err := s.weather.CurrentByCoord(ctx, loc.Lat, loc.Lon)
	if err != nil {
		return nil, err
	}

	temp := obs.TemperatureC
	if unit == types.UnitFahrenheit {
		temp = forecasts.CelsiusToFahrenheit(temp)
	}

	return &types.CurrentConditions{
		City:        titleCity(city),
		Lat:         loc.Lat,
		Lon:         loc.Lon,
		Temperature: temp,
		Unit:        unit,
		Humidity:    obs.Humidity,
		Conditions:  obs.Description,
		Icon:        obs.Icon,
		IconURL:     types.IconURLLarge(obs.Icon),
	}, nil
}

// cityRecord resolves one city end to end: coordinates, current conditions,
// then the population enrichment. A failed population lookup degrades to the
// unavailable sentinel; everything else is fatal for the record.
func (s *compareService) cityRecord(ctx context.Context, city string) (types.CityWeatherRecord, error) {
	loc, err := s.weather.Geocode(ctx, city)
	if err != nil {
		return types.CityWeatherRecord{}, err
	}

	obs, err := s.weather.CurrentByCoord(ctx, loc.Lat, loc.Lon)
	if err != nil {
		return types.CityWeatherRecord{}, err
	}

	pop, err := s.population.Population(ctx, city)
	if err != nil {
		s.logger.WarnContext(ctx, "population lookup failed",
			"city", city,
			"error", err,
		)
		pop = types.PopulationUnavailable
	}

	return types.CityWeatherRecord{
		City:         titleCity(city),
		Lat:          loc.Lat,
		Lon:          loc.Lon,
		Population:   pop,
		TemperatureC: obs.TemperatureC,
		Humidity:     obs.Humidity,
		Conditions:   obs.Description,
		Icon:         obs.Icon,
	}, nil
}

// validateCity rejects empty or oversized city parameters before any
// network call.
func validateCity(city, param string) error {
	if strings.TrimSpace(city) == "" {
		return types.NewAppError(types.ErrCodeValidationMissingCity,
			fmt.Sprintf("%s must not be empty", param), nil)
	}
	if len(city) > types.MaxCityNameLength {
		return types.NewAppError(types.ErrCodeValidationInvalidQuery,
			fmt.Sprintf("%s must be at most %d characters", param, types.MaxCityNameLength), nil)
	}
	return nil
}

// titleCity renders a city label the way the dashboard displays it. The
// label keeps the caller's spelling, title-cased.
func titleCity(city string) string {
	return cases.Title(language.English).String(city)
}
