// Package climate implements the historical climate path: resolve a city,
// enrich it with sunrise/sunset times, fetch the provider's fixed daily
// archive, and filter it to the caller's date range.
package climate

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"weatherdash/internal/types"
)

// Geocoder resolves a free-text city name to a coordinate.
type Geocoder interface {
	Geocode(ctx context.Context, city string) (types.Location, error)
}

// SunProvider returns sunrise and sunset instants for a coordinate.
type SunProvider interface {
	Times(ctx context.Context, lat, lon float64) (types.SunTimes, error)
}

// ArchiveProvider returns the fixed-window daily climate archive for a
// coordinate.
type ArchiveProvider interface {
	DailyArchive(ctx context.Context, lat, lon float64) ([]types.ClimateDay, error)
}

// ClimateService defines the business logic interface for the historical
// climate path.
type ClimateService interface {
	GetDailyHistory(ctx context.Context, city string, start, end time.Time) (*types.ClimateHistory, error)
}

// climateService is the concrete implementation of ClimateService.
type climateService struct {
	geocoder Geocoder
	sun      SunProvider
	archive  ArchiveProvider
	logger   *slog.Logger
}

// NewClimateService creates a ClimateService with the provided dependencies.
// logger falls back to the default logger when nil.
func NewClimateService(geocoder Geocoder, sun SunProvider, archive ArchiveProvider, logger *slog.Logger) ClimateService {
	if logger == nil {
		logger = slog.Default()
	}
	return &climateService{
		geocoder: geocoder,
		sun:      sun,
		archive:  archive,
		logger:   logger,
	}
}

// GetDailyHistory runs the historical path for one render:
//  1. Validate the city and the date range against the archive window.
//  2. Resolve the city to a coordinate; a miss is fatal.
//  3. Fetch sunrise/sunset; a failure degrades to a warning.
//  4. Fetch the daily archive; a failure is fatal.
//  5. Filter the series to the inclusive [start, end] range.
func (s *climateService) GetDailyHistory(ctx context.Context, city string, start, end time.Time) (*types.ClimateHistory, error) {
	if err := validateHistoryInput(city, start, end); err != nil {
		return nil, err
	}

	loc, err := s.geocoder.Geocode(ctx, city)
	if err != nil {
		return nil, err
	}

	history := &types.ClimateHistory{Location: loc}

	sun, err := s.sun.Times(ctx, loc.Lat, loc.Lon)
	if err != nil {
		history.Warnings = append(history.Warnings, warningMessage(err))
		s.logger.WarnContext(ctx, "sunrise/sunset enrichment failed",
			"city", city,
			"error", err,
		)
	} else {
		history.Sun = &sun
	}

	days, err := s.archive.DailyArchive(ctx, loc.Lat, loc.Lon)
	if err != nil {
		return nil, err
	}
	history.Days = filterRange(days, start, end)

	s.logger.InfoContext(ctx, "climate history assembled",
		"city", city,
		"days", len(history.Days),
		"warnings", len(history.Warnings),
	)
	return history, nil
}

// validateHistoryInput rejects bad inputs before any network call.
func validateHistoryInput(city string, start, end time.Time) error {
	if city == "" {
		return types.NewAppError(types.ErrCodeValidationMissingCity, "city must not be empty", nil)
	}
	return types.ValidateClimateRange(start, end)
}

// filterRange keeps the days inside the inclusive [start, end] range. Dates
// are ISO strings, so the comparison is plain string ordering.
func filterRange(days []types.ClimateDay, start, end time.Time) []types.ClimateDay {
	startDate := start.Format(time.DateOnly)
	endDate := end.Format(time.DateOnly)
	out := make([]types.ClimateDay, 0, len(days))
	for _, d := range days {
		if d.Date >= startDate && d.Date <= endDate {
			out = append(out, d)
		}
	}
	return out
}

// warningMessage extracts the user-facing message from a soft failure.
func warningMessage(err error) string {
	var appErr *types.AppError
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return "Could not fetch sunrise/sunset data."
}
