package types

import (
	"fmt"
	"time"
)

// Validation constraint constants.
const (
	MinForecastDays     = 1
	MaxForecastDays     = 5
	DefaultForecastDays = 3
	MaxCityNameLength   = 120

	// The historical climate provider is queried for a fixed window; date
	// filters must fall inside it.
	ClimateWindowStart = "2022-01-01"
	ClimateWindowEnd   = "2024-12-31"
)

// DefaultUnit is the unit applied when a request omits the unit parameter.
const DefaultUnit = UnitCelsius

// ParseClimateDate parses a YYYY-MM-DD date filter value.
func ParseClimateDate(value string) (time.Time, error) {
	t, err := time.Parse(time.DateOnly, value)
	if err != nil {
		return time.Time{}, NewAppError(ErrCodeValidationInvalidDate,
			fmt.Sprintf("invalid date %q, expected YYYY-MM-DD", value), err)
	}
	return t, nil
}

// ValidateClimateRange checks that start <= end and both dates fall within
// the fixed climate window.
func ValidateClimateRange(start, end time.Time) error {
	if end.Before(start) {
		return NewAppError(ErrCodeValidationDateRange, "end date must not be before start date", nil)
	}
	windowStart, _ := time.Parse(time.DateOnly, ClimateWindowStart)
	windowEnd, _ := time.Parse(time.DateOnly, ClimateWindowEnd)
	if start.Before(windowStart) || end.After(windowEnd) {
		return NewAppError(ErrCodeValidationDateRange,
			fmt.Sprintf("date range must fall within %s to %s", ClimateWindowStart, ClimateWindowEnd), nil)
	}
	return nil
}

// ValidateForecastDays checks the requested day count against the supported
// range.
func ValidateForecastDays(days int) error {
	if days < MinForecastDays || days > MaxForecastDays {
		return NewAppError(ErrCodeValidationInvalidDays,
			fmt.Sprintf("days must be between %d and %d", MinForecastDays, MaxForecastDays), nil)
	}
	return nil
}

// ParseUnit maps a query parameter value onto a Unit, applying the default
// for an empty value.
func ParseUnit(value string) (Unit, error) {
	if value == "" {
		return DefaultUnit, nil
	}
	u := Unit(value)
	if !u.Valid() {
		return "", NewAppError(ErrCodeValidationInvalidUnit,
			fmt.Sprintf("unit must be %q or %q", UnitCelsius, UnitFahrenheit), nil)
	}
	return u, nil
}
