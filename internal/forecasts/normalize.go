package forecasts

import (
	"weatherdash/internal/types"
)

// SamplesPerDay is the upstream feed cadence: one sample every three hours,
// eight per day.
const SamplesPerDay = 8

// Truncate limits a raw series to the first days*SamplesPerDay samples.
// A series shorter than the limit passes through unchanged.
func Truncate(points []types.ForecastPoint, days int) []types.ForecastPoint {
	limit := days * SamplesPerDay
	if limit >= len(points) {
		return points
	}
	return points[:limit]
}

// CelsiusToFahrenheit converts a Celsius temperature to Fahrenheit.
func CelsiusToFahrenheit(c float64) float64 {
	return c*9/5 + 32
}

// Normalize converts a raw series to the requested unit and derives each
// point's icon URL. Celsius is the identity conversion; no rounding is
// applied. The input slice is never mutated.
func Normalize(points []types.ForecastPoint, unit types.Unit) []types.NormalizedForecastPoint {
	out := make([]types.NormalizedForecastPoint, 0, len(points))
	for _, p := range points {
		temp := p.TemperatureC
		if unit == types.UnitFahrenheit {
			temp = CelsiusToFahrenheit(temp)
		}
		out = append(out, types.NormalizedForecastPoint{
			Timestamp:   p.Timestamp,
			Temperature: temp,
			Humidity:    p.Humidity,
			WindSpeed:   p.WindSpeed,
			Description: p.Description,
			Icon:        p.Icon,
			IconURL:     types.IconURL(p.Icon),
		})
	}
	return out
}
