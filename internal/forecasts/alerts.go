package forecasts

import (
	"fmt"

	"weatherdash/internal/types"
)

// Alert thresholds. Wind speed is always metres per second regardless of the
// temperature unit; the heat threshold follows the unit the series was
// normalized to.
const (
	// WindAlertThresholdMS is the wind speed above which a wind alert fires.
	WindAlertThresholdMS = 10.0

	// HeatAlertThresholdC is the heat threshold for a Celsius render.
	HeatAlertThresholdC = 35.0
	// HeatAlertThresholdF is the heat threshold for a Fahrenheit render.
	HeatAlertThresholdF = 95.0
)

// windAlertMessage is the rendered wind warning.
const windAlertMessage = "⚠ High wind alert: Wind speed exceeds 10 m/s in forecast!"

// EvaluateAlerts scans a normalized series for threshold breaches, wind
// first and then heat, each evaluated independently over the whole series.
// Comparisons are strict: a point exactly at a threshold does not fire.
// At most one alert per kind is produced no matter how many points breach.
func EvaluateAlerts(points []types.NormalizedForecastPoint, unit types.Unit) []types.Alert {
	alerts := []types.Alert{}

	for _, p := range points {
		if p.WindSpeed > WindAlertThresholdMS {
			alerts = append(alerts, types.Alert{
				Kind:    types.AlertKindWind,
				Message: windAlertMessage,
			})
			break
		}
	}

	threshold := HeatAlertThresholdC
	if unit == types.UnitFahrenheit {
		threshold = HeatAlertThresholdF
	}
	for _, p := range points {
		if p.Temperature > threshold {
			alerts = append(alerts, types.Alert{
				Kind:    types.AlertKindHeat,
				Message: fmt.Sprintf("🔥 Extreme heat warning: Temperatures above %.0f° expected!", threshold),
			})
			break
		}
	}

	return alerts
}
