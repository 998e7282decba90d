package types

import (
	"fmt"
	"time"
)

// Location is a geographic coordinate with an optional display name.
type Location struct {
	Name string  `json:"name,omitempty"`
	Lat  float64 `json:"lat"`
	Lon  float64 `json:"lon"`
}

// ForecastPoint is one raw 3-hour forecast sample as fetched from the feed.
// Temperature is always Celsius at this stage; the timestamp carries the
// feed-reported zone offset. Immutable once fetched.
type ForecastPoint struct {
	Timestamp    time.Time `json:"timestamp"`
	TemperatureC float64   `json:"temperature_c"`
	Humidity     float64   `json:"humidity_percent"`
	WindSpeed    float64   `json:"wind_speed_ms"`
	Description  string    `json:"description"`
	Icon         string    `json:"icon"`
}

// NormalizedForecastPoint is a ForecastPoint with its temperature expressed
// in the unit chosen for the render. Derived, never mutated. IconURL is the
// ready-to-embed image URL for the point's icon code.
type NormalizedForecastPoint struct {
	Timestamp   time.Time `json:"timestamp"`
	Temperature float64   `json:"temperature"`
	Humidity    float64   `json:"humidity_percent"`
	WindSpeed   float64   `json:"wind_speed_ms"`
	Description string    `json:"description"`
	Icon        string    `json:"icon"`
	IconURL     string    `json:"icon_url"`
}

// DailyAggregate is one calendar day of bucketed forecast samples.
// Temperatures are in the unit the points were normalized to.
// Invariant: TempMin <= TempMean <= TempMax.
type DailyAggregate struct {
	Date        string  `json:"date"`
	TempMin     float64 `json:"temp_min"`
	TempMean    float64 `json:"temp_mean"`
	TempMax     float64 `json:"temp_max"`
	Humidity    float64 `json:"humidity_percent"`
	WindSpeed   float64 `json:"wind_speed_ms"`
	Description string  `json:"description"`
}

// Alert is a threshold warning derived from a forecast pass. Alerts are
// transient: they have no identity beyond the evaluation that produced them.
type Alert struct {
	Kind    AlertKind `json:"kind"`
	Message string    `json:"message"`
}

// SunTimes holds sunrise and sunset instants for a location.
type SunTimes struct {
	Sunrise time.Time `json:"sunrise"`
	Sunset  time.Time `json:"sunset"`
}

// ForecastFeed is the raw result of one forecast fetch: the ordered sample
// series plus the feed's city block metadata. TZOffset is the feed-reported
// zone shift in seconds east of UTC; point timestamps already carry it.
type ForecastFeed struct {
	City     string
	Points   []ForecastPoint
	Sunrise  time.Time // zero when the feed omits it
	Sunset   time.Time // zero when the feed omits it
	TZOffset int
}

// CurrentObservation is the raw current-weather snapshot as fetched from the
// provider: metric temperature and the provider's lowercase description.
type CurrentObservation struct {
	Name         string
	Lat          float64
	Lon          float64
	TemperatureC float64
	Humidity     float64
	Description  string
	Icon         string
}

// ForecastBundle is the full output of the primary pipeline for one render:
// normalized points, daily aggregates, alerts, and location metadata.
type ForecastBundle struct {
	Location Location                  `json:"location"`
	Unit     Unit                      `json:"unit"`
	Sun      *SunTimes                 `json:"sun,omitempty"`
	Points   []NormalizedForecastPoint `json:"points"`
	Daily    []DailyAggregate          `json:"daily"`
	Alerts   []Alert                   `json:"alerts"`
}

// Population carries a city's population count, which may be unavailable.
// Available distinguishes "the service reported no usable value" from a
// genuine count of zero.
type Population struct {
	Value     int64 `json:"value,omitempty"`
	Available bool  `json:"available"`
}

// PopulationUnavailable is the sentinel for a failed or empty lookup.
var PopulationUnavailable = Population{Available: false}

// String renders the count with thousands separators, or the unavailable
// placeholder shown to users.
func (p Population) String() string {
	if !p.Available {
		return "Data not available"
	}
	return groupDigits(p.Value)
}

// groupDigits formats n with comma thousands separators.
func groupDigits(n int64) string {
	s := fmt.Sprintf("%d", n)
	if n < 0 {
		return "-" + groupDigits(-n)
	}
	if len(s) <= 3 {
		return s
	}
	var out []byte
	lead := len(s) % 3
	if lead > 0 {
		out = append(out, s[:lead]...)
	}
	for i := lead; i < len(s); i += 3 {
		if len(out) > 0 {
			out = append(out, ',')
		}
		out = append(out, s[i:i+3]...)
	}
	return string(out)
}

// CityWeatherRecord is one city's current snapshot used for side-by-side
// comparison: identity, population, and current conditions. Temperatures are
// metric; the comparison view does not unit-convert. Conditions text is kept
// exactly as the provider delivers it (lowercase).
type CityWeatherRecord struct {
	City         string     `json:"city"`
	Lat          float64    `json:"lat"`
	Lon          float64    `json:"lon"`
	Population   Population `json:"population"`
	TemperatureC float64    `json:"temperature_c"`
	Humidity     float64    `json:"humidity_percent"`
	Conditions   string     `json:"conditions"`
	Icon         string     `json:"icon"`
}

// ComparisonSet merges two city records for side-by-side rendering.
// Midpoint is the plain arithmetic average of the two coordinates, not a
// geodesic midpoint; it drifts for distant pairs and breaks across the
// antimeridian. PopulationComparable tells chart consumers whether both
// records carry numeric populations; when false they must fall back to a
// temperature-only comparison.
type ComparisonSet struct {
	Records              [2]CityWeatherRecord `json:"records"`
	Midpoint             Location             `json:"midpoint"`
	PopulationComparable bool                 `json:"population_comparable"`
}

// CurrentConditions is the current-weather snapshot for a single city in the
// requested unit. IconURL points at the large icon rendition used for the
// featured display.
type CurrentConditions struct {
	City        string  `json:"city"`
	Lat         float64 `json:"lat"`
	Lon         float64 `json:"lon"`
	Temperature float64 `json:"temperature"`
	Unit        Unit    `json:"unit"`
	Humidity    float64 `json:"humidity_percent"`
	Conditions  string  `json:"conditions"`
	Icon        string  `json:"icon"`
	IconURL     string  `json:"icon_url"`
}

// ClimateDay is one day of the historical climate series. Values are passed
// through from the provider verbatim, including its -999 fill markers.
type ClimateDay struct {
	Date            string  `json:"date"`
	TemperatureC    float64 `json:"temperature_c"`
	PrecipitationMM float64 `json:"precipitation_mm"`
	Humidity        float64 `json:"humidity_percent"`
}

// ClimateHistory is the output of the historical climate path: the filtered
// daily series plus soft-failure warnings accumulated along the way.
type ClimateHistory struct {
	Location Location     `json:"location"`
	Sun      *SunTimes    `json:"sun,omitempty"`
	Days     []ClimateDay `json:"days"`
	Warnings []string     `json:"warnings,omitempty"`
}

// Weather icon URL construction. Codes come from the forecast feed
// (e.g. "10d"); the image host serves fixed raster sizes.
const iconURLBase = "http://openweathermap.org/img/wn/"

// IconURL returns the standard (2x) icon image URL for a feed icon code.
func IconURL(code string) string {
	return iconURLBase + code + "@2x.png"
}

// IconURLLarge returns the large (4x) icon image URL used for the featured
// current-conditions display.
func IconURLLarge(code string) string {
	return iconURLBase + code + "@4x.png"
}
