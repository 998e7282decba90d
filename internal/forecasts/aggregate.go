package forecasts

import (
	"sort"
	"time"

	"weatherdash/internal/types"
)

// Aggregate buckets a normalized 3-hour series into one record per calendar
// day and returns the records in ascending date order. The bucket date is
// the date component of each point's own timestamp, which already carries
// the feed-reported zone offset; no further zone conversion happens here.
//
// Each record holds the day's temperature min/mean/max, mean humidity, mean
// wind speed, and the modal description. An empty input produces an empty
// output.
func Aggregate(points []types.NormalizedForecastPoint) []types.DailyAggregate {
	buckets := make(map[string][]types.NormalizedForecastPoint)
	dates := make([]string, 0)
	for _, p := range points {
		date := p.Timestamp.Format(time.DateOnly)
		if _, ok := buckets[date]; !ok {
			dates = append(dates, date)
		}
		buckets[date] = append(buckets[date], p)
	}
	sort.Strings(dates)

	out := make([]types.DailyAggregate, 0, len(dates))
	for _, date := range dates {
		out = append(out, aggregateDay(date, buckets[date]))
	}
	return out
}

// aggregateDay reduces one day's samples to a single record. The input is
// never empty.
func aggregateDay(date string, points []types.NormalizedForecastPoint) types.DailyAggregate {
	agg := types.DailyAggregate{
		Date:    date,
		TempMin: points[0].Temperature,
		TempMax: points[0].Temperature,
	}
	var tempSum, humiditySum, windSum float64
	for _, p := range points {
		if p.Temperature < agg.TempMin {
			agg.TempMin = p.Temperature
		}
		if p.Temperature > agg.TempMax {
			agg.TempMax = p.Temperature
		}
		tempSum += p.Temperature
		humiditySum += p.Humidity
		windSum += p.WindSpeed
	}
	n := float64(len(points))
	agg.TempMean = tempSum / n
	agg.Humidity = humiditySum / n
	agg.WindSpeed = windSum / n
	agg.Description = modalDescription(points)
	return agg
}

// modalDescription returns the most frequent description in the bucket.
// Ties resolve to the description encountered first.
func modalDescription(points []types.NormalizedForecastPoint) string {
	counts := make(map[string]int, len(points))
	order := make([]string, 0, len(points))
	for _, p := range points {
		if _, ok := counts[p.Description]; !ok {
			order = append(order, p.Description)
		}
		counts[p.Description]++
	}
	best := order[0]
	for _, d := range order[1:] {
		if counts[d] > counts[best] {
			best = d
		}
	}
	return best
}
