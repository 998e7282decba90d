// Package main implements the forecast-check CLI tool for smoke-testing the
// forecast pipeline against the live weather provider.
//
// Usage:
//
//	go run ./cmd/tools/forecast-check \
//	  --api-key=<key> --days=3 --unit=celsius \
//	  "Johannesburg" "Cape Town" "Durban"
//
// Environment variables (used as defaults when flags are not set):
//
//	OPENWEATHER_API_KEY  - weather provider API key
//	OPENWEATHER_BASE_URL - provider base URL override (local fakes)
//
// The tool runs the full pipeline (geocode, fetch, normalize, aggregate,
// alert evaluation) for each city concurrently and prints a one-line summary
// per city. It exits non-zero if any city fails.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"weatherdash/internal/external"
	"weatherdash/internal/forecasts"
	"weatherdash/internal/types"
)

// cityResult is the outcome of one city's pipeline run.
type cityResult struct {
	city    string
	bundle  *types.ForecastBundle
	elapsed time.Duration
	err     error
}

func main() {
	apiKey := flag.String("api-key", os.Getenv("OPENWEATHER_API_KEY"), "weather provider API key (or OPENWEATHER_API_KEY env)")
	baseURL := flag.String("base-url", os.Getenv("OPENWEATHER_BASE_URL"), "provider base URL override (or OPENWEATHER_BASE_URL env)")
	days := flag.Int("days", types.DefaultForecastDays, "forecast days (1-5)")
	unitStr := flag.String("unit", string(types.UnitCelsius), "temperature unit: celsius or fahrenheit")
	concurrency := flag.Int("concurrency", 4, "maximum concurrent city checks")
	timeout := flag.Duration("timeout", 30*time.Second, "overall deadline for the whole run")

	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))

	cities := flag.Args()
	if len(cities) == 0 {
		fmt.Fprintln(os.Stderr, "usage: forecast-check [flags] CITY [CITY...]")
		flag.PrintDefaults()
		os.Exit(2)
	}
	if *apiKey == "" {
		logger.Error("--api-key or OPENWEATHER_API_KEY is required")
		os.Exit(1)
	}
	unit, err := types.ParseUnit(*unitStr)
	if err != nil {
		logger.Error("invalid unit", "unit", *unitStr)
		os.Exit(1)
	}

	client := external.NewOpenWeatherClient(
		&http.Client{Timeout: 10 * time.Second},
		external.OpenWeatherClientConfig{
			APIKey:  *apiKey,
			BaseURL: *baseURL,
			Logger:  logger,
		},
	)
	service := forecasts.NewForecastService(client, client, nil, logger, nil)

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	results := checkCities(ctx, service, cities, *days, unit, *concurrency)

	failed := 0
	for _, res := range results {
		if res.err != nil {
			failed++
			fmt.Printf("FAIL  %-20s %s (%.2fs)\n", res.city, res.err, res.elapsed.Seconds())
			continue
		}
		fmt.Printf("OK    %-20s %d points, %d days, %d alerts%s (%.2fs)\n",
			res.city,
			len(res.bundle.Points),
			len(res.bundle.Daily),
			len(res.bundle.Alerts),
			alertSummary(res.bundle.Alerts),
			res.elapsed.Seconds(),
		)
	}

	if failed > 0 {
		fmt.Printf("%d of %d cities failed\n", failed, len(results))
		os.Exit(1)
	}
}

// checkCities fans the pipeline out over the city list with bounded
// concurrency and returns the results sorted by city name.
func checkCities(
	ctx context.Context,
	service forecasts.ForecastService,
	cities []string,
	days int,
	unit types.Unit,
	concurrency int,
) []cityResult {
	var (
		mu      sync.Mutex
		results = make([]cityResult, 0, len(cities))
	)

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for _, city := range cities {
		city := city
		g.Go(func() error {
			start := time.Now()
			bundle, err := service.GetForecast(gCtx, city, days, unit)

			mu.Lock()
			results = append(results, cityResult{
				city:    city,
				bundle:  bundle,
				elapsed: time.Since(start),
				err:     err,
			})
			mu.Unlock()

			// Failures are reported per city; do not cancel the group.
			return nil
		})
	}
	// The workers never return errors, so Wait only propagates context
	// cancellation, which the per-city errors already reflect.
	_ = g.Wait()

	sort.Slice(results, func(i, j int) bool { return results[i].city < results[j].city })
	return results
}

// alertSummary renders fired alert kinds as a suffix, or nothing when quiet.
func alertSummary(alerts []types.Alert) string {
	if len(alerts) == 0 {
		return ""
	}
	kinds := make([]string, len(alerts))
	for i, a := range alerts {
		kinds[i] = string(a.Kind)
	}
	return " [" + strings.Join(kinds, ", ") + "]"
}
