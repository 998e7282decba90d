// Package main is the entry point for the weatherdash API server.
//
// It loads configuration, constructs the upstream provider clients and the
// domain services (forecast pipeline, comparison composer, climate history),
// wires them into the core HTTP chassis, and serves until interrupted.
//
// Graceful shutdown is handled via OS signal interception (SIGINT, SIGTERM).
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/aws/aws-sdk-go-v2/service/sqs"

	"weatherdash/internal/api/handlers"
	"weatherdash/internal/climate"
	"weatherdash/internal/compare"
	"weatherdash/internal/config"
	"weatherdash/internal/core"
	"weatherdash/internal/external"
	"weatherdash/internal/forecasts"
	"weatherdash/internal/queue"
	"weatherdash/internal/telemetry"
	"weatherdash/internal/types"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

// run encapsulates the startup lifecycle so that main() can cleanly exit on error.
func run() error {
	// Load configuration. For local development the SecretProvider is nil
	// since SSM resolution is bypassed when APP_ENV=local.
	var provider config.SecretProvider
	if env := os.Getenv("APP_ENV"); env != "" && env != "local" {
		provider = config.NewSSMProvider(os.Getenv("AWS_REGION"))
	}
	cfg, err := config.LoadConfig(provider)
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	logger := newLogger(cfg.LogLevel)
	logger.Info("weatherdash API starting",
		"environment", cfg.Environment,
		"version", cfg.Build.Version,
		"commit", cfg.Build.Commit,
		"port", cfg.Server.Port,
	)

	// Upstream provider clients. Only the primary provider carries a client
	// timeout; the secondary providers run unbounded, which is why the
	// health endpoint reports their breaker state instead of probing them.
	primaryHTTP := &http.Client{Timeout: cfg.Upstream.OpenWeatherTimeout}
	secondaryHTTP := &http.Client{}

	openWeather := external.NewOpenWeatherClient(primaryHTTP, external.OpenWeatherClientConfig{
		APIKey:  cfg.Upstream.OpenWeatherAPIKey.Unmask(),
		BaseURL: cfg.Upstream.OpenWeatherBaseURL,
		Logger:  logger,
	})
	sunClient := external.NewSunClient(secondaryHTTP, external.SunClientConfig{
		BaseURL: cfg.Upstream.SunriseSunsetBaseURL,
		Logger:  logger,
	})
	powerClient := external.NewPowerClient(secondaryHTTP, external.PowerClientConfig{
		BaseURL: cfg.Upstream.NASAPowerBaseURL,
		Logger:  logger,
	})
	geoNames := external.NewGeoNamesClient(secondaryHTTP, external.GeoNamesClientConfig{
		Username: cfg.Upstream.GeoNamesUsername,
		BaseURL:  cfg.Upstream.GeoNamesBaseURL,
		Logger:   logger,
	})

	// Memoized lookups shared by the forecast and climate paths. The
	// comparison path reads the provider directly: current conditions go
	// stale faster than the cache TTL.
	clock := types.RealClock{}
	geocoder := forecasts.NewCachedGeocoder(openWeather, cfg.Cache.TTL, clock)
	feed := forecasts.NewCachedFeedFetcher(openWeather, cfg.Cache.TTL, clock)

	// AWS-backed extras are optional: alert publishing needs a queue URL,
	// request metrics need the explicit enable flag. Both share one SDK
	// config load.
	var publisher forecasts.AlertPublisher
	var metrics core.MetricsCollector = telemetry.NoopCollector{}
	if cfg.AWS.AlertQueueURL != "" || cfg.Observability.EnableMetrics {
		awsCfg, err := loadAWSConfig(context.Background(), cfg)
		if err != nil {
			return fmt.Errorf("loading AWS configuration: %w", err)
		}
		if cfg.AWS.AlertQueueURL != "" {
			publisher = queue.NewAlertPublisher(sqs.NewFromConfig(awsCfg), cfg.AWS.AlertQueueURL, logger)
		}
		if cfg.Observability.EnableMetrics {
			metrics = telemetry.NewCloudWatchCollector(
				cloudwatch.NewFromConfig(awsCfg),
				cfg.Observability.MetricNamespace,
				logger,
			)
		}
	}

	forecastSvc := forecasts.NewForecastService(geocoder, feed, publisher, logger, clock)
	compareSvc := compare.NewCompareService(openWeather, geoNames, logger)
	climateSvc := climate.NewClimateService(geocoder, sunClient, powerClient, logger)

	srv, err := core.NewServer(cfg, logger)
	if err != nil {
		return fmt.Errorf("creating server: %w", err)
	}
	srv.Metrics = metrics
	srv.HealthProbes = []core.HealthProbe{
		core.NewBreakerProbe(openWeather.Breaker()),
		core.NewBreakerProbe(sunClient.Breaker()),
		core.NewBreakerProbe(powerClient.Breaker()),
		core.NewBreakerProbe(geoNames.Breaker()),
	}

	forecastHandler := handlers.NewForecastHandler(forecastSvc, srv.Validator, logger)
	compareHandler := handlers.NewCompareHandler(compareSvc, srv.Validator, logger)
	climateHandler := handlers.NewClimateHandler(climateSvc, srv.Validator, logger)
	srv.V1RouteRegistrars = append(srv.V1RouteRegistrars,
		forecastHandler.RegisterRoutes,
		compareHandler.RegisterRoutes,
		climateHandler.RegisterRoutes,
	)

	srv.MountRoutes()

	return runHTTPServer(srv, cfg, logger)
}

// loadAWSConfig builds the shared SDK configuration, honoring the LocalStack
// endpoint override when AWS_ENDPOINT_URL is set.
func loadAWSConfig(ctx context.Context, cfg *config.Config) (aws.Config, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.AWS.Region),
	}
	if cfg.AWS.EndpointURL != "" {
		opts = append(opts, awsconfig.WithBaseEndpoint(cfg.AWS.EndpointURL))
	}
	return awsconfig.LoadDefaultConfig(ctx, opts...)
}

// runHTTPServer starts the server in standard HTTP mode with graceful shutdown.
func runHTTPServer(srv *core.Server, cfg *config.Config, logger *slog.Logger) error {
	addr := ":" + cfg.Server.Port

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	// Channel to capture server errors from ListenAndServe.
	serverErr := make(chan error, 1)

	go func() {
		logger.Info("HTTP server listening", "addr", addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	// Wait for shutdown signal or server error.
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-shutdown:
		logger.Info("shutdown signal received", "signal", sig.String())
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
	}

	// Graceful shutdown with a 10-second deadline.
	logger.Info("initiating graceful shutdown")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(ctx); err != nil {
		logger.Error("HTTP server shutdown error", "error", err)
	}

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server resource shutdown error", "error", err)
		return fmt.Errorf("server shutdown: %w", err)
	}

	logger.Info("server stopped cleanly")
	return nil
}

// newLogger creates a structured slog.Logger configured for the given log level.
func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "info":
		lvl = slog.LevelInfo
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}

	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level:     lvl,
		AddSource: false,
	})
	return slog.New(handler)
}
