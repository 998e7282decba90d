// Package config holds the immutable process configuration for the
// weatherdash service, resolved once at startup from (in descending
// priority) the OS environment, an optional .env file, and AWS SSM
// Parameter Store. A missing required value or malformed entry aborts
// startup rather than surfacing later as a broken request.
package config

import (
	"time"

	"weatherdash/internal/types"
)

// SecretString aliases the redacted secret type so config structs read
// naturally; see types.SecretString for the masking behavior.
type SecretString = types.SecretString

// Config is the root of the configuration tree. Components take only the
// section they need, never the whole struct.
type Config struct {
	// System Metadata
	Environment string `envconfig:"APP_ENV" validate:"required,oneof=local dev staging prod"`
	Service     string `envconfig:"SERVICE_NAME" default:"weatherdash-api"`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info"`

	// Domain Configurations
	Server        ServerConfig
	Upstream      UpstreamConfig
	Cache         CacheConfig
	AWS           AWSConfig
	Security      SecurityConfig
	Observability ObservabilityConfig

	// Filled from ldflags, not the environment.
	Build BuildInfo
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port string `envconfig:"PORT" default:"8080"`

	// RequestTimeout bounds the total time spent handling a single request.
	// Zero disables the per-request deadline, matching the historical
	// behavior where slow secondary providers could stall a render for as
	// long as the client was willing to wait.
	RequestTimeout time.Duration `envconfig:"SERVER_REQUEST_TIMEOUT" default:"0s"`
}

// UpstreamConfig holds credentials and base URLs for the external weather
// data providers. Base URLs are overridable so tests and local stacks can
// point the clients at fakes.
type UpstreamConfig struct {
	OpenWeatherAPIKey SecretString `envconfig:"OPENWEATHER_API_KEY" validate:"required"`

	OpenWeatherBaseURL   string `envconfig:"OPENWEATHER_BASE_URL" default:"https://api.openweathermap.org" validate:"required,url"`
	SunriseSunsetBaseURL string `envconfig:"SUNRISE_SUNSET_BASE_URL" default:"https://api.sunrise-sunset.org" validate:"required,url"`
	NASAPowerBaseURL     string `envconfig:"NASA_POWER_BASE_URL" default:"https://power.larc.nasa.gov" validate:"required,url"`
	GeoNamesBaseURL      string `envconfig:"GEONAMES_BASE_URL" default:"http://api.geonames.org" validate:"required,url"`

	GeoNamesUsername string `envconfig:"GEONAMES_USERNAME" default:"demo"`

	// OpenWeatherTimeout applies to the primary provider only. The
	// secondary providers (sunrise-sunset, NASA POWER, GeoNames) run
	// without a client timeout; see the health endpoint notes.
	OpenWeatherTimeout time.Duration `envconfig:"OPENWEATHER_TIMEOUT" default:"10s"`
}

// CacheConfig holds tuning for the in-process response caches.
type CacheConfig struct {
	// TTL is how long geocoding and forecast fetch results are reused
	// before a fresh upstream call is made.
	TTL time.Duration `envconfig:"CACHE_TTL" default:"1h"`
}

// AWSConfig holds AWS resource identifiers and regional configuration.
type AWSConfig struct {
	Region string `envconfig:"AWS_REGION" default:"us-east-1"`

	// AlertQueueURL is the SQS queue that receives fired weather alerts.
	// Empty disables alert publishing.
	AlertQueueURL string `envconfig:"ALERT_QUEUE_URL" validate:"omitempty,url"`

	// Endpoint override for LocalStack; empty in real deployments.
	EndpointURL string `envconfig:"AWS_ENDPOINT_URL"`
}

// SecurityConfig holds CORS settings for the browser dashboard.
type SecurityConfig struct {
	CorsAllowedOrigins []string `envconfig:"CORS_ALLOWED_ORIGINS" default:"*"`
}

// ObservabilityConfig controls CloudWatch metric emission.
type ObservabilityConfig struct {
	MetricNamespace string `envconfig:"METRIC_NAMESPACE" default:"Weatherdash"`
	EnableMetrics   bool   `envconfig:"ENABLE_METRICS" default:"false"`
}

// BuildInfo carries the version stamp baked in at link time.
type BuildInfo struct {
	Version   string
	Commit    string
	BuildTime string
}

// ConfigErrorType names the load stage that failed, for startup logs.
type ConfigErrorType string

const (
	// ErrSSMResolution covers failures fetching secrets from Parameter Store.
	ErrSSMResolution ConfigErrorType = "SSM_FAILURE"
	// ErrValidation covers struct-tag validation failures after loading.
	ErrValidation ConfigErrorType = "VALIDATION_FAILED"
	// ErrParsing covers envconfig failures turning variables into typed fields.
	ErrParsing ConfigErrorType = "PARSING_FAILED"
)
