// Configuration loading. The load path is: .env file (godotenv, optional)
// -> SSM secret resolution for *_SSM_PARAM pointer variables (skipped when
// APP_ENV=local) -> envconfig struct population -> validator. Directly-set
// environment variables always win over .env values, which win over SSM.

package config

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// ConfigError carries a load-failure category alongside the cause, so
// startup logs can distinguish a bad deploy (validation) from an AWS
// outage (SSM resolution).
type ConfigError struct {
	Type    ConfigErrorType
	Message string
	Err     error
}

func (e *ConfigError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Type, e.Message)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// A variable named X_SSM_PARAM holds the Parameter Store path whose value
// should be injected as X.
const ssmParamSuffix = "_SSM_PARAM"

// APP_ENV value under which SSM resolution is skipped entirely.
const localEnv = "local"

type envLookup func(key string) (string, bool)
type envSet func(key, value string) error
type environ func() []string

// loaderDeps abstracts the process environment so resolution logic can be
// tested against a map instead of real os.Setenv calls.
type loaderDeps struct {
	lookupEnv envLookup
	setEnv    envSet
	environ   environ
}

func defaultDeps() loaderDeps {
	return loaderDeps{
		lookupEnv: os.LookupEnv,
		setEnv:    os.Setenv,
		environ:   os.Environ,
	}
}

// LoadConfig builds the full Config from the environment, resolving SSM
// secret pointers through the given provider first. The provider may be nil
// for local development; outside local mode it is required whenever any
// *_SSM_PARAM variable is present.
func LoadConfig(provider SecretProvider) (*Config, error) {
	return loadConfigWithDeps(provider, defaultDeps())
}

func loadConfigWithDeps(provider SecretProvider, deps loaderDeps) (*Config, error) {
	// All timestamps in the system are UTC; pinning time.Local keeps any
	// stray time.Now() honest.
	time.Local = time.UTC

	// Optional .env for local development. godotenv never overrides
	// variables that are already set.
	_ = godotenv.Load()

	appEnv, _ := deps.lookupEnv("APP_ENV")
	if appEnv != localEnv {
		if err := resolveSSMParams(provider, deps); err != nil {
			return nil, err
		}
	}

	// Empty prefix: envconfig tags name the variables verbatim.
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, &ConfigError{
			Type:    ErrParsing,
			Message: "failed to process environment configuration",
			Err:     err,
		}
	}

	cfg.Build = NewBuildInfo()

	if err := validator.New().Struct(cfg); err != nil {
		return nil, &ConfigError{
			Type:    ErrValidation,
			Message: "configuration validation failed",
			Err:     err,
		}
	}

	return &cfg, nil
}

// ResolveSecrets runs only the SSM injection step, for entry points that
// read individual variables with os.Getenv instead of going through
// LoadConfig (the alert worker does this). Call it before any os.Getenv
// that expects a resolved secret. No-op in local mode or when no
// *_SSM_PARAM variables exist.
func ResolveSecrets(provider SecretProvider) error {
	if appEnv, _ := os.LookupEnv("APP_ENV"); appEnv == localEnv {
		return nil
	}
	return resolveSSMParams(provider, defaultDeps())
}

// resolveSSMParams finds every *_SSM_PARAM pointer variable, fetches the
// referenced parameters in one batch, and injects the values under the
// pointer's base name. Pointers whose base variable is already set are
// skipped, which is what gives direct environment values priority over SSM.
func resolveSSMParams(provider SecretProvider, deps loaderDeps) error {
	// target env var name -> SSM parameter path
	pathByTarget := make(map[string]string)

	for _, entry := range deps.environ() {
		key, value, ok := strings.Cut(entry, "=")
		if !ok || !strings.HasSuffix(key, ssmParamSuffix) || value == "" {
			continue
		}

		target := strings.TrimSuffix(key, ssmParamSuffix)
		if _, set := deps.lookupEnv(target); set {
			continue
		}
		pathByTarget[target] = value
	}

	if len(pathByTarget) == 0 {
		return nil
	}

	targets := make([]string, 0, len(pathByTarget))
	paths := make([]string, 0, len(pathByTarget))
	for target, path := range pathByTarget {
		targets = append(targets, target)
		paths = append(paths, path)
	}

	if provider == nil {
		return &ConfigError{
			Type:    ErrSSMResolution,
			Message: fmt.Sprintf("SecretProvider is required for non-local environments (need to resolve: %s)", strings.Join(targets, ", ")),
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	resolved, err := provider.GetParametersBatch(ctx, paths)
	if err != nil {
		return &ConfigError{
			Type:    ErrSSMResolution,
			Message: fmt.Sprintf("failed to resolve %d SSM parameters", len(paths)),
			Err:     err,
		}
	}

	var missing []string
	for target, path := range pathByTarget {
		value, ok := resolved[path]
		if !ok {
			missing = append(missing, target)
			continue
		}
		if err := deps.setEnv(target, value); err != nil {
			return &ConfigError{
				Type:    ErrSSMResolution,
				Message: fmt.Sprintf("failed to set resolved value for %s", target),
				Err:     err,
			}
		}
	}
	if len(missing) > 0 {
		return &ConfigError{
			Type:    ErrSSMResolution,
			Message: fmt.Sprintf("SSM parameters not found for: %s", strings.Join(missing, ", ")),
		}
	}

	return nil
}
