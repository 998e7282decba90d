package config

import (
	"context"
	"os"
)

// EnvVarProvider resolves secret "parameters" straight from the process
// environment. It stands in for SSM in local stacks and tests, where the
// provider API keys come from a .env file rather than Parameter Store.
type EnvVarProvider struct{}

// NewEnvVarProvider creates a new EnvVarProvider.
func NewEnvVarProvider() *EnvVarProvider {
	return &EnvVarProvider{}
}

// GetParametersBatch looks each key up with os.LookupEnv. Keys absent from
// the environment are omitted from the result rather than reported as
// errors; the loader treats a missing secret the same either way.
func (p *EnvVarProvider) GetParametersBatch(_ context.Context, keys []string) (map[string]string, error) {
	found := make(map[string]string, len(keys))
	for _, key := range keys {
		if value, ok := os.LookupEnv(key); ok {
			found[key] = value
		}
	}
	return found, nil
}
