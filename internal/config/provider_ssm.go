package config

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
)

// The GetParameters API accepts at most 10 names per call.
const ssmMaxBatchSize = 10

// ssmClient narrows the SSM SDK surface to the one call the provider
// makes, so tests can substitute a mock.
type ssmClient interface {
	GetParameters(ctx context.Context, params *ssm.GetParametersInput, optFns ...func(*ssm.Options)) (*ssm.GetParametersOutput, error)
}

// SSMProvider resolves secrets from AWS Systems Manager Parameter Store.
// Deployed environments store API keys and webhook secrets as SecureString
// parameters; the provider fetches them decrypted at startup. Parameters
// are expected to live in the same region the service runs in.
type SSMProvider struct {
	region string

	// Populated lazily on first use unless injected by a test.
	client ssmClient
}

// NewSSMProvider returns a provider that reads parameters from the given
// AWS region.
func NewSSMProvider(region string) *SSMProvider {
	return &SSMProvider{region: region}
}

// newSSMProviderWithClient injects a pre-built client, bypassing the lazy
// SDK setup. Test-only.
func newSSMProviderWithClient(region string, client ssmClient) *SSMProvider {
	return &SSMProvider{region: region, client: client}
}

func (p *SSMProvider) ensureClient(ctx context.Context) error {
	if p.client != nil {
		return nil
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(p.region))
	if err != nil {
		return fmt.Errorf("loading AWS config for SSM (region=%s): %w", p.region, err)
	}
	p.client = ssm.NewFromConfig(cfg)
	return nil
}

// GetParametersBatch fetches the named parameters with decryption enabled,
// splitting the request at the 10-name API limit. The returned map is keyed
// by parameter path. A parameter SSM reports as invalid (typically: not
// created in this region) fails the whole call, since a partially resolved
// secret set is not safe to start with. Cancellation is honored between
// batches.
func (p *SSMProvider) GetParametersBatch(ctx context.Context, keys []string) (map[string]string, error) {
	resolved := make(map[string]string, len(keys))
	if len(keys) == 0 {
		return resolved, nil
	}

	if err := p.ensureClient(ctx); err != nil {
		return nil, err
	}

	for offset := 0; offset < len(keys); offset += ssmMaxBatchSize {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("context cancelled during SSM parameter retrieval: %w", err)
		}

		batch := keys[offset:min(offset+ssmMaxBatchSize, len(keys))]
		output, err := p.client.GetParameters(ctx, &ssm.GetParametersInput{
			Names:          batch,
			WithDecryption: aws.Bool(true),
		})
		if err != nil {
			return nil, fmt.Errorf("SSM GetParameters failed (batch starting at %d of %d keys): %w",
				offset, len(keys), err)
		}
		if len(output.InvalidParameters) > 0 {
			return nil, fmt.Errorf("SSM parameters not found: %v", output.InvalidParameters)
		}

		for _, param := range output.Parameters {
			if param.Name != nil && param.Value != nil {
				resolved[*param.Name] = *param.Value
			}
		}
	}

	return resolved, nil
}
