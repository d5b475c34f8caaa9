package providers

import (
	"context"
	"fmt"

	"github.com/v-shakthi/aigateway/internal/config"
)

// NewRegistryFromConfig builds the four-provider registry described in the
// gateway's configuration, in a fixed construction order. Adapters with no
// credentials configured are still registered so status/0reporting can show
// them as unavailable rather than absent.
func NewRegistryFromConfig(ctx context.Context, cfg config.ProvidersConfig) (*Registry, error) {
	gemini, err := NewGeminiAdapter(ctx, cfg.Gemini.APIKey)
	if err != nil {
		return nil, fmt.Errorf("build gemini adapter: %w", err)
	}

	return NewRegistry(
		NewAnthropicAdapter(cfg.Anthropic.APIKey),
		NewOpenAIAdapter(cfg.OpenAI.APIKey),
		NewAzureOpenAIAdapter(cfg.AzureOpenAI.APIKey, cfg.AzureOpenAI.Endpoint, cfg.AzureOpenAI.APIVersion, cfg.AzureOpenAI.DeploymentModel),
		gemini,
	), nil
}
