package providers

import (
	"context"
	"fmt"

	"github.com/sashabaranov/go-openai"
)

// AzureOpenAIAdapter completes requests against an Azure OpenAI deployment.
// It shares the go-openai wire format with OpenAIAdapter but authenticates
// and routes against a tenant's Azure endpoint + deployment name.
type AzureOpenAIAdapter struct {
	apiKey     string
	endpoint   string
	deployment string
	client     *openai.Client
}

// NewAzureOpenAIAdapter builds an Azure OpenAI adapter. apiVersion defaults
// to "2024-02-01" when empty.
func NewAzureOpenAIAdapter(apiKey, endpoint, apiVersion, deployment string) *AzureOpenAIAdapter {
	a := &AzureOpenAIAdapter{apiKey: apiKey, endpoint: endpoint, deployment: deployment}
	if apiKey != "" && endpoint != "" {
		if apiVersion == "" {
			apiVersion = "2024-02-01"
		}
		cfg := openai.DefaultAzureConfig(apiKey, endpoint)
		cfg.APIVersion = apiVersion
		client := openai.NewClientWithConfig(cfg)
		a.client = client
	}
	return a
}

func (a *AzureOpenAIAdapter) Name() string { return "azure_openai" }

func (a *AzureOpenAIAdapter) IsAvailable() bool { return a.apiKey != "" && a.endpoint != "" }

func (a *AzureOpenAIAdapter) DefaultModel() string { return a.deployment }

func (a *AzureOpenAIAdapter) Complete(ctx context.Context, messages []Message, model string, maxTokens int, temperature float64) (AdapterResponse, error) {
	deployment := model
	if deployment == "" {
		deployment = a.DefaultModel()
	}

	oaiMessages := make([]openai.ChatCompletionMessage, 0, len(messages))
	for _, m := range messages {
		oaiMessages = append(oaiMessages, openai.ChatCompletionMessage{
			Role:    m.Role,
			Content: m.Content,
		})
	}

	resp, err := a.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       deployment,
		Messages:    oaiMessages,
		MaxTokens:   maxTokens,
		Temperature: float32(temperature),
	})
	if err != nil {
		return AdapterResponse{}, fmt.Errorf("azure openai completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return AdapterResponse{}, fmt.Errorf("azure openai completion: empty choices")
	}

	return AdapterResponse{
		Content:          resp.Choices[0].Message.Content,
		ModelUsed:        deployment,
		PromptTokens:     resp.Usage.PromptTokens,
		CompletionTokens: resp.Usage.CompletionTokens,
		Provider:         a.Name(),
	}, nil
}
