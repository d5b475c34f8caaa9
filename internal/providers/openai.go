package providers

import (
	"context"
	"fmt"

	"github.com/sashabaranov/go-openai"
)

// OpenAIAdapter completes requests against the public OpenAI chat API.
type OpenAIAdapter struct {
	apiKey string
	client *openai.Client
}

// NewOpenAIAdapter builds an OpenAI adapter.
func NewOpenAIAdapter(apiKey string) *OpenAIAdapter {
	a := &OpenAIAdapter{apiKey: apiKey}
	if apiKey != "" {
		a.client = openai.NewClient(apiKey)
	}
	return a
}

func (a *OpenAIAdapter) Name() string { return "openai" }

func (a *OpenAIAdapter) IsAvailable() bool { return a.apiKey != "" }

func (a *OpenAIAdapter) DefaultModel() string { return "gpt-4o" }

func (a *OpenAIAdapter) Complete(ctx context.Context, messages []Message, model string, maxTokens int, temperature float64) (AdapterResponse, error) {
	if model == "" {
		model = a.DefaultModel()
	}

	oaiMessages := make([]openai.ChatCompletionMessage, 0, len(messages))
	for _, m := range messages {
		oaiMessages = append(oaiMessages, openai.ChatCompletionMessage{
			Role:    m.Role,
			Content: m.Content,
		})
	}

	resp, err := a.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       model,
		Messages:    oaiMessages,
		MaxTokens:   maxTokens,
		Temperature: float32(temperature),
	})
	if err != nil {
		return AdapterResponse{}, fmt.Errorf("openai completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return AdapterResponse{}, fmt.Errorf("openai completion: empty choices")
	}

	return AdapterResponse{
		Content:          resp.Choices[0].Message.Content,
		ModelUsed:        model,
		PromptTokens:     resp.Usage.PromptTokens,
		CompletionTokens: resp.Usage.CompletionTokens,
		Provider:         a.Name(),
	}, nil
}
