package providers

import (
	"context"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// AnthropicAdapter completes requests against the Anthropic Messages API.
type AnthropicAdapter struct {
	apiKey string
	client anthropic.Client
}

// NewAnthropicAdapter builds an adapter. It is still registered with an
// empty apiKey so the registry can report it as configured=false rather
// than omitting it entirely.
func NewAnthropicAdapter(apiKey string) *AnthropicAdapter {
	a := &AnthropicAdapter{apiKey: apiKey}
	if apiKey != "" {
		a.client = anthropic.NewClient(option.WithAPIKey(apiKey))
	}
	return a
}

func (a *AnthropicAdapter) Name() string { return "anthropic" }

func (a *AnthropicAdapter) IsAvailable() bool { return a.apiKey != "" }

func (a *AnthropicAdapter) DefaultModel() string { return "claude-sonnet-4-6" }

func (a *AnthropicAdapter) Complete(ctx context.Context, messages []Message, model string, maxTokens int, _ float64) (AdapterResponse, error) {
	if model == "" {
		model = a.DefaultModel()
	}

	var system string
	params := make([]anthropic.MessageParam, 0, len(messages))
	for _, m := range messages {
		if m.Role == "system" {
			system = m.Content
			continue
		}
		block := anthropic.NewTextBlock(m.Content)
		if m.Role == "assistant" {
			params = append(params, anthropic.NewAssistantMessage(block))
		} else {
			params = append(params, anthropic.NewUserMessage(block))
		}
	}

	req := anthropic.MessageNewParams{
		Model:     anthropic.Model(model),
		MaxTokens: int64(maxTokens),
		Messages:  params,
	}
	if system != "" {
		req.System = []anthropic.TextBlockParam{{Text: system}}
	}

	resp, err := a.client.Messages.New(ctx, req)
	if err != nil {
		return AdapterResponse{}, fmt.Errorf("anthropic completion: %w", err)
	}

	var content strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			content.WriteString(block.Text)
		}
	}

	return AdapterResponse{
		Content:          content.String(),
		ModelUsed:        model,
		PromptTokens:     int(resp.Usage.InputTokens),
		CompletionTokens: int(resp.Usage.OutputTokens),
		Provider:         a.Name(),
	}, nil
}
