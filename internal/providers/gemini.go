package providers

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

// GeminiAdapter completes requests against Google's Gemini API. Gemini's Go
// client does not always surface usage counts, so prompt/completion tokens
// are always estimated locally with EstimateTokens; the other adapters use
// the usage counts their vendor reports.
type GeminiAdapter struct {
	apiKey string
	client *genai.Client
}

// NewGeminiAdapter builds a Gemini adapter.
func NewGeminiAdapter(ctx context.Context, apiKey string) (*GeminiAdapter, error) {
	a := &GeminiAdapter{apiKey: apiKey}
	if apiKey == "" {
		return a, nil
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apiKey})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	a.client = client
	return a, nil
}

func (a *GeminiAdapter) Name() string { return "gemini" }

func (a *GeminiAdapter) IsAvailable() bool { return a.apiKey != "" }

func (a *GeminiAdapter) DefaultModel() string { return "gemini-1.5-flash" }

func (a *GeminiAdapter) Complete(ctx context.Context, messages []Message, model string, maxTokens int, temperature float64) (AdapterResponse, error) {
	if model == "" {
		model = a.DefaultModel()
	}

	var system string
	var conversation strings.Builder
	for _, m := range messages {
		if m.Role == "system" {
			system = m.Content
			continue
		}
		conversation.WriteString(m.Content)
		conversation.WriteString("\n")
	}

	config := &genai.GenerateContentConfig{
		MaxOutputTokens: int32(maxTokens),
		Temperature:     genai.Ptr(float32(temperature)),
	}
	if system != "" {
		config.SystemInstruction = genai.NewContentFromText(system, genai.RoleUser)
	}

	resp, err := a.client.Models.GenerateContent(ctx, model, genai.Text(conversation.String()), config)
	if err != nil {
		return AdapterResponse{}, fmt.Errorf("gemini completion: %w", err)
	}

	text := resp.Text()
	promptInput := conversation.String()

	return AdapterResponse{
		Content:          text,
		ModelUsed:        model,
		PromptTokens:     EstimateTokens(promptInput),
		CompletionTokens: EstimateTokens(text),
		Provider:         a.Name(),
	}, nil
}
