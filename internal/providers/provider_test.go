package providers

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEstimateTokens(t *testing.T) {
	assert.Equal(t, 0, EstimateTokens(""))
	assert.Equal(t, 6, EstimateTokens("one two three four"))
}

func TestAdapters_IsAvailableReflectsCredentials(t *testing.T) {
	assert.False(t, NewAnthropicAdapter("").IsAvailable())
	assert.True(t, NewAnthropicAdapter("sk-ant-test").IsAvailable())

	assert.False(t, NewOpenAIAdapter("").IsAvailable())
	assert.True(t, NewOpenAIAdapter("sk-test").IsAvailable())

	assert.False(t, NewAzureOpenAIAdapter("", "", "", "gpt-4o").IsAvailable())
	assert.False(t, NewAzureOpenAIAdapter("key", "", "", "gpt-4o").IsAvailable())
	assert.True(t, NewAzureOpenAIAdapter("key", "https://example.openai.azure.com", "", "gpt-4o").IsAvailable())
}

func TestRegistry_GetAndNames(t *testing.T) {
	r := NewRegistry(
		NewAnthropicAdapter("key"),
		NewOpenAIAdapter(""),
	)

	a, ok := r.Get("anthropic")
	assert.True(t, ok)
	assert.Equal(t, "anthropic", a.Name())

	_, ok = r.Get("gemini")
	assert.False(t, ok)

	assert.Equal(t, []string{"anthropic", "openai"}, r.Names())
}
