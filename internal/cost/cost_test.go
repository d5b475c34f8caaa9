package cost

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEstimate_KnownModel(t *testing.T) {
	got := Estimate("openai", "gpt-4o", 1000, 1000)
	assert.InDelta(t, 0.005+0.015, got, 1e-9)
}

func TestEstimate_UnknownModelUsesProviderDefault(t *testing.T) {
	got := Estimate("anthropic", "claude-does-not-exist", 1000, 0)
	assert.InDelta(t, 0.003, got, 1e-9)
}

func TestEstimate_UnknownProviderUsesGlobalFallback(t *testing.T) {
	got := Estimate("some-new-vendor", "whatever", 1000, 1000)
	assert.InDelta(t, 0.015+0.075, got, 1e-9)
}

func TestEstimate_ZeroTokensIsZeroCost(t *testing.T) {
	got := Estimate("openai", "gpt-4o", 0, 0)
	assert.Equal(t, 0.0, got)
}

func TestEstimate_AzureAndGeminiRatesDiffer(t *testing.T) {
	azure := Estimate("azure_openai", "gpt-4o", 1000, 0)
	gemini := Estimate("gemini", "gemini-1.5-flash", 1000, 0)
	assert.NotEqual(t, azure, gemini)
}
