// Package cost estimates USD cost for completion calls against the
// gateway's known provider/model pricing table.
package cost

// perThousand holds USD-per-1K-token rates for one model.
type perThousand struct {
	Input  float64
	Output float64
}

const defaultKey = "default"

// pricingTable mirrors the gateway's published per-provider, per-model rates.
// Update in place as vendor pricing changes.
var pricingTable = map[string]map[string]perThousand{
	"anthropic": {
		"claude-opus-4-6":   {Input: 0.015, Output: 0.075},
		"claude-sonnet-4-6": {Input: 0.003, Output: 0.015},
		"claude-haiku-4-5":  {Input: 0.00025, Output: 0.00125},
		defaultKey:          {Input: 0.003, Output: 0.015},
	},
	"openai": {
		"gpt-4o":      {Input: 0.005, Output: 0.015},
		"gpt-4o-mini": {Input: 0.00015, Output: 0.0006},
		"gpt-4-turbo": {Input: 0.010, Output: 0.030},
		defaultKey:    {Input: 0.005, Output: 0.015},
	},
	"azure_openai": {
		"gpt-4o":   {Input: 0.005, Output: 0.015},
		defaultKey: {Input: 0.005, Output: 0.015},
	},
	"gemini": {
		"gemini-1.5-pro":   {Input: 0.00125, Output: 0.005},
		"gemini-1.5-flash": {Input: 0.000075, Output: 0.0003},
		defaultKey:         {Input: 0.00125, Output: 0.005},
	},
}

// fallbackRate covers an unrecognized provider. It is pinned to the most
// expensive flagship rate in the table (claude-opus-4-6) to avoid
// under-charging rather than the cheapest or a mid-tier guess.
var fallbackRate = perThousand{Input: 0.015, Output: 0.075}

// Estimate returns the USD cost of a completion given its provider, model,
// and token counts. Unknown provider/model pairs fall back to that
// provider's "default" rate, or the global fallback if the provider itself
// is unrecognized.
func Estimate(provider, model string, promptTokens, completionTokens int) float64 {
	rates := rateFor(provider, model)
	return (float64(promptTokens)/1000.0)*rates.Input + (float64(completionTokens)/1000.0)*rates.Output
}

func rateFor(provider, model string) perThousand {
	models, ok := pricingTable[provider]
	if !ok {
		return fallbackRate
	}
	if rates, ok := models[model]; ok {
		return rates
	}
	if rates, ok := models[defaultKey]; ok {
		return rates
	}
	return fallbackRate
}
