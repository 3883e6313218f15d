package ai

import "strings"

// modelPricing holds per-million-token USD rates
type modelPricing struct {
	InputPerMillion  float64
	OutputPerMillion float64
}

// geminiPricing maps model name prefixes to published rates. Longest prefix
// wins; unknown models fall back to the flash rate so cost gating still
// engages rather than silently passing everything.
var geminiPricing = map[string]modelPricing{
	"gemini-2.5-pro":        {InputPerMillion: 1.25, OutputPerMillion: 10.00},
	"gemini-2.5-flash":      {InputPerMillion: 0.30, OutputPerMillion: 2.50},
	"gemini-2.0-flash-lite": {InputPerMillion: 0.075, OutputPerMillion: 0.30},
	"gemini-2.0-flash":      {InputPerMillion: 0.10, OutputPerMillion: 0.40},
}

var fallbackPricing = modelPricing{InputPerMillion: 0.30, OutputPerMillion: 2.50}

// pricingFor resolves the rate table entry for a model
func pricingFor(model string) modelPricing {
	best := ""
	for prefix := range geminiPricing {
		if strings.HasPrefix(model, prefix) && len(prefix) > len(best) {
			best = prefix
		}
	}
	if best == "" {
		return fallbackPricing
	}
	return geminiPricing[best]
}

// expectedOutputTokens is the output budget assumed when estimating cost
// before a call is made. Enhanced resumes plus improvement notes land well
// under this in practice.
const expectedOutputTokens = 4096

// estimateCallCost predicts the USD cost of one call given the prompt size
// in tokens
func estimateCallCost(model string, promptTokens int) float64 {
	p := pricingFor(model)
	in := float64(promptTokens) / 1e6 * p.InputPerMillion
	out := float64(expectedOutputTokens) / 1e6 * p.OutputPerMillion
	return in + out
}
