package attribution

import (
	"strings"

	"github.com/dipampaul17/AgentGuard/pkg/pricing"
)

// providerDefaults maps known provider domains to their fallback default
// model, used when neither the payload nor the caller supplies one.
var providerDefaults = map[string]string{
	"api.openai.com":     "gpt-3.5-turbo",
	"openai.azure.com":   "gpt-3.5-turbo",
	"api.anthropic.com":  "claude-3-sonnet",
	"api.cohere.ai":      "default",
	"api.mistral.ai":     "default",
	"api.groq.com":       "default",
	"api.togetherai.com": "default",
}

// resolveModel determines the model identifier for pricing.
//
// Resolution order: explicit model field on the payload, then the caller's
// hint, then a provider default derived from the source URL domain, then
// the global "default" entry.
func resolveModel(payload map[string]interface{}, hint, sourceURL string) string {
	if payload != nil {
		if m, ok := payload["model"].(string); ok && m != "" {
			return m
		}
	}

	if hint != "" {
		return hint
	}

	if m := modelFromURL(sourceURL); m != "" {
		return m
	}

	return pricing.DefaultModel
}

// modelFromURL matches a source URL against known provider domains.
func modelFromURL(sourceURL string) string {
	if sourceURL == "" {
		return ""
	}

	for domain, model := range providerDefaults {
		if strings.Contains(sourceURL, domain) {
			return model
		}
	}

	return ""
}
