package llm

// Model tiers accepted wherever a model is configured. "fast" suits the
// per-answer questionnaire, "thorough" a final assessment.
const (
	ModelFast     = "fast"
	ModelThorough = "thorough"
)

// modelAliases maps tier names and short vendor names to model IDs per
// provider. Anything not listed is passed to the vendor unchanged.
var modelAliases = map[string]map[string]string{
	ProviderAnthropic: {
		ModelFast:       "claude-haiku-4-5-20251001",
		ModelThorough:   "claude-sonnet-4-5-20250929",
		"claude-haiku":  "claude-haiku-4-5-20251001",
		"claude-sonnet": "claude-sonnet-4-5-20250929",
	},
	ProviderOpenAI: {
		ModelFast:     "gpt-4o-mini",
		ModelThorough: "gpt-4.1",
		"gpt-mini":    "gpt-4o-mini",
		"gpt":         "gpt-4.1",
	},
	ProviderGemini: {
		ModelFast:      "gemini-2.5-flash",
		ModelThorough:  "gemini-2.5-pro",
		"gemini-flash": "gemini-2.5-flash",
		"gemini-pro":   "gemini-2.5-pro",
	},
	// OpenRouter IDs are vendor/model paths; only the tiers are mapped.
	ProviderOpenRouter: {
		ModelFast:     "google/gemini-2.5-flash",
		ModelThorough: "anthropic/claude-sonnet-4.5",
	},
}

// ModelFor resolves a configured model name for provider.
func ModelFor(provider, name string) string {
	if name == "" {
		name = ModelFast
	}
	if id, ok := modelAliases[provider][name]; ok {
		return id
	}
	return name
}
