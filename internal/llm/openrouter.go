package llm

import (
	"fmt"
	"net/http"
)

const (
	defaultOpenRouterBaseURL = "https://openrouter.ai/api/v1"
	openRouterReferer        = "https://github.com/abhisek/mamacheck"
	openRouterTitle          = "MamaCheck"
)

// OpenRouterProvider is an OpenAIProvider pointed at OpenRouter. Model IDs
// other than the tier names are sent as configured.
type OpenRouterProvider struct {
	*OpenAIProvider
}

// NewOpenRouterProvider creates a provider targeting the OpenRouter API.
func NewOpenRouterProvider(cfg OpenRouterConfig) (*OpenRouterProvider, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openrouter API key is required")
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultOpenRouterBaseURL
	}
	client := &http.Client{Transport: attribution{base: http.DefaultTransport}}

	inner := newChatProvider(ProviderOpenRouter, cfg.APIKey, baseURL, ModelFor(ProviderOpenRouter, cfg.Model), client)
	return &OpenRouterProvider{OpenAIProvider: inner}, nil
}

// attribution adds the headers OpenRouter uses to identify the calling app.
type attribution struct {
	base http.RoundTripper
}

func (a attribution) RoundTrip(r *http.Request) (*http.Response, error) {
	r = r.Clone(r.Context())
	r.Header.Set("HTTP-Referer", openRouterReferer)
	r.Header.Set("X-Title", openRouterTitle)
	return a.base.RoundTrip(r)
}
