package llm

import (
	"fmt"
	"os"
	"time"
)

// Provider names accepted in Config.Provider.
const (
	ProviderNone       = "none"
	ProviderAuto       = "auto"
	ProviderAnthropic  = "anthropic"
	ProviderOpenAI     = "openai"
	ProviderGemini     = "gemini"
	ProviderOpenRouter = "openrouter"
	ProviderMock       = "mock"
)

// Config holds all LLM provider configuration. It is decoded from the
// "llm" section of the viper configuration.
type Config struct {
	// Provider selects which LLM provider to use. Empty or "none" disables
	// generation and leaves the rule engine as the only assessor. "auto"
	// picks the first provider whose standard API key variable is set.
	Provider string `mapstructure:"provider"`

	// Model overrides the selected provider's model when set. It accepts
	// a tier ("fast", "thorough") or a vendor model ID.
	Model string `mapstructure:"model"`

	Anthropic  AnthropicConfig  `mapstructure:"anthropic"`
	OpenAI     OpenAIConfig     `mapstructure:"openai"`
	Gemini     GeminiConfig     `mapstructure:"gemini"`
	OpenRouter OpenRouterConfig `mapstructure:"openrouter"`
	Retry      RetryConfig      `mapstructure:"retry"`

	// Timeout bounds a single Generate call including retries. Default: 20s.
	Timeout time.Duration `mapstructure:"timeout"`
}

type AnthropicConfig struct {
	APIKey  string `mapstructure:"api_key"`
	Model   string `mapstructure:"model"`
	BaseURL string `mapstructure:"base_url"`
}

type OpenAIConfig struct {
	APIKey  string `mapstructure:"api_key"`
	Model   string `mapstructure:"model"`
	BaseURL string `mapstructure:"base_url"` // Optional. Azure proxies and compatible APIs.
}

type GeminiConfig struct {
	APIKey string `mapstructure:"api_key"`
	Model  string `mapstructure:"model"`
}

type OpenRouterConfig struct {
	APIKey  string `mapstructure:"api_key"`
	Model   string `mapstructure:"model"`
	BaseURL string `mapstructure:"base_url"` // Default: "https://openrouter.ai/api/v1"
}

// RetryConfig configures retry behavior for transient failures.
type RetryConfig struct {
	MaxAttempts int           `mapstructure:"max_attempts"`
	InitialWait time.Duration `mapstructure:"initial_wait"`
	MaxWait     time.Duration `mapstructure:"max_wait"`
	Multiplier  float64       `mapstructure:"multiplier"`
}

// DefaultConfig returns a Config with generation disabled and every
// provider on the fast tier.
func DefaultConfig() Config {
	return Config{
		Provider: ProviderNone,
		Anthropic: AnthropicConfig{
			Model: ModelFast,
		},
		OpenAI: OpenAIConfig{
			Model: ModelFast,
		},
		Gemini: GeminiConfig{
			Model: ModelFast,
		},
		OpenRouter: OpenRouterConfig{
			Model: ModelFast,
		},
		Retry: RetryConfig{
			MaxAttempts: 2,
			InitialWait: 500 * time.Millisecond,
			MaxWait:     4 * time.Second,
			Multiplier:  2.0,
		},
		Timeout: 20 * time.Second,
	}
}

// Enabled reports whether a generative provider is configured.
func (c Config) Enabled() bool {
	return c.Provider != "" && c.Provider != ProviderNone
}

// Resolve expands "auto" through DiscoverConfig and applies the shared Model
// override to the selected provider. Auto discovery with no key found
// resolves to "none".
func (c Config) Resolve() Config {
	if c.Provider == ProviderAuto {
		found, ok := DiscoverConfig()
		if !ok {
			c.Provider = ProviderNone
			return c
		}
		c.Provider = found.Provider
		switch found.Provider {
		case ProviderGemini:
			c.Gemini.APIKey = found.Gemini.APIKey
		case ProviderOpenAI:
			c.OpenAI.APIKey = found.OpenAI.APIKey
		case ProviderAnthropic:
			c.Anthropic.APIKey = found.Anthropic.APIKey
		case ProviderOpenRouter:
			c.OpenRouter.APIKey = found.OpenRouter.APIKey
		}
	}

	if c.Model != "" {
		switch c.Provider {
		case ProviderAnthropic:
			c.Anthropic.Model = c.Model
		case ProviderOpenAI:
			c.OpenAI.Model = c.Model
		case ProviderGemini:
			c.Gemini.Model = c.Model
		case ProviderOpenRouter:
			c.OpenRouter.Model = c.Model
		}
	}
	return c
}

// DiscoverConfig probes standard API key env vars in priority order
// (Gemini → OpenAI → Anthropic → OpenRouter) and returns a Config for the
// first provider whose key is found. Returns (Config{}, false) if none found.
func DiscoverConfig() (Config, bool) {
	cfg := DefaultConfig()

	if k := os.Getenv("GEMINI_API_KEY"); k != "" {
		cfg.Provider = ProviderGemini
		cfg.Gemini.APIKey = k
		return cfg, true
	}
	if k := os.Getenv("OPENAI_API_KEY"); k != "" {
		cfg.Provider = ProviderOpenAI
		cfg.OpenAI.APIKey = k
		return cfg, true
	}
	if k := os.Getenv("ANTHROPIC_API_KEY"); k != "" {
		cfg.Provider = ProviderAnthropic
		cfg.Anthropic.APIKey = k
		return cfg, true
	}
	if k := os.Getenv("OPENROUTER_API_KEY"); k != "" {
		cfg.Provider = ProviderOpenRouter
		cfg.OpenRouter.APIKey = k
		return cfg, true
	}

	return Config{}, false
}

// Validate checks that the selected provider is known and has its API key.
func (c Config) Validate() error {
	switch c.Provider {
	case ProviderAnthropic:
		if c.Anthropic.APIKey == "" {
			return fmt.Errorf("MAMACHECK_LLM_ANTHROPIC_API_KEY is required for the anthropic provider")
		}
	case ProviderOpenAI:
		if c.OpenAI.APIKey == "" {
			return fmt.Errorf("MAMACHECK_LLM_OPENAI_API_KEY is required for the openai provider")
		}
	case ProviderGemini:
		if c.Gemini.APIKey == "" {
			return fmt.Errorf("MAMACHECK_LLM_GEMINI_API_KEY is required for the gemini provider")
		}
	case ProviderOpenRouter:
		if c.OpenRouter.APIKey == "" {
			return fmt.Errorf("MAMACHECK_LLM_OPENROUTER_API_KEY is required for the openrouter provider")
		}
	case "", ProviderNone, ProviderAuto, ProviderMock:
		// No API key needed (auto is checked after Resolve).
	default:
		return fmt.Errorf("unknown LLM provider: %q", c.Provider)
	}
	if c.Enabled() && c.Retry.MaxAttempts < 1 {
		return fmt.Errorf("llm.retry.max_attempts must be at least 1")
	}
	return nil
}
