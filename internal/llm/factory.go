package llm

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/abhisek/mamacheck/internal/store"
)

// ErrDisabled is returned by NewProvider when no provider is configured.
var ErrDisabled = errors.New("llm provider disabled")

// NewProvider creates a Provider from configuration.
// The result is wrapped as caller → timeout → retry → logging → base.
// A nil eventRepo skips event logging.
func NewProvider(ctx context.Context, cfg Config, eventRepo store.EventRepo, logger logrus.FieldLogger) (Provider, error) {
	cfg = cfg.Resolve()
	if !cfg.Enabled() {
		return nil, ErrDisabled
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var base Provider
	var err error

	switch cfg.Provider {
	case ProviderAnthropic:
		base, err = NewAnthropicProvider(cfg.Anthropic)
	case ProviderOpenAI:
		base, err = NewOpenAIProvider(cfg.OpenAI)
	case ProviderOpenRouter:
		base, err = NewOpenRouterProvider(cfg.OpenRouter)
	case ProviderGemini:
		base, err = NewGeminiProvider(ctx, cfg.Gemini)
	case ProviderMock:
		return NewMockProvider(), nil
	default:
		return nil, fmt.Errorf("unknown LLM provider: %q", cfg.Provider)
	}
	if err != nil {
		return nil, fmt.Errorf("initializing %s provider: %w", cfg.Provider, err)
	}

	p := base
	if eventRepo != nil {
		p = WithLogging(p, eventRepo, logger)
	}
	p = WithRetry(p, cfg.Retry, logger)
	if cfg.Timeout > 0 {
		p = WithTimeout(p, cfg.Timeout)
	}
	return p, nil
}

// TimeoutProvider bounds every Generate call with a deadline.
type TimeoutProvider struct {
	inner   Provider
	timeout time.Duration
}

// WithTimeout wraps a Provider so each call is cancelled after d.
func WithTimeout(p Provider, d time.Duration) Provider {
	return &TimeoutProvider{inner: p, timeout: d}
}

func (t *TimeoutProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()
	return t.inner.Generate(ctx, req)
}

func (t *TimeoutProvider) Name() string    { return t.inner.Name() }
func (t *TimeoutProvider) ModelID() string { return t.inner.ModelID() }
