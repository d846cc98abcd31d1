package llm

import (
	"context"
	"encoding/json"
	"testing"
)

func TestMockProvider_ReplaysInOrder(t *testing.T) {
	mock := NewMockProvider(
		MockJSON(map[string]any{"questions": []string{"Any bleeding?"}}),
		MockResponse{Err: &ErrRateLimit{}},
	)
	mock.AddResponse(MockResponse{Content: json.RawMessage(`{"riskTier":"Low","riskScore":1}`)})

	ctx := context.Background()
	first, err := mock.Generate(ctx, Request{System: "guardrails", Messages: []Message{{Role: RoleUser, Content: "week 30"}}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(first.Content) != `{"questions":["Any bleeding?"]}` || first.Usage.TotalTokens != 160 || first.StopReason != StopEnd {
		t.Fatalf("unexpected first reply: %+v", first)
	}

	if _, err := mock.Generate(ctx, Request{}); Classify(err) != KindRateLimit {
		t.Fatalf("expected the queued rate limit, got %v", err)
	}

	third, err := mock.Generate(ctx, Request{Schema: triageSchema()})
	if err != nil || string(third.Content) != `{"riskTier":"Low","riskScore":1}` {
		t.Fatalf("unexpected third reply: %v %+v", err, third)
	}

	// Drained: the screening chain treats this as an outage.
	if _, err := mock.Generate(ctx, Request{}); Classify(err) != KindUnavailable {
		t.Fatalf("expected unavailable once drained, got %v", err)
	}

	if mock.CallCount() != 4 || mock.Calls[0].System != "guardrails" {
		t.Fatalf("calls = %d, first system = %q", mock.CallCount(), mock.Calls[0].System)
	}
	if mock.Name() != ProviderMock || mock.ModelID() != "mock" {
		t.Fatalf("identity = %s/%s", mock.Name(), mock.ModelID())
	}
}

func TestMockProvider_MirrorsProviderChecks(t *testing.T) {
	mock := NewMockProvider(
		MockResponse{Content: json.RawMessage(`{"riskTier":"Hi`), Stop: StopMaxTokens},
		MockResponse{Stop: StopRefused},
		MockResponse{Content: json.RawMessage(`{"riskTier":"Severe","riskScore":3}`)},
	)
	req := Request{Schema: triageSchema()}

	for _, want := range []Kind{KindTruncated, KindRefused, KindInvalid} {
		_, err := mock.Generate(context.Background(), req)
		if got := Classify(err); got != want {
			t.Errorf("kind = %q (%v), want %q", got, err, want)
		}
	}
}

func TestMockProvider_ModelID(t *testing.T) {
	mock := NewMockProvider()
	if mock.ModelID() != "mock" {
		t.Fatalf("expected 'mock', got %q", mock.ModelID())
	}
}

func TestPurposeContext(t *testing.T) {
	ctx := context.Background()
	if p := PurposeFrom(ctx); p != "unknown" {
		t.Fatalf("expected 'unknown', got %q", p)
	}

	ctx = WithPurpose(ctx, PurposeAssessment)
	if p := PurposeFrom(ctx); p != PurposeAssessment {
		t.Fatalf("expected %q, got %q", PurposeAssessment, p)
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"disabled", Config{Provider: ProviderNone}, false},
		{"empty means disabled", Config{}, false},
		{"anthropic without key", Config{Provider: ProviderAnthropic, Retry: RetryConfig{MaxAttempts: 1}}, true},
		{"anthropic with key", Config{Provider: ProviderAnthropic, Anthropic: AnthropicConfig{APIKey: "sk-test"}, Retry: RetryConfig{MaxAttempts: 1}}, false},
		{"openai without key", Config{Provider: ProviderOpenAI, Retry: RetryConfig{MaxAttempts: 1}}, true},
		{"openrouter with key", Config{Provider: ProviderOpenRouter, OpenRouter: OpenRouterConfig{APIKey: "sk-or"}, Retry: RetryConfig{MaxAttempts: 1}}, false},
		{"mock needs no key", Config{Provider: ProviderMock, Retry: RetryConfig{MaxAttempts: 1}}, false},
		{"zero attempts", Config{Provider: ProviderMock}, true},
		{"unknown provider", Config{Provider: "unknown"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func clearProviderKeys(t *testing.T) {
	t.Helper()
	for _, k := range []string{"GEMINI_API_KEY", "OPENAI_API_KEY", "ANTHROPIC_API_KEY", "OPENROUTER_API_KEY"} {
		t.Setenv(k, "")
	}
}

func TestConfig_ResolveAuto(t *testing.T) {
	clearProviderKeys(t)

	cfg := DefaultConfig()
	cfg.Provider = ProviderAuto
	if got := cfg.Resolve(); got.Enabled() {
		t.Fatalf("expected auto without keys to disable generation, got %q", got.Provider)
	}

	t.Setenv("OPENAI_API_KEY", "sk-test")
	cfg.Model = "gpt-4.1-mini"
	got := cfg.Resolve()
	if got.Provider != ProviderOpenAI {
		t.Fatalf("expected openai, got %q", got.Provider)
	}
	if got.OpenAI.APIKey != "sk-test" {
		t.Fatalf("expected discovered key, got %q", got.OpenAI.APIKey)
	}
	if got.OpenAI.Model != "gpt-4.1-mini" {
		t.Fatalf("expected model override, got %q", got.OpenAI.Model)
	}
}

func TestDiscoverConfig_Priority(t *testing.T) {
	clearProviderKeys(t)
	t.Setenv("ANTHROPIC_API_KEY", "a")
	t.Setenv("GEMINI_API_KEY", "g")

	cfg, ok := DiscoverConfig()
	if !ok {
		t.Fatal("expected a provider to be discovered")
	}
	if cfg.Provider != ProviderGemini {
		t.Fatalf("expected gemini to win, got %q", cfg.Provider)
	}
}
