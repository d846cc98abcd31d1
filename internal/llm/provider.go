package llm

import (
	"context"
	"encoding/json"
	"fmt"
)

// Provider generates one structured reply per call. The screening layer
// never trusts what comes back: every assessment still passes its safety
// floor against the rule engine.
type Provider interface {
	// Generate returns Content conforming to req.Schema when one is set.
	// Truncated, refused and off-schema replies come back as typed errors.
	Generate(ctx context.Context, req Request) (*Response, error)

	// Name is the provider family, e.g. "openai" or "gemini".
	Name() string

	ModelID() string
}

// Request is a single screening prompt.
type Request struct {
	// System carries the clinical guardrails and the retrieved corpus
	// passages for the session language.
	System string

	// Screening prompts are single turn: one user message with the
	// patient's answers.
	Messages []Message

	// Schema switches the provider to its native structured output. A nil
	// Schema returns the raw text.
	Schema *Schema

	MaxTokens int

	// Temperature in [0, 1]; zero is deterministic.
	Temperature float64
}

type Message struct {
	Role    Role
	Content string
}

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Schema is a named JSON Schema. The name doubles as the validation cache
// key, so one name must always carry the same definition.
type Schema struct {
	Name        string
	Description string
	Definition  map[string]any
}

// Response is a reply that passed the truncation, refusal and schema checks.
type Response struct {
	Content json.RawMessage
	Usage   Usage

	// Model is the model that served the request, which may differ from
	// the configured alias.
	Model string

	StopReason StopReason
}

// StopReason is the vendor finish reason mapped onto the three outcomes the
// screening layer distinguishes.
type StopReason string

const (
	StopEnd       StopReason = "end"
	StopMaxTokens StopReason = "max_tokens"
	StopRefused   StopReason = "refused"
)

// Usage tracks token consumption for a single request.
type Usage struct {
	InputTokens  int
	OutputTokens int
	TotalTokens  int
}

// finish turns a vendor reply into a Response. Truncated or refused replies
// become errors, and structured replies are checked against req.Schema.
func finish(req Request, content json.RawMessage, stop StopReason, refusal string, usage Usage, model string) (*Response, error) {
	switch stop {
	case StopMaxTokens:
		return nil, &ErrMaxTokensExceeded{Content: content}
	case StopRefused:
		return nil, &ErrRefused{Reason: refusal}
	}
	if len(content) == 0 {
		return nil, &ErrInvalidResponse{Err: fmt.Errorf("empty response from %s", model)}
	}
	if err := ValidateResponse(req.Schema, content); err != nil {
		return nil, err
	}
	if usage.TotalTokens == 0 {
		usage.TotalTokens = usage.InputTokens + usage.OutputTokens
	}
	return &Response{Content: content, Usage: usage, Model: model, StopReason: stop}, nil
}
