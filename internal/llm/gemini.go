package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"google.golang.org/genai"
)

// GeminiProvider implements Provider on the Gemini API.
type GeminiProvider struct {
	client *genai.Client
	model  string
}

// NewGeminiProvider creates a new Gemini provider.
func NewGeminiProvider(ctx context.Context, cfg GeminiConfig) (*GeminiProvider, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create Gemini client: %w", err)
	}

	return &GeminiProvider{
		client: client,
		model:  ModelFor(ProviderGemini, cfg.Model),
	}, nil
}

func (p *GeminiProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	contents := make([]*genai.Content, 0, len(req.Messages))
	for _, m := range req.Messages {
		role := genai.Role(genai.RoleUser)
		if m.Role == RoleAssistant {
			role = genai.RoleModel
		}
		contents = append(contents, genai.NewContentFromText(m.Content, role))
	}

	result, err := p.client.Models.GenerateContent(ctx, p.model, contents, geminiConfig(req))
	if err != nil {
		return nil, geminiError(err)
	}

	stop, reason := geminiStop(result)
	var usage Usage
	if u := result.UsageMetadata; u != nil {
		usage = Usage{
			InputTokens:  int(u.PromptTokenCount),
			OutputTokens: int(u.CandidatesTokenCount),
			TotalTokens:  int(u.TotalTokenCount),
		}
	}
	return finish(req, json.RawMessage(result.Text()), stop, reason, usage, p.model)
}

func (p *GeminiProvider) Name() string    { return ProviderGemini }
func (p *GeminiProvider) ModelID() string { return p.model }

func geminiConfig(req Request) *genai.GenerateContentConfig {
	config := &genai.GenerateContentConfig{
		MaxOutputTokens: int32(req.MaxTokens),
	}
	if req.Temperature > 0 {
		config.Temperature = genai.Ptr(float32(req.Temperature))
	}
	if req.System != "" {
		config.SystemInstruction = genai.NewContentFromText(req.System, genai.RoleUser)
	}
	if req.Schema != nil {
		config.ResponseMIMEType = "application/json"
		config.ResponseSchema = geminiSchema(req.Schema.Definition)
	}
	return config
}

// geminiStop reads the finish reason of the first candidate. A prompt
// blocked outright has no candidates and carries its reason in the
// prompt feedback.
func geminiStop(result *genai.GenerateContentResponse) (StopReason, string) {
	if fb := result.PromptFeedback; fb != nil && fb.BlockReason != "" {
		return StopRefused, string(fb.BlockReason)
	}
	if len(result.Candidates) == 0 {
		return StopEnd, ""
	}
	switch reason := result.Candidates[0].FinishReason; reason {
	case genai.FinishReasonMaxTokens:
		return StopMaxTokens, string(reason)
	case genai.FinishReasonSafety, genai.FinishReasonProhibitedContent,
		genai.FinishReasonBlocklist, genai.FinishReasonSPII:
		return StopRefused, string(reason)
	default:
		return StopEnd, string(reason)
	}
}

// geminiSchema converts a JSON Schema map into the subset genai.Schema
// understands. A ["string","null"] type becomes a nullable string.
func geminiSchema(def map[string]any) *genai.Schema {
	s := &genai.Schema{}

	switch t := def["type"].(type) {
	case string:
		s.Type = geminiType(t)
	case []any:
		for _, v := range t {
			name, _ := v.(string)
			if name == "null" {
				s.Nullable = genai.Ptr(true)
			} else if name != "" {
				s.Type = geminiType(name)
			}
		}
	}
	s.Description, _ = def["description"].(string)

	if props, ok := def["properties"].(map[string]any); ok {
		s.Properties = make(map[string]*genai.Schema, len(props))
		for name, v := range props {
			if sub, ok := v.(map[string]any); ok {
				s.Properties[name] = geminiSchema(sub)
			}
		}
	}
	s.Required = stringList(def["required"])
	s.Enum = stringList(def["enum"])
	if items, ok := def["items"].(map[string]any); ok {
		s.Items = geminiSchema(items)
	}

	s.Minimum = number(def["minimum"])
	s.Maximum = number(def["maximum"])
	if n := number(def["minItems"]); n != nil {
		s.MinItems = genai.Ptr(int64(*n))
	}
	if n := number(def["maxItems"]); n != nil {
		s.MaxItems = genai.Ptr(int64(*n))
	}
	return s
}

func geminiType(t string) genai.Type {
	switch t {
	case "number":
		return genai.TypeNumber
	case "integer":
		return genai.TypeInteger
	case "boolean":
		return genai.TypeBoolean
	case "array":
		return genai.TypeArray
	case "object":
		return genai.TypeObject
	default:
		return genai.TypeString
	}
}

func stringList(v any) []string {
	var out []string
	switch list := v.(type) {
	case []string:
		out = append(out, list...)
	case []any:
		for _, e := range list {
			if s, ok := e.(string); ok {
				out = append(out, s)
			}
		}
	}
	return out
}

func number(v any) *float64 {
	var f float64
	switch n := v.(type) {
	case int:
		f = float64(n)
	case int64:
		f = float64(n)
	case float64:
		f = n
	default:
		return nil
	}
	return &f
}

func geminiError(err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return statusError(apiErr.Code, nil, err)
	}
	return &ErrProviderUnavailable{Err: err}
}
