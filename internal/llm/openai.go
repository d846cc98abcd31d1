package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	openai "github.com/sashabaranov/go-openai"
)

// OpenAIProvider implements Provider on the Chat Completions API. It also
// serves OpenRouter and other compatible gateways through BaseURL.
type OpenAIProvider struct {
	client *openai.Client
	model  string
	name   string
}

// NewOpenAIProvider creates a new OpenAI provider.
func NewOpenAIProvider(cfg OpenAIConfig) (*OpenAIProvider, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openai API key is required")
	}
	return newChatProvider(ProviderOpenAI, cfg.APIKey, cfg.BaseURL, ModelFor(ProviderOpenAI, cfg.Model), nil), nil
}

func newChatProvider(name, apiKey, baseURL, model string, client *http.Client) *OpenAIProvider {
	config := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		config.BaseURL = baseURL
	}
	if client != nil {
		config.HTTPClient = client
	}
	return &OpenAIProvider{
		client: openai.NewClientWithConfig(config),
		model:  model,
		name:   name,
	}
}

func (p *OpenAIProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	chatReq, err := p.chatRequest(req)
	if err != nil {
		return nil, err
	}

	resp, err := p.client.CreateChatCompletion(ctx, chatReq)
	if err != nil {
		return nil, openAIError(err)
	}
	if len(resp.Choices) == 0 {
		return nil, &ErrInvalidResponse{Err: fmt.Errorf("no choices in %s response", p.Name())}
	}

	choice := resp.Choices[0]
	stop, reason := StopEnd, ""
	switch {
	case choice.FinishReason == openai.FinishReasonLength:
		stop = StopMaxTokens
	case choice.FinishReason == openai.FinishReasonContentFilter:
		stop, reason = StopRefused, string(choice.FinishReason)
	case choice.Message.Refusal != "":
		stop, reason = StopRefused, choice.Message.Refusal
	}

	usage := Usage{
		InputTokens:  resp.Usage.PromptTokens,
		OutputTokens: resp.Usage.CompletionTokens,
		TotalTokens:  resp.Usage.TotalTokens,
	}
	return finish(req, json.RawMessage(choice.Message.Content), stop, reason, usage, resp.Model)
}

func (p *OpenAIProvider) chatRequest(req Request) (openai.ChatCompletionRequest, error) {
	out := openai.ChatCompletionRequest{
		Model:               p.model,
		MaxCompletionTokens: req.MaxTokens,
		Temperature:         float32(req.Temperature),
	}
	if req.System != "" {
		out.Messages = append(out.Messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: req.System,
		})
	}
	for _, m := range req.Messages {
		role := openai.ChatMessageRoleUser
		if m.Role == RoleAssistant {
			role = openai.ChatMessageRoleAssistant
		}
		out.Messages = append(out.Messages, openai.ChatCompletionMessage{Role: role, Content: m.Content})
	}

	if req.Schema != nil {
		raw, err := json.Marshal(req.Schema.Definition)
		if err != nil {
			return out, fmt.Errorf("marshal schema %s: %w", req.Schema.Name, err)
		}
		out.ResponseFormat = &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONSchema,
			JSONSchema: &openai.ChatCompletionResponseFormatJSONSchema{
				Name:        req.Schema.Name,
				Description: req.Schema.Description,
				Schema:      json.RawMessage(raw),
				Strict:      true,
			},
		}
	}
	return out, nil
}

func (p *OpenAIProvider) Name() string {
	if p.name == "" {
		return ProviderOpenAI
	}
	return p.name
}

func (p *OpenAIProvider) ModelID() string { return p.model }

func openAIError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return statusError(apiErr.HTTPStatusCode, nil, err)
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return statusError(reqErr.HTTPStatusCode, nil, err)
	}
	return &ErrProviderUnavailable{Err: err}
}
