package llm

import (
	"context"
	"encoding/json"
	"sync"
)

// MockResponse is one canned reply. Stop defaults to StopEnd.
type MockResponse struct {
	Content json.RawMessage
	Usage   Usage
	Stop    StopReason
	Err     error
}

// MockProvider replays canned replies in FIFO order and records every
// request. Replies go through the same truncation, refusal and schema
// checks as a real provider. An empty queue reports the provider as
// unavailable, which hands the screening chain to the rule engine.
type MockProvider struct {
	mu      sync.Mutex
	replies []MockResponse
	Calls   []Request
}

// NewMockProvider creates a MockProvider with the given replies queued.
func NewMockProvider(replies ...MockResponse) *MockProvider {
	return &MockProvider{replies: replies}
}

func (m *MockProvider) Generate(_ context.Context, req Request) (*Response, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Calls = append(m.Calls, req)
	if len(m.replies) == 0 {
		return nil, &ErrProviderUnavailable{}
	}
	r := m.replies[0]
	m.replies = m.replies[1:]

	if r.Err != nil {
		return nil, r.Err
	}
	stop := r.Stop
	if stop == "" {
		stop = StopEnd
	}
	return finish(req, r.Content, stop, "mock", r.Usage, "mock")
}

func (m *MockProvider) Name() string    { return ProviderMock }
func (m *MockProvider) ModelID() string { return "mock" }

// MockJSON builds a successful reply by marshaling v.
func MockJSON(v any) MockResponse {
	raw, err := json.Marshal(v)
	if err != nil {
		return MockResponse{Err: err}
	}
	return MockResponse{Content: raw, Usage: Usage{InputTokens: 120, OutputTokens: 40, TotalTokens: 160}}
}

// AddResponse queues another reply.
func (m *MockProvider) AddResponse(r MockResponse) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.replies = append(m.replies, r)
}

// CallCount returns the number of Generate calls made.
func (m *MockProvider) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}
