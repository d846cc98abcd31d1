package llm

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
)

var okReply = MockResponse{Content: json.RawMessage(`{"riskTier":"Low","riskScore":1}`)}

func fastRetry(attempts int) RetryConfig {
	return RetryConfig{
		MaxAttempts: attempts,
		InitialWait: time.Millisecond,
		MaxWait:     5 * time.Millisecond,
		Multiplier:  2,
	}
}

func down() MockResponse {
	return MockResponse{Err: &ErrProviderUnavailable{Status: 503, Err: errors.New("overloaded")}}
}

func TestRetry_Attempts(t *testing.T) {
	tests := []struct {
		name      string
		replies   []MockResponse
		wantCalls int
		wantErr   Kind
	}{
		{"first try", []MockResponse{okReply}, 1, KindNone},
		{"outage then success", []MockResponse{down(), okReply}, 2, KindNone},
		{"outage exhausts attempts", []MockResponse{down(), down(), down(), okReply}, 3, KindUnavailable},
		{"rate limit honours retry-after", []MockResponse{
			{Err: &ErrRateLimit{RetryAfter: time.Millisecond, Err: errors.New("429")}}, okReply,
		}, 2, KindNone},
		{"schema violation retried once", []MockResponse{
			{Err: &ErrInvalidResponse{Err: errors.New("bad tier")}},
			{Err: &ErrInvalidResponse{Err: errors.New("bad tier")}},
			okReply,
		}, 2, KindInvalid},
		{"truncation not retried", []MockResponse{{Err: &ErrMaxTokensExceeded{}}, okReply}, 1, KindTruncated},
		{"refusal not retried", []MockResponse{{Err: &ErrRefused{Reason: "SAFETY"}}, okReply}, 1, KindRefused},
		{"bad key not retried", []MockResponse{
			{Err: &ErrProviderUnavailable{Status: 401, Permanent: true, Err: errors.New("unauthorized")}}, okReply,
		}, 1, KindRejected},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := NewMockProvider(tt.replies...)
			p := WithRetry(mock, fastRetry(3), nil)

			resp, err := p.Generate(context.Background(), Request{})
			if got := Classify(err); got != tt.wantErr {
				t.Fatalf("error kind = %q (%v), want %q", got, err, tt.wantErr)
			}
			if err == nil && resp == nil {
				t.Fatal("expected a response")
			}
			if mock.CallCount() != tt.wantCalls {
				t.Fatalf("calls = %d, want %d", mock.CallCount(), tt.wantCalls)
			}
		})
	}
}

func TestRetry_CancelledContextStops(t *testing.T) {
	mock := NewMockProvider(down(), down(), okReply)
	cfg := fastRetry(3)
	cfg.InitialWait = time.Second
	cfg.MaxWait = time.Second
	p := WithRetry(mock, cfg, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := p.Generate(ctx, Request{})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
	if mock.CallCount() != 1 {
		t.Fatalf("calls = %d, want 1", mock.CallCount())
	}
}

func TestRetry_LogsEachRetry(t *testing.T) {
	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)
	mock := NewMockProvider(down(), down(), okReply)

	if _, err := WithRetry(mock, fastRetry(3), logger).Generate(context.Background(), Request{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	entries := hook.AllEntries()
	if len(entries) != 2 {
		t.Fatalf("expected 2 retry log lines, got %d", len(entries))
	}
	if entries[1].Data["attempt"] != 2 || entries[1].Data["kind"] != KindUnavailable {
		t.Fatalf("unexpected fields: %v", entries[1].Data)
	}
}

func TestRetry_DelayBounds(t *testing.T) {
	r := &RetryProvider{config: RetryConfig{InitialWait: 100 * time.Millisecond, MaxWait: 300 * time.Millisecond, Multiplier: 2}}

	for attempt, want := range []time.Duration{100, 200, 300, 300} {
		want *= time.Millisecond
		got := r.delay(attempt, errors.New("x"))
		if got < want*8/10 || got > want*12/10 {
			t.Errorf("attempt %d: delay %s outside %s ±20%%", attempt, got, want)
		}
	}

	rl := &ErrRateLimit{RetryAfter: 7 * time.Second}
	if got := r.delay(0, rl); got != 7*time.Second {
		t.Errorf("retry-after ignored: %s", got)
	}
}

func TestRetry_Identity(t *testing.T) {
	p := WithRetry(NewMockProvider(), fastRetry(1), nil)
	if p.Name() != ProviderMock || p.ModelID() != "mock" {
		t.Fatalf("unexpected identity %s/%s", p.Name(), p.ModelID())
	}
}
