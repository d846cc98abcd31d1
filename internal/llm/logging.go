package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/abhisek/mamacheck/internal/store"
)

// LoggingProvider is a decorator that records every LLM request as an event.
type LoggingProvider struct {
	inner     Provider
	eventRepo store.EventRepo
	logger    logrus.FieldLogger
}

// WithLogging wraps a Provider with event logging. Store failures are
// reported through logger and never fail the request.
func WithLogging(p Provider, repo store.EventRepo, logger logrus.FieldLogger) Provider {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &LoggingProvider{inner: p, eventRepo: repo, logger: logger}
}

func (l *LoggingProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	start := time.Now()
	purpose := PurposeFrom(ctx)

	resp, err := l.inner.Generate(ctx, req)

	data := store.LLMRequestEventData{
		Provider:    l.inner.Name(),
		Model:       l.inner.ModelID(),
		Purpose:     purpose,
		LatencyMs:   time.Since(start).Milliseconds(),
		Success:     err == nil,
		RequestBody: serializeRequest(req),
	}

	if resp != nil {
		data.InputTokens = resp.Usage.InputTokens
		data.OutputTokens = resp.Usage.OutputTokens
		if resp.Model != "" {
			data.Model = resp.Model
		}
		data.ResponseBody = string(resp.Content)
	}

	if err != nil {
		data.ErrorMessage = err.Error()
		data.ErrorKind = string(Classify(err))
	}

	entry := l.logger.WithFields(logrus.Fields{
		"provider":   data.Provider,
		"model":      data.Model,
		"purpose":    purpose,
		"latency_ms": data.LatencyMs,
	})
	if err != nil {
		entry.WithError(err).WithField("kind", data.ErrorKind).Debug("llm request failed")
	} else {
		entry.WithField("output_tokens", data.OutputTokens).Debug("llm request")
	}

	// A detached context keeps the audit row when the caller has given up.
	if logErr := l.eventRepo.AppendLLMRequest(context.WithoutCancel(ctx), data); logErr != nil {
		entry.WithError(logErr).Warn("failed to log LLM request event")
	}

	return resp, err
}

func (l *LoggingProvider) Name() string    { return l.inner.Name() }
func (l *LoggingProvider) ModelID() string { return l.inner.ModelID() }

// serializeRequest builds a readable representation of the LLM request.
func serializeRequest(req Request) string {
	var b strings.Builder

	if req.System != "" {
		b.WriteString("[system]\n")
		b.WriteString(req.System)
		b.WriteString("\n\n")
	}

	for _, m := range req.Messages {
		fmt.Fprintf(&b, "[%s]\n%s\n\n", m.Role, m.Content)
	}

	if req.Schema != nil {
		if def, err := json.Marshal(req.Schema.Definition); err == nil {
			fmt.Fprintf(&b, "[schema: %s]\n%s\n", req.Schema.Name, def)
		}
	}

	return b.String()
}
