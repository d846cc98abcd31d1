package llm

import (
	"context"
	"errors"
	"io"
	"math"
	"math/rand/v2"
	"time"

	"github.com/sirupsen/logrus"
)

// RetryProvider retries transient failures with exponential backoff.
//
// Rate limits and outages are retried up to MaxAttempts. A schema violation
// gets one more try. Refusals, truncation, client errors and cancellation
// fail immediately.
type RetryProvider struct {
	inner  Provider
	config RetryConfig
	logger logrus.FieldLogger
}

// WithRetry wraps a Provider with retry logic. A nil logger discards the
// per-attempt debug lines.
func WithRetry(p Provider, cfg RetryConfig, logger logrus.FieldLogger) Provider {
	if logger == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		logger = l
	}
	return &RetryProvider{inner: p, config: cfg, logger: logger}
}

func (r *RetryProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	attempts := max(r.config.MaxAttempts, 1)
	invalidSeen := false

	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		resp, err := r.inner.Generate(ctx, req)
		if err == nil {
			return resp, nil
		}
		lastErr = err

		kind := Classify(err)
		switch kind {
		case KindCanceled, KindRefused, KindTruncated, KindRejected:
			return nil, err
		case KindInvalid:
			if invalidSeen {
				return nil, err
			}
			invalidSeen = true
		}
		if attempt == attempts-1 {
			break
		}

		wait := r.delay(attempt, err)
		r.logger.WithFields(logrus.Fields{
			"provider": r.inner.Name(),
			"attempt":  attempt + 1,
			"kind":     kind,
			"wait":     wait,
		}).Debug("retrying llm request")

		if err := sleep(ctx, wait); err != nil {
			return nil, err
		}
	}
	return nil, lastErr
}

func (r *RetryProvider) Name() string    { return r.inner.Name() }
func (r *RetryProvider) ModelID() string { return r.inner.ModelID() }

// delay honours a server-provided Retry-After, otherwise grows the wait
// geometrically up to MaxWait with ±20% jitter.
func (r *RetryProvider) delay(attempt int, err error) time.Duration {
	var rl *ErrRateLimit
	if errors.As(err, &rl) && rl.RetryAfter > 0 {
		return rl.RetryAfter
	}

	mult := r.config.Multiplier
	if mult < 1 {
		mult = 1
	}
	wait := float64(r.config.InitialWait) * math.Pow(mult, float64(attempt))
	wait = math.Min(wait, float64(r.config.MaxWait))
	wait *= 1 + 0.2*(2*rand.Float64()-1)
	return time.Duration(math.Max(wait, 0))
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
