package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"
)

// ErrRateLimit indicates the provider returned a rate limit error (429).
type ErrRateLimit struct {
	RetryAfter time.Duration
	Err        error
}

func (e *ErrRateLimit) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("rate limited, retry after %s: %v", e.RetryAfter, e.Err)
	}
	return fmt.Sprintf("rate limited: %v", e.Err)
}

func (e *ErrRateLimit) Unwrap() error { return e.Err }

// ErrInvalidResponse indicates the model returned content that does not
// conform to the requested schema.
type ErrInvalidResponse struct {
	Content json.RawMessage
	Err     error
}

func (e *ErrInvalidResponse) Error() string {
	return fmt.Sprintf("invalid LLM response: %v", e.Err)
}

func (e *ErrInvalidResponse) Unwrap() error { return e.Err }

// ErrProviderUnavailable indicates the provider could not serve the request.
// Permanent is set for client errors (bad key, unknown model) that will not
// go away on their own.
type ErrProviderUnavailable struct {
	Status    int
	Permanent bool
	Err       error
}

func (e *ErrProviderUnavailable) Error() string {
	switch {
	case e.Err == nil:
		return "LLM provider unavailable"
	case e.Status != 0:
		return fmt.Sprintf("LLM provider unavailable (HTTP %d): %v", e.Status, e.Err)
	default:
		return fmt.Sprintf("LLM provider unavailable: %v", e.Err)
	}
}

func (e *ErrProviderUnavailable) Unwrap() error { return e.Err }

// ErrMaxTokensExceeded indicates the response was cut off at MaxTokens.
type ErrMaxTokensExceeded struct {
	Content json.RawMessage
}

func (e *ErrMaxTokensExceeded) Error() string {
	return "LLM response truncated: max tokens exceeded"
}

// ErrRefused indicates the provider's safety system declined to answer.
// Symptom descriptions (bleeding, pain) trip these filters now and then;
// the rule engine answers instead.
type ErrRefused struct {
	Reason string
}

func (e *ErrRefused) Error() string {
	if e.Reason == "" {
		return "LLM refused the request"
	}
	return "LLM refused the request: " + e.Reason
}

// Kind is a coarse failure class used for retry decisions and as a low
// cardinality label.
type Kind string

const (
	KindNone        Kind = ""
	KindCanceled    Kind = "canceled"
	KindRateLimit   Kind = "rate_limit"
	KindUnavailable Kind = "unavailable"
	KindRejected    Kind = "rejected"
	KindInvalid     Kind = "invalid_response"
	KindTruncated   Kind = "truncated"
	KindRefused     Kind = "refused"
	KindOther       Kind = "other"
)

// Classify maps err to its Kind.
func Classify(err error) Kind {
	if err == nil {
		return KindNone
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return KindCanceled
	}

	var (
		rl      *ErrRateLimit
		unavail *ErrProviderUnavailable
		inv     *ErrInvalidResponse
		trunc   *ErrMaxTokensExceeded
		refused *ErrRefused
	)
	switch {
	case errors.As(err, &rl):
		return KindRateLimit
	case errors.As(err, &refused):
		return KindRefused
	case errors.As(err, &trunc):
		return KindTruncated
	case errors.As(err, &inv):
		return KindInvalid
	case errors.As(err, &unavail):
		if unavail.Permanent {
			return KindRejected
		}
		return KindUnavailable
	}
	return KindOther
}

// statusError converts an SDK error carrying an HTTP status into one of the
// typed errors above.
func statusError(status int, header http.Header, err error) error {
	switch {
	case status == http.StatusTooManyRequests:
		return &ErrRateLimit{RetryAfter: retryAfter(header), Err: err}
	case status == http.StatusRequestTimeout:
		return &ErrProviderUnavailable{Status: status, Err: err}
	case status >= 400 && status < 500:
		return &ErrProviderUnavailable{Status: status, Permanent: true, Err: err}
	default:
		return &ErrProviderUnavailable{Status: status, Err: err}
	}
}

// retryAfter reads a Retry-After header given in seconds or as an HTTP date.
func retryAfter(h http.Header) time.Duration {
	v := h.Get("Retry-After")
	if v == "" {
		return 0
	}
	if secs, err := strconv.Atoi(v); err == nil && secs > 0 {
		return time.Duration(secs) * time.Second
	}
	if at, err := http.ParseTime(v); err == nil {
		if d := time.Until(at); d > 0 {
			return d
		}
	}
	return 0
}
