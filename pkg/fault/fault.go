package fault

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/segmentio/ksuid"
	"google.golang.org/genai"
)

// Kind is the machine-readable classification of a failure.
type Kind string

const (
	RateLimit         Kind = "RATE_LIMIT"
	InvalidRequest    Kind = "INVALID_REQUEST"
	UpstreamFault     Kind = "API_ERROR"
	Timeout           Kind = "TIMEOUT"
	ContentFilter     Kind = "CONTENT_FILTER"
	ResourceExhausted Kind = "RESOURCE_EXHAUSTED"
	RetryFailed       Kind = "RETRY_FAILED"
)

var messages = map[Kind]string{
	RateLimit:         "API rate limit exceeded. Please try again later.",
	InvalidRequest:    "Invalid request parameters provided.",
	UpstreamFault:     "External API error occurred.",
	Timeout:           "Request timed out. Please try again.",
	ContentFilter:     "Content violates safety guidelines.",
	ResourceExhausted: "AI resource quota exhausted.",
	RetryFailed:       "Maximum retry attempts exceeded.",
}

var statuses = map[Kind]int{
	RateLimit:         http.StatusTooManyRequests,
	InvalidRequest:    http.StatusBadRequest,
	UpstreamFault:     http.StatusInternalServerError,
	Timeout:           http.StatusGatewayTimeout,
	ContentFilter:     http.StatusUnprocessableEntity,
	ResourceExhausted: http.StatusTooManyRequests,
	RetryFailed:       http.StatusInternalServerError,
}

// Error is a failure normalized into the fixed taxonomy. It is created once,
// at the moment the underlying fault is caught, and not mutated afterwards.
type Error struct {
	Kind          Kind
	Message       string
	Retryable     bool
	CorrelationID string
	Latency       time.Duration
	Details       map[string]any

	cause error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.cause }

// Status returns the HTTP status equivalent for the classification.
func (e *Error) Status() int {
	if s, ok := statuses[e.Kind]; ok {
		return s
	}
	return http.StatusInternalServerError
}

// Message returns the fixed user-facing message for a kind.
func Message(kind Kind) string {
	if m, ok := messages[kind]; ok {
		return m
	}
	return messages[UpstreamFault]
}

// New builds an error of the given kind with a fresh correlation ID.
// Retryability follows the taxonomy default for the kind.
func New(kind Kind, details map[string]any) *Error {
	return &Error{
		Kind:          kind,
		Message:       Message(kind),
		Retryable:     kind == RateLimit || kind == ResourceExhausted || kind == Timeout,
		CorrelationID: ksuid.New().String(),
		Details:       details,
	}
}

// Invalid reports a structural validation failure on a named field.
// These are fatal: no retry, no upstream call.
func Invalid(field string, details map[string]any) *Error {
	if details == nil {
		details = make(map[string]any, 1)
	}
	details["field"] = field
	return New(InvalidRequest, details)
}

// Filtered reports a local content-safety rejection.
func Filtered(details map[string]any) *Error {
	return New(ContentFilter, details)
}

// Wrap attaches an underlying cause to a taxonomy error.
func (e *Error) Wrap(err error) *Error {
	e.cause = err
	if e.Details == nil {
		e.Details = make(map[string]any, 1)
	}
	if err != nil {
		e.Details["original_error"] = err.Error()
	}
	return e
}

// Classify maps an upstream fault into the taxonomy. Already-classified
// errors pass through unchanged except for a latency stamp. Anything not
// explicitly enumerated defaults to a non-retryable upstream fault.
func Classify(err error, latency time.Duration) *Error {
	var classified *Error
	if errors.As(err, &classified) {
		if classified.Latency == 0 {
			classified.Latency = latency
		}
		return classified
	}

	out := classify(err)
	out.Latency = latency
	return out.Wrap(err)
}

func classify(err error) *Error {
	if errors.Is(err, context.DeadlineExceeded) {
		return New(Timeout, nil)
	}

	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		return fromStatus(apiErr.StatusCode, "")
	}

	var genErr genai.APIError
	if errors.As(err, &genErr) {
		return fromStatus(genErr.Code, genErr.Status)
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return New(Timeout, nil)
		}
		// Connection-level faults are transient.
		e := New(UpstreamFault, nil)
		e.Retryable = true
		return e
	}

	return New(UpstreamFault, nil)
}

func fromStatus(code int, status string) *Error {
	switch {
	case code == http.StatusTooManyRequests:
		if status == "RESOURCE_EXHAUSTED" {
			return New(ResourceExhausted, nil)
		}
		return New(RateLimit, nil)
	case code == http.StatusBadRequest:
		return New(InvalidRequest, nil)
	case code == http.StatusUnprocessableEntity:
		return New(ContentFilter, nil)
	case code == http.StatusGatewayTimeout:
		return New(Timeout, nil)
	case code >= http.StatusInternalServerError:
		// Transient server-side faults get another attempt.
		e := New(UpstreamFault, nil)
		e.Retryable = true
		return e
	default:
		return New(UpstreamFault, nil)
	}
}

// Exhausted wraps the last fault of an exhausted retry loop so callers can
// tell "gave up after N tries" apart from an immediate rejection.
func Exhausted(last *Error, attempts int) *Error {
	e := New(RetryFailed, map[string]any{
		"attempts":  attempts,
		"last_kind": string(last.Kind),
	})
	e.Retryable = false
	e.Latency = last.Latency
	return e.Wrap(last)
}
