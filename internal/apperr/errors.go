// Package apperr defines the four error kinds a tool call can end in.
// Callers only ever see these types; anything else is classified as
// UpstreamError before it leaves the dispatcher so store details never leak.
package apperr

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"time"
)

// Kind is the machine-readable error class sent to callers
type Kind string

const (
	KindValidation  Kind = "validation_error"
	KindRateLimited Kind = "rate_limited"
	KindNotFound    Kind = "not_found"
	KindUpstream    Kind = "upstream_error"
)

// ValidationError rejects an argument before any query runs
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// Invalid builds a ValidationError with a formatted reason
func Invalid(field, format string, args ...any) *ValidationError {
	return &ValidationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// RateLimitError rejects a call whose key has exhausted its window budget
type RateLimitError struct {
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("rate limit exceeded, retry after %s", e.RetryAfter.Round(time.Millisecond))
}

// RetryAfterSeconds rounds the wait up to whole seconds, minimum one
func (e *RateLimitError) RetryAfterSeconds() int {
	s := int(math.Ceil(e.RetryAfter.Seconds()))
	if s < 1 {
		return 1
	}
	return s
}

// NotFoundError reports an identifier that resolved to nothing
type NotFoundError struct {
	Identifier string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("no company found matching %q", e.Identifier)
}

// UpstreamError wraps a store failure. Error() never includes the cause.
type UpstreamError struct {
	Cause   error
	Timeout bool
}

func (e *UpstreamError) Error() string {
	if e.Timeout {
		return "data source did not respond in time"
	}
	return "data source unavailable"
}

func (e *UpstreamError) Unwrap() error { return e.Cause }

// Upstream wraps err as an UpstreamError, marking deadline expiry
func Upstream(err error) *UpstreamError {
	return &UpstreamError{Cause: err, Timeout: errors.Is(err, context.DeadlineExceeded)}
}

// Classify normalizes any error into one of the four kinds.
// Errors that already carry a kind are returned unchanged.
func Classify(err error) error {
	if err == nil {
		return nil
	}
	var (
		ve *ValidationError
		re *RateLimitError
		ne *NotFoundError
		ue *UpstreamError
	)
	switch {
	case errors.As(err, &ve):
		return ve
	case errors.As(err, &re):
		return re
	case errors.As(err, &ne):
		return ne
	case errors.As(err, &ue):
		return ue
	default:
		return Upstream(err)
	}
}

// KindOf returns the kind of a classified error
func KindOf(err error) Kind {
	switch Classify(err).(type) {
	case *ValidationError:
		return KindValidation
	case *RateLimitError:
		return KindRateLimited
	case *NotFoundError:
		return KindNotFound
	default:
		return KindUpstream
	}
}

// HTTPStatus maps an error kind onto an HTTP status code
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindValidation:
		return http.StatusBadRequest
	case KindRateLimited:
		return http.StatusTooManyRequests
	case KindNotFound:
		return http.StatusNotFound
	default:
		if ue, ok := Classify(err).(*UpstreamError); ok && ue.Timeout {
			return http.StatusGatewayTimeout
		}
		return http.StatusBadGateway
	}
}
