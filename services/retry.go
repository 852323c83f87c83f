package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"findata-mcp/observability"
)

// RetryConfig bounds an exponential backoff
type RetryConfig struct {
	MaxRetries     int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
}

// ConnectRetryConfig is used while waiting for backends at startup
var ConnectRetryConfig = RetryConfig{
	MaxRetries:     5,
	InitialBackoff: 500 * time.Millisecond,
	MaxBackoff:     8 * time.Second,
}

type permanentError struct{ err error }

func (e *permanentError) Error() string { return e.err.Error() }
func (e *permanentError) Unwrap() error { return e.err }

// Permanent marks an error that retrying cannot fix
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanentError{err: err}
}

// WithRetry runs fn until it succeeds, ctx ends, fn returns a Permanent
// error or the retries run out.
func WithRetry(ctx context.Context, operation string, config RetryConfig, fn func() error) error {
	var lastErr error
	backoff := config.InitialBackoff

	for attempt := 0; attempt <= config.MaxRetries; attempt++ {
		if attempt > 0 {
			timer := time.NewTimer(backoff)
			select {
			case <-ctx.Done():
				timer.Stop()
				return fmt.Errorf("%s cancelled during retry: %w", operation, ctx.Err())
			case <-timer.C:
			}

			backoff *= 2
			if backoff > config.MaxBackoff {
				backoff = config.MaxBackoff
			}
		}

		err := fn()
		if err == nil {
			return nil
		}

		var perm *permanentError
		if errors.As(err, &perm) {
			return perm.err
		}

		lastErr = err
		if attempt < config.MaxRetries {
			observability.Warn("retrying", "operation", operation, "attempt", attempt+1, "max", config.MaxRetries, "backoff", backoff, "error", err)
		}
	}

	return fmt.Errorf("%s failed after %d retries: %w", operation, config.MaxRetries, lastErr)
}
