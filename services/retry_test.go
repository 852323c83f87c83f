package services

import (
	"context"
	"errors"
	"testing"
	"time"
)

var fastRetry = RetryConfig{
	MaxRetries:     3,
	InitialBackoff: 5 * time.Millisecond,
	MaxBackoff:     20 * time.Millisecond,
}

func TestWithRetry(t *testing.T) {
	transient := errors.New("connection refused")
	bad := errors.New("invalid database url")

	tests := []struct {
		name      string
		failures  int   // calls that fail before success
		err       error // error returned while failing
		wantCalls int
		wantErr   error
	}{
		{name: "first try", failures: 0, err: transient, wantCalls: 1},
		{name: "eventual success", failures: 2, err: transient, wantCalls: 3},
		{name: "exhausted", failures: 10, err: transient, wantCalls: 4, wantErr: transient},
		{name: "permanent", failures: 10, err: Permanent(bad), wantCalls: 1, wantErr: bad},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			err := WithRetry(context.Background(), "connect", fastRetry, func() error {
				calls++
				if calls <= tt.failures {
					return tt.err
				}
				return nil
			})

			if calls != tt.wantCalls {
				t.Errorf("expected %d calls, got %d", tt.wantCalls, calls)
			}
			if tt.wantErr == nil && err != nil {
				t.Errorf("expected no error, got: %v", err)
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got: %v", tt.wantErr, err)
			}
		})
	}
}

func TestWithRetry_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	config := RetryConfig{MaxRetries: 5, InitialBackoff: time.Second, MaxBackoff: time.Second}

	calls := 0
	err := WithRetry(ctx, "connect", config, func() error {
		calls++
		cancel()
		return errors.New("unreachable")
	})

	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got: %v", err)
	}
	if calls != 1 {
		t.Errorf("expected the backoff wait to observe cancellation, got %d calls", calls)
	}
}

func TestWithRetry_BackoffIsCapped(t *testing.T) {
	config := RetryConfig{MaxRetries: 4, InitialBackoff: 5 * time.Millisecond, MaxBackoff: 10 * time.Millisecond}

	start := time.Now()
	_ = WithRetry(context.Background(), "connect", config, func() error {
		return errors.New("down")
	})
	elapsed := time.Since(start)

	// 5 + 10 + 10 + 10
	if elapsed < 35*time.Millisecond {
		t.Errorf("expected at least 35ms of backoff, got %v", elapsed)
	}
	if elapsed > 500*time.Millisecond {
		t.Errorf("backoff not capped, took %v", elapsed)
	}
}

func TestPermanent_Nil(t *testing.T) {
	if Permanent(nil) != nil {
		t.Error("Permanent(nil) should be nil")
	}
}
