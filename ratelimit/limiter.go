// Package ratelimit implements sliding-window admission control shared by
// every tool call.
package ratelimit

import (
	"context"
	"fmt"
	"time"
)

// GlobalKey is the window used when calls are not told apart by caller
const GlobalKey = "global"

// Scope selects whether windows are tracked per caller or process-wide
type Scope string

const (
	ScopeGlobal Scope = "global"
	ScopeClient Scope = "client"
)

// ParseScope accepts "global" or "client"
func ParseScope(s string) (Scope, error) {
	switch Scope(s) {
	case ScopeGlobal, ScopeClient:
		return Scope(s), nil
	default:
		return "", fmt.Errorf("unknown rate limit scope %q (want global or client)", s)
	}
}

// Key returns the window key for a caller. Without a caller key, or with
// global scope, every call shares one window.
func (s Scope) Key(callerKey string) string {
	if s != ScopeClient || callerKey == "" {
		return GlobalKey
	}
	return "client:" + callerKey
}

// Limiter admits or rejects a call for a key at the given instant.
// A rejection is an *apperr.RateLimitError carrying the wait until the
// oldest counted call leaves the window.
type Limiter interface {
	Admit(ctx context.Context, key string, now time.Time) error
}

// Config holds the window budget
type Config struct {
	Budget int
	Window time.Duration
}

// DefaultConfig allows 60 calls per minute
func DefaultConfig() Config {
	return Config{Budget: 60, Window: time.Minute}
}

func (c Config) validate() error {
	if c.Budget <= 0 {
		return fmt.Errorf("rate limit budget must be positive, got %d", c.Budget)
	}
	if c.Window <= 0 {
		return fmt.Errorf("rate limit window must be positive, got %s", c.Window)
	}
	return nil
}
