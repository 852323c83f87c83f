package ratelimit

import (
	"context"
	"sync"
	"time"

	"findata-mcp/internal/apperr"
	"findata-mcp/observability"
)

// window is the timestamp sequence for one key. A window removed by Sweep
// is marked dead so a caller that fetched it just before removal retries
// against the map instead of counting into an orphan.
type window struct {
	mu     sync.Mutex
	stamps []time.Time
	dead   bool
}

// prune drops every timestamp at or before cutoff
func (w *window) prune(cutoff time.Time) {
	i := 0
	for i < len(w.stamps) && !w.stamps[i].After(cutoff) {
		i++
	}
	if i > 0 {
		w.stamps = append(w.stamps[:0], w.stamps[i:]...)
	}
}

// Memory is an in-process sliding window limiter. The map lock is only held
// to find or create a key's window; counting happens under the window's own
// lock so unrelated keys never wait on each other.
type Memory struct {
	cfg Config

	mu      sync.RWMutex
	windows map[string]*window
}

// NewMemory creates an in-memory limiter
func NewMemory(cfg Config) (*Memory, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &Memory{cfg: cfg, windows: make(map[string]*window)}, nil
}

func (m *Memory) lookup(key string) *window {
	m.mu.RLock()
	w, ok := m.windows[key]
	m.mu.RUnlock()
	if ok {
		return w
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if w, ok = m.windows[key]; !ok {
		w = &window{stamps: make([]time.Time, 0, 4)}
		m.windows[key] = w
	}
	return w
}

// Admit records the call and returns nil, or rejects it with a RateLimitError
func (m *Memory) Admit(_ context.Context, key string, now time.Time) error {
	for {
		w := m.lookup(key)
		w.mu.Lock()
		if w.dead {
			w.mu.Unlock()
			continue
		}

		w.prune(now.Add(-m.cfg.Window))
		if len(w.stamps) >= m.cfg.Budget {
			retryAfter := w.stamps[0].Add(m.cfg.Window).Sub(now)
			w.mu.Unlock()
			observability.GetMetrics().RecordRateLimitRejection("memory")
			return &apperr.RateLimitError{RetryAfter: retryAfter}
		}
		w.stamps = append(w.stamps, now)
		w.mu.Unlock()
		return nil
	}
}

// Sweep removes keys whose windows are empty at now and returns how many
func (m *Memory) Sweep(now time.Time) int {
	cutoff := now.Add(-m.cfg.Window)
	removed := 0

	m.mu.Lock()
	defer m.mu.Unlock()
	for key, w := range m.windows {
		w.mu.Lock()
		w.prune(cutoff)
		if len(w.stamps) == 0 {
			w.dead = true
			delete(m.windows, key)
			removed++
		}
		w.mu.Unlock()
	}
	return removed
}

// Len returns the number of tracked keys
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.windows)
}

// Run sweeps empty windows every interval until ctx is done
func (m *Memory) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = m.cfg.Window
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if n := m.Sweep(now); n > 0 {
				observability.Debug("swept idle rate limit windows", "removed", n)
			}
		}
	}
}
