// Package ratelimit implements a sliding-window per-client request counter.
// State is process-local and in-memory by design; it is neither durable nor
// shared across instances.
package ratelimit

import (
	"sync"
	"time"
)

// Limiter counts requests per client key within a trailing time window.
// The timestamp table is the only cross-request shared mutable state in the
// gateway; trim, check and record happen under one lock per call so the
// admit decision is atomic per key.
type Limiter struct {
	mu     sync.Mutex
	window time.Duration
	max    int
	hits   map[string][]time.Time

	now func() time.Time // overridable in tests
}

// Result reports the outcome of an admission check.
type Result struct {
	Limited   bool
	Limit     int
	Remaining int
	ResetAt   time.Time
}

// New creates a limiter admitting at most max requests per key per window.
func New(max int, window time.Duration) *Limiter {
	return &Limiter{
		window: window,
		max:    max,
		hits:   make(map[string][]time.Time),
		now:    time.Now,
	}
}

// Allow trims the key's timestamps to the window, checks the count against
// the limit and, if admitted, records the current request. Entries whose
// timestamp set empties after trimming are removed to bound memory growth.
func (l *Limiter) Allow(key string) Result {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	recent := l.trim(key, now)

	if len(recent) >= l.max {
		return Result{
			Limited:   true,
			Limit:     l.max,
			Remaining: 0,
			ResetAt:   recent[0].Add(l.window),
		}
	}

	recent = append(recent, now)
	l.hits[key] = recent

	return Result{
		Limited:   false,
		Limit:     l.max,
		Remaining: l.max - len(recent),
		ResetAt:   recent[0].Add(l.window),
	}
}

// trim drops timestamps older than the window and garbage-collects empty
// entries. Must be called with the lock held.
func (l *Limiter) trim(key string, now time.Time) []time.Time {
	cutoff := now.Add(-l.window)
	recorded := l.hits[key]

	kept := recorded[:0]
	for _, ts := range recorded {
		if ts.After(cutoff) {
			kept = append(kept, ts)
		}
	}

	if len(kept) == 0 {
		delete(l.hits, key)
		return nil
	}
	l.hits[key] = kept
	return kept
}
