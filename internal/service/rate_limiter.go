package service

import (
	"fmt"
	"sync"
	"time"
)

// RateLimitError is returned when a device exceeds its scan budget.
type RateLimitError struct {
	Key     string
	Current int
	Max     int
	Window  time.Duration
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("rate limit exceeded for %s (current: %d, max: %d per %s)", e.Key, e.Current, e.Max, e.Window)
}

// IsRateLimitError checks if an error is a RateLimitError.
func IsRateLimitError(err error) bool {
	_, ok := err.(*RateLimitError)
	return ok
}

// RateLimiter is a per-key sliding window limiter.
type RateLimiter struct {
	mu         sync.Mutex
	max        int
	window     time.Duration
	now        func() time.Time
	timestamps map[string][]time.Time
	lastSweep  time.Time
}

// NewRateLimiter allows max events per window for each key. max <= 0 disables limiting.
func NewRateLimiter(max int, window time.Duration, now func() time.Time) *RateLimiter {
	if now == nil {
		now = time.Now
	}
	return &RateLimiter{
		max:        max,
		window:     window,
		now:        now,
		timestamps: make(map[string][]time.Time),
	}
}

// Allow records an event for key, or returns a *RateLimitError when the window is full.
func (l *RateLimiter) Allow(key string) error {
	if l == nil || l.max <= 0 {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	windowStart := now.Add(-l.window)
	if now.Sub(l.lastSweep) >= l.window {
		l.sweep(windowStart)
		l.lastSweep = now
	}

	valid := l.timestamps[key][:0]
	for _, ts := range l.timestamps[key] {
		if ts.After(windowStart) {
			valid = append(valid, ts)
		}
	}

	if len(valid) >= l.max {
		l.timestamps[key] = valid
		return &RateLimitError{Key: key, Current: len(valid), Max: l.max, Window: l.window}
	}
	l.timestamps[key] = append(valid, now)
	return nil
}

// sweep drops keys whose newest event is outside the window. Timestamps are
// appended in order, so the last one is the newest.
func (l *RateLimiter) sweep(windowStart time.Time) {
	for key, ts := range l.timestamps {
		if len(ts) == 0 || !ts[len(ts)-1].After(windowStart) {
			delete(l.timestamps, key)
		}
	}
}
