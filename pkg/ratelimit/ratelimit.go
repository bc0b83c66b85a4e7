// Package ratelimit implements a sliding-window hit counter per key.
package ratelimit

import (
	"sync"
	"time"
)

type Limiter struct {
	mu      sync.Mutex
	limits  map[string][]time.Time
	window  time.Duration
	maxHits int
	now     func() time.Time
}

func NewLimiter(window time.Duration, maxHits int) *Limiter {
	return &Limiter{
		limits:  make(map[string][]time.Time),
		window:  window,
		maxHits: maxHits,
		now:     time.Now,
	}
}

// prune drops hits older than the window and returns what is left.
func (l *Limiter) prune(key string, now time.Time) []time.Time {
	hits, exists := l.limits[key]
	if !exists {
		return nil
	}

	windowStart := now.Add(-l.window)
	valid := hits[:0]
	for _, hit := range hits {
		if hit.After(windowStart) {
			valid = append(valid, hit)
		}
	}
	if len(valid) == 0 {
		delete(l.limits, key)
		return nil
	}
	l.limits[key] = valid
	return valid
}

// Allow records a hit for key and reports whether it fits in the window.
func (l *Limiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if len(l.prune(key, now)) >= l.maxHits {
		return false
	}

	l.limits[key] = append(l.limits[key], now)
	return true
}

// Remaining is how many more hits key may make in the current window.
func (l *Limiter) Remaining(key string) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	left := l.maxHits - len(l.prune(key, l.now()))
	if left < 0 {
		return 0
	}
	return left
}
