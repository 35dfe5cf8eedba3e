package ratelimit

import (
	"sync"
	"time"
)

// RateLimiter is the minimal interface callers need; satisfied by Limiter.
type RateLimiter interface {
	Allow(key string) bool
	Wait(key string)
}

// Limiter enforces a minimum interval between operations keyed by host
// (or any other string key). It is safe for concurrent use.
type Limiter struct {
	mu          sync.Mutex
	hosts       map[string]time.Time
	minInterval time.Duration
}

// New creates a limiter with the given minimum interval per key.
func New(minInterval time.Duration) *Limiter {
	return &Limiter{
		hosts:       make(map[string]time.Time),
		minInterval: minInterval,
	}
}

// Allow reports whether an operation for key may proceed now. When it
// returns true the key's timestamp is updated; a false return leaves the
// previous timestamp untouched.
func (l *Limiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	last, ok := l.hosts[key]
	if ok && now.Sub(last) < l.minInterval {
		return false
	}
	l.hosts[key] = now
	return true
}

// Wait blocks until the minimum interval since the last operation for key
// has elapsed, then records the new operation time.
func (l *Limiter) Wait(key string) {
	l.mu.Lock()
	last, ok := l.hosts[key]
	now := time.Now()
	if !ok || now.Sub(last) >= l.minInterval {
		l.hosts[key] = now
		l.mu.Unlock()
		return
	}
	sleep := l.minInterval - now.Sub(last)
	l.hosts[key] = now.Add(sleep)
	l.mu.Unlock()

	time.Sleep(sleep)
}

// Reset clears the recorded timestamp for key.
func (l *Limiter) Reset(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.hosts, key)
}

// ResetAll clears all recorded timestamps.
func (l *Limiter) ResetAll() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.hosts = make(map[string]time.Time)
}

var _ RateLimiter = (*Limiter)(nil)
