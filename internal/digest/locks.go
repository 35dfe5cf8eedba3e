package digest

import (
	"sync"
	"time"
)

// lockSet provides per-key in-process locks for the fan-out. A key held
// longer than the TTL is considered abandoned and reclaimed on the next
// sweep, so a crashed send cannot block a user forever.
type lockSet struct {
	mu   sync.Mutex
	held map[string]time.Time
	ttl  time.Duration
}

func newLockSet(ttl time.Duration) *lockSet {
	return &lockSet{
		held: make(map[string]time.Time),
		ttl:  ttl,
	}
}

// TryAcquire takes the lock for key if it is free or expired. It never
// blocks.
func (l *lockSet) TryAcquire(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if acquiredAt, ok := l.held[key]; ok && time.Since(acquiredAt) < l.ttl {
		return false
	}
	l.held[key] = time.Now()
	return true
}

// Release frees the lock for key. Releasing an unheld key is a no-op.
func (l *lockSet) Release(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.held, key)
}

// sweepExpired drops locks past their TTL and returns how many it removed.
func (l *lockSet) sweepExpired() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	removed := 0
	for key, acquiredAt := range l.held {
		if time.Since(acquiredAt) >= l.ttl {
			delete(l.held, key)
			removed++
		}
	}
	return removed
}
