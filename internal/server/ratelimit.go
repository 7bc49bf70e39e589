package server

import (
	"sync"
	"time"
)

// tokenBucket is a per-client request budget that refills at a steady
// rate. Matching is CPU-heavy, so the API sheds abusive clients early
// instead of queueing them on the dispatcher.
type tokenBucket struct {
	mu         sync.Mutex
	capacity   float64
	refillRate float64 // tokens per second
	tokens     float64
	lastRefill time.Time
}

func (b *tokenBucket) allow(now time.Time) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.tokens += now.Sub(b.lastRefill).Seconds() * b.refillRate
	if b.tokens > b.capacity {
		b.tokens = b.capacity
	}
	b.lastRefill = now

	if b.tokens < 1 {
		return false
	}
	b.tokens--
	return true
}

// rateLimiter tracks one bucket per client. Idle buckets are dropped
// during Allow calls so the map cannot grow unbounded.
type rateLimiter struct {
	mu         sync.Mutex
	buckets    map[string]*tokenBucket
	lastSeen   map[string]time.Time
	perMinute  int
	idleExpiry time.Duration
}

func newRateLimiter(perMinute int) *rateLimiter {
	return &rateLimiter{
		buckets:    make(map[string]*tokenBucket),
		lastSeen:   make(map[string]time.Time),
		perMinute:  perMinute,
		idleExpiry: time.Hour,
	}
}

// Allow reports whether the client may proceed. A non-positive limit
// disables rate limiting entirely.
func (l *rateLimiter) Allow(clientID string) bool {
	if l.perMinute <= 0 {
		return true
	}
	now := time.Now()

	l.mu.Lock()
	bucket, ok := l.buckets[clientID]
	if !ok {
		bucket = &tokenBucket{
			capacity:   float64(l.perMinute),
			refillRate: float64(l.perMinute) / 60,
			tokens:     float64(l.perMinute),
			lastRefill: now,
		}
		l.buckets[clientID] = bucket
	}
	l.lastSeen[clientID] = now
	l.dropIdleLocked(now)
	l.mu.Unlock()

	return bucket.allow(now)
}

func (l *rateLimiter) dropIdleLocked(now time.Time) {
	for id, seen := range l.lastSeen {
		if now.Sub(seen) > l.idleExpiry {
			delete(l.buckets, id)
			delete(l.lastSeen, id)
		}
	}
}
