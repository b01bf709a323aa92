package service

import (
	"context"
	"sync"
	"time"

	"github.com/msomdec/event-rsvp/internal/clock"
)

// TokenBucket is an in-memory per-key rate limiter. It throttles login
// attempts per client address and is safe for concurrent use.
type TokenBucket struct {
	mu       sync.Mutex
	buckets  map[string]*bucket
	rate     float64 // tokens added per second
	capacity float64 // maximum tokens
	clock    clock.Clock
}

type bucket struct {
	tokens float64
	last   time.Time
}

// NewTokenBucket creates a limiter allowing up to capacity tokens per key,
// refilling at rate tokens per second.
func NewTokenBucket(rate, capacity float64, clk clock.Clock) *TokenBucket {
	return &TokenBucket{
		buckets:  make(map[string]*bucket),
		rate:     rate,
		capacity: capacity,
		clock:    clk,
	}
}

// Allow reports whether key may proceed, consuming one token if so.
func (tb *TokenBucket) Allow(key string) bool {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	now := tb.clock.Now()
	b, ok := tb.buckets[key]
	if !ok {
		b = &bucket{tokens: tb.capacity, last: now}
		tb.buckets[key] = b
	}

	elapsed := now.Sub(b.last).Seconds()
	if elapsed > 0 {
		b.tokens = min(b.tokens+elapsed*tb.rate, tb.capacity)
	}
	b.last = now

	if b.tokens >= 1 {
		b.tokens--
		return true
	}
	return false
}

// Prune removes buckets idle for longer than maxIdle and returns how many
// were removed.
func (tb *TokenBucket) Prune(maxIdle time.Duration) int {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	cutoff := tb.clock.Now().Add(-maxIdle)
	removed := 0
	for key, b := range tb.buckets {
		if b.last.Before(cutoff) {
			delete(tb.buckets, key)
			removed++
		}
	}
	return removed
}

// RunCleanup prunes buckets idle for ten minutes every five minutes until
// ctx is cancelled.
func (tb *TokenBucket) RunCleanup(ctx context.Context) {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			tb.Prune(10 * time.Minute)
		}
	}
}
