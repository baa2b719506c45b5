package ratelimiter

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

type bucketKey struct {
	key  string
	kind Kind
}

// MemoryLimiter is a per-process Limiter backed by golang.org/x/time/rate,
// with one token bucket per (connection key, action kind) pair. Idle
// buckets are swept periodically so long-lived servers don't accumulate
// one entry per connection that ever existed.
type MemoryLimiter struct {
	bounds map[Kind]Bound

	mu      sync.Mutex
	buckets map[bucketKey]*trackedBucket
}

type trackedBucket struct {
	limiter    *rate.Limiter
	lastSeenAt time.Time
}

// NewMemoryLimiter creates a MemoryLimiter using bounds (DefaultBounds if nil)
// and starts its idle-bucket sweeper, stopped when ctx is canceled.
func NewMemoryLimiter(ctx context.Context, bounds map[Kind]Bound) *MemoryLimiter {
	if bounds == nil {
		bounds = DefaultBounds
	}
	l := &MemoryLimiter{bounds: bounds, buckets: make(map[bucketKey]*trackedBucket)}
	go l.sweepLoop(ctx)
	return l
}

func (l *MemoryLimiter) Allow(_ context.Context, key string, kind Kind) (bool, error) {
	bound, ok := l.bounds[kind]
	if !ok {
		return true, nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	bk := bucketKey{key: key, kind: kind}
	tb, ok := l.buckets[bk]
	if !ok {
		window := time.Duration(bound.Window) * time.Millisecond
		every := rate.Every(window / time.Duration(bound.N))
		tb = &trackedBucket{limiter: rate.NewLimiter(every, bound.N)}
		l.buckets[bk] = tb
	}
	tb.lastSeenAt = time.Now()

	return tb.limiter.Allow(), nil
}

func (l *MemoryLimiter) sweepLoop(ctx context.Context) {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			l.sweep()
		}
	}
}

func (l *MemoryLimiter) sweep() {
	l.mu.Lock()
	defer l.mu.Unlock()

	cutoff := time.Now().Add(-10 * time.Minute)
	for k, tb := range l.buckets {
		if tb.lastSeenAt.Before(cutoff) {
			delete(l.buckets, k)
		}
	}
}

// Reset drops every bucket associated with key.
func (l *MemoryLimiter) Reset(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for k := range l.buckets {
		if k.key == key {
			delete(l.buckets, k)
		}
	}
}
