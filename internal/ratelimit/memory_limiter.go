package ratelimit

import (
	"context"
	"sync"
	"time"
)

// MemoryLimiter is a per-process sliding window limiter.
type MemoryLimiter struct {
	mu      sync.Mutex
	buckets map[string][]time.Time
	now     func() time.Time
}

var _ Limiter = (*MemoryLimiter)(nil)

func NewMemoryLimiter() *MemoryLimiter {
	return &MemoryLimiter{
		buckets: make(map[string][]time.Time),
		now:     time.Now,
	}
}

func (m *MemoryLimiter) Check(_ context.Context, key string, limit int, window time.Duration) (*Result, error) {
	now := m.now()

	m.mu.Lock()
	defer m.mu.Unlock()

	requests := keepRecent(m.buckets[key], now.Add(-window))

	allowed := len(requests) < limit
	if allowed {
		requests = append(requests, now)
	}
	m.buckets[key] = requests

	result := &Result{Allowed: allowed, Remaining: max(limit-len(requests), 0)}
	if len(requests) > 0 {
		result.RetryAfter = max(requests[0].Add(window).Sub(now), 0)
	}

	if !allowed {
		return result, ErrLimitExceeded
	}
	return result, nil
}

// Cleanup drops keys without a request in the last maxAge.
func (m *MemoryLimiter) Cleanup(maxAge time.Duration) int {
	if maxAge <= 0 {
		return 0
	}

	cutoff := m.now().Add(-maxAge)

	m.mu.Lock()
	defer m.mu.Unlock()

	removed := 0
	for key, requests := range m.buckets {
		if len(requests) == 0 || requests[len(requests)-1].Before(cutoff) {
			delete(m.buckets, key)
			removed++
		}
	}
	return removed
}

// Len returns the number of tracked keys.
func (m *MemoryLimiter) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.buckets)
}

func keepRecent(reqs []time.Time, windowStart time.Time) []time.Time {
	first := 0
	for first < len(reqs) && reqs[first].Before(windowStart) {
		first++
	}

	if first == 0 {
		return reqs
	}

	n := copy(reqs, reqs[first:])
	return reqs[:n]
}
