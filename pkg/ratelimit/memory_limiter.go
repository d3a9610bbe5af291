package ratelimit

import (
	"context"
	"math"
	"sync"
	"sync/atomic"
	"time"
)

// MemoryRateLimiter implements RateLimiter with per-process token buckets
type MemoryRateLimiter struct {
	config  *Config
	total   atomic.Int64
	blocked atomic.Int64
	tokens  map[string]*TokenBucket // category:clientID -> bucket
	mu      sync.Mutex
	now     func() time.Time
	done    chan struct{}
	once    sync.Once
}

// NewMemoryRateLimiter creates a new in-memory rate limiter
func NewMemoryRateLimiter(config *Config) *MemoryRateLimiter {
	if config == nil {
		config = DefaultConfig()
	}

	limiter := &MemoryRateLimiter{
		config: config,
		tokens: make(map[string]*TokenBucket),
		now:    time.Now,
		done:   make(chan struct{}),
	}

	if config.CleanupInterval > 0 {
		go limiter.cleanupIdleBuckets()
	}

	return limiter
}

func (r *MemoryRateLimiter) Allow(_ context.Context, clientID string, category string) (bool, time.Duration, error) {
	if !r.config.Enabled {
		return true, 0, nil
	}

	r.total.Add(1)
	limit := r.config.Limit(category)
	key := category + ":" + clientID

	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	bucket, exists := r.tokens[key]
	if !exists {
		bucket = &TokenBucket{
			Capacity:   float64(limit.BurstSize),
			Tokens:     float64(limit.BurstSize),
			RefillRate: float64(limit.RequestsPerMinute) / 60,
			LastRefill: now,
		}
		r.tokens[key] = bucket
	}

	elapsed := now.Sub(bucket.LastRefill).Seconds()
	if elapsed > 0 {
		bucket.Tokens = math.Min(bucket.Capacity, bucket.Tokens+elapsed*bucket.RefillRate)
		bucket.LastRefill = now
	}

	if bucket.Tokens >= 1 {
		bucket.Tokens--
		return true, 0, nil
	}

	r.blocked.Add(1)

	if bucket.RefillRate <= 0 {
		return false, limit.WindowSize, nil
	}
	wait := time.Duration((1 - bucket.Tokens) / bucket.RefillRate * float64(time.Second))
	return false, wait, nil
}

func (r *MemoryRateLimiter) Limit(category string) RateLimit {
	return r.config.Limit(category)
}

func (r *MemoryRateLimiter) GetStats() RateLimiterStats {
	r.mu.Lock()
	active := len(r.tokens)
	r.mu.Unlock()

	return buildStats(r.total.Load(), r.blocked.Load(), active)
}

// Close stops the cleanup goroutine
func (r *MemoryRateLimiter) Close() error {
	r.once.Do(func() { close(r.done) })
	return nil
}

// cleanupIdleBuckets drops full buckets that have not been touched for an hour
func (r *MemoryRateLimiter) cleanupIdleBuckets() {
	ticker := time.NewTicker(r.config.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			r.evictIdle(time.Hour)
		case <-r.done:
			return
		}
	}
}

func (r *MemoryRateLimiter) evictIdle(idle time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	for key, bucket := range r.tokens {
		if now.Sub(bucket.LastRefill) > idle {
			delete(r.tokens, key)
		}
	}
}

func buildStats(total, blocked int64, active int) RateLimiterStats {
	stats := RateLimiterStats{
		TotalRequests:   total,
		BlockedRequests: blocked,
		ActiveKeys:      active,
	}
	if total > 0 {
		stats.BlockRate = float64(blocked) / float64(total)
	}
	return stats
}
