package ratelimit

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
)

// fixedWindowScript counts requests in a window stored as a hash.
// Returns {allowed, reset_ms}.
var fixedWindowScript = redis.NewScript(`
	local key = KEYS[1]
	local burst_size = tonumber(ARGV[1])
	local window_size = tonumber(ARGV[2])
	local now = tonumber(ARGV[3])

	local count = tonumber(redis.call('HGET', key, 'count')) or 0
	local window_start = tonumber(redis.call('HGET', key, 'window_start')) or now

	if now - window_start >= window_size then
		count = 0
		window_start = now
	end

	local allowed = count < burst_size
	if allowed then
		count = count + 1
	end

	local reset_ms = 0
	if not allowed then
		reset_ms = (window_start + window_size) - now
	end

	redis.call('HSET', key, 'count', count, 'window_start', window_start)
	redis.call('PEXPIRE', key, window_size + 1000)

	return {allowed and 1 or 0, reset_ms}
`)

// RedisRateLimiter implements RateLimiter with a fixed window shared across instances
type RedisRateLimiter struct {
	client  *redis.Client
	config  *Config
	total   atomic.Int64
	blocked atomic.Int64
	now     func() time.Time
}

// NewRedisRateLimiter creates a new Redis-backed rate limiter
func NewRedisRateLimiter(client *redis.Client, config *Config) *RedisRateLimiter {
	if config == nil {
		config = DefaultConfig()
	}

	return &RedisRateLimiter{
		client: client,
		config: config,
		now:    time.Now,
	}
}

func (r *RedisRateLimiter) Allow(ctx context.Context, clientID string, category string) (bool, time.Duration, error) {
	if !r.config.Enabled {
		return true, 0, nil
	}

	r.total.Add(1)
	limit := r.config.Limit(category)
	key := fmt.Sprintf("%s%s:%s", r.config.RedisKeyPrefix, category, clientID)

	result, err := fixedWindowScript.Run(ctx, r.client, []string{key},
		limit.BurstSize,
		limit.WindowSize.Milliseconds(),
		r.now().UnixMilli(),
	).Int64Slice()
	if err != nil {
		return false, 0, fmt.Errorf("rate limit check failed: %w", err)
	}
	if len(result) != 2 {
		return false, 0, fmt.Errorf("unexpected script result format")
	}

	if result[0] != 1 {
		r.blocked.Add(1)
		return false, time.Duration(result[1]) * time.Millisecond, nil
	}

	return true, 0, nil
}

func (r *RedisRateLimiter) Limit(category string) RateLimit {
	return r.config.Limit(category)
}

// GetStats reports counters for this process; ActiveKeys is not tracked here.
func (r *RedisRateLimiter) GetStats() RateLimiterStats {
	return buildStats(r.total.Load(), r.blocked.Load(), 0)
}

// Close is a no-op; keys expire on their own.
func (r *RedisRateLimiter) Close() error {
	return nil
}
