package ratelimit

import (
	"context"
	"time"
)

// RateLimiter decides whether a client may make another request in a category
type RateLimiter interface {
	// Allow reports whether the request may proceed and, when it may not, how long to wait.
	Allow(ctx context.Context, clientID string, category string) (bool, time.Duration, error)
	Limit(category string) RateLimit
	GetStats() RateLimiterStats
	Close() error
}

// RateLimit defines the configuration for rate limiting
type RateLimit struct {
	RequestsPerMinute int           `json:"requestsPerMinute"`
	BurstSize         int           `json:"burstSize"`
	WindowSize        time.Duration `json:"windowSize"`
}

// RateLimiterStats provides statistics about rate limiting
type RateLimiterStats struct {
	TotalRequests   int64   `json:"totalRequests"`
	BlockedRequests int64   `json:"blockedRequests"`
	BlockRate       float64 `json:"blockRate"`
	ActiveKeys      int     `json:"activeKeys"`
}

// TokenBucket represents a token bucket for rate limiting
type TokenBucket struct {
	Capacity   float64   `json:"capacity"`
	Tokens     float64   `json:"tokens"`
	RefillRate float64   `json:"refillRate"` // tokens per second
	LastRefill time.Time `json:"lastRefill"`
}
