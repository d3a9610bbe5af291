package ratelimit

import (
	"strings"
	"time"
)

// Rate limit categories
const (
	CategoryAuth         = "auth"
	CategoryAuthLogin    = "auth_login"
	CategoryPasses       = "passes"
	CategoryPassesCreate = "passes_create"
	CategoryPassesStatus = "passes_status"
	CategoryViews        = "views"
	CategoryReports      = "reports"
	CategoryHealth       = "health"
	CategoryDefault      = "default"
)

// Config holds the configuration for rate limiting
type Config struct {
	Limits map[string]RateLimit `json:"limits"`

	// Redis key prefix for rate limiting data
	RedisKeyPrefix string `json:"redisKeyPrefix"`

	// Cleanup interval for idle in-memory buckets
	CleanupInterval time.Duration `json:"cleanupInterval"`

	Enabled bool `json:"enabled"`
}

// DefaultConfig returns a default rate limiting configuration
func DefaultConfig() *Config {
	return &Config{
		Limits: map[string]RateLimit{
			CategoryAuth:      {RequestsPerMinute: 20, BurstSize: 10, WindowSize: time.Minute},
			CategoryAuthLogin: {RequestsPerMinute: 10, BurstSize: 5, WindowSize: time.Minute},

			// each request costs a verifier call
			CategoryPassesCreate: {RequestsPerMinute: 10, BurstSize: 3, WindowSize: time.Minute},
			CategoryPasses:       {RequestsPerMinute: 120, BurstSize: 30, WindowSize: time.Minute},
			CategoryPassesStatus: {RequestsPerMinute: 60, BurstSize: 20, WindowSize: time.Minute},

			CategoryViews:   {RequestsPerMinute: 120, BurstSize: 30, WindowSize: time.Minute},
			CategoryReports: {RequestsPerMinute: 20, BurstSize: 5, WindowSize: time.Minute},

			CategoryHealth: {RequestsPerMinute: 1000, BurstSize: 100, WindowSize: time.Minute},

			CategoryDefault: {RequestsPerMinute: 60, BurstSize: 15, WindowSize: time.Minute},
		},
		RedisKeyPrefix:  "ratelimit:",
		CleanupInterval: 5 * time.Minute,
		Enabled:         true,
	}
}

var routeCategories = map[string]string{
	"POST:/api/v1/auth/register": CategoryAuth,
	"POST:/api/v1/auth/login":    CategoryAuthLogin,
	"POST:/api/v1/auth/logout":   CategoryAuth,
	"GET:/api/v1/auth/me":        CategoryAuth,

	"GET:/api/v1/passes":              CategoryPasses,
	"GET:/api/v1/passes/mine":         CategoryPasses,
	"GET:/api/v1/passes/:id":          CategoryPasses,
	"POST:/api/v1/passes":             CategoryPassesCreate,
	"PATCH:/api/v1/passes/:id/status": CategoryPassesStatus,
	"GET:/api/v1/views/:view":         CategoryViews,
	"GET:/api/v1/reports/*":           CategoryReports,
	"GET:/api/v1/health":              CategoryHealth,
}

// Category maps a method and route template (as registered with the router)
// to a rate limit category.
func (c *Config) Category(method, route string) string {
	key := method + ":" + route
	if category, exists := routeCategories[key]; exists {
		return category
	}

	for pattern, category := range routeCategories {
		if matchesPattern(key, pattern) {
			return category
		}
	}

	return CategoryDefault
}

// Limit returns the limit for a category, falling back to the default category.
func (c *Config) Limit(category string) RateLimit {
	if limit, exists := c.Limits[category]; exists {
		return limit
	}
	if limit, exists := c.Limits[CategoryDefault]; exists {
		return limit
	}
	return RateLimit{
		RequestsPerMinute: 60,
		BurstSize:         15,
		WindowSize:        time.Minute,
	}
}

// matchesPattern checks if a key matches a pattern with a trailing wildcard
func matchesPattern(key, pattern string) bool {
	if prefix, ok := strings.CutSuffix(pattern, "*"); ok {
		return strings.HasPrefix(key, prefix)
	}
	return key == pattern
}
