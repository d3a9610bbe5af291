package middleware

import (
	"fmt"
	"hash/fnv"
	"net/http"
	"strconv"
	"time"

	"gatepass-backend/pkg/ratelimit"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RateLimitMiddleware creates a rate limiting middleware. Categories are
// resolved from the matched route template, so it must be installed on the
// engine or a group rather than wrapping the handler by hand.
func RateLimitMiddleware(limiter ratelimit.RateLimiter, config *ratelimit.Config, logger *zap.Logger) gin.HandlerFunc {
	if config == nil {
		config = ratelimit.DefaultConfig()
	}

	return func(c *gin.Context) {
		// Skip rate limiting for health checks in development
		if c.FullPath() == "/api/v1/health" && gin.Mode() == gin.DebugMode {
			c.Next()
			return
		}

		clientID := getClientID(c)
		category := config.Category(c.Request.Method, c.FullPath())

		allowed, resetTime, err := limiter.Allow(c.Request.Context(), clientID, category)
		if err != nil {
			// Don't block requests when the limiter backend is down
			logger.Warn("Rate limiter unavailable", zap.Error(err), zap.String("category", category))
			c.Header("X-RateLimit-Error", "Rate limiter unavailable")
			c.Next()
			return
		}

		setRateLimitHeaders(c, limiter.Limit(category), allowed, resetTime)

		if !allowed {
			c.JSON(http.StatusTooManyRequests, gin.H{
				"success":    false,
				"message":    fmt.Sprintf("Too many requests. Try again in %v", resetTime),
				"error":      "Rate limit exceeded",
				"code":       "RATE_LIMIT_EXCEEDED",
				"retryAfter": retryAfterSeconds(resetTime),
			})
			c.Abort()
			return
		}

		c.Next()
	}
}

// getClientID extracts a unique client identifier from the request:
// the authenticated user, then an API key, then IP plus User-Agent.
func getClientID(c *gin.Context) string {
	if uid := c.GetString(ContextUserID); uid != "" {
		return fmt.Sprintf("user:%s", uid)
	}

	if apiKey := c.GetHeader("X-API-Key"); apiKey != "" {
		return fmt.Sprintf("api:%s", hashString(apiKey))
	}

	// ClientIP only honours forwarding headers from the engine's trusted proxies.
	return fmt.Sprintf("anon:%s:%s", c.ClientIP(), hashString(c.GetHeader("User-Agent")))
}

func hashString(s string) string {
	if s == "" {
		return "unknown"
	}

	h := fnv.New32a()
	h.Write([]byte(s))
	return fmt.Sprintf("%08x", h.Sum32())
}

// retryAfterSeconds rounds up so clients never retry early.
func retryAfterSeconds(d time.Duration) int {
	secs := int((d + time.Second - 1) / time.Second)
	if secs < 1 {
		return 1
	}
	return secs
}

// setRateLimitHeaders sets standard rate limiting headers
func setRateLimitHeaders(c *gin.Context, limit ratelimit.RateLimit, allowed bool, resetTime time.Duration) {
	c.Header("X-RateLimit-Limit", strconv.Itoa(limit.RequestsPerMinute))
	c.Header("X-RateLimit-Window", strconv.Itoa(int(limit.WindowSize.Seconds())))
	c.Header("X-RateLimit-Burst", strconv.Itoa(limit.BurstSize))

	if !allowed {
		c.Header("Retry-After", strconv.Itoa(retryAfterSeconds(resetTime)))
		c.Header("X-RateLimit-Reset", strconv.FormatInt(time.Now().Add(resetTime).Unix(), 10))
	}

	if gin.Mode() == gin.DebugMode {
		c.Header("X-RateLimit-Allowed", strconv.FormatBool(allowed))
		if resetTime > 0 {
			c.Header("X-RateLimit-Reset-Time", resetTime.String())
		}
	}
}
