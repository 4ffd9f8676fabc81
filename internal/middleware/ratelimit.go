package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pavangundu/ai-helper/pkg/logger"
	"golang.org/x/time/rate"
)

const (
	limiterIdleTTL    = 3 * time.Minute
	limiterSweepEvery = time.Minute
)

// IPRateLimiter keeps one token bucket per client IP. Idle buckets are swept on access.
type IPRateLimiter struct {
	mu        sync.Mutex
	ips       map[string]*rateLimiterEntry
	r         rate.Limit
	burst     int
	lastSweep time.Time
}

type rateLimiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewIPRateLimiter allows r requests per second per IP with the given burst.
func NewIPRateLimiter(r rate.Limit, burst int) *IPRateLimiter {
	return &IPRateLimiter{
		ips:       make(map[string]*rateLimiterEntry),
		r:         r,
		burst:     burst,
		lastSweep: time.Now(),
	}
}

func (rl *IPRateLimiter) sweep(now time.Time) {
	if now.Sub(rl.lastSweep) < limiterSweepEvery {
		return
	}
	for ip, entry := range rl.ips {
		if now.Sub(entry.lastSeen) > limiterIdleTTL {
			delete(rl.ips, ip)
		}
	}
	rl.lastSweep = now
}

// GetLimiter returns the bucket for ip, creating it on first use.
func (rl *IPRateLimiter) GetLimiter(ip string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	rl.sweep(now)

	entry, exists := rl.ips[ip]
	if !exists {
		entry = &rateLimiterEntry{limiter: rate.NewLimiter(rl.r, rl.burst)}
		rl.ips[ip] = entry
	}
	entry.lastSeen = now
	return entry.limiter
}

// Pre-configured rate limiters for different endpoints
var (
	// Signup and login: 20 requests per minute
	AuthLimiter = NewIPRateLimiter(rate.Limit(20.0/60.0), 10)

	// Roadmap generation calls the LLM: 6 requests per minute
	GenerateLimiter = NewIPRateLimiter(rate.Limit(6.0/60.0), 3)

	// Quiz, coding problems, judge, mentor and resume also call the LLM: 20 requests per minute
	PracticeLimiter = NewIPRateLimiter(rate.Limit(20.0/60.0), 5)

	// General API: 600 requests per minute (10/sec)
	GeneralLimiter = NewIPRateLimiter(rate.Limit(10.0), 50)
)

// RateLimitMiddleware creates a rate limiting middleware with a custom limiter
func RateLimitMiddleware(limiter *IPRateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := c.ClientIP()
		l := limiter.GetLimiter(ip)

		if !l.Allow() {
			logger.Warn().
				Str("ip", ip).
				Str("path", c.Request.URL.Path).
				Msg("Rate limit exceeded")

			c.JSON(http.StatusTooManyRequests, gin.H{
				"error": "Too many requests, please slow down",
			})
			c.Abort()
			return
		}

		c.Next()
	}
}

// AuthRateLimit is for signup and login
func AuthRateLimit() gin.HandlerFunc {
	return RateLimitMiddleware(AuthLimiter)
}

// GenerateRateLimit is for roadmap generation
func GenerateRateLimit() gin.HandlerFunc {
	return RateLimitMiddleware(GenerateLimiter)
}

// PracticeRateLimit is for the practice and mentor endpoints
func PracticeRateLimit() gin.HandlerFunc {
	return RateLimitMiddleware(PracticeLimiter)
}

// GeneralRateLimit is for general API endpoints
func GeneralRateLimit() gin.HandlerFunc {
	return RateLimitMiddleware(GeneralLimiter)
}
