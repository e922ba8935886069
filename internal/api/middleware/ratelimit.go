package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// limiterIdleEviction is how long an IP may sit idle before its limiter is
// dropped. Bounds the map on long-running deployments.
const limiterIdleEviction = 10 * time.Minute

type ipLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// sweepLimiters removes entries idle longer than the eviction window.
// Caller holds the lock.
func sweepLimiters(limiters map[string]*ipLimiter, now time.Time) {
	for ip, entry := range limiters {
		if now.Sub(entry.lastSeen) > limiterIdleEviction {
			delete(limiters, ip)
		}
	}
}

// RateLimitMiddleware throttles a public endpoint per client IP. The courier
// aggregator meters tracking lookups, so the passthrough endpoint must not be
// an open amplifier.
func RateLimitMiddleware(r rate.Limit, burst int) gin.HandlerFunc {
	var mu sync.Mutex
	limiters := make(map[string]*ipLimiter)
	lastSweep := time.Now()

	return func(c *gin.Context) {
		ip := c.ClientIP()

		mu.Lock()
		now := time.Now()
		if now.Sub(lastSweep) > limiterIdleEviction {
			sweepLimiters(limiters, now)
			lastSweep = now
		}
		entry, ok := limiters[ip]
		if !ok {
			entry = &ipLimiter{limiter: rate.NewLimiter(r, burst)}
			limiters[ip] = entry
		}
		entry.lastSeen = now
		limiter := entry.limiter
		mu.Unlock()

		if !limiter.Allow() {
			c.JSON(http.StatusTooManyRequests, gin.H{"error": "too many requests"})
			c.Abort()
			return
		}
		c.Next()
	}
}
