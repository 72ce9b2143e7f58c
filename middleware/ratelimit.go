package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// RateLimiter applies a per-IP token bucket. Limiters for idle IPs are
// evicted so the map does not grow without bound.
type RateLimiter struct {
	mu         sync.Mutex
	limiters   map[string]*ipLimiter
	rps        rate.Limit
	burst      int
	maxIdle    time.Duration
	lastSweep  time.Time
	sweepEvery time.Duration
}

type ipLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewRateLimiter creates a limiter allowing rps requests per second with
// the given burst per client IP.
func NewRateLimiter(rps float64, burst int) *RateLimiter {
	return &RateLimiter{
		limiters:   make(map[string]*ipLimiter),
		rps:        rate.Limit(rps),
		burst:      burst,
		maxIdle:    10 * time.Minute,
		lastSweep:  time.Now(),
		sweepEvery: time.Minute,
	}
}

// RateLimit is the gin middleware enforcing the per-IP budget.
func (rl *RateLimiter) RateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := c.ClientIP()

		rl.mu.Lock()
		now := time.Now()
		entry, exists := rl.limiters[ip]
		if !exists {
			entry = &ipLimiter{limiter: rate.NewLimiter(rl.rps, rl.burst)}
			rl.limiters[ip] = entry
		}
		entry.lastSeen = now

		if now.Sub(rl.lastSweep) > rl.sweepEvery {
			rl.sweep(now)
			rl.lastSweep = now
		}
		limiter := entry.limiter
		rl.mu.Unlock()

		if !limiter.Allow() {
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error": "Rate limit exceeded. Please try again later.",
			})
			c.Abort()
			return
		}

		c.Next()
	}
}

// sweep removes limiters idle past maxIdle. Caller holds the lock.
func (rl *RateLimiter) sweep(now time.Time) {
	for ip, entry := range rl.limiters {
		if now.Sub(entry.lastSeen) > rl.maxIdle {
			delete(rl.limiters, ip)
		}
	}
}
