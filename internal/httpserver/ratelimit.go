package httpserver

import (
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// rateLimitRefillPerSec and rateLimitBurst implement spec §4.4's "token
// bucket per peer IP, refill 2 tokens/sec, burst 5".
const (
	rateLimitRefillPerSec = 2
	rateLimitBurst        = 5
	rateLimitEntryTTL     = 10 * time.Minute
)

// limiterEntry pairs a per-IP limiter with its last-access time so the
// cleanup loop can evict IPs that have gone idle, bounding map growth —
// generalized from the teacher's middleware/logic/ratelimit.go.
type limiterEntry struct {
	limiter        *rate.Limiter
	lastAccessUnix int64
}

// IPRateLimiter is a token-bucket rate limiter keyed by peer IP.
type IPRateLimiter struct {
	mu       sync.RWMutex
	limiters map[string]*limiterEntry
}

// NewIPRateLimiter constructs a limiter and starts its background cleanup
// goroutine. Callers do not need to stop it explicitly; it is sized for the
// lifetime of the server process.
func NewIPRateLimiter() *IPRateLimiter {
	rl := &IPRateLimiter{limiters: make(map[string]*limiterEntry)}
	go rl.cleanupLoop()
	return rl
}

func (rl *IPRateLimiter) getLimiter(ip string) *rate.Limiter {
	now := time.Now().Unix()

	rl.mu.RLock()
	entry, exists := rl.limiters[ip]
	if exists {
		atomic.StoreInt64(&entry.lastAccessUnix, now)
		rl.mu.RUnlock()
		return entry.limiter
	}
	rl.mu.RUnlock()

	rl.mu.Lock()
	defer rl.mu.Unlock()
	if entry, exists := rl.limiters[ip]; exists {
		atomic.StoreInt64(&entry.lastAccessUnix, now)
		return entry.limiter
	}

	limiter := rate.NewLimiter(rate.Limit(rateLimitRefillPerSec), rateLimitBurst)
	rl.limiters[ip] = &limiterEntry{limiter: limiter, lastAccessUnix: now}
	return limiter
}

func (rl *IPRateLimiter) cleanupLoop() {
	ticker := time.NewTicker(2 * time.Minute)
	defer ticker.Stop()
	for range ticker.C {
		rl.cleanup()
	}
}

func (rl *IPRateLimiter) cleanup() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	for ip, entry := range rl.limiters {
		last := time.Unix(atomic.LoadInt64(&entry.lastAccessUnix), 0)
		if now.Sub(last) > rateLimitEntryTTL {
			delete(rl.limiters, ip)
		}
	}
}

// Allow reports whether ip may proceed under its bucket.
func (rl *IPRateLimiter) Allow(ip string) bool {
	return rl.getLimiter(ip).Allow()
}

// Middleware applies the bucket to /d/:id and /api/blob/:id per spec §4.4.
// An over-limit request gets the constant-time jitter delay before its 429,
// same as NotFound/Burned, so bucket exhaustion doesn't leak timing either.
func (rl *IPRateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !rl.Allow(c.ClientIP()) {
			sleepJitter()
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error": gin.H{"code": "rate_limited", "message": "too many requests"},
			})
			c.Abort()
			return
		}
		c.Next()
	}
}
