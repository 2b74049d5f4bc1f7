package middlewares

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// RateLimiter keeps one token bucket per client IP.
type RateLimiter struct {
	mu       sync.Mutex
	visitors map[string]*rate.Limiter
	every    rate.Limit
	burst    int
}

// NewRateLimiter allows burst requests per client, refilling one slot per
// interval/burst.
func NewRateLimiter(burst int, interval time.Duration) *RateLimiter {
	return &RateLimiter{
		visitors: make(map[string]*rate.Limiter),
		every:    rate.Every(interval / time.Duration(burst)),
		burst:    burst,
	}
}

// NewStrictRateLimiter is tuned for OTP endpoints: 5 requests per 15
// minutes per IP, matching the SMS abuse window.
func NewStrictRateLimiter() *RateLimiter {
	return NewRateLimiter(5, 15*time.Minute)
}

// NewPaymentRateLimiter: 10 requests per 15 minutes per IP.
func NewPaymentRateLimiter() *RateLimiter {
	return NewRateLimiter(10, 15*time.Minute)
}

func (rl *RateLimiter) limiterFor(ip string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	l, ok := rl.visitors[ip]
	if !ok {
		l = rate.NewLimiter(rl.every, rl.burst)
		rl.visitors[ip] = l
	}
	return l
}

func (rl *RateLimiter) RateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !rl.limiterFor(c.ClientIP()).Allow() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"status":  false,
				"message": "Too many requests. Please try again later.",
			})
			return
		}
		c.Next()
	}
}
