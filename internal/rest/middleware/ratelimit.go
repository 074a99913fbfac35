package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"github.com/solarinvoice/invoicer/internal/config"
	ierr "github.com/solarinvoice/invoicer/internal/errors"
	"golang.org/x/time/rate"
)

// limiterIdleTTL is how long the limiter of an idle client is kept around
const limiterIdleTTL = 10 * time.Minute

// RateLimitMiddleware throttles requests per client IP with a token bucket.
// Limiters live in a go-cache so clients that went away are evicted.
func RateLimitMiddleware(cfg config.RateLimitConfig) gin.HandlerFunc {
	limiters := cache.New(limiterIdleTTL, 2*limiterIdleTTL)
	every := rate.Every(time.Minute / time.Duration(cfg.PublicViewPerMinute))

	return func(c *gin.Context) {
		key := c.ClientIP()

		var limiter *rate.Limiter
		if cached, ok := limiters.Get(key); ok {
			limiter = cached.(*rate.Limiter)
		} else {
			limiter = rate.NewLimiter(every, cfg.Burst)
			// Add only stores when absent, so concurrent first requests share one limiter
			if err := limiters.Add(key, limiter, cache.DefaultExpiration); err != nil {
				if cached, ok := limiters.Get(key); ok {
					limiter = cached.(*rate.Limiter)
				}
			}
		}
		// refresh the idle timer
		limiters.Set(key, limiter, cache.DefaultExpiration)

		if !limiter.Allow() {
			_ = c.Error(ierr.NewError("rate limit exceeded").
				WithHint("Too many requests, please slow down").
				WithReportableDetails(map[string]any{
					"limit_per_minute": cfg.PublicViewPerMinute,
				}).
				Mark(ierr.ErrRateLimited))
			c.Abort()
			return
		}
		c.Next()
	}
}
