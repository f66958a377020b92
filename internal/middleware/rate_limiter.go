package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/jwalitptl/servir-hc/internal/config"
	"github.com/jwalitptl/servir-hc/internal/handler"
)

type RateLimiter struct {
	limiter *rate.Limiter
}

// NewRateLimiter returns nil when rate limiting is disabled.
func NewRateLimiter(cfg config.RateLimitConfig) *RateLimiter {
	if !cfg.Enabled {
		return nil
	}
	return &RateLimiter{
		limiter: rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), cfg.Burst),
	}
}

// RateLimit rejects requests beyond the configured rate with 429. A nil
// RateLimiter lets everything through.
func (rl *RateLimiter) RateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		if rl != nil && !rl.limiter.Allow() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests,
				handler.NewErrorResponse("too many attempts, try again later"))
			return
		}
		c.Next()
	}
}
