package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	grpcmiddleware "user-auth-service/internal/adapter/grpc/middleware"
)

// RateLimiter returns a Gin middleware applying the shared token bucket per
// method, path and client IP.
func RateLimiter(limiter *grpcmiddleware.RateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if limiter == nil || !limiter.Config().Enabled {
			c.Next()
			return
		}

		key := c.Request.Method + ":" + c.FullPath() + ":" + c.ClientIP()
		if !limiter.Allow(c.Request.Context(), key) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":   "rate_limit_exceeded",
				"message": limiter.ExceededMessage(),
			})
			return
		}

		c.Next()
	}
}
