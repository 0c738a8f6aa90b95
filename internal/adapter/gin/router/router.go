package router

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"user-auth-service/internal/adapter/gin/handler"
	"user-auth-service/internal/adapter/gin/middleware"
	grpcmiddleware "user-auth-service/internal/adapter/grpc/middleware"
)

// Options configures optional parts of the router.
type Options struct {
	// RateLimiter throttles every route except /health. Nil disables it.
	RateLimiter *grpcmiddleware.RateLimiter
	// ListAuth, when set, protects GET /v1/users with bearer token verification.
	ListAuth middleware.TokenVerifier
	// ServiceName is reported by /health and names the tracer.
	ServiceName string
	// Readiness maps a dependency name to its probe for /ready.
	Readiness map[string]ReadinessCheck
}

// ReadinessCheck reports whether a dependency can serve requests.
type ReadinessCheck func(ctx context.Context) error

// readinessTimeout bounds all checks of one /ready request.
const readinessTimeout = 2 * time.Second

// SetupRouter configures and returns a Gin router with all routes and middleware
func SetupRouter(userHandler *handler.UserHandler, opts Options, log *zap.Logger) *gin.Engine {
	router := gin.New()

	// Global middleware
	router.Use(middleware.Tracing(opts.ServiceName))
	router.Use(middleware.RequestID())
	router.Use(middleware.Recovery(log))
	router.Use(middleware.Logger(log))

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"service": opts.ServiceName,
		})
	})

	router.GET("/ready", readyHandler(opts.Readiness, log))

	// API v1 routes
	v1 := router.Group("/v1")
	v1.Use(middleware.RateLimiter(opts.RateLimiter))
	{
		users := v1.Group("/users")
		{
			users.POST("/signup", userHandler.Signup)
			users.POST("/signin", userHandler.Signin)

			list := []gin.HandlerFunc{userHandler.FindAll}
			if opts.ListAuth != nil {
				list = append([]gin.HandlerFunc{middleware.RequireAuth(opts.ListAuth, log)}, list...)
			}
			users.GET("", list...)
		}
	}

	return router
}

// readyHandler answers 200 when every check passes and 503 otherwise.
// Failure details go to the log, the body only names the failing dependency.
func readyHandler(checks map[string]ReadinessCheck, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), readinessTimeout)
		defer cancel()

		results := make(map[string]string, len(checks))
		ready := true
		for name, check := range checks {
			if err := check(ctx); err != nil {
				ready = false
				results[name] = "down"
				log.Warn("readiness check failed", zap.String("dependency", name), zap.Error(err))
				continue
			}
			results[name] = "up"
		}

		if !ready {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "checks": results})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready", "checks": results})
	}
}
