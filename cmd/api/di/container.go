package di

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"user-auth-service/cmd/api/infrastructure"
	"user-auth-service/cmd/api/server"
	"user-auth-service/internal/adapter/cache"
	"user-auth-service/internal/adapter/db/postgres"
	ginhandler "user-auth-service/internal/adapter/gin/handler"
	ginrouter "user-auth-service/internal/adapter/gin/router"
	"user-auth-service/internal/adapter/grpc/middleware"
	"user-auth-service/internal/adapter/repository/cached"
	"user-auth-service/internal/config"
	"user-auth-service/internal/usecase/user"
	redisclient "user-auth-service/pkg/redis"
	"user-auth-service/pkg/security"
	"user-auth-service/pkg/token"
)

// Container holds all application dependencies
type Container struct {
	Config      *config.Config
	Logger      *zap.Logger
	DB          *gorm.DB
	RedisClient *redisclient.Client
	Issuer      *token.Issuer
	UserUC      user.Usecase
	RateLimiter *middleware.RateLimiter
	GinHandler  *ginhandler.UserHandler
}

// NewContainer creates and initializes all application dependencies
func NewContainer(ctx context.Context, cfg *config.Config, l *zap.Logger) (*Container, error) {
	// Validate configuration before initializing any dependencies
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	c := &Container{Config: cfg, Logger: l}

	// Initialize database
	db, err := infrastructure.NewDatabase(ctx, cfg, l)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	c.DB = db

	// Initialize repository, with the Redis cache in front when enabled
	var repo user.Repository = postgres.NewUserRepoPG(db, l)
	if cfg.Redis.Enabled {
		rdb, err := infrastructure.NewRedisClient(ctx, cfg, l)
		if err != nil {
			_ = c.Close()
			return nil, fmt.Errorf("failed to initialize Redis: %w", err)
		}
		c.RedisClient = rdb

		userCache := cache.NewRedisUserCache(
			rdb.Client,
			time.Duration(cfg.Redis.CacheTTL)*time.Second,
			l,
		)
		repo = cached.NewCachedUserRepository(repo, userCache, l)

		// Initialize rate limiter
		c.RateLimiter = middleware.NewRateLimiter(
			rdb.Client,
			middleware.RateLimiterConfig{
				RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
				BurstCapacity:     cfg.RateLimit.BurstCapacity,
				Enabled:           cfg.RateLimit.Enabled,
			},
			l,
		)
	}

	// Initialize token issuer
	issuer, err := token.NewIssuer(token.Config{
		Secret: cfg.Auth.JWTSecret,
		Issuer: cfg.Auth.JWTIssuer,
		TTL:    cfg.Auth.AccessTokenTTL,
	})
	if err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("failed to initialize token issuer: %w", err)
	}
	c.Issuer = issuer

	// Initialize use case
	c.UserUC = user.New(repo, security.NewBcryptHasher(cfg.Auth.BcryptCost), issuer, l)

	// Initialize Gin handler
	c.GinHandler = ginhandler.NewUserHandler(c.UserUC, l)

	return c, nil
}

// ServerDeps returns what the transports need from the container.
func (c *Container) ServerDeps() server.Deps {
	deps := server.Deps{
		UserUC:      c.UserUC,
		GinHandler:  c.GinHandler,
		RateLimiter: c.RateLimiter,
	}
	if c.Config.Auth.UsersListRequireAuth {
		deps.ListAuth = c.Issuer
	}

	deps.Readiness = map[string]ginrouter.ReadinessCheck{
		"database": func(ctx context.Context) error { return infrastructure.PingDatabase(ctx, c.DB) },
	}
	if c.RedisClient != nil {
		deps.Readiness["redis"] = c.RedisClient.Ping
	}
	return deps
}

// Close closes all resources held by the container
func (c *Container) Close() error {
	var errs []error

	// Close Redis connection
	if c.RedisClient != nil {
		if err := c.RedisClient.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close Redis: %w", err))
		}
	}

	// Close database connection
	if c.DB != nil {
		if err := infrastructure.CloseDatabase(c.DB); err != nil {
			errs = append(errs, fmt.Errorf("failed to close database: %w", err))
		}
	}

	return errors.Join(errs...)
}
