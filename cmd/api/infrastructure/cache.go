package infrastructure

import (
	"context"
	"fmt"
	"net"

	"go.uber.org/zap"

	"user-auth-service/internal/config"
	redisclient "user-auth-service/pkg/redis"
)

// NewRedisClient connects the Redis pool shared by the user cache and the rate limiters.
func NewRedisClient(ctx context.Context, cfg *config.Config, l *zap.Logger) (*redisclient.Client, error) {
	rdb, err := redisclient.NewClient(ctx, redisSettings(cfg.Redis), l)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return rdb, nil
}

func redisSettings(c config.RedisConfig) redisclient.Config {
	return redisclient.Config{
		Addr:         net.JoinHostPort(c.Host, c.Port),
		Password:     c.Password,
		DB:           c.DB,
		MaxRetries:   c.MaxRetries,
		PoolSize:     c.PoolSize,
		MinIdleConns: c.MinIdleConn,
		DialTimeout:  c.DialTimeout,
		ReadTimeout:  c.ReadTimeout,
		WriteTimeout: c.WriteTimeout,
	}
}
