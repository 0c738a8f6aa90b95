package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	defaultDialTimeout = 5 * time.Second
	defaultIOTimeout   = 3 * time.Second
)

// Config holds Redis connection settings. Zero timeouts use the package defaults.
type Config struct {
	Addr         string
	Password     string
	DB           int
	MaxRetries   int
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

func (c Config) options() *redis.Options {
	opts := &redis.Options{
		Addr:         c.Addr,
		Password:     c.Password,
		DB:           c.DB,
		MaxRetries:   c.MaxRetries,
		PoolSize:     c.PoolSize,
		MinIdleConns: c.MinIdleConns,
		DialTimeout:  c.DialTimeout,
		ReadTimeout:  c.ReadTimeout,
		WriteTimeout: c.WriteTimeout,
	}
	if opts.DialTimeout <= 0 {
		opts.DialTimeout = defaultDialTimeout
	}
	if opts.ReadTimeout <= 0 {
		opts.ReadTimeout = defaultIOTimeout
	}
	if opts.WriteTimeout <= 0 {
		opts.WriteTimeout = defaultIOTimeout
	}
	// a waiter gives up shortly after a single round trip would have
	opts.PoolTimeout = opts.ReadTimeout + time.Second
	return opts
}

// Client is the shared Redis connection behind the user cache and the rate limiters.
type Client struct {
	*redis.Client
	log *zap.Logger
}

// NewClient opens the pool and pings the server once, bounded by ctx and the
// dial timeout. The pool is closed again when the ping fails.
func NewClient(ctx context.Context, cfg Config, log *zap.Logger) (*Client, error) {
	opts := cfg.options()
	rdb := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, opts.DialTimeout)
	defer cancel()

	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", opts.Addr, err)
	}

	log.Info("redis connected",
		zap.String("addr", opts.Addr),
		zap.Int("db", opts.DB),
		zap.Int("pool_size", opts.PoolSize),
	)

	return &Client{Client: rdb, log: log}, nil
}

// Ping reports whether the server answers. It backs the readiness check.
func (c *Client) Ping(ctx context.Context) error {
	return c.Client.Ping(ctx).Err()
}

// Close logs pool usage and closes the connection pool.
func (c *Client) Close() error {
	stats := c.PoolStats()
	c.log.Info("closing redis connection",
		zap.Uint32("pool_hits", stats.Hits),
		zap.Uint32("pool_misses", stats.Misses),
		zap.Uint32("pool_timeouts", stats.Timeouts),
		zap.Uint32("total_conns", stats.TotalConns),
	)
	return c.Client.Close()
}
