package middleware

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/peer"
	"google.golang.org/grpc/status"
)

// KeyPrefix namespaces token buckets in Redis.
const KeyPrefix = "ratelimit:tb:"

// bucketTTLSeconds is how long an idle bucket survives.
const bucketTTLSeconds = 60

// tokenBucket consumes one token from the bucket at KEYS[1].
// Bucket state is {last_refill, tokens}; returns 1 when allowed, 0 when denied.
var tokenBucket = redis.NewScript(`
	local key = KEYS[1]
	local rate = tonumber(ARGV[1])         -- tokens per second
	local capacity = tonumber(ARGV[2])     -- max tokens in bucket
	local now = tonumber(ARGV[3])          -- current timestamp, fractional seconds
	local requested = tonumber(ARGV[4])    -- tokens requested
	local ttl = tonumber(ARGV[5])

	local bucket = redis.call('HMGET', key, 'last_refill', 'tokens')
	local last_refill = tonumber(bucket[1]) or now
	local tokens = tonumber(bucket[2]) or capacity

	local elapsed = math.max(0, now - last_refill)
	tokens = math.min(capacity, tokens + elapsed * rate)

	local allowed = 0
	if tokens >= requested then
		tokens = tokens - requested
		allowed = 1
	end

	redis.call('HSET', key, 'last_refill', tostring(now), 'tokens', tostring(tokens))
	redis.call('EXPIRE', key, ttl)
	return allowed
`)

// RateLimiterConfig holds configuration for the rate limiter.
type RateLimiterConfig struct {
	RequestsPerSecond float64
	BurstCapacity     int
	Enabled           bool
}

// RateLimiter implements a Redis-backed token bucket shared by the gRPC
// and HTTP transports.
type RateLimiter struct {
	client *redis.Client
	config RateLimiterConfig
	log    *zap.Logger
}

// NewRateLimiter creates a new rate limiter.
func NewRateLimiter(client *redis.Client, config RateLimiterConfig, log *zap.Logger) *RateLimiter {
	return &RateLimiter{
		client: client,
		config: config,
		log:    log,
	}
}

// Config returns the limiter configuration.
func (rl *RateLimiter) Config() RateLimiterConfig {
	return rl.config
}

// Allow takes one token from the bucket for key. Redis failures fail open.
func (rl *RateLimiter) Allow(ctx context.Context, key string) bool {
	if rl == nil || !rl.config.Enabled || rl.client == nil {
		return true
	}

	allowed, err := tokenBucket.Run(ctx, rl.client, []string{KeyPrefix + key},
		rl.config.RequestsPerSecond,
		rl.config.BurstCapacity,
		rl.now(ctx),
		1,
		bucketTTLSeconds,
	).Int64()
	if err != nil {
		rl.log.Warn("rate limiter redis error, allowing request", zap.String("key", key), zap.Error(err))
		return true
	}

	return allowed == 1
}

// now reads the clock from Redis so that every replica shares one time source.
func (rl *RateLimiter) now(ctx context.Context) float64 {
	t, err := rl.client.Time(ctx).Result()
	if err != nil {
		t = time.Now()
	}
	return float64(t.UnixMicro()) / 1e6
}

// ExceededMessage describes the configured limit.
func (rl *RateLimiter) ExceededMessage() string {
	return fmt.Sprintf("rate limit exceeded: %.2f requests/second (burst capacity: %d)",
		rl.config.RequestsPerSecond, rl.config.BurstCapacity)
}

// UnaryInterceptor returns a gRPC unary interceptor for rate limiting.
func (rl *RateLimiter) UnaryInterceptor() grpc.UnaryServerInterceptor {
	return func(
		ctx context.Context,
		req any,
		info *grpc.UnaryServerInfo,
		handler grpc.UnaryHandler,
	) (any, error) {
		// Skip rate limiting if disabled
		if rl == nil || !rl.config.Enabled {
			return handler(ctx, req)
		}

		clientIP := ClientIP(ctx)

		if !rl.Allow(ctx, info.FullMethod+":"+clientIP) {
			rl.log.Warn("rate limit exceeded",
				zap.String("client_ip", clientIP),
				zap.String("method", info.FullMethod),
				zap.Float64("limit", rl.config.RequestsPerSecond),
			)
			return nil, status.Error(codes.ResourceExhausted, rl.ExceededMessage())
		}

		return handler(ctx, req)
	}
}

// ClientIP extracts the client IP address from the gRPC context.
func ClientIP(ctx context.Context) string {
	// Proxies in front of the server set forwarding headers
	if md, ok := metadata.FromIncomingContext(ctx); ok {
		if xff := md.Get("x-forwarded-for"); len(xff) > 0 {
			return xff[0]
		}
		if xri := md.Get("x-real-ip"); len(xri) > 0 {
			return xri[0]
		}
	}

	// Fallback to peer address
	if p, ok := peer.FromContext(ctx); ok && p.Addr != nil {
		addr := p.Addr.String()
		if host, _, err := net.SplitHostPort(addr); err == nil {
			return host
		}
		return addr
	}

	return "unknown"
}
