package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	domain "user-auth-service/internal/domain/user"
)

// keyPrefix namespaces user records looked up by email.
const keyPrefix = "user:email:"

// cacheEntry is the JSON stored per user. It carries the bcrypt hash
// because signin compares against it.
type cacheEntry struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"password_hash"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func toEntry(u *domain.User) cacheEntry {
	return cacheEntry{
		ID:           u.ID,
		Name:         u.Name,
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
}

func (e cacheEntry) toDomain() *domain.User {
	return &domain.User{
		ID:           e.ID,
		Name:         e.Name,
		Email:        e.Email,
		PasswordHash: e.PasswordHash,
		CreatedAt:    e.CreatedAt,
		UpdatedAt:    e.UpdatedAt,
	}
}

// UserCache defines the interface for user caching operations.
type UserCache interface {
	// Get retrieves a user from cache by normalized email.
	// Returns nil if user is not found in cache.
	Get(ctx context.Context, email string) (*domain.User, error)

	// Set stores a user in cache with the configured TTL.
	Set(ctx context.Context, user *domain.User) error

	// Delete removes a user from cache by email.
	Delete(ctx context.Context, email string) error
}

// RedisUserCache implements UserCache using Redis as the backing store.
type RedisUserCache struct {
	client *redis.Client
	ttl    time.Duration
	log    *zap.Logger
}

// NewRedisUserCache creates a new Redis-backed user cache.
func NewRedisUserCache(client *redis.Client, ttl time.Duration, log *zap.Logger) UserCache {
	return &RedisUserCache{
		client: client,
		ttl:    ttl,
		log:    log,
	}
}

// cacheKey generates a Redis key for an email.
func (c *RedisUserCache) cacheKey(email string) string {
	return keyPrefix + email
}

// Get retrieves a user from Redis cache.
func (c *RedisUserCache) Get(ctx context.Context, email string) (*domain.User, error) {
	key := c.cacheKey(email)

	data, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		// Cache miss - not an error
		c.log.Debug("cache miss", zap.String("email", email))
		return nil, nil
	}
	if err != nil {
		c.log.Error("failed to get from cache", zap.String("email", email), zap.Error(err))
		return nil, err
	}

	var entry cacheEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		c.log.Error("failed to unmarshal cached user", zap.String("email", email), zap.Error(err))
		return nil, err
	}

	c.log.Debug("cache hit", zap.String("email", email))
	return entry.toDomain(), nil
}

// Set stores a user in Redis cache with TTL.
func (c *RedisUserCache) Set(ctx context.Context, user *domain.User) error {
	if user == nil {
		return fmt.Errorf("cannot cache nil user")
	}
	if user.Email == "" {
		return fmt.Errorf("cannot cache user without email")
	}

	key := c.cacheKey(user.Email)

	data, err := json.Marshal(toEntry(user))
	if err != nil {
		c.log.Error("failed to marshal user for cache", zap.String("user_id", user.ID), zap.Error(err))
		return err
	}

	if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
		c.log.Error("failed to set cache", zap.String("user_id", user.ID), zap.Error(err))
		return err
	}

	c.log.Debug("cached user", zap.String("user_id", user.ID), zap.Duration("ttl", c.ttl))
	return nil
}

// Delete removes a user from Redis cache.
func (c *RedisUserCache) Delete(ctx context.Context, email string) error {
	key := c.cacheKey(email)

	if err := c.client.Del(ctx, key).Err(); err != nil {
		c.log.Error("failed to delete from cache", zap.String("email", email), zap.Error(err))
		return err
	}

	c.log.Debug("deleted from cache", zap.String("email", email))
	return nil
}
