package cached

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"user-auth-service/internal/adapter/cache"
	domain "user-auth-service/internal/domain/user"
	"user-auth-service/internal/usecase/user"
)

// flightTimeout bounds a shared lookup once it is detached from its callers.
const flightTimeout = 10 * time.Second

// CachedUserRepository implements user.Repository with caching support.
// It wraps a persistent repository (DB) and a cache implementation.
// Only hits are cached, so a fresh signup is visible to signin immediately.
type CachedUserRepository struct {
	dbRepo user.Repository
	cache  cache.UserCache
	log    *zap.Logger
	group  singleflight.Group
}

// NewCachedUserRepository creates a new instance of CachedUserRepository.
func NewCachedUserRepository(dbRepo user.Repository, cache cache.UserCache, log *zap.Logger) user.Repository {
	return &CachedUserRepository{
		dbRepo: dbRepo,
		cache:  cache,
		log:    log,
	}
}

// Create delegates to the DB repository and drops any cached entry for the email.
func (r *CachedUserRepository) Create(ctx context.Context, u *domain.User) (*domain.User, error) {
	created, err := r.dbRepo.Create(ctx, u)
	if err != nil {
		return nil, err
	}

	if r.cache != nil {
		if err := r.cache.Delete(ctx, created.Email); err != nil {
			r.log.Warn("failed to invalidate cache after create", zap.String("email", created.Email), zap.Error(err))
		}
	}

	return created, nil
}

// GetByEmail retrieves a user by email using Cache-Aside pattern.
func (r *CachedUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	// Try to get from cache first
	if r.cache != nil {
		cachedUser, err := r.cache.Get(ctx, email)
		if err != nil {
			r.log.Warn("cache get error, falling back to database", zap.String("email", email), zap.Error(err))
		} else if cachedUser != nil {
			r.log.Debug("user retrieved from cache", zap.String("email", email))
			return cachedUser, nil
		}
	}

	// Cache miss or cache disabled - use single-flight to prevent stampede.
	// The shared lookup outlives any single caller, so one canceled request
	// cannot fail the others waiting on the same email.
	ch := r.group.DoChan("user:email:"+email, func() (any, error) {
		flightCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), flightTimeout)
		defer cancel()
		return r.loadByEmail(flightCtx, email)
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		u, _ := res.Val.(*domain.User)
		return u, nil
	}
}

// loadByEmail reads through to the database and caches hits.
func (r *CachedUserRepository) loadByEmail(ctx context.Context, email string) (*domain.User, error) {
	// Double-check cache in case another request populated it while we were waiting
	if r.cache != nil {
		cachedUser, err := r.cache.Get(ctx, email)
		if err == nil && cachedUser != nil {
			r.log.Debug("user retrieved from cache after single-flight wait", zap.String("email", email))
			return cachedUser, nil
		}
	}

	u, err := r.dbRepo.GetByEmail(ctx, email)
	if err != nil || u == nil {
		return nil, err
	}

	if r.cache != nil {
		if err := r.cache.Set(ctx, u); err != nil {
			r.log.Warn("failed to cache user", zap.String("email", email), zap.Error(err))
		}
	}

	return u, nil
}

// FindAll delegates to the DB repository.
func (r *CachedUserRepository) FindAll(ctx context.Context) ([]domain.User, error) {
	return r.dbRepo.FindAll(ctx)
}
