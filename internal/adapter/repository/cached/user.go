package cached

import (
	"context"
	"sync/atomic"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"user-entity-service/internal/adapter/cache"
	domain "user-entity-service/internal/domain/user"
	"user-entity-service/internal/usecase/user"
)

// CachedUserRepository wraps a persistent repository with a cache-aside
// read path. A nil cache disables caching.
type CachedUserRepository struct {
	dbRepo user.Repository
	cache  cache.UserCache
	log    *zap.Logger
	group  singleflight.Group

	// invalidations counts cache invalidations; a fill that overlaps one is
	// discarded.
	invalidations atomic.Uint64
}

var _ user.Repository = (*CachedUserRepository)(nil)

// NewCachedUserRepository creates a new instance of CachedUserRepository.
func NewCachedUserRepository(dbRepo user.Repository, c cache.UserCache, log *zap.Logger) *CachedUserRepository {
	return &CachedUserRepository{
		dbRepo: dbRepo,
		cache:  c,
		log:    log,
	}
}

// Create delegates to the DB repository. Misses are never cached, so a new
// row needs no invalidation.
func (r *CachedUserRepository) Create(ctx context.Context, u *domain.User) error {
	return r.dbRepo.Create(ctx, u)
}

// GetByEmail reads through the cache. Concurrent misses for the same email
// share one database query. Callers get their own copy of the user, since
// the entity is mutable and unsynchronized.
//
// A miss can read a row just before a concurrent Update commits. If an
// invalidation runs while the fill is in flight, the filled entry is deleted
// again so the old row never outlives the write. This holds within one
// process; writers in other processes can still leave an entry stale for up
// to the cache TTL.
func (r *CachedUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	if r.cache != nil {
		cachedUser, err := r.cache.Get(ctx, email)
		if err != nil {
			r.log.Warn("cache get error, falling back to database", zap.String("email", email), zap.Error(err))
		} else if cachedUser != nil {
			return cachedUser, nil
		}
	}

	result, err, shared := r.group.Do(cache.CacheKey(email), func() (any, error) {
		seen := r.invalidations.Load()

		u, err := r.dbRepo.GetByEmail(ctx, email)
		if err != nil || u == nil {
			return u, err
		}

		r.fill(ctx, u, seen)
		return u, nil
	})
	if err != nil {
		return nil, err
	}

	u, _ := result.(*domain.User)
	if shared {
		return u.Clone(), nil
	}
	return u, nil
}

// Update writes through to the DB and invalidates the cached entry.
func (r *CachedUserRepository) Update(ctx context.Context, u *domain.User) error {
	if err := r.dbRepo.Update(ctx, u); err != nil {
		return err
	}
	r.invalidate(ctx, u.EmailValue())
	return nil
}

// Delete removes the user from the DB and invalidates the cached entry.
func (r *CachedUserRepository) Delete(ctx context.Context, email string) error {
	if err := r.dbRepo.Delete(ctx, email); err != nil {
		return err
	}
	r.invalidate(ctx, email)
	return nil
}

// List bypasses the cache.
func (r *CachedUserRepository) List(ctx context.Context, query string, page, limit int64) ([]*domain.User, int64, error) {
	return r.dbRepo.List(ctx, query, page, limit)
}

// fill caches u unless an invalidation happened after seen was taken. The
// counter is checked again after Set, since invalidate bumps it before
// deleting.
func (r *CachedUserRepository) fill(ctx context.Context, u *domain.User, seen uint64) {
	if r.cache == nil {
		return
	}

	email := u.EmailValue()
	if r.invalidations.Load() != seen {
		r.log.Debug("skipping cache fill after invalidation", zap.String("email", email))
		return
	}

	if err := r.cache.Set(ctx, u); err != nil {
		r.log.Warn("failed to cache user", zap.String("email", email), zap.Error(err))
		return
	}

	if r.invalidations.Load() != seen {
		r.log.Debug("dropping cache fill raced by invalidation", zap.String("email", email))
		if err := r.cache.Delete(ctx, email); err != nil {
			r.log.Warn("failed to drop raced cache fill", zap.String("email", email), zap.Error(err))
		}
	}
}

func (r *CachedUserRepository) invalidate(ctx context.Context, email string) {
	if r.cache == nil {
		return
	}
	r.invalidations.Add(1)
	if err := r.cache.Delete(ctx, email); err != nil {
		r.log.Warn("failed to invalidate cache", zap.String("email", email), zap.Error(err))
	}
}
