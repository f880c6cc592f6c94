package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	domain "user-entity-service/internal/domain/user"
)

// UserCache defines the interface for user caching operations.
type UserCache interface {
	// Get returns (nil, nil) on a cache miss.
	Get(ctx context.Context, email string) (*domain.User, error)

	// Set stores a user with the configured TTL.
	Set(ctx context.Context, user *domain.User) error

	Delete(ctx context.Context, email string) error
}

// RedisUserCache implements UserCache using Redis as the backing store.
type RedisUserCache struct {
	client *redis.Client
	ttl    time.Duration
	log    *zap.Logger
}

// NewRedisUserCache creates a new Redis-backed user cache.
func NewRedisUserCache(client *redis.Client, ttl time.Duration, log *zap.Logger) *RedisUserCache {
	return &RedisUserCache{
		client: client,
		ttl:    ttl,
		log:    log,
	}
}

// CacheKey returns the key a user with this email is cached under.
func CacheKey(email string) string {
	return entityKey(domain.Kind, email)
}

// entityKey namespaces keys by entity kind and schema version, so a version
// bump never reads payloads written by an older build.
func entityKey(kind, id string) string {
	return fmt.Sprintf("%s:v%d:%s", kind, domain.SchemaVersion, id)
}

// Get retrieves a user from Redis. Undecodable payloads are evicted and
// reported as a miss.
func (c *RedisUserCache) Get(ctx context.Context, email string) (*domain.User, error) {
	key := CacheKey(email)

	data, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		c.log.Debug("cache miss", zap.String("email", email))
		return nil, nil
	}
	if err != nil {
		c.log.Error("failed to get from cache", zap.String("email", email), zap.Error(err))
		return nil, err
	}

	user := domain.New()
	if err := json.Unmarshal(data, user); err != nil {
		c.log.Warn("evicting undecodable cached user", zap.String("email", email), zap.Error(err))
		if delErr := c.client.Del(ctx, key).Err(); delErr != nil {
			c.log.Error("failed to evict cached user", zap.String("email", email), zap.Error(delErr))
		}
		return nil, nil
	}

	c.log.Debug("cache hit", zap.String("email", email))
	return user, nil
}

// Set stores a user in Redis with TTL.
func (c *RedisUserCache) Set(ctx context.Context, user *domain.User) error {
	if user == nil {
		return errors.New("cannot cache nil user")
	}
	if user.Email() == nil {
		return errors.New("cannot cache user without email")
	}

	email := user.EmailValue()

	data, err := json.Marshal(user)
	if err != nil {
		c.log.Error("failed to marshal user for cache", zap.String("email", email), zap.Error(err))
		return err
	}

	if err := c.client.Set(ctx, entityKey(user.EntityKind(), email), data, c.ttl).Err(); err != nil {
		c.log.Error("failed to set cache", zap.String("email", email), zap.Error(err))
		return err
	}

	c.log.Debug("cached user", zap.String("email", email), zap.Duration("ttl", c.ttl))
	return nil
}

// Delete removes a user from Redis.
func (c *RedisUserCache) Delete(ctx context.Context, email string) error {
	if err := c.client.Del(ctx, CacheKey(email)).Err(); err != nil {
		c.log.Error("failed to delete from cache", zap.String("email", email), zap.Error(err))
		return err
	}

	c.log.Debug("deleted from cache", zap.String("email", email))
	return nil
}
