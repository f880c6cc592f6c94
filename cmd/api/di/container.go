package di

import (
	"context"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"user-entity-service/cmd/api/infrastructure"
	"user-entity-service/internal/adapter/cache"
	"user-entity-service/internal/adapter/db/postgres"
	ginhandler "user-entity-service/internal/adapter/gin/handler"
	"user-entity-service/internal/adapter/gin/middleware"
	"user-entity-service/internal/adapter/repository/cached"
	"user-entity-service/internal/config"
	"user-entity-service/internal/usecase/user"
	redisclient "user-entity-service/pkg/redis"
)

const migrateTimeout = 30 * time.Second

// Container holds all application dependencies
type Container struct {
	Config      *config.Config
	Logger      *zap.Logger
	DB          *gorm.DB
	RedisClient *redisclient.Client
	UserUC      user.Usecase
	RateLimiter *middleware.RateLimiter
	GinHandler  *ginhandler.UserHandler
}

// NewContainer creates and initializes all application dependencies
func NewContainer(cfg *config.Config, l *zap.Logger) (*Container, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	db, err := infrastructure.NewDatabase(cfg, l)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	c := &Container{Config: cfg, Logger: l, DB: db}

	dbRepo := postgres.NewUserRepoPG(db, l)
	if cfg.DB.AutoMigrate {
		if err := migrateSchema(cfg, dbRepo, l); err != nil {
			_ = c.Close()
			return nil, fmt.Errorf("failed to migrate database: %w", err)
		}
	}

	rdb, err := infrastructure.NewRedisClient(cfg, l)
	if err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("failed to initialize Redis: %w", err)
	}
	c.RedisClient = rdb

	// a nil interface, not a typed nil, keeps the repository uncached
	var userCache cache.UserCache
	var rawRedis *goredis.Client
	if rdb != nil {
		rawRedis = rdb.Client
		userCache = cache.NewRedisUserCache(rawRedis, time.Duration(cfg.Redis.CacheTTL)*time.Second, l)
	}

	repo := cached.NewCachedUserRepository(dbRepo, userCache, l)
	c.UserUC = user.New(repo, l)

	c.RateLimiter = middleware.NewRateLimiter(
		rawRedis,
		middleware.RateLimiterConfig{
			RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
			BurstCapacity:     cfg.RateLimit.BurstCapacity,
			Enabled:           cfg.RateLimit.Enabled,
		},
		l,
	)

	c.GinHandler = ginhandler.NewUserHandler(c.UserUC, l)

	return c, nil
}

// migrateSchema applies the versioned SQL migrations on PostgreSQL. SQLite
// has no migration history and is synced from the GORM model instead.
func migrateSchema(cfg *config.Config, repo *postgres.UserRepoPG, l *zap.Logger) error {
	if cfg.DB.Driver == "sqlite" {
		ctx, cancel := context.WithTimeout(context.Background(), migrateTimeout)
		defer cancel()
		return repo.AutoMigrate(ctx)
	}
	return postgres.RunMigrations(cfg.DB.DSN(), l)
}

// Close closes all resources held by the container
func (c *Container) Close() error {
	var errs []error

	if c.RedisClient != nil {
		if err := c.RedisClient.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close Redis: %w", err))
		}
	}

	if c.DB != nil {
		if err := infrastructure.CloseDatabase(c.DB); err != nil {
			errs = append(errs, fmt.Errorf("failed to close database: %w", err))
		}
	}

	return errors.Join(errs...)
}
