package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/Additional-Code/timeclock/internal/config"
)

// Store is a byte-oriented cache. Get reports ErrCacheMiss for absent or
// expired keys; Delete ignores keys that are not present.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

var (
	// ErrCacheMiss indicates the key is absent from the cache.
	ErrCacheMiss = errors.New("cache miss")
	// ErrEmptyKey is returned when writing under an empty key.
	ErrEmptyKey = errors.New("cache key is required")
)

// Module provides the configured Store.
var Module = fx.Provide(NewStore)

// NewStore picks the backend named by cfg.Cache.Driver.
func NewStore(lc fx.Lifecycle, cfg config.Config, logger *zap.Logger) (Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.With(zap.String("cache_driver", cfg.Cache.Driver))

	switch cfg.Cache.Driver {
	case "noop":
		logger.Info("response cache disabled")
		return Noop(), nil
	case "memory":
		logger.Info("response cache in process", zap.Duration("ttl", cfg.Cache.DefaultTTL))
		return NewMemoryStore(cfg.Cache.DefaultTTL), nil
	case "redis":
		client := goredis.NewClient(&goredis.Options{
			Addr:     cfg.Cache.Redis.Addr,
			Password: cfg.Cache.Redis.Password,
			DB:       cfg.Cache.Redis.DB,
		})
		lc.Append(fx.Hook{
			OnStart: func(ctx context.Context) error {
				if err := client.Ping(ctx).Err(); err != nil {
					return fmt.Errorf("ping redis %s: %w", cfg.Cache.Redis.Addr, err)
				}
				logger.Info("response cache connected", zap.String("addr", cfg.Cache.Redis.Addr))
				return nil
			},
			OnStop: func(context.Context) error {
				return client.Close()
			},
		})
		return NewRedisStore(client, cfg.Cache.DefaultTTL), nil
	default:
		return nil, fmt.Errorf("unsupported cache driver: %s", cfg.Cache.Driver)
	}
}

type noopStore struct{}

// Noop returns a store that never holds anything.
func Noop() Store {
	return noopStore{}
}

func (noopStore) Get(context.Context, string) ([]byte, error) { return nil, ErrCacheMiss }
func (noopStore) Set(context.Context, string, []byte, time.Duration) error { return nil }
func (noopStore) Delete(context.Context, ...string) error { return nil }

// RedisStore keeps entries in redis with a default expiry.
type RedisStore struct {
	client     goredis.UniversalClient
	defaultTTL time.Duration
}

// NewRedisStore wraps an existing client. The caller owns the client.
func NewRedisStore(client goredis.UniversalClient, defaultTTL time.Duration) *RedisStore {
	if defaultTTL <= 0 {
		defaultTTL = 5 * time.Minute
	}
	return &RedisStore{client: client, defaultTTL: defaultTTL}
}

func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, error) {
	if key == "" {
		return nil, ErrCacheMiss
	}
	res, err := s.client.Get(ctx, key).Bytes()
	switch {
	case errors.Is(err, goredis.Nil):
		return nil, ErrCacheMiss
	case err != nil:
		return nil, fmt.Errorf("redis get %s: %w", key, err)
	}
	return res, nil
}

func (s *RedisStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if key == "" {
		return ErrEmptyKey
	}
	if ttl <= 0 {
		ttl = s.defaultTTL
	}
	return s.client.Set(ctx, key, value, ttl).Err()
}

// Delete removes keys in a single round trip.
func (s *RedisStore) Delete(ctx context.Context, keys ...string) error {
	keys = nonEmpty(keys)
	if len(keys) == 0 {
		return nil
	}
	return s.client.Del(ctx, keys...).Err()
}

func nonEmpty(keys []string) []string {
	out := keys[:0:0]
	for _, k := range keys {
		if k != "" {
			out = append(out, k)
		}
	}
	return out
}
