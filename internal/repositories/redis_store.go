package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/rebooked/campus-service/internal/cache"
)

// RedisStore adapts the Redis cache service to a KeyValueStore.
// A zero ttl keeps values until they are deleted.
type RedisStore struct {
	cache cache.CacheService
	ttl   time.Duration
}

func NewRedisStore(cacheService cache.CacheService, ttl time.Duration) *RedisStore {
	return &RedisStore{cache: cacheService, ttl: ttl}
}

func (s *RedisStore) Get(ctx context.Context, key string, dest interface{}) error {
	err := s.cache.Get(ctx, key, dest)
	if errors.Is(err, cache.ErrCacheMiss) {
		return ErrKeyNotFound
	}
	return err
}

func (s *RedisStore) Set(ctx context.Context, key string, value interface{}) error {
	return s.cache.Set(ctx, key, value, s.ttl)
}

func (s *RedisStore) Delete(ctx context.Context, key string) error {
	return s.cache.Delete(ctx, key)
}
