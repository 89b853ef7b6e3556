package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrCacheMiss is returned by Get when the key does not exist.
var ErrCacheMiss = errors.New("cache miss")

type CacheService interface {
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Get(ctx context.Context, key string, dest interface{}) error
	Delete(ctx context.Context, key string) error
}

type redisCache struct {
	client    *redis.Client
	logger    *slog.Logger
	keyPrefix string
}

// Set stores value as JSON. A zero ttl means no expiry.
func (r redisCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal cache value: %w", err)
	}
	if err := r.client.Set(ctx, r.keyPrefix+key, data, ttl).Err(); err != nil {
		r.logger.Error("Failed to write cache entry", "key", key, "error", err)
		return fmt.Errorf("failed to write cache entry: %w", err)
	}
	return nil
}

func (r redisCache) Get(ctx context.Context, key string, dest interface{}) error {
	data, err := r.client.Get(ctx, r.keyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return ErrCacheMiss
	}
	if err != nil {
		r.logger.Error("Failed to read cache entry", "key", key, "error", err)
		return fmt.Errorf("failed to read cache entry: %w", err)
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return fmt.Errorf("failed to unmarshal cache value: %w", err)
	}
	return nil
}

func (r redisCache) Delete(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, r.keyPrefix+key).Err(); err != nil {
		return fmt.Errorf("failed to delete cache entry: %w", err)
	}
	return nil
}

func NewRedisCache(client *redis.Client, logger *slog.Logger, keyPrefix string) CacheService {
	return &redisCache{
		client:    client,
		logger:    logger,
		keyPrefix: keyPrefix,
	}
}
