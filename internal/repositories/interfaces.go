package repositories

import (
	"context"
	"errors"

	"gorm.io/gorm"
)

// ErrKeyNotFound is returned by every KeyValueStore when a key has no value.
var ErrKeyNotFound = errors.New("key not found")

// KeyValueStore is the storage medium behind saved calculations. Values are JSON encoded,
// Get decodes into dest. Implementations: in-memory, Redis and Postgres.
type KeyValueStore interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}) error
	Delete(ctx context.Context, key string) error
}

// IsNotFoundError reports whether err means the requested record does not exist.
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrKeyNotFound) || errors.Is(err, gorm.ErrRecordNotFound)
}
