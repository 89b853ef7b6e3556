package repositories

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
)

// InMemoryStore keeps JSON encoded values in a map. Used by tests and single-instance setups.
type InMemoryStore struct {
	mu     sync.RWMutex
	values map[string][]byte
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{values: make(map[string][]byte)}
}

func (s *InMemoryStore) Get(ctx context.Context, key string, dest interface{}) error {
	s.mu.RLock()
	data, ok := s.values[key]
	s.mu.RUnlock()
	if !ok {
		return ErrKeyNotFound
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return fmt.Errorf("failed to decode value for %s: %w", key, err)
	}
	return nil
}

func (s *InMemoryStore) Set(ctx context.Context, key string, value interface{}) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode value for %s: %w", key, err)
	}
	s.mu.Lock()
	s.values[key] = data
	s.mu.Unlock()
	return nil
}

func (s *InMemoryStore) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	delete(s.values, key)
	s.mu.Unlock()
	return nil
}
