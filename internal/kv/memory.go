package kv

import (
	"context"
	"encoding/json"
	"sync"
)

type memoryStore struct {
	mu     sync.RWMutex
	values map[string][]byte
}

// NewMemoryStore builds an in-memory Store for tests and local development.
func NewMemoryStore() Store {
	return &memoryStore{values: make(map[string][]byte)}
}

func (s *memoryStore) Get(_ context.Context, key string, dst any) error {
	s.mu.RLock()
	raw, ok := s.values[key]
	s.mu.RUnlock()
	if !ok {
		return ErrNotFound
	}
	return json.Unmarshal(raw, dst)
}

func (s *memoryStore) Set(_ context.Context, key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = raw
	return nil
}

func (s *memoryStore) Remove(_ context.Context, keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, k := range keys {
		delete(s.values, k)
	}
	return nil
}
