// Package kv is the per-device key-value storage used for saved addresses,
// location snapshots and preferences. Values are JSON encoded.
package kv

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// ErrNotFound is returned by Get when no value is stored under the key.
var ErrNotFound = errors.New("key not found")

const redisPrefix = "kv:v1:"

// Store reads and writes JSON values by string key.
type Store interface {
	Get(ctx context.Context, key string, dst any) error
	Set(ctx context.Context, key string, value any) error
	Remove(ctx context.Context, keys ...string) error
}

// Key scopes name to a single owner (device).
func Key(owner, name string) string {
	return owner + ":" + name
}

// RedisStore keeps values in Redis without expiry.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore builds a Redis-backed Store.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

// Get decodes the value stored under key into dst.
func (s *RedisStore) Get(ctx context.Context, key string, dst any) error {
	raw, err := s.client.Get(ctx, redisPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("kv get %s: %w", key, err)
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("kv decode %s: %w", key, err)
	}
	return nil
}

// Set replaces the value stored under key.
func (s *RedisStore) Set(ctx context.Context, key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("kv encode %s: %w", key, err)
	}
	if err := s.client.Set(ctx, redisPrefix+key, raw, 0).Err(); err != nil {
		return fmt.Errorf("kv set %s: %w", key, err)
	}
	return nil
}

// Remove deletes keys. Missing keys are ignored.
func (s *RedisStore) Remove(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	prefixed := make([]string, len(keys))
	for i, k := range keys {
		prefixed[i] = redisPrefix + k
	}
	if err := s.client.Del(ctx, prefixed...).Err(); err != nil {
		return fmt.Errorf("kv remove: %w", err)
	}
	return nil
}
