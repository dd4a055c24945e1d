package identity

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	sessionPrefix = "session:v1:"
	pendingPrefix = "auth:pending:v1:"
)

// SessionStore holds the single current session of each device.
type SessionStore interface {
	Get(ctx context.Context, deviceID string) (Session, error)
	Put(ctx context.Context, deviceID string, session Session) error
	Delete(ctx context.Context, deviceID string) error
}

// PendingStore holds the identifier each device is signing in with.
type PendingStore interface {
	Get(ctx context.Context, deviceID string) (Pending, error)
	Put(ctx context.Context, deviceID string, pending Pending) error
	Delete(ctx context.Context, deviceID string) error
}

// redisJSON stores one JSON document per device under prefix with a fixed TTL.
type redisJSON struct {
	client  *redis.Client
	prefix  string
	ttl     time.Duration
	missing error
}

func (s redisJSON) get(ctx context.Context, deviceID string, dst any) error {
	raw, err := s.client.Get(ctx, s.prefix+deviceID).Bytes()
	if errors.Is(err, redis.Nil) {
		return s.missing
	}
	if err != nil {
		return fmt.Errorf("load %s%s: %w", s.prefix, deviceID, err)
	}
	return json.Unmarshal(raw, dst)
}

func (s redisJSON) put(ctx context.Context, deviceID string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, s.prefix+deviceID, raw, s.ttl).Err()
}

func (s redisJSON) delete(ctx context.Context, deviceID string) error {
	return s.client.Del(ctx, s.prefix+deviceID).Err()
}

// RedisSessionStore keeps sessions in Redis until ttl elapses or the device signs out.
type RedisSessionStore struct{ store redisJSON }

// NewRedisSessionStore builds a Redis-backed SessionStore.
func NewRedisSessionStore(client *redis.Client, ttl time.Duration) *RedisSessionStore {
	return &RedisSessionStore{store: redisJSON{client: client, prefix: sessionPrefix, ttl: ttl, missing: ErrNoSession}}
}

func (s *RedisSessionStore) Get(ctx context.Context, deviceID string) (Session, error) {
	var session Session
	if err := s.store.get(ctx, deviceID, &session); err != nil {
		return Session{}, err
	}
	return session, nil
}

func (s *RedisSessionStore) Put(ctx context.Context, deviceID string, session Session) error {
	return s.store.put(ctx, deviceID, session)
}

func (s *RedisSessionStore) Delete(ctx context.Context, deviceID string) error {
	return s.store.delete(ctx, deviceID)
}

// RedisPendingStore keeps pending identifiers in Redis for a bounded time.
type RedisPendingStore struct{ store redisJSON }

// NewRedisPendingStore builds a Redis-backed PendingStore.
func NewRedisPendingStore(client *redis.Client, ttl time.Duration) *RedisPendingStore {
	return &RedisPendingStore{store: redisJSON{client: client, prefix: pendingPrefix, ttl: ttl, missing: ErrNoPendingIdentifier}}
}

func (s *RedisPendingStore) Get(ctx context.Context, deviceID string) (Pending, error) {
	var pending Pending
	if err := s.store.get(ctx, deviceID, &pending); err != nil {
		return Pending{}, err
	}
	return pending, nil
}

func (s *RedisPendingStore) Put(ctx context.Context, deviceID string, pending Pending) error {
	return s.store.put(ctx, deviceID, pending)
}

func (s *RedisPendingStore) Delete(ctx context.Context, deviceID string) error {
	return s.store.delete(ctx, deviceID)
}

type memoryStore[T any] struct {
	mu      sync.RWMutex
	values  map[string]T
	missing error
}

func (s *memoryStore[T]) Get(_ context.Context, deviceID string) (T, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[deviceID]
	if !ok {
		var zero T
		return zero, s.missing
	}
	return v, nil
}

func (s *memoryStore[T]) Put(_ context.Context, deviceID string, value T) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[deviceID] = value
	return nil
}

func (s *memoryStore[T]) Delete(_ context.Context, deviceID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.values, deviceID)
	return nil
}

// NewMemorySessionStore builds an in-memory SessionStore for tests and local development.
func NewMemorySessionStore() SessionStore {
	return &memoryStore[Session]{values: make(map[string]Session), missing: ErrNoSession}
}

// NewMemoryPendingStore builds an in-memory PendingStore for tests and local development.
func NewMemoryPendingStore() PendingStore {
	return &memoryStore[Pending]{values: make(map[string]Pending), missing: ErrNoPendingIdentifier}
}
