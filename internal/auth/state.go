package auth

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	statePrefix = "oauth:state:v1:"
	// StateTTL bounds how long a consent round-trip may take.
	StateTTL = 10 * time.Minute
)

// ErrUnknownState is returned for OAuth states that were never issued, expired or were used.
var ErrUnknownState = errors.New("unknown oauth state")

// StateStore remembers which device started an OAuth round-trip. States are single use.
type StateStore interface {
	Issue(ctx context.Context, deviceID string) (string, error)
	Consume(ctx context.Context, state string) (string, error)
}

// RedisStateStore keeps states in Redis with StateTTL.
type RedisStateStore struct {
	client *redis.Client
}

// NewRedisStateStore builds a Redis-backed StateStore.
func NewRedisStateStore(client *redis.Client) *RedisStateStore {
	return &RedisStateStore{client: client}
}

// Issue creates a fresh state bound to deviceID.
func (s *RedisStateStore) Issue(ctx context.Context, deviceID string) (string, error) {
	state := uuid.NewString()
	if err := s.client.Set(ctx, statePrefix+state, deviceID, StateTTL).Err(); err != nil {
		return "", err
	}
	return state, nil
}

// Consume returns the device bound to state and forgets it.
func (s *RedisStateStore) Consume(ctx context.Context, state string) (string, error) {
	device, err := s.client.GetDel(ctx, statePrefix+state).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrUnknownState
	}
	if err != nil {
		return "", err
	}
	return device, nil
}

type memoryStateStore struct {
	mu     sync.Mutex
	states map[string]string
}

// NewMemoryStateStore builds an in-memory StateStore for tests and local development.
func NewMemoryStateStore() StateStore {
	return &memoryStateStore{states: make(map[string]string)}
}

func (s *memoryStateStore) Issue(_ context.Context, deviceID string) (string, error) {
	state := uuid.NewString()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.states[state] = deviceID
	return state, nil
}

func (s *memoryStateStore) Consume(_ context.Context, state string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	device, ok := s.states[state]
	if !ok {
		return "", ErrUnknownState
	}
	delete(s.states, state)
	return device, nil
}
