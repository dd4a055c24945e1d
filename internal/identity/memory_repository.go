package identity

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

type memoryRepository struct {
	mu       sync.RWMutex
	profiles map[string]Profile
}

// NewMemoryRepository builds an in-memory profile store for testing.
func NewMemoryRepository() Repository {
	return &memoryRepository{profiles: make(map[string]Profile)}
}

func (r *memoryRepository) Create(_ context.Context, profile Profile) (Profile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.conflicts("", profile) {
		return Profile{}, ErrProfileExists
	}
	now := time.Now().UTC()
	profile.ID = uuid.NewString()
	profile.CreatedAt = now
	profile.UpdatedAt = now
	r.profiles[profile.ID] = profile
	return profile, nil
}

func (r *memoryRepository) FindByID(_ context.Context, id string) (Profile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.profiles[id]
	if !ok {
		return Profile{}, ErrProfileNotFound
	}
	return p, nil
}

func (r *memoryRepository) FindByEmail(_ context.Context, email string) (Profile, error) {
	return r.find(func(p Profile) bool { return p.Email == email })
}

func (r *memoryRepository) FindByPhone(_ context.Context, phone string) (Profile, error) {
	return r.find(func(p Profile) bool { return p.Phone == phone })
}

func (r *memoryRepository) Update(_ context.Context, profile Profile) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.profiles[profile.ID]; !ok {
		return ErrProfileNotFound
	}
	if r.conflicts(profile.ID, profile) {
		return ErrProfileExists
	}
	r.profiles[profile.ID] = profile
	return nil
}

func (r *memoryRepository) find(match func(Profile) bool) (Profile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, p := range r.profiles {
		if match(p) {
			return p, nil
		}
	}
	return Profile{}, ErrProfileNotFound
}

// conflicts reports whether another profile already owns the email or phone. Callers hold mu.
func (r *memoryRepository) conflicts(selfID string, profile Profile) bool {
	for id, p := range r.profiles {
		if id == selfID {
			continue
		}
		if (profile.Email != "" && p.Email == profile.Email) || (profile.Phone != "" && p.Phone == profile.Phone) {
			return true
		}
	}
	return false
}
