package catalog

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"
)

// MemoryRepository is an in-memory catalog for tests and local development.
type MemoryRepository struct {
	mu       sync.RWMutex
	services map[string]Service
	maids    map[string]Maid
}

// NewMemoryRepository builds an empty in-memory catalog.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{services: make(map[string]Service), maids: make(map[string]Maid)}
}

// AddService stores s, assigning an id when it has none.
func (r *MemoryRepository) AddService(s Service) Service {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	r.services[s.ID] = s
	return s
}

// AddMaid stores m, assigning an id when it has none.
func (r *MemoryRepository) AddMaid(m Maid) Maid {
	r.mu.Lock()
	defer r.mu.Unlock()
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	r.maids[m.ID] = m
	return m
}

func (r *MemoryRepository) ListServices(_ context.Context, filter ServiceFilter) ([]Service, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Service, 0, len(r.services))
	for _, s := range r.services {
		if filter.Category != "" && s.Category != filter.Category {
			continue
		}
		if filter.ActiveOnly && !s.IsActive {
			continue
		}
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *MemoryRepository) GetService(_ context.Context, id string) (Service, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.services[id]
	if !ok {
		return Service{}, ErrServiceNotFound
	}
	return s, nil
}

func (r *MemoryRepository) ListMaids(_ context.Context, filter MaidFilter) ([]Maid, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Maid, 0, len(r.maids))
	for _, m := range r.maids {
		if filter.VerifiedOnly && !m.Verified {
			continue
		}
		if filter.ActiveOnly && !m.IsActive {
			continue
		}
		if filter.Skill != "" && !m.HasSkill(filter.Skill) {
			continue
		}
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Rating != out[j].Rating {
			return out[i].Rating > out[j].Rating
		}
		return out[i].Name < out[j].Name
	})
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

func (r *MemoryRepository) GetMaid(_ context.Context, id string) (Maid, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.maids[id]
	if !ok {
		return Maid{}, ErrMaidNotFound
	}
	return m, nil
}
