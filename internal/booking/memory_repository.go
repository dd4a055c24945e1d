package booking

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

type memoryRepository struct {
	mu       sync.RWMutex
	bookings map[string]Booking
	now      func() time.Time
}

// NewMemoryRepository builds an in-memory booking store for testing.
func NewMemoryRepository() Repository {
	return &memoryRepository{bookings: make(map[string]Booking), now: time.Now}
}

func (r *memoryRepository) Create(_ context.Context, b Booking) (Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b.ID = uuid.NewString()
	b.CreatedAt = r.now().UTC()
	r.bookings[b.ID] = b
	return b, nil
}

func (r *memoryRepository) Get(_ context.Context, id string) (Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	b, ok := r.bookings[id]
	if !ok {
		return Booking{}, ErrNotFound
	}
	return b, nil
}

func (r *memoryRepository) ListByUser(_ context.Context, userID string, statuses []Status) ([]Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []Booking
	for _, b := range r.bookings {
		if b.UserID == userID && contains(statuses, b.Status) {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *memoryRepository) Transition(_ context.Context, id string, from []Status, to Status) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.bookings[id]
	if !ok {
		return ErrNotFound
	}
	if !contains(from, b.Status) {
		return ErrNotCancellable
	}
	b.Status = to
	r.bookings[id] = b
	return nil
}

func contains(statuses []Status, s Status) bool {
	for _, v := range statuses {
		if v == s {
			return true
		}
	}
	return false
}
