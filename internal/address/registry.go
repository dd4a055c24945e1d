package address

import (
	"context"
	"log/slog"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"golang.org/x/sync/singleflight"

	"github.com/homehelp/homehelp/internal/kv"
)

const (
	defaultCacheSize = 10_000
	defaultCacheTTL  = 30 * time.Minute
)

// RegistryOptions bounds the books kept in memory. Zero values use the defaults.
type RegistryOptions struct {
	Size int
	TTL  time.Duration
}

// Registry hands out one loaded Book per owner. Books are kept in a bounded,
// expiring cache; an evicted book is reloaded from the store on next use, so only
// an unsaved current selection is lost.
type Registry struct {
	store    kv.Store
	geocoder Geocoder
	logger   *slog.Logger

	books *expirable.LRU[string, *Book]
	loads singleflight.Group
}

// NewRegistry builds a registry over store and geocoder.
func NewRegistry(store kv.Store, geocoder Geocoder, logger *slog.Logger, opts RegistryOptions) *Registry {
	if opts.Size <= 0 {
		opts.Size = defaultCacheSize
	}
	if opts.TTL <= 0 {
		opts.TTL = defaultCacheTTL
	}
	return &Registry{
		store:    store,
		geocoder: geocoder,
		logger:   logger,
		books:    expirable.NewLRU[string, *Book](opts.Size, nil, opts.TTL),
	}
}

// Book returns the owner's book, loading it from the store when it is not cached.
func (r *Registry) Book(ctx context.Context, owner string) (*Book, error) {
	if b, ok := r.books.Get(owner); ok {
		return b, nil
	}
	v, err, _ := r.loads.Do(owner, func() (any, error) {
		if b, ok := r.books.Get(owner); ok {
			return b, nil
		}
		b := newBook(owner, r.store, r.geocoder, r.logger)
		if err := b.Load(ctx); err != nil {
			return nil, err
		}
		r.books.Add(owner, b)
		return b, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Book), nil
}

// cached reports whether owner's book is currently held in memory.
func (r *Registry) cached(owner string) bool {
	return r.books.Contains(owner)
}
