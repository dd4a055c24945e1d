package address

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/homehelp/homehelp/internal/kv"
)

// Book is the address collection and current location of one owner. Every
// mutation persists the whole collection before it becomes visible.
type Book struct {
	owner    string
	store    kv.Store
	geocoder Geocoder
	logger   *slog.Logger
	now      func() time.Time

	mu        sync.Mutex
	addresses []Address
	current   string
	coords    *Coordinates
	lastID    int64
}

func newBook(owner string, store kv.Store, geocoder Geocoder, logger *slog.Logger) *Book {
	return &Book{owner: owner, store: store, geocoder: geocoder, logger: logger, now: time.Now}
}

// Load reads the saved collection. A default address becomes the current one.
func (b *Book) Load(ctx context.Context) error {
	var saved []Address
	err := b.store.Get(ctx, kv.Key(b.owner, savedAddressesKey), &saved)
	if err != nil && !errors.Is(err, kv.ErrNotFound) {
		return fmt.Errorf("load addresses: %w", err)
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.addresses = saved
	for _, a := range saved {
		if a.IsDefault {
			b.current = a.Address
			b.coords = a.Coordinates()
			break
		}
	}
	return nil
}

// GetCurrentLocation resolves the device position reported by locator into an
// address, makes it current and records a timestamped snapshot.
func (b *Book) GetCurrentLocation(ctx context.Context, locator Locator) (string, error) {
	granted, err := locator.RequestPermission(ctx)
	if err != nil {
		return "", fmt.Errorf("request location permission: %w", err)
	}
	if !granted {
		return "", ErrPermissionDenied
	}

	pos, err := locator.CurrentPosition(ctx)
	if err != nil {
		return "", fmt.Errorf("sample location: %w", err)
	}

	b.mu.Lock()
	b.coords = &pos
	b.mu.Unlock()

	places, err := b.geocoder.Reverse(ctx, pos)
	if err != nil {
		return "", fmt.Errorf("reverse geocode: %w", err)
	}
	if len(places) == 0 {
		return "", ErrNoGeocodeResult
	}
	formatted := places[0].Format()

	b.mu.Lock()
	b.current = formatted
	b.mu.Unlock()

	snapshot := Snapshot{Address: formatted, Latitude: pos.Latitude, Longitude: pos.Longitude, Timestamp: b.now().UnixMilli()}
	if err := b.store.Set(ctx, kv.Key(b.owner, currentLocationKey), snapshot); err != nil {
		return "", fmt.Errorf("store current location: %w", err)
	}
	return formatted, nil
}

// LastLocation returns the most recent location snapshot.
func (b *Book) LastLocation(ctx context.Context) (Snapshot, error) {
	var snap Snapshot
	if err := b.store.Get(ctx, kv.Key(b.owner, currentLocationKey), &snap); err != nil {
		return Snapshot{}, err
	}
	return snap, nil
}

// SaveAddress appends a new address. A new default clears every other default first.
func (b *Book) SaveAddress(ctx context.Context, in Input) (Address, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	addr := Address{
		ID:        b.nextID(),
		Title:     in.Title,
		Address:   in.Address,
		City:      in.City,
		Pincode:   in.Pincode,
		Latitude:  in.Latitude,
		Longitude: in.Longitude,
		IsDefault: in.IsDefault,
	}

	updated := make([]Address, 0, len(b.addresses)+1)
	for _, a := range b.addresses {
		if addr.IsDefault {
			a.IsDefault = false
		}
		updated = append(updated, a)
	}
	updated = append(updated, addr)

	if err := b.persist(ctx, updated); err != nil {
		return Address{}, err
	}
	if addr.IsDefault {
		b.current = addr.Address
		if c := addr.Coordinates(); c != nil {
			b.coords = c
		}
	}
	return addr, nil
}

// SetDefaultAddress makes id the only default. Repeating it changes nothing.
func (b *Book) SetDefaultAddress(ctx context.Context, id string) (Address, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	idx := b.indexOf(id)
	if idx < 0 {
		return Address{}, ErrNotFound
	}

	updated := make([]Address, len(b.addresses))
	for i, a := range b.addresses {
		a.IsDefault = a.ID == id
		updated[i] = a
	}
	if err := b.persist(ctx, updated); err != nil {
		return Address{}, err
	}

	def := updated[idx]
	b.current = def.Address
	if c := def.Coordinates(); c != nil {
		b.coords = c
	}
	return def, nil
}

// DeleteAddress removes id. Removing the default clears the current address and
// coordinates; no other address is promoted.
func (b *Book) DeleteAddress(ctx context.Context, id string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	idx := b.indexOf(id)
	if idx < 0 {
		return ErrNotFound
	}
	removed := b.addresses[idx]

	updated := make([]Address, 0, len(b.addresses)-1)
	updated = append(updated, b.addresses[:idx]...)
	updated = append(updated, b.addresses[idx+1:]...)
	if err := b.persist(ctx, updated); err != nil {
		return err
	}

	if removed.IsDefault {
		b.current = ""
		b.coords = nil
	}
	return nil
}

// SearchAddresses forward-geocodes query. Short queries return nothing without a lookup.
func (b *Book) SearchAddresses(ctx context.Context, query string) ([]SearchResult, error) {
	if len([]rune(query)) < MinSearchLength {
		return []SearchResult{}, nil
	}
	results, err := b.geocoder.Forward(ctx, query)
	if err != nil {
		b.logger.Warn("address search failed", slog.String("owner", b.owner), slog.Any("error", err))
		return []SearchResult{}, fmt.Errorf("search addresses: %w", err)
	}
	return results, nil
}

// SelectAddress makes text the current address without saving it. Coordinates
// are only replaced when given.
func (b *Book) SelectAddress(text string, coords *Coordinates) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.current = text
	if coords != nil {
		c := *coords
		b.coords = &c
	}
}

// Addresses returns a copy of the saved collection.
func (b *Book) Addresses() []Address {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]Address, len(b.addresses))
	copy(out, b.addresses)
	return out
}

// Current returns the current address text and coordinates, if any.
func (b *Book) Current() (string, *Coordinates) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.coords == nil {
		return b.current, nil
	}
	c := *b.coords
	return b.current, &c
}

// persist writes updated and adopts it. Callers hold mu.
func (b *Book) persist(ctx context.Context, updated []Address) error {
	if err := b.store.Set(ctx, kv.Key(b.owner, savedAddressesKey), updated); err != nil {
		b.logger.Error("failed to persist addresses", slog.String("owner", b.owner), slog.Any("error", err))
		return fmt.Errorf("persist addresses: %w", err)
	}
	b.addresses = updated
	return nil
}

// nextID is the current Unix millisecond, bumped past any id already handed out. Callers hold mu.
func (b *Book) nextID() string {
	id := b.now().UnixMilli()
	for _, a := range b.addresses {
		if n, err := strconv.ParseInt(a.ID, 10, 64); err == nil && n > b.lastID {
			b.lastID = n
		}
	}
	if id <= b.lastID {
		id = b.lastID + 1
	}
	b.lastID = id
	return strconv.FormatInt(id, 10)
}

func (b *Book) indexOf(id string) int {
	for i, a := range b.addresses {
		if a.ID == id {
			return i
		}
	}
	return -1
}
