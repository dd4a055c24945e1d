package address

import (
	"context"
	"errors"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/homehelp/homehelp/internal/kv"
	"github.com/homehelp/homehelp/internal/logging"
)

type stubGeocoder struct {
	places  []Place
	results []SearchResult
	err     error
	calls   int
}

func (g *stubGeocoder) Reverse(context.Context, Coordinates) ([]Place, error) {
	g.calls++
	return g.places, g.err
}

func (g *stubGeocoder) Forward(context.Context, string) ([]SearchResult, error) {
	g.calls++
	return g.results, g.err
}

type failingStore struct{ kv.Store }

func (failingStore) Set(context.Context, string, any) error { return errors.New("disk full") }

func float(v float64) *float64 { return &v }

func newTestBook(t *testing.T, geo Geocoder) (*Book, kv.Store) {
	t.Helper()
	store := kv.NewMemoryStore()
	b := newBook("device-1", store, geo, logging.Discard())
	clock := time.UnixMilli(1_700_000_000_000)
	b.now = func() time.Time { return clock }
	require.NoError(t, b.Load(context.Background()))
	return b, store
}

func countDefaults(addrs []Address) (int, string) {
	n, id := 0, ""
	for _, a := range addrs {
		if a.IsDefault {
			n++
			id = a.ID
		}
	}
	return n, id
}

func TestSaveDefaultClearsOtherDefaults(t *testing.T) {
	b, _ := newTestBook(t, &stubGeocoder{})
	ctx := context.Background()

	_, err := b.SaveAddress(ctx, Input{Title: "home", Address: "12 MG Road", IsDefault: true})
	require.NoError(t, err)
	work, err := b.SaveAddress(ctx, Input{Title: "work", Address: "Tech Park", Latitude: float(12.9), Longitude: float(77.6), IsDefault: true})
	require.NoError(t, err)

	n, id := countDefaults(b.Addresses())
	require.Equal(t, 1, n)
	require.Equal(t, work.ID, id)

	current, coords := b.Current()
	require.Equal(t, "Tech Park", current)
	require.Equal(t, &Coordinates{Latitude: 12.9, Longitude: 77.6}, coords)
}

func TestSaveAssignsDistinctTimeBasedIDs(t *testing.T) {
	b, _ := newTestBook(t, &stubGeocoder{})
	ctx := context.Background()

	first, err := b.SaveAddress(ctx, Input{Title: "home", Address: "a"})
	require.NoError(t, err)
	second, err := b.SaveAddress(ctx, Input{Title: "work", Address: "b"})
	require.NoError(t, err)

	require.Equal(t, "1700000000000", first.ID)
	require.Equal(t, "1700000000001", second.ID)
}

func TestSetDefaultAddressIsExclusiveAndIdempotent(t *testing.T) {
	b, store := newTestBook(t, &stubGeocoder{})
	ctx := context.Background()

	a, _ := b.SaveAddress(ctx, Input{Title: "home", Address: "a", IsDefault: true})
	c, _ := b.SaveAddress(ctx, Input{Title: "work", Address: "c"})
	_, _ = b.SaveAddress(ctx, Input{Title: "other", Address: "d"})
	require.NotEmpty(t, a.ID)

	_, err := b.SetDefaultAddress(ctx, c.ID)
	require.NoError(t, err)
	once := b.Addresses()

	_, err = b.SetDefaultAddress(ctx, c.ID)
	require.NoError(t, err)
	twice := b.Addresses()

	require.Equal(t, once, twice)
	n, id := countDefaults(twice)
	require.Equal(t, 1, n)
	require.Equal(t, c.ID, id)

	var persisted []Address
	require.NoError(t, store.Get(ctx, kv.Key("device-1", savedAddressesKey), &persisted))
	require.Equal(t, twice, persisted)

	current, _ := b.Current()
	require.Equal(t, "c", current)
}

func TestSetDefaultUnknownIDLeavesCollection(t *testing.T) {
	b, _ := newTestBook(t, &stubGeocoder{})
	ctx := context.Background()
	_, _ = b.SaveAddress(ctx, Input{Title: "home", Address: "a", IsDefault: true})
	before := b.Addresses()

	_, err := b.SetDefaultAddress(ctx, "missing")
	require.ErrorIs(t, err, ErrNotFound)
	require.Equal(t, before, b.Addresses())
}

func TestDeleteDefaultClearsCurrentWithoutPromotion(t *testing.T) {
	b, _ := newTestBook(t, &stubGeocoder{})
	ctx := context.Background()

	_, _ = b.SaveAddress(ctx, Input{Title: "work", Address: "c"})
	home, _ := b.SaveAddress(ctx, Input{Title: "home", Address: "a", Latitude: float(1), Longitude: float(2), IsDefault: true})

	require.NoError(t, b.DeleteAddress(ctx, home.ID))

	current, coords := b.Current()
	require.Equal(t, "", current)
	require.Nil(t, coords)
	n, _ := countDefaults(b.Addresses())
	require.Zero(t, n)
	require.Len(t, b.Addresses(), 1)

	require.ErrorIs(t, b.DeleteAddress(ctx, home.ID), ErrNotFound)
}

func TestDeleteNonDefaultKeepsCurrent(t *testing.T) {
	b, _ := newTestBook(t, &stubGeocoder{})
	ctx := context.Background()

	_, _ = b.SaveAddress(ctx, Input{Title: "home", Address: "a", IsDefault: true})
	work, _ := b.SaveAddress(ctx, Input{Title: "work", Address: "c"})
	require.NoError(t, b.DeleteAddress(ctx, work.ID))

	current, _ := b.Current()
	require.Equal(t, "a", current)
}

func TestLoadAdoptsPersistedDefault(t *testing.T) {
	store := kv.NewMemoryStore()
	ctx := context.Background()
	require.NoError(t, store.Set(ctx, kv.Key("device-1", savedAddressesKey), []Address{
		{ID: "1", Title: "home", Address: "a"},
		{ID: "2", Title: "work", Address: "b", Latitude: float(3), Longitude: float(4), IsDefault: true},
	}))

	b := newBook("device-1", store, &stubGeocoder{}, logging.Discard())
	require.NoError(t, b.Load(ctx))

	current, coords := b.Current()
	require.Equal(t, "b", current)
	require.Equal(t, &Coordinates{Latitude: 3, Longitude: 4}, coords)
}

func TestFailedPersistLeavesStateUntouched(t *testing.T) {
	b, _ := newTestBook(t, &stubGeocoder{})
	ctx := context.Background()
	_, _ = b.SaveAddress(ctx, Input{Title: "home", Address: "a", IsDefault: true})

	b.store = failingStore{Store: b.store}
	_, err := b.SaveAddress(ctx, Input{Title: "work", Address: "c", IsDefault: true})
	require.Error(t, err)

	require.Len(t, b.Addresses(), 1)
	current, _ := b.Current()
	require.Equal(t, "a", current)
}

func TestGetCurrentLocationFormatsAndSnapshots(t *testing.T) {
	geo := &stubGeocoder{places: []Place{{Name: "Prestige Tower", Street: "Residency Road", City: "Bengaluru", Region: "Karnataka"}}}
	b, _ := newTestBook(t, geo)
	ctx := context.Background()

	formatted, err := b.GetCurrentLocation(ctx, ReportedLocator{Granted: true, Position: &Coordinates{Latitude: 12.97, Longitude: 77.6}})
	require.NoError(t, err)
	require.Equal(t, "Prestige Tower, Residency Road, Bengaluru, Karnataka", formatted)

	snap, err := b.LastLocation(ctx)
	require.NoError(t, err)
	require.Equal(t, Snapshot{Address: formatted, Latitude: 12.97, Longitude: 77.6, Timestamp: 1_700_000_000_000}, snap)

	// the snapshot does not become a saved address
	require.Empty(t, b.Addresses())
}

func TestGetCurrentLocationPermissionDenied(t *testing.T) {
	geo := &stubGeocoder{}
	b, _ := newTestBook(t, geo)

	_, err := b.GetCurrentLocation(context.Background(), ReportedLocator{Granted: false})
	require.ErrorIs(t, err, ErrPermissionDenied)
	require.Zero(t, geo.calls)
}

func TestGetCurrentLocationWithoutGeocodeResult(t *testing.T) {
	b, _ := newTestBook(t, &stubGeocoder{})

	_, err := b.GetCurrentLocation(context.Background(), ReportedLocator{Granted: true, Position: &Coordinates{Latitude: 1, Longitude: 1}})
	require.ErrorIs(t, err, ErrNoGeocodeResult)
	current, coords := b.Current()
	require.Equal(t, "", current)
	require.NotNil(t, coords)
}

func TestSearchAddressesSkipsShortQueries(t *testing.T) {
	geo := &stubGeocoder{results: []SearchResult{{DisplayName: "Koramangala"}}}
	b, _ := newTestBook(t, geo)
	ctx := context.Background()

	results, err := b.SearchAddresses(ctx, "Ko")
	require.NoError(t, err)
	require.Empty(t, results)
	require.Zero(t, geo.calls)

	results, err = b.SearchAddresses(ctx, "Kor")
	require.NoError(t, err)
	require.Len(t, results, 1)
}

func TestSelectAddressKeepsCoordsWhenNotGiven(t *testing.T) {
	b, _ := newTestBook(t, &stubGeocoder{})
	b.SelectAddress("first", &Coordinates{Latitude: 1, Longitude: 2})
	b.SelectAddress("second", nil)

	current, coords := b.Current()
	require.Equal(t, "second", current)
	require.Equal(t, &Coordinates{Latitude: 1, Longitude: 2}, coords)
}

func TestPlaceFormatSkipsEmptyParts(t *testing.T) {
	require.Equal(t, "Indiranagar, Bengaluru", Place{District: "Indiranagar", City: "Bengaluru"}.Format())
	require.Equal(t, "", Place{}.Format())
}

func TestRegistryLoadsOncePerOwner(t *testing.T) {
	reg := NewRegistry(kv.NewMemoryStore(), &stubGeocoder{}, logging.Discard(), RegistryOptions{})
	ctx := context.Background()

	first, err := reg.Book(ctx, "device-1")
	require.NoError(t, err)
	again, err := reg.Book(ctx, "device-1")
	require.NoError(t, err)
	other, err := reg.Book(ctx, "device-2")
	require.NoError(t, err)

	require.Same(t, first, again)
	require.NotSame(t, first, other)
}

func TestRegistryEvictsAndReloads(t *testing.T) {
	store := kv.NewMemoryStore()
	reg := NewRegistry(store, &stubGeocoder{}, logging.Discard(), RegistryOptions{Size: 2, TTL: time.Hour})
	ctx := context.Background()

	first, err := reg.Book(ctx, "device-1")
	require.NoError(t, err)
	saved, err := first.SaveAddress(ctx, Input{Title: "Home", Address: "12 MG Road", IsDefault: true})
	require.NoError(t, err)

	for i := 0; i < 100; i++ {
		_, err := reg.Book(ctx, "device-x"+strconv.Itoa(i))
		require.NoError(t, err)
	}
	require.False(t, reg.cached("device-1"))
	require.Equal(t, 2, reg.books.Len())

	reloaded, err := reg.Book(ctx, "device-1")
	require.NoError(t, err)
	require.NotSame(t, first, reloaded)
	require.Equal(t, []Address{saved}, reloaded.Addresses())
	current, _ := reloaded.Current()
	require.Equal(t, "12 MG Road", current)
}

func TestRegistryExpiresIdleBooks(t *testing.T) {
	reg := NewRegistry(kv.NewMemoryStore(), &stubGeocoder{}, logging.Discard(), RegistryOptions{Size: 10, TTL: 5 * time.Millisecond})
	ctx := context.Background()

	first, err := reg.Book(ctx, "device-1")
	require.NoError(t, err)
	time.Sleep(20 * time.Millisecond)

	again, err := reg.Book(ctx, "device-1")
	require.NoError(t, err)
	require.NotSame(t, first, again)
}
