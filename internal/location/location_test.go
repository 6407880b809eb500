package location

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/verte-zerg/mariam/internal/geocode"
	"github.com/verte-zerg/mariam/internal/store"
)

type fakeGeocoder struct {
	place geocode.Place
	err   error
	calls int
}

func (f *fakeGeocoder) Reverse(context.Context, float64, float64) (geocode.Place, error) {
	f.calls++
	return f.place, f.err
}

func openStore(t *testing.T) *store.Store {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "mariam.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })
	return st
}

func ptr(v float64) *float64 { return &v }

func fixedNow(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestResolveFallsBackToMeccaWithoutSaving(t *testing.T) {
	st := openStore(t)
	r := &Resolver{Store: st, Now: fixedNow(time.Date(2026, 10, 16, 9, 0, 0, 0, time.UTC))}

	res, err := r.Resolve(context.Background())
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if res.Source != SourceFallback || res.Location != Mecca {
		t.Fatalf("unexpected result: %+v", res)
	}
	if _, err := st.GetValue(context.Background(), store.KeyLocation); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("fallback location should not be saved, got %v", err)
	}
}

func TestResolveGeocodesAndReusesSameDay(t *testing.T) {
	st := openStore(t)
	geo := &fakeGeocoder{place: geocode.Place{City: "Istanbul", Country: "Turkey"}}
	now := time.Date(2026, 10, 16, 9, 0, 0, 0, time.UTC)
	r := &Resolver{
		Store:    st,
		Geocoder: geo,
		Settings: Settings{Latitude: ptr(41.01), Longitude: ptr(28.97)},
		Now:      fixedNow(now),
	}

	res, err := r.Resolve(context.Background())
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if res.Source != SourceConfigured || res.Location.City != "Istanbul" {
		t.Fatalf("unexpected result: %+v", res)
	}

	res, err = r.Resolve(context.Background())
	if err != nil {
		t.Fatalf("second Resolve returned error: %v", err)
	}
	if res.Source != SourceSaved || geo.calls != 1 {
		t.Fatalf("expected saved location, got %+v after %d calls", res, geo.calls)
	}

	r.Now = fixedNow(now.AddDate(0, 0, 1))
	res, err = r.Resolve(context.Background())
	if err != nil {
		t.Fatalf("next-day Resolve returned error: %v", err)
	}
	if res.Source != SourceConfigured || geo.calls != 2 {
		t.Fatalf("expected re-resolve on a new day, got %+v after %d calls", res, geo.calls)
	}
}

func TestResolveNamesCurrentLocationOnGeocodeFailure(t *testing.T) {
	r := &Resolver{
		Store:    openStore(t),
		Geocoder: &fakeGeocoder{err: errors.New("offline")},
		Settings: Settings{Latitude: ptr(1), Longitude: ptr(2)},
	}
	res, err := r.Resolve(context.Background())
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if res.Location.City != CurrentLocation || res.Location.Country != "" {
		t.Fatalf("unexpected location: %+v", res.Location)
	}
}

func TestResolveAppliesConfiguredNames(t *testing.T) {
	r := &Resolver{
		Store:    openStore(t),
		Geocoder: &fakeGeocoder{place: geocode.Place{City: "Unknown", Country: "Unknown"}},
		Settings: Settings{Latitude: ptr(1), Longitude: ptr(2), City: "Home", Country: "Here"},
	}
	res, err := r.Resolve(context.Background())
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if res.Location.Label() != "Home, Here" {
		t.Fatalf("label = %q", res.Location.Label())
	}
	if err := r.Forget(context.Background()); err != nil {
		t.Fatalf("Forget returned error: %v", err)
	}
}
