package prayer

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/verte-zerg/mariam/internal/model"
	"github.com/verte-zerg/mariam/internal/store"
)

type fakeFetcher struct {
	mu    sync.Mutex
	calls map[string]int
	fail  map[string]bool
}

func newFakeFetcher() *fakeFetcher {
	return &fakeFetcher{calls: map[string]int{}, fail: map[string]bool{}}
}

func (f *fakeFetcher) Timings(_ context.Context, date time.Time, _, _ float64) (model.PrayerTimes, error) {
	key := DateKey(date)
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[key]++
	if f.fail[key] {
		return model.PrayerTimes{}, errors.New("offline")
	}
	pt := sampleTimes
	pt.Fajr = "05:" + key[len(key)-2:]
	return pt, nil
}

func (f *fakeFetcher) total() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		n += c
	}
	return n
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

func TestCacheFetchesEachDateOnce(t *testing.T) {
	fetcher := newFakeFetcher()
	cache, err := NewCache(fetcher, openStore(t), model.Location{Latitude: 1, Longitude: 2}, 2, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewCache returned error: %v", err)
	}
	now := wednesdayAt(10, 0, 0)

	pt, err := cache.EnsureRange(context.Background(), now, now)
	if err != nil {
		t.Fatalf("EnsureRange returned error: %v", err)
	}
	if pt.Fajr != "05:14" {
		t.Fatalf("selected times = %+v", pt)
	}
	if fetcher.total() != 8 {
		t.Fatalf("fetches = %d, want 8", fetcher.total())
	}

	if _, err := cache.EnsureRange(context.Background(), now.AddDate(0, 0, 3), now); err != nil {
		t.Fatalf("second EnsureRange returned error: %v", err)
	}
	if fetcher.total() != 8 {
		t.Fatalf("cached range refetched: %d calls", fetcher.total())
	}
}

func TestCachePersistsAcrossInstances(t *testing.T) {
	st := openStore(t)
	loc := model.Location{Latitude: 1, Longitude: 2}
	fetcher := newFakeFetcher()
	first, err := NewCache(fetcher, st, loc, 2, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewCache returned error: %v", err)
	}
	day := wednesdayAt(0, 0, 0)
	if _, err := first.Get(context.Background(), day); err != nil {
		t.Fatalf("Get returned error: %v", err)
	}

	second, err := NewCache(nil, st, loc, 2, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewCache returned error: %v", err)
	}
	if _, ok := second.Cached(context.Background(), day); !ok {
		t.Fatalf("expected persisted times")
	}

	other, err := NewCache(nil, st, model.Location{Latitude: 3, Longitude: 4}, 2, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewCache returned error: %v", err)
	}
	if _, ok := other.Cached(context.Background(), day); ok {
		t.Fatalf("times must be scoped to their location")
	}
}

func TestCacheEvictedDaysComeFromStore(t *testing.T) {
	ctx := context.Background()
	fetcher := newFakeFetcher()
	cache, err := NewCache(fetcher, openStore(t), model.Location{Latitude: 1, Longitude: 2}, 2, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewCache returned error: %v", err)
	}
	first := wednesdayAt(0, 0, 0)
	days := memoryEntries + weekLength
	for i := 0; i < days; i++ {
		if _, err := cache.Get(ctx, first.AddDate(0, 0, i)); err != nil {
			t.Fatalf("Get returned error: %v", err)
		}
	}
	if cache.memory.Contains(DateKey(first)) {
		t.Fatalf("expected the first day to be evicted from memory")
	}
	pt, err := cache.Get(ctx, first)
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if pt.Fajr != "05:14" {
		t.Fatalf("evicted day = %+v", pt)
	}
	if fetcher.total() != days {
		t.Fatalf("evicted day refetched: %d calls, want %d", fetcher.total(), days)
	}
}

func TestEnsureRangeToleratesOtherFailures(t *testing.T) {
	fetcher := newFakeFetcher()
	now := wednesdayAt(10, 0, 0)
	fetcher.fail[DateKey(now.AddDate(0, 0, 4))] = true
	cache, err := NewCache(fetcher, nil, model.Location{}, 2, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewCache returned error: %v", err)
	}
	if _, err := cache.EnsureRange(context.Background(), now, now); err != nil {
		t.Fatalf("EnsureRange returned error: %v", err)
	}
}

func TestEnsureRangeRetriesSelectedOnce(t *testing.T) {
	fetcher := newFakeFetcher()
	now := wednesdayAt(10, 0, 0)
	key := DateKey(now)
	fetcher.fail[key] = true
	cache, err := NewCache(fetcher, nil, model.Location{}, 2, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewCache returned error: %v", err)
	}
	_, err = cache.EnsureRange(context.Background(), now, now)
	if !errors.Is(err, ErrNoTimes) {
		t.Fatalf("expected ErrNoTimes, got %v", err)
	}
	if fetcher.calls[key] != 2 {
		t.Fatalf("selected date fetched %d times, want 2", fetcher.calls[key])
	}
}

func TestCachePruneDropsOldDays(t *testing.T) {
	st := openStore(t)
	loc := model.Location{Latitude: 1, Longitude: 2}
	ctx := context.Background()
	cache, err := NewCache(newFakeFetcher(), st, loc, 2, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewCache returned error: %v", err)
	}
	day := wednesdayAt(0, 0, 0)
	for _, d := range []time.Time{day.AddDate(0, 0, -2), day.AddDate(0, 0, -1), day} {
		if _, err := cache.Get(ctx, d); err != nil {
			t.Fatalf("Get returned error: %v", err)
		}
	}
	removed, err := cache.Prune(ctx, day)
	if err != nil || removed != 2 {
		t.Fatalf("Prune = %d, %v", removed, err)
	}

	fresh, err := NewCache(nil, st, loc, 2, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewCache returned error: %v", err)
	}
	if _, ok := fresh.Cached(ctx, day.AddDate(0, 0, -1)); ok {
		t.Fatalf("pruned day still cached")
	}
	if _, ok := fresh.Cached(ctx, day); !ok {
		t.Fatalf("current day was pruned")
	}
}
