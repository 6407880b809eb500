// Package prayer caches daily prayer times and derives the next prayer.
package prayer

import (
	"context"
	"errors"
	"fmt"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/verte-zerg/mariam/internal/aladhan"
	"github.com/verte-zerg/mariam/internal/model"
	"github.com/verte-zerg/mariam/internal/store"
)

// DateLayout is the cache key layout: the local calendar date.
const DateLayout = "2006-01-02"

const (
	// memoryEntries bounds the in-memory days. The dashboard only browses
	// the coming week, so a session stays well below it; evicted days are
	// read back from the store.
	memoryEntries = 64
	fetchParallel = 4
	weekLength    = 8
)

// ErrNoTimes is returned when times for the selected date cannot be obtained.
var ErrNoTimes = errors.New("failed to fetch prayer times for the selected date. Please check your internet connection")

// DateKey returns the cache key of t's calendar day.
func DateKey(t time.Time) string {
	return t.Format(DateLayout)
}

// Cache holds prayer times for one location. Lookups go memory, then the
// store, then the API. Stored entries are never invalidated while the Cache
// lives; a memory-only cache refetches days evicted from memory.
type Cache struct {
	fetcher  aladhan.Fetcher
	store    *store.Store
	location model.Location
	place    string
	memory   *lru.Cache[string, model.PrayerTimes]
	logger   zerolog.Logger
}

// NewCache builds a Cache for loc. st may be nil for a memory-only cache.
func NewCache(fetcher aladhan.Fetcher, st *store.Store, loc model.Location, method int, logger zerolog.Logger) (*Cache, error) {
	memory, err := lru.New[string, model.PrayerTimes](memoryEntries)
	if err != nil {
		return nil, fmt.Errorf("failed to create prayer cache: %w", err)
	}
	return &Cache{
		fetcher:  fetcher,
		store:    st,
		location: loc,
		place:    fmt.Sprintf("%.4f,%.4f,%d", loc.Latitude, loc.Longitude, method),
		memory:   memory,
		logger:   logger,
	}, nil
}

// Location returns the location the cache serves.
func (c *Cache) Location() model.Location {
	return c.location
}

// Cached returns times for date without touching the network.
func (c *Cache) Cached(ctx context.Context, date time.Time) (model.PrayerTimes, bool) {
	key := DateKey(date)
	if pt, ok := c.memory.Get(key); ok {
		return pt, true
	}
	if c.store == nil {
		return model.PrayerTimes{}, false
	}
	pt, err := c.store.GetPrayerTimes(ctx, key, c.place)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			c.logger.Warn().Err(err).Str("date", key).Msg("failed to read cached prayer times")
		}
		return model.PrayerTimes{}, false
	}
	c.memory.Add(key, pt)
	return pt, true
}

// Prune drops persisted times for days before the calendar day of before.
func (c *Cache) Prune(ctx context.Context, before time.Time) (int64, error) {
	if c.store == nil {
		return 0, nil
	}
	removed, err := c.store.PrunePrayerTimes(ctx, DateKey(before))
	if err != nil {
		return 0, fmt.Errorf("failed to prune prayer times: %w", err)
	}
	return removed, nil
}

// Get returns times for date, fetching them once if they are not cached.
func (c *Cache) Get(ctx context.Context, date time.Time) (model.PrayerTimes, error) {
	if pt, ok := c.Cached(ctx, date); ok {
		return pt, nil
	}
	key := DateKey(date)
	if c.fetcher == nil {
		return model.PrayerTimes{}, fmt.Errorf("no prayer times cached for %s", key)
	}
	pt, err := c.fetcher.Timings(ctx, date, c.location.Latitude, c.location.Longitude)
	if err != nil {
		return model.PrayerTimes{}, fmt.Errorf("failed to fetch prayer times for %s: %w", key, err)
	}
	c.memory.Add(key, pt)
	if c.store != nil {
		if err := c.store.PutPrayerTimes(ctx, key, c.place, pt); err != nil {
			c.logger.Warn().Err(err).Str("date", key).Msg("failed to persist prayer times")
		}
	}
	return pt, nil
}

// EnsureRange makes sure the coming week, the selected date and tomorrow are
// cached, then returns the selected date's times. Failures for other dates
// are logged; the selected date is retried once before giving up.
func (c *Cache) EnsureRange(ctx context.Context, selected, now time.Time) (model.PrayerTimes, error) {
	dates := RangeDates(selected, now)

	var missing []time.Time
	for _, d := range dates {
		if _, ok := c.Cached(ctx, d); !ok {
			missing = append(missing, d)
		}
	}
	if len(missing) > 0 {
		var group errgroup.Group
		group.SetLimit(fetchParallel)
		for _, d := range missing {
			group.Go(func() error {
				if _, err := c.Get(ctx, d); err != nil {
					c.logger.Warn().Err(err).Str("date", DateKey(d)).Msg("prayer times prefetch failed")
				}
				return nil
			})
		}
		_ = group.Wait()
	}

	if pt, ok := c.Cached(ctx, selected); ok {
		return pt, nil
	}
	pt, err := c.Get(ctx, selected)
	if err != nil {
		return model.PrayerTimes{}, fmt.Errorf("%w: %w", ErrNoTimes, err)
	}
	return pt, nil
}

// RangeDates lists the dates EnsureRange keeps cached: the week starting
// today, plus the selected date and tomorrow when they fall outside it.
func RangeDates(selected, now time.Time) []time.Time {
	dates := WeekDates(now)
	seen := make(map[string]struct{}, len(dates)+2)
	for _, d := range dates {
		seen[DateKey(d)] = struct{}{}
	}
	for _, extra := range []time.Time{StartOfDay(selected), StartOfDay(now).AddDate(0, 0, 1)} {
		if _, ok := seen[DateKey(extra)]; ok {
			continue
		}
		seen[DateKey(extra)] = struct{}{}
		dates = append(dates, extra)
	}
	return dates
}

// WeekDates returns eight consecutive local midnights starting today.
func WeekDates(now time.Time) []time.Time {
	today := StartOfDay(now)
	dates := make([]time.Time, weekLength)
	for i := range dates {
		dates[i] = today.AddDate(0, 0, i)
	}
	return dates
}

// StartOfDay returns local midnight of t's day.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
