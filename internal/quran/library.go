package quran

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/verte-zerg/mariam/internal/model"
	"github.com/verte-zerg/mariam/internal/store"
)

// CacheVersion tags the stored Quran layout. A mismatch discards the cache.
const CacheVersion = "v1"

// Fetcher downloads the full Quran.
type Fetcher interface {
	Fetch(ctx context.Context) ([]model.Surah, error)
}

var _ Fetcher = (*Prefetcher)(nil)

// Library serves the Quran from the local cache, downloading it when needed.
type Library struct {
	store   *store.Store
	fetcher Fetcher
	logger  zerolog.Logger
}

// NewLibrary builds a Library. fetcher may be nil for cache-only access.
func NewLibrary(st *store.Store, fetcher Fetcher, logger zerolog.Logger) *Library {
	return &Library{store: st, fetcher: fetcher, logger: logger}
}

// Cached returns the cached Quran when it is present and current.
func (l *Library) Cached(ctx context.Context) ([]model.Surah, bool, error) {
	version, err := l.store.GetValue(ctx, store.KeyQuranVersion)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return nil, false, err
	}
	surahs, err := l.store.LoadQuran(ctx)
	if err != nil {
		return nil, false, fmt.Errorf("failed to load cached quran: %w", err)
	}
	if version == CacheVersion && len(surahs) > 0 {
		return surahs, true, nil
	}
	if len(surahs) > 0 || version != "" {
		l.logger.Info().Str("version", version).Msg("discarding stale quran cache")
		if err := l.store.ClearQuran(ctx); err != nil {
			return nil, false, fmt.Errorf("failed to clear stale quran cache: %w", err)
		}
	}
	return nil, false, nil
}

// Load returns the cached Quran or downloads and caches it. The bool
// reports whether the cache was used.
func (l *Library) Load(ctx context.Context) ([]model.Surah, bool, error) {
	surahs, ok, err := l.Cached(ctx)
	if err != nil {
		return nil, false, err
	}
	if ok {
		return surahs, true, nil
	}
	if l.fetcher == nil {
		return nil, false, fmt.Errorf("quran is not downloaded; run `mariam quran fetch`")
	}
	return l.Refresh(ctx)
}

// Refresh downloads the Quran regardless of the cache. A failure to save
// the download is logged and the data is still returned.
func (l *Library) Refresh(ctx context.Context) ([]model.Surah, bool, error) {
	if l.fetcher == nil {
		return nil, false, fmt.Errorf("no quran fetcher configured")
	}
	surahs, err := l.fetcher.Fetch(ctx)
	if err != nil {
		return nil, false, err
	}
	if err := l.store.SaveQuran(ctx, surahs); err != nil {
		l.logger.Error().Err(err).Msg("failed to cache quran")
		return surahs, false, nil
	}
	if err := l.store.SetValue(ctx, store.KeyQuranVersion, CacheVersion); err != nil {
		l.logger.Error().Err(err).Msg("failed to save quran cache version")
	}
	return surahs, false, nil
}

// Clear removes the cached Quran.
func (l *Library) Clear(ctx context.Context) error {
	return l.store.ClearQuran(ctx)
}
