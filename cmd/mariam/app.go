package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/verte-zerg/mariam/internal/aladhan"
	"github.com/verte-zerg/mariam/internal/geocode"
	"github.com/verte-zerg/mariam/internal/location"
	"github.com/verte-zerg/mariam/internal/logging"
	"github.com/verte-zerg/mariam/internal/prayer"
	"github.com/verte-zerg/mariam/internal/quran"
	"github.com/verte-zerg/mariam/internal/store"
)

const (
	logFileName = "mariam.log"
	httpTimeout = 20 * time.Second
	// Persisted prayer times older than this are dropped on startup.
	prayerRetention = 30 * 24 * time.Hour
)

// app holds what every command needs: merged settings, a logger and the store.
type app struct {
	settings settings
	logger   zerolog.Logger
	store    *store.Store
	http     *http.Client
	logFile  io.Closer
}

// openApp loads settings and opens the store. Full-screen commands log to a
// file next to the database so log lines do not tear the TUI.
func openApp(cmd *cobra.Command, fullScreen bool) (*app, error) {
	s, err := loadSettings(cmd)
	if err != nil {
		return nil, err
	}
	a := &app{settings: s, http: &http.Client{Timeout: httpTimeout}}

	var logOut io.Writer = os.Stderr
	if fullScreen {
		if err := os.MkdirAll(filepath.Dir(s.DBPath), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create data directory: %w", err)
		}
		f, err := tea.LogToFile(filepath.Join(filepath.Dir(s.DBPath), logFileName), "mariam")
		if err != nil {
			return nil, fmt.Errorf("failed to open log file: %w", err)
		}
		logOut = f
		a.logFile = f
	}
	a.logger, err = logging.New(logOut, s.LogLevel)
	if err != nil {
		a.Close()
		return nil, err
	}

	a.store, err = store.Open(s.DBPath)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("failed to open db: %w", err)
	}
	return a, nil
}

func (a *app) Close() {
	if a.store != nil {
		if cerr := a.store.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}
	if a.logFile != nil {
		if cerr := a.logFile.Close(); cerr != nil {
			// Best-effort log file close.
			_ = cerr
		}
	}
}

func (a *app) resolver() (*location.Resolver, error) {
	geocoder, err := geocode.NewClient(a.settings.GeocodeURL, a.http)
	if err != nil {
		return nil, fmt.Errorf("failed to create geocoding client: %w", err)
	}
	return &location.Resolver{
		Store:    a.store,
		Geocoder: geocoder,
		Settings: location.Settings{
			Latitude:  a.settings.Latitude,
			Longitude: a.settings.Longitude,
			City:      a.settings.City,
			Country:   a.settings.Country,
		},
		Logger: a.logger,
	}, nil
}

func (a *app) resolveLocation(ctx context.Context) (location.Result, error) {
	r, err := a.resolver()
	if err != nil {
		return location.Result{}, err
	}
	res, err := r.Resolve(ctx)
	if err != nil {
		return location.Result{}, fmt.Errorf("failed to resolve location: %w", err)
	}
	return res, nil
}

func (a *app) prayerCache(ctx context.Context) (*prayer.Cache, error) {
	res, err := a.resolveLocation(ctx)
	if err != nil {
		return nil, err
	}
	fetcher, err := aladhan.NewClient(a.settings.AladhanURL, a.settings.Method, a.http)
	if err != nil {
		return nil, fmt.Errorf("failed to create prayer times client: %w", err)
	}
	cache, err := prayer.NewCache(fetcher, a.store, res.Location, a.settings.Method, a.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create prayer cache: %w", err)
	}
	if removed, err := cache.Prune(ctx, time.Now().Add(-prayerRetention)); err != nil {
		a.logger.Warn().Err(err).Msg("prayer cache cleanup failed")
	} else if removed > 0 {
		a.logger.Debug().Int64("days", removed).Msg("pruned old prayer times")
	}
	return cache, nil
}

func (a *app) quranLibrary(progress quran.ProgressFunc) (*quran.Library, error) {
	client, err := quran.NewClient(a.settings.QuranURL, quran.RetryPolicy{
		Attempts: a.settings.Retries,
		Base:     a.settings.RetryBase,
	}, a.http, a.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create quran client: %w", err)
	}
	opts := quran.DefaultOptions()
	opts.BatchSize = a.settings.BatchSize
	opts.BatchDelay = a.settings.BatchDelay
	opts.EditionDelay = a.settings.EditionDelay
	opts.Translation = a.settings.Translation
	prefetcher := quran.NewPrefetcher(client, opts, progress, a.logger)
	return quran.NewLibrary(a.store, prefetcher, a.logger), nil
}
