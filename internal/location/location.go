// Package location decides which place prayer times are computed for.
package location

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/verte-zerg/mariam/internal/geocode"
	"github.com/verte-zerg/mariam/internal/model"
	"github.com/verte-zerg/mariam/internal/store"
)

// DateLayout keys the saved location to the calendar day it was resolved on.
const DateLayout = "2006-01-02"

// CurrentLocation names coordinates that could not be reverse geocoded.
const CurrentLocation = "Current Location"

// Mecca is used when no coordinates are configured. It is never saved.
var Mecca = model.Location{
	City:      "Mecca",
	Country:   "Saudi Arabia",
	Latitude:  21.3891,
	Longitude: 39.8579,
}

// Settings are the user-configured coordinates and optional name overrides.
type Settings struct {
	Latitude  *float64
	Longitude *float64
	City      string
	Country   string
}

// HasCoordinates reports whether both coordinates are configured.
func (s Settings) HasCoordinates() bool {
	return s.Latitude != nil && s.Longitude != nil
}

// Result is a resolved location and where it came from.
type Result struct {
	Location model.Location
	Source   Source
}

// Source describes how a location was resolved.
type Source string

const (
	SourceSaved      Source = "saved"
	SourceConfigured Source = "configured"
	SourceFallback   Source = "fallback"
)

// Resolver resolves the active location.
type Resolver struct {
	Store    *store.Store
	Geocoder geocode.Reverser
	Settings Settings
	Logger   zerolog.Logger
	Now      func() time.Time
}

func (r *Resolver) now() time.Time {
	if r.Now != nil {
		return r.Now()
	}
	return time.Now()
}

// Resolve returns today's saved location when it matches the configured
// coordinates, otherwise resolves and saves a fresh one. Without configured
// coordinates it falls back to Mecca.
func (r *Resolver) Resolve(ctx context.Context) (Result, error) {
	today := r.now().Format(DateLayout)
	if !r.Settings.HasCoordinates() {
		if saved, ok := r.saved(ctx, today); ok {
			return Result{Location: saved, Source: SourceSaved}, nil
		}
		r.Logger.Info().Str("city", Mecca.City).Msg("no coordinates configured, using fallback location")
		return Result{Location: Mecca, Source: SourceFallback}, nil
	}

	lat, lon := *r.Settings.Latitude, *r.Settings.Longitude
	if saved, ok := r.saved(ctx, today); ok && saved.Latitude == lat && saved.Longitude == lon {
		return Result{Location: r.applyNames(saved), Source: SourceSaved}, nil
	}

	loc := model.Location{Latitude: lat, Longitude: lon, City: CurrentLocation}
	if r.Geocoder != nil {
		place, err := r.Geocoder.Reverse(ctx, lat, lon)
		if err != nil {
			r.Logger.Warn().Err(err).Msg("reverse geocoding failed")
		} else {
			loc.City = place.City
			loc.Country = place.Country
		}
	}
	loc = r.applyNames(loc)
	if err := r.Save(ctx, loc); err != nil {
		return Result{}, err
	}
	return Result{Location: loc, Source: SourceConfigured}, nil
}

func (r *Resolver) applyNames(loc model.Location) model.Location {
	if city := strings.TrimSpace(r.Settings.City); city != "" {
		loc.City = city
	}
	if country := strings.TrimSpace(r.Settings.Country); country != "" {
		loc.Country = country
	}
	return loc
}

func (r *Resolver) saved(ctx context.Context, today string) (model.Location, bool) {
	if r.Store == nil {
		return model.Location{}, false
	}
	savedDate, err := r.Store.GetValue(ctx, store.KeyLocationDate)
	if err != nil || savedDate != today {
		return model.Location{}, false
	}
	raw, err := r.Store.GetValue(ctx, store.KeyLocation)
	if err != nil {
		return model.Location{}, false
	}
	var loc model.Location
	if err := json.Unmarshal([]byte(raw), &loc); err != nil {
		r.Logger.Warn().Err(err).Msg("ignoring unreadable saved location")
		return model.Location{}, false
	}
	return loc, true
}

// Save stores loc as today's location.
func (r *Resolver) Save(ctx context.Context, loc model.Location) error {
	if r.Store == nil {
		return nil
	}
	raw, err := json.Marshal(loc)
	if err != nil {
		return fmt.Errorf("failed to encode location: %w", err)
	}
	if err := r.Store.SetValue(ctx, store.KeyLocation, string(raw)); err != nil {
		return fmt.Errorf("failed to save location: %w", err)
	}
	if err := r.Store.SetValue(ctx, store.KeyLocationDate, r.now().Format(DateLayout)); err != nil {
		return fmt.Errorf("failed to save location date: %w", err)
	}
	return nil
}

// Forget clears the saved location.
func (r *Resolver) Forget(ctx context.Context) error {
	if r.Store == nil {
		return nil
	}
	return errors.Join(
		r.Store.DeleteValue(ctx, store.KeyLocation),
		r.Store.DeleteValue(ctx, store.KeyLocationDate),
	)
}
