// Package hadith serves the hadith collection and tracks what has been read.
package hadith

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/verte-zerg/mariam/internal/generator"
	"github.com/verte-zerg/mariam/internal/model"
	"github.com/verte-zerg/mariam/internal/store"
)

//go:embed data/hadith.json
var collectionJSON []byte

var (
	collectionOnce sync.Once
	collection     []model.Hadith
	collectionErr  error
)

// unreadWeight biases the hadith of the day toward unread entries.
const unreadWeight = 4.0

const dailyDateLayout = "2006-01-02"

// Collection returns every hadith ordered by number.
func Collection() ([]model.Hadith, error) {
	collectionOnce.Do(func() {
		var items []model.Hadith
		if err := json.Unmarshal(collectionJSON, &items); err != nil {
			collectionErr = fmt.Errorf("failed to decode hadith collection: %w", err)
			return
		}
		sort.SliceStable(items, func(i, j int) bool { return items[i].Number < items[j].Number })
		collection = items
	})
	return collection, collectionErr
}

// Find returns the hadith with id, or by its number when id is numeric.
func Find(items []model.Hadith, id string) (model.Hadith, bool) {
	for _, h := range items {
		if h.ID == id || fmt.Sprint(h.Number) == id {
			return h, true
		}
	}
	return model.Hadith{}, false
}

// Tracker records which hadith have been read.
type Tracker struct {
	store *store.Store
	read  map[string]struct{}
	// daily pins each date's pick as "YYYY-MM-DD:id".
	daily string
}

// NewTracker loads the read set from st. st may be nil.
func NewTracker(ctx context.Context, st *store.Store) (*Tracker, error) {
	t := &Tracker{store: st, read: map[string]struct{}{}}
	if st == nil {
		return t, nil
	}
	read, err := st.ReadHadith(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load read hadith: %w", err)
	}
	t.read = read
	return t, nil
}

// IsRead reports whether id is marked read.
func (t *Tracker) IsRead(id string) bool {
	_, ok := t.read[id]
	return ok
}

// ToggleRead flips the read mark of id and returns the new state.
func (t *Tracker) ToggleRead(ctx context.Context, id string) (bool, error) {
	if t.IsRead(id) {
		if t.store != nil {
			if err := t.store.UnmarkHadithRead(ctx, id); err != nil {
				return true, err
			}
		}
		delete(t.read, id)
		return false, nil
	}
	if t.store != nil {
		if err := t.store.MarkHadithRead(ctx, id); err != nil {
			return false, err
		}
	}
	t.read[id] = struct{}{}
	return true, nil
}

// Progress returns how many of items are read.
func (t *Tracker) Progress(items []model.Hadith) (int, int) {
	read := 0
	for _, h := range items {
		if t.IsRead(h.ID) {
			read++
		}
	}
	return read, len(items)
}

// Daily returns the hadith of the day. The first call for a date draws a
// date-seeded pick favoring unread hadith and pins it, so reading it later
// that day does not change it.
func (t *Tracker) Daily(ctx context.Context, items []model.Hadith, date time.Time) (model.Hadith, bool, error) {
	if len(items) == 0 {
		return model.Hadith{}, false, nil
	}
	day := date.Format(dailyDateLayout)
	if err := t.loadDaily(ctx); err != nil {
		return model.Hadith{}, false, err
	}
	if pinnedDay, id, ok := strings.Cut(t.daily, ":"); ok && pinnedDay == day {
		if h, found := Find(items, id); found {
			return h, true, nil
		}
	}
	h, _ := t.Pick(items, generator.ForDay(date))
	pin := day + ":" + h.ID
	if t.store != nil {
		if err := t.store.SetValue(ctx, store.KeyHadithDaily, pin); err != nil {
			return model.Hadith{}, false, fmt.Errorf("failed to save hadith of the day: %w", err)
		}
	}
	t.daily = pin
	return h, true, nil
}

func (t *Tracker) loadDaily(ctx context.Context) error {
	if t.store == nil || t.daily != "" {
		return nil
	}
	pin, err := t.store.GetValue(ctx, store.KeyHadithDaily)
	if errors.Is(err, store.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to load hadith of the day: %w", err)
	}
	t.daily = pin
	return nil
}

// Pick draws a hadith from g, favoring unread ones.
func (t *Tracker) Pick(items []model.Hadith, g *generator.Generator) (model.Hadith, bool) {
	if len(items) == 0 {
		return model.Hadith{}, false
	}
	weights := make([]float64, len(items))
	for i, h := range items {
		weights[i] = 1
		if !t.IsRead(h.ID) {
			weights[i] = unreadWeight
		}
	}
	return items[g.PickWeighted(weights)], true
}
