package prayer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/verte-zerg/mariam/internal/model"
	"github.com/verte-zerg/mariam/internal/store"
)

// CheckInterval is how often the Watcher compares the clock with prayer times.
const CheckInterval = time.Minute

// Notification announces that a prayer time has arrived.
type Notification struct {
	ID   string
	Name string
	Time string
}

// Title is the headline shown for the notification.
func (n Notification) Title() string {
	return "It's time for " + n.Name
}

// Body is the detail line shown for the notification.
func (n Notification) Body() string {
	return fmt.Sprintf("%s prayer time is now (%s)", n.Name, n.Time)
}

// Due returns the prayer whose HH:MM matches now, unless its id equals last.
// At most one prayer is reported per call.
func Due(now time.Time, times model.PrayerTimes, last string) (Notification, bool) {
	current := now.Format("15:04")
	for _, p := range Prayers(times, IsFriday(now)) {
		if p.Time == "" {
			continue
		}
		short := p.Time
		if len(short) > 5 {
			short = short[:5]
		}
		id := fmt.Sprintf("%s-%s-%s", DateKey(now), p.Name, short)
		if current == short && id != last {
			return Notification{ID: id, Name: p.Name, Time: p.Time}, true
		}
	}
	return Notification{}, false
}

// TimesSource returns prayer times for a date.
type TimesSource interface {
	Get(ctx context.Context, date time.Time) (model.PrayerTimes, error)
}

var _ TimesSource = (*Cache)(nil)

// Watcher checks prayer times every interval and notifies once per prayer.
// The last notification id is persisted so restarts do not repeat it.
type Watcher struct {
	Source   TimesSource
	Store    *store.Store
	Notify   func(Notification) error
	Interval time.Duration
	Now      func() time.Time
	Logger   zerolog.Logger

	last   string
	loaded bool
}

func (w *Watcher) now() time.Time {
	if w.Now != nil {
		return w.Now()
	}
	return time.Now()
}

// Run checks immediately, then on every tick until ctx is done.
func (w *Watcher) Run(ctx context.Context) error {
	if w.Source == nil || w.Notify == nil {
		return fmt.Errorf("watcher requires a times source and a notify func")
	}
	interval := w.Interval
	if interval <= 0 {
		interval = CheckInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if _, _, err := w.Check(ctx); err != nil {
			w.Logger.Warn().Err(err).Msg("prayer notification check failed")
		}
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

// Check runs one comparison and delivers a due notification.
func (w *Watcher) Check(ctx context.Context) (Notification, bool, error) {
	w.loadLast(ctx)
	now := w.now()
	times, err := w.Source.Get(ctx, now)
	if err != nil {
		return Notification{}, false, err
	}
	n, ok := Due(now, times, w.last)
	if !ok {
		return Notification{}, false, nil
	}
	w.Logger.Info().Str("prayer", n.Name).Str("time", n.Time).Msg("prayer time reached")
	if err := w.Notify(n); err != nil {
		return n, false, fmt.Errorf("failed to deliver notification: %w", err)
	}
	w.last = n.ID
	if w.Store != nil {
		if err := w.Store.SetValue(ctx, store.KeyLastNotification, n.ID); err != nil {
			return n, true, fmt.Errorf("failed to save last notification: %w", err)
		}
	}
	return n, true, nil
}

func (w *Watcher) loadLast(ctx context.Context) {
	if w.Store == nil || w.loaded {
		return
	}
	w.loaded = true
	last, err := w.Store.GetValue(ctx, store.KeyLastNotification)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			w.Logger.Warn().Err(err).Msg("failed to load last notification")
		}
		return
	}
	w.last = last
}
