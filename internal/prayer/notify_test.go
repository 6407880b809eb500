package prayer

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/verte-zerg/mariam/internal/model"
	"github.com/verte-zerg/mariam/internal/store"
)

func TestDueMatchesMinuteOnce(t *testing.T) {
	now := wednesdayAt(15, 30, 20)
	n, ok := Due(now, sampleTimes, "")
	if !ok {
		t.Fatalf("expected Asr to be due")
	}
	if n.ID != "2026-10-14-Asr-15:30" || n.Name != model.Asr {
		t.Fatalf("notification = %+v", n)
	}
	if _, ok := Due(now, sampleTimes, n.ID); ok {
		t.Fatalf("same prayer must not be due twice")
	}
	if _, ok := Due(wednesdayAt(15, 31, 0), sampleTimes, ""); ok {
		t.Fatalf("nothing is due at 15:31")
	}
}

func TestDueUsesJumuahOnFriday(t *testing.T) {
	friday := time.Date(2026, 10, 16, 12, 5, 0, 0, time.UTC)
	n, ok := Due(friday, sampleTimes, "")
	if !ok || n.Name != model.Jumuah {
		t.Fatalf("notification = %+v, %v", n, ok)
	}
	if n.Title() != "It's time for Jumuah" || n.Body() != "Jumuah prayer time is now (12:05)" {
		t.Fatalf("title/body = %q / %q", n.Title(), n.Body())
	}
}

type staticSource struct {
	times model.PrayerTimes
	err   error
}

func (s staticSource) Get(context.Context, time.Time) (model.PrayerTimes, error) {
	return s.times, s.err
}

func TestWatcherNotifiesOnceAndPersists(t *testing.T) {
	st := openStore(t)
	var delivered []Notification
	w := &Watcher{
		Source: staticSource{times: sampleTimes},
		Store:  st,
		Notify: func(n Notification) error {
			delivered = append(delivered, n)
			return nil
		},
		Now: func() time.Time { return wednesdayAt(18, 0, 5) },
	}
	ctx := context.Background()
	if _, ok, err := w.Check(ctx); err != nil || !ok {
		t.Fatalf("first Check = %v, %v", ok, err)
	}
	if _, ok, err := w.Check(ctx); err != nil || ok {
		t.Fatalf("second Check = %v, %v", ok, err)
	}
	if len(delivered) != 1 || delivered[0].Name != model.Maghrib {
		t.Fatalf("delivered = %+v", delivered)
	}
	last, err := st.GetValue(ctx, store.KeyLastNotification)
	if err != nil || last != "2026-10-14-Maghrib-18:00" {
		t.Fatalf("persisted id = %q, %v", last, err)
	}

	restarted := &Watcher{
		Source: w.Source,
		Store:  st,
		Notify: w.Notify,
		Now:    w.Now,
	}
	if _, ok, _ := restarted.Check(ctx); ok {
		t.Fatalf("restarted watcher repeated a notification")
	}
}

func TestWatcherRunStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	w := &Watcher{
		Source:   staticSource{err: errors.New("offline")},
		Notify:   func(Notification) error { return nil },
		Interval: time.Millisecond,
		Now: func() time.Time {
			calls++
			if calls >= 3 {
				cancel()
			}
			return wednesdayAt(1, 0, 0)
		},
	}
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run returned error: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("Run did not stop after cancel")
	}
}
