package hadith

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/verte-zerg/mariam/internal/generator"
	"github.com/verte-zerg/mariam/internal/model"
	"github.com/verte-zerg/mariam/internal/store"
)

func openStore(t *testing.T) *store.Store {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "mariam.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })
	return st
}

func TestCollection(t *testing.T) {
	items, err := Collection()
	if err != nil {
		t.Fatalf("Collection returned error: %v", err)
	}
	if len(items) != 40 || items[0].Number != 1 || items[39].Number != 40 {
		t.Fatalf("unexpected collection: %d items", len(items))
	}
	if h, ok := Find(items, "h1"); !ok || h.Number != 1 {
		t.Fatalf("Find(h1) = %+v, %v", h, ok)
	}
	if h, ok := Find(items, "40"); !ok || h.Number != 40 {
		t.Fatalf("Find(40) = %+v, %v", h, ok)
	}
}

func TestToggleReadPersists(t *testing.T) {
	ctx := context.Background()
	st := openStore(t)
	tr, err := NewTracker(ctx, st)
	if err != nil {
		t.Fatalf("NewTracker returned error: %v", err)
	}
	if read, err := tr.ToggleRead(ctx, "h3"); err != nil || !read {
		t.Fatalf("ToggleRead = %v, %v", read, err)
	}

	reloaded, err := NewTracker(ctx, st)
	if err != nil {
		t.Fatalf("reload tracker: %v", err)
	}
	if !reloaded.IsRead("h3") {
		t.Fatalf("read mark not persisted")
	}
	if read, err := reloaded.ToggleRead(ctx, "h3"); err != nil || read {
		t.Fatalf("second ToggleRead = %v, %v", read, err)
	}
	items := []model.Hadith{{ID: "h1"}, {ID: "h3"}}
	if done, total := reloaded.Progress(items); done != 0 || total != 2 {
		t.Fatalf("Progress = %d/%d", done, total)
	}
}

func TestDailyIsStableAndPrefersUnread(t *testing.T) {
	ctx := context.Background()
	tr, err := NewTracker(ctx, nil)
	if err != nil {
		t.Fatalf("NewTracker returned error: %v", err)
	}
	items, err := Collection()
	if err != nil {
		t.Fatalf("Collection returned error: %v", err)
	}
	day := time.Date(2026, 10, 16, 8, 0, 0, 0, time.UTC)
	first, ok, err := tr.Daily(ctx, items, day)
	if err != nil || !ok {
		t.Fatalf("Daily = %v, %v", ok, err)
	}
	again, _, _ := tr.Daily(ctx, items, day.Add(10*time.Hour))
	if first.ID != again.ID {
		t.Fatalf("daily hadith changed within the day: %s vs %s", first.ID, again.ID)
	}

	only := []model.Hadith{{ID: "a"}, {ID: "b"}}
	if _, err := tr.ToggleRead(ctx, "a"); err != nil {
		t.Fatalf("ToggleRead: %v", err)
	}
	unread := 0
	for i := 0; i < 60; i++ {
		h, _, _ := tr.Daily(ctx, only, day.AddDate(0, 0, i))
		if h.ID == "b" {
			unread++
		}
	}
	if unread <= 30 {
		t.Fatalf("unread hadith picked %d/60 days, expected a bias", unread)
	}
}

func TestDailyUnchangedAfterReadingIt(t *testing.T) {
	ctx := context.Background()
	st := openStore(t)
	tr, err := NewTracker(ctx, st)
	if err != nil {
		t.Fatalf("NewTracker returned error: %v", err)
	}
	items, err := Collection()
	if err != nil {
		t.Fatalf("Collection returned error: %v", err)
	}
	day := time.Date(2026, 10, 16, 8, 0, 0, 0, time.UTC)
	before, _, err := tr.Daily(ctx, items, day)
	if err != nil {
		t.Fatalf("Daily returned error: %v", err)
	}
	if _, err := tr.ToggleRead(ctx, before.ID); err != nil {
		t.Fatalf("ToggleRead: %v", err)
	}
	after, _, err := tr.Daily(ctx, items, day.Add(time.Hour))
	if err != nil {
		t.Fatalf("Daily returned error: %v", err)
	}
	if after.ID != before.ID {
		t.Fatalf("daily hadith changed after reading it: %s vs %s", before.ID, after.ID)
	}

	reopened, err := NewTracker(ctx, st)
	if err != nil {
		t.Fatalf("NewTracker returned error: %v", err)
	}
	again, _, err := reopened.Daily(ctx, items, day.Add(2*time.Hour))
	if err != nil {
		t.Fatalf("Daily returned error: %v", err)
	}
	if again.ID != before.ID {
		t.Fatalf("daily hadith changed across sessions: %s vs %s", before.ID, again.ID)
	}
	if pin, err := st.GetValue(ctx, store.KeyHadithDaily); err != nil || pin != "2026-10-16:"+before.ID {
		t.Fatalf("stored pin = %q, %v", pin, err)
	}
}

func TestPickSkipsEmptyAndRepeatsForSeed(t *testing.T) {
	tr, err := NewTracker(context.Background(), nil)
	if err != nil {
		t.Fatalf("NewTracker returned error: %v", err)
	}
	if _, ok := tr.Pick(nil, generator.NewSeeded(1)); ok {
		t.Fatalf("expected no pick from an empty collection")
	}
	items := []model.Hadith{{ID: "a"}, {ID: "b"}, {ID: "c"}}
	first, _ := tr.Pick(items, generator.NewSeeded(42))
	again, _ := tr.Pick(items, generator.NewSeeded(42))
	if first.ID != again.ID {
		t.Fatalf("same seed picked %s then %s", first.ID, again.ID)
	}
}
