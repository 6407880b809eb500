package prayer

import (
	"testing"
	"time"

	"github.com/verte-zerg/mariam/internal/model"
)

var sampleTimes = model.PrayerTimes{
	Fajr:    "05:00",
	Sunrise: "06:20",
	Dhuhr:   "12:05",
	Asr:     "15:30",
	Maghrib: "18:00",
	Isha:    "19:30",
	Jumuah:  "12:05",
}

// Wednesday.
func wednesdayAt(h, m, s int) time.Time {
	return time.Date(2026, 10, 14, h, m, s, 0, time.UTC)
}

func TestNextPicksFirstLaterPrayer(t *testing.T) {
	now := wednesdayAt(13, 0, 0)
	next, ok := Next(now, now, sampleTimes, nil)
	if !ok {
		t.Fatalf("expected a next prayer")
	}
	if next.Name != model.Asr || next.Time != "15:30" {
		t.Fatalf("next = %+v", next)
	}
	if next.Countdown != 2*time.Hour+30*time.Minute {
		t.Fatalf("countdown = %v", next.Countdown)
	}
}

func TestNextSkipsSunriseAndExactMatch(t *testing.T) {
	now := wednesdayAt(5, 0, 0)
	next, ok := Next(now, now, sampleTimes, nil)
	if !ok || next.Name != model.Dhuhr {
		t.Fatalf("next = %+v, %v; want Dhuhr", next, ok)
	}
}

func TestNextSubstitutesJumuahOnFriday(t *testing.T) {
	friday := time.Date(2026, 10, 16, 9, 0, 0, 0, time.UTC)
	times := sampleTimes
	times.Jumuah = "13:00"
	next, ok := Next(friday, friday, times, nil)
	if !ok || next.Name != model.Jumuah || next.Time != "13:00" {
		t.Fatalf("next = %+v, %v; want Jumuah at 13:00", next, ok)
	}
}

func TestNextWrapsToTomorrowFajr(t *testing.T) {
	now := wednesdayAt(22, 0, 0)
	tomorrow := sampleTimes
	tomorrow.Fajr = "05:02"

	next, ok := Next(now, now, sampleTimes, &tomorrow)
	if !ok || next.Name != model.Fajr || next.Time != "05:02" {
		t.Fatalf("next = %+v, %v", next, ok)
	}
	if next.Countdown != 7*time.Hour+2*time.Minute {
		t.Fatalf("countdown = %v", next.Countdown)
	}

	next, ok = Next(now, now, sampleTimes, nil)
	if !ok || next.Time != "05:00" || next.Countdown != 7*time.Hour {
		t.Fatalf("fallback to today's Fajr: %+v, %v", next, ok)
	}
}

func TestNextFutureAndPastDates(t *testing.T) {
	now := wednesdayAt(22, 0, 0)
	future := now.AddDate(0, 0, 2)
	next, ok := Next(now, future, sampleTimes, nil)
	if !ok || next.Name != model.Fajr {
		t.Fatalf("future next = %+v, %v", next, ok)
	}
	if next.Countdown != 31*time.Hour {
		t.Fatalf("future countdown = %v, want 31h", next.Countdown)
	}

	if _, ok := Next(now, now.AddDate(0, 0, -1), sampleTimes, nil); ok {
		t.Fatalf("past dates have no next prayer")
	}
}

func TestFormatCountdown(t *testing.T) {
	if got := FormatCountdown(2*time.Hour + 3*time.Minute + 4*time.Second); got != "2h 3m 4s" {
		t.Fatalf("FormatCountdown = %q", got)
	}
	if got := FormatCountdown(-time.Second); got != "0h 0m 0s" {
		t.Fatalf("FormatCountdown(negative) = %q", got)
	}
}

func TestTo12Hour(t *testing.T) {
	cases := map[string]string{
		"14:30": "2:30 PM",
		"00:05": "12:05 AM",
		"12:00": "12:00 PM",
		"09:07": "9:07 AM",
		"bad":   "bad",
	}
	for in, want := range cases {
		if got := To12Hour(in); got != want {
			t.Fatalf("To12Hour(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestDayHelpers(t *testing.T) {
	now := wednesdayAt(23, 59, 0)
	if DayName(now) != "Wed" {
		t.Fatalf("DayName = %q", DayName(now))
	}
	if !SameDay(now, wednesdayAt(0, 0, 1)) || SameDay(now, now.Add(2*time.Minute)) {
		t.Fatalf("SameDay mismatch")
	}
	week := WeekDates(now)
	if len(week) != 8 || !week[0].Equal(wednesdayAt(0, 0, 0)) || week[7].Day() != 21 {
		t.Fatalf("WeekDates = %v", week)
	}
}

func TestRangeDatesAddsSelectedOutsideWeek(t *testing.T) {
	now := wednesdayAt(10, 0, 0)
	if got := len(RangeDates(now, now)); got != 8 {
		t.Fatalf("RangeDates within week = %d, want 8", got)
	}
	far := now.AddDate(0, 0, 30)
	dates := RangeDates(far, now)
	if len(dates) != 9 || !SameDay(dates[8], far) {
		t.Fatalf("RangeDates with far date = %v", dates)
	}
}

func TestScheduleOrder(t *testing.T) {
	entries := Schedule(sampleTimes, false)
	want := []string{model.Fajr, model.Sunrise, model.Dhuhr, model.Asr, model.Maghrib, model.Isha}
	if len(entries) != len(want) {
		t.Fatalf("Schedule = %v", entries)
	}
	for i, name := range want {
		if entries[i].Name != name {
			t.Fatalf("entry %d = %q, want %q", i, entries[i].Name, name)
		}
	}
}
