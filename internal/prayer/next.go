package prayer

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/verte-zerg/mariam/internal/model"
)

const day = 24 * time.Hour

// Entry is a named prayer time.
type Entry struct {
	Name string
	Time string
}

// Prayers lists the five daily prayers in order. On Fridays Jumuah takes
// Dhuhr's place.
func Prayers(times model.PrayerTimes, friday bool) []Entry {
	noon := Entry{Name: model.Dhuhr, Time: times.Dhuhr}
	if friday && times.Jumuah != "" {
		noon = Entry{Name: model.Jumuah, Time: times.Jumuah}
	}
	return []Entry{
		{Name: model.Fajr, Time: times.Fajr},
		noon,
		{Name: model.Asr, Time: times.Asr},
		{Name: model.Maghrib, Time: times.Maghrib},
		{Name: model.Isha, Time: times.Isha},
	}
}

// Schedule is the full day for display: the five prayers with Sunrise after Fajr.
func Schedule(times model.PrayerTimes, friday bool) []Entry {
	prayers := Prayers(times, friday)
	out := make([]Entry, 0, len(prayers)+1)
	out = append(out, prayers[0], Entry{Name: model.Sunrise, Time: times.Sunrise})
	return append(out, prayers[1:]...)
}

// FridayReminder prompts the Friday reading of Surah Al-Kahf.
const FridayReminder = "It's Friday: read Al-Kahf (mariam quran read 18)"

// IsFriday reports whether t falls on a Friday.
func IsFriday(t time.Time) bool {
	return t.Weekday() == time.Friday
}

// Next returns the upcoming prayer for the selected date as seen at now.
//
// For today it is the first prayer later than now, wrapping to tomorrow's
// Fajr (tomorrow's times when known, else today's). For a future date it is
// that day's Fajr. Past dates have no next prayer.
func Next(now, selected time.Time, times model.PrayerTimes, tomorrow *model.PrayerTimes) (model.NextPrayer, bool) {
	switch {
	case SameDay(selected, now):
		nowSeconds := secondsOfDay(now)
		for _, p := range Prayers(times, IsFriday(selected)) {
			secs, ok := clockSeconds(p.Time)
			if !ok {
				continue
			}
			if secs > nowSeconds {
				return model.NextPrayer{
					Name:      p.Name,
					Time:      p.Time,
					Countdown: time.Duration(secs-nowSeconds) * time.Second,
				}, true
			}
		}
		fajr := times.Fajr
		if tomorrow != nil && tomorrow.Fajr != "" {
			fajr = tomorrow.Fajr
		}
		secs, ok := clockSeconds(fajr)
		if !ok {
			return model.NextPrayer{}, false
		}
		return model.NextPrayer{
			Name:      model.Fajr,
			Time:      fajr,
			Countdown: time.Duration(secs+int(day/time.Second)-nowSeconds) * time.Second,
		}, true
	case StartOfDay(selected).After(StartOfDay(now)):
		h, m, ok := clock(times.Fajr)
		if !ok {
			return model.NextPrayer{}, false
		}
		y, mo, d := selected.Date()
		at := time.Date(y, mo, d, h, m, 0, 0, selected.Location())
		return model.NextPrayer{
			Name:      model.Fajr,
			Time:      times.Fajr,
			Countdown: at.Sub(now).Truncate(time.Second),
		}, true
	default:
		return model.NextPrayer{}, false
	}
}

// FormatCountdown renders d as "Xh Ym Zs".
func FormatCountdown(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int(d / time.Second)
	return fmt.Sprintf("%dh %dm %ds", total/3600, total%3600/60, total%60)
}

// To12Hour converts "14:30" to "2:30 PM". Unparseable input is returned as is.
func To12Hour(hhmm string) string {
	h, m, ok := clock(hhmm)
	if !ok {
		return hhmm
	}
	period := "AM"
	if h >= 12 {
		period = "PM"
	}
	h12 := h % 12
	if h12 == 0 {
		h12 = 12
	}
	return fmt.Sprintf("%d:%02d %s", h12, m, period)
}

// DayName returns the short weekday name, e.g. "Mon".
func DayName(t time.Time) string {
	return t.Weekday().String()[:3]
}

// SameDay reports whether a and b fall on the same calendar day.
func SameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

func secondsOfDay(t time.Time) int {
	return t.Hour()*3600 + t.Minute()*60 + t.Second()
}

func clockSeconds(hhmm string) (int, bool) {
	h, m, ok := clock(hhmm)
	if !ok {
		return 0, false
	}
	return h*3600 + m*60, true
}

func clock(hhmm string) (int, int, bool) {
	hs, ms, found := strings.Cut(strings.TrimSpace(hhmm), ":")
	if !found {
		return 0, 0, false
	}
	if len(ms) > 2 {
		ms = ms[:2]
	}
	h, err := strconv.Atoi(hs)
	if err != nil || h < 0 || h > 23 {
		return 0, 0, false
	}
	m, err := strconv.Atoi(ms)
	if err != nil || m < 0 || m > 59 {
		return 0, 0, false
	}
	return h, m, true
}
