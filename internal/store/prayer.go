package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/verte-zerg/mariam/internal/model"
)

// GetPrayerTimes returns cached times for a date key and place, or ErrNotFound.
func (s *Store) GetPrayerTimes(ctx context.Context, dateKey, place string) (model.PrayerTimes, error) {
	var pt model.PrayerTimes
	err := s.db.QueryRowContext(ctx,
		`SELECT fajr, sunrise, dhuhr, asr, maghrib, isha, jumuah
		 FROM prayer_times WHERE date_key = ? AND place = ?`, dateKey, place).
		Scan(&pt.Fajr, &pt.Sunrise, &pt.Dhuhr, &pt.Asr, &pt.Maghrib, &pt.Isha, &pt.Jumuah)
	if errors.Is(err, sql.ErrNoRows) {
		return model.PrayerTimes{}, ErrNotFound
	}
	if err != nil {
		return model.PrayerTimes{}, wrapf(err, "failed to load prayer times for %s", dateKey)
	}
	return pt, nil
}

// PutPrayerTimes stores times for a date key and place.
func (s *Store) PutPrayerTimes(ctx context.Context, dateKey, place string, pt model.PrayerTimes) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO prayer_times (date_key, place, fajr, sunrise, dhuhr, asr, maghrib, isha, jumuah, fetched_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(date_key, place) DO UPDATE SET
			fajr = excluded.fajr, sunrise = excluded.sunrise, dhuhr = excluded.dhuhr,
			asr = excluded.asr, maghrib = excluded.maghrib, isha = excluded.isha,
			jumuah = excluded.jumuah, fetched_at = excluded.fetched_at`,
		dateKey, place, pt.Fajr, pt.Sunrise, pt.Dhuhr, pt.Asr, pt.Maghrib, pt.Isha, pt.Jumuah,
		time.Now().Format(time.RFC3339Nano),
	)
	return wrapf(err, "failed to save prayer times for %s", dateKey)
}

// PrunePrayerTimes removes cached days strictly before dateKey.
func (s *Store) PrunePrayerTimes(ctx context.Context, beforeDateKey string) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM prayer_times WHERE date_key < ?`, beforeDateKey)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
