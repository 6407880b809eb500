package store

import (
	"context"
	"time"

	"github.com/verte-zerg/mariam/internal/model"
)

// SaveQuran replaces the cached Quran with surahs in a single transaction.
func (s *Store) SaveQuran(ctx context.Context, surahs []model.Surah) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			rollback(tx)
		}
	}()

	if _, err = tx.ExecContext(ctx, `DELETE FROM quran_verses`); err != nil {
		return err
	}
	if _, err = tx.ExecContext(ctx, `DELETE FROM quran_surahs`); err != nil {
		return err
	}

	surahStmt, err := tx.PrepareContext(ctx,
		`INSERT INTO quran_surahs (number, name, english_name, has_special_reminder) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := surahStmt.Close(); cerr != nil {
			// Best-effort statement close.
			_ = cerr
		}
	}()
	verseStmt, err := tx.PrepareContext(ctx,
		`INSERT INTO quran_verses (surah, number, arabic, english, is_special, special_name) VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := verseStmt.Close(); cerr != nil {
			// Best-effort statement close.
			_ = cerr
		}
	}()

	for _, surah := range surahs {
		if _, err = surahStmt.ExecContext(ctx, surah.Number, surah.Name, surah.EnglishName, boolToInt(surah.HasSpecialReminder)); err != nil {
			return wrapf(err, "failed to save surah %d", surah.Number)
		}
		for _, v := range surah.Verses {
			if _, err = verseStmt.ExecContext(ctx, surah.Number, v.Number, v.Arabic, v.English, boolToInt(v.IsSpecial), v.SpecialName); err != nil {
				return wrapf(err, "failed to save verse %d:%d", surah.Number, v.Number)
			}
		}
	}
	if _, err = tx.ExecContext(ctx,
		`INSERT INTO kv (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		KeyQuranSavedAt, time.Now().Format(time.RFC3339Nano)); err != nil {
		return err
	}
	return tx.Commit()
}

// LoadQuran returns all cached surahs ordered by number with their verses.
func (s *Store) LoadQuran(ctx context.Context) ([]model.Surah, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT number, name, english_name, has_special_reminder FROM quran_surahs ORDER BY number ASC`)
	if err != nil {
		return nil, err
	}
	var surahs []model.Surah
	index := map[int]int{}
	for rows.Next() {
		var surah model.Surah
		var special int
		if err := rows.Scan(&surah.Number, &surah.Name, &surah.EnglishName, &special); err != nil {
			closeRows(rows)
			return nil, err
		}
		surah.HasSpecialReminder = special != 0
		index[surah.Number] = len(surahs)
		surahs = append(surahs, surah)
	}
	if err := rows.Err(); err != nil {
		closeRows(rows)
		return nil, err
	}
	closeRows(rows)

	verseRows, err := s.db.QueryContext(ctx,
		`SELECT surah, number, arabic, english, is_special, special_name FROM quran_verses ORDER BY surah ASC, number ASC`)
	if err != nil {
		return nil, err
	}
	defer closeRows(verseRows)
	for verseRows.Next() {
		var surahNumber, special int
		var v model.Verse
		if err := verseRows.Scan(&surahNumber, &v.Number, &v.Arabic, &v.English, &special, &v.SpecialName); err != nil {
			return nil, err
		}
		v.IsSpecial = special != 0
		idx, ok := index[surahNumber]
		if !ok {
			continue
		}
		surahs[idx].Verses = append(surahs[idx].Verses, v)
	}
	if err := verseRows.Err(); err != nil {
		return nil, err
	}
	return surahs, nil
}

// ClearQuran drops the cached Quran text.
func (s *Store) ClearQuran(ctx context.Context) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			rollback(tx)
		}
	}()
	for _, stmt := range []string{
		`DELETE FROM quran_verses`,
		`DELETE FROM quran_surahs`,
		`DELETE FROM kv WHERE key IN ('` + KeyQuranVersion + `', '` + KeyQuranSavedAt + `')`,
	} {
		if _, err = tx.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// QuranStats summarizes the cached Quran.
type QuranStats struct {
	Surahs  int
	Verses  int
	Bytes   int64
	SavedAt time.Time
}

// QuranStats reports how much of the Quran is cached.
func (s *Store) QuranStats(ctx context.Context) (QuranStats, error) {
	var st QuranStats
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM quran_surahs`).Scan(&st.Surahs); err != nil {
		return QuranStats{}, err
	}
	if err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*), COALESCE(SUM(LENGTH(CAST(arabic AS BLOB)) + LENGTH(CAST(english AS BLOB))), 0) FROM quran_verses`).
		Scan(&st.Verses, &st.Bytes); err != nil {
		return QuranStats{}, err
	}
	savedAt, err := s.GetValue(ctx, KeyQuranSavedAt)
	if err == nil {
		if parsed, perr := time.Parse(time.RFC3339Nano, savedAt); perr == nil {
			st.SavedAt = parsed
		}
	} else if err != ErrNotFound {
		return QuranStats{}, err
	}
	return st, nil
}
