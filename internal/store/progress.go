package store

import (
	"context"
	"time"
)

// ZikrCounts returns every stored zikr count keyed by zikr id.
func (s *Store) ZikrCounts(ctx context.Context) (map[string]int, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, count FROM zikr_counts`)
	if err != nil {
		return nil, err
	}
	defer closeRows(rows)
	counts := map[string]int{}
	for rows.Next() {
		var id string
		var count int
		if err := rows.Scan(&id, &count); err != nil {
			return nil, err
		}
		counts[id] = count
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return counts, nil
}

// SetZikrCount stores the count for a zikr.
func (s *Store) SetZikrCount(ctx context.Context, id string, count int) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO zikr_counts (id, count) VALUES (?, ?)
		 ON CONFLICT(id) DO UPDATE SET count = excluded.count`, id, count)
	return wrapf(err, "failed to save count for %s", id)
}

// DeleteZikrCounts removes stored counts for the given ids.
func (s *Store) DeleteZikrCounts(ctx context.Context, ids []string) (err error) {
	if len(ids) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			rollback(tx)
		}
	}()
	for _, id := range ids {
		if _, err = tx.ExecContext(ctx, `DELETE FROM zikr_counts WHERE id = ?`, id); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// ReadHadith returns the ids of hadith marked as read.
func (s *Store) ReadHadith(ctx context.Context) (map[string]struct{}, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id FROM read_hadith`)
	if err != nil {
		return nil, err
	}
	defer closeRows(rows)
	read := map[string]struct{}{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		read[id] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return read, nil
}

// MarkHadithRead records a hadith as read.
func (s *Store) MarkHadithRead(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO read_hadith (id, read_at) VALUES (?, ?) ON CONFLICT(id) DO NOTHING`,
		id, time.Now().Format(time.RFC3339Nano))
	return wrapf(err, "failed to mark hadith %s read", id)
}

// UnmarkHadithRead clears the read mark for a hadith.
func (s *Store) UnmarkHadithRead(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM read_hadith WHERE id = ?`, id)
	return wrapf(err, "failed to unmark hadith %s", id)
}
