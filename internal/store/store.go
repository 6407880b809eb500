// Package store handles SQLite persistence.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite" // SQLite driver.
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("not found")

// Store wraps SQLite access for cached API data and personal progress.
type Store struct {
	db *sql.DB
}

// Open opens or creates the SQLite database and applies migrations.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// The prayer cache fans out fetches; a single connection keeps SQLite writes serialized.
	db.SetMaxOpenConns(1)
	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		if cerr := db.Close(); cerr != nil {
			// Best-effort close on migration failure.
			_ = cerr
		}
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS kv (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS prayer_times (
			date_key TEXT NOT NULL,
			place TEXT NOT NULL,
			fajr TEXT NOT NULL,
			sunrise TEXT NOT NULL,
			dhuhr TEXT NOT NULL,
			asr TEXT NOT NULL,
			maghrib TEXT NOT NULL,
			isha TEXT NOT NULL,
			jumuah TEXT NOT NULL,
			fetched_at TEXT NOT NULL,
			PRIMARY KEY (date_key, place)
		);`,
		`CREATE TABLE IF NOT EXISTS quran_surahs (
			number INTEGER PRIMARY KEY,
			name TEXT NOT NULL,
			english_name TEXT NOT NULL,
			has_special_reminder INTEGER NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS quran_verses (
			surah INTEGER NOT NULL,
			number INTEGER NOT NULL,
			arabic TEXT NOT NULL,
			english TEXT NOT NULL,
			is_special INTEGER NOT NULL,
			special_name TEXT NOT NULL,
			PRIMARY KEY (surah, number)
		);`,
		`CREATE TABLE IF NOT EXISTS zikr_counts (
			id TEXT PRIMARY KEY,
			count INTEGER NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS read_hadith (
			id TEXT PRIMARY KEY,
			read_at TEXT NOT NULL
		);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// GetValue returns the value stored under key or ErrNotFound.
func (s *Store) GetValue(ctx context.Context, key string) (string, error) {
	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM kv WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", err
	}
	return value, nil
}

// SetValue stores value under key, replacing any previous value.
func (s *Store) SetValue(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO kv (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`, key, value)
	return err
}

// DeleteValue removes key. Missing keys are not an error.
func (s *Store) DeleteValue(ctx context.Context, key string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM kv WHERE key = ?`, key)
	return err
}

func closeRows(rows *sql.Rows) {
	if cerr := rows.Close(); cerr != nil {
		// Best-effort rows close.
		_ = cerr
	}
}

func rollback(tx *sql.Tx) {
	if rerr := tx.Rollback(); rerr != nil && !errors.Is(rerr, sql.ErrTxDone) {
		// Best-effort rollback.
		_ = rerr
	}
}

func boolToInt(v bool) int {
	if v {
		return 1
	}
	return 0
}

func wrapf(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}
