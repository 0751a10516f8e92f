package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

// SQLiteStore implements the Store interface using a local SQLite database.
type SQLiteStore struct {
	db       *sqlx.DB
	maxBytes int64
}

// Option configures a SQLiteStore.
type Option func(*SQLiteStore)

// WithMaxBytes caps the total size of stored values. Writes that would
// exceed the cap fail with ErrCapacityExceeded. Zero means no cap.
func WithMaxBytes(n int64) Option {
	return func(s *SQLiteStore) { s.maxBytes = n }
}

// NewSQLiteStore opens (or creates) a SQLite database at dbPath,
// enables WAL mode, and runs any pending schema migrations.
func NewSQLiteStore(dbPath string, opts ...Option) (*SQLiteStore, error) {
	db, err := sqlx.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}

	// Enable WAL mode for better concurrent read performance.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling WAL mode: %w", err)
	}

	s := &SQLiteStore{db: db}
	for _, opt := range opts {
		opt(s)
	}

	if err := s.runMigrations(); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// runMigrations checks the current schema version and applies any
// outstanding migrations in order.
func (s *SQLiteStore) runMigrations() error {
	currentVersion := 0

	// Check if schema_version table exists.
	var tableCount int
	err := s.db.Get(
		&tableCount,
		"SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	)
	if err != nil {
		return fmt.Errorf("checking schema_version table: %w", err)
	}

	if tableCount > 0 {
		err = s.db.Get(&currentVersion, "SELECT COALESCE(MAX(version), 0) FROM schema_version")
		if err != nil {
			return fmt.Errorf("reading schema version: %w", err)
		}
	}

	for _, m := range migrations {
		if m.version <= currentVersion {
			continue
		}
		if _, err := s.db.Exec(m.sql); err != nil {
			return fmt.Errorf("applying migration v%d: %w", m.version, err)
		}
	}

	return nil
}

// Get unmarshals the value stored under key into out. The second return is
// false when the key is absent.
func (s *SQLiteStore) Get(ctx context.Context, key string, out any) (bool, error) {
	var raw string
	err := s.db.GetContext(ctx, &raw, "SELECT value FROM kv WHERE key = ?", key)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("reading key %q: %w", key, err)
	}

	if err := json.Unmarshal([]byte(raw), out); err != nil {
		return false, fmt.Errorf("unmarshaling key %q: %w", key, err)
	}
	return true, nil
}

// Set serializes v to JSON and stores it under key, replacing any previous
// value. When a byte quota is configured, the write is rejected with
// ErrCapacityExceeded before anything is modified.
func (s *SQLiteStore) Set(ctx context.Context, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshaling key %q: %w", key, err)
	}

	if s.maxBytes > 0 {
		var others int64
		err := s.db.GetContext(ctx, &others,
			"SELECT COALESCE(SUM(LENGTH(value)), 0) FROM kv WHERE key != ?", key,
		)
		if err != nil {
			return fmt.Errorf("checking store size: %w", err)
		}
		if others+int64(len(data)) > s.maxBytes {
			return fmt.Errorf("writing key %q (%d bytes): %w", key, len(data), ErrCapacityExceeded)
		}
	}

	_, err = s.db.ExecContext(ctx,
		"INSERT OR REPLACE INTO kv (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)",
		key, string(data),
	)
	if err != nil {
		if isFullError(err) {
			return fmt.Errorf("writing key %q: %w", key, ErrCapacityExceeded)
		}
		return fmt.Errorf("writing key %q: %w", key, err)
	}
	return nil
}

// Remove deletes the value under key. Absent keys are a no-op.
func (s *SQLiteStore) Remove(ctx context.Context, key string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM kv WHERE key = ?", key)
	if err != nil {
		return fmt.Errorf("removing key %q: %w", key, err)
	}
	return nil
}

// isFullError reports whether err is SQLite's disk-full condition
// (SQLITE_FULL), which the driver surfaces only by message.
func isFullError(err error) bool {
	return err != nil && strings.Contains(err.Error(), "database or disk is full")
}
