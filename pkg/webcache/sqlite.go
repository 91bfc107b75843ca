package webcache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteStore persists cached responses in a local SQLite file. It is the
// default backend: the cache survives script restarts without requiring any
// external service.
type SQLiteStore struct {
	sqlDB *sql.DB
}

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

// NewSQLiteStore opens (creating if needed) a cache store at the provided
// path.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("cache path is required")
	}

	cleanPath := filepath.Clean(path)
	dsn := cleanPath + "?_journal_mode=WAL&_busy_timeout=5000&_synchronous=NORMAL"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}

	store := &SQLiteStore{sqlDB: sqlDB}
	if err := store.ensureSchema(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	return store, nil
}

func (s *SQLiteStore) ensureSchema() error {
	const schema = `
CREATE TABLE IF NOT EXISTS responses (
	key TEXT PRIMARY KEY,
	data BLOB NOT NULL,
	expires_at_ms INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS responses_expires_at_idx ON responses (expires_at_ms);`
	_, err := s.sqlDB.Exec(schema)
	return err
}

// Get returns the entry stored under key. Expired rows are deleted on read.
func (s *SQLiteStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var data []byte
	var expiresAtMs int64
	err := s.sqlDB.QueryRowContext(ctx,
		`SELECT data, expires_at_ms FROM responses WHERE key = ?`, key,
	).Scan(&data, &expiresAtMs)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("query response: %w", err)
	}
	if toMillis(time.Now()) >= expiresAtMs {
		if err := s.Delete(ctx, key); err != nil {
			return nil, false, err
		}
		return nil, false, nil
	}
	return data, true, nil
}

// Set stores data under key for ttl, replacing any previous entry.
func (s *SQLiteStore) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	_, err := s.sqlDB.ExecContext(ctx, `
INSERT INTO responses (key, data, expires_at_ms)
VALUES (?, ?, ?)
ON CONFLICT(key) DO UPDATE SET
	data = excluded.data,
	expires_at_ms = excluded.expires_at_ms`,
		key, data, toMillis(time.Now().Add(ttl)))
	if err != nil {
		return fmt.Errorf("store response: %w", err)
	}
	return nil
}

// Delete removes the entry stored under key.
func (s *SQLiteStore) Delete(ctx context.Context, key string) error {
	if _, err := s.sqlDB.ExecContext(ctx, `DELETE FROM responses WHERE key = ?`, key); err != nil {
		return fmt.Errorf("delete response: %w", err)
	}
	return nil
}

// Close closes the underlying SQLite database.
func (s *SQLiteStore) Close() error {
	return s.sqlDB.Close()
}
