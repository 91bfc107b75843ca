// Package status records when a script last refreshed each of its tables,
// in a status table inside the local SQLite database.
package status

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// statusTable holds one row per data table, keyed by table name. Date
// columns are added on demand because callers choose their names.
const statusTable = "_scrapekit_status"

// ErrNoRecords is returned by MostRecent when the table has no rows or the
// column holds no values.
var ErrNoRecords = errors.New("scrapekit: no records")

var identPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// validIdent rejects names that cannot be safely interpolated as SQL
// identifiers. Identifiers cannot be bound as parameters, so everything
// else is refused outright.
func validIdent(name string) error {
	if !identPattern.MatchString(name) {
		return fmt.Errorf("scrapekit: invalid identifier %q", name)
	}
	return nil
}

// Store provides SQLite-backed persistence for status rows.
type Store struct {
	sqlDB *sql.DB
}

// Open opens (creating if needed) the status store at the provided path.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("database path is required")
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

	store := &Store{sqlDB: sqlDB}
	if err := store.ensureTable(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ensure status table: %w", err)
	}
	return store, nil
}

func (s *Store) ensureTable() error {
	_, err := s.sqlDB.Exec(fmt.Sprintf(
		`CREATE TABLE IF NOT EXISTS %s (table_name TEXT PRIMARY KEY)`, statusTable))
	return err
}

// columnExists reports whether table has a column named column. The table
// name must already be validated; it is interpolated, not bound.
func (s *Store) columnExists(ctx context.Context, table, column string) (bool, error) {
	var n int
	err := s.sqlDB.QueryRowContext(ctx, fmt.Sprintf(
		`SELECT COUNT(*) FROM pragma_table_info('%s') WHERE name = ?`, table),
		column).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("inspect table %s: %w", table, err)
	}
	return n > 0, nil
}

// ensureColumn adds the date column to the status table if it is missing.
func (s *Store) ensureColumn(ctx context.Context, column string) error {
	ok, err := s.columnExists(ctx, statusTable, column)
	if err != nil {
		return err
	}
	if ok {
		return nil
	}
	_, err = s.sqlDB.ExecContext(ctx, fmt.Sprintf(
		`ALTER TABLE %s ADD COLUMN %q TEXT`, statusTable, column))
	if err != nil {
		return fmt.Errorf("add status column: %w", err)
	}
	return nil
}

// Touch upserts the row for tableName, setting dateColumn to the current
// UTC time in RFC 3339 form. The row is created on first touch and updated
// in place afterwards.
func (s *Store) Touch(ctx context.Context, tableName, dateColumn string) error {
	if err := validIdent(tableName); err != nil {
		return err
	}
	if err := validIdent(dateColumn); err != nil {
		return err
	}
	if err := s.ensureColumn(ctx, dateColumn); err != nil {
		return err
	}

	now := time.Now().UTC().Format(time.RFC3339)
	query := fmt.Sprintf(`
INSERT INTO %[1]s (table_name, %[2]q) VALUES (?, ?)
ON CONFLICT(table_name) DO UPDATE SET %[2]q = excluded.%[2]q`, statusTable, dateColumn)
	if _, err := s.sqlDB.ExecContext(ctx, query, tableName, now); err != nil {
		return fmt.Errorf("touch status row: %w", err)
	}
	return nil
}

// MostRecent returns the largest value of column in tableName. RFC 3339
// timestamps sort lexicographically, so for date columns this is the most
// recent one. Returns ErrNoRecords when the table holds no values; asking
// for a column the table does not have is an error.
func (s *Store) MostRecent(ctx context.Context, tableName, column string) (string, error) {
	if err := validIdent(tableName); err != nil {
		return "", err
	}
	if err := validIdent(column); err != nil {
		return "", err
	}

	// SQLite reads an unknown double-quoted identifier as a string
	// literal, so the column must be known before it is interpolated.
	ok, err := s.columnExists(ctx, tableName, column)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", fmt.Errorf("scrapekit: no such column %s.%s", tableName, column)
	}

	var value sql.NullString
	query := fmt.Sprintf(`SELECT MAX(%q) FROM %q`, column, tableName)
	if err := s.sqlDB.QueryRowContext(ctx, query).Scan(&value); err != nil {
		return "", fmt.Errorf("query most recent %s.%s: %w", tableName, column, err)
	}
	if !value.Valid {
		return "", ErrNoRecords
	}
	return value.String, nil
}

// Close closes the underlying SQLite database.
func (s *Store) Close() error {
	return s.sqlDB.Close()
}
