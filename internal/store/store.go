package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// DB owns the single SQLite connection backing the catalog.
type DB struct {
	sql  *sql.DB
	path string
}

// Open initializes or connects to the database file at path.
func Open(path string) (*DB, error) {
	if path == "" {
		return nil, errors.New("store: empty database path")
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("ensure database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, wrapErr("open database", err)
	}
	// One connection, one logical caller at a time.
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, wrapErr(fmt.Sprintf("apply pragma %q", pragma), execErr)
		}
	}

	return &DB{sql: db, path: path}, nil
}

// Path returns the database file location.
func (d *DB) Path() string {
	return d.path
}

// Exec runs a statement that produces no result rows (DDL, pragmas).
func (d *DB) Exec(ctx context.Context, query string) error {
	if _, err := d.sql.ExecContext(ctx, query); err != nil {
		return wrapErr("exec", err)
	}
	return nil
}

// Transact runs fn inside a transaction, rolling back on error.
func (d *DB) Transact(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := d.sql.BeginTx(ctx, nil)
	if err != nil {
		return wrapErr("begin tx", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return wrapErr("commit tx", err)
	}
	return nil
}

// QueryRow exposes the underlying connection for one-row lookups made by
// schema introspection helpers.
func (d *DB) QueryRow(ctx context.Context, query string, args ...any) *sql.Row {
	return d.sql.QueryRowContext(ctx, query, args...)
}

// Close closes the underlying connection.
func (d *DB) Close() error {
	if d == nil || d.sql == nil {
		return nil
	}
	return d.sql.Close()
}
