package catalog

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"

	"reelcat/internal/store"
)

//go:embed schema.sql
var schemaSQL string

// schemaVersion is the current schema version. Bump this when the schema
// changes; existing databases with another version are rejected.
const schemaVersion = 1

// ErrSchemaMismatch indicates the database schema version doesn't match
// the expected version.
var ErrSchemaMismatch = errors.New("schema version mismatch")

// Catalog wraps the store connection with typed repository operations.
type Catalog struct {
	db *store.DB
}

// Open connects to the catalog database at path and ensures the schema.
func Open(path string) (*Catalog, error) {
	db, err := store.Open(path)
	if err != nil {
		return nil, err
	}
	cat := &Catalog{db: db}
	if err := cat.ensureSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return cat, nil
}

// Path returns the backing database file location.
func (c *Catalog) Path() string {
	return c.db.Path()
}

// Close closes the underlying store connection.
func (c *Catalog) Close() error {
	if c == nil || c.db == nil {
		return nil
	}
	return c.db.Close()
}

// ensureSchema creates all tables and indexes inside one transaction on a
// fresh database, and verifies the recorded version on an existing one.
// A failure rolls the whole transaction back; the application cannot run
// without a usable schema.
func (c *Catalog) ensureSchema(ctx context.Context) error {
	var tableExists int
	err := c.db.QueryRow(ctx,
		"SELECT COUNT(1) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	).Scan(&tableExists)
	if err != nil {
		return fmt.Errorf("check schema_version table: %w", err)
	}

	if tableExists == 0 {
		return c.db.Transact(ctx, func(tx *sql.Tx) error {
			if _, err := tx.ExecContext(ctx, schemaSQL); err != nil {
				return fmt.Errorf("create schema: %w", err)
			}
			if _, err := tx.ExecContext(ctx, "INSERT INTO schema_version (version) VALUES (?)", schemaVersion); err != nil {
				return fmt.Errorf("record schema version: %w", err)
			}
			return nil
		})
	}

	var version int
	if err := c.db.QueryRow(ctx, "SELECT version FROM schema_version LIMIT 1").Scan(&version); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	if version != schemaVersion {
		return fmt.Errorf("%w: database has version %d, expected %d", ErrSchemaMismatch, version, schemaVersion)
	}
	return nil
}
