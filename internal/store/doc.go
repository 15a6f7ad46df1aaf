// Package store wraps the embedded SQLite engine behind a small
// prepare/bind/step/finalize surface used by the catalog repository.
//
// The wrapper keeps one connection, applies the standard pragmas on open,
// and converts driver failures into typed Errors carrying the engine's
// numeric result code. Statements are not shared between logical
// operations: each caller prepares, binds, steps, and finalizes its own
// statement.
package store
