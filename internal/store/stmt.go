package store

import (
	"context"
	"database/sql"
	"errors"
	"strings"
)

// Status reports the outcome of stepping a statement.
type Status int

const (
	// StatusRow indicates a result row is available.
	StatusRow Status = iota
	// StatusDone indicates the statement has run to completion.
	StatusDone
)

// Stmt is a prepared statement with positional bind slots. Bind indexes are
// 1-based, matching the engine's convention. A Stmt must be finalized
// exactly once; Finalize releases the bound values and any open cursor on
// both success and error paths.
type Stmt struct {
	stmt      *sql.Stmt
	query     string
	args      []any
	rows      *sql.Rows
	columns   []string
	lastID    int64
	affected  int64
	finalized bool
}

// Prepare compiles a statement. On failure nothing is left outstanding.
func (d *DB) Prepare(ctx context.Context, query string) (*Stmt, error) {
	stmt, err := d.sql.PrepareContext(ctx, query)
	if err != nil {
		return nil, wrapErr("prepare", err)
	}
	return &Stmt{stmt: stmt, query: query}, nil
}

// BindText binds a string value at the 1-based index.
func (s *Stmt) BindText(index int, value string) {
	s.bind(index, value)
}

// BindInt binds an int value at the 1-based index.
func (s *Stmt) BindInt(index int, value int) {
	s.bind(index, value)
}

// BindInt64 binds an int64 value at the 1-based index.
func (s *Stmt) BindInt64(index int, value int64) {
	s.bind(index, value)
}

// BindDouble binds a float64 value at the 1-based index.
func (s *Stmt) BindDouble(index int, value float64) {
	s.bind(index, value)
}

// BindBool binds a boolean as the integer 0 or 1 at the 1-based index.
func (s *Stmt) BindBool(index int, value bool) {
	v := 0
	if value {
		v = 1
	}
	s.bind(index, v)
}

func (s *Stmt) bind(index int, value any) {
	if index < 1 {
		return
	}
	for len(s.args) < index {
		s.args = append(s.args, nil)
	}
	s.args[index-1] = value
}

// Step advances the statement. Write statements execute fully and report
// StatusDone; queries return StatusRow while rows remain.
func (s *Stmt) Step(ctx context.Context) (Status, error) {
	if s.finalized {
		return StatusDone, errors.New("store: step on finalized statement")
	}
	if s.rows == nil {
		if !s.returnsRows() {
			res, err := s.stmt.ExecContext(ctx, s.args...)
			if err != nil {
				return StatusDone, wrapErr("step", err)
			}
			if id, idErr := res.LastInsertId(); idErr == nil {
				s.lastID = id
			}
			if n, cntErr := res.RowsAffected(); cntErr == nil {
				s.affected = n
			}
			return StatusDone, nil
		}
		rows, err := s.stmt.QueryContext(ctx, s.args...)
		if err != nil {
			return StatusDone, wrapErr("step", err)
		}
		s.rows = rows
		if s.columns, err = rows.Columns(); err != nil {
			return StatusDone, wrapErr("step columns", err)
		}
	}
	if s.rows.Next() {
		return StatusRow, nil
	}
	if err := s.rows.Err(); err != nil {
		return StatusDone, wrapErr("step", err)
	}
	return StatusDone, nil
}

// StepAndGetRow advances the statement and, when a row is available,
// returns every column rendered as text. NULL columns come back as empty
// strings; callers parse values to their semantic types.
func (s *Stmt) StepAndGetRow(ctx context.Context) (Status, []string, error) {
	status, err := s.Step(ctx)
	if err != nil || status != StatusRow {
		return status, nil, err
	}
	raw := make([]sql.NullString, len(s.columns))
	dest := make([]any, len(s.columns))
	for i := range raw {
		dest[i] = &raw[i]
	}
	if err := s.rows.Scan(dest...); err != nil {
		return StatusDone, nil, wrapErr("scan row", err)
	}
	values := make([]string, len(raw))
	for i, v := range raw {
		values[i] = v.String
	}
	return StatusRow, values, nil
}

// LastInsertID returns the rowid assigned by the most recent insert step.
// It is reliable only after an insert path; update paths may leave a stale
// value, so callers needing the id after an upsert re-query by unique key.
func (s *Stmt) LastInsertID() int64 {
	return s.lastID
}

// RowsAffected returns the row count reported by the most recent write step.
func (s *Stmt) RowsAffected() int64 {
	return s.affected
}

// Finalize releases the statement and its bound values. Safe to call once
// per statement on any path; later calls are no-ops.
func (s *Stmt) Finalize() error {
	if s == nil || s.finalized {
		return nil
	}
	s.finalized = true
	s.args = nil
	var rowsErr error
	if s.rows != nil {
		rowsErr = s.rows.Close()
		s.rows = nil
	}
	stmtErr := s.stmt.Close()
	if rowsErr != nil {
		return wrapErr("finalize", rowsErr)
	}
	if stmtErr != nil {
		return wrapErr("finalize", stmtErr)
	}
	return nil
}

func (s *Stmt) returnsRows() bool {
	query := strings.TrimSpace(s.query)
	for strings.HasPrefix(query, "--") {
		if idx := strings.IndexByte(query, '\n'); idx >= 0 {
			query = strings.TrimSpace(query[idx+1:])
		} else {
			return false
		}
	}
	switch {
	case len(query) >= 6 && strings.EqualFold(query[:6], "SELECT"):
		return true
	case len(query) >= 4 && strings.EqualFold(query[:4], "WITH"):
		return true
	default:
		return false
	}
}
