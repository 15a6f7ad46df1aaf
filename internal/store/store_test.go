package store_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"reelcat/internal/store"
)

func openTestDB(t *testing.T) *store.DB {
	t.Helper()
	db, err := store.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestExecAndStep(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	if err := db.Exec(ctx, `CREATE TABLE items (id INTEGER PRIMARY KEY, name TEXT NOT NULL, score REAL)`); err != nil {
		t.Fatalf("create table: %v", err)
	}

	stmt, err := db.Prepare(ctx, `INSERT INTO items (name, score) VALUES (?, ?)`)
	if err != nil {
		t.Fatalf("prepare insert: %v", err)
	}
	stmt.BindText(1, "first")
	stmt.BindDouble(2, 7.5)
	status, err := stmt.Step(ctx)
	if err != nil {
		t.Fatalf("step insert: %v", err)
	}
	if status != store.StatusDone {
		t.Fatalf("expected done, got %v", status)
	}
	if stmt.LastInsertID() != 1 {
		t.Fatalf("expected rowid 1, got %d", stmt.LastInsertID())
	}
	if err := stmt.Finalize(); err != nil {
		t.Fatalf("finalize insert: %v", err)
	}
}

func TestStepAndGetRowReturnsText(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	if err := db.Exec(ctx, `CREATE TABLE items (id INTEGER PRIMARY KEY, name TEXT, score REAL)`); err != nil {
		t.Fatalf("create table: %v", err)
	}
	if err := db.Exec(ctx, `INSERT INTO items (name, score) VALUES ('alpha', 1.25), (NULL, 2)`); err != nil {
		t.Fatalf("seed rows: %v", err)
	}

	stmt, err := db.Prepare(ctx, `SELECT id, name, score FROM items ORDER BY id`)
	if err != nil {
		t.Fatalf("prepare select: %v", err)
	}
	defer stmt.Finalize()

	status, row, err := stmt.StepAndGetRow(ctx)
	if err != nil {
		t.Fatalf("step row 1: %v", err)
	}
	if status != store.StatusRow {
		t.Fatalf("expected row, got %v", status)
	}
	if row[0] != "1" || row[1] != "alpha" {
		t.Fatalf("unexpected first row: %v", row)
	}

	status, row, err = stmt.StepAndGetRow(ctx)
	if err != nil {
		t.Fatalf("step row 2: %v", err)
	}
	if status != store.StatusRow || row[1] != "" {
		t.Fatalf("expected NULL rendered as empty string, got %v (%v)", row, status)
	}

	status, _, err = stmt.StepAndGetRow(ctx)
	if err != nil {
		t.Fatalf("step done: %v", err)
	}
	if status != store.StatusDone {
		t.Fatalf("expected done, got %v", status)
	}
}

func TestPrepareFailureLeavesNothingOutstanding(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	stmt, err := db.Prepare(ctx, `SELECT FROM nowhere`)
	if err == nil {
		stmt.Finalize()
		t.Fatal("expected prepare error")
	}
	if stmt != nil {
		t.Fatalf("expected nil statement on failed prepare, got %#v", stmt)
	}
	var storeErr *store.Error
	if !errors.As(err, &storeErr) {
		t.Fatalf("expected *store.Error, got %T", err)
	}
}

func TestFinalizeIsIdempotent(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	if err := db.Exec(ctx, `CREATE TABLE items (id INTEGER PRIMARY KEY)`); err != nil {
		t.Fatalf("create table: %v", err)
	}
	stmt, err := db.Prepare(ctx, `SELECT id FROM items`)
	if err != nil {
		t.Fatalf("prepare: %v", err)
	}
	if _, err := stmt.Step(ctx); err != nil {
		t.Fatalf("step: %v", err)
	}
	if err := stmt.Finalize(); err != nil {
		t.Fatalf("first finalize: %v", err)
	}
	if err := stmt.Finalize(); err != nil {
		t.Fatalf("second finalize should be a no-op: %v", err)
	}
	if _, err := stmt.Step(ctx); err == nil {
		t.Fatal("expected error stepping a finalized statement")
	}
}

func TestConstraintViolationCarriesCode(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	if err := db.Exec(ctx, `CREATE TABLE items (id INTEGER PRIMARY KEY, name TEXT UNIQUE)`); err != nil {
		t.Fatalf("create table: %v", err)
	}
	if err := db.Exec(ctx, `INSERT INTO items (name) VALUES ('dup')`); err != nil {
		t.Fatalf("seed: %v", err)
	}

	stmt, err := db.Prepare(ctx, `INSERT INTO items (name) VALUES (?)`)
	if err != nil {
		t.Fatalf("prepare: %v", err)
	}
	defer stmt.Finalize()
	stmt.BindText(1, "dup")
	if _, err := stmt.Step(ctx); err == nil {
		t.Fatal("expected unique constraint violation")
	} else {
		var storeErr *store.Error
		if !errors.As(err, &storeErr) {
			t.Fatalf("expected *store.Error, got %T", err)
		}
		if storeErr.Code < 0 {
			t.Fatalf("expected a numeric engine code, got %d", storeErr.Code)
		}
	}
}
