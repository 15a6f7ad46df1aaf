package catalog

import (
	"context"
	"fmt"

	"reelcat/internal/store"
)

// UpsertMetadata inserts or fully replaces the remote description keyed by
// (TMDBID, MediaType).
func (c *Catalog) UpsertMetadata(ctx context.Context, md Metadata) error {
	stmt, err := c.db.Prepare(ctx, `INSERT INTO metadata (tmdb_id, media_type, title, overview, release_date)
VALUES (?, ?, ?, ?, ?)
ON CONFLICT (tmdb_id, media_type) DO UPDATE SET
    title = excluded.title,
    overview = excluded.overview,
    release_date = excluded.release_date`)
	if err != nil {
		return err
	}
	defer stmt.Finalize()

	stmt.BindInt64(1, md.TMDBID)
	stmt.BindText(2, string(md.MediaType))
	stmt.BindText(3, md.Title)
	stmt.BindText(4, md.Overview)
	stmt.BindText(5, md.ReleaseDate)
	if _, err := stmt.Step(ctx); err != nil {
		return fmt.Errorf("upsert metadata: %w", err)
	}
	return nil
}

// MetadataByKey fetches the metadata record for (tmdbID, mediaType), or nil.
func (c *Catalog) MetadataByKey(ctx context.Context, tmdbID int64, mediaType MediaType) (*Metadata, error) {
	stmt, err := c.db.Prepare(ctx, `SELECT tmdb_id, media_type, title, overview, release_date FROM metadata WHERE tmdb_id = ? AND media_type = ?`)
	if err != nil {
		return nil, err
	}
	defer stmt.Finalize()
	stmt.BindInt64(1, tmdbID)
	stmt.BindText(2, string(mediaType))

	status, row, err := stmt.StepAndGetRow(ctx)
	if err != nil {
		return nil, fmt.Errorf("query metadata: %w", err)
	}
	if status != store.StatusRow {
		return nil, nil
	}
	mt, _ := ParseMediaType(row[1])
	return &Metadata{
		TMDBID:      parseInt64(row[0]),
		MediaType:   mt,
		Title:       row[2],
		Overview:    row[3],
		ReleaseDate: row[4],
	}, nil
}

// DeleteMetadata removes the metadata record keyed by (tmdbID, mediaType).
func (c *Catalog) DeleteMetadata(ctx context.Context, tmdbID int64, mediaType MediaType) error {
	stmt, err := c.db.Prepare(ctx, `DELETE FROM metadata WHERE tmdb_id = ? AND media_type = ?`)
	if err != nil {
		return err
	}
	defer stmt.Finalize()
	stmt.BindInt64(1, tmdbID)
	stmt.BindText(2, string(mediaType))
	if _, err := stmt.Step(ctx); err != nil {
		return fmt.Errorf("delete metadata: %w", err)
	}
	return nil
}

// UpsertGenres adds each genre to the shared dictionary if absent and links
// it to the entry if not already linked. Idempotent under repetition.
func (c *Catalog) UpsertGenres(ctx context.Context, entryID int64, genres []Ref) error {
	return c.upsertRefs(ctx, entryID, genres, "genres", "entry_genres", "genre_id")
}

// UpsertActors behaves like UpsertGenres for the cast dictionary.
func (c *Catalog) UpsertActors(ctx context.Context, entryID int64, actors []Ref) error {
	return c.upsertRefs(ctx, entryID, actors, "actors", "entry_actors", "actor_id")
}

func (c *Catalog) upsertRefs(ctx context.Context, entryID int64, refs []Ref, dictTable, junctionTable, refColumn string) error {
	for _, ref := range refs {
		if err := c.execTwo(ctx,
			"INSERT OR IGNORE INTO "+dictTable+" (tmdb_id, name) VALUES (?, ?)",
			func(stmt *store.Stmt) {
				stmt.BindInt64(1, ref.TMDBID)
				stmt.BindText(2, ref.Name)
			},
			"INSERT OR IGNORE INTO "+junctionTable+" (entry_id, "+refColumn+") VALUES (?, ?)",
			func(stmt *store.Stmt) {
				stmt.BindInt64(1, entryID)
				stmt.BindInt64(2, ref.TMDBID)
			},
		); err != nil {
			return fmt.Errorf("upsert %s: %w", dictTable, err)
		}
	}
	return nil
}

// DeleteGenres removes the entry's genre links and garbage-collects any
// genre the entry was the sole referencer of. A genre still referenced by
// a different entry survives.
func (c *Catalog) DeleteGenres(ctx context.Context, entryID int64) error {
	return c.deleteRefs(ctx, entryID, "genres", "entry_genres", "genre_id")
}

// DeleteActors behaves like DeleteGenres for the cast dictionary.
func (c *Catalog) DeleteActors(ctx context.Context, entryID int64) error {
	return c.deleteRefs(ctx, entryID, "actors", "entry_actors", "actor_id")
}

func (c *Catalog) deleteRefs(ctx context.Context, entryID int64, dictTable, junctionTable, refColumn string) error {
	// Collect this entry's dictionary keys before dropping the junction
	// rows; a key with zero references left afterwards had this entry as
	// its last referencer.
	referenced, err := c.collectInt64s(ctx,
		"SELECT "+refColumn+" FROM "+junctionTable+" WHERE entry_id = ?", entryID)
	if err != nil {
		return fmt.Errorf("collect %s refs: %w", dictTable, err)
	}

	stmt, err := c.db.Prepare(ctx, "DELETE FROM "+junctionTable+" WHERE entry_id = ?")
	if err != nil {
		return err
	}
	stmt.BindInt64(1, entryID)
	if _, err := stmt.Step(ctx); err != nil {
		_ = stmt.Finalize()
		return fmt.Errorf("delete %s junctions: %w", junctionTable, err)
	}
	if err := stmt.Finalize(); err != nil {
		return err
	}

	if len(referenced) == 0 {
		return nil
	}
	query := "DELETE FROM " + dictTable + " WHERE tmdb_id IN (" + makePlaceholders(len(referenced)) + ")" +
		" AND NOT EXISTS (SELECT 1 FROM " + junctionTable + " WHERE " + refColumn + " = " + dictTable + ".tmdb_id)"
	stmt, err = c.db.Prepare(ctx, query)
	if err != nil {
		return err
	}
	defer stmt.Finalize()
	for i, id := range referenced {
		stmt.BindInt64(i+1, id)
	}
	if _, err := stmt.Step(ctx); err != nil {
		return fmt.Errorf("delete %s orphans: %w", dictTable, err)
	}
	return nil
}

// UpsertGrouping resolves the grouping for (tmdbID, mediaType) with the
// read-then-write contract: look it up, insert when absent, then link the
// entry if not already a member. Returns the grouping id and whether the
// grouping row was created by this call.
func (c *Catalog) UpsertGrouping(ctx context.Context, entryID int64, mediaType MediaType, tmdbID int64, name, overview string) (int64, bool, error) {
	grouping, err := c.GroupingByKey(ctx, tmdbID, mediaType)
	if err != nil {
		return 0, false, err
	}

	created := false
	var groupingID int64
	if grouping != nil {
		groupingID = grouping.ID
	} else {
		stmt, err := c.db.Prepare(ctx, `INSERT INTO groupings (tmdb_id, media_type, name, overview) VALUES (?, ?, ?, ?)`)
		if err != nil {
			return 0, false, err
		}
		stmt.BindInt64(1, tmdbID)
		stmt.BindText(2, string(mediaType))
		stmt.BindText(3, name)
		stmt.BindText(4, overview)
		if _, err := stmt.Step(ctx); err != nil {
			_ = stmt.Finalize()
			return 0, false, fmt.Errorf("insert grouping: %w", err)
		}
		groupingID = stmt.LastInsertID()
		if err := stmt.Finalize(); err != nil {
			return 0, false, err
		}
		created = true
	}

	stmt, err := c.db.Prepare(ctx, `INSERT OR IGNORE INTO grouping_members (entry_id, grouping_id) VALUES (?, ?)`)
	if err != nil {
		return 0, false, err
	}
	defer stmt.Finalize()
	stmt.BindInt64(1, entryID)
	stmt.BindInt64(2, groupingID)
	if _, err := stmt.Step(ctx); err != nil {
		return 0, false, fmt.Errorf("insert grouping membership: %w", err)
	}
	return groupingID, created, nil
}

// DeleteGrouping removes the entry's grouping membership and garbage-
// collects any grouping the entry was the sole member of.
func (c *Catalog) DeleteGrouping(ctx context.Context, entryID int64) error {
	referenced, err := c.collectInt64s(ctx,
		"SELECT grouping_id FROM grouping_members WHERE entry_id = ?", entryID)
	if err != nil {
		return fmt.Errorf("collect grouping refs: %w", err)
	}

	stmt, err := c.db.Prepare(ctx, "DELETE FROM grouping_members WHERE entry_id = ?")
	if err != nil {
		return err
	}
	stmt.BindInt64(1, entryID)
	if _, err := stmt.Step(ctx); err != nil {
		_ = stmt.Finalize()
		return fmt.Errorf("delete grouping membership: %w", err)
	}
	if err := stmt.Finalize(); err != nil {
		return err
	}

	if len(referenced) == 0 {
		return nil
	}
	query := "DELETE FROM groupings WHERE id IN (" + makePlaceholders(len(referenced)) + ")" +
		" AND NOT EXISTS (SELECT 1 FROM grouping_members WHERE grouping_id = groupings.id)"
	stmt, err = c.db.Prepare(ctx, query)
	if err != nil {
		return err
	}
	defer stmt.Finalize()
	for i, id := range referenced {
		stmt.BindInt64(i+1, id)
	}
	if _, err := stmt.Step(ctx); err != nil {
		return fmt.Errorf("delete orphan groupings: %w", err)
	}
	return nil
}

// GroupingByKey fetches a grouping by (tmdbID, mediaType), or nil.
func (c *Catalog) GroupingByKey(ctx context.Context, tmdbID int64, mediaType MediaType) (*Grouping, error) {
	return c.queryOneGrouping(ctx,
		`SELECT id, tmdb_id, media_type, name, overview FROM groupings WHERE tmdb_id = ? AND media_type = ?`,
		func(stmt *store.Stmt) {
			stmt.BindInt64(1, tmdbID)
			stmt.BindText(2, string(mediaType))
		})
}

// GroupingByID fetches a grouping by row id, or nil.
func (c *Catalog) GroupingByID(ctx context.Context, id int64) (*Grouping, error) {
	return c.queryOneGrouping(ctx,
		`SELECT id, tmdb_id, media_type, name, overview FROM groupings WHERE id = ?`,
		func(stmt *store.Stmt) {
			stmt.BindInt64(1, id)
		})
}

// EntriesByGrouping returns the entries linked to a grouping, ordered by
// (relative path, file name).
func (c *Catalog) EntriesByGrouping(ctx context.Context, groupingID int64) ([]Entry, error) {
	query := "SELECT " + entryColumns + " FROM entries" +
		" WHERE id IN (SELECT entry_id FROM grouping_members WHERE grouping_id = ?)" +
		" ORDER BY relative_path, file_name"
	stmt, err := c.db.Prepare(ctx, query)
	if err != nil {
		return nil, err
	}
	defer stmt.Finalize()
	stmt.BindInt64(1, groupingID)

	var entries []Entry
	for {
		status, row, err := stmt.StepAndGetRow(ctx)
		if err != nil {
			return nil, fmt.Errorf("entries by grouping: %w", err)
		}
		if status != store.StatusRow {
			break
		}
		entry, err := parseEntryRow(row)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// GenresForEntry returns the entry's linked genres ordered by name.
func (c *Catalog) GenresForEntry(ctx context.Context, entryID int64) ([]Ref, error) {
	return c.refsForEntry(ctx, entryID, "genres", "entry_genres", "genre_id")
}

// ActorsForEntry returns the entry's linked cast ordered by name.
func (c *Catalog) ActorsForEntry(ctx context.Context, entryID int64) ([]Ref, error) {
	return c.refsForEntry(ctx, entryID, "actors", "entry_actors", "actor_id")
}

func (c *Catalog) refsForEntry(ctx context.Context, entryID int64, dictTable, junctionTable, refColumn string) ([]Ref, error) {
	query := "SELECT d.tmdb_id, d.name FROM " + dictTable + " d" +
		" JOIN " + junctionTable + " j ON j." + refColumn + " = d.tmdb_id" +
		" WHERE j.entry_id = ? ORDER BY d.name"
	stmt, err := c.db.Prepare(ctx, query)
	if err != nil {
		return nil, err
	}
	defer stmt.Finalize()
	stmt.BindInt64(1, entryID)

	var refs []Ref
	for {
		status, row, err := stmt.StepAndGetRow(ctx)
		if err != nil {
			return nil, fmt.Errorf("refs for entry: %w", err)
		}
		if status != store.StatusRow {
			break
		}
		refs = append(refs, Ref{TMDBID: parseInt64(row[0]), Name: row[1]})
	}
	return refs, nil
}

func (c *Catalog) queryOneGrouping(ctx context.Context, query string, bind func(*store.Stmt)) (*Grouping, error) {
	stmt, err := c.db.Prepare(ctx, query)
	if err != nil {
		return nil, err
	}
	defer stmt.Finalize()
	bind(stmt)

	status, row, err := stmt.StepAndGetRow(ctx)
	if err != nil {
		return nil, fmt.Errorf("query grouping: %w", err)
	}
	if status != store.StatusRow {
		return nil, nil
	}
	mt, _ := ParseMediaType(row[2])
	return &Grouping{
		ID:        parseInt64(row[0]),
		TMDBID:    parseInt64(row[1]),
		MediaType: mt,
		Name:      row[3],
		Overview:  row[4],
	}, nil
}

func (c *Catalog) collectInt64s(ctx context.Context, query string, arg int64) ([]int64, error) {
	stmt, err := c.db.Prepare(ctx, query)
	if err != nil {
		return nil, err
	}
	defer stmt.Finalize()
	stmt.BindInt64(1, arg)

	var values []int64
	for {
		status, row, err := stmt.StepAndGetRow(ctx)
		if err != nil {
			return nil, err
		}
		if status != store.StatusRow {
			break
		}
		values = append(values, parseInt64(row[0]))
	}
	return values, nil
}

func (c *Catalog) execTwo(ctx context.Context, firstQuery string, bindFirst func(*store.Stmt), secondQuery string, bindSecond func(*store.Stmt)) error {
	stmt, err := c.db.Prepare(ctx, firstQuery)
	if err != nil {
		return err
	}
	bindFirst(stmt)
	if _, err := stmt.Step(ctx); err != nil {
		_ = stmt.Finalize()
		return err
	}
	if err := stmt.Finalize(); err != nil {
		return err
	}

	stmt, err = c.db.Prepare(ctx, secondQuery)
	if err != nil {
		return err
	}
	defer stmt.Finalize()
	bindSecond(stmt)
	if _, err := stmt.Step(ctx); err != nil {
		return err
	}
	return nil
}
