package catalog

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"reelcat/internal/store"
)

const entryColumns = "id, title, file_name, relative_path, file_size_bytes, file_size_mb, resolution, video_codec, audio_track_count, audio_channels, audio_layouts, audio_languages, duration, file_exists, tmdb_id, vote_average, media_type, adult"

const upsertEntrySQL = `INSERT INTO entries (
    title, file_name, relative_path, file_size_bytes, file_size_mb,
    resolution, video_codec, audio_track_count, audio_channels,
    audio_layouts, audio_languages, duration, file_exists, tmdb_id,
    vote_average, media_type, adult
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (relative_path, file_name) DO UPDATE SET
    title = excluded.title,
    file_size_bytes = excluded.file_size_bytes,
    file_size_mb = excluded.file_size_mb,
    resolution = excluded.resolution,
    video_codec = excluded.video_codec,
    audio_track_count = excluded.audio_track_count,
    audio_channels = excluded.audio_channels,
    audio_layouts = excluded.audio_layouts,
    audio_languages = excluded.audio_languages,
    duration = excluded.duration,
    file_exists = excluded.file_exists,
    tmdb_id = excluded.tmdb_id,
    vote_average = excluded.vote_average,
    media_type = excluded.media_type,
    adult = excluded.adult`

// UpsertEntry inserts or fully replaces the entry identified by its
// (relative path, file name) key and returns the row id. The id is
// re-queried by the unique key afterwards because the engine's last-insert
// rowid is only reliable on the insert path.
func (c *Catalog) UpsertEntry(ctx context.Context, entry *Entry) (int64, error) {
	if entry == nil {
		return 0, errors.New("entry is nil")
	}
	if entry.FileName == "" {
		return 0, errors.New("entry file name is empty")
	}
	entry.FileSizeMB = SizeMB(entry.FileSizeBytes)

	stmt, err := c.db.Prepare(ctx, upsertEntrySQL)
	if err != nil {
		return 0, err
	}
	defer stmt.Finalize()

	stmt.BindText(1, entry.Title)
	stmt.BindText(2, entry.FileName)
	stmt.BindText(3, entry.RelativePath)
	stmt.BindInt64(4, entry.FileSizeBytes)
	stmt.BindDouble(5, entry.FileSizeMB)
	stmt.BindText(6, entry.Resolution)
	stmt.BindText(7, entry.VideoCodec)
	stmt.BindInt(8, entry.AudioTrackCount)
	stmt.BindText(9, entry.AudioChannels)
	stmt.BindText(10, entry.AudioLayouts)
	stmt.BindText(11, entry.AudioLanguages)
	stmt.BindText(12, entry.Duration)
	stmt.BindBool(13, entry.FileExists)
	stmt.BindInt64(14, entry.TMDBID)
	stmt.BindDouble(15, entry.VoteAverage)
	stmt.BindText(16, string(entry.MediaType))
	stmt.BindBool(17, entry.Adult)

	if _, err := stmt.Step(ctx); err != nil {
		return 0, fmt.Errorf("upsert entry: %w", err)
	}

	fetched, err := c.EntryByKey(ctx, entry.RelativePath, entry.FileName)
	if err != nil {
		return 0, err
	}
	if fetched == nil {
		return 0, fmt.Errorf("upsert entry: row for %q/%q missing after write", entry.RelativePath, entry.FileName)
	}
	entry.ID = fetched.ID
	return fetched.ID, nil
}

// EntryByKey fetches an entry by its unique (relative path, file name) key.
// Returns nil when absent.
func (c *Catalog) EntryByKey(ctx context.Context, relativePath, fileName string) (*Entry, error) {
	return c.queryOneEntry(ctx,
		"SELECT "+entryColumns+" FROM entries WHERE relative_path = ? AND file_name = ?",
		func(stmt *store.Stmt) {
			stmt.BindText(1, relativePath)
			stmt.BindText(2, fileName)
		})
}

// EntryByID fetches an entry by row id. Returns nil when absent.
func (c *Catalog) EntryByID(ctx context.Context, id int64) (*Entry, error) {
	return c.queryOneEntry(ctx,
		"SELECT "+entryColumns+" FROM entries WHERE id = ?",
		func(stmt *store.Stmt) {
			stmt.BindInt64(1, id)
		})
}

// ListEntries returns the full catalog ordered by (relative path, file name).
func (c *Catalog) ListEntries(ctx context.Context) ([]Entry, error) {
	stmt, err := c.db.Prepare(ctx, "SELECT "+entryColumns+" FROM entries ORDER BY relative_path, file_name")
	if err != nil {
		return nil, err
	}
	defer stmt.Finalize()

	var entries []Entry
	for {
		status, row, err := stmt.StepAndGetRow(ctx)
		if err != nil {
			return nil, fmt.Errorf("list entries: %w", err)
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

// markExistenceBatchSize bounds the IN-list length per update statement.
const markExistenceBatchSize = 500

// MarkExistence flips the file-existence flag for the given entries using
// one parameterized statement per batch.
func (c *Catalog) MarkExistence(ctx context.Context, ids []int64, exists bool) error {
	for start := 0; start < len(ids); start += markExistenceBatchSize {
		end := min(start+markExistenceBatchSize, len(ids))
		batch := ids[start:end]

		query := "UPDATE entries SET file_exists = ? WHERE id IN (" + makePlaceholders(len(batch)) + ")"
		stmt, err := c.db.Prepare(ctx, query)
		if err != nil {
			return err
		}
		stmt.BindBool(1, exists)
		for i, id := range batch {
			stmt.BindInt64(i+2, id)
		}
		if _, err := stmt.Step(ctx); err != nil {
			_ = stmt.Finalize()
			return fmt.Errorf("mark existence: %w", err)
		}
		if err := stmt.Finalize(); err != nil {
			return err
		}
	}
	return nil
}

// DeleteEntry removes the entry row unconditionally. Callers wanting the
// full operator delete use PurgeEntry, which also clears associations.
func (c *Catalog) DeleteEntry(ctx context.Context, id int64) error {
	stmt, err := c.db.Prepare(ctx, "DELETE FROM entries WHERE id = ?")
	if err != nil {
		return err
	}
	defer stmt.Finalize()
	stmt.BindInt64(1, id)
	if _, err := stmt.Step(ctx); err != nil {
		return fmt.Errorf("delete entry: %w", err)
	}
	return nil
}

// PurgeEntry performs the operator delete: genre, actor, and grouping
// associations go first (with orphan cleanup), then the metadata record
// keyed by the entry's remote id, then the entry row itself.
func (c *Catalog) PurgeEntry(ctx context.Context, entry Entry) error {
	if err := c.DeleteGenres(ctx, entry.ID); err != nil {
		return err
	}
	if err := c.DeleteActors(ctx, entry.ID); err != nil {
		return err
	}
	if err := c.DeleteGrouping(ctx, entry.ID); err != nil {
		return err
	}
	if entry.TMDBID != 0 {
		if err := c.DeleteMetadata(ctx, entry.TMDBID, entry.MediaType); err != nil {
			return err
		}
	}
	return c.DeleteEntry(ctx, entry.ID)
}

func (c *Catalog) queryOneEntry(ctx context.Context, query string, bind func(*store.Stmt)) (*Entry, error) {
	stmt, err := c.db.Prepare(ctx, query)
	if err != nil {
		return nil, err
	}
	defer stmt.Finalize()
	bind(stmt)

	status, row, err := stmt.StepAndGetRow(ctx)
	if err != nil {
		return nil, fmt.Errorf("query entry: %w", err)
	}
	if status != store.StatusRow {
		return nil, nil
	}
	entry, err := parseEntryRow(row)
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

// parseEntryRow converts the store's all-text row into a typed Entry.
func parseEntryRow(row []string) (Entry, error) {
	if len(row) != 18 {
		return Entry{}, fmt.Errorf("entry row has %d columns, expected 18", len(row))
	}
	mediaType, ok := ParseMediaType(row[16])
	if !ok {
		return Entry{}, fmt.Errorf("entry row has unknown media type %q", row[16])
	}
	return Entry{
		ID:              parseInt64(row[0]),
		Title:           row[1],
		FileName:        row[2],
		RelativePath:    row[3],
		FileSizeBytes:   parseInt64(row[4]),
		FileSizeMB:      parseFloat(row[5]),
		Resolution:      row[6],
		VideoCodec:      row[7],
		AudioTrackCount: int(parseInt64(row[8])),
		AudioChannels:   row[9],
		AudioLayouts:    row[10],
		AudioLanguages:  row[11],
		Duration:        row[12],
		FileExists:      row[13] == "1",
		TMDBID:          parseInt64(row[14]),
		VoteAverage:     parseFloat(row[15]),
		MediaType:       mediaType,
		Adult:           row[17] == "1",
	}, nil
}

func parseInt64(value string) int64 {
	parsed, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
	if err != nil {
		return 0
	}
	return parsed
}

func parseFloat(value string) float64 {
	parsed, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return 0
	}
	return parsed
}

func makePlaceholders(count int) string {
	if count <= 0 {
		return ""
	}
	placeholders := make([]byte, 0, count*2)
	for i := 0; i < count; i++ {
		if i > 0 {
			placeholders = append(placeholders, ',')
		}
		placeholders = append(placeholders, '?')
	}
	return string(placeholders)
}
