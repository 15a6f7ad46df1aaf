package scanner

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"reelcat/internal/catalog"
	"reelcat/internal/config"
	"reelcat/internal/logging"
	"reelcat/internal/probe"
	"reelcat/internal/services"
	"reelcat/internal/tmdb"
)

// Prober abstracts the ffprobe wrapper for tests.
type Prober interface {
	Probe(ctx context.Context, path string) (probe.Info, error)
}

// Engine drives one reconciliation run over the configured media roots.
type Engine struct {
	cfg      *config.Config
	cat      *catalog.Catalog
	prober   Prober
	provider tmdb.Provider
	logger   *slog.Logger
}

// New assembles an Engine. A nil logger falls back to a no-op logger.
func New(cfg *config.Config, cat *catalog.Catalog, prober Prober, provider tmdb.Provider, logger *slog.Logger) *Engine {
	return &Engine{
		cfg:      cfg,
		cat:      cat,
		prober:   prober,
		provider: provider,
		logger:   logging.NewComponentLogger(logger, "scanner"),
	}
}

// Summary reports what one run did.
type Summary struct {
	RunID         string
	MarkedFound   int
	MarkedMissing int
	Analyzed      int
	Skipped       int
	Failed        int
}

type folderSeries struct {
	series *tmdb.Series
}

type runState struct {
	summary *Summary
	known   map[string]struct{}
	folders map[string]*folderSeries
	logger  *slog.Logger
}

func (r *runState) capReached(limit int) bool {
	return limit > 0 && r.summary.Analyzed >= limit
}

// Run executes the existence pass and then discovery, movie root first.
// Per-file failures are logged and contained; only catalog-wide failures
// and context cancellation abort the run.
func (e *Engine) Run(ctx context.Context) (*Summary, error) {
	summary := &Summary{RunID: uuid.NewString()}
	logger := e.logger.With(logging.String(logging.FieldRunID, summary.RunID))

	snapshot, err := e.cat.ListEntries(ctx)
	if err != nil {
		return nil, services.Wrap(services.ErrTransient, "scanner", "load catalog", "", err)
	}

	roots := map[catalog.MediaType]Root{
		catalog.MediaTypeMovie:  MovieRoot(e.cfg),
		catalog.MediaTypeSeries: SeriesRoot(e.cfg),
	}

	if err := e.markExistence(ctx, logger, snapshot, roots, summary); err != nil {
		return nil, err
	}

	run := &runState{
		summary: summary,
		known:   knownFiles(snapshot),
		folders: map[string]*folderSeries{},
		logger:  logger,
	}
	for _, mediaType := range []catalog.MediaType{catalog.MediaTypeMovie, catalog.MediaTypeSeries} {
		root := roots[mediaType]
		if !root.Available {
			logger.Warn("media root unavailable, discovery skipped",
				logging.String(logging.FieldMediaType, string(mediaType)),
				logging.String(logging.FieldPath, root.Path))
			continue
		}
		if err := e.discover(ctx, run, mediaType, root); err != nil {
			return summary, err
		}
	}

	logger.Info("scan complete",
		logging.Int("found_again", summary.MarkedFound),
		logging.Int("missing", summary.MarkedMissing),
		logging.Int("analyzed", summary.Analyzed),
		logging.Int("skipped", summary.Skipped),
		logging.Int("failed", summary.Failed))
	return summary, nil
}

// markExistence is the passive pass: it only flips FileExists, never
// deletes rows, and leaves every entry of an unavailable root untouched.
func (e *Engine) markExistence(ctx context.Context, logger *slog.Logger, snapshot []catalog.Entry, roots map[catalog.MediaType]Root, summary *Summary) error {
	var found, missing []int64
	for _, entry := range snapshot {
		root := roots[entry.MediaType]
		if !root.Available {
			continue
		}
		_, statErr := os.Stat(entryAbsPath(root, entry))
		exists := statErr == nil
		switch {
		case exists && !entry.FileExists:
			found = append(found, entry.ID)
		case !exists && entry.FileExists:
			missing = append(missing, entry.ID)
		}
	}
	if err := e.cat.MarkExistence(ctx, found, true); err != nil {
		return services.Wrap(services.ErrTransient, "scanner", "mark found", "", err)
	}
	if err := e.cat.MarkExistence(ctx, missing, false); err != nil {
		return services.Wrap(services.ErrTransient, "scanner", "mark missing", "", err)
	}
	summary.MarkedFound = len(found)
	summary.MarkedMissing = len(missing)
	if len(found)+len(missing) > 0 {
		logger.Info("existence updated",
			logging.Int("found_again", len(found)),
			logging.Int("missing", len(missing)))
	}
	return nil
}

type discoveredFile struct {
	dir    string
	name   string
	relDir string
	size   int64
}

func (e *Engine) discover(ctx context.Context, run *runState, mediaType catalog.MediaType, root Root) error {
	files, err := collectFiles(root.Path, e.cfg)
	if err != nil {
		run.logger.Warn("discovery walk failed",
			logging.String(logging.FieldMediaType, string(mediaType)),
			logging.String(logging.FieldPath, root.Path),
			logging.Error(err))
		return nil
	}
	for _, file := range files {
		if err := ctx.Err(); err != nil {
			return err
		}
		if run.capReached(e.cfg.Scan.MaxFilesPerRun) {
			run.logger.Info("scan cap reached", logging.Int("limit", e.cfg.Scan.MaxFilesPerRun))
			return nil
		}
		if _, ok := run.known[tripleKey(file.relDir, file.name, file.size)]; ok {
			run.summary.Skipped++
			continue
		}
		e.analyzeFile(ctx, run, mediaType, file)
	}
	return nil
}

// collectFiles enumerates allow-listed files under root and sorts them by
// (containing directory, filename) so re-runs are deterministic.
func collectFiles(root string, cfg *config.Config) ([]discoveredFile, error) {
	var files []discoveredFile
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if !cfg.AllowsExtension(filepath.Ext(d.Name())) {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		dir := filepath.Dir(path)
		rel, err := filepath.Rel(root, dir)
		if err != nil {
			return err
		}
		if rel == "." {
			rel = ""
		}
		files = append(files, discoveredFile{
			dir:    dir,
			name:   d.Name(),
			relDir: filepath.ToSlash(rel),
			size:   info.Size(),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(files, func(i, j int) bool {
		if files[i].dir != files[j].dir {
			return files[i].dir < files[j].dir
		}
		return files[i].name < files[j].name
	})
	return files, nil
}

func (e *Engine) analyzeFile(ctx context.Context, run *runState, mediaType catalog.MediaType, file discoveredFile) {
	logger := run.logger.With(
		logging.String(logging.FieldFile, file.name),
		logging.String(logging.FieldMediaType, string(mediaType)))

	var (
		cataloged bool
		err       error
	)
	if mediaType == catalog.MediaTypeMovie {
		cataloged, err = e.analyzeMovie(ctx, run, file, logger)
	} else {
		cataloged, err = e.analyzeEpisode(ctx, run, file, logger)
	}
	switch {
	case err != nil:
		logger.Error("analysis failed", logging.Error(err))
		run.summary.Failed++
	case cataloged:
		run.summary.Analyzed++
	default:
		run.summary.Failed++
	}
}

func (e *Engine) analyzeMovie(ctx context.Context, run *runState, file discoveredFile, logger *slog.Logger) (bool, error) {
	parsed := ParseName(strings.TrimSuffix(file.name, filepath.Ext(file.name)))

	info, err := e.prober.Probe(ctx, filepath.Join(file.dir, file.name))
	if err != nil {
		logger.Warn("probe failed, file skipped", logging.Error(err))
		return false, nil
	}
	entry := buildEntry(file, info, catalog.MediaTypeMovie)
	entry.Title = parsed.Title

	if !e.remoteEnabled() {
		return e.upsertBasic(ctx, &entry, logger)
	}
	movieID := parsed.TMDBID
	if movieID == 0 {
		resp, err := e.provider.SearchMovie(ctx, parsed.Title, parsed.Year)
		if err != nil {
			logger.Warn("movie search failed", logging.Error(err))
			return e.upsertBasic(ctx, &entry, logger)
		}
		if len(resp.Results) == 0 {
			return e.upsertBasic(ctx, &entry, logger)
		}
		movieID = resp.Results[0].ID
	}

	movie, err := e.provider.MovieDetails(ctx, movieID)
	if err != nil {
		logger.Warn("movie details unavailable",
			logging.Int64(logging.FieldTMDBID, movieID), logging.Error(err))
		return e.upsertBasic(ctx, &entry, logger)
	}

	if movie.Title != "" {
		entry.Title = movie.Title
	}
	entry.TMDBID = movie.ID
	entry.VoteAverage = movie.VoteAverage
	entry.Adult = movie.Adult

	entryID, err := e.cat.UpsertEntry(ctx, &entry)
	if err != nil {
		return false, err
	}
	if err := e.cat.UpsertMetadata(ctx, catalog.Metadata{
		TMDBID:      movie.ID,
		MediaType:   catalog.MediaTypeMovie,
		Title:       movie.Title,
		Overview:    movie.Overview,
		ReleaseDate: movie.ReleaseDate,
	}); err != nil {
		return false, err
	}
	if err := e.cat.UpsertGenres(ctx, entryID, genreRefs(movie.Genres)); err != nil {
		return false, err
	}
	if err := e.cat.UpsertActors(ctx, entryID, castRefs(movie.Credits.Cast)); err != nil {
		return false, err
	}
	if movie.BelongsToCollection != nil {
		name, overview := movie.BelongsToCollection.Name, ""
		if coll, err := e.provider.CollectionDetails(ctx, movie.BelongsToCollection.ID); err != nil {
			logger.Warn("collection details unavailable",
				logging.Int64(logging.FieldTMDBID, movie.BelongsToCollection.ID), logging.Error(err))
		} else {
			name, overview = coll.Name, coll.Overview
		}
		if _, _, err := e.cat.UpsertGrouping(ctx, entryID, catalog.MediaTypeMovie, movie.BelongsToCollection.ID, name, overview); err != nil {
			return false, err
		}
	}

	logger.Info("movie cataloged",
		logging.Int64(logging.FieldEntryID, entryID),
		logging.Int64(logging.FieldTMDBID, movie.ID))
	return true, nil
}

func (e *Engine) analyzeEpisode(ctx context.Context, run *runState, file discoveredFile, logger *slog.Logger) (bool, error) {
	episode, ok := ParseEpisode(strings.TrimSuffix(file.name, filepath.Ext(file.name)))
	if !ok {
		logger.Warn("episode pattern not recognized, file skipped")
		return false, nil
	}

	info, err := e.prober.Probe(ctx, filepath.Join(file.dir, file.name))
	if err != nil {
		logger.Warn("probe failed, file skipped", logging.Error(err))
		return false, nil
	}
	entry := buildEntry(file, info, catalog.MediaTypeSeries)

	folderName := ParseName(filepath.Base(file.dir))
	series := e.seriesForFolder(ctx, run, file.dir, folderName, logger)
	if series == nil {
		entry.Title = composeEpisodeTitle(folderName.Title, episode, episode.Title)
		return e.upsertBasic(ctx, &entry, logger)
	}

	detail, err := e.provider.EpisodeDetails(ctx, series.ID, episode.Season, episode.Episode)
	if err != nil {
		logger.Warn("episode details unavailable",
			logging.Int64(logging.FieldTMDBID, series.ID),
			logging.Int("season", episode.Season),
			logging.Int("episode", episode.Episode),
			logging.Error(err))
		entry.Title = composeEpisodeTitle(series.Name, episode, episode.Title)
		return e.upsertBasic(ctx, &entry, logger)
	}

	entry.Title = composeEpisodeTitle(series.Name, episode, detail.Name)
	entry.TMDBID = detail.ID
	entry.VoteAverage = detail.VoteAverage
	entry.Adult = series.Adult

	entryID, err := e.cat.UpsertEntry(ctx, &entry)
	if err != nil {
		return false, err
	}
	if err := e.cat.UpsertMetadata(ctx, catalog.Metadata{
		TMDBID:      detail.ID,
		MediaType:   catalog.MediaTypeSeries,
		Title:       detail.Name,
		Overview:    detail.Overview,
		ReleaseDate: detail.AirDate,
	}); err != nil {
		return false, err
	}
	_, created, err := e.cat.UpsertGrouping(ctx, entryID, catalog.MediaTypeSeries, series.ID, series.Name, series.Overview)
	if err != nil {
		return false, err
	}
	if created {
		// Series-level genres ride on the episode that created the grouping.
		if err := e.cat.UpsertGenres(ctx, entryID, genreRefs(series.Genres)); err != nil {
			return false, err
		}
	}
	if err := e.cat.UpsertActors(ctx, entryID, castRefs(detail.Credits.Cast, detail.Credits.GuestStars)); err != nil {
		return false, err
	}

	logger.Info("episode cataloged",
		logging.Int64(logging.FieldEntryID, entryID),
		logging.Int64(logging.FieldTMDBID, detail.ID))
	return true, nil
}

// seriesForFolder resolves the series for a folder once per run; later
// files in the same folder reuse the answer, including a failed one.
func (e *Engine) seriesForFolder(ctx context.Context, run *runState, dir string, parsed NameInfo, logger *slog.Logger) *tmdb.Series {
	if cached, ok := run.folders[dir]; ok {
		return cached.series
	}
	if !e.remoteEnabled() {
		run.folders[dir] = &folderSeries{}
		return nil
	}

	var series *tmdb.Series
	seriesID := parsed.TMDBID
	if seriesID == 0 {
		resp, err := e.provider.SearchSeries(ctx, parsed.Title, parsed.Year)
		if err != nil {
			logger.Warn("series search failed", logging.Error(err))
		} else if len(resp.Results) > 0 {
			seriesID = resp.Results[0].ID
		}
	}
	if seriesID != 0 {
		s, err := e.provider.SeriesDetails(ctx, seriesID)
		if err != nil {
			logger.Warn("series details unavailable",
				logging.Int64(logging.FieldTMDBID, seriesID), logging.Error(err))
		} else {
			series = s
		}
	}

	run.folders[dir] = &folderSeries{series: series}
	return series
}

// remoteEnabled reports whether metadata lookups are possible at all.
// Without a provider or an API key every file is recorded unmatched.
func (e *Engine) remoteEnabled() bool {
	return e.provider != nil && e.cfg.TMDB.APIKey != ""
}

// upsertBasic records a file with no remote identity.
func (e *Engine) upsertBasic(ctx context.Context, entry *catalog.Entry, logger *slog.Logger) (bool, error) {
	entry.TMDBID = 0
	entry.VoteAverage = 0
	entry.Adult = false
	id, err := e.cat.UpsertEntry(ctx, entry)
	if err != nil {
		return false, err
	}
	logger.Info("unmatched file recorded", logging.Int64(logging.FieldEntryID, id))
	return true, nil
}

func buildEntry(file discoveredFile, info probe.Info, mediaType catalog.MediaType) catalog.Entry {
	channels, layouts, languages := audioSummary(info.AudioTracks)
	return catalog.Entry{
		FileName:        file.name,
		RelativePath:    file.relDir,
		FileSizeBytes:   file.size,
		Resolution:      info.Resolution,
		VideoCodec:      info.VideoCodec,
		AudioTrackCount: len(info.AudioTracks),
		AudioChannels:   channels,
		AudioLayouts:    layouts,
		AudioLanguages:  languages,
		Duration:        catalog.FormatDuration(info.DurationSeconds),
		FileExists:      true,
		MediaType:       mediaType,
	}
}

func audioSummary(tracks []probe.AudioTrack) (channels, layouts, languages string) {
	chs := make([]string, 0, len(tracks))
	lays := make([]string, 0, len(tracks))
	langs := make([]string, 0, len(tracks))
	for _, track := range tracks {
		chs = append(chs, strconv.Itoa(track.Channels))
		lays = append(lays, track.Layout)
		langs = append(langs, track.Language)
	}
	return strings.Join(chs, "/"), strings.Join(lays, "/"), strings.Join(langs, "/")
}

func composeEpisodeTitle(seriesName string, episode EpisodeInfo, episodeName string) string {
	title := fmt.Sprintf("%s: s%02de%03d", seriesName, episode.Season, episode.Episode)
	if episode.Part > 0 {
		title += fmt.Sprintf("p%02d", episode.Part)
	}
	if episodeName != "" {
		title += " " + episodeName
	}
	return title
}

func genreRefs(genres []tmdb.Genre) []catalog.Ref {
	refs := make([]catalog.Ref, 0, len(genres))
	for _, genre := range genres {
		refs = append(refs, catalog.Ref{TMDBID: genre.ID, Name: genre.Name})
	}
	return refs
}

func castRefs(lists ...[]tmdb.CastMember) []catalog.Ref {
	var refs []catalog.Ref
	for _, list := range lists {
		for _, member := range list {
			refs = append(refs, catalog.Ref{TMDBID: member.ID, Name: member.Name})
		}
	}
	return refs
}

func entryAbsPath(root Root, entry catalog.Entry) string {
	return filepath.Join(root.Path, filepath.FromSlash(entry.RelativePath), entry.FileName)
}

func knownFiles(snapshot []catalog.Entry) map[string]struct{} {
	known := make(map[string]struct{}, len(snapshot))
	for _, entry := range snapshot {
		known[tripleKey(entry.RelativePath, entry.FileName, entry.FileSizeBytes)] = struct{}{}
	}
	return known
}

func tripleKey(relDir, name string, size int64) string {
	return relDir + "\x00" + name + "\x00" + strconv.FormatInt(size, 10)
}
