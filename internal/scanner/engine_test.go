package scanner

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"reelcat/internal/catalog"
	"reelcat/internal/logging"
	"reelcat/internal/probe"
	"reelcat/internal/testsupport"
	"reelcat/internal/tmdb"
)

type fakeProber struct {
	failFor map[string]bool
}

func (f *fakeProber) Probe(_ context.Context, path string) (probe.Info, error) {
	if f.failFor[filepath.Base(path)] {
		return probe.Info{}, &probe.Error{Kind: probe.KindNoStreams, Detail: path}
	}
	return probe.Info{
		Resolution: "1920x1080",
		VideoCodec: "h264",
		AudioTracks: []probe.AudioTrack{
			{Channels: 6, Layout: "5.1", Language: "eng"},
		},
		DurationSeconds: 5400,
	}, nil
}

type fakeProvider struct {
	movies       map[int64]*tmdb.Movie
	series       map[int64]*tmdb.Series
	episodes     map[string]*tmdb.Episode
	collections  map[int64]*tmdb.Collection
	movieSearch  map[string]int64
	seriesSearch map[string]int64
}

func newFakeProvider() *fakeProvider {
	return &fakeProvider{
		movies:       map[int64]*tmdb.Movie{},
		series:       map[int64]*tmdb.Series{},
		episodes:     map[string]*tmdb.Episode{},
		collections:  map[int64]*tmdb.Collection{},
		movieSearch:  map[string]int64{},
		seriesSearch: map[string]int64{},
	}
}

func episodeKey(seriesID int64, season, episode int) string {
	return fmt.Sprintf("%d/%d/%d", seriesID, season, episode)
}

func (f *fakeProvider) SearchMovie(_ context.Context, query string, _ int) (*tmdb.SearchResponse, error) {
	if id, ok := f.movieSearch[query]; ok {
		return &tmdb.SearchResponse{Results: []tmdb.SearchResult{{ID: id, Title: query}}, TotalResults: 1}, nil
	}
	return &tmdb.SearchResponse{}, nil
}

func (f *fakeProvider) SearchSeries(_ context.Context, query string, _ int) (*tmdb.SearchResponse, error) {
	if id, ok := f.seriesSearch[query]; ok {
		return &tmdb.SearchResponse{Results: []tmdb.SearchResult{{ID: id, Name: query}}, TotalResults: 1}, nil
	}
	return &tmdb.SearchResponse{}, nil
}

func (f *fakeProvider) MovieDetails(_ context.Context, movieID int64) (*tmdb.Movie, error) {
	if movie, ok := f.movies[movieID]; ok {
		return movie, nil
	}
	return nil, tmdb.ErrNotFound
}

func (f *fakeProvider) SeriesDetails(_ context.Context, seriesID int64) (*tmdb.Series, error) {
	if series, ok := f.series[seriesID]; ok {
		return series, nil
	}
	return nil, tmdb.ErrNotFound
}

func (f *fakeProvider) EpisodeDetails(_ context.Context, seriesID int64, season, episode int) (*tmdb.Episode, error) {
	if detail, ok := f.episodes[episodeKey(seriesID, season, episode)]; ok {
		return detail, nil
	}
	return nil, tmdb.ErrNotFound
}

func (f *fakeProvider) CollectionDetails(_ context.Context, collectionID int64) (*tmdb.Collection, error) {
	if collection, ok := f.collections[collectionID]; ok {
		return collection, nil
	}
	return nil, tmdb.ErrNotFound
}

var _ tmdb.Provider = (*fakeProvider)(nil)

func TestScanCatalogsMovie(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cat := testsupport.MustOpenCatalog(t, cfg)

	testsupport.WriteFile(t, filepath.Join(cfg.Library.MoviesDir, "Rome", "Gladiator (2000).mp4"), 2048)

	provider := newFakeProvider()
	provider.movieSearch["Gladiator"] = 98
	provider.movies[98] = &tmdb.Movie{
		ID:          98,
		Title:       "Gladiator",
		Overview:    "A general becomes a gladiator.",
		ReleaseDate: "2000-05-01",
		VoteAverage: 8.2,
		Genres:      []tmdb.Genre{{ID: 28, Name: "Action"}},
		Credits:     tmdb.Credits{Cast: []tmdb.CastMember{{ID: 934, Name: "Russell Crowe"}}},
	}

	engine := New(cfg, cat, &fakeProber{}, provider, logging.NewNop())
	summary, err := engine.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if summary.Analyzed != 1 || summary.Failed != 0 {
		t.Fatalf("summary = %+v", summary)
	}

	entry, err := cat.EntryByKey(context.Background(), "Rome", "Gladiator (2000).mp4")
	if err != nil {
		t.Fatalf("EntryByKey: %v", err)
	}
	if entry == nil {
		t.Fatal("entry not cataloged")
	}
	if entry.TMDBID != 98 || entry.VoteAverage != 8.2 || entry.MediaType != catalog.MediaTypeMovie {
		t.Fatalf("entry = %+v", entry)
	}
	if !entry.FileExists || entry.FileSizeBytes != 2048 {
		t.Fatalf("file attributes = %+v", entry)
	}
	if entry.AudioChannels != "6" || entry.AudioLanguages != "eng" || entry.Duration != "1:30:00" {
		t.Fatalf("probe attributes = %+v", entry)
	}

	md, err := cat.MetadataByKey(context.Background(), 98, catalog.MediaTypeMovie)
	if err != nil {
		t.Fatalf("MetadataByKey: %v", err)
	}
	if md == nil || md.Title != "Gladiator" {
		t.Fatalf("metadata = %+v", md)
	}
	genres, err := cat.GenresForEntry(context.Background(), entry.ID)
	if err != nil {
		t.Fatalf("GenresForEntry: %v", err)
	}
	if len(genres) != 1 || genres[0].Name != "Action" {
		t.Fatalf("genres = %+v", genres)
	}
	actors, err := cat.ActorsForEntry(context.Background(), entry.ID)
	if err != nil {
		t.Fatalf("ActorsForEntry: %v", err)
	}
	if len(actors) != 1 || actors[0].Name != "Russell Crowe" {
		t.Fatalf("actors = %+v", actors)
	}

	grouping, err := cat.GroupingByKey(context.Background(), 98, catalog.MediaTypeMovie)
	if err != nil {
		t.Fatalf("GroupingByKey: %v", err)
	}
	if grouping != nil {
		t.Fatalf("no grouping expected for a collection-less movie, got %+v", grouping)
	}
}

func TestScanIsIdempotent(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithTMDBKey(""))
	cat := testsupport.MustOpenCatalog(t, cfg)

	testsupport.WriteFile(t, filepath.Join(cfg.Library.MoviesDir, "Heat (1995).mkv"), 512)

	engine := New(cfg, cat, &fakeProber{}, newFakeProvider(), logging.NewNop())
	if _, err := engine.Run(context.Background()); err != nil {
		t.Fatalf("first run: %v", err)
	}

	summary, err := engine.Run(context.Background())
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if summary.Analyzed != 0 {
		t.Fatalf("second run analyzed %d files, want 0", summary.Analyzed)
	}
	if summary.Skipped == 0 {
		t.Fatal("second run should skip the known file")
	}

	entries, err := cat.ListEntries(context.Background())
	if err != nil {
		t.Fatalf("ListEntries: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("entries = %d, want 1", len(entries))
	}
}

func TestScanMarksMissingWithoutDeleting(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithTMDBKey(""))
	cat := testsupport.MustOpenCatalog(t, cfg)

	path := filepath.Join(cfg.Library.MoviesDir, "Heat (1995).mkv")
	testsupport.WriteFile(t, path, 512)

	engine := New(cfg, cat, &fakeProber{}, newFakeProvider(), logging.NewNop())
	if _, err := engine.Run(context.Background()); err != nil {
		t.Fatalf("first run: %v", err)
	}
	if err := os.Remove(path); err != nil {
		t.Fatalf("remove file: %v", err)
	}

	summary, err := engine.Run(context.Background())
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if summary.MarkedMissing != 1 {
		t.Fatalf("marked missing = %d, want 1", summary.MarkedMissing)
	}

	entry, err := cat.EntryByKey(context.Background(), "", "Heat (1995).mkv")
	if err != nil {
		t.Fatalf("EntryByKey: %v", err)
	}
	if entry == nil {
		t.Fatal("row must survive a missing file")
	}
	if entry.FileExists {
		t.Fatal("FileExists should be false after the existence pass")
	}
}

func TestScanSkipsExistenceForUnavailableRoot(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithTMDBKey(""))
	cat := testsupport.MustOpenCatalog(t, cfg)

	testsupport.WriteFile(t, filepath.Join(cfg.Library.MoviesDir, "Heat (1995).mkv"), 512)

	engine := New(cfg, cat, &fakeProber{}, newFakeProvider(), logging.NewNop())
	if _, err := engine.Run(context.Background()); err != nil {
		t.Fatalf("first run: %v", err)
	}
	if err := os.RemoveAll(cfg.Library.MoviesDir); err != nil {
		t.Fatalf("remove root: %v", err)
	}

	summary, err := engine.Run(context.Background())
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if summary.MarkedMissing != 0 {
		t.Fatalf("marked missing = %d, entries of an unavailable root must be left alone", summary.MarkedMissing)
	}

	entry, err := cat.EntryByKey(context.Background(), "", "Heat (1995).mkv")
	if err != nil {
		t.Fatalf("EntryByKey: %v", err)
	}
	if entry == nil || !entry.FileExists {
		t.Fatalf("entry = %+v, want FileExists preserved", entry)
	}
}

func TestScanWithoutAPIKeyRecordsUnmatched(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithTMDBKey(""))
	cat := testsupport.MustOpenCatalog(t, cfg)

	testsupport.WriteFile(t, filepath.Join(cfg.Library.MoviesDir, "Heat (1995).mkv"), 512)

	engine := New(cfg, cat, &fakeProber{}, newFakeProvider(), logging.NewNop())
	if _, err := engine.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	entry, err := cat.EntryByKey(context.Background(), "", "Heat (1995).mkv")
	if err != nil {
		t.Fatalf("EntryByKey: %v", err)
	}
	if entry == nil {
		t.Fatal("entry not recorded")
	}
	if entry.TMDBID != 0 || entry.VoteAverage != 0 || entry.Adult {
		t.Fatalf("entry = %+v, want unmatched record", entry)
	}
	if entry.Title != "Heat" {
		t.Fatalf("title = %q", entry.Title)
	}
}

func TestScanResolvesCollectionGrouping(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cat := testsupport.MustOpenCatalog(t, cfg)

	testsupport.WriteFile(t, filepath.Join(cfg.Library.MoviesDir, "Gladiator (2000) [TMDBID=98].mp4"), 2048)

	provider := newFakeProvider()
	provider.movies[98] = &tmdb.Movie{
		ID:                  98,
		Title:               "Gladiator",
		VoteAverage:         8.2,
		BelongsToCollection: &tmdb.CollectionRef{ID: 1000, Name: "Gladiator Collection"},
	}
	provider.collections[1000] = &tmdb.Collection{
		ID:       1000,
		Name:     "Gladiator Collection",
		Overview: "Both films.",
		Parts:    []tmdb.CollectionPart{{ID: 98, Title: "Gladiator"}, {ID: 99, Title: "Gladiator II"}},
	}

	engine := New(cfg, cat, &fakeProber{}, provider, logging.NewNop())
	if _, err := engine.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	grouping, err := cat.GroupingByKey(context.Background(), 1000, catalog.MediaTypeMovie)
	if err != nil {
		t.Fatalf("GroupingByKey: %v", err)
	}
	if grouping == nil || grouping.Name != "Gladiator Collection" || grouping.Overview != "Both films." {
		t.Fatalf("grouping = %+v", grouping)
	}
	members, err := cat.EntriesByGrouping(context.Background(), grouping.ID)
	if err != nil {
		t.Fatalf("EntriesByGrouping: %v", err)
	}
	if len(members) != 1 {
		t.Fatalf("members = %d, want 1", len(members))
	}
}

func TestScanCatalogsSeriesFolder(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cat := testsupport.MustOpenCatalog(t, cfg)

	folder := filepath.Join(cfg.Library.SeriesDir, "Rome (2005) [TMDBID=5]")
	testsupport.WriteFile(t, filepath.Join(folder, "s01e001 The Stolen Eagle.mkv"), 700)
	testsupport.WriteFile(t, filepath.Join(folder, "s01e002 How Titus Pullo Brought Down the Republic.mkv"), 700)
	testsupport.WriteFile(t, filepath.Join(folder, "behind the scenes.mkv"), 700)

	provider := newFakeProvider()
	provider.series[5] = &tmdb.Series{
		ID:       5,
		Name:     "Rome",
		Overview: "The last days of the republic.",
		Genres:   []tmdb.Genre{{ID: 18, Name: "Drama"}},
	}
	provider.episodes[episodeKey(5, 1, 1)] = &tmdb.Episode{
		ID:            501,
		Name:          "The Stolen Eagle",
		AirDate:       "2005-08-28",
		SeasonNumber:  1,
		EpisodeNumber: 1,
		VoteAverage:   7.8,
		Credits: tmdb.Credits{
			Cast:       []tmdb.CastMember{{ID: 7001, Name: "Kevin McKidd"}},
			GuestStars: []tmdb.CastMember{{ID: 7002, Name: "David Bamber"}},
		},
	}
	provider.episodes[episodeKey(5, 1, 2)] = &tmdb.Episode{
		ID:            502,
		Name:          "How Titus Pullo Brought Down the Republic",
		SeasonNumber:  1,
		EpisodeNumber: 2,
		VoteAverage:   7.9,
	}

	engine := New(cfg, cat, &fakeProber{}, provider, logging.NewNop())
	summary, err := engine.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if summary.Analyzed != 2 {
		t.Fatalf("analyzed = %d, want 2 episodes", summary.Analyzed)
	}
	if summary.Failed != 1 {
		t.Fatalf("failed = %d, the extras file should be skipped", summary.Failed)
	}

	relDir := "Rome (2005) [TMDBID=5]"
	first, err := cat.EntryByKey(context.Background(), relDir, "s01e001 The Stolen Eagle.mkv")
	if err != nil {
		t.Fatalf("EntryByKey: %v", err)
	}
	if first == nil {
		t.Fatal("first episode not cataloged")
	}
	if first.Title != "Rome: s01e001 The Stolen Eagle" {
		t.Fatalf("title = %q", first.Title)
	}
	if first.TMDBID != 501 || first.VoteAverage != 7.8 || first.MediaType != catalog.MediaTypeSeries {
		t.Fatalf("entry = %+v", first)
	}

	grouping, err := cat.GroupingByKey(context.Background(), 5, catalog.MediaTypeSeries)
	if err != nil {
		t.Fatalf("GroupingByKey: %v", err)
	}
	if grouping == nil || grouping.Name != "Rome" {
		t.Fatalf("grouping = %+v", grouping)
	}
	members, err := cat.EntriesByGrouping(context.Background(), grouping.ID)
	if err != nil {
		t.Fatalf("EntriesByGrouping: %v", err)
	}
	if len(members) != 2 {
		t.Fatalf("members = %d, want 2", len(members))
	}

	firstGenres, err := cat.GenresForEntry(context.Background(), first.ID)
	if err != nil {
		t.Fatalf("GenresForEntry: %v", err)
	}
	if len(firstGenres) != 1 || firstGenres[0].Name != "Drama" {
		t.Fatalf("series genres should ride on the grouping-creating episode, got %+v", firstGenres)
	}
	second, err := cat.EntryByKey(context.Background(), relDir, "s01e002 How Titus Pullo Brought Down the Republic.mkv")
	if err != nil {
		t.Fatalf("EntryByKey: %v", err)
	}
	secondGenres, err := cat.GenresForEntry(context.Background(), second.ID)
	if err != nil {
		t.Fatalf("GenresForEntry: %v", err)
	}
	if len(secondGenres) != 0 {
		t.Fatalf("later episodes should not repeat series genres, got %+v", secondGenres)
	}

	actors, err := cat.ActorsForEntry(context.Background(), first.ID)
	if err != nil {
		t.Fatalf("ActorsForEntry: %v", err)
	}
	if len(actors) != 2 {
		t.Fatalf("actors = %+v, want cast plus guest star", actors)
	}
}

func TestScanCapLimitsRun(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithTMDBKey(""), testsupport.WithMaxFilesPerRun(2))
	cat := testsupport.MustOpenCatalog(t, cfg)

	for _, name := range []string{"A.mkv", "B.mkv", "C.mkv"} {
		testsupport.WriteFile(t, filepath.Join(cfg.Library.MoviesDir, name), 100)
	}

	engine := New(cfg, cat, &fakeProber{}, newFakeProvider(), logging.NewNop())
	summary, err := engine.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if summary.Analyzed != 2 {
		t.Fatalf("analyzed = %d, want cap of 2", summary.Analyzed)
	}

	entries, err := cat.ListEntries(context.Background())
	if err != nil {
		t.Fatalf("ListEntries: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("entries = %d, want 2", len(entries))
	}
}

func TestScanProbeFailureSkipsFile(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithTMDBKey(""))
	cat := testsupport.MustOpenCatalog(t, cfg)

	testsupport.WriteFile(t, filepath.Join(cfg.Library.MoviesDir, "corrupt.mkv"), 64)

	prober := &fakeProber{failFor: map[string]bool{"corrupt.mkv": true}}
	engine := New(cfg, cat, prober, newFakeProvider(), logging.NewNop())
	summary, err := engine.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if summary.Failed != 1 || summary.Analyzed != 0 {
		t.Fatalf("summary = %+v", summary)
	}

	entries, err := cat.ListEntries(context.Background())
	if err != nil {
		t.Fatalf("ListEntries: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("entries = %d, a failed probe must leave no record", len(entries))
	}
}
