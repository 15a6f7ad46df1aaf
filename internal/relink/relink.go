// Package relink reassigns the remote identity of a catalog entry. The
// old associations are always removed first so a failed fetch can never
// leave junction rows pointing at metadata for the wrong id; failures
// degrade the entry to the unlinked state instead of aborting.
package relink

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"reelcat/internal/catalog"
	"reelcat/internal/logging"
	"reelcat/internal/scanner"
	"reelcat/internal/services"
	"reelcat/internal/tmdb"
)

// Service performs identity reassignment against one catalog.
type Service struct {
	cat      *catalog.Catalog
	provider tmdb.Provider
	logger   *slog.Logger
}

// New assembles a Service. A nil logger falls back to a no-op logger.
func New(cat *catalog.Catalog, provider tmdb.Provider, logger *slog.Logger) *Service {
	return &Service{
		cat:      cat,
		provider: provider,
		logger:   logging.NewComponentLogger(logger, "relink"),
	}
}

// Relink moves the entry to newID. For movies newID is a movie id; for
// series entries newID is the series id and the episode is re-derived
// from the stored filename. newID 0, a failed fetch, or an unparseable
// episode filename all degrade the entry to unlinked (TMDBID 0).
func (s *Service) Relink(ctx context.Context, entryID, newID int64) (*catalog.Entry, error) {
	entry, err := s.cat.EntryByID(ctx, entryID)
	if err != nil {
		return nil, services.Wrap(services.ErrTransient, "relink", "load entry", "", err)
	}
	if entry == nil {
		return nil, services.Wrap(services.ErrNotFound, "relink", "load entry", "no such entry", nil)
	}

	logger := s.logger.With(
		logging.Int64(logging.FieldEntryID, entry.ID),
		logging.Int64("old_tmdb_id", entry.TMDBID),
		logging.Int64("new_tmdb_id", newID))

	// Old associations go first, unconditionally.
	if err := s.cat.DeleteGenres(ctx, entry.ID); err != nil {
		return nil, err
	}
	if err := s.cat.DeleteActors(ctx, entry.ID); err != nil {
		return nil, err
	}
	if err := s.cat.DeleteGrouping(ctx, entry.ID); err != nil {
		return nil, err
	}
	if entry.TMDBID != 0 {
		if err := s.cat.DeleteMetadata(ctx, entry.TMDBID, entry.MediaType); err != nil {
			return nil, err
		}
	}

	if newID == 0 {
		logger.Info("entry unlinked")
		return s.unlink(ctx, entry)
	}

	if entry.MediaType == catalog.MediaTypeMovie {
		return s.relinkMovie(ctx, entry, newID, logger)
	}
	return s.relinkEpisode(ctx, entry, newID, logger)
}

func (s *Service) unlink(ctx context.Context, entry *catalog.Entry) (*catalog.Entry, error) {
	entry.TMDBID = 0
	entry.VoteAverage = 0
	if _, err := s.cat.UpsertEntry(ctx, entry); err != nil {
		return nil, err
	}
	return entry, nil
}

func (s *Service) relinkMovie(ctx context.Context, entry *catalog.Entry, newID int64, logger *slog.Logger) (*catalog.Entry, error) {
	movie, err := s.provider.MovieDetails(ctx, newID)
	if err != nil {
		logger.Warn("movie details unavailable, entry unlinked", logging.Error(err))
		return s.unlink(ctx, entry)
	}

	if movie.Title != "" {
		entry.Title = movie.Title
	}
	entry.TMDBID = movie.ID
	entry.VoteAverage = movie.VoteAverage
	entry.Adult = movie.Adult

	entryID, err := s.cat.UpsertEntry(ctx, entry)
	if err != nil {
		return nil, err
	}
	if err := s.cat.UpsertMetadata(ctx, catalog.Metadata{
		TMDBID:      movie.ID,
		MediaType:   catalog.MediaTypeMovie,
		Title:       movie.Title,
		Overview:    movie.Overview,
		ReleaseDate: movie.ReleaseDate,
	}); err != nil {
		return nil, err
	}
	if err := s.cat.UpsertGenres(ctx, entryID, refsFromGenres(movie.Genres)); err != nil {
		return nil, err
	}
	if err := s.cat.UpsertActors(ctx, entryID, refsFromCast(movie.Credits.Cast)); err != nil {
		return nil, err
	}
	if movie.BelongsToCollection != nil {
		name, overview := movie.BelongsToCollection.Name, ""
		if coll, err := s.provider.CollectionDetails(ctx, movie.BelongsToCollection.ID); err != nil {
			logger.Warn("collection details unavailable", logging.Error(err))
		} else {
			name, overview = coll.Name, coll.Overview
		}
		if _, _, err := s.cat.UpsertGrouping(ctx, entryID, catalog.MediaTypeMovie, movie.BelongsToCollection.ID, name, overview); err != nil {
			return nil, err
		}
	}

	logger.Info("entry relinked", logging.Int64(logging.FieldTMDBID, movie.ID))
	return entry, nil
}

func (s *Service) relinkEpisode(ctx context.Context, entry *catalog.Entry, seriesID int64, logger *slog.Logger) (*catalog.Entry, error) {
	base := strings.TrimSuffix(entry.FileName, filepath.Ext(entry.FileName))
	episode, ok := scanner.ParseEpisode(base)
	if !ok {
		logger.Warn("episode pattern not recognized, entry unlinked")
		return s.unlink(ctx, entry)
	}

	series, err := s.provider.SeriesDetails(ctx, seriesID)
	if err != nil {
		logger.Warn("series details unavailable, entry unlinked", logging.Error(err))
		return s.unlink(ctx, entry)
	}
	detail, err := s.provider.EpisodeDetails(ctx, series.ID, episode.Season, episode.Episode)
	if err != nil {
		logger.Warn("episode details unavailable, entry unlinked", logging.Error(err))
		return s.unlink(ctx, entry)
	}

	entry.Title = composeTitle(series.Name, episode, detail.Name)
	entry.TMDBID = detail.ID
	entry.VoteAverage = detail.VoteAverage
	entry.Adult = series.Adult

	entryID, err := s.cat.UpsertEntry(ctx, entry)
	if err != nil {
		return nil, err
	}
	if err := s.cat.UpsertMetadata(ctx, catalog.Metadata{
		TMDBID:      detail.ID,
		MediaType:   catalog.MediaTypeSeries,
		Title:       detail.Name,
		Overview:    detail.Overview,
		ReleaseDate: detail.AirDate,
	}); err != nil {
		return nil, err
	}
	if _, _, err := s.cat.UpsertGrouping(ctx, entryID, catalog.MediaTypeSeries, series.ID, series.Name, series.Overview); err != nil {
		return nil, err
	}
	if err := s.cat.UpsertGenres(ctx, entryID, refsFromGenres(series.Genres)); err != nil {
		return nil, err
	}
	if err := s.cat.UpsertActors(ctx, entryID, refsFromCast(detail.Credits.Cast, detail.Credits.GuestStars)); err != nil {
		return nil, err
	}

	logger.Info("entry relinked", logging.Int64(logging.FieldTMDBID, detail.ID))
	return entry, nil
}

func composeTitle(seriesName string, episode scanner.EpisodeInfo, episodeName string) string {
	title := fmt.Sprintf("%s: s%02de%03d", seriesName, episode.Season, episode.Episode)
	if episode.Part > 0 {
		title += fmt.Sprintf("p%02d", episode.Part)
	}
	if episodeName != "" {
		title += " " + episodeName
	}
	return title
}

func refsFromGenres(genres []tmdb.Genre) []catalog.Ref {
	refs := make([]catalog.Ref, 0, len(genres))
	for _, genre := range genres {
		refs = append(refs, catalog.Ref{TMDBID: genre.ID, Name: genre.Name})
	}
	return refs
}

func refsFromCast(lists ...[]tmdb.CastMember) []catalog.Ref {
	var refs []catalog.Ref
	for _, list := range lists {
		for _, member := range list {
			refs = append(refs, catalog.Ref{TMDBID: member.ID, Name: member.Name})
		}
	}
	return refs
}
