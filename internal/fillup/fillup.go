// Package fillup materializes placeholder catalog entries for the gaps
// in a grouping: episodes a series canonically has but the library lacks,
// and movies missing from a collection. Placeholders carry FileExists
// false and zero size but are otherwise written exactly like scanned
// entries, so gaps show up in every catalog view.
package fillup

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"reelcat/internal/catalog"
	"reelcat/internal/config"
	"reelcat/internal/logging"
	"reelcat/internal/scanner"
	"reelcat/internal/services"
	"reelcat/internal/tmdb"
)

// Service completes groupings against the metadata provider.
type Service struct {
	cfg      *config.Config
	cat      *catalog.Catalog
	provider tmdb.Provider
	logger   *slog.Logger
}

// New assembles a Service. A nil logger falls back to a no-op logger.
func New(cfg *config.Config, cat *catalog.Catalog, provider tmdb.Provider, logger *slog.Logger) *Service {
	return &Service{
		cfg:      cfg,
		cat:      cat,
		provider: provider,
		logger:   logging.NewComponentLogger(logger, "fillup"),
	}
}

// Summary reports what one fill-up did.
type Summary struct {
	Created int
}

// FillUp completes the grouping identified by groupingID.
func (s *Service) FillUp(ctx context.Context, groupingID int64) (*Summary, error) {
	grouping, err := s.cat.GroupingByID(ctx, groupingID)
	if err != nil {
		return nil, services.Wrap(services.ErrTransient, "fillup", "load grouping", "", err)
	}
	if grouping == nil {
		return nil, services.Wrap(services.ErrNotFound, "fillup", "load grouping", "no such grouping", nil)
	}
	if grouping.TMDBID == 0 {
		return nil, services.Wrap(services.ErrValidation, "fillup", "load grouping", "grouping has no remote id", nil)
	}

	members, err := s.cat.EntriesByGrouping(ctx, grouping.ID)
	if err != nil {
		return nil, services.Wrap(services.ErrTransient, "fillup", "load members", "", err)
	}

	logger := s.logger.With(
		logging.Int64("grouping_id", grouping.ID),
		logging.Int64(logging.FieldTMDBID, grouping.TMDBID),
		logging.String(logging.FieldMediaType, string(grouping.MediaType)))

	if grouping.MediaType == catalog.MediaTypeSeries {
		return s.fillSeries(ctx, grouping, members, logger)
	}
	return s.fillCollection(ctx, grouping, members, logger)
}

type seasonEpisode struct {
	season  int
	episode int
}

func (s *Service) fillSeries(ctx context.Context, grouping *catalog.Grouping, members []catalog.Entry, logger *slog.Logger) (*Summary, error) {
	series, err := s.provider.SeriesDetails(ctx, grouping.TMDBID)
	if err != nil {
		return nil, services.Wrap(services.ErrExternalTool, "fillup", "series details", "", err)
	}

	present := make(map[seasonEpisode]struct{}, len(members))
	for _, member := range members {
		base := strings.TrimSuffix(member.FileName, filepath.Ext(member.FileName))
		if info, ok := scanner.ParseEpisode(base); ok {
			present[seasonEpisode{season: info.Season, episode: info.Episode}] = struct{}{}
		}
	}

	relativePath := placeholderPath(members, grouping.Name)
	summary := &Summary{}
	for _, season := range series.Seasons {
		// Season 0 holds specials and extras; the canonical roster excludes it.
		if season.SeasonNumber <= 0 {
			continue
		}
		for episodeNumber := 1; episodeNumber <= season.EpisodeCount; episodeNumber++ {
			if err := ctx.Err(); err != nil {
				return summary, err
			}
			key := seasonEpisode{season: season.SeasonNumber, episode: episodeNumber}
			if _, ok := present[key]; ok {
				continue
			}
			if err := s.placeEpisode(ctx, grouping, series, relativePath, key, logger); err != nil {
				logger.Error("placeholder failed",
					logging.Int("season", key.season),
					logging.Int("episode", key.episode),
					logging.Error(err))
				continue
			}
			summary.Created++
		}
	}

	logger.Info("fill-up complete", logging.Int("created", summary.Created))
	return summary, nil
}

func (s *Service) placeEpisode(ctx context.Context, grouping *catalog.Grouping, series *tmdb.Series, relativePath string, key seasonEpisode, logger *slog.Logger) error {
	detail, err := s.provider.EpisodeDetails(ctx, series.ID, key.season, key.episode)
	if err != nil {
		return err
	}

	label := fmt.Sprintf("s%02de%03d", key.season, key.episode)
	fileName := sanitizeFileName(fmt.Sprintf("%s %s.%s", label, detail.Name, s.cfg.Scan.DefaultExtension))
	title := fmt.Sprintf("%s: %s", series.Name, label)
	if detail.Name != "" {
		title += " " + detail.Name
	}

	entry := catalog.Entry{
		Title:         title,
		FileName:      fileName,
		RelativePath:  relativePath,
		FileSizeBytes: 0,
		Duration:      catalog.FormatDuration(0),
		FileExists:    false,
		TMDBID:        detail.ID,
		VoteAverage:   detail.VoteAverage,
		MediaType:     catalog.MediaTypeSeries,
		Adult:         series.Adult,
	}
	entryID, err := s.cat.UpsertEntry(ctx, &entry)
	if err != nil {
		return err
	}
	if err := s.cat.UpsertMetadata(ctx, catalog.Metadata{
		TMDBID:      detail.ID,
		MediaType:   catalog.MediaTypeSeries,
		Title:       detail.Name,
		Overview:    detail.Overview,
		ReleaseDate: detail.AirDate,
	}); err != nil {
		return err
	}
	if _, _, err := s.cat.UpsertGrouping(ctx, entryID, catalog.MediaTypeSeries, grouping.TMDBID, grouping.Name, grouping.Overview); err != nil {
		return err
	}
	if err := s.cat.UpsertActors(ctx, entryID, castRefs(detail.Credits.Cast, detail.Credits.GuestStars)); err != nil {
		return err
	}

	logger.Info("placeholder created",
		logging.Int64(logging.FieldEntryID, entryID),
		logging.String(logging.FieldFile, fileName))
	return nil
}

func (s *Service) fillCollection(ctx context.Context, grouping *catalog.Grouping, members []catalog.Entry, logger *slog.Logger) (*Summary, error) {
	collection, err := s.provider.CollectionDetails(ctx, grouping.TMDBID)
	if err != nil {
		return nil, services.Wrap(services.ErrExternalTool, "fillup", "collection details", "", err)
	}

	present := make(map[int64]struct{}, len(members))
	for _, member := range members {
		if member.TMDBID != 0 {
			present[member.TMDBID] = struct{}{}
		}
	}

	relativePath := placeholderPath(members, grouping.Name)
	summary := &Summary{}
	for _, part := range collection.Parts {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		if _, ok := present[part.ID]; ok {
			continue
		}
		if err := s.placeMovie(ctx, grouping, relativePath, part.ID, logger); err != nil {
			logger.Error("placeholder failed",
				logging.Int64(logging.FieldTMDBID, part.ID),
				logging.Error(err))
			continue
		}
		summary.Created++
	}

	logger.Info("fill-up complete", logging.Int("created", summary.Created))
	return summary, nil
}

func (s *Service) placeMovie(ctx context.Context, grouping *catalog.Grouping, relativePath string, movieID int64, logger *slog.Logger) error {
	movie, err := s.provider.MovieDetails(ctx, movieID)
	if err != nil {
		return err
	}

	fileName := sanitizeFileName(fmt.Sprintf("%s.%s", movie.Title, s.cfg.Scan.DefaultExtension))
	entry := catalog.Entry{
		Title:         movie.Title,
		FileName:      fileName,
		RelativePath:  relativePath,
		FileSizeBytes: 0,
		Duration:      catalog.FormatDuration(0),
		FileExists:    false,
		TMDBID:        movie.ID,
		VoteAverage:   movie.VoteAverage,
		MediaType:     catalog.MediaTypeMovie,
		Adult:         movie.Adult,
	}
	entryID, err := s.cat.UpsertEntry(ctx, &entry)
	if err != nil {
		return err
	}
	if err := s.cat.UpsertMetadata(ctx, catalog.Metadata{
		TMDBID:      movie.ID,
		MediaType:   catalog.MediaTypeMovie,
		Title:       movie.Title,
		Overview:    movie.Overview,
		ReleaseDate: movie.ReleaseDate,
	}); err != nil {
		return err
	}
	if _, _, err := s.cat.UpsertGrouping(ctx, entryID, catalog.MediaTypeMovie, grouping.TMDBID, grouping.Name, grouping.Overview); err != nil {
		return err
	}
	if err := s.cat.UpsertGenres(ctx, entryID, genreRefs(movie.Genres)); err != nil {
		return err
	}
	if err := s.cat.UpsertActors(ctx, entryID, castRefs(movie.Credits.Cast)); err != nil {
		return err
	}

	logger.Info("placeholder created",
		logging.Int64(logging.FieldEntryID, entryID),
		logging.String(logging.FieldFile, fileName))
	return nil
}

// placeholderPath reuses the directory of an existing member so the
// placeholder sorts next to its siblings; an empty grouping falls back
// to a directory named after the grouping.
func placeholderPath(members []catalog.Entry, groupingName string) string {
	if len(members) > 0 {
		return members[0].RelativePath
	}
	return sanitizeFileName(groupingName)
}

func sanitizeFileName(name string) string {
	var out strings.Builder
	out.Grow(len(name))
	for _, r := range name {
		if r < ' ' || strings.ContainsRune(`/\:*?"<>|`, r) {
			out.WriteRune('_')
			continue
		}
		out.WriteRune(r)
	}
	return out.String()
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
