package catalog

import (
	"fmt"
	"math"
	"strings"
)

// MediaType distinguishes movie entries from series episodes.
type MediaType string

const (
	MediaTypeMovie  MediaType = "movie"
	MediaTypeSeries MediaType = "series"
)

// ParseMediaType converts a string into a known MediaType.
func ParseMediaType(value string) (MediaType, bool) {
	switch MediaType(strings.ToLower(strings.TrimSpace(value))) {
	case MediaTypeMovie:
		return MediaTypeMovie, true
	case MediaTypeSeries:
		return MediaTypeSeries, true
	default:
		return "", false
	}
}

// Entry describes a single local video file and its derived and fetched
// attributes. TMDBID 0 means the entry is unmatched.
type Entry struct {
	ID              int64
	Title           string
	FileName        string
	RelativePath    string
	FileSizeBytes   int64
	FileSizeMB      float64
	Resolution      string
	VideoCodec      string
	AudioTrackCount int
	AudioChannels   string
	AudioLayouts    string
	AudioLanguages  string
	Duration        string
	FileExists      bool
	TMDBID          int64
	VoteAverage     float64
	MediaType       MediaType
	Adult           bool
}

// Metadata is the remote description of one title or episode, keyed by
// (TMDBID, MediaType).
type Metadata struct {
	TMDBID      int64
	MediaType   MediaType
	Title       string
	Overview    string
	ReleaseDate string
}

// Year returns the four-digit year prefix of the release date, or 0.
func (m Metadata) Year() int {
	if len(m.ReleaseDate) < 4 {
		return 0
	}
	var year int
	if _, err := fmt.Sscanf(m.ReleaseDate[:4], "%d", &year); err != nil {
		return 0
	}
	return year
}

// Grouping is the series or movie-collection umbrella an entry may belong
// to. At most one row exists per (TMDBID, MediaType).
type Grouping struct {
	ID        int64
	TMDBID    int64
	MediaType MediaType
	Name      string
	Overview  string
}

// Ref is a shared dictionary item (genre or actor) keyed by its remote id.
type Ref struct {
	TMDBID int64
	Name   string
}

// SizeMB converts a byte count to mebibytes rounded to two decimals.
func SizeMB(bytes int64) float64 {
	return math.Round(float64(bytes)/(1<<20)*100) / 100
}

// FormatDuration renders seconds as "h:mm:ss" text.
func FormatDuration(seconds float64) string {
	if seconds < 0 || math.IsNaN(seconds) {
		seconds = 0
	}
	total := int64(math.Round(seconds))
	return fmt.Sprintf("%d:%02d:%02d", total/3600, (total%3600)/60, total%60)
}
