package scanner

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// NameInfo is the result of parsing a movie filename or a series folder
// name. TMDBID 0 means no id hint was present.
type NameInfo struct {
	Title  string
	Year   int
	TMDBID int64
}

// EpisodeInfo is the result of parsing an episode filename. Part is 0
// when the file is not a multi-part episode.
type EpisodeInfo struct {
	Season  int
	Episode int
	Part    int
	Title   string
}

var (
	yearToken    = regexp.MustCompile(`\((\d{4})\)`)
	idHintToken  = regexp.MustCompile(`(?i)\[TMDBID=(\d+)\]`)
	episodeToken = regexp.MustCompile(`(?i)^s(\d+)e(\d+)(?:p(\d+))?\s*(.*)$`)
)

// ParseName extracts title, optional (YYYY) year, and optional [TMDBID=n]
// hint from name. The two tokens may appear in either order; whatever
// remains, trimmed, is the title.
func ParseName(name string) NameInfo {
	info := NameInfo{}

	if m := yearToken.FindStringSubmatch(name); m != nil {
		if year, err := strconv.Atoi(m[1]); err == nil {
			info.Year = year
		}
		name = strings.Replace(name, m[0], " ", 1)
	}
	if m := idHintToken.FindStringSubmatch(name); m != nil {
		if id, err := strconv.ParseInt(m[1], 10, 64); err == nil {
			info.TMDBID = id
		}
		name = strings.Replace(name, m[0], " ", 1)
	}

	info.Title = strings.Join(strings.Fields(name), " ")
	if info.Title == "" || !strings.Contains(info.Title, " ") && strings.ContainsAny(info.Title, "._") {
		// Rip-style names use dots or underscores instead of spaces.
		info.Title = normalizeTitle(name)
	}
	return info
}

// ParseEpisode matches the `s{season}e{episode}[p{part}] {title}`
// convention. It reports false when name does not follow it.
func ParseEpisode(name string) (EpisodeInfo, bool) {
	m := episodeToken.FindStringSubmatch(name)
	if m == nil {
		return EpisodeInfo{}, false
	}
	info := EpisodeInfo{Title: strings.TrimSpace(m[4])}
	var err error
	if info.Season, err = strconv.Atoi(m[1]); err != nil {
		return EpisodeInfo{}, false
	}
	if info.Episode, err = strconv.Atoi(m[2]); err != nil {
		return EpisodeInfo{}, false
	}
	if m[3] != "" {
		if info.Part, err = strconv.Atoi(m[3]); err != nil {
			return EpisodeInfo{}, false
		}
	}
	return info, true
}

// normalizeTitle rewrites separator-heavy names into spaced, title-cased
// text, and salvages a placeholder when nothing readable remains.
func normalizeTitle(name string) string {
	var cleaned strings.Builder
	prevSpace := false
	for _, r := range name {
		switch {
		case unicode.IsLetter(r) || unicode.IsNumber(r):
			cleaned.WriteRune(r)
			prevSpace = false
		case unicode.IsSpace(r) || r == '-' || r == '_' || r == '.':
			if !prevSpace {
				cleaned.WriteRune(' ')
				prevSpace = true
			}
		}
	}
	title := strings.TrimSpace(cleaned.String())
	if title == "" {
		return "Unknown"
	}
	return cases.Title(language.Und).String(title)
}
