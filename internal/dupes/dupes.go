// Package dupes flags probable duplicate catalog entries. Detection is a
// pure projection over a loaded snapshot: three frequency tables are
// built and a fixed rule combines them, so the same snapshot always
// yields the same flagged set.
package dupes

import (
	"fmt"

	"reelcat/internal/catalog"
)

// seriesNameBucket collapses every series filename into one shared key.
// Series legitimately reuse generic episode filenames, so a filename
// collision alone must never flag a series entry.
const seriesNameBucket = "\x00series"

// Detect returns the subset of entries considered duplicates, in input
// order. An entry is flagged when another entry shares its
// (title, media type, id) identity AND its filename, or when a nonzero
// TMDB id occurs more than once for the same media type.
func Detect(entries []catalog.Entry) []catalog.Entry {
	titleCounts := make(map[string]int, len(entries))
	nameCounts := make(map[string]int, len(entries))
	idCounts := make(map[string]int, len(entries))

	for _, entry := range entries {
		titleCounts[titleKey(entry)]++
		nameCounts[nameKey(entry)]++
		if entry.TMDBID != 0 {
			idCounts[idKey(entry)]++
		}
	}

	var flagged []catalog.Entry
	for _, entry := range entries {
		byName := titleCounts[titleKey(entry)] > 1 && nameCounts[nameKey(entry)] > 1
		byID := entry.TMDBID != 0 && idCounts[idKey(entry)] > 1
		if byName || byID {
			flagged = append(flagged, entry)
		}
	}
	return flagged
}

func titleKey(entry catalog.Entry) string {
	return fmt.Sprintf("%s|%s|%d", entry.Title, entry.MediaType, entry.TMDBID)
}

func nameKey(entry catalog.Entry) string {
	if entry.MediaType == catalog.MediaTypeSeries {
		return seriesNameBucket
	}
	return entry.FileName
}

func idKey(entry catalog.Entry) string {
	return fmt.Sprintf("%s|%d", entry.MediaType, entry.TMDBID)
}
