package dupes

import (
	"testing"

	"reelcat/internal/catalog"
)

func movie(title, fileName string, tmdbID int64) catalog.Entry {
	return catalog.Entry{Title: title, FileName: fileName, TMDBID: tmdbID, MediaType: catalog.MediaTypeMovie}
}

func episode(title, fileName string, tmdbID int64) catalog.Entry {
	return catalog.Entry{Title: title, FileName: fileName, TMDBID: tmdbID, MediaType: catalog.MediaTypeSeries}
}

func TestDetectSharedTitleAndFileName(t *testing.T) {
	entries := []catalog.Entry{
		movie("Gladiator", "Gladiator.mp4", 0),
		movie("Gladiator", "Gladiator.mp4", 0),
		movie("Gladiator", "Gladiator (2000).mp4", 0),
		movie("Heat", "Gladiator.mp4", 0),
	}

	flagged := Detect(entries)
	if len(flagged) != 2 {
		t.Fatalf("flagged = %d entries, want exactly the two sharing title and filename", len(flagged))
	}
	for _, entry := range flagged {
		if entry.Title != "Gladiator" || entry.FileName != "Gladiator.mp4" {
			t.Fatalf("unexpected flag: %+v", entry)
		}
	}
}

func TestDetectByRepeatedID(t *testing.T) {
	entries := []catalog.Entry{
		movie("Gladiator", "Gladiator.mp4", 98),
		movie("Gladiator Extended", "Gladiator (Extended).mp4", 98),
		movie("Heat", "Heat.mkv", 949),
	}

	flagged := Detect(entries)
	if len(flagged) != 2 {
		t.Fatalf("flagged = %d, want both id-98 entries", len(flagged))
	}
	for _, entry := range flagged {
		if entry.TMDBID != 98 {
			t.Fatalf("unexpected flag: %+v", entry)
		}
	}
}

func TestDetectIgnoresUnmatchedIDs(t *testing.T) {
	entries := []catalog.Entry{
		movie("Gladiator", "a.mp4", 0),
		movie("Heat", "b.mp4", 0),
		movie("The Insider", "c.mp4", 0),
	}
	if flagged := Detect(entries); len(flagged) != 0 {
		t.Fatalf("flagged = %+v, unmatched entries are never duplicates by id", flagged)
	}
}

func TestDetectSeriesFileNamesNeverCollide(t *testing.T) {
	entries := []catalog.Entry{
		episode("Rome: s01e001 The Stolen Eagle", "episode.mkv", 501),
		episode("The Wire: s01e001 The Target", "episode.mkv", 601),
	}
	if flagged := Detect(entries); len(flagged) != 0 {
		t.Fatalf("flagged = %+v, shared episode filenames must not flag series", flagged)
	}
}

func TestDetectSeriesByIdentity(t *testing.T) {
	entries := []catalog.Entry{
		episode("Rome: s01e001 The Stolen Eagle", "a.mkv", 501),
		episode("Rome: s01e001 The Stolen Eagle", "b.mkv", 501),
		episode("Rome: s01e002 How Titus Pullo Brought Down the Republic", "c.mkv", 502),
	}

	flagged := Detect(entries)
	if len(flagged) != 2 {
		t.Fatalf("flagged = %d, want the two copies of the same episode", len(flagged))
	}
}

func TestDetectIsDeterministic(t *testing.T) {
	entries := []catalog.Entry{
		movie("Gladiator", "Gladiator.mp4", 98),
		movie("Gladiator", "Gladiator.mp4", 98),
		movie("Heat", "Heat.mkv", 949),
	}

	first := Detect(entries)
	second := Detect(entries)
	if len(first) != len(second) {
		t.Fatalf("runs disagree: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("runs disagree at %d: %+v vs %+v", i, first[i], second[i])
		}
	}
}
