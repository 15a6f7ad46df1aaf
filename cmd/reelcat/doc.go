// Command reelcat maintains a local catalog of movie and series files:
// scanning media roots, enriching entries from TMDB, listing and
// de-duplicating the catalog, reassigning identities, and filling gaps
// in series and collections with placeholder entries.
package main
