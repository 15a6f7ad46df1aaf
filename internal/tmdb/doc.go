// Package tmdb provides the metadata provider client used to enrich
// catalog entries: title search plus movie, series, episode, and
// collection detail fetches against The Movie Database API.
//
// Each endpoint decodes into an explicit response type; callers never see
// raw JSON. A 404 from the API surfaces as ErrNotFound so the engine can
// degrade to an unmatched record instead of aborting.
package tmdb
