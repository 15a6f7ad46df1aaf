// Package config loads, defaults, and validates the TOML configuration
// that drives the catalog: storage locations, media roots, the scan
// allow-list, TMDB credentials, and logging output.
package config
