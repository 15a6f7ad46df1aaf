package testsupport

import (
	"path/filepath"
	"testing"

	"reelcat/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.DataDir = filepath.Join(base, "data")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.Library.MoviesDir = filepath.Join(base, "movies")
	cfg.Library.SeriesDir = filepath.Join(base, "series")
	cfg.Library.MountsDir = filepath.Join(base, "mounts")
	cfg.TMDB.APIKey = "test"

	for _, opt := range opts {
		opt(&cfg)
	}

	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("ensure directories: %v", err)
	}
	return &cfg
}

// WithTMDBKey sets the TMDB API key on the test config. An empty key
// disables remote matching.
func WithTMDBKey(key string) ConfigOption {
	return func(c *config.Config) {
		c.TMDB.APIKey = key
	}
}

// WithMaxFilesPerRun caps the number of new files a scan may record.
func WithMaxFilesPerRun(limit int) ConfigOption {
	return func(c *config.Config) {
		c.Scan.MaxFilesPerRun = limit
	}
}
