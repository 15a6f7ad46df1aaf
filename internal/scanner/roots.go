package scanner

import (
	"os"
	"path/filepath"
	"strings"

	"reelcat/internal/config"
)

// RootConfig addresses one media root either by a fixed directory or by
// a volume label resolved under MountsDir.
type RootConfig struct {
	Path        string
	VolumeLabel string
	MountsDir   string
}

// Root is the resolved form of a RootConfig. Available is false when the
// directory does not currently exist; callers must then skip both
// existence checks and discovery for this root.
type Root struct {
	Path      string
	Available bool
}

// ResolveRoot resolves cfg to a concrete directory and probes its
// availability. It holds no cached state; callers re-resolve per run.
func ResolveRoot(cfg RootConfig) Root {
	path := strings.TrimSpace(cfg.Path)
	if path == "" && cfg.VolumeLabel != "" {
		path = filepath.Join(cfg.MountsDir, cfg.VolumeLabel)
	}
	if path == "" {
		return Root{}
	}
	info, err := os.Stat(path)
	if err != nil || !info.IsDir() {
		return Root{Path: path}
	}
	return Root{Path: path, Available: true}
}

// MovieRoot resolves the configured movies root.
func MovieRoot(cfg *config.Config) Root {
	return ResolveRoot(RootConfig{
		Path:        cfg.Library.MoviesDir,
		VolumeLabel: cfg.Library.MoviesVolumeLabel,
		MountsDir:   cfg.Library.MountsDir,
	})
}

// SeriesRoot resolves the configured series root.
func SeriesRoot(cfg *config.Config) Root {
	return ResolveRoot(RootConfig{
		Path:        cfg.Library.SeriesDir,
		VolumeLabel: cfg.Library.SeriesVolumeLabel,
		MountsDir:   cfg.Library.MountsDir,
	})
}
