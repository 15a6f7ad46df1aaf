package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateLibrary(); err != nil {
		return err
	}
	if err := c.validateTMDB(); err != nil {
		return err
	}
	if err := c.validateScan(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validatePaths() error {
	if strings.TrimSpace(c.Paths.DataDir) == "" {
		return errors.New("paths.data_dir must be set")
	}
	return nil
}

func (c *Config) validateLibrary() error {
	movies := c.Library.MoviesDir != "" || c.Library.MoviesVolumeLabel != ""
	series := c.Library.SeriesDir != "" || c.Library.SeriesVolumeLabel != ""
	if !movies && !series {
		return errors.New("library: at least one of movies or series root must be configured")
	}
	if c.Library.MoviesDir != "" && c.Library.MoviesVolumeLabel != "" {
		return errors.New("library: movies_dir and movies_volume_label are mutually exclusive")
	}
	if c.Library.SeriesDir != "" && c.Library.SeriesVolumeLabel != "" {
		return errors.New("library: series_dir and series_volume_label are mutually exclusive")
	}
	if (c.Library.MoviesVolumeLabel != "" || c.Library.SeriesVolumeLabel != "") && c.Library.MountsDir == "" {
		return errors.New("library.mounts_dir must be set when volume labels are used")
	}
	return nil
}

func (c *Config) validateTMDB() error {
	// An empty API key is allowed: scans then produce unmatched records.
	if c.TMDB.BaseURL == "" {
		return errors.New("tmdb.base_url must be set")
	}
	return nil
}

func (c *Config) validateScan() error {
	if len(c.Scan.Extensions) == 0 {
		return errors.New("scan.extensions must not be empty")
	}
	for _, ext := range c.Scan.Extensions {
		if strings.TrimSpace(strings.TrimPrefix(ext, ".")) == "" {
			return fmt.Errorf("scan.extensions contains an empty entry")
		}
	}
	if c.Scan.MaxFilesPerRun < 0 {
		return errors.New("scan.max_files_per_run must not be negative")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch strings.ToLower(c.Logging.Format) {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	return nil
}
