package config

const (
	defaultDataDir              = "~/.local/share/reelcat"
	defaultLogDir               = "~/.local/share/reelcat/logs"
	defaultMountsDir            = "/media"
	defaultTMDBBaseURL          = "https://api.themoviedb.org/3"
	defaultTMDBLanguage         = "en-US"
	defaultLogFormat            = "console"
	defaultLogLevel             = "info"
	defaultPlaceholderExtension = "mp4"
	defaultFFprobeBinary        = "ffprobe"
)

func defaultExtensions() []string {
	return []string{"mp4", "m4v", "mkv", "mpeg", "mpg", "avi", "webp", "ts"}
}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir: defaultDataDir,
			LogDir:  defaultLogDir,
		},
		Library: Library{
			MountsDir: defaultMountsDir,
		},
		TMDB: TMDB{
			BaseURL:  defaultTMDBBaseURL,
			Language: defaultTMDBLanguage,
		},
		Scan: Scan{
			Extensions:       defaultExtensions(),
			DefaultExtension: defaultPlaceholderExtension,
			FFprobeBinary:    defaultFFprobeBinary,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
