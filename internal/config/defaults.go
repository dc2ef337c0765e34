package config

const (
	defaultConfigPath            = "~/.config/ytcs/config.toml"
	defaultOutputDir             = "~/Music"
	defaultLogDir                = "~/.local/share/ytcs/logs"
	defaultStateDir              = "~/.local/share/ytcs"
	defaultHistoryFile           = "history.db"
	defaultDownloadTimeout       = 600
	defaultAudioQuality          = 192
	defaultMaxRetries            = 3
	defaultSilenceThresholdDB    = -30.0
	defaultSilenceMinDuration    = 2.0
	defaultRefinementWindow      = 5.0
	defaultRefinementThresholdDB = -35.0
	defaultRefinementMinDuration = 1.5
	defaultFilenameFormat        = "%n - %t"
	defaultDirectoryFormat       = "%a - %A"
	defaultPlaylistBehavior      = PlaylistAsk
	defaultLogFormat             = "console"
	defaultLogLevel              = "info"
)

// Playlist behaviors.
const (
	PlaylistAsk          = "ask"
	PlaylistVideoOnly    = "video_only"
	PlaylistPlaylistOnly = "playlist_only"
)

// DefaultFormatSelectors lists the downloader format attempts in order. The
// trailing empty entry means "omit -f" so yt-dlp picks a format itself.
func DefaultFormatSelectors() []string {
	return []string{"bestaudio[ext=m4a]/bestaudio", "140", "bestaudio", ""}
}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			OutputDir: defaultOutputDir,
			LogDir:    defaultLogDir,
			StateDir:  defaultStateDir,
		},
		Download: Download{
			TimeoutSeconds:  defaultDownloadTimeout,
			AudioQuality:    defaultAudioQuality,
			FormatSelectors: DefaultFormatSelectors(),
			MaxRetries:      defaultMaxRetries,
		},
		Silence: Silence{
			ThresholdDB: defaultSilenceThresholdDB,
			MinDuration: defaultSilenceMinDuration,
		},
		Refinement: Refinement{
			Enabled:       true,
			WindowSeconds: defaultRefinementWindow,
			ThresholdDB:   defaultRefinementThresholdDB,
			MinDuration:   defaultRefinementMinDuration,
		},
		Output: Output{
			FilenameFormat:  defaultFilenameFormat,
			DirectoryFormat: defaultDirectoryFormat,
			DownloadCover:   true,
		},
		Playlist: Playlist{
			Behavior: defaultPlaylistBehavior,
		},
		History: History{
			Enabled: true,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
