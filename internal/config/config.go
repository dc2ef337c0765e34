package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	OutputDir string `toml:"output_dir"`
	LogDir    string `toml:"log_dir"`
	StateDir  string `toml:"state_dir"`
}

// Download contains settings for the external downloader.
type Download struct {
	TimeoutSeconds  int      `toml:"timeout_seconds"`
	AudioQuality    int      `toml:"audio_quality"`
	FormatSelectors []string `toml:"format_selectors"`
	MaxRetries      int      `toml:"max_retries"`
}

// Silence controls whole-file silence detection used when no textual chapters exist.
type Silence struct {
	ThresholdDB float64 `toml:"threshold_db"`
	MinDuration float64 `toml:"min_duration"`
}

// Refinement controls boundary refinement against detected silence.
type Refinement struct {
	Enabled       bool    `toml:"enabled"`
	WindowSeconds float64 `toml:"window_seconds"`
	ThresholdDB   float64 `toml:"threshold_db"`
	MinDuration   float64 `toml:"min_duration"`
}

// Output controls naming and placement of split tracks.
type Output struct {
	FilenameFormat    string `toml:"filename_format"`
	DirectoryFormat   string `toml:"directory_format"`
	DownloadCover     bool   `toml:"download_cover"`
	OverwriteExisting bool   `toml:"overwrite_existing"`
	KeepSourceAudio   bool   `toml:"keep_source_audio"`
}

// Playlist controls how playlist URLs are handled.
type Playlist struct {
	Behavior  string `toml:"behavior"`
	CreateM3U bool   `toml:"create_m3u"`
}

// History controls the processed-video record.
type History struct {
	Enabled bool   `toml:"enabled"`
	Path    string `toml:"path"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for ytcs.
//
// Configuration sections by subsystem:
//   - Paths: output, log, and state directories
//   - Download: yt-dlp timeout, bitrate, and ordered format selectors
//   - Silence: whole-file silence detection thresholds
//   - Refinement: chapter boundary refinement window and thresholds
//   - Output: file and directory naming, cover art, overwrite policy
//   - Playlist: playlist handling mode and M3U output
//   - History: SQLite record of processed videos
//   - Logging: log format and level
type Config struct {
	Paths      Paths      `toml:"paths"`
	Download   Download   `toml:"download"`
	Silence    Silence    `toml:"silence"`
	Refinement Refinement `toml:"refinement"`
	Output     Output     `toml:"output"`
	Playlist   Playlist   `toml:"playlist"`
	History    History    `toml:"history"`
	Logging    Logging    `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigPath)
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath(defaultConfigPath)
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("ytcs.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the log and state directories. OutputDir is created
// on a best-effort basis so commands that never write tracks still work when
// the music directory lives on storage that is offline.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.LogDir, c.Paths.StateDir} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	if strings.TrimSpace(c.Paths.OutputDir) != "" {
		_ = os.MkdirAll(c.Paths.OutputDir, 0o755)
	}
	return nil
}

// YtDlpBinary returns the yt-dlp executable name.
func (c *Config) YtDlpBinary() string {
	return "yt-dlp"
}

// FFmpegBinary returns the ffmpeg executable name used for analysis and splitting.
func (c *Config) FFmpegBinary() string {
	return "ffmpeg"
}

// FFprobeBinary returns the ffprobe executable name used to inspect downloaded audio.
func (c *Config) FFprobeBinary() string {
	return "ffprobe"
}

// DownloadTimeout returns the per-attempt downloader timeout; zero disables it.
func (c *Config) DownloadTimeout() time.Duration {
	if c.Download.TimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(c.Download.TimeoutSeconds) * time.Second
}

// FormatSelectors returns a fresh copy of the configured selector list. An
// empty entry stands for the unconstrained attempt.
func (c *Config) FormatSelectors() []string {
	out := make([]string, len(c.Download.FormatSelectors))
	copy(out, c.Download.FormatSelectors)
	return out
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
