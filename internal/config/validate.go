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
	if err := c.validateDownload(); err != nil {
		return err
	}
	if err := c.validateSilence(); err != nil {
		return err
	}
	if err := c.validateRefinement(); err != nil {
		return err
	}
	if err := c.validateOutput(); err != nil {
		return err
	}
	if err := c.validatePlaylist(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validatePaths() error {
	if strings.TrimSpace(c.Paths.OutputDir) == "" {
		return errors.New("paths.output_dir must be set")
	}
	return nil
}

func (c *Config) validateDownload() error {
	if c.Download.TimeoutSeconds < 0 {
		return errors.New("download.timeout_seconds must be zero or positive")
	}
	switch c.Download.AudioQuality {
	case 128, 192, 320:
	default:
		return fmt.Errorf("download.audio_quality must be 128, 192, or 320 (got %d)", c.Download.AudioQuality)
	}
	if len(c.Download.FormatSelectors) == 0 {
		return errors.New("download.format_selectors must list at least one attempt")
	}
	seen := make(map[string]struct{}, len(c.Download.FormatSelectors))
	for _, selector := range c.Download.FormatSelectors {
		if _, ok := seen[selector]; ok {
			return fmt.Errorf("download.format_selectors contains duplicate entry %q", selector)
		}
		seen[selector] = struct{}{}
	}
	if c.Download.MaxRetries < 0 || c.Download.MaxRetries > 10 {
		return errors.New("download.max_retries must be between 0 and 10")
	}
	return nil
}

func (c *Config) validateSilence() error {
	if c.Silence.ThresholdDB >= 0 {
		return errors.New("silence.threshold_db must be negative")
	}
	if c.Silence.MinDuration <= 0 {
		return errors.New("silence.min_duration must be positive")
	}
	return nil
}

func (c *Config) validateRefinement() error {
	if c.Refinement.WindowSeconds <= 0 || c.Refinement.WindowSeconds > 30 {
		return errors.New("refinement.window_seconds must be between 0 and 30")
	}
	if c.Refinement.ThresholdDB >= 0 {
		return errors.New("refinement.threshold_db must be negative")
	}
	if c.Refinement.MinDuration <= 0 {
		return errors.New("refinement.min_duration must be positive")
	}
	return nil
}

func (c *Config) validateOutput() error {
	if !strings.Contains(c.Output.FilenameFormat, "%t") && !strings.Contains(c.Output.FilenameFormat, "%n") {
		return errors.New("output.filename_format must contain %t or %n")
	}
	if strings.ContainsAny(c.Output.FilenameFormat, `/\`) {
		return errors.New("output.filename_format must not contain path separators")
	}
	return nil
}

func (c *Config) validatePlaylist() error {
	switch c.Playlist.Behavior {
	case PlaylistAsk, PlaylistVideoOnly, PlaylistPlaylistOnly:
		return nil
	default:
		return fmt.Errorf("playlist.behavior must be one of %s, %s, %s (got %q)",
			PlaylistAsk, PlaylistVideoOnly, PlaylistPlaylistOnly, c.Playlist.Behavior)
	}
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json (got %q)", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn, or error (got %q)", c.Logging.Level)
	}
	return nil
}
