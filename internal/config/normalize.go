package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeDownload()
	c.normalizeOutput()
	c.normalizePlaylist()
	if err := c.normalizeHistory(); err != nil {
		return err
	}
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	if strings.TrimSpace(c.Paths.OutputDir) == "" {
		if value, ok := os.LookupEnv("YTCS_OUTPUT_DIR"); ok && strings.TrimSpace(value) != "" {
			c.Paths.OutputDir = strings.TrimSpace(value)
		} else {
			c.Paths.OutputDir = defaultOutputDir
		}
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if strings.TrimSpace(c.Paths.StateDir) == "" {
		c.Paths.StateDir = defaultStateDir
	}

	var err error
	if c.Paths.OutputDir, err = expandPath(c.Paths.OutputDir); err != nil {
		return fmt.Errorf("paths.output_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if c.Paths.StateDir, err = expandPath(c.Paths.StateDir); err != nil {
		return fmt.Errorf("paths.state_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeDownload() {
	if len(c.Download.FormatSelectors) == 0 {
		c.Download.FormatSelectors = DefaultFormatSelectors()
		return
	}
	for i, selector := range c.Download.FormatSelectors {
		c.Download.FormatSelectors[i] = strings.TrimSpace(selector)
	}
}

func (c *Config) normalizeOutput() {
	c.Output.FilenameFormat = strings.TrimSpace(c.Output.FilenameFormat)
	if c.Output.FilenameFormat == "" {
		c.Output.FilenameFormat = defaultFilenameFormat
	}
	c.Output.DirectoryFormat = strings.TrimSpace(c.Output.DirectoryFormat)
	if c.Output.DirectoryFormat == "" {
		c.Output.DirectoryFormat = defaultDirectoryFormat
	}
}

func (c *Config) normalizePlaylist() {
	c.Playlist.Behavior = strings.ToLower(strings.TrimSpace(c.Playlist.Behavior))
	c.Playlist.Behavior = strings.ReplaceAll(c.Playlist.Behavior, "-", "_")
	if c.Playlist.Behavior == "" {
		c.Playlist.Behavior = defaultPlaylistBehavior
	}
}

func (c *Config) normalizeHistory() error {
	if strings.TrimSpace(c.History.Path) == "" {
		c.History.Path = filepath.Join(c.Paths.StateDir, defaultHistoryFile)
		return nil
	}
	var err error
	if c.History.Path, err = expandPath(c.History.Path); err != nil {
		return fmt.Errorf("history.path: %w", err)
	}
	return nil
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
