package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// Entry is a flattened key/value view of a configuration setting.
type Entry struct {
	Key   string
	Value string
}

type field struct {
	key string
	get func(*Config) string
	set func(*Config, string) error
}

var fields = []field{
	{"paths.output_dir", func(c *Config) string { return c.Paths.OutputDir }, setString(func(c *Config) *string { return &c.Paths.OutputDir })},
	{"paths.log_dir", func(c *Config) string { return c.Paths.LogDir }, setString(func(c *Config) *string { return &c.Paths.LogDir })},
	{"paths.state_dir", func(c *Config) string { return c.Paths.StateDir }, setString(func(c *Config) *string { return &c.Paths.StateDir })},
	{"download.timeout_seconds", func(c *Config) string { return strconv.Itoa(c.Download.TimeoutSeconds) }, setInt(func(c *Config) *int { return &c.Download.TimeoutSeconds })},
	{"download.audio_quality", func(c *Config) string { return strconv.Itoa(c.Download.AudioQuality) }, setInt(func(c *Config) *int { return &c.Download.AudioQuality })},
	{"download.format_selectors", func(c *Config) string { return formatSelectorList(c.Download.FormatSelectors) }, setSelectors},
	{"download.max_retries", func(c *Config) string { return strconv.Itoa(c.Download.MaxRetries) }, setInt(func(c *Config) *int { return &c.Download.MaxRetries })},
	{"silence.threshold_db", func(c *Config) string { return formatFloat(c.Silence.ThresholdDB) }, setFloat(func(c *Config) *float64 { return &c.Silence.ThresholdDB })},
	{"silence.min_duration", func(c *Config) string { return formatFloat(c.Silence.MinDuration) }, setFloat(func(c *Config) *float64 { return &c.Silence.MinDuration })},
	{"refinement.enabled", func(c *Config) string { return strconv.FormatBool(c.Refinement.Enabled) }, setBool(func(c *Config) *bool { return &c.Refinement.Enabled })},
	{"refinement.window_seconds", func(c *Config) string { return formatFloat(c.Refinement.WindowSeconds) }, setFloat(func(c *Config) *float64 { return &c.Refinement.WindowSeconds })},
	{"refinement.threshold_db", func(c *Config) string { return formatFloat(c.Refinement.ThresholdDB) }, setFloat(func(c *Config) *float64 { return &c.Refinement.ThresholdDB })},
	{"refinement.min_duration", func(c *Config) string { return formatFloat(c.Refinement.MinDuration) }, setFloat(func(c *Config) *float64 { return &c.Refinement.MinDuration })},
	{"output.filename_format", func(c *Config) string { return c.Output.FilenameFormat }, setString(func(c *Config) *string { return &c.Output.FilenameFormat })},
	{"output.directory_format", func(c *Config) string { return c.Output.DirectoryFormat }, setString(func(c *Config) *string { return &c.Output.DirectoryFormat })},
	{"output.download_cover", func(c *Config) string { return strconv.FormatBool(c.Output.DownloadCover) }, setBool(func(c *Config) *bool { return &c.Output.DownloadCover })},
	{"output.overwrite_existing", func(c *Config) string { return strconv.FormatBool(c.Output.OverwriteExisting) }, setBool(func(c *Config) *bool { return &c.Output.OverwriteExisting })},
	{"output.keep_source_audio", func(c *Config) string { return strconv.FormatBool(c.Output.KeepSourceAudio) }, setBool(func(c *Config) *bool { return &c.Output.KeepSourceAudio })},
	{"playlist.behavior", func(c *Config) string { return c.Playlist.Behavior }, setString(func(c *Config) *string { return &c.Playlist.Behavior })},
	{"playlist.create_m3u", func(c *Config) string { return strconv.FormatBool(c.Playlist.CreateM3U) }, setBool(func(c *Config) *bool { return &c.Playlist.CreateM3U })},
	{"history.enabled", func(c *Config) string { return strconv.FormatBool(c.History.Enabled) }, setBool(func(c *Config) *bool { return &c.History.Enabled })},
	{"history.path", func(c *Config) string { return c.History.Path }, setString(func(c *Config) *string { return &c.History.Path })},
	{"logging.format", func(c *Config) string { return c.Logging.Format }, setString(func(c *Config) *string { return &c.Logging.Format })},
	{"logging.level", func(c *Config) string { return c.Logging.Level }, setString(func(c *Config) *string { return &c.Logging.Level })},
}

// Keys lists every settable configuration key in display order.
func Keys() []string {
	keys := make([]string, 0, len(fields))
	for _, f := range fields {
		keys = append(keys, f.key)
	}
	return keys
}

// Entries returns the current configuration flattened into key/value pairs.
func (c *Config) Entries() []Entry {
	entries := make([]Entry, 0, len(fields))
	for _, f := range fields {
		entries = append(entries, Entry{Key: f.key, Value: f.get(c)})
	}
	return entries
}

// Get returns the string form of a single key.
func (c *Config) Get(key string) (string, error) {
	f, ok := lookupField(key)
	if !ok {
		return "", fmt.Errorf("unknown config key %q", key)
	}
	return f.get(c), nil
}

// Set parses value according to the key's type and applies it. The config is
// normalized and validated afterwards; on failure the previous state is restored.
func (c *Config) Set(key, value string) error {
	f, ok := lookupField(key)
	if !ok {
		return fmt.Errorf("unknown config key %q", key)
	}
	previous := c.clone()
	if err := f.set(c, strings.TrimSpace(value)); err != nil {
		return fmt.Errorf("%s: %w", f.key, err)
	}
	if err := c.normalize(); err != nil {
		*c = previous
		return err
	}
	if err := c.Validate(); err != nil {
		*c = previous
		return err
	}
	return nil
}

// Save writes the configuration as TOML to path, replacing any existing file.
func (c *Config) Save(path string) error {
	data, err := toml.Marshal(c)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("replace config: %w", err)
	}
	return nil
}

// Reset writes repository defaults to path.
func Reset(path string) (*Config, error) {
	cfg := Default()
	if err := cfg.normalize(); err != nil {
		return nil, err
	}
	if err := cfg.Save(path); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) clone() Config {
	cp := *c
	cp.Download.FormatSelectors = append([]string(nil), c.Download.FormatSelectors...)
	return cp
}

func lookupField(key string) (field, bool) {
	key = strings.ToLower(strings.TrimSpace(key))
	for _, f := range fields {
		if f.key == key {
			return f, true
		}
	}
	return field{}, false
}

func setString(target func(*Config) *string) func(*Config, string) error {
	return func(c *Config, value string) error {
		*target(c) = value
		return nil
	}
}

func setInt(target func(*Config) *int) func(*Config, string) error {
	return func(c *Config, value string) error {
		parsed, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("expected integer, got %q", value)
		}
		*target(c) = parsed
		return nil
	}
}

func setFloat(target func(*Config) *float64) func(*Config, string) error {
	return func(c *Config, value string) error {
		parsed, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("expected number, got %q", value)
		}
		*target(c) = parsed
		return nil
	}
}

func setBool(target func(*Config) *bool) func(*Config, string) error {
	return func(c *Config, value string) error {
		parsed, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("expected true or false, got %q", value)
		}
		*target(c) = parsed
		return nil
	}
}

// setSelectors accepts a comma-separated list; "auto" (or an empty item)
// stands for the unconstrained attempt.
func setSelectors(c *Config, value string) error {
	parts := strings.Split(value, ",")
	selectors := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if strings.EqualFold(part, "auto") {
			part = ""
		}
		selectors = append(selectors, part)
	}
	c.Download.FormatSelectors = selectors
	return nil
}

func formatSelectorList(selectors []string) string {
	out := make([]string, 0, len(selectors))
	for _, s := range selectors {
		if s == "" {
			s = "auto"
		}
		out = append(out, s)
	}
	return strings.Join(out, ",")
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
