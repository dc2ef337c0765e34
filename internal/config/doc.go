// Package config loads, normalizes, and validates ytcs configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours the YTCS_OUTPUT_DIR environment
// fallback. The Config type centralizes every knob the CLI and pipeline need:
// output naming, downloader format attempts, silence and refinement
// thresholds, and history storage.
//
// Config.Set and Config.Save back the "ytcs config set" command; both keep the
// file valid by re-running normalization and validation before writing.
package config
