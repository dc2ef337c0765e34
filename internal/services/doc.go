// Package services defines shared error markers and context helpers consumed by
// the pipeline stages and external tool wrappers.
//
// Key responsibilities:
//   - Context helpers that stamp video IDs, stage names, and correlation
//     identifiers for logging.
//   - Structured error markers plus the Wrap helper so callers can classify
//     failures with errors.Is (parse, analysis, download, configuration).
//   - ExitCode, which maps a classified failure to the CLI exit status.
package services
