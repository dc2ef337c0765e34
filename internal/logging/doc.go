// Package logging assembles structured slog loggers and formatting helpers used
// across ytcs.
//
// It owns the console and JSON handlers, centralizes level and output plumbing,
// and exposes context-aware helpers so pipeline code can tag log lines with the
// video ID, stage, and correlation ID of the current run. NewFromConfig tees
// terminal output into a JSON log file under paths.log_dir. The package also
// provides a no-op logger for tests and wiring code that cannot fail.
package logging
