// Package history records processed videos in a SQLite database so repeated
// runs can warn before re-splitting the same video.
//
// The schema is embedded and versioned; a version mismatch is reported as
// ErrSchemaMismatch rather than migrated.
package history
