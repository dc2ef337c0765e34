// Package ffprobe provides a typed wrapper around ffprobe JSON output.
//
// Prober.Duration backs the source-length lookup when the platform metadata
// carries no duration, and Prober.Inspect verifies split tracks (audio stream,
// embedded cover, ID3 tags).
package ffprobe
