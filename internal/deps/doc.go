// Package deps checks for the external binaries ytcs shells out to (yt-dlp,
// ffmpeg, ffprobe), probes their versions, and renders install hints for the
// host package manager. Nothing is installed automatically.
package deps
