// Package ytdlp wraps the yt-dlp command line tool.
//
// Client fetches single-video metadata (--dump-json), lists playlists
// (--flat-playlist), and runs one audio download attempt. Selector drives the
// ordered format-selector fallback on top of any Downloader, with a timeout
// per attempt. Classify turns raw yt-dlp stderr into a user-facing class,
// message, and hint. ParseProgress reads --newline progress lines.
package ytdlp
