package ytdlp

import (
	"net/url"
	"regexp"
	"strings"
)

var (
	playlistIDPattern = regexp.MustCompile(`[?&]list=([a-zA-Z0-9_-]+)`)
	videoIDPattern    = regexp.MustCompile(`(?:v=|/)([a-zA-Z0-9_-]{11})`)
)

// ExtractVideoID returns the 11-character video identifier in rawURL.
func ExtractVideoID(rawURL string) (string, bool) {
	m := videoIDPattern.FindStringSubmatch(rawURL)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// ExtractPlaylistID returns the list= parameter of rawURL.
func ExtractPlaylistID(rawURL string) (string, bool) {
	m := playlistIDPattern.FindStringSubmatch(rawURL)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// IsPlaylistURL reports whether rawURL references a playlist.
func IsPlaylistURL(rawURL string) bool {
	_, ok := ExtractPlaylistID(rawURL)
	return ok
}

// IsPlaylistOnlyURL reports whether rawURL is a playlist page rather than a
// video watched within a playlist.
func IsPlaylistOnlyURL(rawURL string) bool {
	if !IsPlaylistURL(rawURL) {
		return false
	}
	return strings.Contains(rawURL, "/playlist?")
}

// CleanVideoURL removes playlist parameters (list, index, start_radio) so
// yt-dlp processes only the referenced video. Unparseable input is returned
// unchanged.
func CleanVideoURL(rawURL string) string {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || u.RawQuery == "" {
		return rawURL
	}
	q := u.Query()
	for _, key := range []string{"list", "index", "start_radio", "pp"} {
		q.Del(key)
	}
	u.RawQuery = q.Encode()
	return u.String()
}

// WatchURL builds the canonical watch URL for a video identifier.
func WatchURL(videoID string) string {
	return "https://www.youtube.com/watch?v=" + videoID
}
