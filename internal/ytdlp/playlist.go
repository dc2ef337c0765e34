package ytdlp

import (
	"context"
	"strings"

	"github.com/tidwall/gjson"

	"ytcs/internal/logging"
	"ytcs/internal/services"
	"ytcs/internal/services/command"
)

// PlaylistEntry is one flat playlist item.
type PlaylistEntry struct {
	ID       string
	Title    string
	URL      string
	Duration float64
}

// Playlist is the flat listing of a playlist URL.
type Playlist struct {
	ID      string
	Title   string
	Entries []PlaylistEntry
}

// FetchPlaylist lists the entries of a playlist without resolving each video.
func (c *Client) FetchPlaylist(ctx context.Context, rawURL string) (Playlist, error) {
	args := []string{"--dump-json", "--flat-playlist", "--no-warnings", rawURL}
	var out jsonLines
	if err := c.exec.Run(ctx, c.binary, args, out.feed); err != nil {
		return Playlist{}, services.Wrap(services.ErrExternalTool, "playlist", "yt-dlp --flat-playlist", Classify(command.Diagnostic(err)).Message, err)
	}
	playlist, err := ParsePlaylist(out.lines)
	if err != nil {
		return Playlist{}, err
	}
	if playlist.ID == "" {
		playlist.ID, _ = ExtractPlaylistID(rawURL)
	}
	c.logger.Debug("playlist listed",
		logging.String("playlist_id", playlist.ID),
		logging.Int("entries", len(playlist.Entries)),
	)
	return playlist, nil
}

// ParsePlaylist decodes flat-playlist output, one JSON document per line.
// Playlist title and id come from the first entry carrying them.
func ParsePlaylist(lines []string) (Playlist, error) {
	var playlist Playlist
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" || !gjson.Valid(line) {
			continue
		}
		doc := gjson.Parse(line)
		if playlist.Title == "" {
			playlist.Title = strings.TrimSpace(doc.Get("playlist_title").String())
		}
		if playlist.ID == "" {
			playlist.ID = doc.Get("playlist_id").String()
		}
		id := doc.Get("id").String()
		if id == "" {
			continue
		}
		entry := PlaylistEntry{
			ID:       id,
			Title:    strings.TrimSpace(doc.Get("title").String()),
			URL:      WatchURL(id),
			Duration: doc.Get("duration").Float(),
		}
		if entry.Title == "" {
			entry.Title = defaultVideoTitle
		}
		playlist.Entries = append(playlist.Entries, entry)
	}
	if len(playlist.Entries) == 0 {
		return Playlist{}, services.Wrap(services.ErrNotFound, "playlist", "parse", "playlist has no entries", nil)
	}
	return playlist, nil
}
