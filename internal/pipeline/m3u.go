package pipeline

import (
	"bytes"
	"fmt"
	"math"
	"path/filepath"

	"ytcs/internal/fileutil"
	"ytcs/internal/media/audio"
)

// WriteM3U writes an extended M3U playlist at path. Track paths are written
// relative to the playlist's directory when possible.
func WriteM3U(path string, tracks []audio.Track) error {
	base := filepath.Dir(path)
	var buf bytes.Buffer
	buf.WriteString("#EXTM3U\n")
	for _, t := range tracks {
		seconds := -1
		if t.Duration > 0 {
			seconds = int(math.Round(t.Duration))
		}
		fmt.Fprintf(&buf, "#EXTINF:%d,%s - %s\n", seconds, t.Artist, t.Title)
		entry := t.Path
		if rel, err := filepath.Rel(base, t.Path); err == nil {
			entry = filepath.ToSlash(rel)
		}
		buf.WriteString(entry + "\n")
	}
	_, err := fileutil.WriteFileAtomic(path, &buf, 0o644)
	return err
}
