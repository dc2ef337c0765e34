package audio

import (
	"context"
	"fmt"
	"strings"

	"github.com/simonhull/audiometa"
)

// Mismatch describes one tag that does not match the planned track.
type Mismatch struct {
	Field string
	Want  string
	Got   string
}

func (m Mismatch) String() string {
	return fmt.Sprintf("%s: want %q, got %q", m.Field, m.Want, m.Got)
}

// VerifyTrack reads back the tags of a written track and reports mismatches
// against the plan. wantCover requires at least one embedded picture.
func VerifyTrack(ctx context.Context, t Track, wantCover bool) ([]Mismatch, error) {
	file, err := audiometa.OpenContext(ctx, t.Path)
	if err != nil {
		return nil, fmt.Errorf("read tags: %w", err)
	}
	defer file.Close() //nolint:errcheck

	artwork := 0
	if wantCover {
		pictures, err := file.ExtractArtwork()
		if err != nil {
			return nil, fmt.Errorf("read artwork: %w", err)
		}
		artwork = len(pictures)
	}
	return CheckTags(file, t, wantCover, artwork), nil
}

// CheckTags compares parsed tags with the planned track.
func CheckTags(file *audiometa.File, t Track, wantCover bool, artworkCount int) []Mismatch {
	var out []Mismatch
	compare := func(field, want, got string) {
		if strings.TrimSpace(want) != strings.TrimSpace(got) {
			out = append(out, Mismatch{Field: field, Want: want, Got: got})
		}
	}
	compare("title", t.Title, file.Tags.Title)
	compare("artist", t.Artist, file.Tags.Artist)
	compare("album", t.Album, file.Tags.Album)
	if file.Tags.TrackNumber != t.Number {
		out = append(out, Mismatch{Field: "track", Want: fmt.Sprint(t.Number), Got: fmt.Sprint(file.Tags.TrackNumber)})
	}
	if file.Tags.TrackTotal != 0 && file.Tags.TrackTotal != t.Total {
		out = append(out, Mismatch{Field: "track_total", Want: fmt.Sprint(t.Total), Got: fmt.Sprint(file.Tags.TrackTotal)})
	}
	if wantCover && artworkCount == 0 {
		out = append(out, Mismatch{Field: "cover", Want: "embedded", Got: "none"})
	}
	return out
}
