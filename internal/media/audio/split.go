package audio

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"ytcs/internal/chapters"
	"ytcs/internal/fileutil"
	"ytcs/internal/logging"
	"ytcs/internal/services"
	"ytcs/internal/services/command"
	"ytcs/internal/textutil"
)

// DefaultBitrate is the MP3 bitrate in kbps used when none is configured.
const DefaultBitrate = 192

// Track is one output file cut from the source audio.
type Track struct {
	Number   int
	Total    int
	Title    string
	Artist   string
	Album    string
	Start    float64
	Duration float64 // 0 means "to the end of the source"
	Path     string
}

// PlanTracks maps chapters to output tracks inside dir. Chapters with a
// non-positive length are skipped; an open-ended final chapter runs to the
// end of the source. Numbering is contiguous over the kept chapters.
func PlanTracks(chs []chapters.Chapter, dir, filenameFormat, artist, album string) []Track {
	if strings.TrimSpace(filenameFormat) == "" {
		filenameFormat = "%n - %t"
	}
	kept := make([]chapters.Chapter, 0, len(chs))
	for i, ch := range chs {
		if _, closed := ch.End(); !closed && i == len(chs)-1 {
			kept = append(kept, ch)
			continue
		}
		if ch.Duration() > 0 {
			kept = append(kept, ch)
		}
	}
	tracks := make([]Track, 0, len(kept))
	for i, ch := range kept {
		number := i + 1
		name := textutil.ExpandTemplate(filenameFormat, textutil.TrackFields{
			Number: number,
			Title:  ch.Title,
			Artist: artist,
			Album:  album,
		})
		if name == "" {
			name = fmt.Sprintf("%02d", number)
		}
		tracks = append(tracks, Track{
			Number:   number,
			Total:    len(kept),
			Title:    ch.Title,
			Artist:   artist,
			Album:    album,
			Start:    ch.StartTime,
			Duration: ch.Duration(),
			Path:     filepath.Join(dir, name+".mp3"),
		})
	}
	return tracks
}

// Args builds the ffmpeg invocation that cuts, encodes, and tags one track.
// An empty cover omits the attached picture stream.
func Args(src string, t Track, cover string, bitrateKbps int, dst string) []string {
	if bitrateKbps <= 0 {
		bitrateKbps = DefaultBitrate
	}
	args := []string{"-hide_banner", "-nostats", "-y", "-ss", formatSeconds(t.Start)}
	if t.Duration > 0 {
		args = append(args, "-t", formatSeconds(t.Duration))
	}
	args = append(args, "-i", src)
	if cover != "" {
		args = append(args,
			"-i", cover,
			"-map", "0:a",
			"-map", "1:v",
			"-c:v", "copy",
			"-disposition:v", "attached_pic",
			"-metadata:s:v", "title=Album cover",
			"-metadata:s:v", "comment=Cover (front)",
		)
	}
	args = append(args,
		"-c:a", "libmp3lame",
		"-b:a", strconv.Itoa(bitrateKbps)+"k",
		"-id3v2_version", "3",
		"-metadata", "title="+t.Title,
		"-metadata", "artist="+t.Artist,
		"-metadata", "album_artist="+t.Artist,
		"-metadata", "album="+t.Album,
		"-metadata", fmt.Sprintf("track=%d/%d", t.Number, t.Total),
		"-f", "mp3",
		dst,
	)
	return args
}

// Outcome reports what happened to one track.
type Outcome struct {
	Track   Track
	Skipped bool
}

// ProgressFunc is invoked after each track is written or skipped.
type ProgressFunc func(done int, o Outcome)

// Option configures the splitter.
type Option func(*Splitter)

// WithExecutor injects a custom executor (primarily for tests).
func WithExecutor(exec command.Executor) Option {
	return func(s *Splitter) {
		if exec != nil {
			s.exec = exec
		}
	}
}

// WithLogger attaches a logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Splitter) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithBitrate sets the MP3 bitrate in kbps.
func WithBitrate(kbps int) Option {
	return func(s *Splitter) {
		if kbps > 0 {
			s.bitrate = kbps
		}
	}
}

// WithOverwrite replaces existing track files instead of skipping them.
func WithOverwrite(overwrite bool) Option {
	return func(s *Splitter) {
		s.overwrite = overwrite
	}
}

// Splitter cuts tracks out of a source file with ffmpeg.
type Splitter struct {
	binary    string
	exec      command.Executor
	logger    *slog.Logger
	bitrate   int
	overwrite bool
}

// NewSplitter constructs a splitter for the given ffmpeg binary.
func NewSplitter(binary string, opts ...Option) *Splitter {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		binary = "ffmpeg"
	}
	s := &Splitter{
		binary:  binary,
		exec:    command.New(),
		logger:  logging.NewNop(),
		bitrate: DefaultBitrate,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = logging.NewComponentLogger(s.logger, "splitter")
	return s
}

// Split writes every track. Each file is encoded to a hidden sibling and
// renamed into place on success. The first ffmpeg failure aborts the run.
func (s *Splitter) Split(ctx context.Context, src string, tracks []Track, cover string, progress ProgressFunc) ([]Outcome, error) {
	if strings.TrimSpace(src) == "" {
		return nil, errors.New("split: empty source path")
	}
	if cover != "" && !fileutil.Exists(cover) {
		s.logger.Debug("cover missing, splitting without artwork", logging.String("cover", cover))
		cover = ""
	}
	logger := logging.WithContext(ctx, s.logger)
	outcomes := make([]Outcome, 0, len(tracks))
	for i, track := range tracks {
		if err := ctx.Err(); err != nil {
			return outcomes, err
		}
		outcome := Outcome{Track: track}
		if !s.overwrite && fileutil.Exists(track.Path) {
			outcome.Skipped = true
			logger.Info("track exists, skipping",
				logging.Int("track", track.Number),
				logging.String("path", track.Path),
			)
		} else if err := s.writeTrack(ctx, src, track, cover); err != nil {
			return outcomes, services.Wrap(services.ErrExternalTool, "split", fmt.Sprintf("track %d", track.Number), track.Title, err)
		}
		outcomes = append(outcomes, outcome)
		if progress != nil {
			progress(i+1, outcome)
		}
	}
	return outcomes, nil
}

func (s *Splitter) writeTrack(ctx context.Context, src string, track Track, cover string) error {
	if err := os.MkdirAll(filepath.Dir(track.Path), 0o755); err != nil {
		return fmt.Errorf("create track directory: %w", err)
	}
	partial := filepath.Join(filepath.Dir(track.Path), "."+filepath.Base(track.Path)+".part")
	if err := s.exec.Run(ctx, s.binary, Args(src, track, cover, s.bitrate, partial), nil); err != nil {
		_ = os.Remove(partial)
		return err
	}
	if err := os.Rename(partial, track.Path); err != nil {
		_ = os.Remove(partial)
		return fmt.Errorf("finalize track: %w", err)
	}
	return nil
}

func formatSeconds(v float64) string {
	return strconv.FormatFloat(v, 'f', 3, 64)
}
