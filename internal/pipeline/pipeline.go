package pipeline

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"ytcs/internal/chapters"
	"ytcs/internal/config"
	"ytcs/internal/history"
	"ytcs/internal/logging"
	"ytcs/internal/media/audio"
	"ytcs/internal/media/ffprobe"
	"ytcs/internal/services"
	"ytcs/internal/ytdlp"
)

// MetadataSource fetches video and playlist metadata.
type MetadataSource interface {
	FetchInfo(ctx context.Context, url string) (ytdlp.Info, error)
	FetchPlaylist(ctx context.Context, url string) (ytdlp.Playlist, error)
}

// SourceProber inspects the streams and container of a local media file.
type SourceProber interface {
	Inspect(ctx context.Context, path string) (ffprobe.Result, error)
}

// CoverFetcher downloads cover art into a directory.
type CoverFetcher interface {
	Fetch(ctx context.Context, videoID, metadataURL, destDir string) (string, error)
}

// TrackSplitter cuts the source audio into tagged tracks.
type TrackSplitter interface {
	Split(ctx context.Context, src string, tracks []audio.Track, cover string, progress audio.ProgressFunc) ([]audio.Outcome, error)
}

// TrackVerifier reads back a written track and reports tag mismatches.
type TrackVerifier func(ctx context.Context, t audio.Track, wantCover bool) ([]audio.Mismatch, error)

// PreflightFunc checks that dir can receive a run.
type PreflightFunc func(ctx context.Context, dir string) error

// Request describes one invocation of the run command.
type Request struct {
	URL       string
	OutputDir string
	Artist    string
	Album     string
	NoRefine  bool
	KeepAudio bool
	// Playlist overrides playlist.behavior when set.
	Playlist string
	DryRun   bool
}

// Result summarizes one processed video.
type Result struct {
	VideoID     string
	URL         string
	Title       string
	Artist      string
	Album       string
	OutputDir   string
	Duration    float64
	Tier        chapters.Tier
	Chapters    []chapters.Chapter
	Report      *chapters.Report
	Outcomes    []audio.Outcome
	CoverPath   string
	// EmbeddedCover is set when tracks reuse artwork found in the source audio.
	EmbeddedCover bool
	SourceAudio   string
	Attempt     string
	DryRun      bool
	// Previous is the latest history entry for this video before this run.
	Previous *history.Entry
}

// Written returns the tracks that were encoded in this run.
func (r Result) Written() []audio.Track {
	var out []audio.Track
	for _, o := range r.Outcomes {
		if !o.Skipped {
			out = append(out, o.Track)
		}
	}
	return out
}

// Options wires the pipeline's collaborators. Zero values disable optional
// stages: a nil Covers skips cover art, a nil History skips the record, a nil
// Verify skips tag read-back, and a nil Preflight skips readiness checks.
type Options struct {
	Config     *config.Config
	Logger     *slog.Logger
	Metadata   MetadataSource
	Downloader ytdlp.Downloader
	Prober     SourceProber
	Analyzer   chapters.Analyzer
	Covers     CoverFetcher
	Splitter   TrackSplitter
	Verify     TrackVerifier
	History    *history.Store
	Preflight  PreflightFunc
	// Out receives user-facing output (tables, summaries).
	Out io.Writer
	// In answers the playlist prompt when Interactive is set.
	In          io.Reader
	Interactive bool
}

// Pipeline runs the download, chapter, and split stages for one URL.
type Pipeline struct {
	cfg         *config.Config
	logger      *slog.Logger
	metadata    MetadataSource
	selector    *ytdlp.Selector
	prober      SourceProber
	resolver    *chapters.Resolver
	dryResolver *chapters.Resolver
	refiner     *chapters.Refiner
	covers      CoverFetcher
	splitter    TrackSplitter
	verify      TrackVerifier
	history     *history.Store
	preflight   PreflightFunc
	out         io.Writer
	in          io.Reader
	interactive bool
}

// New validates opts and assembles a pipeline.
func New(opts Options) (*Pipeline, error) {
	if opts.Config == nil {
		return nil, errors.New("pipeline: config required")
	}
	if opts.Metadata == nil || opts.Downloader == nil || opts.Splitter == nil {
		return nil, errors.New("pipeline: metadata source, downloader, and splitter are required")
	}
	cfg := opts.Config
	logger := logging.NewComponentLogger(opts.Logger, "pipeline")
	out := opts.Out
	if out == nil {
		out = io.Discard
	}
	in := opts.In
	if in == nil {
		in = os.Stdin
	}

	silence := chapters.SilenceParams{ThresholdDB: cfg.Silence.ThresholdDB, MinDuration: cfg.Silence.MinDuration}
	refine := chapters.RefineParams{
		WindowSeconds: cfg.Refinement.WindowSeconds,
		ThresholdDB:   cfg.Refinement.ThresholdDB,
		MinDuration:   cfg.Refinement.MinDuration,
	}

	return &Pipeline{
		cfg:      cfg,
		logger:   logger,
		metadata: opts.Metadata,
		selector: ytdlp.NewSelector(opts.Downloader,
			ytdlp.WithAttempts(ytdlp.AttemptsFromSelectors(cfg.FormatSelectors())),
			ytdlp.WithAttemptTimeout(cfg.DownloadTimeout()),
			ytdlp.WithSelectorLogger(opts.Logger),
		),
		prober:      opts.Prober,
		resolver:    chapters.NewResolver(opts.Analyzer, silence, opts.Logger),
		dryResolver: chapters.NewResolver(nil, silence, opts.Logger),
		refiner:     chapters.NewRefiner(opts.Analyzer, refine, opts.Logger),
		covers:      opts.Covers,
		splitter:    opts.Splitter,
		verify:      opts.Verify,
		history:     opts.History,
		preflight:   opts.Preflight,
		out:         out,
		in:          in,
		interactive: opts.Interactive,
	}, nil
}

// Run processes req.URL as a single video or as every entry of its playlist,
// depending on the URL shape and the playlist behavior.
func (p *Pipeline) Run(ctx context.Context, req Request) ([]Result, error) {
	url := strings.TrimSpace(req.URL)
	if url == "" {
		return nil, services.Wrap(services.ErrValidation, "pipeline", "run", "url required", nil)
	}
	if _, ok := services.RequestIDFromContext(ctx); !ok {
		ctx = services.WithRequestID(ctx, uuid.NewString())
	}
	if strings.TrimSpace(req.OutputDir) == "" {
		req.OutputDir = p.cfg.Paths.OutputDir
	}

	playlist, err := p.wantsPlaylist(ctx, url, req.Playlist)
	if err != nil {
		return nil, err
	}
	if !playlist {
		res, err := p.processVideo(ctx, req, ytdlp.CleanVideoURL(url))
		if err != nil {
			return nil, err
		}
		return []Result{res}, nil
	}
	return p.runPlaylist(ctx, req, url)
}

func (p *Pipeline) wantsPlaylist(ctx context.Context, url, override string) (bool, error) {
	if ytdlp.IsPlaylistOnlyURL(url) {
		return true, nil
	}
	if !ytdlp.IsPlaylistURL(url) {
		return false, nil
	}
	behavior := strings.TrimSpace(override)
	if behavior == "" {
		behavior = p.cfg.Playlist.Behavior
	}
	switch behavior {
	case config.PlaylistVideoOnly:
		return false, nil
	case config.PlaylistPlaylistOnly:
		return true, nil
	case config.PlaylistAsk, "":
		if !p.interactive {
			logging.WithContext(ctx, p.logger).Info("playlist url without a terminal; processing the video only",
				logging.Args(logging.DecisionAttrs("playlist_behavior", config.PlaylistVideoOnly, "non-interactive")...)...)
			return false, nil
		}
		return p.askPlaylist()
	default:
		return false, services.Wrap(services.ErrValidation, "pipeline", "playlist",
			fmt.Sprintf("unknown playlist behavior %q", behavior), nil)
	}
}

func (p *Pipeline) askPlaylist() (bool, error) {
	fmt.Fprint(p.out, "This URL is part of a playlist. Download the whole playlist? [y/N] ")
	line, err := bufio.NewReader(p.in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return false, fmt.Errorf("read answer: %w", err)
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes", nil
}

func (p *Pipeline) runPlaylist(ctx context.Context, req Request, url string) ([]Result, error) {
	logger := logging.WithContext(ctx, p.logger)
	list, err := p.metadata.FetchPlaylist(ctx, url)
	if err != nil {
		return nil, err
	}
	logger.Info("playlist expanded",
		logging.String("playlist_id", list.ID),
		logging.String("playlist_title", list.Title),
		logging.Int("entries", len(list.Entries)),
	)
	fmt.Fprintf(p.out, "Playlist: %s (%d videos)\n", list.Title, len(list.Entries))

	var (
		results []Result
		errs    []error
	)
	for i, entry := range list.Entries {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		fmt.Fprintf(p.out, "\n[%d/%d] %s\n", i+1, len(list.Entries), entry.Title)
		res, err := p.processVideo(ctx, req, entry.URL)
		if err != nil {
			logging.WarnWithContext(logger, "playlist entry failed", "playlist_entry_failed",
				logging.String("video_id", entry.ID),
				logging.String("entry_title", entry.Title),
				logging.String(logging.FieldErrorHint, "rerun with the video url to retry this entry"),
				logging.String(logging.FieldImpact, "entry skipped"),
				logging.Error(err),
			)
			errs = append(errs, fmt.Errorf("%s: %w", entry.ID, err))
			continue
		}
		results = append(results, res)
	}

	if p.cfg.Playlist.CreateM3U && !req.DryRun && len(results) > 0 {
		name := playlistFileName(list.Title, list.ID) + ".m3u"
		path := filepath.Join(req.OutputDir, name)
		if err := WriteM3U(path, collectTracks(results)); err != nil {
			logging.WarnWithContext(logger, "playlist m3u not written", "m3u_failed",
				logging.String("path", path),
				logging.String(logging.FieldErrorHint, "check output directory permissions"),
				logging.Error(err),
			)
		} else {
			fmt.Fprintf(p.out, "Playlist file: %s\n", path)
		}
	}
	return results, errors.Join(errs...)
}

func collectTracks(results []Result) []audio.Track {
	var tracks []audio.Track
	for _, r := range results {
		for _, o := range r.Outcomes {
			tracks = append(tracks, o.Track)
		}
	}
	return tracks
}
