package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/gofrs/flock"

	"ytcs/internal/chapters"
	"ytcs/internal/fileutil"
	"ytcs/internal/history"
	"ytcs/internal/logging"
	"ytcs/internal/media/audio"
	"ytcs/internal/services"
	"ytcs/internal/tempfile"
	"ytcs/internal/textutil"
	"ytcs/internal/ytdlp"
)

// LockFileName is created in the album directory for the duration of a run.
const LockFileName = ".ytcs.lock"

// processVideo runs every stage for one video URL.
func (p *Pipeline) processVideo(ctx context.Context, req Request, url string) (Result, error) {
	res := Result{URL: url, DryRun: req.DryRun}
	if id, ok := ytdlp.ExtractVideoID(url); ok {
		ctx = services.WithVideoID(ctx, id)
		res.VideoID = id
	}

	var info ytdlp.Info
	err := p.runStage(ctx, StageMetadata, func(ctx context.Context, logger *slog.Logger) error {
		var err error
		info, err = p.metadata.FetchInfo(ctx, url)
		if err != nil {
			return err
		}
		logger.Info("video metadata fetched",
			logging.String("title", info.Title),
			logging.Seconds("duration_seconds", info.Duration),
			logging.Int("declared_chapters", len(info.Chapters)),
		)
		return nil
	})
	if err != nil {
		return res, err
	}
	if res.VideoID == "" && info.ID != "" {
		res.VideoID = info.ID
		ctx = services.WithVideoID(ctx, info.ID)
	}
	if info.WebpageURL != "" {
		res.URL = info.WebpageURL
	}
	res.Title = info.Title
	res.Duration = info.Duration
	res.Artist, res.Album = p.artistAlbum(info, req)
	res.OutputDir = filepath.Join(req.OutputDir, albumDirName(p.cfg.Output.DirectoryFormat, res.Artist, res.Album))

	fmt.Fprintf(p.out, "Title:    %s\n", info.Title)
	fmt.Fprintf(p.out, "Duration: %s\n", textutil.FormatDuration(info.Duration))
	fmt.Fprintf(p.out, "Artist:   %s\n", res.Artist)
	fmt.Fprintf(p.out, "Album:    %s\n", res.Album)

	if p.history != nil && res.VideoID != "" {
		prev, err := p.history.Lookup(ctx, res.VideoID)
		if err != nil {
			logging.WarnWithContext(logging.WithContext(ctx, p.logger), "history lookup failed", "history_lookup_failed",
				logging.String(logging.FieldErrorHint, "run ytcs history clear if the database is corrupt"),
				logging.Error(err),
			)
		} else if prev != nil {
			res.Previous = prev
			logging.WarnWithContext(logging.WithContext(ctx, p.logger), "video already processed", "already_processed",
				logging.String("previous_output", prev.OutputDir),
				logging.String("processed_at", prev.ProcessedAt.Format("2006-01-02 15:04")),
				logging.String(logging.FieldErrorHint, "existing tracks are skipped unless output.overwrite_existing is set"),
				logging.String(logging.FieldImpact, "video is processed again"),
			)
			fmt.Fprintf(p.out, "Note: already processed on %s into %s\n",
				prev.ProcessedAt.Local().Format("2006-01-02 15:04"), prev.OutputDir)
		}
	}

	if req.DryRun {
		resolution := p.dryResolver.Resolve(ctx, info.Source(), "")
		res.Tier = resolution.Tier
		res.Chapters = resolution.Chapters
		renderChapters(p.out, res.Tier, res.Chapters)
		return res, nil
	}

	if err := os.MkdirAll(res.OutputDir, 0o755); err != nil {
		return res, services.Wrap(services.ErrConfiguration, StagePreflight, "create output directory", res.OutputDir, err)
	}
	lock := flock.New(filepath.Join(res.OutputDir, LockFileName))
	locked, err := lock.TryLock()
	if err != nil {
		return res, fmt.Errorf("acquire output lock: %w", err)
	}
	if !locked {
		return res, services.Wrap(services.ErrValidation, StagePreflight, "lock",
			fmt.Sprintf("another ytcs run is writing to %s", res.OutputDir), nil)
	}
	defer func() {
		_ = lock.Unlock()
		_ = os.Remove(lock.Path())
	}()

	if err := p.runStage(ctx, StagePreflight, func(ctx context.Context, logger *slog.Logger) error {
		if removed, err := tempfile.Sweep(res.OutputDir); err == nil && len(removed) > 0 {
			logger.Info("removed leftover temporary files", logging.Int("count", len(removed)))
		}
		if p.preflight == nil {
			return nil
		}
		return p.preflight(ctx, res.OutputDir)
	}); err != nil {
		return res, err
	}

	if p.cfg.Output.DownloadCover && p.covers != nil {
		_ = p.runStage(ctx, StageCover, func(ctx context.Context, logger *slog.Logger) error {
			path, err := p.covers.Fetch(ctx, res.VideoID, info.Thumbnail, res.OutputDir)
			if err != nil {
				logging.WarnWithContext(logger, "cover art unavailable", "cover_failed",
					logging.String(logging.FieldErrorHint, "tracks are written without embedded artwork"),
					logging.String(logging.FieldImpact, "no cover art"),
					logging.Error(err),
				)
				return nil
			}
			res.CoverPath = path
			return nil
		})
	}

	source, err := tempfile.New(res.OutputDir, ".mp3")
	if err != nil {
		return res, fmt.Errorf("allocate source audio: %w", err)
	}
	defer func() {
		if err := source.Close(); err != nil {
			p.logger.Debug("temporary audio cleanup failed", logging.Error(err))
		}
	}()

	var audioPath string
	if err := p.runStage(ctx, StageDownload, func(ctx context.Context, logger *slog.Logger) error {
		bar, progress := p.downloadProgress(logger)
		result, err := p.selector.Download(ctx, res.URL, source.Base(), progress)
		bar.finish()
		if err != nil {
			return err
		}
		audioPath = result.Path
		res.Attempt = result.Attempt.Label()
		logger.Info("audio downloaded",
			logging.String("format", res.Attempt),
			logging.Int("attempt", result.Ordinal),
			logging.Int("failed_attempts", len(result.Failures)),
		)
		return nil
	}); err != nil {
		return res, err
	}

	embeddedArt, err := p.inspectSource(ctx, audioPath, &res)
	if err != nil {
		return res, err
	}
	src := info.Source()
	src.Duration = res.Duration

	_ = p.runStage(ctx, StageChapters, func(ctx context.Context, logger *slog.Logger) error {
		resolution := p.resolver.Resolve(ctx, src, audioPath)
		res.Tier = resolution.Tier
		res.Chapters = resolution.Chapters
		logger.Info("chapters resolved",
			logging.Args(append(logging.DecisionAttrs("chapter_tier", string(res.Tier), "first tier with chapters"),
				logging.Int("chapters", len(res.Chapters)))...)...,
		)
		return nil
	})
	fmt.Fprintf(p.out, "Chapters: %d (from %s)\n", len(res.Chapters), res.Tier)

	if p.shouldRefine(req, res.Tier) {
		_ = p.runStage(ctx, StageRefine, func(ctx context.Context, logger *slog.Logger) error {
			refined, report, err := p.refiner.Refine(ctx, res.Chapters, audioPath)
			if err != nil {
				logging.WarnWithContext(logger, "chapter refinement skipped", "refinement_failed",
					logging.String(logging.FieldErrorHint, "check ffmpeg silencedetect output in the log"),
					logging.String(logging.FieldImpact, "declared chapter boundaries are used"),
					logging.Error(err),
				)
				return nil
			}
			res.Chapters = refined
			res.Report = &report
			if table := report.Table(); table != "" {
				fmt.Fprintln(p.out, table)
			}
			return nil
		})
	}

	cover := res.CoverPath
	if cover == "" && embeddedArt {
		// The second ffmpeg input maps the source's own picture stream.
		cover = audioPath
		res.EmbeddedCover = true
		logging.WithContext(ctx, p.logger).Info("reusing artwork embedded in the source",
			logging.Args(logging.DecisionAttrs("cover_source", "embedded", "no thumbnail fetched")...)...)
	}

	tracks := audio.PlanTracks(res.Chapters, res.OutputDir, p.cfg.Output.FilenameFormat, res.Artist, res.Album)
	if err := p.runStage(ctx, StageSplit, func(ctx context.Context, logger *slog.Logger) error {
		bar, progress := p.splitProgress(logger, len(tracks))
		outcomes, err := p.splitter.Split(ctx, audioPath, tracks, cover, progress)
		bar.finish()
		res.Outcomes = outcomes
		return err
	}); err != nil {
		return res, err
	}

	_ = p.runStage(ctx, StageFinalize, func(ctx context.Context, logger *slog.Logger) error {
		p.verifyTracks(ctx, logger, res, cover != "")
		if p.cfg.Output.KeepSourceAudio || req.KeepAudio {
			res.SourceAudio = p.keepSource(logger, audioPath, res)
		}
		if p.cfg.Playlist.CreateM3U {
			m3u := filepath.Join(res.OutputDir, albumFileName(res.Album)+".m3u")
			if err := WriteM3U(m3u, tracks); err != nil {
				logging.WarnWithContext(logger, "album m3u not written", "m3u_failed",
					logging.String("path", m3u),
					logging.Error(err),
				)
			}
		}
		p.record(ctx, logger, res)
		return nil
	})

	renderSummary(p.out, res)
	return res, nil
}

// inspectSource probes the downloaded audio. A file without an audio stream
// fails the run; a failed probe only costs the duration fallback. It reports
// whether the source carries an attached picture.
func (p *Pipeline) inspectSource(ctx context.Context, audioPath string, res *Result) (bool, error) {
	if p.prober == nil {
		return false, nil
	}
	logger := logging.WithContext(services.WithStage(ctx, StageDownload), p.logger)
	probe, err := p.prober.Inspect(ctx, audioPath)
	if err != nil {
		logging.WarnWithContext(logger, "source probe failed", "source_probe_failed",
			logging.String(logging.FieldImpact, "duration and embedded artwork unknown"),
			logging.Error(err),
		)
		return false, nil
	}
	if probe.AudioStreamCount() == 0 {
		return false, services.Wrap(services.ErrValidation, StageDownload, "inspect source",
			"downloaded file has no audio stream", nil)
	}
	logger.Info("source audio probed",
		logging.Int("audio_streams", probe.AudioStreamCount()),
		logging.String("size", humanize.IBytes(uint64(probe.SizeBytes()))), //nolint:gosec
		logging.Int("bitrate_kbps", int(probe.BitRate()/1000)),
		logging.Bool("attached_picture", probe.HasAttachedPicture()),
	)
	if res.Duration <= 0 {
		if d := probe.DurationSeconds(); d > 0 {
			res.Duration = d
		} else {
			logging.WarnWithContext(logger, "source duration unknown", "duration_unknown",
				logging.String(logging.FieldImpact, "last chapter runs to the end of the file"),
			)
		}
	}
	return probe.HasAttachedPicture(), nil
}

func (p *Pipeline) shouldRefine(req Request, tier chapters.Tier) bool {
	return p.cfg.Refinement.Enabled && !req.NoRefine && tier.Refinable()
}

// artistAlbum applies the -a/-A overrides on top of the title heuristics and
// falls back to the uploader for the artist.
func (p *Pipeline) artistAlbum(info ytdlp.Info, req Request) (string, string) {
	artist, album := textutil.ParseArtistAlbum(info.Title)
	if artist == textutil.UnknownArtist {
		if uploader := uploaderArtist(info.Uploader); uploader != "" {
			artist = uploader
		}
	}
	if forced := textutil.CleanFolderName(req.Artist); forced != "" {
		artist = forced
	}
	if forced := textutil.CleanFolderName(req.Album); forced != "" {
		album = forced
	}
	if strings.TrimSpace(album) == "" {
		album = "Untitled"
	}
	return artist, album
}

// uploaderArtist strips the auto-generated " - Topic" channel suffix.
func uploaderArtist(uploader string) string {
	uploader = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(uploader), " - Topic"))
	if uploader == "" || strings.EqualFold(uploader, "Unknown") {
		return ""
	}
	return textutil.CleanFolderName(uploader)
}

func albumDirName(format, artist, album string) string {
	if strings.TrimSpace(format) == "" {
		format = "%a - %A"
	}
	name := textutil.ExpandTemplate(format, textutil.TrackFields{Artist: artist, Album: album})
	if name == "" {
		name = albumFileName(album)
	}
	return name
}

func albumFileName(album string) string {
	if name := textutil.SanitizeFileName(album); name != "" {
		return name
	}
	return "album"
}

func playlistFileName(title, id string) string {
	if name := textutil.SanitizeFileName(title); name != "" {
		return name
	}
	if name := textutil.SanitizeFileName(id); name != "" {
		return name
	}
	return "playlist"
}

func (p *Pipeline) verifyTracks(ctx context.Context, logger *slog.Logger, res Result, wantCover bool) {
	if p.verify == nil {
		return
	}
	for _, t := range res.Written() {
		mismatches, err := p.verify(ctx, t, wantCover)
		if err != nil {
			logging.WarnWithContext(logger, "track tags unreadable", "tag_verify_failed",
				logging.String("path", t.Path),
				logging.Error(err),
			)
			continue
		}
		for _, m := range mismatches {
			logging.WarnWithContext(logger, "track tag mismatch", "tag_mismatch",
				logging.String("path", t.Path),
				logging.String("field", m.Field),
				logging.String("want", m.Want),
				logging.String("got", m.Got),
				logging.String(logging.FieldImpact, "players may show wrong metadata"),
			)
		}
	}
}

func (p *Pipeline) keepSource(logger *slog.Logger, audioPath string, res Result) string {
	dst := filepath.Join(res.OutputDir, albumFileName(res.Album)+" (full).mp3")
	if err := fileutil.MoveFile(audioPath, dst); err != nil {
		logging.WarnWithContext(logger, "source audio not kept", "keep_audio_failed",
			logging.String("path", dst),
			logging.Error(err),
		)
		return ""
	}
	logger.Info("source audio kept", logging.String("path", dst))
	return dst
}

func (p *Pipeline) record(ctx context.Context, logger *slog.Logger, res Result) {
	if p.history == nil || res.VideoID == "" {
		return
	}
	requestID, _ := services.RequestIDFromContext(ctx)
	entry := history.Entry{
		VideoID:       res.VideoID,
		URL:           res.URL,
		Title:         res.Title,
		Artist:        res.Artist,
		Album:         res.Album,
		OutputDir:     res.OutputDir,
		ChapterSource: string(res.Tier),
		TrackCount:    len(res.Outcomes),
		RequestID:     requestID,
	}
	if res.Report != nil {
		entry.Refined = true
		entry.MovedBoundaries = res.Report.Moved
	}
	if _, err := p.history.Record(ctx, entry); err != nil && !errors.Is(err, context.Canceled) {
		logging.WarnWithContext(logger, "history not recorded", "history_record_failed",
			logging.String(logging.FieldImpact, "next run will not warn about this video"),
			logging.Error(err),
		)
	}
}
