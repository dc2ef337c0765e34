package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"ytcs/internal/config"
	"ytcs/internal/deps"
	"ytcs/internal/history"
	"ytcs/internal/logging"
	"ytcs/internal/media/audio"
	"ytcs/internal/media/ffprobe"
	"ytcs/internal/media/silence"
	"ytcs/internal/pipeline"
	"ytcs/internal/preflight"
	"ytcs/internal/services/command"
	"ytcs/internal/thumbnail"
	"ytcs/internal/ytdlp"
)

type runOptions struct {
	url       string
	outputDir string
	artist    string
	album     string
	noRefine  bool
	keepAudio bool
	playlist  string
	dryRun    bool
}

func runPipeline(cmd *cobra.Command, ctx *commandContext, opts runOptions) error {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return err
	}
	logger, err := ctx.ensureLogger()
	if err != nil {
		return err
	}
	runCtx := cmd.Context()
	if runCtx == nil {
		runCtx = context.Background()
	}

	if err := requireBinaries(cfg, opts.dryRun); err != nil {
		return err
	}

	outputDir := cfg.Paths.OutputDir
	if opts.outputDir != "" {
		expanded, err := config.ExpandPath(opts.outputDir)
		if err != nil {
			return fmt.Errorf("resolve output directory: %w", err)
		}
		outputDir = expanded
	}

	store := openHistory(cfg, logger)
	if store != nil {
		defer store.Close()
	}

	p, err := pipeline.New(buildPipelineOptions(cmd, cfg, logger, store))
	if err != nil {
		return err
	}
	_, err = p.Run(runCtx, pipeline.Request{
		URL:       opts.url,
		OutputDir: outputDir,
		Artist:    opts.artist,
		Album:     opts.album,
		NoRefine:  opts.noRefine,
		KeepAudio: opts.keepAudio,
		Playlist:  opts.playlist,
		DryRun:    opts.dryRun,
	})
	return err
}

// requireBinaries fails with install hints when a needed binary is missing.
// A dry run only talks to yt-dlp. Versions are left to "ytcs deps".
func requireBinaries(cfg *config.Config, dryRun bool) error {
	reqs := deps.Requirements(cfg.YtDlpBinary(), cfg.FFmpegBinary(), cfg.FFprobeBinary())
	if dryRun {
		reqs = reqs[:1]
	}
	return deps.Require(deps.CheckBinaries(reqs), deps.NewChecker().DetectInstallMethod())
}

func openHistory(cfg *config.Config, logger *slog.Logger) *history.Store {
	if !cfg.History.Enabled {
		return nil
	}
	store, err := history.Open(cfg)
	if err != nil {
		logging.WarnWithContext(logger, "history unavailable", "history_open_failed",
			logging.String("path", cfg.History.Path),
			logging.String(logging.FieldErrorHint, "delete the history database or disable history.enabled"),
			logging.String(logging.FieldImpact, "this run is not recorded"),
			logging.Error(err),
		)
		return nil
	}
	return store
}

func buildPipelineOptions(cmd *cobra.Command, cfg *config.Config, logger *slog.Logger, store *history.Store) pipeline.Options {
	exec := command.New()
	client := ytdlp.New(cfg.YtDlpBinary(), ytdlp.WithExecutor(exec), ytdlp.WithLogger(logger))
	opts := pipeline.Options{
		Config:     cfg,
		Logger:     logger,
		Metadata:   client,
		Downloader: client,
		Prober:     ffprobe.New(cfg.FFprobeBinary(), ffprobe.WithExecutor(exec)),
		Analyzer:   silence.New(cfg.FFmpegBinary(), silence.WithExecutor(exec)),
		Covers: thumbnail.NewFetcher(
			thumbnail.WithMaxRetries(cfg.Download.MaxRetries),
			thumbnail.WithLogger(logger),
		),
		Splitter: audio.NewSplitter(cfg.FFmpegBinary(),
			audio.WithExecutor(exec),
			audio.WithLogger(logger),
			audio.WithBitrate(cfg.Download.AudioQuality),
			audio.WithOverwrite(cfg.Output.OverwriteExisting),
		),
		Verify: audio.VerifyTrack,
		Preflight: func(_ context.Context, dir string) error {
			return preflight.Err(preflight.CheckOutputDir(dir))
		},
		Out:         cmd.OutOrStdout(),
		In:          cmd.InOrStdin(),
		Interactive: interactive(cmd.OutOrStdout(), cmd.InOrStdin()),
	}
	if store != nil {
		opts.History = store
	}
	return opts
}
