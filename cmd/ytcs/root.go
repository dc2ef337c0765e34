package main

import (
	"github.com/spf13/cobra"
)

func newRootCommand() *cobra.Command {
	var configFlag string
	var run runOptions

	ctx := newCommandContext(&configFlag)

	rootCmd := &cobra.Command{
		Use:           "ytcs [flags] <url>",
		Short:         "Download a video's audio and split it into tagged chapter tracks",
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if shouldSkipConfig(cmd) {
				return nil
			}
			_, err := ctx.ensureConfig()
			return err
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return cmd.Help()
			}
			run.url = args[0]
			return runPipeline(cmd, ctx, run)
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configFlag, "config", "c", "", "Configuration file path")

	flags := rootCmd.Flags()
	flags.StringVarP(&run.outputDir, "output", "o", "", "Base output directory (default paths.output_dir)")
	flags.StringVarP(&run.artist, "artist", "a", "", "Force the artist name")
	flags.StringVarP(&run.album, "album", "A", "", "Force the album name")
	flags.BoolVar(&run.noRefine, "no-refine", false, "Skip snapping chapter boundaries to silence")
	flags.BoolVar(&run.keepAudio, "keep-audio", false, "Keep the downloaded source audio next to the tracks")
	flags.StringVar(&run.playlist, "playlist", "", "Playlist handling: ask, video_only, or playlist_only")
	flags.BoolVar(&run.dryRun, "dry-run", false, "Resolve and print chapters without downloading")

	rootCmd.AddCommand(newConfigCommand(ctx))
	rootCmd.AddCommand(newDepsCommand(ctx))
	rootCmd.AddCommand(newHistoryCommand(ctx))
	rootCmd.AddCommand(newVersionCommand())

	return rootCmd
}
