package main

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"ytcs/internal/deps"
	"ytcs/internal/preflight"
)

func newDepsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "deps",
		Short: "Check that yt-dlp, ffmpeg, and ffprobe are installed",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			statuses := preflight.CheckSystemDeps(cmd.Context(), cfg)
			out := cmd.OutOrStdout()
			renderDeps(out, statuses, isTerminal(out))

			method := deps.NewChecker().DetectInstallMethod()
			if err := deps.Require(statuses, method); err != nil {
				return err
			}
			fmt.Fprintln(out, "All dependencies available")
			return nil
		},
	}
}

func renderDeps(out io.Writer, statuses []deps.Status, colorize bool) {
	ok := color.New(color.FgGreen)
	missing := color.New(color.FgRed, color.Bold)
	if !colorize {
		ok.DisableColor()
		missing.DisableColor()
	}

	rows := make([][]string, 0, len(statuses))
	for _, s := range statuses {
		state := ok.Sprint("ok")
		path := s.Path
		if !s.Available {
			state = missing.Sprint("missing")
			path = s.Detail
		}
		rows = append(rows, []string{s.Name, state, s.Version, path})
	}
	fmt.Fprintln(out, renderTable("Dependencies", []string{"Name", "Status", "Version", "Path"}, rows, nil))
}
