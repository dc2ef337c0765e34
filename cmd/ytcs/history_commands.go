package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"ytcs/internal/history"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "Inspect processed videos",
	}
	historyCmd.AddCommand(newHistoryListCommand(ctx))
	historyCmd.AddCommand(newHistoryClearCommand(ctx))
	return historyCmd
}

func openHistoryStore(ctx *commandContext) (*history.Store, error) {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return nil, err
	}
	return history.Open(cfg)
}

func newHistoryListCommand(ctx *commandContext) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List processed videos, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openHistoryStore(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			entries, err := store.List(cmd.Context(), limit)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(entries) == 0 {
				fmt.Fprintln(out, "No videos processed yet")
				return nil
			}
			rows := make([][]string, 0, len(entries))
			for _, e := range entries {
				rows = append(rows, []string{
					e.ProcessedAt.Local().Format("2006-01-02 15:04"),
					e.VideoID,
					e.Artist,
					e.Album,
					strconv.Itoa(e.TrackCount),
					e.ChapterSource,
					yesNo(e.Refined),
				})
			}
			fmt.Fprintln(out, renderTable("",
				[]string{"Processed", "Video", "Artist", "Album", "Tracks", "Source", "Refined"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignRight},
			))
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum entries to show (0 for all)")
	return cmd
}

func newHistoryClearCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Forget every processed video",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openHistoryStore(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			removed, err := store.Clear(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %d entries\n", removed)
			return nil
		},
	}
}
