package pipeline

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"ytcs/internal/chapters"
	"ytcs/internal/textutil"
)

// renderChapters prints the resolved chapter list for a dry run.
func renderChapters(w io.Writer, tier chapters.Tier, chs []chapters.Chapter) {
	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	tw.SetStyle(table.StyleRounded)
	tw.SetTitle(fmt.Sprintf("%d %s from %s", len(chs), textutil.Plural(len(chs), "chapter", "chapters"), tier))
	tw.AppendHeader(table.Row{"#", "Start", "End", "Length", "Title"})
	for i, ch := range chs {
		end, length := "-", "-"
		if v, ok := ch.End(); ok {
			end = chapters.FormatTimestamp(v)
			length = textutil.FormatDuration(ch.Duration())
		}
		tw.AppendRow(table.Row{strconv.Itoa(i + 1), chapters.FormatTimestamp(ch.StartTime), end, length, ch.Title})
	}
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignRight},
		{Number: 2, Align: text.AlignRight},
		{Number: 3, Align: text.AlignRight},
		{Number: 4, Align: text.AlignRight},
	})
	tw.Render()
}

// renderSummary prints the final per-video result.
func renderSummary(w io.Writer, res Result) {
	written := res.Written()
	skipped := len(res.Outcomes) - len(written)

	var size uint64
	for _, t := range written {
		if info, err := os.Stat(t.Path); err == nil {
			size += uint64(info.Size()) //nolint:gosec
		}
	}

	fmt.Fprintf(w, "\nWrote %d %s (%s) to %s\n",
		len(written), textutil.Plural(len(written), "track", "tracks"), humanize.IBytes(size), res.OutputDir)
	if skipped > 0 {
		fmt.Fprintf(w, "Skipped %d existing %s\n", skipped, textutil.Plural(skipped, "track", "tracks"))
	}
	switch {
	case res.EmbeddedCover:
		fmt.Fprintln(w, "Cover art: reused from source audio")
	case res.CoverPath == "":
		fmt.Fprintln(w, "Cover art: none")
	}
	if res.SourceAudio != "" {
		fmt.Fprintf(w, "Source audio: %s\n", res.SourceAudio)
	}
}
