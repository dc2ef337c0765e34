package chapters

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// deltaDisplayThreshold is the smallest adjustment shown as a signed delta.
const deltaDisplayThreshold = 0.1

const maxReportTitle = 28

// ReportEntry describes how one chapter start moved during refinement.
type ReportEntry struct {
	Title         string
	OriginalStart float64
	RefinedStart  float64
	Delta         float64
}

// Report summarizes a refinement pass.
type Report struct {
	Entries           []ReportEntry
	AverageAdjustment float64
	MaxAdjustment     float64
	Moved             int
}

func newReport(original, refined []Chapter) Report {
	var report Report
	if len(original) == 0 || len(original) != len(refined) {
		return report
	}
	var total float64
	report.Entries = make([]ReportEntry, len(original))
	for i := range original {
		delta := refined[i].StartTime - original[i].StartTime
		report.Entries[i] = ReportEntry{
			Title:         original[i].Title,
			OriginalStart: original[i].StartTime,
			RefinedStart:  refined[i].StartTime,
			Delta:         delta,
		}
		abs := math.Abs(delta)
		total += abs
		report.MaxAdjustment = math.Max(report.MaxAdjustment, abs)
		if delta != 0 {
			report.Moved++
		}
	}
	report.AverageAdjustment = total / float64(len(original))
	return report
}

// FormatDelta renders an adjustment: "-" below 0.1s, otherwise "+1.2s" or "-0.8s".
func FormatDelta(delta float64) string {
	if math.Abs(delta) < deltaDisplayThreshold {
		return "-"
	}
	return fmt.Sprintf("%+.1fs", delta)
}

// Table renders the report as a rounded table followed by a summary line.
func (r Report) Table() string {
	if len(r.Entries) == 0 {
		return ""
	}
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{"#", "Title", "Original", "Refined", "Delta"})
	for i, e := range r.Entries {
		tw.AppendRow(table.Row{
			strconv.Itoa(i + 1),
			truncateTitle(e.Title),
			fmt.Sprintf("%.1fs", e.OriginalStart),
			fmt.Sprintf("%.1fs", e.RefinedStart),
			FormatDelta(e.Delta),
		})
	}
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignRight},
		{Number: 3, Align: text.AlignRight},
		{Number: 4, Align: text.AlignRight},
		{Number: 5, Align: text.AlignRight},
	})

	var b strings.Builder
	b.WriteString(tw.Render())
	fmt.Fprintf(&b, "\nAverage adjustment: %.2fs | Max adjustment: %.2fs | Moved: %d\n",
		r.AverageAdjustment, r.MaxAdjustment, r.Moved)
	return b.String()
}

func truncateTitle(title string) string {
	runes := []rune(title)
	if len(runes) <= maxReportTitle {
		return title
	}
	return string(runes[:maxReportTitle-3]) + "..."
}
