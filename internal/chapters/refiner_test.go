package chapters_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"ytcs/internal/chapters"
	"ytcs/internal/services"
)

func twoTracks() []chapters.Chapter {
	return []chapters.Chapter{
		{StartTime: 0, EndTime: chapters.Seconds(250), Title: "First"},
		{StartTime: 250, EndTime: chapters.Seconds(500), Title: "Second"},
	}
}

func TestRefineWithSilenceMovesToMidpoint(t *testing.T) {
	got, report := chapters.RefineWithSilence(twoTracks(), []chapters.Interval{{Start: 248, End: 249}}, 5)
	requireSpans(t, got, []span{{0, 248.5, "First"}, {248.5, 500, "Second"}})
	if report.Moved != 1 {
		t.Fatalf("moved = %d", report.Moved)
	}
	if report.Entries[1].Delta != -1.5 || report.Entries[0].Delta != 0 {
		t.Fatalf("unexpected entries: %+v", report.Entries)
	}
	if report.MaxAdjustment != 1.5 || report.AverageAdjustment != 0.75 {
		t.Fatalf("unexpected summary: avg=%v max=%v", report.AverageAdjustment, report.MaxAdjustment)
	}
}

func TestRefineWithSilenceLeavesBoundaryWithoutOverlap(t *testing.T) {
	original := twoTracks()
	got, report := chapters.RefineWithSilence(original, []chapters.Interval{{Start: 100, End: 101}, {Start: 256, End: 259}}, 5)
	requireSpans(t, got, []span{{0, 250, "First"}, {250, 500, "Second"}})
	if report.Moved != 0 {
		t.Fatalf("moved = %d", report.Moved)
	}
	if got[0].EndTime == original[0].EndTime {
		t.Fatal("refined sequence must not share EndTime pointers with the input")
	}
}

func TestRefineWithSilenceIgnoresMidpointOutsideWindow(t *testing.T) {
	got, report := chapters.RefineWithSilence(twoTracks(), []chapters.Interval{{Start: 255, End: 257}}, 5)
	requireSpans(t, got, []span{{0, 250, "First"}, {250, 500, "Second"}})
	if report.Moved != 0 {
		t.Fatalf("moved = %d", report.Moved)
	}

	got, _ = chapters.RefineWithSilence(twoTracks(), []chapters.Interval{{Start: 255, End: 257}, {Start: 253, End: 255}}, 5)
	requireSpans(t, got, []span{{0, 254, "First"}, {254, 500, "Second"}})
}

func TestRefineWithSilenceIsIdempotent(t *testing.T) {
	input := []chapters.Chapter{
		{StartTime: 0, EndTime: chapters.Seconds(120), Title: "A"},
		{StartTime: 120, EndTime: chapters.Seconds(245), Title: "B"},
		{StartTime: 245, EndTime: chapters.Seconds(400), Title: "C"},
	}
	intervals := []chapters.Interval{{Start: 116, End: 119}, {Start: 121, End: 125}, {Start: 246, End: 250}}

	once, _ := chapters.RefineWithSilence(input, intervals, 5)
	twice, report := chapters.RefineWithSilence(once, intervals, 5)
	if report.Moved != 0 {
		t.Fatalf("second pass moved %d boundaries", report.Moved)
	}
	for i := range once {
		if once[i].StartTime != twice[i].StartTime {
			t.Fatalf("chapter %d changed on second pass: %v -> %v", i, once[i].StartTime, twice[i].StartTime)
		}
	}
	requireSpans(t, once, []span{{0, 117.5, "A"}, {117.5, 248, "B"}, {248, 400, "C"}})
}

func TestRefineWithSilenceTieGoesToEarlierInterval(t *testing.T) {
	chs := []chapters.Chapter{
		{StartTime: 0, EndTime: chapters.Seconds(100), Title: "A"},
		{StartTime: 100, EndTime: chapters.Seconds(200), Title: "B"},
	}
	intervals := []chapters.Interval{{Start: 102, End: 104}, {Start: 96, End: 98}}
	got, _ := chapters.RefineWithSilence(chs, intervals, 5)
	if got[1].StartTime != 97 {
		t.Fatalf("expected earlier interval midpoint 97, got %v", got[1].StartTime)
	}
}

func TestRefineWithSilenceDiscardsNonPositiveChapters(t *testing.T) {
	chs := []chapters.Chapter{
		{StartTime: 0, EndTime: chapters.Seconds(10), Title: "Short One"},
		{StartTime: 10, EndTime: chapters.Seconds(16), Title: "Short Two"},
		{StartTime: 16, EndTime: chapters.Seconds(30), Title: "Long"},
	}
	got, report := chapters.RefineWithSilence(chs, []chapters.Interval{{Start: 11, End: 13}}, 5)
	requireSpans(t, got, []span{{0, 12, "Short One"}, {12, 16, "Short Two"}, {16, 30, "Long"}})
	if report.Moved != 1 {
		t.Fatalf("moved = %d", report.Moved)
	}
}

func TestRefineWithSilenceNeverMovesOuterEdges(t *testing.T) {
	intervals := []chapters.Interval{{Start: 0, End: 2}, {Start: 498, End: 500}}
	got, _ := chapters.RefineWithSilence(twoTracks(), intervals, 5)
	requireSpans(t, got, []span{{0, 250, "First"}, {250, 500, "Second"}})

	single := []chapters.Chapter{{StartTime: 0, EndTime: chapters.Seconds(60), Title: "Only"}}
	got, report := chapters.RefineWithSilence(single, intervals, 5)
	requireSpans(t, got, []span{{0, 60, "Only"}})
	if len(report.Entries) != 1 || report.Moved != 0 {
		t.Fatalf("unexpected report: %+v", report)
	}
}

func TestRefinerRunsAnalysisOnce(t *testing.T) {
	analyzer := &fakeAnalyzer{intervals: []chapters.Interval{{Start: 248, End: 249}}}
	refiner := chapters.NewRefiner(analyzer, chapters.DefaultRefineParams, nil)
	got, report, err := refiner.Refine(context.Background(), twoTracks(), "/tmp/source.mp3")
	if err != nil {
		t.Fatalf("Refine returned error: %v", err)
	}
	if analyzer.calls != 1 || analyzer.threshold != -35 || analyzer.minDur != 1.5 {
		t.Fatalf("analyzer calls=%d threshold=%v min=%v", analyzer.calls, analyzer.threshold, analyzer.minDur)
	}
	if got[1].StartTime != 248.5 || report.Moved != 1 {
		t.Fatalf("unexpected refinement: %v %+v", got, report)
	}
}

func TestRefinerAnalysisFailureKeepsChapters(t *testing.T) {
	analyzer := &fakeAnalyzer{err: errors.New("exit status 1")}
	refiner := chapters.NewRefiner(analyzer, chapters.RefineParams{}, nil)
	got, _, err := refiner.Refine(context.Background(), twoTracks(), "/tmp/source.mp3")
	if !errors.Is(err, services.ErrAnalysis) {
		t.Fatalf("expected ErrAnalysis, got %v", err)
	}
	requireSpans(t, got, []span{{0, 250, "First"}, {250, 500, "Second"}})
}

func TestFormatDelta(t *testing.T) {
	tests := []struct {
		delta float64
		want  string
	}{
		{0, "-"},
		{0.05, "-"},
		{-0.09, "-"},
		{1.2, "+1.2s"},
		{-0.8, "-0.8s"},
		{12.345, "+12.3s"},
	}
	for _, tt := range tests {
		if got := chapters.FormatDelta(tt.delta); got != tt.want {
			t.Errorf("FormatDelta(%v) = %q, want %q", tt.delta, got, tt.want)
		}
	}
}

func TestReportTable(t *testing.T) {
	chs := twoTracks()
	chs[1].Title = "An Exceptionally Long Chapter Title That Overflows"
	_, report := chapters.RefineWithSilence(chs, []chapters.Interval{{Start: 248, End: 249}}, 5)
	out := report.Table()
	for _, fragment := range []string{"Original", "Refined", "-1.5s", "250.0s", "248.5s", "An Exceptionally Long Cha...", "Average adjustment: 0.75s", "Moved: 1"} {
		if !strings.Contains(out, fragment) {
			t.Fatalf("expected %q in table:\n%s", fragment, out)
		}
	}
	if (chapters.Report{}).Table() != "" {
		t.Fatal("empty report should render nothing")
	}
}
