package pipeline

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"ytcs/internal/chapters"
	"ytcs/internal/media/audio"
	"ytcs/internal/testsupport"
)

func TestRenderSummaryCountsWrittenAndSkipped(t *testing.T) {
	dir := t.TempDir()
	first := filepath.Join(dir, "01 - One.mp3")
	second := filepath.Join(dir, "02 - Two.mp3")
	testsupport.WriteFile(t, first, 1024)
	testsupport.WriteFile(t, second, 1024)

	res := Result{
		OutputDir: dir,
		Outcomes: []audio.Outcome{
			{Track: audio.Track{Number: 1, Path: first}},
			{Track: audio.Track{Number: 2, Path: second}, Skipped: true},
		},
	}
	var buf bytes.Buffer
	renderSummary(&buf, res)
	out := buf.String()

	if !strings.Contains(out, "Wrote 1 track (1.0 KiB) to "+dir) {
		t.Fatalf("unexpected summary: %q", out)
	}
	if !strings.Contains(out, "Skipped 1 existing track") {
		t.Fatalf("expected skipped line, got %q", out)
	}
	if !strings.Contains(out, "Cover art: none") {
		t.Fatalf("expected cover note, got %q", out)
	}
}

func TestRenderChaptersOpenEnded(t *testing.T) {
	var buf bytes.Buffer
	renderChapters(&buf, chapters.TierDescription, []chapters.Chapter{
		{Title: "Intro", StartTime: 0, EndTime: chapters.Seconds(90)},
		{Title: "Outro", StartTime: 90},
	})
	out := buf.String()
	if !strings.Contains(out, "2 chapters from") {
		t.Fatalf("missing title: %q", out)
	}
	if !strings.Contains(out, "Outro") || !strings.Contains(out, "1:30") {
		t.Fatalf("missing rows: %q", out)
	}
}
