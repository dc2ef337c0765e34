package chapters_test

import (
	"errors"
	"testing"

	"ytcs/internal/chapters"
	"ytcs/internal/services"
)

type span struct {
	start float64
	end   float64
	title string
}

func requireSpans(t *testing.T, got []chapters.Chapter, want []span) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("got %d chapters %v, want %d", len(got), got, len(want))
	}
	for i, w := range want {
		end, ok := got[i].End()
		if !ok {
			t.Fatalf("chapter %d has no end", i)
		}
		if got[i].StartTime != w.start || end != w.end || got[i].Title != w.title {
			t.Fatalf("chapter %d = (%v, %v, %q), want (%v, %v, %q)", i, got[i].StartTime, end, got[i].Title, w.start, w.end, w.title)
		}
	}
	if err := chapters.Validate(got); err != nil {
		t.Fatalf("sequence invalid: %v", err)
	}
}

func requireNotFound(t *testing.T, got []chapters.Chapter, err error) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected NotFound, got %v", got)
	}
	if !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if got != nil {
		t.Fatalf("expected no chapters on NotFound, got %v", got)
	}
}

func TestFromDescriptionNumberedList(t *testing.T) {
	desc := "1 - Intro (0:00)\n2 - Main Theme (3:45)\n3 - Outro (7:10)"
	got, err := chapters.FromDescription(desc, 500)
	if err != nil {
		t.Fatalf("FromDescription returned error: %v", err)
	}
	requireSpans(t, got, []span{
		{0, 225, "Intro"},
		{225, 430, "Main Theme"},
		{430, 500, "Outro"},
	})
}

func TestFromDescriptionNumberedVariants(t *testing.T) {
	desc := "Tracklist:\n1) Dawn (0:00)\n2. Noon [12:30]\n3 — Dusk (25:00)\nThanks for listening!"
	got, err := chapters.FromDescription(desc, 2400)
	if err != nil {
		t.Fatalf("FromDescription returned error: %v", err)
	}
	requireSpans(t, got, []span{
		{0, 750, "Dawn"},
		{750, 1500, "Noon"},
		{1500, 2400, "Dusk"},
	})
}

func TestFromDescriptionBracketed(t *testing.T) {
	desc := "Full album stream\n[00:00:00] - Introduction\n[00:05:30] Main Topic\n(00:15:45) Conclusion\n"
	got, err := chapters.FromDescription(desc, 1200)
	if err != nil {
		t.Fatalf("FromDescription returned error: %v", err)
	}
	requireSpans(t, got, []span{
		{0, 330, "Introduction"},
		{330, 945, "Main Topic"},
		{945, 1200, "Conclusion"},
	})
}

func TestFromDescriptionPlainAndTrailing(t *testing.T) {
	desc := "00:00 - Opening\r\n4:10 Second Song\r\nThird Song – 9:00\r\n"
	got, err := chapters.FromDescription(desc, 720)
	if err != nil {
		t.Fatalf("FromDescription returned error: %v", err)
	}
	requireSpans(t, got, []span{
		{0, 250, "Opening"},
		{250, 540, "Second Song"},
		{540, 720, "Third Song"},
	})
}

func TestFromDescriptionSingleTimestampIsNotFound(t *testing.T) {
	got, err := chapters.FromDescription("Recorded live, runtime 45:00 - enjoy", 3000)
	requireNotFound(t, got, err)
}

func TestFromDescriptionEmpty(t *testing.T) {
	got, err := chapters.FromDescription("", 100)
	requireNotFound(t, got, err)
}

func TestFromDescriptionTimestampBeyondDuration(t *testing.T) {
	got, err := chapters.FromDescription("0:00 Intro\n3:00 Middle\n9:00 Ghost Track", 400)
	requireNotFound(t, got, err)
}

func TestFromDescriptionDuplicateTimestamp(t *testing.T) {
	got, err := chapters.FromDescription("0:00 Intro\n2:00 Middle\n2:00 Again", 400)
	requireNotFound(t, got, err)
}

func TestFromDescriptionSortsAndAnchorsAtZero(t *testing.T) {
	got, err := chapters.FromDescription("5:00 Second\n0:12 First\n8:00 Third", 600)
	if err != nil {
		t.Fatalf("FromDescription returned error: %v", err)
	}
	requireSpans(t, got, []span{
		{0, 300, "First"},
		{300, 480, "Second"},
		{480, 600, "Third"},
	})
}

func TestFromDescriptionSkipsShortTitles(t *testing.T) {
	got, err := chapters.FromDescription("0:00 Intro\n1:00 X\n2:00 Outro", 300)
	if err != nil {
		t.Fatalf("FromDescription returned error: %v", err)
	}
	requireSpans(t, got, []span{
		{0, 120, "Intro"},
		{120, 300, "Outro"},
	})
}

func TestFromDescriptionKeepsLiteralParentheses(t *testing.T) {
	desc := "1 - Suite (Live) (0:00)\n2 - Coda (Part 2) (4:00)"
	got, err := chapters.FromDescription(desc, 600)
	if err != nil {
		t.Fatalf("FromDescription returned error: %v", err)
	}
	requireSpans(t, got, []span{
		{0, 240, "Suite (Live)"},
		{240, 600, "Coda (Part 2)"},
	})

	plain, err := chapters.FromDescription("0:00 Warmup (2:30 edit)\n3:00 Finale", 400)
	if err != nil {
		t.Fatalf("FromDescription returned error: %v", err)
	}
	if len(plain) != 2 {
		t.Fatalf("trailing time inside title must not create a chapter, got %v", plain)
	}
}

func TestFromDescriptionKeepsEmojiSeparators(t *testing.T) {
	got, err := chapters.FromDescription("0:00 Artist 🎵 First\n2:00 Artist ★ Second", 300)
	if err != nil {
		t.Fatalf("FromDescription returned error: %v", err)
	}
	if got[0].Title != "Artist 🎵 First" || got[1].Title != "Artist ★ Second" {
		t.Fatalf("unexpected titles: %q, %q", got[0].Title, got[1].Title)
	}
}

func TestFromDescriptionNumberedFamilyWinsOverPlain(t *testing.T) {
	desc := "Recorded 12:00 - 14:00 at the studio\n1 - Intro (0:00)\n2 - Outro (3:00)"
	got, err := chapters.FromDescription(desc, 400)
	if err != nil {
		t.Fatalf("FromDescription returned error: %v", err)
	}
	requireSpans(t, got, []span{
		{0, 180, "Intro"},
		{180, 400, "Outro"},
	})
}

func TestFromDescriptionUnknownDurationLeavesLastOpen(t *testing.T) {
	got, err := chapters.FromDescription("0:00 Intro\n2:00 Outro", 0)
	if err != nil {
		t.Fatalf("FromDescription returned error: %v", err)
	}
	if _, ok := got[1].End(); ok {
		t.Fatalf("expected open last chapter, got %v", got[1])
	}
	if err := chapters.Validate(got); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}
