package services_test

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"ytcs/internal/services"
)

func TestWrapIncludesContext(t *testing.T) {
	base := errors.New("boom")
	err := services.Wrap(services.ErrExternalTool, "split", "ffmpeg", "failed", base)
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected marker to be retained, got %v", err)
	}
	if !errors.Is(err, base) {
		t.Fatalf("expected wrapped error to contain base error, got %v", err)
	}
	msg := err.Error()
	for _, fragment := range []string{"split", "ffmpeg", "failed", "boom"} {
		if !strings.Contains(msg, fragment) {
			t.Fatalf("expected %q in error string %q", fragment, msg)
		}
	}
}

func TestWrapDefaultsToTransient(t *testing.T) {
	err := services.Wrap(nil, "", "", "", nil)
	if !errors.Is(err, services.ErrTransient) {
		t.Fatalf("expected transient marker, got %v", err)
	}
	if !strings.Contains(err.Error(), "service failure") {
		t.Fatalf("expected placeholder detail, got %q", err.Error())
	}
}

func TestExitCodeMapping(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{nil, 0},
		{services.Wrap(services.ErrConfiguration, "config", "load", "bad", nil), services.ExitConfiguration},
		{services.Wrap(services.ErrValidation, "cli", "args", "bad url", nil), services.ExitConfiguration},
		{fmt.Errorf("run: %w", services.Wrap(services.ErrDownload, "download", "", "exhausted", nil)), services.ExitDownload},
		{services.Wrap(services.ErrDependency, "deps", "", "yt-dlp missing", nil), services.ExitDependency},
		{errors.New("other"), services.ExitFailure},
	}
	for _, tc := range cases {
		if got := services.ExitCode(tc.err); got != tc.want {
			t.Errorf("ExitCode(%v) = %d, want %d", tc.err, got, tc.want)
		}
	}
}
