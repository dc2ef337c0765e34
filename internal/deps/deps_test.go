package deps

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"ytcs/internal/services"
)

type versionExecutor struct {
	banners map[string]string
	calls   []string
}

func (e *versionExecutor) Run(_ context.Context, binary string, _ []string, onLine func(string)) error {
	e.calls = append(e.calls, binary)
	banner, ok := e.banners[filepath.Base(binary)]
	if !ok {
		return errors.New("exit status 1")
	}
	onLine(banner)
	onLine("second line ignored")
	return nil
}

func TestCheckBinaries(t *testing.T) {
	binDir := t.TempDir()
	present := filepath.Join(binDir, "present")
	script := []byte("#!/bin/sh\nexit 0\n")
	if err := os.WriteFile(present, script, 0o755); err != nil {
		t.Fatalf("write stub: %v", err)
	}
	reqs := []Requirement{
		{Name: "Present", Command: present},
		{Name: "Missing", Command: "clearly-not-present-binary"},
		{Name: "Blank", Command: "  "},
	}

	results := CheckBinaries(reqs)
	if len(results) != len(reqs) {
		t.Fatalf("expected %d results, got %d", len(reqs), len(results))
	}
	if !results[0].Available || results[0].Path != present {
		t.Fatalf("expected first requirement to be available, got %#v", results[0])
	}
	if results[0].Detail != "" {
		t.Fatalf("unexpected detail for available dependency: %s", results[0].Detail)
	}
	if results[1].Available || results[1].Detail == "" {
		t.Fatalf("expected missing binary with detail, got %#v", results[1])
	}
	if results[1].Command != "clearly-not-present-binary" {
		t.Fatalf("unexpected command recorded: %s", results[1].Command)
	}
	if results[2].Detail != "command not configured" {
		t.Fatalf("unexpected detail for blank command: %q", results[2].Detail)
	}
}

func TestCheckProbesVersions(t *testing.T) {
	exec := &versionExecutor{banners: map[string]string{
		"yt-dlp": "2025.09.26",
		"ffmpeg": "ffmpeg version 7.1.1 Copyright (c) 2000-2025 the FFmpeg developers",
	}}
	lookPath := func(name string) (string, error) {
		if name == "ffprobe" {
			return "", errors.New("not found")
		}
		return "/usr/bin/" + name, nil
	}
	checker := NewChecker(WithExecutor(exec), WithLookPath(lookPath))

	statuses := checker.Check(context.Background(), Requirements("yt-dlp", "ffmpeg", "ffprobe"))
	if len(statuses) != 3 {
		t.Fatalf("expected 3 statuses, got %d", len(statuses))
	}
	if statuses[0].Version != "2025.09.26" {
		t.Errorf("yt-dlp version = %q", statuses[0].Version)
	}
	if statuses[1].Version != "7.1.1" {
		t.Errorf("ffmpeg version = %q", statuses[1].Version)
	}
	if statuses[2].Available || statuses[2].Version != "" {
		t.Errorf("ffprobe should be missing without version: %#v", statuses[2])
	}
	if len(exec.calls) != 2 {
		t.Errorf("expected 2 version probes, got %v", exec.calls)
	}

	err := Require(statuses, InstallApt)
	if !errors.Is(err, services.ErrDependency) {
		t.Fatalf("expected ErrDependency, got %v", err)
	}
	if !strings.Contains(err.Error(), "FFprobe") || !strings.Contains(err.Error(), "sudo apt install ffmpeg") {
		t.Fatalf("unexpected error text: %v", err)
	}
	if services.ExitCode(err) != services.ExitDependency {
		t.Fatalf("unexpected exit code %d", services.ExitCode(err))
	}
}

func TestRequireAllPresent(t *testing.T) {
	statuses := []Status{{Name: "yt-dlp", Available: true}, {Name: "opt", Optional: true}}
	if err := Require(statuses, InstallBrew); err != nil {
		t.Fatalf("expected nil, got %v", err)
	}
}

func TestParseVersion(t *testing.T) {
	tests := []struct{ in, want string }{
		{"2025.09.26", "2025.09.26"},
		{"ffprobe version n7.0 Copyright (c) 2007-2024", "n7.0"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := ParseVersion(tt.in); got != tt.want {
			t.Errorf("ParseVersion(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestInstallHint(t *testing.T) {
	pkgs := []string{"yt-dlp", "ffmpeg", "ffmpeg"}
	tests := []struct {
		method InstallMethod
		want   string
	}{
		{InstallApt, "sudo apt install yt-dlp ffmpeg"},
		{InstallDnf, "sudo dnf install yt-dlp ffmpeg"},
		{InstallPacman, "sudo pacman -S yt-dlp ffmpeg"},
		{InstallBrew, "brew install yt-dlp ffmpeg"},
		{InstallPip, "python3 -m pip install --upgrade yt-dlp; ffmpeg from https://ffmpeg.org/download.html"},
		{InstallManual, "install yt-dlp ffmpeg with your package manager"},
	}
	for _, tt := range tests {
		if got := InstallHint(tt.method, pkgs); got != tt.want {
			t.Errorf("InstallHint(%s) = %q, want %q", tt.method, got, tt.want)
		}
	}
	if got := InstallHint(InstallApt, nil); got != "" {
		t.Errorf("expected empty hint, got %q", got)
	}
}

func TestDetectInstallMethod(t *testing.T) {
	only := func(names ...string) func(string) (string, error) {
		return func(name string) (string, error) {
			for _, n := range names {
				if n == name {
					return "/usr/bin/" + name, nil
				}
			}
			return "", errors.New("not found")
		}
	}
	tests := []struct {
		goos  string
		found []string
		want  InstallMethod
	}{
		{"linux", []string{"apt-get"}, InstallApt},
		{"linux", []string{"dnf"}, InstallDnf},
		{"linux", []string{"pacman"}, InstallPacman},
		{"linux", nil, InstallPip},
		{"darwin", []string{"brew"}, InstallBrew},
		{"darwin", nil, InstallManual},
		{"windows", []string{"winget"}, InstallWinget},
	}
	for _, tt := range tests {
		if got := detectInstallMethod(tt.goos, only(tt.found...)); got != tt.want {
			t.Errorf("%s %v: got %s, want %s", tt.goos, tt.found, got, tt.want)
		}
	}
}
