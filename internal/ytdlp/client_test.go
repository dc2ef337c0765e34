package ytdlp_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"ytcs/internal/services"
	"ytcs/internal/services/command"
	"ytcs/internal/ytdlp"
)

type stubExecutor struct {
	lines  []string
	err    error
	binary string
	args   []string
	onRun  func(args []string)
}

func (s *stubExecutor) Run(ctx context.Context, binary string, args []string, onLine func(string)) error {
	s.binary = binary
	s.args = append([]string(nil), args...)
	if s.onRun != nil {
		s.onRun(args)
	}
	for _, line := range s.lines {
		onLine(line)
	}
	return s.err
}

const videoJSON = `{"id":"abc123def45","title":"Artist Name - Album Title [Full Album]","duration":500.5,` +
	`"description":"1 - Intro (0:00)\n2 - Outro (3:00)","uploader":"Artist VEVO","channel":"Artist",` +
	`"thumbnail":"https://i.ytimg.com/vi/abc123def45/maxresdefault.jpg","webpage_url":"https://www.youtube.com/watch?v=abc123def45",` +
	`"chapters":[{"title":"Intro","start_time":0.0,"end_time":180.0},{"title":"","start_time":180.0,"end_time":500.5},{"end_time":10}]}`

func TestFetchInfoParsesDumpJSON(t *testing.T) {
	stub := &stubExecutor{lines: []string{"[youtube] abc123def45: Downloading webpage", videoJSON}}
	client := ytdlp.New("", ytdlp.WithExecutor(stub))

	info, err := client.FetchInfo(context.Background(), "https://www.youtube.com/watch?v=abc123def45")
	if err != nil {
		t.Fatalf("FetchInfo returned error: %v", err)
	}
	if stub.binary != "yt-dlp" {
		t.Fatalf("binary = %q", stub.binary)
	}
	if !slices.Equal(stub.args, []string{"--dump-json", "--no-playlist", "--no-warnings", "https://www.youtube.com/watch?v=abc123def45"}) {
		t.Fatalf("unexpected args: %v", stub.args)
	}
	if info.ID != "abc123def45" || info.Duration != 500.5 || info.Uploader != "Artist VEVO" {
		t.Fatalf("unexpected info: %+v", info)
	}
	if len(info.Chapters) != 2 {
		t.Fatalf("expected 2 chapters (entry without start dropped), got %+v", info.Chapters)
	}
	if info.Chapters[1].Title != "" || info.Chapters[1].EndTime == nil || *info.Chapters[1].EndTime != 500.5 {
		t.Fatalf("unexpected second chapter: %+v", info.Chapters[1])
	}
	src := info.Source()
	if src.Duration != 500.5 || !strings.Contains(src.Description, "Outro") || len(src.Chapters) != 2 {
		t.Fatalf("unexpected source: %+v", src)
	}
}

func TestParseInfoDefaults(t *testing.T) {
	info, err := ytdlp.ParseInfo([]byte(`{"id":"x","channel":"Fallback Channel"}`))
	if err != nil {
		t.Fatalf("ParseInfo returned error: %v", err)
	}
	if info.Title != "Untitled Video" || info.Uploader != "Fallback Channel" {
		t.Fatalf("unexpected defaults: %+v", info)
	}
	info, _ = ytdlp.ParseInfo([]byte(`{"id":"x"}`))
	if info.Uploader != "Unknown" {
		t.Fatalf("uploader = %q", info.Uploader)
	}
	if _, err := ytdlp.ParseInfo([]byte(`{"id":`)); !errors.Is(err, services.ErrParse) {
		t.Fatalf("expected ErrParse, got %v", err)
	}
}

func TestFetchInfoFailureIsClassified(t *testing.T) {
	stub := &stubExecutor{err: &command.ExitError{
		Binary: "yt-dlp",
		Err:    errors.New("exit status 1"),
		Output: []string{"ERROR: [youtube] abc123def45: Private video. Sign in if you've been granted access"},
	}}
	client := ytdlp.New("yt-dlp", ytdlp.WithExecutor(stub))
	_, err := client.FetchInfo(context.Background(), "https://youtu.be/abc123def45")
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected ErrExternalTool, got %v", err)
	}
	if !strings.Contains(err.Error(), "requires authentication") {
		t.Fatalf("expected classified message, got %v", err)
	}
}

func TestFetchInfoWithoutJSON(t *testing.T) {
	client := ytdlp.New("yt-dlp", ytdlp.WithExecutor(&stubExecutor{lines: []string{"nothing useful"}}))
	if _, err := client.FetchInfo(context.Background(), "u"); !errors.Is(err, services.ErrParse) {
		t.Fatalf("expected ErrParse, got %v", err)
	}
}

func TestFetchPlaylist(t *testing.T) {
	stub := &stubExecutor{lines: []string{
		`{"id":"aaaaaaaaaaa","title":"First","duration":120,"playlist_title":"Road Trip","playlist_id":"PL123"}`,
		`WARNING: something noisy`,
		`{"id":"bbbbbbbbbbb","title":"","playlist_title":"Road Trip"}`,
		`{"title":"no id"}`,
	}}
	client := ytdlp.New("yt-dlp", ytdlp.WithExecutor(stub))
	pl, err := client.FetchPlaylist(context.Background(), "https://www.youtube.com/playlist?list=PL123")
	if err != nil {
		t.Fatalf("FetchPlaylist returned error: %v", err)
	}
	if !slices.Contains(stub.args, "--flat-playlist") {
		t.Fatalf("expected --flat-playlist in %v", stub.args)
	}
	if pl.ID != "PL123" || pl.Title != "Road Trip" || len(pl.Entries) != 2 {
		t.Fatalf("unexpected playlist: %+v", pl)
	}
	if pl.Entries[0].URL != "https://www.youtube.com/watch?v=aaaaaaaaaaa" || pl.Entries[1].Title != "Untitled Video" {
		t.Fatalf("unexpected entries: %+v", pl.Entries)
	}
}

func TestFetchPlaylistEmpty(t *testing.T) {
	client := ytdlp.New("yt-dlp", ytdlp.WithExecutor(&stubExecutor{}))
	if _, err := client.FetchPlaylist(context.Background(), "https://www.youtube.com/playlist?list=PL1"); !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestDownloadArgs(t *testing.T) {
	sel := "140"
	got := ytdlp.DownloadArgs("https://youtu.be/x", &sel, "/music/.ytcs-1")
	want := []string{"-f", "140", "-x", "--audio-format", "mp3", "--audio-quality", "0", "-o", "/music/.ytcs-1.%(ext)s", "--no-playlist", "--newline", "https://youtu.be/x"}
	if !slices.Equal(got, want) {
		t.Fatalf("args = %v\nwant %v", got, want)
	}
	if slices.Contains(ytdlp.DownloadArgs("u", nil, "/tmp/a"), "-f") {
		t.Fatal("nil selector must omit -f")
	}
}

func TestClientDownloadReportsProgressAndPath(t *testing.T) {
	dir := t.TempDir()
	base := filepath.Join(dir, ".ytcs-test")
	stub := &stubExecutor{
		lines: []string{
			"[youtube] x: Downloading webpage",
			"[download]  42.3% of 3.20MiB at 1.21MiB/s ETA 00:12",
			"[download] 100% of 3.20MiB in 00:02",
		},
		onRun: func([]string) {
			_ = os.WriteFile(base+".mp3", []byte("id3"), 0o644)
		},
	}
	client := ytdlp.New("yt-dlp", ytdlp.WithExecutor(stub))
	var updates []ytdlp.Progress
	path, err := client.Download(context.Background(), "u", nil, base, func(p ytdlp.Progress) {
		updates = append(updates, p)
	})
	if err != nil {
		t.Fatalf("Download returned error: %v", err)
	}
	if path != base+".mp3" {
		t.Fatalf("path = %q", path)
	}
	if len(updates) != 1 || updates[0].Percent != 42.3 {
		t.Fatalf("unexpected progress updates: %+v", updates)
	}
}

func TestClientDownloadMissingOutput(t *testing.T) {
	client := ytdlp.New("yt-dlp", ytdlp.WithExecutor(&stubExecutor{}))
	if _, err := client.Download(context.Background(), "u", nil, filepath.Join(t.TempDir(), "missing"), nil); err == nil {
		t.Fatal("expected error when the MP3 was not produced")
	}
}
