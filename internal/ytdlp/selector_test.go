package ytdlp_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"ytcs/internal/services"
	"ytcs/internal/services/command"
	"ytcs/internal/ytdlp"
)

type scriptedDownloader struct {
	failUntil int
	calls     []*string
	errText   func(n int) string
	block     bool
}

func (d *scriptedDownloader) Download(ctx context.Context, url string, selector *string, outBase string, progress func(ytdlp.Progress)) (string, error) {
	d.calls = append(d.calls, selector)
	n := len(d.calls)
	if d.block {
		<-ctx.Done()
		return "", &command.ExitError{Binary: "yt-dlp", Err: ctx.Err(), Output: []string{"[download]   3.0% of 9.00MiB"}}
	}
	if n <= d.failUntil {
		return "", &command.ExitError{Binary: "yt-dlp", Err: errors.New("exit status 1"), Output: []string{d.errText(n)}}
	}
	return outBase + ".mp3", nil
}

func attemptText(n int) string {
	return fmt.Sprintf("ERROR: attempt %d: Requested format is not available", n)
}

func TestDefaultAttemptsOrder(t *testing.T) {
	attempts := ytdlp.DefaultAttempts()
	labels := make([]string, len(attempts))
	for i, a := range attempts {
		labels[i] = a.Label()
	}
	want := []string{"bestaudio[ext=m4a]/bestaudio", "140", "bestaudio", "unconstrained"}
	if strings.Join(labels, ",") != strings.Join(want, ",") {
		t.Fatalf("labels = %v", labels)
	}
	if attempts[3].Selector != nil {
		t.Fatal("last attempt must omit the selector")
	}
	*attempts[0].Selector = "mutated"
	if *ytdlp.DefaultAttempts()[0].Selector != "bestaudio[ext=m4a]/bestaudio" {
		t.Fatal("default attempts must be rebuilt on every call")
	}
}

func TestSelectorSucceedsOnFourthAttempt(t *testing.T) {
	d := &scriptedDownloader{failUntil: 3, errText: attemptText}
	sel := ytdlp.NewSelector(d)
	res, err := sel.Download(context.Background(), "u", "/tmp/out", nil)
	if err != nil {
		t.Fatalf("Download returned error: %v", err)
	}
	if res.Ordinal != 4 || res.Attempt.Selector != nil || res.Path != "/tmp/out.mp3" {
		t.Fatalf("unexpected result: %+v", res)
	}
	if len(res.Failures) != 3 {
		t.Fatalf("expected 3 recorded failures, got %d", len(res.Failures))
	}
	for i, f := range res.Failures {
		if f.Ordinal != i+1 || f.Raw != attemptText(i+1) {
			t.Fatalf("failure %d = %+v", i, f)
		}
	}
	if len(d.calls) != 4 || d.calls[3] != nil || *d.calls[1] != "140" {
		t.Fatalf("unexpected call sequence: %v", d.calls)
	}
}

func TestSelectorFirstSuccessStops(t *testing.T) {
	d := &scriptedDownloader{}
	res, err := ytdlp.NewSelector(d).Download(context.Background(), "u", "/tmp/out", nil)
	if err != nil || res.Ordinal != 1 || len(res.Failures) != 0 || len(d.calls) != 1 {
		t.Fatalf("unexpected outcome: %+v %v calls=%d", res, err, len(d.calls))
	}
}

func TestSelectorAllFail(t *testing.T) {
	d := &scriptedDownloader{failUntil: 99, errText: func(n int) string {
		if n == 4 {
			return "ERROR: [youtube] abc: Video unavailable. This video has been removed by the uploader"
		}
		return attemptText(n)
	}}
	_, err := ytdlp.NewSelector(d).Download(context.Background(), "u", "/tmp/out", nil)
	if !errors.Is(err, services.ErrDownload) {
		t.Fatalf("expected ErrDownload, got %v", err)
	}
	if services.ExitCode(err) != services.ExitDownload {
		t.Fatalf("exit code = %d", services.ExitCode(err))
	}
	var dlErr *ytdlp.DownloadError
	if !errors.As(err, &dlErr) {
		t.Fatalf("expected DownloadError, got %T", err)
	}
	if !strings.Contains(err.Error(), "Video unavailable. This video has been removed by the uploader") {
		t.Fatalf("error must carry the last raw text verbatim: %v", err)
	}
	if dlErr.Classification.Class != ytdlp.ClassUnavailable || len(dlErr.Failures) != 4 {
		t.Fatalf("unexpected error detail: %+v", dlErr)
	}
}

func TestSelectorCustomAttempts(t *testing.T) {
	d := &scriptedDownloader{failUntil: 1, errText: attemptText}
	sel := ytdlp.NewSelector(d, ytdlp.WithAttempts(ytdlp.AttemptsFromSelectors([]string{"251", " "})))
	res, err := sel.Download(context.Background(), "u", "/tmp/out", nil)
	if err != nil {
		t.Fatalf("Download returned error: %v", err)
	}
	if res.Ordinal != 2 || res.Attempt.Label() != "unconstrained" || *d.calls[0] != "251" {
		t.Fatalf("unexpected result: %+v", res)
	}
}

func TestSelectorTimeoutAdvances(t *testing.T) {
	d := &scriptedDownloader{block: true}
	sel := ytdlp.NewSelector(d,
		ytdlp.WithAttempts(ytdlp.AttemptsFromSelectors([]string{"bestaudio", ""})),
		ytdlp.WithAttemptTimeout(20*time.Millisecond),
	)
	_, err := sel.Download(context.Background(), "u", "/tmp/out", nil)
	var dlErr *ytdlp.DownloadError
	if !errors.As(err, &dlErr) {
		t.Fatalf("expected DownloadError, got %v", err)
	}
	if len(d.calls) != 2 {
		t.Fatalf("timeouts must advance to the next attempt, calls=%d", len(d.calls))
	}
	if !strings.HasPrefix(dlErr.Raw, "timed out") {
		t.Fatalf("raw text = %q", dlErr.Raw)
	}
}

func TestSelectorStopsWhenParentCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	d := &scriptedDownloader{}
	_, err := ytdlp.NewSelector(d).Download(ctx, "u", "/tmp/out", nil)
	if !errors.Is(err, context.Canceled) || len(d.calls) != 0 {
		t.Fatalf("expected cancellation before any attempt, err=%v calls=%d", err, len(d.calls))
	}
}
