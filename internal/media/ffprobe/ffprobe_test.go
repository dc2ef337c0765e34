package ffprobe

import (
	"context"
	"errors"
	"math"
	"strings"
	"testing"
)

type stubExecutor struct {
	output string
	err    error
	args   []string
}

func (s *stubExecutor) Run(ctx context.Context, binary string, args []string, onLine func(string)) error {
	s.args = args
	for line := range strings.SplitSeq(s.output, "\n") {
		onLine(line)
	}
	return s.err
}

const probeJSON = `{
    "streams": [
        {"index": 0, "codec_name": "mp3", "codec_type": "audio", "sample_rate": "44100", "channels": 2, "bit_rate": "192000"},
        {"index": 1, "codec_name": "mjpeg", "codec_type": "video"}
    ],
    "format": {
        "filename": "01 - Intro.mp3",
        "duration": "225.018776",
        "size": "5401234",
        "bit_rate": "192000",
        "format_name": "mp3",
        "tags": {"title": "Intro", "ARTIST": "Artist", "track": "1/3"}
    }
}`

func TestInspectParsesOutput(t *testing.T) {
	stub := &stubExecutor{output: probeJSON}
	result, err := New("", WithExecutor(stub)).Inspect(context.Background(), "01 - Intro.mp3")
	if err != nil {
		t.Fatalf("Inspect returned error: %v", err)
	}
	if stub.args[len(stub.args)-1] != "01 - Intro.mp3" || stub.args[len(stub.args)-2] != "--" {
		t.Fatalf("unexpected args: %v", stub.args)
	}
	if result.AudioStreamCount() != 1 || !result.HasAttachedPicture() {
		t.Fatalf("unexpected streams: %+v", result.Streams)
	}
	if result.Streams[0].Channels != 2 || result.Format.Tags["artist"] != "Artist" || result.Format.Tags["track"] != "1/3" {
		t.Fatalf("unexpected parse: %+v", result)
	}
	if result.SizeBytes() != 5401234 || result.BitRate() != 192000 {
		t.Fatalf("unexpected format numbers: %+v", result.Format)
	}
}

func TestResultHelpersHandleInvalidNumbers(t *testing.T) {
	result := Result{
		Format: Format{
			Duration: "bad",
			Size:     "-1",
			BitRate:  "nope",
		},
	}
	if !math.IsNaN(result.DurationSeconds()) {
		t.Fatalf("expected duration NaN, got %v", result.DurationSeconds())
	}
	if result.SizeBytes() != 0 {
		t.Fatalf("expected size 0, got %d", result.SizeBytes())
	}
	if result.BitRate() != 0 {
		t.Fatalf("expected bitrate 0, got %d", result.BitRate())
	}
	if _, err := Parse([]byte("not json")); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestInspectErrors(t *testing.T) {
	if _, err := New("ffprobe", WithExecutor(&stubExecutor{err: errors.New("exit status 1")})).Inspect(context.Background(), "a.mp3"); err == nil {
		t.Fatal("expected executor failure to surface")
	}
	if _, err := New("ffprobe").Inspect(context.Background(), "  "); err == nil {
		t.Fatal("expected empty path error")
	}
}
