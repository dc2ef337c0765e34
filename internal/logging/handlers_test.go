package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"math"
	"strings"
	"testing"
	"time"
)

func TestTeeHandlerCollapses(t *testing.T) {
	if _, ok := TeeHandler(nil, nil).(NoopHandler); !ok {
		t.Errorf("expected NoopHandler for all nil handlers, got %T", TeeHandler(nil, nil))
	}

	var buf bytes.Buffer
	inner := slog.NewJSONHandler(&buf, nil)
	if h := TeeHandler(nil, inner, nil); h != inner {
		t.Error("expected single non-nil handler to be returned unwrapped")
	}
}

func TestTeeHandlerRespectsEachLevel(t *testing.T) {
	var infoBuf, debugBuf bytes.Buffer
	infoHandler := slog.NewJSONHandler(&infoBuf, &slog.HandlerOptions{Level: slog.LevelInfo})
	debugHandler := slog.NewJSONHandler(&debugBuf, &slog.HandlerOptions{Level: slog.LevelDebug})

	logger := slog.New(TeeHandler(infoHandler, debugHandler))
	if !logger.Enabled(context.Background(), slog.LevelDebug) {
		t.Fatal("expected tee to be enabled for debug")
	}

	logger.Debug("silence scan")
	logger.Info("track written")

	if strings.Contains(infoBuf.String(), "silence scan") {
		t.Errorf("info handler received debug record: %s", infoBuf.String())
	}
	if !strings.Contains(infoBuf.String(), "track written") {
		t.Errorf("info handler missing info record: %s", infoBuf.String())
	}
	if !strings.Contains(debugBuf.String(), "silence scan") || !strings.Contains(debugBuf.String(), "track written") {
		t.Errorf("debug handler missing records: %s", debugBuf.String())
	}
}

func TestTeeHandlerWithAttrsPropagates(t *testing.T) {
	var buf1, buf2 bytes.Buffer
	h := TeeHandler(slog.NewJSONHandler(&buf1, nil), slog.NewJSONHandler(&buf2, nil))

	logger := slog.New(h).With(slog.String(FieldComponent, "selector")).WithGroup("attempt")
	logger.Info("failed", slog.Int("ordinal", 2))

	for i, buf := range []*bytes.Buffer{&buf1, &buf2} {
		out := buf.String()
		if !strings.Contains(out, `"component":"selector"`) {
			t.Errorf("handler %d missing component attr: %s", i, out)
		}
		if !strings.Contains(out, `"attempt":{"ordinal":2}`) {
			t.Errorf("handler %d missing grouped attr: %s", i, out)
		}
	}
}

type failingHandler struct{ slog.Handler }

func (failingHandler) Handle(context.Context, slog.Record) error { return errors.New("disk full") }

func TestTeeHandlerJoinsErrors(t *testing.T) {
	var buf bytes.Buffer
	ok := slog.NewJSONHandler(&buf, nil)
	h := TeeHandler(failingHandler{ok}, ok)

	err := h.Handle(context.Background(), slog.NewRecord(time.Now(), slog.LevelInfo, "x", 0))
	if err == nil || !strings.Contains(err.Error(), "disk full") {
		t.Fatalf("expected joined error, got %v", err)
	}
	if !strings.Contains(buf.String(), `"msg":"x"`) {
		t.Fatalf("healthy handler should still receive the record: %s", buf.String())
	}
}

func TestJSONHandlerShortKeys(t *testing.T) {
	var buf bytes.Buffer
	lvl := new(slog.LevelVar)
	logger := slog.New(newJSONHandler(&buf, lvl, true))
	logger.Warn("cover art unavailable")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("decode: %v (%s)", err, buf.String())
	}
	if entry["level"] != "warn" {
		t.Errorf("level = %v, want warn", entry["level"])
	}
	ts, _ := entry["ts"].(string)
	if !strings.HasSuffix(ts, "Z") || !strings.Contains(ts, ".") {
		t.Errorf("ts = %q, want UTC with milliseconds", ts)
	}
	src, _ := entry["src"].(string)
	if !strings.HasPrefix(src, "logging/handlers_test.go:") {
		t.Errorf("src = %q, want logging/handlers_test.go:<line>", src)
	}
}

func TestSecondsRoundsToMilliseconds(t *testing.T) {
	if got := Seconds("start_seconds", 12.34567).Value.Float64(); got != 12.346 {
		t.Errorf("Seconds = %v, want 12.346", got)
	}
	if got := Seconds("start_seconds", math.NaN()).Value.String(); got != "unknown" {
		t.Errorf("Seconds(NaN) = %q, want unknown", got)
	}
}
