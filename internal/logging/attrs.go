package logging

import (
	"log/slog"
	"math"
	"time"
)

type Attr = slog.Attr

func Any(key string, value any) Attr { return slog.Any(key, value) }

func Bool(key string, value bool) Attr { return slog.Bool(key, value) }

func Duration(key string, value time.Duration) Attr { return slog.Duration(key, value) }

func Float64(key string, value float64) Attr { return slog.Float64(key, value) }

func Int(key string, value int) Attr { return slog.Int(key, value) }

func String(key string, value string) Attr { return slog.String(key, value) }

// Seconds records a media position rounded to the millisecond. Key names
// should end in "_seconds" so the console handler renders them as durations.
func Seconds(key string, value float64) Attr {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return slog.String(key, "unknown")
	}
	return slog.Float64(key, math.Round(value*1000)/1000)
}

func Error(err error) Attr {
	if err == nil {
		return slog.String("error", "<nil>")
	}
	return slog.Any("error", err)
}

// Args converts attributes to the variadic form accepted by slog methods.
func Args(attrs ...Attr) []any {
	args := make([]any, len(attrs))
	for i, attr := range attrs {
		args[i] = attr
	}
	return args
}

func NewNop() *slog.Logger {
	return slog.New(NoopHandler{})
}

// NewComponentLogger tags logger with a component name; nil yields a no-op logger.
func NewComponentLogger(logger *slog.Logger, component string) *slog.Logger {
	if logger == nil {
		return NewNop()
	}
	return logger.With(String(FieldComponent, component))
}

// HasAttrKey reports whether attrs contains key.
func HasAttrKey(attrs []Attr, key string) bool {
	for _, a := range attrs {
		if a.Key == key {
			return true
		}
	}
	return false
}

// Default hint and impact for warnings that do not name their own.
const (
	defaultErrorHint = "rerun with logging.level = \"debug\" and check " + LogFileName
	defaultImpact    = "tracks are still written"
)

// WarnWithContext logs a warning that always carries event_type, error_hint,
// and impact so warnings can be filtered and explained from the log file.
func WarnWithContext(logger *slog.Logger, msg, eventType string, attrs ...Attr) {
	if logger == nil {
		return
	}
	required := []Attr{
		String(FieldEventType, eventType),
		String(FieldErrorHint, defaultErrorHint),
		String(FieldImpact, defaultImpact),
	}
	for _, attr := range required {
		if !HasAttrKey(attrs, attr.Key) {
			attrs = append(attrs, attr)
		}
	}
	logger.Warn(msg, Args(attrs...)...)
}

// DecisionAttrs describes a choice the pipeline made (chapter tier, refinement,
// download attempt, playlist handling).
func DecisionAttrs(decisionType, result, reason string) []Attr {
	return []Attr{
		String(FieldDecisionType, decisionType),
		String("decision_result", result),
		String("decision_reason", reason),
	}
}
