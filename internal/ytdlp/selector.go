package ytdlp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"ytcs/internal/logging"
	"ytcs/internal/services"
	"ytcs/internal/services/command"
)

// Attempt is one format strategy. A nil Selector means "omit -f".
type Attempt struct {
	Selector *string
}

// Label names the attempt for logs and error text.
func (a Attempt) Label() string {
	if a.Selector == nil {
		return "unconstrained"
	}
	return *a.Selector
}

// DefaultAttempts returns the standard ordered attempt list. Each call builds a
// fresh slice.
func DefaultAttempts() []Attempt {
	return AttemptsFromSelectors([]string{"bestaudio[ext=m4a]/bestaudio", "140", "bestaudio", ""})
}

// AttemptsFromSelectors converts configured selectors to attempts. An empty or
// blank entry becomes the unconstrained attempt.
func AttemptsFromSelectors(selectors []string) []Attempt {
	out := make([]Attempt, 0, len(selectors))
	for _, sel := range selectors {
		sel = strings.TrimSpace(sel)
		if sel == "" {
			out = append(out, Attempt{})
			continue
		}
		out = append(out, Attempt{Selector: &sel})
	}
	return out
}

// AttemptFailure records one failed attempt.
type AttemptFailure struct {
	Ordinal int
	Attempt Attempt
	Raw     string
	Err     error
}

// Result is the outcome of a successful selection.
type Result struct {
	Path     string
	Attempt  Attempt
	Ordinal  int
	Failures []AttemptFailure
}

// DownloadError is returned when every attempt failed. Raw carries the last
// attempt's diagnostic text verbatim.
type DownloadError struct {
	Failures       []AttemptFailure
	Raw            string
	Classification Classification
}

func (e *DownloadError) Error() string {
	msg := fmt.Sprintf("all %d download attempts failed: %s", len(e.Failures), e.Classification.Message)
	if e.Raw != "" {
		msg += "\n" + e.Raw
	}
	return msg
}

// Unwrap exposes services.ErrDownload and the last attempt's error.
func (e *DownloadError) Unwrap() []error {
	errs := []error{services.ErrDownload}
	if n := len(e.Failures); n > 0 && e.Failures[n-1].Err != nil {
		errs = append(errs, e.Failures[n-1].Err)
	}
	return errs
}

// SelectorOption configures the selector.
type SelectorOption func(*Selector)

// WithAttempts overrides the attempt list. An empty list keeps the default.
func WithAttempts(attempts []Attempt) SelectorOption {
	return func(s *Selector) {
		if len(attempts) > 0 {
			s.attempts = append([]Attempt(nil), attempts...)
		}
	}
}

// WithAttemptTimeout bounds each downloader invocation. Zero disables it.
func WithAttemptTimeout(timeout time.Duration) SelectorOption {
	return func(s *Selector) {
		s.timeout = timeout
	}
}

// WithSelectorLogger attaches a logger.
func WithSelectorLogger(logger *slog.Logger) SelectorOption {
	return func(s *Selector) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// Selector walks the ordered attempt list until one download succeeds.
type Selector struct {
	downloader Downloader
	attempts   []Attempt
	timeout    time.Duration
	logger     *slog.Logger
}

// NewSelector builds a selector around a single-attempt downloader.
func NewSelector(downloader Downloader, opts ...SelectorOption) *Selector {
	s := &Selector{
		downloader: downloader,
		attempts:   DefaultAttempts(),
		logger:     logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = logging.NewComponentLogger(s.logger, "download-selector")
	return s
}

// Download tries each attempt in order. Every failure, including a per-attempt
// timeout, advances to the next attempt. Only cancellation of ctx itself stops
// the walk early.
func (s *Selector) Download(ctx context.Context, url, outBase string, progress func(Progress)) (Result, error) {
	if s.downloader == nil {
		return Result{}, services.Wrap(services.ErrConfiguration, "download", "select", "downloader not configured", nil)
	}
	logger := logging.WithContext(ctx, s.logger)
	var failures []AttemptFailure
	for i, attempt := range s.attempts {
		ordinal := i + 1
		if err := ctx.Err(); err != nil {
			return Result{}, services.Wrap(services.ErrDownload, "download", "select", "cancelled", err)
		}
		logger.Debug("download attempt",
			logging.Int("attempt", ordinal),
			logging.String("selector", attempt.Label()),
		)
		path, err := s.run(ctx, url, attempt, outBase, progress)
		if err == nil {
			logger.Info("download succeeded",
				logging.Int("attempt", ordinal),
				logging.String("selector", attempt.Label()),
			)
			return Result{Path: path, Attempt: attempt, Ordinal: ordinal, Failures: failures}, nil
		}
		raw := rawText(err)
		failures = append(failures, AttemptFailure{Ordinal: ordinal, Attempt: attempt, Raw: raw, Err: err})
		logging.WarnWithContext(logger, "download attempt failed", "download_attempt_failed",
			logging.Int("attempt", ordinal),
			logging.String("selector", attempt.Label()),
			logging.String("error_text", raw),
			logging.String(logging.FieldImpact, "trying next format selector"),
		)
		if parent := ctx.Err(); parent != nil {
			return Result{}, services.Wrap(services.ErrDownload, "download", "select", "cancelled", parent)
		}
	}
	if len(failures) == 0 {
		return Result{}, services.Wrap(services.ErrDownload, "download", "select", "no download attempts configured", nil)
	}
	last := failures[len(failures)-1]
	return Result{}, &DownloadError{
		Failures:       failures,
		Raw:            last.Raw,
		Classification: Classify(last.Raw),
	}
}

func (s *Selector) run(ctx context.Context, url string, attempt Attempt, outBase string, progress func(Progress)) (string, error) {
	attemptCtx := ctx
	if s.timeout > 0 {
		var cancel context.CancelFunc
		attemptCtx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}
	path, err := s.downloader.Download(attemptCtx, url, attempt.Selector, outBase, progress)
	if err != nil && ctx.Err() == nil && errors.Is(attemptCtx.Err(), context.DeadlineExceeded) {
		err = fmt.Errorf("attempt timed out after %s: %w", s.timeout, err)
	}
	return path, err
}

// rawText prefers the command's captured output over the Go error string.
func rawText(err error) string {
	var exitErr *command.ExitError
	if errors.As(err, &exitErr) {
		if diag := exitErr.Diagnostic(); diag != "" {
			if errors.Is(err, context.DeadlineExceeded) {
				return "timed out\n" + diag
			}
			return diag
		}
	}
	return err.Error()
}
