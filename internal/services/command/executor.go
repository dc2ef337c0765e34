// Package command runs external binaries (yt-dlp, ffmpeg) line by line and
// keeps the tail of their output for diagnostics.
package command

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"sync"
)

// TailLines is the number of trailing output lines kept on failure.
const TailLines = 20

// maxLineBytes bounds a single output line; yt-dlp --dump-json prints one
// large JSON document per line.
const maxLineBytes = 32 << 20

// Executor abstracts command execution for testability. onLine receives every
// stdout and stderr line; calls are serialized.
type Executor interface {
	Run(ctx context.Context, binary string, args []string, onLine func(string)) error
}

// ExitError reports a failed command with the last lines it printed.
type ExitError struct {
	Binary string
	Err    error
	Output []string
}

func (e *ExitError) Error() string {
	if e == nil {
		return "<nil>"
	}
	msg := fmt.Sprintf("%s: %v", e.Binary, e.Err)
	if diag := e.Diagnostic(); diag != "" {
		msg += ": " + diag
	}
	return msg
}

func (e *ExitError) Unwrap() error { return e.Err }

// Diagnostic returns the captured output joined by newlines.
func (e *ExitError) Diagnostic() string {
	if e == nil {
		return ""
	}
	return strings.TrimSpace(strings.Join(e.Output, "\n"))
}

// Diagnostic extracts the captured output from err when it wraps an
// ExitError, falling back to err.Error().
func Diagnostic(err error) string {
	if err == nil {
		return ""
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		if diag := exitErr.Diagnostic(); diag != "" {
			return diag
		}
	}
	return err.Error()
}

// New returns the os/exec backed executor.
func New() Executor {
	return commandExecutor{}
}

type commandExecutor struct{}

func (commandExecutor) Run(ctx context.Context, binary string, args []string, onLine func(string)) error {
	cmd := exec.CommandContext(ctx, binary, args...) //nolint:gosec
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("stdout pipe: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return fmt.Errorf("stderr pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start %s: %w", binary, err)
	}

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		scanErr error
		once    sync.Once
		tail    = newRing(TailLines)
	)

	forward := func(line string) {
		mu.Lock()
		defer mu.Unlock()
		tail.push(line)
		if onLine != nil {
			onLine(line)
		}
	}

	scan := func(r io.Reader) {
		defer wg.Done()
		scanner := bufio.NewScanner(r)
		scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
		scanner.Split(scanLinesOrCarriage)
		for scanner.Scan() {
			forward(scanner.Text())
		}
		if err := scanner.Err(); err != nil {
			once.Do(func() {
				scanErr = err
			})
		}
	}

	wg.Add(2)
	go scan(stdout)
	go scan(stderr)

	wg.Wait()
	if scanErr != nil {
		_ = cmd.Process.Kill()
		_ = cmd.Wait()
		return fmt.Errorf("scan output: %w", scanErr)
	}

	if err := cmd.Wait(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			err = fmt.Errorf("%w (%w)", ctxErr, err)
		}
		return &ExitError{Binary: binary, Err: err, Output: tail.lines()}
	}
	return nil
}

// scanLinesOrCarriage splits on \n and on bare \r so in-place progress updates
// arrive as separate lines.
func scanLinesOrCarriage(data []byte, atEOF bool) (advance int, token []byte, err error) {
	if atEOF && len(data) == 0 {
		return 0, nil, nil
	}
	for i, b := range data {
		if b == '\n' || b == '\r' {
			return i + 1, data[:i], nil
		}
	}
	if atEOF {
		return len(data), data, nil
	}
	return 0, nil, nil
}

type ring struct {
	buf  []string
	next int
	full bool
}

func newRing(size int) *ring {
	return &ring{buf: make([]string, size)}
}

func (r *ring) push(line string) {
	if strings.TrimSpace(line) == "" {
		return
	}
	r.buf[r.next] = line
	r.next = (r.next + 1) % len(r.buf)
	if r.next == 0 {
		r.full = true
	}
}

func (r *ring) lines() []string {
	if !r.full {
		return append([]string(nil), r.buf[:r.next]...)
	}
	out := make([]string, 0, len(r.buf))
	out = append(out, r.buf[r.next:]...)
	return append(out, r.buf[:r.next]...)
}
