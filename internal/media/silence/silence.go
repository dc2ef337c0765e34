// Package silence runs ffmpeg's silencedetect filter over an audio file and
// parses the reported silence intervals.
package silence

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"ytcs/internal/services/command"
)

// Interval is one detected silence in seconds. End is always greater than Start.
type Interval struct {
	Start float64
	End   float64
}

// Midpoint returns the center of the interval.
func (i Interval) Midpoint() float64 {
	return (i.Start + i.End) / 2
}

// Duration returns the interval length in seconds.
func (i Interval) Duration() float64 {
	return i.End - i.Start
}

var (
	silenceStartPattern = regexp.MustCompile(`silence_start:\s*(-?[0-9]+(?:\.[0-9]+)?)`)
	silenceEndPattern   = regexp.MustCompile(`silence_end:\s*(-?[0-9]+(?:\.[0-9]+)?)`)
)

// Option configures the detector.
type Option func(*Detector)

// WithExecutor injects a custom executor (primarily for tests).
func WithExecutor(exec command.Executor) Option {
	return func(d *Detector) {
		if exec != nil {
			d.exec = exec
		}
	}
}

// Detector invokes ffmpeg silencedetect.
type Detector struct {
	binary string
	exec   command.Executor
}

// New constructs a detector using the given ffmpeg binary.
func New(binary string, opts ...Option) *Detector {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		binary = "ffmpeg"
	}
	d := &Detector{binary: binary, exec: command.New()}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Args builds the ffmpeg argument list for a silencedetect pass.
func Args(path string, thresholdDB, minDuration float64) []string {
	return []string{
		"-hide_banner",
		"-nostats",
		"-i", path,
		"-af", fmt.Sprintf("silencedetect=noise=%sdB:d=%s", formatNumber(thresholdDB), formatNumber(minDuration)),
		"-f", "null",
		"-",
	}
}

// Detect analyzes the whole file and returns silence intervals sorted by start.
// A run that exits non-zero is an error even when some intervals were printed.
func (d *Detector) Detect(ctx context.Context, path string, thresholdDB, minDuration float64) ([]Interval, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("silencedetect: empty path")
	}
	var parser Parser
	err := d.exec.Run(ctx, d.binary, Args(path, thresholdDB, minDuration), parser.Feed)
	if err != nil {
		return nil, fmt.Errorf("silencedetect: %w", err)
	}
	return parser.Intervals(), nil
}

// Parser accumulates silencedetect lines. The zero value is ready to use.
type Parser struct {
	intervals []Interval
	start     float64
	open      bool
}

// Feed consumes one line of ffmpeg output.
func (p *Parser) Feed(line string) {
	if m := silenceStartPattern.FindStringSubmatch(line); m != nil {
		if v, err := strconv.ParseFloat(m[1], 64); err == nil {
			if v < 0 {
				v = 0
			}
			p.start = v
			p.open = true
		}
		return
	}
	if m := silenceEndPattern.FindStringSubmatch(line); m != nil && p.open {
		if v, err := strconv.ParseFloat(m[1], 64); err == nil && v > p.start {
			p.intervals = append(p.intervals, Interval{Start: p.start, End: v})
		}
		p.open = false
	}
}

// Intervals returns the parsed intervals sorted by start. A silence still
// open at end of stream is dropped since its end is unknown.
func (p *Parser) Intervals() []Interval {
	out := append([]Interval(nil), p.intervals...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Start < out[j].Start })
	return out
}

// Parse extracts intervals from complete ffmpeg stderr output.
func Parse(output string) []Interval {
	var p Parser
	for line := range strings.SplitSeq(output, "\n") {
		p.Feed(line)
	}
	return p.Intervals()
}

// Overlapping returns intervals that intersect [from, to].
func Overlapping(intervals []Interval, from, to float64) []Interval {
	var out []Interval
	for _, iv := range intervals {
		if iv.End >= from && iv.Start <= to {
			out = append(out, iv)
		}
	}
	return out
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
