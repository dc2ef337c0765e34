package ffprobe

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"

	"ytcs/internal/services/command"
)

// Result represents the parsed output from an ffprobe inspection.
type Result struct {
	Streams []Stream
	Format  Format
}

// Stream describes a single stream in the file.
type Stream struct {
	Index      int
	CodecName  string
	CodecType  string
	Duration   string
	BitRate    string
	SampleRate string
	Channels   int
}

// Format captures container-level metadata extracted by ffprobe.
type Format struct {
	Filename   string
	Duration   string
	Size       string
	BitRate    string
	FormatName string
	Tags       map[string]string
}

// Option configures the prober.
type Option func(*Prober)

// WithExecutor injects a custom executor (primarily for tests).
func WithExecutor(exec command.Executor) Option {
	return func(p *Prober) {
		if exec != nil {
			p.exec = exec
		}
	}
}

// Prober runs ffprobe.
type Prober struct {
	binary string
	exec   command.Executor
}

// New constructs a prober for the given ffprobe binary.
func New(binary string, opts ...Option) *Prober {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		binary = "ffprobe"
	}
	p := &Prober{binary: binary, exec: command.New()}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Inspect executes ffprobe against the provided path and decodes the JSON response.
func (p *Prober) Inspect(ctx context.Context, path string) (Result, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return Result{}, errors.New("ffprobe inspect: empty path")
	}
	args := []string{"-v", "error", "-hide_banner", "-show_format", "-show_streams", "-of", "json", "--", path}
	var out strings.Builder
	err := p.exec.Run(ctx, p.binary, args, func(line string) {
		out.WriteString(line)
		out.WriteByte('\n')
	})
	if err != nil {
		return Result{}, fmt.Errorf("ffprobe inspect: %w", err)
	}
	return Parse([]byte(out.String()))
}

// Parse decodes ffprobe -of json output.
func Parse(data []byte) (Result, error) {
	if !gjson.ValidBytes(data) {
		return Result{}, errors.New("ffprobe parse: invalid JSON")
	}
	doc := gjson.ParseBytes(data)
	var result Result
	for _, s := range doc.Get("streams").Array() {
		result.Streams = append(result.Streams, Stream{
			Index:      int(s.Get("index").Int()),
			CodecName:  s.Get("codec_name").String(),
			CodecType:  s.Get("codec_type").String(),
			Duration:   s.Get("duration").String(),
			BitRate:    s.Get("bit_rate").String(),
			SampleRate: s.Get("sample_rate").String(),
			Channels:   int(s.Get("channels").Int()),
		})
	}
	format := doc.Get("format")
	result.Format = Format{
		Filename:   format.Get("filename").String(),
		Duration:   format.Get("duration").String(),
		Size:       format.Get("size").String(),
		BitRate:    format.Get("bit_rate").String(),
		FormatName: format.Get("format_name").String(),
	}
	if tags := format.Get("tags"); tags.IsObject() {
		result.Format.Tags = make(map[string]string)
		tags.ForEach(func(key, value gjson.Result) bool {
			result.Format.Tags[strings.ToLower(key.String())] = value.String()
			return true
		})
	}
	return result, nil
}

// AudioStreamCount returns the number of audio streams discovered.
func (r Result) AudioStreamCount() int {
	count := 0
	for _, stream := range r.Streams {
		if strings.EqualFold(stream.CodecType, "audio") {
			count++
		}
	}
	return count
}

// HasAttachedPicture reports whether a video stream (embedded cover) exists.
func (r Result) HasAttachedPicture() bool {
	for _, stream := range r.Streams {
		if strings.EqualFold(stream.CodecType, "video") {
			return true
		}
	}
	return false
}

// DurationSeconds returns the container duration in seconds, 0 when missing
// and NaN when unparsable.
func (r Result) DurationSeconds() float64 {
	return parseFloat(r.Format.Duration)
}

// SizeBytes returns the reported file size in bytes, or 0 when unavailable.
func (r Result) SizeBytes() int64 {
	size := parseFloat(r.Format.Size)
	if math.IsNaN(size) || size < 0 {
		return 0
	}
	return int64(size)
}

// BitRate returns the container bitrate in bits per second, or 0 when unavailable.
func (r Result) BitRate() int64 {
	rate := parseFloat(r.Format.BitRate)
	if math.IsNaN(rate) || rate < 0 {
		return 0
	}
	return int64(rate)
}

func parseFloat(value string) float64 {
	cleaned := strings.TrimSpace(value)
	if cleaned == "" {
		return 0
	}
	if parsed, err := strconv.ParseFloat(cleaned, 64); err == nil {
		return parsed
	}
	return math.NaN()
}
