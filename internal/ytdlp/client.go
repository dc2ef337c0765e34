package ytdlp

import (
	"log/slog"
	"strings"

	"ytcs/internal/logging"
	"ytcs/internal/services/command"
)

// Option configures the client.
type Option func(*Client)

// WithExecutor injects a custom executor (primarily for tests).
func WithExecutor(exec command.Executor) Option {
	return func(c *Client) {
		if exec != nil {
			c.exec = exec
		}
	}
}

// WithLogger attaches a logger to the client.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// Client wraps yt-dlp CLI interactions.
type Client struct {
	binary string
	exec   command.Executor
	logger *slog.Logger
}

// New constructs a yt-dlp client. An empty binary means "yt-dlp" from PATH.
func New(binary string, opts ...Option) *Client {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		binary = "yt-dlp"
	}
	c := &Client{
		binary: binary,
		exec:   command.New(),
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = logging.NewComponentLogger(c.logger, "ytdlp")
	return c
}

// Binary returns the executable the client invokes.
func (c *Client) Binary() string {
	return c.binary
}

// jsonLines keeps output lines that look like JSON documents. yt-dlp writes
// the documents to stdout and diagnostics to stderr; both arrive interleaved.
type jsonLines struct {
	lines []string
}

func (j *jsonLines) feed(line string) {
	trimmed := strings.TrimSpace(line)
	if strings.HasPrefix(trimmed, "{") {
		j.lines = append(j.lines, trimmed)
	}
}
