package thumbnail

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png" // Register PNG decoder
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	_ "golang.org/x/image/webp" // Register WebP decoder
	"golang.org/x/time/rate"

	"ytcs/internal/fileutil"
	"ytcs/internal/logging"
)

// CoverName is the file written into the album directory.
const CoverName = "cover.jpg"

const (
	defaultBaseURL       = "https://i.ytimg.com/vi"
	defaultTimeout       = 30 * time.Second
	defaultRetries       = 3
	defaultRetryInterval = time.Second
	maxImageBytes        = 16 << 20
	jpegQuality          = 92
)

// qualities are tried in order; YouTube returns 404 for sizes it lacks.
var qualities = []string{"maxresdefault", "hqdefault", "mqdefault"}

// ErrNoThumbnail is returned when no candidate produced an image.
var ErrNoThumbnail = errors.New("no thumbnail available")

// Option configures the fetcher.
type Option func(*Fetcher)

// WithHTTPClient replaces the HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(f *Fetcher) {
		if client != nil {
			f.client = client
		}
	}
}

// WithBaseURL overrides the image host (primarily for tests).
func WithBaseURL(base string) Option {
	return func(f *Fetcher) {
		if base = strings.TrimRight(strings.TrimSpace(base), "/"); base != "" {
			f.baseURL = base
		}
	}
}

// WithMaxRetries sets the attempts per candidate URL.
func WithMaxRetries(n int) Option {
	return func(f *Fetcher) {
		if n > 0 {
			f.retries = n
		}
	}
}

// WithRetryInterval sets the pause between attempts.
func WithRetryInterval(d time.Duration) Option {
	return func(f *Fetcher) {
		if d > 0 {
			f.retryInterval = d
		}
	}
}

// WithLogger attaches a logger.
func WithLogger(logger *slog.Logger) Option {
	return func(f *Fetcher) {
		if logger != nil {
			f.logger = logger
		}
	}
}

// Fetcher downloads cover art for a video.
type Fetcher struct {
	client        *http.Client
	baseURL       string
	retries       int
	retryInterval time.Duration
	logger        *slog.Logger
}

// NewFetcher constructs a fetcher with a 30 second HTTP timeout.
func NewFetcher(opts ...Option) *Fetcher {
	f := &Fetcher{
		client:        &http.Client{Timeout: defaultTimeout},
		baseURL:       defaultBaseURL,
		retries:       defaultRetries,
		retryInterval: defaultRetryInterval,
		logger:        logging.NewNop(),
	}
	for _, opt := range opts {
		opt(f)
	}
	f.logger = logging.NewComponentLogger(f.logger, "thumbnail")
	return f
}

// Candidates lists image URLs in preference order: the fixed quality ladder
// for videoID, then the metadata thumbnail URL.
func (f *Fetcher) Candidates(videoID, metadataURL string) []string {
	var out []string
	if videoID = strings.TrimSpace(videoID); videoID != "" {
		for _, q := range qualities {
			out = append(out, fmt.Sprintf("%s/%s/%s.jpg", f.baseURL, videoID, q))
		}
	}
	if metadataURL = strings.TrimSpace(metadataURL); metadataURL != "" {
		out = append(out, metadataURL)
	}
	return out
}

// Fetch writes destDir/cover.jpg from the first candidate that yields an
// image. Non-JPEG images are re-encoded as JPEG.
func (f *Fetcher) Fetch(ctx context.Context, videoID, metadataURL, destDir string) (string, error) {
	candidates := f.Candidates(videoID, metadataURL)
	if len(candidates) == 0 {
		return "", ErrNoThumbnail
	}
	logger := logging.WithContext(ctx, f.logger)
	limiter := rate.NewLimiter(rate.Every(f.retryInterval), 1)
	dest := filepath.Join(destDir, CoverName)

	var lastErr error
	for _, candidate := range candidates {
		for attempt := 1; attempt <= f.retries; attempt++ {
			if err := limiter.Wait(ctx); err != nil {
				return "", err
			}
			data, err := f.get(ctx, candidate)
			if err == nil {
				data, err = normalize(data)
			}
			if err == nil {
				if _, err := fileutil.WriteFileAtomic(dest, bytes.NewReader(data), 0o644); err != nil {
					return "", fmt.Errorf("write cover: %w", err)
				}
				logger.Debug("cover saved", logging.String("url", candidate), logging.String("path", dest))
				return dest, nil
			}
			lastErr = err
			var status statusError
			retryable := !errors.As(err, &status) || status.code >= 500
			logger.Debug("thumbnail attempt failed",
				logging.String("url", candidate),
				logging.Int("attempt", attempt),
				logging.Error(err),
			)
			if !retryable {
				break
			}
		}
	}
	return "", fmt.Errorf("%w: %w", ErrNoThumbnail, lastErr)
}

type statusError struct {
	code int
}

func (e statusError) Error() string {
	return fmt.Sprintf("unexpected status %d", e.code)
}

func (f *Fetcher) get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, statusError{code: resp.StatusCode}
	}
	return io.ReadAll(io.LimitReader(resp.Body, maxImageBytes))
}

// normalize returns JPEG bytes for any supported image format.
func normalize(data []byte) ([]byte, error) {
	_, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	if format == "jpeg" {
		return data, nil
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", format, err)
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return nil, fmt.Errorf("encode jpeg: %w", err)
	}
	return buf.Bytes(), nil
}
