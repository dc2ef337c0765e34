package ytdlp

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
)

// Downloader performs one download attempt with an optional format selector.
// A nil selector omits -f so yt-dlp chooses a format itself.
type Downloader interface {
	Download(ctx context.Context, url string, selector *string, outBase string, progress func(Progress)) (string, error)
}

// DownloadArgs builds the yt-dlp argument list for one attempt. The output
// template keeps yt-dlp's extension so the extracted MP3 lands at outBase.mp3.
func DownloadArgs(url string, selector *string, outBase string) []string {
	args := make([]string, 0, 14)
	if selector != nil {
		args = append(args, "-f", *selector)
	}
	args = append(args,
		"-x",
		"--audio-format", "mp3",
		"--audio-quality", "0",
		"-o", outBase+".%(ext)s",
		"--no-playlist",
		"--newline",
		url,
	)
	return args
}

// Download runs yt-dlp once and returns the path of the extracted MP3.
func (c *Client) Download(ctx context.Context, url string, selector *string, outBase string, progress func(Progress)) (string, error) {
	outBase = strings.TrimSpace(outBase)
	if outBase == "" {
		return "", errors.New("output path required")
	}
	err := c.exec.Run(ctx, c.binary, DownloadArgs(url, selector, outBase), func(line string) {
		if progress == nil {
			return
		}
		if p, ok := ParseProgress(line); ok {
			progress(p)
		}
	})
	if err != nil {
		return "", fmt.Errorf("yt-dlp download: %w", err)
	}
	path := outBase + ".mp3"
	if _, err := os.Stat(path); err != nil {
		return "", fmt.Errorf("yt-dlp reported success but %s is missing: %w", path, err)
	}
	return path, nil
}
