package ytdlp

import (
	"context"
	"strings"

	"github.com/tidwall/gjson"

	"ytcs/internal/chapters"
	"ytcs/internal/services"
	"ytcs/internal/services/command"
)

const defaultVideoTitle = "Untitled Video"

// Info is the subset of yt-dlp --dump-json output the pipeline consumes.
// Chapter titles may be empty; the chapter resolver assigns placeholders.
type Info struct {
	ID          string
	Title       string
	Duration    float64
	Description string
	Uploader    string
	Channel     string
	Thumbnail   string
	WebpageURL  string
	Chapters    []chapters.RawChapter
}

// Source exposes the fields the chapter resolver works from.
func (i Info) Source() chapters.Source {
	return chapters.Source{
		Chapters:    i.Chapters,
		Duration:    i.Duration,
		Description: i.Description,
		Uploader:    i.Uploader,
	}
}

// FetchInfo retrieves metadata for a single video.
func (c *Client) FetchInfo(ctx context.Context, url string) (Info, error) {
	args := []string{"--dump-json", "--no-playlist", "--no-warnings", url}
	var out jsonLines
	if err := c.exec.Run(ctx, c.binary, args, out.feed); err != nil {
		return Info{}, services.Wrap(services.ErrExternalTool, "metadata", "yt-dlp --dump-json", Classify(command.Diagnostic(err)).Message, err)
	}
	if len(out.lines) == 0 {
		return Info{}, services.Wrap(services.ErrParse, "metadata", "yt-dlp --dump-json", "no JSON document in output", nil)
	}
	return ParseInfo([]byte(out.lines[len(out.lines)-1]))
}

// ParseInfo decodes one yt-dlp JSON document.
func ParseInfo(data []byte) (Info, error) {
	if !gjson.ValidBytes(data) {
		return Info{}, services.Wrap(services.ErrParse, "metadata", "decode", "invalid JSON from yt-dlp", nil)
	}
	doc := gjson.ParseBytes(data)
	info := Info{
		ID:          doc.Get("id").String(),
		Title:       strings.TrimSpace(doc.Get("title").String()),
		Duration:    doc.Get("duration").Float(),
		Description: doc.Get("description").String(),
		Uploader:    strings.TrimSpace(doc.Get("uploader").String()),
		Channel:     strings.TrimSpace(doc.Get("channel").String()),
		Thumbnail:   doc.Get("thumbnail").String(),
		WebpageURL:  doc.Get("webpage_url").String(),
	}
	if info.Title == "" {
		info.Title = defaultVideoTitle
	}
	if info.Uploader == "" {
		info.Uploader = info.Channel
	}
	if info.Uploader == "" {
		info.Uploader = "Unknown"
	}
	if info.Duration < 0 {
		info.Duration = 0
	}

	entries := doc.Get("chapters")
	if entries.IsArray() {
		for _, entry := range entries.Array() {
			start := entry.Get("start_time")
			if !start.Exists() {
				continue
			}
			raw := chapters.RawChapter{
				Title:     strings.TrimSpace(entry.Get("title").String()),
				StartTime: start.Float(),
			}
			if end := entry.Get("end_time"); end.Exists() {
				raw.EndTime = chapters.Seconds(end.Float())
			}
			info.Chapters = append(info.Chapters, raw)
		}
	}
	return info, nil
}
