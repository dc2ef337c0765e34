package textutil

import (
	"fmt"
	"math"
	"strings"
)

// TrackFields holds the values substituted into output name templates.
type TrackFields struct {
	Number int
	Title  string
	Artist string
	Album  string
}

// ExpandTemplate substitutes %n (two-digit track number), %t (title),
// %a (artist), and %A (album) in format. Unknown directives and a trailing
// lone % are kept verbatim. The result is sanitized for use as a single path
// segment.
func ExpandTemplate(format string, fields TrackFields) string {
	var b strings.Builder
	b.Grow(len(format) + len(fields.Title) + len(fields.Artist) + len(fields.Album))
	for i := 0; i < len(format); i++ {
		c := format[i]
		if c != '%' || i+1 >= len(format) {
			b.WriteByte(c)
			continue
		}
		switch format[i+1] {
		case 'n':
			fmt.Fprintf(&b, "%02d", fields.Number)
		case 't':
			b.WriteString(fields.Title)
		case 'a':
			b.WriteString(fields.Artist)
		case 'A':
			b.WriteString(fields.Album)
		case '%':
			b.WriteByte('%')
		default:
			b.WriteByte(c)
			continue
		}
		i++
	}
	return SanitizeFileName(b.String())
}

// FormatDuration renders seconds as "1m 30s", or "1h 01m 01s" from one hour up.
func FormatDuration(seconds float64) string {
	if seconds < 0 || math.IsNaN(seconds) {
		seconds = 0
	}
	total := int64(math.Floor(seconds))
	hours := total / 3600
	minutes := (total % 3600) / 60
	secs := total % 60
	if hours > 0 {
		return fmt.Sprintf("%dh %02dm %02ds", hours, minutes, secs)
	}
	return fmt.Sprintf("%dm %02ds", minutes, secs)
}
