package ytdlp

import (
	"regexp"
	"strconv"
	"strings"
)

// Progress is one parsed yt-dlp download progress line.
type Progress struct {
	Percent float64
	Speed   string
	ETA     string
}

var (
	percentPattern = regexp.MustCompile(`(\d+\.\d+)%`)
	speedPattern   = regexp.MustCompile(`at\s+([\d.]+)(GiB|MiB|KiB)/s`)
	etaPattern     = regexp.MustCompile(`ETA\s+(\d{2}:\d{2}(?::\d{2})?)`)
)

// maxReportedPercent keeps the bar short of completion until post-processing
// (audio extraction) finishes.
const maxReportedPercent = 99.9

// ParseProgress extracts progress from a line such as
// "[download]  42.3% of 3.20MiB at 1.21MiB/s ETA 00:12". Lines without a
// percentage, and the final 100% summary, are ignored.
func ParseProgress(line string) (Progress, bool) {
	if !strings.Contains(line, "[download]") || strings.Contains(line, "100%") {
		return Progress{}, false
	}
	m := percentPattern.FindStringSubmatch(line)
	if m == nil {
		return Progress{}, false
	}
	pct, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return Progress{}, false
	}
	p := Progress{Percent: min(pct, maxReportedPercent)}
	if s := speedPattern.FindStringSubmatch(line); s != nil {
		p.Speed = s[1] + s[2] + "/s"
	}
	if e := etaPattern.FindStringSubmatch(line); e != nil {
		p.ETA = e[1]
	}
	return p, true
}

// String renders the progress for a status line.
func (p Progress) String() string {
	var b strings.Builder
	b.WriteString(strconv.FormatFloat(p.Percent, 'f', 1, 64))
	b.WriteString("%")
	if p.Speed != "" {
		b.WriteString(" at ")
		b.WriteString(p.Speed)
	}
	if p.ETA != "" {
		b.WriteString(" ETA ")
		b.WriteString(p.ETA)
	}
	return b.String()
}
