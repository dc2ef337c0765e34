package pipeline

import (
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/schollz/progressbar/v3"

	"ytcs/internal/logging"
	"ytcs/internal/media/audio"
	"ytcs/internal/ytdlp"
)

// percentScale lets the bar track tenths of a percent.
const percentScale = 10

// reporter renders progress as a bar on a terminal and as sampled log lines
// everywhere else.
type reporter struct {
	bar     *progressbar.ProgressBar
	sampler *logging.ProgressSampler
	logger  *slog.Logger
}

func newBar(w io.Writer, max int, description string, showCount bool) *progressbar.ProgressBar {
	opts := []progressbar.Option{
		progressbar.OptionSetWriter(w),
		progressbar.OptionSetDescription(description),
		progressbar.OptionSetWidth(30),
		progressbar.OptionThrottle(100 * time.Millisecond),
		progressbar.OptionSetPredictTime(false),
		progressbar.OptionOnCompletion(func() { fmt.Fprintln(w) }),
	}
	if showCount {
		opts = append(opts, progressbar.OptionShowCount())
	}
	return progressbar.NewOptions(max, opts...)
}

func (p *Pipeline) newReporter(logger *slog.Logger, max int, description string, showCount bool) *reporter {
	r := &reporter{logger: logger}
	if p.interactive {
		r.bar = newBar(p.out, max, description, showCount)
	} else {
		r.sampler = logging.NewProgressSampler(25)
	}
	return r
}

func (r *reporter) finish() {
	if r.bar != nil {
		_ = r.bar.Finish()
	}
}

// downloadProgress returns the callback handed to the download selector.
func (p *Pipeline) downloadProgress(logger *slog.Logger) (*reporter, func(ytdlp.Progress)) {
	r := p.newReporter(logger, 100*percentScale, "Downloading", false)
	return r, func(pr ytdlp.Progress) {
		if r.bar != nil {
			if pr.Speed != "" {
				r.bar.Describe("Downloading " + pr.Speed)
			}
			_ = r.bar.Set(int(pr.Percent * percentScale))
			return
		}
		if r.sampler.ShouldLog(pr.Percent, StageDownload) {
			r.logger.Info("download progress",
				logging.Float64("percent", pr.Percent),
				logging.String("speed", pr.Speed),
				logging.String("eta", pr.ETA),
			)
		}
	}
}

// splitProgress returns the per-track callback handed to the splitter.
func (p *Pipeline) splitProgress(logger *slog.Logger, total int) (*reporter, audio.ProgressFunc) {
	r := p.newReporter(logger, total, "Splitting", true)
	return r, func(done int, o audio.Outcome) {
		if r.bar != nil {
			_ = r.bar.Set(done)
			return
		}
		r.logger.Info("track done",
			logging.Int("track", o.Track.Number),
			logging.Int("total", o.Track.Total),
			logging.String("title", o.Track.Title),
			logging.Bool("skipped", o.Skipped),
		)
	}
}
