package chapters

import (
	"context"
	"fmt"
	"sort"

	"ytcs/internal/media/silence"
	"ytcs/internal/services"
)

// Interval is a detected silence in seconds.
type Interval = silence.Interval

// Analyzer runs acoustic analysis over an audio file. *silence.Detector
// satisfies it.
type Analyzer interface {
	Detect(ctx context.Context, path string, thresholdDB, minDuration float64) ([]Interval, error)
}

// SilenceParams configures one analysis pass.
type SilenceParams struct {
	ThresholdDB float64
	MinDuration float64
}

// DefaultSilenceParams are used for silence-based chapter detection.
var DefaultSilenceParams = SilenceParams{ThresholdDB: -30, MinDuration: 2.0}

// FromSilence derives chapters from silence midpoints. Every midpoint
// strictly inside (0, duration) becomes a boundary and the regions between
// boundaries become chapters titled "Track N". Analyzer errors, an unknown
// duration, or zero intervals are reported as services.ErrAnalysis.
func FromSilence(ctx context.Context, analyzer Analyzer, path string, duration float64, params SilenceParams) ([]Chapter, error) {
	if analyzer == nil {
		return nil, services.Wrap(services.ErrAnalysis, "chapters", "detect silence", "no analyzer configured", nil)
	}
	if path == "" {
		return nil, services.Wrap(services.ErrAnalysis, "chapters", "detect silence", "no audio file to analyze", nil)
	}
	if duration <= 0 {
		return nil, services.Wrap(services.ErrAnalysis, "chapters", "detect silence", "audio duration unknown", nil)
	}
	intervals, err := analyzer.Detect(ctx, path, params.ThresholdDB, params.MinDuration)
	if err != nil {
		return nil, services.Wrap(services.ErrAnalysis, "chapters", "detect silence", "analysis failed", err)
	}
	if len(intervals) == 0 {
		return nil, services.Wrap(services.ErrAnalysis, "chapters", "detect silence",
			fmt.Sprintf("no silence found at %gdB for %gs", params.ThresholdDB, params.MinDuration), nil)
	}
	return chaptersFromIntervals(intervals, duration), nil
}

func chaptersFromIntervals(intervals []Interval, duration float64) []Chapter {
	boundaries := make([]float64, 0, len(intervals))
	for _, iv := range intervals {
		mid := iv.Midpoint()
		if mid > 0 && mid < duration {
			boundaries = append(boundaries, mid)
		}
	}
	sort.Float64s(boundaries)

	entries := []entry{{start: 0, title: placeholderTitle(1)}}
	for _, b := range boundaries {
		if b == entries[len(entries)-1].start {
			continue
		}
		entries = append(entries, entry{start: b, title: placeholderTitle(len(entries) + 1)})
	}
	return link(entries, duration)
}
