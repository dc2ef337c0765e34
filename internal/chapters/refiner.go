package chapters

import (
	"context"
	"log/slog"
	"math"
	"sort"

	"ytcs/internal/logging"
	"ytcs/internal/media/silence"
	"ytcs/internal/services"
)

// RefineParams configures boundary refinement.
type RefineParams struct {
	WindowSeconds float64
	ThresholdDB   float64
	MinDuration   float64
}

// DefaultRefineParams searches ±5s with a stricter silence threshold than
// detection.
var DefaultRefineParams = RefineParams{WindowSeconds: 5, ThresholdDB: -35, MinDuration: 1.5}

// Refiner snaps declared chapter boundaries to nearby silence.
type Refiner struct {
	analyzer Analyzer
	params   RefineParams
	logger   *slog.Logger
}

// NewRefiner constructs a refiner. Non-positive window values fall back to
// the default window.
func NewRefiner(analyzer Analyzer, params RefineParams, logger *slog.Logger) *Refiner {
	if params.WindowSeconds <= 0 {
		params.WindowSeconds = DefaultRefineParams.WindowSeconds
	}
	return &Refiner{
		analyzer: analyzer,
		params:   params,
		logger:   logging.NewComponentLogger(logger, "chapter-refiner"),
	}
}

// Refine analyzes the whole file once and moves each internal boundary to
// the closest silence midpoint in its window. On analysis failure the input
// is returned unchanged together with a services.ErrAnalysis error.
func (r *Refiner) Refine(ctx context.Context, chapters []Chapter, audioPath string) ([]Chapter, Report, error) {
	logger := logging.WithContext(ctx, r.logger)
	if len(chapters) < 2 {
		return Clone(chapters), newReport(chapters, chapters), nil
	}
	if r.analyzer == nil {
		return Clone(chapters), Report{}, services.Wrap(services.ErrAnalysis, "chapters", "refine", "no analyzer configured", nil)
	}
	intervals, err := r.analyzer.Detect(ctx, audioPath, r.params.ThresholdDB, r.params.MinDuration)
	if err != nil {
		return Clone(chapters), Report{}, services.Wrap(services.ErrAnalysis, "chapters", "refine", "silence analysis failed", err)
	}
	logger.Debug("silence analysis complete",
		logging.Int("interval_count", len(intervals)),
		logging.Float64("threshold_db", r.params.ThresholdDB),
		logging.Seconds("min_duration_seconds", r.params.MinDuration),
	)

	refined, report := RefineWithSilence(chapters, intervals, r.params.WindowSeconds)
	for _, e := range report.Entries {
		if e.Delta == 0 {
			continue
		}
		logger.Debug("boundary moved",
			logging.Args(append(logging.DecisionAttrs("refinement", "moved", "nearest silence midpoint"),
				logging.String("title", e.Title),
				logging.Seconds("original_seconds", e.OriginalStart),
				logging.Seconds("refined_seconds", e.RefinedStart),
				logging.Seconds("delta_seconds", e.Delta))...)...)
	}
	logger.Info("chapters refined",
		logging.Int("moved", report.Moved),
		logging.Int("boundaries", len(chapters)-1),
		logging.Seconds("average_adjustment_seconds", report.AverageAdjustment),
		logging.Seconds("max_adjustment_seconds", report.MaxAdjustment),
	)
	return refined, report, nil
}

// RefineWithSilence is the pure refinement step. Windows are built from the
// original boundaries up front so an earlier adjustment never shifts a later
// search. Among silences overlapping [b-window, b+window] the midpoint closest
// to b wins, ties going to the earlier interval. A candidate that would leave
// either neighbouring chapter with a non-positive length is discarded. The
// first start and the last end never move.
func RefineWithSilence(chapters []Chapter, intervals []Interval, window float64) ([]Chapter, Report) {
	refined := Clone(chapters)
	n := len(chapters)
	if n < 2 {
		return refined, newReport(chapters, refined)
	}

	original := make([]float64, n-1)
	for i := range original {
		original[i] = chapters[i+1].StartTime
	}

	for i, b := range original {
		candidate, ok := nearestMidpoint(intervals, b, window)
		if !ok || candidate == b {
			continue
		}
		lower := refined[i].StartTime
		upper := math.Inf(1)
		if i+1 < len(original) {
			upper = original[i+1]
		} else if end, ok := chapters[n-1].End(); ok {
			upper = end
		}
		if candidate <= lower || candidate >= upper {
			continue
		}
		refined[i].EndTime = Seconds(candidate)
		refined[i+1].StartTime = candidate
	}
	return refined, newReport(chapters, refined)
}

// nearestMidpoint picks the silence midpoint closest to target. Intervals
// that only graze the window are ignored when their midpoint falls outside it.
func nearestMidpoint(intervals []Interval, target, window float64) (float64, bool) {
	candidates := silence.Overlapping(intervals, target-window, target+window)
	sort.SliceStable(candidates, func(i, j int) bool { return candidates[i].Start < candidates[j].Start })
	best, found := 0.0, false
	for _, iv := range candidates {
		mid := iv.Midpoint()
		if math.Abs(mid-target) > window {
			continue
		}
		if !found || math.Abs(mid-target) < math.Abs(best-target) {
			best, found = mid, true
		}
	}
	return best, found
}
