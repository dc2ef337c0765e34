package chapters

import (
	"context"
	"errors"
	"log/slog"

	"ytcs/internal/logging"
)

// Tier names the fallback tier that produced a chapter sequence.
type Tier string

const (
	TierMetadata    Tier = "metadata"
	TierDescription Tier = "description"
	TierSilence     Tier = "silence"
	TierWholeFile   Tier = "whole-file"
)

// Refinable reports whether chapters from this tier carry human-declared
// boundaries worth snapping to silence. Silence-derived boundaries already sit
// on silence.
func (t Tier) Refinable() bool {
	return t == TierMetadata || t == TierDescription
}

// Resolution is the resolver's outcome.
type Resolution struct {
	Chapters []Chapter
	Tier     Tier
	// Attempts holds the reason each earlier tier yielded nothing.
	Attempts []TierFailure
}

// TierFailure records why one tier did not produce chapters.
type TierFailure struct {
	Tier Tier
	Err  error
}

type tierFunc func(ctx context.Context) ([]Chapter, error)

type tier struct {
	name Tier
	run  tierFunc
}

// Resolver walks the metadata, description, and silence tiers in order and
// returns the first non-empty sequence. It never fails: when every tier
// comes up empty the whole file becomes one chapter.
type Resolver struct {
	analyzer Analyzer
	params   SilenceParams
	logger   *slog.Logger
}

// NewResolver constructs a resolver. analyzer may be nil, in which case the
// silence tier always falls through to the whole-file chapter.
func NewResolver(analyzer Analyzer, params SilenceParams, logger *slog.Logger) *Resolver {
	return &Resolver{
		analyzer: analyzer,
		params:   params,
		logger:   logging.NewComponentLogger(logger, "chapter-resolver"),
	}
}

// Resolve determines chapters for src. audioPath is only read by the silence
// tier.
func (r *Resolver) Resolve(ctx context.Context, src Source, audioPath string) Resolution {
	logger := logging.WithContext(ctx, r.logger)
	tiers := []tier{
		{TierMetadata, func(context.Context) ([]Chapter, error) {
			return FromMetadata(src.Chapters, src.Duration)
		}},
		{TierDescription, func(context.Context) ([]Chapter, error) {
			return FromDescription(src.Description, src.Duration)
		}},
		{TierSilence, func(ctx context.Context) ([]Chapter, error) {
			return FromSilence(ctx, r.analyzer, audioPath, src.Duration, r.params)
		}},
	}

	var res Resolution
	for _, t := range tiers {
		chapters, err := t.run(ctx)
		if err == nil && len(chapters) == 0 {
			err = errors.New("tier produced no chapters")
		}
		if err != nil {
			res.Attempts = append(res.Attempts, TierFailure{Tier: t.name, Err: err})
			logger.Debug("chapter tier yielded nothing",
				logging.Args(append(logging.DecisionAttrs("chapter_source", "skip", err.Error()),
					logging.String("tier", string(t.name)))...)...)
			continue
		}
		res.Chapters = chapters
		res.Tier = t.name
		logger.Info("chapters resolved",
			logging.Args(append(logging.DecisionAttrs("chapter_source", string(t.name), "first tier with chapters"),
				logging.Int("chapter_count", len(chapters)))...)...)
		return res
	}

	res.Chapters = WholeFile(src.Duration)
	res.Tier = TierWholeFile
	logging.WarnWithContext(logger, "no chapter source found; using whole file", "chapters_whole_file",
		logging.String(logging.FieldErrorHint, "add timestamps to the description or lower silence.threshold_db"),
		logging.String(logging.FieldImpact, "output is a single track"),
	)
	return res
}
