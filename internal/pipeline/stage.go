package pipeline

import (
	"context"
	"log/slog"
	"time"

	"ytcs/internal/logging"
	"ytcs/internal/services"
)

// Stage names used in logs and wrapped errors.
const (
	StageMetadata  = "metadata"
	StagePreflight = "preflight"
	StageCover     = "cover"
	StageDownload  = "download"
	StageChapters  = "chapters"
	StageRefine    = "refine"
	StageSplit     = "split"
	StageFinalize  = "finalize"
)

// runStage tags ctx with the stage name and logs start, completion, and
// failure around fn.
func (p *Pipeline) runStage(ctx context.Context, name string, fn func(ctx context.Context, logger *slog.Logger) error) error {
	stageCtx := services.WithStage(ctx, name)
	logger := logging.WithContext(stageCtx, p.logger)
	logger.Debug("stage started", logging.String(logging.FieldEventType, "stage_start"))

	started := time.Now()
	if err := fn(stageCtx, logger); err != nil {
		logger.Error("stage failed",
			logging.String(logging.FieldEventType, "stage_failure"),
			logging.Duration("elapsed", time.Since(started)),
			logging.Error(err),
		)
		return err
	}
	logger.Debug("stage completed",
		logging.String(logging.FieldEventType, "stage_complete"),
		logging.Duration("elapsed", time.Since(started)),
	)
	return nil
}
