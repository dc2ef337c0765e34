package preflight

import (
	"context"

	"ytcs/internal/config"
	"ytcs/internal/deps"
)

// CheckSystemDeps evaluates the binaries named in cfg. The run command and
// "ytcs deps" both use this so the requirement list lives in one place.
func CheckSystemDeps(ctx context.Context, cfg *config.Config, opts ...deps.Option) []deps.Status {
	checker := deps.NewChecker(opts...)
	return checker.Check(ctx, deps.Requirements(cfg.YtDlpBinary(), cfg.FFmpegBinary(), cfg.FFprobeBinary()))
}
