package pipeline

import (
	"context"
	"fmt"
	"time"
)

// maxStageAttempts and stageBackoff implement spec §4.F's per-stage
// retry policy: three attempts with back-off of 2^n seconds between them
// (n = the 1-based number of the attempt that just failed, so with three
// attempts that's a 2s then 4s wait between the three tries).
const maxStageAttempts = 3

func stageBackoff(attempt int) time.Duration {
	return time.Duration(1<<uint(attempt)) * time.Second
}

// namedStage pairs a Stage with the name persisted into pipeline_progress
// and used in StageError/log fields.
type namedStage struct {
	name string
	fn   Stage
}

// stageOrder is the fixed 8-stage sequence spec §4.E names. Re-entry after
// a crash is driven by each stage's own idempotence (skip-if-already-set
// checks inside the stage), not by this list — every run walks all eight
// in order, and stages that have nothing left to do return immediately.
var stageOrder = []namedStage{
	{"readme", ReadmeStage},
	{"catalogue", CatalogueStage},
	{"classify", ClassifyStage},
	{"mindmap", MindMapStage},
	{"overview", OverviewStage},
	{"catalogue_think", CatalogueThinkStage},
	{"per_doc", PerDocStage},
	{"changelog", ChangeLogStage},
}

// Run drives rc.Repository's working tree through all eight stages in
// order. A KindFatal error (or an error of an unrecognized type) stops
// the run immediately; a stage failing with KindTransient errors is
// attempted up to maxStageAttempts times in all, with exponential back-off
// between attempts, before the run stops.
// KindClassificationParse is never produced by a retry-worthy path — it
// is absorbed inside ClassifyStage itself, which returns nil rather than
// an error when the model's answer doesn't parse.
//
// GetProgress/SetProgress are written through after every stage purely
// for observability (spec §4.F); resumability itself comes from each
// stage's own idempotent skip checks against Store-held state.
func Run(ctx context.Context, rc *RunContext) error {
	completed, _, err := rc.Store.GetProgress(ctx, rc.Repository.ID)
	if err != nil {
		rc.Logger.WarnContext(ctx, "read pipeline progress failed, continuing without it", "repository.id", rc.Repository.ID, "error", err)
		completed = nil
	}

	for _, stage := range stageOrder {
		if err := ctx.Err(); err != nil {
			return newFatalError(stage.name, err)
		}

		if err := rc.Store.SetProgress(ctx, rc.Repository.ID, completed, stage.name); err != nil {
			rc.Logger.WarnContext(ctx, "write pipeline progress failed", "repository.id", rc.Repository.ID, "stage", stage.name, "error", err)
		}

		if err := runStageWithRetry(ctx, rc, stage); err != nil {
			return err
		}

		completed = append(completed, stage.name)
		if err := rc.Store.SetProgress(ctx, rc.Repository.ID, completed, ""); err != nil {
			rc.Logger.WarnContext(ctx, "write pipeline progress failed", "repository.id", rc.Repository.ID, "stage", stage.name, "error", err)
		}
	}
	return nil
}

func runStageWithRetry(ctx context.Context, rc *RunContext, stage namedStage) error {
	var lastErr error
	for attempt := 1; attempt <= maxStageAttempts; attempt++ {
		start := time.Now()
		err := stage.fn(ctx, rc)
		duration := time.Since(start)

		if err == nil {
			rc.Logger.InfoContext(ctx, "stage completed", "repository.id", rc.Repository.ID, "stage", stage.name, "attempt", attempt, "duration", duration)
			return nil
		}

		se := asStageError(stage.name, err)
		lastErr = se
		rc.Logger.WarnContext(ctx, "stage failed", "repository.id", rc.Repository.ID, "stage", stage.name, "attempt", attempt, "kind", se.Kind, "error", se.Err)

		if !se.Transient() || attempt == maxStageAttempts {
			return se
		}

		select {
		case <-ctx.Done():
			return newFatalError(stage.name, ctx.Err())
		case <-time.After(stageBackoff(attempt)):
		}
	}
	return fmt.Errorf("stage %s: %w", stage.name, lastErr)
}
