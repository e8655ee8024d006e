package pipeline

import (
	"context"

	"github.com/sevigo/reposcribe/internal/llmkernel"
)

// OverviewStage is stage 5: always re-runs, replacing any prior
// DocumentOverview. <project_analysis> scratch reasoning and the final
// <blog> wrapper are both handled by InvokePrompt's extraction contract —
// the tag lookup for "blog" finds the wrapped section regardless of
// whatever scratch markup surrounds it.
func OverviewStage(ctx context.Context, rc *RunContext) error {
	content, err := rc.Kernel.InvokePrompt(ctx, llmkernel.PromptOverview, "", overviewData{
		RepositoryName: rc.Repository.Name,
		Classification: rc.Repository.Classify,
		Readme:         rc.Repository.Readme,
		Tree:           rc.Repository.OptimizedDirectoryStructure,
	}, "blog", nil)
	if err != nil {
		return newTransientError("overview", err)
	}

	if _, err := rc.Store.ReplaceOverview(ctx, rc.Document.ID, content); err != nil {
		return newFatalError("overview", err)
	}
	return nil
}

type overviewData struct {
	RepositoryName string
	Classification string
	Readme         string
	Tree           string
}
