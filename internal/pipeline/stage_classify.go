package pipeline

import (
	"context"
	"strings"

	"github.com/sevigo/reposcribe/internal/config"
	"github.com/sevigo/reposcribe/internal/llmkernel"
)

// ClassifyStage is stage 3: classify the repository into one of the
// canonical tags. An unparseable model response is not an error — per
// spec it leaves Repository.Classify unset so downstream prompts fall
// back to their base (non-variant) template.
func ClassifyStage(ctx context.Context, rc *RunContext) error {
	if rc.Repository.Classify != "" {
		return nil
	}

	raw, err := rc.Kernel.InvokePrompt(ctx, llmkernel.PromptRepositoryClassification, "", classifyData{
		RepositoryName:  rc.Repository.Name,
		Classifications: strings.Join(config.AllClassifications, ", "),
		Tree:            rc.Repository.OptimizedDirectoryStructure,
		Readme:          rc.Repository.Readme,
	}, "classify", nil)
	if err != nil {
		return newTransientError("classify", err)
	}

	value, ok := llmkernel.ParseClassifyTag(raw)
	if !ok {
		value = raw
	}
	classification := matchClassification(value)
	if classification == "" {
		return nil
	}

	rc.Repository.Classify = classification
	return rc.Store.UpdateRepositoryFields(ctx, rc.Repository.ID, map[string]any{"classify": classification})
}

// matchClassification case-insensitively matches value against the
// canonical enum, returning "" when nothing matches.
func matchClassification(value string) string {
	value = strings.TrimSpace(value)
	for _, c := range config.AllClassifications {
		if strings.EqualFold(c, value) {
			return c
		}
	}
	return ""
}

type classifyData struct {
	RepositoryName  string
	Classifications string
	Tree            string
	Readme          string
}
