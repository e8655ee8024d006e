package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/sevigo/reposcribe/internal/llmkernel"
	"github.com/sevigo/reposcribe/internal/scanner"
)

// readmeCandidates are tried, in order, before asking the model to write a
// README from scratch.
var readmeCandidates = []string{"README.md", "readme.md", "Readme.md", "README", "README.rst"}

// ReadmeStage is stage 1: pass through Repository.Readme if already set,
// otherwise take the working tree's own README file verbatim, otherwise
// ask the model to write one.
func ReadmeStage(ctx context.Context, rc *RunContext) error {
	if rc.Repository.Readme != "" {
		return nil
	}

	for _, name := range readmeCandidates {
		content, err := os.ReadFile(filepath.Join(rc.WorkingTree, name))
		if err == nil && strings.TrimSpace(string(content)) != "" {
			rc.Repository.Readme = string(content)
			return rc.Store.UpdateRepositoryFields(ctx, rc.Repository.ID, map[string]any{"readme": string(content)})
		}
	}

	paths, err := scanner.Scan(rc.WorkingTree, rc.Ignore)
	if err != nil {
		return newFatalError("readme", err)
	}
	readme, err := rc.Kernel.InvokePrompt(ctx, llmkernel.PromptGenerateReadme, "", readmeData{
		RepositoryName: rc.Repository.Name,
		Tree:           scanner.Compact(scanner.BuildTree(paths)),
	}, "readme", nil)
	if err != nil {
		return newTransientError("readme", err)
	}
	rc.Repository.Readme = readme
	return rc.Store.UpdateRepositoryFields(ctx, rc.Repository.ID, map[string]any{"readme": readme})
}

type readmeData struct {
	RepositoryName string
	Tree           string
}
