package pipeline

import (
	"context"
	"time"

	"github.com/sevigo/reposcribe/internal/llmkernel"
	"github.com/sevigo/reposcribe/internal/scanner"
)

// smartFilterFileCutoff is the file count at or above which CatalogueStage
// asks the model to simplify the manifest instead of using it verbatim.
const smartFilterFileCutoff = 800

// smartFilterMaxAttempts and smartFilterBackoffBase implement the 5-attempt
// linear back-off (base 5s × attempt) spec §4.E names for the
// CodeDirSimplifier call specifically — distinct from the generic
// per-stage exponential retry policy.
const smartFilterMaxAttempts = 5
const smartFilterBackoffBase = 5 * time.Second

// CatalogueStage is stage 2: build the repository-wide directory manifest
// in Document.CatalogueFormat (compact, json or pathlist; compact when
// unset), simplifying it through the model first when the repository is
// large and the smart filter is enabled.
func CatalogueStage(ctx context.Context, rc *RunContext) error {
	if rc.Repository.OptimizedDirectoryStructure != "" {
		return nil
	}

	paths, err := scanner.Scan(rc.WorkingTree, rc.Ignore)
	if err != nil {
		return newFatalError("catalogue", err)
	}
	tree := scanner.BuildTree(paths)
	manifest := scanner.Compact(tree)
	switch rc.Config.Document.CatalogueFormat {
	case "json":
		if manifest, err = scanner.ToJSON(tree); err != nil {
			return newFatalError("catalogue", err)
		}
	case "pathlist":
		manifest = scanner.ToPathList(tree)
	}

	fileCount := 0
	for _, p := range paths {
		if p.Kind == scanner.KindFile {
			fileCount++
		}
	}

	if !rc.Config.Document.EnableSmartFilter || fileCount < smartFilterFileCutoff {
		rc.Repository.OptimizedDirectoryStructure = manifest
		return rc.Store.UpdateRepositoryFields(ctx, rc.Repository.ID, map[string]any{"optimized_directory_structure": manifest})
	}

	var simplified string
	var lastErr error
	for attempt := 1; attempt <= smartFilterMaxAttempts; attempt++ {
		simplified, lastErr = rc.Kernel.InvokePrompt(ctx, llmkernel.PromptCodeDirSimplifier, "", codeDirSimplifierData{
			RepositoryName: rc.Repository.Name,
			FileCount:      fileCount,
			Tree:           manifest,
		}, "response_file", nil)
		if lastErr == nil {
			break
		}
		if attempt < smartFilterMaxAttempts {
			select {
			case <-ctx.Done():
				return newFatalError("catalogue", ctx.Err())
			case <-time.After(smartFilterBackoffBase * time.Duration(attempt)):
			}
		}
	}
	if lastErr != nil {
		return newTransientError("catalogue", lastErr)
	}

	rc.Repository.OptimizedDirectoryStructure = simplified
	return rc.Store.UpdateRepositoryFields(ctx, rc.Repository.ID, map[string]any{"optimized_directory_structure": simplified})
}

type codeDirSimplifierData struct {
	RepositoryName string
	FileCount      int
	Tree           string
}
