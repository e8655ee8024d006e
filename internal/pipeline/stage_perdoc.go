package pipeline

import (
	"context"
	"fmt"

	"github.com/sevigo/reposcribe/internal/core"
	"github.com/sevigo/reposcribe/internal/llmkernel"
)

// PerDocStage is stage 7: fill in every leaf DocumentCatalogue node that
// isn't already marked completed. Each leaf gets its own DocumentContext
// so DocumentFileItem.SourceFiles reflects only the files consulted while
// writing that one page, not the whole pipeline run. A node is committed
// (file item written, then marked completed) before moving to the next,
// so a crash mid-stage resumes at the first still-incomplete leaf.
func PerDocStage(ctx context.Context, rc *RunContext) error {
	nodes, err := rc.Store.ListCatalogue(ctx, rc.Repository.ID)
	if err != nil {
		return newFatalError("per_doc", err)
	}

	for _, node := range nodes {
		if node.IsCompleted {
			continue
		}
		if err := ctx.Err(); err != nil {
			return newFatalError("per_doc", err)
		}

		docCtx := llmkernel.NewDocumentContext()
		content, err := rc.Kernel.InvokePrompt(ctx, llmkernel.PromptGenerateDocs, "", generateDocsData{
			RepositoryName:  rc.Repository.Name,
			NodeTitle:       node.Title,
			NodeDescription: node.Description,
		}, "blog", docCtx)
		if err != nil {
			return newTransientError("per_doc", fmt.Errorf("node %s: %w", node.ID, err))
		}

		item := &core.DocumentFileItem{
			CatalogueID: node.ID,
			Title:       node.Title,
			Content:     content,
		}
		item.SetSourceFiles(docCtx.SourceFiles())
		if err := rc.Store.UpsertFileItem(ctx, item); err != nil {
			return newFatalError("per_doc", fmt.Errorf("node %s: %w", node.ID, err))
		}
		if err := rc.Store.MarkCatalogueCompleted(ctx, node.ID, true); err != nil {
			return newFatalError("per_doc", fmt.Errorf("node %s: %w", node.ID, err))
		}
	}
	return nil
}

type generateDocsData struct {
	RepositoryName  string
	NodeTitle       string
	NodeDescription string
}
