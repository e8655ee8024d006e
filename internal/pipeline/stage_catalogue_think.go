package pipeline

import (
	"context"
	"encoding/json"

	"github.com/sevigo/reposcribe/internal/core"
	"github.com/sevigo/reposcribe/internal/llmkernel"
	"github.com/sevigo/reposcribe/internal/util"
)

// catalogueNode is the JSON shape AnalyzeCatalogue (and its classification
// variants) emit inside <documentation_structure>.
type catalogueNode struct {
	Title       string          `json:"title"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Children    []catalogueNode `json:"children"`
}

// CatalogueThinkStage is stage 6: always re-runs, replacing the entire
// DocumentCatalogue forest for this repository; leaf nodes are stored
// uncompleted for PerDocStage to fill in one at a time, while grouping
// nodes (those with children) are stored already completed.
func CatalogueThinkStage(ctx context.Context, rc *RunContext) error {
	raw, err := rc.Kernel.InvokePrompt(ctx, llmkernel.PromptAnalyzeCatalogue, rc.Repository.Classify, catalogueThinkData{
		RepositoryName: rc.Repository.Name,
		Tree:           rc.Repository.OptimizedDirectoryStructure,
	}, "documentation_structure", nil)
	if err != nil {
		return newTransientError("catalogue_think", err)
	}

	var roots []catalogueNode
	if err := json.Unmarshal([]byte(raw), &roots); err != nil {
		return newFatalError("catalogue_think", err)
	}

	nodes, parentIdx := flattenCatalogue(roots)
	if _, err := rc.Store.ReplaceCatalogue(ctx, rc.Repository.ID, nodes, parentIdx); err != nil {
		return newFatalError("catalogue_think", err)
	}
	return nil
}

type catalogueThinkData struct {
	RepositoryName string
	Tree           string
}

// flattenCatalogue walks the parsed node forest in document order,
// producing the parallel (*core.DocumentCatalogue, parent-array-index)
// slices Store.ReplaceCatalogue expects.
func flattenCatalogue(roots []catalogueNode) ([]*core.DocumentCatalogue, []int) {
	var nodes []*core.DocumentCatalogue
	var parentIdx []int

	var walk func(n catalogueNode, parent int, order int)
	walk = func(n catalogueNode, parent int, order int) {
		row := &core.DocumentCatalogue{
			Title:       n.Title,
			Name:        n.Name,
			URLSlug:     util.Slugify(n.Title),
			Description: n.Description,
			OrderIndex:  order,
			IsCompleted: len(n.Children) > 0, // grouping sections need no generated content
		}
		nodes = append(nodes, row)
		parentIdx = append(parentIdx, parent)
		self := len(nodes) - 1
		for i, child := range n.Children {
			walk(child, self, i)
		}
	}
	for i, r := range roots {
		walk(r, -1, i)
	}
	return nodes, parentIdx
}
