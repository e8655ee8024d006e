package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFlattenCatalogue_PreservesOrderAndParents(t *testing.T) {
	roots := []catalogueNode{
		{
			Title: "Architecture",
			Children: []catalogueNode{
				{Title: "Worker loop"},
				{Title: "Stage runner"},
			},
		},
		{Title: "Getting started"},
	}

	nodes, parentIdx := flattenCatalogue(roots)
	if assert.Len(t, nodes, 4) {
		assert.Equal(t, "Architecture", nodes[0].Title)
		assert.Equal(t, "Worker loop", nodes[1].Title)
		assert.Equal(t, "Stage runner", nodes[2].Title)
		assert.Equal(t, "Getting started", nodes[3].Title)
	}
	assert.Equal(t, []int{-1, 0, 0, -1}, parentIdx)
}

func TestFlattenCatalogue_GroupingNodesCompletedLeavesNot(t *testing.T) {
	roots := []catalogueNode{
		{Title: "Section", Children: []catalogueNode{{Title: "Leaf"}}},
	}

	nodes, _ := flattenCatalogue(roots)
	if assert.Len(t, nodes, 2) {
		assert.True(t, nodes[0].IsCompleted)
		assert.False(t, nodes[1].IsCompleted)
	}
}

func TestFlattenCatalogue_URLSlugFromTitle(t *testing.T) {
	roots := []catalogueNode{{Title: "Getting Started!"}}
	nodes, _ := flattenCatalogue(roots)
	assert.Equal(t, "getting-started", nodes[0].URLSlug)
}
