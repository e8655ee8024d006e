package pipeline

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sevigo/reposcribe/internal/core"
)

func TestPerDocStage_SkipsAlreadyCompletedLeaves(t *testing.T) {
	store := newFakeStore()
	store.catalogueNodes = []*core.DocumentCatalogue{
		{ID: "n1", Title: "Done", IsCompleted: true},
	}
	rc := &RunContext{
		Repository: &core.Repository{ID: "repo-1"},
		Store:      store,
	}
	require.NoError(t, PerDocStage(context.Background(), rc))
	assert.Equal(t, "", store.markedCompletedID)
	assert.Nil(t, store.upsertedItem)
}

func TestPerDocStage_NoNodesIsNoOp(t *testing.T) {
	store := newFakeStore()
	rc := &RunContext{
		Repository: &core.Repository{ID: "repo-1"},
		Store:      store,
	}
	require.NoError(t, PerDocStage(context.Background(), rc))
}
