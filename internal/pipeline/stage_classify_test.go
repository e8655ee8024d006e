package pipeline

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sevigo/reposcribe/internal/core"
)

func TestClassifyStage_PassesThroughExistingValue(t *testing.T) {
	store := newFakeStore()
	rc := &RunContext{
		Repository: &core.Repository{ID: "repo-1", Classify: "Libraries"},
		Store:      store,
	}
	require.NoError(t, ClassifyStage(context.Background(), rc))
	assert.Equal(t, "Libraries", rc.Repository.Classify)
	assert.Nil(t, store.fields["repo-1"])
}

func TestMatchClassification_CaseInsensitiveExactMatch(t *testing.T) {
	assert.Equal(t, "CLITools", matchClassification("clitools"))
	assert.Equal(t, "Frameworks", matchClassification("  Frameworks  "))
}

func TestMatchClassification_UnknownValueReturnsEmpty(t *testing.T) {
	assert.Equal(t, "", matchClassification("NotARealTag"))
}
