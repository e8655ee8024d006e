package pipeline

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sevigo/reposcribe/internal/core"
)

func TestChangeLogStage_SkippedForFileRepositories(t *testing.T) {
	store := newFakeStore()
	rc := &RunContext{
		Repository: &core.Repository{ID: "repo-1", Type: core.RepoTypeFile},
		Store:      store,
	}
	require.NoError(t, ChangeLogStage(context.Background(), rc))
	assert.Nil(t, store.fields["repo-1"])
}

func TestSplitCommitMessage_SubjectOnly(t *testing.T) {
	title, desc := splitCommitMessage("Fix the bug\n")
	assert.Equal(t, "Fix the bug", title)
	assert.Equal(t, "", desc)
}

func TestSplitCommitMessage_SubjectAndBody(t *testing.T) {
	title, desc := splitCommitMessage("Fix the bug\n\nThis addresses a race in the worker loop.\n")
	assert.Equal(t, "Fix the bug", title)
	assert.Equal(t, "This addresses a race in the worker loop.", desc)
}
