package updater

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sevigo/reposcribe/internal/config"
	"github.com/sevigo/reposcribe/internal/core"
)

func newTestUpdater(store *fakeStore) *Updater {
	return &Updater{
		Cfg:    &config.Config{Document: config.DocumentConfig{UpdateIntervalDays: 7}},
		Store:  store,
		Logger: slog.Default(),
	}
}

func TestApplyDelta_MatchesByNameNotTitle(t *testing.T) {
	store := newFakeStore()
	u := newTestUpdater(store)
	existing := []*core.DocumentCatalogue{
		{ID: "n1", Name: "worker-loop", Title: "Worker Loop (old title)"},
	}
	delta := catalogueDelta{
		Update: []catalogueDeltaItem{{Name: "worker-loop", Title: "Worker Loop (new title)"}},
	}
	require.NoError(t, u.applyDelta(context.Background(), "repo-1", existing, delta))
	assert.Equal(t, []string{"n1"}, store.markedIncomplete)
}

func TestApplyDelta_DeleteAndAdd(t *testing.T) {
	store := newFakeStore()
	u := newTestUpdater(store)
	existing := []*core.DocumentCatalogue{
		{ID: "n1", Name: "old-section", Title: "Old Section"},
	}
	delta := catalogueDelta{
		Delete: []catalogueDeltaItem{{Name: "old-section"}},
		Add:    []catalogueDeltaItem{{Name: "new-section", Title: "New Section", Description: "fresh"}},
	}
	require.NoError(t, u.applyDelta(context.Background(), "repo-1", existing, delta))
	assert.Equal(t, []string{"n1"}, store.softDeleted)
	require.Len(t, store.inserted, 1)
	assert.Equal(t, "new-section", store.inserted[0].Name)
	assert.False(t, store.inserted[0].IsCompleted)
}

func TestApplyDelta_UnknownNameIsIgnored(t *testing.T) {
	store := newFakeStore()
	u := newTestUpdater(store)
	delta := catalogueDelta{
		Update: []catalogueDeltaItem{{Name: "does-not-exist"}},
		Delete: []catalogueDeltaItem{{Name: "also-missing"}},
	}
	require.NoError(t, u.applyDelta(context.Background(), "repo-1", nil, delta))
	assert.Empty(t, store.markedIncomplete)
	assert.Empty(t, store.softDeleted)
}

func TestRenderCatalogue_FormatsEachNode(t *testing.T) {
	nodes := []*core.DocumentCatalogue{
		{Title: "Intro", Name: "intro", Description: "getting started"},
	}
	out := renderCatalogue(nodes)
	assert.Equal(t, "- Intro (intro): getting started\n", out)
}

func TestSplitMessage_SubjectAndBody(t *testing.T) {
	title, desc := splitMessage("Add feature\n\nLonger explanation.\n")
	assert.Equal(t, "Add feature", title)
	assert.Equal(t, "Longer explanation.", desc)
}

func TestUpdateOne_NonGitRepositoryIsNoOp(t *testing.T) {
	store := newFakeStore()
	u := newTestUpdater(store)
	repo := &core.Repository{ID: "repo-1", Type: core.RepoTypeFile}
	require.NoError(t, u.updateOne(context.Background(), repo))
}

func TestSweep_LogsAndContinuesOnListError(t *testing.T) {
	store := newFakeStore()
	store.listStaleErr = assertErr{}
	u := newTestUpdater(store)
	u.sweep(context.Background())
}

type assertErr struct{}

func (assertErr) Error() string { return "boom" }
