package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sevigo/reposcribe/internal/core"
)

func TestReadmeStage_PassesThroughExistingValue(t *testing.T) {
	store := newFakeStore()
	rc := &RunContext{
		Repository: &core.Repository{ID: "repo-1", Readme: "already set"},
		Store:      store,
	}
	require.NoError(t, ReadmeStage(context.Background(), rc))
	assert.Equal(t, "already set", rc.Repository.Readme)
	assert.Nil(t, store.fields["repo-1"])
}

func TestReadmeStage_ReadsCandidateFromWorkingTreeAndMirrorsInMemory(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "README.md"), []byte("# Hello"), 0o644))

	store := newFakeStore()
	rc := &RunContext{
		Repository:  &core.Repository{ID: "repo-1"},
		Store:       store,
		WorkingTree: dir,
	}
	require.NoError(t, ReadmeStage(context.Background(), rc))
	assert.Equal(t, "# Hello", rc.Repository.Readme)
	assert.Equal(t, "# Hello", store.fields["repo-1"]["readme"])
}

func TestReadmeStage_SkipsBlankCandidateFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "README.md"), []byte("   \n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "README"), []byte("fallback content"), 0o644))

	store := newFakeStore()
	rc := &RunContext{
		Repository:  &core.Repository{ID: "repo-1"},
		Store:       store,
		WorkingTree: dir,
	}
	require.NoError(t, ReadmeStage(context.Background(), rc))
	assert.Equal(t, "fallback content", rc.Repository.Readme)
}
