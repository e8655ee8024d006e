package depanalyzer

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeSrc(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestAnalyzer_GoCallGraph(t *testing.T) {
	root := t.TempDir()
	writeSrc(t, root, "main.go", `package main

func main() {
	helper()
}

func helper() {
	inner()
}

func inner() {}
`)

	a := NewAnalyzer(nil)
	model, err := a.Initialize(context.Background(), root, []string{"main.go"})
	require.NoError(t, err)
	require.NotNil(t, model.Files["main.go"])
	assert.Len(t, model.Files["main.go"].Functions, 3)

	tree := model.AnalyzeFunctionDependencyTree("main.go", "main")
	require.Len(t, tree.Children, 1)
	assert.Equal(t, "helper", tree.Children[0].Name)
	require.Len(t, tree.Children[0].Children, 1)
	assert.Equal(t, "inner", tree.Children[0].Children[0].Name)
}

func TestAnalyzer_FileDependencyTreeCycleDetection(t *testing.T) {
	model := &ProjectModel{
		Files: map[string]*FileModel{
			"a.go": {Path: "a.go"},
			"b.go": {Path: "b.go"},
		},
		importEdges: map[string][]string{
			"a.go": {"b.go"},
			"b.go": {"a.go"},
		},
		funcIndex:     map[string]*Function{},
		fileFuncNames: map[string]map[string]*Function{},
	}

	tree := model.AnalyzeFileDependencyTree("a.go")
	require.Len(t, tree.Children, 1)
	require.Len(t, tree.Children[0].Children, 1)
	assert.True(t, tree.Children[0].Children[0].Cycle)
	assert.Equal(t, "a.go", tree.Children[0].Children[0].Name)
}

func TestDrawTree(t *testing.T) {
	tree := &DependencyNode{
		Name: "main",
		Children: []*DependencyNode{
			{Name: "helper"},
		},
	}
	out := DrawTree(tree)
	assert.Contains(t, out, "main")
	assert.Contains(t, out, "helper")
}
