package scanner

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestScan_InvalidRoot(t *testing.T) {
	_, err := Scan(filepath.Join(t.TempDir(), "does-not-exist"), nil)
	assert.ErrorIs(t, err, ErrInvalidRoot)
}

func TestScan_LexicalDepthFirst(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "b.go"), "package b")
	writeFile(t, filepath.Join(root, "a", "nested.go"), "package a")
	writeFile(t, filepath.Join(root, "a.go"), "package a")

	paths, err := Scan(root, nil)
	require.NoError(t, err)

	var rels []string
	for _, p := range paths {
		rels = append(rels, p.RelPath)
	}
	assert.Equal(t, []string{"a", "a/nested.go", "a.go", "b.go"}, rels)
}

func TestScan_HonorsIgnoreSet(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, ".gitignore"), "*.log\nvendor/\n")
	writeFile(t, filepath.Join(root, "main.go"), "package main")
	writeFile(t, filepath.Join(root, "debug.log"), "noise")
	writeFile(t, filepath.Join(root, "vendor", "lib.go"), "package lib")

	ignore := LoadIgnoreSet(root)
	paths, err := Scan(root, ignore)
	require.NoError(t, err)

	var rels []string
	for _, p := range paths {
		rels = append(rels, p.RelPath)
	}
	assert.Equal(t, []string{".gitignore", "main.go"}, rels)
}

func TestScan_SkipsDotGitAlways(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, ".git", "HEAD"), "ref: refs/heads/main")
	writeFile(t, filepath.Join(root, "main.go"), "package main")

	paths, err := Scan(root, nil)
	require.NoError(t, err)

	for _, p := range paths {
		assert.NotContains(t, p.RelPath, ".git")
	}
}

func TestBuildTreeAndCompact(t *testing.T) {
	paths := []PathInfo{
		{RelPath: "a", Kind: KindDir},
		{RelPath: "a/nested.go", Kind: KindFile},
		{RelPath: "b.go", Kind: KindFile},
	}
	tree := BuildTree(paths)

	compact := Compact(tree)
	assert.Equal(t, "a/D\n  nested.go/F\nb.go/F\n", compact)

	list := ToPathList(tree)
	assert.Equal(t, "a/nested.go\nb.go\n", list)

	j, err := ToJSON(tree)
	require.NoError(t, err)
	assert.Contains(t, j, `"name": "a"`)
	assert.Contains(t, j, `"is_dir": true`)
}
