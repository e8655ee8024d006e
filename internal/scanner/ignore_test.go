package scanner

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadIgnoreSet_MissingFileDegradesToEmpty(t *testing.T) {
	set := LoadIgnoreSet(t.TempDir())
	assert.False(t, set.IsIgnored("anything.go", false))
}

func TestIsIgnored_BasicGlob(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, ".gitignore"), []byte("*.log\n"), 0o644))
	set := LoadIgnoreSet(root)

	assert.True(t, set.IsIgnored("debug.log", false))
	assert.True(t, set.IsIgnored("nested/debug.log", false))
	assert.False(t, set.IsIgnored("debug.go", false))
}

func TestIsIgnored_Negation(t *testing.T) {
	root := t.TempDir()
	content := "*.log\n!important.log\n"
	require.NoError(t, os.WriteFile(filepath.Join(root, ".gitignore"), []byte(content), 0o644))
	set := LoadIgnoreSet(root)

	assert.True(t, set.IsIgnored("debug.log", false))
	assert.False(t, set.IsIgnored("important.log", false))
}

func TestIsIgnored_DirectoryOnlyMatchesNestedFiles(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, ".gitignore"), []byte("vendor/\n"), 0o644))
	set := LoadIgnoreSet(root)

	assert.True(t, set.IsIgnored("vendor", true))
	assert.True(t, set.IsIgnored("vendor/lib/pkg.go", false))
	assert.False(t, set.IsIgnored("vendors/pkg.go", false))
}

func TestIsIgnored_AnchoredPattern(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, ".gitignore"), []byte("/build\n"), 0o644))
	set := LoadIgnoreSet(root)

	assert.True(t, set.IsIgnored("build", true))
	assert.False(t, set.IsIgnored("nested/build", true))
}

func TestIsIgnored_DoubleStarPrefix(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, ".gitignore"), []byte("**/testdata\n"), 0o644))
	set := LoadIgnoreSet(root)

	assert.True(t, set.IsIgnored("testdata", true))
	assert.True(t, set.IsIgnored("pkg/a/testdata", true))
}
