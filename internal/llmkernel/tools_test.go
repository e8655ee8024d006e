package llmkernel

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTools_ReadFile_NotFound(t *testing.T) {
	root := t.TempDir()
	tools := buildTools(root, nil, false, nil, NewDocumentContext())
	out, err := tools["read_file"]([]string{"missing.go"})
	require.NoError(t, err)
	assert.Equal(t, "File not found", out)
}

func TestTools_ReadFile_TooLarge(t *testing.T) {
	root := t.TempDir()
	big := strings.Repeat("a", largeFileThreshold+1)
	require.NoError(t, os.WriteFile(filepath.Join(root, "big.txt"), []byte(big), 0o644))
	tools := buildTools(root, nil, false, nil, NewDocumentContext())
	out, err := tools["read_file"]([]string{"big.txt"})
	require.NoError(t, err)
	assert.Contains(t, out, "File too large")
}

func TestTools_ReadFile_ExactThresholdIsNotTooLarge(t *testing.T) {
	root := t.TempDir()
	exact := strings.Repeat("a", largeFileThreshold)
	require.NoError(t, os.WriteFile(filepath.Join(root, "exact.txt"), []byte(exact), 0o644))
	tools := buildTools(root, nil, false, nil, NewDocumentContext())
	out, err := tools["read_file"]([]string{"exact.txt"})
	require.NoError(t, err)
	assert.Equal(t, exact, out)
}

func TestTools_FileRange_NegativeReadsWhole(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "f.go"), []byte("a\nb\nc\n"), 0o644))
	tools := buildTools(root, nil, false, nil, NewDocumentContext())
	out, err := tools["file"]([]string{"f.go", "-1", "-1"})
	require.NoError(t, err)
	assert.Equal(t, "1: a\n2: b\n3: c", out)
}

func TestTools_FileRange_Windowed(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "f.go"), []byte("a\nb\nc\nd\n"), 0o644))
	tools := buildTools(root, nil, false, nil, NewDocumentContext())
	out, err := tools["file"]([]string{"f.go", "1", "2"})
	require.NoError(t, err)
	assert.Equal(t, "2: b\n3: c", out)
}

func TestTools_FileRange_OffsetBeyondEndReturnsNoContent(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "f.go"), []byte("a\nb\nc\n"), 0o644))
	tools := buildTools(root, nil, false, nil, NewDocumentContext())
	out, err := tools["file"]([]string{"f.go", "10", "5"})
	require.NoError(t, err)
	assert.Contains(t, out, "no content")
}

func TestTools_FileRange_TruncatesLongLines(t *testing.T) {
	root := t.TempDir()
	long := strings.Repeat("x", maxLineLength+50)
	require.NoError(t, os.WriteFile(filepath.Join(root, "f.go"), []byte(long+"\n"), 0o644))
	tools := buildTools(root, nil, false, nil, NewDocumentContext())
	out, err := tools["file"]([]string{"f.go", "0", "1"})
	require.NoError(t, err)
	assert.Equal(t, maxLineLength, len(strings.TrimPrefix(out, "1: ")))
}

func TestTools_ReadFile_CompressesCode(t *testing.T) {
	root := t.TempDir()
	src := "package main\n\n// a comment\nfunc main() {}\n"
	require.NoError(t, os.WriteFile(filepath.Join(root, "f.go"), []byte(src), 0o644))
	tools := buildTools(root, nil, true, nil, NewDocumentContext())
	out, err := tools["read_file"]([]string{"f.go"})
	require.NoError(t, err)
	assert.NotContains(t, out, "// a comment")
	assert.Contains(t, out, "func main() {}")
}

func TestTools_DocumentContext_RecordsSourceFiles(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "f.go"), []byte("package main\n"), 0o644))
	docCtx := NewDocumentContext()
	tools := buildTools(root, nil, false, nil, docCtx)
	_, err := tools["read_file"]([]string{"f.go"})
	require.NoError(t, err)
	assert.Equal(t, []string{"f.go"}, docCtx.SourceFiles())
	assert.Contains(t, docCtx.ToolCalls(), "read_file")
}
