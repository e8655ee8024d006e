package llmkernel

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeModel implements llms.Model with a canned sequence of responses, one
// per call, so runLoop's tool-call loop can be exercised without a network.
type fakeModel struct {
	responses []string
	calls     int
}

func (f *fakeModel) Call(ctx context.Context, prompt string) (string, error) {
	f.calls++
	if f.calls > len(f.responses) {
		return f.responses[len(f.responses)-1], nil
	}
	return f.responses[f.calls-1], nil
}

func TestRunLoop_NoToolCalls(t *testing.T) {
	k := &Kernel{model: &fakeModel{responses: []string{"<readme># Hello</readme>"}}}
	out, err := k.runLoop(context.Background(), "prompt", "readme", nil)
	require.NoError(t, err)
	assert.Equal(t, "# Hello", out)
}

func TestRunLoop_ExecutesToolThenFinishes(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "main.go"), []byte("package main"), 0o644))

	model := &fakeModel{responses: []string{
		"TOOL_CALL: read_file(main.go)",
		"<readme>content</readme>",
	}}
	k := &Kernel{model: model, repoRoot: root}
	docCtx := NewDocumentContext()
	out, err := k.runLoop(context.Background(), "prompt", "readme", docCtx)
	require.NoError(t, err)
	assert.Equal(t, "content", out)
	assert.Equal(t, []string{"main.go"}, docCtx.SourceFiles())
	assert.Equal(t, 2, model.calls)
}

func TestRunLoop_UnknownToolDoesNotAbort(t *testing.T) {
	model := &fakeModel{responses: []string{
		"TOOL_CALL: does_not_exist(x)",
		"<readme>ok</readme>",
	}}
	k := &Kernel{model: model, repoRoot: t.TempDir()}
	out, err := k.runLoop(context.Background(), "prompt", "readme", nil)
	require.NoError(t, err)
	assert.Equal(t, "ok", out)
}

func TestRunLoop_MissingTagFallsBackToRawOutput(t *testing.T) {
	k := &Kernel{model: &fakeModel{responses: []string{"no tags here"}}, repoRoot: t.TempDir()}
	out, err := k.runLoop(context.Background(), "prompt", "readme", nil)
	require.NoError(t, err)
	assert.Equal(t, "no tags here", out)
}

func TestRunLoop_MissingTagFallsBackToJSONFence(t *testing.T) {
	k := &Kernel{model: &fakeModel{responses: []string{"here:\n```json\n{\"a\":1}\n```\n"}}, repoRoot: t.TempDir()}
	out, err := k.runLoop(context.Background(), "prompt", "readme", nil)
	require.NoError(t, err)
	assert.Equal(t, `{"a":1}`, out)
}

func TestRunLoop_StopsAtMaxIterations(t *testing.T) {
	model := &fakeModel{responses: []string{"TOOL_CALL: get_tree()"}}
	k := &Kernel{model: model, repoRoot: t.TempDir()}
	out, err := k.runLoop(context.Background(), "prompt", "readme", nil)
	require.NoError(t, err)
	assert.Equal(t, "TOOL_CALL: get_tree()", out)
	assert.Equal(t, maxToolIterations, model.calls)
}
