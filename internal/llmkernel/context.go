package llmkernel

import "sync"

// DocumentContext accumulates the side effects of one InvokePrompt call:
// which source files the model consulted via a read tool, and which tools
// it invoked at all. Stage Runners persist DocumentContext.SourceFiles
// alongside generated content (core.DocumentFileItem.SourceFiles); it is
// not shared across concurrent invocations, per spec §5.
type DocumentContext struct {
	mu          sync.Mutex
	sourceFiles []string
	seenFiles   map[string]bool
	toolCalls   []string
}

// NewDocumentContext returns an empty DocumentContext for one invocation.
func NewDocumentContext() *DocumentContext {
	return &DocumentContext{seenFiles: map[string]bool{}}
}

func (d *DocumentContext) recordSourceFile(path string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.seenFiles[path] {
		return
	}
	d.seenFiles[path] = true
	d.sourceFiles = append(d.sourceFiles, path)
}

func (d *DocumentContext) recordToolCall(name string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.toolCalls = append(d.toolCalls, name)
}

// SourceFiles returns every distinct file path read during the
// invocation, in first-read order.
func (d *DocumentContext) SourceFiles() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]string, len(d.sourceFiles))
	copy(out, d.sourceFiles)
	return out
}

// ToolCalls returns the name of every tool invoked, in call order,
// including repeats.
func (d *DocumentContext) ToolCalls() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]string, len(d.toolCalls))
	copy(out, d.toolCalls)
	return out
}
