package depanalyzer

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// Analyzer builds and queries a ProjectModel for one repository working
// tree. Parsers are registered per file extension at construction time;
// Initialize runs them concurrently over the file list and merges the
// results under per-map locks, per spec §5's concurrency model.
type Analyzer struct {
	logger   *slog.Logger
	parsers  map[string]LanguageParser  // extension -> parser
	semantic map[string]ProjectAnalyzer // extension -> semantic analyzer (precedence over parsers)
	model    *ProjectModel
}

// NewAnalyzer returns an Analyzer with the default parser registration:
// tree-sitter-backed parsers for Go, JavaScript/TypeScript, and Python, and
// regex-based parsers for Java, C, and C++. No ProjectAnalyzer is
// registered by default.
func NewAnalyzer(logger *slog.Logger) *Analyzer {
	if logger == nil {
		logger = slog.Default()
	}
	a := &Analyzer{
		logger:   logger,
		parsers:  map[string]LanguageParser{},
		semantic: map[string]ProjectAnalyzer{},
	}
	RegisterDefaultLanguages(a)
	return a
}

// RegisterParser binds a LanguageParser to one or more file extensions
// (including the leading dot, e.g. ".go").
func (a *Analyzer) RegisterParser(parser LanguageParser, extensions ...string) {
	for _, ext := range extensions {
		a.parsers[ext] = parser
	}
}

// RegisterSemanticAnalyzer binds a ProjectAnalyzer to one or more
// extensions; it takes precedence over any LanguageParser registered for
// the same extension.
func (a *Analyzer) RegisterSemanticAnalyzer(pa ProjectAnalyzer) {
	for _, ext := range pa.Extensions() {
		a.semantic[ext] = pa
	}
}

// Model returns the ProjectModel built by the last Initialize call, or nil
// if Initialize has not run.
func (a *Analyzer) Model() *ProjectModel {
	return a.model
}

// Initialize parses every file in files (repository-relative paths) with
// its registered parser, merges per-file models into a ProjectModel,
// resolves import edges, and indexes function names for later call-site
// resolution. Files with no registered
// parser or semantic analyzer for their extension are skipped silently —
// the dependency tree simply has no edges through them.
func (a *Analyzer) Initialize(ctx context.Context, repoRoot string, files []string) (*ProjectModel, error) {
	model := &ProjectModel{
		Files:         map[string]*FileModel{},
		importEdges:   map[string][]string{},
		funcIndex:     map[string]*Function{},
		fileFuncNames: map[string]map[string]*Function{},
	}

	var mu sync.Mutex
	var wg sync.WaitGroup
	sem := make(chan struct{}, 8)

	claimed := map[string]bool{}
	for ext, pa := range a.semantic {
		sub := extFiles(files, ext)
		if len(sub) == 0 {
			continue
		}
		partial, err := pa.Analyze(ctx, repoRoot, sub)
		if err != nil {
			a.logger.WarnContext(ctx, "semantic analyzer failed", "ext", ext, "err", err)
			continue
		}
		mergeModel(model, partial)
		for _, f := range sub {
			claimed[f] = true
		}
	}

	for _, rel := range files {
		if claimed[rel] {
			continue
		}
		ext := filepath.Ext(rel)
		parser, ok := a.parsers[ext]
		if !ok {
			continue
		}

		wg.Add(1)
		sem <- struct{}{}
		go func(rel string, parser LanguageParser) {
			defer wg.Done()
			defer func() { <-sem }()

			content, err := os.ReadFile(filepath.Join(repoRoot, rel))
			if err != nil {
				a.logger.WarnContext(ctx, "dependency analyzer read failed", "path", rel, "err", err)
				return
			}

			fns := parser.ExtractFunctions(rel, content)
			fm := &FileModel{
				Path:      rel,
				Imports:   parser.ExtractImports(rel, content),
				Functions: fns,
				Calls:     parser.ExtractCalls(rel, content, fns),
			}

			mu.Lock()
			model.Files[rel] = fm
			mu.Unlock()
		}(rel, parser)
	}
	wg.Wait()

	a.resolveImports(model, repoRoot, files)
	a.buildFuncIndex(model)

	a.model = model
	return model, nil
}

func extFiles(files []string, ext string) []string {
	var out []string
	for _, f := range files {
		if filepath.Ext(f) == ext {
			out = append(out, f)
		}
	}
	return out
}

func mergeModel(dst, src *ProjectModel) {
	for path, fm := range src.Files {
		dst.Files[path] = fm
	}
}

func (a *Analyzer) resolveImports(model *ProjectModel, repoRoot string, files []string) {
	for path, fm := range model.Files {
		ext := filepath.Ext(path)
		parser, ok := a.parsers[ext]
		if !ok {
			continue
		}
		var resolved []string
		for _, imp := range fm.Imports {
			target := parser.ResolveImport(imp, repoRoot, files)
			if target != "" {
				resolved = append(resolved, target)
			}
		}
		model.importEdges[path] = resolved
	}
}

func (a *Analyzer) buildFuncIndex(model *ProjectModel) {
	for path, fm := range model.Files {
		names := map[string]*Function{}
		for i := range fm.Functions {
			fn := &fm.Functions[i]
			names[fn.Name] = fn
			names[simpleName(fn.Name)] = fn
			model.funcIndex[fmt.Sprintf("%s\x00%s", path, fn.Name)] = fn
		}
		model.fileFuncNames[path] = names
	}
}

func simpleName(name string) string {
	if idx := strings.LastIndex(name, "."); idx >= 0 {
		return name[idx+1:]
	}
	return name
}
