// Package depanalyzer implements the Dependency Analyzer (spec §4.B): a
// per-repository, per-language pass that builds an in-memory project model
// of files, imports, and function call edges, then answers file- and
// function-level dependency tree queries over it.
package depanalyzer

import "context"

// Import is a single import/require statement extracted from a source file.
type Import struct {
	FromFile string
	Path     string // raw import path or module specifier as written
	Alias    string
}

// Function is one function or method declaration extracted from a source
// file, identified within its file by Name (receiver-qualified for methods,
// e.g. "Server.Start").
type Function struct {
	File      string
	Name      string
	StartLine int
	EndLine   int
}

// Call is a caller→callee edge within a single file, recorded by name only;
// the callee is resolved to a concrete Function at query time by
// AnalyzeFunctionDependencyTree, using the import edges and name indexes
// Initialize builds.
type Call struct {
	File       string
	CallerName string
	CalleeName string
}

// FileModel is the per-file result of running a LanguageParser.
type FileModel struct {
	Path      string
	Imports   []Import
	Functions []Function
	Calls     []Call
}

// ProjectModel is the merged result of Initialize: every parsed file in the
// repository, plus lookup indexes used by the dependency tree queries.
type ProjectModel struct {
	Files map[string]*FileModel // path -> model

	// importEdges maps a file to the repository-relative paths its imports
	// resolved to (best-effort; unresolved imports, e.g. third-party
	// packages, are simply absent).
	importEdges map[string][]string

	// funcIndex maps "file\x00funcName" to the Function it names, and a
	// simple-name index per file for same-file call resolution.
	funcIndex     map[string]*Function
	fileFuncNames map[string]map[string]*Function
}

// LanguageParser extracts a FileModel from one source file's content.
// Implementations may be tree-sitter-backed (exact, AST-based) or
// regex/text-based (approximate, no grammar dependency).
type LanguageParser interface {
	// ExtractImports returns the import/require statements in content.
	ExtractImports(path string, content []byte) []Import
	// ExtractFunctions returns the function/method declarations in content.
	ExtractFunctions(path string, content []byte) []Function
	// ExtractCalls returns call edges within content, keyed by the
	// declarations ExtractFunctions already found.
	ExtractCalls(path string, content []byte, fns []Function) []Call
	// ResolveImport maps an import's raw path/specifier to a
	// repository-relative file path, or "" if it cannot be resolved
	// in-repo (e.g. a third-party or standard-library import).
	ResolveImport(imp Import, repoRoot string, allFiles []string) string
}

// ProjectAnalyzer is a whole-project semantic analyzer: a capability tier
// above LanguageParser that would claim an extension outright and build its
// own ProjectModel fragment with cross-file type/symbol resolution instead
// of the per-file parse-then-link approach. No language in this analyzer
// currently registers one; the interface exists so a future tree-sitter
// parser can be promoted to it without changing the registration surface
// or Initialize's precedence rule (a registered ProjectAnalyzer wins over a
// LanguageParser for any extension it claims).
type ProjectAnalyzer interface {
	Analyze(ctx context.Context, repoRoot string, files []string) (*ProjectModel, error)
	Extensions() []string
}
