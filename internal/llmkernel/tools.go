package llmkernel

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/sevigo/reposcribe/internal/depanalyzer"
	"github.com/sevigo/reposcribe/internal/scanner"
)

// largeFileThreshold is the size past which ReadFile/ReadFiles decline to
// return content and suggest the line-ranged File tool instead (spec
// §4.C).
const largeFileThreshold = 100 * 1024

// maxLineLength truncates any single returned line to this many
// characters (spec §4.C File()).
const maxLineLength = 2000

// Tool is one function the model may invoke mid-generation. args are the
// raw, already-split arguments the kernel parsed out of the model's tool
// call; a tool's own error is returned to the model as a string (spec's
// "tool-error-as-string propagation") rather than aborting the invocation.
type Tool func(args []string) (string, error)

// buildTools constructs the fixed tool set every InvokePrompt call exposes:
// repository tree access and file reads, scoped to repoRoot via
// resolveWithinRoot. Dependency-analysis tools are added only when model
// is non-nil, i.e. Document.EnableCodeDependencyAnalysis is set and
// Initialize already ran for this repository.
func buildTools(repoRoot string, ignore *scanner.IgnoreSet, compress bool, model *depanalyzer.ProjectModel, docCtx *DocumentContext) map[string]Tool {
	tools := map[string]Tool{
		"get_tree": func(args []string) (string, error) {
			paths, err := scanner.Scan(repoRoot, ignore)
			if err != nil {
				return "", err
			}
			tree := scanner.BuildTree(paths)
			docCtx.recordToolCall("get_tree")
			return scanner.Compact(tree), nil
		},
		"file_info": func(args []string) (string, error) {
			if len(args) == 0 {
				return "", fmt.Errorf("file_info requires at least one path argument")
			}
			docCtx.recordToolCall("file_info")
			return strings.Join(dedupMap(args, func(rel string) string {
				return fileInfoLine(repoRoot, rel)
			}), "\n"), nil
		},
		"read_file": func(args []string) (string, error) {
			if len(args) < 1 {
				return "", fmt.Errorf("read_file requires a path argument")
			}
			docCtx.recordToolCall("read_file")
			return readOneFile(repoRoot, args[0], compress, docCtx), nil
		},
		"read_files": func(args []string) (string, error) {
			if len(args) == 0 {
				return "", fmt.Errorf("read_files requires at least one path argument")
			}
			var sb strings.Builder
			for _, rel := range dedup(args) {
				sb.WriteString(fmt.Sprintf("--- %s ---\n%s\n\n", rel, readOneFile(repoRoot, rel, compress, docCtx)))
			}
			docCtx.recordToolCall("read_files")
			return sb.String(), nil
		},
		"file": func(args []string) (string, error) {
			if len(args) < 3 {
				return "", fmt.Errorf("file requires path, offset, limit arguments")
			}
			path, err := resolveWithinRoot(repoRoot, args[0])
			if err != nil {
				return "", err
			}
			offset, err1 := strconv.Atoi(args[1])
			limit, err2 := strconv.Atoi(args[2])
			if err1 != nil || err2 != nil {
				return "", fmt.Errorf("invalid offset/limit %q/%q", args[1], args[2])
			}
			content, err := os.ReadFile(path)
			if err != nil {
				return "", err
			}
			if compress && isCodeExtension(strings.ToLower(filepath.Ext(args[0]))) {
				content = []byte(compressCode(string(content)))
			}
			docCtx.recordSourceFile(args[0])
			docCtx.recordToolCall("file")
			return rangedLines(string(content), offset, limit), nil
		},
	}

	if model != nil {
		tools["analyze_file_dependencies"] = func(args []string) (string, error) {
			if len(args) < 1 {
				return "", fmt.Errorf("analyze_file_dependencies requires a path argument")
			}
			tree := model.AnalyzeFileDependencyTree(args[0])
			docCtx.recordToolCall("analyze_file_dependencies")
			return depanalyzer.DrawTree(tree), nil
		}
		tools["analyze_function_dependencies"] = func(args []string) (string, error) {
			if len(args) < 2 {
				return "", fmt.Errorf("analyze_function_dependencies requires path and function name arguments")
			}
			tree := model.AnalyzeFunctionDependencyTree(args[0], args[1])
			docCtx.recordToolCall("analyze_function_dependencies")
			return depanalyzer.DrawTree(tree), nil
		}
	}

	return tools
}

func dedup(paths []string) []string {
	seen := map[string]bool{}
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		if seen[p] {
			continue
		}
		seen[p] = true
		out = append(out, p)
	}
	return out
}

func dedupMap(paths []string, f func(string) string) []string {
	out := make([]string, 0, len(paths))
	for _, p := range dedup(paths) {
		out = append(out, f(p))
	}
	return out
}

// fileInfoLine implements FileInfo's per-path contract: name, byte length,
// extension, line count, or the literal "File not found" string — never a
// Go error, since file-not-found is a normal model-visible outcome here.
func fileInfoLine(repoRoot, rel string) string {
	path, err := resolveWithinRoot(repoRoot, rel)
	if err != nil {
		return fmt.Sprintf("%s: File not found", rel)
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Sprintf("%s: File not found", rel)
	}
	lines := strings.Count(string(content), "\n") + 1
	return fmt.Sprintf("%s: name=%s bytes=%d ext=%s lines=%d", rel, filepath.Base(rel), len(content), filepath.Ext(rel), lines)
}

// readOneFile implements ReadFile/ReadFiles' shared per-path contract:
// "File not found" / "File too large" string returns rather than errors,
// the >100KiB line-ranged-reader suggestion, and optional code
// compression.
func readOneFile(repoRoot, rel string, compress bool, docCtx *DocumentContext) string {
	path, err := resolveWithinRoot(repoRoot, rel)
	if err != nil {
		return "File not found"
	}
	info, err := os.Stat(path)
	if err != nil {
		return "File not found"
	}
	if info.Size() > largeFileThreshold {
		return "File too large: use the file tool with an offset/limit range instead"
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return "File not found"
	}
	docCtx.recordSourceFile(rel)
	if compress && isCodeExtension(strings.ToLower(filepath.Ext(rel))) {
		return compressCode(string(content))
	}
	return string(content)
}

// rangedLines implements File()'s line-windowing contract: offset<0 reads
// the entire file and limit<0 reads from offset to the end; a trailing
// newline ends the last line rather than starting an empty one. Each
// returned line is truncated to
// maxLineLength and prefixed "N: " with its 1-indexed line number. An
// offset at or past the end of the file returns a "no content" message
// rather than an empty string.
func rangedLines(content string, offset, limit int) string {
	lines := strings.Split(content, "\n")
	if len(lines) > 1 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	if offset >= 0 && offset >= len(lines) {
		return "no content: offset is beyond the end of the file"
	}
	start := offset
	if start < 0 {
		start = 0
	}
	if start > len(lines) {
		start = len(lines)
	}
	end := len(lines)
	if limit >= 0 && offset >= 0 {
		end = offset + limit
		if end > len(lines) {
			end = len(lines)
		}
	}

	var sb strings.Builder
	for i := start; i < end; i++ {
		line := lines[i]
		if len(line) > maxLineLength {
			line = line[:maxLineLength]
		}
		sb.WriteString(fmt.Sprintf("%d: %s\n", i+1, line))
	}
	return strings.TrimRight(sb.String(), "\n")
}
