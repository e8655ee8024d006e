package llmkernel

import "strings"

// codeExtensions is the set of source extensions eligible for compression
// before a tool hands file content to the model, adapted from the
// teacher's own isCodeExtension classification.
var codeExtensions = map[string]bool{
	".go": true, ".js": true, ".ts": true, ".tsx": true, ".jsx": true,
	".py": true, ".java": true, ".c": true, ".cpp": true, ".h": true,
	".hpp": true, ".rs": true, ".rb": true, ".php": true, ".cs": true,
	".swift": true, ".kt": true, ".scala": true,
}

func isCodeExtension(ext string) bool {
	return codeExtensions[ext]
}

// compressCode drops blank lines and whole-line comments from source
// content, a cheap token-reduction pass applied to ReadFile/ReadFiles
// output when Document.EnableCodeCompression is set — this is not a
// formatter, only a best-effort filter safe to apply to any of
// codeExtensions' languages since "//", "#" line-comment prefixes span all
// of them loosely enough to be a net win, never a correctness requirement.
func compressCode(content string) string {
	lines := strings.Split(content, "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		if strings.HasPrefix(trimmed, "//") || strings.HasPrefix(trimmed, "#") {
			continue
		}
		out = append(out, line)
	}
	return strings.Join(out, "\n")
}
