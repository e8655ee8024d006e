package scanner

import (
	"bufio"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// ignoreRule is one parsed line of a .gitignore file.
type ignoreRule struct {
	pattern    *regexp.Regexp
	negated    bool
	dirOnly    bool
	anchored   bool
	rawPattern string
}

// IgnoreSet is a composite ignore ruleset loaded from a repository's
// .gitignore. A file is ignored if the last matching rule is
// non-negated; negations re-include. A directory-only rule (trailing "/")
// matches a directory's own path, and for a file it matches any of the
// file's ancestor directory paths, not the file path itself.
type IgnoreSet struct {
	rules []ignoreRule
}

// LoadIgnoreSet reads root/.gitignore, if present, and compiles it into an
// IgnoreSet. A missing or unreadable .gitignore degrades to an empty,
// permissive set rather than failing the scan.
func LoadIgnoreSet(root string) *IgnoreSet {
	set := &IgnoreSet{}

	f, err := os.Open(filepath.Join(root, ".gitignore"))
	if err != nil {
		return set
	}
	defer f.Close()

	scan := bufio.NewScanner(f)
	for scan.Scan() {
		line := scan.Text()
		if rule, ok := parseIgnoreLine(line); ok {
			set.rules = append(set.rules, rule)
		}
	}
	return set
}

func parseIgnoreLine(line string) (ignoreRule, bool) {
	trimmed := strings.TrimRight(line, " ")
	if trimmed == "" || strings.HasPrefix(strings.TrimSpace(trimmed), "#") {
		return ignoreRule{}, false
	}

	negated := false
	if strings.HasPrefix(trimmed, "!") {
		negated = true
		trimmed = trimmed[1:]
	}

	anchored := strings.HasPrefix(trimmed, "/")
	if anchored {
		trimmed = trimmed[1:]
	}

	dirOnly := strings.HasSuffix(trimmed, "/")
	if dirOnly {
		trimmed = strings.TrimSuffix(trimmed, "/")
	}

	if trimmed == "" {
		return ignoreRule{}, false
	}

	re := globToRegexp(trimmed, anchored)
	return ignoreRule{
		pattern:    re,
		negated:    negated,
		dirOnly:    dirOnly,
		anchored:   anchored,
		rawPattern: trimmed,
	}, true
}

// globToRegexp compiles a gitignore-style glob into a regexp per the spec's
// matching contract: `*` matches any non-separator run, `**/` matches any
// (possibly empty) path prefix, `?` matches one non-separator, bracket
// classes pass through verbatim, and all other regex metacharacters are
// escaped. Unanchored patterns may match at any path-segment boundary.
func globToRegexp(pattern string, anchored bool) *regexp.Regexp {
	var sb strings.Builder
	sb.WriteString("^")
	if !anchored {
		sb.WriteString("(?:.*/)?")
	}

	runes := []rune(pattern)
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		switch {
		case r == '*' && i+1 < len(runes) && runes[i+1] == '*':
			// "**/" or trailing "**"
			if i+2 < len(runes) && runes[i+2] == '/' {
				sb.WriteString("(?:.*/)?")
				i += 2
			} else {
				sb.WriteString(".*")
				i++
			}
		case r == '*':
			sb.WriteString("[^/]*")
		case r == '?':
			sb.WriteString("[^/]")
		case r == '[':
			// Bracket class passes through until the closing ']'.
			end := strings.IndexRune(string(runes[i:]), ']')
			if end == -1 {
				sb.WriteString(regexp.QuoteMeta(string(r)))
				continue
			}
			sb.WriteString(string(runes[i : i+end+1]))
			i += end
		default:
			sb.WriteString(regexp.QuoteMeta(string(r)))
		}
	}
	sb.WriteString("$")
	return regexp.MustCompile(sb.String())
}

// IsIgnored reports whether the given slash-separated path relative to the
// scan root, and whether it names a directory, should be excluded.
func (s *IgnoreSet) IsIgnored(relPath string, isDir bool) bool {
	if s == nil || len(s.rules) == 0 {
		return false
	}
	relPath = filepath.ToSlash(relPath)

	ignored := false
	for _, rule := range s.rules {
		if rule.dirOnly && !isDir {
			// A directory-only rule may still match an ancestor directory
			// of this file; check each ancestor directory path too.
			if !matchesAnyAncestor(rule, relPath) {
				continue
			}
		} else if !rule.pattern.MatchString(relPath) {
			continue
		}
		ignored = !rule.negated
	}
	return ignored
}

func matchesAnyAncestor(rule ignoreRule, relPath string) bool {
	dir := filepath.ToSlash(filepath.Dir(relPath))
	for dir != "." && dir != "/" && dir != "" {
		if rule.pattern.MatchString(dir) {
			return true
		}
		dir = filepath.ToSlash(filepath.Dir(dir))
	}
	return false
}
