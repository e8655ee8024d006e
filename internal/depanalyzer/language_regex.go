package depanalyzer

import (
	"path/filepath"
	"regexp"
	"strings"
)

// languageRules is the line-oriented regex vocabulary a regexParser uses
// for one language family. Each regex's first capture group is the value
// extracted (import path, function name, or call target).
type languageRules struct {
	importPattern *regexp.Regexp
	funcPattern   *regexp.Regexp
	callPattern   *regexp.Regexp
}

var javaRules = languageRules{
	importPattern: regexp.MustCompile(`^\s*import\s+(?:static\s+)?([\w.]+)(?:\.\*)?;`),
	funcPattern:   regexp.MustCompile(`(?:public|private|protected|static|final|synchronized|\s)+[\w<>\[\],\s]+?\s(\w+)\s*\([^;{]*\)\s*(?:throws\s+[\w,\s]+)?\{`),
	callPattern:   regexp.MustCompile(`\b(\w+)\s*\(`),
}

var cRules = languageRules{
	importPattern: regexp.MustCompile(`^\s*#include\s+[<"]([^>"]+)[>"]`),
	funcPattern:   regexp.MustCompile(`^[\w][\w\s*]*?\b(\w+)\s*\([^;{)]*\)\s*\{`),
	callPattern:   regexp.MustCompile(`\b(\w+)\s*\(`),
}

var cppRules = languageRules{
	importPattern: regexp.MustCompile(`^\s*#include\s+[<"]([^>"]+)[>"]`),
	funcPattern:   regexp.MustCompile(`^[\w][\w\s*&:<>,]*?\b(\w+)\s*\([^;{)]*\)\s*(?:const\s*)?\{`),
	callPattern:   regexp.MustCompile(`\b(\w+)\s*\(`),
}

// regexParser is the text-based LanguageParser used for languages with no
// grounded tree-sitter grammar in this corpus (Java, C, C++): line-oriented
// regexes replace an AST walk, trading precision for zero grammar
// dependency, per spec's allowance that re-implementations may choose a
// lighter-weight parser tier for languages outside their primary focus.
type regexParser struct {
	rules languageRules
}

func newRegexParser(rules languageRules) *regexParser {
	return &regexParser{rules: rules}
}

func (p *regexParser) ExtractImports(path string, content []byte) []Import {
	var imports []Import
	for _, line := range strings.Split(string(content), "\n") {
		if m := p.rules.importPattern.FindStringSubmatch(line); m != nil {
			imports = append(imports, Import{FromFile: path, Path: m[1]})
		}
	}
	return imports
}

func (p *regexParser) ExtractFunctions(path string, content []byte) []Function {
	var fns []Function
	lines := strings.Split(string(content), "\n")
	depth := 0
	var open *Function
	for i, line := range lines {
		lineNum := i + 1
		if open == nil {
			if m := p.rules.funcPattern.FindStringSubmatch(line); m != nil {
				open = &Function{File: path, Name: m[1], StartLine: lineNum}
				depth = strings.Count(line, "{") - strings.Count(line, "}")
				if depth <= 0 {
					open.EndLine = lineNum
					fns = append(fns, *open)
					open = nil
				}
				continue
			}
		} else {
			depth += strings.Count(line, "{") - strings.Count(line, "}")
			if depth <= 0 {
				open.EndLine = lineNum
				fns = append(fns, *open)
				open = nil
			}
		}
	}
	return fns
}

func (p *regexParser) ExtractCalls(path string, content []byte, fns []Function) []Call {
	lines := strings.Split(string(content), "\n")
	byName := map[string]bool{}
	for _, fn := range fns {
		byName[fn.Name] = true
	}

	var calls []Call
	for _, fn := range fns {
		if fn.EndLine < fn.StartLine || fn.EndLine > len(lines) {
			continue
		}
		body := strings.Join(lines[fn.StartLine-1:fn.EndLine], "\n")
		seen := map[string]bool{}
		for _, m := range p.rules.callPattern.FindAllStringSubmatch(body, -1) {
			name := m[1]
			if name == fn.Name || !byName[name] || seen[name] {
				continue
			}
			seen[name] = true
			calls = append(calls, Call{File: path, CallerName: fn.Name, CalleeName: name})
		}
	}
	return calls
}

// ResolveImport matches an #include/import path's base name against a file
// in the repository; system/library headers and packages resolve to "".
func (p *regexParser) ResolveImport(imp Import, repoRoot string, allFiles []string) string {
	base := filepath.Base(strings.ReplaceAll(imp.Path, ".", "/"))
	for _, f := range allFiles {
		if strings.TrimSuffix(filepath.Base(f), filepath.Ext(f)) == base || filepath.Base(f) == filepath.Base(imp.Path) {
			return f
		}
	}
	return ""
}
