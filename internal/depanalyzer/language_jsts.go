package depanalyzer

import (
	"context"
	"path/filepath"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/typescript/typescript"
)

// jsTSParser is the tree-sitter-backed LanguageParser for JavaScript and
// TypeScript, grounded on kraklabs-cie's parser_typescript.go walk shape.
// TypeScript's grammar is a superset of the constructs this parser looks
// for, so both extensions share one implementation keyed by file suffix.
type jsTSParser struct {
	js *sitter.Language
	ts *sitter.Language
}

func newJSTSParser() *jsTSParser {
	return &jsTSParser{js: javascript.GetLanguage(), ts: typescript.GetLanguage()}
}

func (p *jsTSParser) langFor(path string) *sitter.Language {
	if strings.HasSuffix(path, ".ts") || strings.HasSuffix(path, ".tsx") {
		return p.ts
	}
	return p.js
}

func (p *jsTSParser) parse(path string, content []byte) *sitter.Node {
	parser := sitter.NewParser()
	parser.SetLanguage(p.langFor(path))
	tree, err := parser.ParseCtx(context.Background(), nil, content)
	if err != nil {
		return nil
	}
	return tree.RootNode()
}

func (p *jsTSParser) ExtractImports(path string, content []byte) []Import {
	root := p.parse(path, content)
	if root == nil {
		return nil
	}
	var imports []Import
	var walk func(n *sitter.Node)
	walk = func(n *sitter.Node) {
		if n == nil {
			return
		}
		if n.Type() == "import_statement" {
			if src := n.ChildByFieldName("source"); src != nil {
				raw := strings.Trim(string(content[src.StartByte():src.EndByte()]), `"'`)
				imports = append(imports, Import{FromFile: path, Path: raw})
			}
		}
		for i := 0; i < int(n.ChildCount()); i++ {
			walk(n.Child(i))
		}
	}
	walk(root)
	return imports
}

func (p *jsTSParser) ExtractFunctions(path string, content []byte) []Function {
	root := p.parse(path, content)
	if root == nil {
		return nil
	}
	var fns []Function
	var walk func(n *sitter.Node, className string)
	walk = func(n *sitter.Node, className string) {
		if n == nil {
			return
		}
		switch n.Type() {
		case "function_declaration", "generator_function_declaration":
			if nameNode := n.ChildByFieldName("name"); nameNode != nil {
				name := string(content[nameNode.StartByte():nameNode.EndByte()])
				fns = append(fns, nodeFunction(path, name, n))
			}
		case "method_definition":
			if nameNode := n.ChildByFieldName("name"); nameNode != nil {
				name := string(content[nameNode.StartByte():nameNode.EndByte()])
				if className != "" {
					name = className + "." + name
				}
				fns = append(fns, nodeFunction(path, name, n))
			}
		case "class_declaration":
			if nameNode := n.ChildByFieldName("name"); nameNode != nil {
				className = string(content[nameNode.StartByte():nameNode.EndByte()])
			}
		}
		for i := 0; i < int(n.ChildCount()); i++ {
			walk(n.Child(i), className)
		}
	}
	walk(root, "")
	return fns
}

func (p *jsTSParser) ExtractCalls(path string, content []byte, fns []Function) []Call {
	root := p.parse(path, content)
	if root == nil {
		return nil
	}
	var calls []Call
	for _, fn := range fns {
		node := findNodeByLine(root, fn.StartLine, fn.EndLine)
		if node == nil {
			continue
		}
		var walk func(n *sitter.Node)
		walk = func(n *sitter.Node) {
			if n == nil {
				return
			}
			if n.Type() == "call_expression" {
				if fNode := n.ChildByFieldName("function"); fNode != nil {
					if callee := jsCalleeName(fNode, content); callee != "" {
						calls = append(calls, Call{File: path, CallerName: fn.Name, CalleeName: callee})
					}
				}
			}
			for i := 0; i < int(n.ChildCount()); i++ {
				walk(n.Child(i))
			}
		}
		walk(node)
	}
	return calls
}

func jsCalleeName(n *sitter.Node, content []byte) string {
	switch n.Type() {
	case "identifier":
		return string(content[n.StartByte():n.EndByte()])
	case "member_expression":
		if prop := n.ChildByFieldName("property"); prop != nil {
			return string(content[prop.StartByte():prop.EndByte()])
		}
	}
	return ""
}

// ResolveImport maps a relative JS/TS import specifier ("./foo", "../bar")
// to an in-repo file by joining it against the importing file's directory
// and trying common extensions; bare specifiers (npm packages) resolve to
// "".
func (p *jsTSParser) ResolveImport(imp Import, repoRoot string, allFiles []string) string {
	if !strings.HasPrefix(imp.Path, ".") {
		return ""
	}
	base := filepath.Join(filepath.Dir(imp.FromFile), imp.Path)
	candidates := []string{base, base + ".ts", base + ".tsx", base + ".js", base + ".jsx", filepath.Join(base, "index.ts"), filepath.Join(base, "index.js")}
	set := map[string]bool{}
	for _, f := range allFiles {
		set[filepath.Clean(f)] = true
	}
	for _, c := range candidates {
		if set[filepath.Clean(c)] {
			return filepath.Clean(c)
		}
	}
	return ""
}
