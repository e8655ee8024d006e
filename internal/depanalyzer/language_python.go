package depanalyzer

import (
	"context"
	"path/filepath"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/python"
)

// pythonParser is the tree-sitter-backed LanguageParser for Python,
// following the same walk-then-link shape as goParser and jsTSParser:
// function_definition/class_definition for declarations, call nodes for
// edges, import/import_from for module references.
type pythonParser struct {
	lang *sitter.Language
}

func newPythonParser() *pythonParser {
	return &pythonParser{lang: python.GetLanguage()}
}

func (p *pythonParser) parse(content []byte) *sitter.Node {
	parser := sitter.NewParser()
	parser.SetLanguage(p.lang)
	tree, err := parser.ParseCtx(context.Background(), nil, content)
	if err != nil {
		return nil
	}
	return tree.RootNode()
}

func (p *pythonParser) ExtractImports(path string, content []byte) []Import {
	root := p.parse(content)
	if root == nil {
		return nil
	}
	var imports []Import
	var walk func(n *sitter.Node)
	walk = func(n *sitter.Node) {
		if n == nil {
			return
		}
		switch n.Type() {
		case "import_statement":
			text := string(content[n.StartByte():n.EndByte()])
			mod := strings.TrimSpace(strings.TrimPrefix(text, "import"))
			imports = append(imports, Import{FromFile: path, Path: strings.Split(mod, " ")[0]})
		case "import_from_statement":
			if modNode := n.ChildByFieldName("module_name"); modNode != nil {
				imports = append(imports, Import{FromFile: path, Path: string(content[modNode.StartByte():modNode.EndByte()])})
			}
		}
		for i := 0; i < int(n.ChildCount()); i++ {
			walk(n.Child(i))
		}
	}
	walk(root)
	return imports
}

func (p *pythonParser) ExtractFunctions(path string, content []byte) []Function {
	root := p.parse(content)
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
		case "function_definition":
			if nameNode := n.ChildByFieldName("name"); nameNode != nil {
				name := string(content[nameNode.StartByte():nameNode.EndByte()])
				if className != "" {
					name = className + "." + name
				}
				fns = append(fns, nodeFunction(path, name, n))
			}
			return // don't descend into nested defs' own name resolution twice
		case "class_definition":
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

func (p *pythonParser) ExtractCalls(path string, content []byte, fns []Function) []Call {
	root := p.parse(content)
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
			if n.Type() == "call" {
				if fNode := n.ChildByFieldName("function"); fNode != nil {
					if callee := pyCalleeName(fNode, content); callee != "" {
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

func pyCalleeName(n *sitter.Node, content []byte) string {
	switch n.Type() {
	case "identifier":
		return string(content[n.StartByte():n.EndByte()])
	case "attribute":
		if attr := n.ChildByFieldName("attribute"); attr != nil {
			return string(content[attr.StartByte():attr.EndByte()])
		}
	}
	return ""
}

// ResolveImport maps a dotted Python module path to an in-repo file by
// matching its final segment against a "<segment>.py" or
// "<segment>/__init__.py" file among allFiles.
func (p *pythonParser) ResolveImport(imp Import, repoRoot string, allFiles []string) string {
	segments := strings.Split(imp.Path, ".")
	last := segments[len(segments)-1]
	for _, f := range allFiles {
		if filepath.Ext(f) != ".py" {
			continue
		}
		base := strings.TrimSuffix(filepath.Base(f), ".py")
		if base == last || (base == "__init__" && filepath.Base(filepath.Dir(f)) == last) {
			return f
		}
	}
	return ""
}
