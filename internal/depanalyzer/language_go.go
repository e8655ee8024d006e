package depanalyzer

import (
	"context"
	"path"
	"path/filepath"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/golang"
)

// goParser is the tree-sitter-backed LanguageParser for Go source,
// grounded on kraklabs-cie's parser_go.go walk structure: a single
// recursive descent over the AST collecting function/method declarations,
// then a second pass over each function's body collecting call
// expressions resolved by simple name.
type goParser struct {
	lang *sitter.Language
}

func newGoParser() *goParser {
	return &goParser{lang: golang.GetLanguage()}
}

func (p *goParser) parse(content []byte) *sitter.Node {
	parser := sitter.NewParser()
	parser.SetLanguage(p.lang)
	tree, err := parser.ParseCtx(context.Background(), nil, content)
	if err != nil {
		return nil
	}
	return tree.RootNode()
}

func (p *goParser) ExtractImports(path string, content []byte) []Import {
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
		if n.Type() == "import_spec" {
			if pathNode := n.ChildByFieldName("path"); pathNode != nil {
				raw := strings.Trim(string(content[pathNode.StartByte():pathNode.EndByte()]), `"`)
				alias := ""
				if nameNode := n.ChildByFieldName("name"); nameNode != nil {
					alias = string(content[nameNode.StartByte():nameNode.EndByte()])
				}
				imports = append(imports, Import{FromFile: path, Path: raw, Alias: alias})
			}
		}
		for i := 0; i < int(n.ChildCount()); i++ {
			walk(n.Child(i))
		}
	}
	walk(root)
	return imports
}

func (p *goParser) ExtractFunctions(filePath string, content []byte) []Function {
	root := p.parse(content)
	if root == nil {
		return nil
	}
	var fns []Function
	var walk func(n *sitter.Node)
	walk = func(n *sitter.Node) {
		if n == nil {
			return
		}
		switch n.Type() {
		case "function_declaration":
			if nameNode := n.ChildByFieldName("name"); nameNode != nil {
				name := string(content[nameNode.StartByte():nameNode.EndByte()])
				fns = append(fns, nodeFunction(filePath, name, n))
			}
		case "method_declaration":
			name := methodName(n, content)
			if name != "" {
				fns = append(fns, nodeFunction(filePath, name, n))
			}
		}
		for i := 0; i < int(n.ChildCount()); i++ {
			walk(n.Child(i))
		}
	}
	walk(root)
	return fns
}

func nodeFunction(filePath, name string, n *sitter.Node) Function {
	return Function{
		File:      filePath,
		Name:      name,
		StartLine: int(n.StartPoint().Row) + 1,
		EndLine:   int(n.EndPoint().Row) + 1,
	}
}

func methodName(n *sitter.Node, content []byte) string {
	nameNode := n.ChildByFieldName("name")
	if nameNode == nil {
		return ""
	}
	method := string(content[nameNode.StartByte():nameNode.EndByte()])
	receiverNode := n.ChildByFieldName("receiver")
	if receiverNode == nil {
		return method
	}
	recvType := receiverTypeName(receiverNode, content)
	if recvType == "" {
		return method
	}
	return recvType + "." + method
}

func receiverTypeName(receiverNode *sitter.Node, content []byte) string {
	for i := 0; i < int(receiverNode.ChildCount()); i++ {
		child := receiverNode.Child(i)
		if child.Type() != "parameter_declaration" {
			continue
		}
		typeNode := child.ChildByFieldName("type")
		if typeNode == nil {
			continue
		}
		name := string(content[typeNode.StartByte():typeNode.EndByte()])
		return strings.TrimPrefix(name, "*")
	}
	return ""
}

func (p *goParser) ExtractCalls(filePath string, content []byte, fns []Function) []Call {
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
			if n.Type() == "call_expression" {
				if fNode := n.ChildByFieldName("function"); fNode != nil {
					if callee := goCalleeName(fNode, content); callee != "" {
						calls = append(calls, Call{File: filePath, CallerName: fn.Name, CalleeName: callee})
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

func goCalleeName(n *sitter.Node, content []byte) string {
	switch n.Type() {
	case "identifier":
		return string(content[n.StartByte():n.EndByte()])
	case "selector_expression":
		if field := n.ChildByFieldName("field"); field != nil {
			return string(content[field.StartByte():field.EndByte()])
		}
	}
	return ""
}

func findNodeByLine(root *sitter.Node, startLine, endLine int) *sitter.Node {
	var found *sitter.Node
	var walk func(n *sitter.Node)
	walk = func(n *sitter.Node) {
		if n == nil || found != nil {
			return
		}
		if int(n.StartPoint().Row)+1 == startLine && int(n.EndPoint().Row)+1 == endLine {
			found = n
			return
		}
		for i := 0; i < int(n.ChildCount()); i++ {
			walk(n.Child(i))
		}
	}
	walk(root)
	return found
}

// ResolveImport maps a Go import path to an in-repo file by matching the
// import path's final segment against a directory name among allFiles;
// unresolved (standard library or third-party module) imports return "".
func (p *goParser) ResolveImport(imp Import, repoRoot string, allFiles []string) string {
	pkgDir := path.Base(imp.Path)
	for _, f := range allFiles {
		if filepath.Ext(f) != ".go" {
			continue
		}
		if filepath.Base(filepath.Dir(f)) == pkgDir {
			return f
		}
	}
	return ""
}
