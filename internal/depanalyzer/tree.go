package depanalyzer

// maxDepth bounds both dependency tree walks; a branch hitting it is
// truncated rather than explored further.
const maxDepth = 10

// DependencyNode is one node of a file or function dependency tree.
type DependencyNode struct {
	Name     string
	Cycle    bool // true if Name already appears on this branch's path
	Children []*DependencyNode
}

// AnalyzeFileDependencyTree walks the import graph starting at file
// (repository-relative path), depth-first to maxDepth, marking a node
// Cycle=true (and not recursing further through it) the second time a
// file reappears on the same root-to-node path. Cycle detection is
// per-branch: the same file may appear, un-marked, on two different
// branches of the tree.
func (m *ProjectModel) AnalyzeFileDependencyTree(file string) *DependencyNode {
	return walkFileDeps(m, file, map[string]bool{}, 0)
}

func walkFileDeps(m *ProjectModel, file string, onPath map[string]bool, depth int) *DependencyNode {
	node := &DependencyNode{Name: file}
	if onPath[file] {
		node.Cycle = true
		return node
	}
	if depth >= maxDepth {
		return node
	}

	onPath[file] = true
	defer delete(onPath, file)

	for _, dep := range m.importEdges[file] {
		node.Children = append(node.Children, walkFileDeps(m, dep, onPath, depth+1))
	}
	return node
}

// AnalyzeFunctionDependencyTree walks the call graph starting at a function
// named funcName declared in file, depth-first to maxDepth. Callee
// resolution order is: (1) same file, (2) an imported file, (3) a global
// fallback scanning every parsed file for a matching name; a callee none
// of these finds is left unresolved (a leaf with no children).
func (m *ProjectModel) AnalyzeFunctionDependencyTree(file, funcName string) *DependencyNode {
	return walkFuncDeps(m, file, funcName, map[string]bool{}, 0)
}

func walkFuncDeps(m *ProjectModel, file, funcName string, onPath map[string]bool, depth int) *DependencyNode {
	key := file + "\x00" + funcName
	node := &DependencyNode{Name: funcName}
	if onPath[key] {
		node.Cycle = true
		return node
	}
	if depth >= maxDepth {
		return node
	}

	fm, ok := m.Files[file]
	if !ok {
		return node
	}

	onPath[key] = true
	defer delete(onPath, key)

	for _, call := range fm.Calls {
		if call.CallerName != funcName {
			continue
		}
		calleeFile, resolvedName := resolveCallee(m, file, call.CalleeName)
		if calleeFile == "" {
			node.Children = append(node.Children, &DependencyNode{Name: call.CalleeName})
			continue
		}
		node.Children = append(node.Children, walkFuncDeps(m, calleeFile, resolvedName, onPath, depth+1))
	}
	return node
}

// resolveCallee finds the declaration file for a callee name seen from
// file, in order: same file, a file file imports, then any file in the
// project (global fallback).
func resolveCallee(m *ProjectModel, file, calleeName string) (string, string) {
	if names, ok := m.fileFuncNames[file]; ok {
		if fn, ok := names[calleeName]; ok {
			return fn.File, fn.Name
		}
	}
	for _, dep := range m.importEdges[file] {
		if names, ok := m.fileFuncNames[dep]; ok {
			if fn, ok := names[calleeName]; ok {
				return fn.File, fn.Name
			}
		}
	}
	for path, names := range m.fileFuncNames {
		if fn, ok := names[calleeName]; ok {
			return path, fn.Name
		}
	}
	return "", ""
}
