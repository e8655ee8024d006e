// Package scanner implements the Path Scanner & Tree Compactor (spec
// §4.A): a deterministic, gitignore-aware walk of a working tree that
// produces a compact manifest string consumed by CatalogueStage and,
// when smart-filtering is enabled, by the CodeDirSimplifier tool.
package scanner

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// ErrInvalidRoot is returned when the scan root does not exist or is not
// a directory.
var ErrInvalidRoot = errors.New("invalid root")

// PathKind distinguishes a file from a directory entry.
type PathKind int

const (
	KindFile PathKind = iota
	KindDir
)

// PathInfo is one entry of a scan, in lexical-per-directory, depth-first
// order.
type PathInfo struct {
	RelPath string
	Kind    PathKind
}

// Scan walks root honoring the optional ignore set and returns an ordered
// sequence of PathInfo. Directory entries are walked lexically; each
// directory is visited depth-first immediately after being listed.
func Scan(root string, ignore *IgnoreSet) ([]PathInfo, error) {
	info, err := os.Stat(root)
	if err != nil || !info.IsDir() {
		return nil, ErrInvalidRoot
	}

	var out []PathInfo
	if err := walk(root, "", ignore, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func walk(root, relDir string, ignore *IgnoreSet, out *[]PathInfo) error {
	absDir := filepath.Join(root, relDir)
	entries, err := os.ReadDir(absDir)
	if err != nil {
		// Unreadable directory: skip it, do not fail the whole scan.
		return nil
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	for _, e := range entries {
		name := e.Name()
		if name == ".git" {
			continue
		}
		rel := name
		if relDir != "" {
			rel = relDir + "/" + name
		}

		isDir := e.IsDir()
		if ignore.IsIgnored(rel, isDir) {
			continue
		}

		if isDir {
			*out = append(*out, PathInfo{RelPath: rel, Kind: KindDir})
			if err := walk(root, rel, ignore, out); err != nil {
				return err
			}
		} else {
			*out = append(*out, PathInfo{RelPath: rel, Kind: KindFile})
		}
	}
	return nil
}

// TreeNode is a nested representation of a scan, nested by path segment.
type TreeNode struct {
	Name     string               `json:"name"`
	Kind     PathKind             `json:"-"`
	IsDir    bool                 `json:"is_dir"`
	Children map[string]*TreeNode `json:"-"`
	Order    []string             `json:"-"`
}

// Tree is the root of a BuildTree result.
type Tree struct {
	Root *TreeNode
}

// BuildTree nests a flat PathInfo sequence by path segment.
func BuildTree(paths []PathInfo) *Tree {
	root := &TreeNode{Name: "", IsDir: true, Children: map[string]*TreeNode{}}
	for _, p := range paths {
		segments := strings.Split(p.RelPath, "/")
		cur := root
		for i, seg := range segments {
			child, ok := cur.Children[seg]
			if !ok {
				isLast := i == len(segments)-1
				child = &TreeNode{
					Name:     seg,
					IsDir:    !isLast || p.Kind == KindDir,
					Children: map[string]*TreeNode{},
				}
				cur.Children[seg] = child
				cur.Order = append(cur.Order, seg)
			}
			cur = child
		}
	}
	return &Tree{Root: root}
}

// Compact renders one line per path with short inline hints: "/D" for a
// directory, "/F" for a file, indented two spaces per depth level.
func Compact(t *Tree) string {
	var sb strings.Builder
	var walkNode func(n *TreeNode, depth int)
	walkNode = func(n *TreeNode, depth int) {
		for _, name := range n.Order {
			child := n.Children[name]
			sb.WriteString(strings.Repeat("  ", depth))
			sb.WriteString(name)
			if child.IsDir {
				sb.WriteString("/D\n")
			} else {
				sb.WriteString("/F\n")
			}
			if child.IsDir {
				walkNode(child, depth+1)
			}
		}
	}
	walkNode(t.Root, 0)
	return sb.String()
}

// ToPathList renders newline-separated relative paths, files only order
// preserved from the scan.
func ToPathList(t *Tree) string {
	var sb strings.Builder
	var walkNode func(n *TreeNode, prefix string)
	walkNode = func(n *TreeNode, prefix string) {
		for _, name := range n.Order {
			child := n.Children[name]
			full := name
			if prefix != "" {
				full = prefix + "/" + name
			}
			if child.IsDir {
				walkNode(child, full)
			} else {
				sb.WriteString(full)
				sb.WriteString("\n")
			}
		}
	}
	walkNode(t.Root, "")
	return sb.String()
}

// jsonNode is the wire shape ToJSON emits.
type jsonNode struct {
	Name     string      `json:"name"`
	IsDir    bool        `json:"is_dir"`
	Children []*jsonNode `json:"children,omitempty"`
}

// ToJSON renders the tree in structured form.
func ToJSON(t *Tree) (string, error) {
	root := toJSONNode(t.Root)
	b, err := json.MarshalIndent(root.Children, "", "  ")
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func toJSONNode(n *TreeNode) *jsonNode {
	out := &jsonNode{Name: n.Name, IsDir: n.IsDir}
	for _, name := range n.Order {
		out.Children = append(out.Children, toJSONNode(n.Children[name]))
	}
	return out
}
