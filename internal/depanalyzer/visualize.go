package depanalyzer

import (
	"fmt"
	"strings"
)

// DrawTree renders a DependencyNode as an indented box-drawing tree, the same
// shape a terminal-facing debug command would print.
func DrawTree(node *DependencyNode) string {
	var sb strings.Builder
	drawNode(&sb, node, "", true)
	return sb.String()
}

func drawNode(sb *strings.Builder, node *DependencyNode, prefix string, last bool) {
	connector := "├── "
	if last {
		connector = "└── "
	}
	sb.WriteString(prefix)
	sb.WriteString(connector)
	sb.WriteString(node.Name)
	if node.Cycle {
		sb.WriteString(" (cycle)")
	}
	sb.WriteString("\n")

	childPrefix := prefix + "│   "
	if last {
		childPrefix = prefix + "    "
	}
	for i, child := range node.Children {
		drawNode(sb, child, childPrefix, i == len(node.Children)-1)
	}
}

// ToDot renders a DependencyNode as a Graphviz "dot" digraph, a convenience
// for inspecting a tree outside a terminal.
func ToDot(name string, node *DependencyNode) string {
	var sb strings.Builder
	sb.WriteString("digraph ")
	sb.WriteString(fmt.Sprintf("%q", name))
	sb.WriteString(" {\n")
	seen := map[string]bool{}
	writeDotEdges(&sb, node, seen)
	sb.WriteString("}\n")
	return sb.String()
}

func writeDotEdges(sb *strings.Builder, node *DependencyNode, seen map[string]bool) {
	for _, child := range node.Children {
		sb.WriteString(fmt.Sprintf("  %q -> %q;\n", node.Name, child.Name))
		key := node.Name + "->" + child.Name
		if seen[key] {
			continue
		}
		seen[key] = true
		if !child.Cycle {
			writeDotEdges(sb, child, seen)
		}
	}
}
