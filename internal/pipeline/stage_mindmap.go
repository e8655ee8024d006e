package pipeline

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/sevigo/reposcribe/internal/llmkernel"
)

// mindMapNode is the JSON shape MiniMap.Value serializes, and the shape
// the ops surface reads back to render the knowledge graph.
type mindMapNode struct {
	Title    string         `json:"title"`
	URL      string         `json:"url"`
	Children []*mindMapNode `json:"children"`
}

// MindMapStage is stage 4: always re-runs, replacing any prior MiniMap.
func MindMapStage(ctx context.Context, rc *RunContext) error {
	raw, err := rc.Kernel.InvokePrompt(ctx, llmkernel.PromptGenerateMindMap, "", mindMapData{
		RepositoryName: rc.Repository.Name,
		Tree:           rc.Repository.OptimizedDirectoryStructure,
	}, "", nil)
	if err != nil {
		return newTransientError("mindmap", err)
	}

	skeleton := llmkernel.StripTag(raw, "thinking")
	roots := parseMindMapSkeleton(skeleton)
	value, err := json.Marshal(roots)
	if err != nil {
		return newFatalError("mindmap", err)
	}

	_, err = rc.Store.ReplaceMiniMap(ctx, rc.Repository.ID, string(value))
	if err != nil {
		return newFatalError("mindmap", err)
	}
	return nil
}

type mindMapData struct {
	RepositoryName string
	Tree           string
}

// parseMindMapSkeleton converts GenerateMindMap's "#Title:path" markdown
// skeleton (one node per line, leading "#" count giving depth) into a
// forest of mindMapNode. Malformed or blank lines are skipped.
func parseMindMapSkeleton(raw string) []*mindMapNode {
	var roots []*mindMapNode
	stack := []*mindMapNode{} // current open chain, index 0 = depth 1
	depths := []int{}         // depth recorded per stack entry

	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimRight(line, "\r")
		trimmed := strings.TrimLeft(line, "#")
		depth := len(line) - len(trimmed)
		trimmed = strings.TrimSpace(trimmed)
		if depth == 0 || trimmed == "" {
			continue
		}

		title, url := trimmed, ""
		if idx := strings.Index(trimmed, ":"); idx >= 0 {
			title = strings.TrimSpace(trimmed[:idx])
			url = strings.TrimSpace(trimmed[idx+1:])
		}
		node := &mindMapNode{Title: title, URL: url, Children: []*mindMapNode{}}

		for len(depths) > 0 && depths[len(depths)-1] >= depth {
			stack = stack[:len(stack)-1]
			depths = depths[:len(depths)-1]
		}
		if len(stack) == 0 {
			roots = append(roots, node)
		} else {
			parent := stack[len(stack)-1]
			parent.Children = append(parent.Children, node)
		}
		stack = append(stack, node)
		depths = append(depths, depth)
	}
	return roots
}

// mindMapHosts names the remote hosts whose file URLs MiniMap rewrites on
// read by prepending "<remote>/tree/<branch>/" (spec §4.E numeric/edge
// policy) — applied where the tree is rendered, not at write time, since
// the rule depends on Repository.RemoteAddr/ResolvedBranch which may
// change independently of a cached MiniMap.
var mindMapHosts = []string{"github.com", "gitee.com"}

// RewriteMindMapURLs rewrites every node.URL in a MiniMap JSON tree into a
// browsable link when remote's host is one mindMapHosts names; value and
// the returned string are both MiniMap.Value-shaped JSON.
func RewriteMindMapURLs(value, remote, branch string) string {
	hostMatches := false
	for _, host := range mindMapHosts {
		if strings.Contains(remote, host) {
			hostMatches = true
			break
		}
	}
	if !hostMatches {
		return value
	}

	var roots []*mindMapNode
	if err := json.Unmarshal([]byte(value), &roots); err != nil {
		return value
	}
	prefix := strings.TrimSuffix(remote, ".git") + "/tree/" + branch + "/"
	var rewrite func(n *mindMapNode)
	rewrite = func(n *mindMapNode) {
		if n.URL != "" {
			n.URL = prefix + n.URL
		}
		for _, c := range n.Children {
			rewrite(c)
		}
	}
	for _, r := range roots {
		rewrite(r)
	}
	out, err := json.Marshal(roots)
	if err != nil {
		return value
	}
	return string(out)
}
