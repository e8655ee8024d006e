package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMindMapSkeleton_NestsByHashDepth(t *testing.T) {
	raw := "#Root:root.md\n##Child:child.md\n#Sibling:sibling.md\n"
	roots := parseMindMapSkeleton(raw)
	require.Len(t, roots, 2)
	assert.Equal(t, "Root", roots[0].Title)
	assert.Equal(t, "root.md", roots[0].URL)
	require.Len(t, roots[0].Children, 1)
	assert.Equal(t, "Child", roots[0].Children[0].Title)
	assert.Equal(t, "Sibling", roots[1].Title)
}

func TestParseMindMapSkeleton_SkipsBlankAndMalformedLines(t *testing.T) {
	raw := "\n   \n#Only:node.md\nnot a heading\n"
	roots := parseMindMapSkeleton(raw)
	require.Len(t, roots, 1)
	assert.Equal(t, "Only", roots[0].Title)
}

func TestParseMindMapSkeleton_TitleWithoutURL(t *testing.T) {
	roots := parseMindMapSkeleton("#Just a title\n")
	require.Len(t, roots, 1)
	assert.Equal(t, "Just a title", roots[0].Title)
	assert.Equal(t, "", roots[0].URL)
}

func TestRewriteMindMapURLs_RewritesMatchingHost(t *testing.T) {
	value := `[{"title":"Root","url":"README.md","children":[]}]`
	out := RewriteMindMapURLs(value, "https://github.com/acme/widgets.git", "main")
	assert.Contains(t, out, "https://github.com/acme/widgets/tree/main/README.md")
}

func TestRewriteMindMapURLs_LeavesNonMatchingHostUntouched(t *testing.T) {
	value := `[{"title":"Root","url":"README.md","children":[]}]`
	out := RewriteMindMapURLs(value, "https://example.com/acme/widgets.git", "main")
	assert.Equal(t, value, out)
}
