package navtree

import (
	"testing"

	"github.com/forgecore/forge/internal/content"
)

func TestBuildEmptySite(t *testing.T) {
	site := &content.Site{Root: &content.Section{}}
	tree := Build(site, "")
	if len(tree.Root) != 0 {
		t.Fatalf("expected no nodes for an empty section tree, got %d", len(tree.Root))
	}
}

func TestTargetURLFallsBackToChild(t *testing.T) {
	leaf := &Node{URL: "/blog/posts/"}
	parent := &Node{Children: []*Node{leaf}}
	if got := parent.TargetURL(); got != "/blog/posts/" {
		t.Fatalf("expected fallback to child URL, got %q", got)
	}
}

func TestTargetURLEmptySubtree(t *testing.T) {
	node := &Node{}
	if got := node.TargetURL(); got != "#" {
		t.Fatalf("expected #, got %q", got)
	}
}

func TestWithActiveTrailMarksAncestors(t *testing.T) {
	tree := &Tree{Root: []*Node{
		{URL: "/blog/", Children: []*Node{
			{URL: "/blog/posts/"},
		}},
	}}
	ctx := tree.WithActiveTrail("/blog/posts/")
	if !ctx.IsActive(tree.Root[0]) {
		t.Fatal("expected /blog/ to be on the active trail for /blog/posts/")
	}
	if !ctx.IsCurrent(tree.Root[0].Children[0]) {
		t.Fatal("expected /blog/posts/ to be the current node")
	}
}

func TestCacheGetMemoizes(t *testing.T) {
	site := &content.Site{Root: &content.Section{}}
	c := NewCache()
	first := c.Get(site, "")
	second := c.Get(site, "")
	if first != second {
		t.Fatal("expected Get to return the memoized tree on second call")
	}
	c.Invalidate("")
	third := c.Get(site, "")
	if third == first {
		t.Fatal("expected Invalidate to force a rebuild")
	}
}
