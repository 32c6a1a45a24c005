// Package navtree builds and caches the site's navigation tree: a pure
// structural projection of the content Section tree (plus any menu-driven
// entries) that templates walk to render nav bars/sidebars, with a
// non-mutating "active trail" overlay applied per page at render time.
package navtree

import (
	"sort"

	"github.com/forgecore/forge/internal/content"
)

// Node is one entry in the navigation tree.
type Node struct {
	Title    string
	URL      string
	Weight   int
	Icon     string
	Children []*Node
}

// Tree is the built, version-scoped navigation tree. A Tree is never
// mutated after Build returns — callers needing per-request state (the
// active trail) use WithActiveTrail, which returns an overlay instead of
// touching the Tree's nodes.
type Tree struct {
	Root []*Node
}

// Build constructs a Tree for the given site and version id ("" for
// unversioned sites or the content shared across all versions). Child
// sections returned by SectionsForVersion become nodes (titled from their
// index page when they have one); a section's direct pages become nodes only
// when they set a menu. Node URLs are the pages' URLs as discovered:
// `_versions/<id>/` and `_shared/` path segments are not stripped here.
func Build(site *content.Site, versionID string) *Tree {
	var walk func(sec *content.Section) []*Node
	walk = func(sec *content.Section) []*Node {
		var nodes []*Node
		for _, child := range sec.SectionsForVersion(versionID) {
			node := &Node{Children: walk(child)}
			if child.IndexPage != nil {
				node.Title = child.IndexPage.Title
				node.URL = child.IndexPage.URL
				node.Weight = child.IndexPage.Weight
				node.Icon = child.IndexPage.Icon
			} else {
				node.Title = child.Name
				node.URL = "/" + child.Path + "/"
			}
			nodes = append(nodes, node)
		}
		for _, p := range sec.PagesForVersion(versionID) {
			if p.Menu == "" {
				continue
			}
			nodes = append(nodes, &Node{Title: p.Title, URL: p.URL, Weight: p.Weight, Icon: p.Icon})
		}
		sort.SliceStable(nodes, func(i, j int) bool {
			if nodes[i].Weight != nodes[j].Weight {
				if nodes[i].Weight == 0 {
					return false
				}
				if nodes[j].Weight == 0 {
					return true
				}
				return nodes[i].Weight < nodes[j].Weight
			}
			return nodes[i].Title < nodes[j].Title
		})
		return nodes
	}

	return &Tree{Root: walk(site.Root)}
}

// TargetURL resolves the URL a nav node should link to. When a node has no
// index page (a pure listing section), it falls back to the first child
// section's target, and finally to "#" if the subtree is entirely empty —
// the fallback cascade required by spec.md §4.3.
func (n *Node) TargetURL() string {
	if n.URL != "" {
		return n.URL
	}
	for _, child := range n.Children {
		if u := child.TargetURL(); u != "#" {
			return u
		}
	}
	return "#"
}

// Context is a read-only, per-render overlay over a Tree: it carries the set
// of node URLs on the active trail for the current page, without mutating
// the underlying Tree (spec.md §8 property: NavTree nodes are immutable once
// built; the active/current flags are request-scoped state).
type Context struct {
	Tree   *Tree
	trail  map[string]bool
	current string
}

// WithActiveTrail computes the active-trail overlay for the given page's
// URL: every node whose URL is a prefix of the page URL is marked active.
func (t *Tree) WithActiveTrail(pageURL string) *Context {
	trail := make(map[string]bool)
	var mark func(nodes []*Node)
	mark = func(nodes []*Node) {
		for _, n := range nodes {
			if n.URL != "" && len(n.URL) <= len(pageURL) && pageURL[:len(n.URL)] == n.URL {
				trail[n.URL] = true
			}
			mark(n.Children)
		}
	}
	mark(t.Root)
	return &Context{Tree: t, trail: trail, current: pageURL}
}

// IsActive reports whether node is on the active trail for this render.
func (c *Context) IsActive(n *Node) bool { return c.trail[n.URL] }

// IsCurrent reports whether node is the exact current page.
func (c *Context) IsCurrent(n *Node) bool { return n.URL == c.current }
