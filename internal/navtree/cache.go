package navtree

import (
	"sync"

	"github.com/forgecore/forge/internal/content"
)

// Cache memoizes built Trees by version id. A single mutex is held across
// the map lookup and, on a miss, the tree build itself, so each version's
// tree is built at most once; readers of an already-built tree take the same
// lock. This adapts the navigation cache in the retrieval pack's kdex-web
// example to a synchronous build-under-lock since this spec has no
// background-refresh requirement (see DESIGN.md).
type Cache struct {
	mu    sync.Mutex
	trees map[string]*Tree
}

// NewCache returns an empty Cache.
func NewCache() *Cache {
	return &Cache{trees: make(map[string]*Tree)}
}

// Get returns the cached Tree for versionID, building and storing it on
// first use.
func (c *Cache) Get(site *content.Site, versionID string) *Tree {
	c.mu.Lock()
	defer c.mu.Unlock()

	if tree, ok := c.trees[versionID]; ok {
		return tree
	}
	tree := Build(site, versionID)
	c.trees[versionID] = tree
	return tree
}

// Invalidate drops the cached Tree for versionID (or every version when
// versionID is ""), forcing the next Get to rebuild. Called by the build
// orchestrator when cache.DetectStructuralChange reports a structural
// change anywhere in the site.
func (c *Cache) Invalidate(versionID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if versionID == "" {
		c.trees = make(map[string]*Tree)
		return
	}
	delete(c.trees, versionID)
}
