package cache

// DepGraph is an adjacency list from a dependency (template name, data file
// path, or another page's source path) to the set of page source paths that
// depend on it. Keys are plain strings rather than object pointers, grounded
// on the reverse-lookup pattern in the retrieval pack's incremental-builder
// example (template -> dependent posts, fetched by path/id rather than by
// holding live references across build runs).
type DepGraph struct {
	edges map[string]map[string]struct{}
}

// NewDepGraph returns an empty DepGraph.
func NewDepGraph() *DepGraph {
	return &DepGraph{edges: make(map[string]map[string]struct{})}
}

// Add records that page (by source path) depends on dep (a template name,
// data file path, or page source path).
func (g *DepGraph) Add(dep, page string) {
	set, ok := g.edges[dep]
	if !ok {
		set = make(map[string]struct{})
		g.edges[dep] = set
	}
	set[page] = struct{}{}
}

// Dependents returns every page source path recorded as depending on dep.
func (g *DepGraph) Dependents(dep string) []string {
	set, ok := g.edges[dep]
	if !ok {
		return nil
	}
	out := make([]string, 0, len(set))
	for p := range set {
		out = append(out, p)
	}
	return out
}

// Merge folds another graph's edges into g.
func (g *DepGraph) Merge(other *DepGraph) {
	if other == nil {
		return
	}
	for dep, pages := range other.edges {
		for page := range pages {
			g.Add(dep, page)
		}
	}
}

// RemovePage drops every edge pointing at page, used when a page is removed
// from the site between builds.
func (g *DepGraph) RemovePage(page string) {
	for dep, set := range g.edges {
		delete(set, page)
		if len(set) == 0 {
			delete(g.edges, dep)
		}
	}
}
