package cache

import "time"

// formatVersion guards the on-disk cache schema; bumping it forces a full
// rebuild instead of trying to interpret an incompatible persisted cache.
const formatVersion = 1

// EntryStatus records the outcome of the last successful build for a source,
// so a build that fails partway through still leaves the cache reflecting
// only the subset that actually rendered (spec.md §4.4's partial-failure
// rule).
type EntryStatus int

const (
	StatusOK EntryStatus = iota
	StatusFailed
)

// RenderedSnapshot holds the derived output of a page's markdown render
// step, so a cache hit can skip re-parsing/re-rendering markdown entirely
// and rehydrate a page's Content/TableOfContents straight from disk.
type RenderedSnapshot struct {
	Content         string
	TableOfContents string
}

// Entry is the cached state for one source file.
type Entry struct {
	SourcePath        string
	Fingerprint       Fingerprint
	OutputFingerprint Fingerprint128
	OutputPath        string
	RenderedAt        time.Time
	Status            EntryStatus
	Dependencies      []string // templates/data files/pages this entry's render touched
	Structural        StructuralFields
	Rendered          RenderedSnapshot
}

// BuildCache is the in-memory incremental build cache for one site. It is
// loaded once at the start of a build, consulted to decide which pages need
// re-rendering, updated as pages render, and persisted at the end of the
// build (or, on partial failure, persisted with only the successful subset
// updated).
type BuildCache struct {
	Version              int
	Entries              map[string]*Entry // keyed by source path
	Deps                 *DepGraph
	TemplateFingerprints map[string]Fingerprint // keyed by template name, as returned by template.Engine
}

// New returns an empty BuildCache, used when no persisted cache exists yet
// or the persisted one failed to load / had a stale format version.
func New() *BuildCache {
	return &BuildCache{
		Version:              formatVersion,
		Entries:              make(map[string]*Entry),
		Deps:                 NewDepGraph(),
		TemplateFingerprints: make(map[string]Fingerprint),
	}
}

// entryFor returns the existing entry for path, creating an empty one if
// none exists yet, so RecordSource and Record can each update their own
// fields of a single entry without clobbering the other's.
func (c *BuildCache) entryFor(path string) *Entry {
	entry, ok := c.Entries[path]
	if !ok {
		entry = &Entry{SourcePath: path}
		c.Entries[path] = entry
	}
	return entry
}

// RecordSource stores the result of a page's markdown render step: its
// content fingerprint, structural metadata snapshot, and rendered
// content/TOC. It is called during the render phase, ahead of Record (which
// finalizes the entry once the page's template has executed).
func (c *BuildCache) RecordSource(path string, fp Fingerprint, structural StructuralFields, rendered RenderedSnapshot) {
	entry := c.entryFor(path)
	entry.Fingerprint = fp
	entry.Structural = structural
	entry.Rendered = rendered
}

// NeedsRender reports whether the source at path must be re-rendered given
// its freshly computed fingerprint: true when there is no prior entry, the
// prior entry failed, or the fingerprint differs.
func (c *BuildCache) NeedsRender(path string, fp Fingerprint) bool {
	entry, ok := c.Entries[path]
	if !ok {
		return true
	}
	if entry.Status != StatusOK {
		return true
	}
	return entry.Fingerprint != fp
}

// Record stores the outcome of rendering a source, merging into any entry
// already populated for path by RecordSource rather than replacing it
// wholesale, so the structural/rendered snapshot recorded during the
// markdown phase survives into the finalized entry.
func (c *BuildCache) Record(path string, fp Fingerprint, outFp Fingerprint128, outPath string, deps []string) {
	entry := c.entryFor(path)
	entry.Fingerprint = fp
	entry.OutputFingerprint = outFp
	entry.OutputPath = outPath
	entry.RenderedAt = time.Now()
	entry.Status = StatusOK
	entry.Dependencies = deps
	for _, dep := range deps {
		c.Deps.Add(dep, path)
	}
}

// RecordFailure marks path as failed so the next build retries it rather
// than treating a transient render error as "unchanged."
func (c *BuildCache) RecordFailure(path string) {
	if entry, ok := c.Entries[path]; ok {
		entry.Status = StatusFailed
		return
	}
	c.Entries[path] = &Entry{SourcePath: path, Status: StatusFailed}
}

// Invalidate removes a source's entry outright, forcing a full re-render on
// the next build regardless of fingerprint — used when a structural change
// is detected (see DetectStructuralChange) for pages whose output depends on
// site-wide structure rather than just their own content (archive/tag pages,
// section indexes).
func (c *BuildCache) Invalidate(path string) {
	delete(c.Entries, path)
}

// InvalidateDependents invalidates every entry that Deps records as
// depending on changedDep (a template name or data file path).
func (c *BuildCache) InvalidateDependents(changedDep string) {
	for _, page := range c.Deps.Dependents(changedDep) {
		c.Invalidate(page)
	}
}

// Prune removes entries for source paths no longer present in liveSources,
// keeping the cache from growing unboundedly as content is deleted/renamed.
func (c *BuildCache) Prune(liveSources map[string]struct{}) {
	for path := range c.Entries {
		if _, ok := liveSources[path]; !ok {
			delete(c.Entries, path)
			c.Deps.RemovePage(path)
		}
	}
}

// StructuralFields is the subset of a page's metadata whose change requires
// invalidating the NavTree and any taxonomy/archive indexes, even though the
// page's own fingerprint logic would otherwise only force *that* page's
// re-render.
type StructuralFields struct {
	Title   string
	Weight  int
	Icon    string
	Section string
	Version string
	Tags    []string
	Cascade map[string]any
}

// DetectStructuralChange reports whether any structural field differs
// between the previous and current snapshot of a page, per spec.md §4.4.
func DetectStructuralChange(prev, curr StructuralFields) bool {
	if prev.Title != curr.Title || prev.Weight != curr.Weight || prev.Icon != curr.Icon ||
		prev.Section != curr.Section || prev.Version != curr.Version {
		return true
	}
	if len(prev.Tags) != len(curr.Tags) {
		return true
	}
	for i := range prev.Tags {
		if prev.Tags[i] != curr.Tags[i] {
			return true
		}
	}
	if len(prev.Cascade) != len(curr.Cascade) {
		return true
	}
	for k, v := range prev.Cascade {
		if curr.Cascade[k] != v {
			return true
		}
	}
	return false
}
