package content

import "github.com/forgecore/forge/internal/config"

// Site is the root aggregate produced by discovery: the Section tree plus a
// flat index of every page (physical and virtual) and the resolved config it
// was built from. Site is immutable once BuildSite returns — no exported
// mutator is provided, matching the "frozen after discovery" rule that lets
// the render phase read it from many goroutines without locking.
type Site struct {
	Root    *Section
	Pages   []*Page // flat index: tree leaves plus every VirtualSource's pages
	Config  *config.SiteConfig
	Theme   string
	Sources []VirtualSource
}

// VirtualSource contributes page-shaped content to a Site outside the normal
// filesystem walk (generated taxonomy pages, autodoc pages, ...). Pages
// returned by a VirtualSource must set Virtual = true and a URL that does not
// collide with any physical page's URL; a collision is reported by BuildSite
// as a DuplicateURLError.
type VirtualSource interface {
	// Name identifies the source for diagnostics (e.g. "taxonomy", "autodoc:go").
	Name() string
	// Pages returns the pages this source contributes, given the fully
	// discovered physical content tree.
	Pages(site *Site) ([]*Page, error)
}

// SectionByPath looks up a section by its content-relative path ("" is Root).
func (s *Site) SectionByPath(path string) *Section {
	if path == "" {
		return s.Root
	}
	var find func(sec *Section) *Section
	find = func(sec *Section) *Section {
		if sec.Path == path {
			return sec
		}
		for _, child := range sec.Sections {
			if found := find(child); found != nil {
				return found
			}
		}
		return nil
	}
	return find(s.Root)
}

// PagesForVersion returns every physical+virtual page (flat) belonging to the
// given version id, "" meaning "no version" / versioning disabled.
func (s *Site) PagesForVersion(version string) []*Page {
	out := make([]*Page, 0, len(s.Pages))
	for _, p := range s.Pages {
		if p.Version == version || p.Version == "" {
			out = append(out, p)
		}
	}
	return out
}
