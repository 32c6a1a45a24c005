package content

import "sort"

// Section is a node in the content tree. Every page belongs to exactly one
// Section; a Section may itself contain child Sections. The tree is built
// bottom-up during discovery and is never mutated after discovery completes.
type Section struct {
	Name    string // e.g. "posts"
	Path    string // content-relative path, e.g. "blog/posts"
	Parent  *Section
	IndexPage *Page // the section's _index.md / index.md, if any
	Sections  []*Section
	Pages     []*Page

	// Cascade holds frontmatter values inherited by every page and child section
	// under this one, merged shallow-per-key from the root down (a deeper
	// section's own cascade key always wins over an ancestor's same key).
	Cascade map[string]any
}

// newSection constructs an empty Section for the given path.
func newSection(path, name string, parent *Section) *Section {
	return &Section{
		Name:    name,
		Path:    path,
		Parent:  parent,
		Cascade: make(map[string]any),
	}
}

// AllPages returns every page directly or transitively contained in this section,
// including the index page if present.
func (s *Section) AllPages() []*Page {
	var out []*Page
	if s.IndexPage != nil {
		out = append(out, s.IndexPage)
	}
	out = append(out, s.Pages...)
	for _, child := range s.Sections {
		out = append(out, child.AllPages()...)
	}
	return out
}

// PagesForVersion returns this section's direct pages belonging to the given
// version id ("" matches pages with no version set, i.e. versioning disabled
// or shared content).
func (s *Section) PagesForVersion(version string) []*Page {
	out := make([]*Page, 0, len(s.Pages))
	for _, p := range s.Pages {
		if p.Version == version || p.Version == "" {
			out = append(out, p)
		}
	}
	return out
}

// SectionsForVersion returns this section's child sections that contain at
// least one page (directly or transitively) for the given version.
func (s *Section) SectionsForVersion(version string) []*Section {
	out := make([]*Section, 0, len(s.Sections))
	for _, child := range s.Sections {
		if len(child.PagesForVersion(version)) > 0 || len(child.SectionsForVersion(version)) > 0 {
			out = append(out, child)
		}
	}
	return out
}

// sortPages orders a section's direct pages by weight then date, matching the
// teacher's existing page-ordering convention for section listings.
func (s *Section) sortPages() {
	sort.SliceStable(s.Pages, func(i, j int) bool {
		wi, wj := s.Pages[i].Weight, s.Pages[j].Weight
		if wi != wj {
			if wi == 0 {
				return false
			}
			if wj == 0 {
				return true
			}
			return wi < wj
		}
		return s.Pages[i].Date.After(s.Pages[j].Date)
	})
	sort.SliceStable(s.Sections, func(i, j int) bool {
		return s.Sections[i].Name < s.Sections[j].Name
	})
}

// resolveCascade merges a parent's cascade into this section's own (shallow
// per-key: a key already present in s.Cascade is left untouched), then applies
// the merged result onto every direct page's Params under the same shallow
// rule, and recurses into child sections.
func (s *Section) resolveCascade(inherited map[string]any) {
	merged := make(map[string]any, len(inherited)+len(s.Cascade))
	for k, v := range inherited {
		merged[k] = v
	}
	for k, v := range s.Cascade {
		merged[k] = v
	}
	s.Cascade = merged

	applyCascade := func(p *Page) {
		if p == nil {
			return
		}
		if p.Params == nil {
			p.Params = make(map[string]any)
		}
		for k, v := range merged {
			if _, exists := p.Params[k]; !exists {
				p.Params[k] = v
			}
		}
	}
	applyCascade(s.IndexPage)
	for _, p := range s.Pages {
		applyCascade(p)
	}
	for _, child := range s.Sections {
		child.resolveCascade(merged)
	}
}
