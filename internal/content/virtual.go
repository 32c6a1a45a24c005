package content

// AutodocSource is the extension point for generated-documentation content
// (e.g. introspecting a Go package, an OpenAPI spec, or a CLI's flags into
// pages). No concrete backend is implemented here — the backends spec.md
// lists as illustrative (Python AST, OpenAPI, CLI introspection) are out of
// scope for this build. AutodocSource exists so `config.AutodocConfig` has a
// real extension point to enable/disable, and so future backends only need
// to implement Pages.
type AutodocSource struct {
	Kind    string // e.g. "go", matches a config.AutodocConfig key
	Enabled bool
	Backend func(site *Site) ([]*Page, error)
}

func (s *AutodocSource) Name() string { return "autodoc:" + s.Kind }

// Pages returns no pages when disabled or no backend is wired, which is the
// documented behavior for this build (see DESIGN.md).
func (s *AutodocSource) Pages(site *Site) ([]*Page, error) {
	if !s.Enabled || s.Backend == nil {
		return nil, nil
	}
	pages, err := s.Backend(site)
	if err != nil {
		return nil, err
	}
	for _, p := range pages {
		p.IsAutodoc = true
		if p.SectionRef == nil {
			p.SectionRef = site.SectionByPath(p.Section)
		}
	}
	return pages, nil
}
