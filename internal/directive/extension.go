package directive

import (
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/util"
)

// Extension wires the directive block parser and renderer into a goldmark
// instance, following the same goldmark.Extender pattern the teacher's
// markdown renderer already uses for its other extensions (GFM, Footnote,
// Typographer).
type Extension struct{}

// New returns the directive goldmark extension.
func New() goldmark.Extender { return &Extension{} }

func (e *Extension) Extend(m goldmark.Markdown) {
	m.Parser().AddOptions(
		parser.WithBlockParsers(
			util.Prioritized(NewBlockParser(), 50),
		),
	)
	m.Renderer().AddOptions(
		renderer.WithNodeRenderers(
			util.Prioritized(&NodeRenderer{}, 50),
		),
	)
}

// Violations returns every contract violation collected during the most
// recent parse, given the parser.Context used for that parse. The build
// orchestrator calls this after parsing each page to decide whether to
// surface a warning or, under config.BuildConfig.ValidateContracts and
// StrictMode, a fatal error.
func Violations(pc parser.Context) []error {
	v, _ := pc.Get(violationsKey).([]error)
	return v
}
