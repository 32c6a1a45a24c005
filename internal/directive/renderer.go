package directive

import (
	"fmt"

	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/util"
)

// NodeRenderer renders directive.Node as a <div> wrapper whose class list
// comes from the directive's registered Definition.RenderClass, falling
// back to a generic "directive directive-<name>" class for unregistered
// names so an unknown directive degrades to a plain styled box instead of
// a render failure.
type NodeRenderer struct{}

// RegisterFuncs implements renderer.NodeRenderer.
func (r *NodeRenderer) RegisterFuncs(reg renderer.NodeRendererFuncRegisterer) {
	reg.Register(KindDirective, r.renderDirective)
}

func (r *NodeRenderer) renderDirective(w util.BufWriter, source []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	n := node.(*Node)
	if entering {
		class := fmt.Sprintf("directive directive-%s", n.Name)
		if def := Lookup(n.Name); def != nil && def.RenderClass != nil {
			class = def.RenderClass(n.Options)
		}
		fmt.Fprintf(w, `<div class="%s" data-directive="%s">`, util.EscapeHTML([]byte(class)), util.EscapeHTML([]byte(n.Name)))
		if title, ok := n.Options["title"]; ok && title != "" {
			fmt.Fprintf(w, `<div class="directive-title">%s</div>`, util.EscapeHTML([]byte(title)))
		}
	} else {
		_, _ = w.WriteString("</div>")
	}
	return ast.WalkContinue, nil
}
