// Package directive implements the `:::name key=value` fenced block
// extension for Forge's markdown pipeline: a small goldmark extension that
// lets content authors opt into typed, styled blocks (admonitions, tabs,
// step lists) without hand-writing HTML in their markdown.
package directive

import (
	"github.com/yuin/goldmark/ast"
)

// KindDirective is the goldmark NodeKind for a directive block.
var KindDirective = ast.NewNodeKind("Directive")

// Node is a directive block's AST node. Its children are the block's body,
// parsed as ordinary markdown, so directives can nest arbitrary content
// (including other directives, when a contract allows it).
type Node struct {
	ast.BaseBlock
	Name    string
	Options map[string]string

	// depth is this node's nesting depth within its own document's directive
	// tree. It belongs to the node rather than a package-level table because
	// a *Node never outlives the parse call that created it.
	depth int
}

// Dump implements ast.Node's debug-printing contract, following goldmark's
// own convention for custom block nodes.
func (n *Node) Dump(source []byte, level int) {
	m := map[string]string{"Name": n.Name}
	for k, v := range n.Options {
		m["option:"+k] = v
	}
	ast.DumpHelper(n, source, level, m, nil)
}

// Kind returns KindDirective.
func (n *Node) Kind() ast.NodeKind { return KindDirective }

// NewNode constructs a directive AST node.
func NewNode(name string, options map[string]string) *Node {
	return &Node{Name: name, Options: options}
}
