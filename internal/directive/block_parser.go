package directive

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
)

// openRe matches a directive fence's opening line: ":::name key=value key2="quoted value"".
var openRe = regexp.MustCompile(`^:::([A-Za-z][A-Za-z0-9_-]*)(?:\s+(.*))?$`)

// closeRe matches a bare closing fence line.
var closeRe = regexp.MustCompile(`^:::\s*$`)

// BlockParser parses `:::name ...` fenced directive blocks as container
// blocks: everything between the opening and matching closing fence is
// parsed as ordinary nested markdown (including further directives).
type BlockParser struct{}

var defaultBlockParser = &BlockParser{}

// NewBlockParser returns the directive BlockParser singleton.
func NewBlockParser() parser.BlockParser { return defaultBlockParser }

func (b *BlockParser) Trigger() []byte { return []byte{':'} }

func (b *BlockParser) Open(parent ast.Node, reader text.Reader, pc parser.Context) (ast.Node, parser.State) {
	line, _ := reader.PeekLine()
	trimmed := strings.TrimRight(string(line), "\r\n")
	m := openRe.FindStringSubmatch(trimmed)
	if m == nil {
		return nil, parser.NoChildren
	}

	name := m[1]
	options := parseOptions(m[2])

	var parentName string
	if p, ok := parent.(*Node); ok {
		parentName = p.Name
	}
	if err := CheckContract(name, parentName); err != nil {
		// Contract violations are accumulated as Result warnings by the
		// caller (see Violations in extension.go); parsing still proceeds so
		// a single bad nesting doesn't take down the whole document.
		recordViolation(pc, err)
	}

	node := NewNode(name, options)
	reader.Advance(len(line))
	return node, parser.HasChildren
}

func (b *BlockParser) Continue(node ast.Node, reader text.Reader, pc parser.Context) parser.State {
	n := node.(*Node)
	line, _ := reader.PeekLine()
	trimmed := strings.TrimRight(string(line), "\r\n")

	if closeRe.MatchString(trimmed) {
		if n.depth == 0 {
			reader.Advance(len(line))
			return parser.Close
		}
		n.depth--
		return parser.Continue | parser.HasChildren
	}
	if openRe.MatchString(trimmed) {
		n.depth++
	}
	return parser.Continue | parser.HasChildren
}

func (b *BlockParser) Close(node ast.Node, reader text.Reader, pc parser.Context) {}

func (b *BlockParser) CanInterruptParagraph() bool { return true }

func (b *BlockParser) CanAcceptIndentedLine() bool { return false }

// parseOptions parses a simple `key=value key2="quoted value"` option line
// into a map. A bare token with no "=" is stored under the key "0", "1", ...
// so directives can accept a single positional argument (e.g. `:::tabs Go`).
func parseOptions(raw string) map[string]string {
	options := make(map[string]string)
	if raw == "" {
		return options
	}
	tokens := tokenizeOptions(raw)
	pos := 0
	for _, tok := range tokens {
		if idx := strings.IndexByte(tok, '='); idx >= 0 {
			key := tok[:idx]
			val := strings.Trim(tok[idx+1:], `"'`)
			options[key] = val
		} else {
			options[strconv.Itoa(pos)] = tok
			pos++
		}
	}
	return options
}

// tokenizeOptions splits an option line on whitespace while respecting
// double-quoted values.
func tokenizeOptions(raw string) []string {
	var tokens []string
	var cur strings.Builder
	inQuotes := false
	for _, r := range raw {
		switch {
		case r == '"':
			inQuotes = !inQuotes
			cur.WriteRune(r)
		case r == ' ' && !inQuotes:
			if cur.Len() > 0 {
				tokens = append(tokens, cur.String())
				cur.Reset()
			}
		default:
			cur.WriteRune(r)
		}
	}
	if cur.Len() > 0 {
		tokens = append(tokens, cur.String())
	}
	return tokens
}

// violationsKey accumulates every contract violation seen during a single
// parse call, so multi-violation documents don't silently drop all but the
// last one.
var violationsKey = parser.NewContextKey()

func recordViolation(pc parser.Context, err error) {
	existing, _ := pc.Get(violationsKey).([]error)
	pc.Set(violationsKey, append(existing, err))
}
