package template

import "fmt"

// Value is a safe wrapper around an arbitrary params value. Chained access
// like `.Params.foo.bar` never panics or errors even when "foo" is absent
// or not a map: Get on a missing/non-map value returns an empty Value.
// html/template calls a zero-argument, single-return method named by the
// field/identifier following a dot, so `.Params.foo` resolves to
// `Params.Get("foo")`, and `.foo.bar` on the result resolves to another
// Get call — this is what makes the whole chain panic-free.
type Value struct {
	v any
}

// NewValue wraps an arbitrary value for safe template access.
func NewValue(v any) Value { return Value{v: v} }

// Get looks up key on the wrapped value if it is a map[string]any (or
// ParamsView), returning an empty Value when the key is absent or the
// wrapped value isn't a map.
func (p Value) Get(key string) Value {
	switch m := p.v.(type) {
	case map[string]any:
		return Value{v: m[key]}
	case ParamsView:
		return m.Get(key)
	default:
		return Value{}
	}
}

// String renders the wrapped value as a string, returning "" for nil or a
// type with no sensible string form — this is what {{ .Params.foo }} calls
// implicitly via fmt.Stringer-style formatting in html/template.
func (p Value) String() string {
	switch v := p.v.(type) {
	case nil:
		return ""
	case string:
		return v
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprint(v)
	}
}

// Bool reports the wrapped value's truthiness: false/nil/empty-string/zero
// all read as false, matching html/template's own "empty" notion so
// `{{ if .Params.featured }}` behaves as expected.
func (p Value) Bool() bool {
	switch v := p.v.(type) {
	case nil:
		return false
	case bool:
		return v
	case string:
		return v != ""
	case int:
		return v != 0
	case int64:
		return v != 0
	case float64:
		return v != 0
	default:
		return v != nil
	}
}

// Raw returns the underlying value, for template functions that need the
// real type rather than a safe-access wrapper (e.g. "where"/"sortBy").
func (p Value) Raw() any { return p.v }

// ParamsView is the root of a page's safe-access params chain: a small
// stack of map[string]any layers (page params, then each ancestor section's
// cascade, then site-wide params), consulted outside-in so a page's own
// value always wins over an inherited one.
type ParamsView struct {
	layers []map[string]any
}

// NewParamsView builds a ParamsView from the most-specific layer first
// (typically the page's own Params) down to the least-specific (site
// Params last).
func NewParamsView(layers ...map[string]any) ParamsView {
	return ParamsView{layers: layers}
}

// Get returns the first layer's value for key, outside-in, or an empty
// Value if no layer defines it.
func (p ParamsView) Get(key string) Value {
	for _, layer := range p.layers {
		if layer == nil {
			continue
		}
		if v, ok := layer[key]; ok {
			return Value{v: v}
		}
	}
	return Value{}
}
