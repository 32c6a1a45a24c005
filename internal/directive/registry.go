package directive

import "fmt"

// Definition describes one registered directive: its name (as written after
// the ::: fence), which parent directive names it is allowed to nest under
// (nil/empty means "any, including top-level"), and how to render its
// resolved HTML class list from the raw `key=value` option line.
type Definition struct {
	Name           string
	AllowedParents []string
	// RenderClass returns the CSS class(es) to apply to the block's wrapper
	// element given its parsed options (e.g. admonition's "kind" option
	// selects "directive-admonition directive-admonition-warning").
	RenderClass func(options map[string]string) string
}

// registry is the process-wide directive registry. Directives are
// registered once at startup (see builtins.go's init) and read thereafter,
// so no locking is needed — this matches spec.md §9's "stateless singleton
// registry" guidance.
var registry = map[string]*Definition{}

// Register adds a directive definition. Re-registering a name overwrites
// the previous definition, which is convenient for tests that want to
// register a throwaway directive.
func Register(def *Definition) {
	registry[def.Name] = def
}

// Lookup returns the definition for name, or nil if unregistered.
func Lookup(name string) *Definition {
	return registry[name]
}

// ContractViolation describes a directive nested under a parent its
// definition does not allow.
type ContractViolation struct {
	Directive string
	Parent    string
	Allowed   []string
}

func (v *ContractViolation) Error() string {
	return fmt.Sprintf("directive %q is not allowed inside %q (allowed parents: %v)", v.Directive, v.Parent, v.Allowed)
}

// CheckContract validates that a child directive's parent (by name, ""
// meaning top-level/no directive parent) is permitted by the child's
// registered AllowedParents.
func CheckContract(child, parent string) error {
	def := Lookup(child)
	if def == nil || len(def.AllowedParents) == 0 {
		return nil
	}
	for _, allowed := range def.AllowedParents {
		if allowed == parent {
			return nil
		}
	}
	return &ContractViolation{Directive: child, Parent: parent, Allowed: def.AllowedParents}
}
