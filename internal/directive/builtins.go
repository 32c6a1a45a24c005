package directive

import "fmt"

// init registers Forge's built-in directives. Applications embedding this
// package can register additional directives via Register before building
// their markdown renderer.
func init() {
	Register(&Definition{
		Name: "admonition",
		RenderClass: func(options map[string]string) string {
			kind := options["kind"]
			if kind == "" {
				kind = options["0"]
			}
			if kind == "" {
				kind = "note"
			}
			return fmt.Sprintf("directive-admonition directive-admonition-%s", kind)
		},
	})

	Register(&Definition{
		Name: "tabs",
		RenderClass: func(options map[string]string) string {
			return "directive-tabs"
		},
	})

	Register(&Definition{
		Name:           "tab",
		AllowedParents: []string{"tabs"},
		RenderClass: func(options map[string]string) string {
			return "directive-tab"
		},
	})

	Register(&Definition{
		Name: "code-tabs",
		RenderClass: func(options map[string]string) string {
			return "directive-code-tabs"
		},
	})

	Register(&Definition{
		Name:           "code-tab",
		AllowedParents: []string{"code-tabs"},
		RenderClass: func(options map[string]string) string {
			lang := options["lang"]
			if lang == "" {
				lang = options["0"]
			}
			return fmt.Sprintf("directive-code-tab directive-code-tab-%s", lang)
		},
	})

	Register(&Definition{
		Name: "steps",
		RenderClass: func(options map[string]string) string {
			return "directive-steps"
		},
	})

	Register(&Definition{
		Name:           "step",
		AllowedParents: []string{"steps"},
		RenderClass: func(options map[string]string) string {
			return "directive-step"
		},
	})
}
