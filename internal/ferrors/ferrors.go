// Package ferrors implements Forge's stable error-code taxonomy: every
// user-facing error carries a short code from one of the C (config), D
// (discovery/content), P (parsing/rendering), T (template), or O (output)
// families, so tooling and documentation can reference a specific failure
// mode independent of its English message.
package ferrors

import (
	"errors"
	"fmt"
	"regexp"
)

// Code is a stable error code, validated against codePattern.
type Code string

var codePattern = regexp.MustCompile(`^[A-Z][0-9]{3,4}$`)

// Valid reports whether c matches the required code shape.
func (c Code) Valid() bool { return codePattern.MatchString(string(c)) }

// Known error codes. Families: C=config, D=discovery/content, P=parsing
// (markdown/directives), T=template/rendering, O=output/writer.
const (
	CMissingTitle    Code = "C001"
	CInvalidBaseURL  Code = "C002"
	CUnreadable      Code = "C003"
	DMissingTitle    Code = "D001"
	DDuplicateURL    Code = "D002"
	DInvalidFront    Code = "D003"
	DBadDate         Code = "D004"
	PMarkdownFailed  Code = "P001"
	PDirectiveBadNest Code = "P002"
	TNoTemplate      Code = "T001"
	TExecFailed      Code = "T002"
	OWriteFailed     Code = "O001"
)

// registryEntry documents one code's meaning and a suggested fix, surfaced
// by the CLI when an Error with that code reaches the top level.
type registryEntry struct {
	Description string
	Hint        string
}

var registry = map[Code]registryEntry{
	CMissingTitle:    {"site config is missing a required title", "set `title` in your config file"},
	CInvalidBaseURL:  {"baseURL must not end with a trailing slash", "remove the trailing slash from baseURL"},
	CUnreadable:      {"config file could not be read or parsed", "check the file path and syntax"},
	DMissingTitle:    {"page frontmatter is missing a required title", "add a `title` field to the page's frontmatter"},
	DDuplicateURL:    {"two pages resolved to the same URL", "set an explicit `url` or `slug` on one of the pages"},
	DInvalidFront:    {"page frontmatter could not be parsed", "check the frontmatter's YAML/TOML syntax"},
	DBadDate:         {"a date field could not be parsed", "use an ISO-8601 date, e.g. 2026-01-02"},
	PMarkdownFailed:  {"markdown rendering failed", "check the page's markdown source for malformed syntax"},
	PDirectiveBadNest: {"a directive was nested under a parent it does not allow", "check the directive's allowed-parents contract"},
	TNoTemplate:      {"no template could be resolved for a page", "add a matching layout under your theme or site layouts"},
	TExecFailed:      {"template execution failed", "check the template for typos in field/function names"},
	OWriteFailed:     {"writing an output file failed", "check output directory permissions and available disk space"},
}

// Describe returns the registry entry for a code, or a generic fallback for
// an unregistered one.
func Describe(c Code) (description, hint string) {
	if e, ok := registry[c]; ok {
		return e.Description, e.Hint
	}
	return "unrecognized error code", ""
}

// Error is a Forge error: a stable Code, a human message (via the wrapped
// Source error's Error() text), and enough location info to point a user at
// the offending file.
type Error struct {
	Code   Code
	File   string
	Line   int
	Hint   string
	Source error
}

func (e *Error) Error() string {
	if e.File != "" {
		if e.Line > 0 {
			return fmt.Sprintf("[%s] %s:%d: %s", e.Code, e.File, e.Line, e.Source)
		}
		return fmt.Sprintf("[%s] %s: %s", e.Code, e.File, e.Source)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Source)
}

func (e *Error) Unwrap() error { return e.Source }

// New wraps src with a code and file location.
func New(code Code, file string, src error) *Error {
	_, hint := Describe(code)
	return &Error{Code: code, File: file, Hint: hint, Source: src}
}

// As is a thin convenience wrapper over errors.As for *Error, used by
// callers that only care whether an error carries a ferrors.Error.
func As(err error) (*Error, bool) {
	var fe *Error
	ok := errors.As(err, &fe)
	return fe, ok
}
