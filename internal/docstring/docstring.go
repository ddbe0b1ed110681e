// Package docstring synthesizes placeholder docstrings in the supported
// conventions. Every function here is pure and accepts any input.
package docstring

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/phobologic/docgen/internal/model"
)

// Delimiter opens and closes every generated docstring.
const Delimiter = `"""`

const placeholder = "Description."

// Build returns a docstring for name and params in the given convention.
// Values outside the closed set of conventions get the reST layout.
func Build(convention model.Convention, name string, params []string) string {
	switch convention {
	case model.Google:
		return Google(name, params)
	case model.NumPy:
		return NumPy(name, params)
	case model.ReST:
		return ReST(name, params)
	default:
		return ReST(name, params)
	}
}

// Summary returns the one-line summary derived from a declaration name.
func Summary(name string) string {
	return Capitalize(name) + "."
}

// Capitalize upper-cases the first letter of s and lower-cases the rest.
func Capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + strings.ToLower(s[size:])
}

// Google renders the Google layout.
func Google(name string, params []string) string {
	var b strings.Builder
	b.WriteString(Delimiter + Summary(name) + "\n\n")
	b.WriteString("Args:\n")
	if len(params) == 0 {
		b.WriteString("    None\n")
	}
	for _, p := range params {
		b.WriteString("    " + p + ": " + placeholder + "\n")
	}
	b.WriteString("Returns:\n")
	b.WriteString("    " + placeholder + "\n")
	b.WriteString(Delimiter)
	return b.String()
}

// NumPy renders the NumPy layout.
func NumPy(name string, params []string) string {
	var b strings.Builder
	b.WriteString(Delimiter + Summary(name) + "\n\n")
	b.WriteString("Parameters\n----------\n")
	if len(params) == 0 {
		b.WriteString("None\n")
	}
	for _, p := range params {
		b.WriteString(p + " : type\n")
		b.WriteString("    " + placeholder + "\n")
	}
	b.WriteString("\nReturns\n-------\n")
	b.WriteString("type\n")
	b.WriteString("    " + placeholder + "\n")
	b.WriteString(Delimiter)
	return b.String()
}

// ReST renders the reStructuredText field-list layout. Without parameters
// the :param: lines are omitted entirely.
func ReST(name string, params []string) string {
	var b strings.Builder
	b.WriteString(Delimiter + Summary(name) + "\n\n")
	for _, p := range params {
		b.WriteString(":param " + p + ": " + placeholder + "\n")
	}
	if len(params) > 0 {
		b.WriteString("\n")
	}
	b.WriteString(":returns: " + placeholder + "\n")
	b.WriteString(Delimiter)
	return b.String()
}
