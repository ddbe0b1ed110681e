// Package model defines core data structures for docgen.
package model

import (
	"strings"

	"github.com/cockroachdb/errors"
	sitter "github.com/smacker/go-tree-sitter"
)

// Convention selects the docstring layout.
type Convention int

const (
	Google Convention = iota
	NumPy
	ReST
)

func (c Convention) String() string {
	switch c {
	case Google:
		return "google"
	case NumPy:
		return "numpy"
	case ReST:
		return "rest"
	}
	return "unknown"
}

// ParseConvention maps a user-supplied style name to a Convention.
func ParseConvention(s string) (Convention, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "google":
		return Google, nil
	case "numpy", "numpydoc":
		return NumPy, nil
	case "rest", "restructuredtext", "sphinx":
		return ReST, nil
	}
	return ReST, errors.Newf("unknown docstring style %q", s)
}

// Mode controls whether existing docstrings are kept or regenerated.
type Mode int

const (
	FillMissing Mode = iota
	ReplaceAll
)

func (m Mode) String() string {
	if m == ReplaceAll {
		return "rewrite"
	}
	return "missing"
}

// ParseMode maps "missing" or "rewrite" to a Mode.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "missing", "fill", "fill-missing":
		return FillMissing, nil
	case "rewrite", "replace", "replace-all":
		return ReplaceAll, nil
	}
	return FillMissing, errors.Newf("unknown mode %q", s)
}

// Kind indicates the syntactic kind of a declaration.
type Kind string

const (
	Class    Kind = "class"
	Function Kind = "function"
	Method   Kind = "method"
)

// Declaration is one documentable definition found in a source unit.
// Node and Docstring point into the parsed tree and are only valid while
// that tree is open.
type Declaration struct {
	Node      *sitter.Node
	Kind      Kind
	Name      string
	Params    []string
	HasDoc    bool
	Docstring *sitter.Node

	// Methods holds the direct-body methods of a class.
	Methods []Declaration
}

// Line returns the 1-based line of the declaration header.
func (d *Declaration) Line() int {
	return int(d.Node.StartPoint().Row) + 1
}

// Inventory is the structural map of a single source unit.
type Inventory struct {
	Functions []Declaration
	Classes   []Declaration
}

// Flatten returns free functions, classes and every class's methods as one list.
func (inv *Inventory) Flatten() []Declaration {
	var all []Declaration
	all = append(all, inv.Functions...)
	for i := range inv.Classes {
		all = append(all, inv.Classes[i])
		all = append(all, inv.Classes[i].Methods...)
	}
	return all
}

// Missing counts declarations without a docstring.
func (inv *Inventory) Missing() int {
	n := 0
	for _, d := range inv.Flatten() {
		if !d.HasDoc {
			n++
		}
	}
	return n
}

// FileReport holds docstring coverage for a single file.
type FileReport struct {
	Path       string
	Documented int
	Total      int
	Coverage   float64
}
