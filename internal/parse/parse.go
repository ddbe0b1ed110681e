// Package parse turns Python source text into a source unit backed by a
// tree-sitter syntax tree.
package parse

import (
	"context"

	"github.com/cockroachdb/errors"
	sitter "github.com/smacker/go-tree-sitter"
)

// ErrParse reports source text that does not conform to the grammar.
var ErrParse = errors.New("source does not parse")

// Unit is one source file together with its syntax tree. The tree is owned
// by the unit and released by Close.
type Unit struct {
	Source []byte
	tree   *sitter.Tree
}

// Parse parses source with the given parser. The parser must be created for
// the Python grammar. A tree containing error or missing nodes yields
// ErrParse; the partial tree is released before returning.
func Parse(ctx context.Context, parser *sitter.Parser, source []byte) (*Unit, error) {
	tree, err := parser.ParseCtx(ctx, nil, source)
	if err != nil {
		return nil, errors.Wrap(err, "tree-sitter parse")
	}
	root := tree.RootNode()
	if root == nil || root.HasError() {
		tree.Close()
		return nil, errors.WithDetailf(ErrParse, "first error at line %d", firstErrorLine(root))
	}
	return &Unit{Source: source, tree: tree}, nil
}

// Root returns the module node.
func (u *Unit) Root() *sitter.Node {
	return u.tree.RootNode()
}

// Close releases the syntax tree.
func (u *Unit) Close() {
	if u.tree != nil {
		u.tree.Close()
		u.tree = nil
	}
}

func firstErrorLine(root *sitter.Node) int {
	if root == nil {
		return 0
	}
	var line int
	var visit func(n *sitter.Node) bool
	visit = func(n *sitter.Node) bool {
		if n.IsError() || n.IsMissing() {
			line = int(n.StartPoint().Row) + 1
			return true
		}
		for i := 0; i < int(n.ChildCount()); i++ {
			if visit(n.Child(i)) {
				return true
			}
		}
		return false
	}
	visit(root)
	return line
}
