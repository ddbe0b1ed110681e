// Package treemap builds the declaration inventory of a parsed source unit.
package treemap

import (
	sitter "github.com/smacker/go-tree-sitter"

	"github.com/phobologic/docgen/internal/lang"
	"github.com/phobologic/docgen/internal/model"
)

// nodeKey identifies a node within one tree. A named node and an anonymous
// token can share span and type (a bare `yield`), so named is part of the key.
type nodeKey struct {
	start, end uint32
	typ        string
	named      bool
}

func keyOf(n *sitter.Node) nodeKey {
	return nodeKey{start: n.StartByte(), end: n.EndByte(), typ: n.Type(), named: n.IsNamed()}
}

// Parents maps every node of a tree to its immediate syntactic parent.
// It is built once per run and never stored on the tree itself.
type Parents map[nodeKey]*sitter.Node

// AttachParents walks the tree under root and records each node's parent.
// The root has no entry.
func AttachParents(root *sitter.Node) Parents {
	parents := make(Parents)
	lang.Walk(root, func(n *sitter.Node) bool {
		for i := 0; i < int(n.ChildCount()); i++ {
			parents[keyOf(n.Child(i))] = n
		}
		return true
	})
	return parents
}

// Of returns the recorded parent of n, or nil for the root and unknown nodes.
func (p Parents) Of(n *sitter.Node) *sitter.Node {
	if n == nil {
		return nil
	}
	return p[keyOf(n)]
}

// scope returns the nearest enclosing node that is not one of the grammar's
// structural wrappers (block, decorated_definition).
func (p Parents) scope(n *sitter.Node) *sitter.Node {
	cur := p.Of(n)
	for cur != nil && (cur.Type() == lang.TypeBlock || cur.Type() == lang.TypeDecorated) {
		cur = p.Of(cur)
	}
	return cur
}

// IsMethod reports whether a function definition sits directly in a class body.
func (p Parents) IsMethod(fn *sitter.Node) bool {
	s := p.scope(fn)
	return s != nil && s.Type() == lang.TypeClass
}

// MapDeclarations walks the annotated tree and returns its inventory. Free
// functions are every function definition whose enclosing scope is not a
// class, including functions nested in other functions or methods. Every
// class is listed, nested ones included, each with its direct-body methods.
func MapDeclarations(root *sitter.Node, source []byte, parents Parents) *model.Inventory {
	inv := &model.Inventory{}
	lang.Walk(root, func(n *sitter.Node) bool {
		switch n.Type() {
		case lang.TypeFunction:
			if !parents.IsMethod(n) {
				inv.Functions = append(inv.Functions, declare(n, model.Function, source))
			}
		case lang.TypeClass:
			cls := declare(n, model.Class, source)
			for _, stmt := range lang.Statements(lang.Body(n)) {
				def := lang.Unwrap(stmt)
				if def.Type() == lang.TypeFunction {
					cls.Methods = append(cls.Methods, declare(def, model.Method, source))
				}
			}
			inv.Classes = append(inv.Classes, cls)
		}
		return true
	})
	return inv
}

func declare(n *sitter.Node, kind model.Kind, source []byte) model.Declaration {
	doc := lang.DocstringStatement(n, source)
	d := model.Declaration{
		Node:      n,
		Kind:      kind,
		Name:      lang.DefinitionName(n, source),
		HasDoc:    doc != nil,
		Docstring: doc,
		Params:    []string{},
	}
	if kind != model.Class {
		d.Params = ExtractParameters(n, source)
	}
	return d
}

// ExtractParameters returns the positional parameter names of a function
// definition: positional-only and positional-or-keyword parameters in order.
// Collection stops at the first `*`, `*args` or `**kwargs`. Any other node
// yields an empty slice.
func ExtractParameters(node *sitter.Node, source []byte) []string {
	params := []string{}
	if node == nil || node.Type() != lang.TypeFunction {
		return params
	}
	list := node.ChildByFieldName("parameters")
	if list == nil {
		return params
	}
	for i := 0; i < int(list.NamedChildCount()); i++ {
		p := list.NamedChild(i)
		switch p.Type() {
		case "identifier":
			params = append(params, lang.NodeText(p, source))
		case "typed_parameter":
			// `*args: int` is a typed_parameter wrapping a splat pattern.
			first := p.NamedChild(0)
			if first == nil || first.Type() != "identifier" {
				return params
			}
			params = append(params, lang.NodeText(first, source))
		case "default_parameter", "typed_default_parameter":
			if name := p.ChildByFieldName("name"); name != nil {
				params = append(params, lang.NodeText(name, source))
			}
		case "positional_separator":
			continue
		case "comment":
			continue
		default:
			// keyword_separator, list_splat_pattern, dictionary_splat_pattern
			return params
		}
	}
	return params
}
