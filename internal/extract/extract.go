// Package extract provides per-declaration metadata analyses: raised
// exceptions, generator detection and class attribute inference.
//
// Every function accepts a nil node or a node of the wrong kind and returns
// an empty result in that case.
package extract

import (
	"sort"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/phobologic/docgen/internal/lang"
)

// DetectRaises returns the exception names raised anywhere inside node, in
// textual order, duplicates included. `raise E` yields "E", `raise E(...)`
// yields the callee "E"; dotted forms keep their dotted text. Bare `raise`
// and raised expressions of any other shape contribute nothing.
func DetectRaises(node *sitter.Node, source []byte) []string {
	raises := []string{}
	lang.Walk(node, func(n *sitter.Node) bool {
		if n.Type() != lang.TypeRaise {
			return true
		}
		exc := raisedExpression(n)
		if exc == nil {
			return true
		}
		if exc.Type() == lang.TypeCall {
			exc = exc.ChildByFieldName("function")
		}
		if name := exceptionName(exc, source); name != "" {
			raises = append(raises, name)
		}
		return true
	})
	return raises
}

func raisedExpression(raise *sitter.Node) *sitter.Node {
	cause := raise.ChildByFieldName("cause")
	for i := 0; i < int(raise.NamedChildCount()); i++ {
		child := raise.NamedChild(i)
		if child.Type() == lang.TypeComment {
			continue
		}
		if cause != nil && child.StartByte() == cause.StartByte() && child.EndByte() == cause.EndByte() {
			return nil
		}
		return child
	}
	return nil
}

func exceptionName(n *sitter.Node, source []byte) string {
	if n == nil {
		return ""
	}
	switch n.Type() {
	case lang.TypeIdentifier, lang.TypeAttribute:
		return lang.NodeText(n, source)
	}
	return ""
}

// DetectYields reports whether a function's own body contains a yield or
// yield-from expression. Nested function, lambda and class bodies belong to
// their own declarations and are not searched.
func DetectYields(node *sitter.Node) bool {
	if node == nil {
		return false
	}
	start := node
	if lang.IsDefinition(node) {
		start = lang.Body(node)
	}
	found := false
	lang.Walk(start, func(n *sitter.Node) bool {
		if found {
			return false
		}
		switch n.Type() {
		case lang.TypeYield:
			found = true
			return false
		case lang.TypeFunction, lang.TypeClass, lang.TypeLambda:
			return false
		}
		return true
	})
	return found
}

// DetectAttributes returns the sorted, unique attribute names of a class:
// simple names assigned at class-body level and `self.<name>` targets
// assigned anywhere inside the class's direct methods.
func DetectAttributes(class *sitter.Node, source []byte) []string {
	if class == nil || class.Type() != lang.TypeClass {
		return []string{}
	}
	seen := make(map[string]struct{})

	for _, stmt := range lang.Statements(lang.Body(class)) {
		switch stmt.Type() {
		case lang.TypeExprStmt:
			for i := 0; i < int(stmt.NamedChildCount()); i++ {
				for _, target := range assignmentTargets(stmt.NamedChild(i)) {
					if target.Type() == lang.TypeIdentifier {
						seen[lang.NodeText(target, source)] = struct{}{}
					}
				}
			}
		case lang.TypeFunction, lang.TypeDecorated:
			method := lang.Unwrap(stmt)
			if method.Type() != lang.TypeFunction {
				continue
			}
			lang.Walk(lang.Body(method), func(n *sitter.Node) bool {
				if n.Type() != lang.TypeAssignment || n.ChildByFieldName("right") == nil {
					return true
				}
				if name, ok := selfAttribute(n.ChildByFieldName("left"), source); ok {
					seen[name] = struct{}{}
				}
				return true
			})
		}
	}

	attrs := make([]string, 0, len(seen))
	for name := range seen {
		attrs = append(attrs, name)
	}
	sort.Strings(attrs)
	return attrs
}

// assignmentTargets returns the left-hand sides of a possibly chained
// assignment (`a = b = 1` yields a and b). A bare annotation (`c: int`)
// assigns nothing and yields no target.
func assignmentTargets(n *sitter.Node) []*sitter.Node {
	var targets []*sitter.Node
	for n != nil && n.Type() == lang.TypeAssignment {
		right := n.ChildByFieldName("right")
		if right == nil {
			break
		}
		if left := n.ChildByFieldName("left"); left != nil {
			targets = append(targets, left)
		}
		n = right
	}
	return targets
}

func selfAttribute(target *sitter.Node, source []byte) (string, bool) {
	if target == nil || target.Type() != lang.TypeAttribute {
		return "", false
	}
	obj := target.ChildByFieldName("object")
	attr := target.ChildByFieldName("attribute")
	if obj == nil || attr == nil || obj.Type() != lang.TypeIdentifier || lang.NodeText(obj, source) != "self" {
		return "", false
	}
	return lang.NodeText(attr, source), true
}
