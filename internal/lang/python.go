package lang

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/python"
)

// Python is the registered Python grammar.
var Python *Language

func init() {
	Python = &Language{
		Name:       "python",
		Extensions: []string{".py", ".pyi"},
		lang:       python.GetLanguage(),
	}
	Languages["python"] = Python
}

// Python node types used across the analyses.
const (
	TypeModule     = "module"
	TypeFunction   = "function_definition"
	TypeClass      = "class_definition"
	TypeDecorated  = "decorated_definition"
	TypeBlock      = "block"
	TypeLambda     = "lambda"
	TypeComment    = "comment"
	TypeExprStmt   = "expression_statement"
	TypeString     = "string"
	TypeConcatStr  = "concatenated_string"
	TypeIdentifier = "identifier"
	TypeAttribute  = "attribute"
	TypeCall       = "call"
	TypeAssignment = "assignment"
	TypeRaise      = "raise_statement"
	TypeYield      = "yield"
)

// IsDefinition reports whether node is a function or class definition.
func IsDefinition(node *sitter.Node) bool {
	if node == nil {
		return false
	}
	t := node.Type()
	return t == TypeFunction || t == TypeClass
}

// Unwrap returns the definition inside a decorated_definition, or node itself.
func Unwrap(node *sitter.Node) *sitter.Node {
	if node != nil && node.Type() == TypeDecorated {
		if def := node.ChildByFieldName("definition"); def != nil {
			return def
		}
	}
	return node
}

// DefinitionName returns the declared name of a function or class definition.
func DefinitionName(node *sitter.Node, source []byte) string {
	if name := node.ChildByFieldName("name"); name != nil {
		return NodeText(name, source)
	}
	// Older grammar builds do not expose the name field.
	return NodeText(ChildOfType(node, TypeIdentifier), source)
}

// Body returns the block of a definition.
func Body(node *sitter.Node) *sitter.Node {
	if node == nil {
		return nil
	}
	if body := node.ChildByFieldName("body"); body != nil {
		return body
	}
	return ChildOfType(node, TypeBlock)
}

// Statements returns the statements of a block, skipping comments.
func Statements(block *sitter.Node) []*sitter.Node {
	if block == nil {
		return nil
	}
	var stmts []*sitter.Node
	for i := 0; i < int(block.ChildCount()); i++ {
		child := block.Child(i)
		if !child.IsNamed() || child.Type() == TypeComment {
			continue
		}
		stmts = append(stmts, child)
	}
	return stmts
}

// HeaderEndRow returns the 0-based row holding the colon that closes a
// definition header. For single-line headers it is the header's own row.
func HeaderEndRow(node *sitter.Node) int {
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		if child.Type() == ":" {
			return int(child.StartPoint().Row)
		}
	}
	return int(node.StartPoint().Row)
}

// DocstringStatement returns the expression statement holding the docstring of
// a definition or module, or nil when there is none. Only a plain string
// literal as the first statement counts; f-strings and byte strings do not.
func DocstringStatement(node *sitter.Node, source []byte) *sitter.Node {
	block := node
	if node.Type() != TypeModule {
		block = Body(node)
	}
	stmts := Statements(block)
	if len(stmts) == 0 {
		return nil
	}
	first := stmts[0]
	if first.Type() != TypeExprStmt || first.NamedChildCount() != 1 {
		return nil
	}
	expr := first.NamedChild(0)
	switch expr.Type() {
	case TypeString:
		if isPlainString(expr, source) {
			return first
		}
	case TypeConcatStr:
		if expr.NamedChildCount() > 0 && isPlainString(expr.NamedChild(0), source) {
			return first
		}
	}
	return nil
}

func isPlainString(node *sitter.Node, source []byte) bool {
	text := NodeText(node, source)
	quote := strings.IndexAny(text, `"'`)
	if quote < 0 {
		return false
	}
	prefix := strings.ToLower(text[:quote])
	return !strings.ContainsAny(prefix, "fb")
}
