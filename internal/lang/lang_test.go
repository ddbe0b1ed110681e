package lang

import (
	"context"
	"testing"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parse(t *testing.T, source string) (*sitter.Node, []byte) {
	t.Helper()
	src := []byte(source)
	tree, err := Python.NewParser().ParseCtx(context.Background(), nil, src)
	require.NoError(t, err)
	t.Cleanup(tree.Close)
	return tree.RootNode(), src
}

func firstOfType(root *sitter.Node, typ string) *sitter.Node {
	var found *sitter.Node
	Walk(root, func(n *sitter.Node) bool {
		if found == nil && n.Type() == typ {
			found = n
		}
		return found == nil
	})
	return found
}

func TestForExtension(t *testing.T) {
	t.Parallel()

	tests := []struct {
		ext  string
		want string
	}{
		{".py", "python"},
		{".PY", "python"},
		{".pyi", "python"},
		{".go", ""},
		{".rb", ""},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.ext, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, ForExtension(tt.ext))
		})
	}
}

func TestLanguagesRegistered(t *testing.T) {
	t.Parallel()

	py, ok := Languages["python"]
	require.True(t, ok, "python language not registered")
	assert.NotNil(t, py.GetLanguage())
	assert.NotNil(t, py.NewParser())
}

func TestDefinitionQuery(t *testing.T) {
	t.Parallel()

	q, err := Python.DefinitionQuery()
	require.NoError(t, err)
	require.NotNil(t, q)

	again, err := Python.DefinitionQuery()
	require.NoError(t, err)
	assert.Same(t, q, again)
}

func TestDocstringStatement(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		source string
		want   bool
	}{
		{"triple quoted", "def f():\n    \"\"\"Doc.\"\"\"\n    pass\n", true},
		{"single quoted", "def f():\n    'doc'\n", true},
		{"raw string", "def f():\n    r\"\"\"Doc.\"\"\"\n", true},
		{"after comment", "def f():\n    # note\n    \"\"\"Doc.\"\"\"\n", true},
		{"concatenated", "def f():\n    \"a\" \"b\"\n", true},
		{"no docstring", "def f():\n    return 1\n", false},
		{"string not first", "def f():\n    x = 1\n    \"\"\"Doc.\"\"\"\n", false},
		{"f-string", "def f():\n    f\"doc {x}\"\n", false},
		{"bytes", "def f():\n    b\"doc\"\n", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			root, src := parse(t, tt.source)
			fn := firstOfType(root, TypeFunction)
			require.NotNil(t, fn)
			assert.Equal(t, tt.want, DocstringStatement(fn, src) != nil)
		})
	}
}

func TestModuleDocstring(t *testing.T) {
	t.Parallel()

	root, src := parse(t, "\"\"\"Module.\"\"\"\n\nimport os\n")
	assert.NotNil(t, DocstringStatement(root, src))

	root, src = parse(t, "import os\n")
	assert.Nil(t, DocstringStatement(root, src))
}

func TestHeaderEndRow(t *testing.T) {
	t.Parallel()

	root, _ := parse(t, "def f(\n    a,\n    b,\n):\n    pass\n")
	fn := firstOfType(root, TypeFunction)
	require.NotNil(t, fn)
	assert.Equal(t, 3, HeaderEndRow(fn))

	root, _ = parse(t, "class A(Base):\n    pass\n")
	cls := firstOfType(root, TypeClass)
	require.NotNil(t, cls)
	assert.Equal(t, 0, HeaderEndRow(cls))
}

func TestUnwrapDecorated(t *testing.T) {
	t.Parallel()

	root, src := parse(t, "@decorator\ndef f():\n    pass\n")
	dec := firstOfType(root, TypeDecorated)
	require.NotNil(t, dec)
	def := Unwrap(dec)
	assert.Equal(t, TypeFunction, def.Type())
	assert.Equal(t, "f", DefinitionName(def, src))
}
