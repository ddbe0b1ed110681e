package extract

import (
	"context"
	"testing"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phobologic/docgen/internal/lang"
	"github.com/phobologic/docgen/internal/parse"
)

func parseUnit(t *testing.T, source string) *parse.Unit {
	t.Helper()
	u, err := parse.Parse(context.Background(), lang.Python.NewParser(), []byte(source))
	require.NoError(t, err)
	t.Cleanup(u.Close)
	return u
}

// definition returns the first function or class definition named name.
func definition(t *testing.T, u *parse.Unit, name string) *sitter.Node {
	t.Helper()
	var found *sitter.Node
	lang.Walk(u.Root(), func(n *sitter.Node) bool {
		if found == nil && lang.IsDefinition(n) && lang.DefinitionName(n, u.Source) == name {
			found = n
		}
		return found == nil
	})
	require.NotNil(t, found, "definition %q not found", name)
	return found
}

func TestDetectRaises(t *testing.T) {
	t.Parallel()

	u := parseUnit(t, `def validate(value):
    if value is None:
        raise ValueError("missing")
    if not isinstance(value, int):
        raise TypeError
    try:
        check(value)
    except KeyError as exc:
        raise errors.NotFound("x") from exc
    except Exception:
        raise
    if value < 0:
        raise ValueError("negative")
    raise make_error()()
`)

	got := DetectRaises(definition(t, u, "validate"), u.Source)
	assert.Equal(t, []string{"ValueError", "TypeError", "errors.NotFound", "ValueError"}, got)
}

func TestDetectRaisesIncludesNested(t *testing.T) {
	t.Parallel()

	u := parseUnit(t, `def outer():
    def inner():
        raise RuntimeError()
    raise KeyError
`)

	assert.Equal(t, []string{"RuntimeError", "KeyError"}, DetectRaises(definition(t, u, "outer"), u.Source))
}

func TestDetectRaisesEmpty(t *testing.T) {
	t.Parallel()

	u := parseUnit(t, "def quiet():\n    return 1\n")
	assert.Equal(t, []string{}, DetectRaises(definition(t, u, "quiet"), u.Source))
	assert.Equal(t, []string{}, DetectRaises(nil, u.Source))
}

func TestDetectYields(t *testing.T) {
	t.Parallel()

	u := parseUnit(t, `def generator():
    for i in range(3):
        yield i


def delegating():
    yield from other()


def plain():
    return [1, 2]


def outer():
    def nested():
        if True:
            yield 1
    return nested
`)

	tests := []struct {
		name string
		want bool
	}{
		{"generator", true},
		{"delegating", true},
		{"plain", false},
		{"outer", false},
		{"nested", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, DetectYields(definition(t, u, tt.name)))
		})
	}
}

func TestDetectYieldsNil(t *testing.T) {
	t.Parallel()
	assert.False(t, DetectYields(nil))
}

func TestDetectAttributes(t *testing.T) {
	t.Parallel()

	u := parseUnit(t, `class Point:
    x = 1

    def move(self):
        self.y = 2
`)

	assert.ElementsMatch(t, []string{"x", "y"}, DetectAttributes(definition(t, u, "Point"), u.Source))
}

func TestDetectAttributesShapes(t *testing.T) {
	t.Parallel()

	u := parseUnit(t, `class Config:
    name: str = "default"
    timeout: int
    a = b = 0
    first, second = 1, 2
    count += 1

    def __init__(self, path):
        self.path = path
        self.pending: list
        self.left = self.right = None
        self.items[0] = 1
        other.value = 3
        if path:
            for p in path:
                self.last = p

    @property
    def size(self):
        self.cached = True
        return 0

    def reset(self):
        def helper():
            self.deep = 1
        self.path, self.tmp = None, None
`)

	got := DetectAttributes(definition(t, u, "Config"), u.Source)
	assert.Equal(t, []string{"a", "b", "cached", "deep", "last", "left", "name", "path", "right"}, got)
}

func TestDetectAttributesSkipsBareAnnotations(t *testing.T) {
	t.Parallel()

	u := parseUnit(t, `class Row:
    c: int
    d: int = 0
    e = 1
`)
	assert.Equal(t, []string{"d", "e"}, DetectAttributes(definition(t, u, "Row"), u.Source))
}

func TestDetectAttributesNotClass(t *testing.T) {
	t.Parallel()

	u := parseUnit(t, "def f(self):\n    self.x = 1\n")
	assert.Equal(t, []string{}, DetectAttributes(definition(t, u, "f"), u.Source))
	assert.Equal(t, []string{}, DetectAttributes(nil, u.Source))
}
