package toon

import (
	"strings"
	"testing"

	"github.com/phobologic/docgen/internal/coverage"
	"github.com/phobologic/docgen/internal/engine"
	"github.com/phobologic/docgen/internal/model"
)

func TestEncodeValue(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", `""`},
		{"simple", "hello", "hello"},
		{"leading space", " hello", `" hello"`},
		{"trailing space", "hello ", `"hello "`},
		{"newline", "a\nb", `"a\nb"`},
		{"tab", "a\tb", `"a\tb"`},
		{"carriage return", "a\rb", `"a\rb"`},
		{"true keyword", "true", `"true"`},
		{"True keyword", "True", `"True"`},
		{"false keyword", "false", `"false"`},
		{"null keyword", "null", `"null"`},
		{"integer", "42", "42"},
		{"negative integer", "-1", "-1"},
		{"float", "3.14", "3.14"},
		{"zero", "0", "0"},
		{"leading zero invalid", "01", "01"},
		{"comma", "a,b", `"a,b"`},
		{"colon", "a:b", `"a:b"`},
		{"quote", `a"b`, `"a\"b"`},
		{"backslash", `a\b`, `"a\\b"`},
		{"bracket", "a[b", `"a[b"`},
		{"brace", "a{b", `"a{b"`},
		{"dash prefix", "-foo", `"-foo"`},
		{"path", "src/main.py", "src/main.py"},
		{"dotted name", "Foo.__init__", "Foo.__init__"},
		{"param list", "self key default", "self key default"},
		{"dotted raise", "errors.NotFound", "errors.NotFound"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := encodeValue(tt.in)
			if got != tt.want {
				t.Errorf("encodeValue(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestEncodeInventory(t *testing.T) {
	t.Parallel()

	entries := []engine.Entry{
		{Kind: model.Class, Name: "Stream", Line: 1, Params: []string{}, HasDoc: true, Attributes: []string{"limit", "src"}},
		{Kind: model.Method, Name: "read", Line: 9, Params: []string{"self", "n"}, Yields: true},
		{Kind: model.Function, Name: "load", Line: 20, Params: []string{"path"}, Raises: []string{"ValueError", "errors.Invalid"}},
	}

	got := EncodeInventory("pkg/stream.py", entries)
	want := strings.Join([]string{
		"file: pkg/stream.py",
		"missing: 2",
		"declarations[3]{kind,name,line,params,documented,raises,yields,attributes}:",
		`  class,Stream,1,"",true,"",false,limit src`,
		`  method,read,9,self n,false,"",true,""`,
		`  function,load,20,path,false,ValueError errors.Invalid,false,""`,
	}, "\n")
	if got != want {
		t.Errorf("EncodeInventory mismatch:\ngot:\n%s\nwant:\n%s", got, want)
	}
}

func TestEncodeInventoryEmpty(t *testing.T) {
	t.Parallel()

	got := EncodeInventory("empty.py", nil)
	if !strings.Contains(got, "declarations[0]{kind,name,line,params,documented,raises,yields,attributes}:") {
		t.Errorf("expected empty declarations section, got:\n%s", got)
	}
	if !strings.Contains(got, "missing: 0") {
		t.Errorf("expected missing: 0, got:\n%s", got)
	}
}

func TestEncodeCoverage(t *testing.T) {
	t.Parallel()

	s := coverage.Summary{Mean: 62.5, Threshold: 80, Passed: false, Files: 2}
	reports := []model.FileReport{
		{Path: "b.py", Documented: 1, Total: 4, Coverage: 25},
		{Path: "a, odd.py", Documented: 0, Total: 0, Coverage: 100},
	}

	lines := strings.Split(EncodeCoverage(s, reports), "\n")
	want := []string{
		"mean: 62.50",
		"threshold: 80.00",
		"passed: false",
		"files: 2",
		"coverage[2]{path,documented,total,percent}:",
		"  b.py,1,4,25.00",
		`  "a, odd.py",0,0,100.00`,
	}
	if len(lines) != len(want) {
		t.Fatalf("got %d lines, want %d:\n%s", len(lines), len(want), strings.Join(lines, "\n"))
	}
	for i := range want {
		if lines[i] != want[i] {
			t.Errorf("line %d: got %q, want %q", i, lines[i], want[i])
		}
	}
}
