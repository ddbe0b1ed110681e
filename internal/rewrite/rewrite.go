// Package rewrite splices generated docstrings into Python source text.
//
// Edits are computed from tree coordinates but applied to a flat line
// buffer. Declarations are processed from the bottom of the file upward so
// that every edit leaves the rows of not-yet-processed declarations valid.
//
// Known limitations: a declaration whose body shares the header line
// (`def f(): pass`) and a docstring sharing the header line are left
// untouched rather than rewritten.
package rewrite

import (
	"context"
	"regexp"
	"slices"
	"sort"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/phobologic/docgen/internal/docstring"
	"github.com/phobologic/docgen/internal/lang"
	"github.com/phobologic/docgen/internal/model"
	"github.com/phobologic/docgen/internal/parse"
)

// IndentUnit is one nesting level when the body indentation cannot be read
// from the source.
const IndentUnit = "    "

// ModuleDocstring is prepended to modules without a docstring.
const ModuleDocstring = `"""Module description."""`

var codingRe = regexp.MustCompile(`^[ \t\f]*#.*?coding[:=]`)

// edit is one step of the rewrite plan.
type edit struct {
	decl     model.Declaration
	at       int // insertion row in the working buffer
	delStart int // first row of an existing docstring to delete, -1 if none
	delEnd   int // last row (inclusive)
	lines    []string
}

// InsertDocstrings returns source with docstrings inserted for every
// declaration in inv, or regenerated for all of them in ReplaceAll mode.
// The inventory must come from a tree parsed from exactly this source.
func InsertDocstrings(source string, inv *model.Inventory, convention model.Convention, mode model.Mode) string {
	lines := strings.Split(source, "\n")
	plan := buildPlan(lines, inv, convention, mode)
	if len(plan) == 0 {
		return source
	}

	out := slices.Clone(lines)
	for _, e := range plan {
		if e.delStart >= 0 {
			out = slices.Delete(out, e.delStart, e.delEnd+1)
		}
		out = slices.Insert(out, e.at, e.lines...)
	}
	return strings.Join(out, "\n")
}

// buildPlan computes the ordered edits for InsertDocstrings, bottom-most first.
func buildPlan(lines []string, inv *model.Inventory, convention model.Convention, mode model.Mode) []edit {
	decls := inv.Flatten()
	sort.SliceStable(decls, func(i, j int) bool {
		return decls[i].Node.StartPoint().Row > decls[j].Node.StartPoint().Row
	})

	var plan []edit
	for _, d := range decls {
		if mode == model.FillMissing && d.HasDoc {
			continue
		}
		headerRow := int(d.Node.StartPoint().Row)
		headerEnd := lang.HeaderEndRow(d.Node)
		if headerRow >= len(lines) || headerEnd+1 > len(lines) {
			continue
		}
		if sharesHeaderLine(d, headerEnd) {
			continue
		}

		indent := bodyIndent(lines, d, headerEnd)
		e := edit{
			decl:     d,
			at:       headerEnd + 1,
			delStart: -1,
			lines:    Indent(docstring.Build(convention, d.Name, d.Params), indent, lineEnding(lines[headerRow])),
		}
		if d.HasDoc && d.Docstring != nil {
			e.delStart = int(d.Docstring.StartPoint().Row)
			e.delEnd = int(d.Docstring.EndPoint().Row)
			e.at = e.delStart
		}
		plan = append(plan, e)
	}
	return plan
}

// sharesHeaderLine reports whether the first body statement starts on the
// header's closing row, where no line-based insertion can be correct.
func sharesHeaderLine(d model.Declaration, headerEnd int) bool {
	stmts := lang.Statements(lang.Body(d.Node))
	return len(stmts) > 0 && int(stmts[0].StartPoint().Row) <= headerEnd
}

// bodyIndent returns the indentation of the declaration's body, falling back
// to the header indentation plus one IndentUnit.
func bodyIndent(lines []string, d model.Declaration, headerEnd int) string {
	if stmts := lang.Statements(lang.Body(d.Node)); len(stmts) > 0 {
		row := int(stmts[0].StartPoint().Row)
		if row > headerEnd && row < len(lines) {
			if ws := leadingWhitespace(lines[row]); ws != "" {
				return ws
			}
		}
	}
	return leadingWhitespace(lines[d.Node.StartPoint().Row]) + IndentUnit
}

// Indent splits a synthesized docstring into lines, drops blank leading and
// trailing lines, and prefixes every non-blank line with indent. eol is
// appended to each line to keep CRLF files consistent.
func Indent(doc, indent, eol string) []string {
	raw := strings.Split(doc, "\n")
	for len(raw) > 0 && strings.TrimSpace(raw[0]) == "" {
		raw = raw[1:]
	}
	for len(raw) > 0 && strings.TrimSpace(raw[len(raw)-1]) == "" {
		raw = raw[:len(raw)-1]
	}
	out := make([]string, len(raw))
	for i, line := range raw {
		if strings.TrimSpace(line) == "" {
			out[i] = eol
			continue
		}
		out[i] = indent + line + eol
	}
	return out
}

func leadingWhitespace(line string) string {
	return line[:len(line)-len(strings.TrimLeft(line, " \t"))]
}

func lineEnding(line string) string {
	if strings.HasSuffix(line, "\r") {
		return "\r"
	}
	return ""
}

// AddModuleDocstring prepends a placeholder module docstring when source has
// none. Source that does not parse is returned unchanged.
func AddModuleDocstring(ctx context.Context, parser *sitter.Parser, source string) string {
	u, err := parse.Parse(ctx, parser, []byte(source))
	if err != nil {
		return source
	}
	defer u.Close()

	if lang.DocstringStatement(u.Root(), u.Source) != nil {
		return source
	}
	return PrependModuleDocstring(source)
}

// PrependModuleDocstring inserts the placeholder module docstring after any
// shebang and encoding declaration lines.
func PrependModuleDocstring(source string) string {
	lines := strings.SplitAfter(source, "\n")
	skip := 0
	for skip < len(lines) && skip < 2 {
		line := lines[skip]
		if (skip == 0 && strings.HasPrefix(line, "#!")) || codingRe.MatchString(line) {
			skip++
			continue
		}
		break
	}
	head := strings.Join(lines[:skip], "")
	if head != "" && !strings.HasSuffix(head, "\n") {
		head += "\n"
	}
	return head + ModuleDocstring + "\n\n" + strings.Join(lines[skip:], "")
}
