// Package toon implements TOON (Token-Oriented Object Notation) encoding of
// declaration inventories and coverage reports.
package toon

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/phobologic/docgen/internal/coverage"
	"github.com/phobologic/docgen/internal/engine"
	"github.com/phobologic/docgen/internal/model"
)

var (
	needsQuoting = regexp.MustCompile(`[,:"\\{}\[\]]`)
	looksNumeric = regexp.MustCompile(`^-?(?:0|[1-9]\d*)(?:\.\d+)?$`)
	keywords     = map[string]struct{}{
		"true":  {},
		"false": {},
		"null":  {},
	}
)

// EncodeInventory renders the declarations of one file.
func EncodeInventory(path string, entries []engine.Entry) string {
	var parts []string

	parts = append(parts, "file: "+encodeValue(path))

	missing := 0
	var rows [][]string
	for i := range entries {
		e := &entries[i]
		if !e.HasDoc {
			missing++
		}
		rows = append(rows, []string{
			string(e.Kind),
			encodeValue(e.Name),
			strconv.Itoa(e.Line),
			encodeValue(strings.Join(e.Params, " ")),
			strconv.FormatBool(e.HasDoc),
			encodeValue(strings.Join(e.Raises, " ")),
			strconv.FormatBool(e.Yields),
			encodeValue(strings.Join(e.Attributes, " ")),
		})
	}
	parts = append(parts, "missing: "+strconv.Itoa(missing))
	parts = append(parts, formatTabular("declarations",
		[]string{"kind", "name", "line", "params", "documented", "raises", "yields", "attributes"}, rows))

	return strings.Join(parts, "\n")
}

// EncodeCoverage renders a gate summary followed by per-file coverage.
func EncodeCoverage(s coverage.Summary, reports []model.FileReport) string {
	var parts []string

	parts = append(parts, "mean: "+formatPercent(s.Mean))
	parts = append(parts, "threshold: "+formatPercent(s.Threshold))
	parts = append(parts, "passed: "+strconv.FormatBool(s.Passed))
	parts = append(parts, "files: "+strconv.Itoa(s.Files))

	var rows [][]string
	for i := range reports {
		r := &reports[i]
		rows = append(rows, []string{
			encodeValue(r.Path),
			strconv.Itoa(r.Documented),
			strconv.Itoa(r.Total),
			formatPercent(r.Coverage),
		})
	}
	parts = append(parts, formatTabular("coverage", []string{"path", "documented", "total", "percent"}, rows))

	return strings.Join(parts, "\n")
}

func formatPercent(v float64) string {
	return fmt.Sprintf("%.2f", v)
}

// formatTabular writes a TOON table. Cells must already be encoded.
func formatTabular(name string, columns []string, rows [][]string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s[%d]{%s}:", name, len(rows), strings.Join(columns, ","))
	for _, row := range rows {
		fmt.Fprintf(&b, "\n  %s", strings.Join(row, ","))
	}
	return b.String()
}

func encodeValue(value string) string {
	if value == "" {
		return `""`
	}

	if value != strings.TrimSpace(value) {
		return quote(value)
	}

	if strings.ContainsAny(value, "\n\r\t") {
		return quote(value)
	}

	if _, ok := keywords[strings.ToLower(value)]; ok {
		return quote(value)
	}

	if looksNumeric.MatchString(value) {
		return value
	}

	if needsQuoting.MatchString(value) {
		return quote(value)
	}

	if strings.HasPrefix(value, "-") {
		return quote(value)
	}

	return value
}

func quote(value string) string {
	escaped := strings.ReplaceAll(value, `\`, `\\`)
	escaped = strings.ReplaceAll(escaped, `"`, `\"`)
	escaped = strings.ReplaceAll(escaped, "\n", `\n`)
	escaped = strings.ReplaceAll(escaped, "\r", `\r`)
	escaped = strings.ReplaceAll(escaped, "\t", `\t`)
	return `"` + escaped + `"`
}
