// Package ranking orders coverage reports so the least documented files
// surface first.
package ranking

import (
	"sort"

	"github.com/phobologic/docgen/internal/model"
)

// WorstFiles returns the n least covered files, lowest coverage first with
// ties broken by path. If n <= 0 or n >= len(reports), every report is
// returned in that order. The input slice is not modified.
func WorstFiles(reports []model.FileReport, n int) []model.FileReport {
	sorted := make([]model.FileReport, len(reports))
	copy(sorted, reports)

	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Coverage != sorted[j].Coverage {
			return sorted[i].Coverage < sorted[j].Coverage
		}
		return sorted[i].Path < sorted[j].Path
	})

	if n <= 0 || n >= len(sorted) {
		return sorted
	}
	return sorted[:n]
}

// Incomplete drops reports that are already fully documented.
func Incomplete(reports []model.FileReport) []model.FileReport {
	var out []model.FileReport
	for _, r := range reports {
		if r.Documented < r.Total {
			out = append(out, r)
		}
	}
	return out
}
