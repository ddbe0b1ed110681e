// Package coverage measures how many function and class definitions carry
// a docstring and gates a project on the mean.
package coverage

import (
	"context"
	"os"
	"path/filepath"
	"runtime"

	"github.com/cockroachdb/errors"
	sitter "github.com/smacker/go-tree-sitter"
	"golang.org/x/sync/errgroup"

	"github.com/phobologic/docgen/internal/lang"
	"github.com/phobologic/docgen/internal/logger"
	"github.com/phobologic/docgen/internal/model"
	"github.com/phobologic/docgen/internal/parse"
)

// Summary is the outcome of a coverage gate.
type Summary struct {
	Mean      float64
	Threshold float64
	Passed    bool
	Files     int
}

// File reports coverage for one file. Unreadable, unparsable and
// definition-free files count as fully covered.
func File(ctx context.Context, parser *sitter.Parser, path string) model.FileReport {
	report := model.FileReport{Path: path, Coverage: 100}

	source, err := os.ReadFile(path)
	if err != nil {
		logger.Logger.Debugw("unreadable file counted as covered", logger.FieldFile, path, logger.FieldError, err)
		return report
	}
	documented, total, err := Count(ctx, parser, source)
	if err != nil {
		logger.Logger.Debugw("unparsable file counted as covered", logger.FieldFile, path, logger.FieldError, err)
		return report
	}

	report.Documented = documented
	report.Total = total
	if total > 0 {
		report.Coverage = float64(documented) / float64(total) * 100
	}
	return report
}

// Count returns the number of documented definitions and the number of
// definitions in source.
func Count(ctx context.Context, parser *sitter.Parser, source []byte) (documented, total int, err error) {
	query, err := lang.Python.DefinitionQuery()
	if err != nil {
		return 0, 0, err
	}

	u, err := parse.Parse(ctx, parser, source)
	if err != nil {
		return 0, 0, err
	}
	defer u.Close()

	qc := sitter.NewQueryCursor()
	defer qc.Close()
	qc.Exec(query, u.Root())

	for {
		match, ok := qc.NextMatch()
		if !ok {
			break
		}
		match = qc.FilterPredicates(match, source)

		for _, c := range match.Captures {
			switch query.CaptureNameForId(c.Index) {
			case "definition.function", "definition.class":
				total++
				if lang.DocstringStatement(c.Node, source) != nil {
					documented++
				}
			}
		}
	}
	return documented, total, nil
}

// Collect reports coverage for every file (paths relative to root) using up
// to workers goroutines. Reports are returned in input order with paths
// left relative.
func Collect(ctx context.Context, root string, files []string, workers int) ([]model.FileReport, error) {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	reports := make([]model.FileReport, len(files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, rel := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			reports[i] = File(gctx, lang.Python.NewParser(), filepath.Join(root, rel))
			reports[i].Path = rel
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return reports, errors.Wrap(err, "coverage interrupted")
	}
	return reports, nil
}

// Gate averages coverage over every report and compares it to threshold.
// An empty report set passes with a mean of 100.
func Gate(reports []model.FileReport, threshold float64) Summary {
	s := Summary{Mean: 100, Threshold: threshold, Files: len(reports)}
	if len(reports) > 0 {
		var sum float64
		for _, r := range reports {
			sum += r.Coverage
		}
		s.Mean = sum / float64(len(reports))
	}
	s.Passed = s.Mean >= threshold
	return s
}
