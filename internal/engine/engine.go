// Package engine runs the docstring pipeline over single source units and
// over sets of files.
package engine

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"time"

	"github.com/cockroachdb/errors"
	sitter "github.com/smacker/go-tree-sitter"
	"golang.org/x/sync/errgroup"

	"github.com/phobologic/docgen/internal/extract"
	"github.com/phobologic/docgen/internal/lang"
	"github.com/phobologic/docgen/internal/logger"
	"github.com/phobologic/docgen/internal/model"
	"github.com/phobologic/docgen/internal/parse"
	"github.com/phobologic/docgen/internal/rewrite"
	"github.com/phobologic/docgen/internal/treemap"
)

// Options selects how docstrings are generated.
type Options struct {
	Convention      model.Convention
	Mode            model.Mode
	ModuleDocstring bool
}

// Result describes what happened to one source unit.
type Result struct {
	Path         string
	Declarations int
	Missing      int // declarations lacking a docstring before the rewrite
	Changed      bool
	Skipped      bool // the unit did not parse and was left unchanged
	Err          error
}

// Document rewrites one source unit. A unit that does not parse is returned
// unchanged with Result.Skipped set; that is not an error.
func Document(ctx context.Context, parser *sitter.Parser, source string, opts Options) (string, Result, error) {
	var res Result

	u, err := parse.Parse(ctx, parser, []byte(source))
	if errors.Is(err, parse.ErrParse) {
		res.Skipped = true
		return source, res, nil
	}
	if err != nil {
		return source, res, err
	}
	defer u.Close()

	root := u.Root()
	inv := treemap.MapDeclarations(root, u.Source, treemap.AttachParents(root))
	res.Declarations = len(inv.Flatten())
	res.Missing = inv.Missing()

	out := rewrite.InsertDocstrings(source, inv, opts.Convention, opts.Mode)
	if opts.ModuleDocstring {
		out = rewrite.AddModuleDocstring(ctx, parser, out)
	}
	res.Changed = out != source
	return out, res, nil
}

// Entry is a declaration enriched with metadata for reporting.
type Entry struct {
	Kind       model.Kind
	Name       string
	Line       int
	Params     []string
	HasDoc     bool
	Raises     []string
	Yields     bool
	Attributes []string
}

// Describe returns the inventory of source as a flat, enriched list in
// file order.
func Describe(ctx context.Context, parser *sitter.Parser, source []byte) ([]Entry, error) {
	u, err := parse.Parse(ctx, parser, source)
	if err != nil {
		return nil, err
	}
	defer u.Close()

	root := u.Root()
	inv := treemap.MapDeclarations(root, u.Source, treemap.AttachParents(root))

	var entries []Entry
	for _, d := range inv.Flatten() {
		e := Entry{
			Kind:   d.Kind,
			Name:   d.Name,
			Line:   d.Line(),
			Params: d.Params,
			HasDoc: d.HasDoc,
		}
		if d.Kind == model.Class {
			e.Attributes = extract.DetectAttributes(d.Node, u.Source)
		} else {
			e.Raises = extract.DetectRaises(d.Node, u.Source)
			e.Yields = extract.DetectYields(d.Node)
		}
		entries = append(entries, e)
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Line < entries[j].Line
	})
	return entries, nil
}

// Sweep documents every file (paths relative to root) concurrently. Results
// are returned in input order. Per-file failures are recorded in
// Result.Err and logged; only context cancellation fails the sweep. Changed
// files are written back only when write is true.
func Sweep(ctx context.Context, root string, files []string, opts Options, workers int, write bool) ([]Result, error) {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	results := make([]Result, len(files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, rel := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = documentFile(gctx, filepath.Join(root, rel), opts, write)
			results[i].Path = rel
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return results, errors.Wrap(err, "sweep interrupted")
	}
	return results, nil
}

func documentFile(ctx context.Context, path string, opts Options, write bool) Result {
	start := time.Now()

	info, err := os.Stat(path)
	if err != nil {
		return failed(path, errors.Wrapf(err, "stat %s", path))
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return failed(path, errors.Wrapf(err, "reading %s", path))
	}

	// Each task gets its own parser; parsers are not safe for concurrent use.
	parser := lang.Python.NewParser()

	out, res, err := Document(ctx, parser, string(data), opts)
	if err != nil {
		return failed(path, err)
	}
	if res.Skipped {
		logger.Logger.Warnw("skipping file that does not parse", logger.FieldFile, path)
		return res
	}

	if write && res.Changed {
		if err := os.WriteFile(path, []byte(out), info.Mode().Perm()); err != nil {
			return failed(path, errors.Wrapf(err, "writing %s", path))
		}
	}

	logger.Logger.Debugw("documented file",
		logger.FieldFile, path,
		logger.FieldCount, res.Missing,
		logger.FieldDurationMS, time.Since(start).Milliseconds(),
	)
	return res
}

func failed(path string, err error) Result {
	logger.Logger.Warnw("failed to document file", logger.FieldFile, path, logger.FieldError, err)
	return Result{Err: err}
}
