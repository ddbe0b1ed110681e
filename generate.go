package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/cockroachdb/errors"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/phobologic/docgen/internal/config"
	"github.com/phobologic/docgen/internal/engine"
	"github.com/phobologic/docgen/internal/lang"
	"github.com/phobologic/docgen/internal/logger"
	"github.com/phobologic/docgen/internal/toon"
)

type generateFlags struct {
	style       string
	mode        string
	module      bool
	write       bool
	workers     int
	maxFileSize int
	project     string
}

func newGenerateCmd() *cobra.Command {
	var f generateFlags

	cmd := &cobra.Command{
		Use:   "generate [paths...]",
		Short: "Insert placeholder docstrings",
		Long: `Insert placeholder docstrings into Python files.

Each path may be a file or a directory; directories are searched for .py
files, honouring .gitignore, virtualenvs and the configured exclude list.
Without --write, a single file argument is printed in rewritten form and
anything else is summarised per file. Files that do not parse are left
untouched.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(cmd, f, args)
		},
	}

	fl := cmd.Flags()
	fl.StringVarP(&f.style, "style", "s", "google", "docstring layout: google, numpy or rest")
	fl.StringVarP(&f.mode, "mode", "m", "missing", "missing: only undocumented declarations; rewrite: replace every docstring")
	fl.BoolVar(&f.module, "module", false, "also add a module docstring when missing")
	fl.BoolVarP(&f.write, "write", "w", false, "write changes back to the files")
	fl.IntVarP(&f.workers, "workers", "j", 0, "files processed in parallel (default GOMAXPROCS)")
	fl.IntVar(&f.maxFileSize, "max-file-size", defaultMaxFileSize, "skip files larger than this many bytes")
	fl.StringVar(&f.project, "project", ".", "directory holding pyproject.toml")
	return cmd
}

func runGenerate(cmd *cobra.Command, f generateFlags, args []string) error {
	stdout, stderr := cmd.OutOrStdout(), cmd.ErrOrStderr()

	cfg := config.Load(f.project)
	opts, err := engineOptions(cmd, cfg, f.style, f.mode, f.module)
	if err != nil {
		return err
	}
	logger.Logger.Infow("generating docstrings",
		logger.FieldStyle, opts.Convention.String(),
		logger.FieldMode, opts.Mode.String(),
	)

	targets, err := resolveTargets(args, cfg.Exclude)
	if err != nil {
		return err
	}

	if !f.write && len(targets) == 1 && targets[0].single {
		return printDocumented(cmd, filepath.Join(targets[0].root, targets[0].files[0]), opts)
	}

	var changed, skipped, failed, total int
	for _, t := range targets {
		files := filterBySize(t.root, t.files, f.maxFileSize, stderr)
		results, err := engine.Sweep(cmd.Context(), t.root, files, opts, f.workers, f.write)
		if err != nil {
			return err
		}
		for _, r := range results {
			total++
			name := displayPath(t.root, r.Path)
			switch {
			case r.Err != nil:
				failed++
				pterm.Error.WithWriter(stderr).Printfln("%s: %v", name, r.Err)
			case r.Skipped:
				skipped++
				pterm.Warning.WithWriter(stderr).Printfln("%s: does not parse, left unchanged", name)
			case r.Changed:
				changed++
				verb := "would document"
				if f.write {
					verb = "documented"
				}
				_, _ = fmt.Fprintf(stdout, "%s: %s %d declaration(s)\n", name, verb, r.Missing)
			}
		}
	}

	if total == 0 {
		return errors.WithHint(errors.New("no Python files found"), "pass a file or a directory containing .py files")
	}

	summary := fmt.Sprintf("%d of %d file(s) changed, %d skipped", changed, total, skipped)
	if !f.write && changed > 0 {
		summary += " (dry run, use --write to apply)"
	}
	pterm.Info.WithWriter(stderr).Println(summary)

	if failed > 0 {
		return errors.Newf("%d file(s) could not be processed", failed)
	}
	return nil
}

// printDocumented writes the rewritten text of one file to stdout.
func printDocumented(cmd *cobra.Command, path string, opts engine.Options) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrapf(err, "reading %s", path)
	}
	out, res, err := engine.Document(cmd.Context(), lang.Python.NewParser(), string(data), opts)
	if err != nil {
		return err
	}
	if res.Skipped {
		pterm.Warning.WithWriter(cmd.ErrOrStderr()).Printfln("%s: does not parse, left unchanged", path)
	}
	_, _ = fmt.Fprint(cmd.OutOrStdout(), out)
	return nil
}

func newInventoryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "inventory <file>",
		Short: "List the documentable declarations of a file",
		Long: `List every class, function and method of a Python file in TOON format,
with its parameters, whether it has a docstring, the exceptions it raises,
whether it yields, and (for classes) its attributes.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			data, err := os.ReadFile(path)
			if err != nil {
				return errors.Wrapf(err, "reading %s", path)
			}
			entries, err := engine.Describe(cmd.Context(), lang.Python.NewParser(), data)
			if err != nil {
				return errors.Wrapf(err, "%s", path)
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), toon.EncodeInventory(filepath.ToSlash(path), entries))
			return nil
		},
	}
}
