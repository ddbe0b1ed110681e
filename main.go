// docgen inserts placeholder docstrings into Python source and reports
// docstring coverage.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"github.com/phobologic/docgen/internal/config"
	"github.com/phobologic/docgen/internal/discover"
	"github.com/phobologic/docgen/internal/engine"
	"github.com/phobologic/docgen/internal/logger"
	"github.com/phobologic/docgen/internal/model"
)

var version = "dev"

const defaultMaxFileSize = 1_000_000 // 1 MB

// errGateFailed is returned after the coverage command has already reported
// the failure, so main exits non-zero without printing it again.
var errGateFailed = errors.New("coverage below threshold")

func main() {
	logger.Initialize(logger.VerbosityUser)
	err := run(os.Args[1:], os.Stdout, os.Stderr)
	logger.Sync()
	if err != nil {
		if !errors.Is(err, errGateFailed) {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			for _, hint := range errors.GetAllHints(err) {
				fmt.Fprintf(os.Stderr, "hint: %s\n", hint)
			}
		}
		os.Exit(1)
	}
}

func run(args []string, stdout, stderr io.Writer) error {
	root := newRootCmd(stdout, stderr)
	root.SetArgs(args)
	return root.ExecuteContext(context.Background())
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	var verbosity int

	cmd := &cobra.Command{
		Use:   "docgen",
		Short: "Generate placeholder docstrings for Python source",
		Long: `docgen parses Python files with tree-sitter and inserts placeholder
docstrings in Google, NumPy or reST layout for every function, method and
class that lacks one. It can also report docstring coverage, run pydocstyle
over a file, and list the declarations of a file.

Settings are read from the [tool.docgen] table of pyproject.toml; flags
override them.

Examples:
  docgen generate src/                 # show which files would change
  docgen generate --write src/         # document every file under src/
  docgen generate --style numpy app.py # print app.py with NumPy docstrings
  docgen coverage --threshold 90       # fail below 90% mean coverage
  docgen check app.py                  # run pydocstyle on app.py`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if verbosity > logger.VerbosityUser {
				logger.Initialize(verbosity)
			}
		},
	}
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	cmd.PersistentFlags().CountVarP(&verbosity, "verbose", "v", "increase log verbosity (-v info, -vv debug)")

	cmd.AddCommand(
		newGenerateCmd(),
		newInventoryCmd(),
		newCheckCmd(),
		newCoverageCmd(),
		newInitCmd(),
		newVersionCmd(),
	)
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the docgen version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "docgen %s\n", version)
		},
	}
}

// target is a set of files sharing a root directory.
type target struct {
	root  string
	files []string
	// single is set when the user named one file directly.
	single bool
}

// resolveTargets expands path arguments into per-root file lists. A file
// argument is taken as-is; a directory is searched with discover.Files.
func resolveTargets(paths []string, exclude []string) ([]target, error) {
	if len(paths) == 0 {
		paths = []string{"."}
	}

	var targets []target
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			return nil, errors.Wrapf(err, "resolving %s", p)
		}
		info, err := os.Stat(abs)
		if err != nil {
			return nil, errors.Wrap(err, "root path")
		}
		if !info.IsDir() {
			targets = append(targets, target{root: filepath.Dir(abs), files: []string{filepath.Base(abs)}, single: true})
			continue
		}

		entries, err := discover.Files(abs, exclude)
		if err != nil {
			return nil, errors.Wrap(err, "discovering files")
		}
		t := target{root: abs}
		for _, e := range entries {
			t.files = append(t.files, e.Path)
		}
		targets = append(targets, t)
	}
	return targets, nil
}

func filterBySize(root string, files []string, maxSize int, stderr io.Writer) []string {
	if maxSize <= 0 {
		return files
	}
	var kept []string
	for _, f := range files {
		fi, err := os.Stat(filepath.Join(root, f))
		if err != nil {
			kept = append(kept, f) // keep if can't stat
			continue
		}
		if fi.Size() > int64(maxSize) {
			_, _ = fmt.Fprintf(stderr, "Warning: %s: skipped (>%d bytes)\n", f, maxSize)
			continue
		}
		kept = append(kept, f)
	}
	return kept
}

// engineOptions merges project configuration with explicitly set flags.
func engineOptions(cmd *cobra.Command, cfg config.Config, style, mode string, module bool) (engine.Options, error) {
	opts := engine.Options{
		Convention:      cfg.Convention(model.Google),
		Mode:            cfg.RewriteMode(model.FillMissing),
		ModuleDocstring: cfg.ModuleDocstring,
	}

	if cmd.Flags().Changed("style") {
		c, err := model.ParseConvention(style)
		if err != nil {
			return opts, errors.WithHint(err, "valid styles: google, numpy, rest")
		}
		opts.Convention = c
	}
	if cmd.Flags().Changed("mode") {
		m, err := model.ParseMode(mode)
		if err != nil {
			return opts, errors.WithHint(err, "valid modes: missing, rewrite")
		}
		opts.Mode = m
	}
	if cmd.Flags().Changed("module") {
		opts.ModuleDocstring = module
	}
	return opts, nil
}

func displayPath(root, rel string) string {
	wd, err := os.Getwd()
	if err != nil {
		return filepath.Join(root, rel)
	}
	p, err := filepath.Rel(wd, filepath.Join(root, rel))
	if err != nil || strings.HasPrefix(p, "..") {
		return filepath.Join(root, rel)
	}
	return p
}
