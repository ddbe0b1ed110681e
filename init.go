package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"github.com/phobologic/docgen/internal/config"
	"github.com/phobologic/docgen/internal/model"
)

// newInitCmd implements `docgen init`, which writes (or updates) a
// [tool.docgen] table in pyproject.toml.
func newInitCmd() *cobra.Command {
	var (
		dryRun    bool
		style     string
		mode      string
		threshold float64
		module    bool
		exclude   []string
	)

	cmd := &cobra.Command{
		Use:   "init [path-to-pyproject.toml]",
		Short: "Write a [tool.docgen] table to pyproject.toml",
		Long: `Write a [tool.docgen] table to pyproject.toml. The table is wrapped in
sentinel comments so it can be updated in place on subsequent runs without
touching surrounding content. Creates the file if it does not exist.

path-to-pyproject.toml defaults to ./pyproject.toml.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := config.FileName
			if len(args) > 0 {
				path = args[0]
			}

			// Start from whatever is configured today so re-running init
			// only changes what the flags name.
			cfg := config.Load(filepath.Dir(path))
			if cmd.Flags().Changed("style") || cfg.Style == "" {
				c, err := model.ParseConvention(style)
				if err != nil {
					return errors.WithHint(err, "valid styles: google, numpy, rest")
				}
				cfg.Style = c.String()
			}
			if cmd.Flags().Changed("mode") || cfg.Mode == "" {
				m, err := model.ParseMode(mode)
				if err != nil {
					return errors.WithHint(err, "valid modes: missing, rewrite")
				}
				cfg.Mode = m.String()
			}
			if cmd.Flags().Changed("threshold") || cfg.Threshold == 0 {
				cfg.Threshold = threshold
			}
			if cmd.Flags().Changed("module") {
				cfg.ModuleDocstring = module
			}
			if cmd.Flags().Changed("exclude") {
				cfg.Exclude = exclude
			}

			section, err := config.Section(cfg)
			if err != nil {
				return err
			}

			// --dry-run with no path: just print the section itself.
			if dryRun && len(args) == 0 {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), section)
				return nil
			}

			existing, _ := os.ReadFile(path)
			updated, err := config.Apply(string(existing), section)
			if err != nil {
				return errors.Wrapf(err, "updating %s", path)
			}

			if dryRun {
				_, _ = fmt.Fprint(cmd.OutOrStdout(), updated)
				return nil
			}

			if err := os.WriteFile(path, []byte(updated), 0o644); err != nil {
				return errors.Wrapf(err, "writing %s", path)
			}

			_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "wrote [tool.docgen] to %s\n", path)
			return nil
		},
	}

	fl := cmd.Flags()
	fl.BoolVar(&dryRun, "dry-run", false, "print what would be written without modifying the file")
	fl.StringVarP(&style, "style", "s", "google", "docstring layout: google, numpy or rest")
	fl.StringVarP(&mode, "mode", "m", "missing", "missing or rewrite")
	fl.Float64VarP(&threshold, "threshold", "t", config.DefaultThreshold, "coverage gate percentage")
	fl.BoolVar(&module, "module", false, "add module docstrings")
	fl.StringSliceVar(&exclude, "exclude", nil, "gitignore-style patterns to skip")
	return cmd
}
