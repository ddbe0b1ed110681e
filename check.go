package main

import (
	"fmt"
	"os"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/phobologic/docgen/internal/audit"
	"github.com/phobologic/docgen/internal/config"
	"github.com/phobologic/docgen/internal/model"
)

type checkReport struct {
	File       string            `yaml:"file"`
	Convention string            `yaml:"convention"`
	Violations []audit.Violation `yaml:"violations"`
}

func newCheckCmd() *cobra.Command {
	var (
		style   string
		format  string
		command string
		project string
		extra   []string
		timeout time.Duration
	)

	cmd := &cobra.Command{
		Use:   "check <file>",
		Short: "Run pydocstyle over a file",
		Long: `Run pydocstyle over a copy of a Python file and print its findings.

The pydocstyle convention follows the docstring style (google, numpy, or
pep257 for rest). Findings are printed as text or as a YAML document.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			cfg := config.Load(project)

			conv := cfg.Convention(model.Google)
			if cmd.Flags().Changed("style") {
				c, err := model.ParseConvention(style)
				if err != nil {
					return errors.WithHint(err, "valid styles: google, numpy, rest")
				}
				conv = c
			}
			if !cmd.Flags().Changed("pydocstyle") && cfg.Pydocstyle != "" {
				command = cfg.Pydocstyle
			}

			data, err := os.ReadFile(path)
			if err != nil {
				return errors.Wrapf(err, "reading %s", path)
			}

			a := audit.New(
				audit.WithCommand(command),
				audit.WithConvention(conv),
				audit.WithArgs(extra...),
				audit.WithTimeout(timeout),
			)
			violations, err := a.Check(cmd.Context(), string(data))
			if err != nil {
				return err
			}
			// Findings refer to the temporary copy; report them against the real file.
			for i := range violations {
				violations[i].File = path
			}

			switch format {
			case "yaml":
				return writeYAML(cmd, checkReport{File: path, Convention: audit.ConventionFlag(conv), Violations: violations})
			case "text":
				return writeViolations(cmd, path, violations)
			default:
				return errors.WithHint(errors.Newf("unknown format %q", format), "valid formats: text, yaml")
			}
		},
	}

	fl := cmd.Flags()
	fl.StringVarP(&style, "style", "s", "google", "docstring layout: google, numpy or rest")
	fl.StringVarP(&format, "format", "f", "text", "output format: text or yaml")
	fl.StringVar(&command, "pydocstyle", audit.DefaultCommand, "pydocstyle executable")
	fl.StringArrayVar(&extra, "arg", nil, "extra argument passed to pydocstyle (repeatable)")
	fl.DurationVar(&timeout, "timeout", audit.DefaultTimeout, "maximum time a pydocstyle run may take")
	fl.StringVar(&project, "project", ".", "directory holding pyproject.toml")
	return cmd
}

func writeYAML(cmd *cobra.Command, v any) error {
	enc := yaml.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return errors.Wrap(err, "encoding yaml")
	}
	return errors.Wrap(enc.Close(), "encoding yaml")
}

func writeViolations(cmd *cobra.Command, path string, violations []audit.Violation) error {
	out := cmd.OutOrStdout()
	for _, v := range violations {
		_, _ = fmt.Fprintf(out, "%s:%d %s\n    %s: %s\n", v.File, v.Line, v.Definition, v.Code, v.Message)
	}
	if len(violations) == 0 {
		pterm.Success.WithWriter(cmd.ErrOrStderr()).Printfln("%s: no docstring issues", path)
		return nil
	}
	pterm.Warning.WithWriter(cmd.ErrOrStderr()).Printfln("%s: %d docstring issue(s)", path, len(violations))
	return nil
}
