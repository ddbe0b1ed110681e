package main

import (
	"fmt"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/phobologic/docgen/internal/config"
	"github.com/phobologic/docgen/internal/coverage"
	"github.com/phobologic/docgen/internal/model"
	"github.com/phobologic/docgen/internal/ranking"
	"github.com/phobologic/docgen/internal/toon"
)

func newCoverageCmd() *cobra.Command {
	var (
		threshold   float64
		worst       int
		workers     int
		project     string
		showTable   bool
		maxFileSize int
	)

	cmd := &cobra.Command{
		Use:   "coverage [paths...]",
		Short: "Gate on mean docstring coverage",
		Long: `Measure, for every discovered Python file, the share of functions and
classes that carry a docstring, and compare the mean across files with a
threshold. Unreadable, unparsable and definition-free files count as fully
covered. Exits non-zero when the mean is below the threshold.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			stderr := cmd.ErrOrStderr()
			cfg := config.Load(project)
			if !cmd.Flags().Changed("threshold") {
				threshold = cfg.CoverageThreshold()
			}

			targets, err := resolveTargets(args, cfg.Exclude)
			if err != nil {
				return err
			}

			var reports []model.FileReport
			for _, t := range targets {
				files := filterBySize(t.root, t.files, maxFileSize, stderr)
				rs, err := coverage.Collect(cmd.Context(), t.root, files, workers)
				if err != nil {
					return err
				}
				for i := range rs {
					rs[i].Path = displayPath(t.root, rs[i].Path)
				}
				reports = append(reports, rs...)
			}

			summary := coverage.Gate(reports, threshold)

			if showTable || worst > 0 {
				shown := ranking.Incomplete(reports)
				shown = ranking.WorstFiles(shown, worst)
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), toon.EncodeCoverage(summary, shown))
			}

			if !summary.Passed {
				pterm.Error.WithWriter(stderr).Printfln("Docstring coverage %.2f%% is below the %.2f%% threshold (%d files)",
					summary.Mean, summary.Threshold, summary.Files)
				return errGateFailed
			}
			pterm.Success.WithWriter(stderr).Printfln("Docstring coverage %.2f%% meets the %.2f%% threshold (%d files)",
				summary.Mean, summary.Threshold, summary.Files)
			return nil
		},
	}

	fl := cmd.Flags()
	fl.Float64VarP(&threshold, "threshold", "t", config.DefaultThreshold, "minimum mean coverage percentage")
	fl.IntVarP(&worst, "worst", "n", 0, "list the n least documented files")
	fl.BoolVar(&showTable, "table", false, "list every incompletely documented file")
	fl.IntVarP(&workers, "workers", "j", 0, "files measured in parallel (default GOMAXPROCS)")
	fl.IntVar(&maxFileSize, "max-file-size", defaultMaxFileSize, "skip files larger than this many bytes")
	fl.StringVar(&project, "project", ".", "directory holding pyproject.toml")
	return cmd
}
