package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/cwbudde/randopt/internal/plot"
	"github.com/cwbudde/randopt/internal/store"
)

var replotOut string

var replotCmd = &cobra.Command{
	Use:   "replot <run-id>",
	Short: "Render the plots of a stored run again",
	Long: `Loads a stored run and renders its optimizations and performances plots
without running any optimizer. Plots go to --out, or to the directory the run
was configured with.`,
	Args: cobra.ExactArgs(1),
	RunE: runReplot,
}

func init() {
	replotCmd.Flags().StringVar(&resultsDataDir, "data-dir", "./data", "Base directory for run storage")
	replotCmd.Flags().StringVar(&replotOut, "out", "", "Directory for plot images (default: the run's output_dir)")
	rootCmd.AddCommand(replotCmd)
}

func runReplot(cmd *cobra.Command, args []string) error {
	runs, err := store.NewFSStore(resultsDataDir)
	if err != nil {
		return fmt.Errorf("failed to create run store: %w", err)
	}
	run, err := runs.LoadRun(args[0])
	if err != nil {
		return fmt.Errorf("failed to load run: %w", err)
	}

	dir := replotOut
	if dir == "" && run.Suite != nil {
		dir = run.Suite.OutputDir
	}
	if dir == "" {
		return fmt.Errorf("no output directory: pass --out")
	}

	var written []string
	for _, p := range run.Problems {
		if p.Optimizations != nil {
			paths, err := plot.Optimizations(p.Optimizations, dir, p.PlotYLabel)
			if err != nil {
				return fmt.Errorf("%s: %w", p.PlotName, err)
			}
			written = append(written, paths...)
		}
		if p.Performances != nil {
			paths, err := plot.Performances(p.Performances, dir, p.PlotYLabel)
			if err != nil {
				return fmt.Errorf("%s: %w", p.PlotName, err)
			}
			written = append(written, paths...)
		}
	}

	slog.Info("Replotted run", "run_id", run.ID, "plots", len(written), "dir", dir)
	out := cmd.OutOrStdout()
	for _, path := range written {
		fmt.Fprintln(out, path)
	}
	return nil
}
