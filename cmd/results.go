package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/cwbudde/randopt/internal/store"
)

var (
	resultsDataDir string
	keepLast       int
	olderThanDays  int
	forceClean     bool
	showTrace      bool
	traceProblem   string
	traceSweep     string
)

var resultsCmd = &cobra.Command{
	Use:   "results",
	Short: "Manage stored benchmark runs",
	Long: `Manage stored benchmark runs: list them, show one run's summary or
delete old runs. Every run stores its reports in run.json and one line per
optimizer run in trace.jsonl.`,
}

var listResultsCmd = &cobra.Command{
	Use:   "list",
	Short: "List all stored runs",
	Long:  `Display all stored runs with ID, start time, duration, problems and size on disk.`,
	Args:  cobra.NoArgs,
	RunE:  runListResults,
}

var showResultsCmd = &cobra.Command{
	Use:   "show <run-id>",
	Short: "Show the summary tables of a stored run",
	Long: `Show the summary tables of a stored run. With --trace it also lists
every optimizer run of the trace, one row per configuration and seed.`,
	Args: cobra.ExactArgs(1),
	RunE:  runShowResults,
}

var cleanResultsCmd = &cobra.Command{
	Use:   "clean",
	Short: "Delete old runs",
	Long: `Delete old runs based on a retention policy.
You can keep only the last N runs or delete runs older than N days.`,
	Args: cobra.NoArgs,
	RunE: runCleanResults,
}

func init() {
	rootCmd.AddCommand(resultsCmd)

	resultsCmd.AddCommand(listResultsCmd)
	resultsCmd.AddCommand(showResultsCmd)
	resultsCmd.AddCommand(cleanResultsCmd)

	resultsCmd.PersistentFlags().StringVar(&resultsDataDir, "data-dir", "./data", "Base directory for run storage")

	showResultsCmd.Flags().BoolVar(&showTrace, "trace", false, "Also list every optimizer run from the trace")
	showResultsCmd.Flags().StringVar(&traceProblem, "problem", "", "Only list trace rows of this problem (plot name)")
	showResultsCmd.Flags().StringVar(&traceSweep, "sweep", "", "Only list trace rows of this sweep (optimizations, performances)")

	cleanResultsCmd.Flags().IntVar(&keepLast, "keep-last", 0, "Keep only the last N runs (0 = keep all)")
	cleanResultsCmd.Flags().IntVar(&olderThanDays, "older-than", 0, "Delete runs older than N days (0 = no age limit)")
	cleanResultsCmd.Flags().BoolVarP(&forceClean, "force", "f", false, "Skip confirmation prompt")
}

func runListResults(cmd *cobra.Command, args []string) error {
	runs, err := store.NewFSStore(resultsDataDir)
	if err != nil {
		return fmt.Errorf("failed to create run store: %w", err)
	}

	infos, err := runs.ListRuns()
	if err != nil {
		return fmt.Errorf("failed to list runs: %w", err)
	}

	out := cmd.OutOrStdout()
	if len(infos) == 0 {
		fmt.Fprintln(out, "No runs found.")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "RUN ID\tSTARTED\tDURATION\tPROBLEMS\tSIZE")
	fmt.Fprintln(w, "------\t-------\t--------\t--------\t----")

	for _, info := range infos {
		size, err := getDirSize(runs.RunDir(info.ID))
		sizeStr := "unknown"
		if err == nil {
			sizeStr = formatBytes(size)
		}

		duration := "running"
		if !info.FinishedAt.IsZero() {
			duration = info.FinishedAt.Sub(info.CreatedAt).Round(time.Second).String()
		}

		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			info.ID,
			info.CreatedAt.Format("2006-01-02 15:04:05"),
			duration,
			strings.Join(info.Problems, ","),
			sizeStr,
		)
	}

	w.Flush()

	fmt.Fprintf(out, "\nTotal runs: %d\n", len(infos))
	return nil
}

func runShowResults(cmd *cobra.Command, args []string) error {
	runs, err := store.NewFSStore(resultsDataDir)
	if err != nil {
		return fmt.Errorf("failed to create run store: %w", err)
	}
	run, err := runs.LoadRun(args[0])
	if err != nil {
		return fmt.Errorf("failed to load run: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Run %s (started %s)\n", run.ID, run.CreatedAt.Format("2006-01-02 15:04:05"))
	if run.Suite != nil {
		fmt.Fprintf(out, "Seeds: %v  Max attempts: %d\n", run.Suite.Seeds, run.Suite.MaxAttempts)
	}
	for _, p := range run.Problems {
		fmt.Fprintf(out, "\n== %s ==\n", p.PlotName)
		if p.Optimizations != nil {
			fmt.Fprintln(out, "\nOptimizations")
			printOptimizations(out, p.Optimizations)
		}
		if p.Performances != nil {
			fmt.Fprintln(out, "\nPerformances")
			printPerformances(out, p.Performances)
		}
	}

	if !showTrace {
		return nil
	}
	return printTrace(out, runs.BaseDir(), run.ID, store.TraceFilter{Problem: traceProblem, Sweep: traceSweep})
}

// printTrace lists the trace entries of a run that match filter.
func printTrace(out io.Writer, baseDir, runID string, filter store.TraceFilter) error {
	reader, err := store.NewTraceReader(baseDir, runID)
	if err != nil {
		return fmt.Errorf("failed to open trace: %w", err)
	}
	defer reader.Close()

	entries, err := reader.Filter(filter).ReadAll()
	if err != nil {
		return fmt.Errorf("failed to read trace: %w", err)
	}

	fmt.Fprintln(out, "\nTrace")
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "PROBLEM\tSWEEP\tLABEL\tSEED\tFITNESS\tITERATIONS\tEVALUATIONS\tMS")
	for _, e := range entries {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%.4f\t%d\t%d\t%.1f\n",
			e.Problem, e.Sweep, e.Label, e.Seed, e.BestFitness, e.Iterations, e.Evaluations, e.ElapsedMS)
	}
	w.Flush()

	fmt.Fprintf(out, "\nTrace entries: %d\n", len(entries))
	return nil
}

func runCleanResults(cmd *cobra.Command, args []string) error {
	if keepLast == 0 && olderThanDays == 0 {
		return fmt.Errorf("must specify either --keep-last or --older-than")
	}

	runs, err := store.NewFSStore(resultsDataDir)
	if err != nil {
		return fmt.Errorf("failed to create run store: %w", err)
	}

	infos, err := runs.ListRuns()
	if err != nil {
		return fmt.Errorf("failed to list runs: %w", err)
	}

	out := cmd.OutOrStdout()
	if len(infos) == 0 {
		fmt.Fprintln(out, "No runs to clean.")
		return nil
	}

	toDelete := selectRunsForDeletion(infos, keepLast, olderThanDays)
	if len(toDelete) == 0 {
		fmt.Fprintln(out, "No runs match deletion criteria.")
		return nil
	}

	fmt.Fprintf(out, "Found %d run(s) to delete:\n", len(toDelete))
	for _, info := range toDelete {
		fmt.Fprintf(out, "  - %s (%s, %s)\n",
			info.ID,
			strings.Join(info.Problems, ","),
			info.CreatedAt.Format("2006-01-02 15:04:05"),
		)
	}

	if !forceClean {
		fmt.Fprint(out, "\nProceed with deletion? [y/N]: ")
		var response string
		fmt.Fscanln(cmd.InOrStdin(), &response)
		if response != "y" && response != "Y" {
			fmt.Fprintln(out, "Aborted.")
			return nil
		}
	}

	deleted := 0
	failed := 0
	for _, info := range toDelete {
		if err := runs.DeleteRun(info.ID); err != nil {
			slog.Error("Failed to delete run", "run_id", info.ID, "error", err)
			failed++
		} else {
			slog.Info("Deleted run", "run_id", info.ID)
			deleted++
		}
	}

	fmt.Fprintf(out, "\nDeleted %d run(s), %d failed.\n", deleted, failed)
	return nil
}

// selectRunsForDeletion determines which runs should be deleted based on the
// retention policy. A run matching both rules is listed once.
func selectRunsForDeletion(infos []store.RunInfo, keepLast int, olderThanDays int) []store.RunInfo {
	var toDelete []store.RunInfo
	selected := make(map[string]bool)

	if olderThanDays > 0 {
		cutoff := time.Now().AddDate(0, 0, -olderThanDays)
		for _, info := range infos {
			if info.CreatedAt.Before(cutoff) {
				toDelete = append(toDelete, info)
				selected[info.ID] = true
			}
		}
	}

	if keepLast > 0 && len(infos) > keepLast {
		sorted := make([]store.RunInfo, len(infos))
		copy(sorted, infos)
		sort.SliceStable(sorted, func(i, j int) bool {
			return sorted[i].CreatedAt.Before(sorted[j].CreatedAt)
		})

		for _, info := range sorted[:len(sorted)-keepLast] {
			if !selected[info.ID] {
				toDelete = append(toDelete, info)
				selected[info.ID] = true
			}
		}
	}

	return toDelete
}

// getDirSize calculates the total size of a directory
func getDirSize(path string) (int64, error) {
	var size int64
	err := filepath.Walk(path, func(_ string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() {
			size += info.Size()
		}
		return nil
	})
	return size, err
}

// formatBytes formats bytes as human-readable string
func formatBytes(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}
