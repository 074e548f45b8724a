package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/cwbudde/randopt/internal/config"
	"github.com/cwbudde/randopt/internal/experiment"
	"github.com/cwbudde/randopt/internal/metrics"
	"github.com/cwbudde/randopt/internal/plot"
	"github.com/cwbudde/randopt/internal/store"
)

var (
	skipOptimizations bool
	skipPerformances  bool
	metricsFile       string
)

var runCmd = &cobra.Command{
	Use:   "run [problem...]",
	Short: "Run the benchmark for the named problems",
	Long: `Runs the optimizations sweep and the performances comparison for each
named problem (tsp, knapsack, fourpeaks, flipflop), in the given order.
Without arguments the suite's run list is used.`,
	ValidArgs: []string{config.KindTSP, config.KindKnapsack, config.KindFourPeaks, config.KindFlipFlop},
	Args:      cobra.OnlyValidArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runBenchmarks(cmd, args)
	},
}

// addRunFlags defines the benchmark flags on cmd.
func addRunFlags(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.BoolVar(&skipOptimizations, "skip-optimizations", false, "Skip the hyperparameter optimizations sweep")
	fs.BoolVar(&skipPerformances, "skip-performances", false, "Skip the performances comparison")
	fs.StringVar(&metricsFile, "metrics-file", "", "Write Prometheus metrics to this textfile when done")
	addSuiteFlags(fs)
}

// addSuiteFlags defines the flags listed in flagKeys. Their defaults are
// only documentation: unchanged flags never override the suite.
func addSuiteFlags(fs *pflag.FlagSet) {
	fs.String("out", "./plots", "Directory for plot images")
	fs.String("data-dir", "./data", "Directory for run reports and traces")
	fs.Int("workers", 0, "Concurrent optimizer runs (0 = number of CPUs)")
	fs.Int("max-attempts", config.DefaultMaxAttempts, "Consecutive non-improving steps before an optimizer stops (0 = unlimited)")
	fs.Bool("mayfly", false, "Add the Mayfly random-key baseline to the performances comparison")
}

func init() {
	addRunFlags(runCmd)
	rootCmd.AddCommand(runCmd)
}

func runBenchmarks(cmd *cobra.Command, kinds []string) error {
	if skipOptimizations && skipPerformances {
		return fmt.Errorf("nothing to run: both sweeps are skipped")
	}

	suite, err := loadSuite(cmd)
	if err != nil {
		return err
	}
	if len(kinds) > 0 {
		suite.Run = kinds
		if err := suite.Validate(); err != nil {
			return err
		}
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	runs, err := store.NewFSStore(suite.DataDir)
	if err != nil {
		return fmt.Errorf("failed to create run store: %w", err)
	}
	run := store.NewRun(suite)
	trace, err := store.NewTraceWriter(runs.BaseDir(), run.ID)
	if err != nil {
		return fmt.Errorf("failed to create trace: %w", err)
	}
	defer trace.Close()
	rec := metrics.New()

	slog.Info("Starting benchmark",
		"run_id", run.ID,
		"problems", suite.Run,
		"seeds", suite.Seeds,
		"workers", suite.Workers)

	out := cmd.OutOrStdout()
	for _, kind := range suite.Run {
		pc, err := suite.Problem(kind)
		if err != nil {
			return err
		}
		pr, err := runProblem(ctx, out, suite, pc, trace, rec)
		if err != nil {
			return err
		}
		run.Problems = append(run.Problems, *pr)

		// Saved after every problem so that an interrupted run keeps its finished work.
		if err := runs.SaveRun(run); err != nil {
			return fmt.Errorf("failed to save run: %w", err)
		}
	}

	run.FinishedAt = time.Now()
	if err := runs.SaveRun(run); err != nil {
		return fmt.Errorf("failed to save run: %w", err)
	}
	if err := trace.Flush(); err != nil {
		slog.Warn("Failed to flush trace", "run_id", run.ID, "error", err)
	}
	if metricsFile != "" {
		if err := rec.WriteTextfile(metricsFile); err != nil {
			return err
		}
	}

	slog.Info("Benchmark complete", "run_id", run.ID, "elapsed", run.Duration())
	fmt.Fprintf(out, "\nRun %s finished in %s (plots in %s)\n",
		run.ID, run.Duration().Round(time.Millisecond), suite.OutputDir)
	return nil
}

// runProblem runs both sweeps of one problem and renders their plots.
func runProblem(ctx context.Context, out io.Writer, suite *config.Suite, pc *config.Problem, trace *store.TraceWriter, rec *metrics.Recorder) (*store.ProblemRun, error) {
	p, err := pc.Build()
	if err != nil {
		return nil, err
	}
	fmt.Fprintf(out, "\n== %s ==\n", p.Name())

	settings := experiment.Settings{
		Seeds:        suite.Seeds,
		MaxAttempts:  suite.MaxAttempts,
		MutationProb: suite.MutationProb,
		Workers:      suite.Workers,
		Metrics:      rec,
		Observer: func(r experiment.Run) {
			if err := trace.Write(store.NewTraceEntry(p.Name(), r)); err != nil {
				slog.Warn("Failed to write trace entry", "problem", p.Name(), "label", r.Label, "error", err)
			}
		},
	}
	pr := &store.ProblemRun{Kind: pc.Kind, PlotName: pc.PlotName, PlotYLabel: pc.PlotYLabel}

	if !skipOptimizations {
		fmt.Fprintln(out, "\nPlot Optimizations for SA, GA and MIMIC")
		report, err := experiment.Optimizations(ctx, p, experiment.OptimizationParams{
			Settings: settings,
			Table:    pc.Optimizations,
		})
		if err != nil {
			return nil, fmt.Errorf("%s optimizations: %w", p.Name(), err)
		}
		paths, err := plot.Optimizations(report, suite.OutputDir, pc.PlotYLabel)
		if err != nil {
			return nil, err
		}
		pr.Optimizations = report
		pr.Plots = append(pr.Plots, paths...)
		printOptimizations(out, report)
	}

	if !skipPerformances {
		fmt.Fprintln(out, "\nPlot Performances for RHC, SA, GA and MIMIC")
		report, err := experiment.Performances(ctx, p, experiment.PerformanceParams{
			Settings: settings,
			Table:    pc.Performances,
			Mayfly:   suite.Mayfly,
		})
		if err != nil {
			return nil, fmt.Errorf("%s performances: %w", p.Name(), err)
		}
		paths, err := plot.Performances(report, suite.OutputDir, pc.PlotYLabel)
		if err != nil {
			return nil, err
		}
		pr.Performances = report
		pr.Plots = append(pr.Plots, paths...)
		printPerformances(out, report)
	}
	return pr, nil
}

// printOptimizations lists the best value of every sweep.
func printOptimizations(out io.Writer, report *experiment.OptimizationReport) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ALGORITHM\tPARAMETER\tBEST VALUE\tMEAN FITNESS\tSTD")
	for _, s := range report.Sweeps {
		best, ok := s.BestPoint(report.Maximize)
		if !ok {
			continue
		}
		fmt.Fprintf(w, "%s\t%s\t%g\t%.4f\t%.4f\n", s.Algorithm, s.Parameter, best.Value, best.MeanFitness, best.StdFitness)
	}
	w.Flush()
}

// printPerformances prints one row per algorithm.
func printPerformances(out io.Writer, report *experiment.PerformanceReport) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ALGORITHM\tMEAN FITNESS\tSTD\tBEST\tSECONDS\tEVALUATIONS")
	for _, a := range report.Algorithms {
		fmt.Fprintf(w, "%s\t%.4f\t%.4f\t%.4f\t%.4f\t%.0f\n",
			a.Algorithm, a.MeanFitness, a.StdFitness, a.BestFitness, a.MeanSeconds, a.MeanEvaluations)
	}
	w.Flush()
}
