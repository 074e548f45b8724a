package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cwbudde/randopt/internal/experiment"
	"github.com/cwbudde/randopt/internal/store"
)

const tinySuite = `
seeds: [1, 2]
run: [knapsack]
workers: 2
max_attempts: 10
problems:
  knapsack:
    optimizations:
      rhc_max_iters: 20
      sa_max_iters: 20
      ga_max_iters: 5
      mimic_max_iters: 5
      ga_pop_size: 20
      mimic_pop_size: 20
      sa_decay_rates: {start: 0.5, stop: 1.01, step: 0.5}
      pop_sizes: {start: 10, stop: 21, step: 10}
      keep_pcts: {start: 0.2, stop: 0.41, step: 0.2}
    performances:
      rhc_max_iters: 20
      sa_max_iters: 20
      ga_max_iters: 5
      mimic_max_iters: 5
      ga_pop_size: 20
      mimic_pop_size: 20
`

// writeTinySuite writes a knapsack-only suite small enough for unit tests.
func writeTinySuite(t *testing.T, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "suite.yaml")
	if err := os.WriteFile(path, []byte(tinySuite), 0644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}
	return path
}

// executeRoot runs the CLI with args and returns what it printed.
func executeRoot(t *testing.T, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs(append(args, "--log-level", "error"))
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetArgs(nil)
		configPath = ""
		metricsFile = ""
	})

	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("%v failed: %v", args, err)
	}
	return out.String()
}

// runTinySuite runs the tiny suite into dir/data and returns the stored run.
func runTinySuite(t *testing.T, dir string) *store.Run {
	t.Helper()
	executeRoot(t, "run", "knapsack", "--config", writeTinySuite(t, dir),
		"--out", filepath.Join(dir, "plots"), "--data-dir", filepath.Join(dir, "data"))

	runs, err := store.NewFSStore(filepath.Join(dir, "data"))
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	infos, err := runs.ListRuns()
	if err != nil || len(infos) != 1 {
		t.Fatalf("Expected one stored run, got %d (err %v)", len(infos), err)
	}
	run, err := runs.LoadRun(infos[0].ID)
	if err != nil {
		t.Fatalf("Failed to load run: %v", err)
	}
	return run
}

func TestRunCommand_EndToEnd(t *testing.T) {
	tmpDir := t.TempDir()
	plots := filepath.Join(tmpDir, "plots")
	data := filepath.Join(tmpDir, "data")
	prom := filepath.Join(tmpDir, "randopt.prom")

	got := executeRoot(t, "run", "knapsack",
		"--config", writeTinySuite(t, tmpDir), "--out", plots, "--data-dir", data, "--metrics-file", prom)

	for _, want := range []string{
		"== Knapsack ==",
		"Plot Optimizations for SA, GA and MIMIC",
		"Plot Performances for RHC, SA, GA and MIMIC",
		"pop_size",
		"MIMIC",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("Expected output to contain %q, got:\n%s", want, got)
		}
	}

	for _, name := range []string{"knapsack_sa_decay_curves.png", "knapsack_fitness_iterations.png", "knapsack_time.png"} {
		if _, err := os.Stat(filepath.Join(plots, name)); err != nil {
			t.Errorf("Expected plot %s: %v", name, err)
		}
	}

	runs, err := store.NewFSStore(data)
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	infos, err := runs.ListRuns()
	if err != nil || len(infos) != 1 {
		t.Fatalf("Expected one stored run, got %d (err %v)", len(infos), err)
	}
	run, err := runs.LoadRun(infos[0].ID)
	if err != nil {
		t.Fatalf("Failed to load run: %v", err)
	}
	if run.FinishedAt.IsZero() {
		t.Error("Expected run to be finished")
	}
	if len(run.Problems) != 1 || run.Problems[0].Optimizations == nil || run.Problems[0].Performances == nil {
		t.Fatalf("Expected both reports for knapsack, got %+v", run.Problems)
	}

	reader, err := store.NewTraceReader(data, run.ID)
	if err != nil {
		t.Fatalf("Failed to open trace: %v", err)
	}
	defer reader.Close()
	entries, err := reader.ReadAll()
	if err != nil {
		t.Fatalf("Failed to read trace: %v", err)
	}
	// 2 decay rates + 2 GA pops + 2 GA keeps + 2 MIMIC pops + 2 MIMIC keeps + RHC baseline,
	// then 4 algorithms, each over 2 seeds.
	if want := (11 + 4) * 2; len(entries) != want {
		t.Errorf("Expected %d trace entries, got %d", want, len(entries))
	}

	metrics, err := os.ReadFile(prom)
	if err != nil {
		t.Fatalf("Expected metrics file: %v", err)
	}
	if !strings.Contains(string(metrics), "randopt_optimizer_runs_total") {
		t.Errorf("Metrics file misses run counter:\n%s", metrics)
	}
}

func TestRunBenchmarks_BothSkipped(t *testing.T) {
	skipOptimizations, skipPerformances = true, true
	t.Cleanup(func() { skipOptimizations, skipPerformances = false, false })

	if err := runBenchmarks(runCmd, nil); err == nil {
		t.Error("Expected error when both sweeps are skipped")
	}
}

func TestPrintOptimizations_PicksByDirection(t *testing.T) {
	sweep := experiment.Sweep{
		Algorithm: "SA",
		Parameter: "decay_rate",
		Points: []experiment.SweepPoint{
			{Value: 0.01, MeanFitness: 30},
			{Value: 0.02, MeanFitness: 20},
		},
	}

	var buf bytes.Buffer
	printOptimizations(&buf, &experiment.OptimizationReport{Maximize: false, Sweeps: []experiment.Sweep{sweep}})
	if !strings.Contains(buf.String(), "0.02") || strings.Contains(buf.String(), "30.0000") {
		t.Errorf("Expected the lowest mean for a minimization problem, got:\n%s", buf.String())
	}

	buf.Reset()
	printOptimizations(&buf, &experiment.OptimizationReport{Maximize: true, Sweeps: []experiment.Sweep{sweep}})
	if !strings.Contains(buf.String(), "30.0000") {
		t.Errorf("Expected the highest mean for a maximization problem, got:\n%s", buf.String())
	}
}
