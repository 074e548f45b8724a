package store

import (
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/cwbudde/randopt/internal/config"
	"github.com/cwbudde/randopt/internal/experiment"
)

// setupTestStore creates a temporary directory and returns an FSStore for testing.
func setupTestStore(t *testing.T) (*FSStore, string) {
	t.Helper()

	tempDir := t.TempDir()
	store, err := NewFSStore(tempDir)
	if err != nil {
		t.Fatalf("Failed to create test store: %v", err)
	}

	return store, tempDir
}

// createTestRun creates a finished run with one knapsack problem.
func createTestRun() *Run {
	run := NewRun(config.Default())
	run.FinishedAt = run.CreatedAt.Add(3 * time.Second)
	run.Problems = []ProblemRun{{
		Kind:       config.KindKnapsack,
		PlotName:   "Knapsack",
		PlotYLabel: "Fitness",
		Performances: &experiment.PerformanceReport{
			Problem: "Knapsack",
			Seeds:   []int64{5, 10},
			Algorithms: []experiment.AlgorithmPerformance{{
				Algorithm:   "GA",
				Curve:       experiment.Curve{Label: "GA", Mean: []float64{5, 7}, Std: []float64{1, 0}},
				MeanFitness: 7,
				BestFitness: 7,
				BestState:   []int{0, 0, 1, 1, 0},
			}},
		},
	}}
	return run
}

func TestNewFSStore(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "data")

	store, err := NewFSStore(dir)
	if err != nil {
		t.Fatalf("NewFSStore failed: %v", err)
	}
	if store.BaseDir() != dir {
		t.Errorf("BaseDir: expected %s, got %s", dir, store.BaseDir())
	}
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		t.Fatal("Base directory was not created")
	}
}

func TestSaveRun(t *testing.T) {
	store, tempDir := setupTestStore(t)
	run := createTestRun()

	if err := store.SaveRun(run); err != nil {
		t.Fatalf("SaveRun failed: %v", err)
	}

	expectedPath := filepath.Join(tempDir, "runs", run.ID, "run.json")
	if _, err := os.Stat(expectedPath); os.IsNotExist(err) {
		t.Fatalf("Run file was not created at %s", expectedPath)
	}
	if _, err := os.Stat(expectedPath + ".tmp"); !os.IsNotExist(err) {
		t.Errorf("Temp file should not exist after save: %s", expectedPath+".tmp")
	}
}

func TestSaveRun_Invalid(t *testing.T) {
	store, _ := setupTestStore(t)

	if err := store.SaveRun(nil); err == nil {
		t.Fatal("Expected error for nil run")
	}

	run := createTestRun()
	run.ID = "not-a-uuid"
	err := store.SaveRun(run)
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("Expected ValidationError, got %v", err)
	}
	if verr.Field != "ID" {
		t.Errorf("Expected field ID, got %s", verr.Field)
	}
}

func TestSaveRun_Overwrite(t *testing.T) {
	store, _ := setupTestStore(t)
	run := createTestRun()

	if err := store.SaveRun(run); err != nil {
		t.Fatalf("First save failed: %v", err)
	}
	run.Problems[0].Plots = []string{"plots/knapsack_time.png"}
	if err := store.SaveRun(run); err != nil {
		t.Fatalf("Second save failed: %v", err)
	}

	loaded, err := store.LoadRun(run.ID)
	if err != nil {
		t.Fatalf("LoadRun failed: %v", err)
	}
	if len(loaded.Problems[0].Plots) != 1 {
		t.Errorf("Expected the second save to win, got plots %v", loaded.Problems[0].Plots)
	}
}

func TestLoadRun(t *testing.T) {
	store, _ := setupTestStore(t)
	run := createTestRun()
	if err := store.SaveRun(run); err != nil {
		t.Fatalf("SaveRun failed: %v", err)
	}

	loaded, err := store.LoadRun(run.ID)
	if err != nil {
		t.Fatalf("LoadRun failed: %v", err)
	}

	if loaded.ID != run.ID {
		t.Errorf("ID mismatch: expected %s, got %s", run.ID, loaded.ID)
	}
	if !loaded.CreatedAt.Equal(run.CreatedAt) {
		t.Errorf("CreatedAt mismatch: expected %v, got %v", run.CreatedAt, loaded.CreatedAt)
	}
	if loaded.Suite == nil || len(loaded.Suite.Problems.TSP.Distances) != 28 {
		t.Errorf("Suite was not round-tripped: %+v", loaded.Suite)
	}
	perf := loaded.Problems[0].Performances
	if perf == nil || perf.Algorithm("GA") == nil {
		t.Fatalf("Performance report missing: %+v", loaded.Problems[0])
	}
	if got := perf.Algorithm("GA").BestFitness; got != 7 {
		t.Errorf("BestFitness mismatch: expected 7, got %f", got)
	}
	if loaded.Problems[0].Optimizations != nil {
		t.Error("Skipped sweep should stay nil")
	}
}

func TestLoadRun_NotFound(t *testing.T) {
	store, _ := setupTestStore(t)

	_, err := store.LoadRun(uuid.NewString())
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got: %v", err)
	}

	if _, err := store.LoadRun(""); err == nil {
		t.Error("Expected error for empty runID")
	}
}

func TestListRuns_Empty(t *testing.T) {
	store, _ := setupTestStore(t)

	infos, err := store.ListRuns()
	if err != nil {
		t.Fatalf("ListRuns failed: %v", err)
	}
	if len(infos) != 0 {
		t.Errorf("Expected no runs, got %d", len(infos))
	}
}

func TestListRuns_SortedAndSkipsInvalid(t *testing.T) {
	store, tempDir := setupTestStore(t)

	base := time.Now().Add(-time.Hour)
	var ids []string
	for i := 2; i >= 0; i-- {
		run := createTestRun()
		run.CreatedAt = base.Add(time.Duration(i) * time.Minute)
		run.FinishedAt = run.CreatedAt.Add(time.Second)
		if err := store.SaveRun(run); err != nil {
			t.Fatalf("SaveRun failed: %v", err)
		}
		ids = append([]string{run.ID}, ids...)
	}

	// A directory without run.json, a corrupted run and a stray file.
	os.MkdirAll(filepath.Join(tempDir, "runs", "empty"), 0755)
	os.MkdirAll(filepath.Join(tempDir, "runs", "corrupt"), 0755)
	os.WriteFile(filepath.Join(tempDir, "runs", "corrupt", "run.json"), []byte("{"), 0644)
	os.WriteFile(filepath.Join(tempDir, "runs", "stray.txt"), []byte("x"), 0644)

	infos, err := store.ListRuns()
	if err != nil {
		t.Fatalf("ListRuns failed: %v", err)
	}
	if len(infos) != 3 {
		t.Fatalf("Expected 3 runs, got %d", len(infos))
	}
	for i, info := range infos {
		if info.ID != ids[i] {
			t.Errorf("Run %d: expected %s, got %s", i, ids[i], info.ID)
		}
		if len(info.Problems) != 1 || info.Problems[0] != config.KindKnapsack {
			t.Errorf("Run %d: unexpected problems %v", i, info.Problems)
		}
	}
}

func TestDeleteRun(t *testing.T) {
	store, tempDir := setupTestStore(t)
	run := createTestRun()
	if err := store.SaveRun(run); err != nil {
		t.Fatalf("SaveRun failed: %v", err)
	}
	w, err := NewTraceWriter(tempDir, run.ID)
	if err != nil {
		t.Fatalf("NewTraceWriter failed: %v", err)
	}
	w.Close()

	if err := store.DeleteRun(run.ID); err != nil {
		t.Fatalf("DeleteRun failed: %v", err)
	}
	if _, err := os.Stat(store.RunDir(run.ID)); !os.IsNotExist(err) {
		t.Error("Run directory should be removed")
	}
	if _, err := NewTraceReader(tempDir, run.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected the trace to go with the run, got %v", err)
	}
	if _, err := store.LoadRun(run.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound after delete, got %v", err)
	}
}

func TestDeleteRun_NotFound(t *testing.T) {
	store, _ := setupTestStore(t)

	if err := store.DeleteRun("missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got: %v", err)
	}
	if err := store.DeleteRun(""); err == nil {
		t.Error("Expected error for empty runID")
	}
}

func TestConcurrentSave(t *testing.T) {
	store, _ := setupTestStore(t)

	const numRuns = 10
	var wg sync.WaitGroup
	for i := 0; i < numRuns; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := store.SaveRun(createTestRun()); err != nil {
				t.Errorf("Concurrent save failed: %v", err)
			}
		}()
	}
	wg.Wait()

	infos, err := store.ListRuns()
	if err != nil {
		t.Fatalf("ListRuns failed: %v", err)
	}
	if len(infos) != numRuns {
		t.Errorf("Expected %d runs, got %d", numRuns, len(infos))
	}
}
