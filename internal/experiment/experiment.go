// Package experiment runs the optimizations and performances sweeps of a
// benchmark problem and aggregates the per-seed results into reports.
package experiment

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"runtime"

	"github.com/sourcegraph/conc/pool"

	"github.com/cwbudde/randopt/internal/metrics"
	"github.com/cwbudde/randopt/internal/opt"
	"github.com/cwbudde/randopt/internal/problem"
)

// Sweep names used in Run.Sweep and trace files.
const (
	SweepOptimizations = "optimizations"
	SweepPerformances  = "performances"
)

// Run is one finished optimizer run, handed to the Observer.
type Run struct {
	Sweep  string
	Label  string
	Seed   int64
	Result *opt.Result
}

// Observer is called once per finished run. It is called from worker
// goroutines and must be safe for concurrent use.
type Observer func(Run)

// Settings are shared by both sweeps.
type Settings struct {
	Seeds        []int64
	MaxAttempts  int
	MutationProb float64
	Workers      int
	Observer     Observer
	Metrics      *metrics.Recorder
}

func (s Settings) validate() error {
	if len(s.Seeds) == 0 {
		return fmt.Errorf("experiment: at least one seed is required")
	}
	return nil
}

func (s Settings) workers() int {
	if s.Workers > 0 {
		return s.Workers
	}
	return runtime.NumCPU()
}

// job is a single optimizer configuration; it is run once per seed.
type job struct {
	label     string
	optimizer opt.Optimizer
}

// runJobs runs every job for every seed on a bounded pool. The returned
// slice is indexed [job][seed]. Optimizers hold no per-run state, so one
// value is shared across seeds.
func runJobs(ctx context.Context, p problem.Problem, sweep string, jobs []job, s Settings) ([][]*opt.Result, error) {
	results := make([][]*opt.Result, len(jobs))
	for i := range results {
		results[i] = make([]*opt.Result, len(s.Seeds))
	}

	wp := pool.New().
		WithContext(ctx).
		WithCancelOnError().
		WithFirstError().
		WithMaxGoroutines(s.workers())

	for i, j := range jobs {
		for k, seed := range s.Seeds {
			wp.Go(func(ctx context.Context) error {
				rng := rand.New(rand.NewSource(seed))
				res, err := j.optimizer.Run(ctx, p, rng)
				if err != nil {
					return fmt.Errorf("%s %s seed %d: %w", p.Name(), j.label, seed, err)
				}
				results[i][k] = res

				s.Metrics.ObserveRun(p.Name(), res.Algorithm, res.Evaluations, res.Elapsed)
				slog.Debug("Run complete",
					"problem", p.Name(),
					"sweep", sweep,
					"label", j.label,
					"seed", seed,
					"fitness", res.BestFitness,
					"iterations", res.Iterations)
				if s.Observer != nil {
					s.Observer(Run{Sweep: sweep, Label: j.label, Seed: seed, Result: res})
				}
				return nil
			})
		}
	}

	if err := wp.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
