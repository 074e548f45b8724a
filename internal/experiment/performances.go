package experiment

import (
	"context"
	"log/slog"

	"github.com/cwbudde/randopt/internal/config"
	"github.com/cwbudde/randopt/internal/opt"
	"github.com/cwbudde/randopt/internal/problem"
)

// PerformanceParams configures the performances sweep.
type PerformanceParams struct {
	Settings
	Table  config.Performances
	Mayfly config.Mayfly
}

// Optimizers returns the fixed-hyperparameter optimizers compared by the
// performances sweep, in report order.
func (pp PerformanceParams) Optimizers() []opt.Optimizer {
	t := pp.Table
	ga := opt.NewGA(t.GAPopSize, t.GAKeepPct, t.GAMaxIters, pp.MaxAttempts)
	if pp.MutationProb > 0 {
		ga.MutationProb = pp.MutationProb
	}
	out := []opt.Optimizer{
		opt.NewRHC(t.RHCMaxIters, pp.MaxAttempts),
		opt.NewSA(t.SAInitTemp, t.SAExpDecayRate, t.SAMinTemp, t.SAMaxIters, pp.MaxAttempts),
		ga,
		opt.NewMIMIC(t.MIMICPopSize, t.MIMICKeepPct, t.MIMICMaxIters, pp.MaxAttempts),
	}
	if pp.Mayfly.Enabled {
		out = append(out, opt.NewMayfly(pp.Mayfly.MaxIters, pp.Mayfly.PopSize))
	}
	return out
}

// Performances runs RHC, SA, GA and MIMIC (plus Mayfly when enabled) at
// fixed hyperparameters and compares fitness, time and evaluations.
func Performances(ctx context.Context, p problem.Problem, params PerformanceParams) (*PerformanceReport, error) {
	if err := params.validate(); err != nil {
		return nil, err
	}

	optimizers := params.Optimizers()
	jobs := make([]job, len(optimizers))
	for i, o := range optimizers {
		jobs[i] = job{label: o.Name(), optimizer: o}
	}

	slog.Info("Starting performances sweep", "problem", p.Name(), "runs", len(jobs)*len(params.Seeds))
	results, err := runJobs(ctx, p, SweepPerformances, jobs, params.Settings)
	if err != nil {
		return nil, err
	}

	report := &PerformanceReport{Problem: p.Name(), Maximize: p.Maximize(), Seeds: params.Seeds}
	for i, j := range jobs {
		runs := results[i]
		s := summarize(runs)
		best := bestOf(runs, p.Maximize())
		report.Algorithms = append(report.Algorithms, AlgorithmPerformance{
			Algorithm:       j.label,
			Curve:           averageCurves(j.label, runs),
			MeanFitness:     s.meanFitness,
			StdFitness:      s.stdFitness,
			MeanSeconds:     s.meanSeconds,
			StdSeconds:      s.stdSeconds,
			MeanEvaluations: s.meanEvaluations,
			BestFitness:     best.BestFitness,
			BestState:       best.BestState,
		})
		slog.Info("Algorithm summary",
			"problem", p.Name(),
			"algorithm", j.label,
			"mean_fitness", s.meanFitness,
			"best_fitness", best.BestFitness,
			"mean_seconds", s.meanSeconds)
	}
	return report, nil
}
