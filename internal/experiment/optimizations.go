package experiment

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/cwbudde/randopt/internal/config"
	"github.com/cwbudde/randopt/internal/opt"
	"github.com/cwbudde/randopt/internal/problem"
)

// Swept hyperparameters.
const (
	ParamDecayRate = "decay_rate"
	ParamPopSize   = "pop_size"
	ParamKeepPct   = "keep_pct"
)

// OptimizationParams configures the optimizations sweep.
type OptimizationParams struct {
	Settings
	Table config.Optimizations
}

// sweepPlan is one sweep before it runs: the jobs and the parameter value of each.
type sweepPlan struct {
	algorithm string
	parameter string
	values    []float64
	jobs      []job
}

// Optimizations sweeps the SA decay rate, the GA and MIMIC population sizes
// and the GA and MIMIC keep percentages. RHC at its fixed iteration cap is
// reported as the baseline of the SA sweep.
func Optimizations(ctx context.Context, p problem.Problem, params OptimizationParams) (*OptimizationReport, error) {
	if err := params.validate(); err != nil {
		return nil, err
	}
	t := params.Table

	plans := []sweepPlan{
		saDecayPlan(t, params.MaxAttempts),
		gaPlan(ParamPopSize, t, params.Settings, func(v float64) (int, float64) { return int(v), t.GAKeepPct }),
		gaPlan(ParamKeepPct, t, params.Settings, func(v float64) (int, float64) { return t.GAPopSize, v }),
		mimicPlan(ParamPopSize, t, params.MaxAttempts, func(v float64) (int, float64) { return int(v), t.MIMICKeepPct }),
		mimicPlan(ParamKeepPct, t, params.MaxAttempts, func(v float64) (int, float64) { return t.MIMICPopSize, v }),
	}

	// One pool for everything so that small sweeps do not leave workers idle.
	var jobs []job
	for _, plan := range plans {
		jobs = append(jobs, plan.jobs...)
	}
	baseline := job{label: "RHC", optimizer: opt.NewRHC(t.RHCMaxIters, params.MaxAttempts)}
	jobs = append(jobs, baseline)

	slog.Info("Starting optimizations sweep", "problem", p.Name(), "runs", len(jobs)*len(params.Seeds))
	results, err := runJobs(ctx, p, SweepOptimizations, jobs, params.Settings)
	if err != nil {
		return nil, err
	}

	report := &OptimizationReport{Problem: p.Name(), Maximize: p.Maximize(), Seeds: params.Seeds}
	offset := 0
	for _, plan := range plans {
		sweep := Sweep{Algorithm: plan.algorithm, Parameter: plan.parameter}
		for i, v := range plan.values {
			runs := results[offset+i]
			s := summarize(runs)
			sweep.Points = append(sweep.Points, SweepPoint{
				Value:           v,
				MeanFitness:     s.meanFitness,
				StdFitness:      s.stdFitness,
				MeanSeconds:     s.meanSeconds,
				MeanEvaluations: s.meanEvaluations,
			})
			sweep.Curves = append(sweep.Curves, averageCurves(plan.jobs[i].label, runs))
		}
		offset += len(plan.jobs)
		report.Sweeps = append(report.Sweeps, sweep)
	}
	rhc := averageCurves(baseline.label, results[offset])
	report.Sweeps[0].Baseline = &rhc

	slog.Info("Optimizations sweep complete", "problem", p.Name(), "sweeps", len(report.Sweeps))
	return report, nil
}

func saDecayPlan(t config.Optimizations, maxAttempts int) sweepPlan {
	plan := sweepPlan{algorithm: "SA", parameter: ParamDecayRate, values: t.SADecayRates.Values()}
	for _, rate := range plan.values {
		plan.jobs = append(plan.jobs, job{
			label:     fmt.Sprintf("SA %s=%g", ParamDecayRate, rate),
			optimizer: opt.NewSA(t.SAInitTemp, rate, t.SAMinTemp, t.SAMaxIters, maxAttempts),
		})
	}
	return plan
}

func gaPlan(param string, t config.Optimizations, s Settings, at func(float64) (int, float64)) sweepPlan {
	plan := sweepPlan{algorithm: "GA", parameter: param, values: sweepValues(param, t)}
	for _, v := range plan.values {
		popSize, keepPct := at(v)
		ga := opt.NewGA(popSize, keepPct, t.GAMaxIters, s.MaxAttempts)
		if s.MutationProb > 0 {
			ga.MutationProb = s.MutationProb
		}
		plan.jobs = append(plan.jobs, job{label: fmt.Sprintf("GA %s=%g", param, v), optimizer: ga})
	}
	return plan
}

func mimicPlan(param string, t config.Optimizations, maxAttempts int, at func(float64) (int, float64)) sweepPlan {
	plan := sweepPlan{algorithm: "MIMIC", parameter: param, values: sweepValues(param, t)}
	for _, v := range plan.values {
		popSize, keepPct := at(v)
		plan.jobs = append(plan.jobs, job{
			label:     fmt.Sprintf("MIMIC %s=%g", param, v),
			optimizer: opt.NewMIMIC(popSize, keepPct, t.MIMICMaxIters, maxAttempts),
		})
	}
	return plan
}

func sweepValues(param string, t config.Optimizations) []float64 {
	if param == ParamPopSize {
		sizes := t.PopSizes.Ints()
		out := make([]float64, len(sizes))
		for i, n := range sizes {
			out[i] = float64(n)
		}
		return out
	}
	return t.KeepPcts.Values()
}
