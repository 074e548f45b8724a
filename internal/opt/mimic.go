package opt

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/cwbudde/randopt/internal/problem"
)

// MIMIC keeps the top KeepPct of each population, fits a dependency tree to
// them and samples the next population from that tree. The curve follows the
// best sample of each generation, which may be worse than an earlier one.
type MIMIC struct {
	PopSize     int
	KeepPct     float64
	MaxAttempts int
	MaxIters    int
}

func NewMIMIC(popSize int, keepPct float64, maxIters, maxAttempts int) *MIMIC {
	return &MIMIC{PopSize: popSize, KeepPct: keepPct, MaxIters: maxIters, MaxAttempts: maxAttempts}
}

func (m *MIMIC) Name() string { return "MIMIC" }

func (m *MIMIC) validate() error {
	if m.PopSize < 1 {
		return fmt.Errorf("mimic: population size must be positive, got %d", m.PopSize)
	}
	if m.KeepPct <= 0 || m.KeepPct > 1 {
		return fmt.Errorf("mimic: keep pct must be in (0, 1], got %v", m.KeepPct)
	}
	if m.MaxIters <= 0 {
		return fmt.Errorf("mimic: max iters must be positive, got %d", m.MaxIters)
	}
	return nil
}

// keep is the number of states used to fit the model.
func (m *MIMIC) keep() int {
	k := int(math.Ceil(m.KeepPct*float64(m.PopSize) - 1e-9))
	return max(k, 1)
}

func (m *MIMIC) Run(ctx context.Context, p problem.Problem, rng *rand.Rand) (*Result, error) {
	if err := m.validate(); err != nil {
		return nil, err
	}

	start := time.Now()
	ev := newEvaluator(p)
	pop := randomPopulation(p, ev, m.PopSize, rng)

	// fit is the current point: the best member of the latest population.
	b := pop.best()
	fit := pop.fitness[b]
	bestState, bestFit := cloneState(pop.states[b]), fit

	curve := make([]float64, 0, m.MaxIters)
	stall := newStallTracker(m.MaxAttempts)
	iters := 0
	for iters < m.MaxIters && !stall.Stalled() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		iters++

		tree := fitDependencyTree(pop.top(m.keep()), p.Length(), p.MaxVal())
		next := &population{
			states:  make([][]int, m.PopSize),
			fitness: make([]float64, m.PopSize),
		}
		for i := range next.states {
			next.states[i] = tree.sample(rng, p.Permutation())
			next.fitness[i] = ev.eval(next.states[i])
		}
		pop = next

		b := pop.best()
		stall.Update(pop.fitness[b] > fit)
		fit = pop.fitness[b]
		if fit > bestFit {
			bestState, bestFit = cloneState(pop.states[b]), fit
		}
		curve = append(curve, ev.user(fit))
	}

	return &Result{
		Algorithm:   m.Name(),
		BestState:   bestState,
		BestFitness: ev.user(bestFit),
		Curve:       curve,
		Iterations:  iters,
		Evaluations: ev.count,
		Elapsed:     time.Since(start),
	}, nil
}
