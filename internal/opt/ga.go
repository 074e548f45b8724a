package opt

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/cwbudde/randopt/internal/problem"
)

// DefaultMutationProb is the per-child mutation probability used when GA.MutationProb is zero.
const DefaultMutationProb = 0.1

// GA is a generational genetic algorithm with fitness-proportional parent
// selection. The top KeepPct of each generation is copied unchanged into
// the next one; the rest is bred by the problem's Reproduce operator.
type GA struct {
	PopSize      int
	KeepPct      float64
	MutationProb float64
	MaxAttempts  int
	MaxIters     int
}

func NewGA(popSize int, keepPct float64, maxIters, maxAttempts int) *GA {
	return &GA{
		PopSize:      popSize,
		KeepPct:      keepPct,
		MutationProb: DefaultMutationProb,
		MaxIters:     maxIters,
		MaxAttempts:  maxAttempts,
	}
}

func (g *GA) Name() string { return "GA" }

func (g *GA) validate() error {
	if g.PopSize < 2 {
		return fmt.Errorf("ga: population size must be at least 2, got %d", g.PopSize)
	}
	if g.KeepPct < 0 || g.KeepPct > 1 {
		return fmt.Errorf("ga: keep pct must be in [0, 1], got %v", g.KeepPct)
	}
	if g.MutationProb < 0 || g.MutationProb > 1 {
		return fmt.Errorf("ga: mutation prob must be in [0, 1], got %v", g.MutationProb)
	}
	if g.MaxIters <= 0 {
		return fmt.Errorf("ga: max iters must be positive, got %d", g.MaxIters)
	}
	return nil
}

// elites is the number of members carried over each generation. At least
// one child is always bred.
func (g *GA) elites() int {
	n := int(g.KeepPct*float64(g.PopSize) + 1e-9)
	if n > g.PopSize-1 {
		n = g.PopSize - 1
	}
	return n
}

func (g *GA) Run(ctx context.Context, p problem.Problem, rng *rand.Rand) (*Result, error) {
	if err := g.validate(); err != nil {
		return nil, err
	}
	mutation := g.MutationProb
	if mutation == 0 {
		mutation = DefaultMutationProb
	}

	start := time.Now()
	ev := newEvaluator(p)
	pop := randomPopulation(p, ev, g.PopSize, rng)

	// fit is the current point: the best member of the latest population.
	b := pop.best()
	fit := pop.fitness[b]
	bestState, bestFit := cloneState(pop.states[b]), fit

	elites := g.elites()
	curve := make([]float64, 0, g.MaxIters)
	stall := newStallTracker(g.MaxAttempts)
	iters := 0
	for iters < g.MaxIters && !stall.Stalled() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		iters++

		wheel := newRoulette(pop.fitness)
		next := &population{
			states:  make([][]int, 0, g.PopSize),
			fitness: make([]float64, 0, g.PopSize),
		}
		for _, i := range pop.ranked()[:elites] {
			next.states = append(next.states, pop.states[i])
			next.fitness = append(next.fitness, pop.fitness[i])
		}
		for len(next.states) < g.PopSize {
			p1 := pop.states[wheel.draw(rng)]
			p2 := pop.states[wheel.draw(rng)]
			child := p.Reproduce(p1, p2, mutation, rng)
			next.states = append(next.states, child)
			next.fitness = append(next.fitness, ev.eval(child))
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
		Algorithm:   g.Name(),
		BestState:   bestState,
		BestFitness: ev.user(bestFit),
		Curve:       curve,
		Iterations:  iters,
		Evaluations: ev.count,
		Elapsed:     time.Since(start),
	}, nil
}
