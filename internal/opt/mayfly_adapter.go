package opt

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"sort"
	"time"

	"github.com/cwbudde/mayfly"

	"github.com/cwbudde/randopt/internal/problem"
)

// MinMayflyPopSize is the smallest population mayfly v0.1.0 accepts.
const MinMayflyPopSize = 20

// MayflyAdapter runs the external Mayfly continuous optimizer on a discrete
// problem through a random-key encoding: each position gets a key in [0, 1)
// that is either scaled onto the value alphabet or, for permutations,
// argsorted into a tour.
type MayflyAdapter struct {
	MaxIters int
	PopSize  int
}

// NewMayfly creates a new Mayfly optimizer adapter
func NewMayfly(maxIters, popSize int) *MayflyAdapter {
	return &MayflyAdapter{MaxIters: maxIters, PopSize: popSize}
}

func (m *MayflyAdapter) Name() string { return "MAYFLY" }

// Run executes the Mayfly optimization using the external library. The
// library has no cancellation hook, so ctx is only checked before and after.
func (m *MayflyAdapter) Run(ctx context.Context, p problem.Problem, rng *rand.Rand) (*Result, error) {
	if m.MaxIters <= 0 {
		return nil, fmt.Errorf("mayfly: max iters must be positive, got %d", m.MaxIters)
	}
	if m.PopSize < MinMayflyPopSize {
		return nil, fmt.Errorf("mayfly: population size must be at least %d, got %d", MinMayflyPopSize, m.PopSize)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	start := time.Now()
	ev := newEvaluator(p)
	var (
		bestState []int
		bestFit   = math.Inf(-1)
		trace     []float64 // best-so-far after each evaluation
	)

	config := mayfly.NewDefaultConfig()
	config.ObjectiveFunc = func(keys []float64) float64 {
		state := decodeKeys(p, keys)
		f := ev.eval(state)
		if bestState == nil || f > bestFit {
			bestState, bestFit = state, f
		}
		trace = append(trace, ev.user(bestFit))
		// mayfly minimizes
		return -f
	}
	config.ProblemSize = p.Length()
	config.MaxIterations = m.MaxIters
	config.NPop = m.PopSize
	config.LowerBound = 0
	config.UpperBound = 1
	config.Rand = rand.New(rand.NewSource(rng.Int63()))

	result, err := mayfly.Optimize(config)
	if err != nil {
		return nil, fmt.Errorf("mayfly: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	final := decodeKeys(p, result.GlobalBest.Position)
	if f := ev.eval(final); f > bestFit {
		bestState, bestFit = final, f
	}

	return &Result{
		Algorithm:   m.Name(),
		BestState:   bestState,
		BestFitness: ev.user(bestFit),
		Curve:       downsample(trace, m.MaxIters),
		Iterations:  m.MaxIters,
		Evaluations: ev.count,
		Elapsed:     time.Since(start),
	}, nil
}

// decodeKeys maps a continuous key vector onto a valid state of p.
func decodeKeys(p problem.Problem, keys []float64) []int {
	n := p.Length()
	state := make([]int, n)
	if p.Permutation() {
		order := make([]int, n)
		for i := range order {
			order[i] = i
		}
		sort.SliceStable(order, func(a, b int) bool { return keys[order[a]] < keys[order[b]] })
		copy(state, order)
		return state
	}
	k := p.MaxVal()
	for i := range state {
		v := int(math.Floor(keys[i] * float64(k)))
		state[i] = min(max(v, 0), k-1)
	}
	return state
}

// downsample reduces a per-evaluation trace to points samples, taking the
// last value of each equal-sized block.
func downsample(trace []float64, points int) []float64 {
	if len(trace) == 0 || points <= 0 {
		return nil
	}
	if len(trace) <= points {
		return append([]float64(nil), trace...)
	}
	per := (len(trace) + points - 1) / points
	out := make([]float64, 0, points)
	for i := per - 1; i < len(trace); i += per {
		out = append(out, trace[i])
	}
	if len(trace)%per != 0 {
		out = append(out, trace[len(trace)-1])
	}
	return out
}
