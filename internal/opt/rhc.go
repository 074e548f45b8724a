package opt

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/cwbudde/randopt/internal/problem"
)

// RHC is random hill climbing with optional random restarts. A neighbor is
// only accepted if it is strictly better than the current state.
type RHC struct {
	MaxAttempts int
	MaxIters    int
	Restarts    int
	InitState   []int // used for the first climb when non-nil
}

// NewRHC creates a hill climber without restarts.
func NewRHC(maxIters, maxAttempts int) *RHC {
	return &RHC{MaxIters: maxIters, MaxAttempts: maxAttempts}
}

func (r *RHC) Name() string { return "RHC" }

// Run climbs Restarts+1 times and reports the best climb.
func (r *RHC) Run(ctx context.Context, p problem.Problem, rng *rand.Rand) (*Result, error) {
	if r.MaxIters <= 0 {
		return nil, fmt.Errorf("rhc: max iters must be positive, got %d", r.MaxIters)
	}
	if r.InitState != nil {
		if err := problem.ValidateState(p, r.InitState); err != nil {
			return nil, fmt.Errorf("rhc: invalid init state: %w", err)
		}
	}

	start := time.Now()
	ev := newEvaluator(p)
	var (
		best       *Result
		bestFit    float64
		iterations int
	)

	for restart := 0; restart <= r.Restarts; restart++ {
		var state []int
		if restart == 0 && r.InitState != nil {
			state = cloneState(r.InitState)
		} else {
			state = p.RandomState(rng)
		}
		fit := ev.eval(state)

		curve := make([]float64, 0, r.MaxIters)
		stall := newStallTracker(r.MaxAttempts)
		iters := 0
		for iters < r.MaxIters && !stall.Stalled() {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			iters++

			next := p.RandomNeighbor(state, rng)
			nextFit := ev.eval(next)
			improved := nextFit > fit
			if improved {
				state, fit = next, nextFit
			}
			stall.Update(improved)
			curve = append(curve, ev.user(fit))
		}
		iterations += iters

		if best == nil || fit > bestFit {
			bestFit = fit
			best = &Result{BestState: cloneState(state), Curve: curve}
		}
	}

	best.Algorithm = r.Name()
	best.BestFitness = ev.user(bestFit)
	best.Iterations = iterations
	best.Evaluations = ev.count
	best.Elapsed = time.Since(start)
	return best, nil
}
