package opt

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/cwbudde/randopt/internal/problem"
)

// SA is simulated annealing. Better neighbors are always accepted; worse
// ones with probability exp(delta/T). Any accepted move resets the attempt
// counter.
type SA struct {
	Schedule    Schedule
	MaxAttempts int
	MaxIters    int
	InitState   []int
}

// NewSA creates an annealer with an exponential decay schedule.
func NewSA(initTemp, expConst, minTemp float64, maxIters, maxAttempts int) *SA {
	return &SA{
		Schedule:    ExpDecay{InitTemp: initTemp, ExpConst: expConst, MinTemp: minTemp},
		MaxIters:    maxIters,
		MaxAttempts: maxAttempts,
	}
}

func (s *SA) Name() string { return "SA" }

// Run anneals until the iteration cap, the attempt budget, or a zero temperature.
// BestState is the best state visited, Curve tracks the current state.
func (s *SA) Run(ctx context.Context, p problem.Problem, rng *rand.Rand) (*Result, error) {
	if s.MaxIters <= 0 {
		return nil, fmt.Errorf("sa: max iters must be positive, got %d", s.MaxIters)
	}
	if err := validateSchedule(s.Schedule); err != nil {
		return nil, fmt.Errorf("sa: %w", err)
	}

	start := time.Now()
	ev := newEvaluator(p)

	var state []int
	if s.InitState != nil {
		if err := problem.ValidateState(p, s.InitState); err != nil {
			return nil, fmt.Errorf("sa: invalid init state: %w", err)
		}
		state = cloneState(s.InitState)
	} else {
		state = p.RandomState(rng)
	}
	fit := ev.eval(state)
	bestState, bestFit := cloneState(state), fit

	curve := make([]float64, 0, s.MaxIters)
	stall := newStallTracker(s.MaxAttempts)
	iters := 0
	for iters < s.MaxIters && !stall.Stalled() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		temp := s.Schedule.Temperature(iters)
		if temp == 0 {
			break
		}
		iters++

		next := p.RandomNeighbor(state, rng)
		nextFit := ev.eval(next)
		delta := nextFit - fit
		accepted := delta > 0 || rng.Float64() < math.Exp(delta/temp)
		if accepted {
			state, fit = next, nextFit
			if fit > bestFit {
				bestState, bestFit = cloneState(state), fit
			}
		}
		stall.Update(accepted)
		curve = append(curve, ev.user(fit))
	}

	return &Result{
		Algorithm:   s.Name(),
		BestState:   bestState,
		BestFitness: ev.user(bestFit),
		Curve:       curve,
		Iterations:  iters,
		Evaluations: ev.count,
		Elapsed:     time.Since(start),
	}, nil
}
