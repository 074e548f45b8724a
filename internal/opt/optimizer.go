// Package opt implements the randomized optimizers compared by the benchmark:
// random hill climbing, simulated annealing, a genetic algorithm, MIMIC and a
// random-key adapter around the mayfly continuous optimizer.
//
// Every optimizer maximizes internally. Problems that minimize (tours) are
// negated on the way in and out, so Result values are always in the
// problem's own units.
package opt

import (
	"context"
	"math/rand"
	"time"

	"github.com/cwbudde/randopt/internal/problem"
)

// Optimizer defines an optimization algorithm interface
type Optimizer interface {
	// Name is the short algorithm label (RHC, SA, GA, MIMIC, MAYFLY).
	Name() string

	// Run optimizes p using rng as the only source of randomness. It returns
	// ctx.Err() if the context is cancelled between iterations.
	Run(ctx context.Context, p problem.Problem, rng *rand.Rand) (*Result, error)
}

// Result is the outcome of a single optimizer run.
type Result struct {
	Algorithm   string        `json:"algorithm"`
	BestState   []int         `json:"bestState"`
	BestFitness float64       `json:"bestFitness"`
	Curve       []float64     `json:"curve"` // fitness of the current state after each iteration
	Iterations  int           `json:"iterations"`
	Evaluations int           `json:"evaluations"`
	Elapsed     time.Duration `json:"elapsed"`
}

// evaluator counts fitness evaluations and applies the maximize sign.
type evaluator struct {
	p     problem.Problem
	sign  float64
	count int
}

func newEvaluator(p problem.Problem) *evaluator {
	sign := 1.0
	if !p.Maximize() {
		sign = -1.0
	}
	return &evaluator{p: p, sign: sign}
}

// eval returns the internal (maximized) fitness of state.
func (e *evaluator) eval(state []int) float64 {
	e.count++
	return e.sign * e.p.Fitness(state)
}

// user converts an internal fitness back to problem units.
func (e *evaluator) user(f float64) float64 {
	return e.sign * f
}

func cloneState(s []int) []int {
	out := make([]int, len(s))
	copy(out, s)
	return out
}
