// Package problem defines the discrete optimization problems the benchmark
// optimizers run against: fixed-length integer states scored by a fitness
// function, in either free-alphabet (DiscreteOpt) or permutation (TSPOpt) form.
package problem

import (
	"errors"
	"fmt"
	"math/rand"
)

var (
	// ErrInvalidLength is returned when a problem or fitness function is
	// constructed with a non-positive length.
	ErrInvalidLength = errors.New("problem: length must be positive")

	// ErrShapeMismatch is returned when parallel input slices (weights and
	// values, coordinates and length) disagree in size.
	ErrShapeMismatch = errors.New("problem: shape mismatch")

	// ErrInvalidEdge is returned for TSP edges with out-of-range or equal endpoints.
	ErrInvalidEdge = errors.New("problem: invalid edge")
)

// Fitness scores a state. Higher is better unless the owning problem is
// configured to minimize.
type Fitness interface {
	Evaluate(state []int) float64
}

// FitnessFunc adapts an ordinary function to the Fitness interface.
type FitnessFunc func(state []int) float64

func (f FitnessFunc) Evaluate(state []int) float64 { return f(state) }

// Problem is the contract shared by all optimizers.
type Problem interface {
	// Name is a short identifier used in logs and metrics labels.
	Name() string

	// Length is the number of positions in a state.
	Length() int

	// MaxVal is the alphabet size of each position; values lie in [0, MaxVal).
	MaxVal() int

	// Maximize reports whether larger fitness is better.
	Maximize() bool

	// Permutation reports whether valid states are permutations of 0..Length-1.
	Permutation() bool

	// Fitness returns the raw fitness value of state.
	Fitness(state []int) float64

	// RandomState draws a uniformly random valid state.
	RandomState(rng *rand.Rand) []int

	// RandomNeighbor returns a copy of state with a single local move applied.
	RandomNeighbor(state []int, rng *rand.Rand) []int

	// Reproduce creates a child from two parents and applies mutation.
	Reproduce(p1, p2 []int, mutationProb float64, rng *rand.Rand) []int
}

// ValidateState checks a state against the problem's shape.
func ValidateState(p Problem, state []int) error {
	if len(state) != p.Length() {
		return fmt.Errorf("%w: state length %d, problem length %d", ErrShapeMismatch, len(state), p.Length())
	}
	if p.Permutation() {
		if !isPermutation(state) {
			return fmt.Errorf("%w: state is not a permutation of 0..%d", ErrShapeMismatch, p.Length()-1)
		}
		return nil
	}
	for i, v := range state {
		if v < 0 || v >= p.MaxVal() {
			return fmt.Errorf("%w: position %d value %d outside [0, %d)", ErrShapeMismatch, i, v, p.MaxVal())
		}
	}
	return nil
}

func isPermutation(state []int) bool {
	seen := make([]bool, len(state))
	for _, v := range state {
		if v < 0 || v >= len(state) || seen[v] {
			return false
		}
		seen[v] = true
	}
	return true
}

func cloneState(state []int) []int {
	out := make([]int, len(state))
	copy(out, state)
	return out
}
