package problem

import (
	"fmt"
	"math/rand"
)

// DiscreteOpt is a fixed-length problem where every position independently
// takes a value in [0, maxVal).
type DiscreteOpt struct {
	name     string
	length   int
	maxVal   int
	maximize bool
	fitness  Fitness
}

// NewDiscreteOpt creates a discrete problem. maxVal must be at least 2.
func NewDiscreteOpt(name string, length int, fitness Fitness, maximize bool, maxVal int) (*DiscreteOpt, error) {
	if length <= 0 {
		return nil, ErrInvalidLength
	}
	if maxVal < 2 {
		return nil, fmt.Errorf("problem: maxVal must be >= 2, got %d", maxVal)
	}
	if fitness == nil {
		return nil, fmt.Errorf("problem: fitness function cannot be nil")
	}
	return &DiscreteOpt{
		name:     name,
		length:   length,
		maxVal:   maxVal,
		maximize: maximize,
		fitness:  fitness,
	}, nil
}

func (d *DiscreteOpt) Name() string      { return d.name }
func (d *DiscreteOpt) Length() int       { return d.length }
func (d *DiscreteOpt) MaxVal() int       { return d.maxVal }
func (d *DiscreteOpt) Maximize() bool    { return d.maximize }
func (d *DiscreteOpt) Permutation() bool { return false }

func (d *DiscreteOpt) Fitness(state []int) float64 {
	return d.fitness.Evaluate(state)
}

func (d *DiscreteOpt) RandomState(rng *rand.Rand) []int {
	state := make([]int, d.length)
	for i := range state {
		state[i] = rng.Intn(d.maxVal)
	}
	return state
}

// RandomNeighbor changes exactly one position to a different value. For
// binary alphabets that is a bit flip.
func (d *DiscreteOpt) RandomNeighbor(state []int, rng *rand.Rand) []int {
	next := cloneState(state)
	i := rng.Intn(d.length)
	if d.maxVal == 2 {
		next[i] = 1 - next[i]
		return next
	}
	v := rng.Intn(d.maxVal - 1)
	if v >= next[i] {
		v++
	}
	next[i] = v
	return next
}

// Reproduce performs one-point crossover followed by per-position mutation.
func (d *DiscreteOpt) Reproduce(p1, p2 []int, mutationProb float64, rng *rand.Rand) []int {
	child := make([]int, d.length)
	if d.length > 1 {
		cut := rng.Intn(d.length-1) + 1
		copy(child[:cut], p1[:cut])
		copy(child[cut:], p2[cut:])
	} else if rng.Intn(2) == 0 {
		copy(child, p1)
	} else {
		copy(child, p2)
	}

	for i := range child {
		if rng.Float64() >= mutationProb {
			continue
		}
		if d.maxVal == 2 {
			child[i] = 1 - child[i]
			continue
		}
		v := rng.Intn(d.maxVal - 1)
		if v >= child[i] {
			v++
		}
		child[i] = v
	}
	return child
}
