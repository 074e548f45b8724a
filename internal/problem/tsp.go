package problem

import (
	"fmt"
	"math/rand"
)

// TSPOpt is a permutation problem over n cities. Valid states visit every
// city exactly once.
type TSPOpt struct {
	name     string
	length   int
	maximize bool
	fitness  Fitness
}

// NewTSPOpt creates a travelling-salesman problem. Tours are usually
// minimized, so maximize is normally false.
func NewTSPOpt(name string, length int, fitness Fitness, maximize bool) (*TSPOpt, error) {
	if length < 2 {
		return nil, fmt.Errorf("%w: TSP needs at least 2 cities, got %d", ErrInvalidLength, length)
	}
	if fitness == nil {
		return nil, fmt.Errorf("problem: fitness function cannot be nil")
	}
	return &TSPOpt{name: name, length: length, maximize: maximize, fitness: fitness}, nil
}

func (t *TSPOpt) Name() string      { return t.name }
func (t *TSPOpt) Length() int       { return t.length }
func (t *TSPOpt) MaxVal() int       { return t.length }
func (t *TSPOpt) Maximize() bool    { return t.maximize }
func (t *TSPOpt) Permutation() bool { return true }

func (t *TSPOpt) Fitness(state []int) float64 {
	return t.fitness.Evaluate(state)
}

func (t *TSPOpt) RandomState(rng *rand.Rand) []int {
	return rng.Perm(t.length)
}

// RandomNeighbor swaps two distinct positions of the tour.
func (t *TSPOpt) RandomNeighbor(state []int, rng *rand.Rand) []int {
	next := cloneState(state)
	i, j := twoDistinct(t.length, rng)
	next[i], next[j] = next[j], next[i]
	return next
}

// Reproduce keeps a random-length prefix of p1 and appends the remaining
// cities in the order they appear in p2. With probability mutationProb two
// positions of the child are then swapped.
func (t *TSPOpt) Reproduce(p1, p2 []int, mutationProb float64, rng *rand.Rand) []int {
	cut := rng.Intn(t.length-1) + 1
	child := make([]int, 0, t.length)
	used := make([]bool, t.length)
	for _, c := range p1[:cut] {
		child = append(child, c)
		used[c] = true
	}
	for _, c := range p2 {
		if !used[c] {
			child = append(child, c)
			used[c] = true
		}
	}

	if rng.Float64() < mutationProb {
		i, j := twoDistinct(t.length, rng)
		child[i], child[j] = child[j], child[i]
	}
	return child
}

func twoDistinct(n int, rng *rand.Rand) (int, int) {
	i := rng.Intn(n)
	j := rng.Intn(n - 1)
	if j >= i {
		j++
	}
	return i, j
}
