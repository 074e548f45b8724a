package opt

import (
	"math"
	"math/rand"
	"sort"

	"github.com/cwbudde/randopt/internal/problem"
)

// population is a set of states with their internal fitness values.
type population struct {
	states  [][]int
	fitness []float64
}

func randomPopulation(p problem.Problem, ev *evaluator, size int, rng *rand.Rand) *population {
	pop := &population{
		states:  make([][]int, size),
		fitness: make([]float64, size),
	}
	for i := range pop.states {
		pop.states[i] = p.RandomState(rng)
		pop.fitness[i] = ev.eval(pop.states[i])
	}
	return pop
}

// best returns the index of the fittest member.
func (pop *population) best() int {
	idx := 0
	for i, f := range pop.fitness {
		if f > pop.fitness[idx] {
			idx = i
		}
	}
	return idx
}

// ranked returns member indices ordered from fittest to least fit. Ties keep
// their original order.
func (pop *population) ranked() []int {
	idx := make([]int, len(pop.states))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		return pop.fitness[idx[a]] > pop.fitness[idx[b]]
	})
	return idx
}

// top returns the k fittest states.
func (pop *population) top(k int) [][]int {
	if k > len(pop.states) {
		k = len(pop.states)
	}
	order := pop.ranked()
	out := make([][]int, k)
	for i := 0; i < k; i++ {
		out[i] = pop.states[order[i]]
	}
	return out
}

// roulette draws indices with probability proportional to shifted fitness.
// Fitness is shifted so the weakest finite member keeps a small positive
// weight; non-finite members are never drawn unless nothing else is.
type roulette struct {
	cumulative []float64
}

func newRoulette(fitness []float64) *roulette {
	minFit := math.Inf(1)
	for _, f := range fitness {
		if !math.IsInf(f, 0) && !math.IsNaN(f) && f < minFit {
			minFit = f
		}
	}

	const eps = 1e-9
	cum := make([]float64, len(fitness))
	var total float64
	for i, f := range fitness {
		if !math.IsInf(f, 0) && !math.IsNaN(f) {
			total += f - minFit + eps
		}
		cum[i] = total
	}
	if total <= 0 {
		for i := range cum {
			cum[i] = float64(i + 1)
		}
	}
	return &roulette{cumulative: cum}
}

func (r *roulette) draw(rng *rand.Rand) int {
	total := r.cumulative[len(r.cumulative)-1]
	x := rng.Float64() * total
	i := sort.SearchFloat64s(r.cumulative, x)
	for i < len(r.cumulative)-1 && r.cumulative[i] <= x {
		i++
	}
	return i
}
