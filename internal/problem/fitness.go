package problem

import (
	"fmt"
	"math"
)

// Edge is an undirected, weighted connection between two cities.
type Edge struct {
	U        int     `json:"u" yaml:"u" mapstructure:"u"`
	V        int     `json:"v" yaml:"v" mapstructure:"v"`
	Distance float64 `json:"distance" yaml:"distance" mapstructure:"distance"`
}

// TravellingSales scores a tour by its total length, including the edge
// back to the starting city. Pairs without a known distance make the tour
// infeasible and score +Inf.
type TravellingSales struct {
	n    int
	dist [][]float64
}

// NewTravellingSales builds the fitness from an undirected edge list over n cities.
func NewTravellingSales(n int, edges []Edge) (*TravellingSales, error) {
	if n < 2 {
		return nil, fmt.Errorf("%w: need at least 2 cities, got %d", ErrInvalidLength, n)
	}
	dist := make([][]float64, n)
	for i := range dist {
		dist[i] = make([]float64, n)
		for j := range dist[i] {
			if i != j {
				dist[i][j] = math.Inf(1)
			}
		}
	}
	for _, e := range edges {
		if e.U < 0 || e.U >= n || e.V < 0 || e.V >= n || e.U == e.V {
			return nil, fmt.Errorf("%w: (%d, %d) with %d cities", ErrInvalidEdge, e.U, e.V, n)
		}
		if e.Distance < 0 || math.IsNaN(e.Distance) {
			return nil, fmt.Errorf("%w: (%d, %d) has distance %v", ErrInvalidEdge, e.U, e.V, e.Distance)
		}
		dist[e.U][e.V] = e.Distance
		dist[e.V][e.U] = e.Distance
	}
	return &TravellingSales{n: n, dist: dist}, nil
}

// NewTravellingSalesCoords builds the fitness from planar city coordinates
// using Euclidean distances.
func NewTravellingSalesCoords(coords [][2]float64) (*TravellingSales, error) {
	n := len(coords)
	if n < 2 {
		return nil, fmt.Errorf("%w: need at least 2 cities, got %d", ErrInvalidLength, n)
	}
	edges := make([]Edge, 0, n*(n-1)/2)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			dx := coords[i][0] - coords[j][0]
			dy := coords[i][1] - coords[j][1]
			edges = append(edges, Edge{U: i, V: j, Distance: math.Hypot(dx, dy)})
		}
	}
	return NewTravellingSales(n, edges)
}

// Distance returns the distance between cities u and v.
func (t *TravellingSales) Distance(u, v int) float64 { return t.dist[u][v] }

// Tour returns the closed tour length, or an error if state does not visit
// every city exactly once.
func (t *TravellingSales) Tour(state []int) (float64, error) {
	if len(state) != t.n || !isPermutation(state) {
		return 0, fmt.Errorf("%w: tour must be a permutation of %d cities", ErrShapeMismatch, t.n)
	}
	var total float64
	for i := range state {
		total += t.dist[state[i]][state[(i+1)%t.n]]
	}
	return total, nil
}

// Evaluate implements Fitness. Invalid tours score +Inf.
func (t *TravellingSales) Evaluate(state []int) float64 {
	total, err := t.Tour(state)
	if err != nil {
		return math.Inf(1)
	}
	return total
}

// Knapsack scores the total value of the selected items, or zero when the
// selection exceeds the capacity ceil(maxWeightPct * sum(weights)).
type Knapsack struct {
	weights  []float64
	values   []float64
	capacity float64
}

func NewKnapsack(weights, values []float64, maxWeightPct float64) (*Knapsack, error) {
	if len(weights) == 0 {
		return nil, ErrInvalidLength
	}
	if len(weights) != len(values) {
		return nil, fmt.Errorf("%w: %d weights, %d values", ErrShapeMismatch, len(weights), len(values))
	}
	if maxWeightPct <= 0 || maxWeightPct > 1 {
		return nil, fmt.Errorf("problem: maxWeightPct must be in (0, 1], got %v", maxWeightPct)
	}
	var sum float64
	for i, w := range weights {
		if w <= 0 || values[i] <= 0 {
			return nil, fmt.Errorf("problem: knapsack weights and values must be positive (item %d)", i)
		}
		sum += w
	}
	return &Knapsack{
		weights:  append([]float64(nil), weights...),
		values:   append([]float64(nil), values...),
		capacity: math.Ceil(sum * maxWeightPct),
	}, nil
}

// Capacity is the weight limit derived from maxWeightPct.
func (k *Knapsack) Capacity() float64 { return k.capacity }

func (k *Knapsack) Evaluate(state []int) float64 {
	var weight, value float64
	for i, x := range state {
		weight += k.weights[i] * float64(x)
		value += k.values[i] * float64(x)
	}
	if weight > k.capacity {
		return 0
	}
	return value
}

// FourPeaks rewards long runs of leading ones or trailing zeros, with a
// bonus of n when both runs exceed the threshold t = ceil(tPct * n).
type FourPeaks struct {
	tPct float64
}

func NewFourPeaks(tPct float64) (*FourPeaks, error) {
	if tPct < 0 || tPct > 1 {
		return nil, fmt.Errorf("problem: tPct must be in [0, 1], got %v", tPct)
	}
	return &FourPeaks{tPct: tPct}, nil
}

func (f *FourPeaks) Evaluate(state []int) float64 {
	n := len(state)
	t := int(math.Ceil(f.tPct * float64(n)))
	h := head(1, state)
	tl := tail(0, state)
	var r int
	if h > t && tl > t {
		r = n
	}
	return float64(max(h, tl) + r)
}

// OptimumFourPeaks returns the global maximum 2n - t - 1 for a state of length n.
func OptimumFourPeaks(n int, tPct float64) float64 {
	t := int(math.Ceil(tPct * float64(n)))
	return float64(2*n - t - 1)
}

// FlipFlop counts adjacent positions holding different values.
type FlipFlop struct{}

func (FlipFlop) Evaluate(state []int) float64 {
	var count int
	for i := 1; i < len(state); i++ {
		if state[i] != state[i-1] {
			count++
		}
	}
	return float64(count)
}

func head(b int, state []int) int {
	var n int
	for _, v := range state {
		if v != b {
			break
		}
		n++
	}
	return n
}

func tail(b int, state []int) int {
	var n int
	for i := len(state) - 1; i >= 0; i-- {
		if state[i] != b {
			break
		}
		n++
	}
	return n
}
