package opt

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cwbudde/randopt/internal/problem"
)

func oneMax(t *testing.T, n int) problem.Problem {
	t.Helper()
	f := problem.FitnessFunc(func(s []int) float64 {
		var sum int
		for _, v := range s {
			sum += v
		}
		return float64(sum)
	})
	p, err := problem.NewDiscreteOpt("onemax", n, f, true, 2)
	require.NoError(t, err)
	return p
}

func knapsack(t *testing.T) problem.Problem {
	t.Helper()
	k, err := problem.NewKnapsack([]float64{10, 5, 2, 8, 15}, []float64{1, 2, 3, 4, 5}, 0.35)
	require.NoError(t, err)
	p, err := problem.NewDiscreteOpt("knapsack", 5, k, true, 2)
	require.NoError(t, err)
	return p
}

// square is a 4-city tour whose optimum is the perimeter, length 4.
func square(t *testing.T) problem.Problem {
	t.Helper()
	ts, err := problem.NewTravellingSales(4, []problem.Edge{
		{U: 0, V: 1, Distance: 1}, {U: 1, V: 2, Distance: 1}, {U: 2, V: 3, Distance: 1}, {U: 3, V: 0, Distance: 1},
		{U: 0, V: 2, Distance: math.Sqrt2}, {U: 1, V: 3, Distance: math.Sqrt2},
	})
	require.NoError(t, err)
	p, err := problem.NewTSPOpt("square", 4, ts, false)
	require.NoError(t, err)
	return p
}
