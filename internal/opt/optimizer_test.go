package opt

import (
	"context"
	"math/rand"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cwbudde/randopt/internal/problem"
)

func run(t *testing.T, o Optimizer, p problem.Problem, seed int64) *Result {
	t.Helper()
	res, err := o.Run(context.Background(), p, rand.New(rand.NewSource(seed)))
	require.NoError(t, err)
	require.NoError(t, problem.ValidateState(p, res.BestState))
	assert.Equal(t, o.Name(), res.Algorithm)
	assert.LessOrEqual(t, len(res.Curve), res.Iterations)
	assert.NotEmpty(t, res.Curve)
	assert.Greater(t, res.Evaluations, 0)
	return res
}

func TestOptimizersSolveOneMax(t *testing.T) {
	optimizers := []Optimizer{
		&RHC{MaxIters: 2000},
		&SA{Schedule: ExpDecay{InitTemp: 1, ExpConst: 0.05, MinTemp: 0.001}, MaxIters: 3000},
	}
	for _, o := range optimizers {
		t.Run(o.Name(), func(t *testing.T) {
			res := run(t, o, oneMax(t, 20), 5)
			assert.Equal(t, 20.0, res.BestFitness)
		})
	}
}

func TestOptimizersSolveKnapsack(t *testing.T) {
	optimizers := []Optimizer{
		&RHC{MaxIters: 200, MaxAttempts: 10, Restarts: 50},
		NewGA(50, 0.2, 50, 0),
		NewMIMIC(100, 0.4, 20, 0),
	}
	for _, o := range optimizers {
		t.Run(o.Name(), func(t *testing.T) {
			res := run(t, o, knapsack(t), 10)
			assert.Equal(t, 7.0, res.BestFitness)
			assert.Equal(t, []int{0, 0, 1, 1, 0}, res.BestState)
		})
	}
}

func TestOptimizersSolveSquareTour(t *testing.T) {
	optimizers := []Optimizer{
		NewRHC(100, 0),
		NewSA(10, 0.05, 0.001, 500, 0),
		NewGA(30, 0.2, 30, 0),
		NewMIMIC(50, 0.5, 20, 0),
	}
	for _, o := range optimizers {
		t.Run(o.Name(), func(t *testing.T) {
			res := run(t, o, square(t), 5)
			assert.InDelta(t, 4.0, res.BestFitness, 1e-9)
			for _, v := range res.Curve {
				assert.GreaterOrEqual(t, v, 4.0-1e-9, "tour lengths never beat the optimum")
			}
		})
	}
}

func TestCurvesNeverWorsenForElitistOptimizers(t *testing.T) {
	for _, o := range []Optimizer{NewRHC(300, 0), NewGA(40, 0.1, 40, 0)} {
		t.Run(o.Name(), func(t *testing.T) {
			res := run(t, o, oneMax(t, 30), 42)
			for i := 1; i < len(res.Curve); i++ {
				assert.GreaterOrEqual(t, res.Curve[i], res.Curve[i-1])
			}
			assert.Equal(t, res.Curve[len(res.Curve)-1], res.BestFitness)
		})
	}
}

// decaying scores every evaluation below all earlier ones, so each new
// population is strictly worse than the previous.
func decaying(t *testing.T, n int) problem.Problem {
	t.Helper()
	calls := 0
	f := problem.FitnessFunc(func([]int) float64 {
		calls++
		return -float64(calls)
	})
	p, err := problem.NewDiscreteOpt("decaying", n, f, true, 2)
	require.NoError(t, err)
	return p
}

func TestPopulationCurvesFollowCurrentGeneration(t *testing.T) {
	for _, o := range []Optimizer{NewGA(10, 0, 6, 0), NewMIMIC(10, 0.5, 6, 0)} {
		t.Run(o.Name(), func(t *testing.T) {
			res := run(t, o, decaying(t, 6), 3)
			require.Len(t, res.Curve, 6)
			for i := 1; i < len(res.Curve); i++ {
				assert.Less(t, res.Curve[i], res.Curve[i-1], "generation %d", i)
			}
			assert.Greater(t, res.BestFitness, res.Curve[0], "best state comes from the initial population")
		})
	}
}

func TestPopulationStallCountsAgainstCurrentGeneration(t *testing.T) {
	for _, o := range []Optimizer{NewGA(10, 0, 50, 3), NewMIMIC(10, 0.5, 50, 3)} {
		t.Run(o.Name(), func(t *testing.T) {
			res := run(t, o, decaying(t, 6), 3)
			assert.Equal(t, 3, res.Iterations)
		})
	}
}

func TestOptimizersDeterministic(t *testing.T) {
	for _, o := range []Optimizer{NewRHC(100, 10), NewSA(100, 0.02, 0.001, 200, 10), NewGA(20, 0.2, 20, 5), NewMIMIC(30, 0.2, 10, 5)} {
		t.Run(o.Name(), func(t *testing.T) {
			a := run(t, o, oneMax(t, 16), 123)
			b := run(t, o, oneMax(t, 16), 123)
			a.Elapsed, b.Elapsed = 0, 0
			if diff := cmp.Diff(a, b); diff != "" {
				t.Errorf("same seed produced different results (-first +second):\n%s", diff)
			}
		})
	}
}

func TestMaxAttemptsStopsEarly(t *testing.T) {
	// Every neighbor of the all-ones state is worse, so RHC stalls after MaxAttempts.
	p := oneMax(t, 8)
	r := &RHC{MaxIters: 1000, MaxAttempts: 5, InitState: []int{1, 1, 1, 1, 1, 1, 1, 1}}
	res := run(t, r, p, 1)
	assert.Equal(t, 5, res.Iterations)
	assert.Equal(t, 8.0, res.BestFitness)
}

func TestRunHonoursCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	for _, o := range []Optimizer{NewRHC(10, 0), NewSA(1, 0.1, 0.01, 10, 0), NewGA(10, 0.1, 10, 0), NewMIMIC(10, 0.5, 10, 0), NewMayfly(10, 20)} {
		t.Run(o.Name(), func(t *testing.T) {
			_, err := o.Run(ctx, oneMax(t, 4), rand.New(rand.NewSource(1)))
			assert.ErrorIs(t, err, context.Canceled)
		})
	}
}

func TestInvalidParameters(t *testing.T) {
	p := oneMax(t, 4)
	rng := rand.New(rand.NewSource(1))
	ctx := context.Background()

	invalid := []Optimizer{
		&RHC{MaxIters: 0},
		&RHC{MaxIters: 5, InitState: []int{0, 1}},
		&SA{MaxIters: 10},
		&GA{PopSize: 1, KeepPct: 0.1, MaxIters: 10},
		&GA{PopSize: 10, KeepPct: 1.5, MaxIters: 10},
		&MIMIC{PopSize: 10, KeepPct: 0, MaxIters: 10},
		&MayflyAdapter{MaxIters: 10, PopSize: 5},
	}
	for _, o := range invalid {
		_, err := o.Run(ctx, p, rng)
		assert.Error(t, err, "%s %+v", o.Name(), o)
	}
}

func TestGAElites(t *testing.T) {
	assert.Equal(t, 20, NewGA(100, 0.2, 1, 0).elites())
	assert.Equal(t, 0, NewGA(100, 0, 1, 0).elites())
	assert.Equal(t, 9, NewGA(10, 1, 1, 0).elites())
}

func TestRoulette(t *testing.T) {
	rng := rand.New(rand.NewSource(9))
	// Member 0 is the minimum and gets only epsilon weight.
	wheel := newRoulette([]float64{1, 2, 11})
	counts := make([]int, 3)
	for i := 0; i < 10000; i++ {
		counts[wheel.draw(rng)]++
	}
	assert.Less(t, counts[0], 10)
	assert.InDelta(t, 1000, counts[1], 250)
	assert.InDelta(t, 9000, counts[2], 250)

	flat := newRoulette([]float64{3, 3, 3})
	seen := map[int]bool{}
	for i := 0; i < 200; i++ {
		seen[flat.draw(rng)] = true
	}
	assert.Len(t, seen, 3)
}

func TestDependencyTreeLearnsCorrelation(t *testing.T) {
	// Position 1 always copies position 0; position 2 is independent.
	sample := [][]int{{0, 0, 1}, {1, 1, 0}, {0, 0, 0}, {1, 1, 1}, {0, 0, 1}, {1, 1, 0}}
	tree := fitDependencyTree(sample, 3, 2)

	assert.Equal(t, 0, tree.order[0])
	assert.Equal(t, 0, tree.parent[1])

	rng := rand.New(rand.NewSource(4))
	for i := 0; i < 100; i++ {
		s := tree.sample(rng, false)
		assert.Equal(t, s[0], s[1])
	}
}

func TestDependencyTreeSamplesPermutations(t *testing.T) {
	p := square(t)
	rng := rand.New(rand.NewSource(8))
	sample := [][]int{{0, 1, 2, 3}, {0, 1, 2, 3}, {1, 2, 3, 0}}
	tree := fitDependencyTree(sample, 4, 4)
	for i := 0; i < 50; i++ {
		require.NoError(t, problem.ValidateState(p, tree.sample(rng, true)))
	}
}

func TestBreadthFirstOrder(t *testing.T) {
	tests := []struct {
		name   string
		parent []int
		want   []int
	}{
		{"star", []int{-1, 0, 0, 0}, []int{0, 1, 2, 3}},
		{"two levels", []int{-1, 0, 0, 1, 2, 1}, []int{0, 1, 2, 3, 5, 4}},
		// Prim would add 0, 3, 1, 2 here; breadth-first puts 2 before 1.
		{"deep branch first", []int{-1, 3, 0, 0}, []int{0, 2, 3, 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, breadthFirst(tt.parent, 0))
		})
	}
}
