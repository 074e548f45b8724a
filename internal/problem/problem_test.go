package problem

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBitProblem(t *testing.T, n int) *DiscreteOpt {
	t.Helper()
	p, err := NewDiscreteOpt("bits", n, FlipFlop{}, true, 2)
	require.NoError(t, err)
	return p
}

func hamming(a, b []int) int {
	var d int
	for i := range a {
		if a[i] != b[i] {
			d++
		}
	}
	return d
}

func TestDiscreteNeighborChangesOnePosition(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	for _, maxVal := range []int{2, 3, 5} {
		p, err := NewDiscreteOpt("d", 20, FlipFlop{}, true, maxVal)
		require.NoError(t, err)

		state := p.RandomState(rng)
		for i := 0; i < 50; i++ {
			next := p.RandomNeighbor(state, rng)
			assert.Equal(t, 1, hamming(state, next), "maxVal=%d", maxVal)
			require.NoError(t, ValidateState(p, next))
		}
	}
}

func TestDiscreteReproduce(t *testing.T) {
	p := newBitProblem(t, 10)
	rng := rand.New(rand.NewSource(7))

	ones := []int{1, 1, 1, 1, 1, 1, 1, 1, 1, 1}
	zeros := make([]int, 10)
	for i := 0; i < 20; i++ {
		child := p.Reproduce(ones, zeros, 0, rng)
		require.Len(t, child, 10)
		// One-point crossover without mutation yields 1...10...0 with a single switch.
		assert.Equal(t, 1, int(FlipFlop{}.Evaluate(child)))
		assert.Equal(t, 1, child[0])
		assert.Equal(t, 0, child[9])
	}

	child := p.Reproduce(zeros, zeros, 1, rng)
	assert.Equal(t, ones, child, "mutationProb=1 flips every bit")
}

func TestDiscreteOptValidation(t *testing.T) {
	_, err := NewDiscreteOpt("d", 0, FlipFlop{}, true, 2)
	assert.ErrorIs(t, err, ErrInvalidLength)

	_, err = NewDiscreteOpt("d", 3, FlipFlop{}, true, 1)
	assert.Error(t, err)

	_, err = NewDiscreteOpt("d", 3, nil, true, 2)
	assert.Error(t, err)
}

func TestTSPOptKeepsPermutations(t *testing.T) {
	ts, err := NewTravellingSales(4, squareEdges())
	require.NoError(t, err)
	p, err := NewTSPOpt("tsp", 4, ts, false)
	require.NoError(t, err)

	rng := rand.New(rand.NewSource(3))
	a := p.RandomState(rng)
	b := p.RandomState(rng)
	require.NoError(t, ValidateState(p, a))

	for i := 0; i < 100; i++ {
		n := p.RandomNeighbor(a, rng)
		require.NoError(t, ValidateState(p, n))
		assert.Equal(t, 2, hamming(a, n))

		c := p.Reproduce(a, b, 0.5, rng)
		require.NoError(t, ValidateState(p, c))
	}
}

func TestValidateState(t *testing.T) {
	p := newBitProblem(t, 3)
	assert.NoError(t, ValidateState(p, []int{0, 1, 1}))
	assert.ErrorIs(t, ValidateState(p, []int{0, 2, 1}), ErrShapeMismatch)
	assert.ErrorIs(t, ValidateState(p, []int{0, 1}), ErrShapeMismatch)
}
