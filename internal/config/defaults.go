package config

import (
	"runtime"

	"github.com/cwbudde/randopt/internal/problem"
)

// DefaultMaxAttempts is the consecutive non-improving step budget shared by
// every optimizer.
const DefaultMaxAttempts = 100

// DefaultSeeds returns 5 + 5*i for i in [0, 2).
func DefaultSeeds() []int64 {
	seeds := make([]int64, 2)
	for i := range seeds {
		seeds[i] = int64(5 + 5*i)
	}
	return seeds
}

// CityDistances is the 8-city distance list of the TSP instance.
func CityDistances() []problem.Edge {
	return []problem.Edge{
		{U: 0, V: 1, Distance: 3.1623}, {U: 0, V: 2, Distance: 4.1231}, {U: 0, V: 3, Distance: 5.8310},
		{U: 0, V: 4, Distance: 4.2426}, {U: 0, V: 5, Distance: 5.3852}, {U: 0, V: 6, Distance: 4.0000},
		{U: 0, V: 7, Distance: 2.2361}, {U: 1, V: 2, Distance: 1.0000}, {U: 1, V: 3, Distance: 2.8284},
		{U: 1, V: 4, Distance: 2.0000}, {U: 1, V: 5, Distance: 4.1231}, {U: 1, V: 6, Distance: 4.2426},
		{U: 1, V: 7, Distance: 2.2361}, {U: 2, V: 3, Distance: 2.2361}, {U: 2, V: 4, Distance: 2.2361},
		{U: 2, V: 5, Distance: 4.4721}, {U: 2, V: 6, Distance: 5.0000}, {U: 2, V: 7, Distance: 3.1623},
		{U: 3, V: 4, Distance: 2.0000}, {U: 3, V: 5, Distance: 3.6056}, {U: 3, V: 6, Distance: 5.0990},
		{U: 3, V: 7, Distance: 4.1231}, {U: 4, V: 5, Distance: 2.2361}, {U: 4, V: 6, Distance: 3.1623},
		{U: 4, V: 7, Distance: 2.2361}, {U: 5, V: 6, Distance: 2.2361}, {U: 5, V: 7, Distance: 3.1623},
		{U: 6, V: 7, Distance: 2.2361},
	}
}

// Default returns the reference suite.
func Default() *Suite {
	return &Suite{
		Seeds:        DefaultSeeds(),
		MaxAttempts:  DefaultMaxAttempts,
		MutationProb: 0.1,
		Workers:      runtime.NumCPU(),
		OutputDir:    "./plots",
		DataDir:      "./data",
		Run:          []string{KindTSP, KindKnapsack, KindFourPeaks},
		Mayfly: Mayfly{
			Enabled:  false,
			MaxIters: 100,
			PopSize:  20,
		},
		Problems: Problems{
			TSP: Problem{
				Kind:       KindTSP,
				PlotName:   "TSP",
				PlotYLabel: "Fitness",
				Length:     8,
				Distances:  CityDistances(),
				Optimizations: Optimizations{
					RHCMaxIters: 500, SAMaxIters: 500, GAMaxIters: 50, MIMICMaxIters: 50,
					SAInitTemp: 100, SADecayRates: Range{0.005, 0.05, 0.005}, SAMinTemp: 0.001,
					GAPopSize: 100, MIMICPopSize: 100, GAKeepPct: 0.2, MIMICKeepPct: 0.2,
					PopSizes: Range{100, 401, 100}, KeepPcts: Range{0.1, 0.51, 0.1},
				},
				Performances: Performances{
					RHCMaxIters: 500, SAMaxIters: 500, GAMaxIters: 500, MIMICMaxIters: 500,
					SAInitTemp: 100, SAExpDecayRate: 0.02, SAMinTemp: 0.001,
					GAPopSize: 100, GAKeepPct: 0.15,
					MIMICPopSize: 300, MIMICKeepPct: 0.5,
				},
			},
			Knapsack: Problem{
				Kind:         KindKnapsack,
				PlotName:     "Knapsack",
				PlotYLabel:   "Fitness",
				Length:       5,
				Weights:      []float64{10, 5, 2, 8, 15},
				Values:       []float64{1, 2, 3, 4, 5},
				MaxWeightPct: 0.35,
				Optimizations: Optimizations{
					RHCMaxIters: 1000, SAMaxIters: 1000, GAMaxIters: 250, MIMICMaxIters: 50,
					SAInitTemp: 100, SADecayRates: Range{0.05, 2.01, 0.05}, SAMinTemp: 0.001,
					GAPopSize: 300, MIMICPopSize: 1500, GAKeepPct: 0.2, MIMICKeepPct: 0.4,
					PopSizes: Range{100, 2001, 200}, KeepPcts: Range{0.1, 0.81, 0.1},
				},
				Performances: Performances{
					RHCMaxIters: 1000, SAMaxIters: 1000, GAMaxIters: 500, MIMICMaxIters: 100,
					SAInitTemp: 100, SAExpDecayRate: 0.020, SAMinTemp: 0.001,
					GAPopSize: 100, GAKeepPct: 0.2,
					MIMICPopSize: 300, MIMICKeepPct: 0.4,
				},
			},
			FourPeaks: Problem{
				Kind:       KindFourPeaks,
				PlotName:   "Four Peaks",
				PlotYLabel: "Fitness",
				Length:     100,
				TPct:       0.1,
				Optimizations: Optimizations{
					RHCMaxIters: 100, SAMaxIters: 1000, GAMaxIters: 50, MIMICMaxIters: 50,
					SAInitTemp: 100, SADecayRates: Range{0.002, 0.04, 0.002}, SAMinTemp: 0.001,
					GAPopSize: 1000, MIMICPopSize: 1000, GAKeepPct: 0.1, MIMICKeepPct: 0.2,
					PopSizes: Range{100, 1001, 100}, KeepPcts: Range{0.1, 0.51, 0.1},
				},
				Performances: Performances{
					RHCMaxIters: 1000, SAMaxIters: 5000, GAMaxIters: 100, MIMICMaxIters: 100,
					SAInitTemp: 100, SAExpDecayRate: 0.02, SAMinTemp: 0.001,
					GAPopSize: 1000, GAKeepPct: 0.1,
					MIMICPopSize: 1000, MIMICKeepPct: 0.2,
				},
			},
			// Not part of the default run; enable with `run: [flipflop]`.
			FlipFlop: Problem{
				Kind:       KindFlipFlop,
				PlotName:   "Flip Flop",
				PlotYLabel: "Fitness",
				Length:     50,
				Optimizations: Optimizations{
					RHCMaxIters: 500, SAMaxIters: 1000, GAMaxIters: 100, MIMICMaxIters: 50,
					SAInitTemp: 100, SADecayRates: Range{0.005, 0.05, 0.005}, SAMinTemp: 0.001,
					GAPopSize: 200, MIMICPopSize: 500, GAKeepPct: 0.2, MIMICKeepPct: 0.2,
					PopSizes: Range{100, 501, 100}, KeepPcts: Range{0.1, 0.51, 0.1},
				},
				Performances: Performances{
					RHCMaxIters: 1000, SAMaxIters: 1000, GAMaxIters: 200, MIMICMaxIters: 100,
					SAInitTemp: 100, SAExpDecayRate: 0.02, SAMinTemp: 0.001,
					GAPopSize: 200, GAKeepPct: 0.2,
					MIMICPopSize: 500, MIMICKeepPct: 0.2,
				},
			},
		},
	}
}
