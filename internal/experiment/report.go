package experiment

import (
	"gonum.org/v1/gonum/stat"

	"github.com/cwbudde/randopt/internal/opt"
)

// Curve is a fitness-per-iteration curve averaged over seeds.
type Curve struct {
	Label string    `json:"label"`
	Mean  []float64 `json:"mean"`
	Std   []float64 `json:"std"`
}

// SweepPoint summarizes all seeds at one parameter value.
type SweepPoint struct {
	Value           float64 `json:"value"`
	MeanFitness     float64 `json:"meanFitness"`
	StdFitness      float64 `json:"stdFitness"`
	MeanSeconds     float64 `json:"meanSeconds"`
	MeanEvaluations float64 `json:"meanEvaluations"`
}

// Sweep varies one hyperparameter of one algorithm.
type Sweep struct {
	Algorithm string       `json:"algorithm"`
	Parameter string       `json:"parameter"`
	Points    []SweepPoint `json:"points"`
	Curves    []Curve      `json:"curves"`
	Baseline  *Curve       `json:"baseline,omitempty"`
}

// OptimizationReport is the outcome of the optimizations sweep.
type OptimizationReport struct {
	Problem  string  `json:"problem"`
	Maximize bool    `json:"maximize"`
	Seeds    []int64 `json:"seeds"`
	Sweeps   []Sweep `json:"sweeps"`
}

// AlgorithmPerformance summarizes one algorithm at fixed hyperparameters.
type AlgorithmPerformance struct {
	Algorithm       string  `json:"algorithm"`
	Curve           Curve   `json:"curve"`
	MeanFitness     float64 `json:"meanFitness"`
	StdFitness      float64 `json:"stdFitness"`
	MeanSeconds     float64 `json:"meanSeconds"`
	StdSeconds      float64 `json:"stdSeconds"`
	MeanEvaluations float64 `json:"meanEvaluations"`
	BestFitness     float64 `json:"bestFitness"`
	BestState       []int   `json:"bestState"`
}

// PerformanceReport is the outcome of the performances sweep.
type PerformanceReport struct {
	Problem    string                 `json:"problem"`
	Maximize   bool                   `json:"maximize"`
	Seeds      []int64                `json:"seeds"`
	Algorithms []AlgorithmPerformance `json:"algorithms"`
}

// Algorithm returns the entry for name, or nil.
func (r *PerformanceReport) Algorithm(name string) *AlgorithmPerformance {
	for i := range r.Algorithms {
		if r.Algorithms[i].Algorithm == name {
			return &r.Algorithms[i]
		}
	}
	return nil
}

// Sweep returns the sweep of algorithm over parameter, or nil.
func (r *OptimizationReport) Sweep(algorithm, parameter string) *Sweep {
	for i := range r.Sweeps {
		if r.Sweeps[i].Algorithm == algorithm && r.Sweeps[i].Parameter == parameter {
			return &r.Sweeps[i]
		}
	}
	return nil
}

// BestPoint returns the sweep point with the best mean fitness.
func (s *Sweep) BestPoint(maximize bool) (SweepPoint, bool) {
	if len(s.Points) == 0 {
		return SweepPoint{}, false
	}
	best := s.Points[0]
	for _, pt := range s.Points[1:] {
		if (maximize && pt.MeanFitness > best.MeanFitness) || (!maximize && pt.MeanFitness < best.MeanFitness) {
			best = pt
		}
	}
	return best, true
}

// summary holds the seed statistics of one configuration.
type summary struct {
	meanFitness, stdFitness float64
	meanSeconds, stdSeconds float64
	meanEvaluations         float64
}

// summarize uses population statistics so that a single seed has zero spread.
func summarize(results []*opt.Result) summary {
	fitness := make([]float64, len(results))
	seconds := make([]float64, len(results))
	evals := make([]float64, len(results))
	for i, r := range results {
		fitness[i] = r.BestFitness
		seconds[i] = r.Elapsed.Seconds()
		evals[i] = float64(r.Evaluations)
	}
	var s summary
	s.meanFitness, s.stdFitness = stat.PopMeanStdDev(fitness, nil)
	s.meanSeconds, s.stdSeconds = stat.PopMeanStdDev(seconds, nil)
	s.meanEvaluations = stat.Mean(evals, nil)
	return s
}

// averageCurves pads every curve to the longest one with its last value
// and returns the per-iteration mean and standard deviation. A run that
// stopped before its first iteration contributes its final fitness.
func averageCurves(label string, results []*opt.Result) Curve {
	length := 0
	for _, r := range results {
		length = max(length, len(r.Curve))
	}
	length = max(length, 1)

	padded := make([][]float64, len(results))
	for i, r := range results {
		padded[i] = padCurve(r.Curve, r.BestFitness, length)
	}

	c := Curve{Label: label, Mean: make([]float64, length), Std: make([]float64, length)}
	column := make([]float64, len(results))
	for t := 0; t < length; t++ {
		for i := range padded {
			column[i] = padded[i][t]
		}
		c.Mean[t], c.Std[t] = stat.PopMeanStdDev(column, nil)
	}
	return c
}

func padCurve(curve []float64, fallback float64, length int) []float64 {
	out := make([]float64, length)
	n := copy(out, curve)
	last := fallback
	if n > 0 {
		last = curve[n-1]
	}
	for i := n; i < length; i++ {
		out[i] = last
	}
	return out
}

// bestOf returns the best result across seeds in the problem's direction.
func bestOf(results []*opt.Result, maximize bool) *opt.Result {
	var best *opt.Result
	for _, r := range results {
		if best == nil ||
			(maximize && r.BestFitness > best.BestFitness) ||
			(!maximize && r.BestFitness < best.BestFitness) {
			best = r
		}
	}
	return best
}
