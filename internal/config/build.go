package config

import (
	"fmt"

	"github.com/cwbudde/randopt/internal/problem"
)

// Build constructs the optimization problem described by p.
func (p *Problem) Build() (problem.Problem, error) {
	name := p.PlotName
	if name == "" {
		name = p.Kind
	}

	switch p.Kind {
	case KindTSP:
		var (
			fitness *problem.TravellingSales
			err     error
		)
		if len(p.Coords) > 0 {
			coords := make([][2]float64, len(p.Coords))
			for i, c := range p.Coords {
				if len(c) != 2 {
					return nil, fmt.Errorf("city %d: %w", i, problem.ErrShapeMismatch)
				}
				coords[i] = [2]float64{c[0], c[1]}
			}
			fitness, err = problem.NewTravellingSalesCoords(coords)
		} else {
			fitness, err = problem.NewTravellingSales(p.Length, p.Distances)
		}
		if err != nil {
			return nil, fmt.Errorf("failed to build %s fitness: %w", name, err)
		}
		return problem.NewTSPOpt(name, p.Length, fitness, false)

	case KindKnapsack:
		fitness, err := problem.NewKnapsack(p.Weights, p.Values, p.MaxWeightPct)
		if err != nil {
			return nil, fmt.Errorf("failed to build %s fitness: %w", name, err)
		}
		return problem.NewDiscreteOpt(name, p.Length, fitness, true, 2)

	case KindFourPeaks:
		fitness, err := problem.NewFourPeaks(p.TPct)
		if err != nil {
			return nil, fmt.Errorf("failed to build %s fitness: %w", name, err)
		}
		return problem.NewDiscreteOpt(name, p.Length, fitness, true, 2)

	case KindFlipFlop:
		return problem.NewDiscreteOpt(name, p.Length, problem.FlipFlop{}, true, 2)

	default:
		return nil, fmt.Errorf("unknown problem kind: %s", p.Kind)
	}
}
