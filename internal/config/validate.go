package config

import (
	"fmt"
	"math"
	"slices"
)

// ValidationError reports an invalid suite field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return "validation error: " + e.Field + " " + e.Reason
}

func invalid(field, format string, args ...any) error {
	return &ValidationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// Validate checks the whole suite, including every problem listed in Run.
func (s *Suite) Validate() error {
	if len(s.Seeds) == 0 {
		return invalid("seeds", "cannot be empty")
	}
	if s.MaxAttempts < 0 {
		return invalid("max_attempts", "cannot be negative")
	}
	if s.MutationProb < 0 || s.MutationProb > 1 {
		return invalid("mutation_prob", "must be in [0, 1], got %v", s.MutationProb)
	}
	if len(s.Run) == 0 {
		return invalid("run", "must name at least one problem")
	}
	if s.Mayfly.Enabled {
		if s.Mayfly.MaxIters <= 0 {
			return invalid("mayfly.max_iters", "must be positive")
		}
		if s.Mayfly.PopSize < 20 {
			return invalid("mayfly.pop_size", "must be at least 20")
		}
	}
	for _, kind := range s.Run {
		p, err := s.Problem(kind)
		if err != nil {
			return invalid("run", "%v", err)
		}
		if err := p.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// Validate checks an instance and both of its hyperparameter tables.
func (p *Problem) Validate() error {
	prefix := "problems." + p.Kind
	if p.Length <= 0 {
		return invalid(prefix+".length", "must be positive")
	}

	switch p.Kind {
	case KindTSP:
		if err := validateCities(p); err != nil {
			return err
		}
	case KindKnapsack:
		if len(p.Weights) != p.Length || len(p.Values) != p.Length {
			return invalid(prefix+".weights", "weights (%d) and values (%d) must both have length %d",
				len(p.Weights), len(p.Values), p.Length)
		}
		if p.MaxWeightPct <= 0 || p.MaxWeightPct > 1 {
			return invalid(prefix+".max_weight_pct", "must be in (0, 1]")
		}
	case KindFourPeaks:
		if p.TPct < 0 || p.TPct > 1 {
			return invalid(prefix+".t_pct", "must be in [0, 1]")
		}
	case KindFlipFlop:
	default:
		return invalid(prefix+".kind", "unknown kind %q", p.Kind)
	}

	o := p.Optimizations
	for name, v := range map[string]int{
		"rhc_max_iters": o.RHCMaxIters, "sa_max_iters": o.SAMaxIters,
		"ga_max_iters": o.GAMaxIters, "mimic_max_iters": o.MIMICMaxIters,
		"ga_pop_size": o.GAPopSize, "mimic_pop_size": o.MIMICPopSize,
	} {
		if v <= 0 {
			return invalid(prefix+".optimizations."+name, "must be positive")
		}
	}
	if err := validateTemps(prefix+".optimizations", o.SAInitTemp, o.SAMinTemp); err != nil {
		return err
	}
	if err := validateKeep(prefix+".optimizations.ga_keep_pct", o.GAKeepPct); err != nil {
		return err
	}
	if err := validateKeep(prefix+".optimizations.mimic_keep_pct", o.MIMICKeepPct); err != nil {
		return err
	}
	if len(o.SADecayRates.Values()) == 0 {
		return invalid(prefix+".optimizations.sa_decay_rates", "is empty")
	}
	if vals := o.PopSizes.Ints(); len(vals) == 0 || slices.Min(vals) < 2 {
		return invalid(prefix+".optimizations.pop_sizes", "must be non-empty with sizes >= 2")
	}
	keeps := o.KeepPcts.Values()
	if len(keeps) == 0 {
		return invalid(prefix+".optimizations.keep_pcts", "is empty")
	}
	for _, k := range keeps {
		if err := validateKeep(prefix+".optimizations.keep_pcts", k); err != nil {
			return err
		}
	}

	f := p.Performances
	for name, v := range map[string]int{
		"rhc_max_iters": f.RHCMaxIters, "sa_max_iters": f.SAMaxIters,
		"ga_max_iters": f.GAMaxIters, "mimic_max_iters": f.MIMICMaxIters,
		"ga_pop_size": f.GAPopSize, "mimic_pop_size": f.MIMICPopSize,
	} {
		if v <= 0 {
			return invalid(prefix+".performances."+name, "must be positive")
		}
	}
	if err := validateTemps(prefix+".performances", f.SAInitTemp, f.SAMinTemp); err != nil {
		return err
	}
	if f.SAExpDecayRate <= 0 {
		return invalid(prefix+".performances.sa_exp_decay_rate", "must be positive")
	}
	if err := validateKeep(prefix+".performances.ga_keep_pct", f.GAKeepPct); err != nil {
		return err
	}
	return validateKeep(prefix+".performances.mimic_keep_pct", f.MIMICKeepPct)
}

// validateCities checks that the TSP instance is either a coordinate list or
// a complete, duplicate-free undirected distance list.
func validateCities(p *Problem) error {
	prefix := "problems." + p.Kind
	if len(p.Coords) > 0 {
		if len(p.Coords) != p.Length {
			return invalid(prefix+".coords", "has %d cities, length is %d", len(p.Coords), p.Length)
		}
		for i, c := range p.Coords {
			if len(c) != 2 {
				return invalid(prefix+".coords", "city %d must have 2 coordinates", i)
			}
		}
		return nil
	}

	want := p.Length * (p.Length - 1) / 2
	if len(p.Distances) != want {
		return invalid(prefix+".distances", "has %d edges, %d cities need %d", len(p.Distances), p.Length, want)
	}
	seen := make(map[[2]int]bool, want)
	for _, e := range p.Distances {
		if e.U < 0 || e.V < 0 || e.U >= p.Length || e.V >= p.Length || e.U == e.V {
			return invalid(prefix+".distances", "edge (%d, %d) is out of range", e.U, e.V)
		}
		if e.Distance < 0 || math.IsNaN(e.Distance) {
			return invalid(prefix+".distances", "edge (%d, %d) has invalid distance %v", e.U, e.V, e.Distance)
		}
		key := [2]int{min(e.U, e.V), max(e.U, e.V)}
		if seen[key] {
			return invalid(prefix+".distances", "edge (%d, %d) is listed twice", e.U, e.V)
		}
		seen[key] = true
	}
	return nil
}

func validateTemps(prefix string, init, minT float64) error {
	if init <= 0 {
		return invalid(prefix+".sa_init_temp", "must be positive")
	}
	if minT <= 0 || minT > init {
		return invalid(prefix+".sa_min_temp", "must be in (0, sa_init_temp]")
	}
	return nil
}

func validateKeep(field string, v float64) error {
	if v <= 0 || v > 1 {
		return invalid(field, "must be in (0, 1], got %v", v)
	}
	return nil
}
