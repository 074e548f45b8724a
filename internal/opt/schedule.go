package opt

import (
	"fmt"
	"math"
)

// Schedule returns the annealing temperature at iteration t (starting at 0).
type Schedule interface {
	Temperature(t int) float64
}

// GeomDecay: T(t) = max(InitTemp * Decay^t, MinTemp).
type GeomDecay struct {
	InitTemp float64
	Decay    float64
	MinTemp  float64
}

func (g GeomDecay) Temperature(t int) float64 {
	return math.Max(g.InitTemp*math.Pow(g.Decay, float64(t)), g.MinTemp)
}

// ArithDecay: T(t) = max(InitTemp - Decay*t, MinTemp).
type ArithDecay struct {
	InitTemp float64
	Decay    float64
	MinTemp  float64
}

func (a ArithDecay) Temperature(t int) float64 {
	return math.Max(a.InitTemp-a.Decay*float64(t), a.MinTemp)
}

// ExpDecay: T(t) = max(InitTemp * exp(-ExpConst*t), MinTemp).
type ExpDecay struct {
	InitTemp float64
	ExpConst float64
	MinTemp  float64
}

func (e ExpDecay) Temperature(t int) float64 {
	return math.Max(e.InitTemp*math.Exp(-e.ExpConst*float64(t)), e.MinTemp)
}

// validateSchedule rejects temperatures that would make SA meaningless.
func validateSchedule(s Schedule) error {
	var init, minT float64
	switch v := s.(type) {
	case GeomDecay:
		if v.Decay <= 0 || v.Decay > 1 {
			return fmt.Errorf("geometric decay must be in (0, 1], got %v", v.Decay)
		}
		init, minT = v.InitTemp, v.MinTemp
	case ArithDecay:
		if v.Decay <= 0 {
			return fmt.Errorf("arithmetic decay must be positive, got %v", v.Decay)
		}
		init, minT = v.InitTemp, v.MinTemp
	case ExpDecay:
		if v.ExpConst <= 0 {
			return fmt.Errorf("exponential decay constant must be positive, got %v", v.ExpConst)
		}
		init, minT = v.InitTemp, v.MinTemp
	case nil:
		return fmt.Errorf("schedule cannot be nil")
	default:
		return nil
	}
	if init <= 0 {
		return fmt.Errorf("initial temperature must be positive, got %v", init)
	}
	if minT < 0 || minT > init {
		return fmt.Errorf("min temperature must be in [0, %v], got %v", init, minT)
	}
	return nil
}
