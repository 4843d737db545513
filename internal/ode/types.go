package ode

import "math"

type State []float64

func (s State) Clone() State {
	c := make(State, len(s))
	copy(c, s)
	return c
}

// IsValid reports whether every component is finite.
func (s State) IsValid() bool {
	for _, v := range s {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// Add returns s + other. Missing components of a shorter other count as 0.
func (s State) Add(other State) State {
	result := make(State, len(s))
	for i := range s {
		if i < len(other) {
			result[i] = s[i] + other[i]
		} else {
			result[i] = s[i]
		}
	}
	return result
}

func (s State) Scale(factor float64) State {
	result := make(State, len(s))
	for i := range s {
		result[i] = s[i] * factor
	}
	return result
}

// System is dX/dt = f(X, t). The independent variable need not be time;
// the cosmology tables integrate in redshift.
type System interface {
	Derive(x State, t float64) State
	// StateDim is the length of the states Derive accepts. Integrators size
	// their scratch buffers from it and reject states of another length.
	StateDim() int
}

type Integrator interface {
	Step(sys System, x State, t, dt float64) State
}
