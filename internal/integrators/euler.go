package integrators

import "github.com/san-kum/cosmodist/internal/ode"

type Euler struct{}

func NewEuler() *Euler {
	return &Euler{}
}

func (e *Euler) Step(sys ode.System, x ode.State, t, dt float64) ode.State {
	checkDim(sys, x)
	return x.Add(sys.Derive(x, t).Scale(dt))
}
