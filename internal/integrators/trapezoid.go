package integrators

import "github.com/san-kum/cosmodist/internal/ode"

// Trapezoid is a second-order trapezoidal corrector for systems whose
// derivative for component i depends only on components 0..i-1 and t
// (lower-triangular coupling). Component i is corrected with
//
//	x'[i] = x[i] + dt/2 * (f(x, t)[i] + f(y, t+dt)[i])
//
// where y holds the already corrected components 0..i-1 and the old
// values for the rest. For a component whose derivative depends on t alone
// this is the plain trapezoidal rule. Each step costs n+1 evaluations.
type Trapezoid struct {
	k0, y ode.State
}

func NewTrapezoid() *Trapezoid {
	return &Trapezoid{}
}

func (tr *Trapezoid) Step(sys ode.System, x ode.State, t, dt float64) ode.State {
	n := checkDim(sys, x)
	if len(tr.k0) != n {
		tr.k0 = make(ode.State, n)
		tr.y = make(ode.State, n)
	}

	copy(tr.k0, sys.Derive(x, t))
	copy(tr.y, x)

	for i := 0; i < n; i++ {
		k1 := sys.Derive(tr.y, t+dt)
		tr.y[i] = x[i] + 0.5*(tr.k0[i]+k1[i])*dt
	}

	return tr.y.Clone()
}
