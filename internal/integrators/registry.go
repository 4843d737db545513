package integrators

import (
	"fmt"
	"sort"

	"github.com/san-kum/cosmodist/internal/ode"
)

// DefaultName is the stepper used when none is configured.
const DefaultName = "trapezoid"

var registry = map[string]func() ode.Integrator{
	"euler":     func() ode.Integrator { return NewEuler() },
	"rk4":       func() ode.Integrator { return NewRK4() },
	"trapezoid": func() ode.Integrator { return NewTrapezoid() },
}

// Get returns a fresh integrator for name. An empty name selects DefaultName.
func Get(name string) (ode.Integrator, error) {
	if name == "" {
		name = DefaultName
	}
	fn, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("unknown integrator: %s (available: %v)", name, List())
	}
	return fn(), nil
}

func List() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// checkDim returns the system dimension, panicking when x does not match it.
func checkDim(sys ode.System, x ode.State) int {
	n := sys.StateDim()
	if len(x) != n {
		panic(fmt.Sprintf("integrators: state has %d components, system expects %d", len(x), n))
	}
	return n
}
