// Package sweep tabulates a grid of flat cosmologies in parallel and fits
// luminosity distance observations against it.
package sweep

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"

	"github.com/san-kum/cosmodist/internal/cosmo"
	"github.com/san-kum/cosmodist/internal/integrators"
)

// Grid is the cartesian product of Hubble constants (km/s/Mpc) and matter
// fractions. Every member is flat with OmegaLambda = 1 - OmegaMatter.
type Grid struct {
	H0          []float64
	OmegaMatter []float64
}

// Size is the number of grid points.
func (g Grid) Size() int { return len(g.H0) * len(g.OmegaMatter) }

// Linspace returns n values evenly spaced over [lo, hi].
func Linspace(lo, hi float64, n int) []float64 {
	if n <= 1 {
		return []float64{lo}
	}
	out := make([]float64, n)
	for i := range out {
		out[i] = lo + (hi-lo)*float64(i)/float64(n-1)
	}
	out[n-1] = hi
	return out
}

// Member is one tabulated grid point.
type Member struct {
	H0          float64
	OmegaMatter float64
	Table       *cosmo.Table
}

type Ensemble struct {
	unit       cosmo.Unit
	workers    int
	integrator string
	opts       []cosmo.Option
}

// NewEnsemble returns an ensemble that builds tables in unit. Every member
// gets its own stepper from the integrators registry by name, an empty name
// selecting the default. opts are shared by all members across goroutines,
// so they must not carry per-table state: pass the stepper by name, never
// with cosmo.WithIntegrator. workers <= 0 uses GOMAXPROCS.
func NewEnsemble(unit cosmo.Unit, workers int, integrator string, opts ...cosmo.Option) (*Ensemble, error) {
	if _, err := integrators.Get(integrator); err != nil {
		return nil, err
	}
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	return &Ensemble{unit: unit, workers: workers, integrator: integrator, opts: opts}, nil
}

// Run tabulates every member of grid up to b. Members are returned in grid
// order, H0 major. The first error cancels the remaining work.
func (e *Ensemble) Run(ctx context.Context, grid Grid, b cosmo.Bounds, cfg cosmo.ExtendConfig) ([]Member, error) {
	n := grid.Size()
	if n == 0 {
		return nil, errors.New("empty grid")
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	members := make([]Member, n)
	errs := make([]error, n)
	jobs := make(chan int)

	var wg sync.WaitGroup
	for w := 0; w < min(e.workers, n); w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				h0 := grid.H0[idx/len(grid.OmegaMatter)]
				om := grid.OmegaMatter[idx%len(grid.OmegaMatter)]
				members[idx], errs[idx] = e.build(ctx, h0, om, b, cfg)
				if errs[idx] != nil {
					cancel()
				}
			}
		}()
	}

feed:
	for i := 0; i < n; i++ {
		select {
		case jobs <- i:
		case <-ctx.Done():
			break feed
		}
	}
	close(jobs)
	wg.Wait()

	for _, err := range errs {
		if err != nil && !errors.Is(err, context.Canceled) {
			return nil, err
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return members, nil
}

func (e *Ensemble) build(ctx context.Context, h0, om float64, b cosmo.Bounds, cfg cosmo.ExtendConfig) (Member, error) {
	m := Member{H0: h0, OmegaMatter: om}
	p, err := cosmo.NewParams(cosmo.HubbleFromKmSMpc(h0), om, 0, 1.0-om, e.unit)
	if err != nil {
		return m, fmt.Errorf("h0=%g omega_m=%g: %w", h0, om, err)
	}
	integ, err := integrators.Get(e.integrator)
	if err != nil {
		return m, err
	}
	opts := append([]cosmo.Option{cosmo.WithIntegrator(integ)}, e.opts...)
	m.Table = cosmo.NewTable(p, opts...)
	if err := m.Table.ExtendContext(ctx, b, cfg); err != nil {
		return m, fmt.Errorf("h0=%g omega_m=%g: %w", h0, om, err)
	}
	return m, nil
}
