package cosmo

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/san-kum/cosmodist/internal/integrators"
	"github.com/san-kum/cosmodist/internal/ode"
)

// Sample is one tabulated point in base units (cm, cm^3).
type Sample struct {
	Z  float64
	Dc float64
	Vc float64
}

// DL is the luminosity distance Dc*(1+z) in cm.
func (s Sample) DL() float64 {
	return s.Dc * (1 + s.Z)
}

// Bounds are the targets Extend integrates towards, in base units: cm for
// distances and cm^3 for volume, so MaxDL: 1000 * MpcCGS stops near
// 1000 Mpc whatever the params' Unit. A zero, negative or NaN field places
// no constraint, since every tabulated coordinate is already >= 0.
type Bounds struct {
	MaxDL float64
	MaxDc float64
	MaxZ  float64
	MaxVc float64
}

type ExtendConfig struct {
	// Step is the fixed redshift increment. Zero selects DefaultStep.
	Step float64
	// MaxSteps bounds the steps of one call. Zero selects DefaultMaxSteps.
	MaxSteps int
	// ZCeiling is the redshift Extend never steps past. Zero selects
	// DefaultZCeiling.
	ZCeiling float64
}

func DefaultExtendConfig() ExtendConfig {
	return ExtendConfig{
		Step:     DefaultStep,
		MaxSteps: DefaultMaxSteps,
		ZCeiling: DefaultZCeiling,
	}
}

// ExtendStats describes one finished Extend call.
type ExtendStats struct {
	Steps   int
	Samples int
	LastZ   float64
	Elapsed time.Duration
	Err     error
}

type Observer interface {
	OnExtend(stats ExtendStats)
}

type Option func(*Table)

// WithIntegrator replaces the default trapezoidal stepper.
func WithIntegrator(integ ode.Integrator) Option {
	return func(t *Table) { t.integrator = integ }
}

func WithLogger(logger *slog.Logger) Option {
	return func(t *Table) { t.logger = logger }
}

func WithObserver(o Observer) Option {
	return func(t *Table) { t.observers = append(t.observers, o) }
}

// Table is an append-only table of (z, Dc, Vc) samples, strictly increasing
// in z and starting at the origin.
type Table struct {
	mu sync.RWMutex

	params *Params
	sys    distanceSystem
	z      []float64
	dc     []float64
	vc     []float64

	integrator ode.Integrator
	logger     *slog.Logger
	observers  []Observer
}

// NewTable returns a table holding only the seed sample (0, 0, 0).
func NewTable(p *Params, opts ...Option) *Table {
	if p == nil {
		panic("cosmo: NewTable called with nil params")
	}
	t := &Table{
		params:     p,
		sys:        distanceSystem{p: p},
		z:          []float64{0},
		dc:         []float64{0},
		vc:         []float64{0},
		integrator: integrators.NewTrapezoid(),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

func (t *Table) Params() *Params { return t.params }

// Extend is ExtendContext with context.Background().
func (t *Table) Extend(b Bounds, cfg ExtendConfig) error {
	return t.ExtendContext(context.Background(), b, cfg)
}

// ExtendContext integrates forward from the last sample, appending one sample
// per step, until the last sample meets or exceeds every bound. A call whose
// bounds are already met appends nothing.
//
// Samples appended before a failure are kept. Running out of steps, or
// reaching the redshift ceiling, yields an *ExtendError wrapping
// ErrBoundsUnreachable; a non-finite sample one wrapping ErrNumeric, and that
// sample is not appended. Observers run after the table is unlocked and may
// query it.
func (t *Table) ExtendContext(ctx context.Context, b Bounds, cfg ExtendConfig) error {
	rc, err := cfg.resolve()
	if err != nil {
		return err
	}

	target := Sample{Z: b.MaxZ, Dc: b.MaxDc, Vc: b.MaxVc}
	if math.IsInf(target.Z, 1) || math.IsInf(target.Dc, 1) || math.IsInf(target.Vc, 1) || math.IsInf(b.MaxDL, 1) {
		return &ExtendError{Z: t.Last().Z, Wrapped: fmt.Errorf("%w: infinite bound", ErrBoundsUnreachable)}
	}
	if target.Z > rc.zCeiling {
		return &ExtendError{Z: t.Last().Z, Wrapped: fmt.Errorf("%w: z=%g is past the ceiling %g", ErrBoundsUnreachable, target.Z, rc.zCeiling)}
	}

	stats := t.extend(ctx, target, b.MaxDL, rc)

	if t.logger != nil {
		t.logger.Debug("extended distance table",
			"steps", stats.Steps, "samples", stats.Samples,
			"last_z", stats.LastZ, "elapsed", stats.Elapsed, "err", stats.Err)
	}
	for _, o := range t.observers {
		o.OnExtend(stats)
	}

	return stats.Err
}

// extend runs the stepping loop under the write lock.
func (t *Table) extend(ctx context.Context, target Sample, maxDL float64, rc resolvedConfig) ExtendStats {
	t.mu.Lock()
	defer t.mu.Unlock()

	start := time.Now()
	last := t.lastLocked()
	steps := 0
	var err error

	for below(last, target, maxDL) {
		select {
		case <-ctx.Done():
			err = &ExtendError{Step: steps, Z: last.Z, Wrapped: ctx.Err()}
		default:
		}
		if err != nil {
			break
		}
		if steps >= rc.maxSteps {
			err = &ExtendError{Step: steps, Z: last.Z, Wrapped: ErrBoundsUnreachable}
			break
		}
		if last.Z >= rc.zCeiling {
			err = &ExtendError{Step: steps, Z: last.Z, Wrapped: fmt.Errorf("%w: reached the redshift ceiling %g", ErrBoundsUnreachable, rc.zCeiling)}
			break
		}

		next, stepErr := t.step(last, rc.step)
		if stepErr != nil {
			err = &ExtendError{Step: steps, Z: last.Z, Wrapped: stepErr}
			break
		}

		t.z = append(t.z, next.Z)
		t.dc = append(t.dc, next.Dc)
		t.vc = append(t.vc, next.Vc)
		last = next
		steps++
	}

	return ExtendStats{
		Steps:   steps,
		Samples: len(t.z),
		LastZ:   last.Z,
		Elapsed: time.Since(start),
		Err:     err,
	}
}

// step advances one sample. The volume derivative at the new redshift is
// evaluated with the freshly integrated Dc carried in the state, never with
// a table lookup.
func (t *Table) step(last Sample, dz float64) (Sample, error) {
	x := ode.State{last.Dc, last.Vc}
	nx := t.integrator.Step(t.sys, x, last.Z, dz)
	next := Sample{Z: last.Z + dz, Dc: nx[0], Vc: nx[1]}

	if !nx.IsValid() || math.IsNaN(next.Z) || math.IsInf(next.Z, 0) {
		return Sample{}, fmt.Errorf("%w: z=%g Dc=%g Vc=%g", ErrNumeric, next.Z, next.Dc, next.Vc)
	}
	return next, nil
}

func below(s, target Sample, maxDL float64) bool {
	return s.Dc < target.Dc || s.DL() < maxDL || s.Z < target.Z || s.Vc < target.Vc
}

type resolvedConfig struct {
	step     float64
	maxSteps int
	zCeiling float64
}

func (cfg ExtendConfig) resolve() (resolvedConfig, error) {
	rc := resolvedConfig{step: cfg.Step, maxSteps: cfg.MaxSteps, zCeiling: cfg.ZCeiling}
	if rc.step == 0 {
		rc.step = DefaultStep
	}
	if rc.maxSteps == 0 {
		rc.maxSteps = DefaultMaxSteps
	}
	if rc.zCeiling == 0 {
		rc.zCeiling = DefaultZCeiling
	}
	if !(rc.step > 0) || math.IsInf(rc.step, 0) {
		return rc, fmt.Errorf("%w: step must be positive and finite, got %g", ErrConfiguration, rc.step)
	}
	if rc.maxSteps < 0 {
		return rc, fmt.Errorf("%w: max steps must be positive, got %d", ErrConfiguration, rc.maxSteps)
	}
	if !(rc.zCeiling > 0) {
		return rc, fmt.Errorf("%w: redshift ceiling must be positive, got %g", ErrConfiguration, rc.zCeiling)
	}
	return rc, nil
}

func (t *Table) lastLocked() Sample {
	n := len(t.z) - 1
	return Sample{Z: t.z[n], Dc: t.dc[n], Vc: t.vc[n]}
}

// Last returns the highest-redshift sample.
func (t *Table) Last() Sample {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.lastLocked()
}

// Len is the number of samples, including the seed.
func (t *Table) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.z)
}

// MaxZ is the largest tabulated redshift.
func (t *Table) MaxZ() float64 {
	return t.Last().Z
}

// Samples returns a copy of the table.
func (t *Table) Samples() []Sample {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]Sample, len(t.z))
	for i := range t.z {
		out[i] = Sample{Z: t.z[i], Dc: t.dc[i], Vc: t.vc[i]}
	}
	return out
}

// distanceSystem is the state (Dc, Vc) as a function of z:
//
//	dDc/dz = (c/Ho)/E(z)
//	dVc/dz = 4 pi Dc^2 dDc/dz
type distanceSystem struct {
	p *Params
}

func (s distanceSystem) Derive(x ode.State, z float64) ode.State {
	d := s.p.dDcdz(z)
	return ode.State{d, 4 * math.Pi * x[0] * x[0] * d}
}

func (s distanceSystem) StateDim() int { return 2 }
