package cosmo

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/san-kum/cosmodist/internal/integrators"
)

func mustParams(t *testing.T, om, or, ol float64, unit Unit) *Params {
	t.Helper()
	p, err := NewParams(HubbleFromKmSMpc(70), om, or, ol, unit)
	if err != nil {
		t.Fatalf("NewParams: %v", err)
	}
	return p
}

func TestNewTable_Seed(t *testing.T) {
	tbl := NewTable(Planck2018Params())

	if tbl.Len() != 1 {
		t.Fatalf("expected 1 seed sample, got %d", tbl.Len())
	}
	if tbl.Last() != (Sample{}) {
		t.Errorf("expected seed at origin, got %+v", tbl.Last())
	}
}

func TestExtend_MaxZ(t *testing.T) {
	tbl := NewTable(Planck2018Params())

	if err := tbl.Extend(Bounds{MaxZ: 1.0}, ExtendConfig{Step: 0.001}); err != nil {
		t.Fatalf("extend failed: %v", err)
	}

	last := tbl.Last()
	if last.Z < 1.0 || last.Z-1.0 > 0.001 {
		t.Errorf("last z = %.15f, expected within one step above 1", last.Z)
	}
	if tbl.Len() != 1001 {
		t.Errorf("expected 1001 samples, got %d", tbl.Len())
	}

	n := tbl.Len()
	if err := tbl.Extend(Bounds{MaxZ: 0.5}, ExtendConfig{Step: 0.001}); err != nil {
		t.Fatalf("second extend failed: %v", err)
	}
	if tbl.Len() != n {
		t.Errorf("satisfied extend changed length: %d -> %d", n, tbl.Len())
	}
}

// meets reports whether s satisfies every constrained field of b.
func meets(s Sample, b Bounds) bool {
	return s.Z >= b.MaxZ && s.DL() >= b.MaxDL && s.Dc >= b.MaxDc && s.Vc >= b.MaxVc
}

func TestExtend_DistanceBounds(t *testing.T) {
	const mpc3 = MpcCGS * MpcCGS * MpcCGS

	tests := []struct {
		name   string
		bounds Bounds
	}{
		{"luminosity distance", Bounds{MaxDL: 5000 * MpcCGS}},
		{"comoving distance", Bounds{MaxDc: 3000 * MpcCGS}},
		{"comoving volume", Bounds{MaxVc: 1e11 * mpc3}},
		{"redshift binds", Bounds{MaxZ: 2, MaxDc: 100 * MpcCGS, MaxDL: 100 * MpcCGS, MaxVc: mpc3}},
		{"luminosity distance binds", Bounds{MaxZ: 0.5, MaxDL: 5000 * MpcCGS, MaxDc: 100 * MpcCGS, MaxVc: 1e9 * mpc3}},
		{"comoving volume binds", Bounds{MaxZ: 0.3, MaxDL: 2000 * MpcCGS, MaxVc: 2e11 * mpc3}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tbl := NewTable(Planck2018Params())
			if err := tbl.Extend(tt.bounds, ExtendConfig{}); err != nil {
				t.Fatalf("extend failed: %v", err)
			}
			samples := tbl.Samples()
			last := samples[len(samples)-1]
			if !meets(last, tt.bounds) {
				t.Errorf("bounds %+v not met by last sample %+v", tt.bounds, last)
			}
			if len(samples) > 2 && meets(samples[len(samples)-2], tt.bounds) {
				t.Error("integration overshot by more than one step")
			}
		})
	}
}

func TestExtend_BoundsInBaseUnits(t *testing.T) {
	for _, unit := range []Unit{UnitMpc, UnitCm} {
		t.Run(unit.String(), func(t *testing.T) {
			p, err := NewParams(HubbleFromKmSMpc(Planck2018H0()), Planck2018OmegaMatter(),
				Planck2018OmegaRadiation(), Planck2018OmegaLambda(), unit)
			if err != nil {
				t.Fatalf("NewParams: %v", err)
			}
			tbl := NewTable(p)

			if err := tbl.Extend(Bounds{MaxDL: 1000 * MpcCGS}, ExtendConfig{MaxSteps: 100000}); err != nil {
				t.Fatalf("extend failed: %v", err)
			}
			if dl := tbl.Last().DL() / MpcCGS; dl < 1000 || dl > 1006 {
				t.Errorf("last DL = %g Mpc, expected just above 1000", dl)
			}
			if z := tbl.MaxZ(); z < 0.19 || z > 0.21 {
				t.Errorf("expected to stop near z=0.2, got %g", z)
			}
		})
	}
}

func TestExtend_Monotonic(t *testing.T) {
	tbl := NewTable(mustParams(t, 0.25, 0, 0.75, UnitMpc))

	for _, z := range []float64{0.2, 0.7, 0.7, 1.5} {
		if err := tbl.Extend(Bounds{MaxZ: z}, ExtendConfig{Step: 0.01}); err != nil {
			t.Fatalf("extend to %g failed: %v", z, err)
		}
	}

	samples := tbl.Samples()
	for i := 1; i < len(samples); i++ {
		if samples[i].Z <= samples[i-1].Z {
			t.Fatalf("z not strictly increasing at %d", i)
		}
		if samples[i].Dc < samples[i-1].Dc || samples[i].Vc < samples[i-1].Vc {
			t.Fatalf("Dc or Vc decreasing at %d", i)
		}
	}
}

func TestExtend_EinsteinDeSitterAnalytic(t *testing.T) {
	p := mustParams(t, 1, 0, 0, UnitMpc)
	tbl := NewTable(p)
	if err := tbl.Extend(Bounds{MaxZ: 3}, ExtendConfig{}); err != nil {
		t.Fatalf("extend failed: %v", err)
	}

	for _, z := range []float64{0.5, 1, 2, 3} {
		want := 2 * p.HubbleDistance() * (1 - 1/math.Sqrt(1+z))
		got := tbl.Z2Dc(z)
		if rel := math.Abs(got-want) / want; rel > 1e-5 {
			t.Errorf("Dc(%g): got %g, expected %g (rel %e)", z, got, want, rel)
		}

		wantVc := 4.0 / 3.0 * math.Pi * want * want * want
		gotVc := tbl.Z2Vc(z)
		if rel := math.Abs(gotVc-wantVc) / wantVc; rel > 1e-4 {
			t.Errorf("Vc(%g): got %g, expected %g (rel %e)", z, gotVc, wantVc, rel)
		}
	}
}

func TestExtend_IntegratorsAgree(t *testing.T) {
	p := Planck2018Params()
	ref := NewTable(p)
	rk := NewTable(p, WithIntegrator(integrators.NewRK4()))

	for _, tbl := range []*Table{ref, rk} {
		if err := tbl.Extend(Bounds{MaxZ: 1}, ExtendConfig{Step: 0.01}); err != nil {
			t.Fatalf("extend failed: %v", err)
		}
	}

	a, b := ref.Z2DL(1), rk.Z2DL(1)
	if math.Abs(a-b)/b > 1e-4 {
		t.Errorf("trapezoid and rk4 disagree: %g vs %g", a, b)
	}
	if math.Abs(b-6807.46) > 0.5 {
		t.Errorf("DL(1) = %g Mpc, expected about 6807.46", b)
	}
}

func TestExtend_BoundsUnreachable(t *testing.T) {
	tbl := NewTable(Planck2018Params())

	err := tbl.Extend(Bounds{MaxDc: 1e6 * MpcCGS}, ExtendConfig{Step: 0.01, MaxSteps: 500})
	if !errors.Is(err, ErrBoundsUnreachable) {
		t.Fatalf("expected ErrBoundsUnreachable, got %v", err)
	}

	var extErr *ExtendError
	if !errors.As(err, &extErr) {
		t.Fatalf("expected *ExtendError, got %T", err)
	}
	if extErr.Step != 500 {
		t.Errorf("expected failure after 500 steps, got %d", extErr.Step)
	}
	if tbl.Len() != 501 {
		t.Errorf("expected completed samples to be kept, got %d", tbl.Len())
	}
}

func TestExtend_RedshiftCeiling(t *testing.T) {
	tbl := NewTable(Planck2018Params())

	// Comoving distance converges to about 14 Gpc, so this never binds.
	err := tbl.Extend(Bounds{MaxDc: 1e6 * MpcCGS}, ExtendConfig{Step: 0.5})
	if !errors.Is(err, ErrBoundsUnreachable) {
		t.Fatalf("expected ErrBoundsUnreachable, got %v", err)
	}
	if z := tbl.MaxZ(); z != DefaultZCeiling {
		t.Errorf("expected to stop at the ceiling %g, got %g", DefaultZCeiling, z)
	}
	if tbl.Len() != 2201 {
		t.Errorf("expected 2201 samples, got %d", tbl.Len())
	}

	small := NewTable(Planck2018Params())
	err = small.Extend(Bounds{MaxDc: 1e6 * MpcCGS}, ExtendConfig{Step: 0.25, ZCeiling: 10})
	if !errors.Is(err, ErrBoundsUnreachable) {
		t.Fatalf("expected ErrBoundsUnreachable, got %v", err)
	}
	if small.MaxZ() != 10 || small.Len() != 41 {
		t.Errorf("custom ceiling: got z=%g with %d samples", small.MaxZ(), small.Len())
	}
}

func TestExtend_RedshiftBoundPastCeiling(t *testing.T) {
	tbl := NewTable(Planck2018Params())

	err := tbl.Extend(Bounds{MaxZ: 2 * DefaultZCeiling}, ExtendConfig{})
	if !errors.Is(err, ErrBoundsUnreachable) {
		t.Fatalf("expected ErrBoundsUnreachable, got %v", err)
	}
	if tbl.Len() != 1 {
		t.Errorf("expected no samples appended, got %d", tbl.Len())
	}

	if err := tbl.Extend(Bounds{MaxZ: 1}, ExtendConfig{ZCeiling: -1}); !errors.Is(err, ErrConfiguration) {
		t.Errorf("negative ceiling: expected ErrConfiguration, got %v", err)
	}
}

func TestExtend_InfiniteBound(t *testing.T) {
	tbl := NewTable(Planck2018Params())

	err := tbl.Extend(Bounds{MaxZ: math.Inf(1)}, ExtendConfig{})
	if !errors.Is(err, ErrBoundsUnreachable) {
		t.Fatalf("expected ErrBoundsUnreachable, got %v", err)
	}
	if tbl.Len() != 1 {
		t.Errorf("expected no samples appended, got %d", tbl.Len())
	}
}

func TestExtend_NumericError(t *testing.T) {
	// E^2 = 2 - (1+z)^3 turns negative just above z = 0.26.
	p := mustParams(t, -1, 0, 2, UnitMpc)
	tbl := NewTable(p)

	err := tbl.Extend(Bounds{MaxZ: 1}, ExtendConfig{})
	if !errors.Is(err, ErrNumeric) {
		t.Fatalf("expected ErrNumeric, got %v", err)
	}

	for i, s := range tbl.Samples() {
		if !finite(s.Z) || !finite(s.Dc) || !finite(s.Vc) {
			t.Fatalf("non-finite sample %d appended: %+v", i, s)
		}
	}
	if z := tbl.MaxZ(); z > 0.26 || z < 0.25 {
		t.Errorf("expected integration to stop near z=0.26, got %g", z)
	}
}

func TestExtend_InvalidStep(t *testing.T) {
	tbl := NewTable(Planck2018Params())

	for _, step := range []float64{-0.1, math.NaN(), math.Inf(1)} {
		err := tbl.Extend(Bounds{MaxZ: 1}, ExtendConfig{Step: step})
		if !errors.Is(err, ErrConfiguration) {
			t.Errorf("step %g: expected ErrConfiguration, got %v", step, err)
		}
	}
	if err := tbl.Extend(Bounds{MaxZ: 1}, ExtendConfig{MaxSteps: -1}); !errors.Is(err, ErrConfiguration) {
		t.Errorf("negative max steps: expected ErrConfiguration, got %v", err)
	}
}

func TestExtend_ContextCanceled(t *testing.T) {
	tbl := NewTable(Planck2018Params())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := tbl.ExtendContext(ctx, Bounds{MaxZ: 1}, ExtendConfig{})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if tbl.Len() != 1 {
		t.Errorf("expected no samples after cancellation, got %d", tbl.Len())
	}
}

type recordingObserver struct {
	calls []ExtendStats
}

func (r *recordingObserver) OnExtend(stats ExtendStats) {
	r.calls = append(r.calls, stats)
}

func TestExtend_Observer(t *testing.T) {
	obs := &recordingObserver{}
	tbl := NewTable(Planck2018Params(), WithObserver(obs))

	if err := tbl.Extend(Bounds{MaxZ: 0.1}, ExtendConfig{Step: 0.01}); err != nil {
		t.Fatalf("extend failed: %v", err)
	}
	_ = tbl.Extend(Bounds{MaxZ: 0.05}, ExtendConfig{Step: 0.01})

	if len(obs.calls) != 2 {
		t.Fatalf("expected 2 observations, got %d", len(obs.calls))
	}
	if obs.calls[0].Steps == 0 || obs.calls[0].Samples != tbl.Len() {
		t.Errorf("unexpected first stats: %+v", obs.calls[0])
	}
	if obs.calls[1].Steps != 0 {
		t.Errorf("satisfied extend reported %d steps", obs.calls[1].Steps)
	}
	if obs.calls[0].Elapsed < 0 || obs.calls[0].Elapsed > time.Minute {
		t.Errorf("implausible elapsed time %v", obs.calls[0].Elapsed)
	}
}

// lenObserver queries the table it observes.
type lenObserver struct {
	tbl  *Table
	lens []int
	dl   float64
}

func (o *lenObserver) OnExtend(stats ExtendStats) {
	o.lens = append(o.lens, o.tbl.Len())
	o.dl = o.tbl.Z2DL(o.tbl.MaxZ())
}

func TestExtend_ObserverMayQueryTable(t *testing.T) {
	obs := &lenObserver{}
	tbl := NewTable(Planck2018Params(), WithObserver(obs))
	obs.tbl = tbl

	done := make(chan error, 1)
	go func() { done <- tbl.Extend(Bounds{MaxZ: 0.01}, ExtendConfig{}) }()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("extend failed: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Extend did not return while an observer queried the table")
	}

	if len(obs.lens) != 1 || obs.lens[0] != tbl.Len() {
		t.Errorf("observer saw lengths %v, table has %d", obs.lens, tbl.Len())
	}
	if obs.dl <= 0 {
		t.Errorf("observer read DL = %g", obs.dl)
	}
}

func TestDefault(t *testing.T) {
	a := Default()
	b := Default()

	if a != b {
		t.Error("Default should return the same table")
	}
	if a.MaxZ() < DefaultMaxZ {
		t.Errorf("default table extends to %g, expected >= %g", a.MaxZ(), DefaultMaxZ)
	}
}

func TestSamplesIsCopy(t *testing.T) {
	tbl := NewTable(Planck2018Params())
	_ = tbl.Extend(Bounds{MaxZ: 0.1}, ExtendConfig{Step: 0.05})

	s := tbl.Samples()
	s[1].Dc = -1
	if tbl.Samples()[1].Dc == -1 {
		t.Error("Samples exposed internal storage")
	}
}
