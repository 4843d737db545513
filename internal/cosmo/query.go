package cosmo

import (
	"math"

	"github.com/san-kum/cosmodist/internal/interp"
)

var log4Pi = math.Log(4 * math.Pi)

// E returns the dimensionless expansion rate H(z)/Ho,
//
//	sqrt(OL + OK (1+z)^2 + Om (1+z)^3 + Or (1+z)^4).
//
// It is defined for z >= -1. Nonphysical densities can make the radicand
// negative, in which case the result is NaN; guarding against that is the
// caller's responsibility.
func (t *Table) E(z float64) float64 {
	return t.params.e(z)
}

// DDcDz returns dDc/dz = (c/Ho)/E(z) in cm.
func (t *Table) DDcDz(z float64) float64 {
	return t.params.dDcdz(z)
}

// DDcDzMpc is DDcDz in Mpc, for display.
func (t *Table) DDcDzMpc(z float64) float64 {
	return t.params.dDcdz(z) / MpcCGS
}

// DVcDz returns the comoving volume element dVc/dz = 4 pi Dc^2 dDc/dz in
// Unit^3. dc is the comoving distance at z in cm; pass 0 to interpolate it
// from the table. Callers integrating forward must pass the Dc they just
// computed.
func (t *Table) DVcDz(z, dc float64) float64 {
	if dc == 0 {
		dc = t.Z2Dc(z)
	}
	u := t.params.unitMod
	return 4 * math.Pi * dc * dc * t.params.dDcdz(z) / (u * u * u)
}

// LogDVcDz is ln(DVcDz(z, dc)) evaluated in log space so that it neither
// overflows nor underflows when fed into log-probabilities.
func (t *Table) LogDVcDz(z, dc float64) float64 {
	if dc == 0 {
		dc = t.Z2Dc(z)
	}
	return log4Pi + 2*math.Log(dc) + math.Log(t.params.dDcdz(z)) - 3.0*math.Log(t.params.unitMod)
}

// Z2Dc interpolates the comoving distance in cm at z.
func (t *Table) Z2Dc(z float64) float64 {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return interp.Linear(interp.Slice(t.z), interp.Slice(t.dc), z)
}

// Z2Vc interpolates the comoving volume in cm^3 at z.
func (t *Table) Z2Vc(z float64) float64 {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return interp.Linear(interp.Slice(t.z), interp.Slice(t.vc), z)
}

// Z2DL interpolates the luminosity distance at z, in Unit.
func (t *Table) Z2DL(z float64) float64 {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return interp.Linear(interp.Slice(t.z), t.dlAxis(), z) / t.params.unitMod
}

// DL2z inverts Z2DL: dl is in Unit.
func (t *Table) DL2z(dl float64) float64 {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return interp.Linear(t.dlAxis(), interp.Slice(t.z), dl*t.params.unitMod)
}

// Dc2z inverts Z2Dc: dc is in cm.
func (t *Table) Dc2z(dc float64) float64 {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return interp.Linear(interp.Slice(t.dc), interp.Slice(t.z), dc)
}

// Z2DcAll evaluates Z2Dc elementwise. An optional output slice avoids the
// allocation; only the first one is used.
func (t *Table) Z2DcAll(zs []float64, out ...[]float64) []float64 {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return interp.LinearAll(interp.Slice(t.z), interp.Slice(t.dc), zs, out...)
}

// Z2DLAll evaluates Z2DL elementwise.
func (t *Table) Z2DLAll(zs []float64, out ...[]float64) []float64 {
	t.mu.RLock()
	defer t.mu.RUnlock()
	res := interp.LinearAll(interp.Slice(t.z), t.dlAxis(), zs, out...)
	for i := range res {
		res[i] /= t.params.unitMod
	}
	return res
}

// DL2zAll evaluates DL2z elementwise.
func (t *Table) DL2zAll(dls []float64, out ...[]float64) []float64 {
	if len(out) == 0 {
		out = [][]float64{make([]float64, len(dls))}
	}
	t.mu.RLock()
	defer t.mu.RUnlock()
	xs, zs := t.dlAxis(), interp.Slice(t.z)
	for i, dl := range dls {
		out[0][i] = interp.Linear(xs, zs, dl*t.params.unitMod)
	}
	return out[0]
}

// dlAxis derives Dc*(1+z) per sample without storing it. Callers hold mu.
func (t *Table) dlAxis() interp.Axis {
	z, dc := t.z, t.dc
	return interp.Func{
		N: len(z),
		F: func(i int) float64 { return dc[i] * (1 + z[i]) },
	}
}
