package viz

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/cosmodist/internal/cosmo"
)

// Quantity is a function of redshift that can be plotted.
type Quantity struct {
	Caption string
	Eval    func(tbl *cosmo.Table, z float64) float64
}

var Quantities = map[string]Quantity{
	"dl": {"luminosity distance vs z", func(t *cosmo.Table, z float64) float64 { return t.Z2DL(z) }},
	"dc": {"comoving distance [Mpc] vs z", func(t *cosmo.Table, z float64) float64 { return t.Z2Dc(z) / cosmo.MpcCGS }},
	"vc": {"comoving volume [Gpc^3] vs z", func(t *cosmo.Table, z float64) float64 {
		return t.Z2Vc(z) / math.Pow(1e3*cosmo.MpcCGS, 3)
	}},
	"dvcdz":    {"dVc/dz vs z", func(t *cosmo.Table, z float64) float64 { return t.DVcDz(z, 0) }},
	"logdvcdz": {"ln dVc/dz vs z", func(t *cosmo.Table, z float64) float64 { return t.LogDVcDz(z, 0) }},
	"e":        {"E(z) vs z", func(t *cosmo.Table, z float64) float64 { return t.E(z) }},
}

func ListQuantities() []string {
	names := make([]string, 0, len(Quantities))
	for name := range Quantities {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Series samples the named quantity at n redshifts spread uniformly over
// (0, maxZ]. The origin is skipped since log quantities diverge there.
func Series(tbl *cosmo.Table, name string, maxZ float64, n int) ([]float64, []float64, error) {
	q, ok := Quantities[name]
	if !ok {
		return nil, nil, fmt.Errorf("unknown quantity: %s (available: %v)", name, ListQuantities())
	}
	if n < 1 || !(maxZ > 0) {
		return nil, nil, fmt.Errorf("need n >= 1 and maxZ > 0, got n=%d maxZ=%g", n, maxZ)
	}

	zs := make([]float64, n)
	vals := make([]float64, n)
	for i := range zs {
		zs[i] = maxZ * float64(i+1) / float64(n)
		vals[i] = q.Eval(tbl, zs[i])
	}
	return zs, vals, nil
}

// Plot draws the named quantity over (0, maxZ] as an ASCII chart.
func Plot(tbl *cosmo.Table, name string, maxZ float64, width, height int) (string, error) {
	_, vals, err := Series(tbl, name, maxZ, width)
	if err != nil {
		return "", err
	}

	caption := Quantities[name].Caption
	if name == "dl" || name == "dvcdz" {
		caption = fmt.Sprintf("%s [%s]", caption, tbl.Params().Unit())
	}
	caption = fmt.Sprintf("%s (0 < z <= %g)", caption, maxZ)

	return asciigraph.Plot(vals,
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.Caption(caption),
	), nil
}

// Summary renders the parameters and extent of a table in a panel.
func Summary(title string, tbl *cosmo.Table) string {
	p := tbl.Params()
	last := tbl.Last()
	unit := p.Unit()

	rows := [][2]string{
		{"H0", fmt.Sprintf("%.2f km/s/Mpc", p.Ho()*cosmo.MpcSI*1e-3)},
		{"Omega_m", fmt.Sprintf("%g", p.OmegaMatter())},
		{"Omega_r", fmt.Sprintf("%g", p.OmegaRadiation())},
		{"Omega_L", fmt.Sprintf("%g", p.OmegaLambda())},
		{"samples", fmt.Sprintf("%d", tbl.Len())},
		{"max z", fmt.Sprintf("%.4f", last.Z)},
		{"max DL", fmt.Sprintf("%.4g %s", last.DL()/unit.Scale(), unit)},
		{"max Dc", fmt.Sprintf("%.4g Mpc", last.Dc/cosmo.MpcCGS)},
		{"max Vc", fmt.Sprintf("%.4g Gpc^3", last.Vc/math.Pow(1e3*cosmo.MpcCGS, 3))},
	}

	var b strings.Builder
	b.WriteString(HeaderStyle.Render(GradientTitle.Render(title)))
	b.WriteString("\n")
	for _, r := range rows {
		b.WriteString(MetricLabel.Render(fmt.Sprintf("%-9s", r[0])))
		b.WriteString(" ")
		b.WriteString(MetricValue.Render(r[1]))
		b.WriteString("\n")
	}
	return GlassPanel.Render(strings.TrimRight(b.String(), "\n"))
}
