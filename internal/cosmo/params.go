package cosmo

import (
	"fmt"
	"math"
)

// Params is an immutable set of flat-cosmology parameters.
type Params struct {
	ho      float64
	omegaM  float64
	omegaR  float64
	omegaL  float64
	omegaK  float64
	unit    Unit
	cOverHo float64
	unitMod float64
}

// NewParams validates and bundles the cosmological parameters. ho is in s^-1
// (see HubbleFromKmSMpc). The curvature 1 - (Om + Or + OL) must be exactly
// zero and ho must be strictly positive; otherwise the error wraps
// ErrConfiguration.
func NewParams(ho, omegaMatter, omegaRadiation, omegaLambda float64, unit Unit) (*Params, error) {
	if !(ho > 0) || math.IsInf(ho, 0) {
		return nil, fmt.Errorf("%w: Ho must be positive and finite, got %g", ErrConfiguration, ho)
	}
	if !unit.valid() {
		return nil, fmt.Errorf("%w: unknown distance unit %v", ErrConfiguration, unit)
	}

	omegaK := 1.0 - (omegaMatter + omegaRadiation + omegaLambda)
	if omegaK != 0 {
		return nil, fmt.Errorf("%w: only flat cosmologies are supported, OmegaKappa = %g", ErrConfiguration, omegaK)
	}

	return &Params{
		ho:      ho,
		omegaM:  omegaMatter,
		omegaR:  omegaRadiation,
		omegaL:  omegaLambda,
		omegaK:  omegaK,
		unit:    unit,
		cOverHo: CCGS / ho,
		unitMod: unit.Scale(),
	}, nil
}

func (p *Params) Ho() float64             { return p.ho }
func (p *Params) OmegaMatter() float64    { return p.omegaM }
func (p *Params) OmegaRadiation() float64 { return p.omegaR }
func (p *Params) OmegaLambda() float64    { return p.omegaL }
func (p *Params) OmegaKappa() float64     { return p.omegaK }
func (p *Params) Unit() Unit              { return p.unit }

// HubbleDistance is c/Ho in cm.
func (p *Params) HubbleDistance() float64 { return p.cOverHo }

func (p *Params) String() string {
	return fmt.Sprintf("H0=%.2f km/s/Mpc Om=%g Or=%g OL=%g unit=%s",
		p.ho*MpcSI*1e-3, p.omegaM, p.omegaR, p.omegaL, p.unit)
}

// e is H(z)/Ho. Negative radicands from nonphysical densities yield NaN.
func (p *Params) e(z float64) float64 {
	opz := 1.0 + z
	opz2 := opz * opz
	return math.Sqrt(p.omegaL + p.omegaK*opz2 + p.omegaM*opz2*opz + p.omegaR*opz2*opz2)
}

// dDcdz is (c/Ho)/E(z) in cm.
func (p *Params) dDcdz(z float64) float64 {
	return p.cOverHo / p.e(z)
}
