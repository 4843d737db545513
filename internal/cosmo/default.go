package cosmo

import "sync"

var (
	defaultOnce  sync.Once
	defaultTable *Table
)

// Planck2018Params returns the Planck 2018 parameters with Mpc output.
func Planck2018Params() *Params {
	p, err := NewParams(
		HubbleFromKmSMpc(planck2018H0),
		planck2018OmegaMatter,
		planck2018OmegaRadiation,
		planck2018OmegaLambda,
		UnitMpc,
	)
	if err != nil {
		panic(err)
	}
	return p
}

// Default returns the process-wide Planck 2018 table. It is built and
// extended to DefaultMaxZ on first use. Callers may Extend it further.
func Default() *Table {
	defaultOnce.Do(func() {
		t := NewTable(Planck2018Params())
		if err := t.Extend(Bounds{MaxZ: DefaultMaxZ}, DefaultExtendConfig()); err != nil {
			panic(err)
		}
		defaultTable = t
	})
	return defaultTable
}
