package cosmo

import (
	"fmt"
	"math"
)

// Restore rebuilds a table from previously tabulated samples, for example
// ones loaded from disk, so that a later Extend resumes where they end.
// The samples must start at the origin, be strictly increasing in z,
// non-decreasing in Dc and Vc, and finite.
func Restore(p *Params, samples []Sample, opts ...Option) (*Table, error) {
	if err := validateSamples(samples); err != nil {
		return nil, err
	}

	t := NewTable(p, opts...)
	t.z = make([]float64, len(samples))
	t.dc = make([]float64, len(samples))
	t.vc = make([]float64, len(samples))
	for i, s := range samples {
		t.z[i], t.dc[i], t.vc[i] = s.Z, s.Dc, s.Vc
	}
	return t, nil
}

func validateSamples(samples []Sample) error {
	if len(samples) == 0 {
		return fmt.Errorf("%w: no samples", ErrInvalidTable)
	}
	if samples[0] != (Sample{}) {
		return fmt.Errorf("%w: first sample %+v is not the origin", ErrInvalidTable, samples[0])
	}
	for i := 1; i < len(samples); i++ {
		s, prev := samples[i], samples[i-1]
		if !finite(s.Z) || !finite(s.Dc) || !finite(s.Vc) {
			return fmt.Errorf("%w: sample %d is not finite", ErrInvalidTable, i)
		}
		if s.Z <= prev.Z {
			return fmt.Errorf("%w: z not strictly increasing at sample %d", ErrInvalidTable, i)
		}
		if s.Dc < prev.Dc || s.Vc < prev.Vc {
			return fmt.Errorf("%w: distance or volume decreasing at sample %d", ErrInvalidTable, i)
		}
	}
	return nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
