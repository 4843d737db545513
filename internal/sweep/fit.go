package sweep

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/san-kum/cosmodist/internal/cosmo"
)

// Observation is a luminosity distance measurement in the ensemble unit.
type Observation struct {
	Z     float64
	DL    float64
	Sigma float64
}

// ChiSquare sums ((DL(z) - obs) / sigma)^2 over obs.
func ChiSquare(tbl *cosmo.Table, obs []Observation) float64 {
	var chi2 float64
	for _, o := range obs {
		r := (tbl.Z2DL(o.Z) - o.DL) / o.Sigma
		chi2 += r * r
	}
	return chi2
}

// Score is the goodness of fit of one grid point.
type Score struct {
	H0          float64
	OmegaMatter float64
	Chi2        float64
}

type FitResult struct {
	Best   Score
	Scores []Score
}

// Fit tabulates grid to the highest observed redshift and scores every
// member against obs. Scores are sorted by ascending chi-square.
func (e *Ensemble) Fit(ctx context.Context, grid Grid, obs []Observation, cfg cosmo.ExtendConfig) (*FitResult, error) {
	if len(obs) == 0 {
		return nil, errors.New("no observations")
	}
	maxZ := 0.0
	for i, o := range obs {
		if !(o.Z >= 0) || math.IsInf(o.Z, 0) || !(o.Sigma > 0) || math.IsInf(o.DL, 0) || math.IsNaN(o.DL) {
			return nil, fmt.Errorf("observation %d: invalid (z=%g, dl=%g, sigma=%g)", i, o.Z, o.DL, o.Sigma)
		}
		maxZ = math.Max(maxZ, o.Z)
	}

	members, err := e.Run(ctx, grid, cosmo.Bounds{MaxZ: maxZ}, cfg)
	if err != nil {
		return nil, err
	}

	scores := make([]Score, len(members))
	for i, m := range members {
		scores[i] = Score{H0: m.H0, OmegaMatter: m.OmegaMatter, Chi2: ChiSquare(m.Table, obs)}
	}
	sort.SliceStable(scores, func(i, j int) bool { return scores[i].Chi2 < scores[j].Chi2 })

	return &FitResult{Best: scores[0], Scores: scores}, nil
}
