package sweep

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/san-kum/cosmodist/internal/cosmo"
	"github.com/san-kum/cosmodist/internal/integrators"
)

var cfg = cosmo.ExtendConfig{Step: 1e-3}

func TestLinspace(t *testing.T) {
	require.Equal(t, []float64{1}, Linspace(1, 2, 1))
	require.Equal(t, []float64{0, 0.25, 0.5, 0.75, 1}, Linspace(0, 1, 5))
}

func TestEnsembleRunOrder(t *testing.T) {
	grid := Grid{H0: []float64{60, 70}, OmegaMatter: []float64{0.2, 0.3, 0.4}}
	e, err := NewEnsemble(cosmo.UnitMpc, 2, "")
	require.NoError(t, err)
	members, err := e.Run(context.Background(), grid, cosmo.Bounds{MaxZ: 0.5}, cfg)
	require.NoError(t, err)
	require.Len(t, members, 6)

	require.Equal(t, 60.0, members[0].H0)
	require.Equal(t, 0.2, members[0].OmegaMatter)
	require.Equal(t, 70.0, members[5].H0)
	require.Equal(t, 0.4, members[5].OmegaMatter)

	for _, m := range members {
		require.GreaterOrEqual(t, m.Table.MaxZ(), 0.5)
	}
	// Higher H0 means smaller distances at fixed redshift.
	require.Greater(t, members[0].Table.Z2DL(0.5), members[3].Table.Z2DL(0.5))
	// More matter decelerates faster, also shrinking DL.
	require.Greater(t, members[0].Table.Z2DL(0.5), members[2].Table.Z2DL(0.5))
}

func TestEnsembleErrors(t *testing.T) {
	e, err := NewEnsemble(cosmo.UnitMpc, 0, "")
	require.NoError(t, err)

	_, err = e.Run(context.Background(), Grid{}, cosmo.Bounds{MaxZ: 1}, cfg)
	require.Error(t, err)

	_, err = e.Run(context.Background(), Grid{H0: []float64{-1}, OmegaMatter: []float64{0.3}}, cosmo.Bounds{MaxZ: 1}, cfg)
	require.ErrorIs(t, err, cosmo.ErrConfiguration)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = e.Run(ctx, Grid{H0: []float64{70}, OmegaMatter: []float64{0.3}}, cosmo.Bounds{MaxZ: 1}, cfg)
	require.ErrorIs(t, err, context.Canceled)
}

func TestFitRecoversTruth(t *testing.T) {
	p, err := cosmo.NewParams(cosmo.HubbleFromKmSMpc(70), 0.3, 0, 0.7, cosmo.UnitMpc)
	require.NoError(t, err)
	truth := cosmo.NewTable(p)
	require.NoError(t, truth.Extend(cosmo.Bounds{MaxZ: 1.2}, cfg))

	var obs []Observation
	for _, z := range []float64{0.1, 0.3, 0.5, 0.8, 1.2} {
		obs = append(obs, Observation{Z: z, DL: truth.Z2DL(z), Sigma: 0.05 * truth.Z2DL(z)})
	}

	grid := Grid{H0: Linspace(60, 80, 5), OmegaMatter: []float64{0.1, 0.2, 0.3, 0.4, 0.5}}
	e, err := NewEnsemble(cosmo.UnitMpc, 3, "trapezoid")
	require.NoError(t, err)
	res, err := e.Fit(context.Background(), grid, obs, cfg)
	require.NoError(t, err)

	require.Len(t, res.Scores, 25)
	require.Equal(t, 70.0, res.Best.H0)
	require.InDelta(t, 0.3, res.Best.OmegaMatter, 1e-12)
	require.InDelta(t, 0, res.Best.Chi2, 1e-9)
	for i := 1; i < len(res.Scores); i++ {
		require.LessOrEqual(t, res.Scores[i-1].Chi2, res.Scores[i].Chi2)
	}
}

func TestFitRejectsBadObservations(t *testing.T) {
	e, err := NewEnsemble(cosmo.UnitMpc, 1, "")
	require.NoError(t, err)
	grid := Grid{H0: []float64{70}, OmegaMatter: []float64{0.3}}

	_, err = e.Fit(context.Background(), grid, nil, cfg)
	require.Error(t, err)

	_, err = e.Fit(context.Background(), grid, []Observation{{Z: 0.5, DL: 100, Sigma: 0}}, cfg)
	require.Error(t, err)
}

func TestEnsembleStepperPerMember(t *testing.T) {
	_, err := NewEnsemble(cosmo.UnitMpc, 1, "leapfrog")
	require.Error(t, err)

	// Many members on many workers; each must own its stepper, which the
	// race detector checks, and agree with a table built on its own.
	grid := Grid{H0: Linspace(60, 80, 6), OmegaMatter: Linspace(0.2, 0.4, 6)}
	e, err := NewEnsemble(cosmo.UnitMpc, 8, "rk4")
	require.NoError(t, err)
	members, err := e.Run(context.Background(), grid, cosmo.Bounds{MaxZ: 1}, cfg)
	require.NoError(t, err)

	for _, m := range members {
		p, err := cosmo.NewParams(cosmo.HubbleFromKmSMpc(m.H0), m.OmegaMatter, 0, 1.0-m.OmegaMatter, cosmo.UnitMpc)
		require.NoError(t, err)
		ref := cosmo.NewTable(p, cosmo.WithIntegrator(integrators.NewRK4()))
		require.NoError(t, ref.Extend(cosmo.Bounds{MaxZ: 1}, cfg))
		require.Equal(t, ref.Last(), m.Table.Last())
	}
}
