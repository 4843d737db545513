package cosmo

// SI units.
const (
	CSI    = 299792458.0
	PcSI   = 3.085677581491367e16
	MpcSI  = PcSI * 1e6
	GSI    = 6.6743e-11
	MSunSI = 1.9884099021470415e30
)

// CGS units.
const (
	GCGS    = GSI * 1e3
	CCGS    = CSI * 1e2
	PcCGS   = PcSI * 1e2
	MpcCGS  = MpcSI * 1e2
	MSunCGS = MSunSI * 1e3
)

const (
	// DefaultStep is the redshift increment used by Extend. It is fixed, not
	// adaptive.
	DefaultStep = 1e-3
	// DefaultMaxSteps caps the number of steps a single Extend call may take.
	DefaultMaxSteps = 2_000_000
	// DefaultZCeiling is the redshift past which Extend refuses to step. It
	// sits just above recombination, where a radiation-free model stops
	// being meaningful.
	DefaultZCeiling = 1100.0
	// DefaultMaxZ is the redshift the default table is extended to.
	DefaultMaxZ = 2.5
)

// Planck 2018 cosmology (Table 1 in arXiv:1807.06209). OmegaLambda is
// derived with float64 arithmetic so that the flatness check in NewParams
// sees exactly zero curvature.
var (
	planck2018H0             = 67.32 // km/s/Mpc
	planck2018OmegaMatter    = 0.3158
	planck2018OmegaRadiation = 0.0
	planck2018OmegaLambda    = 1.0 - planck2018OmegaMatter
)

// Planck2018H0 is the Planck 2018 Hubble constant in km/s/Mpc.
func Planck2018H0() float64 { return planck2018H0 }

func Planck2018OmegaMatter() float64    { return planck2018OmegaMatter }
func Planck2018OmegaRadiation() float64 { return planck2018OmegaRadiation }

// Planck2018OmegaLambda is 1 - Planck2018OmegaMatter.
func Planck2018OmegaLambda() float64 { return planck2018OmegaLambda }

// HubbleFromKmSMpc converts a Hubble constant in km/s/Mpc to s^-1.
func HubbleFromKmSMpc(h0 float64) float64 {
	return h0 / (MpcSI * 1e-3)
}
