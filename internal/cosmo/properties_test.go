package cosmo_test

import (
	"math"
	"sync"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/cosmodist/internal/cosmo"
)

var _ = Describe("Params", func() {
	It("rejects a closed universe", func() {
		om, or, ol := 0.3, 0.0, 0.8
		_, err := cosmo.NewParams(cosmo.HubbleFromKmSMpc(70), om, or, ol, cosmo.UnitMpc)
		Expect(err).To(MatchError(cosmo.ErrConfiguration))
	})

	It("rejects a non-positive Hubble rate", func() {
		_, err := cosmo.NewParams(0, 1, 0, 0, cosmo.UnitMpc)
		Expect(err).To(MatchError(cosmo.ErrConfiguration))
	})

	It("gives E(0) == 1 exactly for a matter-dominated universe", func() {
		p, err := cosmo.NewParams(cosmo.HubbleFromKmSMpc(70), 1, 0, 0, cosmo.UnitMpc)
		Expect(err).NotTo(HaveOccurred())
		Expect(cosmo.NewTable(p).E(0)).To(Equal(1.0))
	})
})

var _ = Describe("Table", func() {
	var tbl *cosmo.Table

	BeforeEach(func() {
		tbl = cosmo.NewTable(cosmo.Planck2018Params())
	})

	It("answers zero at the seed", func() {
		Expect(tbl.Z2DL(0)).To(Equal(0.0))
		Expect(tbl.Z2Dc(0)).To(Equal(0.0))
	})

	Context("after extending to z = 1 with dz = 0.001", func() {
		BeforeEach(func() {
			Expect(tbl.Extend(cosmo.Bounds{MaxZ: 1}, cosmo.ExtendConfig{Step: 0.001})).To(Succeed())
		})

		It("ends within one step of the target", func() {
			Expect(tbl.Last().Z).To(BeNumerically("~", 1.0, 0.001))
			Expect(tbl.Last().Z).To(BeNumerically(">=", 1.0))
		})

		It("treats an already satisfied bound as a no-op", func() {
			n := tbl.Len()
			Expect(tbl.Extend(cosmo.Bounds{MaxZ: 0.5}, cosmo.ExtendConfig{Step: 0.001})).To(Succeed())
			Expect(tbl.Len()).To(Equal(n))
		})

		It("keeps the samples monotonic", func() {
			Expect(tbl.Extend(cosmo.Bounds{MaxDL: 9000 * cosmo.MpcCGS}, cosmo.ExtendConfig{Step: 0.003})).To(Succeed())
			samples := tbl.Samples()
			for i := 1; i < len(samples); i++ {
				Expect(samples[i].Z).To(BeNumerically(">", samples[i-1].Z))
				Expect(samples[i].Dc).To(BeNumerically(">=", samples[i-1].Dc))
				Expect(samples[i].Vc).To(BeNumerically(">=", samples[i-1].Vc))
			}
		})

		It("round-trips redshift through luminosity distance", func() {
			for _, z := range []float64{0.05, 0.25, 0.5, 0.75, 0.99} {
				Expect(tbl.DL2z(tbl.Z2DL(z))).To(BeNumerically("~", z, 0.001))
			}
		})

		It("agrees between linear and log volume elements", func() {
			for _, z := range []float64{0.1, 0.4, 0.9} {
				dc := tbl.Z2Dc(z)
				Expect(tbl.LogDVcDz(z, dc)).To(BeNumerically("~", math.Log(tbl.DVcDz(z, dc)), 1e-9))
			}
		})

		It("returns bit-identical results for repeated queries", func() {
			first := tbl.Z2Dc(0.321)
			for i := 0; i < 5; i++ {
				Expect(math.Float64bits(tbl.Z2Dc(0.321))).To(Equal(math.Float64bits(first)))
			}
		})

		It("clamps out-of-range queries to the boundary sample", func() {
			Expect(tbl.Z2Dc(50)).To(Equal(tbl.Last().Dc))
			Expect(tbl.Z2Dc(-0.5)).To(Equal(0.0))
		})
	})

	It("fails instead of looping forever on an unreachable bound", func() {
		err := tbl.Extend(cosmo.Bounds{MaxVc: 1e15 * cosmo.MpcCGS * cosmo.MpcCGS * cosmo.MpcCGS}, cosmo.ExtendConfig{Step: 0.05, MaxSteps: 200})
		Expect(err).To(MatchError(cosmo.ErrBoundsUnreachable))
	})

	It("serves queries while another goroutine extends", func() {
		var wg sync.WaitGroup
		wg.Add(2)
		go func() {
			defer GinkgoRecover()
			defer wg.Done()
			Expect(tbl.Extend(cosmo.Bounds{MaxZ: 2}, cosmo.ExtendConfig{})).To(Succeed())
		}()
		go func() {
			defer GinkgoRecover()
			defer wg.Done()
			for i := 0; i < 200; i++ {
				Expect(tbl.Z2DL(0.5)).To(BeNumerically(">=", 0))
			}
		}()
		wg.Wait()
		Expect(tbl.Last().Z).To(BeNumerically(">=", 2))
	})
})
