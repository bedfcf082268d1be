package sim_test

import (
	"context"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/san-kum/gravitas/internal/dynamo"
	"github.com/san-kum/gravitas/internal/sim"
)

// quietParams switches off every source of motion except a negligible pull,
// so a body stays where it was placed.
func quietParams() dynamo.Params {
	p := dynamo.DefaultParams()
	p.G = 1e-12
	p.Jitter = 0
	p.TangentialMin, p.TangentialMax = 0, 0
	return p
}

func emptySetup(primaries ...sim.PrimarySeed) sim.Setup {
	return sim.Setup{Seed: 3, Primaries: primaries, ValidateState: true}
}

var center = r2.Vec{X: 400, Y: 300}

func tickN(s *sim.Simulator, n int) []sim.TickReport {
	reps := make([]sim.TickReport, 0, n)
	for i := 0; i < n; i++ {
		reps = append(reps, s.Tick())
	}
	return reps
}

func dynamics(s *sim.Simulator) []*dynamo.Body {
	var out []*dynamo.Body
	for _, b := range s.Population().Bodies() {
		if b.Kind == dynamo.KindDynamic {
			out = append(out, b)
		}
	}
	return out
}

var _ = Describe("Merge pass", func() {
	var s *sim.Simulator

	BeforeEach(func() {
		var err error
		s, err = sim.New(quietParams(), emptySetup(sim.PrimarySeed{Pos: center, Mass: 50}))
		Expect(err).NotTo(HaveOccurred())
	})

	Context("with a resting body inside the proximity threshold", func() {
		BeforeEach(func() {
			Expect(s.AddDynamic(r2.Add(center, r2.Vec{X: 10}), r2.Vec{}, 2)).To(Succeed())
		})

		It("counts proximate ticks without absorbing early", func() {
			tickN(s, 49)

			ds := dynamics(s)
			Expect(ds).To(HaveLen(1))
			Expect(ds[0].Timer).To(Equal(49))
			Expect(ds[0].Phase(50)).To(Equal(dynamo.PhaseProximate))
		})

		It("absorbs the body on the fiftieth tick and spawns a burst", func() {
			reps := tickN(s, 50)
			last := reps[len(reps)-1]

			Expect(last.Merges).To(HaveLen(1))
			Expect(last.Spawned).To(Equal(10))
			Expect(last.Merges[0].Absorbed).To(Equal(2.0))
			Expect(last.Merges[0].Position).To(Equal(center))

			primary := s.Population().At(0)
			Expect(primary.Kind).To(Equal(dynamo.KindPrimary))
			Expect(primary.Mass).To(Equal(52.0))

			ds := dynamics(s)
			Expect(ds).To(HaveLen(10))
			for _, b := range ds {
				Expect(b.Transient).To(BeTrue())
				Expect(b.Mass).To(Equal(0.1))
				Expect(b.Lifetime).To(Equal(15))
				Expect(b.Pos).To(Equal(center))

				speed := r2.Norm(b.Vel)
				Expect(speed).To(BeNumerically(">=", 0.5))
				Expect(speed).To(BeNumerically("<", 2.0))
			}
		})

		It("removes burst bodies after exactly fifteen ticks", func() {
			tickN(s, 50)

			reps := tickN(s, 14)
			Expect(dynamics(s)).To(HaveLen(10))
			for _, r := range reps {
				Expect(r.Expired).To(BeZero())
			}

			rep := s.Tick()
			Expect(rep.Expired).To(Equal(10))
			Expect(dynamics(s)).To(BeEmpty())
		})

		It("accounts mass through the merge and the burst expiry", func() {
			before := s.Population().TotalMass()
			Expect(before).To(Equal(50.0))

			tickN(s, 1)
			Expect(s.Population().TotalMass()).To(Equal(52.0))

			tickN(s, 49)
			Expect(s.Population().TotalMass()).To(BeNumerically("~", 53.0, 1e-9))

			tickN(s, 15)
			Expect(s.Population().TotalMass()).To(Equal(52.0))
		})
	})

	It("absorbs simultaneous arrivals in the same tick", func() {
		Expect(s.AddDynamic(r2.Add(center, r2.Vec{X: 8}), r2.Vec{}, 1.5)).To(Succeed())
		Expect(s.AddDynamic(r2.Add(center, r2.Vec{Y: -12}), r2.Vec{}, 3)).To(Succeed())

		reps := tickN(s, 50)
		last := reps[len(reps)-1]

		Expect(last.Merges).To(HaveLen(2))
		Expect(last.Spawned).To(Equal(20))
		Expect(s.Population().At(0).Mass).To(Equal(54.5))
		Expect(s.Population().Count(dynamo.KindPrimary)).To(Equal(1))
	})

	It("resets the timer when the body leaves the threshold", func() {
		Expect(s.AddDynamic(r2.Add(center, r2.Vec{X: 10.5}), r2.Vec{X: 2}, 1)).To(Succeed())

		var timers []int
		for i := 0; i < 6; i++ {
			s.Tick()
			timers = append(timers, dynamics(s)[0].Timer)
		}

		// damped distance after each tick: 12.5, 14.5, 16.5, 18.5, 20.4, 22.4
		Expect(timers).To(Equal([]int{1, 2, 3, 4, 0, 0}))
	})

	It("restarts the timer when a different primary becomes nearest", func() {
		Expect(s.AddDynamic(r2.Add(center, r2.Vec{X: 10}), r2.Vec{}, 2)).To(Succeed())
		tickN(s, 5)
		Expect(dynamics(s)[0].Timer).To(Equal(5))

		// drained at the start of the next tick, 5 away from the body
		closer := r2.Add(center, r2.Vec{X: 15})
		Expect(s.AddPrimary(closer, r2.Vec{}, 50)).To(Succeed())
		s.Tick()
		Expect(dynamics(s)[0].Timer).To(Equal(1))

		reps := tickN(s, 49)
		Expect(reps[47].Merges).To(BeEmpty())
		Expect(reps[48].Merges).To(HaveLen(1))
		Expect(reps[48].Merges[0].Position).To(Equal(closer))
		Expect(s.Population().At(0).Mass).To(Equal(50.0))
		Expect(s.Population().At(1).Mass).To(Equal(52.0))
	})

	It("keeps a body beyond the threshold free", func() {
		Expect(s.AddDynamic(r2.Add(center, r2.Vec{X: 30}), r2.Vec{}, 1)).To(Succeed())

		tickN(s, 100)
		ds := dynamics(s)
		Expect(ds).To(HaveLen(1))
		Expect(ds[0].Phase(50)).To(Equal(dynamo.PhaseFree))
	})

	It("merges into the nearest of several primaries", func() {
		far := r2.Add(center, r2.Vec{X: 200})
		Expect(s.AddPrimary(far, r2.Vec{}, 50)).To(Succeed())
		Expect(s.AddDynamic(r2.Add(far, r2.Vec{Y: 5}), r2.Vec{}, 4)).To(Succeed())

		tickN(s, 50)

		Expect(s.Population().At(0).Mass).To(Equal(50.0))
		Expect(s.Population().At(1).Mass).To(Equal(54.0))
	})
})

var _ = Describe("Without primaries", func() {
	It("never advances proximity timers", func() {
		s, err := sim.New(dynamo.DefaultParams(), emptySetup())
		Expect(err).NotTo(HaveOccurred())
		Expect(s.AddDynamic(center, r2.Vec{X: 1}, 2)).To(Succeed())
		Expect(s.AddDynamic(r2.Add(center, r2.Vec{X: 3}), r2.Vec{}, 2)).To(Succeed())

		for i := 0; i < 80; i++ {
			rep := s.Tick()
			Expect(rep.Merges).To(BeEmpty())
			for _, b := range dynamics(s) {
				Expect(b.Timer).To(BeZero())
			}
		}
		Expect(dynamics(s)).To(HaveLen(2))
	})
})

var _ = Describe("Request queue", func() {
	var s *sim.Simulator

	BeforeEach(func() {
		var err error
		s, err = sim.New(quietParams(), emptySetup(sim.PrimarySeed{Pos: center, Mass: 50}))
		Expect(err).NotTo(HaveOccurred())
	})

	It("applies insertions at the next tick boundary", func() {
		Expect(s.AddDynamic(r2.Vec{X: 100, Y: 100}, r2.Vec{}, 1)).To(Succeed())
		Expect(s.Pending()).To(Equal(1))
		Expect(s.Population().Len()).To(Equal(1))

		s.Tick()
		Expect(s.Pending()).To(BeZero())
		Expect(s.Population().Len()).To(Equal(2))
	})

	It("rejects non-positive masses without queueing", func() {
		Expect(s.AddDynamic(center, r2.Vec{}, 0)).To(MatchError(dynamo.ErrNonPositiveMass))
		Expect(s.AddPrimary(center, r2.Vec{}, -3)).To(MatchError(dynamo.ErrNonPositiveMass))
		Expect(s.RescaleMass(dynamo.KindDynamic, 0)).To(MatchError(dynamo.ErrNonPositiveMass))
		Expect(s.Pending()).To(BeZero())
	})

	It("switches dynamic collisions only when the tick starts", func() {
		Expect(s.DynamicCollisions()).To(BeFalse())

		s.SetDynamicCollisions(true)
		Expect(s.DynamicCollisions()).To(BeFalse())

		s.Tick()
		Expect(s.DynamicCollisions()).To(BeTrue())
	})

	It("scales dynamic velocity by the inverse of the new mass", func() {
		Expect(s.AddDynamic(r2.Vec{X: 100, Y: 500}, r2.Vec{X: 4}, 1)).To(Succeed())
		s.Tick()

		Expect(s.RescaleMass(dynamo.KindDynamic, 2)).To(Succeed())
		s.Tick()

		b := dynamics(s)[0]
		Expect(b.Mass).To(Equal(2.0))
		Expect(b.Vel.X).To(BeNumerically("~", 4*0.998*0.998/2, 1e-6))
	})

	It("maps the slider onto both variants", func() {
		Expect(s.AddDynamic(r2.Vec{X: 100, Y: 500}, r2.Vec{}, 3)).To(Succeed())
		Expect(s.ApplySlider(sim.SliderDefault)).To(Succeed())
		s.Tick()

		Expect(s.Population().At(0).Mass).To(Equal(20.0))
		Expect(dynamics(s)[0].Mass).To(Equal(1.0))
	})

	It("clamps out of range slider values", func() {
		Expect(s.ApplySlider(1000)).To(Succeed())
		s.Tick()
		Expect(s.Population().At(0).Mass).To(Equal(200.0))
	})

	It("places random primaries inside the world", func() {
		Expect(s.AddRandomPrimary(4)).To(Succeed())
		Expect(s.AddRandomDynamic()).To(Succeed())
		s.Tick()

		Expect(s.Population().Count(dynamo.KindPrimary)).To(Equal(2))
		added := s.Population().At(1)
		Expect(added.Mass).To(Equal(20.0))
		Expect(added.Pos.X).To(BeNumerically("<", 800))
		Expect(added.Pos.Y).To(BeNumerically("<", 600))

		d := dynamics(s)[0]
		Expect(d.Mass).To(BeNumerically(">=", 0.5))
		Expect(d.Mass).To(BeNumerically("<", 5))
	})
})

var _ = Describe("Default scenario", func() {
	It("holds the population invariants on every tick", func() {
		setup := sim.DefaultSetup()
		setup.Seed = 11
		setup.DynamicCollisions = true
		s, err := sim.New(dynamo.DefaultParams(), setup)
		Expect(err).NotTo(HaveOccurred())

		params := s.Params()
		primaries := s.Population().Count(dynamo.KindPrimary)
		mass := s.Population().TotalMass()

		err = s.RunWithCallback(context.Background(), 400, func(p *dynamo.Population, rep sim.TickReport) bool {
			Expect(p.Count(dynamo.KindPrimary)).To(BeNumerically(">=", primaries))
			primaries = p.Count(dynamo.KindPrimary)

			if p.TotalMass() > mass+1e-9 {
				Expect(rep.Merges).NotTo(BeEmpty(), "mass grew on tick %d without a merge", rep.Tick)
			}
			mass = p.TotalMass()

			for _, b := range p.Bodies() {
				Expect(b.IsValid()).To(BeTrue())
				Expect(len(b.Trail)).To(BeNumerically("<=", params.TrailLength))
				if b.Kind != dynamo.KindDynamic {
					continue
				}
				Expect(b.Timer).To(BeNumerically("<", params.MergeTicks))
				if _, dist, _ := p.Nearest(b.Pos, dynamo.KindPrimary); dist >= params.ProximityThreshold {
					Expect(b.Timer).To(BeZero())
				}
				if b.Transient {
					Expect(b.Lifetime).To(BeNumerically(">", 0))
				}
			}
			return true
		})
		Expect(err).NotTo(HaveOccurred())
	})
})
