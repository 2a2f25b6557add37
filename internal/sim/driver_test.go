package sim

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/san-kum/massspring/internal/dynamo"
	"github.com/san-kum/massspring/internal/integrators"
	"github.com/san-kum/massspring/internal/scenes"
	"gonum.org/v1/gonum/spatial/r3"
)

func custom(features dynamo.Features, build func(s *dynamo.Scene) error) scenes.Scenario {
	return scenes.Scenario{Name: "custom", Features: features, Build: build}
}

type observerFunc func(f dynamo.Frame)

func (o observerFunc) OnStep(f dynamo.Frame) { o(f) }

var _ = Describe("Simulator", func() {
	var s *Simulator

	Describe("equilibrium", func() {
		atRest := custom(dynamo.Features{}, func(sc *dynamo.Scene) error {
			a := sc.AddPoint(r3.Vec{}, r3.Vec{}, false)
			b := sc.AddPoint(r3.Vec{Y: 1}, r3.Vec{}, false)
			return sc.AddSpring(a, b, 1)
		})

		for _, kind := range dynamo.IntegratorKinds() {
			It("is a fixed point under "+kind.String(), func() {
				var err error
				s, err = New(atRest, WithIntegrator(kind))
				Expect(err).NotTo(HaveOccurred())
				before := s.Snapshot()

				for i := 0; i < 5; i++ {
					Expect(s.Advance(0.1)).To(Succeed())
				}
				Expect(s.Snapshot()).To(Equal(before))
			})
		}
	})

	Describe("fixed points", func() {
		for _, kind := range dynamo.IntegratorKinds() {
			It("never move under "+kind.String()+" with wind, gravity and collision", func() {
				sc, err := scenes.Get("cloth")
				Expect(err).NotTo(HaveOccurred())
				s, err = New(sc, WithIntegrator(kind))
				Expect(err).NotTo(HaveOccurred())
				Expect(s.SetGravity(9.81)).To(Succeed())

				before := s.Snapshot()
				for i := 0; i < 300; i++ {
					Expect(s.Advance(0.005)).To(Succeed())
				}
				after := s.Snapshot()
				for _, i := range []int{0, scenes.ClothSize - 1} {
					Expect(after[i]).To(Equal(before[i]))
				}
				Expect(after[55].Position).NotTo(Equal(before[55].Position))
			})
		}
	})

	Describe("leapfrog priming", func() {
		BeforeEach(func() {
			sc, err := scenes.Get("simple")
			Expect(err).NotTo(HaveOccurred())
			s, err = New(sc, WithIntegrator(dynamo.Leapfrog))
			Expect(err).NotTo(HaveOccurred())
		})

		It("leaves positions alone on the first step only", func() {
			before := s.Snapshot()
			Expect(s.LeapfrogPhase()).To(Equal(integrators.Priming))

			Expect(s.Advance(0.1)).To(Succeed())
			primed := s.Snapshot()
			for i := range before {
				Expect(primed[i].Position).To(Equal(before[i].Position))
				Expect(primed[i].Velocity).NotTo(Equal(before[i].Velocity))
			}
			Expect(s.LeapfrogPhase()).To(Equal(integrators.Running))

			Expect(s.Advance(0.1)).To(Succeed())
			moved := s.Snapshot()
			Expect(moved[0].Position.X).To(BeNumerically("~", 0.1*primed[0].Velocity.X, 1e-12))
			Expect(moved[1].Position).NotTo(Equal(primed[1].Position))
		})

		It("keeps its phase across integrator switches", func() {
			Expect(s.Advance(0.1)).To(Succeed())
			Expect(s.SetIntegrator(dynamo.Euler)).To(Succeed())
			Expect(s.Advance(0.1)).To(Succeed())
			Expect(s.SetIntegrator(dynamo.Leapfrog)).To(Succeed())
			Expect(s.LeapfrogPhase()).To(Equal(integrators.Running))
		})

		It("re-primes on reset", func() {
			Expect(s.Advance(0.1)).To(Succeed())
			Expect(s.Reset()).To(Succeed())
			Expect(s.LeapfrogPhase()).To(Equal(integrators.Priming))
			Expect(s.Time()).To(BeZero())
			Expect(s.Steps()).To(BeZero())
		})
	})

	Describe("floor collision", func() {
		falling := custom(dynamo.Features{Collision: true}, func(sc *dynamo.Scene) error {
			sc.AddPoint(r3.Vec{Y: -0.85}, r3.Vec{X: 0.5, Y: -1}, false)
			sc.AddPoint(r3.Vec{X: 3}, r3.Vec{}, true)
			return nil
		})

		It("clamps height and zeroes vertical velocity only", func() {
			var err error
			s, err = New(falling)
			Expect(err).NotTo(HaveOccurred())

			Expect(s.Advance(0.1)).To(Succeed())
			pos, _ := s.Position(0)
			vel, _ := s.Velocity(0)
			Expect(pos.Y).To(Equal(dynamo.DefaultFloorHeight))
			Expect(pos.X).To(BeNumerically("~", 0.05, 1e-12))
			Expect(vel).To(Equal(r3.Vec{X: 0.5}))
		})

		It("uses the configured floor height", func() {
			var err error
			s, err = New(falling)
			Expect(err).NotTo(HaveOccurred())
			p := s.Params()
			p.FloorHeight = -2
			Expect(s.SetParams(p)).To(Succeed())

			Expect(s.Advance(0.1)).To(Succeed())
			pos, _ := s.Position(0)
			Expect(pos.Y).To(BeNumerically("~", -0.95, 1e-12))
		})
	})

	Describe("reset round trip", func() {
		It("rebuilds the identical scene after parameter changes", func() {
			sc, err := scenes.Get("cloth")
			Expect(err).NotTo(HaveOccurred())
			s, err = New(sc, WithIntegrator(dynamo.Midpoint))
			Expect(err).NotTo(HaveOccurred())
			initial := s.Snapshot()
			springs := s.Springs()

			for i := 0; i < 50; i++ {
				Expect(s.Advance(0.005)).To(Succeed())
			}
			Expect(s.SetMass(3)).To(Succeed())
			Expect(s.SetStiffness(500)).To(Succeed())
			Expect(s.SetGravity(9.81)).To(Succeed())
			Expect(s.SetWind(-4)).To(Succeed())
			Expect(s.SetIntegrator(dynamo.Leapfrog)).To(Succeed())
			for i := 0; i < 50; i++ {
				Expect(s.Advance(0.005)).To(Succeed())
			}

			Expect(s.Reset()).To(Succeed())
			Expect(s.Snapshot()).To(Equal(initial))
			Expect(s.Springs()).To(Equal(springs))
			Expect(s.Params().Stiffness).To(Equal(500.0))
			Expect(s.Integrator()).To(Equal(dynamo.Leapfrog))
		})
	})

	Describe("failed reset", func() {
		It("keeps the committed scene when the rebuild fails", func() {
			builds := 0
			flaky := custom(dynamo.Features{}, func(sc *dynamo.Scene) error {
				builds++
				a := sc.AddPoint(r3.Vec{}, r3.Vec{X: 1}, false)
				b := sc.AddPoint(r3.Vec{Y: 2}, r3.Vec{}, false)
				if builds > 1 {
					sc.AddPoint(r3.Vec{Z: 7}, r3.Vec{}, false)
					return sc.AddSpring(a, 9, 1)
				}
				return sc.AddSpring(a, b, 1)
			})

			var err error
			s, err = New(flaky)
			Expect(err).NotTo(HaveOccurred())
			Expect(s.Advance(0.1)).To(Succeed())
			before, springs := s.Snapshot(), s.Springs()

			Expect(s.Reset()).To(MatchError(dynamo.ErrInvalidIndex))
			Expect(s.Snapshot()).To(Equal(before))
			Expect(s.Springs()).To(Equal(springs))
			Expect(s.Steps()).To(Equal(1))

			Expect(s.Advance(0.1)).To(Succeed())
			Expect(s.Springs()).To(Equal(springs))
		})
	})

	Describe("failed steps", func() {
		coincident := custom(dynamo.Features{ExternalForces: true}, func(sc *dynamo.Scene) error {
			a := sc.AddPoint(r3.Vec{}, r3.Vec{X: -1}, false)
			b := sc.AddPoint(r3.Vec{Y: 2}, r3.Vec{X: 1}, false)
			c := sc.AddPoint(r3.Vec{X: 5, Y: 5}, r3.Vec{}, false)
			d := sc.AddPoint(r3.Vec{X: 5, Y: 5}, r3.Vec{}, false)
			if err := sc.AddSpring(a, b, 1); err != nil {
				return err
			}
			return sc.AddSpring(c, d, 1)
		})

		for _, kind := range dynamo.IntegratorKinds() {
			It("leave the scene untouched under "+kind.String(), func() {
				var err error
				s, err = New(coincident, WithIntegrator(kind))
				Expect(err).NotTo(HaveOccurred())
				before := s.Snapshot()

				err = s.Advance(0.1)
				Expect(err).To(MatchError(dynamo.ErrDegenerateSpring))
				var simErr *dynamo.SimulationError
				Expect(err).To(BeAssignableToTypeOf(simErr))

				Expect(s.Snapshot()).To(Equal(before))
				Expect(s.Steps()).To(BeZero())
				Expect(s.LeapfrogPhase()).To(Equal(integrators.Priming))
			})
		}

		It("reject non-finite results", func() {
			sc, err := scenes.Get("simple")
			Expect(err).NotTo(HaveOccurred())
			s, err = New(sc)
			Expect(err).NotTo(HaveOccurred())
			Expect(s.SetMass(1e-300)).To(Succeed())
			Expect(s.SetStiffness(1e300)).To(Succeed())
			before := s.Snapshot()

			Expect(s.Advance(0.1)).To(MatchError(dynamo.ErrInvalidState))
			Expect(s.Snapshot()).To(Equal(before))
		})

		It("reject bad step sizes and parameters", func() {
			sc, err := scenes.Get("simple")
			Expect(err).NotTo(HaveOccurred())
			s, err = New(sc)
			Expect(err).NotTo(HaveOccurred())

			Expect(s.Advance(0)).To(MatchError(dynamo.ErrParameterBounds))
			Expect(s.Advance(-0.1)).To(MatchError(dynamo.ErrParameterBounds))
			Expect(s.SetMass(0)).To(MatchError(dynamo.ErrParameterBounds))
			Expect(s.SetStiffness(-1)).To(MatchError(dynamo.ErrParameterBounds))
			Expect(s.SetDamping(-1)).To(MatchError(dynamo.ErrParameterBounds))
			Expect(s.SetIntegrator(dynamo.IntegratorKind(9))).To(MatchError(dynamo.ErrUnknownIntegrator))
			Expect(s.Params()).To(Equal(dynamo.DefaultParams()))
		})
	})

	Describe("re-entrancy", func() {
		It("rejects mutations from inside a step", func() {
			sc, err := scenes.Get("simple")
			Expect(err).NotTo(HaveOccurred())
			s, err = New(sc)
			Expect(err).NotTo(HaveOccurred())

			var inner []error
			s.AddObserver(observerFunc(func(dynamo.Frame) {
				inner = append(inner,
					s.Advance(0.1),
					s.SetGravity(1),
					s.SetIntegrator(dynamo.Midpoint),
					s.Reset(),
				)
			}))

			Expect(s.Advance(0.1)).To(Succeed())
			Expect(inner).To(HaveLen(4))
			for _, err := range inner {
				Expect(err).To(MatchError(dynamo.ErrStepInProgress))
			}
			Expect(s.Steps()).To(Equal(1))
			Expect(s.Integrator()).To(Equal(dynamo.Euler))

			Expect(s.Advance(0.1)).To(Succeed())
		})
	})

	Describe("scenario switching", func() {
		It("applies recommended parameters on load", func() {
			sc, err := scenes.Get("simple")
			Expect(err).NotTo(HaveOccurred())
			s, err = New(sc)
			Expect(err).NotTo(HaveOccurred())

			cloth, _ := scenes.Get("cloth")
			Expect(s.Load(cloth)).To(Succeed())
			Expect(s.PointCount()).To(Equal(100))
			Expect(s.Params().Wind).To(Equal(2.0))

			broken := custom(dynamo.Features{}, func(sc *dynamo.Scene) error {
				return sc.AddSpring(0, 1, 1)
			})
			Expect(s.Load(broken)).To(MatchError(dynamo.ErrInvalidIndex))
			Expect(s.Scenario().Name).To(Equal("cloth"))
			Expect(s.PointCount()).To(Equal(100))
		})
	})
})
