package sim_test

import (
	"io"
	"log/slog"
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/phasesim/internal/dynamo"
	"github.com/san-kum/phasesim/internal/lattice"
	"github.com/san-kum/phasesim/internal/sim"
)

const frame = 1.0 / 60

func newEngine(mutate func(*sim.Config)) *sim.Engine {
	cfg := sim.DefaultConfig()
	if mutate != nil {
		mutate(&cfg)
	}
	e, err := sim.New(cfg, sim.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	Expect(err).NotTo(HaveOccurred())
	return e
}

// hold steps e at tempC for seconds of simulated time and returns the
// largest per-frame displacement seen over the final tail seconds.
func hold(e *sim.Engine, tempC, seconds, tail float64) float64 {
	frames := int(math.Round(seconds / frame))
	tailFrames := int(math.Round(tail / frame))
	prev := e.Particles()
	worst := 0.0
	for i := 0; i < frames; i++ {
		e.Step(frame, tempC)
		cur := e.Particles()
		if i >= frames-tailFrames {
			worst = math.Max(worst, cur.MaxDisplacement(prev))
		}
		prev = cur
	}
	return worst
}

var _ = Describe("Engine", func() {
	Context("held at -50 °C", func() {
		var (
			e     *sim.Engine
			drift float64
		)

		BeforeEach(func() {
			e = newEngine(nil)
			drift = hold(e, -50, 5, 0.5)
		})

		It("settles into a still crystal", func() {
			Expect(drift).To(BeNumerically("<", 0.01))
			Expect(e.Particles().IsValid()).To(BeTrue())
		})

		It("gives every particle its own anchor", func() {
			Expect(e.Solid()).To(BeTrue())
			Expect(e.Assigned()).To(Equal(sim.DefaultParticles))
		})

		It("sits each particle near its anchor", func() {
			anchors := e.Anchors()
			for i, p := range e.Particles() {
				a := anchors[e.AnchorOf(i)]
				Expect(math.Hypot(p.X-a.X, p.Y-a.Y)).To(BeNumerically("<", 10), "particle %d", i)
			}
		})

		It("keeps the minimum separation", func() {
			ps := e.Particles()
			minSep := e.Config().Relax.MinSeparation
			for i := range ps {
				for j := i + 1; j < len(ps); j++ {
					Expect(math.Hypot(ps[j].X-ps[i].X, ps[j].Y-ps[i].Y)).
						To(BeNumerically(">=", minSep-1e-6), "pair (%d,%d)", i, j)
				}
			}
		})
	})

	Context("held at 150 °C", func() {
		It("assigns no anchors and holds fewer bonds than the crystal", func() {
			hot := newEngine(nil)
			hold(hot, 150, 5, 0)

			cold := newEngine(nil)
			hold(cold, -50, 5, 0)

			Expect(hot.Solid()).To(BeFalse())
			Expect(hot.Assigned()).To(BeZero())
			Expect(hot.ActiveBonds()).To(BeNumerically("<", cold.ActiveBonds()))
		})
	})

	Context("flash freeze from 120 °C", func() {
		type sample struct{ elapsed, boost float64 }

		curve := func(dt float64) []sample {
			e := newEngine(nil)
			hold(e, 120, 1, 0)
			Expect(e.Freeze()).To(BeTrue())
			Expect(e.Boost()).To(Equal(1.0))

			var out []sample
			elapsed := 0.0
			for elapsed < 3 {
				e.Step(dt, -20)
				elapsed += dt
				out = append(out, sample{elapsed, e.Boost()})
			}
			return out
		}

		It("decays linearly to zero over the freeze duration at any frame rate", func() {
			total := sim.DefaultConfig().FreezeDuration
			for _, dt := range []float64{1.0 / 60, 1.0 / 20} {
				for _, s := range curve(dt) {
					want := math.Max(0, 1-s.elapsed/total)
					Expect(s.boost).To(BeNumerically("~", want, 1e-9), "dt=%v t=%v", dt, s.elapsed)
				}
			}
		})

		It("returns to idle once the timer runs out", func() {
			e := newEngine(nil)
			hold(e, 120, 0.5, 0)
			Expect(e.Freeze()).To(BeTrue())
			hold(e, -20, 2.6, 0)
			Expect(e.Boost()).To(BeZero())
			Expect(e.Freezing()).To(BeFalse())
		})

		It("is refused below boiling", func() {
			e := newEngine(nil)
			hold(e, 80, 0.5, 0)
			Expect(e.Freeze()).To(BeFalse())
			Expect(e.Boost()).To(BeZero())
		})
	})

	Context("a fully stacked ensemble", func() {
		It("steps through every regime without producing NaN", func() {
			cfg := sim.DefaultConfig()
			cfg.Particles = 4
			e, err := sim.New(cfg,
				sim.WithRand(fixed(0.5)),
				sim.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
			)
			Expect(err).NotTo(HaveOccurred())

			for _, temp := range []float64{20, 150} {
				e.Step(frame, temp)
				Expect(e.Particles().IsValid()).To(BeTrue(), "at %v °C", temp)
				Expect(e.Pairs().Degenerate).To(Equal(6))
				Expect(e.Pairs().Within).To(Equal(6))
			}

			e.Step(frame, -20)
			ps := e.Particles()
			Expect(ps.IsValid()).To(BeTrue())
			for i := range ps {
				for j := i + 1; j < len(ps); j++ {
					Expect(ps[i].X != ps[j].X || ps[i].Y != ps[j].Y).To(BeTrue(), "pair (%d,%d)", i, j)
				}
			}
		})
	})

	Context("lattice rebuilds", func() {
		It("are bit-identical for identical bounds", func() {
			bounds := lattice.Rect{MaxX: 800, MaxY: 500}
			Expect(lattice.Build(bounds, lattice.SolidSpacing)).To(Equal(lattice.Build(bounds, lattice.SolidSpacing)))
		})

		It("are reproduced by a resize to the same container", func() {
			e := newEngine(func(c *sim.Config) { c.InitialTemperature = -10 })
			before := e.Anchors()
			Expect(e.Resize(sim.DefaultWidth, sim.DefaultHeight)).To(Succeed())
			Expect(e.Anchors()).To(Equal(before))
		})
	})
})

type fixed float64

func (f fixed) Float64() float64 { return float64(f) }

var _ dynamo.Rand = fixed(0)
