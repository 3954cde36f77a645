package sim_test

import (
	"bytes"
	"context"
	"time"

	"github.com/charmbracelet/log"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/driftsim/internal/clock"
	"github.com/san-kum/driftsim/internal/ghost"
	"github.com/san-kum/driftsim/internal/kinematics"
	"github.com/san-kum/driftsim/internal/random"
	"github.com/san-kum/driftsim/internal/sim"
)

func fixedRadiusConfig(n int, r float64) sim.Config {
	cfg := sim.DefaultConfig()
	cfg.Particles = n
	cfg.Particle.MinRadius = r
	cfg.Particle.MaxRadius = r
	cfg.LogInterval = 0
	return cfg
}

var _ = Describe("Simulation", func() {
	var (
		clk *clock.Manual
		ctx sim.TickContext
	)

	BeforeEach(func() {
		clk = clock.NewManual(0)
		var err error
		ctx, err = sim.NewTickContext(100, 100)
		Expect(err).NotTo(HaveOccurred())
	})

	newSim := func(cfg sim.Config) *sim.Simulation {
		s, err := sim.New(cfg, ctx, clk, random.New(1))
		Expect(err).NotTo(HaveOccurred())
		s.SetLogger(log.New(GinkgoWriter))
		return s
	}

	tick := func(s *sim.Simulation) *sim.Frame {
		f, err := s.Tick(ctx)
		Expect(err).NotTo(HaveOccurred())
		return f
	}

	It("grows the population by one particle per tick up to the target", func() {
		s := newSim(fixedRadiusConfig(3, 5))
		for i := 1; i <= 5; i++ {
			f := tick(s)
			Expect(f.Particles).To(HaveLen(min(i, 3)))
		}
		Expect(s.Population().Indexes()).To(Equal([]int{1, 2, 3}))
	})

	It("clamps a particle driven into the wall and reverses it", func() {
		s := newSim(fixedRadiusConfig(2, 5))
		tick(s)
		tick(s)

		a, ok := s.Population().Get(1)
		Expect(ok).To(BeTrue())
		b, _ := s.Population().Get(2)
		a.X = kinematics.Axis{Coord: 98, Speed: 5, Accel: a.X.Accel}
		a.Y = kinematics.Axis{Coord: 0, Speed: 0, Accel: a.Y.Accel}
		b.X.Coord, b.Y.Coord, b.X.Speed, b.Y.Speed = -80, -80, 0, 0

		f := tick(s)
		Expect(a.X.Coord).To(Equal(100.0 - 5 - 2))
		Expect(a.X.Speed).To(BeNumerically("<", 0))
		Expect(f.Bounces).To(BeNumerically(">=", 1))
		Expect(a.Mutable).To(BeFalse())
	})

	It("spawns one ghost per particle and clears them after the lifetime", func() {
		s := newSim(fixedRadiusConfig(3, 5))
		for i := 0; i < 3; i++ {
			tick(s)
		}

		Expect(s.SpawnGhosts(0)).To(Equal(3))
		Expect(s.Ghosts().Len()).To(Equal(3))

		clk.Advance(ghost.DefaultLifetime)
		f := tick(s)
		Expect(s.Ghosts().Len()).To(Equal(0))
		Expect(f.Ghosts).To(BeEmpty())
	})

	It("spawns a random subset when a count is given", func() {
		s := newSim(fixedRadiusConfig(4, 5))
		for i := 0; i < 4; i++ {
			tick(s)
		}
		Expect(s.SpawnGhosts(2)).To(Equal(2))
		Expect(s.Stats().Ghosts).To(Equal(2))
	})

	It("applies queued ghost requests on the next tick", func() {
		s := newSim(fixedRadiusConfig(3, 5))
		for i := 0; i < 3; i++ {
			tick(s)
		}

		done := make(chan bool)
		go func() { done <- s.RequestGhosts(0) }()
		Eventually(done).Should(Receive(BeTrue()))
		Expect(s.Ghosts().Len()).To(Equal(0))

		f := tick(s)
		Expect(f.Spawned).To(Equal(3))
		Expect(f.Ghosts).To(HaveLen(3))
	})

	It("re-enables radius mutation after the pause", func() {
		cfg := fixedRadiusConfig(1, 5)
		s := newSim(cfg)
		tick(s)

		pt, _ := s.Population().Get(1)
		Expect(pt.Mutable).To(BeFalse())
		pt.X = kinematics.Axis{Accel: pt.X.Accel}
		pt.Y = kinematics.Axis{Accel: pt.Y.Accel}

		clk.Advance(cfg.Particle.RadiusMutatePause - time.Millisecond)
		tick(s)
		Expect(pt.Mutable).To(BeFalse())

		clk.Advance(time.Millisecond)
		tick(s)
		Expect(pt.Mutable).To(BeTrue())
	})

	It("keeps every particle inside the viewport and its radius range", func() {
		cfg := sim.DefaultConfig()
		cfg.LogInterval = 0
		s, err := sim.New(cfg, ctx, clk, random.New(42))
		Expect(err).NotTo(HaveOccurred())
		p := s.Population().Params()

		for i := 0; i < 3000; i++ {
			f := tick(s)
			for _, v := range f.Particles {
				Expect(v.X).To(BeNumerically("<=", ctx.HalfWidth))
				Expect(v.X).To(BeNumerically(">=", -ctx.HalfWidth))
				Expect(v.Y).To(BeNumerically("<=", ctx.HalfHeight))
				Expect(v.Y).To(BeNumerically(">=", -ctx.HalfHeight))
				Expect(v.Radius).To(BeNumerically(">=", p.MinRadius))
				Expect(v.Radius).To(BeNumerically("<=", p.MaxRadius))
			}
			clk.Advance(16 * time.Millisecond)
		}
	})

	It("derives the radius range from the viewport", func() {
		s := newSim(func() sim.Config { c := sim.DefaultConfig(); c.LogInterval = 0; return c }())
		p := s.Population().Params()
		Expect(p.MinRadius).To(BeNumerically("~", 20, 1e-9))
		Expect(p.MaxRadius).To(BeNumerically("~", 80, 1e-9))
	})

	DescribeTable("derives only the missing radius bound",
		func(minR, maxR, wantMin, wantMax float64) {
			cfg := sim.DefaultConfig()
			cfg.LogInterval = 0
			cfg.Particle.MinRadius, cfg.Particle.MaxRadius = minR, maxR
			p := newSim(cfg).Population().Params()
			Expect(p.MinRadius).To(BeNumerically("~", wantMin, 1e-9))
			Expect(p.MaxRadius).To(BeNumerically("~", wantMax, 1e-9))
		},
		Entry("explicit minimum", 30.0, 0.0, 30.0, 80.0),
		Entry("explicit maximum", 0.0, 50.0, 20.0, 50.0),
	)

	It("rejects an explicit minimum above the derived maximum", func() {
		cfg := sim.DefaultConfig()
		cfg.Particle.MinRadius = 90
		_, err := sim.New(cfg, ctx, clk, random.New(1))
		Expect(err).To(MatchError(sim.ErrInvalidConfig))
	})

	It("rejects a viewport too small for the largest particle", func() {
		s := newSim(fixedRadiusConfig(1, 5))
		small, err := sim.NewTickContext(6, 100)
		Expect(err).NotTo(HaveOccurred())
		_, err = s.Tick(small)
		Expect(err).To(MatchError(sim.ErrViewportTooSmall))
	})

	It("rejects an invalid config", func() {
		cfg := sim.DefaultConfig()
		cfg.Ghost.Lifetime = 0
		_, err := sim.New(cfg, ctx, clk, random.New(1))
		Expect(err).To(MatchError(sim.ErrInvalidConfig))
	})

	Context("with a beat", func() {
		It("spawns ghosts and calls the hook on every beat until toggled off", func() {
			cfg := fixedRadiusConfig(2, 5)
			cfg.BeatInterval = 100 * time.Millisecond
			s := newSim(cfg)
			beats := 0
			s.OnBeat(func(time.Duration) { beats++ })
			Expect(s.Stats().Beat).To(BeTrue())

			tick(s)
			tick(s)
			clk.Advance(100 * time.Millisecond)
			f := tick(s)
			Expect(beats).To(Equal(1))
			Expect(f.Ghosts).To(HaveLen(2))

			Expect(s.ToggleBeat()).To(BeFalse())
			clk.Advance(time.Second)
			tick(s)
			Expect(beats).To(Equal(1))

			Expect(s.ToggleBeat()).To(BeTrue())
		})

		It("starts off without an interval and toggles on at the default", func() {
			s := newSim(fixedRadiusConfig(2, 5))
			beats := 0
			s.OnBeat(func(time.Duration) { beats++ })
			Expect(s.Stats().Beat).To(BeFalse())

			tick(s)
			clk.Advance(time.Second)
			tick(s)
			Expect(beats).To(Equal(0))

			Expect(s.ToggleBeat()).To(BeTrue())
			Expect(s.Stats().Beat).To(BeTrue())
			clk.Advance(sim.DefaultBeatInterval - time.Millisecond)
			tick(s)
			Expect(beats).To(Equal(0))
			clk.Advance(time.Millisecond)
			f := tick(s)
			Expect(beats).To(Equal(1))
			Expect(f.Ghosts).To(HaveLen(2))

			Expect(s.ToggleBeat()).To(BeFalse())
		})
	})

	It("logs a state summary and one line per particle", func() {
		var buf bytes.Buffer
		cfg := fixedRadiusConfig(2, 5)
		cfg.LogInterval = time.Second
		s := newSim(cfg)
		s.SetLogger(log.NewWithOptions(&buf, log.Options{Level: log.DebugLevel}))

		tick(s)
		tick(s)
		clk.Advance(time.Second)
		tick(s)

		out := buf.String()
		Expect(out).To(ContainSubstring("full: 200x200  2 particles"))
		Expect(out).To(ContainSubstring("1 #"))
		Expect(out).To(ContainSubstring("2 #"))
	})

	It("notifies observers with the frame", func() {
		s := newSim(fixedRadiusConfig(1, 5))
		rec := &recorder{}
		s.AddObserver(rec)
		tick(s)
		tick(s)
		Expect(rec.ticks).To(Equal([]uint64{1, 2}))
	})
})

type recorder struct{ ticks []uint64 }

func (r *recorder) OnTick(f *sim.Frame) { r.ticks = append(r.ticks, f.Tick) }

var _ = Describe("Run", func() {
	var rc sim.RunConfig

	BeforeEach(func() {
		vp, err := sim.NewTickContext(400, 300)
		Expect(err).NotTo(HaveOccurred())
		rc = sim.RunConfig{Ticks: 120, FrameInterval: 16 * time.Millisecond, Viewport: vp, Seed: 7, GhostsEvery: 30}
	})

	It("runs the requested number of ticks on simulated time", func() {
		res, err := sim.Run(context.Background(), sim.DefaultConfig(), rc, nil)
		Expect(err).NotTo(HaveOccurred())
		Expect(res.StepsTaken).To(Equal(120))
		Expect(res.SimTime).To(Equal(120 * 16 * time.Millisecond))
		Expect(res.Final.Particles).To(Equal(sim.DefaultParticles))
		Expect(res.Final.Ticks).To(Equal(uint64(120)))
	})

	It("stops on context cancellation", func() {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		res, err := sim.Run(ctx, sim.DefaultConfig(), rc, nil)
		Expect(err).To(MatchError(context.Canceled))
		Expect(res.StepsTaken).To(Equal(0))
	})

	It("rejects a non-positive tick count", func() {
		rc.Ticks = 0
		_, err := sim.Run(context.Background(), sim.DefaultConfig(), rc, nil)
		Expect(err).To(MatchError(sim.ErrInvalidConfig))
	})

	It("runs an ensemble with consecutive seeds", func() {
		e := sim.NewEnsemble(sim.DefaultConfig(), rc, 3, nil)
		results, err := e.Run(context.Background())
		Expect(err).NotTo(HaveOccurred())
		Expect(results).To(HaveLen(3))
		for i, r := range results {
			Expect(r.Seed).To(Equal(int64(7 + i)))
			Expect(r.StepsTaken).To(Equal(120))
		}
	})
})
