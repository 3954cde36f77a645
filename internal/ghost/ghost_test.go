package ghost_test

import (
	"time"

	"github.com/lucasb-eyer/go-colorful"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/driftsim/internal/ghost"
	"github.com/san-kum/driftsim/internal/kinematics"
	"github.com/san-kum/driftsim/internal/particle"
	"github.com/san-kum/driftsim/internal/random"
)

func sourceParticle(index int, x, y, r float64) *particle.Particle {
	return &particle.Particle{
		Index:  index,
		X:      kinematics.Axis{Coord: x},
		Y:      kinematics.Axis{Coord: y},
		Radius: r,
		Color:  colorful.Color{R: 0.2, G: 0.4, B: 0.6},
	}
}

var _ = Describe("Ghost", func() {
	const lifetime = 500 * time.Millisecond
	var (
		params ghost.Params
		src    *particle.Particle
		t0     time.Duration
	)

	BeforeEach(func() {
		params = ghost.DefaultParams()
		src = sourceParticle(1, 12, -7, 10)
		t0 = 3 * time.Second
	})

	It("copies the particle's visual state", func() {
		g := ghost.New(src, t0, params)
		Expect(g.X).To(Equal(12.0))
		Expect(g.Y).To(Equal(-7.0))
		Expect(g.Radius).To(Equal(10.0))
		Expect(g.SpawnTime).To(Equal(t0))
	})

	It("does not follow the particle after spawning", func() {
		g := ghost.New(src, t0, params)
		src.X.Coord = 99
		src.Radius = 3
		src.Color = colorful.Color{R: 1}
		Expect(g.X).To(Equal(12.0))
		Expect(g.Radius).To(Equal(10.0))
		Expect(g.Color).To(Equal(colorful.Color{R: 0.2, G: 0.4, B: 0.6}))
	})

	It("is alive for the whole lifetime and dead at its end", func() {
		g := ghost.New(src, t0, params)
		for dt := time.Duration(0); dt < lifetime; dt += 10 * time.Millisecond {
			Expect(g.Step(t0 + dt)).To(BeTrue(), "dead at +%v", dt)
		}
		Expect(g.Step(t0 + lifetime - time.Nanosecond)).To(BeTrue())
		Expect(g.Step(t0 + lifetime)).To(BeFalse())
		Expect(g.Step(t0 + 2*lifetime)).To(BeFalse())
	})

	It("fades out with strictly decreasing alpha", func() {
		g := ghost.New(src, t0, params)
		Expect(g.Step(t0)).To(BeTrue())
		Expect(g.Visual().Alpha).To(Equal(1.0))

		prev := g.Visual().Alpha
		for dt := 25 * time.Millisecond; dt < lifetime; dt += 25 * time.Millisecond {
			Expect(g.Step(t0 + dt)).To(BeTrue())
			Expect(g.Visual().Alpha).To(BeNumerically("<", prev))
			prev = g.Visual().Alpha
		}
		Expect(prev).To(BeNumerically(">", 0))
	})

	It("grows linearly toward the configured radius multiple", func() {
		g := ghost.New(src, t0, params)
		g.Step(t0 + lifetime/2)
		Expect(g.Visual().Radius).To(BeNumerically("~", 10*params.RadiusRatio*0.5, 1e-9))

		g.Step(t0)
		Expect(g.Visual().Radius).To(BeNumerically("~", 0, 1e-9))
	})

	It("starts almost white and drifts toward its own colour", func() {
		g := ghost.New(src, t0, params)
		g.Step(t0)
		start := g.Visual().Color
		Expect(start.R).To(BeNumerically("~", 1, 1e-6))

		g.Step(t0 + lifetime - time.Millisecond)
		late := g.Visual().Color
		Expect(late.DistanceRgb(src.Color)).To(BeNumerically("<", start.DistanceRgb(src.Color)))
	})
})

var _ = Describe("Set", func() {
	var (
		set       *ghost.Set
		particles []*particle.Particle
	)

	BeforeEach(func() {
		set = ghost.NewSet(ghost.DefaultParams())
		particles = []*particle.Particle{
			sourceParticle(1, 0, 0, 5),
			sourceParticle(2, 10, 10, 6),
			sourceParticle(3, -10, 4, 7),
		}
	})

	It("spawns one ghost per particle and empties after the lifetime", func() {
		Expect(set.Spawn(particles, 0)).To(Equal(3))
		Expect(set.Len()).To(Equal(3))

		set.StepAll(ghost.DefaultLifetime - time.Millisecond)
		Expect(set.Len()).To(Equal(3))

		set.StepAll(ghost.DefaultLifetime)
		Expect(set.Len()).To(Equal(0))
	})

	It("lets generations overlap", func() {
		set.Spawn(particles, 0)
		set.Spawn(particles, 300*time.Millisecond)
		Expect(set.Len()).To(Equal(6))

		set.StepAll(600 * time.Millisecond)
		Expect(set.Len()).To(Equal(3))
		for _, g := range set.Ghosts() {
			Expect(g.SpawnTime).To(Equal(300 * time.Millisecond))
		}
	})

	DescribeTable("spawning a subset",
		func(count, want int) {
			Expect(set.SpawnSubset(particles, count, 0, random.New(4))).To(Equal(want))
			Expect(set.Len()).To(Equal(want))
		},
		Entry("all when count is zero", 0, 3),
		Entry("all when count exceeds population", 5, 3),
		Entry("exactly count otherwise", 2, 2),
	)

	It("picks distinct particles for a subset", func() {
		set.SpawnSubset(particles, 2, 0, random.New(9))
		gs := set.Ghosts()
		Expect(gs).To(HaveLen(2))
		Expect(gs[0].X == gs[1].X && gs[0].Y == gs[1].Y).To(BeFalse())
	})
})
