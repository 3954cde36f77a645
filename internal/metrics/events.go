package metrics

import "github.com/san-kum/driftsim/internal/sim"

// Bounces counts wall collisions per tick, averaged.
type Bounces struct {
	name    string
	total   int
	samples int
}

func NewBounces() *Bounces {
	return &Bounces{name: "bounces_per_tick"}
}

func (b *Bounces) Name() string { return b.name }

func (b *Bounces) OnTick(f *sim.Frame) {
	b.total += f.Bounces
	b.samples++
}

func (b *Bounces) Value() float64 {
	if b.samples == 0 {
		return 0
	}
	return float64(b.total) / float64(b.samples)
}

// Total is the number of bounces seen since the last reset.
func (b *Bounces) Total() int { return b.total }

func (b *Bounces) Reset() {
	b.total = 0
	b.samples = 0
}

// BlendPairs averages the number of connected pairs per tick.
type BlendPairs struct {
	name    string
	total   int
	samples int
}

func NewBlendPairs() *BlendPairs {
	return &BlendPairs{name: "blend_pairs"}
}

func (b *BlendPairs) Name() string { return b.name }

func (b *BlendPairs) OnTick(f *sim.Frame) {
	b.total += len(f.Connections)
	b.samples++
}

func (b *BlendPairs) Value() float64 {
	if b.samples == 0 {
		return 0
	}
	return float64(b.total) / float64(b.samples)
}

func (b *BlendPairs) Reset() {
	b.total = 0
	b.samples = 0
}

// GhostPeak is the most ghosts alive in a single frame.
type GhostPeak struct {
	name string
	peak int
}

func NewGhostPeak() *GhostPeak {
	return &GhostPeak{name: "ghost_peak"}
}

func (g *GhostPeak) Name() string { return g.name }

func (g *GhostPeak) OnTick(f *sim.Frame) {
	g.peak = max(g.peak, len(f.Ghosts))
}

func (g *GhostPeak) Value() float64 { return float64(g.peak) }

func (g *GhostPeak) Reset() { g.peak = 0 }
