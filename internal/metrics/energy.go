package metrics

import (
	"math"

	"github.com/san-kum/driftsim/internal/sim"
)

// KineticEnergy averages the per-frame kinetic energy Σ(vx²+vy²)/2 over all
// observed ticks, taking unit mass for every particle.
type KineticEnergy struct {
	name    string
	total   float64
	last    float64
	samples int
}

func NewKineticEnergy() *KineticEnergy {
	return &KineticEnergy{name: "kinetic_energy"}
}

func (e *KineticEnergy) Name() string { return e.name }

func (e *KineticEnergy) OnTick(f *sim.Frame) {
	e.last = FrameEnergy(f)
	e.total += e.last
	e.samples++
}

func (e *KineticEnergy) Value() float64 {
	if e.samples == 0 {
		return 0
	}
	return e.total / float64(e.samples)
}

// Last is the energy of the most recent frame.
func (e *KineticEnergy) Last() float64 { return e.last }

func (e *KineticEnergy) Reset() {
	e.total = 0
	e.last = 0
	e.samples = 0
}

// FrameEnergy is the kinetic energy of one frame.
func FrameEnergy(f *sim.Frame) float64 {
	var sum float64
	for _, p := range f.Particles {
		sum += 0.5 * (p.SpeedX*p.SpeedX + p.SpeedY*p.SpeedY)
	}
	return sum
}

// PeakSpeed tracks the largest speed seen on any axis.
type PeakSpeed struct {
	name string
	max  float64
}

func NewPeakSpeed() *PeakSpeed {
	return &PeakSpeed{name: "peak_speed"}
}

func (p *PeakSpeed) Name() string { return p.name }

func (p *PeakSpeed) OnTick(f *sim.Frame) {
	for _, v := range f.Particles {
		p.max = math.Max(p.max, math.Max(math.Abs(v.SpeedX), math.Abs(v.SpeedY)))
	}
}

func (p *PeakSpeed) Value() float64 { return p.max }

func (p *PeakSpeed) Reset() { p.max = 0 }
