package particle

import (
	"math"

	"github.com/lucasb-eyer/go-colorful"
)

// Connection records two particles close enough to visually merge.
type Connection struct {
	A, B  int
	Color colorful.Color
	// Alfa is the raw blend strength; it grows past 1 for overlapping centres.
	Alfa float64
}

// Alpha is the strength clamped for drawing.
func (c Connection) Alpha() float64 { return math.Min(c.Alfa, 1) }

// Weight is the stroke width used for the connecting line.
func (c Connection) Weight() float64 { return c.Alfa * 5 }

// BlendStrength returns the blend strength for two centres distance apart, or
// false when they are too far apart to interact.
func BlendStrength(distance, touch, falloff float64) (float64, bool) {
	delta := touch - distance
	if delta < 0 {
		return 0, false
	}
	return delta / falloff, true
}

// Blend evaluates a single pair.
func Blend(a, b *Particle, touch float64, p *Params) (Connection, bool) {
	alfa, ok := BlendStrength(a.Distance(b), touch, p.BlendFalloff)
	if !ok {
		return Connection{}, false
	}
	return Connection{
		A:     a.Index,
		B:     b.Index,
		Color: a.Color.BlendLinearRgb(b.Color, 0.5),
		Alfa:  alfa,
	}, true
}

// DampingFactor is the acceleration multiplier applied to both members of a
// blended pair.
func DampingFactor(alfa float64, p *Params) float64 {
	return 1 - alfa*p.BlendDamping
}
