// Package kinematics implements the per-axis motion rule shared by both
// coordinates of a particle.
package kinematics

import (
	"math"

	"github.com/san-kum/driftsim/internal/random"
)

const (
	DefaultMaxSpeed     = 6.0
	DefaultLessMaxAccel = 80000.0
	DefaultMargin       = 2.0
	DefaultInitialAccel = 0.02

	// below this speed the axis is nudged back into motion
	restSpeed = 0.1
	// bounce overshoot on the reversed acceleration
	bounceAccelGain = -1.05
)

// Limits bound the jitter applied to an axis.
type Limits struct {
	MaxSpeed     float64
	LessMaxAccel float64
	Margin       float64
}

func DefaultLimits() Limits {
	return Limits{
		MaxSpeed:     DefaultMaxSpeed,
		LessMaxAccel: DefaultLessMaxAccel,
		Margin:       DefaultMargin,
	}
}

// Axis is one scalar dimension of a particle's motion.
type Axis struct {
	Coord float64
	Speed float64
	Accel float64
}

// NewAxis places the axis uniformly inside [-maxCoord, maxCoord] at rest with a
// nonzero acceleration drawn from (-accelSpan, accelSpan).
func NewAxis(src random.Source, maxCoord, accelSpan float64) Axis {
	accel := random.NonZero(src, accelSpan)
	return Axis{
		Coord: random.Between(src, -maxCoord, maxCoord),
		Speed: 0,
		Accel: accel,
	}
}

// MaxCoord is the furthest the centre of a particle of the given radius may sit
// from the origin along an axis with the given half extent.
func (l Limits) MaxCoord(halfExtent, radius float64) float64 {
	return halfExtent - radius - l.Margin
}

// Step advances the axis by one tick and returns the new coordinate and whether
// the projected position crossed the bound and was reflected.
func (a *Axis) Step(src random.Source, l Limits, halfExtent, radius, minRadius float64) (float64, bool) {
	speed, accel, coord := a.Speed, a.Accel, a.Coord
	sign := sgn(coord)
	maxCoord := l.MaxCoord(halfExtent, radius)
	accelMaxDelta := maxCoord / l.LessMaxAccel * (radius - minRadius)
	absSpeed := math.Abs(speed)

	if absSpeed > l.MaxSpeed {
		accel = -sgn(accel) * random.Upto(src, accelMaxDelta)
	} else if absSpeed < restSpeed {
		accel += sgn(accel) * random.Upto(src, accelMaxDelta)
	}

	bounced := false
	if overMax := math.Abs(coord+speed) - maxCoord; overMax > 0 {
		if accel == 0 {
			accel = -sign * random.Upto(src, accelMaxDelta)
		} else {
			accel *= bounceAccelGain
		}
		speed = -speed
		coord = sign * maxCoord
		bounced = true
	} else {
		coord += speed
	}

	a.Speed = speed + accel
	a.Coord = coord
	a.Accel = accel
	return coord, bounced
}

// Damp scales the acceleration by factor.
func (a *Axis) Damp(factor float64) {
	a.Accel *= factor
}

func sgn(v float64) float64 {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	}
	return 0
}
