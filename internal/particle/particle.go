// Package particle holds the particle model and the population that owns it.
package particle

import (
	"fmt"
	"math"
	"time"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/san-kum/driftsim/internal/kinematics"
	"github.com/san-kum/driftsim/internal/random"
	"github.com/san-kum/driftsim/internal/sched"
)

// Particle is a soft disc moving on two independent axes.
type Particle struct {
	Index   int
	X, Y    kinematics.Axis
	Z       float64
	Radius  float64
	Mutable bool
	Color   colorful.Color

	reenable *sched.Task
}

// New creates a particle with a random radius, position and colour inside the
// given half extents. Radius mutation starts disabled; callers suppress it
// through SuppressMutation so the re-enable is scheduled.
func New(index int, src random.Source, p *Params, halfWidth, halfHeight float64) *Particle {
	r := random.Between(src, p.MinRadius, p.MaxRadius)
	return &Particle{
		Index:  index,
		X:      kinematics.NewAxis(src, halfWidth-r, p.InitialAccel),
		Y:      kinematics.NewAxis(src, halfHeight-r, p.InitialAccel),
		Radius: r,
		Color:  colorful.Color{R: src.Float64(), G: src.Float64(), B: src.Float64()},
	}
}

// Step mutates the radius (when allowed) and advances both axes. It reports
// whether either axis bounced.
func (pt *Particle) Step(src random.Source, p *Params, halfWidth, halfHeight float64) bool {
	if pt.Mutable && src.Float64() < p.MutateChance {
		r := pt.Radius + random.Between(src, -p.RadiusStepMaxDelta, p.RadiusStepMaxDelta)
		pt.Radius = p.Clamp.Apply(r, p.MinRadius, p.MaxRadius)
	}

	_, bx := pt.X.Step(src, p.Limits, halfWidth, pt.Radius, p.MinRadius)
	_, by := pt.Y.Step(src, p.Limits, halfHeight, pt.Radius, p.MinRadius)
	return bx || by
}

// SuppressMutation disables radius mutation now and re-enables it pause later.
// A pending re-enable is cancelled first, so repeated calls extend the quiet
// period instead of stacking tasks.
func (pt *Particle) SuppressMutation(s *sched.Scheduler, now, pause time.Duration) {
	pt.Mutable = false
	pt.reenable = s.Reschedule(pt.reenable, now+pause, func(time.Duration) {
		pt.AllowMutation()
	})
}

// AllowMutation re-enables radius mutation.
func (pt *Particle) AllowMutation() {
	pt.reenable = nil
	pt.Mutable = true
}

// MutationResumesAt returns when radius mutation is scheduled to come back, if it is.
func (pt *Particle) MutationResumesAt() (time.Duration, bool) {
	if !pt.reenable.Pending() {
		return 0, false
	}
	return pt.reenable.FireAt(), true
}

// Distance is the on-screen distance between the two centres.
func (pt *Particle) Distance(o *Particle) float64 {
	return math.Hypot(pt.X.Coord-o.X.Coord, pt.Y.Coord-o.Y.Coord)
}

// TouchMaxDistance is the distance below which two particles blend.
func TouchMaxDistance(halfWidth, halfHeight float64) float64 {
	return math.Sqrt(halfWidth*halfWidth+halfHeight*halfHeight) / 2
}

// String summarises the particle for logs.
func (pt *Particle) String() string {
	coords := fmt.Sprintf("(%.0f;%.0f;%.0f)", pt.X.Coord, pt.Y.Coord, pt.Z)
	speed := fmt.Sprintf("(%.1f;%.1f)", pt.X.Speed, pt.Y.Speed)
	accel := fmt.Sprintf("(%.3f;%.3f)", pt.X.Accel, pt.Y.Accel)
	return fmt.Sprintf("%d %s %s r=%.2f V=%s a=%s", pt.Index, pt.Color.Hex(), coords, pt.Radius, speed, accel)
}
