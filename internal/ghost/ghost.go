// Package ghost implements the fading echoes spawned from live particles.
package ghost

import (
	"time"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/san-kum/driftsim/internal/particle"
	"github.com/san-kum/driftsim/internal/random"
)

const (
	DefaultLifetime    = 500 * time.Millisecond
	DefaultRadiusRatio = 12.0
)

var white = colorful.Color{R: 1, G: 1, B: 1}

type Params struct {
	Lifetime    time.Duration
	RadiusRatio float64
}

func DefaultParams() Params {
	return Params{Lifetime: DefaultLifetime, RadiusRatio: DefaultRadiusRatio}
}

// Visual is the drawable state of a ghost for the current tick.
type Visual struct {
	Color  colorful.Color
	Alpha  float64
	Radius float64
}

// Ghost is a frozen copy of a particle's position, radius and colour.
type Ghost struct {
	X, Y, Z   float64
	Radius    float64
	Color     colorful.Color
	SpawnTime time.Duration

	params Params
	visual Visual
}

// New snapshots pt. The ghost keeps no reference to the particle.
func New(pt *particle.Particle, now time.Duration, p Params) *Ghost {
	g := &Ghost{
		X:         pt.X.Coord,
		Y:         pt.Y.Coord,
		Z:         pt.Z,
		Radius:    pt.Radius,
		Color:     pt.Color,
		SpawnTime: now,
		params:    p,
	}
	g.visual = Visual{Color: pt.Color, Alpha: 1}
	return g
}

// Step recomputes the fade for now and reports whether the ghost is still alive.
func (g *Ghost) Step(now time.Duration) bool {
	remaining := g.params.Lifetime - (now - g.SpawnTime)
	if remaining <= 0 {
		return false
	}

	ratio := float64(remaining) / float64(g.params.Lifetime)
	g.visual = Visual{
		Color:  g.Color.BlendLinearRgb(white, ratio*0.9+0.1),
		Alpha:  ratio,
		Radius: g.Radius * g.params.RadiusRatio * (1 - ratio),
	}
	return true
}

// Visual returns the state computed by the last Step.
func (g *Ghost) Visual() Visual { return g.visual }

// Set holds every live ghost. Generations overlap freely.
type Set struct {
	params Params
	ghosts []*Ghost
}

func NewSet(p Params) *Set {
	return &Set{params: p, ghosts: make([]*Ghost, 0, 64)}
}

// Spawn adds one ghost per particle and returns how many were added.
func (s *Set) Spawn(particles []*particle.Particle, now time.Duration) int {
	for _, pt := range particles {
		s.ghosts = append(s.ghosts, New(pt, now, s.params))
	}
	return len(particles)
}

// SpawnSubset adds ghosts for count randomly chosen particles. A count <= 0 or
// larger than the population spawns for all of them.
func (s *Set) SpawnSubset(particles []*particle.Particle, count int, now time.Duration, src random.Source) int {
	if count <= 0 || count >= len(particles) {
		return s.Spawn(particles, now)
	}
	chosen := make([]*particle.Particle, 0, count)
	for _, i := range random.Pick(src, len(particles), count) {
		chosen = append(chosen, particles[i])
	}
	return s.Spawn(chosen, now)
}

// StepAll advances every ghost and keeps the survivors. The survivor list is
// built before the set is replaced.
func (s *Set) StepAll(now time.Duration) {
	keep := make([]*Ghost, 0, len(s.ghosts))
	for _, g := range s.ghosts {
		if g.Step(now) {
			keep = append(keep, g)
		}
	}
	s.ghosts = keep
}

func (s *Set) Len() int { return len(s.ghosts) }

// Ghosts returns the live ghosts.
func (s *Set) Ghosts() []*Ghost {
	out := make([]*Ghost, len(s.ghosts))
	copy(out, s.ghosts)
	return out
}
