package particle

import (
	"errors"
	"fmt"
	"time"

	"github.com/san-kum/driftsim/internal/random"
	"github.com/san-kum/driftsim/internal/sched"
)

// ErrIndexOrder is returned by Insert for an index that does not follow every
// live index.
var ErrIndexOrder = errors.New("particle: index out of order")

// StepResult is what one population tick produced besides motion.
type StepResult struct {
	Connections []Connection
	Bounces     int
}

// Population owns every live particle, keyed by a stable ascending index.
type Population struct {
	params    Params
	src       random.Source
	sched     *sched.Scheduler
	particles map[int]*Particle
	indexes   []int
}

func NewPopulation(params Params, src random.Source, s *sched.Scheduler) *Population {
	return &Population{
		params:    params,
		src:       src,
		sched:     s,
		particles: make(map[int]*Particle),
		indexes:   make([]int, 0, 32),
	}
}

func (p *Population) Params() *Params { return &p.params }

func (p *Population) Len() int { return len(p.indexes) }

// Indexes returns the live indexes in ascending order.
func (p *Population) Indexes() []int {
	out := make([]int, len(p.indexes))
	copy(out, p.indexes)
	return out
}

func (p *Population) Get(index int) (*Particle, bool) {
	pt, ok := p.particles[index]
	return pt, ok
}

// Each calls fn for every particle in ascending index order.
func (p *Population) Each(fn func(*Particle)) {
	for _, i := range p.indexes {
		fn(p.particles[i])
	}
}

// Particles returns the live particles in ascending index order.
func (p *Population) Particles() []*Particle {
	out := make([]*Particle, 0, len(p.indexes))
	p.Each(func(pt *Particle) { out = append(out, pt) })
	return out
}

// EnsureSize grows the population by at most one particle per call while it is
// below target. It returns the new particle, or nil when nothing was created.
func (p *Population) EnsureSize(target int, now time.Duration, halfWidth, halfHeight float64) *Particle {
	if len(p.indexes) >= target {
		return nil
	}
	next := 1
	if n := len(p.indexes); n > 0 {
		next = p.indexes[n-1] + 1
	}
	pt := New(next, p.src, &p.params, halfWidth, halfHeight)
	p.insert(pt)
	pt.SuppressMutation(p.sched, now, p.params.RadiusMutatePause)
	return pt
}

// Insert adds an already-built particle. Its index must be positive and
// greater than every live index.
func (p *Population) Insert(pt *Particle) error {
	last := 0
	if n := len(p.indexes); n > 0 {
		last = p.indexes[n-1]
	}
	if pt.Index <= last {
		return fmt.Errorf("%w: %d after %d", ErrIndexOrder, pt.Index, last)
	}
	p.insert(pt)
	return nil
}

func (p *Population) insert(pt *Particle) {
	p.particles[pt.Index] = pt
	p.indexes = append(p.indexes, pt.Index)
}

// StepAll moves every particle once in index order, then runs the blend pass
// over the settled positions. Damping from all pairs is accumulated and
// committed at the end so the result does not depend on pair order.
func (p *Population) StepAll(now time.Duration, halfWidth, halfHeight float64) StepResult {
	var res StepResult
	for _, i := range p.indexes {
		pt := p.particles[i]
		if pt.Step(p.src, &p.params, halfWidth, halfHeight) {
			pt.SuppressMutation(p.sched, now, p.params.RadiusMutatePause)
			res.Bounces++
		}
	}

	if !p.params.Connections || len(p.indexes) < 2 {
		return res
	}

	touch := TouchMaxDistance(halfWidth, halfHeight)
	damping := make(map[int]float64)
	for ai, i := range p.indexes {
		a := p.particles[i]
		for _, j := range p.indexes[ai+1:] {
			b := p.particles[j]
			c, ok := Blend(a, b, touch, &p.params)
			if !ok {
				continue
			}
			res.Connections = append(res.Connections, c)
			f := DampingFactor(c.Alfa, &p.params)
			damping[i] = factor(damping, i) * f
			damping[j] = factor(damping, j) * f
		}
	}

	for i, f := range damping {
		pt := p.particles[i]
		pt.X.Damp(f)
		pt.Y.Damp(f)
	}
	return res
}

func factor(m map[int]float64, i int) float64 {
	if f, ok := m[i]; ok {
		return f
	}
	return 1
}
