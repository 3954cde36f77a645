// Package sim holds the simulation state object: population, ghosts, scheduled
// tasks and the trigger queue, advanced once per rendered frame by Tick.
package sim

import (
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/san-kum/driftsim/internal/clock"
	"github.com/san-kum/driftsim/internal/ghost"
	"github.com/san-kum/driftsim/internal/particle"
	"github.com/san-kum/driftsim/internal/random"
	"github.com/san-kum/driftsim/internal/sched"
)

// Simulation is not safe for concurrent use, except RequestGhosts.
type Simulation struct {
	cfg       Config
	clock     clock.Clock
	src       random.Source
	sched     *sched.Scheduler
	pop       *particle.Population
	ghosts    *ghost.Set
	requests  chan int
	observers []Observer
	logger    *log.Logger

	ticks    uint64
	viewport TickContext
	beatTask *sched.Task
	onBeat   func(now time.Duration)
}

// New builds a simulation for the initial viewport. A zero radius range in cfg
// is derived from the viewport's shorter side.
func New(cfg Config, viewport TickContext, clk clock.Clock, src random.Source) (*Simulation, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if _, err := NewTickContext(viewport.HalfWidth, viewport.HalfHeight); err != nil {
		return nil, err
	}

	// a zero bound is derived from its ratio of the shorter side
	side := viewport.MinSide()
	if cfg.Particle.MinRadius == 0 {
		cfg.Particle.MinRadius = cfg.MinRadiusRatio * side
	}
	if cfg.Particle.MaxRadius == 0 {
		cfg.Particle.MaxRadius = cfg.MaxRadiusRatio * side
	}
	if cfg.Particle.MaxRadius < cfg.Particle.MinRadius {
		return nil, fmt.Errorf("%w: radius range [%f, %f] for a %.0f side", ErrInvalidConfig, cfg.Particle.MinRadius, cfg.Particle.MaxRadius, side)
	}

	s := &Simulation{
		cfg:      cfg,
		clock:    clk,
		src:      src,
		sched:    sched.New(),
		ghosts:   ghost.NewSet(cfg.Ghost),
		requests: make(chan int, requestBacklog),
		logger:   log.Default(),
		viewport: viewport,
	}
	if err := s.checkViewport(viewport); err != nil {
		return nil, err
	}
	s.pop = particle.NewPopulation(cfg.Particle, src, s.sched)

	now := clk.Now()
	if cfg.LogInterval > 0 {
		s.sched.Every(now+cfg.LogInterval, cfg.LogInterval, func(time.Duration) { s.LogState() })
	}
	if cfg.BeatInterval > 0 {
		s.startBeat(now)
	}
	return s, nil
}

func (s *Simulation) SetLogger(l *log.Logger) { s.logger = l }

func (s *Simulation) AddObserver(o Observer) { s.observers = append(s.observers, o) }

// OnBeat registers a hook run on every beat, after the beat's ghosts spawned.
func (s *Simulation) OnBeat(fn func(now time.Duration)) { s.onBeat = fn }

func (s *Simulation) Config() Config                   { return s.cfg }
func (s *Simulation) Population() *particle.Population { return s.pop }
func (s *Simulation) Ghosts() *ghost.Set               { return s.ghosts }
func (s *Simulation) Scheduler() *sched.Scheduler      { return s.sched }
func (s *Simulation) Now() time.Duration               { return s.clock.Now() }

func (s *Simulation) Stats() Stats {
	return Stats{
		Particles: s.pop.Len(),
		Ghosts:    s.ghosts.Len(),
		Ticks:     s.ticks,
		Beat:      s.beatTask.Pending(),
	}
}

// Tick advances the whole simulation by one frame.
func (s *Simulation) Tick(ctx TickContext) (*Frame, error) {
	if err := s.checkViewport(ctx); err != nil {
		return nil, err
	}
	s.viewport = ctx
	now := s.clock.Now()

	s.sched.RunDue(now)
	spawned := s.drainRequests(now)

	if pt := s.pop.EnsureSize(s.cfg.Particles, now, ctx.HalfWidth, ctx.HalfHeight); pt != nil {
		s.logger.Debug("particle spawned", "index", pt.Index, "radius", pt.Radius)
	}
	res := s.pop.StepAll(now, ctx.HalfWidth, ctx.HalfHeight)
	s.ghosts.StepAll(now)
	s.ticks++

	f := s.frame(now, ctx, res, spawned)
	for _, o := range s.observers {
		o.OnTick(f)
	}
	return f, nil
}

// SpawnGhosts creates ghosts on the calling (tick) goroutine. A count <= 0
// spawns one per live particle; otherwise a random subset of that size.
func (s *Simulation) SpawnGhosts(count int) int {
	return s.spawnGhosts(count, s.clock.Now())
}

// RequestGhosts queues a ghost spawn for the next tick. It is safe to call from
// any goroutine and never blocks; it returns false when the queue is full.
func (s *Simulation) RequestGhosts(count int) bool {
	select {
	case s.requests <- count:
		return true
	default:
		s.logger.Debug("ghost request dropped", "backlog", requestBacklog)
		return false
	}
}

// ToggleBeat starts or stops the periodic beat and reports whether it is on.
// Without a configured interval the beat starts off and toggles on at
// DefaultBeatInterval.
func (s *Simulation) ToggleBeat() bool {
	if s.sched.Cancel(s.beatTask) {
		s.beatTask = nil
		return false
	}
	s.startBeat(s.clock.Now())
	return true
}

func (s *Simulation) beatInterval() time.Duration {
	if s.cfg.BeatInterval > 0 {
		return s.cfg.BeatInterval
	}
	return DefaultBeatInterval
}

// LogState writes the population summary at info level and one line per
// particle at debug level.
func (s *Simulation) LogState() {
	title := fmt.Sprintf("full: %.0fx%.0f  %d particles", s.viewport.HalfWidth*2, s.viewport.HalfHeight*2, s.pop.Len())
	if n := s.ghosts.Len(); n > 0 {
		title += fmt.Sprintf(" | %d ghosts", n)
	}
	s.logger.Info(title, "ticks", s.ticks)
	s.pop.Each(func(pt *particle.Particle) {
		s.logger.Debug(pt.String())
	})
}

func (s *Simulation) startBeat(now time.Duration) {
	interval := s.beatInterval()
	s.beatTask = s.sched.Every(now+interval, interval, func(now time.Duration) {
		n := s.spawnGhosts(0, now)
		s.logger.Debug("beat", "ghosts", n)
		if s.onBeat != nil {
			s.onBeat(now)
		}
	})
}

func (s *Simulation) spawnGhosts(count int, now time.Duration) int {
	return s.ghosts.SpawnSubset(s.pop.Particles(), count, now, s.src)
}

func (s *Simulation) drainRequests(now time.Duration) int {
	spawned := 0
	for {
		select {
		case n := <-s.requests:
			spawned += s.spawnGhosts(n, now)
		default:
			return spawned
		}
	}
}

func (s *Simulation) checkViewport(ctx TickContext) error {
	if _, err := NewTickContext(ctx.HalfWidth, ctx.HalfHeight); err != nil {
		return err
	}
	need := s.cfg.Particle.MaxRadius + s.cfg.Particle.Limits.Margin
	if ctx.HalfWidth <= need || ctx.HalfHeight <= need {
		return fmt.Errorf("%w: %.0fx%.0f half extents, need more than %.1f", ErrViewportTooSmall, ctx.HalfWidth, ctx.HalfHeight, need)
	}
	return nil
}

func (s *Simulation) frame(now time.Duration, ctx TickContext, res particle.StepResult, spawned int) *Frame {
	f := &Frame{
		Tick:        s.ticks,
		Time:        now,
		HalfWidth:   ctx.HalfWidth,
		HalfHeight:  ctx.HalfHeight,
		Particles:   make([]ParticleView, 0, s.pop.Len()),
		Ghosts:      make([]GhostView, 0, s.ghosts.Len()),
		Connections: res.Connections,
		Bounces:     res.Bounces,
		Spawned:     spawned,
	}
	s.pop.Each(func(pt *particle.Particle) {
		f.Particles = append(f.Particles, ParticleView{
			Index:   pt.Index,
			X:       pt.X.Coord,
			Y:       pt.Y.Coord,
			Z:       pt.Z,
			Radius:  pt.Radius,
			Color:   pt.Color,
			SpeedX:  pt.X.Speed,
			SpeedY:  pt.Y.Speed,
			AccelX:  pt.X.Accel,
			AccelY:  pt.Y.Accel,
			Mutable: pt.Mutable,
		})
	})
	for _, g := range s.ghosts.Ghosts() {
		v := g.Visual()
		f.Ghosts = append(f.Ghosts, GhostView{X: g.X, Y: g.Y, Z: g.Z, Radius: v.Radius, Color: v.Color, Alpha: v.Alpha})
	}
	return f
}
