package sim

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/san-kum/driftsim/internal/ghost"
	"github.com/san-kum/driftsim/internal/particle"
)

const (
	DefaultParticles      = 20
	DefaultMinRadiusRatio = 0.1
	DefaultMaxRadiusRatio = 0.4
	DefaultSideMulti      = 1.0
	DefaultLogInterval    = 10 * time.Second

	// DefaultBeatInterval is used when the beat is toggled on without a
	// configured interval.
	DefaultBeatInterval = 500 * time.Millisecond

	// pending trigger requests beyond this are dropped
	requestBacklog = 64
)

// Config describes one simulation run.
type Config struct {
	Particles int
	// Particle.MinRadius/MaxRadius, when zero, are derived from the viewport's
	// shorter side using the ratios below.
	Particle       particle.Params
	MinRadiusRatio float64
	MaxRadiusRatio float64
	Ghost          ghost.Params
	LogInterval    time.Duration
	BeatInterval   time.Duration
}

func DefaultConfig() Config {
	return Config{
		Particles:      DefaultParticles,
		Particle:       particle.DefaultParams(0, 0),
		MinRadiusRatio: DefaultMinRadiusRatio,
		MaxRadiusRatio: DefaultMaxRadiusRatio,
		Ghost:          ghost.DefaultParams(),
		LogInterval:    DefaultLogInterval,
	}
}

func (c Config) Validate() error {
	p := c.Particle
	switch {
	case c.Particles < 0:
		return fmt.Errorf("%w: particle count must not be negative, got %d", ErrInvalidConfig, c.Particles)
	case p.Limits.MaxSpeed <= 0:
		return fmt.Errorf("%w: max speed must be positive, got %f", ErrInvalidConfig, p.Limits.MaxSpeed)
	case p.Limits.LessMaxAccel <= 0:
		return fmt.Errorf("%w: less max accel must be positive, got %f", ErrInvalidConfig, p.Limits.LessMaxAccel)
	case p.Limits.Margin < 0:
		return fmt.Errorf("%w: margin must not be negative, got %f", ErrInvalidConfig, p.Limits.Margin)
	case p.InitialAccel <= 0:
		return fmt.Errorf("%w: initial accel must be positive, got %f", ErrInvalidConfig, p.InitialAccel)
	case p.MinRadius < 0 || p.MaxRadius < 0 || (p.MaxRadius > 0 && p.MaxRadius < p.MinRadius):
		return fmt.Errorf("%w: radius range [%f, %f]", ErrInvalidConfig, p.MinRadius, p.MaxRadius)
	case (p.MinRadius == 0 || p.MaxRadius == 0) && (c.MinRadiusRatio <= 0 || c.MaxRadiusRatio < c.MinRadiusRatio):
		return fmt.Errorf("%w: radius ratios [%f, %f]", ErrInvalidConfig, c.MinRadiusRatio, c.MaxRadiusRatio)
	case p.RadiusStepMaxDelta < 0:
		return fmt.Errorf("%w: radius step must not be negative, got %f", ErrInvalidConfig, p.RadiusStepMaxDelta)
	case p.MutateChance < 0 || p.MutateChance > 1:
		return fmt.Errorf("%w: mutate chance must be in [0, 1], got %f", ErrInvalidConfig, p.MutateChance)
	case p.RadiusMutatePause < 0:
		return fmt.Errorf("%w: radius mutate pause must not be negative, got %v", ErrInvalidConfig, p.RadiusMutatePause)
	case p.BlendFalloff <= 0:
		return fmt.Errorf("%w: blend falloff must be positive, got %f", ErrInvalidConfig, p.BlendFalloff)
	case c.Ghost.Lifetime <= 0:
		return fmt.Errorf("%w: ghost lifetime must be positive, got %v", ErrInvalidConfig, c.Ghost.Lifetime)
	case c.Ghost.RadiusRatio < 0:
		return fmt.Errorf("%w: ghost radius ratio must not be negative, got %f", ErrInvalidConfig, c.Ghost.RadiusRatio)
	case c.LogInterval < 0 || c.BeatInterval < 0:
		return fmt.Errorf("%w: intervals must not be negative", ErrInvalidConfig)
	}
	return nil
}

// TickContext carries the viewport extents for one tick.
type TickContext struct {
	HalfWidth  float64
	HalfHeight float64
}

func NewTickContext(halfWidth, halfHeight float64) (TickContext, error) {
	if !(halfWidth > 0) || !(halfHeight > 0) || math.IsInf(halfWidth, 0) || math.IsInf(halfHeight, 0) {
		return TickContext{}, fmt.Errorf("%w: got %fx%f", ErrInvalidExtent, halfWidth, halfHeight)
	}
	return TickContext{HalfWidth: halfWidth, HalfHeight: halfHeight}, nil
}

// ViewportContext derives the half extents from a pixel viewport, scaled by
// sideMulti and rounded to whole pixels.
func ViewportContext(width, height int, sideMulti float64) (TickContext, error) {
	half := 0.5 * sideMulti
	return NewTickContext(math.Round(float64(width)*half), math.Round(float64(height)*half))
}

// MinSide is the shorter full side of the viewport.
func (c TickContext) MinSide() float64 {
	return 2 * math.Min(c.HalfWidth, c.HalfHeight)
}

// TouchDistance is the blend threshold for this viewport.
func (c TickContext) TouchDistance() float64 {
	return particle.TouchMaxDistance(c.HalfWidth, c.HalfHeight)
}

type ParticleView struct {
	Index          int
	X, Y, Z        float64
	Radius         float64
	Color          colorful.Color
	SpeedX, SpeedY float64
	AccelX, AccelY float64
	Mutable        bool
}

type GhostView struct {
	X, Y, Z float64
	Radius  float64
	Color   colorful.Color
	Alpha   float64
}

// Frame is the read-only result of one tick, handed to renderers and observers.
type Frame struct {
	Tick        uint64
	Time        time.Duration
	HalfWidth   float64
	HalfHeight  float64
	Particles   []ParticleView
	Ghosts      []GhostView
	Connections []particle.Connection
	Bounces     int
	Spawned     int
}

// Observer is notified after every tick.
type Observer interface {
	OnTick(f *Frame)
}

// Stats is the aggregate status readout.
type Stats struct {
	Particles int
	Ghosts    int
	Ticks     uint64
	Beat      bool
}

// Line formats the status readout, e.g. "3 ghosts | 20 particles | Beat | 60fps".
// The ghost count is left out while there are none.
func (s Stats) Line(audio bool, fps int) string {
	var parts []string
	if s.Ghosts > 0 {
		parts = append(parts, fmt.Sprintf("%d ghosts", s.Ghosts))
	}
	parts = append(parts, fmt.Sprintf("%d particles", s.Particles))
	if audio {
		parts = append(parts, "Audio")
	}
	if s.Beat {
		parts = append(parts, "Beat")
	}
	parts = append(parts, fmt.Sprintf("%dfps", fps))
	return strings.Join(parts, " | ")
}
