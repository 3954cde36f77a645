package sim

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/san-kum/driftsim/internal/clock"
	"github.com/san-kum/driftsim/internal/random"
)

// Metric accumulates a scalar over the ticks of a headless run.
type Metric interface {
	Observer
	Name() string
	Value() float64
	Reset()
}

// RunConfig drives a fixed-step headless run.
type RunConfig struct {
	Ticks         int
	FrameInterval time.Duration
	Viewport      TickContext
	Seed          int64
	// GhostsEvery spawns a full set of ghosts every n ticks; 0 disables it.
	GhostsEvery int
	Logger      *log.Logger
}

func (rc RunConfig) validate() error {
	if rc.Ticks <= 0 {
		return fmt.Errorf("%w: ticks must be positive, got %d", ErrInvalidConfig, rc.Ticks)
	}
	if rc.FrameInterval <= 0 {
		return fmt.Errorf("%w: frame interval must be positive, got %v", ErrInvalidConfig, rc.FrameInterval)
	}
	if rc.GhostsEvery < 0 {
		return fmt.Errorf("%w: ghost period must not be negative", ErrInvalidConfig)
	}
	return nil
}

type Result struct {
	Seed       int64
	StepsTaken int
	SimTime    time.Duration
	Final      Stats
	Metrics    map[string]float64
}

// Run advances a fresh simulation on a manual clock, one frame interval per
// tick, until rc.Ticks ticks ran or ctx is cancelled.
func Run(ctx context.Context, cfg Config, rc RunConfig, metrics []Metric, observers ...Observer) (*Result, error) {
	if err := rc.validate(); err != nil {
		return nil, err
	}

	clk := clock.NewManual(0)
	s, err := New(cfg, rc.Viewport, clk, random.New(rc.Seed))
	if err != nil {
		return nil, err
	}
	if rc.Logger != nil {
		s.SetLogger(rc.Logger)
	}
	for _, m := range metrics {
		m.Reset()
		s.AddObserver(m)
	}
	for _, o := range observers {
		s.AddObserver(o)
	}

	result := &Result{Seed: rc.Seed, Metrics: make(map[string]float64)}
	for i := 0; i < rc.Ticks; i++ {
		select {
		case <-ctx.Done():
			return result, ctx.Err()
		default:
		}

		if rc.GhostsEvery > 0 && i > 0 && i%rc.GhostsEvery == 0 {
			s.SpawnGhosts(0)
		}
		if _, err := s.Tick(rc.Viewport); err != nil {
			return result, err
		}
		result.StepsTaken++
		clk.Advance(rc.FrameInterval)
	}

	result.SimTime = clk.Now()
	result.Final = s.Stats()
	for _, m := range metrics {
		result.Metrics[m.Name()] = m.Value()
	}
	return result, nil
}
