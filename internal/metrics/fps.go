package metrics

import (
	"math"
	"time"

	"github.com/san-kum/driftsim/internal/sim"
)

const (
	initialFPS = 60
	fpsJump    = 30
)

// FPSMeter holds the frame rate shown in the status line. The displayed value
// only follows the measured one on a large jump or once every fps frames, so
// the readout does not flicker.
type FPSMeter struct {
	name    string
	shown   int
	frames  uint64
	last    time.Duration
	hasLast bool
}

func NewFPSMeter() *FPSMeter {
	return &FPSMeter{name: "fps", shown: initialFPS}
}

func (m *FPSMeter) Name() string { return m.name }

func (m *FPSMeter) OnTick(f *sim.Frame) {
	m.Frame(f.Time)
}

// Frame records a frame rendered at now and returns the displayed fps.
func (m *FPSMeter) Frame(now time.Duration) int {
	m.frames++
	if !m.hasLast {
		m.last, m.hasLast = now, true
		return m.shown
	}
	dt := now - m.last
	m.last = now
	if dt <= 0 {
		return m.shown
	}
	m.Measure(int(math.Round(float64(time.Second) / float64(dt))))
	return m.shown
}

// Measure applies one measured rate to the displayed value.
func (m *FPSMeter) Measure(current int) {
	if current <= 0 {
		return
	}
	diff := m.shown - current
	if diff < 0 {
		diff = -diff
	}
	if diff > fpsJump || m.frames%uint64(current) == 0 {
		m.shown = current
	}
}

func (m *FPSMeter) Shown() int { return m.shown }

func (m *FPSMeter) Value() float64 { return float64(m.shown) }

func (m *FPSMeter) Reset() {
	m.shown = initialFPS
	m.frames = 0
	m.hasLast = false
}

// All returns a fresh set of every headless metric.
func All() []sim.Metric {
	return []sim.Metric{
		NewKineticEnergy(),
		NewPeakSpeed(),
		NewBounces(),
		NewBlendPairs(),
		NewGhostPeak(),
		NewFPSMeter(),
	}
}
