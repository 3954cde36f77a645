// Package clock supplies the elapsed-time source the simulation reads once per tick.
package clock

import (
	"sync"
	"time"
)

// Clock reports time elapsed since the clock started.
type Clock interface {
	Now() time.Duration
}

// Wall is a monotonic clock anchored at construction.
type Wall struct {
	start time.Time
}

func NewWall() *Wall {
	return &Wall{start: time.Now()}
}

func (w *Wall) Now() time.Duration {
	return time.Since(w.start)
}

// Manual is a controllable clock for tests and fixed-step headless runs.
type Manual struct {
	mu  sync.RWMutex
	now time.Duration
}

func NewManual(start time.Duration) *Manual {
	return &Manual{now: start}
}

func (m *Manual) Now() time.Duration {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.now
}

// Set moves the clock to t.
func (m *Manual) Set(t time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = t
}

// Advance moves the clock forward by d.
func (m *Manual) Advance(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now += d
}
