package viz

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/san-kum/driftsim/internal/background"
	"github.com/san-kum/driftsim/internal/clock"
	"github.com/san-kum/driftsim/internal/random"
	"github.com/san-kum/driftsim/internal/sim"
)

func newTestModel(t *testing.T) (Model, *clock.Manual) {
	t.Helper()
	vp, err := sim.NewTickContext(320, 180)
	if err != nil {
		t.Fatal(err)
	}
	cfg := sim.DefaultConfig()
	cfg.Particles = 4
	cfg.LogInterval = 0
	clk := clock.NewManual(0)
	s, err := sim.New(cfg, vp, clk, random.New(1))
	if err != nil {
		t.Fatal(err)
	}
	logger := log.New(&strings.Builder{})
	s.SetLogger(logger)
	return NewModel(s, Options{Viewport: vp, Field: background.New(1, 12, 1), Logger: logger}), clk
}

func update(m Model, msg tea.Msg) Model {
	next, _ := m.Update(msg)
	return next.(Model)
}

func key(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestModelTicks(t *testing.T) {
	m, clk := newTestModel(t)
	for i := 0; i < 4; i++ {
		m = update(m, TickMsg(time.Now()))
		clk.Advance(16 * time.Millisecond)
	}
	if got := m.sim.Stats().Particles; got != 4 {
		t.Errorf("expected 4 particles, got %d", got)
	}
	if len(m.energyHistory) != 4 {
		t.Errorf("expected 4 energy samples, got %d", len(m.energyHistory))
	}
	if !strings.Contains(m.View(), "4 particles") {
		t.Error("expected status line in view")
	}
}

func TestModelPause(t *testing.T) {
	m, _ := newTestModel(t)
	m = update(m, key(" "))
	if m.running {
		t.Fatal("expected paused")
	}
	m = update(m, TickMsg(time.Now()))
	if m.sim.Stats().Ticks != 0 {
		t.Error("expected no tick while paused")
	}
	if !strings.Contains(m.View(), "PAUSED") {
		t.Error("expected paused status")
	}
}

func TestModelBoom(t *testing.T) {
	m, _ := newTestModel(t)
	m = update(m, TickMsg(time.Now()))
	m = update(m, TickMsg(time.Now()))
	m = update(m, key("b"))
	if got := m.sim.Ghosts().Len(); got != 2 {
		t.Errorf("expected 2 ghosts, got %d", got)
	}
}

func TestModelToggles(t *testing.T) {
	m, _ := newTestModel(t)
	m = update(m, key("c"))
	m = update(m, key("g"))
	m = update(m, key("p"))
	if m.showConnections || m.showBackground {
		t.Error("expected connections and background off")
	}
	if m.theme.Name != "ocean" {
		t.Errorf("expected ocean theme, got %s", m.theme.Name)
	}
}

func TestModelQuit(t *testing.T) {
	m, _ := newTestModel(t)
	_, cmd := m.Update(key("q"))
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("expected tea.QuitMsg")
	}
}

func TestPickerBuildsLiveView(t *testing.T) {
	built := ""
	p := NewPicker([]PresetInfo{{"calm", "slow"}, {"crowd", "many"}}, func(name string) (Model, error) {
		built = name
		m, _ := newTestModel(t)
		return m, nil
	})
	p.Update(key("j"))
	p.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if built != "crowd" {
		t.Errorf("expected crowd to be built, got %q", built)
	}
	if p.state != stateSim {
		t.Error("expected picker to switch to the live view")
	}
}
