package viz

import (
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/driftsim/internal/background"
	"github.com/san-kum/driftsim/internal/metrics"
	"github.com/san-kum/driftsim/internal/sim"
)

const (
	width           = 80
	height          = 24
	historyCapacity = 300
	frameInterval   = time.Second / 60
)

type TickMsg time.Time

// Options wires the live view to its optional collaborators.
type Options struct {
	Viewport sim.TickContext
	// Field is the background noise; nil disables it.
	Field *background.Field
	// AudioActive reports whether a listener or the kick player is running.
	AudioActive func() bool
	Theme       string
	Logger      *log.Logger
}

// Model renders a running simulation on a braille canvas. The simulation
// viewport stays fixed; terminal resizes only rescale the projection.
type Model struct {
	sim      *sim.Simulation
	opts     Options
	canvas   *Canvas
	width    int
	height   int
	theme    Theme
	styles   styles
	fps      *metrics.FPSMeter
	frame    *sim.Frame
	err      error
	running  bool
	showHelp bool

	showConnections bool
	showBackground  bool

	energyHistory []float64
	ghostHistory  []float64
}

func NewModel(s *sim.Simulation, opts Options) Model {
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	theme := GetTheme(opts.Theme)
	return Model{
		sim:             s,
		opts:            opts,
		canvas:          NewCanvas(width, height),
		width:           width,
		height:          height,
		theme:           theme,
		styles:          newStyles(theme),
		fps:             metrics.NewFPSMeter(),
		running:         true,
		showConnections: s.Config().Particle.Connections,
		showBackground:  opts.Field != nil,
		energyHistory:   make([]float64, 0, historyCapacity),
		ghostHistory:    make([]float64, 0, historyCapacity),
	}
}

func tick() tea.Cmd {
	return tea.Tick(frameInterval, func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m Model) Init() tea.Cmd {
	return tick()
}

// Update handles input events and steps the simulation.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			m.running = !m.running
		case "b":
			n := m.sim.SpawnGhosts(0)
			m.opts.Logger.Debug("boom", "ghosts", n)
		case "t":
			on := m.sim.ToggleBeat()
			m.opts.Logger.Info("beat toggled", "on", on)
		case "c":
			m.showConnections = !m.showConnections
		case "g":
			m.showBackground = !m.showBackground && m.opts.Field != nil
		case "p":
			m.theme = m.theme.Next()
			m.styles = newStyles(m.theme)
		case "?":
			m.showHelp = !m.showHelp
		}
	case tea.WindowSizeMsg:
		// leave room for the side panel
		w, h := msg.Width-52, msg.Height-4
		if w > 10 && h > 5 {
			m.width, m.height = w, h
			m.canvas = NewCanvas(w, h)
		}
	case TickMsg:
		if m.running {
			m.step()
		}
		m.draw()
		return m, tick()
	}
	return m, nil
}

func (m *Model) step() {
	f, err := m.sim.Tick(m.opts.Viewport)
	if err != nil {
		if m.err == nil {
			m.opts.Logger.Error("tick failed", "err", err)
		}
		m.err = err
		return
	}
	m.err = nil
	m.frame = f
	m.fps.Frame(f.Time)
	m.energyHistory = push(m.energyHistory, metrics.FrameEnergy(f))
	m.ghostHistory = push(m.ghostHistory, float64(len(f.Ghosts)))
}

func push(h []float64, v float64) []float64 {
	h = append(h, v)
	if len(h) > historyCapacity {
		h = h[1:]
	}
	return h
}

// project maps simulation coordinates to canvas dots. Both axes share one
// scale so circles stay round.
func (m *Model) project(x, y float64) (int, int) {
	s := m.scale()
	cx, cy := float64(m.canvas.DotWidth())/2, float64(m.canvas.DotHeight())/2
	return int(math.Round(cx + x*s)), int(math.Round(cy + y*s))
}

func (m *Model) scale() float64 {
	vp := m.opts.Viewport
	return math.Min(float64(m.canvas.DotWidth())/(2*vp.HalfWidth), float64(m.canvas.DotHeight())/(2*vp.HalfHeight))
}

func (m *Model) draw() {
	m.canvas.Clear()
	if m.showBackground && m.opts.Field != nil {
		m.drawBackground()
	}
	f := m.frame
	if f == nil {
		return
	}
	s := m.scale()

	if m.showConnections {
		pos := make(map[int]sim.ParticleView, len(f.Particles))
		for _, p := range f.Particles {
			pos[p.Index] = p
		}
		for _, c := range f.Connections {
			a, b := pos[c.A], pos[c.B]
			x0, y0 := m.project(a.X, a.Y)
			x1, y1 := m.project(b.X, b.Y)
			m.canvas.DrawLine(x0, y0, x1, y1, c.Color.Clamped().Hex())
		}
	}

	for _, p := range f.Particles {
		x, y := m.project(p.X, p.Y)
		m.canvas.FillCircle(x, y, int(p.Radius*s), p.Color.Clamped().Hex())
	}

	for _, g := range f.Ghosts {
		x, y := m.project(g.X, g.Y)
		m.canvas.DrawCircle(x, y, int(g.Radius*s), g.Color.Clamped().Hex())
	}
}

func (m *Model) drawBackground() {
	t := m.sim.Now()
	if m.frame != nil {
		t = m.frame.Time
	}
	vp := m.opts.Viewport
	grid := m.opts.Field.Grid(m.canvas.Width, m.canvas.Height, vp.HalfWidth, vp.HalfHeight, t)
	for row, vals := range grid {
		for col, v := range vals {
			m.canvas.Shade(col, row, m.theme.FieldColor(v))
		}
	}
}

func (m Model) audioActive() bool {
	return m.opts.AudioActive != nil && m.opts.AudioActive()
}

// View renders the TUI interface.
func (m Model) View() string {
	st := m.styles
	canvasView := st.canvas.Render(m.canvas.Render())

	var s strings.Builder
	s.WriteString(st.header.Render("DRIFTSIM") + "\n")

	status := st.running.Render("RUNNING")
	if !m.running {
		status = st.paused.Render("PAUSED")
	}
	s.WriteString(status + "\n\n")

	stats := m.sim.Stats()
	s.WriteString(st.value.Render(stats.Line(m.audioActive(), m.fps.Shown())) + "\n\n")

	if len(m.energyHistory) > 1 {
		chart := asciigraph.Plot(m.energyHistory, asciigraph.Height(4), asciigraph.Width(30), asciigraph.Caption("Kinetic energy"))
		s.WriteString(st.graph.Render(chart) + "\n\n")
	}

	s.WriteString(st.label.Render("Ghosts") + st.sparkline(m.ghostHistory, 30) + "\n")
	s.WriteString(st.label.Render("Time") + st.value.Render(fmt.Sprintf("%.1fs", m.sim.Now().Seconds())) + "\n")
	s.WriteString(st.label.Render("Ticks") + st.value.Render(fmt.Sprintf("%d", stats.Ticks)) + "\n")
	if m.frame != nil {
		s.WriteString(st.label.Render("Pairs") + st.value.Render(fmt.Sprintf("%d", len(m.frame.Connections))) + "\n")
	}
	s.WriteString(st.label.Render("Theme") + st.value.Render(m.theme.Name) + "\n")
	if m.err != nil {
		s.WriteString("\n" + st.paused.Render(m.err.Error()) + "\n")
	}

	s.WriteString(st.hint.Render("SP:Pause B:Boom T:Beat Q:Quit\nC:Links  G:Field P:Theme ?:Help"))
	mainView := lipgloss.JoinHorizontal(lipgloss.Top, canvasView, st.panel.Render(s.String()))

	if m.showHelp {
		return `
╔══════════════════════════════════════╗
║          KEYBOARD SHORTCUTS          ║
╠══════════════════════════════════════╣
║  Space    - Stop/Start               ║
║  B        - Boom (ghost every one)   ║
║  T        - Toggle periodic beat     ║
║  C        - Toggle connections       ║
║  G        - Toggle background field  ║
║  P        - Cycle themes             ║
║  Q        - Quit                     ║
║  ?        - Toggle this help         ║
╚══════════════════════════════════════╝
` + "\n\n" + mainView
	}
	return mainView
}

// Run starts the live view in the alternate screen and blocks until it quits.
func Run(s *sim.Simulation, opts Options) error {
	_, err := tea.NewProgram(NewModel(s, opts), tea.WithAltScreen()).Run()
	return err
}
