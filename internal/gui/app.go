package gui

import (
	"github.com/charmbracelet/log"
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/san-kum/driftsim/internal/background"
	"github.com/san-kum/driftsim/internal/metrics"
	"github.com/san-kum/driftsim/internal/sim"
)

var (
	ColBg      = rl.NewColor(10, 10, 10, 255)
	ColAccent  = rl.NewColor(180, 180, 180, 255)
	ColSelect  = rl.NewColor(255, 255, 255, 255)
	ColText    = rl.NewColor(140, 140, 140, 255)
	ColTextDim = rl.NewColor(60, 60, 60, 255)
	ColGrid    = rl.NewColor(128, 128, 128, 64)
)

const (
	buttonWidth  = 120
	buttonHeight = 32
	buttonMargin = 16
	fieldCell    = 16
	maxTelemetry = 300
)

// Options configures the window renderer.
type Options struct {
	Width, Height int
	SideMulti     float64
	// Field is the background noise; nil disables it.
	Field           *background.Field
	AudioActive     func() bool
	ShowConnections bool
	Logger          *log.Logger
}

type App struct {
	sim   *sim.Simulation
	opts  Options
	font  rl.Font
	fps   *metrics.FPSMeter
	frame *sim.Frame
	err   error

	Telemetry []float64

	Running         bool
	ShowConnections bool
	ShowGrid        bool
	ShowBackground  bool
}

// initWindow opens a resizable window of the configured size at 60 fps and
// disables the default exit key.
func initWindow(w, h int) {
	rl.SetConfigFlags(rl.FlagWindowResizable | rl.FlagMsaa4xHint)
	rl.InitWindow(int32(w), int32(h), "driftsim")
	rl.SetTargetFPS(60)
	rl.SetExitKey(0)
}

// loadFont loads Liberation Mono from the system path, falling back to the
// raylib default font.
func loadFont() rl.Font {
	font := rl.LoadFontEx("/usr/share/fonts/liberation/LiberationMono-Regular.ttf", 32, nil, 0)
	if font.Texture.ID == 0 {
		return rl.GetFontDefault()
	}
	rl.SetTextureFilter(font.Texture, rl.FilterBilinear)
	return font
}

func NewApp(s *sim.Simulation, opts Options) *App {
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	if opts.SideMulti <= 0 {
		opts.SideMulti = sim.DefaultSideMulti
	}
	return &App{
		sim:             s,
		opts:            opts,
		font:            loadFont(),
		fps:             metrics.NewFPSMeter(),
		Running:         true,
		ShowConnections: opts.ShowConnections,
		ShowBackground:  opts.Field != nil,
	}
}

// Run opens the window and blocks until it is closed.
func Run(s *sim.Simulation, opts Options) {
	initWindow(opts.Width, opts.Height)
	defer rl.CloseWindow()
	app := NewApp(s, opts)
	app.RunLoop()
}

func (a *App) RunLoop() {
	for !rl.WindowShouldClose() {
		if !a.Update() {
			return
		}
		a.Draw()
	}
}

// Update handles input and advances the simulation by one tick unless
// stopped. It returns false when the user asked to quit.
func (a *App) Update() bool {
	if rl.IsKeyPressed(rl.KeyQ) || rl.IsKeyPressed(rl.KeyEscape) {
		return false
	}
	if rl.IsKeyPressed(rl.KeySpace) {
		a.Running = !a.Running
	}
	if rl.IsKeyPressed(rl.KeyB) {
		a.boom()
	}
	if rl.IsKeyPressed(rl.KeyT) {
		on := a.sim.ToggleBeat()
		a.opts.Logger.Info("beat toggled", "on", on)
	}
	if rl.IsKeyPressed(rl.KeyC) {
		a.ShowConnections = !a.ShowConnections
	}
	if rl.IsKeyPressed(rl.KeyG) {
		a.ShowGrid = !a.ShowGrid
	}
	if rl.IsKeyPressed(rl.KeyF) && a.opts.Field != nil {
		a.ShowBackground = !a.ShowBackground
	}

	if rl.IsMouseButtonPressed(rl.MouseLeftButton) {
		mouse := rl.GetMousePosition()
		boom, stop := a.buttons()
		switch {
		case rl.CheckCollisionPointRec(mouse, boom):
			a.boom()
		case rl.CheckCollisionPointRec(mouse, stop):
			a.Running = !a.Running
		}
	}

	if a.Running {
		a.step()
	}
	return true
}

func (a *App) boom() {
	n := a.sim.SpawnGhosts(0)
	a.opts.Logger.Debug("boom", "ghosts", n)
}

func (a *App) step() {
	ctx, err := a.viewport()
	if err == nil {
		var f *sim.Frame
		f, err = a.sim.Tick(ctx)
		if err == nil {
			a.frame = f
			a.fps.Frame(f.Time)
			a.Telemetry = append(a.Telemetry, metrics.FrameEnergy(f))
			if len(a.Telemetry) > maxTelemetry {
				a.Telemetry = a.Telemetry[1:]
			}
		}
	}
	if err != nil && (a.err == nil || err.Error() != a.err.Error()) {
		a.opts.Logger.Warn("tick skipped", "err", err)
	}
	a.err = err
}

// viewport derives the tick context from the current window size.
func (a *App) viewport() (sim.TickContext, error) {
	return sim.ViewportContext(int(rl.GetScreenWidth()), int(rl.GetScreenHeight()), a.opts.SideMulti)
}

// buttons returns the Boom (bottom left) and Stop/Start (bottom right) rectangles.
func (a *App) buttons() (boom, stop rl.Rectangle) {
	w, h := float32(rl.GetScreenWidth()), float32(rl.GetScreenHeight())
	y := h - buttonHeight - buttonMargin
	boom = rl.NewRectangle(buttonMargin, y, buttonWidth, buttonHeight)
	stop = rl.NewRectangle(w-buttonWidth-buttonMargin, y, buttonWidth, buttonHeight)
	return boom, stop
}
