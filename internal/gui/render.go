package gui

import (
	"fmt"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/san-kum/driftsim/internal/background"
	"github.com/san-kum/driftsim/internal/sim"
)

// toRL converts a colour with an opacity in [0,1] to a raylib colour.
func toRL(c colorful.Color, alpha float64) rl.Color {
	r, g, b := c.Clamped().RGB255()
	if alpha < 0 {
		alpha = 0
	} else if alpha > 1 {
		alpha = 1
	}
	return rl.NewColor(r, g, b, uint8(alpha*255+0.5))
}

// projector maps simulation coordinates, centred on the origin, to screen pixels.
type projector struct {
	cx, cy float32
	scale  float32
}

func (a *App) projector() projector {
	w, h := float32(rl.GetScreenWidth()), float32(rl.GetScreenHeight())
	return projector{cx: w / 2, cy: h / 2, scale: float32(1 / a.opts.SideMulti)}
}

func (p projector) point(x, y float64) rl.Vector2 {
	return rl.NewVector2(p.cx+float32(x)*p.scale, p.cy+float32(y)*p.scale)
}

func (p projector) length(v float64) float32 { return float32(v) * p.scale }

func (a *App) Draw() {
	rl.BeginDrawing()
	rl.ClearBackground(ColBg)

	if a.frame != nil {
		proj := a.projector()
		if a.ShowBackground {
			a.drawBackground(a.frame)
		}
		if a.ShowGrid {
			a.drawGrid(proj, a.frame)
		}
		if a.ShowConnections {
			a.drawConnections(proj, a.frame)
		}
		a.drawParticles(proj, a.frame)
		a.drawGhosts(proj, a.frame)
	}

	a.DrawHUD()
	a.DrawTelemetry()
	rl.EndDrawing()
}

// drawBackground shades the screen in fieldCell squares sampled from the noise field.
func (a *App) drawBackground(f *sim.Frame) {
	w, h := int(rl.GetScreenWidth()), int(rl.GetScreenHeight())
	cols, rows := (w+fieldCell-1)/fieldCell, (h+fieldCell-1)/fieldCell
	grid := a.opts.Field.Grid(cols, rows, f.HalfWidth, f.HalfHeight, f.Time)
	for r, row := range grid {
		for c, v := range row {
			rl.DrawRectangle(int32(c*fieldCell), int32(r*fieldCell), fieldCell, fieldCell, toRL(background.Color(v), 1))
		}
	}
}

// drawGrid outlines the bounds and draws the centre axes.
func (a *App) drawGrid(p projector, f *sim.Frame) {
	tl := p.point(-f.HalfWidth, -f.HalfHeight)
	rl.DrawRectangleLinesEx(rl.NewRectangle(tl.X, tl.Y, p.length(2*f.HalfWidth), p.length(2*f.HalfHeight)), 1, ColGrid)
	axis := rl.ColorAlpha(ColGrid, 0.25)
	rl.DrawLineV(p.point(-f.HalfWidth, 0), p.point(f.HalfWidth, 0), axis)
	rl.DrawLineV(p.point(0, -f.HalfHeight), p.point(0, f.HalfHeight), axis)
}

func (a *App) drawConnections(p projector, f *sim.Frame) {
	for _, c := range f.Connections {
		if c.A < 0 || c.B < 0 || c.A >= len(f.Particles) || c.B >= len(f.Particles) {
			continue
		}
		pa, pb := f.Particles[c.A], f.Particles[c.B]
		rl.DrawLineEx(p.point(pa.X, pa.Y), p.point(pb.X, pb.Y), p.length(c.Weight()), toRL(c.Color, c.Alpha()))
	}
}

func (a *App) drawParticles(p projector, f *sim.Frame) {
	for _, pv := range f.Particles {
		rl.DrawCircleV(p.point(pv.X, pv.Y), p.length(pv.Radius), toRL(pv.Color, 1))
	}
}

func (a *App) drawGhosts(p projector, f *sim.Frame) {
	for _, g := range f.Ghosts {
		rl.DrawCircleV(p.point(g.X, g.Y), p.length(g.Radius), toRL(g.Color, g.Alpha))
	}
}

func (a *App) DrawHUD() {
	w := int(rl.GetScreenWidth())
	line := a.sim.Stats().Line(a.audioActive(), a.fps.Shown())
	size := 16
	tw := int(rl.MeasureTextEx(a.font, line, float32(size), 1).X)
	a.drawText(line, w-tw-buttonMargin, buttonMargin, size, ColText)

	if a.err != nil {
		a.drawText(a.err.Error(), buttonMargin, buttonMargin, size, ColSelect)
	}

	boom, stop := a.buttons()
	label := "Stop"
	if !a.Running {
		label = "Start"
	}
	a.drawButton(boom, "Boom")
	a.drawButton(stop, label)

	help := "SPACE stop  B boom  T beat  C links  G grid  F field  Q quit"
	a.drawText(help, buttonMargin, int(boom.Y)-24, 12, ColTextDim)
}

func (a *App) audioActive() bool {
	return a.opts.AudioActive != nil && a.opts.AudioActive()
}

func (a *App) drawButton(r rl.Rectangle, label string) {
	col := ColAccent
	if rl.CheckCollisionPointRec(rl.GetMousePosition(), r) {
		col = ColSelect
	}
	rl.DrawRectangleLinesEx(r, 1, col)
	size := float32(16)
	m := rl.MeasureTextEx(a.font, label, size, 1)
	a.drawText(label, int(r.X+(r.Width-m.X)/2), int(r.Y+(r.Height-m.Y)/2), int(size), col)
}

func (a *App) drawText(text string, x, y int, size int, color rl.Color) {
	rl.DrawTextEx(a.font, text, rl.NewVector2(float32(x), float32(y)), float32(size), 1, color)
}

// DrawTelemetry plots recent kinetic energy as a line strip above the buttons.
func (a *App) DrawTelemetry() {
	if len(a.Telemetry) < 2 {
		return
	}

	boom, _ := a.buttons()
	rectX := int(boom.X + boom.Width + buttonMargin)
	width, height := 300, 40
	rectY := int(boom.Y+boom.Height) - height

	minVal, maxVal := a.Telemetry[0], a.Telemetry[0]
	for _, v := range a.Telemetry {
		if v < minVal {
			minVal = v
		}
		if v > maxVal {
			maxVal = v
		}
	}
	if maxVal == minVal {
		maxVal = minVal + 1
	}

	points := make([]rl.Vector2, len(a.Telemetry))
	for i, val := range a.Telemetry {
		px := float32(rectX) + (float32(i)/float32(maxTelemetry))*float32(width)
		norm := (val - minVal) / (maxVal - minVal)
		py := float32(rectY+height) - float32(norm)*float32(height)
		points[i] = rl.NewVector2(px, py)
	}

	rl.DrawLineStrip(points, ColAccent)
	a.drawText(fmt.Sprintf("E: %.2e", a.Telemetry[len(a.Telemetry)-1]), rectX+width+10, rectY+height-14, 14, ColText)
}
