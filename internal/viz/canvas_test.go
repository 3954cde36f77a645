package viz

import (
	"strings"
	"testing"
)

func TestCanvasSet(t *testing.T) {
	c := NewCanvas(2, 1)
	c.Set(0, 0)
	c.Set(3, 3)
	c.Set(-1, 0)
	c.Set(4, 0)

	if c.Grid[0][0] != 0x2801 {
		t.Errorf("expected dot 1 in first cell, got %U", c.Grid[0][0])
	}
	if c.Grid[0][1] != 0x2880 {
		t.Errorf("expected dot 8 in second cell, got %U", c.Grid[0][1])
	}
}

func TestCanvasPlotColours(t *testing.T) {
	c := NewCanvas(4, 2)
	c.Plot(2, 5, "#ff0000")
	c.Shade(0, 0, "#000011")

	if c.Fg[1][1] != "#ff0000" {
		t.Errorf("expected cell colour, got %q", c.Fg[1][1])
	}
	if c.Bg[0][0] != "#000011" {
		t.Errorf("expected background colour, got %q", c.Bg[0][0])
	}

	c.Clear()
	if c.Fg[1][1] != "" || c.Bg[0][0] != "" || c.Grid[1][1] != blank {
		t.Error("expected clear to reset dots and colours")
	}
}

func TestDrawLineEndpoints(t *testing.T) {
	c := NewCanvas(10, 3)
	c.DrawLine(0, 0, 19, 11, "")

	if c.Grid[0][0]&0x1 == 0 {
		t.Error("expected start dot set")
	}
	if c.Grid[2][9]&0x80 == 0 {
		t.Error("expected end dot set")
	}
}

func TestDrawCircleSymmetric(t *testing.T) {
	c := NewCanvas(20, 10)
	c.DrawCircle(20, 20, 8, "")

	dots := func(x, y int) bool {
		return c.Grid[y/4][x/2]&rune(pixelMap[y%4][x%2]) != 0
	}
	for _, p := range [][2]int{{28, 20}, {12, 20}, {20, 28}, {20, 12}} {
		if !dots(p[0], p[1]) {
			t.Errorf("expected dot at %v", p)
		}
	}
	if dots(20, 20) {
		t.Error("outline should leave the centre empty")
	}
}

func TestFillCircle(t *testing.T) {
	c := NewCanvas(20, 10)
	c.FillCircle(20, 20, 3, "#00ff00")
	if c.Grid[5][10]&rune(pixelMap[0][0]) == 0 {
		t.Error("expected centre filled")
	}
	if c.Fg[5][10] != "#00ff00" {
		t.Errorf("expected fill colour, got %q", c.Fg[5][10])
	}
}

func TestRenderKeepsDots(t *testing.T) {
	c := NewCanvas(3, 2)
	c.Plot(0, 0, "#ff0000")
	out := c.Render()
	if !strings.Contains(out, string(rune(0x2801))) {
		t.Error("expected rendered output to contain the dot")
	}
	if strings.Count(out, "\n") != 2 {
		t.Errorf("expected 2 lines, got %d", strings.Count(out, "\n"))
	}
	if c.String() != "⠁⠀⠀\n⠀⠀⠀\n" {
		t.Errorf("unexpected plain output %q", c.String())
	}
}

func TestThemes(t *testing.T) {
	if GetTheme("missing").Name != "night" {
		t.Error("expected fallback to night")
	}
	if ThemeSunset.Next().Name != "night" {
		t.Error("expected theme cycle to wrap")
	}
	if got := ThemeNight.FieldColor(0); got != ThemeNight.FieldLow {
		t.Errorf("expected low end %s, got %s", ThemeNight.FieldLow, got)
	}
}
