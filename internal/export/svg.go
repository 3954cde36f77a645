// Package export writes frames as standalone SVG images.
package export

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/san-kum/driftsim/internal/sim"
)

const background = "#0a0a0a"

// FrameToSVG renders a frame with the origin at the centre of the image:
// connections first, then particles, then ghosts on top.
func FrameToSVG(f *sim.Frame) string {
	if f == nil {
		return ""
	}

	w, h := 2*f.HalfWidth, 2*f.HalfHeight
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%.0f" height="%.0f" viewBox="%.0f %.0f %.0f %.0f">
<rect x="%.0f" y="%.0f" width="%.0f" height="%.0f" fill="%s"/>
`, w, h, -f.HalfWidth, -f.HalfHeight, w, h, -f.HalfWidth, -f.HalfHeight, w, h, background))

	pos := make(map[int]sim.ParticleView, len(f.Particles))
	for _, p := range f.Particles {
		pos[p.Index] = p
	}

	sb.WriteString("<g stroke-linecap=\"round\">\n")
	for _, c := range f.Connections {
		a, okA := pos[c.A]
		b, okB := pos[c.B]
		if !okA || !okB {
			continue
		}
		sb.WriteString(fmt.Sprintf(`<line x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f" stroke="%s" stroke-opacity="%.3f" stroke-width="%.2f"/>
`, a.X, a.Y, b.X, b.Y, c.Color.Clamped().Hex(), c.Alpha(), c.Weight()))
	}
	sb.WriteString("</g>\n<g>\n")

	for _, p := range f.Particles {
		sb.WriteString(fmt.Sprintf(`<circle cx="%.1f" cy="%.1f" r="%.2f" fill="%s"/>
`, p.X, p.Y, p.Radius, p.Color.Clamped().Hex()))
	}
	sb.WriteString("</g>\n<g>\n")

	for _, g := range f.Ghosts {
		sb.WriteString(fmt.Sprintf(`<circle cx="%.1f" cy="%.1f" r="%.2f" fill="%s" fill-opacity="%.3f"/>
`, g.X, g.Y, math.Max(g.Radius, 0), g.Color.Clamped().Hex(), g.Alpha))
	}

	sb.WriteString("</g>\n</svg>\n")
	return sb.String()
}

// WriteSVG writes FrameToSVG(f) to w.
func WriteSVG(w io.Writer, f *sim.Frame) error {
	_, err := io.WriteString(w, FrameToSVG(f))
	return err
}
