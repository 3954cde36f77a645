// Package background renders the slowly evolving noise field drawn behind the
// particles.
package background

import (
	"math"
	"time"

	"github.com/aquilax/go-perlin"
	"github.com/lucasb-eyer/go-colorful"
)

const (
	DefaultScale = 12.0
	DefaultSpeed = 1.0

	alpha   = 2.0
	beta    = 2.0
	octaves = 3
)

var (
	low  = colorful.Color{R: 0.02, G: 0.02, B: 0.06}
	high = colorful.Color{R: 0.16, G: 0.08, B: 0.28}
)

// Field samples 3D Perlin noise over the viewport with time as the third axis.
type Field struct {
	noise *perlin.Perlin
	scale float64
	speed float64
}

func New(seed int64, scale, speed float64) *Field {
	if scale <= 0 {
		scale = DefaultScale
	}
	return &Field{
		noise: perlin.NewPerlin(alpha, beta, octaves, seed),
		scale: scale,
		speed: speed,
	}
}

// Scales corrects the noise scale for the viewport's aspect ratio so features
// stay round: the longer side gets the full scale.
func (f *Field) Scales(halfWidth, halfHeight float64) (sx, sy float64) {
	xRatio, yRatio := 1.0, halfHeight/halfWidth
	if yRatio > 1 {
		xRatio, yRatio = 1/yRatio, 1
	}
	return f.scale * xRatio, f.scale * yRatio
}

// At returns the field value in [0, 1] at simulation coordinates (x, y).
func (f *Field) At(x, y, halfWidth, halfHeight float64, t time.Duration) float64 {
	sx, sy := f.Scales(halfWidth, halfHeight)
	u := (x + halfWidth) / (2 * halfWidth) * sx
	v := (y + halfHeight) / (2 * halfHeight) * sy
	n := f.noise.Noise3D(u, v, t.Seconds()*f.speed)
	return math.Max(0, math.Min(1, (n+1)/2))
}

// Grid samples the field at the centres of a cols x rows grid covering the
// viewport, row by row from the top.
func (f *Field) Grid(cols, rows int, halfWidth, halfHeight float64, t time.Duration) [][]float64 {
	if cols <= 0 || rows <= 0 {
		return nil
	}
	out := make([][]float64, rows)
	cw := 2 * halfWidth / float64(cols)
	ch := 2 * halfHeight / float64(rows)
	for r := range out {
		out[r] = make([]float64, cols)
		y := halfHeight - (float64(r)+0.5)*ch
		for c := range out[r] {
			x := -halfWidth + (float64(c)+0.5)*cw
			out[r][c] = f.At(x, y, halfWidth, halfHeight, t)
		}
	}
	return out
}

// Color maps a field value onto the background palette.
func Color(v float64) colorful.Color {
	return low.BlendLab(high, v).Clamped()
}
