package audio

import (
	"math"
	"math/cmplx"
	"time"

	"github.com/mjibson/go-dsp/fft"
)

const (
	DefaultThreshold = 1.6
	DefaultCooldown  = 150 * time.Millisecond

	bassCutoff = 150.0 // Hz
	// energies below this are treated as silence
	noiseFloor = 0.01
	avgDecay   = 0.9
)

// Detector flags a kick-like onset when the bass energy of a block jumps above
// threshold times its running average. After an onset it stays quiet for the
// cooldown.
type Detector struct {
	threshold float64
	cooldown  int // samples
	since     int
	avg       float64
	buf       []complex128
}

func NewDetector(threshold float64, cooldown time.Duration) *Detector {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	n := int(cooldown.Seconds() * SampleRate)
	return &Detector{
		threshold: threshold,
		cooldown:  n,
		since:     n,
		buf:       make([]complex128, BufferSize),
	}
}

// Analyze consumes one block of mono samples and reports whether it holds an onset.
func (d *Detector) Analyze(in []float32) bool {
	if len(in) == 0 {
		return false
	}
	e := d.bassEnergy(in)
	onset := e > noiseFloor && e > d.threshold*d.avg && d.since >= d.cooldown

	d.avg = d.avg*avgDecay + e*(1-avgDecay)
	d.since += len(in)
	if onset {
		d.since = 0
	}
	return onset
}

// Average is the running bass energy.
func (d *Detector) Average() float64 { return d.avg }

func (d *Detector) bassEnergy(in []float32) float64 {
	n := len(in)
	if n < 2 {
		return 0
	}
	if len(d.buf) != n {
		d.buf = make([]complex128, n)
	}
	for i, v := range in {
		window := 0.5 * (1 - math.Cos(2*math.Pi*float64(i)/float64(n-1)))
		d.buf[i] = complex(float64(v)*window, 0)
	}
	spectrum := fft.FFT(d.buf)

	bins := int(bassCutoff * float64(n) / SampleRate)
	sum := 0.0
	for i := 1; i <= bins && i < n/2; i++ {
		sum += cmplx.Abs(spectrum[i])
	}
	return sum / float64(n)
}
