package audio

import (
	"math"
	"testing"
	"time"

	"github.com/gopxl/beep"
)

func sine(freq, amp float64, n int, offset int) []float32 {
	out := make([]float32, n)
	for i := range out {
		out[i] = float32(amp * math.Sin(2*math.Pi*freq*float64(offset+i)/SampleRate))
	}
	return out
}

func TestDetectorIgnoresSilence(t *testing.T) {
	d := NewDetector(DefaultThreshold, DefaultCooldown)
	silence := make([]float32, BufferSize)
	for i := 0; i < 20; i++ {
		if d.Analyze(silence) {
			t.Fatalf("onset on silent block %d", i)
		}
	}
}

func TestDetectorOnsetAndCooldown(t *testing.T) {
	d := NewDetector(DefaultThreshold, 100*time.Millisecond)
	silence := make([]float32, BufferSize)
	hit := sine(60, 0.8, BufferSize, 0)

	for i := 0; i < 5; i++ {
		d.Analyze(silence)
	}
	if !d.Analyze(hit) {
		t.Fatal("expected onset on bass hit after silence")
	}
	if d.Analyze(silence) {
		t.Error("unexpected onset on silence")
	}
	if d.Analyze(hit) {
		t.Error("expected cooldown to suppress an immediate second onset")
	}

	// 100ms is 4410 samples; five quiet blocks clear it and let the average fall.
	for i := 0; i < 5; i++ {
		d.Analyze(silence)
	}
	if !d.Analyze(hit) {
		t.Error("expected onset after cooldown")
	}
}

func TestDetectorSettlesOnSustainedTone(t *testing.T) {
	d := NewDetector(DefaultThreshold, 0)
	for i := 0; i < 30; i++ {
		d.Analyze(sine(60, 0.8, BufferSize, i*BufferSize))
	}
	for i := 30; i < 60; i++ {
		if d.Analyze(sine(60, 0.8, BufferSize, i*BufferSize)) {
			t.Fatalf("unexpected onset on block %d of a steady tone", i)
		}
	}
}

func TestDetectorIgnoresTreble(t *testing.T) {
	d := NewDetector(DefaultThreshold, DefaultCooldown)
	if d.Analyze(sine(5000, 0.8, BufferSize, 0)) {
		t.Error("unexpected onset for a treble tone")
	}
}

func TestKickShape(t *testing.T) {
	rate := beep.SampleRate(8000)
	k := NewKick(rate, KickDuration)

	var all [][2]float64
	buf := make([][2]float64, 256)
	for {
		n, ok := k.Stream(buf)
		all = append(all, buf[:n]...)
		if !ok {
			break
		}
	}

	if len(all) != rate.N(KickDuration) {
		t.Fatalf("expected %d samples, got %d", rate.N(KickDuration), len(all))
	}

	peak := func(s [][2]float64) float64 {
		m := 0.0
		for _, v := range s {
			if v[0] != v[1] {
				t.Fatalf("expected mono sample, got %v", v)
			}
			m = math.Max(m, math.Abs(v[0]))
		}
		return m
	}
	head, tail := peak(all[:400]), peak(all[len(all)-400:])
	if head > 1 || head < 0.5 {
		t.Errorf("expected head peak in [0.5, 1], got %f", head)
	}
	if tail >= head/5 {
		t.Errorf("expected decay, head %f tail %f", head, tail)
	}
}

func TestPlayBeforeInit(t *testing.T) {
	p := NewPlayer(0.5, nil)
	p.Play()
	p.Close()
}
