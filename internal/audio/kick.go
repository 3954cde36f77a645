package audio

import (
	"math"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
	"github.com/gopxl/beep/speaker"
)

const (
	playbackRate = beep.SampleRate(48000)

	KickDuration = 300 * time.Millisecond
	kickStartHz  = 150.0
	kickEndHz    = 45.0
	kickSweep    = 30.0 // 1/s
	kickDecay    = 12.0 // 1/s
)

// kick is a sine whose pitch falls exponentially from kickStartHz to kickEndHz
// under an exponential amplitude decay.
type kick struct {
	rate     beep.SampleRate
	phase    float64
	position int
	total    int
}

func NewKick(rate beep.SampleRate, d time.Duration) beep.Streamer {
	return &kick{rate: rate, total: rate.N(d)}
}

func (k *kick) Stream(samples [][2]float64) (n int, ok bool) {
	for i := range samples {
		if k.position >= k.total {
			return i, i > 0
		}
		t := float64(k.position) / float64(k.rate)
		freq := kickEndHz + (kickStartHz-kickEndHz)*math.Exp(-t*kickSweep)
		val := math.Sin(2*math.Pi*k.phase) * math.Exp(-t*kickDecay)

		samples[i][0] = val
		samples[i][1] = val

		k.phase += freq / float64(k.rate)
		k.phase -= math.Floor(k.phase)
		k.position++
	}
	return len(samples), true
}

func (k *kick) Err() error { return nil }

// Player mixes kicks into the default output device.
type Player struct {
	mu          sync.Mutex
	volume      float64
	mixer       *beep.Mixer
	initialized bool
	logger      *log.Logger
}

func NewPlayer(volume float64, logger *log.Logger) *Player {
	if logger == nil {
		logger = log.Default()
	}
	return &Player{volume: volume, mixer: &beep.Mixer{}, logger: logger}
}

func (p *Player) Init() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.initialized {
		return nil
	}
	if err := speaker.Init(playbackRate, playbackRate.N(100*time.Millisecond)); err != nil {
		return err
	}
	speaker.Play(p.mixer)
	p.initialized = true
	return nil
}

// Play queues one kick. It is a no-op before Init succeeded.
func (p *Player) Play() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.initialized {
		return
	}
	speaker.Lock()
	p.mixer.Add(withVolume(NewKick(playbackRate, KickDuration), p.volume))
	speaker.Unlock()
	p.logger.Debug("kick")
}

func (p *Player) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.initialized {
		return
	}
	speaker.Clear()
	speaker.Close()
	p.initialized = false
}

// math.Log2(0) is -Inf, so zero volume is handled as silence.
func withVolume(s beep.Streamer, vol float64) beep.Streamer {
	if vol <= 0 {
		return &effects.Volume{Streamer: s, Base: 2, Silent: true}
	}
	return &effects.Volume{Streamer: s, Base: 2, Volume: math.Log2(vol)}
}
