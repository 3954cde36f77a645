// Package audio turns microphone onsets into ghost triggers and plays the kick
// that accompanies every beat.
package audio

import (
	"sync"

	"github.com/charmbracelet/log"
	"github.com/gordonklaus/portaudio"
)

const (
	SampleRate = 44100
	BufferSize = 1024
)

// Listener reads the default input device and calls onOnset from the audio
// thread whenever the detector fires. onOnset must be safe to call from any
// goroutine.
type Listener struct {
	mu       sync.Mutex
	stream   *portaudio.Stream
	detector *Detector
	onOnset  func()
	logger   *log.Logger
	onsets   int
	active   bool
}

func NewListener(d *Detector, onOnset func(), logger *log.Logger) *Listener {
	if logger == nil {
		logger = log.Default()
	}
	return &Listener{detector: d, onOnset: onOnset, logger: logger}
}

func (l *Listener) Start() error {
	if err := portaudio.Initialize(); err != nil {
		return err
	}

	// input only: 1 in, 0 out
	stream, err := portaudio.OpenDefaultStream(1, 0, SampleRate, BufferSize, l.process)
	if err != nil {
		portaudio.Terminate()
		return err
	}
	if err := stream.Start(); err != nil {
		stream.Close()
		portaudio.Terminate()
		return err
	}

	l.mu.Lock()
	l.stream = stream
	l.active = true
	l.mu.Unlock()
	l.logger.Info("audio input started", "rate", SampleRate, "buffer", BufferSize)
	return nil
}

func (l *Listener) Stop() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.active {
		return
	}
	if l.stream != nil {
		l.stream.Stop()
		l.stream.Close()
		l.stream = nil
	}
	portaudio.Terminate()
	l.active = false
	l.logger.Info("audio input stopped", "onsets", l.onsets)
}

// Active reports whether the input stream is running.
func (l *Listener) Active() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.active
}

func (l *Listener) process(in []float32) {
	if !l.detector.Analyze(in) {
		return
	}
	l.mu.Lock()
	l.onsets++
	l.mu.Unlock()
	if l.onOnset != nil {
		l.onOnset()
	}
}
