// Package trace records runs on disk: a per-particle CSV row for every tick and
// a JSON metadata file. Nothing here is read back by the simulation.
package trace

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/san-kum/driftsim/internal/sim"
)

var Header = []string{"tick", "time_ms", "index", "x", "y", "radius", "speed_x", "speed_y", "accel_x", "accel_y", "color"}

// Writer is a sim.Observer writing one CSV row per particle per tick. Only the
// first write error is kept; later ticks are ignored once it is set.
type Writer struct {
	w      *csv.Writer
	header bool
	rows   int
	err    error
}

func NewWriter(w io.Writer) *Writer {
	return &Writer{w: csv.NewWriter(w)}
}

func (t *Writer) OnTick(f *sim.Frame) {
	if t.err != nil {
		return
	}
	if !t.header {
		if t.err = t.w.Write(Header); t.err != nil {
			return
		}
		t.header = true
	}

	tick := strconv.FormatUint(f.Tick, 10)
	ms := strconv.FormatInt(f.Time.Milliseconds(), 10)
	for _, p := range f.Particles {
		row := []string{
			tick,
			ms,
			strconv.Itoa(p.Index),
			ftoa(p.X),
			ftoa(p.Y),
			ftoa(p.Radius),
			ftoa(p.SpeedX),
			ftoa(p.SpeedY),
			ftoa(p.AccelX),
			ftoa(p.AccelY),
			p.Color.Clamped().Hex(),
		}
		if t.err = t.w.Write(row); t.err != nil {
			return
		}
		t.rows++
	}
}

// Rows is the number of particle rows written so far.
func (t *Writer) Rows() int { return t.rows }

// Flush writes buffered rows and returns the first error seen.
func (t *Writer) Flush() error {
	t.w.Flush()
	if t.err != nil {
		return t.err
	}
	return t.w.Error()
}

func ftoa(v float64) string { return strconv.FormatFloat(v, 'f', 6, 64) }

type RunMetadata struct {
	ID        string             `json:"id"`
	Preset    string             `json:"preset,omitempty"`
	Timestamp time.Time          `json:"timestamp"`
	Seed      int64              `json:"seed"`
	Ticks     int                `json:"ticks"`
	FrameMs   int64              `json:"frame_ms"`
	Width     float64            `json:"width"`
	Height    float64            `json:"height"`
	Particles int                `json:"particles"`
	Ghosts    int                `json:"ghosts"`
	Metrics   map[string]float64 `json:"metrics"`
}

// Run is one run directory under a base directory.
type Run struct {
	ID  string
	Dir string

	file  *os.File
	trace *Writer
}

// NewRun creates baseDir/<prefix>_<unix time>/ with an open trace.csv.
func NewRun(baseDir, prefix string) (*Run, error) {
	id := fmt.Sprintf("%s_%d", prefix, time.Now().Unix())
	dir := filepath.Join(baseDir, id)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}
	f, err := os.Create(filepath.Join(dir, "trace.csv"))
	if err != nil {
		return nil, err
	}
	return &Run{ID: id, Dir: dir, file: f, trace: NewWriter(f)}, nil
}

// Trace is the observer to attach to the simulation.
func (r *Run) Trace() *Writer { return r.trace }

// Close flushes the trace and writes metadata.json.
func (r *Run) Close(meta RunMetadata) error {
	flushErr := r.trace.Flush()
	closeErr := r.file.Close()
	if flushErr != nil {
		return fmt.Errorf("writing trace: %w", flushErr)
	}
	if closeErr != nil {
		return closeErr
	}

	meta.ID = r.ID
	f, err := os.Create(filepath.Join(r.Dir, "metadata.json"))
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(meta)
}
