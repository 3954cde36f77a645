package random

import "testing"

type seq struct {
	vals []float64
	i    int
}

func (s *seq) Float64() float64 {
	v := s.vals[s.i%len(s.vals)]
	s.i++
	return v
}

func TestBetween(t *testing.T) {
	tests := []struct {
		u, lo, hi, want float64
	}{
		{0, -1, 1, -1},
		{0.5, -1, 1, 0},
		{0.25, 0, 8, 2},
	}
	for _, tt := range tests {
		got := Between(&seq{vals: []float64{tt.u}}, tt.lo, tt.hi)
		if got != tt.want {
			t.Errorf("Between(%v, %v, %v) = %v, want %v", tt.u, tt.lo, tt.hi, got, tt.want)
		}
	}
}

func TestNonZero_Rerolls(t *testing.T) {
	src := &seq{vals: []float64{0.5, 0.5, 0.75}}
	v := NonZero(src, 0.02)
	if v == 0 {
		t.Fatal("expected nonzero value")
	}
	if src.i != 3 {
		t.Errorf("expected 3 draws, got %d", src.i)
	}
}

func TestNew_Deterministic(t *testing.T) {
	a, b := New(42), New(42)
	for i := 0; i < 10; i++ {
		if a.Float64() != b.Float64() {
			t.Fatal("same seed produced different sequences")
		}
	}
}

func TestPick(t *testing.T) {
	src := New(7)
	got := Pick(src, 10, 4)
	if len(got) != 4 {
		t.Fatalf("expected 4 indexes, got %d", len(got))
	}
	seen := make(map[int]bool)
	for _, i := range got {
		if i < 0 || i >= 10 {
			t.Errorf("index %d out of range", i)
		}
		if seen[i] {
			t.Errorf("duplicate index %d", i)
		}
		seen[i] = true
	}

	if len(Pick(src, 3, 10)) != 3 {
		t.Error("k > n should be capped at n")
	}
}
