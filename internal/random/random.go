// Package random provides the uniform random source used for every stochastic
// decision in the simulation.
package random

import (
	"time"

	"golang.org/x/exp/rand"
)

// Source yields uniform values in [0, 1).
type Source interface {
	Float64() float64
}

// New returns a PCG-backed source. A zero seed picks one from the wall clock.
func New(seed int64) *rand.Rand {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return rand.New(rand.NewSource(uint64(seed)))
}

// Between returns a uniform value in [lo, hi).
func Between(src Source, lo, hi float64) float64 {
	return lo + src.Float64()*(hi-lo)
}

// Upto returns a uniform value in [0, hi).
func Upto(src Source, hi float64) float64 {
	return src.Float64() * hi
}

// NonZero draws from [-span, span) until the result is nonzero.
func NonZero(src Source, span float64) float64 {
	v := 0.0
	for v == 0 {
		v = Between(src, -span, span)
	}
	return v
}

// Pick returns k distinct indexes from [0, n) in random order using a partial
// Fisher-Yates shuffle.
func Pick(src Source, n, k int) []int {
	if k > n {
		k = n
	}
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	for i := 0; i < k; i++ {
		j := i + int(src.Float64()*float64(n-i))
		if j >= n {
			j = n - 1
		}
		idx[i], idx[j] = idx[j], idx[i]
	}
	return idx[:k]
}
