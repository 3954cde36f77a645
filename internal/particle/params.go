package particle

import (
	"fmt"
	"time"

	"github.com/san-kum/driftsim/internal/kinematics"
)

const (
	DefaultRadiusStepMaxDelta = 0.5
	DefaultMutateChance       = 0.5
	DefaultRadiusMutatePause  = time.Second
	DefaultBlendFalloff       = 50.0
	DefaultBlendDamping       = 0.002
)

// ClampMode decides where an out-of-range radius lands.
type ClampMode int

const (
	// ClampBounded snaps to the nearest bound.
	ClampBounded ClampMode = iota
	// ClampLegacy snaps an undersized radius to the maximum.
	ClampLegacy
)

func ParseClampMode(s string) (ClampMode, error) {
	switch s {
	case "", "bounded":
		return ClampBounded, nil
	case "legacy":
		return ClampLegacy, nil
	}
	return ClampBounded, fmt.Errorf("unknown radius clamp mode: %q", s)
}

func (m ClampMode) String() string {
	if m == ClampLegacy {
		return "legacy"
	}
	return "bounded"
}

// Apply clamps r into [lo, hi].
func (m ClampMode) Apply(r, lo, hi float64) float64 {
	switch {
	case r > hi:
		return hi
	case r < lo && m == ClampLegacy:
		return hi
	case r < lo:
		return lo
	}
	return r
}

// Params holds the tunables shared by every particle of a population.
type Params struct {
	Limits             kinematics.Limits
	InitialAccel       float64
	MinRadius          float64
	MaxRadius          float64
	RadiusStepMaxDelta float64
	MutateChance       float64
	RadiusMutatePause  time.Duration
	Clamp              ClampMode
	BlendFalloff       float64
	BlendDamping       float64
	Connections        bool
}

func DefaultParams(minRadius, maxRadius float64) Params {
	return Params{
		Limits:             kinematics.DefaultLimits(),
		InitialAccel:       kinematics.DefaultInitialAccel,
		MinRadius:          minRadius,
		MaxRadius:          maxRadius,
		RadiusStepMaxDelta: DefaultRadiusStepMaxDelta,
		MutateChance:       DefaultMutateChance,
		RadiusMutatePause:  DefaultRadiusMutatePause,
		BlendFalloff:       DefaultBlendFalloff,
		BlendDamping:       DefaultBlendDamping,
		Connections:        true,
	}
}
