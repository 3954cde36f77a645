package sim

import "errors"

var (
	// ErrInvalidExtent indicates a non-positive viewport half extent.
	ErrInvalidExtent = errors.New("sim: viewport half extents must be positive")

	// ErrViewportTooSmall indicates a viewport that cannot contain the largest particle.
	ErrViewportTooSmall = errors.New("sim: viewport too small for the radius range")

	// ErrInvalidConfig indicates a configuration value outside its valid range.
	ErrInvalidConfig = errors.New("sim: invalid config")
)
