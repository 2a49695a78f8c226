package fluid

import "errors"

var (
	// ErrInvalidDims is returned when a grid is built with a rank other than
	// 2 or 3, or with a non-positive size on any axis.
	ErrInvalidDims = errors.New("fluid: invalid grid dimensions")

	// ErrInvalidConfig is returned for out-of-range system options.
	ErrInvalidConfig = errors.New("fluid: invalid configuration")

	// ErrShapeMismatch is returned when two fields that must share a shape do not.
	ErrShapeMismatch = errors.New("fluid: field shape mismatch")
)
