//go:build !opencl

package clsolver

import "github.com/pthm-cable/stablefluids/fluid"

// Relaxer is unavailable in this build.
type Relaxer struct{}

// New always fails with ErrUnavailable.
func New() (*Relaxer, error) {
	return nil, ErrUnavailable
}

// Relax always fails with ErrUnavailable.
func (r *Relaxer) Relax(x, x0 *fluid.Field, a, c float32, kinds fluid.AxisKinds, iterations int) error {
	return ErrUnavailable
}

// DeviceName returns an empty string.
func (r *Relaxer) DeviceName() string { return "" }

// Close is a no-op.
func (r *Relaxer) Close() {}
