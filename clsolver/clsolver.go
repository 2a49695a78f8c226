// Package clsolver runs the fluid Jacobi sweeps on an OpenCL device.
//
// Build with -tags opencl to enable it; without the tag New always fails
// with ErrUnavailable and callers fall back to the CPU sweeps.
package clsolver

import "errors"

// ErrUnavailable is returned when the binary was built without OpenCL.
var ErrUnavailable = errors.New("opencl support not compiled in (build with -tags opencl)")
