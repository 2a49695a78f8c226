package telemetry

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"github.com/pthm-cable/stablefluids/fluid"
)

// SnapshotVersion is incremented when the format changes.
const SnapshotVersion = 1

// Snapshot holds the complete field state of a System for replay. Field data
// is stored in full (halo included) so a restore is bit-exact.
type Snapshot struct {
	Version int   `json:"version"`
	Seed    int64 `json:"seed"`
	Tick    int32 `json:"tick"`

	Dims      []int   `json:"dims"`
	Spacing   float32 `json:"spacing"`
	Staggered bool    `json:"staggered"`
	Boundary  string  `json:"boundary"`
	Diffusion float32 `json:"diffusion"`
	Viscosity float32 `json:"viscosity"`

	Density  [][]float32 `json:"density"`
	Velocity [][]float32 `json:"velocity"`
}

// CaptureSnapshot copies the current fields of s.
func CaptureSnapshot(s *fluid.System, tick int32, seed int64) *Snapshot {
	return &Snapshot{
		Version:   SnapshotVersion,
		Seed:      seed,
		Tick:      tick,
		Dims:      s.Dims(),
		Spacing:   s.Spacing(),
		Staggered: s.Velocity().Staggered(),
		Boundary:  s.Boundary().String(),
		Diffusion: s.Diffusion(),
		Viscosity: s.Viscosity(),
		Density:   copyComponents(s.Density()),
		Velocity:  copyComponents(s.Velocity()),
	}
}

func copyComponents(v *fluid.VectorField) [][]float32 {
	out := make([][]float32, v.Coords())
	for i := range out {
		out[i] = slices.Clone(v.Component(i).Data())
	}
	return out
}

// Restore writes the snapshot fields and constants into s. The System must
// have the snapshot's dims, channel count, velocity layout and boundary mode.
// Nothing is written unless every field matches.
func (snap *Snapshot) Restore(s *fluid.System) error {
	if !slices.Equal(snap.Dims, s.Dims()) || snap.Staggered != s.Velocity().Staggered() {
		return fmt.Errorf("snapshot dims %v (staggered=%v) vs system %v: %w",
			snap.Dims, snap.Staggered, s.Dims(), fluid.ErrShapeMismatch)
	}
	if snap.Boundary != s.Boundary().String() {
		return fmt.Errorf("snapshot boundary %q vs system %q: %w",
			snap.Boundary, s.Boundary(), fluid.ErrShapeMismatch)
	}
	if err := checkComponents(s.Density(), snap.Density); err != nil {
		return fmt.Errorf("density: %w", err)
	}
	if err := checkComponents(s.Velocity(), snap.Velocity); err != nil {
		return fmt.Errorf("velocity: %w", err)
	}

	restoreComponents(s.Density(), snap.Density)
	restoreComponents(s.Velocity(), snap.Velocity)
	s.SetDiffusion(snap.Diffusion)
	s.SetViscosity(snap.Viscosity)
	return nil
}

func checkComponents(v *fluid.VectorField, data [][]float32) error {
	if len(data) != v.Coords() {
		return fmt.Errorf("%d components, want %d: %w", len(data), v.Coords(), fluid.ErrShapeMismatch)
	}
	for i, src := range data {
		if want := len(v.Component(i).Data()); len(src) != want {
			return fmt.Errorf("component %d has %d cells, want %d: %w", i, len(src), want, fluid.ErrShapeMismatch)
		}
	}
	return nil
}

func restoreComponents(v *fluid.VectorField, data [][]float32) {
	for i, src := range data {
		copy(v.Component(i).Data(), src)
	}
}
