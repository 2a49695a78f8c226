package telemetry

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/pthm-cable/stablefluids/fluid"
)

func newTestSystem(t *testing.T, opts fluid.Options) *fluid.System {
	t.Helper()
	opts.Workers = 1
	s, err := fluid.NewWithOptions(opts)
	if err != nil {
		t.Fatalf("NewWithOptions: %v", err)
	}
	t.Cleanup(s.Close)
	return s
}

func TestSnapshotSaveLoad(t *testing.T) {
	tmpDir := t.TempDir()

	sys := newTestSystem(t, fluid.Options{Dims: []int{12, 10}, Diffusion: 0.01, Viscosity: 0.02})
	dye := sys.NewAddedDensity()
	dye.Component(2).Set(1.5, 6, 5)
	vel := sys.NewAddedVelocity()
	vel.Component(0).Set(0.4, 6, 5)
	sys.Step(dye, vel, 0.05)

	snapshot := CaptureSnapshot(sys, 1000, 42)

	path, err := SaveSnapshot(snapshot, tmpDir)
	if err != nil {
		t.Fatalf("SaveSnapshot failed: %v", err)
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("Snapshot file not created at %s", path)
	}
	if want := filepath.Join(tmpDir, "snapshot_1000.json"); path != want {
		t.Errorf("Path mismatch: got %s, want %s", path, want)
	}

	loaded, err := LoadSnapshot(path)
	if err != nil {
		t.Fatalf("LoadSnapshot failed: %v", err)
	}
	if loaded.Seed != 42 || loaded.Tick != 1000 {
		t.Errorf("Seed/Tick = %d/%d, want 42/1000", loaded.Seed, loaded.Tick)
	}
	if loaded.Boundary != "walls" {
		t.Errorf("Boundary = %q, want walls", loaded.Boundary)
	}

	restored := newTestSystem(t, fluid.Options{Dims: []int{12, 10}})
	if err := loaded.Restore(restored); err != nil {
		t.Fatalf("Restore failed: %v", err)
	}
	if restored.Viscosity() != 0.02 || restored.Diffusion() != 0.01 {
		t.Errorf("constants = %v/%v, want 0.01/0.02", restored.Diffusion(), restored.Viscosity())
	}
	for c := 0; c < 3; c++ {
		want := sys.Density().Component(c).Data()
		got := restored.Density().Component(c).Data()
		for i := range want {
			if got[i] != want[i] {
				t.Fatalf("density[%d][%d] = %v, want %v", c, i, got[i], want[i])
			}
		}
	}

	// Identical state must evolve identically.
	sys.Step(nil, nil, 0.05)
	restored.Step(nil, nil, 0.05)
	if a, b := sys.Density().Component(2).Sum(), restored.Density().Component(2).Sum(); a != b {
		t.Errorf("diverged after restore: %v vs %v", a, b)
	}
}

func TestSnapshotRestoreShapeMismatch(t *testing.T) {
	src := newTestSystem(t, fluid.Options{Dims: []int{8, 8}})
	snap := CaptureSnapshot(src, 0, 0)

	tests := []struct {
		name string
		opts fluid.Options
	}{
		{"dims", fluid.Options{Dims: []int{8, 9}}},
		{"channels", fluid.Options{Dims: []int{8, 8}, Channels: 1}},
		{"staggered", fluid.Options{Dims: []int{8, 8}, Staggered: true}},
		{"boundary", fluid.Options{Dims: []int{8, 8}, Boundary: fluid.BoundaryOpen}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dst := newTestSystem(t, tt.opts)
			if err := snap.Restore(dst); !errors.Is(err, fluid.ErrShapeMismatch) {
				t.Errorf("Restore error = %v, want ErrShapeMismatch", err)
			}
		})
	}
}

func TestSnapshotRestoreLeavesSystemOnError(t *testing.T) {
	src := newTestSystem(t, fluid.Options{Dims: []int{8, 8}})
	dye := src.NewAddedDensity()
	dye.Component(0).Set(2, 4, 4)
	src.Step(dye, nil, 0.05)

	snap := CaptureSnapshot(src, 0, 0)
	snap.Velocity[1] = snap.Velocity[1][:10]

	dst := newTestSystem(t, fluid.Options{Dims: []int{8, 8}})
	if err := snap.Restore(dst); !errors.Is(err, fluid.ErrShapeMismatch) {
		t.Fatalf("Restore error = %v, want ErrShapeMismatch", err)
	}
	if got := dst.Density().Component(0).Sum(); got != 0 {
		t.Errorf("density sum after failed restore = %v, want 0", got)
	}
}

func TestLoadSnapshotVersion(t *testing.T) {
	path := filepath.Join(t.TempDir(), "old.json")
	if err := os.WriteFile(path, []byte(`{"version": 99}`), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadSnapshot(path); err == nil {
		t.Error("expected version error")
	}
}
