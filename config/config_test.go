package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/pthm-cable/stablefluids/fluid"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(cfg.Grid.Dims) != 2 || cfg.Grid.Dims[0] != 128 {
		t.Errorf("Grid.Dims = %v, want [128 128]", cfg.Grid.Dims)
	}
	if cfg.Derived.CellsPerUnit != 128 {
		t.Errorf("CellsPerUnit = %v, want 128", cfg.Derived.CellsPerUnit)
	}
	if cfg.Derived.Boundary != fluid.BoundaryWalls {
		t.Errorf("Boundary = %v, want walls", cfg.Derived.Boundary)
	}
	if cfg.Physics.Iterations != fluid.DefaultIterations {
		t.Errorf("Iterations = %d, want %d", cfg.Physics.Iterations, fluid.DefaultIterations)
	}
}

func TestLoadOverlay(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cfg.yaml")
	data := []byte("grid:\n  dims: [32, 16, 8]\n  boundary: open\nphysics:\n  viscosity: 0.5\n")
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got := len(cfg.Grid.Dims); got != 3 {
		t.Errorf("rank = %d, want 3", got)
	}
	if cfg.Derived.Boundary != fluid.BoundaryOpen {
		t.Errorf("Boundary = %v, want open", cfg.Derived.Boundary)
	}
	if cfg.Physics.Viscosity != 0.5 {
		t.Errorf("Viscosity = %v, want 0.5", cfg.Physics.Viscosity)
	}
	// Untouched keys keep their defaults.
	if cfg.Physics.DT != 0.016 {
		t.Errorf("DT = %v, want 0.016", cfg.Physics.DT)
	}

	opts := cfg.FluidOptions()
	if opts.Viscosity != 0.5 || len(opts.Dims) != 3 || opts.Boundary != fluid.BoundaryOpen {
		t.Errorf("FluidOptions() = %+v", opts)
	}
}

func TestLoadInvalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want error
	}{
		{"rank 1", "grid:\n  dims: [8]\n", fluid.ErrInvalidDims},
		{"zero dim", "grid:\n  dims: [8, 0]\n", fluid.ErrInvalidDims},
		{"bad boundary", "grid:\n  boundary: periodic\n", fluid.ErrInvalidConfig},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "cfg.yaml")
			if err := os.WriteFile(path, []byte(tt.yaml), 0644); err != nil {
				t.Fatal(err)
			}
			_, err := Load(path)
			if !errors.Is(err, tt.want) {
				t.Errorf("Load error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestWriteYAMLRoundTrip(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	cfg.Physics.Diffusion = 0.25

	path := filepath.Join(t.TempDir(), "out.yaml")
	if err := cfg.WriteYAML(path); err != nil {
		t.Fatalf("WriteYAML: %v", err)
	}
	back, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if back.Physics.Diffusion != 0.25 {
		t.Errorf("Diffusion = %v, want 0.25", back.Physics.Diffusion)
	}
}

func TestCfgPanicsBeforeInit(t *testing.T) {
	saved := global
	global = nil
	defer func() {
		global = saved
		if recover() == nil {
			t.Error("Cfg() did not panic")
		}
	}()
	Cfg()
}
