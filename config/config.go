// Package config provides configuration loading and access for the simulator.
package config

import (
	_ "embed"
	"fmt"
	"os"

	"github.com/pthm-cable/stablefluids/fluid"
	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds all simulator configuration parameters.
type Config struct {
	Screen    ScreenConfig    `yaml:"screen"`
	Grid      GridConfig      `yaml:"grid"`
	Physics   PhysicsConfig   `yaml:"physics"`
	GPU       GPUConfig       `yaml:"gpu"`
	Scene     SceneConfig     `yaml:"scene"`
	Input     InputConfig     `yaml:"input"`
	Render    RenderConfig    `yaml:"render"`
	Telemetry TelemetryConfig `yaml:"telemetry"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// ScreenConfig holds display settings.
type ScreenConfig struct {
	Width     int `yaml:"width"`
	Height    int `yaml:"height"`
	TargetFPS int `yaml:"target_fps"`
}

// GridConfig holds the simulation grid layout.
type GridConfig struct {
	Dims      []int   `yaml:"dims"`      // Interior cells per axis (2 or 3 entries)
	Length    float64 `yaml:"length"`    // Physical length along axis 0
	Channels  int     `yaml:"channels"`  // Dye channels (3 = CMY)
	Staggered bool    `yaml:"staggered"` // Store velocity on cell faces
	Boundary  string  `yaml:"boundary"`  // "walls" or "open"
}

// PhysicsConfig holds solver parameters.
type PhysicsConfig struct {
	DT         float64 `yaml:"dt"`
	Diffusion  float64 `yaml:"diffusion"`
	Viscosity  float64 `yaml:"viscosity"`
	Iterations int     `yaml:"iterations"` // Diffusion Jacobi sweeps
	Workers    int     `yaml:"workers"`    // Sweep goroutines (0 = GOMAXPROCS)
}

// GPUConfig holds OpenCL solver settings.
type GPUConfig struct {
	Enabled bool `yaml:"enabled"` // Use the OpenCL relaxer when built with -tags opencl
}

// SceneConfig selects the initial sources.
type SceneConfig struct {
	Preset string `yaml:"preset"` // soap, jet, noise, empty
	Seed   int64  `yaml:"seed"`
	// NoiseScale is the opensimplex frequency in cycles per domain length.
	NoiseScale float64 `yaml:"noise_scale"`
}

// InputConfig holds interactive brush parameters.
type InputConfig struct {
	DyeRadius        float64 `yaml:"dye_radius"` // Cells
	DyeConcentration float64 `yaml:"dye_concentration"`
	JetStrength      float64 `yaml:"jet_strength"` // Multiplier on mouse drag velocity
	Mode             string  `yaml:"mode"`         // additive, constant, replacement
}

// RenderConfig holds output settings.
type RenderConfig struct {
	HeatmapEvery int `yaml:"heatmap_every"` // Steps between heatmap PNGs (0 = off)
	GIFEvery     int `yaml:"gif_every"`     // Steps between GIF frames
	GIFDelay     int `yaml:"gif_delay"`     // Frame delay in 1/100 s
	GIFScale     int `yaml:"gif_scale"`     // Pixels per cell
}

// TelemetryConfig holds telemetry parameters.
type TelemetryConfig struct {
	StatsWindow float64 `yaml:"stats_window"` // Simulated seconds per stats window
	PerfWindow  int     `yaml:"perf_window"`  // Steps averaged in perf stats
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	DT32         float32            // Physics.DT as float32
	Spacing      float32            // Grid.Length / Grid.Dims[0]
	CellsPerUnit float32            // 1 / Spacing
	Boundary     fluid.BoundaryMode // Parsed Grid.Boundary
	ScreenW32    float32
	ScreenH32    float32
}

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded defaults if path is empty.
// Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// MustInit is like Init but panics on error.
func MustInit(path string) {
	if err := Init(path); err != nil {
		panic(fmt.Sprintf("config: failed to initialize: %v", err))
	}
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Only overwrites fields present in the file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.computeDerived(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// computeDerived validates the grid section and fills Derived.
func (c *Config) computeDerived() error {
	if n := len(c.Grid.Dims); n != 2 && n != 3 {
		return fmt.Errorf("grid.dims has %d entries: %w", n, fluid.ErrInvalidDims)
	}
	for _, d := range c.Grid.Dims {
		if d <= 0 {
			return fmt.Errorf("grid.dims %v: %w", c.Grid.Dims, fluid.ErrInvalidDims)
		}
	}
	mode, err := fluid.ParseBoundaryMode(c.Grid.Boundary)
	if err != nil {
		return fmt.Errorf("grid.boundary: %w", err)
	}
	if c.Grid.Length <= 0 {
		c.Grid.Length = 1
	}

	c.Derived.DT32 = float32(c.Physics.DT)
	c.Derived.Spacing = float32(c.Grid.Length) / float32(c.Grid.Dims[0])
	c.Derived.CellsPerUnit = 1 / c.Derived.Spacing
	c.Derived.Boundary = mode
	c.Derived.ScreenW32 = float32(c.Screen.Width)
	c.Derived.ScreenH32 = float32(c.Screen.Height)
	return nil
}

// FluidOptions builds fluid.Options from the grid and physics sections.
func (c *Config) FluidOptions() fluid.Options {
	return fluid.Options{
		Dims:       append([]int(nil), c.Grid.Dims...),
		Diffusion:  float32(c.Physics.Diffusion),
		Viscosity:  float32(c.Physics.Viscosity),
		Channels:   c.Grid.Channels,
		Length:     float32(c.Grid.Length),
		Iterations: c.Physics.Iterations,
		Boundary:   c.Derived.Boundary,
		Staggered:  c.Grid.Staggered,
		Workers:    c.Physics.Workers,
	}
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
