// Package game wires the fluid solver, its sources, telemetry and the raylib
// shell into a runnable simulator.
package game

import (
	"fmt"
	"log/slog"

	"github.com/pthm-cable/stablefluids/clsolver"
	"github.com/pthm-cable/stablefluids/config"
	"github.com/pthm-cable/stablefluids/fluid"
	"github.com/pthm-cable/stablefluids/manipulate"
	"github.com/pthm-cable/stablefluids/renderer"
	"github.com/pthm-cable/stablefluids/telemetry"
	"github.com/pthm-cable/stablefluids/ui"
)

// Options configures a Game.
type Options struct {
	Config         *config.Config // nil uses config.Cfg()
	Seed           int64          // 0 uses the scene seed from config
	LogStats       bool
	StatsWindowSec float64 // 0 uses telemetry.stats_window
	OutputDir      string  // CSV, config and snapshot output ("" = disabled)
	Headless       bool
	StepsPerUpdate int
	GIFPath        string // Record from the first step and save here on Unload
	HeatmapDir     string // Directory for periodic heatmap PNGs
}

// Game holds the complete simulator state.
type Game struct {
	cfg   *config.Config
	sys   *fluid.System
	manip *manipulate.Manipulator
	gpu   *clsolver.Relaxer

	// Telemetry
	perfCollector *telemetry.PerfCollector
	collector     *telemetry.Collector
	outputManager *telemetry.OutputManager
	lastStats     telemetry.WindowStats
	logStats      bool
	statsCallback func(telemetry.WindowStats)

	// Capture
	gif        *renderer.GIFRecorder
	recording  bool
	gifPath    string
	heatmapDir string

	// Rendering (nil when headless)
	dye        *renderer.DyeTexture
	arrows     *renderer.VelocityOverlay
	hud        *ui.HUD
	perfPanel  *ui.PerfPanel
	statsPanel *ui.StatsPanel
	paramPanel *ui.ParamPanel
	controls   *ui.ControlsPanel
	overlays   *ui.OverlayRegistry

	// State
	params         ui.Params
	mode           manipulate.Mode
	colorIndex     int
	tick           int32
	simTime        float64
	paused         bool
	headless       bool
	stepsPerUpdate int
	seed           int64
	slice          int // Axis-2 slice shown for 3D grids

	// Mouse drag state, in grid coordinates
	dragging     bool
	jetPlaced    bool // Constant mode: this drag already has its jet
	lastX, lastY float32
	screenWidth  float32
	screenHeight float32
}

// NewGame creates a graphical game with default options.
func NewGame() (*Game, error) {
	return NewGameWithOptions(Options{StepsPerUpdate: 1})
}

// NewGameWithOptions builds the solver, installs the configured scene and, in
// graphical mode, the renderers. Raylib must already be initialised unless
// opts.Headless is set.
func NewGameWithOptions(opts Options) (*Game, error) {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Cfg()
	}

	g := &Game{
		cfg:            cfg,
		logStats:       opts.LogStats,
		headless:       opts.Headless,
		stepsPerUpdate: max(opts.StepsPerUpdate, 1),
		seed:           opts.Seed,
		gifPath:        opts.GIFPath,
		heatmapDir:     opts.HeatmapDir,
		screenWidth:    cfg.Derived.ScreenW32,
		screenHeight:   cfg.Derived.ScreenH32,
		params: ui.Params{
			Viscosity: cfg.Physics.Viscosity,
			Diffusion: cfg.Physics.Diffusion,
			DT:        cfg.Derived.DT32,
			Radius:    float32(cfg.Input.DyeRadius),
			Strength:  float32(cfg.Input.JetStrength),
		},
	}
	if g.seed == 0 {
		g.seed = cfg.Scene.Seed
	}

	mode, err := manipulate.ParseMode(cfg.Input.Mode)
	if err != nil {
		return nil, fmt.Errorf("input.mode: %w", err)
	}
	g.mode = mode

	g.perfCollector = telemetry.NewPerfCollector(cfg.Telemetry.PerfWindow)

	fopts := cfg.FluidOptions()
	fopts.OnPhase = g.perfCollector.StartPhase
	if cfg.GPU.Enabled {
		relaxer, err := clsolver.New()
		if err != nil {
			slog.Warn("opencl relaxer unavailable, using CPU", "error", err)
		} else {
			slog.Info("using opencl relaxer", "device", relaxer.DeviceName())
			g.gpu = relaxer
			fopts.Relaxer = relaxer
		}
	}

	g.sys, err = fluid.NewWithOptions(fopts)
	if err != nil {
		g.Unload()
		return nil, fmt.Errorf("creating fluid system: %w", err)
	}
	g.manip = manipulate.New(g.sys)
	if err := g.resetScene(); err != nil {
		g.Unload()
		return nil, err
	}

	statsWindow := opts.StatsWindowSec
	if statsWindow <= 0 {
		statsWindow = cfg.Telemetry.StatsWindow
	}
	g.collector = telemetry.NewCollector(statsWindow, cfg.Derived.DT32)

	if opts.OutputDir != "" {
		om, err := telemetry.NewOutputManager(opts.OutputDir)
		if err != nil {
			g.Unload()
			return nil, fmt.Errorf("creating output manager: %w", err)
		}
		if err := om.WriteConfig(cfg); err != nil {
			slog.Error("failed to write config", "error", err)
		}
		g.outputManager = om
	}

	g.gif = renderer.NewGIFRecorder(cfg.Render.GIFScale, cfg.Render.GIFDelay)
	g.recording = g.gifPath != ""

	if dims := g.sys.Dims(); len(dims) == 3 {
		g.slice = (dims[2] + 1) / 2
	}

	if !g.headless {
		g.initRendering()
	}

	return g, nil
}

// resetScene clears the fields and emitters and installs the configured preset.
func (g *Game) resetScene() error {
	g.manip.Reset()
	g.sys.Clear()
	err := g.manip.InitialScene(g.cfg.Scene.Preset, manipulate.SceneOptions{
		Seed:       g.seed,
		NoiseScale: g.cfg.Scene.NoiseScale,
	})
	if err != nil {
		return fmt.Errorf("scene.preset: %w", err)
	}
	return nil
}

// SetStatsCallback registers a function called with every flushed window.
func (g *Game) SetStatsCallback(fn func(telemetry.WindowStats)) {
	g.statsCallback = fn
}

// Tick returns the number of steps taken.
func (g *Game) Tick() int32 {
	return g.tick
}

// SimTime returns the simulated time in seconds.
func (g *Game) SimTime() float64 {
	return g.simTime
}

// System returns the underlying solver.
func (g *Game) System() *fluid.System {
	return g.sys
}

// Manipulator returns the source manager.
func (g *Game) Manipulator() *manipulate.Manipulator {
	return g.manip
}

// Unload flushes pending output and releases resources.
func (g *Game) Unload() {
	if g.recording && g.gif.Frames() > 0 {
		g.saveGIF()
	}
	if g.dye != nil {
		g.dye.Unload()
	}
	if g.outputManager != nil {
		if err := g.outputManager.Close(); err != nil {
			slog.Error("failed to close output", "error", err)
		}
	}
	if g.sys != nil {
		g.sys.Close()
	}
	if g.gpu != nil {
		g.gpu.Close()
	}
}
