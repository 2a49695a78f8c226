package game

import (
	"math"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/pthm-cable/stablefluids/config"
	"github.com/pthm-cable/stablefluids/fluid"
	"github.com/pthm-cable/stablefluids/manipulate"
	"github.com/pthm-cable/stablefluids/telemetry"
)

const testConfig = `
grid:
  dims: [16, 16]
physics:
  dt: 0.125
  workers: 1
scene:
  preset: soap
render:
  heatmap_every: 2
  gif_every: 1
  gif_scale: 2
telemetry:
  stats_window: 0.5
`

func loadTestConfig(t *testing.T, yaml string) *config.Config {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(yaml), 0o644); err != nil {
		t.Fatalf("writing config: %v", err)
	}
	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("config.Load: %v", err)
	}
	return cfg
}

func newHeadless(t *testing.T, opts Options) *Game {
	t.Helper()
	if opts.Config == nil {
		opts.Config = loadTestConfig(t, testConfig)
	}
	opts.Headless = true
	g, err := NewGameWithOptions(opts)
	if err != nil {
		t.Fatalf("NewGameWithOptions: %v", err)
	}
	return g
}

func TestHeadlessRunWritesOutputs(t *testing.T) {
	dir := t.TempDir()
	outDir := filepath.Join(dir, "out")
	heatDir := filepath.Join(dir, "heat")
	gifPath := filepath.Join(dir, "run.gif")

	g := newHeadless(t, Options{
		OutputDir:      outDir,
		HeatmapDir:     heatDir,
		GIFPath:        gifPath,
		StepsPerUpdate: 4,
	})

	var windows []telemetry.WindowStats
	g.SetStatsCallback(func(s telemetry.WindowStats) { windows = append(windows, s) })

	g.UpdateHeadless()
	g.UpdateHeadless()
	if g.Tick() != 8 {
		t.Fatalf("Tick() = %d, want 8", g.Tick())
	}
	if math.Abs(g.SimTime()-1) > 1e-9 {
		t.Errorf("SimTime() = %v, want 1", g.SimTime())
	}
	if len(windows) != 2 {
		t.Fatalf("got %d stats windows, want 2", len(windows))
	}
	if windows[1].WindowEndTick != 8 {
		t.Errorf("WindowEndTick = %d, want 8", windows[1].WindowEndTick)
	}
	if windows[0].DyeTotal <= 0 {
		t.Errorf("DyeTotal = %v, want > 0", windows[0].DyeTotal)
	}
	if windows[0].Injections != 1 {
		t.Errorf("Injections = %d, want 1 (one-shot scene dye)", windows[0].Injections)
	}

	g.Unload()

	for _, name := range []string{"telemetry.csv", "perf.csv", "config.yaml"} {
		if _, err := os.Stat(filepath.Join(outDir, name)); err != nil {
			t.Errorf("missing %s: %v", name, err)
		}
	}
	if _, err := os.Stat(gifPath); err != nil {
		t.Errorf("missing gif: %v", err)
	}
	heatmaps, _ := filepath.Glob(filepath.Join(heatDir, "heatmap_*.png"))
	if len(heatmaps) != 4 {
		t.Errorf("got %d heatmaps, want 4", len(heatmaps))
	}
}

func TestPausedHeadlessDoesNotStep(t *testing.T) {
	g := newHeadless(t, Options{})
	defer g.Unload()

	g.paused = true
	g.UpdateHeadless()
	if g.Tick() != 0 {
		t.Errorf("Tick() = %d after paused update, want 0", g.Tick())
	}
}

func TestSnapshotRestore(t *testing.T) {
	dir := t.TempDir()
	g := newHeadless(t, Options{OutputDir: dir, StepsPerUpdate: 3})
	defer g.Unload()

	g.UpdateHeadless()
	path, err := g.saveSnapshot()
	if err != nil {
		t.Fatalf("saveSnapshot: %v", err)
	}
	want := g.System().Density().Component(0).Sum()
	saved := slices.Clone(g.System().Velocity().Component(0).Data())

	g.UpdateHeadless()
	if slices.Equal(g.System().Velocity().Component(0).Data(), saved) {
		t.Fatal("velocity unchanged after stepping")
	}

	if err := g.LoadSnapshot(path); err != nil {
		t.Fatalf("LoadSnapshot: %v", err)
	}
	if g.Tick() != 3 {
		t.Errorf("Tick() = %d after restore, want 3", g.Tick())
	}
	if got := g.System().Density().Component(0).Sum(); got != want {
		t.Errorf("restored density sum = %v, want %v", got, want)
	}
	if !slices.Equal(g.System().Velocity().Component(0).Data(), saved) {
		t.Error("restored velocity differs from snapshot")
	}
}

func TestNewGameErrors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"unknown scene", "grid:\n  dims: [8, 8]\nscene:\n  preset: vortex\n"},
		{"unknown mode", "grid:\n  dims: [8, 8]\ninput:\n  mode: sticky\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := loadTestConfig(t, tt.yaml)
			if _, err := NewGameWithOptions(Options{Config: cfg, Headless: true}); err == nil {
				t.Error("NewGameWithOptions succeeded, want error")
			}
		})
	}
}

func TestScreenToGrid(t *testing.T) {
	dims := []int{10, 20}
	tests := []struct {
		mx, my float32
		x, y   float32
	}{
		{0, 0, 0.5, 20.5},
		{100, 200, 10.5, 0.5},
		{5, 195, 1, 1},
		{95, 5, 10, 20},
	}
	for _, tt := range tests {
		x, y := screenToGrid(tt.mx, tt.my, 100, 200, dims)
		if math.Abs(float64(x-tt.x)) > 1e-5 || math.Abs(float64(y-tt.y)) > 1e-5 {
			t.Errorf("screenToGrid(%v, %v) = (%v, %v), want (%v, %v)", tt.mx, tt.my, x, y, tt.x, tt.y)
		}
	}
}

func TestJetVelocity(t *testing.T) {
	if got := jetVelocity(4, 0.125, 0.5, 2); got != 2 {
		t.Errorf("jetVelocity(4, 0.125, 0.5, 2) = %v, want 2", got)
	}
	if got := jetVelocity(4, 0.125, 0, 2); got != 0 {
		t.Errorf("jetVelocity with dt 0 = %v, want 0", got)
	}
}

func TestDyeTotal(t *testing.T) {
	density, err := fluid.NewVectorField(3, []int{4, 4})
	if err != nil {
		t.Fatalf("NewVectorField: %v", err)
	}
	density.Component(0).Set(1, 2, 2)
	density.Component(1).Set(0.5, 2, 2)
	density.Component(2).Set(0.25, 3, 1)

	total := DyeTotal(density)
	if got := total.At(2, 2); got != 1.5 {
		t.Errorf("At(2, 2) = %v, want 1.5", got)
	}
	if got := total.Sum(); got != 1.75 {
		t.Errorf("Sum() = %v, want 1.75", got)
	}
}

func TestCycleMode(t *testing.T) {
	g := &Game{mode: manipulate.Additive}
	want := []manipulate.Mode{manipulate.Constant, manipulate.Replacement, manipulate.Additive}
	for _, w := range want {
		g.cycleMode()
		if g.mode != w {
			t.Errorf("mode = %v, want %v", g.mode, w)
		}
	}
}

func TestApplyParams(t *testing.T) {
	g := newHeadless(t, Options{})
	defer g.Unload()

	p := g.params
	p.Viscosity = 1e-3
	p.Diffusion = 2e-3
	p.DT = 0
	g.applyParams(p)

	if got := g.System().Viscosity(); got != float32(1e-3) {
		t.Errorf("Viscosity() = %v, want 1e-3", got)
	}
	if got := g.System().Diffusion(); got != float32(2e-3) {
		t.Errorf("Diffusion() = %v, want 2e-3", got)
	}
	if g.params.DT != 0.125 {
		t.Errorf("DT = %v, want previous 0.125", g.params.DT)
	}
}

func TestApplyParamsRetimesStatsWindow(t *testing.T) {
	g := newHeadless(t, Options{StepsPerUpdate: 8})
	defer g.Unload()

	p := g.params
	p.DT = 0.0625
	g.applyParams(p)

	if got := g.collector.WindowDurationTicks(); got != 8 {
		t.Fatalf("WindowDurationTicks() = %d, want 8", got)
	}
	g.UpdateHeadless()
	if g.lastStats.WindowEndTick != 8 {
		t.Fatalf("WindowEndTick = %d, want 8", g.lastStats.WindowEndTick)
	}
	if g.lastStats.SimTimeSec != 0.5 || g.simTime != 0.5 {
		t.Errorf("SimTimeSec = %v, simTime = %v, want 0.5", g.lastStats.SimTimeSec, g.simTime)
	}
}

func TestBrushEmitters(t *testing.T) {
	type frame struct {
		x, y float32
		left bool
		lift bool // release before this frame
	}
	tests := []struct {
		name     string
		mode     manipulate.Mode
		frames   []frame
		dye, jet int
	}{
		{"additive drag", manipulate.Additive, []frame{
			{x: 5, y: 5, left: true}, {x: 7, y: 6, left: true}, {x: 9, y: 7, left: true},
		}, 3, 2},
		{"constant drag", manipulate.Constant, []frame{
			{x: 5, y: 5, left: true}, {x: 5, y: 5, left: true}, {x: 7, y: 6, left: true}, {x: 9, y: 7, left: true},
		}, 1, 1},
		{"constant flow only", manipulate.Constant, []frame{
			{x: 5, y: 5}, {x: 8, y: 5},
		}, 0, 1},
		{"constant two drags", manipulate.Constant, []frame{
			{x: 5, y: 5, left: true}, {x: 7, y: 6, left: true},
			{x: 10, y: 10, left: true, lift: true}, {x: 11, y: 12, left: true},
		}, 2, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := newHeadless(t, Options{})
			defer g.Unload()
			g.mode = tt.mode
			dye0, jet0 := g.manip.Counts()

			for _, f := range tt.frames {
				if f.lift {
					g.dragging = false
				}
				g.brush(f.x, f.y, f.left)
			}

			dye, jet := g.manip.Counts()
			if dye-dye0 != tt.dye || jet-jet0 != tt.jet {
				t.Errorf("added dye/jet emitters = %d/%d, want %d/%d", dye-dye0, jet-jet0, tt.dye, tt.jet)
			}
		})
	}
}
