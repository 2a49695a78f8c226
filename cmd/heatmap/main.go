// Heatmap renders periodic PNG heatmaps of a headless run: summed dye, cell
// speed, velocity divergence and projection pressure.
//
// Usage: go run ./cmd/heatmap -steps 200 -every 20 -out heatmaps
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/pthm-cable/stablefluids/config"
	"github.com/pthm-cable/stablefluids/fluid"
	"github.com/pthm-cable/stablefluids/game"
	"github.com/pthm-cable/stablefluids/renderer"
	"github.com/pthm-cable/stablefluids/telemetry"
)

func main() {
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	steps := flag.Int("steps", 200, "Steps to simulate")
	every := flag.Int("every", 20, "Steps between heatmap sets")
	outDir := flag.String("out", "heatmaps", "Output directory")
	scene := flag.String("scene", "", "Scene preset override (soap, jet, noise, empty)")
	size := flag.Float64("size", 5, "Plot size in inches")
	flag.Parse()

	if *every < 1 {
		log.Fatal("--every must be at least 1")
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	if *scene != "" {
		cfg.Scene.Preset = *scene
	}

	g, err := game.NewGameWithOptions(game.Options{
		Config:         cfg,
		Headless:       true,
		StepsPerUpdate: 1,
	})
	if err != nil {
		log.Fatalf("failed to create simulation: %v", err)
	}
	defer g.Unload()

	if err := os.MkdirAll(*outDir, 0755); err != nil {
		log.Fatalf("failed to create output directory: %v", err)
	}

	w := newWriter(g.System(), *outDir, *size)
	start := time.Now()
	written := 0
	for int(g.Tick()) < *steps {
		g.UpdateHeadless()
		if int(g.Tick())%*every != 0 {
			continue
		}
		n, err := w.write(g.Tick(), g.SimTime())
		if err != nil {
			log.Fatalf("tick %d: %v", g.Tick(), err)
		}
		written += n
		fmt.Printf("Tick %d: wrote %d heatmaps\n", g.Tick(), n)
	}

	fmt.Printf("Done: %d steps, %d heatmaps in %s (%s)\n",
		g.Tick(), written, *outDir, time.Since(start).Round(time.Millisecond))
}

// writer renders the heatmap set for one System.
type writer struct {
	sys     *fluid.System
	dir     string
	size    float64
	slice   int
	spacing float64
	speed   *fluid.Field
	div     *fluid.Field
}

func newWriter(sys *fluid.System, dir string, size float64) *writer {
	dims := sys.Dims()
	w := &writer{
		sys:     sys,
		dir:     dir,
		size:    size,
		spacing: float64(sys.Spacing()),
	}
	if len(dims) == 3 {
		w.slice = (dims[2] + 1) / 2
	}
	w.speed, _ = fluid.NewField(dims...)
	w.div, _ = fluid.NewField(dims...)
	return w
}

// write saves every available field for tick and returns how many it wrote.
func (w *writer) write(tick int32, simTime float64) (int, error) {
	fillSpeed(w.speed, telemetry.CellSpeeds(w.sys.Velocity()))
	w.sys.Divergence(w.div)

	fields := []struct {
		name  string
		title string
		f     *fluid.Field
	}{
		{"dye", "Dye", game.DyeTotal(w.sys.Density())},
		{"speed", "Speed", w.speed},
		{"divergence", "Divergence", w.div},
		{"pressure", "Pressure", w.sys.Pressure()},
	}

	n := 0
	for _, fd := range fields {
		if fd.f == nil {
			continue
		}
		path := filepath.Join(w.dir, fmt.Sprintf("%s_%06d.png", fd.name, tick))
		title := fmt.Sprintf("%s t=%.2fs", fd.title, simTime)
		if err := renderer.SaveHeatmap(fd.f, w.slice, w.spacing, title, path, w.size, w.size); err != nil {
			return n, fmt.Errorf("%s: %w", fd.name, err)
		}
		n++
	}
	return n, nil
}

// fillSpeed copies interior speeds (axis 0 fastest) into f.
func fillSpeed(f *fluid.Field, speeds []float64) {
	dims := f.Dims()
	zs := []int{0}
	if len(dims) == 3 {
		zs = zs[:0]
		for z := 1; z <= dims[2]; z++ {
			zs = append(zs, z)
		}
	}
	i := 0
	for _, z := range zs {
		for y := 1; y <= dims[1]; y++ {
			for x := 1; x <= dims[0]; x++ {
				f.Set(float32(speeds[i]), x, y, z)
				i++
			}
		}
	}
}
