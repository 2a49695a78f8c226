package game

import (
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/pthm-cable/stablefluids/fluid"
	"github.com/pthm-cable/stablefluids/renderer"
	"github.com/pthm-cable/stablefluids/telemetry"
)

// flushTelemetry checks if the stats window should be flushed and writes it.
func (g *Game) flushTelemetry() {
	if !g.collector.ShouldFlush(g.tick) {
		return
	}

	stats := g.collector.Flush(g.tick, g.simTime, g.sys)
	g.lastStats = stats
	perfStats := g.perfCollector.Stats()

	if g.statsCallback != nil {
		g.statsCallback(stats)
	}

	if g.logStats {
		stats.LogStats()
		perfStats.LogStats()
	}

	if g.outputManager != nil {
		if err := g.outputManager.WriteTelemetry(stats); err != nil {
			slog.Error("failed to write telemetry", "error", err)
		}
		if err := g.outputManager.WritePerf(perfStats, stats.WindowEndTick); err != nil {
			slog.Error("failed to write perf", "error", err)
		}
	}
}

// capture records GIF frames and heatmaps on their configured cadence.
func (g *Game) capture() {
	if g.recording && every(g.tick, g.cfg.Render.GIFEvery) {
		g.gif.AddFrame(g.sys.Density(), g.slice)
	}
	if g.heatmapDir != "" && g.cfg.Render.HeatmapEvery > 0 && every(g.tick, g.cfg.Render.HeatmapEvery) {
		g.saveHeatmap(g.heatmapDir)
	}
}

func every(tick int32, n int) bool {
	if n <= 1 {
		return true
	}
	return int(tick)%n == 0
}

// saveSnapshot writes the current fields as JSON.
func (g *Game) saveSnapshot() (string, error) {
	snap := telemetry.CaptureSnapshot(g.sys, g.tick, g.seed)
	if g.outputManager != nil {
		return g.outputManager.WriteSnapshot(snap)
	}
	return telemetry.SaveSnapshot(snap, "snapshots")
}

// LoadSnapshot replaces the fields with a saved snapshot.
func (g *Game) LoadSnapshot(path string) error {
	snap, err := telemetry.LoadSnapshot(path)
	if err != nil {
		return err
	}
	if err := snap.Restore(g.sys); err != nil {
		return err
	}
	g.tick = snap.Tick
	g.seed = snap.Seed
	return nil
}

// toggleRecording starts a GIF or saves the one in progress.
func (g *Game) toggleRecording() {
	if g.recording {
		g.saveGIF()
		g.recording = false
		return
	}
	g.recording = true
	slog.Info("gif recording started", "tick", g.tick)
}

func (g *Game) saveGIF() {
	path := g.gifPath
	if path == "" {
		path = fmt.Sprintf("fluid_%d.gif", g.tick)
		if g.outputManager != nil {
			path = filepath.Join(g.outputManager.Dir(), path)
		}
	}
	frames := g.gif.Frames()
	if err := g.gif.Save(path); err != nil {
		slog.Error("failed to save gif", "error", err)
		return
	}
	slog.Info("gif saved", "path", path, "frames", frames)
}

// saveHeatmap writes the summed dye of the displayed slice as a PNG.
func (g *Game) saveHeatmap(dir string) {
	total := DyeTotal(g.sys.Density())
	path := filepath.Join(dir, fmt.Sprintf("heatmap_%06d.png", g.tick))
	title := fmt.Sprintf("Dye t=%.2fs", g.simTime)
	if err := renderer.SaveHeatmap(total, g.slice, float64(g.sys.Spacing()), title, path, 5, 5); err != nil {
		slog.Error("failed to save heatmap", "error", err)
		return
	}
	slog.Debug("heatmap saved", "path", path)
}

// DyeTotal sums every dye channel into one field.
func DyeTotal(density *fluid.VectorField) *fluid.Field {
	total, _ := fluid.NewField(density.CellDims()...)
	out := total.Data()
	for c := 0; c < density.Coords(); c++ {
		for i, v := range density.Component(c).Data() {
			out[i] += v
		}
	}
	return total
}
