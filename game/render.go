package game

import (
	"fmt"
	"log/slog"
	"strings"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/stablefluids/renderer"
	"github.com/pthm-cable/stablefluids/ui"
)

// initRendering creates the GPU texture and UI panels.
func (g *Game) initRendering() {
	dims := g.sys.Dims()

	g.dye = renderer.NewDyeTexture(int32(g.screenWidth), int32(g.screenHeight))
	g.dye.Init(dims[0], dims[1])
	g.arrows = renderer.NewVelocityOverlay(max(dims[0]/32, 1), g.screenWidth/float32(dims[0])*8)

	g.overlays = ui.NewOverlayRegistry()
	g.hud = ui.NewHUD()
	g.perfPanel = ui.NewPerfPanel(int32(g.screenWidth)-300, 110)
	g.statsPanel = ui.NewStatsPanel(int32(g.screenWidth)-250, 110, 240)
	g.paramPanel = ui.NewParamPanel(10, 110, 260)
	g.controls = ui.NewControlsPanel(10, 410, 260)
	g.controls.SetHints([]ui.KeyHint{
		{Key: "Space", Action: "pause"},
		{Key: "C", Action: "clear fields"},
		{Key: "R", Action: "reset scene"},
		{Key: "X", Action: "clear constant sources"},
		{Key: "S", Action: "save snapshot"},
		{Key: "G", Action: "toggle GIF"},
		{Key: "H", Action: "save heatmap"},
		{Key: ", .", Action: "steps per frame"},
	})
}

// Draw renders the dye, overlays and UI.
func (g *Game) Draw() {
	rl.BeginDrawing()
	rl.ClearBackground(rl.White)

	dst := rl.Rectangle{X: 0, Y: 0, Width: g.screenWidth, Height: g.screenHeight}
	g.dye.Update(g.sys.Density(), g.slice)
	g.dye.Draw(dst)

	if g.overlays.IsEnabled(ui.OverlayVelocity) {
		g.arrows.Draw(g.sys.Velocity(), g.slice, dst)
	}

	g.drawUI()

	rl.EndDrawing()
}

// drawUI draws the HUD and any enabled panels.
func (g *Game) drawUI() {
	g.hud.Draw(ui.HUDData{
		Title:     "Stable Fluids",
		Tick:      g.tick,
		SimTime:   g.simTime,
		FPS:       rl.GetFPS(),
		Paused:    g.paused,
		Mode:      fmt.Sprintf("%s %s", g.mode, colorName(g.colorIndex)),
		Grid:      gridLabel(g.sys.Dims(), g.slice),
		Recording: g.recording,
		Frames:    g.gif.Frames(),
	})

	if g.overlays.IsEnabled(ui.OverlayParams) {
		params, act := g.paramPanel.Draw(g.params)
		g.applyParams(params)
		g.applyActions(act)
		g.controls.SetVisible(true)
		g.controls.Draw(g.overlays)
	}
	if g.overlays.IsEnabled(ui.OverlayPerf) {
		g.perfPanel.Draw(g.perfCollector.Stats())
	}
	if g.overlays.IsEnabled(ui.OverlayStats) {
		g.statsPanel.Draw(g.lastStats)
	}

	g.hud.DrawControls(int32(g.screenHeight), controlsText)
}

// applyActions runs the buttons pressed on the parameter panel.
func (g *Game) applyActions(act ui.ParamActions) {
	if act.TogglePause {
		g.paused = !g.paused
	}
	if act.Clear {
		g.sys.Clear()
	}
	if act.ResetScene {
		if err := g.resetScene(); err != nil {
			slog.Error("failed to reset scene", "error", err)
		}
	}
	if act.CycleMode {
		g.cycleMode()
	}
}

func colorName(i int) string {
	return [...]string{"cyan", "magenta", "yellow"}[i]
}

func gridLabel(dims []int, slice int) string {
	parts := make([]string, len(dims))
	for i, d := range dims {
		parts[i] = fmt.Sprint(d)
	}
	label := strings.Join(parts, "x")
	if len(dims) == 3 {
		label += fmt.Sprintf(" z=%d", slice)
	}
	return label
}
