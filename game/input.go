package game

import (
	"log/slog"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/stablefluids/manipulate"
	"github.com/pthm-cable/stablefluids/ui"
)

// Brush colors in CMY order.
var brushColors = [][3]float32{
	{1, 0, 0},
	{0, 1, 0},
	{0, 0, 1},
}

// controlsText is the legend drawn at the bottom of the window.
const controlsText = "LMB: dye+flow | RMB: flow | 1-3: color | M: mode | SPACE: pause | C: clear | R: reset | TAB: params"

// Update handles input and runs stepsPerUpdate steps unless paused.
func (g *Game) Update() {
	g.handleInput()
	g.perfCollector.RecordFrame()

	if g.paused {
		return
	}
	for i := 0; i < g.stepsPerUpdate; i++ {
		g.simulationStep()
	}
}

// handleInput processes keyboard and mouse input.
func (g *Game) handleInput() {
	g.handleResize()

	if rl.IsKeyPressed(rl.KeyF11) {
		rl.ToggleFullscreen()
	}

	for key := rl.GetKeyPressed(); key != 0; key = rl.GetKeyPressed() {
		g.overlays.HandleKeyPress(key)
	}

	if rl.IsKeyPressed(rl.KeySpace) {
		g.paused = !g.paused
	}
	if rl.IsKeyPressed(rl.KeyC) {
		g.sys.Clear()
	}
	if rl.IsKeyPressed(rl.KeyR) {
		if err := g.resetScene(); err != nil {
			slog.Error("failed to reset scene", "error", err)
		}
	}
	if rl.IsKeyPressed(rl.KeyX) {
		g.manip.ClearConstantDye()
		g.manip.ClearConstantFlow()
	}
	if rl.IsKeyPressed(rl.KeyS) {
		if path, err := g.saveSnapshot(); err != nil {
			slog.Error("failed to save snapshot", "error", err)
		} else {
			slog.Info("snapshot saved", "path", path, "tick", g.tick)
		}
	}
	if rl.IsKeyPressed(rl.KeyG) {
		g.toggleRecording()
	}
	if rl.IsKeyPressed(rl.KeyH) {
		dir := g.heatmapDir
		if dir == "" {
			dir = "heatmaps"
		}
		g.saveHeatmap(dir)
	}
	if rl.IsKeyPressed(rl.KeyM) {
		g.cycleMode()
	}

	for i, key := range []int32{rl.KeyOne, rl.KeyTwo, rl.KeyThree} {
		if rl.IsKeyPressed(key) {
			g.colorIndex = i
		}
	}

	// Steps-per-update control with < > keys (comma and period)
	if rl.IsKeyPressed(rl.KeyComma) && g.stepsPerUpdate > 1 {
		g.stepsPerUpdate--
	}
	if rl.IsKeyPressed(rl.KeyPeriod) && g.stepsPerUpdate < 10 {
		g.stepsPerUpdate++
	}

	// Slice selection for 3D grids
	if dims := g.sys.Dims(); len(dims) == 3 {
		if rl.IsKeyPressed(rl.KeyPageUp) && g.slice < dims[2] {
			g.slice++
		}
		if rl.IsKeyPressed(rl.KeyPageDown) && g.slice > 1 {
			g.slice--
		}
	}

	g.handleBrush()
}

// handleBrush turns mouse drags into dye and jet emitters.
func (g *Game) handleBrush() {
	left := rl.IsMouseButtonDown(rl.MouseButtonLeft)
	right := rl.IsMouseButtonDown(rl.MouseButtonRight)
	mouse := rl.GetMousePosition()

	if g.overlays.IsEnabled(ui.OverlayParams) && g.paramPanel.Contains(mouse.X, mouse.Y) {
		g.dragging = false
		return
	}
	if !left && !right {
		g.dragging = false
		return
	}

	x, y := screenToGrid(mouse.X, mouse.Y, g.screenWidth, g.screenHeight, g.sys.Dims())
	g.brush(x, y, left)
}

// brush applies one frame of a drag at grid position (x, y). left paints dye
// as well as flow. Constant emitters persist, so a Constant drag places its
// dye at the press and a single jet on the first frame that moves.
func (g *Game) brush(x, y float32, left bool) {
	pressed := !g.dragging
	if pressed {
		g.dragging = true
		g.jetPlaced = false
		g.lastX, g.lastY = x, y
	}
	dx, dy := x-g.lastX, y-g.lastY
	g.lastX, g.lastY = x, y
	constant := g.mode == manipulate.Constant

	r := g.params.Radius
	if left && (pressed || !constant) {
		c := brushColors[g.colorIndex]
		conc := float32(g.cfg.Input.DyeConcentration)
		g.manip.AddDyeCircle(x, y, r, 0, c[0], c[1], c[2], conc, g.mode)
	}
	if (dx != 0 || dy != 0) && !(constant && g.jetPlaced) {
		vx := jetVelocity(dx, g.sys.Spacing(), g.params.DT, g.params.Strength)
		vy := jetVelocity(dy, g.sys.Spacing(), g.params.DT, g.params.Strength)
		g.manip.AddJet(x, y, r, vx, vy, g.mode)
		g.jetPlaced = constant
	}
}

// cycleMode advances the brush addition mode.
func (g *Game) cycleMode() {
	switch g.mode {
	case manipulate.Additive:
		g.mode = manipulate.Constant
	case manipulate.Constant:
		g.mode = manipulate.Replacement
	default:
		g.mode = manipulate.Additive
	}
}

// handleResize checks for window resize and propagates new dimensions.
func (g *Game) handleResize() {
	if !rl.IsWindowResized() {
		return
	}
	w := float32(rl.GetScreenWidth())
	h := float32(rl.GetScreenHeight())
	if w == g.screenWidth && h == g.screenHeight {
		return
	}
	g.screenWidth = w
	g.screenHeight = h
	g.dye.Resize(w, h)
}

// screenToGrid maps a window position to interior cell coordinates. Cell
// centers sit at integer coordinates 1..dims[a]; screen y grows downward while
// grid y grows upward.
func screenToGrid(mx, my, w, h float32, dims []int) (x, y float32) {
	x = mx/w*float32(dims[0]) + 0.5
	y = (1-my/h)*float32(dims[1]) + 0.5
	return x, y
}

// jetVelocity converts a per-step mouse travel of d cells into a velocity in
// domain lengths per second.
func jetVelocity(d, spacing, dt, strength float32) float32 {
	if dt <= 0 {
		return 0
	}
	return strength * d * spacing / dt
}
