package ui

import (
	"fmt"
	"math"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"
)

// Params are the live-tunable solver and brush settings.
type Params struct {
	Viscosity float64
	Diffusion float64
	DT        float32
	Radius    float32
	Strength  float32
}

// ParamActions reports buttons pressed during a Draw.
type ParamActions struct {
	TogglePause bool
	Clear       bool
	ResetScene  bool
	CycleMode   bool
}

// Coefficient sliders work in log10 space between these bounds. A value
// at the lower bound maps to exactly zero.
const (
	logCoeffMin = -8
	logCoeffMax = -1
)

// ToLogSlider maps a coefficient to its slider position.
func ToLogSlider(v float64) float32 {
	if v <= 0 {
		return logCoeffMin
	}
	l := math.Log10(v)
	return float32(max(logCoeffMin, min(logCoeffMax, l)))
}

// FromLogSlider maps a slider position back to a coefficient.
func FromLogSlider(pos float32) float64 {
	if pos <= logCoeffMin {
		return 0
	}
	return math.Pow(10, float64(pos))
}

const paramPanelHeight = 290

// ParamPanel draws raygui sliders for Params.
type ParamPanel struct {
	renderer *Renderer
	x, y     float32
	width    float32
}

// NewParamPanel creates a parameter panel at the given position.
func NewParamPanel(x, y, width float32) *ParamPanel {
	return &ParamPanel{
		renderer: NewRenderer(),
		x:        x,
		y:        y,
		width:    width,
	}
}

// Draw renders the panel and returns the edited params and any actions.
func (p *ParamPanel) Draw(params Params) (Params, ParamActions) {
	var act ParamActions

	r := p.renderer
	p.renderer.DrawPanel(int32(p.x), int32(p.y), int32(p.width), paramPanelHeight)

	x := p.x + float32(r.Theme.Padding)
	y := p.y + float32(r.Theme.Padding)
	sliderW := p.width - float32(r.Theme.Padding)*2 - 70

	rl.DrawText("Parameters", int32(x), int32(y), 16, rl.White)
	y += 24

	slider := func(label, value string, cur, lo, hi float32) float32 {
		rl.DrawText(label, int32(x), int32(y), r.Theme.FontSize, r.Theme.LabelColor)
		y += 14
		next := gui.SliderBar(
			rl.Rectangle{X: x, Y: y, Width: sliderW, Height: 16},
			"", "",
			cur, lo, hi,
		)
		rl.DrawText(value, int32(x+sliderW+8), int32(y+2), r.Theme.FontSize, r.Theme.ValueColor)
		y += 24
		return next
	}

	params.Viscosity = FromLogSlider(slider("Viscosity", fmt.Sprintf("%.1e", params.Viscosity),
		ToLogSlider(params.Viscosity), logCoeffMin, logCoeffMax))
	params.Diffusion = FromLogSlider(slider("Diffusion", fmt.Sprintf("%.1e", params.Diffusion),
		ToLogSlider(params.Diffusion), logCoeffMin, logCoeffMax))
	params.DT = slider("Time step", fmt.Sprintf("%.3f", params.DT), params.DT, 0.001, 0.1)
	params.Radius = slider("Brush radius", fmt.Sprintf("%.1f", params.Radius), params.Radius, 1, 32)
	params.Strength = slider("Jet strength", fmt.Sprintf("%.2f", params.Strength), params.Strength, 0, 10)

	bw := (p.width - float32(r.Theme.Padding)*3) / 2
	if gui.Button(rl.Rectangle{X: x, Y: y, Width: bw, Height: 24}, "Pause") {
		act.TogglePause = true
	}
	if gui.Button(rl.Rectangle{X: x + bw + float32(r.Theme.Padding), Y: y, Width: bw, Height: 24}, "Clear") {
		act.Clear = true
	}
	y += 30
	if gui.Button(rl.Rectangle{X: x, Y: y, Width: bw, Height: 24}, "Reset Scene") {
		act.ResetScene = true
	}
	if gui.Button(rl.Rectangle{X: x + bw + float32(r.Theme.Padding), Y: y, Width: bw, Height: 24}, "Brush Mode") {
		act.CycleMode = true
	}

	return params, act
}

// Contains reports whether a screen point lies inside the panel.
func (p *ParamPanel) Contains(px, py float32) bool {
	return px >= p.x && px < p.x+p.width && py >= p.y && py < p.y+paramPanelHeight
}
