package ui

import (
	"fmt"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/stablefluids/telemetry"
)

// StatsSections describes the flow statistics panel. Getters expect a
// telemetry.WindowStats.
func StatsSections() []SectionDescriptor {
	ws := func(d any) telemetry.WindowStats {
		s, _ := d.(telemetry.WindowStats)
		return s
	}
	num := func(get func(telemetry.WindowStats) float64) func(any) float32 {
		return func(d any) float32 { return float32(get(ws(d))) }
	}

	return []SectionDescriptor{
		{
			ID:    "window",
			Title: "Window",
			Fields: []FieldDescriptor{
				{ID: "tick", Label: "Tick", Widget: WidgetText, TextGetter: func(d any) string {
					return fmt.Sprintf("%d", ws(d).WindowEndTick)
				}},
				{ID: "sim_time", Label: "Time", Widget: WidgetText, Format: "%.2fs",
					Getter: num(func(s telemetry.WindowStats) float64 { return s.SimTimeSec })},
				{ID: "injections", Label: "Injections", Widget: WidgetText, TextGetter: func(d any) string {
					return fmt.Sprintf("%d", ws(d).Injections)
				}},
			},
		},
		{
			ID:    "dye",
			Title: "Dye",
			Fields: []FieldDescriptor{
				{ID: "dye_c", Label: "Cyan", Widget: WidgetText, Format: "%.3f", Color: rl.Color{R: 0, G: 200, B: 230, A: 255},
					Getter: num(func(s telemetry.WindowStats) float64 { return s.DyeC })},
				{ID: "dye_m", Label: "Magenta", Widget: WidgetText, Format: "%.3f", Color: rl.Color{R: 230, G: 60, B: 200, A: 255},
					Getter: num(func(s telemetry.WindowStats) float64 { return s.DyeM })},
				{ID: "dye_y", Label: "Yellow", Widget: WidgetText, Format: "%.3f", Color: rl.Color{R: 240, G: 220, B: 40, A: 255},
					Getter: num(func(s telemetry.WindowStats) float64 { return s.DyeY })},
				{ID: "dye_total", Label: "Total", Widget: WidgetText, Format: "%.3f",
					Getter: num(func(s telemetry.WindowStats) float64 { return s.DyeTotal })},
			},
		},
		{
			ID:    "velocity",
			Title: "Velocity",
			Fields: []FieldDescriptor{
				{ID: "max_div", Label: "Max div", Widget: WidgetText, Format: "%.2e",
					Getter: num(func(s telemetry.WindowStats) float64 { return s.MaxDivergence })},
				{ID: "kinetic_energy", Label: "Energy", Widget: WidgetText, Format: "%.4f",
					Getter: num(func(s telemetry.WindowStats) float64 { return s.KineticEnergy })},
				{ID: "speed_mean", Label: "Mean speed", Widget: WidgetBar, Range: FieldRange{Min: 0, Max: 2},
					Getter: num(func(s telemetry.WindowStats) float64 { return s.SpeedMean })},
				{ID: "speed_p90", Label: "P90 speed", Widget: WidgetBar, Range: FieldRange{Min: 0, Max: 2},
					Getter: num(func(s telemetry.WindowStats) float64 { return s.SpeedP90 })},
				{ID: "speed_max", Label: "Max speed", Widget: WidgetText, Format: "%.3f",
					Getter: num(func(s telemetry.WindowStats) float64 { return s.SpeedMax })},
			},
		},
	}
}

// StatsPanel draws the most recent window statistics.
type StatsPanel struct {
	renderer *Renderer
	sections []SectionDescriptor
	x, y     int32
	width    int32
}

// NewStatsPanel creates a stats panel at the given position.
func NewStatsPanel(x, y, width int32) *StatsPanel {
	return &StatsPanel{
		renderer: NewRenderer(),
		sections: StatsSections(),
		x:        x,
		y:        y,
		width:    width,
	}
}

// Draw renders stats. Returns the Y below the panel.
func (p *StatsPanel) Draw(stats telemetry.WindowStats) int32 {
	r := p.renderer
	height := p.contentHeight()
	r.DrawPanel(p.x, p.y, p.width, height)

	y := p.y + r.Theme.Padding
	x := p.x + r.Theme.Padding
	for _, sd := range p.sections {
		y = r.DrawSection(x, y, sd, stats, p.width-r.Theme.Padding*2)
	}
	return p.y + height
}

func (p *StatsPanel) contentHeight() int32 {
	t := p.renderer.Theme
	h := t.Padding * 2
	for _, sd := range p.sections {
		h += t.LineHeight + 4
		for _, fd := range sd.Fields {
			h += t.LineHeight
			if fd.Widget == WidgetBar {
				h += 2
			}
		}
	}
	return h
}
