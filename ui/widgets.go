package ui

import (
	"fmt"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// Renderer draws panel primitives with a Theme. Every Draw* that emits a line
// returns the y of the next line.
type Renderer struct {
	Theme Theme
}

// NewRenderer returns a Renderer using DefaultTheme.
func NewRenderer() *Renderer {
	return &Renderer{Theme: DefaultTheme()}
}

// DrawPanel fills a bordered panel background.
func (r *Renderer) DrawPanel(x, y, width, height int32) {
	rl.DrawRectangle(x, y, width, height, r.Theme.PanelBg)
	rl.DrawRectangleLines(x, y, width, height, r.Theme.PanelBorder)
}

func (r *Renderer) DrawSectionHeader(x, y int32, title string) int32 {
	rl.DrawText(title, x, y, r.Theme.HeaderFontSize, r.Theme.SectionHeader)
	return y + r.Theme.LineHeight
}

// DrawLabelValue draws "label:" and value in the value column.
func (r *Renderer) DrawLabelValue(x, y int32, label, value string) int32 {
	return r.drawTinted(x, y, label, value, r.Theme.ValueColor)
}

func (r *Renderer) drawTinted(x, y int32, label, value string, tint rl.Color) int32 {
	rl.DrawText(label+":", x, y, r.Theme.FontSize, r.Theme.LabelColor)
	rl.DrawText(value, x+r.Theme.LabelWidth, y, r.Theme.FontSize, tint)
	return y + r.Theme.LineHeight
}

// DrawBar draws a labelled bar for value over rng with the number after it.
func (r *Renderer) DrawBar(x, y int32, label string, value float32, rng FieldRange, width int32) int32 {
	t := r.Theme
	barX := x + t.LabelWidth
	barW := width - t.LabelWidth - 50

	rl.DrawText(label+":", x, y, t.FontSize, t.LabelColor)
	rl.DrawRectangle(barX, y+2, barW, t.BarHeight, t.BarBg)
	rl.DrawRectangle(barX, y+2, int32(float32(barW)*rng.Fraction(value)), t.BarHeight, t.BarFill)
	rl.DrawText(fmt.Sprintf("%.2f", value), barX+barW+5, y, t.FontSize, t.ValueColor)
	return y + t.LineHeight + 2
}

// FieldText formats fd's value for data.
func FieldText(fd FieldDescriptor, data any) string {
	switch {
	case fd.TextGetter != nil:
		return fd.TextGetter(data)
	case fd.Getter != nil:
		return fmt.Sprintf(fd.Format, fd.Getter(data))
	}
	return ""
}

// DrawField draws one descriptor line.
func (r *Renderer) DrawField(x, y int32, fd FieldDescriptor, data any, width int32) int32 {
	if fd.Widget == WidgetBar {
		var v float32
		if fd.Getter != nil {
			v = fd.Getter(data)
		}
		return r.DrawBar(x, y, fd.Label, v, fd.Range, width)
	}
	tint := r.Theme.ValueColor
	if fd.Color.A != 0 {
		tint = fd.Color
	}
	return r.drawTinted(x, y, fd.Label, FieldText(fd, data), tint)
}

// DrawSection draws the title and every field, plus a small trailing gap.
func (r *Renderer) DrawSection(x, y int32, sd SectionDescriptor, data any, width int32) int32 {
	if sd.Title != "" {
		y = r.DrawSectionHeader(x, y, sd.Title)
	}
	for _, fd := range sd.Fields {
		y = r.DrawField(x, y, fd, data, width)
	}
	return y + 4
}
