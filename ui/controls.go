package ui

import (
	"fmt"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// KeyHint is a key binding listed under the overlay toggles.
type KeyHint struct {
	Key    string
	Action string
}

var (
	toggleOn  = rl.Color{R: 100, G: 200, B: 100, A: 255}
	toggleOff = rl.Color{R: 80, G: 80, B: 80, A: 255}
	keyColor  = rl.Color{R: 150, G: 150, B: 150, A: 255}
)

// ControlsPanel lists the overlays with their state and keys, followed by
// the other key bindings. Hidden until toggled.
type ControlsPanel struct {
	renderer *Renderer
	x, y     int32
	width    int32
	visible  bool
	hints    []KeyHint
}

func NewControlsPanel(x, y, width int32) *ControlsPanel {
	return &ControlsPanel{renderer: NewRenderer(), x: x, y: y, width: width}
}

func (c *ControlsPanel) SetVisible(visible bool) { c.visible = visible }

func (c *ControlsPanel) IsVisible() bool { return c.visible }

// SetHints replaces the key bindings section.
func (c *ControlsPanel) SetHints(hints []KeyHint) { c.hints = hints }

// Toggle flips visibility and returns the new state.
func (c *ControlsPanel) Toggle() bool {
	c.visible = !c.visible
	return c.visible
}

// lines counts the text lines below the title.
func (c *ControlsPanel) lines(overlays *OverlayRegistry) int32 {
	n := len(overlays.All()) + len(overlays.Categories())
	if len(c.hints) > 0 {
		n += len(c.hints) + 1
	}
	return int32(n)
}

// Draw renders the panel when visible and returns the y below its content.
func (c *ControlsPanel) Draw(overlays *OverlayRegistry) int32 {
	if !c.visible {
		return c.y
	}

	r := c.renderer
	t := r.Theme
	inner := c.width - t.Padding*2
	r.DrawPanel(c.x, c.y, c.width, (c.lines(overlays)+1)*t.LineHeight+t.Padding*3)

	x := c.x + t.Padding
	y := c.y + t.Padding
	rl.DrawText("Overlays", x, y, 16, rl.White)
	y += t.LineHeight + 4

	for _, cat := range overlays.Categories() {
		y = r.DrawSectionHeader(x, y, categoryLabel(cat))
		for _, d := range overlays.ByCategory(cat) {
			c.drawToggle(x, y, d, overlays.IsEnabled(d.ID), inner)
			y += t.LineHeight
		}
		y += 4
	}

	if len(c.hints) > 0 {
		y = r.DrawSectionHeader(x, y, "Keys")
		for _, h := range c.hints {
			y = r.DrawLabelValue(x, y, h.Key, h.Action)
		}
	}
	return y
}

func (c *ControlsPanel) drawToggle(x, y int32, d OverlayDescriptor, on bool, width int32) {
	t := c.renderer.Theme
	dot, name := toggleOff, t.LabelColor
	if on {
		dot, name = toggleOn, rl.White
	}
	rl.DrawRectangle(x, y+2, 8, 8, dot)
	rl.DrawText(d.Name, x+14, y, t.FontSize, name)

	if d.KeyLabel != "" {
		key := fmt.Sprintf("[%s]", d.KeyLabel)
		rl.DrawText(key, x+width-rl.MeasureText(key, t.FontSize), y, t.FontSize, keyColor)
	}
}

func categoryLabel(cat string) string {
	switch cat {
	case CategoryVisual:
		return "Visual"
	case CategoryPanels:
		return "Panels"
	}
	return cat
}
