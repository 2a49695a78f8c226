// Package ui draws the simulator's raylib HUD and panels. Readouts are
// declared as descriptors with getters, so a panel is a list of fields.
package ui

import rl "github.com/gen2brain/raylib-go/raylib"

// WidgetType selects how a field is drawn.
type WidgetType int

const (
	WidgetText WidgetType = iota // label and formatted value
	WidgetBar                    // label and a bar filled over Range
)

// FieldRange is the value span a bar covers.
type FieldRange struct {
	Min, Max float32
}

// Fraction maps v into [0, 1]. An empty range gives 0.
func (r FieldRange) Fraction(v float32) float32 {
	if r.Max <= r.Min {
		return 0
	}
	return min(max((v-r.Min)/(r.Max-r.Min), 0), 1)
}

// FieldDescriptor is one readout line. Getters receive the panel's data value.
type FieldDescriptor struct {
	ID     string
	Label  string
	Widget WidgetType
	Format string // Printf verb for Getter values
	Range  FieldRange
	// Color tints the value; the zero color uses the theme.
	Color      rl.Color
	Getter     func(any) float32
	TextGetter func(any) string // takes precedence over Getter for text
}

// SectionDescriptor is a titled group of fields.
type SectionDescriptor struct {
	ID     string
	Title  string
	Fields []FieldDescriptor
}

// Theme holds colors and metrics shared by all panels.
type Theme struct {
	PanelBg        rl.Color
	PanelBorder    rl.Color
	SectionHeader  rl.Color
	LabelColor     rl.Color
	ValueColor     rl.Color
	BarBg          rl.Color
	BarFill        rl.Color
	Padding        int32
	LineHeight     int32
	LabelWidth     int32
	BarHeight      int32
	FontSize       int32
	HeaderFontSize int32
}

// DefaultTheme is a dark translucent theme sized for 12px text.
func DefaultTheme() Theme {
	return Theme{
		PanelBg:        rl.Color{R: 12, G: 16, B: 24, A: 215},
		PanelBorder:    rl.Color{R: 70, G: 80, B: 96, A: 255},
		SectionHeader:  rl.Color{R: 240, G: 200, B: 90, A: 255},
		LabelColor:     rl.LightGray,
		ValueColor:     rl.RayWhite,
		BarBg:          rl.Color{R: 40, G: 44, B: 52, A: 255},
		BarFill:        rl.Color{R: 90, G: 160, B: 210, A: 255},
		Padding:        10,
		LineHeight:     16,
		LabelWidth:     90,
		BarHeight:      12,
		FontSize:       12,
		HeaderFontSize: 14,
	}
}
