package manipulate

import "fmt"

// Mode controls how an emitter's footprint reaches the simulation.
type Mode uint8

const (
	// Additive deposits once into the next step's sources.
	Additive Mode = iota
	// Constant deposits into every step's sources until cleared.
	Constant
	// Replacement zeroes the live dye under its footprint, then deposits
	// once.
	Replacement
)

var modeNames = [...]string{"additive", "constant", "replacement"}

func (m Mode) String() string {
	if int(m) < len(modeNames) {
		return modeNames[m]
	}
	return fmt.Sprintf("Mode(%d)", m)
}

// ParseMode maps a config string to a Mode.
func ParseMode(s string) (Mode, error) {
	for i, name := range modeNames {
		if s == name {
			return Mode(i), nil
		}
	}
	return 0, fmt.Errorf("unknown addition mode %q", s)
}

// Position is an emitter center in interior cell coordinates.
type Position struct {
	X, Y float32
}

// Shape selects the footprint of an emitter.
type Shape uint8

const (
	ShapeCircle Shape = iota
	ShapeRect
)

// Dye is a dye emitter.
type Dye struct {
	Shape  Shape
	Radius float32 // ShapeCircle
	HalfW  int     // ShapeRect
	HalfH  int     // ShapeRect

	// Depth range along axis 2 in 3D grids, inclusive. Ignored in 2D.
	DepthStart, DepthStop int

	Color         [3]float32 // Cyan, magenta, yellow
	Concentration float32
}

// FlowKind selects how a flow emitter writes velocity.
type FlowKind uint8

const (
	// FlowSoap pushes outward on the perimeter of a rectangle.
	FlowSoap FlowKind = iota
	// FlowJet writes a uniform velocity over a disc.
	FlowJet
)

// Flow is a velocity emitter.
type Flow struct {
	Kind FlowKind

	HalfW, HalfH int     // FlowSoap
	Outward      float32 // FlowSoap: speed normal to each edge
	Upward       float32 // FlowSoap: axis-2 speed in 3D, written negated

	Radius float32 // FlowJet
	VX, VY float32 // FlowJet
}

// Emission tags an emitter with its addition mode.
type Emission struct {
	Mode Mode
}
