// Package manipulate turns user input and scene presets into dye and velocity
// sources for a fluid.System. Sources are entities in an ark world; each step
// they are rasterized into the system's added buffers.
package manipulate

import (
	"math"

	"github.com/mlange-42/ark/ecs"
	"github.com/pthm-cable/stablefluids/fluid"
)

// Deposit summarizes what one Step injected.
type Deposit struct {
	Dye      float64 // Dye added across all channels
	Emitters int     // Emitters rasterized
	OneShots int     // Emitters removed after this step
}

// Manipulator owns the emitters feeding a System.
type Manipulator struct {
	sys   *fluid.System
	world *ecs.World

	dyeMapper  *ecs.Map3[Position, Dye, Emission]
	flowMapper *ecs.Map3[Position, Flow, Emission]
	dyeFilter  *ecs.Filter3[Position, Dye, Emission]
	flowFilter *ecs.Filter3[Position, Flow, Emission]

	addedDensity  *fluid.VectorField
	addedVelocity *fluid.VectorField
}

// New creates a Manipulator with no emitters.
func New(sys *fluid.System) *Manipulator {
	world := ecs.NewWorld()
	return &Manipulator{
		sys:           sys,
		world:         world,
		dyeMapper:     ecs.NewMap3[Position, Dye, Emission](world),
		flowMapper:    ecs.NewMap3[Position, Flow, Emission](world),
		dyeFilter:     ecs.NewFilter3[Position, Dye, Emission](world),
		flowFilter:    ecs.NewFilter3[Position, Flow, Emission](world),
		addedDensity:  sys.NewAddedDensity(),
		addedVelocity: sys.NewAddedVelocity(),
	}
}

// System returns the driven System.
func (m *Manipulator) System() *fluid.System { return m.sys }

// AddDyeCircle adds a disc of dye centered at (x, y) with radius r cells. In
// 3D the disc spans depths 1..depthStop. Cells within 2r of the edge (in
// squared distance) are faded.
func (m *Manipulator) AddDyeCircle(x, y, r float32, depthStop int, cyan, magenta, yellow, concentration float32, mode Mode) ecs.Entity {
	return m.dyeMapper.NewEntity(
		&Position{X: x, Y: y},
		&Dye{
			Shape:         ShapeCircle,
			Radius:        r,
			DepthStart:    1,
			DepthStop:     depthStop,
			Color:         [3]float32{cyan, magenta, yellow},
			Concentration: concentration,
		},
		&Emission{Mode: mode},
	)
}

// AddDyeRect adds a (2*halfW+1) x (2*halfH+1) block of dye.
func (m *Manipulator) AddDyeRect(x, y float32, halfW, halfH, depthStart, depthStop int, cyan, magenta, yellow, concentration float32, mode Mode) ecs.Entity {
	return m.dyeMapper.NewEntity(
		&Position{X: x, Y: y},
		&Dye{
			Shape:         ShapeRect,
			HalfW:         halfW,
			HalfH:         halfH,
			DepthStart:    depthStart,
			DepthStop:     depthStop,
			Color:         [3]float32{cyan, magenta, yellow},
			Concentration: concentration,
		},
		&Emission{Mode: mode},
	)
}

// AddSoapRect pushes fluid outward across the perimeter of a rectangle, like
// a soap film expanding.
func (m *Manipulator) AddSoapRect(x, y float32, halfW, halfH int, outward, upward float32, mode Mode) ecs.Entity {
	return m.flowMapper.NewEntity(
		&Position{X: x, Y: y},
		&Flow{Kind: FlowSoap, HalfW: halfW, HalfH: halfH, Outward: outward, Upward: upward},
		&Emission{Mode: mode},
	)
}

// AddJet writes velocity (vx, vy) over a disc of radius r.
func (m *Manipulator) AddJet(x, y, r, vx, vy float32, mode Mode) ecs.Entity {
	return m.flowMapper.NewEntity(
		&Position{X: x, Y: y},
		&Flow{Kind: FlowJet, Radius: r, VX: vx, VY: vy},
		&Emission{Mode: mode},
	)
}

// ClearConstantDye removes every constant dye emitter.
func (m *Manipulator) ClearConstantDye() {
	var toRemove []ecs.Entity
	query := m.dyeFilter.Query()
	for query.Next() {
		_, _, em := query.Get()
		if em.Mode == Constant {
			toRemove = append(toRemove, query.Entity())
		}
	}
	m.remove(toRemove)
}

// ClearConstantFlow removes every constant flow emitter.
func (m *Manipulator) ClearConstantFlow() {
	var toRemove []ecs.Entity
	query := m.flowFilter.Query()
	for query.Next() {
		_, _, em := query.Get()
		if em.Mode == Constant {
			toRemove = append(toRemove, query.Entity())
		}
	}
	m.remove(toRemove)
}

// Reset removes every emitter and clears the System.
func (m *Manipulator) Reset() {
	var toRemove []ecs.Entity
	dq := m.dyeFilter.Query()
	for dq.Next() {
		toRemove = append(toRemove, dq.Entity())
	}
	fq := m.flowFilter.Query()
	for fq.Next() {
		toRemove = append(toRemove, fq.Entity())
	}
	m.remove(toRemove)
	m.sys.Clear()
}

// Counts returns the number of live dye and flow emitters.
func (m *Manipulator) Counts() (dye, flow int) {
	dq := m.dyeFilter.Query()
	for dq.Next() {
		dye++
	}
	fq := m.flowFilter.Query()
	for fq.Next() {
		flow++
	}
	return dye, flow
}

func (m *Manipulator) remove(entities []ecs.Entity) {
	for _, e := range entities {
		m.world.RemoveEntity(e)
	}
}

// Rasterize writes every emitter into the added buffers and removes the
// one-shot emitters. Replacement emitters also zero the live fields under
// their footprint.
func (m *Manipulator) Rasterize() Deposit {
	m.addedDensity.Clear()
	m.addedVelocity.Clear()

	var dep Deposit
	var oneShots []ecs.Entity

	dq := m.dyeFilter.Query()
	for dq.Next() {
		pos, dye, em := dq.Get()
		dep.Dye += m.rasterDye(*pos, dye, em.Mode)
		dep.Emitters++
		if em.Mode != Constant {
			oneShots = append(oneShots, dq.Entity())
		}
	}

	fq := m.flowFilter.Query()
	for fq.Next() {
		pos, flow, em := fq.Get()
		m.rasterFlow(*pos, flow, em.Mode)
		dep.Emitters++
		if em.Mode != Constant {
			oneShots = append(oneShots, fq.Entity())
		}
	}

	m.remove(oneShots)
	dep.OneShots = len(oneShots)
	return dep
}

// Step rasterizes the emitters and advances the System by dt.
func (m *Manipulator) Step(dt float32) Deposit {
	dep := m.Rasterize()
	m.sys.Step(m.addedDensity, m.addedVelocity, dt)
	return dep
}

// AddedDensity returns the dye buffer filled by the last Rasterize.
func (m *Manipulator) AddedDensity() *fluid.VectorField { return m.addedDensity }

// AddedVelocity returns the velocity buffer filled by the last Rasterize.
func (m *Manipulator) AddedVelocity() *fluid.VectorField { return m.addedVelocity }

// depths returns the axis-2 coordinates a source covers: {0} in 2D, the
// clamped [start, stop] range in 3D. A non-positive stop covers the full
// depth.
func depths(dims []int, start, stop int) []int {
	if len(dims) == 2 {
		return []int{0}
	}
	if stop <= 0 {
		start, stop = 1, dims[2]
	}
	start = max(start, 1)
	stop = min(stop, dims[2])
	var zs []int
	for z := start; z <= stop; z++ {
		zs = append(zs, z)
	}
	return zs
}

// antialias returns the deposit weight for a cell whose squared distance from
// the center exceeds r^2 by outer (outer <= 0).
func antialias(outer, r, concentration float32) float32 {
	if outer < -2*r {
		return 1
	}
	w := -outer / (2 * r)
	if concentration >= 1 {
		return w / concentration
	}
	return w * concentration
}

func (m *Manipulator) rasterDye(p Position, d *Dye, mode Mode) float64 {
	dims := m.sys.Dims()
	zs := depths(dims, d.DepthStart, d.DepthStop)
	channels := min(m.addedDensity.Coords(), len(d.Color))
	live := m.sys.Density()
	var total float64

	deposit := func(x, y int, w float32) {
		if x < 1 || x > dims[0] || y < 1 || y > dims[1] {
			return
		}
		for _, z := range zs {
			if mode == Replacement {
				for c := 0; c < live.Coords(); c++ {
					live.Component(c).Set(0, x, y, z)
				}
			}
			for c := 0; c < channels; c++ {
				v := d.Color[c] * d.Concentration * w
				f := m.addedDensity.Component(c)
				f.Set(f.At(x, y, z)+v, x, y, z)
				total += float64(v)
			}
		}
	}

	switch d.Shape {
	case ShapeCircle:
		r := d.Radius
		x0, x1 := int(math.Floor(float64(p.X-r))), int(math.Ceil(float64(p.X+r)))
		y0, y1 := int(math.Floor(float64(p.Y-r))), int(math.Ceil(float64(p.Y+r)))
		for j := y0; j <= y1; j++ {
			for i := x0; i <= x1; i++ {
				dx, dy := float32(i)-p.X, float32(j)-p.Y
				outer := dx*dx + dy*dy - r*r
				if outer > 0 {
					continue
				}
				deposit(i, j, antialias(outer, r, d.Concentration))
			}
		}
	case ShapeRect:
		cx, cy := roundCell(p.X), roundCell(p.Y)
		for j := cy - d.HalfH; j <= cy+d.HalfH; j++ {
			for i := cx - d.HalfW; i <= cx+d.HalfW; i++ {
				deposit(i, j, 1)
			}
		}
	}
	return total
}

func (m *Manipulator) rasterFlow(p Position, fl *Flow, mode Mode) {
	dims := m.sys.Dims()
	zs := depths(dims, 0, 0)
	live := m.sys.Velocity()

	add := func(a, x, y int, v float32) {
		f := m.addedVelocity.Component(a)
		if x < 1 || x > f.Dim(0) || y < 1 || y > f.Dim(1) {
			return
		}
		for _, z := range zs {
			if mode == Replacement {
				live.Component(a).Set(0, x, y, z)
			}
			f.Set(f.At(x, y, z)+v, x, y, z)
		}
	}

	switch fl.Kind {
	case FlowSoap:
		cx, cy := roundCell(p.X), roundCell(p.Y)
		bottom, top := cy-fl.HalfH, cy+fl.HalfH
		left, right := cx-fl.HalfW, cx+fl.HalfW
		for i := left; i <= right; i++ {
			add(1, i, bottom, -fl.Outward)
			add(1, i, top, fl.Outward)
			if len(dims) == 3 {
				add(2, i, bottom, -fl.Upward)
				add(2, i, top, -fl.Upward)
			}
		}
		for j := bottom; j <= top; j++ {
			add(0, left, j, -fl.Outward)
			add(0, right, j, fl.Outward)
			if len(dims) == 3 && j != bottom && j != top {
				add(2, left, j, -fl.Upward)
				add(2, right, j, -fl.Upward)
			}
		}
	case FlowJet:
		r := fl.Radius
		x0, x1 := int(math.Floor(float64(p.X-r))), int(math.Ceil(float64(p.X+r)))
		y0, y1 := int(math.Floor(float64(p.Y-r))), int(math.Ceil(float64(p.Y+r)))
		for j := y0; j <= y1; j++ {
			for i := x0; i <= x1; i++ {
				dx, dy := float32(i)-p.X, float32(j)-p.Y
				if dx*dx+dy*dy > r*r {
					continue
				}
				add(0, i, j, fl.VX)
				add(1, i, j, fl.VY)
			}
		}
	}
}

func roundCell(v float32) int {
	return int(math.Round(float64(v)))
}
