package fluid

import "fmt"

// BoundaryKind selects how ApplyBoundary fills the halo along one axis.
type BoundaryKind uint8

const (
	// ReflectCopy mirrors the nearest interior value into the halo. Used for
	// wall-tangential velocity and for scalars ("continuity").
	ReflectCopy BoundaryKind = iota
	// ReflectNegate mirrors the negated nearest interior value, so the
	// interpolated value on the wall is zero. Used for wall-normal velocity.
	ReflectNegate
	// Free leaves the halo untouched.
	Free
	// WallFace is the wall-normal kind for staggered components, whose first
	// and last interior faces lie on the walls. Those faces are zeroed and
	// the halo faces mirror the next face in with a negated sign.
	WallFace
)

var boundaryNames = [...]string{
	ReflectCopy:   "reflect-copy",
	ReflectNegate: "reflect-negate",
	Free:          "free",
	WallFace:      "wall-face",
}

func (k BoundaryKind) String() string {
	if int(k) < len(boundaryNames) {
		return boundaryNames[k]
	}
	return fmt.Sprintf("BoundaryKind(%d)", uint8(k))
}

// ParseBoundaryKind maps a config name to a BoundaryKind.
func ParseBoundaryKind(s string) (BoundaryKind, error) {
	for k, name := range boundaryNames {
		if name == s {
			return BoundaryKind(k), nil
		}
	}
	return 0, fmt.Errorf("unknown boundary kind %q: %w", s, ErrInvalidConfig)
}

func (k BoundaryKind) sign() float32 {
	if k == ReflectNegate {
		return -1
	}
	return 1
}

// AxisKinds holds one BoundaryKind per axis. Entries past the field's rank
// are ignored. The zero value is continuity on every axis.
type AxisKinds [3]BoundaryKind

// Continuity returns ReflectCopy on every axis.
func Continuity() AxisKinds { return AxisKinds{} }

// Walls returns the kinds for the velocity component normal to axis:
// ReflectNegate on that axis, ReflectCopy on the others.
func Walls(axis int) AxisKinds {
	var k AxisKinds
	k[axis] = ReflectNegate
	return k
}

// FaceWalls is Walls for a staggered component: WallFace on axis, ReflectCopy
// on the others.
func FaceWalls(axis int) AxisKinds {
	var k AxisKinds
	k[axis] = WallFace
	return k
}

// ApplyBoundary fills the halo of f from its interior.
//
// Each axis is processed on its own, writing both ends from the adjacent
// interior layer. Once every axis is done, cells where two or more halo
// regions meet (2D corners, 3D edges, then 3D corners) take the mean of their
// inward neighbours along the non-free axes.
func ApplyBoundary(f *Field, kinds AxisKinds) {
	for a := 0; a < f.rank; a++ {
		switch kinds[a] {
		case Free:
		case WallFace:
			applyWallFaces(f, a)
		default:
			applyAxis(f, a, kinds[a].sign())
		}
	}
	fillCorners(f, kinds)
}

func applyAxis(f *Field, a int, sign float32) {
	forAxisLines(f, a, func(base, sa, inner, outer int) {
		f.data[base] = sign * f.data[base+sa]
		f.data[base+outer] = sign * f.data[base+inner]
	})
}

// applyWallFaces zeroes interior faces 1 and dims[a] along a and sets the
// halo faces to the negated faces 2 and dims[a]-1, so the wall sits on the
// zeroed face.
func applyWallFaces(f *Field, a int) {
	forAxisLines(f, a, func(base, sa, inner, outer int) {
		f.data[base+sa] = 0
		f.data[base+inner] = 0
		if inner > sa {
			f.data[base] = -f.data[base+2*sa]
			f.data[base+outer] = -f.data[base+inner-sa]
		} else {
			f.data[base] = 0
			f.data[base+outer] = 0
		}
	})
}

// forAxisLines calls fn once per interior line along a. base is the offset
// of the low halo cell of the line, sa the stride along a, and inner and
// outer the offsets from base of the last interior cell and the high halo.
func forAxisLines(f *Field, a int, fn func(base, sa, inner, outer int)) {
	b, c := otherAxes(a)
	cLo, cHi := 0, 0
	if f.rank == 3 {
		cLo, cHi = 1, f.dims[c]
	}
	sa, sb, sc := f.stride[a], f.stride[b], f.stride[c]
	inner := f.dims[a] * sa
	outer := (f.dims[a] + 1) * sa
	for w := cLo; w <= cHi; w++ {
		for u := 1; u <= f.dims[b]; u++ {
			fn(u*sb+w*sc, sa, inner, outer)
		}
	}
}

func fillCorners(f *Field, kinds AxisKinds) {
	if f.rank == 2 {
		for _, x := range f.haloPair(0) {
			for _, y := range f.haloPair(1) {
				f.blendHalo([3]int{x, y, 0}, kinds)
			}
		}
		return
	}

	// Edges first: corners read them.
	for t := 0; t < 3; t++ {
		p, q := otherAxes(t)
		for _, cp := range f.haloPair(p) {
			for _, cq := range f.haloPair(q) {
				for ct := 1; ct <= f.dims[t]; ct++ {
					var c [3]int
					c[t], c[p], c[q] = ct, cp, cq
					f.blendHalo(c, kinds)
				}
			}
		}
	}
	for _, x := range f.haloPair(0) {
		for _, y := range f.haloPair(1) {
			for _, z := range f.haloPair(2) {
				f.blendHalo([3]int{x, y, z}, kinds)
			}
		}
	}
}

// blendHalo sets the cell at c to the mean of its inward neighbours along
// every non-free axis on which c lies in the halo.
func (f *Field) blendHalo(c [3]int, kinds AxisKinds) {
	idx := c[0]*f.stride[0] + c[1]*f.stride[1] + c[2]*f.stride[2]
	var sum float32
	n := 0
	for a := 0; a < f.rank; a++ {
		if kinds[a] == Free {
			continue
		}
		switch c[a] {
		case 0:
			sum += f.data[idx+f.stride[a]]
			n++
		case f.dims[a] + 1:
			sum += f.data[idx-f.stride[a]]
			n++
		}
	}
	if n > 0 {
		f.data[idx] = sum / float32(n)
	}
}

func (f *Field) haloPair(a int) [2]int {
	return [2]int{0, f.dims[a] + 1}
}

func otherAxes(a int) (int, int) {
	switch a {
	case 0:
		return 1, 2
	case 1:
		return 0, 2
	default:
		return 0, 1
	}
}
