package fluid

import (
	"fmt"

	"gonum.org/v1/gonum/blas/blas32"
)

// VectorField is a fixed tuple of same-shaped Fields, one per component.
// Components can be spatial (velocity) or color channels (dye).
type VectorField struct {
	comps     []*Field
	cellDims  []int
	staggered bool
}

// NewVectorField allocates coords cell-centered components over dims.
func NewVectorField(coords int, dims []int) (*VectorField, error) {
	return newVectorField(coords, dims, false)
}

// NewStaggeredVectorField allocates face-centered components: every axis gets
// one extra interior sample so that component a at index p sits on the face
// between cells p-1 and p along axis a.
func NewStaggeredVectorField(coords int, dims []int) (*VectorField, error) {
	return newVectorField(coords, dims, true)
}

func newVectorField(coords int, dims []int, staggered bool) (*VectorField, error) {
	if coords <= 0 {
		return nil, fmt.Errorf("vector field needs at least one component, got %d: %w", coords, ErrInvalidConfig)
	}
	if err := validateDims(dims); err != nil {
		return nil, err
	}
	storage := append([]int(nil), dims...)
	if staggered {
		for a := range storage {
			storage[a]++
		}
	}
	v := &VectorField{
		comps:     make([]*Field, coords),
		cellDims:  append([]int(nil), dims...),
		staggered: staggered,
	}
	for i := range v.comps {
		f, err := NewField(storage...)
		if err != nil {
			return nil, err
		}
		v.comps[i] = f
	}
	return v, nil
}

// Coords returns the number of components.
func (v *VectorField) Coords() int { return len(v.comps) }

// Component returns a mutable reference to component i.
func (v *VectorField) Component(i int) *Field { return v.comps[i] }

// Rank returns the number of spatial axes.
func (v *VectorField) Rank() int { return len(v.cellDims) }

// Dims returns the storage interior sizes of each component.
func (v *VectorField) Dims() []int { return v.comps[0].Dims() }

// CellDims returns the cell-centered grid size the field was built for.
// It equals Dims unless the field is staggered.
func (v *VectorField) CellDims() []int { return append([]int(nil), v.cellDims...) }

// Staggered reports whether components are face-centered.
func (v *VectorField) Staggered() bool { return v.staggered }

// SameShape reports whether o can be combined element-wise with v.
func (v *VectorField) SameShape(o *VectorField) bool {
	if len(v.comps) != len(o.comps) || v.staggered != o.staggered {
		return false
	}
	return v.comps[0].SameShape(o.comps[0])
}

// Add performs v += o over every component and cell, halo included.
func (v *VectorField) Add(o *VectorField) {
	for i, f := range v.comps {
		blas32.Axpy(1, vec(o.comps[i]), vec(f))
	}
}

// Sub performs v -= o over every component and cell, halo included.
func (v *VectorField) Sub(o *VectorField) {
	for i, f := range v.comps {
		blas32.Axpy(-1, vec(o.comps[i]), vec(f))
	}
}

// Scale performs v *= s over every component and cell, halo included.
func (v *VectorField) Scale(s float32) {
	for _, f := range v.comps {
		blas32.Scal(s, vec(f))
	}
}

// CopyFrom overwrites v with o.
func (v *VectorField) CopyFrom(o *VectorField) {
	for i, f := range v.comps {
		blas32.Copy(vec(o.comps[i]), vec(f))
	}
}

// Swap exchanges the component storage of v and o without copying. Both must
// have the same shape.
func (v *VectorField) Swap(o *VectorField) {
	v.comps, o.comps = o.comps, v.comps
}

// Clear zeroes every component, halo included.
func (v *VectorField) Clear() {
	for _, f := range v.comps {
		f.Clear()
	}
}

func vec(f *Field) blas32.Vector {
	return blas32.Vector{N: len(f.data), Inc: 1, Data: f.data}
}
