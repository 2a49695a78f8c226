// Package fluid implements a Stable Fluids solver on regular 2D and 3D grids.
//
// Fields carry a one-cell halo on both ends of every axis. Interior cells
// occupy indices [1, dim] per axis; halo cells sit at 0 and dim+1 and are only
// ever written by ApplyBoundary (or zeroed by Clear).
package fluid

import "fmt"

// Halo is the ghost-cell width on each end of every axis.
const Halo = 1

// Field is a dense 2D or 3D scalar grid with a halo border.
// Axis 0 varies fastest in Data, so a 2D field is laid out row by row.
type Field struct {
	rank   int
	dims   [3]int // interior cells per axis, 1 for unused axes
	size   [3]int // storage extent per axis, halo included
	stride [3]int
	data   []float32
}

// NewField allocates a zeroed field with the given interior sizes.
func NewField(dims ...int) (*Field, error) {
	if err := validateDims(dims); err != nil {
		return nil, err
	}
	f := &Field{rank: len(dims)}
	for a := 0; a < 3; a++ {
		f.dims[a] = 1
		f.size[a] = 1
	}
	for a, d := range dims {
		f.dims[a] = d
		f.size[a] = d + 2*Halo
	}
	f.stride[0] = 1
	f.stride[1] = f.size[0]
	f.stride[2] = f.size[0] * f.size[1]
	f.data = make([]float32, f.size[0]*f.size[1]*f.size[2])
	return f, nil
}

func validateDims(dims []int) error {
	if len(dims) != 2 && len(dims) != 3 {
		return fmt.Errorf("rank %d not supported: %w", len(dims), ErrInvalidDims)
	}
	for a, d := range dims {
		if d <= 0 {
			return fmt.Errorf("axis %d has size %d: %w", a, d, ErrInvalidDims)
		}
	}
	return nil
}

// Rank returns the number of spatial axes (2 or 3).
func (f *Field) Rank() int { return f.rank }

// Dims returns a copy of the interior sizes.
func (f *Field) Dims() []int {
	out := make([]int, f.rank)
	copy(out, f.dims[:f.rank])
	return out
}

// Dim returns the interior size along axis.
func (f *Field) Dim(axis int) int { return f.dims[axis] }

// Size returns the storage extent along axis, halo included.
func (f *Field) Size(axis int) int { return f.size[axis] }

// Stride returns the distance in Data between neighbours along axis.
func (f *Field) Stride(axis int) int { return f.stride[axis] }

// Len returns the total number of stored cells.
func (f *Field) Len() int { return len(f.data) }

// Data exposes the backing storage. Callers that write halo cells through it
// must follow up with ApplyBoundary.
func (f *Field) Data() []float32 { return f.data }

// Index converts full-storage coordinates to an offset into Data.
// Coordinates outside [0, dim+1] are not checked.
func (f *Field) Index(coords ...int) int {
	idx := 0
	for a, c := range coords {
		idx += c * f.stride[a]
	}
	return idx
}

// At reads the cell at the given full-storage coordinates.
func (f *Field) At(coords ...int) float32 {
	return f.data[f.Index(coords...)]
}

// Set writes the cell at the given full-storage coordinates.
func (f *Field) Set(v float32, coords ...int) {
	f.data[f.Index(coords...)] = v
}

// Clear zeroes every cell, halo included.
func (f *Field) Clear() {
	clear(f.data)
}

// CopyFrom overwrites f with src. Both fields must share a shape.
func (f *Field) CopyFrom(src *Field) {
	copy(f.data, src.data)
}

// SameShape reports whether o has the same rank and interior sizes as f.
func (f *Field) SameShape(o *Field) bool {
	return f.rank == o.rank && f.dims == o.dims
}

// Sum adds up the interior cells.
func (f *Field) Sum() float64 {
	var total float64
	nx := f.dims[0]
	for r := 0; r < f.rows(); r++ {
		base := f.rowBase(r)
		for i := 1; i <= nx; i++ {
			total += float64(f.data[base+i])
		}
	}
	return total
}

// MaxAbs returns the largest absolute interior value.
func (f *Field) MaxAbs() float32 {
	var m float32
	nx := f.dims[0]
	for r := 0; r < f.rows(); r++ {
		base := f.rowBase(r)
		for i := 1; i <= nx; i++ {
			v := f.data[base+i]
			if v < 0 {
				v = -v
			}
			if v > m {
				m = v
			}
		}
	}
	return m
}

// rows is the number of interior rows along axis 0.
func (f *Field) rows() int {
	if f.rank == 2 {
		return f.dims[1]
	}
	return f.dims[1] * f.dims[2]
}

// rowBase returns the Data offset of the halo cell that starts interior row r.
// Adding i in [1, dim0] addresses the interior cells of that row.
func (f *Field) rowBase(r int) int {
	if f.rank == 2 {
		return (r + 1) * f.stride[1]
	}
	ny := f.dims[1]
	y := r%ny + 1
	z := r/ny + 1
	return y*f.stride[1] + z*f.stride[2]
}

// rowCoords returns the (y, z) coordinates of interior row r. z is 0 in 2D.
func (f *Field) rowCoords(r int) (y, z int) {
	if f.rank == 2 {
		return r + 1, 0
	}
	ny := f.dims[1]
	return r%ny + 1, r/ny + 1
}
