package fluid

import (
	"errors"
	"testing"
)

func TestNewFieldInvalidDims(t *testing.T) {
	tests := []struct {
		name string
		dims []int
	}{
		{"no axes", nil},
		{"one axis", []int{8}},
		{"four axes", []int{2, 2, 2, 2}},
		{"zero size", []int{0, 4}},
		{"negative size", []int{4, -1}},
		{"zero depth", []int{4, 4, 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := NewField(tt.dims...)
			if !errors.Is(err, ErrInvalidDims) {
				t.Errorf("NewField(%v) error = %v, want ErrInvalidDims", tt.dims, err)
			}
			if f != nil {
				t.Errorf("NewField(%v) returned a field alongside an error", tt.dims)
			}
		})
	}
}

func TestFieldLayout2D(t *testing.T) {
	f, err := NewField(4, 3)
	if err != nil {
		t.Fatalf("NewField: %v", err)
	}

	if got, want := f.Len(), 6*5; got != want {
		t.Errorf("Len() = %d, want %d", got, want)
	}
	if got := f.Index(1, 0); got != 1 {
		t.Errorf("Index(1, 0) = %d, want 1 (axis 0 fastest)", got)
	}
	if got := f.Index(0, 1); got != 6 {
		t.Errorf("Index(0, 1) = %d, want 6", got)
	}
	if got := f.Size(0); got != 6 {
		t.Errorf("Size(0) = %d, want 6", got)
	}
	if dims := f.Dims(); len(dims) != 2 || dims[0] != 4 || dims[1] != 3 {
		t.Errorf("Dims() = %v, want [4 3]", dims)
	}

	// Halo coordinates are addressable.
	f.Set(7, 5, 4)
	if got := f.At(5, 4); got != 7 {
		t.Errorf("At(5, 4) = %v, want 7", got)
	}
	if got := f.Data()[len(f.Data())-1]; got != 7 {
		t.Errorf("last cell = %v, want 7", got)
	}
}

func TestFieldLayout3D(t *testing.T) {
	f, err := NewField(2, 3, 4)
	if err != nil {
		t.Fatalf("NewField: %v", err)
	}

	if got, want := f.Len(), 4*5*6; got != want {
		t.Errorf("Len() = %d, want %d", got, want)
	}
	if got, want := f.Index(1, 2, 3), 1+2*4+3*20; got != want {
		t.Errorf("Index(1, 2, 3) = %d, want %d", got, want)
	}
	if got := f.Rank(); got != 3 {
		t.Errorf("Rank() = %d, want 3", got)
	}
}

func TestFieldRowsCoverInterior(t *testing.T) {
	for _, dims := range [][]int{{5, 4}, {3, 4, 2}} {
		f, _ := NewField(dims...)
		seen := make(map[int]bool)
		for r := 0; r < f.rows(); r++ {
			base := f.rowBase(r)
			y, z := f.rowCoords(r)
			if base != f.Index(0, y, z) {
				t.Errorf("dims %v row %d: base %d, coords index %d", dims, r, base, f.Index(0, y, z))
			}
			for i := 1; i <= f.Dim(0); i++ {
				seen[base+i] = true
			}
		}
		want := 1
		for _, d := range dims {
			want *= d
		}
		if len(seen) != want {
			t.Errorf("dims %v: rows visit %d cells, want %d", dims, len(seen), want)
		}
	}
}

func TestFieldClearIdempotent(t *testing.T) {
	f, _ := NewField(3, 3, 3)
	for i := range f.Data() {
		f.Data()[i] = float32(i) - 10
	}

	f.Clear()
	f.Clear()

	for i, v := range f.Data() {
		if v != 0 {
			t.Fatalf("cell %d = %v after Clear, want 0", i, v)
		}
	}
}

func TestFieldSumIgnoresHalo(t *testing.T) {
	f, _ := NewField(3, 2)
	for i := range f.Data() {
		f.Data()[i] = 100
	}
	for y := 1; y <= 2; y++ {
		for x := 1; x <= 3; x++ {
			f.Set(1, x, y)
		}
	}

	if got := f.Sum(); got != 6 {
		t.Errorf("Sum() = %v, want 6", got)
	}
	if got := f.MaxAbs(); got != 1 {
		t.Errorf("MaxAbs() = %v, want 1", got)
	}
}
