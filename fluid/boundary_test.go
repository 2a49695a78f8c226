package fluid

import (
	"errors"
	"math"
	"testing"
)

// fillInterior writes distinct non-zero values into every interior cell.
func fillInterior(f *Field) {
	nx := f.Dim(0)
	for r := 0; r < f.rows(); r++ {
		base := f.rowBase(r)
		for i := 1; i <= nx; i++ {
			f.data[base+i] = float32(base+i)*0.25 + 1
		}
	}
}

// forInterior calls fn with the coordinates of every interior cell.
func forInterior(f *Field, fn func(c [3]int)) {
	for r := 0; r < f.rows(); r++ {
		y, z := f.rowCoords(r)
		for i := 1; i <= f.Dim(0); i++ {
			fn([3]int{i, y, z})
		}
	}
}

func TestApplyBoundaryAntisymmetry(t *testing.T) {
	tests := []struct {
		name string
		dims []int
		kind BoundaryKind
		sign float32
	}{
		{"2D negate", []int{5, 4}, ReflectNegate, -1},
		{"2D copy", []int{5, 4}, ReflectCopy, 1},
		{"3D negate", []int{4, 3, 5}, ReflectNegate, -1},
		{"3D copy", []int{4, 3, 5}, ReflectCopy, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for axis := 0; axis < len(tt.dims); axis++ {
				f, _ := NewField(tt.dims...)
				fillInterior(f)
				var kinds AxisKinds
				for a := range kinds {
					kinds[a] = ReflectCopy
				}
				kinds[axis] = tt.kind
				ApplyBoundary(f, kinds)

				s := f.Stride(axis)
				n := f.Dim(axis)
				forInterior(f, func(c [3]int) {
					if c[axis] != 1 && c[axis] != n {
						return
					}
					idx := f.Index(c[0], c[1], c[2])
					if c[axis] == 1 {
						if got, want := f.data[idx-s], tt.sign*f.data[idx]; got != want {
							t.Errorf("axis %d low halo at %v = %v, want %v", axis, c, got, want)
						}
					}
					if c[axis] == n {
						if got, want := f.data[idx+s], tt.sign*f.data[idx]; got != want {
							t.Errorf("axis %d high halo at %v = %v, want %v", axis, c, got, want)
						}
					}
				})
			}
		})
	}
}

func TestApplyBoundaryFreeLeavesHalo(t *testing.T) {
	f, _ := NewField(3, 3)
	for i := range f.data {
		f.data[i] = 42
	}
	fillInterior(f)

	ApplyBoundary(f, AxisKinds{Free, ReflectNegate})

	for y := 1; y <= 3; y++ {
		if got := f.At(0, y); got != 42 {
			t.Errorf("free halo (0, %d) = %v, want 42", y, got)
		}
		if got := f.At(4, y); got != 42 {
			t.Errorf("free halo (4, %d) = %v, want 42", y, got)
		}
	}
	for x := 1; x <= 3; x++ {
		if got, want := f.At(x, 0), -f.At(x, 1); got != want {
			t.Errorf("negated halo (%d, 0) = %v, want %v", x, got, want)
		}
	}
	// Corners only blend along the non-free axis.
	if got, want := f.At(0, 0), f.At(0, 1); got != want {
		t.Errorf("corner (0, 0) = %v, want %v", got, want)
	}
}

func TestApplyBoundaryCorners2D(t *testing.T) {
	f, _ := NewField(4, 3)
	fillInterior(f)
	ApplyBoundary(f, Walls(0))

	corners := [][2]int{{0, 0}, {5, 0}, {0, 4}, {5, 4}}
	for _, c := range corners {
		ix, iy := 1, 1
		if c[0] != 0 {
			ix = 4
		}
		if c[1] != 0 {
			iy = 3
		}
		want := 0.5 * (f.At(ix, c[1]) + f.At(c[0], iy))
		if got := f.At(c[0], c[1]); got != want {
			t.Errorf("corner %v = %v, want %v", c, got, want)
		}
	}
}

func TestApplyBoundaryCorners3D(t *testing.T) {
	f, _ := NewField(3, 4, 2)
	fillInterior(f)
	ApplyBoundary(f, Walls(2))

	hi := [3]int{4, 5, 3}
	for _, x := range []int{0, hi[0]} {
		for _, y := range []int{0, hi[1]} {
			for _, z := range []int{0, hi[2]} {
				in := func(v, h int) int {
					if v == 0 {
						return 1
					}
					return h - 1
				}
				a := f.At(in(x, hi[0]), y, z)
				b := f.At(x, in(y, hi[1]), z)
				c := f.At(x, y, in(z, hi[2]))
				want := (a + b + c) / 3
				got := f.At(x, y, z)
				if math.Abs(float64(got-want)) > 1e-6 {
					t.Errorf("corner (%d,%d,%d) = %v, want %v", x, y, z, got, want)
				}
			}
		}
	}
}

func TestApplyBoundarySizeOneAxis(t *testing.T) {
	f, _ := NewField(1, 3)
	for y := 1; y <= 3; y++ {
		f.Set(float32(y), 1, y)
	}

	ApplyBoundary(f, Walls(0))

	for y := 1; y <= 3; y++ {
		v := f.At(1, y)
		if f.At(0, y) != -v || f.At(2, y) != -v {
			t.Errorf("row %d halos = (%v, %v), want both %v", y, f.At(0, y), f.At(2, y), -v)
		}
	}
}

func TestApplyBoundaryWallFaces(t *testing.T) {
	tests := []struct {
		name string
		dims []int
		axis int
	}{
		{"2D x", []int{7, 5}, 0},
		{"2D y", []int{7, 5}, 1},
		{"3D z", []int{4, 5, 6}, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, _ := NewField(tt.dims...)
			fillInterior(f)
			ApplyBoundary(f, FaceWalls(tt.axis))

			n := f.Dim(tt.axis)
			forInterior(f, func(c [3]int) {
				if c[tt.axis] != 1 && c[tt.axis] != n {
					return
				}
				if v := f.At(c[0], c[1], c[2]); v != 0 {
					t.Errorf("wall face %v = %v, want 0", c, v)
				}
				in, halo := c, c
				if c[tt.axis] == 1 {
					in[tt.axis], halo[tt.axis] = 2, 0
				} else {
					in[tt.axis], halo[tt.axis] = n-1, n+1
				}
				want := -f.At(in[0], in[1], in[2])
				if got := f.At(halo[0], halo[1], halo[2]); got != want {
					t.Errorf("halo %v = %v, want %v", halo, got, want)
				}
			})
		})
	}
}

func TestParseBoundaryKind(t *testing.T) {
	tests := []struct {
		in      string
		want    BoundaryKind
		wantErr bool
	}{
		{"reflect-negate", ReflectNegate, false},
		{"reflect-copy", ReflectCopy, false},
		{"free", Free, false},
		{"wall-face", WallFace, false},
		{"periodic", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseBoundaryKind(tt.in)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidConfig) {
					t.Errorf("ParseBoundaryKind(%q) error = %v, want ErrInvalidConfig", tt.in, err)
				}
				return
			}
			if err != nil || got != tt.want {
				t.Errorf("ParseBoundaryKind(%q) = %v, %v, want %v", tt.in, got, err, tt.want)
			}
			if got.String() != tt.in {
				t.Errorf("String() = %q, want %q", got.String(), tt.in)
			}
		})
	}
}
