package fluid

import "testing"

func TestAdvectZeroVelocityIsIdentity(t *testing.T) {
	tests := []struct {
		name      string
		dims      []int
		staggered bool
	}{
		{"2D", []int{7, 5}, false},
		{"3D", []int{4, 5, 3}, false},
		{"2D staggered velocity", []int{6, 6}, true},
		{"3D staggered velocity", []int{3, 4, 3}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in, _ := NewField(tt.dims...)
			fillInterior(in)
			ApplyBoundary(in, Continuity())

			var vel *VectorField
			if tt.staggered {
				vel, _ = NewStaggeredVectorField(len(tt.dims), tt.dims)
			} else {
				vel, _ = NewVectorField(len(tt.dims), tt.dims)
			}

			out, _ := NewField(tt.dims...)
			ad := &Advector{CellsPerUnit: float32(tt.dims[0])}
			ad.Advect(out, in, vel, 0.1, Continuity())

			forInterior(in, func(c [3]int) {
				idx := in.Index(c[0], c[1], c[2])
				if out.data[idx] != in.data[idx] {
					t.Errorf("cell %v = %v, want %v", c, out.data[idx], in.data[idx])
				}
			})
		})
	}
}

func TestAdvectUniformShift(t *testing.T) {
	in, _ := NewField(8, 4)
	fillInterior(in)
	ApplyBoundary(in, Continuity())

	vel, _ := NewVectorField(2, []int{8, 4})
	for i := range vel.Component(0).Data() {
		vel.Component(0).Data()[i] = 1
	}

	// One cell per step along x.
	out, _ := NewField(8, 4)
	ad := &Advector{CellsPerUnit: 1}
	ad.Advect(out, in, vel, 1, Continuity())

	for y := 1; y <= 4; y++ {
		for x := 2; x <= 8; x++ {
			if got, want := out.At(x, y), in.At(x-1, y); got != want {
				t.Errorf("(%d,%d) = %v, want upstream %v", x, y, got, want)
			}
		}
	}
}

func TestAdvectClampsBacktrace(t *testing.T) {
	in, _ := NewField(4, 4)
	for i := range in.data {
		in.data[i] = 3
	}

	vel, _ := NewVectorField(2, []int{4, 4})
	for c := 0; c < 2; c++ {
		for i := range vel.Component(c).Data() {
			vel.Component(c).Data()[i] = 1000
		}
	}

	out, _ := NewField(4, 4)
	ad := &Advector{CellsPerUnit: 4}
	ad.Advect(out, in, vel, 1, Continuity())

	forInterior(out, func(c [3]int) {
		if got := out.At(c[0], c[1]); got != 3 {
			t.Errorf("cell %v = %v, want 3 from a clamped trace", c, got)
		}
	})
}

func TestAdvectVectorUsesSameVelocity(t *testing.T) {
	dims := []int{6, 6}
	in, _ := NewVectorField(3, dims)
	for c := 0; c < 3; c++ {
		fillInterior(in.Component(c))
		in.Component(c).data[in.Component(c).Index(3, 3)] = float32(c + 10)
	}
	vel, _ := NewVectorField(2, dims)
	for i := range vel.Component(1).Data() {
		vel.Component(1).Data()[i] = 1
	}

	out, _ := NewVectorField(3, dims)
	ad := &Advector{CellsPerUnit: 1}
	kinds := []AxisKinds{Continuity(), Continuity(), Continuity()}
	ad.AdvectVector(out, in, vel, 1, kinds)

	for c := 0; c < 3; c++ {
		if got, want := out.Component(c).At(3, 4), float32(c+10); got != want {
			t.Errorf("component %d moved value = %v, want %v", c, got, want)
		}
	}
}

func BenchmarkAdvect2D(b *testing.B) {
	dims := []int{128, 128}
	in, _ := NewField(dims...)
	fillInterior(in)
	vel, _ := NewVectorField(2, dims)
	for c := 0; c < 2; c++ {
		for i := range vel.Component(c).Data() {
			vel.Component(c).Data()[i] = 0.3
		}
	}
	out, _ := NewField(dims...)
	ad := &Advector{CellsPerUnit: 128}

	b.ResetTimer()
	for n := 0; n < b.N; n++ {
		ad.Advect(out, in, vel, 0.01, Continuity())
	}
}
