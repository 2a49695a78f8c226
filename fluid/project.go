package fluid

// Projector removes the divergent part of a velocity field by solving a
// pressure Poisson equation and subtracting the pressure gradient.
type Projector struct {
	// Spacing is the grid spacing h (domain length / cells).
	Spacing float32

	solver     *LinearSolver
	pool       *workerPool
	pressure   *Field
	divergence *Field
}

// NewProjector returns a projector for grid spacing h. Its pressure solve
// always runs DefaultIterations sweeps.
func NewProjector(h float32) *Projector {
	return &Projector{
		Spacing: h,
		solver:  NewLinearSolver(DefaultIterations),
	}
}

// Project makes vel divergence-free in place. kinds[i] is the boundary of
// component i.
func (pr *Projector) Project(vel *VectorField, kinds []AxisKinds) {
	for i, f := range vel.comps {
		ApplyBoundary(f, kinds[i])
	}

	div, p := pr.buffers(vel)
	rank := vel.Rank()
	h := pr.Spacing

	pr.pool.parallelFor(div.rows(), func(start, end int) {
		divergenceRows(vel, div, -h, start, end)
	})
	ApplyBoundary(div, Continuity())

	p.Clear()
	pr.solver.Solve(p, div, 1, float32(2*rank), Continuity())

	for a, u := range vel.comps {
		if a >= rank {
			break
		}
		pr.pool.parallelFor(u.rows(), func(start, end int) {
			subtractGradientRows(u, p, a, vel.staggered, kinds[a][a] == WallFace, h, start, end)
		})
		ApplyBoundary(u, kinds[a])
	}
}

// Divergence writes the discrete divergence of vel into out, which must have
// vel's cell dims. The halo of out is left alone.
func (pr *Projector) Divergence(vel *VectorField, out *Field) {
	pr.pool.parallelFor(out.rows(), func(start, end int) {
		divergenceRows(vel, out, 1/pr.Spacing, start, end)
	})
}

// Pressure returns the pressure from the last Project call, or nil.
func (pr *Projector) Pressure() *Field { return pr.pressure }

func (pr *Projector) buffers(vel *VectorField) (div, p *Field) {
	dims := vel.CellDims()
	if pr.divergence == nil || !sameDims(pr.divergence, dims) {
		pr.divergence, _ = NewField(dims...)
		pr.pressure, _ = NewField(dims...)
	}
	return pr.divergence, pr.pressure
}

func sameDims(f *Field, dims []int) bool {
	if f.rank != len(dims) {
		return false
	}
	for a, d := range dims {
		if f.dims[a] != d {
			return false
		}
	}
	return true
}

// divergenceRows writes scale * sum of per-axis differences for interior
// rows [start, end) of out. Cell-centered velocity uses central differences
// 0.5*(v(p+e) - v(p-e)); staggered velocity uses the face pair v(p+e) - v(p).
func divergenceRows(vel *VectorField, out *Field, scale float32, start, end int) {
	rank := out.rank
	nx := out.dims[0]
	for r := start; r < end; r++ {
		y, z := out.rowCoords(r)
		base := out.rowBase(r)
		for i := 1; i <= nx; i++ {
			var sum float32
			for a := 0; a < rank; a++ {
				u := vel.comps[a]
				s := u.stride[a]
				idx := i + y*u.stride[1] + z*u.stride[2]
				if vel.staggered {
					sum += u.data[idx+s] - u.data[idx]
				} else {
					sum += 0.5 * (u.data[idx+s] - u.data[idx-s])
				}
			}
			out.data[base+i] = scale * sum
		}
	}
}

// subtractGradientRows applies u -= dP/dx_a over interior rows of u. With
// walls set, the staggered faces lying on the walls along a are skipped.
func subtractGradientRows(u, p *Field, a int, staggered, walls bool, h float32, start, end int) {
	nx := u.dims[0]
	sp := p.stride[a]
	for r := start; r < end; r++ {
		y, z := u.rowCoords(r)
		base := u.rowBase(r)
		for i := 1; i <= nx; i++ {
			if walls {
				if c := [3]int{i, y, z}[a]; c == 1 || c == u.dims[a] {
					continue
				}
			}
			pi := i + y*p.stride[1] + z*p.stride[2]
			if staggered {
				u.data[base+i] -= (p.data[pi] - p.data[pi-sp]) / h
			} else {
				u.data[base+i] -= 0.5 * (p.data[pi+sp] - p.data[pi-sp]) / h
			}
		}
	}
}
