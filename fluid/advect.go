package fluid

// Advector transports fields along a velocity field by semi-Lagrangian
// backtracing.
type Advector struct {
	// CellsPerUnit converts physical velocity into cells per unit time.
	CellsPerUnit float32

	pool *workerPool
}

// Advect writes into out the value of in sampled at the point each interior
// cell came from one step ago, then applies the boundary to out.
// out and in must share a shape and must not alias.
func (ad *Advector) Advect(out, in *Field, vel *VectorField, dt float32, kinds AxisKinds) {
	ad.advect(out, in, vel, dt, kinds, -1)
}

// AdvectVector advects every component of in with the same velocity field.
// Components of a staggered field are traced from their face centers.
func (ad *Advector) AdvectVector(out, in, vel *VectorField, dt float32, kinds []AxisKinds) {
	for i := range out.comps {
		faceAxis := -1
		if in.staggered && i < in.Rank() {
			faceAxis = i
		}
		ad.advect(out.comps[i], in.comps[i], vel, dt, kinds[i], faceAxis)
	}
}

// advect is Advect for a field whose samples sit on the faces normal to
// faceAxis, or at cell centers when faceAxis is negative.
func (ad *Advector) advect(out, in *Field, vel *VectorField, dt float32, kinds AxisKinds, faceAxis int) {
	dt0 := dt * ad.CellsPerUnit
	rank := out.rank
	nx := out.dims[0]
	ad.pool.parallelFor(out.rows(), func(start, end int) {
		for r := start; r < end; r++ {
			y, z := out.rowCoords(r)
			base := out.rowBase(r)
			for i := 1; i <= nx; i++ {
				p := [3]float32{float32(i), float32(y), float32(z)}
				var pos [3]float32
				for b := 0; b < rank; b++ {
					pos[b] = p[b] - dt0*velocityAt(vel, b, base+i, p, faceAxis)
				}
				out.data[base+i] = sample(in, pos)
			}
		}
	})
	ApplyBoundary(out, kinds)
}

// velocityAt returns component b of vel at storage coordinates p of a field
// sampled at cell centers (faceAxis < 0) or on faces normal to faceAxis.
// idx is the Data offset of p, valid when the field shares vel's layout.
func velocityAt(vel *VectorField, b, idx int, p [3]float32, faceAxis int) float32 {
	u := vel.comps[b]
	if !vel.staggered && faceAxis < 0 {
		return u.data[idx]
	}
	if vel.staggered && faceAxis == b {
		return u.data[idx]
	}

	// Convert to cell-center coordinates, then into u's index space.
	q := p
	if faceAxis >= 0 {
		q[faceAxis] -= 0.5
	}
	if vel.staggered {
		q[b] += 0.5
	}
	return sample(u, q)
}

// sample interpolates f at fractional storage coordinates. Each coordinate is
// clamped to [0.5, dim+0.5] so the stencil never leaves the halo.
func sample(f *Field, pos [3]float32) float32 {
	d := f.data
	sy, sz := f.stride[1], f.stride[2]

	x := clamp(pos[0], 0.5, float32(f.dims[0])+0.5)
	y := clamp(pos[1], 0.5, float32(f.dims[1])+0.5)
	i0, j0 := int(x), int(y)
	s1, t1 := x-float32(i0), y-float32(j0)
	s0, t0 := 1-s1, 1-t1

	if f.rank == 2 {
		idx := i0 + j0*sy
		return s0*(t0*d[idx]+t1*d[idx+sy]) +
			s1*(t0*d[idx+1]+t1*d[idx+1+sy])
	}

	z := clamp(pos[2], 0.5, float32(f.dims[2])+0.5)
	k0 := int(z)
	u1 := z - float32(k0)
	u0 := 1 - u1

	idx := i0 + j0*sy + k0*sz
	c00 := s0*d[idx] + s1*d[idx+1]
	c10 := s0*d[idx+sy] + s1*d[idx+sy+1]
	c01 := s0*d[idx+sz] + s1*d[idx+sz+1]
	c11 := s0*d[idx+sy+sz] + s1*d[idx+sy+sz+1]
	return u0*(t0*c00+t1*c10) + u1*(t0*c01+t1*c11)
}

func clamp(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
