package fluid

import "log/slog"

// DefaultIterations is the Jacobi sweep count for diffusion and pressure.
const DefaultIterations = 20

// Relaxer runs Jacobi sweeps on an accelerator. Implementations must leave x
// exactly as LinearSolver would: x starts as x0, each sweep computes
// x = (x0 + a*sum(neighbours)) / c and is followed by a boundary fill.
type Relaxer interface {
	Relax(x, x0 *Field, a, c float32, kinds AxisKinds, iterations int) error
}

// LinearSolver solves the local linear systems from implicit diffusion and
// the pressure Poisson equation by fixed-count Jacobi relaxation.
type LinearSolver struct {
	Iterations int
	Backend    Relaxer

	pool          *workerPool
	scratch       []*Field
	backendFailed bool
}

// NewLinearSolver returns a solver running the given number of sweeps.
func NewLinearSolver(iterations int) *LinearSolver {
	return &LinearSolver{Iterations: iterations}
}

// Solve relaxes x toward x = (x0 + a*sum(neighbours)) / c.
//
// x is initialised from x0, then each sweep reads the previous sweep's values
// only and ends with ApplyBoundary(x, kinds). When a is zero no coupling
// exists: x0 is copied and the boundary applied once.
func (s *LinearSolver) Solve(x, x0 *Field, a, c float32, kinds AxisKinds) {
	if a == 0 {
		x.CopyFrom(x0)
		ApplyBoundary(x, kinds)
		return
	}

	iterations := s.Iterations
	if iterations <= 0 {
		iterations = DefaultIterations
	}

	if s.Backend != nil && !s.backendFailed {
		err := s.Backend.Relax(x, x0, a, c, kinds, iterations)
		if err == nil {
			return
		}
		slog.Warn("accelerated relaxation failed, using CPU", "error", err)
		s.backendFailed = true
	}

	x.CopyFrom(x0)
	prev := s.scratchFor(x)
	for it := 0; it < iterations; it++ {
		prev.CopyFrom(x)
		s.pool.parallelFor(x.rows(), func(start, end int) {
			jacobiRows(x, prev, x0, a, c, start, end)
		})
		ApplyBoundary(x, kinds)
	}
}

// Diffuse runs an implicit diffusion step with coefficient k over dt.
// cellsPerUnit is the grid resolution N; a = dt*k*N^2, c = 1 + 2*D*a.
func (s *LinearSolver) Diffuse(x, x0 *Field, k, dt, cellsPerUnit float32, kinds AxisKinds) {
	a := dt * k * cellsPerUnit * cellsPerUnit
	s.Solve(x, x0, a, 1+float32(2*x.rank)*a, kinds)
}

func jacobiRows(x, prev, x0 *Field, a, c float32, start, end int) {
	nx := x.dims[0]
	sy, sz := x.stride[1], x.stride[2]
	if x.rank == 2 {
		for r := start; r < end; r++ {
			base := x.rowBase(r)
			for i := base + 1; i <= base+nx; i++ {
				sum := prev.data[i-1] + prev.data[i+1] + prev.data[i-sy] + prev.data[i+sy]
				x.data[i] = (x0.data[i] + a*sum) / c
			}
		}
		return
	}
	for r := start; r < end; r++ {
		base := x.rowBase(r)
		for i := base + 1; i <= base+nx; i++ {
			sum := prev.data[i-1] + prev.data[i+1] +
				prev.data[i-sy] + prev.data[i+sy] +
				prev.data[i-sz] + prev.data[i+sz]
			x.data[i] = (x0.data[i] + a*sum) / c
		}
	}
}

// scratchFor returns a reusable buffer shaped like f.
func (s *LinearSolver) scratchFor(f *Field) *Field {
	for _, sc := range s.scratch {
		if sc.SameShape(f) {
			return sc
		}
	}
	sc, _ := NewField(f.Dims()...)
	s.scratch = append(s.scratch, sc)
	return sc
}
