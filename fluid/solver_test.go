package fluid

import (
	"errors"
	"testing"
)

func TestSolveFastPathMatchesIteration(t *testing.T) {
	for _, dims := range [][]int{{6, 5}, {4, 3, 5}} {
		x0, _ := NewField(dims...)
		fillInterior(x0)
		ApplyBoundary(x0, Continuity())

		fast, _ := NewField(dims...)
		NewLinearSolver(DefaultIterations).Solve(fast, x0, 0, 1, Continuity())

		// Run the general sweep with a zero coupling term.
		slow, _ := NewField(dims...)
		prev, _ := NewField(dims...)
		slow.CopyFrom(x0)
		for it := 0; it < 7; it++ {
			prev.CopyFrom(slow)
			jacobiRows(slow, prev, x0, 0, 1, 0, slow.rows())
			ApplyBoundary(slow, Continuity())
		}

		forInterior(x0, func(c [3]int) {
			idx := x0.Index(c[0], c[1], c[2])
			if fast.data[idx] != x0.data[idx] {
				t.Errorf("dims %v: fast path %v at %v, want %v", dims, fast.data[idx], c, x0.data[idx])
			}
			if slow.data[idx] != fast.data[idx] {
				t.Errorf("dims %v: iteration %v at %v, fast path %v", dims, slow.data[idx], c, fast.data[idx])
			}
		})
	}
}

func TestSolveSingleSweep(t *testing.T) {
	x0, _ := NewField(3, 3)
	x0.Set(4, 2, 2)

	x, _ := NewField(3, 3)
	s := NewLinearSolver(1)
	s.Solve(x, x0, 1, 4, Continuity())

	// Neighbours of the center start at zero, so one sweep gives x0/c there.
	if got := x.At(2, 2); got != 1 {
		t.Errorf("center = %v, want 1", got)
	}
	// (x0 + a*center) / c = (0 + 4) / 4.
	if got := x.At(1, 2); got != 1 {
		t.Errorf("edge neighbour = %v, want 1", got)
	}
	if got := x.At(1, 1); got != 0 {
		t.Errorf("corner = %v, want 0", got)
	}
}

func TestDiffuseSpreadsPeak(t *testing.T) {
	x0, _ := NewField(9, 9)
	x0.Set(1, 5, 5)

	x, _ := NewField(9, 9)
	NewLinearSolver(DefaultIterations).Diffuse(x, x0, 0.01, 0.1, 9, Continuity())

	peak := x.At(5, 5)
	if peak >= 1 || peak <= 0 {
		t.Errorf("peak after diffusion = %v, want in (0, 1)", peak)
	}
	if x.At(4, 5) <= 0 {
		t.Errorf("neighbour after diffusion = %v, want > 0", x.At(4, 5))
	}
	if x.At(4, 5) != x.At(6, 5) || x.At(5, 4) != x.At(5, 6) {
		t.Error("diffusion of a centered peak is not symmetric")
	}
	forInterior(x, func(c [3]int) {
		if v := x.At(c[0], c[1]); v < 0 {
			t.Errorf("negative value %v at %v", v, c)
		}
	})
}

type fakeRelaxer struct {
	err   error
	calls int
}

func (r *fakeRelaxer) Relax(x, x0 *Field, a, c float32, kinds AxisKinds, iterations int) error {
	r.calls++
	if r.err != nil {
		return r.err
	}
	for i := range x.data {
		x.data[i] = -1
	}
	return nil
}

func TestSolveRelaxerBackend(t *testing.T) {
	x0, _ := NewField(4, 4)
	fillInterior(x0)

	t.Run("used when healthy", func(t *testing.T) {
		r := &fakeRelaxer{}
		s := NewLinearSolver(5)
		s.Backend = r
		x, _ := NewField(4, 4)
		s.Solve(x, x0, 1, 4, Continuity())
		if r.calls != 1 || x.At(2, 2) != -1 {
			t.Errorf("calls = %d, x = %v; want backend result", r.calls, x.At(2, 2))
		}
	})

	t.Run("falls back and stays off", func(t *testing.T) {
		r := &fakeRelaxer{err: errors.New("device lost")}
		s := NewLinearSolver(5)
		s.Backend = r
		x, _ := NewField(4, 4)
		s.Solve(x, x0, 1, 4, Continuity())
		s.Solve(x, x0, 1, 4, Continuity())

		ref, _ := NewField(4, 4)
		NewLinearSolver(5).Solve(ref, x0, 1, 4, Continuity())

		if r.calls != 1 {
			t.Errorf("backend calls = %d, want 1", r.calls)
		}
		for i := range ref.data {
			if x.data[i] != ref.data[i] {
				t.Fatalf("cell %d = %v, CPU reference %v", i, x.data[i], ref.data[i])
			}
		}
	})
}

func TestSolveParallelMatchesSerial(t *testing.T) {
	dims := []int{40, 48}
	x0, _ := NewField(dims...)
	fillInterior(x0)

	serial, _ := NewField(dims...)
	NewLinearSolver(DefaultIterations).Solve(serial, x0, 0.7, 3.8, Walls(1))

	pool := newWorkerPool(4)
	defer pool.stop()
	s := NewLinearSolver(DefaultIterations)
	s.pool = pool
	par, _ := NewField(dims...)
	s.Solve(par, x0, 0.7, 3.8, Walls(1))

	for i := range serial.data {
		if serial.data[i] != par.data[i] {
			t.Fatalf("cell %d: parallel %v, serial %v", i, par.data[i], serial.data[i])
		}
	}
}

func BenchmarkSolve2D(b *testing.B) {
	x0, _ := NewField(128, 128)
	fillInterior(x0)
	x, _ := NewField(128, 128)
	s := NewLinearSolver(DefaultIterations)

	b.ResetTimer()
	for n := 0; n < b.N; n++ {
		s.Solve(x, x0, 1, 4, Continuity())
	}
}

func BenchmarkSolve2DParallel(b *testing.B) {
	x0, _ := NewField(128, 128)
	fillInterior(x0)
	x, _ := NewField(128, 128)
	s := NewLinearSolver(DefaultIterations)
	s.pool = newWorkerPool(0)
	defer s.pool.stop()

	b.ResetTimer()
	for n := 0; n < b.N; n++ {
		s.Solve(x, x0, 1, 4, Continuity())
	}
}
