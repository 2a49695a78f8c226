package fluid

import "fmt"

// Step phase names reported through Options.OnPhase.
const (
	PhaseAddVelocity     = "add_velocity"
	PhaseDiffuseVelocity = "diffuse_velocity"
	PhaseProject         = "project"
	PhaseAdvectVelocity  = "advect_velocity"
	PhaseReproject       = "reproject"
	PhaseAddDensity      = "add_density"
	PhaseDiffuseDensity  = "diffuse_density"
	PhaseAdvectDensity   = "advect_density"
)

// BoundaryMode selects the velocity boundary kinds of a System.
type BoundaryMode uint8

const (
	// BoundaryWalls makes every domain face a solid wall: the velocity
	// component normal to a face is negated into the halo.
	BoundaryWalls BoundaryMode = iota
	// BoundaryOpen copies every velocity component into the halo.
	BoundaryOpen
)

// ParseBoundaryMode maps "walls" or "open" to a BoundaryMode.
func ParseBoundaryMode(s string) (BoundaryMode, error) {
	switch s {
	case "walls", "":
		return BoundaryWalls, nil
	case "open":
		return BoundaryOpen, nil
	}
	return 0, fmt.Errorf("unknown boundary mode %q: %w", s, ErrInvalidConfig)
}

func (m BoundaryMode) String() string {
	if m == BoundaryOpen {
		return "open"
	}
	return "walls"
}

// Options configures a System.
type Options struct {
	Dims      []int
	Diffusion float32 // dye diffusion constant
	Viscosity float32

	// Channels is the number of dye components (default 3, CMY).
	Channels int
	// Length is the physical domain length along axis 0 (default 1).
	// Spacing is Length / Dims[0] on every axis.
	Length float32
	// Iterations is the diffusion sweep count (default 20). The pressure
	// solve always uses DefaultIterations.
	Iterations int
	Boundary   BoundaryMode
	// Staggered stores velocity on cell faces instead of cell centers.
	Staggered bool
	// Workers sizes the sweep pool; 0 uses GOMAXPROCS, 1 runs inline.
	Workers int
	// Relaxer optionally accelerates the Jacobi sweeps.
	Relaxer Relaxer
	// OnPhase is called at the start of each step phase.
	OnPhase func(phase string)
}

// System is the Stable Fluids orchestrator. It owns the dye and velocity
// fields plus one previous-step buffer of each.
type System struct {
	dims      []int
	diffusion float32
	viscosity float32
	spacing   float32
	cellsPer  float32
	boundary  BoundaryMode

	density, densityPrev   *VectorField
	velocity, velocityPrev *VectorField

	densityKinds  []AxisKinds
	velocityKinds []AxisKinds

	pool      *workerPool
	solver    *LinearSolver
	advector  *Advector
	projector *Projector
	onPhase   func(string)
}

// New builds a System with default options over dims.
func New(dims []int, diffusion, viscosity float32) (*System, error) {
	return NewWithOptions(Options{Dims: dims, Diffusion: diffusion, Viscosity: viscosity})
}

// NewWithOptions builds a System. It fails on invalid dims or negative
// constants.
func NewWithOptions(opts Options) (*System, error) {
	if err := validateDims(opts.Dims); err != nil {
		return nil, err
	}
	if opts.Diffusion < 0 || opts.Viscosity < 0 {
		return nil, fmt.Errorf("diffusion %g and viscosity %g must be non-negative: %w",
			opts.Diffusion, opts.Viscosity, ErrInvalidConfig)
	}
	if opts.Channels < 0 || opts.Iterations < 0 || opts.Length < 0 {
		return nil, fmt.Errorf("negative channels, iterations or length: %w", ErrInvalidConfig)
	}
	if opts.Channels == 0 {
		opts.Channels = 3
	}
	if opts.Iterations == 0 {
		opts.Iterations = DefaultIterations
	}
	if opts.Length == 0 {
		opts.Length = 1
	}

	s := &System{
		dims:      append([]int(nil), opts.Dims...),
		diffusion: opts.Diffusion,
		viscosity: opts.Viscosity,
		spacing:   opts.Length / float32(opts.Dims[0]),
		boundary:  opts.Boundary,
		pool:      newWorkerPool(opts.Workers),
		onPhase:   opts.OnPhase,
	}
	s.cellsPer = 1 / s.spacing

	var err error
	if s.density, err = NewVectorField(opts.Channels, s.dims); err != nil {
		return nil, err
	}
	if s.densityPrev, err = NewVectorField(opts.Channels, s.dims); err != nil {
		return nil, err
	}
	newVel := NewVectorField
	if opts.Staggered {
		newVel = NewStaggeredVectorField
	}
	if s.velocity, err = newVel(len(s.dims), s.dims); err != nil {
		return nil, err
	}
	if s.velocityPrev, err = newVel(len(s.dims), s.dims); err != nil {
		return nil, err
	}

	s.densityKinds = make([]AxisKinds, opts.Channels)
	for i := range s.densityKinds {
		s.densityKinds[i] = Continuity()
	}
	s.velocityKinds = velocityKinds(len(s.dims), opts.Boundary, opts.Staggered)

	s.solver = NewLinearSolver(opts.Iterations)
	s.solver.pool = s.pool
	s.solver.Backend = opts.Relaxer
	s.advector = &Advector{CellsPerUnit: s.cellsPer, pool: s.pool}
	s.projector = NewProjector(s.spacing)
	s.projector.pool = s.pool
	s.projector.solver.pool = s.pool
	s.projector.solver.Backend = opts.Relaxer

	return s, nil
}

func velocityKinds(rank int, mode BoundaryMode, staggered bool) []AxisKinds {
	kinds := make([]AxisKinds, rank)
	for a := range kinds {
		switch {
		case mode == BoundaryWalls && staggered:
			kinds[a] = FaceWalls(a)
		case mode == BoundaryWalls:
			kinds[a] = Walls(a)
		default:
			kinds[a] = Continuity()
		}
	}
	return kinds
}

// Step advances the simulation by dt. addedDensity and addedVelocity hold one
// step's worth of external sources and are only read; either may be nil.
func (s *System) Step(addedDensity, addedVelocity *VectorField, dt float32) {
	s.phase(PhaseAddVelocity)
	if addedVelocity != nil {
		s.velocity.Add(addedVelocity)
	}

	s.phase(PhaseDiffuseVelocity)
	s.velocity.Swap(s.velocityPrev)
	for i := range s.velocity.comps {
		s.solver.Diffuse(s.velocity.comps[i], s.velocityPrev.comps[i],
			s.viscosity, dt, s.cellsPer, s.velocityKinds[i])
	}

	s.phase(PhaseProject)
	s.projector.Project(s.velocity, s.velocityKinds)

	s.phase(PhaseAdvectVelocity)
	s.velocity.Swap(s.velocityPrev)
	s.advector.AdvectVector(s.velocity, s.velocityPrev, s.velocityPrev, dt, s.velocityKinds)

	s.phase(PhaseReproject)
	s.projector.Project(s.velocity, s.velocityKinds)

	s.phase(PhaseAddDensity)
	if addedDensity != nil {
		s.density.Add(addedDensity)
	}

	s.phase(PhaseDiffuseDensity)
	s.density.Swap(s.densityPrev)
	for i := range s.density.comps {
		s.solver.Diffuse(s.density.comps[i], s.densityPrev.comps[i],
			s.diffusion, dt, s.cellsPer, s.densityKinds[i])
	}

	s.phase(PhaseAdvectDensity)
	s.density.Swap(s.densityPrev)
	s.advector.AdvectVector(s.density, s.densityPrev, s.velocity, dt, s.densityKinds)
}

func (s *System) phase(name string) {
	if s.onPhase != nil {
		s.onPhase(name)
	}
}

// Clear zeroes every field, halo and previous buffers included.
func (s *System) Clear() {
	s.density.Clear()
	s.densityPrev.Clear()
	s.velocity.Clear()
	s.velocityPrev.Clear()
}

// Close stops the sweep workers. The System must not be stepped afterwards.
func (s *System) Close() {
	s.pool.stop()
}

// Density returns the current dye field. The VectorField is stable but its
// components are swapped by Step; fetch Component again after every Step.
func (s *System) Density() *VectorField { return s.density }

// Velocity returns the current velocity field. Components are swapped by
// Step, as for Density.
func (s *System) Velocity() *VectorField { return s.velocity }

// Dims returns the interior cell counts.
func (s *System) Dims() []int { return append([]int(nil), s.dims...) }

// Rank returns the number of spatial axes.
func (s *System) Rank() int { return len(s.dims) }

// Channels returns the number of dye components.
func (s *System) Channels() int { return s.density.Coords() }

// Spacing returns the grid spacing h.
func (s *System) Spacing() float32 { return s.spacing }

// CellsPerUnit returns the grid resolution N = 1/h.
func (s *System) CellsPerUnit() float32 { return s.cellsPer }

// Diffusion returns the dye diffusion constant.
func (s *System) Diffusion() float32 { return s.diffusion }

// Viscosity returns the kinematic viscosity.
func (s *System) Viscosity() float32 { return s.viscosity }

// SetDiffusion changes the dye diffusion constant. Negative values clamp to 0.
func (s *System) SetDiffusion(k float32) { s.diffusion = max(k, 0) }

// SetViscosity changes the viscosity. Negative values clamp to 0.
func (s *System) SetViscosity(v float32) { s.viscosity = max(v, 0) }

// Boundary returns the velocity boundary mode.
func (s *System) Boundary() BoundaryMode { return s.boundary }

// VelocityKinds returns the boundary kinds of each velocity component.
func (s *System) VelocityKinds() []AxisKinds {
	return append([]AxisKinds(nil), s.velocityKinds...)
}

// Divergence writes the discrete divergence of the current velocity into out.
func (s *System) Divergence(out *Field) {
	s.projector.Divergence(s.velocity, out)
}

// Pressure returns the pressure from the most recent projection, or nil
// before the first Step.
func (s *System) Pressure() *Field { return s.projector.Pressure() }

// NewAddedDensity allocates a zeroed buffer shaped for Step's addedDensity.
func (s *System) NewAddedDensity() *VectorField {
	v, _ := NewVectorField(s.density.Coords(), s.dims)
	return v
}

// NewAddedVelocity allocates a zeroed buffer shaped for Step's addedVelocity.
func (s *System) NewAddedVelocity() *VectorField {
	if s.velocity.staggered {
		v, _ := NewStaggeredVectorField(len(s.dims), s.dims)
		return v
	}
	v, _ := NewVectorField(len(s.dims), s.dims)
	return v
}
