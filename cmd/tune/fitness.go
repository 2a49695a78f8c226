package main

import (
	"math"
	"slices"
	"sync"

	"gonum.org/v1/gonum/stat"

	"github.com/pthm-cable/stablefluids/config"
	"github.com/pthm-cable/stablefluids/fluid"
	"github.com/pthm-cable/stablefluids/game"
	"github.com/pthm-cable/stablefluids/telemetry"
)

// Targets is what a tuned run should look like after the configured steps.
type Targets struct {
	Spread float64 // RMS dye distance from its centroid, in domain lengths
	Energy float64 // Kinetic energy (0 = ignore)
}

// FitnessEvaluator runs headless simulations and scores them against Targets.
type FitnessEvaluator struct {
	params     *ParamVector
	steps      int32
	seeds      []int64
	baseConfig *config.Config
	targets    Targets

	mu       sync.Mutex
	lastRun  runResult
	failures int
}

// NewFitnessEvaluator creates a new evaluator.
func NewFitnessEvaluator(params *ParamVector, steps int32, seeds []int64, baseCfg *config.Config, targets Targets) *FitnessEvaluator {
	return &FitnessEvaluator{
		params:     params,
		steps:      steps,
		seeds:      seeds,
		baseConfig: baseCfg,
		targets:    targets,
	}
}

// runResult holds the measurements from one simulation.
type runResult struct {
	spread float64
	energy float64
	ok     bool
}

// LastRun returns the seed-averaged spread and energy of the most recent
// evaluation.
func (fe *FitnessEvaluator) LastRun() (spread, energy float64) {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return fe.lastRun.spread, fe.lastRun.energy
}

// Failures returns how many runs failed to start.
func (fe *FitnessEvaluator) Failures() int {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return fe.failures
}

// failedFitness is returned for runs that could not be simulated.
const failedFitness = 1e6

// Evaluate scores a raw parameter vector (lower = better).
func (fe *FitnessEvaluator) Evaluate(x []float64) float64 {
	results := make([]runResult, len(fe.seeds))
	var wg sync.WaitGroup

	for i, seed := range fe.seeds {
		wg.Add(1)
		go func(idx int, s int64) {
			defer wg.Done()
			results[idx] = fe.runSimulation(x, s)
		}(i, seed)
	}
	wg.Wait()

	var avg runResult
	failed := 0
	for _, r := range results {
		if !r.ok {
			failed++
			continue
		}
		avg.spread += r.spread
		avg.energy += r.energy
	}

	fe.mu.Lock()
	defer fe.mu.Unlock()
	fe.failures += failed
	if failed == len(results) {
		return failedFitness
	}
	n := float64(len(results) - failed)
	avg.spread /= n
	avg.energy /= n
	avg.ok = true
	fe.lastRun = avg

	return fe.computeFitness(avg)
}

// runSimulation executes a single headless run for steps ticks.
func (fe *FitnessEvaluator) runSimulation(x []float64, seed int64) runResult {
	cfg := fe.copyConfig()
	fe.params.ApplyToConfig(cfg, x)
	// Each seed runs in its own goroutine already.
	cfg.Physics.Workers = 1

	var last telemetry.WindowStats
	g, err := game.NewGameWithOptions(game.Options{
		Config:         cfg,
		Seed:           seed,
		Headless:       true,
		StepsPerUpdate: 1,
	})
	if err != nil {
		return runResult{}
	}
	defer g.Unload()
	g.SetStatsCallback(func(s telemetry.WindowStats) { last = s })

	for g.Tick() < fe.steps {
		g.UpdateHeadless()
	}

	sys := g.System()
	energy := last.KineticEnergy
	if last.WindowEndTick != g.Tick() {
		energy = telemetry.SampleFlow(sys, nil).KineticEnergy
	}
	return runResult{
		spread: DyeSpread(sys.Density(), float64(sys.Spacing())),
		energy: energy,
		ok:     true,
	}
}

// copyConfig returns an independent copy of the base config.
func (fe *FitnessEvaluator) copyConfig() *config.Config {
	cfg := *fe.baseConfig
	cfg.Grid.Dims = slices.Clone(fe.baseConfig.Grid.Dims)
	return &cfg
}

// computeFitness is the sum of squared relative errors against the targets.
func (fe *FitnessEvaluator) computeFitness(r runResult) float64 {
	fitness := relErr2(r.spread, fe.targets.Spread)
	if fe.targets.Energy > 0 {
		fitness += relErr2(r.energy, fe.targets.Energy)
	}
	return fitness
}

func relErr2(got, want float64) float64 {
	if want == 0 {
		return got * got
	}
	e := (got - want) / want
	return e * e
}

// DyeSpread returns the dye-weighted RMS distance of interior cells from the
// dye centroid, with cells spacing apart. An empty field has zero spread.
func DyeSpread(density *fluid.VectorField, spacing float64) float64 {
	total := game.DyeTotal(density)
	dims := total.Dims()
	zmax := 1
	if len(dims) == 3 {
		zmax = dims[2]
	}

	n := dims[0] * dims[1] * zmax
	weights := make([]float64, 0, n)
	coords := [3][]float64{}
	for a := range coords {
		coords[a] = make([]float64, 0, n)
	}
	for k := 1; k <= zmax; k++ {
		z := k
		if len(dims) == 2 {
			z = 0
		}
		for j := 1; j <= dims[1]; j++ {
			for i := 1; i <= dims[0]; i++ {
				w := float64(total.At(i, j, z))
				if w <= 0 {
					continue
				}
				weights = append(weights, w)
				coords[0] = append(coords[0], (float64(i)-0.5)*spacing)
				coords[1] = append(coords[1], (float64(j)-0.5)*spacing)
				coords[2] = append(coords[2], (float64(k)-0.5)*spacing)
			}
		}
	}
	if len(weights) == 0 {
		return 0
	}

	d2 := make([]float64, len(weights))
	for a := range coords {
		c := stat.Mean(coords[a], weights)
		for i, v := range coords[a] {
			d2[i] += (v - c) * (v - c)
		}
	}
	return math.Sqrt(stat.Mean(d2, weights))
}
