// Package main fits diffusion and viscosity with CMA-ES so that a headless
// run reaches a target dye spread (and optionally kinetic energy).
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/gocarina/gocsv"
	"gonum.org/v1/gonum/optimize"

	"github.com/pthm-cable/stablefluids/config"
)

// evalRow is one tune_log.csv line.
type evalRow struct {
	Eval           int     `csv:"eval"`
	Fitness        float64 `csv:"fitness"`
	Spread         float64 `csv:"spread"`
	Energy         float64 `csv:"energy"`
	Log10Diffusion float64 `csv:"log10_diffusion"`
	Log10Viscosity float64 `csv:"log10_viscosity"`
}

// tracker wraps the objective with logging and best-so-far bookkeeping.
type tracker struct {
	params    *ParamVector
	evaluator *FitnessEvaluator
	maxEvals  int

	out   *os.File
	wrote bool

	evals       int
	bestFitness float64
	best        []float64
	start       time.Time
}

func (tr *tracker) objective(x []float64) float64 {
	raw := tr.params.Clamp(tr.params.Denormalize(x))
	fitness := tr.evaluator.Evaluate(raw)
	tr.evals++
	if tr.best == nil || fitness < tr.bestFitness {
		tr.bestFitness = fitness
		tr.best = raw
	}

	spread, energy := tr.evaluator.LastRun()
	row := []evalRow{{
		Eval: tr.evals, Fitness: fitness, Spread: spread, Energy: energy,
		Log10Diffusion: raw[0], Log10Viscosity: raw[1],
	}}
	var err error
	if tr.wrote {
		err = gocsv.MarshalWithoutHeaders(row, tr.out)
	} else {
		err = gocsv.Marshal(row, tr.out)
		tr.wrote = err == nil
	}
	if err != nil {
		log.Printf("writing tune log: %v", err)
	}

	elapsed := time.Since(tr.start)
	eta := time.Duration(tr.maxEvals-tr.evals) * (elapsed / time.Duration(tr.evals))
	fmt.Printf("Eval %d/%d: spread=%.4f energy=%.3g fitness=%.5f (best=%.5f) | elapsed %s, ETA %s\n",
		tr.evals, tr.maxEvals, spread, energy, fitness, tr.bestFitness,
		elapsed.Round(time.Second), eta.Round(time.Second))
	return fitness
}

func main() {
	configPath := flag.String("config", "", "Base config YAML file (empty = use defaults)")
	steps := flag.Int("steps", 200, "Steps per simulation run")
	seeds := flag.Int("seeds", 1, "Number of seeds per evaluation (matters for the noise scene)")
	maxEvals := flag.Int("max-evals", 60, "Maximum number of evaluations")
	population := flag.Int("population", 0, "CMA-ES population size (0 = auto)")
	targetSpread := flag.Float64("target-spread", 0.2, "Target RMS dye spread in domain lengths")
	targetEnergy := flag.Float64("target-energy", 0, "Target kinetic energy (0 = ignore)")
	outputDir := flag.String("output", "", "Output directory for results")
	flag.Parse()

	switch {
	case *outputDir == "":
		log.Fatal("--output is required")
	case *targetSpread <= 0:
		log.Fatal("--target-spread must be positive")
	}
	if err := os.MkdirAll(*outputDir, 0755); err != nil {
		log.Fatalf("failed to create output directory: %v", err)
	}

	baseCfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	params := NewParamVector()
	evalSeeds := make([]int64, *seeds)
	for i := range evalSeeds {
		evalSeeds[i] = baseCfg.Scene.Seed + int64(i*1000)
	}
	targets := Targets{Spread: *targetSpread, Energy: *targetEnergy}

	logFile, err := os.Create(filepath.Join(*outputDir, "tune_log.csv"))
	if err != nil {
		log.Fatalf("failed to create log file: %v", err)
	}
	defer logFile.Close()

	tr := &tracker{
		params:    params,
		evaluator: NewFitnessEvaluator(params, int32(*steps), evalSeeds, baseCfg, targets),
		maxEvals:  *maxEvals,
		out:       logFile,
		start:     time.Now(),
	}

	popSize := *population
	if popSize == 0 {
		popSize = 4 + 3*params.Dim()/2
	}
	method := &optimize.CmaEsChol{InitStepSize: 0.3, Population: popSize}
	settings := &optimize.Settings{FuncEvaluations: *maxEvals}

	fmt.Printf("CMA-ES over %d parameters, population=%d, max_evals=%d\n", params.Dim(), popSize, *maxEvals)
	fmt.Printf("Grid %v, %d steps per run, target spread %.4f\n", baseCfg.Grid.Dims, *steps, *targetSpread)

	initX := params.Normalize(params.ExtractFromConfig(baseCfg))
	result, err := optimize.Minimize(optimize.Problem{Func: tr.objective}, initX, settings, method)
	if err != nil {
		log.Printf("optimization ended: %v", err)
	}
	best := tr.best
	if best == nil && result != nil {
		best = params.Clamp(params.Denormalize(result.X))
	}
	if best == nil {
		log.Fatal("no evaluations completed")
	}
	if n := tr.evaluator.Failures(); n > 0 {
		log.Printf("%d runs failed to start", n)
	}

	fmt.Printf("\nDone: %d evaluations in %s, best fitness %.6f\n",
		tr.evals, time.Since(tr.start).Round(time.Second), tr.bestFitness)
	for i, spec := range params.Specs {
		fmt.Printf("  %s: %.4f (%s = %.3g)\n", spec.Name, best[i], spec.Path, pow10(best[i]))
	}

	params.ApplyToConfig(baseCfg, best)
	bestPath := filepath.Join(*outputDir, "best_config.yaml")
	if err := baseCfg.WriteYAML(bestPath); err != nil {
		log.Printf("failed to write best config: %v", err)
		return
	}
	fmt.Printf("Best config saved to %s\n", bestPath)
}
