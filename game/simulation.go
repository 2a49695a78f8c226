package game

import (
	"github.com/pthm-cable/stablefluids/telemetry"
	"github.com/pthm-cable/stablefluids/ui"
)

// UpdateHeadless runs stepsPerUpdate steps without graphics.
func (g *Game) UpdateHeadless() {
	if g.paused {
		return
	}
	for i := 0; i < g.stepsPerUpdate; i++ {
		g.simulationStep()
	}
}

// simulationStep advances the fluid by one tick: rasterize sources, step the
// solver, then run telemetry and capture.
func (g *Game) simulationStep() {
	pc := g.perfCollector
	pc.StartTick()

	pc.StartPhase(telemetry.PhaseInput)
	dep := g.manip.Rasterize()
	if dep.Dye > 0 {
		g.collector.RecordInjection(dep.Dye)
	}

	// The solver reports its own phases through OnPhase.
	dt := g.params.DT
	g.sys.Step(g.manip.AddedDensity(), g.manip.AddedVelocity(), dt)
	g.tick++
	g.simTime += float64(dt)

	pc.StartPhase(telemetry.PhaseTelemetry)
	g.flushTelemetry()
	g.capture()

	pc.EndTick()
}

// applyParams pushes UI-edited parameters into the solver.
func (g *Game) applyParams(p ui.Params) {
	if p.Viscosity != g.params.Viscosity {
		g.sys.SetViscosity(float32(p.Viscosity))
	}
	if p.Diffusion != g.params.Diffusion {
		g.sys.SetDiffusion(float32(p.Diffusion))
	}
	if p.DT <= 0 {
		p.DT = g.params.DT
	}
	if p.DT != g.params.DT {
		g.collector.SetDT(p.DT)
	}
	g.params = p
}
