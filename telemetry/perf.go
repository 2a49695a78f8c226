package telemetry

import (
	"log/slog"
	"time"

	"gonum.org/v1/gonum/floats"

	"github.com/pthm-cable/stablefluids/fluid"
)

// Phase names outside the solver step. Solver phases use the fluid.Phase*
// names reported through fluid.Options.OnPhase.
const (
	PhaseInput     = "input"
	PhaseTelemetry = "telemetry"
	PhaseRender    = "render"
)

// StepPhases lists the phases of one tick in execution order.
var StepPhases = []string{
	PhaseInput,
	fluid.PhaseAddVelocity, fluid.PhaseDiffuseVelocity, fluid.PhaseProject,
	fluid.PhaseAdvectVelocity, fluid.PhaseReproject, fluid.PhaseAddDensity,
	fluid.PhaseDiffuseDensity, fluid.PhaseAdvectDensity,
	PhaseTelemetry,
}

// tickTiming is one recorded tick. phases is indexed by the collector's slot
// table and may be shorter than it when slots were added later.
type tickTiming struct {
	total  time.Duration
	phases []time.Duration
}

// PerfCollector keeps a ring of the last N tick timings broken down by
// step phase.
type PerfCollector struct {
	ring  []tickTiming
	next  int
	count int

	slots map[string]int
	names []string

	open      []time.Duration
	tickStart time.Time
	mark      time.Time
	active    int

	lastFrame time.Time
	frame     time.Duration
}

// NewPerfCollector averages over the last window ticks (60 when window < 1).
func NewPerfCollector(window int) *PerfCollector {
	if window < 1 {
		window = 60
	}
	p := &PerfCollector{
		ring:   make([]tickTiming, window),
		slots:  make(map[string]int, len(StepPhases)),
		active: -1,
	}
	for _, name := range StepPhases {
		p.slot(name)
	}
	return p
}

func (p *PerfCollector) slot(name string) int {
	if i, ok := p.slots[name]; ok {
		return i
	}
	i := len(p.names)
	p.slots[name] = i
	p.names = append(p.names, name)
	return i
}

// StartTick begins timing a new simulation tick.
func (p *PerfCollector) StartTick() {
	p.tickStart = time.Now()
	p.mark = p.tickStart
	p.active = -1
	p.open = make([]time.Duration, len(p.names))
}

// StartPhase closes the running phase, if any, and opens phase. It matches
// the fluid.Options.OnPhase signature.
func (p *PerfCollector) StartPhase(phase string) {
	now := time.Now()
	p.closeActive(now)
	p.active = p.slot(phase)
	for len(p.open) <= p.active {
		p.open = append(p.open, 0)
	}
}

func (p *PerfCollector) closeActive(now time.Time) {
	if p.active >= 0 {
		p.open[p.active] += now.Sub(p.mark)
	}
	p.mark = now
}

// EndTick closes the last phase and pushes the tick into the ring.
func (p *PerfCollector) EndTick() {
	now := time.Now()
	p.closeActive(now)
	p.active = -1

	p.ring[p.next] = tickTiming{total: now.Sub(p.tickStart), phases: p.open}
	p.open = nil
	p.next = (p.next + 1) % len(p.ring)
	p.count = min(p.count+1, len(p.ring))
}

// RecordFrame measures the interval since the previous call.
func (p *PerfCollector) RecordFrame() {
	now := time.Now()
	if !p.lastFrame.IsZero() {
		p.frame = now.Sub(p.lastFrame)
	}
	p.lastFrame = now
}

// PerfStats is the window average of tick and phase timings.
type PerfStats struct {
	AvgTickDuration time.Duration
	MinTickDuration time.Duration
	MaxTickDuration time.Duration

	// Keyed by phase name. PhasePct is relative to AvgTickDuration.
	PhaseAvg map[string]time.Duration
	PhasePct map[string]float64

	TicksPerSecond float64

	FrameDuration time.Duration
	FPS           float64
}

// Stats aggregates the ticks currently in the ring.
func (p *PerfCollector) Stats() PerfStats {
	out := PerfStats{
		PhaseAvg:      make(map[string]time.Duration),
		PhasePct:      make(map[string]float64),
		FrameDuration: p.frame,
	}
	if p.frame > 0 {
		out.FPS = float64(time.Second) / float64(p.frame)
	}
	if p.count == 0 {
		return out
	}

	totals := make([]float64, p.count)
	sums := make([]float64, len(p.names))
	for i, tt := range p.ring[:p.count] {
		totals[i] = float64(tt.total)
		for s, d := range tt.phases {
			sums[s] += float64(d)
		}
	}

	n := float64(p.count)
	avg := floats.Sum(totals) / n
	out.AvgTickDuration = time.Duration(avg)
	out.MinTickDuration = time.Duration(floats.Min(totals))
	out.MaxTickDuration = time.Duration(floats.Max(totals))
	if avg > 0 {
		out.TicksPerSecond = float64(time.Second) / avg
	}

	for s, sum := range sums {
		if sum == 0 {
			continue
		}
		name := p.names[s]
		out.PhaseAvg[name] = time.Duration(sum / n)
		if avg > 0 {
			out.PhasePct[name] = sum / n / avg * 100
		}
	}
	return out
}

// LogStats logs the stats at info level.
func (s PerfStats) LogStats() {
	slog.Info("perf", "stats", s)
}

// LogValue implements slog.LogValuer. Phases under 0.1% are left out.
func (s PerfStats) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.Int64("avg_tick_us", s.AvgTickDuration.Microseconds()),
		slog.Int64("min_tick_us", s.MinTickDuration.Microseconds()),
		slog.Int64("max_tick_us", s.MaxTickDuration.Microseconds()),
		slog.Float64("ticks_per_sec", s.TicksPerSecond),
	}
	if s.FPS > 0 {
		attrs = append(attrs, slog.Float64("fps", s.FPS))
	}
	for _, phase := range StepPhases {
		if pct := s.PhasePct[phase]; pct > 0.1 {
			attrs = append(attrs, slog.Float64(phase+"_pct", pct))
		}
	}
	return slog.GroupValue(attrs...)
}

// PerfStatsCSV is one perf.csv row.
type PerfStatsCSV struct {
	WindowEnd          int32   `csv:"window_end"`
	AvgTickUS          int64   `csv:"avg_tick_us"`
	MinTickUS          int64   `csv:"min_tick_us"`
	MaxTickUS          int64   `csv:"max_tick_us"`
	TicksPerSec        float64 `csv:"ticks_per_sec"`
	FPS                float64 `csv:"fps"`
	InputPct           float64 `csv:"input_pct"`
	AddVelocityPct     float64 `csv:"add_velocity_pct"`
	DiffuseVelocityPct float64 `csv:"diffuse_velocity_pct"`
	ProjectPct         float64 `csv:"project_pct"`
	AdvectVelocityPct  float64 `csv:"advect_velocity_pct"`
	ReprojectPct       float64 `csv:"reproject_pct"`
	AddDensityPct      float64 `csv:"add_density_pct"`
	DiffuseDensityPct  float64 `csv:"diffuse_density_pct"`
	AdvectDensityPct   float64 `csv:"advect_density_pct"`
	TelemetryPct       float64 `csv:"telemetry_pct"`
}

// ToCSV flattens the stats for the window ending at windowEnd.
func (s PerfStats) ToCSV(windowEnd int32) PerfStatsCSV {
	pct := s.PhasePct
	return PerfStatsCSV{
		WindowEnd:          windowEnd,
		AvgTickUS:          s.AvgTickDuration.Microseconds(),
		MinTickUS:          s.MinTickDuration.Microseconds(),
		MaxTickUS:          s.MaxTickDuration.Microseconds(),
		TicksPerSec:        s.TicksPerSecond,
		FPS:                s.FPS,
		InputPct:           pct[PhaseInput],
		AddVelocityPct:     pct[fluid.PhaseAddVelocity],
		DiffuseVelocityPct: pct[fluid.PhaseDiffuseVelocity],
		ProjectPct:         pct[fluid.PhaseProject],
		AdvectVelocityPct:  pct[fluid.PhaseAdvectVelocity],
		ReprojectPct:       pct[fluid.PhaseReproject],
		AddDensityPct:      pct[fluid.PhaseAddDensity],
		DiffuseDensityPct:  pct[fluid.PhaseDiffuseDensity],
		AdvectDensityPct:   pct[fluid.PhaseAdvectDensity],
		TelemetryPct:       pct[PhaseTelemetry],
	}
}
