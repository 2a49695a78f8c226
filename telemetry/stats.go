package telemetry

import (
	"log/slog"
	"math"
	"sort"

	"github.com/pthm-cable/stablefluids/fluid"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// WindowStats holds aggregated statistics for a time window.
type WindowStats struct {
	WindowStartTick int32   `csv:"-"`
	WindowEndTick   int32   `csv:"window_end"`
	SimTimeSec      float64 `csv:"sim_time"`

	// Sources during window
	Injections  int     `csv:"injections"`
	DyeInjected float64 `csv:"dye_injected"`

	// Dye totals at window end (first three channels)
	DyeC     float64 `csv:"dye_c"`
	DyeM     float64 `csv:"dye_m"`
	DyeY     float64 `csv:"dye_y"`
	DyeTotal float64 `csv:"dye_total"`

	// Velocity field at window end
	MaxDivergence float64 `csv:"max_div"`
	KineticEnergy float64 `csv:"kinetic_energy"`
	SpeedMax      float64 `csv:"speed_max"`
	SpeedMean     float64 `csv:"speed_mean"`
	SpeedStd      float64 `csv:"speed_std"`
	SpeedP50      float64 `csv:"speed_p50"`
	SpeedP90      float64 `csv:"speed_p90"`
}

// FlowSample is a point-in-time measurement of a System.
type FlowSample struct {
	Dye           []float64 // Interior sum per channel
	MaxDivergence float64
	KineticEnergy float64   // 0.5 * sum |u|^2 * h^rank
	Speeds        []float64 // Cell-centered speed per interior cell
}

// SampleFlow measures the current dye and velocity of s. div is scratch
// space with s's cell dims; a nil div is allocated.
func SampleFlow(s *fluid.System, div *fluid.Field) FlowSample {
	density := s.Density()
	sample := FlowSample{Dye: make([]float64, density.Coords())}
	for c := range sample.Dye {
		sample.Dye[c] = density.Component(c).Sum()
	}

	if div == nil {
		div, _ = fluid.NewField(s.Dims()...)
	}
	s.Divergence(div)
	sample.MaxDivergence = float64(div.MaxAbs())

	sample.Speeds = CellSpeeds(s.Velocity())
	var sumSq float64
	for _, v := range sample.Speeds {
		sumSq += v * v
	}
	cellVolume := math.Pow(float64(s.Spacing()), float64(s.Rank()))
	sample.KineticEnergy = 0.5 * sumSq * cellVolume
	return sample
}

// CellSpeeds returns |u| at every interior cell center, axis 0 fastest.
// Face-stored velocity is averaged across each cell's face pair.
func CellSpeeds(vel *fluid.VectorField) []float64 {
	dims := vel.CellDims()
	zs := []int{0}
	if len(dims) == 3 {
		zs = zs[:0]
		for z := 1; z <= dims[2]; z++ {
			zs = append(zs, z)
		}
	}

	out := make([]float64, 0, len(zs)*dims[0]*dims[1])
	for _, z := range zs {
		for y := 1; y <= dims[1]; y++ {
			for x := 1; x <= dims[0]; x++ {
				var sq float64
				for a := range dims {
					u := vel.Component(a)
					v := float64(u.At(x, y, z))
					if vel.Staggered() {
						next := [3]int{x, y, z}
						next[a]++
						v = 0.5 * (v + float64(u.At(next[0], next[1], next[2])))
					}
					sq += v * v
				}
				out = append(out, math.Sqrt(sq))
			}
		}
	}
	return out
}

// Percentile calculates the p-th percentile of a sorted slice.
// p should be in [0, 1]. Returns 0 if slice is empty.
func Percentile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if p <= 0 {
		return sorted[0]
	}
	if p >= 1 {
		return sorted[n-1]
	}

	// Linear interpolation
	idx := p * float64(n-1)
	lo := int(idx)
	hi := lo + 1
	if hi >= n {
		return sorted[n-1]
	}

	frac := idx - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}

// ComputeSpeedStats calculates max, mean, population std and percentiles.
func ComputeSpeedStats(values []float64) (maxV, mean, std, p50, p90 float64) {
	if len(values) == 0 {
		return 0, 0, 0, 0, 0
	}

	maxV = floats.Max(values)
	mean, std = stat.PopMeanStdDev(values, nil)

	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	p50 = Percentile(sorted, 0.50)
	p90 = Percentile(sorted, 0.90)
	return maxV, mean, std, p50, p90
}

// LogValue implements slog.LogValuer for structured logging.
func (s WindowStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("window_start", int(s.WindowStartTick)),
		slog.Int("window_end", int(s.WindowEndTick)),
		slog.Float64("sim_time", s.SimTimeSec),
		slog.Int("injections", s.Injections),
		slog.Float64("dye_injected", s.DyeInjected),
		slog.Float64("dye_total", s.DyeTotal),
		slog.Float64("max_div", s.MaxDivergence),
		slog.Float64("kinetic_energy", s.KineticEnergy),
		slog.Float64("speed_max", s.SpeedMax),
		slog.Float64("speed_mean", s.SpeedMean),
		slog.Float64("speed_p90", s.SpeedP90),
	)
}

// LogStats logs the window stats using slog.
func (s WindowStats) LogStats() {
	slog.Info("stats",
		"window_end", s.WindowEndTick,
		"sim_time", s.SimTimeSec,
		"injections", s.Injections,
		"dye_injected", s.DyeInjected,
		"dye_c", s.DyeC,
		"dye_m", s.DyeM,
		"dye_y", s.DyeY,
		"dye_total", s.DyeTotal,
		"max_div", s.MaxDivergence,
		"kinetic_energy", s.KineticEnergy,
		"speed_max", s.SpeedMax,
		"speed_mean", s.SpeedMean,
		"speed_std", s.SpeedStd,
		"speed_p50", s.SpeedP50,
		"speed_p90", s.SpeedP90,
	)
}
