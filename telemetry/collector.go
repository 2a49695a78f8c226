package telemetry

import (
	"slices"

	"github.com/pthm-cable/stablefluids/fluid"
	"gonum.org/v1/gonum/floats"
)

// Collector accumulates source events within time windows and produces
// WindowStats.
type Collector struct {
	windowDurationSec   float64
	windowDurationTicks int32

	windowStartTick int32
	div             *fluid.Field

	injections  int
	dyeInjected float64
}

// NewCollector creates a new stats collector.
// windowDurationSec: how long each stats window lasts in simulation seconds
// dt: seconds per tick (sets the window length in ticks)
func NewCollector(windowDurationSec float64, dt float32) *Collector {
	c := &Collector{windowDurationSec: windowDurationSec}
	c.SetDT(dt)
	return c
}

// SetDT changes the seconds per tick, so later windows keep their length in
// simulation seconds.
func (c *Collector) SetDT(dt float32) {
	ticksPerWindow := int32(c.windowDurationSec / float64(dt))
	if ticksPerWindow < 1 {
		ticksPerWindow = 1
	}
	c.windowDurationTicks = ticksPerWindow
}

// RecordInjection records one source deposit carrying amount dye.
func (c *Collector) RecordInjection(amount float64) {
	c.injections++
	c.dyeInjected += amount
}

// ShouldFlush returns true if enough ticks have passed to flush the window.
func (c *Collector) ShouldFlush(currentTick int32) bool {
	return currentTick-c.windowStartTick >= c.windowDurationTicks
}

// Flush samples s, produces a WindowStats ending at currentTick and
// simTimeSec, and resets counters for the next window.
func (c *Collector) Flush(currentTick int32, simTimeSec float64, s *fluid.System) WindowStats {
	if c.div == nil || !slices.Equal(c.div.Dims(), s.Dims()) {
		c.div, _ = fluid.NewField(s.Dims()...)
	}
	sample := SampleFlow(s, c.div)
	speedMax, speedMean, speedStd, p50, p90 := ComputeSpeedStats(sample.Speeds)

	stats := WindowStats{
		WindowStartTick: c.windowStartTick,
		WindowEndTick:   currentTick,
		SimTimeSec:      simTimeSec,

		Injections:  c.injections,
		DyeInjected: c.dyeInjected,

		DyeTotal: floats.Sum(sample.Dye),

		MaxDivergence: sample.MaxDivergence,
		KineticEnergy: sample.KineticEnergy,
		SpeedMax:      speedMax,
		SpeedMean:     speedMean,
		SpeedStd:      speedStd,
		SpeedP50:      p50,
		SpeedP90:      p90,
	}
	channels := []*float64{&stats.DyeC, &stats.DyeM, &stats.DyeY}
	for i, v := range sample.Dye {
		if i < len(channels) {
			*channels[i] = v
		}
	}

	// Reset for next window
	c.windowStartTick = currentTick
	c.injections = 0
	c.dyeInjected = 0

	return stats
}

// WindowDurationTicks returns the number of ticks per window.
func (c *Collector) WindowDurationTicks() int32 {
	return c.windowDurationTicks
}
