package main

import (
	"math"

	"github.com/pthm-cable/stablefluids/config"
)

// ParamSpec is one tunable coefficient. Values are searched as log10 of the
// coefficient; Min, Max and Default are in that space.
type ParamSpec struct {
	Name    string
	Path    string // config key, for reports
	Min     float64
	Max     float64
	Default float64

	field func(*config.Config) *float64
}

// ParamVector is the ordered search space. The optimizer sees each entry
// normalized to [0, 1].
type ParamVector struct {
	Specs []ParamSpec
}

// NewParamVector searches diffusion and viscosity over 1e-8 to 1e-2.
func NewParamVector() *ParamVector {
	return &ParamVector{Specs: []ParamSpec{
		{
			Name: "log10_diffusion", Path: "physics.diffusion", Min: -8, Max: -2, Default: -5,
			field: func(c *config.Config) *float64 { return &c.Physics.Diffusion },
		},
		{
			Name: "log10_viscosity", Path: "physics.viscosity", Min: -8, Max: -2, Default: -5,
			field: func(c *config.Config) *float64 { return &c.Physics.Viscosity },
		},
	}}
}

func (pv *ParamVector) Dim() int { return len(pv.Specs) }

func (pv *ParamVector) DefaultVector() []float64 {
	return pv.each(func(_ int, s ParamSpec) float64 { return s.Default })
}

func (pv *ParamVector) Normalize(raw []float64) []float64 {
	return pv.each(func(i int, s ParamSpec) float64 { return (raw[i] - s.Min) / (s.Max - s.Min) })
}

func (pv *ParamVector) Denormalize(norm []float64) []float64 {
	return pv.each(func(i int, s ParamSpec) float64 { return s.Min + norm[i]*(s.Max-s.Min) })
}

// Clamp limits each value to its spec's bounds.
func (pv *ParamVector) Clamp(v []float64) []float64 {
	return pv.each(func(i int, s ParamSpec) float64 { return max(s.Min, min(s.Max, v[i])) })
}

// ApplyToConfig stores 10^v for each clamped log10 value in cfg.
func (pv *ParamVector) ApplyToConfig(cfg *config.Config, values []float64) {
	for i, v := range pv.Clamp(values) {
		*pv.Specs[i].field(cfg) = pow10(v)
	}
}

// ExtractFromConfig reads cfg's coefficients as clamped log10 values. A
// zero coefficient maps to the lower bound.
func (pv *ParamVector) ExtractFromConfig(cfg *config.Config) []float64 {
	return pv.each(func(_ int, s ParamSpec) float64 {
		return max(s.Min, min(s.Max, toLog(*s.field(cfg), s.Min)))
	})
}

func (pv *ParamVector) each(f func(int, ParamSpec) float64) []float64 {
	out := make([]float64, len(pv.Specs))
	for i, s := range pv.Specs {
		out[i] = f(i, s)
	}
	return out
}

func pow10(v float64) float64 { return math.Pow(10, v) }

func toLog(v, floor float64) float64 {
	if v <= 0 {
		return floor
	}
	return math.Log10(v)
}
