package manipulate

import (
	"fmt"

	"github.com/ojrac/opensimplex-go"
)

// Scene preset names.
const (
	SceneSoap  = "soap"
	SceneJet   = "jet"
	SceneNoise = "noise"
	SceneEmpty = "empty"
)

// SceneOptions parameterizes InitialScene.
type SceneOptions struct {
	Seed int64
	// NoiseScale is the noise frequency in cycles across axis 0.
	NoiseScale float64
}

// Default source strengths, in domain lengths per second.
const (
	soapOutward = 0.5
	soapUpward  = 0.5
	jetSpeed    = 1.0
)

// InitialScene installs the sources of a named preset.
func (m *Manipulator) InitialScene(preset string, opts SceneOptions) error {
	dims := m.sys.Dims()
	cx, cy := float32(dims[0])/2, float32(dims[1])/2
	short := min(dims[0], dims[1])

	switch preset {
	case SceneSoap:
		half := max(short/16, 2)
		m.AddSoapRect(cx, cy, half, half, soapOutward, soapUpward, Constant)
		radius := float32(max(short/4, 2))
		m.AddDyeCircle(cx, cy, radius, 2, 1, 1, 0, 0.5, Additive)
	case SceneJet:
		half := max(short/16, 1)
		x := float32(half + 2)
		m.AddDyeRect(x, cy, half, half, 0, 0, 0, 1, 0, 1, Constant)
		m.AddJet(x, cy, float32(half), jetSpeed, 0, Constant)
	case SceneNoise:
		scale := opts.NoiseScale
		if scale <= 0 {
			scale = 4
		}
		m.SeedNoise(opts.Seed, scale, 1)
	case SceneEmpty:
	default:
		return fmt.Errorf("unknown scene preset %q", preset)
	}
	return nil
}

// SeedNoise fills the live dye with opensimplex noise, one decorrelated
// pattern per channel. Negative noise is cut to zero.
func (m *Manipulator) SeedNoise(seed int64, scale float64, concentration float32) {
	noise := opensimplex.New(seed)
	dims := m.sys.Dims()
	density := m.sys.Density()
	freq := scale / float64(dims[0])
	zs := depths(dims, 0, 0)

	for c := 0; c < density.Coords(); c++ {
		f := density.Component(c)
		offset := float64(c) * 101.7
		for _, z := range zs {
			for y := 1; y <= dims[1]; y++ {
				for x := 1; x <= dims[0]; x++ {
					var n float64
					if len(dims) == 2 {
						n = noise.Eval2(float64(x)*freq+offset, float64(y)*freq)
					} else {
						n = noise.Eval3(float64(x)*freq+offset, float64(y)*freq, float64(z)*freq)
					}
					f.Set(float32(max(n, 0))*concentration, x, y, z)
				}
			}
		}
	}
}
