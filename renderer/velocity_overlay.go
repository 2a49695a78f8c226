package renderer

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/stablefluids/fluid"
)

// VelocityOverlay draws the velocity field as a sparse grid of line segments.
type VelocityOverlay struct {
	Stride int     // Cells between samples
	Gain   float32 // Screen pixels per unit of velocity
}

// NewVelocityOverlay creates an overlay sampling every stride cells.
func NewVelocityOverlay(stride int, gain float32) *VelocityOverlay {
	if stride < 1 {
		stride = 1
	}
	return &VelocityOverlay{Stride: stride, Gain: gain}
}

// Draw renders the z slice of vel over dst with additive blending.
func (o *VelocityOverlay) Draw(vel *fluid.VectorField, z int, dst rl.Rectangle) {
	dims := vel.CellDims()
	if len(dims) == 2 {
		z = 0
	}
	cellW := dst.Width / float32(dims[0])
	cellH := dst.Height / float32(dims[1])
	u, v := vel.Component(0), vel.Component(1)

	rl.BeginBlendMode(rl.BlendAdditive)
	for y := 1; y <= dims[1]; y += o.Stride {
		for x := 1; x <= dims[0]; x += o.Stride {
			vx, vy := u.At(x, y, z), v.At(x, y, z)
			if vel.Staggered() {
				vx = 0.5 * (vx + u.At(x+1, y, z))
				vy = 0.5 * (vy + v.At(x, y+1, z))
			}
			if vx == 0 && vy == 0 {
				continue
			}
			sx := dst.X + (float32(x)-0.5)*cellW
			sy := dst.Y + (float32(dims[1]-y)+0.5)*cellH
			end := rl.Vector2{X: sx + vx*o.Gain, Y: sy - vy*o.Gain}
			rl.DrawLineEx(rl.Vector2{X: sx, Y: sy}, end, 1.5, rl.Color{R: 50, G: 100, B: 130, A: 200})
		}
	}
	rl.EndBlendMode()
}
