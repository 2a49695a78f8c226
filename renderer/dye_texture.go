package renderer

import (
	"image/color"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/stablefluids/fluid"
)

// DyeTexture renders the dye field as a bilinear-filtered texture stretched
// over the window.
type DyeTexture struct {
	tex        rl.Texture2D
	texW, texH int
	pixels     []color.RGBA

	screenW, screenH float32
	initialized      bool
}

// NewDyeTexture creates a new dye texture renderer.
func NewDyeTexture(screenW, screenH int32) *DyeTexture {
	return &DyeTexture{
		screenW: float32(screenW),
		screenH: float32(screenH),
	}
}

// Init creates the GPU texture (must be called after raylib window is created).
func (r *DyeTexture) Init(gridW, gridH int) {
	if r.initialized {
		return
	}

	r.texW = gridW
	r.texH = gridH

	img := rl.GenImageColor(gridW, gridH, rl.White)
	r.tex = rl.LoadTextureFromImage(img)
	rl.SetTextureFilter(r.tex, rl.FilterBilinear)
	rl.SetTextureWrap(r.tex, rl.WrapClamp)
	rl.UnloadImage(img)

	r.initialized = true
}

// Resize updates screen dimensions.
func (r *DyeTexture) Resize(w, h float32) {
	r.screenW = w
	r.screenH = h
}

// Update uploads the z slice of density to the GPU texture.
func (r *DyeTexture) Update(density *fluid.VectorField, z int) {
	dims := density.CellDims()
	if !r.initialized {
		r.Init(dims[0], dims[1])
	}
	if dims[0] != r.texW || dims[1] != r.texH {
		return
	}
	r.pixels = DyePixels(density, z, r.pixels)
	rl.UpdateTexture(r.tex, r.pixels)
}

// Draw renders the texture over dst.
func (r *DyeTexture) Draw(dst rl.Rectangle) {
	if !r.initialized {
		return
	}
	src := rl.Rectangle{X: 0, Y: 0, Width: float32(r.texW), Height: float32(r.texH)}
	rl.DrawTexturePro(r.tex, src, dst, rl.Vector2{}, 0, rl.White)
}

// Screen returns the full-window destination rectangle.
func (r *DyeTexture) Screen() rl.Rectangle {
	return rl.Rectangle{X: 0, Y: 0, Width: r.screenW, Height: r.screenH}
}

// Unload frees GPU resources.
func (r *DyeTexture) Unload() {
	if !r.initialized {
		return
	}
	rl.UnloadTexture(r.tex)
	r.initialized = false
}
