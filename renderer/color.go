// Package renderer turns fluid fields into pixels: a live raylib texture, a
// velocity overlay, heatmap PNGs and GIF recordings.
package renderer

import (
	"image/color"

	"github.com/pthm-cable/stablefluids/fluid"
)

// CMYToRGBA converts subtractive dye amounts to a display color. Each channel
// is clamped to [0, 1]; full dye absorbs its complementary primary.
func CMYToRGBA(c, m, y float32) color.RGBA {
	return color.RGBA{
		R: uint8(255 * (1 - clamp01(c))),
		G: uint8(255 * (1 - clamp01(m))),
		B: uint8(255 * (1 - clamp01(y))),
		A: 255,
	}
}

func clamp01(v float32) float32 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// DyePixels renders the z slice of density into dst, reallocating it when
// too small. Pixel rows run top to bottom, so interior row dims[1] comes
// first. A single-channel field is drawn as gray; missing channels are 0.
// z is ignored for 2D fields.
func DyePixels(density *fluid.VectorField, z int, dst []color.RGBA) []color.RGBA {
	dims := density.CellDims()
	w, h := dims[0], dims[1]
	if len(dims) == 2 {
		z = 0
	}
	if cap(dst) < w*h {
		dst = make([]color.RGBA, w*h)
	}
	dst = dst[:w*h]

	var chans [3]*fluid.Field
	for c := range chans {
		switch {
		case density.Coords() == 1:
			chans[c] = density.Component(0)
		case c < density.Coords():
			chans[c] = density.Component(c)
		}
	}

	read := func(f *fluid.Field, x, y int) float32 {
		if f == nil {
			return 0
		}
		return f.At(x, y, z)
	}
	for row := 0; row < h; row++ {
		y := h - row
		for x := 1; x <= w; x++ {
			dst[row*w+x-1] = CMYToRGBA(read(chans[0], x, y), read(chans[1], x, y), read(chans[2], x, y))
		}
	}
	return dst
}

// Intensity returns the clamped mean dye amount per interior cell of the z
// slice, in pixel order (top row first).
func Intensity(density *fluid.VectorField, z int) []float32 {
	dims := density.CellDims()
	w, h := dims[0], dims[1]
	if len(dims) == 2 {
		z = 0
	}
	out := make([]float32, w*h)
	inv := 1 / float32(density.Coords())
	for c := 0; c < density.Coords(); c++ {
		f := density.Component(c)
		for row := 0; row < h; row++ {
			y := h - row
			for x := 1; x <= w; x++ {
				out[row*w+x-1] += f.At(x, y, z) * inv
			}
		}
	}
	for i, v := range out {
		out[i] = clamp01(v)
	}
	return out
}
