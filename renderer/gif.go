package renderer

import (
	"fmt"
	"image"
	"image/color"
	"image/gif"
	"os"

	"github.com/mazznoer/colorgrad"

	"github.com/pthm-cable/stablefluids/fluid"
)

// GIFRecorder accumulates dye intensity frames through a Viridis palette.
type GIFRecorder struct {
	anim    gif.GIF
	palette color.Palette
	scale   int
	delay   int
}

// NewGIFRecorder creates a recorder drawing scale pixels per cell with the
// given frame delay in 1/100 s.
func NewGIFRecorder(scale, delay int) *GIFRecorder {
	if scale < 1 {
		scale = 1
	}
	pal := color.Palette{}
	for _, c := range colorgrad.Viridis().Colors(256) {
		pal = append(pal, c)
	}
	return &GIFRecorder{palette: pal, scale: scale, delay: delay}
}

// AddFrame appends the z slice of density as one frame.
func (r *GIFRecorder) AddFrame(density *fluid.VectorField, z int) {
	dims := density.CellDims()
	w, h := dims[0], dims[1]
	vals := Intensity(density, z)

	img := image.NewPaletted(image.Rect(0, 0, w*r.scale, h*r.scale), r.palette)
	for row := 0; row < h; row++ {
		for col := 0; col < w; col++ {
			idx := uint8(vals[row*w+col] * 255)
			for dy := 0; dy < r.scale; dy++ {
				for dx := 0; dx < r.scale; dx++ {
					img.SetColorIndex(col*r.scale+dx, row*r.scale+dy, idx)
				}
			}
		}
	}
	r.anim.Image = append(r.anim.Image, img)
	r.anim.Delay = append(r.anim.Delay, r.delay)
}

// Frames returns the number of recorded frames.
func (r *GIFRecorder) Frames() int { return len(r.anim.Image) }

// Save encodes the recording to path and clears the frame buffer.
func (r *GIFRecorder) Save(path string) error {
	if len(r.anim.Image) == 0 {
		return fmt.Errorf("no frames recorded")
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating gif: %w", err)
	}
	defer f.Close()

	if err := gif.EncodeAll(f, &r.anim); err != nil {
		return fmt.Errorf("encoding gif: %w", err)
	}
	r.anim = gif.GIF{}
	return nil
}
