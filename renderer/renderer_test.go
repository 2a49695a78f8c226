package renderer

import (
	"image/color"
	"image/gif"
	"os"
	"path/filepath"
	"testing"

	"github.com/pthm-cable/stablefluids/fluid"
)

func TestCMYToRGBA(t *testing.T) {
	tests := []struct {
		name    string
		c, m, y float32
		want    color.RGBA
	}{
		{"no dye", 0, 0, 0, color.RGBA{255, 255, 255, 255}},
		{"full cyan", 1, 0, 0, color.RGBA{0, 255, 255, 255}},
		{"all dye", 1, 1, 1, color.RGBA{0, 0, 0, 255}},
		{"clamped", 3, -1, 0.5, color.RGBA{0, 255, 127, 255}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CMYToRGBA(tt.c, tt.m, tt.y); got != tt.want {
				t.Errorf("CMYToRGBA(%v, %v, %v) = %v, want %v", tt.c, tt.m, tt.y, got, tt.want)
			}
		})
	}
}

func TestDyePixelsOrientation(t *testing.T) {
	density, _ := fluid.NewVectorField(3, []int{4, 3})
	density.Component(1).Set(1, 1, 3) // top-left cell, magenta

	px := DyePixels(density, 0, nil)
	if len(px) != 12 {
		t.Fatalf("len = %d, want 12", len(px))
	}
	if want := (color.RGBA{255, 0, 255, 255}); px[0] != want {
		t.Errorf("top-left = %v, want %v", px[0], want)
	}
	if want := (color.RGBA{255, 255, 255, 255}); px[8] != want {
		t.Errorf("bottom-left = %v, want %v", px[8], want)
	}

	// Reuses a large enough buffer.
	buf := make([]color.RGBA, 0, 32)
	if out := DyePixels(density, 0, buf); &out[0] != &buf[:1][0] {
		t.Error("DyePixels reallocated a sufficient buffer")
	}
}

func TestDyePixelsSingleChannel(t *testing.T) {
	density, _ := fluid.NewVectorField(1, []int{2, 2, 2})
	density.Component(0).Set(1, 2, 1, 2)

	px := DyePixels(density, 2, nil)
	// (2,1) in the bottom row: index (2-1) + 1*2 = 3
	if want := (color.RGBA{0, 0, 0, 255}); px[3] != want {
		t.Errorf("pixel = %v, want %v", px[3], want)
	}
	if other := DyePixels(density, 1, nil); other[3] != (color.RGBA{255, 255, 255, 255}) {
		t.Errorf("other slice = %v, want white", other[3])
	}
}

func TestIntensity(t *testing.T) {
	density, _ := fluid.NewVectorField(2, []int{2, 2})
	density.Component(0).Set(1, 1, 2)
	density.Component(1).Set(0.5, 1, 2)
	density.Component(0).Set(9, 2, 1)

	got := Intensity(density, 0)
	if got[0] != 0.75 {
		t.Errorf("top-left = %v, want 0.75", got[0])
	}
	if got[3] != 1 {
		t.Errorf("bottom-right = %v, want clamped 1", got[3])
	}
}

func TestSaveHeatmap(t *testing.T) {
	f, _ := fluid.NewField(8, 6)
	f.Set(1, 4, 3)
	path := filepath.Join(t.TempDir(), "maps", "div.png")

	if err := SaveHeatmap(f, 0, 0.125, "divergence", path, 3, 2); err != nil {
		t.Fatalf("SaveHeatmap: %v", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if info.Size() == 0 {
		t.Error("empty png")
	}
}

func TestSaveHeatmapUniformField(t *testing.T) {
	f, _ := fluid.NewField(4, 4)
	path := filepath.Join(t.TempDir(), "flat.png")

	if err := SaveHeatmap(f, 0, 0.25, "flat", path, 2, 2); err != nil {
		t.Fatalf("SaveHeatmap: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("stat: %v", err)
	}
}

func TestFieldGrid(t *testing.T) {
	f, _ := fluid.NewField(3, 2, 2)
	f.Set(7, 3, 2, 2)
	g := FieldGrid{Field: f, Slice: 2, Spacing: 0.5}

	if c, r := g.Dims(); c != 3 || r != 2 {
		t.Errorf("Dims() = %d, %d; want 3, 2", c, r)
	}
	if got := g.Z(2, 1); got != 7 {
		t.Errorf("Z(2, 1) = %v, want 7", got)
	}
	if got := g.X(1); got != 0.75 {
		t.Errorf("X(1) = %v, want 0.75", got)
	}
}

func TestGIFRecorder(t *testing.T) {
	density, _ := fluid.NewVectorField(3, []int{5, 4})
	rec := NewGIFRecorder(2, 5)
	rec.AddFrame(density, 0)
	density.Component(0).Set(1, 3, 2)
	rec.AddFrame(density, 0)

	if rec.Frames() != 2 {
		t.Fatalf("Frames() = %d, want 2", rec.Frames())
	}

	path := filepath.Join(t.TempDir(), "run.gif")
	if err := rec.Save(path); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if rec.Frames() != 0 {
		t.Errorf("Frames() after Save = %d, want 0", rec.Frames())
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	anim, err := gif.DecodeAll(f)
	if err != nil {
		t.Fatalf("DecodeAll: %v", err)
	}
	if len(anim.Image) != 2 {
		t.Errorf("decoded %d frames, want 2", len(anim.Image))
	}
	if b := anim.Image[0].Bounds(); b.Dx() != 10 || b.Dy() != 8 {
		t.Errorf("frame bounds = %v, want 10x8", b)
	}

	if err := rec.Save(path); err == nil {
		t.Error("expected error saving an empty recording")
	}
}
