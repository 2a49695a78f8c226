package renderer

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette/moreland"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"github.com/pthm-cable/stablefluids/fluid"
)

// FieldGrid exposes the z slice of a Field as a plotter.GridXYZ in physical
// coordinates. Column c and row r map to interior cell (c+1, r+1).
type FieldGrid struct {
	Field   *fluid.Field
	Slice   int // axis-2 coordinate in 3D
	Spacing float64
}

func (g FieldGrid) Dims() (c, r int) { return g.Field.Dim(0), g.Field.Dim(1) }

func (g FieldGrid) Z(c, r int) float64 {
	if g.Field.Rank() == 2 {
		return float64(g.Field.At(c+1, r+1))
	}
	return float64(g.Field.At(c+1, r+1, g.Slice))
}

func (g FieldGrid) X(c int) float64 { return (float64(c) + 0.5) * g.Spacing }
func (g FieldGrid) Y(r int) float64 { return (float64(r) + 0.5) * g.Spacing }

// SaveHeatmap writes the z slice of f as a PNG heatmap of widthIn x heightIn
// inches.
func SaveHeatmap(f *fluid.Field, z int, spacing float64, title, filename string, widthIn, heightIn float64) error {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "x"
	p.Y.Label.Text = "y"

	g := FieldGrid{Field: f, Slice: z, Spacing: spacing}
	hm := plotter.NewHeatMap(g, moreland.Kindlmann().Palette(255))
	// A flat field gives a zero dynamic range, which the palette scaling
	// cannot index.
	if hm.Max <= hm.Min {
		hm.Max = hm.Min + 1
	}
	p.Add(hm)

	return savePlotPNG(p, widthIn, heightIn, filename)
}

func savePlotPNG(p *plot.Plot, widthIn, heightIn float64, filename string) error {
	if err := os.MkdirAll(filepath.Dir(filename), 0o755); err != nil {
		return fmt.Errorf("creating heatmap dir: %w", err)
	}

	c := vgimg.NewWith(
		vgimg.UseWH(vg.Length(widthIn)*vg.Inch, vg.Length(heightIn)*vg.Inch),
		vgimg.UseDPI(96),
	)
	p.Draw(draw.New(c))

	f, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("creating heatmap png: %w", err)
	}
	defer f.Close()

	bw := bufio.NewWriter(f)
	if _, err := (vgimg.PngCanvas{Canvas: c}).WriteTo(bw); err != nil {
		return fmt.Errorf("writing heatmap png: %w", err)
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("writing heatmap png: %w", err)
	}
	return nil
}
