package sim

import (
	"fmt"
	"image/color"

	"github.com/milosgajdos/go-physim/array"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette/moreland"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// NewTrackPlot creates new 2D plot of a filter run from the three data sources:
// truth:   ground truth positions
// measure: measurement values
// filter:  filter estimates
// The first two columns of every source are plotted as (X, Y).
// It returns error if the plot fails to be created. This can be due to either of the following conditions:
// * either of the supplied data matrices is nil
// * either of the supplied data matrices does not have at least 2 columns
// * gonum plot fails to be created
func NewTrackPlot(truth, measure, filter *mat.Dense) (*plot.Plot, error) {
	if truth == nil || measure == nil || filter == nil {
		return nil, fmt.Errorf("invalid data supplied")
	}

	_, ct := truth.Dims()
	_, cm := measure.Dims()
	_, cf := filter.Dims()

	if ct < 2 || cm < 2 || cf < 2 {
		return nil, fmt.Errorf("invalid data dimensions")
	}

	p := plot.New()

	p.Title.Text = "Track"
	p.X.Label.Text = "X"
	p.Y.Label.Text = "Y"

	legend := plot.NewLegend()
	legend.Top = true
	p.Legend = legend

	for _, s := range []struct {
		name  string
		data  *mat.Dense
		color color.Color
		shape draw.GlyphDrawer
	}{
		{name: "truth", data: truth, color: color.RGBA{R: 255, B: 128, A: 255}, shape: draw.PyramidGlyph{}},
		{name: "measurement", data: measure, color: color.RGBA{G: 255, A: 128}, shape: draw.CircleGlyph{}},
		{name: "filtered", data: filter, color: color.RGBA{R: 169, G: 169, B: 169, A: 255}, shape: draw.CrossGlyph{}},
	} {
		scatter, err := plotter.NewScatter(makePoints(s.data))
		if err != nil {
			return nil, fmt.Errorf("failed to create scatter: %v", err)
		}
		scatter.GlyphStyle.Color = s.color
		scatter.GlyphStyle.Shape = s.shape
		scatter.GlyphStyle.Radius = vg.Points(2)

		p.Add(scatter)
		p.Legend.Add(s.name, scatter)
	}

	return p, nil
}

func makePoints(m *mat.Dense) plotter.XYs {
	r, _ := m.Dims()
	pts := make(plotter.XYs, r)
	for i := 0; i < r; i++ {
		pts[i].X = m.At(i, 0)
		pts[i].Y = m.At(i, 1)
	}

	return pts
}

// NewSeriesPlot creates new line plot of the columns of series against the step index.
// names labels the columns in the legend.
// It returns error if series is nil or names does not match the column count.
func NewSeriesPlot(title string, series *mat.Dense, names ...string) (*plot.Plot, error) {
	if series == nil {
		return nil, fmt.Errorf("invalid data supplied")
	}

	r, c := series.Dims()
	if len(names) != c {
		return nil, fmt.Errorf("invalid series names: %d != %d", len(names), c)
	}

	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "step"

	for j := 0; j < c; j++ {
		pts := make(plotter.XYs, r)
		for i := 0; i < r; i++ {
			pts[i].X = float64(i)
			pts[i].Y = series.At(i, j)
		}

		line, err := plotter.NewLine(pts)
		if err != nil {
			return nil, fmt.Errorf("failed to create line: %v", err)
		}
		line.LineStyle.Color = plotter.DefaultLineStyle.Color
		if j%2 == 1 {
			line.LineStyle.Dashes = []vg.Length{vg.Points(4), vg.Points(2)}
		}

		p.Add(line)
		p.Legend.Add(names[j], line)
	}

	return p, nil
}

// field adapts a rank 2 array to plotter.GridXYZ.
// Axis 0 is plotted along Y and axis 1 along X.
type field struct {
	a *array.Array
}

func (f field) Dims() (c, r int)   { return f.a.Dim(1), f.a.Dim(0) }
func (f field) Z(c, r int) float64 { return f.a.At(r, c) }
func (f field) X(c int) float64    { return float64(c) }
func (f field) Y(r int) float64    { return float64(r) }

// NewFieldPlot creates new heat map plot of a rank 2 field such as a vorticity
// or velocity component. The color scale is symmetric around zero.
// It returns error if a is nil, not rank 2 or empty.
func NewFieldPlot(title string, a *array.Array) (*plot.Plot, error) {
	if a == nil || a.Rank() != 2 || a.Len() == 0 {
		return nil, fmt.Errorf("invalid field supplied")
	}

	m := a.MaxAbs()
	if m == 0 {
		m = 1
	}

	cmap := moreland.SmoothBlueRed()
	cmap.SetMin(-m)
	cmap.SetMax(m)

	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "x"
	p.Y.Label.Text = "y"

	p.Add(plotter.NewHeatMap(field{a: a}, cmap.Palette(255)))

	return p, nil
}

// Save saves p as an image file whose format is deduced from the file extension.
func Save(p *plot.Plot, w, h vg.Length, file string) error {
	return p.Save(w, h, file)
}
