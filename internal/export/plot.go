package export

import (
	"bufio"
	"fmt"
	"image/color"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"github.com/san-kum/physlab/internal/dynamo"
	"github.com/san-kum/physlab/internal/regression"
)

const (
	plotWidth  = 8 * vg.Inch
	plotHeight = 6 * vg.Inch
	plotDPI    = 150
)

var (
	sampleColor = color.RGBA{R: 0x1f, G: 0x77, B: 0xb4, A: 0xff}
	fitColor    = color.RGBA{R: 0xd6, G: 0x27, B: 0x28, A: 0xff}
	dotColor    = color.RGBA{R: 0xff, G: 0x7f, B: 0x0e, A: 0xff}
)

func stylePlot(p *plot.Plot) {
	p.Title.TextStyle.Font.Size = vg.Points(16)
	p.Title.Padding = vg.Points(8)
	p.X.Label.Padding = vg.Points(6)
	p.Y.Label.Padding = vg.Points(6)
	p.Add(plotter.NewGrid())
}

func xyOf(points []dynamo.Vec) plotter.XYs {
	xys := make(plotter.XYs, len(points))
	for i, pt := range points {
		xys[i].X = pt.X
		xys[i].Y = pt.Y
	}
	return xys
}

// FitPlot scatters the samples and overlays the fitted line across their x range.
func FitPlot(set *regression.SampleSet, fit regression.Result, title string) (*plot.Plot, error) {
	samples := set.Samples()
	if len(samples) == 0 {
		return nil, fmt.Errorf("%w: nothing to plot", dynamo.ErrInsufficientData)
	}

	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = set.XLabel
	p.Y.Label.Text = set.YLabel
	stylePlot(p)

	pts := make(plotter.XYs, len(samples))
	for i, s := range samples {
		pts[i].X, pts[i].Y = s.X, s.Y
	}
	scatter, err := plotter.NewScatter(pts)
	if err != nil {
		return nil, err
	}
	scatter.GlyphStyle.Color = sampleColor
	scatter.GlyphStyle.Radius = vg.Points(4)
	scatter.GlyphStyle.Shape = draw.CircleGlyph{}

	// samples are sorted by x
	lo, hi := samples[0].X, samples[len(samples)-1].X
	line, err := plotter.NewLine(plotter.XYs{{X: lo, Y: fit.At(lo)}, {X: hi, Y: fit.At(hi)}})
	if err != nil {
		return nil, err
	}
	line.LineStyle.Color = fitColor
	line.LineStyle.Width = vg.Points(2)

	p.Add(scatter, line)
	p.Legend.Add("samples", scatter)
	p.Legend.Add(fit.String(), line)
	p.Legend.Top = true
	return p, nil
}

// TrajectoryPlot draws a path (for example a prediction) and the spark dots
// recorded along a flight, in table coordinates with y pointing down the slope.
func TrajectoryPlot(path, dots []dynamo.Vec, width, height float64, title string) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "x (cm)"
	p.Y.Label.Text = "y (cm)"
	p.X.Min, p.X.Max = 0, width
	p.Y.Min, p.Y.Max = 0, height
	stylePlot(p)

	if len(path) > 1 {
		line, err := plotter.NewLine(xyOf(path))
		if err != nil {
			return nil, err
		}
		line.LineStyle.Width = vg.Points(1.5)
		line.LineStyle.Dashes = []vg.Length{vg.Points(4), vg.Points(3)}
		p.Add(line)
		p.Legend.Add("prediction", line)
	}
	if len(dots) > 0 {
		scatter, err := plotter.NewScatter(xyOf(dots))
		if err != nil {
			return nil, err
		}
		scatter.GlyphStyle.Color = dotColor
		scatter.GlyphStyle.Radius = vg.Points(2.5)
		p.Add(scatter)
		p.Legend.Add("sparks", scatter)
	}
	return p, nil
}

// SavePlot writes p to filename; the extension picks the format. PNG goes
// through a fixed-DPI canvas, anything else through plot.Save.
func SavePlot(p *plot.Plot, filename string) error {
	if err := os.MkdirAll(filepath.Dir(filename), 0o755); err != nil {
		return fmt.Errorf("cannot create directory: %w", err)
	}
	if !strings.EqualFold(filepath.Ext(filename), ".png") {
		return p.Save(plotWidth, plotHeight, filename)
	}

	c := vgimg.NewWith(
		vgimg.UseWH(plotWidth, plotHeight),
		vgimg.UseDPI(plotDPI),
	)
	p.Draw(draw.New(c))

	f, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("cannot create png: %w", err)
	}
	defer f.Close()

	bw := bufio.NewWriter(f)
	if _, err := (vgimg.PngCanvas{Canvas: c}).WriteTo(bw); err != nil {
		return fmt.Errorf("cannot write png: %w", err)
	}
	return bw.Flush()
}

// WriteSVG renders p as SVG to w.
func WriteSVG(w io.Writer, p *plot.Plot) error {
	wt, err := p.WriterTo(plotWidth, plotHeight, "svg")
	if err != nil {
		return err
	}
	_, err = wt.WriteTo(w)
	return err
}
