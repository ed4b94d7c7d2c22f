package render

import (
	"fmt"
	"image/color"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"

	"github.com/banshee-data/wafermap/internal/viewmodel"
)

var histogramFill = color.RGBA{R: 44, G: 160, B: 44, A: 255}

// HistogramPlot draws h with its own, possibly uneven, bin edges.
func HistogramPlot(h viewmodel.Histogram, xlabel string) (*plot.Plot, error) {
	if len(h.Bins) == 0 {
		return nil, fmt.Errorf("histogram %q has no bins", h.Spec.Name)
	}

	bins := make([]plotter.HistogramBin, len(h.Bins))
	for i, b := range h.Bins {
		bins[i] = plotter.HistogramBin{Min: b.Low, Max: b.High, Weight: float64(b.Count)}
	}

	p := plot.New()
	p.Title.Text = fmt.Sprintf("%s (%d die)", h.Spec.Title, h.Total())
	p.X.Label.Text = xlabel
	p.Y.Label.Text = "Count"

	p.Add(&plotter.Histogram{
		Bins:      bins,
		FillColor: histogramFill,
		LineStyle: plotter.DefaultLineStyle,
	})
	p.Add(plotter.NewGrid())

	p.X.Min = h.Bins[0].Low
	p.X.Max = h.Bins[len(h.Bins)-1].High
	p.Y.Min = 0
	return p, nil
}
