package render

import (
	"fmt"
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/banshee-data/wafermap/internal/viewmodel"
)

// WriteHTML writes an interactive page with the die scatter and both
// histograms of sel.
func WriteHTML(w io.Writer, sel *viewmodel.Selection) error {
	page := components.NewPage()
	page.PageTitle = fmt.Sprintf("%s %s", sel.Mask.Name, sel.Map)
	page.AddCharts(dieScatter(sel))
	for _, h := range sel.Histograms() {
		page.AddCharts(histogramBar(h))
	}
	if err := page.Render(w); err != nil {
		return fmt.Errorf("render html: %w", err)
	}
	return nil
}

func dieScatter(sel *viewmodel.Selection) *charts.Scatter {
	g := sel.Geometry
	data := make([]opts.ScatterData, 0, len(sel.Dies))
	for i, d := range sel.Dies {
		x, y := g.Offset(d)
		data = append(data, opts.ScatterData{
			Name:  fmt.Sprintf("row %d col %d", d.Y, d.X),
			Value: []interface{}{x, y, sel.Radii[i]},
		})
	}

	pad := g.Radius() * 1.05
	scatter := charts.NewScatter()
	scatter.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: "700px", Height: "700px"}),
		charts.WithTitleOpts(opts.Title{
			Title:    fmt.Sprintf("%s: %s", sel.Mask.Name, sel.Map),
			Subtitle: fmt.Sprintf("%d die, %d mm wafer, pitch %gx%g mm", sel.DieCount, g.Diameter, g.Pitch.X, g.Pitch.Y),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Min: -pad, Max: pad, Name: "X (mm)", NameLocation: "middle", NameGap: 25}),
		charts.WithYAxisOpts(opts.YAxis{Min: -pad, Max: pad, Name: "Y (mm)", NameLocation: "middle", NameGap: 30}),
	)
	scatter.AddSeries(sel.Map, data, charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 6}))
	return scatter
}

func histogramBar(h viewmodel.Histogram) *charts.Bar {
	x := make([]string, len(h.Bins))
	y := make([]opts.BarData, len(h.Bins))
	for i, b := range h.Bins {
		x[i] = fmt.Sprintf("%.1f-%.1f", b.Low, b.High)
		y[i] = opts.BarData{Value: b.Count}
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: "900px", Height: "400px"}),
		charts.WithTitleOpts(opts.Title{Title: h.Spec.Title, Subtitle: fmt.Sprintf("%d die", h.Total())}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Name: viewmodel.RadiusLabel, NameLocation: "middle", NameGap: 30}),
	)
	bar.SetXAxis(x).
		AddSeries(h.Spec.Name, y,
			charts.WithLabelOpts(opts.Label{Show: opts.Bool(true), Position: "top"}),
		)
	return bar
}
