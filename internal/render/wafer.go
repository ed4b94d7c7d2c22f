// Package render draws a selection as wafer and histogram plots (gonum/plot)
// and as an interactive HTML page (go-echarts).
package render

import (
	"fmt"
	"image/color"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/banshee-data/wafermap/internal/viewmodel"
	"github.com/banshee-data/wafermap/internal/wafer"
)

// WaferOptions toggles the wafer plot overlays.
type WaferOptions struct {
	Outline       bool // wafer edge circle
	EdgeExclusion bool // dashed ring inside the edge
	FlatExclusion bool // dashed chord above the flat
	Crosshairs    bool
	Legend        bool

	DieColor color.Color // nil draws dies in the default blue
}

// DefaultWaferOptions enables every overlay.
func DefaultWaferOptions() WaferOptions {
	return WaferOptions{Outline: true, EdgeExclusion: true, FlatExclusion: true, Crosshairs: true, Legend: true}
}

var (
	dieColor       = color.RGBA{R: 31, G: 119, B: 180, A: 255}
	outlineColor   = color.RGBA{A: 255}
	exclusionColor = color.RGBA{R: 214, G: 39, B: 40, A: 255}
	crossColor     = color.RGBA{R: 127, G: 127, B: 127, A: 255}
)

// dieFill is the fraction of the pitch a die square covers, leaving a
// visible street between neighbours.
const dieFill = 0.9

// outlineSegments is the number of segments used to draw circles.
const outlineSegments = 360

// WaferPlot draws the dies of sel in mm about the wafer centre.
func WaferPlot(sel *viewmodel.Selection, o WaferOptions) (*plot.Plot, error) {
	g := sel.Geometry

	p := plot.New()
	p.Title.Text = fmt.Sprintf("%s: %s (%d die)", sel.Mask.Name, sel.Map, sel.DieCount)
	p.X.Label.Text = "X (mm)"
	p.Y.Label.Text = "Y (mm)"

	type legendEntry struct {
		label string
		thumb plot.Thumbnailer
	}
	var legend []legendEntry

	if len(sel.Dies) > 0 {
		dies, err := dieSquares(g, sel.Dies, o.DieColor)
		if err != nil {
			return nil, fmt.Errorf("die polygons: %w", err)
		}
		p.Add(dies)
		legend = append(legend, legendEntry{fmt.Sprintf("%s (%d)", wafer.LabelEvery, sel.DieCount), dies})
	}

	r := g.Radius()
	if o.Outline {
		outline, err := circle(r, outlineColor, false)
		if err != nil {
			return nil, err
		}
		p.Add(outline)
		legend = append(legend, legendEntry{fmt.Sprintf("%d mm wafer", g.Diameter), outline})
	}
	if o.EdgeExclusion && g.EdgeExclusion > 0 && g.EdgeExclusion < r {
		ring, err := circle(r-g.EdgeExclusion, exclusionColor, true)
		if err != nil {
			return nil, err
		}
		p.Add(ring)
		legend = append(legend, legendEntry{fmt.Sprintf("%.1f mm edge exclusion", g.EdgeExclusion), ring})
	}
	if y, half, ok := FlatChord(g); o.FlatExclusion && ok {
		flat, err := segment(-half, y, half, y)
		if err != nil {
			return nil, err
		}
		flat.Color = exclusionColor
		flat.Width = vg.Points(1)
		flat.Dashes = []vg.Length{vg.Points(4), vg.Points(3)}
		p.Add(flat)
		legend = append(legend, legendEntry{fmt.Sprintf("%.1f mm flat exclusion", g.FlatExclusion), flat})
	}
	if o.Crosshairs {
		h, err := segment(-r, 0, r, 0)
		if err != nil {
			return nil, err
		}
		v, err := segment(0, -r, 0, r)
		if err != nil {
			return nil, err
		}
		p.Add(h, v)
	}

	pad := r * 1.05
	if pad == 0 {
		pad = 1
	}
	p.X.Min, p.X.Max = -pad, pad
	p.Y.Min, p.Y.Max = -pad, pad

	if o.Legend {
		for _, e := range legend {
			p.Legend.Add(e.label, e.thumb)
		}
		p.Legend.Top = true
		p.Legend.Left = false
		p.Legend.XOffs = -10
		p.Legend.YOffs = -10
	}
	return p, nil
}

// FlatChord returns the flat exclusion line of g: a horizontal chord
// FlatExclusion mm above the bottom of the wafer, at height y and spanning
// -half..half. The flat is always drawn at the bottom; the mask's flat code
// is not an orientation. ok is false when there is nothing to draw.
func FlatChord(g wafer.Geometry) (y, half float64, ok bool) {
	r := g.Radius()
	if g.FlatExclusion <= 0 || g.FlatExclusion >= r {
		return 0, 0, false
	}
	y = -(r - g.FlatExclusion)
	return y, math.Sqrt(r*r - y*y), true
}

// dieSquares builds one polygon with a ring per die.
func dieSquares(g wafer.Geometry, dies []wafer.DieRecord, c color.Color) (*plotter.Polygon, error) {
	hw := g.Pitch.X * dieFill / 2
	hh := g.Pitch.Y * dieFill / 2

	rings := make([]plotter.XYer, len(dies))
	for i, d := range dies {
		x, y := g.Offset(d)
		rings[i] = plotter.XYs{
			{X: x - hw, Y: y - hh},
			{X: x + hw, Y: y - hh},
			{X: x + hw, Y: y + hh},
			{X: x - hw, Y: y + hh},
		}
	}

	poly, err := plotter.NewPolygon(rings...)
	if err != nil {
		return nil, err
	}
	poly.Color = dieColor
	if c != nil {
		poly.Color = c
	}
	poly.LineStyle.Width = 0
	return poly, nil
}

func circle(radius float64, c color.Color, dashed bool) (*plotter.Line, error) {
	pts := make(plotter.XYs, outlineSegments+1)
	for i := range pts {
		theta := 2 * math.Pi * float64(i) / outlineSegments
		pts[i] = plotter.XY{X: radius * math.Cos(theta), Y: radius * math.Sin(theta)}
	}
	line, err := plotter.NewLine(pts)
	if err != nil {
		return nil, fmt.Errorf("circle r=%g: %w", radius, err)
	}
	line.Color = c
	line.Width = vg.Points(1)
	if dashed {
		line.Dashes = []vg.Length{vg.Points(4), vg.Points(3)}
	}
	return line, nil
}

func segment(x0, y0, x1, y1 float64) (*plotter.Line, error) {
	line, err := plotter.NewLine(plotter.XYs{{X: x0, Y: y0}, {X: x1, Y: y1}})
	if err != nil {
		return nil, err
	}
	line.Color = crossColor
	line.Width = vg.Points(0.5)
	return line, nil
}
