package render

import (
	"bytes"
	"fmt"
	"image"
	"path/filepath"
	"strings"
	"unicode"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"github.com/banshee-data/wafermap/internal/fsutil"
	"github.com/banshee-data/wafermap/internal/viewmodel"
)

// Output sizes.
const (
	WaferSize       = 6 * vg.Inch
	HistogramWidth  = 6 * vg.Inch
	HistogramHeight = 4 * vg.Inch
)

// Image rasterises p at w×h.
func Image(p *plot.Plot, w, h vg.Length) image.Image {
	c := vgimg.New(w, h)
	p.Draw(draw.New(c))
	return c.Image()
}

// Plots returns the wafer plot followed by the linear and equal-area
// histogram plots.
func Plots(sel *viewmodel.Selection, o WaferOptions) (waferPlot *plot.Plot, hists []*plot.Plot, err error) {
	waferPlot, err = WaferPlot(sel, o)
	if err != nil {
		return nil, nil, fmt.Errorf("wafer plot: %w", err)
	}
	for _, h := range sel.Histograms() {
		hp, err := HistogramPlot(h, viewmodel.RadiusLabel)
		if err != nil {
			return nil, nil, fmt.Errorf("%s plot: %w", h.Spec.Name, err)
		}
		hists = append(hists, hp)
	}
	return waferPlot, hists, nil
}

// WritePNGs saves the wafer and histogram plots of sel under dir and
// returns the written paths.
func WritePNGs(fs fsutil.FileSystem, dir string, sel *viewmodel.Selection, o WaferOptions) ([]string, error) {
	waferPlot, hists, err := Plots(sel, o)
	if err != nil {
		return nil, err
	}
	if err := fs.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}

	base := BaseName(sel)
	var paths []string

	path := filepath.Join(dir, base+"_wafer.png")
	if err := savePNG(fs, path, waferPlot, WaferSize, WaferSize); err != nil {
		return nil, err
	}
	paths = append(paths, path)

	for i, h := range sel.Histograms() {
		path := filepath.Join(dir, fmt.Sprintf("%s_%s.png", base, h.Spec.Name))
		if err := savePNG(fs, path, hists[i], HistogramWidth, HistogramHeight); err != nil {
			return nil, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

func savePNG(fs fsutil.FileSystem, path string, p *plot.Plot, w, h vg.Length) error {
	wt, err := p.WriterTo(w, h, "png")
	if err != nil {
		return fmt.Errorf("render %s: %w", path, err)
	}
	var buf bytes.Buffer
	if _, err := wt.WriteTo(&buf); err != nil {
		return fmt.Errorf("render %s: %w", path, err)
	}
	if err := fs.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// BaseName returns a file name stem for sel, "<mask>_<map>", with anything
// other than letters, digits, '-' and '.' replaced by '_'.
func BaseName(sel *viewmodel.Selection) string {
	return safeName(sel.Mask.Name) + "_" + safeName(sel.Map)
}

func safeName(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-' || r == '.' {
			return r
		}
		return '_'
	}, s)
}
