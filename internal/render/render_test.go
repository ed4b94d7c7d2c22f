package render

import (
	"bytes"
	"image/color"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/wafermap/internal/fsutil"
	"github.com/banshee-data/wafermap/internal/histogram"
	"github.com/banshee-data/wafermap/internal/mask"
	"github.com/banshee-data/wafermap/internal/testutil"
	"github.com/banshee-data/wafermap/internal/viewmodel"
)

var pngMagic = []byte("\x89PNG\r\n\x1a\n")

func sampleSelection(t *testing.T, mapName string) *viewmodel.Selection {
	t.Helper()
	mem := fsutil.NewMemoryFileSystem()
	testutil.WriteMask(t, mem, "/masks", "sample", testutil.SampleMask().String())
	loader := mask.NewLoader("/masks", mask.Options{FS: mem, Centers: testutil.Registry()})
	vm, err := viewmodel.New(loader, viewmodel.Options{})
	require.NoError(t, err)
	sel, err := vm.Select("sample", mapName)
	require.NoError(t, err)
	return sel
}

func TestWaferPlot(t *testing.T) {
	sel := sampleSelection(t, "Every")

	p, err := WaferPlot(sel, DefaultWaferOptions())
	require.NoError(t, err)

	assert.Equal(t, "sample: Every (21 die)", p.Title.Text)
	assert.Equal(t, "X (mm)", p.X.Label.Text)
	assert.InDelta(t, -78.75, p.X.Min, 1e-9)
	assert.InDelta(t, 78.75, p.Y.Max, 1e-9)

	img := Image(p, WaferSize, WaferSize)
	b := img.Bounds()
	assert.Positive(t, b.Dx())
	assert.Equal(t, b.Dx(), b.Dy())
}

func TestWaferPlot_Options(t *testing.T) {
	sel := sampleSelection(t, "Center")

	for _, o := range []WaferOptions{
		{},
		{Outline: true},
		{Crosshairs: true, Legend: true},
		{FlatExclusion: true, Legend: true},
		{DieColor: color.RGBA{R: 200, A: 255}},
		DefaultWaferOptions(),
	} {
		p, err := WaferPlot(sel, o)
		require.NoError(t, err)
		assert.NotNil(t, Image(p, 2*WaferSize/3, 2*WaferSize/3))
	}
}

func TestFlatChord(t *testing.T) {
	sel := sampleSelection(t, "Every")
	g := sel.Geometry

	y, half, ok := FlatChord(g)
	require.True(t, ok)
	assert.InDelta(t, -70.5, y, 1e-9)
	assert.InDelta(t, math.Sqrt(75*75-70.5*70.5), half, 1e-9)

	g.FlatExclusion = 0
	_, _, ok = FlatChord(g)
	assert.False(t, ok)

	g.FlatExclusion = g.Radius()
	_, _, ok = FlatChord(g)
	assert.False(t, ok)
}

func TestHistogramPlot(t *testing.T) {
	sel := sampleSelection(t, "Every")

	p, err := HistogramPlot(sel.EqualArea, viewmodel.RadiusLabel)
	require.NoError(t, err)
	assert.Equal(t, "Equal Area (21 die)", p.Title.Text)
	assert.Equal(t, viewmodel.RadiusLabel, p.X.Label.Text)
	assert.Equal(t, 0.0, p.X.Min)
	assert.InDelta(t, 75.694, p.X.Max, 1e-9)

	assert.NotNil(t, Image(p, HistogramWidth, HistogramHeight))
}

func TestHistogramPlot_NoBins(t *testing.T) {
	_, err := HistogramPlot(viewmodel.Histogram{Spec: histogram.Spec{Name: "empty"}}, "r")
	assert.Error(t, err)
}

func TestWritePNGs(t *testing.T) {
	sel := sampleSelection(t, "Every")
	mem := fsutil.NewMemoryFileSystem()

	paths, err := WritePNGs(mem, "/out", sel, DefaultWaferOptions())
	require.NoError(t, err)
	assert.Equal(t, []string{
		"/out/sample_Every_wafer.png",
		"/out/sample_Every_linear.png",
		"/out/sample_Every_equal_area.png",
	}, paths)

	for _, p := range paths {
		data, err := mem.ReadFile(p)
		require.NoError(t, err)
		assert.True(t, bytes.HasPrefix(data, pngMagic), "%s is not a PNG", p)
	}
}

func TestBaseName(t *testing.T) {
	sel := sampleSelection(t, "Every")
	sel.Map = "Edge / Ring 2"
	assert.Equal(t, "sample_Edge___Ring_2", BaseName(sel))
}

func TestWriteHTML(t *testing.T) {
	sel := sampleSelection(t, "Every")

	var buf bytes.Buffer
	require.NoError(t, WriteHTML(&buf, sel))

	html := buf.String()
	assert.True(t, strings.Contains(html, "echarts"))
	assert.Contains(t, html, "sample: Every")
	assert.Contains(t, html, "Equal Area")
	assert.Contains(t, html, "0.0-5.0")
}
