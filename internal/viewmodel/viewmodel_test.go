package viewmodel

import (
	"bytes"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/wafermap/internal/config"
	"github.com/banshee-data/wafermap/internal/fsutil"
	"github.com/banshee-data/wafermap/internal/histogram"
	"github.com/banshee-data/wafermap/internal/mask"
	"github.com/banshee-data/wafermap/internal/monitoring"
	"github.com/banshee-data/wafermap/internal/testutil"
	"github.com/banshee-data/wafermap/internal/wafer"
)

const maskDir = "/masks"

type fixture struct {
	fs  *fsutil.MemoryFileSystem
	vm  *ViewModel
	log *bytes.Buffer
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	mem := fsutil.NewMemoryFileSystem()
	testutil.WriteMask(t, mem, maskDir, "sample", testutil.SampleMask().String())

	var buf bytes.Buffer
	logf := monitoring.New(&buf, "")
	loader := mask.NewLoader(maskDir, mask.Options{FS: mem, Centers: testutil.Registry(), Logf: logf})
	vm, err := New(loader, Options{Logf: logf})
	require.NoError(t, err)
	return &fixture{fs: mem, vm: vm, log: &buf}
}

func TestSelect_Every(t *testing.T) {
	f := newFixture(t)

	sel, err := f.vm.Select("sample", "Every")
	require.NoError(t, err)

	assert.Equal(t, "Every", sel.Map)
	assert.Equal(t, 21, sel.DieCount)
	require.Len(t, sel.Dies, 21)
	require.Len(t, sel.Radii, 21)
	for i, d := range sel.Dies {
		assert.Equal(t, wafer.LabelEvery, d.Label)
		assert.Equal(t, wafer.Radius(d, sel.Geometry.Pitch, sel.Geometry.Center), sel.Radii[i])
	}

	require.Len(t, sel.Linear.Bins, 16)
	counts := make([]int, 3)
	for i := range counts {
		counts[i] = sel.Linear.Bins[i].Count
	}
	assert.Equal(t, []int{3, 12, 6}, counts)
	assert.Equal(t, 21, sel.Linear.Total())

	require.Len(t, sel.EqualArea.Bins, 9)
	assert.Equal(t, 21, sel.EqualArea.Bins[0].Count)
	assert.Equal(t, 21, sel.EqualArea.Total())

	assert.Equal(t, 21, sel.Stats.Count)
	assert.Equal(t, 0.0, sel.Stats.Min)
	assert.InDelta(t, 10.7703, sel.Stats.Max, 1e-4)

	assert.Equal(t, []Histogram{sel.Linear, sel.EqualArea}, sel.Histograms())
}

func TestSelect_Center(t *testing.T) {
	f := newFixture(t)

	sel, err := f.vm.Select("sample", "Center")
	require.NoError(t, err)

	want := []wafer.DieRecord{{X: 3, Y: 3, Label: wafer.LabelEvery}}
	if diff := cmp.Diff(want, sel.Dies); diff != "" {
		t.Errorf("dies mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, []float64{0}, sel.Radii)
	assert.Equal(t, 1, sel.Linear.Bins[0].Count)
	assert.Equal(t, 1, sel.EqualArea.Bins[0].Count)
}

func TestSelect_UnknownMap(t *testing.T) {
	f := newFixture(t)

	sel, err := f.vm.Select("sample", "Nope")
	require.Error(t, err)
	assert.Nil(t, sel)

	var unknown *UnknownMapError
	require.True(t, errors.As(err, &unknown))
	assert.Equal(t, "sample", unknown.Mask)
	assert.Equal(t, "Nope", unknown.Map)
	assert.Equal(t, []string{"Center", "Every"}, unknown.Available)
}

func TestSelect_UnknownMask(t *testing.T) {
	f := newFixture(t)

	_, err := f.vm.Select("absent", "Every")
	var notFound *mask.FileNotFoundError
	assert.True(t, errors.As(err, &notFound))
}

func TestSelect_ReusesUnchangedMask(t *testing.T) {
	f := newFixture(t)

	first, err := f.vm.Select("sample", "Every")
	require.NoError(t, err)
	second, err := f.vm.Select("sample", "Center")
	require.NoError(t, err)

	assert.Same(t, first.Mask, second.Mask)
	assert.Equal(t, "sample", f.vm.Current())
}

func TestSelect_ReloadsChangedMask(t *testing.T) {
	f := newFixture(t)

	first, err := f.vm.Select("sample", "Every")
	require.NoError(t, err)

	changed := testutil.SampleMask().Set("150mm", "Extra", `"1,1; 1,2"`).String()
	testutil.WriteMask(t, f.fs, maskDir, "sample", changed)

	second, err := f.vm.Select("sample", "Every")
	require.NoError(t, err)
	assert.NotSame(t, first.Mask, second.Mask)
	assert.Contains(t, second.Mask.MapNames(), "Extra")
	assert.Contains(t, f.log.String(), "changed on disk")
}

func TestSelect_ReloadsWhenMaskSwitches(t *testing.T) {
	f := newFixture(t)
	other := testutil.SampleMask().Set("Mask", "Die X", "2.5").String()
	testutil.WriteMask(t, f.fs, maskDir, "other", other)

	a, err := f.vm.Select("sample", "Every")
	require.NoError(t, err)
	b, err := f.vm.Select("other", "Every")
	require.NoError(t, err)

	assert.Equal(t, 5.0, a.Geometry.Pitch.X)
	assert.Equal(t, 2.5, b.Geometry.Pitch.X)
	assert.Equal(t, "other", f.vm.Current())
}

func TestSelect_FailedReloadKeepsNothingPartial(t *testing.T) {
	f := newFixture(t)
	_, err := f.vm.Select("sample", "Every")
	require.NoError(t, err)

	broken := testutil.SampleMask().Delete("Mask", "Die X").String()
	testutil.WriteMask(t, f.fs, maskDir, "sample", broken)

	sel, err := f.vm.Select("sample", "Every")
	require.Error(t, err)
	assert.Nil(t, sel)
	var missing *mask.MissingFieldError
	assert.True(t, errors.As(err, &missing))
}

func TestOpen_AlwaysReloads(t *testing.T) {
	f := newFixture(t)

	sum, err := f.vm.Open("sample")
	require.NoError(t, err)
	assert.Equal(t, "sample", sum.Name)
	assert.Equal(t, []string{"Center", "Every"}, sum.Maps)
	assert.Equal(t, []string{"Capacitor", "Diode", "Resistor"}, sum.Devices)
	assert.Equal(t, 150, sum.Geometry.Diameter)
	assert.Equal(t, 5, sum.Layout.Rows)

	sel1, err := f.vm.Select("sample", "Every")
	require.NoError(t, err)
	_, err = f.vm.Open("sample")
	require.NoError(t, err)
	sel2, err := f.vm.Select("sample", "Every")
	require.NoError(t, err)
	assert.NotSame(t, sel1.Mask, sel2.Mask)
}

func TestMaskNames(t *testing.T) {
	f := newFixture(t)
	testutil.WriteMask(t, f.fs, maskDir, "another", testutil.SampleMask().String())

	names, err := f.vm.MaskNames()
	require.NoError(t, err)
	assert.Equal(t, []string{"another", "sample"}, names)
	assert.Equal(t, "", f.vm.Current())
}

func TestNew_RejectsInvalidSpec(t *testing.T) {
	loader := mask.NewLoader(maskDir, mask.Options{FS: fsutil.NewMemoryFileSystem()})
	_, err := New(loader, Options{Linear: histogram.Spec{Name: "bad", Edges: []float64{5, 1}}})
	require.Error(t, err)

	var invalid *histogram.InvalidBinSpecError
	assert.True(t, errors.As(err, &invalid))
}

func TestDefaultSpecs(t *testing.T) {
	linear := DefaultLinearSpec()
	assert.Equal(t, HistogramLinear, linear.Name)
	require.Len(t, linear.Edges, 17)
	assert.Equal(t, 0.0, linear.Edges[0])
	assert.Equal(t, 80.0, linear.Edges[16])

	ea := DefaultEqualAreaSpec()
	assert.Equal(t, histogram.DefaultEqualAreaEdges, ea.Edges)
	ea.Edges[1] = -1
	assert.NotEqual(t, -1.0, histogram.DefaultEqualAreaEdges[1])
}

func TestSpecsFromConfig(t *testing.T) {
	linear, ea, err := SpecsFromConfig(config.Empty())
	require.NoError(t, err)
	assert.Equal(t, DefaultLinearSpec(), linear)
	assert.Equal(t, DefaultEqualAreaSpec(), ea)

	width, count := 10.0, 4
	cfg := &config.Config{LinearBinWidth: &width, EqualAreaBinCount: &count}
	linear, ea, err = SpecsFromConfig(cfg)
	require.NoError(t, err)
	assert.Len(t, linear.Edges, 9)
	assert.Len(t, ea.Edges, 5)
	assert.InDelta(t, histogram.DefaultEqualAreaEdges[4], ea.Edges[4], 1e-3)

	odd := 7.0
	_, _, err = SpecsFromConfig(&config.Config{LinearBinWidth: &odd})
	assert.Error(t, err)
}

func TestNewFromConfig(t *testing.T) {
	mem := fsutil.NewMemoryFileSystem()
	testutil.WriteMask(t, mem, "/srv/masks", "sample", testutil.SampleMask().String())

	dir := "/ignored"
	width := 10.0
	cfg := &config.Config{
		MaskDir:        &dir,
		LinearBinWidth: &width,
		Centers:        map[string][]int{testutil.FixtureCenterKey: {3, 3}},
	}

	vm, err := NewFromConfig(cfg, mem, "/srv/masks", nil)
	require.NoError(t, err)

	sel, err := vm.Select("sample", "Every")
	require.NoError(t, err)
	assert.Len(t, sel.Linear.Bins, 8)
	assert.Equal(t, 15, sel.Linear.Bins[0].Count)
	assert.Equal(t, 6, sel.Linear.Bins[1].Count)
}
