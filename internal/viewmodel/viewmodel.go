// Package viewmodel turns a (mask, map) selection into the data the viewer
// and the report writers display: die records, radii, both histograms and
// summary statistics.
//
// A ViewModel is not safe for concurrent use.
package viewmodel

import (
	"fmt"
	"strings"
	"time"

	"github.com/banshee-data/wafermap/internal/config"
	"github.com/banshee-data/wafermap/internal/fsutil"
	"github.com/banshee-data/wafermap/internal/histogram"
	"github.com/banshee-data/wafermap/internal/mask"
	"github.com/banshee-data/wafermap/internal/monitoring"
	"github.com/banshee-data/wafermap/internal/wafer"
)

// Histogram names.
const (
	HistogramLinear    = "linear"
	HistogramEqualArea = "equal_area"
)

// RadiusLabel is the axis label for radial distance.
const RadiusLabel = "Radius (mm)"

// UnknownMapError is returned when a map is not in the selected mask.
type UnknownMapError struct {
	Mask      string
	Map       string
	Available []string
}

func (e *UnknownMapError) Error() string {
	return fmt.Sprintf("mask %s has no map %q (available: %s)", e.Mask, e.Map, strings.Join(e.Available, ", "))
}

// Histogram is one computed histogram.
type Histogram struct {
	Spec histogram.Spec
	Bins []histogram.Bin
}

// Total returns the number of counted dies.
func (h Histogram) Total() int { return histogram.Total(h.Bins) }

// Selection is everything derived from one (mask, map) choice. It is
// rebuilt from scratch on every Select and must not be modified.
type Selection struct {
	Mask      *mask.Mask
	Map       string
	Geometry  wafer.Geometry
	Dies      []wafer.DieRecord
	Radii     []float64 // parallel to Dies
	Linear    Histogram
	EqualArea Histogram
	DieCount  int
	Stats     histogram.Summary
}

// Histograms returns the linear and equal-area histograms in display order.
func (s *Selection) Histograms() []Histogram {
	return []Histogram{s.Linear, s.EqualArea}
}

// MaskSummary describes an opened mask for the map and device lists.
type MaskSummary struct {
	Name     string
	Path     string
	Info     mask.Info
	Size     mask.PhysicalSize
	Layout   mask.Layout
	Geometry wafer.Geometry
	Maps     []string
	Devices  []string
}

// Options configures a ViewModel. Zero Specs take the defaults.
type Options struct {
	Linear    histogram.Spec
	EqualArea histogram.Spec
	Logf      monitoring.Logf
}

// DefaultLinearSpec bins radius every 5 mm from 0 to 80 mm.
func DefaultLinearSpec() histogram.Spec {
	edges, _ := histogram.LinearEdges(0, config.DefaultLinearBinMax, config.DefaultLinearBinWidth)
	return histogram.Spec{Name: HistogramLinear, Title: "Linear", Edges: edges}
}

// DefaultEqualAreaSpec bins radius into rings of 2000 mm².
func DefaultEqualAreaSpec() histogram.Spec {
	edges := make([]float64, len(histogram.DefaultEqualAreaEdges))
	copy(edges, histogram.DefaultEqualAreaEdges)
	return histogram.Spec{Name: HistogramEqualArea, Title: "Equal Area", Edges: edges}
}

// SpecsFromConfig builds both histogram specs from cfg. The default
// equal-area settings yield DefaultEqualAreaEdges exactly.
func SpecsFromConfig(cfg *config.Config) (linear, equalArea histogram.Spec, err error) {
	linear = DefaultLinearSpec()
	linear.Edges, err = histogram.LinearEdges(0, cfg.GetLinearBinMax(), cfg.GetLinearBinWidth())
	if err != nil {
		return histogram.Spec{}, histogram.Spec{}, fmt.Errorf("linear bins: %w", err)
	}

	equalArea = DefaultEqualAreaSpec()
	if cfg.GetEqualAreaBinArea() != config.DefaultEqualAreaBinArea || cfg.GetEqualAreaBinCount() != config.DefaultEqualAreaBins {
		equalArea.Edges, err = histogram.EqualAreaEdges(cfg.GetEqualAreaBinArea(), cfg.GetEqualAreaBinCount())
		if err != nil {
			return histogram.Spec{}, histogram.Spec{}, fmt.Errorf("equal-area bins: %w", err)
		}
	}
	return linear, equalArea, nil
}

type cachedMask struct {
	mask    *mask.Mask
	size    int64
	modTime time.Time
}

// ViewModel answers mask and map selections.
type ViewModel struct {
	loader    *mask.Loader
	linear    histogram.Spec
	equalArea histogram.Spec
	logf      monitoring.Logf

	current *cachedMask
}

// New returns a ViewModel reading masks through loader.
func New(loader *mask.Loader, opts Options) (*ViewModel, error) {
	vm := &ViewModel{
		loader:    loader,
		linear:    opts.Linear,
		equalArea: opts.EqualArea,
		logf:      opts.Logf.OrDiscard(),
	}
	if vm.linear.Edges == nil {
		vm.linear = DefaultLinearSpec()
	}
	if vm.equalArea.Edges == nil {
		vm.equalArea = DefaultEqualAreaSpec()
	}
	if err := vm.linear.Validate(); err != nil {
		return nil, fmt.Errorf("linear histogram: %w", err)
	}
	if err := vm.equalArea.Validate(); err != nil {
		return nil, fmt.Errorf("equal-area histogram: %w", err)
	}
	return vm, nil
}

// NewFromConfig wires a loader and a ViewModel from cfg. maskDir, when not
// empty, overrides the configured mask directory.
func NewFromConfig(cfg *config.Config, fs fsutil.FileSystem, maskDir string, logf monitoring.Logf) (*ViewModel, error) {
	linear, equalArea, err := SpecsFromConfig(cfg)
	if err != nil {
		return nil, err
	}
	if maskDir == "" {
		maskDir = cfg.GetMaskDir()
	}
	logf = logf.OrDiscard()
	loader := mask.NewLoader(maskDir, mask.Options{
		FS:        fs,
		Extension: cfg.GetMaskExtension(),
		Centers:   cfg.CenterRegistry(),
		Logf:      logf.With("mask"),
	})
	return New(loader, Options{Linear: linear, EqualArea: equalArea, Logf: logf.With("view")})
}

// MaskNames lists the available masks, sorted.
func (vm *ViewModel) MaskNames() ([]string, error) {
	return vm.loader.List()
}

// Current returns the name of the loaded mask, or "" if none.
func (vm *ViewModel) Current() string {
	if vm.current == nil {
		return ""
	}
	return vm.current.mask.Name
}

// Open always reloads the named mask from disk and makes it current.
func (vm *ViewModel) Open(name string) (*MaskSummary, error) {
	m, err := vm.reload(name)
	if err != nil {
		return nil, err
	}
	return &MaskSummary{
		Name:     m.Name,
		Path:     m.Path,
		Info:     m.Info,
		Size:     m.Size,
		Layout:   m.Layout,
		Geometry: m.Geometry(),
		Maps:     m.MapNames(),
		Devices:  m.DeviceNames(),
	}, nil
}

// Select computes the selection for mapName in maskName. The current mask
// is reused when its file size and modification time are unchanged;
// otherwise the file is reloaded.
func (vm *ViewModel) Select(maskName, mapName string) (*Selection, error) {
	m, err := vm.mask(maskName)
	if err != nil {
		return nil, err
	}

	coords, ok := m.Map(mapName)
	if !ok {
		return nil, &UnknownMapError{Mask: m.Name, Map: mapName, Available: m.MapNames()}
	}

	geom := m.Geometry()
	dies := wafer.Records(coords, wafer.LabelEvery)
	radii := wafer.Radii(dies, geom.Pitch, geom.Center)

	linear, err := histogram.Compute(radii, vm.linear.Edges)
	if err != nil {
		return nil, fmt.Errorf("%s histogram: %w", vm.linear.Name, err)
	}
	equalArea, err := histogram.Compute(radii, vm.equalArea.Edges)
	if err != nil {
		return nil, fmt.Errorf("%s histogram: %w", vm.equalArea.Name, err)
	}

	sel := &Selection{
		Mask:      m,
		Map:       mapName,
		Geometry:  geom,
		Dies:      dies,
		Radii:     radii,
		Linear:    Histogram{Spec: vm.linear, Bins: linear},
		EqualArea: Histogram{Spec: vm.equalArea, Bins: equalArea},
		DieCount:  len(dies),
		Stats:     histogram.Summarize(radii),
	}
	vm.logf("selected %s/%s: %d dies, max radius %.2f mm", m.Name, mapName, sel.DieCount, sel.Stats.Max)
	return sel, nil
}

func (vm *ViewModel) mask(name string) (*mask.Mask, error) {
	if c := vm.current; c != nil && c.mask.Name == name {
		info, err := vm.loader.Stat(name)
		if err != nil {
			return nil, err
		}
		if info.Size() == c.size && info.ModTime().Equal(c.modTime) {
			return c.mask, nil
		}
		vm.logf("mask %s changed on disk, reloading", name)
	}
	return vm.reload(name)
}

func (vm *ViewModel) reload(name string) (*mask.Mask, error) {
	info, err := vm.loader.Stat(name)
	if err != nil {
		return nil, err
	}
	m, err := vm.loader.Load(name)
	if err != nil {
		return nil, err
	}
	vm.current = &cachedMask{mask: m, size: info.Size(), modTime: info.ModTime()}
	return m, nil
}
