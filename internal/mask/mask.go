// Package mask loads OWT mask files.
//
// A mask file is an INI file with a [Mask] metadata section, one section
// per supported wafer size ("150mm", "100mm", "50mm") holding the grid
// layout and the named map strings, and a [Devices] section.
package mask

import (
	"sort"

	"github.com/banshee-data/wafermap/internal/centers"
	"github.com/banshee-data/wafermap/internal/mapstring"
	"github.com/banshee-data/wafermap/internal/wafer"
)

// Section and key names used in mask files.
const (
	SectionMask    = "Mask"
	SectionDevices = "Devices"

	KeyCenter = "Mask"
	KeyDieX   = "Die X"
	KeyDieY   = "Die Y"
	KeyFlat   = "Flat"

	KeyRows     = "Rows"
	KeyCols     = "Cols"
	KeyHomeRow  = "Home Row"
	KeyHomeCol  = "Home Col"
	KeyStartRow = "Start Row"
	KeyStartCol = "Start Col"
)

// layoutKeys are the grid scalars in a physical size section. Every other
// key in that section is a map.
var layoutKeys = []string{KeyRows, KeyCols, KeyHomeRow, KeyHomeCol, KeyStartRow, KeyStartCol}

// PhysicalSize is a candidate wafer size section.
type PhysicalSize struct {
	Section  string
	Diameter int // mm
}

// PhysicalSizes lists the supported wafer sizes, largest first. The first
// one present in a mask file is used.
var PhysicalSizes = []PhysicalSize{
	{Section: "150mm", Diameter: 150},
	{Section: "100mm", Diameter: 100},
	{Section: "50mm", Diameter: 50},
}

// Info is the content of the [Mask] section.
type Info struct {
	DieX      float64
	DieY      float64
	Flat      int
	CenterKey string // raw value, quotes included
	Center    centers.Center

	// Properties holds every key of the section, raw.
	Properties map[string]string
}

// PropertyNames returns the [Mask] keys sorted.
func (i Info) PropertyNames() []string {
	return sortedKeys(i.Properties)
}

// Layout is the grid description of the selected physical size section.
type Layout struct {
	Rows     int
	Cols     int
	HomeRow  int
	HomeCol  int
	StartRow int
	StartCol int
}

// Mask is a fully decoded mask file.
type Mask struct {
	Name string
	Path string

	Info   Info
	Size   PhysicalSize
	Layout Layout

	// Maps holds the inclusion set of each map.
	Maps map[string][]mapstring.Coord

	// Devices maps device name to its raw value.
	Devices map[string]string
}

// MapNames returns the map names sorted.
func (m *Mask) MapNames() []string {
	return sortedKeys(m.Maps)
}

// DeviceNames returns the device names sorted.
func (m *Mask) DeviceNames() []string {
	return sortedKeys(m.Devices)
}

// Map returns a copy of the inclusion set of the named map.
func (m *Mask) Map(name string) ([]mapstring.Coord, bool) {
	coords, ok := m.Maps[name]
	if !ok {
		return nil, false
	}
	out := make([]mapstring.Coord, len(coords))
	copy(out, coords)
	return out, true
}

// Geometry returns the wafer geometry described by the mask.
func (m *Mask) Geometry() wafer.Geometry {
	return wafer.NewGeometry(
		wafer.Pitch{X: m.Info.DieX, Y: m.Info.DieY},
		m.Info.Center,
		m.Size.Diameter,
		m.Info.Flat,
	)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
