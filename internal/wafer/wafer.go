// Package wafer holds die records and wafer geometry, and converts grid
// positions to physical radial distance.
package wafer

import (
	"math"

	"github.com/banshee-data/wafermap/internal/centers"
	"github.com/banshee-data/wafermap/internal/mapstring"
)

// LabelEvery is the display tag given to every included die.
const LabelEvery = "Every"

// Default exclusion widths in mm, measured inward from the wafer edge and
// from the flat.
const (
	DefaultEdgeExclusion = 4.5
	DefaultFlatExclusion = 4.5
)

// DieRecord is one die to render. X is the grid column and Y the grid row.
type DieRecord struct {
	X     int
	Y     int
	Label string
}

// Pitch is the die step in mm.
type Pitch struct {
	X float64
	Y float64
}

// Geometry describes a wafer for one loaded mask.
type Geometry struct {
	Pitch         Pitch
	Center        centers.Center
	Diameter      int // mm
	Flat          int // flat location code from the mask file
	EdgeExclusion float64
	FlatExclusion float64
}

// NewGeometry returns a Geometry with the default exclusion widths.
func NewGeometry(pitch Pitch, center centers.Center, diameter, flat int) Geometry {
	return Geometry{
		Pitch:         pitch,
		Center:        center,
		Diameter:      diameter,
		Flat:          flat,
		EdgeExclusion: DefaultEdgeExclusion,
		FlatExclusion: DefaultFlatExclusion,
	}
}

// Radius returns the wafer radius in mm.
func (g Geometry) Radius() float64 {
	return float64(g.Diameter) / 2
}

// Offset returns the physical position of rec's centre relative to the
// wafer centre, in mm, with +Y pointing up (grid rows grow downward).
func (g Geometry) Offset(rec DieRecord) (x, y float64) {
	return g.Pitch.X * float64(rec.X-g.Center.X), g.Pitch.Y * float64(g.Center.Y-rec.Y)
}

// Records builds die records from an inclusion set.
func Records(coords []mapstring.Coord, label string) []DieRecord {
	out := make([]DieRecord, len(coords))
	for i, c := range coords {
		out[i] = DieRecord{X: c.Col, Y: c.Row, Label: label}
	}
	return out
}

// Radii returns the distance in mm from center to each record, in input
// order.
func Radii(records []DieRecord, pitch Pitch, center centers.Center) []float64 {
	out := make([]float64, len(records))
	for i, rec := range records {
		out[i] = Radius(rec, pitch, center)
	}
	return out
}

// Radius returns the distance in mm from center to rec.
func Radius(rec DieRecord, pitch Pitch, center centers.Center) float64 {
	dx := pitch.X * float64(center.X-rec.X)
	dy := pitch.Y * float64(center.Y-rec.Y)
	return math.Hypot(dx, dy)
}
