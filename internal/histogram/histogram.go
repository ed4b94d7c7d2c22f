// Package histogram bins radial distances into fixed or equal-area buckets.
//
// Every bin is half-open, [edges[i], edges[i+1]), and the last bin is no
// exception.
// Values below the first edge, at or above the last edge, or NaN are not
// counted, so the counts sum to at most len(values).
package histogram

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Bin is one histogram bucket covering [Low, High).
type Bin struct {
	Low   float64
	High  float64
	Count int
}

// InvalidBinSpecError reports an unusable edge set.
type InvalidBinSpecError struct {
	Edges  []float64
	Reason string
}

func (e *InvalidBinSpecError) Error() string {
	return fmt.Sprintf("invalid bin edges %v: %s", e.Edges, e.Reason)
}

// Spec names an edge set and how to label its plot.
type Spec struct {
	Name  string
	Title string
	Edges []float64
}

// Validate checks that the edge set can be binned.
func (s Spec) Validate() error {
	return ValidateEdges(s.Edges)
}

// DefaultEqualAreaEdges are the radii that split a 150 mm wafer into
// rings of 2000 mm² each.
var DefaultEqualAreaEdges = []float64{
	0, 25.2313, 35.6825, 43.7019,
	50.4627, 56.419, 61.8039,
	66.7558, 71.365, 75.694,
}

// ValidateEdges requires at least two finite, strictly increasing edges.
func ValidateEdges(edges []float64) error {
	if len(edges) < 2 {
		return &InvalidBinSpecError{Edges: edges, Reason: "need at least two edges"}
	}
	for i, e := range edges {
		if math.IsNaN(e) || math.IsInf(e, 0) {
			return &InvalidBinSpecError{Edges: edges, Reason: fmt.Sprintf("edge %d is not finite", i)}
		}
		if i > 0 && e <= edges[i-1] {
			return &InvalidBinSpecError{Edges: edges, Reason: fmt.Sprintf("edge %d (%g) does not increase", i, e)}
		}
	}
	return nil
}

// Compute counts values into the bins defined by edges. The result has
// len(edges)-1 entries.
func Compute(values, edges []float64) ([]Bin, error) {
	if err := ValidateEdges(edges); err != nil {
		return nil, err
	}

	lo, hi := edges[0], edges[len(edges)-1]
	inRange := make([]float64, 0, len(values))
	for _, v := range values {
		if v >= lo && v < hi {
			inRange = append(inRange, v)
		}
	}
	sort.Float64s(inRange)

	counts := stat.Histogram(nil, edges, inRange, nil)

	bins := make([]Bin, len(counts))
	for i, c := range counts {
		bins[i] = Bin{Low: edges[i], High: edges[i+1], Count: int(c)}
	}
	return bins, nil
}

// Total sums the counts of bins.
func Total(bins []Bin) int {
	n := 0
	for _, b := range bins {
		n += b.Count
	}
	return n
}

// LinearEdges returns evenly spaced edges from start to stop inclusive.
// stop-start must be a whole multiple of width.
func LinearEdges(start, stop, width float64) ([]float64, error) {
	if width <= 0 || stop <= start {
		return nil, &InvalidBinSpecError{Reason: fmt.Sprintf("linear edges need width > 0 and stop > start, got start=%g stop=%g width=%g", start, stop, width)}
	}
	steps := (stop - start) / width
	n := math.Round(steps)
	if math.Abs(steps-n) > 1e-9 {
		return nil, &InvalidBinSpecError{Reason: fmt.Sprintf("range %g..%g is not a multiple of %g", start, stop, width)}
	}
	return floats.Span(make([]float64, int(n)+1), start, stop), nil
}

// EqualAreaEdges returns n+1 radii, starting at 0, such that each ring
// between consecutive radii covers area mm².
func EqualAreaEdges(area float64, n int) ([]float64, error) {
	if area <= 0 || n < 1 {
		return nil, &InvalidBinSpecError{Reason: fmt.Sprintf("equal-area edges need area > 0 and n >= 1, got area=%g n=%d", area, n)}
	}
	edges := make([]float64, n+1)
	for k := 1; k <= n; k++ {
		edges[k] = math.Sqrt(float64(k) * area / math.Pi)
	}
	return edges, nil
}
