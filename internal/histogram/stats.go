package histogram

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// SummaryQuantiles are the quantiles reported in the statistics block.
var SummaryQuantiles = []float64{0.05, 0.25, 0.5, 0.75, 0.95}

// Quantile is one entry of Summary.Quantiles.
type Quantile struct {
	P     float64
	Value float64
}

// Summary describes a set of radius samples.
type Summary struct {
	Count     int
	Min       float64
	Max       float64
	Mean      float64
	Quantiles []Quantile
}

// Summarize computes count, extremes, mean and SummaryQuantiles of values.
// NaN samples are ignored. An empty input yields a zero Summary.
func Summarize(values []float64) Summary {
	sorted := make([]float64, 0, len(values))
	for _, v := range values {
		if !math.IsNaN(v) {
			sorted = append(sorted, v)
		}
	}
	if len(sorted) == 0 {
		return Summary{}
	}
	sort.Float64s(sorted)

	s := Summary{
		Count:     len(sorted),
		Min:       sorted[0],
		Max:       sorted[len(sorted)-1],
		Mean:      stat.Mean(sorted, nil),
		Quantiles: make([]Quantile, len(SummaryQuantiles)),
	}
	for i, p := range SummaryQuantiles {
		s.Quantiles[i] = Quantile{P: p, Value: stat.Quantile(p, stat.Empirical, sorted, nil)}
	}
	return s
}
