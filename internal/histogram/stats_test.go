package histogram

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSummarize(t *testing.T) {
	values := []float64{10, 9, 8, 7, 6, 5, 4, 3, 2, 1}

	s := Summarize(values)

	assert.Equal(t, 10, s.Count)
	assert.Equal(t, 1.0, s.Min)
	assert.Equal(t, 10.0, s.Max)
	assert.InDelta(t, 5.5, s.Mean, 1e-12)

	require.Len(t, s.Quantiles, len(SummaryQuantiles))
	want := []float64{1, 3, 5, 8, 10}
	for i, q := range s.Quantiles {
		assert.Equal(t, SummaryQuantiles[i], q.P)
		assert.Equal(t, want[i], q.Value, "p=%g", q.P)
	}

	// Input order is preserved.
	assert.Equal(t, 10.0, values[0])
}

func TestSummarize_Empty(t *testing.T) {
	assert.Equal(t, Summary{}, Summarize(nil))
	assert.Equal(t, Summary{}, Summarize([]float64{math.NaN()}))
}

func TestSummarize_IgnoresNaN(t *testing.T) {
	s := Summarize([]float64{math.NaN(), 2, 4})
	assert.Equal(t, 2, s.Count)
	assert.InDelta(t, 3, s.Mean, 1e-12)
}
