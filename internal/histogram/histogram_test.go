package histogram

import (
	"errors"
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompute_ExcludesAboveLastEdge(t *testing.T) {
	bins, err := Compute([]float64{2.0, 6.0, 11.0}, []float64{0, 5, 10})
	require.NoError(t, err)

	assert.Equal(t, []Bin{
		{Low: 0, High: 5, Count: 1},
		{Low: 5, High: 10, Count: 1},
	}, bins)
	assert.Equal(t, 2, Total(bins))
}

func TestCompute_HalfOpenBoundaries(t *testing.T) {
	edges := []float64{0, 5, 10}

	tests := []struct {
		name  string
		value float64
		want  []int
	}{
		{"first edge counted", 0, []int{1, 0}},
		{"inner edge goes up", 5, []int{0, 1}},
		{"last edge excluded", 10, []int{0, 0}},
		{"just below last edge", math.Nextafter(10, 0), []int{0, 1}},
		{"below first edge", -0.1, []int{0, 0}},
		{"NaN ignored", math.NaN(), []int{0, 0}},
		{"+Inf ignored", math.Inf(1), []int{0, 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bins, err := Compute([]float64{tt.value}, edges)
			require.NoError(t, err)
			require.Len(t, bins, 2)
			for i, b := range bins {
				assert.Equal(t, tt.want[i], b.Count, "bin %d", i)
			}
		})
	}
}

func TestCompute_Empty(t *testing.T) {
	bins, err := Compute(nil, []float64{0, 1, 2, 3})
	require.NoError(t, err)
	require.Len(t, bins, 3)
	assert.Zero(t, Total(bins))
}

func TestCompute_DoesNotMutateInput(t *testing.T) {
	values := []float64{9, 1, 4}
	_, err := Compute(values, []float64{0, 10})
	require.NoError(t, err)
	assert.Equal(t, []float64{9, 1, 4}, values)
}

func TestCompute_InvalidEdges(t *testing.T) {
	tests := []struct {
		name  string
		edges []float64
	}{
		{"nil", nil},
		{"single edge", []float64{1}},
		{"equal edges", []float64{0, 5, 5}},
		{"decreasing", []float64{10, 5}},
		{"NaN edge", []float64{0, math.NaN()}},
		{"infinite edge", []float64{0, math.Inf(1)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bins, err := Compute([]float64{1}, tt.edges)
			require.Error(t, err)
			assert.Nil(t, bins)

			var ibe *InvalidBinSpecError
			assert.True(t, errors.As(err, &ibe), "expected *InvalidBinSpecError, got %T", err)
		})
	}
}

// TestCompute_Properties checks bin count and count conservation over
// random inputs.
func TestCompute_Properties(t *testing.T) {
	rng := rand.New(rand.NewSource(1))

	for trial := 0; trial < 200; trial++ {
		nEdges := 2 + rng.Intn(10)
		edges := make([]float64, nEdges)
		edges[0] = rng.Float64()*20 - 10
		for i := 1; i < nEdges; i++ {
			edges[i] = edges[i-1] + 0.1 + rng.Float64()*10
		}

		values := make([]float64, rng.Intn(100))
		inRange := 0
		for i := range values {
			values[i] = rng.Float64()*140 - 30
			if values[i] >= edges[0] && values[i] < edges[nEdges-1] {
				inRange++
			}
		}

		bins, err := Compute(values, edges)
		require.NoError(t, err)
		require.Len(t, bins, nEdges-1)

		total := Total(bins)
		assert.LessOrEqual(t, total, len(values))
		assert.Equal(t, inRange, total)
		assert.Equal(t, total == len(values), inRange == len(values))

		for i, b := range bins {
			assert.GreaterOrEqual(t, b.Count, 0)
			assert.Equal(t, edges[i], b.Low)
			assert.Equal(t, edges[i+1], b.High)
		}
	}
}

func TestLinearEdges(t *testing.T) {
	edges, err := LinearEdges(0, 80, 5)
	require.NoError(t, err)
	require.Len(t, edges, 17)
	for i, e := range edges {
		assert.InDelta(t, float64(5*i), e, 1e-9)
	}
	assert.NoError(t, ValidateEdges(edges))
}

func TestLinearEdges_Invalid(t *testing.T) {
	_, err := LinearEdges(0, 80, 0)
	assert.Error(t, err)

	_, err = LinearEdges(10, 0, 5)
	assert.Error(t, err)

	_, err = LinearEdges(0, 81, 5)
	assert.Error(t, err)
}

func TestEqualAreaEdges_MatchesDefault(t *testing.T) {
	edges, err := EqualAreaEdges(2000, 9)
	require.NoError(t, err)
	require.Len(t, edges, len(DefaultEqualAreaEdges))

	for i := range edges {
		assert.InDelta(t, DefaultEqualAreaEdges[i], edges[i], 1e-3, "edge %d", i)
	}
	assert.NoError(t, ValidateEdges(DefaultEqualAreaEdges))
}

func TestEqualAreaEdges_Invalid(t *testing.T) {
	_, err := EqualAreaEdges(0, 9)
	assert.Error(t, err)

	_, err = EqualAreaEdges(2000, 0)
	assert.Error(t, err)
}

func TestSpec_Validate(t *testing.T) {
	assert.NoError(t, Spec{Name: "ok", Edges: []float64{0, 1}}.Validate())
	assert.Error(t, Spec{Name: "bad", Edges: []float64{1, 0}}.Validate())
}
