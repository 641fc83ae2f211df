package correlation

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantfolio/riskengine/internal/domain"
)

func series(symbol string, prices []float64) domain.PriceSeries {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	points := make([]domain.PricePoint, len(prices))
	for i, p := range prices {
		points[i] = domain.PricePoint{Timestamp: start.AddDate(0, 0, i), Price: p}
	}
	return domain.PriceSeries{Symbol: symbol, AssetClass: domain.AssetClassStock, Points: points}
}

func TestBuildMatrixIdenticalAndInverse(t *testing.T) {
	svc := NewService(zerolog.Nop())

	up := []float64{100, 102, 101, 105, 107, 104, 110, 112}
	down := make([]float64, len(up))
	for i, p := range up {
		// Exact negation of the return path: price moves mirror inversely.
		down[i] = 200 - (p - 100)
	}

	m := svc.BuildMatrix(
		[]string{"AAA", "BBB", "CCC"},
		map[string]domain.PriceSeries{
			"AAA": series("AAA", up),
			"BBB": series("BBB", up),
			"CCC": series("CCC", down),
		},
	)

	require.Len(t, m.Symbols, 3)
	require.Len(t, m.Values, 3)

	// Identical series correlate at ~1.
	assert.InDelta(t, 1.0, m.Values[0][1], 1e-9)
	// Inverse price path correlates strongly negatively.
	assert.Less(t, m.Values[0][2], -0.9)

	// Invariants: symmetry, unit diagonal, entries within [-1, 1].
	for i := range m.Values {
		assert.Equal(t, 1.0, m.Values[i][i])
		for j := range m.Values[i] {
			assert.InDelta(t, m.Values[j][i], m.Values[i][j], 1e-12)
			assert.LessOrEqual(t, m.Values[i][j], 1.0)
			assert.GreaterOrEqual(t, m.Values[i][j], -1.0)
		}
	}

	require.NotEmpty(t, m.StronglyCorrelated)
	assert.Equal(t, "AAA", m.StronglyCorrelated[0].Symbol1)
	assert.Equal(t, "BBB", m.StronglyCorrelated[0].Symbol2)
	require.NotEmpty(t, m.NegativelyCorrelated)
}

func TestBuildMatrixKeepsShapeForSparseSymbols(t *testing.T) {
	svc := NewService(zerolog.Nop())

	m := svc.BuildMatrix(
		[]string{"AAA", "SHORT", "USDT"},
		map[string]domain.PriceSeries{
			"AAA":   series("AAA", []float64{100, 101, 103, 102, 104, 106, 105}),
			"SHORT": series("SHORT", []float64{50, 51}),
			"USDT":  series("USDT", []float64{1, 1, 1, 1, 1, 1, 1}),
		},
	)

	require.Len(t, m.Symbols, 3)
	// Sparse and stablecoin symbols occupy zeroed rows/columns.
	assert.Equal(t, 0.0, m.Values[0][1])
	assert.Equal(t, 0.0, m.Values[0][2])
	assert.Equal(t, 1.0, m.Values[1][1])
	assert.Equal(t, 1.0, m.Values[2][2])
}

func TestLookupMap(t *testing.T) {
	m := Matrix{
		StronglyCorrelated:   []Pair{{Symbol1: "A", Symbol2: "B", Correlation: 0.9}},
		NegativelyCorrelated: []Pair{{Symbol1: "A", Symbol2: "C", Correlation: -0.5}},
	}
	lookup := m.LookupMap()
	assert.Equal(t, 0.9, lookup["A:B"])
	assert.Equal(t, 0.9, lookup["B:A"])
	assert.Equal(t, -0.5, lookup["C:A"])
}
