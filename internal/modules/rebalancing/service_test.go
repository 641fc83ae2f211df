package rebalancing

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantfolio/riskengine/internal/modules/analytics"
)

func metricsFor(values map[string]float64) analytics.PortfolioMetrics {
	var total float64
	for _, v := range values {
		total += v
	}
	pm := analytics.PortfolioMetrics{TotalValue: total}
	for sym, v := range values {
		weight := 0.0
		if total > 0 {
			weight = v / total * 100
		}
		pm.Assets = append(pm.Assets, analytics.AssetMetrics{
			Symbol:       sym,
			CurrentValue: v,
			Weight:       weight,
		})
	}
	return pm
}

func TestPlanFiftyFiftyTarget(t *testing.T) {
	svc := NewService(zerolog.Nop())

	current := metricsFor(map[string]float64{"A": 8000, "B": 2000})
	orders := svc.Plan(current, map[string]float64{"A": 50, "B": 50})

	require.Len(t, orders, 2)

	bysym := make(map[string]Order)
	for _, o := range orders {
		bysym[o.Symbol] = o
	}

	assert.InDelta(t, -3000, bysym["A"].DiffValue, 1e-9)
	assert.Equal(t, ActionSell, bysym["A"].Action)
	assert.InDelta(t, 3000, bysym["B"].DiffValue, 1e-9)
	assert.Equal(t, ActionBuy, bysym["B"].Action)
}

func TestPlanHoldWithinThreshold(t *testing.T) {
	svc := NewService(zerolog.Nop())

	// 50.2% vs 50% target: diff is 0.2% of total, below the 0.5% band.
	current := metricsFor(map[string]float64{"A": 5020, "B": 4980})
	orders := svc.Plan(current, map[string]float64{"A": 50, "B": 50})

	for _, o := range orders {
		assert.Equal(t, ActionHold, o.Action, "symbol %s", o.Symbol)
	}
}

func TestPlanSortedByAbsoluteDiff(t *testing.T) {
	svc := NewService(zerolog.Nop())

	current := metricsFor(map[string]float64{"A": 6000, "B": 3000, "C": 1000})
	orders := svc.Plan(current, map[string]float64{"A": 40, "B": 30, "C": 30})

	require.Len(t, orders, 3)
	for i := 1; i < len(orders); i++ {
		prev := orders[i-1].DiffValue
		cur := orders[i].DiffValue
		assert.GreaterOrEqual(t, abs(prev), abs(cur))
	}
}

func TestPlanNewSymbolInTarget(t *testing.T) {
	svc := NewService(zerolog.Nop())

	current := metricsFor(map[string]float64{"A": 10000})
	orders := svc.Plan(current, map[string]float64{"A": 80, "NEW": 20})

	bysym := make(map[string]Order)
	for _, o := range orders {
		bysym[o.Symbol] = o
	}

	require.Contains(t, bysym, "NEW")
	assert.Equal(t, ActionBuy, bysym["NEW"].Action)
	assert.InDelta(t, 2000, bysym["NEW"].DiffValue, 1e-9)
	assert.Equal(t, 0.0, bysym["NEW"].CurrentWeight)
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
