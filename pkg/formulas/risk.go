package formulas

import (
	"math"

	"gonum.org/v1/gonum/stat/distuv"
)

// minReturnsForVaR is the minimum number of return observations required
// before a VaR estimate is meaningful.
const minReturnsForVaR = 5

// HistoricalVaR calculates Value at Risk at the given confidence level from
// the empirical return distribution, expressed as a positive percentage.
// Floored at 0 when even the tail quantile is a gain; returns 0 when fewer
// than 5 observations exist.
func HistoricalVaR(returns []float64, confidence float64) float64 {
	if len(returns) < minReturnsForVaR {
		return 0
	}
	v := -Percentile(returns, (1-confidence)*100)
	if v < 0 {
		return 0
	}
	return v * 100
}

// ParametricVaR calculates Value at Risk under a Gaussian assumption:
// -(mean + z*std) where z is the normal quantile at (1-confidence).
// Floored at 0; returns 0 when fewer than 5 observations exist.
func ParametricVaR(returns []float64, confidence float64) float64 {
	if len(returns) < minReturnsForVaR {
		return 0
	}
	z := distuv.UnitNormal.Quantile(1 - confidence)
	v := -(Mean(returns) + z*StdDev(returns))
	if v < 0 {
		return 0
	}
	return v * 100
}

// CVaR calculates Conditional Value at Risk (expected shortfall): the
// negative mean of returns at or below the historical VaR quantile,
// expressed as a positive percentage. When the tail holds a single
// element, CVaR equals the negated quantile.
func CVaR(returns []float64, confidence float64) float64 {
	if len(returns) < minReturnsForVaR {
		return 0
	}

	q := Percentile(returns, (1-confidence)*100)
	var sum float64
	count := 0
	for _, r := range returns {
		if r <= q {
			sum += r
			count++
		}
	}
	if count == 0 {
		return -q * 100
	}
	return -(sum / float64(count)) * 100
}

// SharpeRatio calculates excess annualized return over annualized
// volatility. All inputs are percentages. Returns 0 when volatility is 0.
func SharpeRatio(annualReturnPct, volatilityPct, riskFreePct float64) float64 {
	if volatilityPct == 0 {
		return 0
	}
	return (annualReturnPct - riskFreePct) / volatilityPct
}

// SortinoRatio calculates excess annualized return over downside
// deviation. Returns 0 when downside deviation is 0.
func SortinoRatio(annualReturnPct, downsideDeviationPct, riskFreePct float64) float64 {
	if downsideDeviationPct == 0 {
		return 0
	}
	return (annualReturnPct - riskFreePct) / downsideDeviationPct
}

// CalmarRatio calculates annualized return over the absolute maximum
// drawdown. Returns 0 when the drawdown is 0.
func CalmarRatio(annualReturnPct, maxDrawdownPct float64) float64 {
	if maxDrawdownPct == 0 {
		return 0
	}
	return annualReturnPct / math.Abs(maxDrawdownPct)
}

// DrawdownDetail holds drawdown diagnostics beyond the maximum.
type DrawdownDetail struct {
	MaxDrawdownPct     float64 `json:"max_drawdown_pct"`     // negative percentage
	CurrentDrawdownPct float64 `json:"current_drawdown_pct"` // negative percentage
	DaysInDrawdown     int     `json:"days_in_drawdown"`     // observations since peak
}

// Drawdowns calculates maximum and current drawdown for a price series.
func Drawdowns(prices []float64) DrawdownDetail {
	if len(prices) < 2 {
		return DrawdownDetail{}
	}

	maxDD := 0.0
	peak := prices[0]
	peakIdx := 0
	for i, p := range prices {
		if p > peak {
			peak = p
			peakIdx = i
		}
		if peak > 0 {
			dd := (p - peak) / peak
			if dd < maxDD {
				maxDD = dd
			}
		}
	}

	current := 0.0
	if peak > 0 {
		current = (prices[len(prices)-1] - peak) / peak
	}

	return DrawdownDetail{
		MaxDrawdownPct:     maxDD * 100,
		CurrentDrawdownPct: current * 100,
		DaysInDrawdown:     len(prices) - 1 - peakIdx,
	}
}
