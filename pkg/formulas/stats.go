// Package formulas provides the pure numerical building blocks of the
// analytics engine: return series construction, annualized risk/return
// statistics, risk measures and the XIRR solver.
package formulas

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// Mean calculates the arithmetic mean of a slice of float64 values
func Mean(data []float64) float64 {
	if len(data) == 0 {
		return 0
	}
	return stat.Mean(data, nil)
}

// StdDev calculates the sample standard deviation of a slice of float64 values
func StdDev(data []float64) float64 {
	if len(data) < 2 {
		return 0
	}
	return stat.StdDev(data, nil)
}

// Variance calculates the sample variance of a slice of float64 values
func Variance(data []float64) float64 {
	if len(data) < 2 {
		return 0
	}
	return stat.Variance(data, nil)
}

// Correlation calculates the Pearson correlation coefficient between two datasets
func Correlation(x, y []float64) float64 {
	if len(x) == 0 || len(y) == 0 || len(x) != len(y) {
		return 0
	}
	return stat.Correlation(x, y, nil)
}

// Covariance calculates the sample covariance between two datasets
func Covariance(x, y []float64) float64 {
	if len(x) < 2 || len(y) < 2 || len(x) != len(y) {
		return 0
	}
	return stat.Covariance(x, y, nil)
}

// Percentile returns the pct-th percentile (0-100) of values using linear
// interpolation between closest ranks. The input is not modified.
func Percentile(values []float64, pct float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)
	p := math.Min(math.Max(pct/100, 0), 1)
	return stat.Quantile(p, stat.LinInterp, sorted, nil)
}

// LogReturns converts a price series to daily log returns.
// Non-positive prices are dropped before differencing. Fewer than two
// valid prices yield an empty result, not an error.
func LogReturns(prices []float64) []float64 {
	valid := make([]float64, 0, len(prices))
	for _, p := range prices {
		if p > 0 {
			valid = append(valid, p)
		}
	}
	if len(valid) < 2 {
		return []float64{}
	}

	returns := make([]float64, len(valid)-1)
	for i := 1; i < len(valid); i++ {
		returns[i-1] = math.Log(valid[i] / valid[i-1])
	}
	return returns
}

// DailyReturnPct returns the simple percentage return between the last two
// points of a price series, or 0 when fewer than two points exist.
func DailyReturnPct(prices []float64) float64 {
	if len(prices) < 2 {
		return 0
	}
	prev := prices[len(prices)-2]
	last := prices[len(prices)-1]
	if prev <= 0 {
		return 0
	}
	return (last - prev) / prev * 100
}

// AnnualizedVolatility calculates annualized volatility as a percentage
// from daily returns and an annualization factor (252 for traditional
// markets, 365 for always-on markets).
func AnnualizedVolatility(returns []float64, factor float64) float64 {
	if len(returns) == 0 {
		return 0
	}
	return StdDev(returns) * math.Sqrt(factor) * 100
}

// AnnualizedReturn calculates the annualized mean return as a percentage.
func AnnualizedReturn(returns []float64, factor float64) float64 {
	if len(returns) == 0 {
		return 0
	}
	return Mean(returns) * factor * 100
}

// DownsideDeviation calculates annualized downside deviation (the volatility
// of returns below threshold) as a percentage.
func DownsideDeviation(returns []float64, threshold, factor float64) float64 {
	if len(returns) == 0 {
		return 0
	}

	var sumSq float64
	for _, r := range returns {
		if d := r - threshold; d < 0 {
			sumSq += d * d
		}
	}
	downside := math.Sqrt(sumSq / float64(len(returns)))
	return downside * math.Sqrt(factor) * 100
}

// MaxDrawdown calculates the maximum drawdown of a price series as a
// negative percentage (0 when fewer than two points exist).
func MaxDrawdown(prices []float64) float64 {
	if len(prices) < 2 {
		return 0
	}

	maxDD := 0.0
	peak := prices[0]
	for _, p := range prices {
		if p > peak {
			peak = p
		}
		if peak > 0 {
			dd := (p - peak) / peak
			if dd < maxDD {
				maxDD = dd
			}
		}
	}
	return maxDD * 100
}

// CalculateAnnualReturn computes the compound annual growth rate (CAGR)
// from a series of periodic returns.
//
// Formula: ((1+r1)*(1+r2)*...*(1+rN))^(periodsPerYear/N) - 1
func CalculateAnnualReturn(returns []float64, periodsPerYear float64) float64 {
	if len(returns) == 0 {
		return 0
	}

	cumulative := 1.0
	for _, r := range returns {
		cumulative *= 1 + r
	}

	numPeriods := float64(len(returns))
	// Very short periods produce extreme annualizations; return the
	// simple cumulative return instead.
	if numPeriods < 3 {
		return cumulative - 1
	}

	years := numPeriods / periodsPerYear
	return math.Pow(cumulative, 1.0/years) - 1
}
