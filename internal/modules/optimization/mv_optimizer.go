package optimization

import (
	"math"

	"gonum.org/v1/gonum/optimize"
)

const (
	// penaltyWeight enforces the full-investment constraint Σw = 1.
	penaltyWeight = 1000.0

	// maxIterations bounds the solver so it fails fast instead of
	// hanging on pathological inputs.
	maxIterations = 200
)

// solve minimizes the objective over long-only weights with the
// full-investment constraint applied as a quadratic penalty. Weights are
// projected to [0, 1] inside the objective; the final solution is
// projected and normalized so it sums to 1.
func solve(mu []float64, sigma [][]float64, riskFree float64, objective Objective) ([]float64, error) {
	n := len(mu)

	problem := optimize.Problem{
		Func: func(x []float64) float64 {
			w := projectToBounds(x)

			ret, variance := portfolioStats(w, mu, sigma)
			stdDev := math.Sqrt(math.Max(variance, 1e-10))

			var obj float64
			switch objective {
			case ObjectiveMinVolatility:
				obj = stdDev
			default: // max_sharpe
				obj = -(ret - riskFree) / stdDev
			}

			sum := 0.0
			for i := 0; i < n; i++ {
				sum += w[i]
			}
			return obj + penaltyWeight*(sum-1)*(sum-1)
		},
		Grad: func(grad, x []float64) {
			w := projectToBounds(x)

			ret, variance := portfolioStats(w, mu, sigma)
			stdDev := math.Sqrt(math.Max(variance, 1e-10))

			for i := 0; i < n; i++ {
				var dVariance float64
				for j := 0; j < n; j++ {
					dVariance += 2 * sigma[i][j] * w[j]
				}
				switch objective {
				case ObjectiveMinVolatility:
					grad[i] = dVariance / (2 * stdDev)
				default: // max_sharpe
					grad[i] = -mu[i]/stdDev + (ret-riskFree)*dVariance/(2*stdDev*stdDev*stdDev)
				}
			}

			sum := 0.0
			for i := 0; i < n; i++ {
				sum += w[i]
			}
			for i := 0; i < n; i++ {
				grad[i] += 2 * penaltyWeight * (sum - 1)
			}
		},
	}

	initial := make([]float64, n)
	for i := range initial {
		initial[i] = 1.0 / float64(n)
	}

	settings := &optimize.Settings{MajorIterations: maxIterations}

	result, err := optimize.Minimize(problem, initial, settings, &optimize.BFGS{})
	if err != nil || !converged(result.Status) {
		// Gradient methods can stall on the projected objective; retry
		// with a derivative-free method.
		result, err = optimize.Minimize(problem, initial, settings, &optimize.NelderMead{})
		if err != nil {
			return nil, ErrNoConvergence
		}
		if !converged(result.Status) {
			return nil, ErrNoConvergence
		}
	}

	weights := projectToBounds(result.X)
	sum := 0.0
	for _, w := range weights {
		sum += w
	}
	if sum <= 0 {
		return nil, ErrNoConvergence
	}
	for i := range weights {
		weights[i] /= sum
	}
	return weights, nil
}

func converged(status optimize.Status) bool {
	switch status {
	case optimize.Success, optimize.GradientThreshold, optimize.FunctionConvergence:
		return true
	default:
		return false
	}
}

func portfolioStats(w, mu []float64, sigma [][]float64) (ret, variance float64) {
	n := len(w)
	for i := 0; i < n; i++ {
		ret += mu[i] * w[i]
		for j := 0; j < n; j++ {
			variance += w[i] * w[j] * sigma[i][j]
		}
	}
	return ret, variance
}

// projectToBounds clamps weights to the long-only [0, 1] range.
func projectToBounds(x []float64) []float64 {
	proj := make([]float64, len(x))
	for i, v := range x {
		proj[i] = math.Max(0, math.Min(1, v))
	}
	return proj
}
