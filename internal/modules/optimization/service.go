// Package optimization solves the mean-variance (Markowitz) allocation
// problem over the holdings with sufficient price history.
package optimization

import (
	"math"

	"github.com/rs/zerolog"

	"github.com/quantfolio/riskengine/internal/domain"
	"github.com/quantfolio/riskengine/pkg/formulas"
)

// minReturnsForOptimization is the minimum per-asset history needed to
// estimate expected returns and covariance.
const minReturnsForOptimization = 10

// Service builds the annualized return/covariance inputs and runs the
// mean-variance solver.
type Service struct {
	riskFreeRate float64 // annualized decimal
	log          zerolog.Logger
}

// NewService creates a new optimization service.
func NewService(riskFreeRate float64, log zerolog.Logger) *Service {
	return &Service{
		riskFreeRate: riskFreeRate,
		log:          log.With().Str("component", "optimization").Logger(),
	}
}

// Optimize computes optimal long-only weights for the given objective.
// Returns ErrNotEnoughAssets when fewer than two assets qualify, and
// ErrNoConvergence when the bounded solver fails; both yield a nil Result.
func (s *Service) Optimize(
	holdings []domain.Holding,
	seriesBySymbol map[string]domain.PriceSeries,
	objective Objective,
) (*Result, error) {
	if !objective.Valid() {
		return nil, ErrUnknownObjective
	}

	symbols := make([]string, 0, len(holdings))
	returnsBySymbol := make(map[string][]float64, len(holdings))
	factors := make(map[string]float64, len(holdings))
	shortest := math.MaxInt32

	for _, h := range holdings {
		series, ok := seriesBySymbol[h.Symbol]
		if !ok {
			continue
		}
		returns := formulas.LogReturns(series.Prices())
		if len(returns) < minReturnsForOptimization {
			s.log.Debug().Str("symbol", h.Symbol).Int("returns", len(returns)).Msg("Excluded from optimization")
			continue
		}
		symbols = append(symbols, h.Symbol)
		returnsBySymbol[h.Symbol] = returns
		factors[h.Symbol] = h.AssetClass.TradingDays()
		if len(returns) < shortest {
			shortest = len(returns)
		}
	}

	if len(symbols) < 2 {
		return nil, ErrNotEnoughAssets
	}

	n := len(symbols)
	aligned := make([][]float64, n)
	mu := make([]float64, n)
	for i, sym := range symbols {
		r := returnsBySymbol[sym]
		aligned[i] = r[len(r)-shortest:]
		mu[i] = formulas.Mean(aligned[i]) * factors[sym]
	}

	// Annualized covariance: daily covariance scaled by the geometric
	// mean of the two assets' annualization factors.
	sigma := make([][]float64, n)
	for i := range sigma {
		sigma[i] = make([]float64, n)
	}
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			scale := math.Sqrt(factors[symbols[i]] * factors[symbols[j]])
			cov := formulas.Covariance(aligned[i], aligned[j]) * scale
			sigma[i][j] = cov
			sigma[j][i] = cov
		}
	}

	weights, err := solve(mu, sigma, s.riskFreeRate, objective)
	if err != nil {
		s.log.Warn().Err(err).Str("objective", string(objective)).Msg("Optimization failed")
		return nil, err
	}

	result := &Result{Weights: make(map[string]float64, n)}
	var ret, variance float64
	for i := 0; i < n; i++ {
		result.Weights[symbols[i]] = roundWeight(weights[i])
		ret += weights[i] * mu[i]
		for j := 0; j < n; j++ {
			variance += weights[i] * weights[j] * sigma[i][j]
		}
	}
	vol := math.Sqrt(math.Max(variance, 0))

	result.ExpectedReturnPct = ret * 100
	result.ExpectedVolatilityPct = vol * 100
	if vol > 0 {
		result.Sharpe = (ret - s.riskFreeRate) / vol
	}

	s.log.Info().
		Str("objective", string(objective)).
		Int("assets", n).
		Float64("expected_return_pct", result.ExpectedReturnPct).
		Float64("expected_volatility_pct", result.ExpectedVolatilityPct).
		Msg("Optimization complete")

	return result, nil
}

func roundWeight(w float64) float64 {
	return math.Round(w*1e6) / 1e6
}
