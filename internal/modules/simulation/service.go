// Package simulation runs correlated multi-asset Monte Carlo forward
// simulations of portfolio returns.
package simulation

import (
	"math"
	"math/rand/v2"

	"github.com/rs/zerolog"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/quantfolio/riskengine/internal/domain"
	"github.com/quantfolio/riskengine/pkg/formulas"
)

const (
	// minReturnsForSimulation is the minimum per-asset history needed to
	// estimate the joint return distribution.
	minReturnsForSimulation = 10

	// choleskyEpsilon regularizes the covariance diagonal so that
	// near-singular matrices still factorize.
	choleskyEpsilon = 1e-10
)

// Service runs Monte Carlo simulations. The random seed is injected per
// run so tests are reproducible and production callers can vary it.
type Service struct {
	log zerolog.Logger
}

// NewService creates a new simulation service.
func NewService(log zerolog.Logger) *Service {
	return &Service{
		log: log.With().Str("component", "simulation").Logger(),
	}
}

// Run simulates correlated daily returns over horizonDays for the given
// holdings and reports the distribution of total portfolio return.
//
// Assets need at least 10 valid returns to participate; value weights are
// renormalized over the eligible set. When no asset qualifies (or the
// total value is zero) a zero-filled Result with Simulations == 0 is
// returned.
func (s *Service) Run(
	holdings []domain.Holding,
	seriesBySymbol map[string]domain.PriceSeries,
	horizonDays int,
	numSimulations int,
	seed uint64,
) Result {
	if horizonDays <= 0 || numSimulations <= 0 {
		return emptyResult(horizonDays)
	}

	type eligibleAsset struct {
		returns []float64
		value   float64
	}

	eligible := make([]eligibleAsset, 0, len(holdings))
	shortest := math.MaxInt32
	for _, h := range holdings {
		series, ok := seriesBySymbol[h.Symbol]
		if !ok {
			continue
		}
		returns := formulas.LogReturns(series.Prices())
		if len(returns) < minReturnsForSimulation {
			continue
		}
		value := h.Quantity * series.LastPrice()
		if value <= 0 {
			continue
		}
		eligible = append(eligible, eligibleAsset{returns: returns, value: value})
		if len(returns) < shortest {
			shortest = len(returns)
		}
	}

	if len(eligible) == 0 {
		s.log.Debug().Msg("No eligible assets for simulation")
		return emptyResult(horizonDays)
	}

	n := len(eligible)
	var totalValue float64
	for _, a := range eligible {
		totalValue += a.value
	}

	w := make([]float64, n)
	mu := make([]float64, n)
	aligned := make([][]float64, n)
	for i, a := range eligible {
		w[i] = a.value / totalValue
		aligned[i] = a.returns[len(a.returns)-shortest:]
		mu[i] = stat.Mean(aligned[i], nil)
	}

	chol := s.factorize(aligned, n)

	normal := distuv.Normal{Mu: 0, Sigma: 1, Src: rand.NewPCG(seed, 0)}

	totals := make([]float64, numSimulations)
	z := make([]float64, n)
	for sim := 0; sim < numSimulations; sim++ {
		var cum float64
		for day := 0; day < horizonDays; day++ {
			for i := range z {
				z[i] = normal.Rand()
			}
			// Correlated daily asset returns: mu + L*z, dotted with weights.
			var dayReturn float64
			for i := 0; i < n; i++ {
				r := mu[i]
				for j := 0; j <= i; j++ {
					r += chol[i][j] * z[j]
				}
				dayReturn += w[i] * r
			}
			cum += dayReturn
		}
		totals[sim] = (math.Exp(cum) - 1) * 100
	}

	positive, heavyLoss := 0, 0
	for _, t := range totals {
		if t > 0 {
			positive++
		}
		if t < -10 {
			heavyLoss++
		}
	}

	result := Result{
		Percentiles: map[string]float64{
			"p5":  formulas.Percentile(totals, 5),
			"p25": formulas.Percentile(totals, 25),
			"p50": formulas.Percentile(totals, 50),
			"p75": formulas.Percentile(totals, 75),
			"p95": formulas.Percentile(totals, 95),
		},
		ExpectedReturnPct: stat.Mean(totals, nil),
		ProbPositive:      float64(positive) / float64(numSimulations),
		ProbLossOver10Pct: float64(heavyLoss) / float64(numSimulations),
		Simulations:       numSimulations,
		HorizonDays:       horizonDays,
	}

	s.log.Debug().
		Int("assets", n).
		Int("simulations", numSimulations).
		Int("horizon_days", horizonDays).
		Float64("expected_return_pct", result.ExpectedReturnPct).
		Msg("Monte Carlo run complete")

	return result
}

// factorize builds the lower-triangular Cholesky factor of the sample
// covariance (with epsilon regularization). When the matrix is not
// positive definite it falls back to a diagonal of per-asset standard
// deviations, an uncorrelated approximation. An identically zero
// covariance yields a zero factor, so riskless inputs stay riskless
// instead of picking up epsilon noise.
func (s *Service) factorize(aligned [][]float64, n int) [][]float64 {
	sigma := mat.NewSymDense(n, nil)
	maxVariance := 0.0
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			cov := formulas.Covariance(aligned[i], aligned[j])
			if i == j {
				if cov > maxVariance {
					maxVariance = cov
				}
				cov += choleskyEpsilon
			}
			sigma.SetSym(i, j, cov)
		}
	}

	lower := make([][]float64, n)
	for i := range lower {
		lower[i] = make([]float64, n)
	}

	if maxVariance == 0 {
		return lower
	}

	var chol mat.Cholesky
	if chol.Factorize(sigma) {
		var tri mat.TriDense
		chol.LTo(&tri)
		for i := 0; i < n; i++ {
			for j := 0; j <= i; j++ {
				lower[i][j] = tri.At(i, j)
			}
		}
		return lower
	}

	s.log.Warn().Msg("Covariance not positive definite, using diagonal approximation")
	for i := 0; i < n; i++ {
		lower[i][i] = formulas.StdDev(aligned[i])
	}
	return lower
}
