package analytics

import (
	"github.com/quantfolio/riskengine/internal/domain"
	"github.com/quantfolio/riskengine/pkg/formulas"
)

// minReturnsForBeta is the minimum number of aligned observations required
// on both sides of a beta regression.
const minReturnsForBeta = 10

// Betas computes per-asset beta against the class benchmark and the
// value-weighted per-class portfolio beta. An asset's beta is nil when the
// aligned window is too short or the benchmark variance is 0; such assets
// do not contribute to the class average.
func (s *Service) Betas(
	holdings []domain.Holding,
	seriesBySymbol map[string]domain.PriceSeries,
	benchmarksByClass map[domain.AssetClass]domain.PriceSeries,
) BetaReport {
	report := BetaReport{
		Assets:  make(map[string]*float64, len(holdings)),
		Classes: make(map[domain.AssetClass]float64),
	}

	type classAccum struct {
		weighted float64
		value    float64
	}
	byClass := make(map[domain.AssetClass]*classAccum)

	for _, h := range holdings {
		series := seriesBySymbol[h.Symbol]
		bench, hasBench := benchmarksByClass[h.AssetClass]
		if !hasBench {
			report.Assets[h.Symbol] = nil
			s.log.Debug().Str("symbol", h.Symbol).Str("class", string(h.AssetClass)).Msg("No benchmark for asset class")
			continue
		}

		beta := assetBeta(series.Prices(), bench.Prices())
		report.Assets[h.Symbol] = beta
		if beta == nil {
			continue
		}

		value := h.Quantity * series.LastPrice()
		if value <= 0 {
			value = h.CostBasis()
		}
		acc := byClass[h.AssetClass]
		if acc == nil {
			acc = &classAccum{}
			byClass[h.AssetClass] = acc
		}
		acc.weighted += *beta * value
		acc.value += value
	}

	for class, acc := range byClass {
		if acc.value > 0 {
			report.Classes[class] = acc.weighted / acc.value
		}
	}
	return report
}

// assetBeta computes Cov(asset, benchmark) / Var(benchmark) over the
// shortest common aligned return window.
func assetBeta(assetPrices, benchPrices []float64) *float64 {
	assetReturns := formulas.LogReturns(assetPrices)
	benchReturns := formulas.LogReturns(benchPrices)

	n := len(assetReturns)
	if len(benchReturns) < n {
		n = len(benchReturns)
	}
	if n < minReturnsForBeta {
		return nil
	}

	a := assetReturns[len(assetReturns)-n:]
	b := benchReturns[len(benchReturns)-n:]

	benchVar := formulas.Variance(b)
	if benchVar == 0 {
		return nil
	}
	beta := formulas.Covariance(a, b) / benchVar
	return &beta
}
