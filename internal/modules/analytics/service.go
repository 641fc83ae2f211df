// Package analytics computes per-asset and portfolio-level performance
// and risk metrics from holdings and price history.
package analytics

import (
	"math"

	"github.com/rs/zerolog"

	"github.com/quantfolio/riskengine/internal/domain"
	"github.com/quantfolio/riskengine/pkg/formulas"
)

// minReturnsForRisk is the minimum number of return observations an asset
// needs to participate in covariance-based portfolio risk.
const minReturnsForRisk = 5

// Service computes asset and portfolio metrics. It is stateless; price
// series and holdings are borrowed per call.
type Service struct {
	riskFreeRate  float64 // annualized decimal, e.g. 0.035
	varConfidence float64 // e.g. 0.95
	log           zerolog.Logger
}

// NewService creates a new analytics service.
func NewService(riskFreeRate, varConfidence float64, log zerolog.Logger) *Service {
	return &Service{
		riskFreeRate:  riskFreeRate,
		varConfidence: varConfidence,
		log:           log.With().Str("component", "analytics").Logger(),
	}
}

// AssetMetrics computes performance and risk metrics for a single holding.
// When the series holds no usable price, the average cost stands in for
// the market price and the result is flagged as estimated.
func (s *Service) AssetMetrics(h domain.Holding, series domain.PriceSeries) AssetMetrics {
	prices := series.Prices()

	price := series.LastPrice()
	estimated := false
	if price <= 0 {
		price = h.AverageCost
		estimated = true
	}

	currentValue := h.Quantity * price
	invested := h.CostBasis()
	gain := currentValue - invested
	gainPct := 0.0
	if invested > 0 {
		gainPct = gain / invested * 100
	}

	factor := h.AssetClass.TradingDays()
	returns := formulas.LogReturns(prices)

	vol := formulas.AnnualizedVolatility(returns, factor)
	annRet := formulas.AnnualizedReturn(returns, factor)
	downside := formulas.DownsideDeviation(returns, 0, factor)
	rfPct := s.riskFreeRate * 100

	return AssetMetrics{
		Symbol:               h.Symbol,
		AssetClass:           h.AssetClass,
		CurrentValue:         currentValue,
		TotalInvested:        invested,
		GainLoss:             gain,
		GainLossPct:          gainPct,
		DailyReturnPct:       formulas.DailyReturnPct(prices),
		VolatilityPct:        vol,
		AnnualizedReturnPct:  annRet,
		DownsideDeviationPct: downside,
		MaxDrawdownPct:       formulas.MaxDrawdown(prices),
		Sharpe:               formulas.SharpeRatio(annRet, vol, rfPct),
		Sortino:              formulas.SortinoRatio(annRet, downside, rfPct),
		Estimated:            estimated,
	}
}

// PortfolioMetrics aggregates holdings into portfolio-level metrics using
// a covariance-based risk model over the aligned return windows.
func (s *Service) PortfolioMetrics(holdings []domain.Holding, seriesBySymbol map[string]domain.PriceSeries) PortfolioMetrics {
	pm := PortfolioMetrics{
		AllocationByClass:  make(map[domain.AssetClass]float64),
		AllocationBySymbol: make(map[string]float64),
	}

	assets := make([]AssetMetrics, 0, len(holdings))
	returnsBySymbol := make(map[string][]float64, len(holdings))
	pricesBySymbol := make(map[string][]float64, len(holdings))

	for _, h := range holdings {
		series, ok := seriesBySymbol[h.Symbol]
		if !ok {
			pm.Exclusions = append(pm.Exclusions, Exclusion{Symbol: h.Symbol, Reason: "no price history"})
			s.log.Warn().Str("symbol", h.Symbol).Msg("No price history, falling back to cost basis")
		}

		am := s.AssetMetrics(h, series)
		pm.TotalValue += am.CurrentValue
		pm.TotalInvested += am.TotalInvested

		prices := series.Prices()
		returns := formulas.LogReturns(prices)
		if domain.IsStablecoin(h.Symbol) {
			// Stablecoins keep their allocation weight but contribute
			// no risk.
			am.VolatilityPct = 0
			returns = nil
		}
		returnsBySymbol[h.Symbol] = returns
		pricesBySymbol[h.Symbol] = prices
		assets = append(assets, am)
	}

	pm.GainLoss = pm.TotalValue - pm.TotalInvested
	if pm.TotalInvested > 0 {
		pm.GainLossPct = pm.GainLoss / pm.TotalInvested * 100
	}

	// Weights and allocations.
	for i := range assets {
		w := 0.0
		if pm.TotalValue > 0 {
			w = assets[i].CurrentValue / pm.TotalValue
		}
		assets[i].Weight = w * 100
		pm.AllocationBySymbol[assets[i].Symbol] = w * 100
		pm.AllocationByClass[assets[i].AssetClass] += w * 100
	}
	pm.Assets = assets

	// Value-weighted annualization factor across the whole book.
	factor := s.portfolioFactor(assets, pm.TotalValue)

	// Covariance-based risk over assets with enough aligned history.
	eligible := make([]int, 0, len(assets))
	shortest := math.MaxInt32
	for i := range assets {
		returns := returnsBySymbol[assets[i].Symbol]
		if len(returns) >= minReturnsForRisk {
			eligible = append(eligible, i)
			if len(returns) < shortest {
				shortest = len(returns)
			}
		} else if !domain.IsStablecoin(assets[i].Symbol) && len(returns) > 0 {
			pm.Exclusions = append(pm.Exclusions, Exclusion{Symbol: assets[i].Symbol, Reason: "insufficient history for risk model"})
		}
	}

	if len(eligible) >= 2 {
		s.covarianceRisk(&pm, assets, returnsBySymbol, eligible, shortest, factor)
	} else {
		s.fallbackRisk(&pm, assets)
	}

	pm.ConcentrationHHI = concentrationHHI(assets, pm.TotalValue)
	pm.DiversificationScore, pm.DiversificationRating = diversificationScore(assets, pm.ConcentrationHHI)

	pm.BestPerformer, pm.WorstPerformer = bestAndWorst(assets)

	s.log.Debug().
		Float64("total_value", pm.TotalValue).
		Float64("volatility_pct", pm.VolatilityPct).
		Int("assets", len(assets)).
		Int("exclusions", len(pm.Exclusions)).
		Msg("Computed portfolio metrics")

	return pm
}

// MoneyWeightedReturn computes the annualized money-weighted return of a
// cash-flow schedule. Returns nil when no rate can be determined.
func (s *Service) MoneyWeightedReturn(flows []domain.CashFlow) *float64 {
	dated := make([]formulas.DatedAmount, len(flows))
	for i, f := range flows {
		dated[i] = formulas.DatedAmount{Date: f.Date, Amount: f.Amount}
	}
	rate := formulas.XIRR(dated)
	if rate == nil {
		s.log.Debug().Int("flows", len(flows)).Msg("Money-weighted return undetermined")
	}
	return rate
}

// covarianceRisk fills portfolio volatility, VaR, CVaR and drawdown from
// the sample covariance of the aligned eligible return series.
func (s *Service) covarianceRisk(
	pm *PortfolioMetrics,
	assets []AssetMetrics,
	returnsBySymbol map[string][]float64,
	eligible []int,
	shortest int,
	factor float64,
) {
	n := len(eligible)

	// Renormalize the eligible weight sub-vector to sum to 1.
	w := make([]float64, n)
	var wSum float64
	for k, i := range eligible {
		w[k] = assets[i].Weight / 100
		wSum += w[k]
	}
	if wSum <= 0 {
		s.fallbackRisk(pm, assets)
		return
	}
	for k := range w {
		w[k] /= wSum
	}

	aligned := make([][]float64, n)
	for k, i := range eligible {
		r := returnsBySymbol[assets[i].Symbol]
		aligned[k] = r[len(r)-shortest:]
	}

	// Sample covariance and portfolio variance w'Σw.
	var variance float64
	for a := 0; a < n; a++ {
		for b := 0; b < n; b++ {
			variance += w[a] * w[b] * formulas.Covariance(aligned[a], aligned[b])
		}
	}
	if variance < 0 {
		variance = 0
	}
	pm.VolatilityPct = math.Sqrt(variance) * math.Sqrt(factor) * 100

	// Daily portfolio returns for VaR/CVaR and the synthetic price path.
	portReturns := make([]float64, shortest)
	for t := 0; t < shortest; t++ {
		var r float64
		for k := 0; k < n; k++ {
			r += w[k] * aligned[k][t]
		}
		portReturns[t] = r
	}

	pm.VaR95 = formulas.HistoricalVaR(portReturns, s.varConfidence)
	pm.CVaR95 = formulas.CVaR(portReturns, s.varConfidence)

	// Synthetic cumulative path: exp(cumsum(returns)) anchored at 1.
	path := make([]float64, shortest+1)
	path[0] = 1
	cum := 0.0
	for t, r := range portReturns {
		cum += r
		path[t+1] = math.Exp(cum)
	}
	pm.Drawdown = formulas.Drawdowns(path)
	pm.MaxDrawdownPct = pm.Drawdown.MaxDrawdownPct

	annRet := formulas.AnnualizedReturn(portReturns, factor)
	downside := formulas.DownsideDeviation(portReturns, 0, factor)
	rfPct := s.riskFreeRate * 100
	pm.Sharpe = formulas.SharpeRatio(annRet, pm.VolatilityPct, rfPct)
	pm.Sortino = formulas.SortinoRatio(annRet, downside, rfPct)
	pm.Calmar = formulas.CalmarRatio(annRet, pm.MaxDrawdownPct)
}

// fallbackRisk approximates portfolio risk as value-weighted averages when
// fewer than two assets have enough history for the covariance model.
// VaR and CVaR are reported as 0 in that case.
func (s *Service) fallbackRisk(pm *PortfolioMetrics, assets []AssetMetrics) {
	var vol, dd, annRet, downside float64
	for _, a := range assets {
		w := a.Weight / 100
		vol += w * a.VolatilityPct
		dd += w * a.MaxDrawdownPct
		annRet += w * a.AnnualizedReturnPct
		downside += w * a.DownsideDeviationPct
	}
	pm.VolatilityPct = vol
	pm.MaxDrawdownPct = dd
	pm.Drawdown = formulas.DrawdownDetail{MaxDrawdownPct: dd}

	rfPct := s.riskFreeRate * 100
	pm.Sharpe = formulas.SharpeRatio(annRet, vol, rfPct)
	pm.Sortino = formulas.SortinoRatio(annRet, downside, rfPct)
	pm.Calmar = formulas.CalmarRatio(annRet, dd)

	s.log.Debug().Msg("Covariance risk model skipped, using weighted-average fallback")
}

// portfolioFactor returns the value-weighted average annualization factor.
func (s *Service) portfolioFactor(assets []AssetMetrics, totalValue float64) float64 {
	if totalValue <= 0 {
		return 252
	}
	var factor float64
	for _, a := range assets {
		factor += a.CurrentValue / totalValue * a.AssetClass.TradingDays()
	}
	if factor <= 0 {
		return 252
	}
	return factor
}

// concentrationHHI is the Herfindahl-Hirschman index over weight fractions.
func concentrationHHI(assets []AssetMetrics, totalValue float64) float64 {
	if totalValue <= 0 {
		return 0
	}
	var hhi float64
	for _, a := range assets {
		w := a.CurrentValue / totalValue
		hhi += w * w
	}
	return hhi
}

// diversificationScore maps asset count, class spread and concentration to
// a 0-100 score and a qualitative rating.
func diversificationScore(assets []AssetMetrics, hhi float64) (float64, string) {
	classes := make(map[domain.AssetClass]bool)
	for _, a := range assets {
		classes[a.AssetClass] = true
	}

	score := clamp(float64(len(assets))*3, 0, 30)
	score += clamp(float64(len(classes))*10, 0, 30)
	score += math.Max(0, 40*(1-hhi*2))
	score = clamp(score, 0, 100)

	var rating string
	switch {
	case score >= 80:
		rating = "excellent"
	case score >= 60:
		rating = "good"
	case score >= 40:
		rating = "moderate"
	case score >= 20:
		rating = "low"
	default:
		rating = "very low"
	}
	return score, rating
}

func bestAndWorst(assets []AssetMetrics) (best, worst string) {
	if len(assets) == 0 {
		return "", ""
	}
	bestIdx, worstIdx := 0, 0
	for i, a := range assets {
		if a.GainLossPct > assets[bestIdx].GainLossPct {
			bestIdx = i
		}
		if a.GainLossPct < assets[worstIdx].GainLossPct {
			worstIdx = i
		}
	}
	return assets[bestIdx].Symbol, assets[worstIdx].Symbol
}

func clamp(value, min, max float64) float64 {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}
