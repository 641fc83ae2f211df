package analytics

import (
	"github.com/quantfolio/riskengine/internal/domain"
	"github.com/quantfolio/riskengine/pkg/formulas"
)

// AssetMetrics holds per-asset performance and risk numbers. Instances
// are computed fresh per call and owned by the caller.
type AssetMetrics struct {
	Symbol               string            `json:"symbol"`
	AssetClass           domain.AssetClass `json:"asset_class"`
	CurrentValue         float64           `json:"current_value"`
	TotalInvested        float64           `json:"total_invested"`
	GainLoss             float64           `json:"gain_loss"`
	GainLossPct          float64           `json:"gain_loss_pct"`
	Weight               float64           `json:"weight"` // percentage of portfolio value
	DailyReturnPct       float64           `json:"daily_return_pct"`
	VolatilityPct        float64           `json:"volatility_pct"`
	AnnualizedReturnPct  float64           `json:"annualized_return_pct"`
	DownsideDeviationPct float64           `json:"downside_deviation_pct"`
	MaxDrawdownPct       float64           `json:"max_drawdown_pct"`
	Sharpe               float64           `json:"sharpe"`
	Sortino              float64           `json:"sortino"`

	// Estimated is set when no usable price history existed and the
	// average cost stood in for the market price. The metrics are then
	// approximations, not market values.
	Estimated bool `json:"estimated,omitempty"`
}

// Exclusion records a symbol that was dropped from a portfolio-level
// computation, and why. Exclusions are reported, never silently swallowed.
type Exclusion struct {
	Symbol string `json:"symbol"`
	Reason string `json:"reason"`
}

// PortfolioMetrics aggregates asset metrics into portfolio-level
// performance, risk and diversification numbers.
type PortfolioMetrics struct {
	TotalValue    float64 `json:"total_value"`
	TotalInvested float64 `json:"total_invested"`
	GainLoss      float64 `json:"gain_loss"`
	GainLossPct   float64 `json:"gain_loss_pct"`

	AllocationByClass  map[domain.AssetClass]float64 `json:"allocation_by_class"`  // percentages
	AllocationBySymbol map[string]float64            `json:"allocation_by_symbol"` // percentages

	VolatilityPct  float64                 `json:"volatility_pct"`
	Sharpe         float64                 `json:"sharpe"`
	Sortino        float64                 `json:"sortino"`
	Calmar         float64                 `json:"calmar"`
	MaxDrawdownPct float64                 `json:"max_drawdown_pct"`
	Drawdown       formulas.DrawdownDetail `json:"drawdown"`
	VaR95          float64                 `json:"var_95"`
	CVaR95         float64                 `json:"cvar_95"`

	ConcentrationHHI      float64 `json:"concentration_hhi"`
	DiversificationScore  float64 `json:"diversification_score"`
	DiversificationRating string  `json:"diversification_rating"`

	Assets         []AssetMetrics `json:"assets"`
	BestPerformer  string         `json:"best_performer"`
	WorstPerformer string         `json:"worst_performer"`
	Exclusions     []Exclusion    `json:"exclusions,omitempty"`
}

// BetaReport holds per-asset and per-class beta results. A nil asset beta
// means the beta is undefined (insufficient data or zero benchmark
// variance); such assets do not contribute to their class average.
type BetaReport struct {
	Assets  map[string]*float64           `json:"assets"`
	Classes map[domain.AssetClass]float64 `json:"classes"`
}
