// Package domain provides core domain models and types.
package domain

import "time"

// AssetClass represents the class of a held instrument.
type AssetClass string

const (
	AssetClassCrypto     AssetClass = "crypto"
	AssetClassStock      AssetClass = "stock"
	AssetClassETF        AssetClass = "etf"
	AssetClassRealEstate AssetClass = "real_estate"
	AssetClassOther      AssetClass = "other"
)

// TradingDays returns the annualization factor for the asset class.
// Traditional markets trade ~252 days per year, always-on markets 365.
func (c AssetClass) TradingDays() float64 {
	switch c {
	case AssetClassStock, AssetClassETF:
		return 252
	default:
		return 365
	}
}

// BenchmarkSymbol returns the benchmark used for beta calculations
// for this asset class.
func (c AssetClass) BenchmarkSymbol() string {
	switch c {
	case AssetClassCrypto:
		return "BTC-USD"
	case AssetClassRealEstate:
		return "VNQ"
	default:
		return "SPY"
	}
}

// stablecoins holds symbols whose near-zero variance would distort
// correlation and covariance estimates.
var stablecoins = map[string]bool{
	"USDT":  true,
	"USDC":  true,
	"DAI":   true,
	"BUSD":  true,
	"TUSD":  true,
	"USDP":  true,
	"FDUSD": true,
}

// IsStablecoin reports whether the symbol is a known stablecoin.
func IsStablecoin(symbol string) bool {
	return stablecoins[symbol]
}

// PricePoint is a single observation in a price series.
type PricePoint struct {
	Timestamp time.Time `json:"timestamp"`
	Price     float64   `json:"price"`
}

// PriceSeries is an ordered (oldest to newest) price history for one symbol.
// Timestamps are strictly increasing. The series is immutable once returned
// by a provider; callers must not mutate it.
type PriceSeries struct {
	Symbol     string       `json:"symbol"`
	AssetClass AssetClass   `json:"asset_class"`
	Points     []PricePoint `json:"points"`
}

// Prices returns the raw price values, oldest to newest.
func (s PriceSeries) Prices() []float64 {
	prices := make([]float64, len(s.Points))
	for i, p := range s.Points {
		prices[i] = p.Price
	}
	return prices
}

// Empty reports whether the series has no usable points.
func (s PriceSeries) Empty() bool {
	return len(s.Points) == 0
}

// LastPrice returns the most recent price, or 0 for an empty series.
func (s PriceSeries) LastPrice() float64 {
	if len(s.Points) == 0 {
		return 0
	}
	return s.Points[len(s.Points)-1].Price
}

// Holding is an immutable snapshot of one position.
type Holding struct {
	Symbol      string     `json:"symbol"`
	AssetClass  AssetClass `json:"asset_class"`
	Quantity    float64    `json:"quantity"`     // >= 0
	AverageCost float64    `json:"average_cost"` // >= 0
}

// CostBasis returns the total amount invested in the holding.
func (h Holding) CostBasis() float64 {
	return h.Quantity * h.AverageCost
}

// CashFlow is a dated, signed cash movement used by the XIRR solver.
// Negative amounts are cash paid out (acquisitions), positive amounts
// cash received (disposals or the final valuation).
type CashFlow struct {
	Date   time.Time `json:"date"`
	Amount float64   `json:"amount"`
}
