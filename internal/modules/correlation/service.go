package correlation

import (
	"math"
	"sort"

	"github.com/rs/zerolog"

	"github.com/quantfolio/riskengine/internal/domain"
	"github.com/quantfolio/riskengine/pkg/formulas"
)

const (
	// minReturns is the minimum number of aligned return observations a
	// symbol needs before it participates in correlation estimation.
	minReturns = 5

	strongThreshold   = 0.7
	negativeThreshold = -0.3
)

// Service builds correlation matrices from price history.
type Service struct {
	log zerolog.Logger
}

// NewService creates a new correlation service.
func NewService(log zerolog.Logger) *Service {
	return &Service{
		log: log.With().Str("component", "correlation").Logger(),
	}
}

// BuildMatrix computes the pairwise Pearson correlation matrix for the
// given symbols over their aligned return windows.
//
// Stablecoins are excluded from estimation (their near-zero variance
// distorts correlations), as are symbols with fewer than 5 valid returns.
// Both keep a zeroed row/column so the matrix shape matches the symbol
// list. All eligible return series are truncated to the shortest common
// length before estimation.
func (s *Service) BuildMatrix(symbols []string, seriesBySymbol map[string]domain.PriceSeries) Matrix {
	n := len(symbols)
	values := make([][]float64, n)
	for i := range values {
		values[i] = make([]float64, n)
		values[i][i] = 1.0
	}

	returnsBySymbol := make(map[string][]float64, n)
	eligible := make([]int, 0, n)
	shortest := math.MaxInt32

	for i, sym := range symbols {
		if domain.IsStablecoin(sym) {
			s.log.Debug().Str("symbol", sym).Msg("Excluding stablecoin from correlation estimation")
			continue
		}
		series, ok := seriesBySymbol[sym]
		if !ok {
			continue
		}
		returns := formulas.LogReturns(series.Prices())
		if len(returns) < minReturns {
			s.log.Debug().
				Str("symbol", sym).
				Int("returns", len(returns)).
				Msg("Not enough history for correlation")
			continue
		}
		returnsBySymbol[sym] = returns
		eligible = append(eligible, i)
		if len(returns) < shortest {
			shortest = len(returns)
		}
	}

	if len(eligible) >= 2 {
		for a := 0; a < len(eligible); a++ {
			for b := a + 1; b < len(eligible); b++ {
				i, j := eligible[a], eligible[b]
				ri := tail(returnsBySymbol[symbols[i]], shortest)
				rj := tail(returnsBySymbol[symbols[j]], shortest)
				corr := clampCorrelation(formulas.Correlation(ri, rj))
				values[i][j] = corr
				values[j][i] = corr
			}
		}
	}

	m := Matrix{Symbols: append([]string{}, symbols...), Values: values}
	m.StronglyCorrelated, m.NegativelyCorrelated = classifyPairs(symbols, values)

	s.log.Debug().
		Int("symbols", n).
		Int("eligible", len(eligible)).
		Int("strong_pairs", len(m.StronglyCorrelated)).
		Int("negative_pairs", len(m.NegativelyCorrelated)).
		Msg("Built correlation matrix")

	return m
}

// classifyPairs extracts notable unordered pairs: correlations above 0.7
// (most correlated first) and below -0.3 (most negative first).
func classifyPairs(symbols []string, values [][]float64) (strong, negative []Pair) {
	for i := 0; i < len(symbols); i++ {
		for j := i + 1; j < len(symbols); j++ {
			corr := values[i][j]
			pair := Pair{Symbol1: symbols[i], Symbol2: symbols[j], Correlation: corr}
			switch {
			case corr > strongThreshold:
				strong = append(strong, pair)
			case corr < negativeThreshold:
				negative = append(negative, pair)
			}
		}
	}

	sort.Slice(strong, func(a, b int) bool {
		return math.Abs(strong[a].Correlation) > math.Abs(strong[b].Correlation)
	})
	sort.Slice(negative, func(a, b int) bool {
		return math.Abs(negative[a].Correlation) > math.Abs(negative[b].Correlation)
	})
	return strong, negative
}

// tail returns the most recent n elements of returns.
func tail(returns []float64, n int) []float64 {
	if len(returns) <= n {
		return returns
	}
	return returns[len(returns)-n:]
}

func clampCorrelation(c float64) float64 {
	if math.IsNaN(c) {
		return 0
	}
	return math.Min(1, math.Max(-1, c))
}
