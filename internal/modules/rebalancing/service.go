// Package rebalancing diffs the current allocation against target
// weights and produces buy/sell/hold orders.
package rebalancing

import (
	"math"
	"sort"

	"github.com/rs/zerolog"

	"github.com/quantfolio/riskengine/internal/modules/analytics"
)

// Action is the side of a rebalancing order.
type Action string

const (
	ActionBuy  Action = "buy"
	ActionSell Action = "sell"
	ActionHold Action = "hold"
)

// actionThreshold is the fraction of total portfolio value below which a
// weight difference is not worth trading (0.5%).
const actionThreshold = 0.005

// Order is a single rebalancing instruction for one symbol. Weights are
// percentages, values in the portfolio's reporting currency.
type Order struct {
	Symbol        string  `json:"symbol"`
	CurrentWeight float64 `json:"current_weight"`
	TargetWeight  float64 `json:"target_weight"`
	DiffWeight    float64 `json:"diff_weight"`
	CurrentValue  float64 `json:"current_value"`
	TargetValue   float64 `json:"target_value"`
	DiffValue     float64 `json:"diff_value"`
	Action        Action  `json:"action"`
}

// Service plans rebalancing orders.
type Service struct {
	log zerolog.Logger
}

// NewService creates a new rebalancing service.
func NewService(log zerolog.Logger) *Service {
	return &Service{
		log: log.With().Str("component", "rebalancing").Logger(),
	}
}

// Plan produces one order per symbol appearing in either the current
// metrics or the target weights (percentages; the caller validates that
// targets sum to ~100). Orders are sorted by absolute value difference,
// largest first.
func (s *Service) Plan(current analytics.PortfolioMetrics, targetWeights map[string]float64) []Order {
	totalValue := current.TotalValue

	currentBySymbol := make(map[string]analytics.AssetMetrics, len(current.Assets))
	for _, a := range current.Assets {
		currentBySymbol[a.Symbol] = a
	}

	symbols := make(map[string]bool, len(targetWeights)+len(current.Assets))
	for sym := range targetWeights {
		symbols[sym] = true
	}
	for sym := range currentBySymbol {
		symbols[sym] = true
	}

	orders := make([]Order, 0, len(symbols))
	for sym := range symbols {
		asset := currentBySymbol[sym]
		targetWeight := targetWeights[sym]
		targetValue := totalValue * targetWeight / 100
		diffValue := targetValue - asset.CurrentValue

		action := ActionHold
		if diffValue > actionThreshold*totalValue {
			action = ActionBuy
		} else if diffValue < -actionThreshold*totalValue {
			action = ActionSell
		}

		orders = append(orders, Order{
			Symbol:        sym,
			CurrentWeight: asset.Weight,
			TargetWeight:  targetWeight,
			DiffWeight:    targetWeight - asset.Weight,
			CurrentValue:  asset.CurrentValue,
			TargetValue:   targetValue,
			DiffValue:     diffValue,
			Action:        action,
		})
	}

	sort.Slice(orders, func(i, j int) bool {
		return math.Abs(orders[i].DiffValue) > math.Abs(orders[j].DiffValue)
	})

	s.log.Debug().
		Int("orders", len(orders)).
		Float64("total_value", totalValue).
		Msg("Planned rebalancing orders")

	return orders
}
