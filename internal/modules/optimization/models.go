package optimization

import "errors"

// Objective selects the optimization target.
type Objective string

const (
	// ObjectiveMaxSharpe maximizes (w·mu - r_f) / sqrt(w'Σw).
	ObjectiveMaxSharpe Objective = "max_sharpe"
	// ObjectiveMinVolatility minimizes sqrt(w'Σw).
	ObjectiveMinVolatility Objective = "min_volatility"
)

// Valid reports whether the objective is a known value.
func (o Objective) Valid() bool {
	return o == ObjectiveMaxSharpe || o == ObjectiveMinVolatility
}

var (
	// ErrNotEnoughAssets is returned when fewer than two assets have
	// enough history to optimize over.
	ErrNotEnoughAssets = errors.New("optimization requires at least 2 assets with sufficient history")

	// ErrNoConvergence is returned when the solver fails to converge.
	// Distinguishable from ErrNotEnoughAssets so callers can present the
	// correct message.
	ErrNoConvergence = errors.New("optimization did not converge")

	// ErrUnknownObjective is returned for an unrecognized objective.
	ErrUnknownObjective = errors.New("unknown optimization objective")
)

// Result holds the optimal weights and the portfolio statistics they
// imply. Weights sum to 1 within 1e-4 and each lies in [0, 1].
type Result struct {
	Weights               map[string]float64 `json:"weights"`
	ExpectedReturnPct     float64            `json:"expected_return_pct"`     // annualized
	ExpectedVolatilityPct float64            `json:"expected_volatility_pct"` // annualized
	Sharpe                float64            `json:"sharpe"`
}
