package simulation

// Result summarizes a Monte Carlo run. All return figures are total
// returns over the horizon, in percent. A zero-filled Result with
// Simulations == 0 signals that no eligible assets existed.
type Result struct {
	Percentiles       map[string]float64 `json:"percentiles"` // p5, p25, p50, p75, p95
	ExpectedReturnPct float64            `json:"expected_return_pct"`
	ProbPositive      float64            `json:"prob_positive"`
	ProbLossOver10Pct float64            `json:"prob_loss_over_10pct"`
	Simulations       int                `json:"simulations"`
	HorizonDays       int                `json:"horizon_days"`
}

func emptyResult(horizonDays int) Result {
	return Result{
		Percentiles: map[string]float64{"p5": 0, "p25": 0, "p50": 0, "p75": 0, "p95": 0},
		HorizonDays: horizonDays,
	}
}
