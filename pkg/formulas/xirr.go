package formulas

import (
	"math"
	"sort"
	"time"
)

const (
	xirrLowerBound    = -0.99
	xirrUpperBound    = 10.0
	xirrMaxIterations = 200
	xirrTolerance     = 1e-7
	daysPerYear       = 365.25
)

// DatedAmount is a signed cash movement at a point in time. Negative
// amounts are cash paid out, positive amounts cash received.
type DatedAmount struct {
	Date   time.Time
	Amount float64
}

// XIRR solves for the annualized money-weighted rate of return of an
// irregular cash-flow schedule. Flows may be supplied in any order.
//
// NPV(rate) = sum(amount_i / (1+rate)^(days_i/365.25)) with days counted
// from the earliest flow. The root is searched in [-0.99, 10] with
// bisection over a sign-change bracket; if no bracket exists, a bounded
// Newton iteration from 0.10 is attempted. Returns nil when no rate can
// be determined; some schedules have no real solution in range.
func XIRR(flows []DatedAmount) *float64 {
	if len(flows) < 2 {
		return nil
	}

	sorted := make([]DatedAmount, len(flows))
	copy(sorted, flows)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Date.Before(sorted[j].Date) })

	t0 := sorted[0].Date
	years := make([]float64, len(sorted))
	amounts := make([]float64, len(sorted))
	for i, f := range sorted {
		years[i] = f.Date.Sub(t0).Hours() / 24 / daysPerYear
		amounts[i] = f.Amount
	}

	npv := func(rate float64) float64 {
		var sum float64
		for i := range amounts {
			sum += amounts[i] / math.Pow(1+rate, years[i])
		}
		return sum
	}

	if rate, ok := bisectRoot(npv, xirrLowerBound, xirrUpperBound); ok {
		return &rate
	}
	if rate, ok := newtonRoot(npv, years, amounts, 0.10); ok {
		return &rate
	}
	return nil
}

// bisectRoot scans [lo, hi] for a sign change and bisects it.
func bisectRoot(f func(float64) float64, lo, hi float64) (float64, bool) {
	const steps = 100
	step := (hi - lo) / steps

	a := lo
	fa := f(a)
	for i := 1; i <= steps; i++ {
		b := lo + float64(i)*step
		fb := f(b)
		if fa*fb <= 0 && !math.IsNaN(fa) && !math.IsNaN(fb) {
			// Bracket found, bisect it.
			for iter := 0; iter < xirrMaxIterations; iter++ {
				mid := (a + b) / 2
				fm := f(mid)
				if math.Abs(fm) < xirrTolerance || (b-a)/2 < xirrTolerance {
					return mid, true
				}
				if fa*fm < 0 {
					b = mid
				} else {
					a, fa = mid, fm
				}
			}
			return (a + b) / 2, true
		}
		a, fa = b, fb
	}
	return 0, false
}

// newtonRoot runs a bounded Newton-Raphson iteration using the analytic
// NPV derivative.
func newtonRoot(npv func(float64) float64, years, amounts []float64, guess float64) (float64, bool) {
	rate := guess
	for iter := 0; iter < xirrMaxIterations; iter++ {
		v := npv(rate)
		if math.Abs(v) < xirrTolerance {
			if rate < xirrLowerBound || rate > xirrUpperBound || math.IsNaN(rate) {
				return 0, false
			}
			return rate, true
		}

		var deriv float64
		for i := range amounts {
			if years[i] == 0 {
				continue
			}
			deriv -= amounts[i] * years[i] / math.Pow(1+rate, years[i]+1)
		}
		if deriv == 0 || math.IsNaN(deriv) {
			return 0, false
		}

		next := rate - v/deriv
		if math.IsNaN(next) || next <= -1 {
			return 0, false
		}
		if math.Abs(next-rate) < xirrTolerance {
			if next < xirrLowerBound || next > xirrUpperBound {
				return 0, false
			}
			return next, true
		}
		rate = next
	}
	return 0, false
}
