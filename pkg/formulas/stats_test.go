package formulas

import (
	"math"
	"testing"
)

func TestLogReturns(t *testing.T) {
	tests := []struct {
		name   string
		prices []float64
		want   []float64
	}{
		{
			name:   "empty prices",
			prices: []float64{},
			want:   []float64{},
		},
		{
			name:   "single price",
			prices: []float64{100},
			want:   []float64{},
		},
		{
			name:   "non-positive prices filtered",
			prices: []float64{100, 0, -5, 110},
			want:   []float64{math.Log(1.1)},
		},
		{
			name:   "only invalid prices left",
			prices: []float64{0, -1, 100},
			want:   []float64{},
		},
		{
			name:   "simple sequence",
			prices: []float64{100, 110, 99},
			want:   []float64{math.Log(1.1), math.Log(0.9)},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := LogReturns(tt.prices)
			if len(got) != len(tt.want) {
				t.Fatalf("LogReturns() length = %d, want %d", len(got), len(tt.want))
			}
			for i := range got {
				if math.Abs(got[i]-tt.want[i]) > 1e-12 {
					t.Errorf("LogReturns()[%d] = %v, want %v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestAnnualizedVolatility(t *testing.T) {
	// Volatility is non-negative for any series and zero for a flat one.
	flat := LogReturns([]float64{100, 100, 100, 100})
	if v := AnnualizedVolatility(flat, 252); v != 0 {
		t.Errorf("flat series volatility = %v, want 0", v)
	}

	mixed := []float64{0.01, -0.01, 0.02, -0.02, 0.015}
	if v := AnnualizedVolatility(mixed, 252); v <= 0 {
		t.Errorf("mixed series volatility = %v, want > 0", v)
	}
}

func TestDownsideDeviation(t *testing.T) {
	allPositive := []float64{0.01, 0.02, 0.03}
	if d := DownsideDeviation(allPositive, 0, 252); d != 0 {
		t.Errorf("all-positive downside deviation = %v, want 0", d)
	}

	mixed := []float64{0.01, -0.02, 0.01, -0.01}
	d := DownsideDeviation(mixed, 0, 252)
	if d <= 0 {
		t.Errorf("mixed downside deviation = %v, want > 0", d)
	}
	// sqrt(mean([0.02^2, 0.01^2])) over all 4 observations, annualized.
	want := math.Sqrt((0.02*0.02+0.01*0.01)/4) * math.Sqrt(252) * 100
	if math.Abs(d-want) > 1e-9 {
		t.Errorf("downside deviation = %v, want %v", d, want)
	}
}

func TestMaxDrawdown(t *testing.T) {
	tests := []struct {
		name      string
		prices    []float64
		want      float64
		tolerance float64
	}{
		{
			name:   "too short",
			prices: []float64{100},
			want:   0,
		},
		{
			name:   "flat series",
			prices: []float64{100, 100, 100},
			want:   0,
		},
		{
			name:      "single dip",
			prices:    []float64{100, 120, 90, 110},
			want:      -25, // from 120 down to 90
			tolerance: 1e-9,
		},
		{
			name:   "monotone up",
			prices: []float64{100, 105, 110},
			want:   0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MaxDrawdown(tt.prices)
			if math.Abs(got-tt.want) > tt.tolerance {
				t.Errorf("MaxDrawdown() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDailyReturnPct(t *testing.T) {
	if r := DailyReturnPct([]float64{100}); r != 0 {
		t.Errorf("single point daily return = %v, want 0", r)
	}
	if r := DailyReturnPct([]float64{100, 103}); math.Abs(r-3) > 1e-9 {
		t.Errorf("daily return = %v, want 3", r)
	}
}

func TestPercentile(t *testing.T) {
	values := []float64{1, 2, 3, 4, 5}
	if p := Percentile(values, 50); math.Abs(p-3) > 1e-9 {
		t.Errorf("median = %v, want 3", p)
	}
	if p := Percentile(values, 0); math.Abs(p-1) > 1e-9 {
		t.Errorf("p0 = %v, want 1", p)
	}
	if p := Percentile(values, 100); math.Abs(p-5) > 1e-9 {
		t.Errorf("p100 = %v, want 5", p)
	}
}

func TestCalculateAnnualReturn(t *testing.T) {
	if r := CalculateAnnualReturn(nil, 252); r != 0 {
		t.Errorf("empty returns = %v, want 0", r)
	}

	// One year of 0.1% daily returns compounds to roughly 28.6%.
	returns := make([]float64, 252)
	for i := range returns {
		returns[i] = 0.001
	}
	r := CalculateAnnualReturn(returns, 252)
	if math.Abs(r-0.286) > 0.01 {
		t.Errorf("CAGR = %v, want ~0.286", r)
	}
}
