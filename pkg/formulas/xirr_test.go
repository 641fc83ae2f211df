package formulas

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(offset int) time.Time {
	return time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, offset)
}

func TestXIRRSimpleAnnualGain(t *testing.T) {
	// -1000 today, +1100 in one year: money-weighted return ~10%.
	flows := []DatedAmount{
		{Date: day(0), Amount: -1000},
		{Date: day(365), Amount: 1100},
	}

	rate := XIRR(flows)
	require.NotNil(t, rate)
	assert.InDelta(t, 0.10, *rate, 1e-3)
}

func TestXIRRUnorderedFlows(t *testing.T) {
	flows := []DatedAmount{
		{Date: day(365), Amount: 1100},
		{Date: day(0), Amount: -1000},
	}

	rate := XIRR(flows)
	require.NotNil(t, rate)
	assert.InDelta(t, 0.10, *rate, 1e-3)
}

func TestXIRRMultipleContributions(t *testing.T) {
	flows := []DatedAmount{
		{Date: day(0), Amount: -1000},
		{Date: day(180), Amount: -500},
		{Date: day(365), Amount: 1700},
	}

	rate := XIRR(flows)
	require.NotNil(t, rate)
	// Gains exist, so the rate should be positive and modest.
	assert.Greater(t, *rate, 0.0)
	assert.Less(t, *rate, 1.0)
}

func TestXIRRLoss(t *testing.T) {
	flows := []DatedAmount{
		{Date: day(0), Amount: -1000},
		{Date: day(365), Amount: 700},
	}

	rate := XIRR(flows)
	require.NotNil(t, rate)
	assert.InDelta(t, -0.30, *rate, 1e-2)
}

func TestXIRRInsufficientFlows(t *testing.T) {
	assert.Nil(t, XIRR(nil))
	assert.Nil(t, XIRR([]DatedAmount{{Date: day(0), Amount: -1000}}))
}

func TestXIRRNoSolution(t *testing.T) {
	// All-positive flows have no root: NPV is positive for every rate.
	flows := []DatedAmount{
		{Date: day(0), Amount: 1000},
		{Date: day(365), Amount: 1100},
	}
	assert.Nil(t, XIRR(flows))
}
