package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("RISKENGINE_DATA_DIR", t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 0.035, cfg.RiskFreeRate)
	assert.Equal(t, 0.95, cfg.VaRConfidence)
	assert.Equal(t, 365, cfg.LookbackDays)
	assert.Equal(t, 252, cfg.MCHorizonDays)
	assert.Equal(t, 10000, cfg.MCSimulations)
	assert.Equal(t, uint64(42), cfg.MCSeed)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("RISKENGINE_DATA_DIR", t.TempDir())
	t.Setenv("RISK_FREE_RATE", "0.05")
	t.Setenv("VAR_CONFIDENCE", "0.99")
	t.Setenv("MC_SIMULATIONS", "500")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 0.05, cfg.RiskFreeRate)
	assert.Equal(t, 0.99, cfg.VaRConfidence)
	assert.Equal(t, 500, cfg.MCSimulations)
}

func TestValidateRejectsBadConfidence(t *testing.T) {
	cfg := &Config{
		RiskFreeRate:  0.03,
		VaRConfidence: 1.5,
		LookbackDays:  365,
		MCHorizonDays: 252,
		MCSimulations: 1000,
	}
	assert.Error(t, cfg.Validate())
}

func TestValidateClampsSimulations(t *testing.T) {
	cfg := &Config{
		RiskFreeRate:  0.03,
		VaRConfidence: 0.95,
		LookbackDays:  365,
		MCHorizonDays: 252,
		MCSimulations: 10_000_000,
	}
	require.NoError(t, cfg.Validate())
	assert.Equal(t, maxSimulations, cfg.MCSimulations)
}
