// Package config provides configuration management functionality.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration.
type Config struct {
	DataDir      string // Base directory for databases, always absolute
	DatabasePath string // Price history database (defaults to <DataDir>/prices.db)
	HoldingsPath string // Holdings snapshot JSON file
	LogLevel     string
	DevMode      bool

	// Analytics parameters
	RiskFreeRate  float64 // Annual risk-free rate as a fraction, e.g. 0.035
	VaRConfidence float64 // Confidence level for VaR/CVaR, e.g. 0.95
	LookbackDays  int     // History window used for all metrics

	// Monte Carlo parameters
	MCHorizonDays   int
	MCSimulations   int
	MCSeed          uint64
	HistoryCacheTTL time.Duration
}

// Hard caps so a misconfigured environment cannot trigger runaway
// simulation work.
const (
	maxSimulations = 100000
	maxHorizonDays = 3650
)

// Load reads configuration from environment variables, with .env
// support for local development.
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	dataDir := getEnv("RISKENGINE_DATA_DIR", "")
	if dataDir == "" {
		dataDir = "./data"
	}

	absDataDir, err := filepath.Abs(dataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve data directory path: %w", err)
	}
	if err := os.MkdirAll(absDataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	cfg := &Config{
		DataDir:         absDataDir,
		DatabasePath:    getEnv("DATABASE_PATH", filepath.Join(absDataDir, "prices.db")),
		HoldingsPath:    getEnv("HOLDINGS_PATH", filepath.Join(absDataDir, "holdings.json")),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		DevMode:         getEnvAsBool("DEV_MODE", false),
		RiskFreeRate:    getEnvAsFloat("RISK_FREE_RATE", 0.035),
		VaRConfidence:   getEnvAsFloat("VAR_CONFIDENCE", 0.95),
		LookbackDays:    getEnvAsInt("LOOKBACK_DAYS", 365),
		MCHorizonDays:   getEnvAsInt("MC_HORIZON_DAYS", 252),
		MCSimulations:   getEnvAsInt("MC_SIMULATIONS", 10000),
		MCSeed:          uint64(getEnvAsInt("MC_SEED", 42)),
		HistoryCacheTTL: time.Duration(getEnvAsInt("HISTORY_CACHE_TTL_SECONDS", 300)) * time.Second,
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks configuration bounds and clamps soft limits.
func (c *Config) Validate() error {
	if c.RiskFreeRate < 0 || c.RiskFreeRate >= 1 {
		return fmt.Errorf("RISK_FREE_RATE must be in [0, 1), got %v", c.RiskFreeRate)
	}
	if c.VaRConfidence <= 0.5 || c.VaRConfidence >= 1 {
		return fmt.Errorf("VAR_CONFIDENCE must be in (0.5, 1), got %v", c.VaRConfidence)
	}
	if c.LookbackDays < 30 {
		return fmt.Errorf("LOOKBACK_DAYS must be at least 30, got %d", c.LookbackDays)
	}
	if c.MCHorizonDays < 1 {
		return fmt.Errorf("MC_HORIZON_DAYS must be positive, got %d", c.MCHorizonDays)
	}
	if c.MCSimulations < 1 {
		return fmt.Errorf("MC_SIMULATIONS must be positive, got %d", c.MCSimulations)
	}
	if c.MCSimulations > maxSimulations {
		c.MCSimulations = maxSimulations
	}
	if c.MCHorizonDays > maxHorizonDays {
		c.MCHorizonDays = maxHorizonDays
	}
	return nil
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt retrieves an environment variable as an integer or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsFloat retrieves an environment variable as a float or returns a default value
func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsBool retrieves an environment variable as a boolean or returns a default value
func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}
