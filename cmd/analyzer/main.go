// Package main is the entry point for the riskengine portfolio analyzer.
// It loads a holdings snapshot and local price history, runs the
// requested analysis and prints the result as JSON on stdout.
package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/quantfolio/riskengine/internal/config"
	"github.com/quantfolio/riskengine/internal/modules/optimization"
	"github.com/quantfolio/riskengine/pkg/logger"
)

var (
	scopeID     string
	objective   string
	targetsPath string
	horizonDays int
	simulations int
	seed        uint64
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "analyzer",
		Short: "Portfolio risk and analytics engine",
		Long: `analyzer computes risk and performance metrics for a portfolio:
volatility, drawdown, VaR/CVaR, Sharpe/Sortino/Calmar, correlation,
Monte Carlo projections, mean-variance optimization and rebalancing.`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&scopeID, "scope", "main", "Holdings scope (account/portfolio identifier)")

	rootCmd.AddCommand(reportCmd())
	rootCmd.AddCommand(correlationCmd())
	rootCmd.AddCommand(simulateCmd())
	rootCmd.AddCommand(optimizeCmd())
	rootCmd.AddCommand(rebalanceCmd())
	rootCmd.AddCommand(importPricesCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func reportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "report",
		Short: "Full portfolio report: metrics, per-asset analytics, betas",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp()
			if err != nil {
				return err
			}
			defer app.Close()

			report, err := app.BuildReport(cmd.Context(), scopeID)
			if err != nil {
				return err
			}
			return printJSON(report)
		},
	}
}

func correlationCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "correlation",
		Short: "Pairwise correlation matrix of the held assets",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp()
			if err != nil {
				return err
			}
			defer app.Close()

			matrix, err := app.BuildCorrelation(cmd.Context(), scopeID)
			if err != nil {
				return err
			}
			return printJSON(matrix)
		},
	}
}

func simulateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Correlated Monte Carlo projection of portfolio value",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp()
			if err != nil {
				return err
			}
			defer app.Close()

			if horizonDays > 0 {
				app.cfg.MCHorizonDays = horizonDays
			}
			if simulations > 0 {
				app.cfg.MCSimulations = simulations
			}
			if cmd.Flags().Changed("seed") {
				app.cfg.MCSeed = seed
			}
			if err := app.cfg.Validate(); err != nil {
				return err
			}

			result, err := app.RunSimulation(cmd.Context(), scopeID)
			if err != nil {
				return err
			}
			return printJSON(result)
		},
	}
	cmd.Flags().IntVar(&horizonDays, "horizon", 0, "Projection horizon in days (default from config)")
	cmd.Flags().IntVar(&simulations, "simulations", 0, "Number of Monte Carlo paths (default from config)")
	cmd.Flags().Uint64Var(&seed, "seed", 0, "Random seed (default from config)")
	return cmd
}

func optimizeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "optimize",
		Short: "Mean-variance optimal weights for the held assets",
		RunE: func(cmd *cobra.Command, args []string) error {
			obj := optimization.Objective(objective)
			if !obj.Valid() {
				return fmt.Errorf("unknown objective %q (use max_sharpe or min_volatility)", objective)
			}

			app, err := newApp()
			if err != nil {
				return err
			}
			defer app.Close()

			result, err := app.RunOptimization(cmd.Context(), scopeID, obj)
			if err != nil {
				return err
			}
			return printJSON(result)
		},
	}
	cmd.Flags().StringVar(&objective, "objective", "max_sharpe", "Optimization objective: max_sharpe or min_volatility")
	return cmd
}

func rebalanceCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rebalance",
		Short: "Orders needed to move the portfolio to target weights",
		RunE: func(cmd *cobra.Command, args []string) error {
			if targetsPath == "" {
				return fmt.Errorf("--targets is required")
			}
			targets, err := loadTargets(targetsPath)
			if err != nil {
				return err
			}

			app, err := newApp()
			if err != nil {
				return err
			}
			defer app.Close()

			orders, err := app.PlanRebalance(cmd.Context(), scopeID, targets)
			if err != nil {
				return err
			}
			return printJSON(orders)
		},
	}
	cmd.Flags().StringVar(&targetsPath, "targets", "", "JSON file mapping symbol to target weight in percent")
	return cmd
}

func importPricesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import-prices <file>",
		Short: "Import daily close prices from a JSON file into the database",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp()
			if err != nil {
				return err
			}
			defer app.Close()

			count, err := app.ImportPrices(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			app.log.Info().Int("rows", count).Msg("Price import complete")
			return nil
		},
	}
}

// loadTargets reads a symbol-to-percent map, e.g. {"AAPL": 60, "BND": 40}.
func loadTargets(path string) (map[string]float64, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read targets file: %w", err)
	}
	var targets map[string]float64
	if err := json.Unmarshal(data, &targets); err != nil {
		return nil, fmt.Errorf("failed to parse targets file %s: %w", path, err)
	}
	return targets, nil
}

func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func loadConfigAndLogger() (*config.Config, zerolog.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		fallbackLog := logger.New(logger.Config{Level: "info", Pretty: true})
		fallbackLog.Error().Err(err).Msg("Failed to load configuration")
		return nil, fallbackLog, err
	}

	log := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Pretty: cfg.DevMode,
	})
	return cfg, log, nil
}
