package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/quantfolio/riskengine/internal/config"
	"github.com/quantfolio/riskengine/internal/database"
	"github.com/quantfolio/riskengine/internal/domain"
	"github.com/quantfolio/riskengine/internal/history"
	"github.com/quantfolio/riskengine/internal/holdings"
	"github.com/quantfolio/riskengine/internal/modules/analytics"
	"github.com/quantfolio/riskengine/internal/modules/correlation"
	"github.com/quantfolio/riskengine/internal/modules/optimization"
	"github.com/quantfolio/riskengine/internal/modules/rebalancing"
	"github.com/quantfolio/riskengine/internal/modules/simulation"
)

// app wires configuration, storage and the analysis services.
type app struct {
	cfg      *config.Config
	log      zerolog.Logger
	db       *database.DB
	store    *history.SQLiteStore
	provider domain.HistoryProvider
	holdings domain.HoldingsProvider

	analytics    *analytics.Service
	correlation  *correlation.Service
	simulation   *simulation.Service
	optimization *optimization.Service
	rebalancing  *rebalancing.Service
}

func newApp() (*app, error) {
	cfg, log, err := loadConfigAndLogger()
	if err != nil {
		return nil, err
	}

	db, err := database.Open(cfg.DatabasePath)
	if err != nil {
		return nil, err
	}

	store := history.NewSQLiteStore(db, log)

	return &app{
		cfg:          cfg,
		log:          log,
		db:           db,
		store:        store,
		provider:     history.NewCachedProvider(store, cfg.HistoryCacheTTL),
		holdings:     holdings.NewFileProvider(cfg.HoldingsPath),
		analytics:    analytics.NewService(cfg.RiskFreeRate, cfg.VaRConfidence, log),
		correlation:  correlation.NewService(log),
		simulation:   simulation.NewService(log),
		optimization: optimization.NewService(cfg.RiskFreeRate, log),
		rebalancing:  rebalancing.NewService(log),
	}, nil
}

func (a *app) Close() {
	if err := a.db.Close(); err != nil {
		a.log.Error().Err(err).Msg("Failed to close price database")
	}
}

// loadPortfolio fetches the holdings snapshot and the price series for
// every holding and benchmark.
func (a *app) loadPortfolio(ctx context.Context, scopeID string) ([]domain.Holding, map[string]domain.PriceSeries, error) {
	held, err := a.holdings.GetHoldings(ctx, scopeID)
	if err != nil {
		return nil, nil, err
	}

	series, err := history.Gather(ctx, a.provider, held, a.cfg.LookbackDays, a.log)
	if err != nil {
		return nil, nil, err
	}
	return held, series, nil
}

// benchmarksByClass extracts the benchmark series for each asset class
// present in the holdings.
func benchmarksByClass(held []domain.Holding, series map[string]domain.PriceSeries) map[domain.AssetClass]domain.PriceSeries {
	out := make(map[domain.AssetClass]domain.PriceSeries)
	for _, h := range held {
		if _, ok := out[h.AssetClass]; ok {
			continue
		}
		if bench, ok := series[h.AssetClass.BenchmarkSymbol()]; ok {
			out[h.AssetClass] = bench
		}
	}
	return out
}

// Report is the full analyzer output.
type Report struct {
	GeneratedAt time.Time                  `json:"generated_at"`
	Scope       string                     `json:"scope"`
	Portfolio   analytics.PortfolioMetrics `json:"portfolio"`
	Betas       analytics.BetaReport       `json:"betas"`
}

func (a *app) BuildReport(ctx context.Context, scopeID string) (*Report, error) {
	held, series, err := a.loadPortfolio(ctx, scopeID)
	if err != nil {
		return nil, err
	}

	return &Report{
		GeneratedAt: time.Now().UTC(),
		Scope:       scopeID,
		Portfolio:   a.analytics.PortfolioMetrics(held, series),
		Betas:       a.analytics.Betas(held, series, benchmarksByClass(held, series)),
	}, nil
}

func (a *app) BuildCorrelation(ctx context.Context, scopeID string) (*correlation.Matrix, error) {
	held, series, err := a.loadPortfolio(ctx, scopeID)
	if err != nil {
		return nil, err
	}

	symbols := make([]string, 0, len(held))
	for _, h := range held {
		symbols = append(symbols, h.Symbol)
	}

	matrix := a.correlation.BuildMatrix(symbols, series)
	return &matrix, nil
}

func (a *app) RunSimulation(ctx context.Context, scopeID string) (*simulation.Result, error) {
	held, series, err := a.loadPortfolio(ctx, scopeID)
	if err != nil {
		return nil, err
	}

	result := a.simulation.Run(held, series, a.cfg.MCHorizonDays, a.cfg.MCSimulations, a.cfg.MCSeed)
	return &result, nil
}

func (a *app) RunOptimization(ctx context.Context, scopeID string, objective optimization.Objective) (*optimization.Result, error) {
	held, series, err := a.loadPortfolio(ctx, scopeID)
	if err != nil {
		return nil, err
	}
	return a.optimization.Optimize(held, series, objective)
}

func (a *app) PlanRebalance(ctx context.Context, scopeID string, targets map[string]float64) ([]rebalancing.Order, error) {
	held, series, err := a.loadPortfolio(ctx, scopeID)
	if err != nil {
		return nil, err
	}

	current := a.analytics.PortfolioMetrics(held, series)
	return a.rebalancing.Plan(current, targets), nil
}

// priceImport is the on-disk shape accepted by import-prices: a map of
// symbol to dated closes.
type priceImport map[string][]struct {
	Date  string  `json:"date"` // YYYY-MM-DD
	Close float64 `json:"close"`
}

func (a *app) ImportPrices(ctx context.Context, path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("failed to read price file: %w", err)
	}

	var imp priceImport
	if err := json.Unmarshal(data, &imp); err != nil {
		return 0, fmt.Errorf("failed to parse price file %s: %w", path, err)
	}

	total := 0
	for symbol, rows := range imp {
		points := make([]domain.PricePoint, 0, len(rows))
		for _, row := range rows {
			ts, err := time.Parse("2006-01-02", row.Date)
			if err != nil {
				return total, fmt.Errorf("bad date %q for %s: %w", row.Date, symbol, err)
			}
			points = append(points, domain.PricePoint{Timestamp: ts, Price: row.Close})
		}
		if err := a.store.SavePrices(ctx, symbol, points); err != nil {
			return total, err
		}
		total += len(points)
	}
	return total, nil
}
