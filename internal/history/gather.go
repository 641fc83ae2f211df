package history

import (
	"context"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/quantfolio/riskengine/internal/domain"
)

// maxConcurrentFetches bounds parallel history loads so a large
// portfolio does not exhaust the connection pool.
const maxConcurrentFetches = 8

// Gather fetches price series for every holding plus the benchmark of
// each asset class present, concurrently. Symbols whose fetch fails or
// returns no data are simply absent from the result map; downstream
// services record them as exclusions.
func Gather(ctx context.Context, provider domain.HistoryProvider, holdings []domain.Holding, lookbackDays int, log zerolog.Logger) (map[string]domain.PriceSeries, error) {
	type request struct {
		symbol string
		class  domain.AssetClass
	}

	seen := make(map[string]bool)
	var requests []request
	add := func(symbol string, class domain.AssetClass) {
		if symbol == "" || seen[symbol] {
			return
		}
		seen[symbol] = true
		requests = append(requests, request{symbol: symbol, class: class})
	}

	for _, h := range holdings {
		add(h.Symbol, h.AssetClass)
	}
	for _, h := range holdings {
		// Benchmarks inherit the class they benchmark so the
		// annualization factor lines up.
		add(h.AssetClass.BenchmarkSymbol(), h.AssetClass)
	}

	results := make(map[string]domain.PriceSeries, len(requests))
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentFetches)

	for _, req := range requests {
		req := req
		g.Go(func() error {
			series, err := provider.GetHistory(gctx, req.symbol, req.class, lookbackDays)
			if err != nil {
				// Context cancellation aborts the whole gather;
				// a per-symbol failure only drops that symbol.
				if gctx.Err() != nil {
					return gctx.Err()
				}
				log.Warn().Err(err).Str("symbol", req.symbol).Msg("Failed to fetch price history")
				return nil
			}
			if series.Empty() {
				return nil
			}
			mu.Lock()
			results[req.symbol] = series
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return results, nil
}
