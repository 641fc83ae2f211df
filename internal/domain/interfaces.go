package domain

import "context"

// HistoryProvider supplies historical price series per symbol.
// Implementations may return an empty series when no history exists;
// callers must tolerate that. Concurrent calls for the same symbol and
// window must be deduplicated by the implementation (single-flight).
type HistoryProvider interface {
	GetHistory(ctx context.Context, symbol string, class AssetClass, lookbackDays int) (PriceSeries, error)
}

// HoldingsProvider supplies the current holdings snapshot for a scope
// (an account or portfolio identifier).
type HoldingsProvider interface {
	GetHoldings(ctx context.Context, scopeID string) ([]Holding, error)
}
