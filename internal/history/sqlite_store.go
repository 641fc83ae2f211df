// Package history loads, caches and gathers historical price series.
package history

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/quantfolio/riskengine/internal/database"
	"github.com/quantfolio/riskengine/internal/domain"
)

const dateLayout = "2006-01-02"

// SQLiteStore reads daily close prices from the daily_prices table.
type SQLiteStore struct {
	db  *database.DB
	log zerolog.Logger
}

// NewSQLiteStore creates a price store backed by the given database.
func NewSQLiteStore(db *database.DB, log zerolog.Logger) *SQLiteStore {
	return &SQLiteStore{
		db:  db,
		log: log.With().Str("component", "history_store").Logger(),
	}
}

// GetHistory returns the close series for one symbol covering the last
// lookbackDays days, oldest first. Symbols without any rows yield an
// empty series, not an error.
func (s *SQLiteStore) GetHistory(ctx context.Context, symbol string, class domain.AssetClass, lookbackDays int) (domain.PriceSeries, error) {
	series := domain.PriceSeries{Symbol: symbol, AssetClass: class}

	since := time.Now().UTC().AddDate(0, 0, -lookbackDays).Format(dateLayout)

	rows, err := s.db.Conn().QueryContext(ctx,
		`SELECT date, close FROM daily_prices WHERE symbol = ? AND date >= ? ORDER BY date ASC`,
		symbol, since)
	if err != nil {
		return series, fmt.Errorf("failed to query price history for %s: %w", symbol, err)
	}
	defer rows.Close()

	for rows.Next() {
		var dateStr string
		var closePrice float64
		if err := rows.Scan(&dateStr, &closePrice); err != nil {
			return series, fmt.Errorf("failed to scan price row for %s: %w", symbol, err)
		}
		ts, err := time.Parse(dateLayout, dateStr)
		if err != nil {
			s.log.Warn().Str("symbol", symbol).Str("date", dateStr).Msg("Skipping row with unparseable date")
			continue
		}
		series.Points = append(series.Points, domain.PricePoint{Timestamp: ts, Price: closePrice})
	}
	if err := rows.Err(); err != nil {
		return series, fmt.Errorf("failed to read price history for %s: %w", symbol, err)
	}

	series.Points = fillMissing(series.Points)

	s.log.Debug().Str("symbol", symbol).Int("points", len(series.Points)).Msg("Loaded price history")
	return series, nil
}

// SavePrices upserts daily close prices for a symbol. Dates are stored
// as YYYY-MM-DD, one row per trading day.
func (s *SQLiteStore) SavePrices(ctx context.Context, symbol string, points []domain.PricePoint) error {
	tx, err := s.db.Conn().BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin price insert for %s: %w", symbol, err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO daily_prices (symbol, date, close) VALUES (?, ?, ?)
		 ON CONFLICT(symbol, date) DO UPDATE SET close = excluded.close`)
	if err != nil {
		return fmt.Errorf("failed to prepare price insert for %s: %w", symbol, err)
	}
	defer stmt.Close()

	for _, p := range points {
		if _, err := stmt.ExecContext(ctx, symbol, p.Timestamp.UTC().Format(dateLayout), p.Price); err != nil {
			return fmt.Errorf("failed to insert price for %s: %w", symbol, err)
		}
	}

	return tx.Commit()
}

// fillMissing repairs non-positive closes. Interior and trailing gaps are
// forward-filled from the last valid close, leading gaps are back-filled
// from the first valid one. A series with no valid close is dropped.
func fillMissing(points []domain.PricePoint) []domain.PricePoint {
	firstValid := -1
	for i, p := range points {
		if p.Price > 0 {
			firstValid = i
			break
		}
	}
	if firstValid == -1 {
		return nil
	}

	filled := make([]domain.PricePoint, len(points))
	copy(filled, points)

	for i := 0; i < firstValid; i++ {
		filled[i].Price = filled[firstValid].Price
	}
	for i := firstValid + 1; i < len(filled); i++ {
		if filled[i].Price <= 0 {
			filled[i].Price = filled[i-1].Price
		}
	}

	return filled
}
