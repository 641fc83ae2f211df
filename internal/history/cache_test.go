package history

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantfolio/riskengine/internal/domain"
)

// fakeProvider counts fetches and can simulate slow lookups.
type fakeProvider struct {
	calls int64
	delay time.Duration
	data  map[string]domain.PriceSeries
}

func (f *fakeProvider) GetHistory(ctx context.Context, symbol string, class domain.AssetClass, lookbackDays int) (domain.PriceSeries, error) {
	atomic.AddInt64(&f.calls, 1)
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	return f.data[symbol], nil
}

func seriesOf(symbol string, prices ...float64) domain.PriceSeries {
	s := domain.PriceSeries{Symbol: symbol, AssetClass: domain.AssetClassStock}
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, p := range prices {
		s.Points = append(s.Points, domain.PricePoint{Timestamp: base.AddDate(0, 0, i), Price: p})
	}
	return s
}

func TestCachedProviderServesFromCache(t *testing.T) {
	inner := &fakeProvider{data: map[string]domain.PriceSeries{
		"AAPL": seriesOf("AAPL", 100, 101, 102),
	}}
	cached := NewCachedProvider(inner, time.Hour)

	first, err := cached.GetHistory(context.Background(), "AAPL", domain.AssetClassStock, 365)
	require.NoError(t, err)
	second, err := cached.GetHistory(context.Background(), "AAPL", domain.AssetClassStock, 365)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, int64(1), atomic.LoadInt64(&inner.calls))
}

func TestCachedProviderExpiry(t *testing.T) {
	inner := &fakeProvider{data: map[string]domain.PriceSeries{
		"AAPL": seriesOf("AAPL", 100, 101),
	}}
	cached := NewCachedProvider(inner, time.Minute)

	clock := time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)
	cached.now = func() time.Time { return clock }

	_, err := cached.GetHistory(context.Background(), "AAPL", domain.AssetClassStock, 365)
	require.NoError(t, err)

	clock = clock.Add(2 * time.Minute)

	_, err = cached.GetHistory(context.Background(), "AAPL", domain.AssetClassStock, 365)
	require.NoError(t, err)

	assert.Equal(t, int64(2), atomic.LoadInt64(&inner.calls))
}

func TestCachedProviderDistinctWindows(t *testing.T) {
	inner := &fakeProvider{data: map[string]domain.PriceSeries{
		"AAPL": seriesOf("AAPL", 100, 101),
	}}
	cached := NewCachedProvider(inner, time.Hour)

	_, err := cached.GetHistory(context.Background(), "AAPL", domain.AssetClassStock, 365)
	require.NoError(t, err)
	_, err = cached.GetHistory(context.Background(), "AAPL", domain.AssetClassStock, 90)
	require.NoError(t, err)

	assert.Equal(t, int64(2), atomic.LoadInt64(&inner.calls))
}

func TestCachedProviderSingleFlight(t *testing.T) {
	inner := &fakeProvider{
		delay: 20 * time.Millisecond,
		data: map[string]domain.PriceSeries{
			"AAPL": seriesOf("AAPL", 100, 101, 102),
		},
	}
	cached := NewCachedProvider(inner, time.Hour)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := cached.GetHistory(context.Background(), "AAPL", domain.AssetClassStock, 365)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(1), atomic.LoadInt64(&inner.calls))
}
