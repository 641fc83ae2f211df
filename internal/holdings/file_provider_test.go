package holdings

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantfolio/riskengine/internal/domain"
)

func writeSnapshot(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "holdings.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestFileProviderFlatList(t *testing.T) {
	path := writeSnapshot(t, `{
		"holdings": [
			{"symbol": "AAPL", "asset_class": "stock", "quantity": 10, "average_cost": 150},
			{"symbol": "BTC-USD", "asset_class": "crypto", "quantity": 0.5, "average_cost": 40000}
		]
	}`)

	got, err := NewFileProvider(path).GetHoldings(context.Background(), "main")
	require.NoError(t, err)

	require.Len(t, got, 2)
	assert.Equal(t, "AAPL", got[0].Symbol)
	assert.Equal(t, domain.AssetClassCrypto, got[1].AssetClass)
}

func TestFileProviderScoped(t *testing.T) {
	path := writeSnapshot(t, `{
		"scopes": {
			"retirement": [{"symbol": "SPY", "asset_class": "etf", "quantity": 20, "average_cost": 380}],
			"trading":    [{"symbol": "TSLA", "asset_class": "stock", "quantity": 5, "average_cost": 200}]
		}
	}`)

	provider := NewFileProvider(path)

	got, err := provider.GetHoldings(context.Background(), "retirement")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "SPY", got[0].Symbol)

	_, err = provider.GetHoldings(context.Background(), "missing")
	assert.Error(t, err)
}

func TestFileProviderSkipsZeroQuantity(t *testing.T) {
	path := writeSnapshot(t, `{
		"holdings": [
			{"symbol": "AAPL", "asset_class": "stock", "quantity": 0, "average_cost": 150},
			{"symbol": "MSFT", "asset_class": "stock", "quantity": 1, "average_cost": 300}
		]
	}`)

	got, err := NewFileProvider(path).GetHoldings(context.Background(), "main")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "MSFT", got[0].Symbol)
}

func TestFileProviderRejectsNegatives(t *testing.T) {
	path := writeSnapshot(t, `{
		"holdings": [{"symbol": "AAPL", "asset_class": "stock", "quantity": -1, "average_cost": 150}]
	}`)

	_, err := NewFileProvider(path).GetHoldings(context.Background(), "main")
	assert.Error(t, err)
}

func TestFileProviderDefaultsAssetClass(t *testing.T) {
	path := writeSnapshot(t, `{
		"holdings": [{"symbol": "GLD", "quantity": 2, "average_cost": 180}]
	}`)

	got, err := NewFileProvider(path).GetHoldings(context.Background(), "main")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, domain.AssetClassOther, got[0].AssetClass)
}
