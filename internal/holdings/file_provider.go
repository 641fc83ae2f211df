// Package holdings loads portfolio holdings snapshots.
package holdings

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/quantfolio/riskengine/internal/domain"
)

// snapshot is the on-disk shape of a holdings file: either a flat list
// applying to every scope, or a map of scope ID to list.
type snapshot struct {
	Holdings []domain.Holding            `json:"holdings,omitempty"`
	Scopes   map[string][]domain.Holding `json:"scopes,omitempty"`
}

// FileProvider reads holdings from a JSON snapshot file on every call,
// so an updated file is picked up without a restart.
type FileProvider struct {
	path string
}

// NewFileProvider creates a provider reading from the given JSON file.
func NewFileProvider(path string) *FileProvider {
	return &FileProvider{path: path}
}

// GetHoldings returns the holdings for scopeID. A flat file ignores the
// scope; a scoped file returns an error for unknown scopes.
func (p *FileProvider) GetHoldings(ctx context.Context, scopeID string) ([]domain.Holding, error) {
	data, err := os.ReadFile(p.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read holdings file: %w", err)
	}

	var snap snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("failed to parse holdings file %s: %w", p.path, err)
	}

	list := snap.Holdings
	if snap.Scopes != nil {
		scoped, ok := snap.Scopes[scopeID]
		if !ok {
			return nil, fmt.Errorf("unknown scope %q in holdings file %s", scopeID, p.path)
		}
		list = scoped
	}

	return validate(list)
}

func validate(list []domain.Holding) ([]domain.Holding, error) {
	out := make([]domain.Holding, 0, len(list))
	for _, h := range list {
		if h.Symbol == "" {
			return nil, fmt.Errorf("holding with empty symbol")
		}
		if h.Quantity < 0 || h.AverageCost < 0 {
			return nil, fmt.Errorf("holding %s has negative quantity or cost", h.Symbol)
		}
		if h.Quantity == 0 {
			continue
		}
		if h.AssetClass == "" {
			h.AssetClass = domain.AssetClassOther
		}
		out = append(out, h)
	}
	return out, nil
}
