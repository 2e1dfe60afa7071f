// Package catalog loads the product dataset and holds it in memory for
// the process lifetime. The catalog is read-only after construction;
// reloading requires a restart.
package catalog

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/shopmate-ai/shopmate/internal/domain"
)

// Load reads and validates the product dataset. A missing or unparseable
// dataset is fatal: there is no degraded mode without a catalog.
func Load(path string) ([]domain.Product, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("read catalog %s: %w", path, err)
	}

	var products []domain.Product
	if err := json.Unmarshal(data, &products); err != nil {
		return nil, fmt.Errorf("parse catalog %s: %w: %w", path, domain.ErrCatalogInvalid, err)
	}

	seen := make(map[string]bool, len(products))
	for i := range products {
		p := &products[i]
		if err := p.Validate(); err != nil {
			return nil, fmt.Errorf("catalog entry %d: %w: %w", i, domain.ErrCatalogInvalid, err)
		}
		if seen[p.ID] {
			return nil, fmt.Errorf("catalog entry %d: %w: duplicate product ID %q", i, domain.ErrCatalogInvalid, p.ID)
		}
		seen[p.ID] = true
	}

	return products, nil
}
