// Package azkar serves the supplication catalog and tracks repetition counts.
package azkar

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/verte-zerg/mariam/internal/model"
)

//go:embed data/azkar.json
var catalogJSON []byte

var (
	catalogOnce sync.Once
	catalog     []model.AzkarCategory
	catalogErr  error
)

// Catalog returns every category in display order.
func Catalog() ([]model.AzkarCategory, error) {
	catalogOnce.Do(func() {
		catalog, catalogErr = parseCatalog(catalogJSON)
	})
	return catalog, catalogErr
}

func parseCatalog(raw []byte) ([]model.AzkarCategory, error) {
	var categories []model.AzkarCategory
	if err := json.Unmarshal(raw, &categories); err != nil {
		return nil, fmt.Errorf("failed to decode azkar catalog: %w", err)
	}
	seen := map[string]struct{}{}
	for _, c := range categories {
		if len(c.Azkar) == 0 {
			return nil, fmt.Errorf("azkar category %q is empty", c.Key)
		}
		for _, z := range c.Azkar {
			if _, dup := seen[z.ID]; dup {
				return nil, fmt.Errorf("duplicate zikr id %q", z.ID)
			}
			if z.Count < 1 {
				return nil, fmt.Errorf("zikr %q has no target count", z.ID)
			}
			seen[z.ID] = struct{}{}
		}
	}
	return categories, nil
}

// CategoryIndex returns the position of key in categories, or -1.
func CategoryIndex(categories []model.AzkarCategory, key string) int {
	for i, c := range categories {
		if c.Key == key {
			return i
		}
	}
	return -1
}

// Keys lists category keys in order.
func Keys(categories []model.AzkarCategory) []string {
	keys := make([]string, len(categories))
	for i, c := range categories {
		keys[i] = c.Key
	}
	return keys
}
