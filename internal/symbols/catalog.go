// Package symbols maps trading symbols extracted from posts to
// price-provider identifiers.
package symbols

import (
	"context"
	"fmt"
	"strings"
	"sync"
)

// CatalogEntry is one listed asset from the provider catalog.
type CatalogEntry struct {
	ProviderID string
	Symbol     string
}

// CatalogSource lists the provider's full asset catalog.
type CatalogSource interface {
	List(ctx context.Context) ([]CatalogEntry, error)
	Name() string
}

// CachedCatalog memoizes a CatalogSource. The catalog is loaded at most once
// per process; concurrent callers during the first load block until it
// finishes. A failed load is not cached, so the next pass retries.
type CachedCatalog struct {
	source CatalogSource

	mu       sync.Mutex
	loaded   bool
	bySymbol map[string]string // upper-cased symbol -> provider id
}

// NewCachedCatalog creates a catalog cache over the given source.
func NewCachedCatalog(source CatalogSource) *CachedCatalog {
	return &CachedCatalog{source: source}
}

// EnsureLoaded loads the catalog if it has not been loaded yet. Idempotent;
// safe for concurrent use.
func (c *CachedCatalog) EnsureLoaded(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.loaded {
		return nil
	}

	entries, err := c.source.List(ctx)
	if err != nil {
		return fmt.Errorf("load %s catalog: %w", c.source.Name(), err)
	}

	bySymbol := make(map[string]string, len(entries))
	for _, e := range entries {
		sym := strings.ToUpper(strings.TrimSpace(e.Symbol))
		if sym == "" || e.ProviderID == "" {
			continue
		}
		// First listing wins on symbol collisions.
		if _, exists := bySymbol[sym]; exists {
			continue
		}
		bySymbol[sym] = e.ProviderID
	}

	c.bySymbol = bySymbol
	c.loaded = true
	return nil
}

// Lookup returns the provider id for an upper-cased symbol, if present.
// Callers must have run EnsureLoaded first.
func (c *CachedCatalog) Lookup(symbol string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	id, ok := c.bySymbol[symbol]
	return id, ok
}

// Size returns the number of catalog entries, for logging.
func (c *CachedCatalog) Size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.bySymbol)
}
