package symbols

import (
	"context"
	"strings"
)

// Resolver maps a trading symbol to a price-provider identifier.
// Lookup order: well-known majors table, then the cached catalog, then the
// lower-cased symbol itself as a last resort. Input is case-insensitive.
type Resolver struct {
	catalog *CachedCatalog
}

// NewResolver creates a Resolver over a catalog cache. The catalog may be
// nil, in which case only the well-known table and the fallback apply.
func NewResolver(catalog *CachedCatalog) *Resolver {
	return &Resolver{catalog: catalog}
}

// Resolve returns the provider id for a symbol. The only error it can
// return is a catalog load failure, which is fatal for the calling pass:
// resolving against a partial catalog would corrupt price lookups silently.
func (r *Resolver) Resolve(ctx context.Context, symbol string) (string, error) {
	sym := strings.ToUpper(strings.TrimSpace(symbol))

	if id, ok := wellKnown[sym]; ok {
		return id, nil
	}

	if r.catalog != nil {
		if err := r.catalog.EnsureLoaded(ctx); err != nil {
			return "", err
		}
		if id, ok := r.catalog.Lookup(sym); ok {
			return id, nil
		}
	}

	return strings.ToLower(sym), nil
}
