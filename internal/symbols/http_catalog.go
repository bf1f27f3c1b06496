package symbols

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// HTTPCatalog lists the asset catalog from a CoinGecko-compatible API
// (GET {base}/coins/list).
type HTTPCatalog struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// NewHTTPCatalog creates an HTTP catalog source. apiKey may be empty for
// keyless free-tier access.
func NewHTTPCatalog(baseURL, apiKey string) *HTTPCatalog {
	return &HTTPCatalog{
		baseURL: baseURL,
		apiKey:  apiKey,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

// Compile-time interface check.
var _ CatalogSource = (*HTTPCatalog)(nil)

// Name returns the source identifier for logs.
func (c *HTTPCatalog) Name() string { return "http" }

// catalogRow is the provider's /coins/list response element.
type catalogRow struct {
	ID     string `json:"id"`
	Symbol string `json:"symbol"`
	Name   string `json:"name"`
}

// List fetches the full catalog.
func (c *HTTPCatalog) List(ctx context.Context) ([]CatalogEntry, error) {
	url := c.baseURL + "/coins/list"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create catalog request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("x-cg-demo-api-key", c.apiKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch catalog: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch catalog: status %d", resp.StatusCode)
	}

	var rows []catalogRow
	if err := json.NewDecoder(resp.Body).Decode(&rows); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("catalog response is empty")
	}

	entries := make([]CatalogEntry, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, CatalogEntry{ProviderID: row.ID, Symbol: row.Symbol})
	}
	return entries, nil
}
