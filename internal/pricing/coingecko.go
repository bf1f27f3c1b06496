package pricing

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"time"

	"signal-impact-lab/internal/domain"
)

// Default configuration values.
const (
	DefaultBaseURL    = "https://api.coingecko.com/api/v3"
	DefaultTimeout    = 15 * time.Second
	DefaultMaxRetries = 2
	DefaultRetryDelay = 2 * time.Second
)

// CoinGeckoSource implements HistorySource against a CoinGecko-compatible
// OHLC endpoint (GET {base}/coins/{id}/ohlc?vs_currency=usd&days=N).
type CoinGeckoSource struct {
	baseURL    string
	apiKey     string
	vsCurrency string
	client     *http.Client
	maxRetries int
	retryDelay time.Duration
}

// SourceOption configures CoinGeckoSource.
type SourceOption func(*CoinGeckoSource)

// WithTimeout sets the HTTP client timeout.
func WithTimeout(d time.Duration) SourceOption {
	return func(s *CoinGeckoSource) {
		s.client.Timeout = d
	}
}

// WithMaxRetries sets maximum retry attempts per request.
func WithMaxRetries(n int) SourceOption {
	return func(s *CoinGeckoSource) {
		s.maxRetries = n
	}
}

// WithRetryDelay sets the delay between retries.
func WithRetryDelay(d time.Duration) SourceOption {
	return func(s *CoinGeckoSource) {
		s.retryDelay = d
	}
}

// WithVsCurrency sets the quote currency (default "usd").
func WithVsCurrency(currency string) SourceOption {
	return func(s *CoinGeckoSource) {
		s.vsCurrency = currency
	}
}

// WithHTTPClient sets a custom http.Client.
func WithHTTPClient(client *http.Client) SourceOption {
	return func(s *CoinGeckoSource) {
		s.client = client
	}
}

// NewCoinGeckoSource creates a new OHLC source. apiKey may be empty for
// keyless free-tier access.
func NewCoinGeckoSource(baseURL, apiKey string, opts ...SourceOption) *CoinGeckoSource {
	s := &CoinGeckoSource{
		baseURL:    baseURL,
		apiKey:     apiKey,
		vsCurrency: "usd",
		client:     &http.Client{Timeout: DefaultTimeout},
		maxRetries: DefaultMaxRetries,
		retryDelay: DefaultRetryDelay,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Compile-time interface check.
var _ HistorySource = (*CoinGeckoSource)(nil)

// Name returns the source identifier for logs.
func (s *CoinGeckoSource) Name() string { return "coingecko" }

// GetOHLC fetches candles for a provider id over the given lookback window.
// Candles come back ordered ascending by time.
func (s *CoinGeckoSource) GetOHLC(ctx context.Context, providerID string, windowDays int) ([]domain.Candle, error) {
	endpoint := fmt.Sprintf("%s/coins/%s/ohlc?vs_currency=%s&days=%d",
		s.baseURL, url.PathEscape(providerID), url.QueryEscape(s.vsCurrency), windowDays)

	var lastErr error
	for attempt := 0; attempt <= s.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(s.retryDelay):
			}
		}

		candles, retryable, err := s.fetchOnce(ctx, endpoint)
		if err == nil {
			return candles, nil
		}
		lastErr = err
		if !retryable {
			break
		}
	}
	return nil, lastErr
}

// fetchOnce performs one request. The second return value reports whether
// the failure is worth retrying (network errors and 5xx/429 statuses).
func (s *CoinGeckoSource) fetchOnce(ctx context.Context, endpoint string) ([]domain.Candle, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, false, fmt.Errorf("create ohlc request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if s.apiKey != "" {
		req.Header.Set("x-cg-demo-api-key", s.apiKey)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, true, fmt.Errorf("fetch ohlc: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		retryable := resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500
		return nil, retryable, fmt.Errorf("fetch ohlc: status %d: %s", resp.StatusCode, string(body))
	}

	// Response shape: [[timestamp_ms, open, high, low, close], ...]
	var rows [][]float64
	if err := json.NewDecoder(resp.Body).Decode(&rows); err != nil {
		return nil, false, fmt.Errorf("decode ohlc: %w", err)
	}

	candles := make([]domain.Candle, 0, len(rows))
	for _, row := range rows {
		if len(row) < 5 {
			return nil, false, fmt.Errorf("malformed ohlc row: %d columns", len(row))
		}
		candles = append(candles, domain.Candle{
			Time:  time.UnixMilli(int64(row[0])).UTC(),
			Open:  row[1],
			High:  row[2],
			Low:   row[3],
			Close: row[4],
		})
	}
	sort.Slice(candles, func(i, j int) bool { return candles[i].Time.Before(candles[j].Time) })
	return candles, false, nil
}
