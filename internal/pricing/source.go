// Package pricing fetches and reduces historical OHLC windows from
// price-history providers.
package pricing

import (
	"context"
	"fmt"
	"log"

	"signal-impact-lab/internal/domain"
)

// HistorySource returns OHLC candles for a provider id over a lookback
// window, ordered ascending by time.
type HistorySource interface {
	GetOHLC(ctx context.Context, providerID string, windowDays int) ([]domain.Candle, error)
	Name() string
}

// Chain tries an ordered list of history sources via one interface and
// returns the first usable response.
type Chain struct {
	sources []HistorySource
	logger  *log.Logger
}

// NewChain creates a fallback chain. At least one source is required.
func NewChain(logger *log.Logger, sources ...HistorySource) *Chain {
	if logger == nil {
		logger = log.Default()
	}
	return &Chain{sources: sources, logger: logger}
}

// Compile-time interface check.
var _ HistorySource = (*Chain)(nil)

// Name returns the chain identifier for logs.
func (c *Chain) Name() string { return "chain" }

// GetOHLC queries each source in order until one returns candles.
func (c *Chain) GetOHLC(ctx context.Context, providerID string, windowDays int) ([]domain.Candle, error) {
	var lastErr error
	for _, src := range c.sources {
		candles, err := src.GetOHLC(ctx, providerID, windowDays)
		if err != nil {
			c.logger.Printf("history source %s failed for %s: %v", src.Name(), providerID, err)
			lastErr = err
			continue
		}
		if len(candles) == 0 {
			lastErr = fmt.Errorf("source %s returned no candles", src.Name())
			continue
		}
		return candles, nil
	}
	if lastErr == nil {
		lastErr = fmt.Errorf("no history sources configured")
	}
	return nil, lastErr
}
