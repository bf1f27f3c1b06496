package pricing

import (
	"context"
	"log"
	"math"
	"time"

	"signal-impact-lab/internal/domain"
	"signal-impact-lab/internal/observability"
	"signal-impact-lab/internal/storage"
)

// lookbackTiers are the lookback window sizes the provider supports,
// in days, ascending.
var lookbackTiers = []int{1, 7, 14, 30, 90, 180, 365}

// SelectWindowDays picks the smallest lookback tier covering the elapsed
// day count. Anything beyond the largest tier is capped at it: the provider
// has no wider window to offer.
func SelectWindowDays(daysElapsed int) int {
	for _, tier := range lookbackTiers {
		if daysElapsed <= tier {
			return tier
		}
	}
	return lookbackTiers[len(lookbackTiers)-1]
}

// Fetcher fetches the candle window spanning a signal's creation to now and
// reduces it to the extremes plus last close. Fetched windows are archived
// best-effort when an archive store is configured.
type Fetcher struct {
	source       HistorySource
	archive      storage.CandleArchiveStore // optional
	fetchTimeout time.Duration
	now          func() time.Time
	metrics      *observability.Metrics
	logger       *log.Logger
}

// FetcherOptions contains configuration for creating a Fetcher.
type FetcherOptions struct {
	Source       HistorySource
	Archive      storage.CandleArchiveStore // nil disables archiving
	FetchTimeout time.Duration              // default 20s
	Now          func() time.Time           // default time.Now
	Metrics      *observability.Metrics
	Logger       *log.Logger
}

// NewFetcher creates a Fetcher.
func NewFetcher(opts FetcherOptions) *Fetcher {
	fetchTimeout := opts.FetchTimeout
	if fetchTimeout == 0 {
		fetchTimeout = 20 * time.Second
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	return &Fetcher{
		source:       opts.Source,
		archive:      opts.Archive,
		fetchTimeout: fetchTimeout,
		now:          now,
		metrics:      opts.Metrics,
		logger:       logger,
	}
}

// FetchWindow fetches candles covering [since, now] and reduces them.
// The window must always span from signal creation to now, not just a fixed
// recent window: a take-profit or stop-loss touch early in a long-running
// signal's life has to stay detectable. Returns an error on any provider
// failure; callers treat that as "skip this record this pass".
func (f *Fetcher) FetchWindow(ctx context.Context, providerID string, since time.Time) (*domain.WindowSummary, error) {
	now := f.now()
	daysElapsed := int(math.Ceil(now.Sub(since).Hours() / 24))
	if daysElapsed < 1 {
		daysElapsed = 1
	}
	windowDays := SelectWindowDays(daysElapsed)

	fetchCtx, cancel := context.WithTimeout(ctx, f.fetchTimeout)
	defer cancel()

	fetchStart := time.Now()
	candles, err := f.source.GetOHLC(fetchCtx, providerID, windowDays)
	if f.metrics != nil {
		f.metrics.HistoryFetches.Inc()
		f.metrics.HistoryFetchLatency.Observe(time.Since(fetchStart).Seconds())
		if err != nil {
			f.metrics.HistoryFetchErrors.Inc()
		}
	}
	if err != nil {
		return nil, err
	}
	if len(candles) == 0 {
		return nil, nil
	}

	f.archiveWindow(ctx, providerID, windowDays, now, candles)

	summary := Reduce(candles)
	summary.Days = windowDays
	return summary, nil
}

// Reduce collapses a candle window to (highest high, lowest low, last close).
func Reduce(candles []domain.Candle) *domain.WindowSummary {
	if len(candles) == 0 {
		return nil
	}
	summary := &domain.WindowSummary{
		High:    candles[0].High,
		Low:     candles[0].Low,
		Candles: len(candles),
	}
	for _, c := range candles {
		if c.High > summary.High {
			summary.High = c.High
		}
		if c.Low < summary.Low {
			summary.Low = c.Low
		}
	}
	summary.LastClose = candles[len(candles)-1].Close
	return summary
}

// archiveWindow persists fetched candles. Archive failures are logged and
// never affect the record being evaluated.
func (f *Fetcher) archiveWindow(ctx context.Context, providerID string, windowDays int, fetchedAt time.Time, candles []domain.Candle) {
	if f.archive == nil {
		return
	}
	archived := make([]*domain.ArchivedCandle, 0, len(candles))
	for _, c := range candles {
		archived = append(archived, &domain.ArchivedCandle{
			ProviderID: providerID,
			WindowDays: windowDays,
			FetchedAt:  fetchedAt,
			Candle:     c,
		})
	}
	if err := f.archive.InsertBulk(ctx, archived); err != nil {
		f.logger.Printf("archive candles for %s: %v", providerID, err)
	}
}
