package clickhouse

import (
	"context"
	"fmt"
	"time"

	"signal-impact-lab/internal/domain"
	"signal-impact-lab/internal/storage"
)

// CandleArchiveStore implements storage.CandleArchiveStore using ClickHouse.
// The archive is append-heavy and query-light, which is what the
// MergeTree engine is built for.
type CandleArchiveStore struct {
	conn *Conn
}

// NewCandleArchiveStore creates a new CandleArchiveStore.
func NewCandleArchiveStore(conn *Conn) *CandleArchiveStore {
	return &CandleArchiveStore{conn: conn}
}

// Compile-time interface check.
var _ storage.CandleArchiveStore = (*CandleArchiveStore)(nil)

// InsertBulk archives a fetched candle window.
func (s *CandleArchiveStore) InsertBulk(ctx context.Context, candles []*domain.ArchivedCandle) error {
	if len(candles) == 0 {
		return nil
	}

	batch, err := s.conn.PrepareBatch(ctx, `
		INSERT INTO candle_archive (
			provider_id, window_days, fetched_at,
			candle_time, open, high, low, close
		)
	`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	for _, c := range candles {
		if c == nil || c.ProviderID == "" {
			return storage.ErrInvalidInput
		}
		err = batch.Append(
			c.ProviderID, uint16(c.WindowDays), c.FetchedAt,
			c.Candle.Time, c.Candle.Open, c.Candle.High, c.Candle.Low, c.Candle.Close,
		)
		if err != nil {
			return fmt.Errorf("append to batch: %w", err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("send batch: %w", err)
	}
	return nil
}

// GetByProviderID retrieves archived candles for a provider id, ordered by
// candle time ascending.
func (s *CandleArchiveStore) GetByProviderID(ctx context.Context, providerID string) ([]*domain.ArchivedCandle, error) {
	rows, err := s.conn.Query(ctx, `
		SELECT provider_id, window_days, fetched_at,
		       candle_time, open, high, low, close
		FROM candle_archive
		WHERE provider_id = ?
		ORDER BY candle_time ASC
	`, providerID)
	if err != nil {
		return nil, fmt.Errorf("query candle archive: %w", err)
	}
	defer rows.Close()

	var out []*domain.ArchivedCandle
	for rows.Next() {
		var (
			c          domain.ArchivedCandle
			windowDays uint16
			fetchedAt  time.Time
			candleTime time.Time
		)
		err := rows.Scan(
			&c.ProviderID, &windowDays, &fetchedAt,
			&candleTime, &c.Candle.Open, &c.Candle.High, &c.Candle.Low, &c.Candle.Close,
		)
		if err != nil {
			return nil, fmt.Errorf("scan archived candle: %w", err)
		}
		c.WindowDays = int(windowDays)
		c.FetchedAt = fetchedAt
		c.Candle.Time = candleTime
		out = append(out, &c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate candle archive: %w", err)
	}
	return out, nil
}
