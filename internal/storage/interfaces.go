package storage

import (
	"context"
	"time"

	"signal-impact-lab/internal/domain"
)

// SignalUpdate carries the fields an evaluation pass writes back to a
// trade signal. Excursions and pnl are written on every pass; ImpactFactor
// and CloseEvaluation only when a terminal state was reached.
type SignalUpdate struct {
	PnlPct      float64
	LifetimeMFE float64
	LifetimeMAE float64

	ImpactFactor    *float64
	CloseEvaluation bool
	ClosedAt        *time.Time
}

// SignalStore provides access to trade signal storage.
type SignalStore interface {
	// Insert adds a new signal. Returns ErrDuplicateKey if the id exists.
	Insert(ctx context.Context, s *domain.TradeSignal) error

	// GetByID retrieves a signal by its ID. Returns ErrNotFound if not exists.
	GetByID(ctx context.Context, id string) (*domain.TradeSignal, error)

	// FindEligible retrieves up to limit signals that are still open for
	// evaluation, have a positive entry price and at least one extracted
	// symbol, ordered by creation time ascending.
	FindEligible(ctx context.Context, limit int) ([]*domain.TradeSignal, error)

	// UpdateEvaluation applies an evaluation pass result to a signal.
	// Returns ErrNotFound if the signal does not exist.
	UpdateEvaluation(ctx context.Context, id string, upd SignalUpdate) error
}

// CandleArchiveStore persists fetched OHLC windows so repeated passes and
// post-hoc analysis do not depend on provider retention. Writes are
// best-effort from the caller's point of view.
type CandleArchiveStore interface {
	// InsertBulk archives a fetched candle window.
	InsertBulk(ctx context.Context, candles []*domain.ArchivedCandle) error

	// GetByProviderID retrieves archived candles for a provider id,
	// ordered by candle time ascending.
	GetByProviderID(ctx context.Context, providerID string) ([]*domain.ArchivedCandle, error)
}
