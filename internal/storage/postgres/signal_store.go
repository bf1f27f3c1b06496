package postgres

import (
	"context"
	"fmt"

	"signal-impact-lab/internal/domain"
	"signal-impact-lab/internal/storage"
)

// SignalStore implements storage.SignalStore using PostgreSQL.
type SignalStore struct {
	pool *Pool
}

// NewSignalStore creates a new SignalStore.
func NewSignalStore(pool *Pool) *SignalStore {
	return &SignalStore{pool: pool}
}

// Compile-time interface check.
var _ storage.SignalStore = (*SignalStore)(nil)

const signalColumns = `
	id, source_handle, token_symbols,
	entry_price, direction, take_profit_pct, stop_loss_pct,
	timeline_window, created_at,
	lifetime_mfe, lifetime_mae, pnl_pct,
	evaluation_open, impact_factor, closed_at
`

// Insert adds a new signal. Returns ErrDuplicateKey if the id exists.
func (s *SignalStore) Insert(ctx context.Context, sig *domain.TradeSignal) error {
	if sig == nil || sig.ID == "" {
		return storage.ErrInvalidInput
	}

	query := `
		INSERT INTO trade_signals (` + signalColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`
	_, err := s.pool.Exec(ctx, query,
		sig.ID, sig.SourceHandle, sig.TokenSymbols,
		sig.EntryPrice, string(sig.EffectiveDirection()), sig.TakeProfitPct, sig.StopLossPct,
		sig.TimelineWindow, sig.CreatedAt,
		sig.LifetimeMFE, sig.LifetimeMAE, sig.PnlPct,
		sig.EvaluationOpen, sig.ImpactFactor, sig.ClosedAt,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert trade signal: %w", err)
	}
	return nil
}

// GetByID retrieves a signal by its ID. Returns ErrNotFound if not exists.
func (s *SignalStore) GetByID(ctx context.Context, id string) (*domain.TradeSignal, error) {
	query := `SELECT ` + signalColumns + ` FROM trade_signals WHERE id = $1`

	sig, err := scanSignal(s.pool.QueryRow(ctx, query, id))
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get trade signal: %w", err)
	}
	return sig, nil
}

// FindEligible retrieves up to limit signals open for evaluation with a
// positive entry price and at least one symbol, oldest first. The
// evaluation flag is read fresh here, which is what keeps overlapping
// passes benign.
func (s *SignalStore) FindEligible(ctx context.Context, limit int) ([]*domain.TradeSignal, error) {
	query := `
		SELECT ` + signalColumns + `
		FROM trade_signals
		WHERE evaluation_open
		  AND entry_price > 0
		  AND cardinality(token_symbols) > 0
		ORDER BY created_at ASC, id ASC
		LIMIT $1
	`
	rows, err := s.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("find eligible signals: %w", err)
	}
	defer rows.Close()

	var signals []*domain.TradeSignal
	for rows.Next() {
		sig, err := scanSignal(rows)
		if err != nil {
			return nil, fmt.Errorf("scan trade signal: %w", err)
		}
		signals = append(signals, sig)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate trade signals: %w", err)
	}
	return signals, nil
}

// UpdateEvaluation applies an evaluation pass result to a signal. The
// evaluation flag only ever transitions open -> closed, and the impact
// factor is preserved once set.
func (s *SignalStore) UpdateEvaluation(ctx context.Context, id string, upd storage.SignalUpdate) error {
	query := `
		UPDATE trade_signals
		SET pnl_pct = $2,
		    lifetime_mfe = $3,
		    lifetime_mae = $4,
		    impact_factor = COALESCE(impact_factor, $5),
		    evaluation_open = evaluation_open AND NOT $6,
		    closed_at = CASE WHEN $6 THEN COALESCE(closed_at, $7) ELSE closed_at END
		WHERE id = $1
	`
	tag, err := s.pool.Exec(ctx, query,
		id, upd.PnlPct, upd.LifetimeMFE, upd.LifetimeMAE,
		upd.ImpactFactor, upd.CloseEvaluation, upd.ClosedAt,
	)
	if err != nil {
		return fmt.Errorf("update trade signal: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// All returns every stored signal, oldest first. Used by reporting.
func (s *SignalStore) All(ctx context.Context) ([]*domain.TradeSignal, error) {
	query := `SELECT ` + signalColumns + ` FROM trade_signals ORDER BY created_at ASC, id ASC`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list trade signals: %w", err)
	}
	defer rows.Close()

	var signals []*domain.TradeSignal
	for rows.Next() {
		sig, err := scanSignal(rows)
		if err != nil {
			return nil, fmt.Errorf("scan trade signal: %w", err)
		}
		signals = append(signals, sig)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate trade signals: %w", err)
	}
	return signals, nil
}

// rowScanner abstracts pgx.Row and pgx.Rows for scanSignal.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanSignal(row rowScanner) (*domain.TradeSignal, error) {
	var sig domain.TradeSignal
	var direction string
	err := row.Scan(
		&sig.ID, &sig.SourceHandle, &sig.TokenSymbols,
		&sig.EntryPrice, &direction, &sig.TakeProfitPct, &sig.StopLossPct,
		&sig.TimelineWindow, &sig.CreatedAt,
		&sig.LifetimeMFE, &sig.LifetimeMAE, &sig.PnlPct,
		&sig.EvaluationOpen, &sig.ImpactFactor, &sig.ClosedAt,
	)
	if err != nil {
		return nil, err
	}
	sig.Direction = domain.Direction(direction)
	return &sig, nil
}
