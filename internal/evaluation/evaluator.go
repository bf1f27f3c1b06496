package evaluation

import (
	"context"
	"time"

	"signal-impact-lab/internal/domain"
)

// SkipReason classifies why a signal was passed over this run without being
// evaluated. Skipped signals stay eligible for the next pass.
type SkipReason string

const (
	SkipUnresolvedSymbol SkipReason = "UNRESOLVED_SYMBOL"
	SkipNoHistory        SkipReason = "NO_HISTORY"
	SkipPersistence      SkipReason = "PERSISTENCE"
)

// Outcome is the full result of evaluating one signal against its elapsed
// price window. Score fields are zero unless State is terminal.
type Outcome struct {
	State       domain.SignalState
	PnlPct      float64
	LifetimeMFE float64
	LifetimeMAE float64
	WindowMFE   float64
	WindowMAE   float64

	TOS          float64
	MFEBonus     float64
	MAEPenalty   float64
	ImpactFactor float64

	ProviderID string
	Window     domain.WindowSummary
}

// Result is the per-signal record produced by the evaluator: either an
// outcome or a typed skip reason, never both. Err carries detail for logs
// when Skip is set.
type Result struct {
	SignalID string
	Outcome  *Outcome
	Skip     SkipReason
	Err      error
}

// SymbolResolver maps a trading symbol to a price-provider identifier.
type SymbolResolver interface {
	Resolve(ctx context.Context, symbol string) (string, error)
}

// HistoryProvider fetches and reduces the candle window spanning signal
// creation to now. A nil summary with a nil error means the provider had no
// usable data; any error is likewise non-fatal for the pass.
type HistoryProvider interface {
	FetchWindow(ctx context.Context, providerID string, since time.Time) (*domain.WindowSummary, error)
}

// Evaluator runs the full per-signal pipeline: resolve symbol, fetch and
// reduce history, compute excursions, determine state, score.
type Evaluator struct {
	resolver SymbolResolver
	history  HistoryProvider
	now      func() time.Time
}

// NewEvaluator creates an Evaluator. now may be nil, in which case
// time.Now is used.
func NewEvaluator(resolver SymbolResolver, history HistoryProvider, now func() time.Time) *Evaluator {
	if now == nil {
		now = time.Now
	}
	return &Evaluator{resolver: resolver, history: history, now: now}
}

// EvaluateSignal evaluates a single signal. The returned error is fatal for
// the whole pass (currently only a catalog bootstrap failure surfaced by
// the resolver); all recoverable conditions come back as a Result skip.
func (e *Evaluator) EvaluateSignal(ctx context.Context, sig *domain.TradeSignal) (Result, error) {
	res := Result{SignalID: sig.ID}

	symbol := sig.PrimarySymbol()
	if symbol == "" {
		res.Skip = SkipUnresolvedSymbol
		return res, nil
	}

	providerID, err := e.resolver.Resolve(ctx, symbol)
	if err != nil {
		// A resolver error means the catalog could not be loaded. A partial
		// catalog would silently corrupt price lookups, so the whole pass
		// must stop here.
		return res, err
	}

	summary, err := e.history.FetchWindow(ctx, providerID, sig.CreatedAt)
	if err != nil || summary == nil || summary.Candles == 0 {
		res.Skip = SkipNoHistory
		res.Err = err
		return res, nil
	}

	res.Outcome = e.score(sig, providerID, *summary)
	return res, nil
}

// score computes excursions, state and scores from a reduced window.
func (e *Evaluator) score(sig *domain.TradeSignal, providerID string, window domain.WindowSummary) *Outcome {
	dir := sig.EffectiveDirection()
	tp := sig.EffectiveTakeProfit()
	sl := sig.EffectiveStopLoss()
	now := e.now()

	mfe, mae := Excursions(sig.EntryPrice, window.High, window.Low, dir)
	lifetimeMFE := MergeLifetime(sig.LifetimeMFE, mfe)
	lifetimeMAE := MergeLifetime(sig.LifetimeMAE, mae)

	state := DetermineState(StateInput{
		EntryPrice:    sig.EntryPrice,
		Direction:     dir,
		TakeProfitPct: tp,
		StopLossPct:   sl,
		High:          window.High,
		Low:           window.Low,
		LastClose:     window.LastClose,
		CreatedAt:     sig.CreatedAt,
		TimelineDays:  ParseTimelineDays(sig.TimelineWindow, sig.CreatedAt),
		Now:           now,
	})

	actualPnl := ReturnPct(sig.EntryPrice, window.LastClose, dir)
	out := &Outcome{
		State:       state,
		PnlPct:      PnlForState(state, actualPnl, tp, sl),
		LifetimeMFE: lifetimeMFE,
		LifetimeMAE: lifetimeMAE,
		WindowMFE:   mfe,
		WindowMAE:   mae,
		ProviderID:  providerID,
		Window:      window,
	}

	if state.Terminal() {
		out.TOS = TradeOutcomeScore(state, out.PnlPct, tp)
		out.MFEBonus = MFEBonus(lifetimeMFE)
		out.MAEPenalty = MAEPenalty(lifetimeMAE)
		out.ImpactFactor = ImpactFactor(out.TOS, out.MFEBonus, out.MAEPenalty)
	}
	return out
}
