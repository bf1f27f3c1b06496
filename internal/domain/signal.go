package domain

import (
	"strings"
	"time"
)

// Direction is the side of a trade signal.
type Direction string

const (
	DirectionLong  Direction = "LONG"
	DirectionShort Direction = "SHORT"
)

// Evaluation defaults applied when a signal omits its own parameters.
const (
	DefaultTakeProfitPct = 10.0
	DefaultStopLossPct   = 5.0
	DefaultTimelineDays  = 7
)

// TradeSignal is a classified social/chat post that has been turned into a
// tradeable call. The evaluation engine reads signals flagged as open,
// replays price action since creation and writes back excursions, pnl and,
// once a terminal state is reached, the impact factor.
type TradeSignal struct {
	ID           string
	SourceHandle string   // originating account/channel, for reporting only
	TokenSymbols []string // extracted symbols; only the first is evaluated

	EntryPrice    float64   // must be > 0 to be eligible
	Direction     Direction // empty or unknown value means LONG
	TakeProfitPct float64   // percent; <= 0 means use DefaultTakeProfitPct
	StopLossPct   float64   // percent; <= 0 means use DefaultStopLossPct

	// TimelineWindow is the free-form duration descriptor extracted from the
	// post ("3 days", "2 weeks", "by 2025-03-01", ...). Unparseable values
	// fall back to DefaultTimelineDays.
	TimelineWindow string

	CreatedAt time.Time

	// Lifetime excursions, percent. Monotonically non-decreasing across
	// evaluation passes: they record the best/worst point the trade ever
	// reached, not the latest window's.
	LifetimeMFE float64
	LifetimeMAE float64

	PnlPct float64 // latest estimated return, overwritten every pass

	// EvaluationOpen is true while the signal is still awaiting a terminal
	// state. Cleared exactly once; never set back to true.
	EvaluationOpen bool

	ImpactFactor *float64   // written once, when the signal closes
	ClosedAt     *time.Time // when the terminal state was recorded
}

// PrimarySymbol returns the first extracted symbol, or "" if none.
func (s *TradeSignal) PrimarySymbol() string {
	if len(s.TokenSymbols) == 0 {
		return ""
	}
	return strings.TrimSpace(s.TokenSymbols[0])
}

// EffectiveDirection returns the trade side, defaulting to LONG.
func (s *TradeSignal) EffectiveDirection() Direction {
	if s.Direction == DirectionShort {
		return DirectionShort
	}
	return DirectionLong
}

// EffectiveTakeProfit returns the take-profit percentage with the default
// applied for absent or non-positive values.
func (s *TradeSignal) EffectiveTakeProfit() float64 {
	if s.TakeProfitPct > 0 {
		return s.TakeProfitPct
	}
	return DefaultTakeProfitPct
}

// EffectiveStopLoss returns the stop-loss percentage with the default
// applied for absent or non-positive values.
func (s *TradeSignal) EffectiveStopLoss() float64 {
	if s.StopLossPct > 0 {
		return s.StopLossPct
	}
	return DefaultStopLossPct
}
