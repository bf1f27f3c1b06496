package evaluation

import (
	"time"

	"signal-impact-lab/internal/domain"
)

// Fixed business thresholds used when resolving a signal at timeline expiry.
// These are global constants, not per-signal parameters.
const (
	// PartialTakeProfitPct is the minimum final return that still counts as
	// a partial take-profit when the timeline expires short of the target.
	PartialTakeProfitPct = 6.0

	// BreakevenBandPct is the half-width of the band around zero inside
	// which an expired signal is treated as flat.
	BreakevenBandPct = 3.0

	// SoftLossFloorPct bounds the moderate-loss band: an expired signal with
	// a final return in [-SoftLossFloorPct, -BreakevenBandPct) is scored as
	// a partial loss rather than a flat close.
	SoftLossFloorPct = 5.0
)

// StateInput carries everything the state machine needs for one signal.
// High/Low/LastClose come from the reduced candle window, which always spans
// from signal creation to now.
type StateInput struct {
	EntryPrice    float64
	Direction     domain.Direction
	TakeProfitPct float64
	StopLossPct   float64

	High      float64
	Low       float64
	LastClose float64

	CreatedAt    time.Time
	TimelineDays int
	Now          time.Time
}

// favorableExtreme is the window price that moved furthest in the trade's
// favor: the high for LONG, the low for SHORT.
func favorableExtreme(in StateInput) float64 {
	if in.Direction == domain.DirectionShort {
		return in.Low
	}
	return in.High
}

// adverseExtreme is the window price that moved furthest against the trade.
func adverseExtreme(in StateInput) float64 {
	if in.Direction == domain.DirectionShort {
		return in.High
	}
	return in.Low
}

// DetermineState runs the path-dependent state machine for one signal.
//
// Transitions are evaluated in strict priority order. A take-profit or
// stop-loss touch anywhere in the elapsed window closes the signal even if
// price later reverted and even if the timeline has since expired: the touch
// happened first, so it must win over any expiry outcome. Take-profit is
// checked before stop-loss. Only when neither level was touched does the
// timeline decide: a signal inside its window stays OPEN; an expired signal
// is resolved from its final close.
//
// Thresholds compare signed percent returns, not absolute price levels: an
// absolute target derived from the percent is lossy in float64 (100 * 1.10
// is not exactly 110), and an exact touch of the level must register.
func DetermineState(in StateInput) domain.SignalState {
	if ReturnPct(in.EntryPrice, favorableExtreme(in), in.Direction) >= in.TakeProfitPct {
		return domain.StateClosedTP
	}
	if ReturnPct(in.EntryPrice, adverseExtreme(in), in.Direction) <= -in.StopLossPct {
		return domain.StateClosedSL
	}

	expiry := in.CreatedAt.AddDate(0, 0, in.TimelineDays)
	if in.Now.Before(expiry) {
		return domain.StateOpen
	}

	// Expired with no touch: resolve from the final close.
	finalPnl := ReturnPct(in.EntryPrice, in.LastClose, in.Direction)
	if finalPnl >= in.TakeProfitPct {
		return domain.StateClosedTP
	}
	if finalPnl >= PartialTakeProfitPct {
		return domain.StateClosedPartialTP
	}
	return domain.StateClosedTime
}
