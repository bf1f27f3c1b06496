package evaluation

import "signal-impact-lab/internal/domain"

// PnlForState returns the pnl percentage to record for a signal in the given
// state. Closed-at-target states use the signal's own levels; everything
// else uses the actual marked return.
func PnlForState(state domain.SignalState, actualPnlPct, takeProfitPct, stopLossPct float64) float64 {
	switch state {
	case domain.StateClosedTP:
		return takeProfitPct
	case domain.StateClosedSL:
		return -stopLossPct
	default:
		return actualPnlPct
	}
}

// TradeOutcomeScore maps a state and its recorded pnl to the discrete trade
// outcome score in {-1, -0.5, 0, 0.5, 1}.
func TradeOutcomeScore(state domain.SignalState, pnlPct, takeProfitPct float64) float64 {
	switch state {
	case domain.StateClosedTP:
		return 1.0
	case domain.StateClosedSL:
		return -1.0
	case domain.StateClosedPartialTP:
		return 0.5
	case domain.StateClosedTime:
		if pnlPct >= PartialTakeProfitPct && pnlPct < takeProfitPct {
			return 0.5
		}
		if pnlPct >= -BreakevenBandPct && pnlPct <= BreakevenBandPct {
			return 0
		}
		if pnlPct >= -SoftLossFloorPct && pnlPct < -BreakevenBandPct {
			return -0.5
		}
		return 0
	default:
		return 0
	}
}

// MFEBonus up-weights signals that showed a large favorable move at any
// point in their lifetime, even if the move was given back.
func MFEBonus(lifetimeMFE float64) float64 {
	switch {
	case lifetimeMFE >= 15:
		return 0.5
	case lifetimeMFE >= 8:
		return 0.3
	case lifetimeMFE >= 4:
		return 0.1
	default:
		return 0
	}
}

// MAEPenalty down-weights signals that went deeply against the trade before
// resolving, regardless of the final outcome.
func MAEPenalty(lifetimeMAE float64) float64 {
	switch {
	case lifetimeMAE > 6:
		return 0.5
	case lifetimeMAE >= 4:
		return 0.3
	case lifetimeMAE >= 2:
		return 0.1
	default:
		return 0
	}
}

// ImpactFactor combines the trade outcome score with the excursion
// adjustments into the single per-signal weight.
func ImpactFactor(tos, mfeBonus, maePenalty float64) float64 {
	return tos + mfeBonus - maePenalty
}
