package evaluation

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"signal-impact-lab/internal/domain"
)

func TestPnlForState(t *testing.T) {
	// Target states record the signal's own levels, not the marked return.
	assert.Equal(t, 10.0, PnlForState(domain.StateClosedTP, 11.7, 10, 5))
	assert.Equal(t, -5.0, PnlForState(domain.StateClosedSL, -6.2, 10, 5))

	assert.Equal(t, 2.5, PnlForState(domain.StateClosedTime, 2.5, 10, 5))
	assert.Equal(t, 7.0, PnlForState(domain.StateClosedPartialTP, 7.0, 10, 5))
	assert.Equal(t, 1.0, PnlForState(domain.StateOpen, 1.0, 10, 5))
}

func TestTradeOutcomeScoreTerminalStates(t *testing.T) {
	assert.Equal(t, 1.0, TradeOutcomeScore(domain.StateClosedTP, 10, 10))
	assert.Equal(t, -1.0, TradeOutcomeScore(domain.StateClosedSL, -5, 10))
	assert.Equal(t, 0.5, TradeOutcomeScore(domain.StateClosedPartialTP, 7, 10))
	assert.Equal(t, 0.0, TradeOutcomeScore(domain.StateOpen, 1, 10))
}

func TestTradeOutcomeScoreTimeCloseBands(t *testing.T) {
	tests := []struct {
		name   string
		pnlPct float64
		want   float64
	}{
		{"partial band lower edge", 6, 0.5},
		{"partial band interior", 8, 0.5},
		{"just under partial band", 5.99, 0},
		{"breakeven upper edge", 3, 0},
		{"breakeven zero", 0, 0},
		{"breakeven lower edge", -3, 0},
		{"soft loss just past band", -3.01, -0.5},
		{"soft loss interior", -4, -0.5},
		{"soft loss floor", -5, -0.5},
		{"deep loss outside bands", -5.01, 0},
		{"gain between bands", 4, 0},
		{"large gain at tp", 10, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, TradeOutcomeScore(domain.StateClosedTime, tt.pnlPct, 10))
		})
	}
}

func TestMFEBonus(t *testing.T) {
	assert.Equal(t, 0.0, MFEBonus(3.99))
	assert.Equal(t, 0.1, MFEBonus(4))
	assert.Equal(t, 0.1, MFEBonus(7.99))
	assert.Equal(t, 0.3, MFEBonus(8))
	assert.Equal(t, 0.3, MFEBonus(14.99))
	assert.Equal(t, 0.5, MFEBonus(15))
	assert.Equal(t, 0.5, MFEBonus(40))
	assert.Equal(t, 0.0, MFEBonus(-2))
}

func TestMAEPenalty(t *testing.T) {
	assert.Equal(t, 0.0, MAEPenalty(1.99))
	assert.Equal(t, 0.1, MAEPenalty(2))
	assert.Equal(t, 0.1, MAEPenalty(3.99))
	assert.Equal(t, 0.3, MAEPenalty(4))
	assert.Equal(t, 0.3, MAEPenalty(6))
	assert.Equal(t, 0.5, MAEPenalty(6.01))
	assert.Equal(t, 0.0, MAEPenalty(-1))
}

func TestImpactFactor(t *testing.T) {
	// CLOSED_TP with a 16% lifetime MFE and negligible MAE.
	assert.Equal(t, 1.5, ImpactFactor(1.0, 0.5, 0))
	// CLOSED_SL that also drew down hard.
	assert.Equal(t, -1.5, ImpactFactor(-1.0, 0, 0.5))
	// Flat time close, small bonus and penalty cancel.
	assert.Equal(t, 0.0, ImpactFactor(0, 0.1, 0.1))
}
