package stub

import (
	"context"
	"errors"

	"signal-impact-lab/internal/domain"
)

// ErrUnavailable is returned when the stub has no candles for a provider id
// and no explicit error configured.
var ErrUnavailable = errors.New("history unavailable")

// HistorySource implements pricing.HistorySource for testing.
type HistorySource struct {
	Candles map[string][]domain.Candle // keyed by provider id
	Errors  map[string]error           // per-provider forced errors
	Calls   []string                   // provider ids in request order
}

// NewHistorySource creates a new stub history source.
func NewHistorySource() *HistorySource {
	return &HistorySource{
		Candles: make(map[string][]domain.Candle),
		Errors:  make(map[string]error),
	}
}

// Name returns the source identifier.
func (s *HistorySource) Name() string { return "stub" }

// GetOHLC returns the configured candles or error for a provider id.
func (s *HistorySource) GetOHLC(_ context.Context, providerID string, _ int) ([]domain.Candle, error) {
	s.Calls = append(s.Calls, providerID)
	if err, ok := s.Errors[providerID]; ok {
		return nil, err
	}
	candles, ok := s.Candles[providerID]
	if !ok {
		return nil, ErrUnavailable
	}
	return candles, nil
}
