package memory

import (
	"context"
	"sort"
	"sync"

	"signal-impact-lab/internal/domain"
	"signal-impact-lab/internal/storage"
)

// SignalStore is an in-memory implementation of storage.SignalStore.
type SignalStore struct {
	mu   sync.RWMutex
	data map[string]*domain.TradeSignal // keyed by signal id
}

// NewSignalStore creates a new in-memory signal store.
func NewSignalStore() *SignalStore {
	return &SignalStore{
		data: make(map[string]*domain.TradeSignal),
	}
}

// Compile-time interface check.
var _ storage.SignalStore = (*SignalStore)(nil)

// Insert adds a new signal. Returns ErrDuplicateKey if the id exists.
func (s *SignalStore) Insert(_ context.Context, sig *domain.TradeSignal) error {
	if sig == nil || sig.ID == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[sig.ID]; exists {
		return storage.ErrDuplicateKey
	}

	s.data[sig.ID] = cloneSignal(sig)
	return nil
}

// GetByID retrieves a signal by its ID. Returns ErrNotFound if not exists.
func (s *SignalStore) GetByID(_ context.Context, id string) (*domain.TradeSignal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sig, exists := s.data[id]
	if !exists {
		return nil, storage.ErrNotFound
	}
	return cloneSignal(sig), nil
}

// FindEligible retrieves up to limit signals open for evaluation with a
// positive entry price and at least one symbol, oldest first.
func (s *SignalStore) FindEligible(_ context.Context, limit int) ([]*domain.TradeSignal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var eligible []*domain.TradeSignal
	for _, sig := range s.data {
		if !sig.EvaluationOpen || sig.EntryPrice <= 0 || len(sig.TokenSymbols) == 0 {
			continue
		}
		eligible = append(eligible, cloneSignal(sig))
	}

	sort.Slice(eligible, func(i, j int) bool {
		if eligible[i].CreatedAt.Equal(eligible[j].CreatedAt) {
			return eligible[i].ID < eligible[j].ID
		}
		return eligible[i].CreatedAt.Before(eligible[j].CreatedAt)
	})

	if limit > 0 && len(eligible) > limit {
		eligible = eligible[:limit]
	}
	return eligible, nil
}

// UpdateEvaluation applies an evaluation pass result to a signal.
func (s *SignalStore) UpdateEvaluation(_ context.Context, id string, upd storage.SignalUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sig, exists := s.data[id]
	if !exists {
		return storage.ErrNotFound
	}

	sig.PnlPct = upd.PnlPct
	sig.LifetimeMFE = upd.LifetimeMFE
	sig.LifetimeMAE = upd.LifetimeMAE
	if upd.ImpactFactor != nil {
		v := *upd.ImpactFactor
		sig.ImpactFactor = &v
	}
	if upd.CloseEvaluation {
		sig.EvaluationOpen = false
		if upd.ClosedAt != nil {
			t := *upd.ClosedAt
			sig.ClosedAt = &t
		}
	}
	return nil
}

// All returns every stored signal, oldest first. Used by reporting.
func (s *SignalStore) All(_ context.Context) ([]*domain.TradeSignal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*domain.TradeSignal, 0, len(s.data))
	for _, sig := range s.data {
		out = append(out, cloneSignal(sig))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

// cloneSignal deep-copies a signal so callers cannot mutate stored state.
func cloneSignal(sig *domain.TradeSignal) *domain.TradeSignal {
	cp := *sig
	cp.TokenSymbols = append([]string(nil), sig.TokenSymbols...)
	if sig.ImpactFactor != nil {
		v := *sig.ImpactFactor
		cp.ImpactFactor = &v
	}
	if sig.ClosedAt != nil {
		t := *sig.ClosedAt
		cp.ClosedAt = &t
	}
	return &cp
}
