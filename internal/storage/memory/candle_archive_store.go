package memory

import (
	"context"
	"sort"
	"sync"

	"signal-impact-lab/internal/domain"
	"signal-impact-lab/internal/storage"
)

// CandleArchiveStore is an in-memory implementation of storage.CandleArchiveStore.
type CandleArchiveStore struct {
	mu   sync.RWMutex
	data map[string][]*domain.ArchivedCandle // keyed by provider id
}

// NewCandleArchiveStore creates a new in-memory candle archive store.
func NewCandleArchiveStore() *CandleArchiveStore {
	return &CandleArchiveStore{
		data: make(map[string][]*domain.ArchivedCandle),
	}
}

// Compile-time interface check.
var _ storage.CandleArchiveStore = (*CandleArchiveStore)(nil)

// InsertBulk archives a fetched candle window.
func (s *CandleArchiveStore) InsertBulk(_ context.Context, candles []*domain.ArchivedCandle) error {
	if len(candles) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, c := range candles {
		if c == nil || c.ProviderID == "" {
			return storage.ErrInvalidInput
		}
		cp := *c
		s.data[c.ProviderID] = append(s.data[c.ProviderID], &cp)
	}
	return nil
}

// GetByProviderID retrieves archived candles for a provider id, ordered by
// candle time ascending.
func (s *CandleArchiveStore) GetByProviderID(_ context.Context, providerID string) ([]*domain.ArchivedCandle, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stored := s.data[providerID]
	out := make([]*domain.ArchivedCandle, 0, len(stored))
	for _, c := range stored {
		cp := *c
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Candle.Time.Before(out[j].Candle.Time)
	})
	return out, nil
}
