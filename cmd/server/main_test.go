package main

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"signal-impact-lab/internal/batch"
	"signal-impact-lab/internal/domain"
	"signal-impact-lab/internal/evaluation"
	"signal-impact-lab/internal/observability"
	"signal-impact-lab/internal/storage"
	"signal-impact-lab/internal/storage/memory"
	"signal-impact-lab/internal/symbols"
)

// Shared across tests: promauto registers against the default registry, so
// the collectors can only be created once per test binary.
var testMetrics = observability.NewMetrics("server_test")

type staticResolver struct{}

func (staticResolver) Resolve(ctx context.Context, symbol string) (string, error) {
	return "bitcoin", nil
}

type emptyHistory struct{}

func (emptyHistory) FetchWindow(ctx context.Context, providerID string, since time.Time) (*domain.WindowSummary, error) {
	return nil, nil
}

type testCatalogSource struct{}

func (testCatalogSource) List(ctx context.Context) ([]symbols.CatalogEntry, error) {
	return []symbols.CatalogEntry{{ProviderID: "bitcoin", Symbol: "BTC"}}, nil
}

func (testCatalogSource) Name() string { return "test" }

// brokenSignalStore fails every read, turning any pass into a fatal error.
type brokenSignalStore struct{}

func (brokenSignalStore) Insert(ctx context.Context, s *domain.TradeSignal) error {
	return errors.New("store down")
}

func (brokenSignalStore) GetByID(ctx context.Context, id string) (*domain.TradeSignal, error) {
	return nil, storage.ErrNotFound
}

func (brokenSignalStore) FindEligible(ctx context.Context, limit int) ([]*domain.TradeSignal, error) {
	return nil, errors.New("store down")
}

func (brokenSignalStore) UpdateEvaluation(ctx context.Context, id string, upd storage.SignalUpdate) error {
	return errors.New("store down")
}

func newTestServer(signals storage.SignalStore) *Server {
	logger := log.New(io.Discard, "", 0)
	evaluator := evaluation.NewEvaluator(staticResolver{}, emptyHistory{}, nil)
	runner := batch.NewRunner(batch.RunnerOptions{
		Signals:   signals,
		Evaluator: evaluator,
		Pace:      -1,
		Metrics:   testMetrics,
		Logger:    logger,
	})
	return &Server{
		runner:   runner,
		catalog:  symbols.NewCachedCatalog(testCatalogSource{}),
		metrics:  testMetrics,
		interval: time.Hour,
		logger:   logger,
		started:  time.Now(),
	}
}

func TestHandleEvaluateMethodNotAllowed(t *testing.T) {
	s := newTestServer(memory.NewSignalStore())

	rec := httptest.NewRecorder()
	s.handleEvaluate(rec, httptest.NewRequest(http.MethodGet, "/evaluate", nil))

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestHandleEvaluateConflict(t *testing.T) {
	s := newTestServer(memory.NewSignalStore())
	s.mu.Lock()
	s.passRunning = true
	s.mu.Unlock()

	rec := httptest.NewRecorder()
	s.handleEvaluate(rec, httptest.NewRequest(http.MethodPost, "/evaluate", nil))

	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestHandleEvaluatePassFailure(t *testing.T) {
	// A fatal pass must surface as a server error, not as a stale or null
	// summary with a 200.
	s := newTestServer(brokenSignalStore{})

	rec := httptest.NewRecorder()
	s.handleEvaluate(rec, httptest.NewRequest(http.MethodPost, "/evaluate", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "evaluation pass failed")

	// The failed pass must not leave the single-flight latch held.
	s.mu.Lock()
	running := s.passRunning
	s.mu.Unlock()
	assert.False(t, running)
}

func TestHandleEvaluateSuccess(t *testing.T) {
	s := newTestServer(memory.NewSignalStore())

	rec := httptest.NewRecorder()
	s.handleEvaluate(rec, httptest.NewRequest(http.MethodPost, "/evaluate", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var summary batch.Summary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &summary))
	assert.Zero(t, summary.Evaluated)
	assert.Zero(t, summary.Errors)
}
