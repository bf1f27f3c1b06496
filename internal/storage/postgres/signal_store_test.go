package postgres_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"signal-impact-lab/internal/domain"
	"signal-impact-lab/internal/storage"
	"signal-impact-lab/internal/storage/postgres"
)

func testSignal(id string, createdAt time.Time) *domain.TradeSignal {
	return &domain.TradeSignal{
		ID:             id,
		SourceHandle:   "@handle",
		TokenSymbols:   []string{"BTC", "ETH"},
		EntryPrice:     100,
		Direction:      domain.DirectionLong,
		TakeProfitPct:  10,
		StopLossPct:    5,
		TimelineWindow: "7 days",
		CreatedAt:      createdAt,
		EvaluationOpen: true,
	}
}

func TestSignalStore_RoundTrip(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := postgres.NewSignalStore(pool)
	createdAt := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	sig := testSignal("sig-1", createdAt)
	require.NoError(t, store.Insert(ctx, sig))

	got, err := store.GetByID(ctx, "sig-1")
	require.NoError(t, err)
	assert.Equal(t, sig.ID, got.ID)
	assert.Equal(t, sig.SourceHandle, got.SourceHandle)
	assert.Equal(t, sig.TokenSymbols, got.TokenSymbols)
	assert.Equal(t, sig.EntryPrice, got.EntryPrice)
	assert.Equal(t, domain.DirectionLong, got.Direction)
	assert.Equal(t, sig.TimelineWindow, got.TimelineWindow)
	assert.True(t, got.CreatedAt.Equal(createdAt))
	assert.True(t, got.EvaluationOpen)
	assert.Nil(t, got.ImpactFactor)
	assert.Nil(t, got.ClosedAt)

	// Duplicate id
	assert.ErrorIs(t, store.Insert(ctx, testSignal("sig-1", createdAt)), storage.ErrDuplicateKey)

	// Missing id
	_, err = store.GetByID(ctx, "missing")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestSignalStore_FindEligible(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := postgres.NewSignalStore(pool)
	createdAt := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, store.Insert(ctx, testSignal("sig-b", createdAt.Add(time.Hour))))
	require.NoError(t, store.Insert(ctx, testSignal("sig-a", createdAt)))

	closed := testSignal("sig-closed", createdAt)
	closed.EvaluationOpen = false
	require.NoError(t, store.Insert(ctx, closed))

	noPrice := testSignal("sig-noprice", createdAt)
	noPrice.EntryPrice = 0
	require.NoError(t, store.Insert(ctx, noPrice))

	noSymbols := testSignal("sig-nosymbols", createdAt)
	noSymbols.TokenSymbols = []string{}
	require.NoError(t, store.Insert(ctx, noSymbols))

	eligible, err := store.FindEligible(ctx, 10)
	require.NoError(t, err)
	require.Len(t, eligible, 2)
	assert.Equal(t, "sig-a", eligible[0].ID)
	assert.Equal(t, "sig-b", eligible[1].ID)

	limited, err := store.FindEligible(ctx, 1)
	require.NoError(t, err)
	require.Len(t, limited, 1)
	assert.Equal(t, "sig-a", limited[0].ID)
}

func TestSignalStore_UpdateEvaluation(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := postgres.NewSignalStore(pool)
	createdAt := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, store.Insert(ctx, testSignal("sig-1", createdAt)))

	// Non-terminal update leaves the flag alone.
	require.NoError(t, store.UpdateEvaluation(ctx, "sig-1", storage.SignalUpdate{
		PnlPct:      2,
		LifetimeMFE: 4,
		LifetimeMAE: 1,
	}))

	got, err := store.GetByID(ctx, "sig-1")
	require.NoError(t, err)
	assert.True(t, got.EvaluationOpen)
	assert.Equal(t, 2.0, got.PnlPct)
	assert.Equal(t, 4.0, got.LifetimeMFE)
	assert.Nil(t, got.ImpactFactor)

	// Terminal update clears the flag and writes impact and close time.
	impact := 1.5
	closedAt := createdAt.AddDate(0, 0, 3)
	require.NoError(t, store.UpdateEvaluation(ctx, "sig-1", storage.SignalUpdate{
		PnlPct:          10,
		LifetimeMFE:     12,
		LifetimeMAE:     1,
		ImpactFactor:    &impact,
		CloseEvaluation: true,
		ClosedAt:        &closedAt,
	}))

	got, err = store.GetByID(ctx, "sig-1")
	require.NoError(t, err)
	assert.False(t, got.EvaluationOpen)
	require.NotNil(t, got.ImpactFactor)
	assert.Equal(t, 1.5, *got.ImpactFactor)
	require.NotNil(t, got.ClosedAt)
	assert.True(t, got.ClosedAt.Equal(closedAt))

	// A duplicate close from an overlapping pass must not resurrect the
	// record or overwrite the recorded impact.
	otherImpact := -1.0
	laterClose := closedAt.Add(time.Hour)
	require.NoError(t, store.UpdateEvaluation(ctx, "sig-1", storage.SignalUpdate{
		PnlPct:          10,
		LifetimeMFE:     12,
		LifetimeMAE:     1,
		ImpactFactor:    &otherImpact,
		CloseEvaluation: true,
		ClosedAt:        &laterClose,
	}))

	got, err = store.GetByID(ctx, "sig-1")
	require.NoError(t, err)
	assert.False(t, got.EvaluationOpen)
	assert.Equal(t, 1.5, *got.ImpactFactor)
	assert.True(t, got.ClosedAt.Equal(closedAt))

	// Unknown id
	err = store.UpdateEvaluation(ctx, "missing", storage.SignalUpdate{})
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestSignalStore_All(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := postgres.NewSignalStore(pool)
	createdAt := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, store.Insert(ctx, testSignal("sig-b", createdAt.Add(time.Hour))))
	closed := testSignal("sig-a", createdAt)
	closed.EvaluationOpen = false
	require.NoError(t, store.Insert(ctx, closed))

	all, err := store.All(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "sig-a", all[0].ID)
	assert.Equal(t, "sig-b", all[1].ID)
}
