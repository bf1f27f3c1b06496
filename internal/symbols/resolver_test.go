package symbols

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCatalogSource struct {
	entries []CatalogEntry
	err     error
	calls   atomic.Int32
}

func (s *fakeCatalogSource) Name() string { return "fake" }

func (s *fakeCatalogSource) List(_ context.Context) ([]CatalogEntry, error) {
	s.calls.Add(1)
	if s.err != nil {
		return nil, s.err
	}
	return s.entries, nil
}

func TestResolveWellKnownSkipsCatalog(t *testing.T) {
	source := &fakeCatalogSource{entries: []CatalogEntry{
		// A conflicting catalog listing must never shadow a well-known major.
		{ProviderID: "wrapped-bitcoin-clone", Symbol: "btc"},
	}}
	r := NewResolver(NewCachedCatalog(source))

	id, err := r.Resolve(context.Background(), "BTC")
	require.NoError(t, err)
	assert.Equal(t, "bitcoin", id)
	assert.Equal(t, int32(0), source.calls.Load())
}

func TestResolveIsCaseInsensitive(t *testing.T) {
	r := NewResolver(nil)

	for _, input := range []string{"eth", "Eth", " ETH "} {
		id, err := r.Resolve(context.Background(), input)
		require.NoError(t, err)
		assert.Equal(t, "ethereum", id)
	}
}

func TestResolveFromCatalog(t *testing.T) {
	source := &fakeCatalogSource{entries: []CatalogEntry{
		{ProviderID: "obscure-token", Symbol: "obsc"},
	}}
	r := NewResolver(NewCachedCatalog(source))

	id, err := r.Resolve(context.Background(), "OBSC")
	require.NoError(t, err)
	assert.Equal(t, "obscure-token", id)
}

func TestResolveLowercaseFallback(t *testing.T) {
	source := &fakeCatalogSource{entries: []CatalogEntry{
		{ProviderID: "obscure-token", Symbol: "obsc"},
	}}
	r := NewResolver(NewCachedCatalog(source))

	id, err := r.Resolve(context.Background(), "UNLISTED")
	require.NoError(t, err)
	assert.Equal(t, "unlisted", id)
}

func TestResolveFallbackWithoutCatalog(t *testing.T) {
	r := NewResolver(nil)

	id, err := r.Resolve(context.Background(), "ZZZ")
	require.NoError(t, err)
	assert.Equal(t, "zzz", id)
}

func TestResolveCatalogLoadFailureIsFatal(t *testing.T) {
	boom := errors.New("listing unavailable")
	source := &fakeCatalogSource{err: boom}
	r := NewResolver(NewCachedCatalog(source))

	_, err := r.Resolve(context.Background(), "OBSC")
	require.ErrorIs(t, err, boom)
}

func TestCatalogLoadsOnce(t *testing.T) {
	source := &fakeCatalogSource{entries: []CatalogEntry{
		{ProviderID: "obscure-token", Symbol: "obsc"},
	}}
	catalog := NewCachedCatalog(source)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, catalog.EnsureLoaded(context.Background()))
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), source.calls.Load())
	assert.Equal(t, 1, catalog.Size())
}

func TestCatalogFailedLoadRetries(t *testing.T) {
	source := &fakeCatalogSource{err: errors.New("listing unavailable")}
	catalog := NewCachedCatalog(source)

	require.Error(t, catalog.EnsureLoaded(context.Background()))

	// The failure is not cached: once the source recovers, the next pass
	// loads normally.
	source.err = nil
	source.entries = []CatalogEntry{{ProviderID: "obscure-token", Symbol: "obsc"}}
	require.NoError(t, catalog.EnsureLoaded(context.Background()))
	assert.Equal(t, int32(2), source.calls.Load())

	id, ok := catalog.Lookup("OBSC")
	assert.True(t, ok)
	assert.Equal(t, "obscure-token", id)
}

func TestCatalogFirstListingWins(t *testing.T) {
	source := &fakeCatalogSource{entries: []CatalogEntry{
		{ProviderID: "first-token", Symbol: "dup"},
		{ProviderID: "second-token", Symbol: "DUP"},
		{ProviderID: "", Symbol: "noid"},
		{ProviderID: "nosym", Symbol: ""},
	}}
	catalog := NewCachedCatalog(source)
	require.NoError(t, catalog.EnsureLoaded(context.Background()))

	id, ok := catalog.Lookup("DUP")
	assert.True(t, ok)
	assert.Equal(t, "first-token", id)
	assert.Equal(t, 1, catalog.Size())
}
