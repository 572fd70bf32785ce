package price

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"digitalwill-backend/internal/config"
	"digitalwill-backend/internal/types"
	"digitalwill-backend/pkg/database"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeFetcher struct {
	mu           sync.Mutex
	snapshot     *types.PriceSnapshot
	history      []types.PricePoint
	err          error
	marketCalls  int
	historyCalls int
}

func (f *fakeFetcher) FetchMarket(_ context.Context, coinID string) (*types.PriceSnapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.marketCalls++
	if f.err != nil {
		return nil, f.err
	}
	s := *f.snapshot
	s.CoinID = coinID
	return &s, nil
}

func (f *fakeFetcher) FetchHistory(_ context.Context, _ string, _ int) ([]types.PricePoint, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.historyCalls++
	if f.err != nil {
		return nil, f.err
	}
	return f.history, nil
}

type countingRecorder struct {
	mu     sync.Mutex
	counts map[string]int
}

func (r *countingRecorder) ObservePriceUpdate(status string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.counts == nil {
		r.counts = map[string]int{}
	}
	r.counts[status]++
}

func testPriceConfig() *config.PriceConfig {
	return &config.PriceConfig{
		Provider:       "coingecko",
		CoinID:         "aptos",
		UpdateInterval: time.Hour,
		CachePrefix:    "price:",
		HistoryDays:    20,
	}
}

func TestService_SnapshotUnavailableBeforeRefresh(t *testing.T) {
	t.Parallel()

	svc := NewService(testPriceConfig(), &fakeFetcher{}, database.NewMemoryCache(), nil)
	_, err := svc.GetSnapshot(context.Background())
	require.ErrorIs(t, err, ErrPriceUnavailable)
}

func TestService_RefreshCachesSnapshot(t *testing.T) {
	t.Parallel()

	fetcher := &fakeFetcher{snapshot: &types.PriceSnapshot{CurrentPriceUSD: 4.9, PriceChangePercentage24h: 1.5}}
	rec := &countingRecorder{}
	svc := NewService(testPriceConfig(), fetcher, database.NewMemoryCache(), rec)

	resp, err := svc.Refresh(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "$4.90", resp.Display.Price)
	assert.Equal(t, "+1.50%", resp.Display.Change24h)

	got, err := svc.GetPrice(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "aptos", got.Snapshot.CoinID)
	assert.Equal(t, 1, fetcher.marketCalls)
	assert.Equal(t, 1, rec.counts["success"])
}

func TestService_RefreshFailure(t *testing.T) {
	t.Parallel()

	rec := &countingRecorder{}
	svc := NewService(testPriceConfig(), &fakeFetcher{err: errors.New("status: 503")}, database.NewMemoryCache(), rec)

	_, err := svc.Refresh(context.Background())
	require.ErrorIs(t, err, ErrPriceUnavailable)
	assert.Equal(t, 1, rec.counts["error"])
}

func TestService_HistoryIsCached(t *testing.T) {
	t.Parallel()

	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	fetcher := &fakeFetcher{history: []types.PricePoint{
		{Time: base, Price: 1},
		{Time: base.Add(24 * time.Hour), Price: 2},
	}}
	svc := NewService(testPriceConfig(), fetcher, database.NewMemoryCache(), nil)

	first, err := svc.GetHistory(context.Background(), 0)
	require.NoError(t, err)
	assert.Equal(t, 20, first.Days)
	require.Len(t, first.Bars, 2)

	_, err = svc.GetHistory(context.Background(), 0)
	require.NoError(t, err)
	assert.Equal(t, 1, fetcher.historyCalls)

	_, err = svc.GetHistory(context.Background(), 400)
	require.ErrorIs(t, err, ErrInvalidDays)
}

func TestService_StartStop(t *testing.T) {
	t.Parallel()

	fetcher := &fakeFetcher{snapshot: &types.PriceSnapshot{CurrentPriceUSD: 1}}
	svc := NewService(testPriceConfig(), fetcher, database.NewMemoryCache(), nil)

	require.NoError(t, svc.Start(context.Background()))
	snap, err := svc.GetSnapshot(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1.0, snap.CurrentPriceUSD)

	require.NoError(t, svc.Stop())
	require.NoError(t, svc.Stop())
}

func TestService_StartRejectsUnknownProvider(t *testing.T) {
	t.Parallel()

	cfg := testPriceConfig()
	cfg.Provider = "binance"
	svc := NewService(cfg, &fakeFetcher{}, database.NewMemoryCache(), nil)
	require.Error(t, svc.Start(context.Background()))
}
