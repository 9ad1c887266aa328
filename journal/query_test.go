package journal

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetTrade(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	j, _ := newTestSQLite(t)
	defer j.Close()

	st := sampleState()
	require.NoError(t, j.Save(ctx, st))

	for _, want := range st.Records {
		got, err := j.GetTrade(ctx, want.ID)
		require.NoError(t, err)
		assert.Equal(t, want.Symbol, got.Symbol)
		assert.InDelta(t, want.PnL, got.PnL, 1e-9)
	}
}

func TestGetTradeNotFound(t *testing.T) {
	t.Parallel()

	j, _ := newTestSQLite(t)
	defer j.Close()

	_, err := j.GetTrade(context.Background(), "nonexistent")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Contains(t, err.Error(), "not found")
}

func TestListTradesBetween(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	j, _ := newTestSQLite(t)
	defer j.Close()
	require.NoError(t, j.Save(ctx, sampleState()))

	start := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	results, err := j.ListTradesBetween(ctx, start, start.Add(24*time.Hour))
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "01HX0000000000000000000001", results[0].ID)
	assert.Equal(t, "01HX0000000000000000000002", results[1].ID)
}

func TestListTradesBetweenBoundaries(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	j, _ := newTestSQLite(t)
	defer j.Close()
	require.NoError(t, j.Save(ctx, sampleState()))

	// start is inclusive
	results, err := j.ListTradesBetween(ctx, day2, day2.Add(time.Hour))
	require.NoError(t, err)
	assert.Len(t, results, 1)

	// end is exclusive
	results, err = j.ListTradesBetween(ctx, day2.Add(-time.Hour), day2)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestFindTradeAndTradesBetween(t *testing.T) {
	t.Parallel()

	recs := sampleState().Records

	got, err := FindTrade(recs, "01HX0000000000000000000003")
	require.NoError(t, err)
	assert.Equal(t, "EURUSD", got.Symbol)

	_, err = FindTrade(recs, "nope")
	assert.ErrorIs(t, err, ErrNotFound)

	assert.Len(t, TradesBetween(recs, day1, day1.Add(time.Hour)), 1)
	assert.Len(t, TradesBetween(recs, day1, day2.Add(time.Second)), 3)
	assert.Empty(t, TradesBetween(recs, day2.Add(time.Second), day2.Add(time.Hour)))
}

func TestLookupUsesSQLiteQueries(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	j, _ := newTestSQLite(t)
	defer j.Close()
	require.NoError(t, j.Save(ctx, sampleState()))

	// no in-memory records: results must come from the database
	got, err := LookupTrade(ctx, j, nil, "01HX0000000000000000000002")
	require.NoError(t, err)
	assert.Equal(t, "XAUUSD", got.Symbol)

	_, err = LookupTrade(ctx, j, nil, "nope")
	assert.ErrorIs(t, err, ErrNotFound)

	recs, err := SelectTrades(ctx, j, nil, day1, day2)
	require.NoError(t, err)
	assert.Len(t, recs, 2)
}

func TestLookupFallsBackToRecords(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	f := NewFile(filepath.Join(t.TempDir(), "journal.json"))
	recs := sampleState().Records

	got, err := LookupTrade(ctx, f, recs, "01HX0000000000000000000003")
	require.NoError(t, err)
	assert.Equal(t, "EURUSD", got.Symbol)

	found, err := SelectTrades(ctx, f, recs, day2, day2.Add(time.Second))
	require.NoError(t, err)
	assert.Len(t, found, 1)
}
