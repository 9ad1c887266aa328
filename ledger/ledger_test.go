package ledger

import (
	"encoding/json"
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2024, 5, 6, 10, 0, 0, 0, time.UTC)

// newTestLedger returns a ledger with a fixed clock and ids T1, T2, ...
func newTestLedger(start float64) *Ledger {
	n := 0
	return New(start,
		WithClock(func() time.Time { return t0 }),
		WithIDs(func() string {
			n++
			return fmt.Sprintf("T%d", n)
		}),
	)
}

func ptr(f float64) *float64 { return &f }

func TestAppendTradePnL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   TradeInput
		want float64
	}{
		{
			name: "long profit",
			in:   TradeInput{Symbol: "xauusd", Direction: Long, EntryPrice: 100, ExitPrice: 110, LotSize: 2},
			want: 20,
		},
		{
			name: "short same prices",
			in:   TradeInput{Symbol: "xauusd", Direction: Short, EntryPrice: 100, ExitPrice: 110, LotSize: 2},
			want: -20,
		},
		{
			name: "short profit",
			in:   TradeInput{Symbol: "EURUSD", Direction: Short, EntryPrice: 1.1, ExitPrice: 1.05, LotSize: 1000},
			want: 50,
		},
		{
			name: "long loss fractional lot",
			in:   TradeInput{Symbol: "XAUUSD", Direction: Long, EntryPrice: 2020, ExitPrice: 2010, LotSize: 0.5},
			want: -5,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			l := newTestLedger(1000)
			rec, err := l.AppendTrade(tt.in)
			require.NoError(t, err)
			assert.InDelta(t, tt.want, rec.PnL, 1e-9)
			assert.False(t, rec.PnLOverride)
			assert.InDelta(t, 1000+tt.want, rec.RunningBalance, 1e-9)
		})
	}
}

// A zero price or lot silently contributes nothing. This mirrors how
// existing journals were recorded and is kept for compatibility only.
func TestAppendTradeZeroInputQuirk(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name              string
		entry, exit, lots float64
	}{
		{"zero lot", 100, 110, 0},
		{"zero entry", 0, 110, 1},
		{"zero exit", 100, 0, 1},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			l := newTestLedger(500)
			rec, err := l.AppendTrade(TradeInput{
				Symbol: "XAUUSD", Direction: Long,
				EntryPrice: tt.entry, ExitPrice: tt.exit, LotSize: tt.lots,
			})
			require.NoError(t, err)
			assert.Equal(t, 0.0, rec.PnL)
			assert.Equal(t, 500.0, rec.RunningBalance)
		})
	}
}

func TestComputePnLNaNIsFalsy(t *testing.T) {
	t.Parallel()
	assert.Equal(t, 0.0, ComputePnL(Long, math.NaN(), 110, 1))
	assert.Equal(t, 0.0, ComputePnL(Direction(9), 100, 110, 1))
}

func TestAppendTradeOverride(t *testing.T) {
	t.Parallel()

	l := newTestLedger(1000)
	rec, err := l.AppendTrade(TradeInput{
		Symbol: "XAUUSD", Direction: Long,
		EntryPrice: 100, ExitPrice: 200, LotSize: 1,
		Override: ptr(-50),
	})
	require.NoError(t, err)
	assert.Equal(t, -50.0, rec.PnL)
	assert.True(t, rec.PnLOverride)
	assert.Equal(t, 950.0, rec.RunningBalance)

	// prices are optional with an override and kept as given
	rec, err = l.AppendTrade(TradeInput{Symbol: "BTCUSD", Direction: Short, Override: ptr(75)})
	require.NoError(t, err)
	assert.Equal(t, 75.0, rec.PnL)
	assert.Equal(t, 0.0, rec.EntryPrice)
	assert.Equal(t, 1025.0, rec.RunningBalance)
}

func TestAppendTradeAssignsFields(t *testing.T) {
	t.Parallel()

	l := newTestLedger(0)
	rec, err := l.AppendTrade(TradeInput{
		Symbol: "  eurusd ", Direction: Long,
		EntryPrice: 1, ExitPrice: 2, LotSize: 3, Notes: "breakout",
	})
	require.NoError(t, err)
	assert.Equal(t, "T1", rec.ID)
	assert.Equal(t, "EURUSD", rec.Symbol)
	assert.True(t, rec.Timestamp.Equal(t0))
	assert.Equal(t, "breakout", rec.Notes)
}

func TestAppendTradeRejectsInvalidInput(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		in    TradeInput
		field string
	}{
		{"empty symbol", TradeInput{Symbol: " ", Direction: Long, EntryPrice: 1, ExitPrice: 2, LotSize: 1}, "symbol"},
		{"no direction", TradeInput{Symbol: "X", EntryPrice: 1, ExitPrice: 2, LotSize: 1}, "direction"},
		{"nan entry", TradeInput{Symbol: "X", Direction: Long, EntryPrice: math.NaN(), ExitPrice: 2, LotSize: 1}, "entry price"},
		{"inf exit", TradeInput{Symbol: "X", Direction: Long, EntryPrice: 1, ExitPrice: math.Inf(1), LotSize: 1}, "exit price"},
		{"negative lot", TradeInput{Symbol: "X", Direction: Short, EntryPrice: 1, ExitPrice: 2, LotSize: -1}, "lot size"},
		{"nan override", TradeInput{Symbol: "X", Direction: Short, Override: ptr(math.NaN())}, "pnl"},
		{"long pnl overflows", TradeInput{Symbol: "X", Direction: Long, EntryPrice: 1, ExitPrice: 1e308, LotSize: 1e10}, "pnl"},
		{"short pnl overflows", TradeInput{Symbol: "X", Direction: Short, EntryPrice: 1e308, ExitPrice: 1, LotSize: 1e10}, "pnl"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			l := newTestLedger(100)
			_, err := l.AppendTrade(TradeInput{Symbol: "OK", Direction: Long, EntryPrice: 1, ExitPrice: 2, LotSize: 1})
			require.NoError(t, err)
			before := l.Snapshot()

			_, err = l.AppendTrade(tt.in)
			require.Error(t, err)
			var ve *ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, tt.field, ve.Field)
			assert.Equal(t, before, l.Snapshot(), "rejected append must not mutate")
		})
	}
}

func TestAppendTradeRejectsBalanceOverflow(t *testing.T) {
	t.Parallel()

	l := newTestLedger(math.MaxFloat64)
	before := l.Snapshot()

	_, err := l.AppendTrade(TradeInput{Symbol: "X", Direction: Long, Override: ptr(math.MaxFloat64)})
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "balance", ve.Field)
	assert.Equal(t, before, l.Snapshot())

	rec, err := l.AppendTrade(TradeInput{Symbol: "X", Direction: Long, Override: ptr(-1)})
	require.NoError(t, err)
	assert.False(t, math.IsInf(rec.RunningBalance, 0))
	assert.Equal(t, "T1", rec.ID, "rejected append must not consume an id")
}

func TestRunningBalanceInvariant(t *testing.T) {
	t.Parallel()

	const start = 2500.0
	l := newTestLedger(start)
	inputs := []TradeInput{
		{Symbol: "A", Direction: Long, EntryPrice: 10, ExitPrice: 12, LotSize: 5},
		{Symbol: "B", Direction: Short, EntryPrice: 10, ExitPrice: 12, LotSize: 5},
		{Symbol: "C", Direction: Long, Override: ptr(-333.25)},
		{Symbol: "D", Direction: Short, EntryPrice: 50, ExitPrice: 40, LotSize: 0.1},
		{Symbol: "E", Direction: Long, EntryPrice: 50, ExitPrice: 40, LotSize: 0},
	}
	for _, in := range inputs {
		_, err := l.AppendTrade(in)
		require.NoError(t, err)
	}

	sum := 0.0
	for i, r := range l.Records() {
		sum += r.PnL
		assert.InDelta(t, start+sum, r.RunningBalance, 1e-9, "record %d", i)
	}
	assert.InDelta(t, start+sum, l.CurrentBalance(), 1e-9)
}

func TestAppendOrder(t *testing.T) {
	t.Parallel()

	l := newTestLedger(0)
	_, err := l.AppendTrade(TradeInput{Symbol: "FIRST", Direction: Long, Override: ptr(1)})
	require.NoError(t, err)
	_, err = l.AppendTrade(TradeInput{Symbol: "SECOND", Direction: Long, Override: ptr(2)})
	require.NoError(t, err)

	recs := l.Records()
	require.Len(t, recs, 2)
	assert.Equal(t, "FIRST", recs[0].Symbol)
	assert.Equal(t, "SECOND", recs[1].Symbol)
}

func TestRebase(t *testing.T) {
	t.Parallel()

	l := newTestLedger(1000)
	for _, p := range []float64{15, -40, 7.5} {
		_, err := l.AppendTrade(TradeInput{Symbol: "X", Direction: Long, Override: ptr(p)})
		require.NoError(t, err)
	}
	before := l.Records()
	assert.False(t, l.BalanceSet())

	require.NoError(t, l.Rebase(200))
	assert.True(t, l.BalanceSet())
	assert.Equal(t, 200.0, l.StartingBalance())

	sum := 0.0
	for i, r := range l.Records() {
		sum += r.PnL
		assert.Equal(t, before[i].PnL, r.PnL, "pnl must not change")
		assert.Equal(t, before[i].ID, r.ID)
		assert.InDelta(t, 200+sum, r.RunningBalance, 1e-9)
	}
}

func TestRebaseIdempotent(t *testing.T) {
	t.Parallel()

	l := newTestLedger(1000)
	_, err := l.AppendTrade(TradeInput{Symbol: "X", Direction: Short, EntryPrice: 3, ExitPrice: 1, LotSize: 4})
	require.NoError(t, err)

	require.NoError(t, l.Rebase(42))
	once := l.Snapshot()
	require.NoError(t, l.Rebase(42))
	assert.Equal(t, once, l.Snapshot())
}

func TestRebaseEmptyAndNegative(t *testing.T) {
	t.Parallel()

	l := newTestLedger(1000)
	require.NoError(t, l.Rebase(-5))
	assert.Equal(t, -5.0, l.CurrentBalance())
}

func TestRebaseRejectsNonFinite(t *testing.T) {
	t.Parallel()

	l := newTestLedger(1000)
	_, err := l.AppendTrade(TradeInput{Symbol: "X", Direction: Long, Override: ptr(10)})
	require.NoError(t, err)
	before := l.Snapshot()

	for _, v := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		err := l.Rebase(v)
		assert.True(t, IsValidation(err))
	}
	assert.Equal(t, before, l.Snapshot())
}

func TestRebaseRejectsOverflowingBalance(t *testing.T) {
	t.Parallel()

	l := newTestLedger(0)
	_, err := l.AppendTrade(TradeInput{Symbol: "X", Direction: Long, Override: ptr(1.7e308)})
	require.NoError(t, err)
	before := l.Snapshot()

	err = l.Rebase(1.7e308)
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "starting balance", ve.Field)
	assert.Equal(t, before, l.Snapshot())
	assert.False(t, l.BalanceSet())

	require.NoError(t, l.Rebase(-1.7e308))
	assert.Equal(t, 0.0, l.CurrentBalance())
}

func TestScenario(t *testing.T) {
	t.Parallel()

	l := newTestLedger(10000)

	r1, err := l.AppendTrade(TradeInput{Symbol: "XAUUSD", Direction: Long, EntryPrice: 2000, ExitPrice: 2010, LotSize: 1})
	require.NoError(t, err)
	assert.InDelta(t, 10, r1.PnL, 1e-9)
	assert.InDelta(t, 10010, r1.RunningBalance, 1e-9)

	r2, err := l.AppendTrade(TradeInput{Symbol: "XAUUSD", Direction: Short, EntryPrice: 2010, ExitPrice: 2005, LotSize: 2})
	require.NoError(t, err)
	assert.InDelta(t, 10, r2.PnL, 1e-9)
	assert.InDelta(t, 10020, r2.RunningBalance, 1e-9)

	require.NoError(t, l.Rebase(5000))
	recs := l.Records()
	assert.InDelta(t, 5010, recs[0].RunningBalance, 1e-9)
	assert.InDelta(t, 5020, recs[1].RunningBalance, 1e-9)
	assert.InDelta(t, 10, recs[0].PnL, 1e-9)
	assert.InDelta(t, 10, recs[1].PnL, 1e-9)
}

func TestRecordsIsACopy(t *testing.T) {
	t.Parallel()

	l := newTestLedger(0)
	_, err := l.AppendTrade(TradeInput{Symbol: "X", Direction: Long, Override: ptr(1)})
	require.NoError(t, err)

	recs := l.Records()
	recs[0].PnL = 999
	assert.Equal(t, 1.0, l.Records()[0].PnL)

	snap := l.Snapshot()
	snap.Records[0].Symbol = "MUTATED"
	assert.Equal(t, "X", l.Records()[0].Symbol)
}

func TestRestoreRederivesBalances(t *testing.T) {
	t.Parallel()

	st := State{
		StartingBalance: 1000,
		BalanceSet:      true,
		Records: []TradeRecord{
			{ID: "a", Symbol: "xau", Direction: Long, PnL: 10, RunningBalance: 123456},
			{ID: "b", Symbol: "XAU", Direction: Short, PnL: -4, RunningBalance: -1},
		},
	}

	l := newTestLedger(0)
	require.NoError(t, l.Restore(st))

	recs := l.Records()
	assert.Equal(t, 1010.0, recs[0].RunningBalance)
	assert.Equal(t, 1006.0, recs[1].RunningBalance)
	assert.Equal(t, "XAU", recs[0].Symbol)
	assert.True(t, l.BalanceSet())

	// appending continues from the healed balance
	rec, err := l.AppendTrade(TradeInput{Symbol: "X", Direction: Long, Override: ptr(4)})
	require.NoError(t, err)
	assert.Equal(t, 1010.0, rec.RunningBalance)
}

func TestRestoreRejectsInvalidState(t *testing.T) {
	t.Parallel()

	good := TradeRecord{ID: "a", Symbol: "X", Direction: Long, PnL: 1}
	tests := []struct {
		name string
		st   State
	}{
		{"nan balance", State{StartingBalance: math.NaN()}},
		{"missing id", State{Records: []TradeRecord{{Symbol: "X", Direction: Long}}}},
		{"duplicate id", State{Records: []TradeRecord{good, good}}},
		{"missing symbol", State{Records: []TradeRecord{{ID: "a", Direction: Long}}}},
		{"bad direction", State{Records: []TradeRecord{{ID: "a", Symbol: "X"}}}},
		{"inf pnl", State{Records: []TradeRecord{{ID: "a", Symbol: "X", Direction: Long, PnL: math.Inf(1)}}}},
		{"balance overflows", State{StartingBalance: 1.7e308, Records: []TradeRecord{{ID: "a", Symbol: "X", Direction: Long, PnL: 1.7e308}}}},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			l := newTestLedger(77)
			_, err := l.AppendTrade(TradeInput{Symbol: "KEEP", Direction: Long, Override: ptr(3)})
			require.NoError(t, err)
			before := l.Snapshot()

			assert.True(t, IsValidation(l.Restore(tt.st)))
			assert.Equal(t, before, l.Snapshot())
		})
	}
}

func TestTradeRecordJSON(t *testing.T) {
	t.Parallel()

	rec := TradeRecord{
		ID: "T1", Timestamp: t0, Symbol: "XAUUSD", Direction: Short,
		EntryPrice: 2010, ExitPrice: 2005, LotSize: 2, PnL: 10, RunningBalance: 10020,
		PnLOverride: true,
	}
	b, err := json.Marshal(rec)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"tradeType":"Sell"`)
	assert.Contains(t, string(b), `"runningBalance":10020`)
	assert.Contains(t, string(b), `"customPnL":true`)

	var back TradeRecord
	require.NoError(t, json.Unmarshal(b, &back))
	assert.Equal(t, Short, back.Direction)
}

func TestParseDirection(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in      string
		want    Direction
		wantErr bool
	}{
		{"Buy", Long, false},
		{"long", Long, false},
		{"SELL", Short, false},
		{"short", Short, false},
		{"hold", 0, true},
		{"", 0, true},
	}
	for _, tt := range tests {
		got, err := ParseDirection(tt.in)
		if tt.wantErr {
			assert.Error(t, err, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got)
	}
}
