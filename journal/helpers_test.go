package journal

import (
	"time"

	"github.com/rustyeddy/tradejournal/ledger"
)

var (
	day1 = time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	day2 = time.Date(2024, 5, 2, 14, 30, 0, 0, time.UTC)
)

// sampleState is the journal scenario: 10000 start, a long and a short
// trade of +10 each, then an override loss.
func sampleState() ledger.State {
	return ledger.State{
		StartingBalance: 10000,
		BalanceSet:      true,
		Records: []ledger.TradeRecord{
			{
				ID: "01HX0000000000000000000001", Timestamp: day1, Symbol: "XAUUSD", Direction: ledger.Long,
				EntryPrice: 2000, ExitPrice: 2010, LotSize: 1, PnL: 10, RunningBalance: 10010,
				Notes: "london open",
			},
			{
				ID: "01HX0000000000000000000002", Timestamp: day1.Add(time.Hour), Symbol: "XAUUSD", Direction: ledger.Short,
				EntryPrice: 2010, ExitPrice: 2005, LotSize: 2, PnL: 10, RunningBalance: 10020,
			},
			{
				ID: "01HX0000000000000000000003", Timestamp: day2, Symbol: "EURUSD", Direction: ledger.Long,
				PnL: -50, RunningBalance: 9970, PnLOverride: true, Notes: "manual | fill",
			},
		},
	}
}
