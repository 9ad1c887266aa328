package journal

import (
	"encoding/csv"
	"io"
	"strconv"
	"time"

	"github.com/rustyeddy/tradejournal/ledger"
)

var csvHeader = []string{
	"trade_id", "date", "symbol", "type", "entry_price", "exit_price",
	"lot_size", "pnl", "running_balance", "custom_pnl", "notes",
}

// WriteCSV writes a header and one row per record.
func WriteCSV(w io.Writer, recs []ledger.TradeRecord) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, t := range recs {
		err := cw.Write([]string{
			t.ID,
			t.Timestamp.UTC().Format(time.RFC3339),
			t.Symbol,
			t.Direction.String(),
			f(t.EntryPrice),
			f(t.ExitPrice),
			f(t.LotSize),
			f(t.PnL),
			f(t.RunningBalance),
			strconv.FormatBool(t.PnLOverride),
			t.Notes,
		})
		if err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func f(x float64) string {
	return strconv.FormatFloat(x, 'f', 6, 64)
}
