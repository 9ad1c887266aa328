package journal

import (
	"fmt"
	"strings"
	"time"

	"github.com/rustyeddy/tradejournal/ledger"
)

// FormatTradeOrg renders a TradeRecord as an Org-mode block suitable for pasting into a journal.
// Structured facts go in the PROPERTIES drawer; the notes become the body.
func FormatTradeOrg(t ledger.TradeRecord) string {
	heading := fmt.Sprintf("** Trade: %s %s (%s)", t.Symbol, t.Direction, shortID(t.ID))
	source := "computed"
	if t.PnLOverride {
		source = "override"
	}

	var b strings.Builder
	b.WriteString(heading)
	b.WriteString("\n")
	b.WriteString(":PROPERTIES:\n")
	b.WriteString(fmt.Sprintf(":TRADE_ID: %s\n", t.ID))
	b.WriteString(fmt.Sprintf(":SYMBOL: %s\n", t.Symbol))
	b.WriteString(fmt.Sprintf(":TYPE: %s\n", t.Direction))
	b.WriteString(fmt.Sprintf(":DATE: %s\n", t.Timestamp.UTC().Format(time.RFC3339)))
	b.WriteString(fmt.Sprintf(":LOT_SIZE: %.2f\n", t.LotSize))
	b.WriteString(fmt.Sprintf(":ENTRY_PRICE: %.5f\n", t.EntryPrice))
	b.WriteString(fmt.Sprintf(":EXIT_PRICE: %.5f\n", t.ExitPrice))
	b.WriteString(fmt.Sprintf(":PNL: %.2f\n", t.PnL))
	b.WriteString(fmt.Sprintf(":PNL_SOURCE: %s\n", source))
	b.WriteString(fmt.Sprintf(":RUNNING_BALANCE: %.2f\n", t.RunningBalance))
	b.WriteString(":END:\n")
	b.WriteString("\n")
	b.WriteString("*** Notes\n")
	if t.Notes != "" {
		for _, line := range strings.Split(strings.TrimSpace(t.Notes), "\n") {
			b.WriteString("- " + line + "\n")
		}
	} else {
		b.WriteString("- \n")
	}
	b.WriteString("\n*** Review\n- \n")

	return b.String()
}

// FormatTradesOrg renders multiple trades separated by blank lines.
func FormatTradesOrg(trades []ledger.TradeRecord) string {
	var b strings.Builder
	for i, t := range trades {
		if i > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(FormatTradeOrg(t))
	}
	return b.String()
}

func shortID(full string) string {
	if len(full) <= 8 {
		return full
	}
	return full[:8]
}
