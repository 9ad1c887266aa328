package cmd

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/tradejournal/journal"
	"github.com/rustyeddy/tradejournal/ledger"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List recorded trades",
	Long: `List trades in the order they were recorded.

Examples:
  tradejournal list
  tradejournal list --today
  tradejournal list --day 2024-01-15 --org`,
	Args: cobra.NoArgs,
	RunE: runList,
}

var showCmd = &cobra.Command{
	Use:   "show <trade-id>",
	Short: "Show one trade as an Org entry",
	Args:  cobra.ExactArgs(1),
	RunE:  runShow,
}

var (
	listToday bool
	listDay   string
	listOrg   bool
)

// nowFunc is the CLI clock.
var nowFunc = time.Now

func init() {
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(showCmd)

	listCmd.Flags().BoolVar(&listToday, "today", false, "only trades recorded today")
	listCmd.Flags().StringVar(&listDay, "day", "", "only trades recorded on YYYY-MM-DD")
	listCmd.Flags().BoolVar(&listOrg, "org", false, "print Org-mode entries instead of a table")
}

func runList(cmd *cobra.Command, args []string) error {
	sess, store, err := openSession(cmd.Context())
	if err != nil {
		return err
	}
	defer store.Close()

	st, _ := sess.Snapshot()
	recs := st.Records

	day := listDay
	if listToday {
		day = nowFunc().Format("2006-01-02")
	}
	if day != "" {
		start, end, err := dayBounds(time.Local, day)
		if err != nil {
			return fmt.Errorf("date: %w", err)
		}
		recs, err = journal.SelectTrades(cmd.Context(), store, recs, start, end)
		if err != nil {
			return fmt.Errorf("list trades: %w", err)
		}
	}

	out := cmd.OutOrStdout()
	if listOrg {
		fmt.Fprintln(out, journal.FormatTradesOrg(recs))
		return nil
	}
	printTrades(out, recs)
	return nil
}

func runShow(cmd *cobra.Command, args []string) error {
	sess, store, err := openSession(cmd.Context())
	if err != nil {
		return err
	}
	defer store.Close()

	st, _ := sess.Snapshot()
	rec, err := journal.LookupTrade(cmd.Context(), store, st.Records, args[0])
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), journal.FormatTradeOrg(rec))
	return nil
}

func printTrades(out io.Writer, recs []ledger.TradeRecord) {
	if len(recs) == 0 {
		fmt.Fprintln(out, "No trades recorded yet.")
		return
	}
	fmt.Fprintf(out, "%-16s  %-10s  %-4s  %12s  %12s  %8s  %14s  %14s\n",
		"DATE", "SYMBOL", "TYPE", "ENTRY", "EXIT", "LOTS", "P&L", "BALANCE")
	for _, r := range recs {
		pnl := money(r.PnL)
		if r.PnLOverride {
			pnl += "*"
		}
		fmt.Fprintf(out, "%-16s  %-10s  %-4s  %12.2f  %12.2f  %8.2f  %14s  %14s\n",
			r.Timestamp.Local().Format("2006-01-02 15:04"), r.Symbol, r.Direction,
			r.EntryPrice, r.ExitPrice, r.LotSize, pnl, money(r.RunningBalance))
	}
}

func dayBounds(loc *time.Location, day string) (time.Time, time.Time, error) {
	t, err := time.ParseInLocation("2006-01-02", day, loc)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	start := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
	end := start.AddDate(0, 0, 1)
	return start, end, nil
}
