package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/tradejournal/internal/form"
	"github.com/rustyeddy/tradejournal/ledger"
)

var addCmd = &cobra.Command{
	Use:   "add",
	Short: "Record a trade",
	Long: `Append a trade to the journal.

P&L is (exit - entry) * lot for Buy and (entry - exit) * lot for Sell.
A blank or zero price or lot size gives a P&L of 0. Pass --pnl to record
the P&L directly instead.

Examples:
  tradejournal add --symbol XAUUSD --type buy --entry 2000 --exit 2010 --lot 1
  tradejournal add --symbol EURUSD --type sell --pnl -50 --notes "stopped out"`,
	Args: cobra.NoArgs,
	RunE: runAdd,
}

var addForm form.Trade

func init() {
	rootCmd.AddCommand(addCmd)

	addCmd.Flags().StringVarP(&addForm.Symbol, "symbol", "s", "", "instrument symbol (required)")
	addCmd.Flags().StringVarP(&addForm.Direction, "type", "t", "buy", "buy or sell")
	addCmd.Flags().StringVar(&addForm.EntryPrice, "entry", "", "entry price")
	addCmd.Flags().StringVar(&addForm.ExitPrice, "exit", "", "exit price")
	addCmd.Flags().StringVar(&addForm.LotSize, "lot", "", "lot size")
	addCmd.Flags().StringVar(&addForm.CustomPnL, "pnl", "", "custom P&L, overrides the computed value")
	addCmd.Flags().StringVarP(&addForm.Notes, "notes", "n", "", "free-text notes")
	addCmd.MarkFlagRequired("symbol")
}

func runAdd(cmd *cobra.Command, args []string) error {
	if err := requireLogin(); err != nil {
		return err
	}
	in, err := addForm.Input()
	if err != nil {
		return err
	}

	sess, store, err := openSession(cmd.Context())
	if err != nil {
		return err
	}
	defer store.Close()

	if st, _ := sess.Snapshot(); !st.BalanceSet {
		return errors.New("set your starting balance first: tradejournal balance set <amount>")
	}

	rec, _, err := sess.AppendTrade(cmd.Context(), in)
	if err != nil && !errors.Is(err, ledger.ErrPersist) {
		return err
	}

	out := cmd.OutOrStdout()
	source := ""
	if rec.PnLOverride {
		source = " (custom)"
	}
	fmt.Fprintf(out, "✓ Recorded %s %s %s\n", rec.Symbol, rec.Direction, rec.ID)
	fmt.Fprintf(out, "  P&L: %s%s\n", money(rec.PnL), source)
	fmt.Fprintf(out, "  Balance: %s\n", money(rec.RunningBalance))
	return err
}
