package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/tradejournal/ledger"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show dashboard statistics",
	Args:  cobra.NoArgs,
	RunE:  runStats,
}

func init() {
	rootCmd.AddCommand(statsCmd)
}

func runStats(cmd *cobra.Command, args []string) error {
	sess, store, err := openSession(cmd.Context())
	if err != nil {
		return err
	}
	defer store.Close()

	st, _ := sess.Snapshot()
	s := ledger.ComputeStats(st, nowFunc())

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Account balance:  %s\n", money(s.CurrentBalance))
	fmt.Fprintf(out, "Starting balance: %s\n", money(s.StartingBalance))
	fmt.Fprintf(out, "Total P&L:        %s\n", money(s.TotalPnL))
	fmt.Fprintf(out, "Trades:           %d (%d today)\n", s.Trades, s.TradesToday)
	fmt.Fprintf(out, "Win rate:         %.1f%% (%d/%d)\n", s.WinRate, s.Wins, s.Trades)
	if s.Trades > 0 {
		fmt.Fprintf(out, "Best trade:       %s\n", money(s.BestPnL))
		fmt.Fprintf(out, "Worst trade:      %s\n", money(s.WorstPnL))
	}
	return nil
}
