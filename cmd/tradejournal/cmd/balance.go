package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/tradejournal/internal/form"
	"github.com/rustyeddy/tradejournal/ledger"
)

var balanceCmd = &cobra.Command{
	Use:   "balance",
	Short: "Show or set the starting balance",
	Long: `Without a subcommand, print the starting and current balance.

Subcommands:
  set - Change the starting balance and re-derive every running balance

Examples:
  tradejournal balance
  tradejournal balance set 10000`,
	Args: cobra.NoArgs,
	RunE: runBalance,
}

var balanceSetCmd = &cobra.Command{
	Use:   "set <amount>",
	Short: "Set the starting balance",
	Args:  cobra.ExactArgs(1),
	RunE:  runBalanceSet,
}

func init() {
	rootCmd.AddCommand(balanceCmd)
	balanceCmd.AddCommand(balanceSetCmd)
}

func runBalance(cmd *cobra.Command, args []string) error {
	sess, store, err := openSession(cmd.Context())
	if err != nil {
		return err
	}
	defer store.Close()

	st, _ := sess.Snapshot()
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Starting balance: %s\n", money(st.StartingBalance))
	fmt.Fprintf(out, "Account balance:  %s\n", money(ledger.ComputeStats(st, nowFunc()).CurrentBalance))
	if !st.BalanceSet {
		fmt.Fprintln(out, "\nNo starting balance set yet. Run: tradejournal balance set <amount>")
	}
	return nil
}

func runBalanceSet(cmd *cobra.Command, args []string) error {
	if err := requireLogin(); err != nil {
		return err
	}
	start, err := form.ParseBalance(args[0])
	if err != nil {
		return err
	}

	sess, store, err := openSession(cmd.Context())
	if err != nil {
		return err
	}
	defer store.Close()

	_, err = sess.Rebase(cmd.Context(), start)
	if err != nil && !errors.Is(err, ledger.ErrPersist) {
		return err
	}

	st, _ := sess.Snapshot()
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "✓ Balance set to %s\n", money(start))
	fmt.Fprintf(out, "  Account balance: %s (%d trades)\n", money(ledger.ComputeStats(st, nowFunc()).CurrentBalance), len(st.Records))
	return err
}
