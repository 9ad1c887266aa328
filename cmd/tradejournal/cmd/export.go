package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/tradejournal/journal"
)

var exportCmd = &cobra.Command{
	Use:   "export <csv|org|md>",
	Short: "Export the journal",
	Long: `Write the journal as CSV, Org-mode entries or a Markdown report.

Examples:
  tradejournal export csv -o trades.csv
  tradejournal export md > report.md`,
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"csv", "org", "md"},
	RunE:      runExport,
}

var exportOutput string

func init() {
	rootCmd.AddCommand(exportCmd)
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "output file (default stdout)")
}

func runExport(cmd *cobra.Command, args []string) error {
	format := args[0]
	switch format {
	case "csv", "org", "md":
	default:
		return fmt.Errorf("unknown export format %q (want csv, org or md)", format)
	}

	sess, store, err := openSession(cmd.Context())
	if err != nil {
		return err
	}
	defer store.Close()
	st, _ := sess.Snapshot()

	var w io.Writer = cmd.OutOrStdout()
	if exportOutput != "" {
		f, err := os.Create(exportOutput)
		if err != nil {
			return fmt.Errorf("create output: %w", err)
		}
		defer f.Close()
		w = f
	}

	switch format {
	case "csv":
		err = journal.WriteCSV(w, st.Records)
	case "org":
		_, err = fmt.Fprintln(w, journal.FormatTradesOrg(st.Records))
	case "md":
		err = journal.NewReport(st, nowFunc(), cfg.Ledger.Currency).WriteMarkdown(w)
	}
	if err != nil {
		return fmt.Errorf("export %s: %w", format, err)
	}

	if exportOutput != "" {
		fmt.Fprintf(cmd.ErrOrStderr(), "✓ Wrote %d trades to %s\n", len(st.Records), exportOutput)
	}
	return nil
}
