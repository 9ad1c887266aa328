package cmd

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/tradejournal/pricing"
)

var priceCmd = &cobra.Command{
	Use:   "price",
	Short: "Show the mock market price",
	Long: `Print quotes from the mock price ticker. The ticker is for display
only and never changes the journal.

Examples:
  tradejournal price
  tradejournal price --count 5`,
	Args: cobra.NoArgs,
	RunE: runPrice,
}

var priceCount int

func init() {
	rootCmd.AddCommand(priceCmd)
	priceCmd.Flags().IntVar(&priceCount, "count", 1, "number of quotes to print, one per feed interval")
}

func newFeed() (*pricing.Feed, error) {
	interval, err := cfg.Feed.ParseInterval()
	if err != nil {
		return nil, err
	}
	src := pricing.NewMockSource(cfg.Feed.Symbol, cfg.Feed.BasePrice, cfg.Feed.Jitter, time.Now().UnixNano())
	return pricing.NewFeed(src, interval, cfg.Feed.History, log), nil
}

func runPrice(cmd *cobra.Command, args []string) error {
	feed, err := newFeed()
	if err != nil {
		return err
	}
	if priceCount <= 1 {
		q, err := feed.Poll(cmd.Context())
		if err != nil {
			return err
		}
		printQuote(cmd.OutOrStdout(), q)
		return nil
	}

	quotes, cancel := feed.Subscribe(priceCount)
	defer cancel()

	ctx, stop := context.WithCancel(cmd.Context())
	defer stop()
	go feed.Run(ctx)

	for i := 0; i < priceCount; i++ {
		select {
		case q := <-quotes:
			printQuote(cmd.OutOrStdout(), q)
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

func printQuote(w io.Writer, q pricing.Quote) {
	arrow := "▲"
	if !q.Up() {
		arrow = "▼"
	}
	fmt.Fprintf(w, "%s  %s  %.2f  %s %+.2f (%+.2f%%)\n",
		q.Time.Local().Format("15:04:05"), q.Symbol, q.Price, arrow, q.Change, q.ChangePercent)
}
