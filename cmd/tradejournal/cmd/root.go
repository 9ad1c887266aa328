package cmd

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/rustyeddy/tradejournal/auth"
	"github.com/rustyeddy/tradejournal/config"
	"github.com/rustyeddy/tradejournal/internal/logger"
	"github.com/rustyeddy/tradejournal/journal"
	"github.com/rustyeddy/tradejournal/ledger"
)

var rootCmd = &cobra.Command{
	Use:   "tradejournal",
	Short: "A single-user trading journal with a running account balance",
	Long: `Tradejournal records manually entered trades, computes each trade's
profit or loss and keeps a running account balance.

It provides:
  - Trade entry with computed or custom P&L
  - An adjustable starting balance that re-derives every running balance
  - Dashboard statistics and CSV, Org and Markdown exports
  - A mock market price ticker
  - An HTTP API with a websocket price stream and Prometheus metrics

Ledger-changing commands require 'tradejournal login' first.`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

var (
	cfgFile  string
	stateDir string

	cfg *config.Config
	log *slog.Logger
)

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (default $"+config.EnvConfigPath+")")
	rootCmd.PersistentFlags().StringVar(&stateDir, "state-dir", defaultStateDir(), "directory for the login marker")
}

func defaultStateDir() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ".tradejournal"
	}
	return filepath.Join(dir, "tradejournal")
}

// setup loads .env, the config file and the logger before any command runs.
func setup(cmd *cobra.Command, args []string) error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load .env: %w", err)
	}

	c, err := config.Load(cfgFile)
	if err != nil {
		return err
	}
	cfg = c
	log = logger.Init("tradejournal", cfg.Log)
	return nil
}

// openSession loads the ledger from the configured store. The caller
// closes the returned store.
func openSession(ctx context.Context, opts ...ledger.SessionOption) (*ledger.Session, journal.Store, error) {
	store, err := journal.Open(cfg.Store)
	if err != nil {
		return nil, nil, fmt.Errorf("open store: %w", err)
	}

	l, err := ledger.Load(ctx, store, cfg.Ledger.StartingBalance, log)
	if err != nil {
		store.Close()
		return nil, nil, err
	}

	opts = append([]ledger.SessionOption{ledger.WithLogger(log)}, opts...)
	return ledger.NewSession(l, store, opts...), store, nil
}

func requireLogin() error {
	if !auth.LoadUser(stateDir).IsAuthenticated {
		return fmt.Errorf("%w: run 'tradejournal login' first", auth.ErrUnauthenticated)
	}
	return nil
}

func money(v float64) string {
	return journal.FormatMoney(v, cfg.Ledger.Currency)
}
