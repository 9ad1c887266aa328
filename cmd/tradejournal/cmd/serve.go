package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/tradejournal/auth"
	"github.com/rustyeddy/tradejournal/internal/logger"
	"github.com/rustyeddy/tradejournal/ledger"
	"github.com/rustyeddy/tradejournal/metrics"
	"github.com/rustyeddy/tradejournal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the journal over HTTP",
	Long: `Start the HTTP API, the price ticker and the metrics endpoint.

Routes:
  GET  /api/ledger   ledger, stats and version
  POST /api/trades   append a trade (Bearer token)
  PUT  /api/balance  set the starting balance (Bearer token)
  POST /api/login    exchange credentials for a token
  POST /api/logout   drop a token
  GET  /api/price    latest quote and history
  GET  /ws/price     websocket quote stream
  GET  /metrics      Prometheus metrics

Example:
  tradejournal serve --addr :8080`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

var serveAddr string

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default from config)")
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Log.Tracing {
		shutdown, err := logger.InitTracing("tradejournal", version, os.Stderr)
		if err != nil {
			log.Warn("tracing disabled", "error", err)
		} else {
			defer func() {
				sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				shutdown(sctx)
			}()
		}
	}

	m := metrics.New()
	sess, store, err := openSession(ctx, ledger.WithObserver(m))
	if err != nil {
		return err
	}
	defer store.Close()

	st, _ := sess.Snapshot()
	m.Balance.Set(ledger.ComputeStats(st, time.Now()).CurrentBalance)

	feed, err := newFeed()
	if err != nil {
		return err
	}
	go feed.Run(ctx)

	addr := serveAddr
	if addr == "" {
		addr = cfg.Server.Addr
	}

	srv := server.New(sess, auth.NewGate(cfg.Auth), feed, m, server.WithLogger(log))
	return srv.ListenAndServe(ctx, addr)
}
