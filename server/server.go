// Package server exposes the journal over HTTP: a JSON API for the ledger,
// login/logout, the price ticker (REST and websocket) and Prometheus
// metrics. Reads are public; mutations need a session token.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/rustyeddy/tradejournal/auth"
	"github.com/rustyeddy/tradejournal/ledger"
	"github.com/rustyeddy/tradejournal/metrics"
	"github.com/rustyeddy/tradejournal/pricing"
)

// Server wires the HTTP handlers to a ledger session and its
// collaborators.
type Server struct {
	session *ledger.Session
	gate    *auth.Gate
	feed    *pricing.Feed
	metrics *metrics.Metrics
	log     *slog.Logger
	now     func() time.Time

	upgrader websocket.Upgrader
}

type Option func(*Server)

// WithClock sets the clock used for "trades today".
func WithClock(now func() time.Time) Option {
	return func(s *Server) { s.now = now }
}

func WithLogger(log *slog.Logger) Option {
	return func(s *Server) { s.log = log }
}

// New builds a Server. feed and m may be nil, which disables the price
// and metrics routes.
func New(session *ledger.Session, gate *auth.Gate, feed *pricing.Feed, m *metrics.Metrics, opts ...Option) *Server {
	s := &Server{
		session: session,
		gate:    gate,
		feed:    feed,
		metrics: m,
		log:     slog.Default(),
		now:     time.Now,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Handler returns the route table.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/ledger", s.handleLedger)
	mux.HandleFunc("POST /api/trades", s.handleAppend)
	mux.HandleFunc("PUT /api/balance", s.handleRebase)
	mux.HandleFunc("POST /api/login", s.handleLogin)
	mux.HandleFunc("POST /api/logout", s.handleLogout)
	if s.feed != nil {
		mux.HandleFunc("GET /api/price", s.handlePrice)
		mux.HandleFunc("GET /ws/price", s.handlePriceStream)
	}
	if s.metrics != nil {
		mux.Handle("GET /metrics", s.metrics.Handler())
	}
	return mux
}

// ListenAndServe serves on addr until ctx is done, then shuts down.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("http server listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

type errorBody struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError maps domain errors to HTTP status codes.
func writeError(w http.ResponseWriter, err error) {
	var ve *ledger.ValidationError
	switch {
	case errors.As(err, &ve):
		writeJSON(w, http.StatusBadRequest, errorBody{Error: err.Error(), Field: ve.Field})
	case errors.Is(err, ledger.ErrVersionConflict):
		writeJSON(w, http.StatusConflict, errorBody{Error: err.Error()})
	case errors.Is(err, auth.ErrInvalidCredentials), errors.Is(err, auth.ErrUnauthenticated):
		writeJSON(w, http.StatusUnauthorized, errorBody{Error: err.Error()})
	default:
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: err.Error()})
	}
}

func bearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if tok, ok := strings.CutPrefix(h, "Bearer "); ok {
		return strings.TrimSpace(tok)
	}
	return ""
}

func (s *Server) requireAuth(w http.ResponseWriter, r *http.Request) bool {
	if err := s.gate.Require(bearerToken(r)); err != nil {
		writeError(w, err)
		return false
	}
	return true
}
