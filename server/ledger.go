package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/rustyeddy/tradejournal/internal/form"
	"github.com/rustyeddy/tradejournal/internal/logger"
	"github.com/rustyeddy/tradejournal/ledger"
)

type ledgerResponse struct {
	StartingBalance     float64              `json:"startingBalance"`
	Balance             float64              `json:"balance"`
	NeedsInitialBalance bool                 `json:"needsInitialBalance"`
	Version             uint64               `json:"version"`
	Trades              []ledger.TradeRecord `json:"trades"`
	Stats               ledger.Stats         `json:"stats"`
	Equity              []ledger.EquityPoint `json:"equity"`
}

func (s *Server) handleLedger(w http.ResponseWriter, r *http.Request) {
	st, version := s.session.Snapshot()
	stats := ledger.ComputeStats(st, s.now())

	trades := st.Records
	if trades == nil {
		trades = []ledger.TradeRecord{}
	}
	writeJSON(w, http.StatusOK, ledgerResponse{
		StartingBalance:     st.StartingBalance,
		Balance:             stats.CurrentBalance,
		NeedsInitialBalance: !st.BalanceSet,
		Version:             version,
		Trades:              trades,
		Stats:               stats,
		Equity:              ledger.EquityCurve(st.Records),
	})
}

type tradeRequest struct {
	Symbol     string     `json:"symbol"`
	TradeType  string     `json:"tradeType"`
	EntryPrice form.Field `json:"entryPrice"`
	ExitPrice  form.Field `json:"exitPrice"`
	LotSize    form.Field `json:"lotSize"`
	CustomPnL  form.Field `json:"customPnL"`
	Notes      string     `json:"notes"`
	Version    *uint64    `json:"version,omitempty"`
}

type tradeResponse struct {
	Trade   ledger.TradeRecord `json:"trade"`
	Balance float64            `json:"balance"`
	Version uint64             `json:"version"`
	Saved   bool               `json:"saved"`
}

func (s *Server) handleAppend(w http.ResponseWriter, r *http.Request) {
	if !s.requireAuth(w, r) {
		return
	}

	var req tradeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: fmt.Sprintf("decode request: %v", err)})
		return
	}
	in, err := form.Trade{
		Symbol:     req.Symbol,
		Direction:  req.TradeType,
		EntryPrice: string(req.EntryPrice),
		ExitPrice:  string(req.ExitPrice),
		LotSize:    string(req.LotSize),
		CustomPnL:  string(req.CustomPnL),
		Notes:      req.Notes,
	}.Input()
	if err != nil {
		writeError(w, err)
		return
	}

	ctx, span := logger.StartSpan(r.Context(), "ledger.append")
	var (
		rec     ledger.TradeRecord
		version uint64
	)
	if req.Version != nil {
		rec, version, err = s.session.AppendIfVersion(ctx, *req.Version, in)
	} else {
		rec, version, err = s.session.AppendTrade(ctx, in)
	}
	logger.EndSpan(span, err)

	saved := true
	if errors.Is(err, ledger.ErrPersist) {
		saved = false
	} else if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, tradeResponse{
		Trade:   rec,
		Balance: rec.RunningBalance,
		Version: version,
		Saved:   saved,
	})
}

type balanceRequest struct {
	Balance form.Field `json:"balance"`
	Version *uint64    `json:"version,omitempty"`
}

type balanceResponse struct {
	StartingBalance float64 `json:"startingBalance"`
	Balance         float64 `json:"balance"`
	Version         uint64  `json:"version"`
	Saved           bool    `json:"saved"`
}

func (s *Server) handleRebase(w http.ResponseWriter, r *http.Request) {
	if !s.requireAuth(w, r) {
		return
	}

	var req balanceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: fmt.Sprintf("decode request: %v", err)})
		return
	}
	start, err := form.ParseBalance(string(req.Balance))
	if err != nil {
		writeError(w, err)
		return
	}

	ctx, span := logger.StartSpan(r.Context(), "ledger.rebase")
	var version uint64
	if req.Version != nil {
		version, err = s.session.RebaseIfVersion(ctx, *req.Version, start)
	} else {
		version, err = s.session.Rebase(ctx, start)
	}
	logger.EndSpan(span, err)

	saved := true
	if errors.Is(err, ledger.ErrPersist) {
		saved = false
	} else if err != nil {
		writeError(w, err)
		return
	}

	st, _ := s.session.Snapshot()
	writeJSON(w, http.StatusOK, balanceResponse{
		StartingBalance: start,
		Balance:         ledger.ComputeStats(st, s.now()).CurrentBalance,
		Version:         version,
		Saved:           saved,
	})
}
