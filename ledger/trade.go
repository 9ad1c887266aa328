package ledger

import (
	"math"
	"strings"
	"time"
)

// TradeRecord is one journal entry. Everything except RunningBalance is
// fixed when the record is created. JSON names follow the journal's
// stored layout.
type TradeRecord struct {
	ID             string    `json:"id"`
	Timestamp      time.Time `json:"date"`
	Symbol         string    `json:"symbol"`
	Direction      Direction `json:"tradeType"`
	EntryPrice     float64   `json:"entryPrice"`
	ExitPrice      float64   `json:"exitPrice"`
	LotSize        float64   `json:"lotSize"`
	PnL            float64   `json:"pnl"`
	RunningBalance float64   `json:"runningBalance"`
	Notes          string    `json:"notes"`
	PnLOverride    bool      `json:"customPnL,omitempty"`
}

// TradeInput carries the fields of a new trade as collected by a form.
// Override, when set, replaces the price-derived P&L.
type TradeInput struct {
	Symbol     string
	Direction  Direction
	EntryPrice float64
	ExitPrice  float64
	LotSize    float64
	Notes      string
	Override   *float64
}

// ComputePnL returns (exit-entry)*lot for Long and (entry-exit)*lot for
// Short. A zero or NaN entry, exit or lot yields 0 rather than a formula
// result; stored journals depend on that.
func ComputePnL(d Direction, entry, exit, lot float64) float64 {
	if falsy(entry) || falsy(exit) || falsy(lot) {
		return 0
	}
	switch d {
	case Long:
		return (exit - entry) * lot
	case Short:
		return (entry - exit) * lot
	}
	return 0
}

func falsy(x float64) bool {
	return x == 0 || math.IsNaN(x)
}

func finite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}

func (in TradeInput) validate() error {
	if strings.TrimSpace(in.Symbol) == "" {
		return invalid("symbol", "must not be empty")
	}
	if !in.Direction.Valid() {
		return invalid("direction", "must be Buy or Sell, got %s", in.Direction)
	}
	prices := []struct {
		name string
		v    float64
	}{
		{"entry price", in.EntryPrice},
		{"exit price", in.ExitPrice},
		{"lot size", in.LotSize},
	}
	for _, p := range prices {
		if !finite(p.v) {
			return invalid(p.name, "must be a finite number")
		}
		if p.v < 0 {
			return invalid(p.name, "must not be negative, got %g", p.v)
		}
	}
	if in.Override != nil && !finite(*in.Override) {
		return invalid("pnl", "override must be a finite number")
	}
	return nil
}
