// Package form turns user-entered text into the reals the ledger takes.
// Blank fields are treated as zero, which the ledger's P&L rule then
// treats as "no P&L".
package form

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/rustyeddy/tradejournal/ledger"
)

// ParseAmount parses s as a decimal number. ok is false for blank input.
func ParseAmount(field, s string) (v float64, ok bool, err error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, false, &ledger.ValidationError{Field: field, Reason: fmt.Sprintf("%q is not a number", s)}
	}
	return d.InexactFloat64(), true, nil
}

// ParseBalance parses a starting balance. It must be present and not
// negative.
func ParseBalance(s string) (float64, error) {
	v, ok, err := ParseAmount("balance", s)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, &ledger.ValidationError{Field: "balance", Reason: "required"}
	}
	if v < 0 {
		return 0, &ledger.ValidationError{Field: "balance", Reason: "must be a non-negative number"}
	}
	return v, nil
}

// Trade is the raw trade entry form.
type Trade struct {
	Symbol     string
	Direction  string
	EntryPrice string
	ExitPrice  string
	LotSize    string
	CustomPnL  string
	Notes      string
}

// Input converts the form to a ledger.TradeInput. A blank CustomPnL means
// the P&L is computed.
func (t Trade) Input() (ledger.TradeInput, error) {
	dir, err := ledger.ParseDirection(t.Direction)
	if err != nil {
		return ledger.TradeInput{}, &ledger.ValidationError{Field: "direction", Reason: err.Error()}
	}
	in := ledger.TradeInput{
		Symbol:    t.Symbol,
		Direction: dir,
		Notes:     t.Notes,
	}
	if in.EntryPrice, _, err = ParseAmount("entry price", t.EntryPrice); err != nil {
		return ledger.TradeInput{}, err
	}
	if in.ExitPrice, _, err = ParseAmount("exit price", t.ExitPrice); err != nil {
		return ledger.TradeInput{}, err
	}
	if in.LotSize, _, err = ParseAmount("lot size", t.LotSize); err != nil {
		return ledger.TradeInput{}, err
	}
	pnl, ok, err := ParseAmount("pnl", t.CustomPnL)
	if err != nil {
		return ledger.TradeInput{}, err
	}
	if ok {
		in.Override = &pnl
	}
	return in, nil
}

// Field is a JSON value that may arrive as a number, a numeric string,
// an empty string or null. It keeps the raw text for ParseAmount.
type Field string

func (f *Field) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case bytes.Equal(b, []byte("null")):
		*f = ""
	case len(b) > 0 && b[0] == '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = Field(s)
	default:
		var n json.Number
		if err := json.Unmarshal(b, &n); err != nil {
			return fmt.Errorf("expected a number, got %s", b)
		}
		*f = Field(n.String())
	}
	return nil
}
