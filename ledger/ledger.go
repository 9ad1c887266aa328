// Package ledger keeps the ordered list of journal trades together with the
// account's starting balance, and derives each trade's P&L and the running
// balance after it.
//
// A Ledger is not safe for concurrent use; wrap it in a Session when more
// than one goroutine can reach it.
package ledger

import (
	"strings"
	"time"

	"github.com/rustyeddy/tradejournal/pkg/id"
)

// DefaultStartingBalance is used until a balance is explicitly set.
const DefaultStartingBalance = 10000.0

// State is the full ledger contents handed to and from persistence.
type State struct {
	StartingBalance float64       `json:"startingBalance"`
	BalanceSet      bool          `json:"hasSetInitialBalance"`
	Records         []TradeRecord `json:"trades"`
}

type Ledger struct {
	start      float64
	balanceSet bool
	records    []TradeRecord

	now   func() time.Time
	newID func() string
}

// Option configures a Ledger.
type Option func(*Ledger)

// WithClock sets the clock used to stamp new records.
func WithClock(now func() time.Time) Option {
	return func(l *Ledger) { l.now = now }
}

// WithIDs sets the id source for new records.
func WithIDs(newID func() string) Option {
	return func(l *Ledger) { l.newID = newID }
}

// New returns an empty ledger starting at start.
func New(start float64, opts ...Option) *Ledger {
	l := &Ledger{
		start: start,
		now:   time.Now,
		newID: id.New,
	}
	for _, o := range opts {
		o(l)
	}
	return l
}

// AppendTrade records a trade at the end of the ledger and returns it.
// Invalid input is rejected with a *ValidationError and leaves the ledger
// untouched.
func (l *Ledger) AppendTrade(in TradeInput) (TradeRecord, error) {
	if err := in.validate(); err != nil {
		return TradeRecord{}, err
	}

	pnl := ComputePnL(in.Direction, in.EntryPrice, in.ExitPrice, in.LotSize)
	if in.Override != nil {
		pnl = *in.Override
	}
	if !finite(pnl) {
		return TradeRecord{}, invalid("pnl", "out of range")
	}
	balance := l.CurrentBalance() + pnl
	if !finite(balance) {
		return TradeRecord{}, invalid("balance", "out of range after this trade")
	}

	rec := TradeRecord{
		ID:             l.newID(),
		Timestamp:      l.now().UTC(),
		Symbol:         strings.ToUpper(strings.TrimSpace(in.Symbol)),
		Direction:      in.Direction,
		EntryPrice:     in.EntryPrice,
		ExitPrice:      in.ExitPrice,
		LotSize:        in.LotSize,
		PnL:            pnl,
		PnLOverride:    in.Override != nil,
		RunningBalance: balance,
		Notes:          in.Notes,
	}

	l.records = append(l.records, rec)
	return rec, nil
}

// Rebase replaces the starting balance and recomputes every running
// balance from the stored P&L values. It is idempotent. A start that would
// push any running balance out of range is rejected.
func (l *Ledger) Rebase(start float64) error {
	if !finite(start) {
		return invalid("starting balance", "must be a finite number")
	}
	if !derivable(start, l.records) {
		return invalid("starting balance", "running balance out of range")
	}
	l.start = start
	l.balanceSet = true
	l.rederive()
	return nil
}

// Snapshot returns a deep copy of the ledger contents.
func (l *Ledger) Snapshot() State {
	return State{
		StartingBalance: l.start,
		BalanceSet:      l.balanceSet,
		Records:         l.Records(),
	}
}

// Restore replaces the ledger contents with s. Stored running balances are
// ignored and re-derived from the starting balance and each P&L. A state
// that fails validation is rejected whole.
func (l *Ledger) Restore(s State) error {
	if !finite(s.StartingBalance) {
		return invalid("starting balance", "must be a finite number")
	}

	recs := make([]TradeRecord, len(s.Records))
	seen := make(map[string]bool, len(s.Records))
	for i, r := range s.Records {
		switch {
		case r.ID == "":
			return invalid("record", "#%d has no id", i)
		case seen[r.ID]:
			return invalid("record", "duplicate id %s", r.ID)
		case strings.TrimSpace(r.Symbol) == "":
			return invalid("record", "%s has no symbol", r.ID)
		case !r.Direction.Valid():
			return invalid("record", "%s has direction %s", r.ID, r.Direction)
		case !finite(r.PnL):
			return invalid("record", "%s has non-finite pnl", r.ID)
		}
		seen[r.ID] = true
		r.Symbol = strings.ToUpper(strings.TrimSpace(r.Symbol))
		recs[i] = r
	}
	if !derivable(s.StartingBalance, recs) {
		return invalid("record", "running balance out of range")
	}

	l.start = s.StartingBalance
	l.balanceSet = s.BalanceSet
	l.records = recs
	l.rederive()
	return nil
}

// derivable reports whether every running balance built from start stays
// finite.
func derivable(start float64, recs []TradeRecord) bool {
	bal := start
	for _, r := range recs {
		bal += r.PnL
		if !finite(bal) {
			return false
		}
	}
	return true
}

func (l *Ledger) rederive() {
	bal := l.start
	for i := range l.records {
		bal += l.records[i].PnL
		l.records[i].RunningBalance = bal
	}
}

// StartingBalance returns the balance the first trade builds on.
func (l *Ledger) StartingBalance() float64 { return l.start }

// BalanceSet reports whether the starting balance was ever set explicitly.
func (l *Ledger) BalanceSet() bool { return l.balanceSet }

// Len returns the number of records.
func (l *Ledger) Len() int { return len(l.records) }

// Records returns a copy of the records in insertion order.
func (l *Ledger) Records() []TradeRecord {
	out := make([]TradeRecord, len(l.records))
	copy(out, l.records)
	return out
}

// CurrentBalance is the last record's running balance, or the starting
// balance when there are no records.
func (l *Ledger) CurrentBalance() float64 {
	if len(l.records) == 0 {
		return l.start
	}
	return l.records[len(l.records)-1].RunningBalance
}
