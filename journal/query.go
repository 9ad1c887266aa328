package journal

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/rustyeddy/tradejournal/ledger"
)

// ErrNotFound is returned when a trade id is not in the journal.
var ErrNotFound = errors.New("trade not found")

// GetTrade returns a single trade record by ID.
func (j *SQLiteStore) GetTrade(ctx context.Context, tradeID string) (ledger.TradeRecord, error) {
	row := j.db.QueryRowContext(ctx, `
		SELECT `+tradeColumns+`
		FROM trades
		WHERE trade_id = ?`, tradeID)

	rec, err := scanTrade(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ledger.TradeRecord{}, fmt.Errorf("%w: %q", ErrNotFound, tradeID)
		}
		return ledger.TradeRecord{}, err
	}
	return rec, nil
}

// ListTradesBetween returns trades created within [start, end), oldest
// first.
func (j *SQLiteStore) ListTradesBetween(ctx context.Context, start, end time.Time) ([]ledger.TradeRecord, error) {
	return j.listTrades(ctx, `
		SELECT `+tradeColumns+`
		FROM trades
		WHERE created >= ? AND created < ?
		ORDER BY created ASC, seq ASC`, start.UTC(), end.UTC())
}

func (j *SQLiteStore) listTrades(ctx context.Context, query string, args ...any) ([]ledger.TradeRecord, error) {
	rows, err := j.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ledger.TradeRecord
	for rows.Next() {
		rec, err := scanTrade(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// FindTrade looks up id in a record list.
func FindTrade(recs []ledger.TradeRecord, id string) (ledger.TradeRecord, error) {
	for _, r := range recs {
		if r.ID == id {
			return r, nil
		}
	}
	return ledger.TradeRecord{}, fmt.Errorf("%w: %q", ErrNotFound, id)
}

// TradesBetween filters recs to those created within [start, end).
func TradesBetween(recs []ledger.TradeRecord, start, end time.Time) []ledger.TradeRecord {
	var out []ledger.TradeRecord
	for _, r := range recs {
		if !r.Timestamp.Before(start) && r.Timestamp.Before(end) {
			out = append(out, r)
		}
	}
	return out
}

// Querier is implemented by stores that answer trade lookups directly.
type Querier interface {
	GetTrade(ctx context.Context, tradeID string) (ledger.TradeRecord, error)
	ListTradesBetween(ctx context.Context, start, end time.Time) ([]ledger.TradeRecord, error)
}

var _ Querier = (*SQLiteStore)(nil)

// LookupTrade asks s for id when it is a Querier and searches recs
// otherwise.
func LookupTrade(ctx context.Context, s Store, recs []ledger.TradeRecord, id string) (ledger.TradeRecord, error) {
	if q, ok := s.(Querier); ok {
		return q.GetTrade(ctx, id)
	}
	return FindTrade(recs, id)
}

// SelectTrades returns the trades created within [start, end), from s when
// it is a Querier and from recs otherwise.
func SelectTrades(ctx context.Context, s Store, recs []ledger.TradeRecord, start, end time.Time) ([]ledger.TradeRecord, error) {
	if q, ok := s.(Querier); ok {
		return q.ListTradesBetween(ctx, start, end)
	}
	return TradesBetween(recs, start, end), nil
}
