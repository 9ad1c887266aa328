package journal

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"

	_ "github.com/mattn/go-sqlite3"

	"github.com/rustyeddy/tradejournal/ledger"
)

// SQLiteStore keeps one row per trade, in ledger order, plus the balance
// settings.
type SQLiteStore struct {
	db *sql.DB
}

func NewSQLite(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", path+"?_journal=WAL&_sync=NORMAL")
	if err != nil {
		return nil, err
	}

	if _, err := db.Exec(Schema); err != nil {
		db.Close()
		return nil, err
	}

	return &SQLiteStore{db: db}, nil
}

const tradeColumns = `trade_id, created, symbol, direction, entry_price, exit_price, lot_size, pnl, running_balance, pnl_override, notes`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTrade(row rowScanner) (ledger.TradeRecord, error) {
	var (
		rec ledger.TradeRecord
		dir string
	)
	err := row.Scan(
		&rec.ID,
		&rec.Timestamp,
		&rec.Symbol,
		&dir,
		&rec.EntryPrice,
		&rec.ExitPrice,
		&rec.LotSize,
		&rec.PnL,
		&rec.RunningBalance,
		&rec.PnLOverride,
		&rec.Notes,
	)
	if err != nil {
		return ledger.TradeRecord{}, err
	}
	rec.Direction, err = ledger.ParseDirection(dir)
	if err != nil {
		return ledger.TradeRecord{}, fmt.Errorf("%w: trade %s: %v", ledger.ErrCorruptState, rec.ID, err)
	}
	return rec, nil
}

func (j *SQLiteStore) Load(ctx context.Context) (ledger.State, error) {
	vals := map[string]string{}
	rows, err := j.db.QueryContext(ctx, `SELECT key, value FROM settings`)
	if err != nil {
		return ledger.State{}, err
	}
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			rows.Close()
			return ledger.State{}, err
		}
		vals[k] = v
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return ledger.State{}, err
	}

	recs, err := j.listTrades(ctx, `SELECT `+tradeColumns+` FROM trades ORDER BY seq ASC`)
	if err != nil {
		return ledger.State{}, err
	}
	if len(vals) == 0 && len(recs) == 0 {
		return ledger.State{}, ledger.ErrNoState
	}

	// trades live in their own table, not under KeyTrades
	st := ledger.State{StartingBalance: ledger.DefaultStartingBalance}
	if len(vals) > 0 {
		if st, err = decodeState(vals); err != nil {
			return ledger.State{}, err
		}
	}
	st.Records = recs
	return st, nil
}

// Save replaces the stored ledger in a single transaction.
func (j *SQLiteStore) Save(ctx context.Context, s ledger.State) error {
	tx, err := j.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM trades`); err != nil {
		return err
	}
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO trades
		(seq, `+tradeColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i, t := range s.Records {
		_, err := stmt.ExecContext(ctx,
			i, t.ID, t.Timestamp.UTC(), t.Symbol, t.Direction.String(),
			t.EntryPrice, t.ExitPrice, t.LotSize, t.PnL, t.RunningBalance,
			t.PnLOverride, t.Notes,
		)
		if err != nil {
			return fmt.Errorf("insert trade %s: %w", t.ID, err)
		}
	}

	settings := map[string]string{
		KeyBalance:    strconv.FormatFloat(s.StartingBalance, 'f', -1, 64),
		KeyBalanceSet: strconv.FormatBool(s.BalanceSet),
	}
	for k, v := range settings {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO settings (key, value) VALUES (?, ?)
			ON CONFLICT(key) DO UPDATE SET value = excluded.value`, k, v)
		if err != nil {
			return fmt.Errorf("save %s: %w", k, err)
		}
	}

	return tx.Commit()
}

func (j *SQLiteStore) Close() error {
	return j.db.Close()
}
