// Package journal persists ledger state and renders it for export.
//
// Every store keeps the same three values: the trade list as JSON, the
// starting balance as text, and whether that balance was ever set.
package journal

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/rustyeddy/tradejournal/config"
	"github.com/rustyeddy/tradejournal/ledger"
)

const (
	KeyTrades     = "tradingTrades"
	KeyBalance    = "tradingBalance"
	KeyBalanceSet = "hasSetInitialBalance"
)

// Store loads and saves a ledger.State. Load returns ledger.ErrNoState
// when nothing was saved and wraps ledger.ErrCorruptState for unreadable
// data.
type Store interface {
	Load(ctx context.Context) (ledger.State, error)
	Save(ctx context.Context, s ledger.State) error
	Close() error
}

// Open returns the store described by cfg.
func Open(cfg config.StoreConfig) (Store, error) {
	switch cfg.Type {
	case "file":
		return NewFile(cfg.Path), nil
	case "sqlite":
		return NewSQLite(cfg.Path)
	case "redis":
		return NewRedis(RedisConfig{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
			Prefix:   cfg.KeyPrefix,
		})
	}
	return nil, fmt.Errorf("unknown store type %q", cfg.Type)
}

func encodeState(s ledger.State) (map[string]string, error) {
	recs := s.Records
	if recs == nil {
		recs = []ledger.TradeRecord{}
	}
	b, err := json.Marshal(recs)
	if err != nil {
		return nil, fmt.Errorf("encode trades: %w", err)
	}
	return map[string]string{
		KeyTrades:     string(b),
		KeyBalance:    strconv.FormatFloat(s.StartingBalance, 'f', -1, 64),
		KeyBalanceSet: strconv.FormatBool(s.BalanceSet),
	}, nil
}

// decodeState rebuilds a state from whichever keys are present.
func decodeState(vals map[string]string) (ledger.State, error) {
	if len(vals) == 0 {
		return ledger.State{}, ledger.ErrNoState
	}

	st := ledger.State{StartingBalance: ledger.DefaultStartingBalance}
	if raw, ok := vals[KeyTrades]; ok && raw != "" {
		if err := json.Unmarshal([]byte(raw), &st.Records); err != nil {
			return ledger.State{}, fmt.Errorf("%w: %s: %v", ledger.ErrCorruptState, KeyTrades, err)
		}
	}
	if raw, ok := vals[KeyBalance]; ok {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return ledger.State{}, fmt.Errorf("%w: %s: %v", ledger.ErrCorruptState, KeyBalance, err)
		}
		st.StartingBalance = v
	}
	st.BalanceSet = vals[KeyBalanceSet] == "true"
	return st, nil
}
