package journal

const Schema = `
CREATE TABLE IF NOT EXISTS trades (
	seq INTEGER PRIMARY KEY,
	trade_id TEXT NOT NULL UNIQUE,
	created DATETIME NOT NULL,
	symbol TEXT NOT NULL,
	direction TEXT NOT NULL,
	entry_price REAL NOT NULL,
	exit_price REAL NOT NULL,
	lot_size REAL NOT NULL,
	pnl REAL NOT NULL,
	running_balance REAL NOT NULL,
	pnl_override INTEGER NOT NULL DEFAULT 0,
	notes TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS settings (
	key TEXT PRIMARY KEY,
	value TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_trades_created ON trades(created);
`
