package ledger

// Schema for the optional SQLite mirror. The CSV files stay the source
// of truth for balance recovery; the mirror exists for ad-hoc querying.
const Schema = `
CREATE TABLE IF NOT EXISTS events (
	event_id TEXT PRIMARY KEY,
	ts DATETIME NOT NULL,
	symbol TEXT NOT NULL,
	side TEXT NOT NULL,
	qty REAL NOT NULL,
	price REAL NOT NULL,
	fee REAL NOT NULL,
	realized_pnl REAL NOT NULL,
	balance REAL NOT NULL,
	note TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS trades (
	trade_id TEXT PRIMARY KEY,
	ts DATETIME NOT NULL,
	symbol TEXT NOT NULL,
	side TEXT NOT NULL,
	qty REAL NOT NULL,
	entry REAL NOT NULL,
	exit REAL NOT NULL,
	fee REAL NOT NULL,
	pnl REAL NOT NULL,
	balance REAL NOT NULL,
	note TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_events_ts ON events(ts);
CREATE INDEX IF NOT EXISTS idx_trades_ts ON trades(ts);
`
