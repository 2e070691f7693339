package ledger

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/rustyeddy/dogebot/market"
	"github.com/rustyeddy/dogebot/pkg/id"
)

// TradeRecord is one completed round trip as stored in the mirror.
type TradeRecord struct {
	ID      string
	TS      time.Time
	Symbol  string
	Side    market.Side
	Qty     float64
	Entry   float64
	Exit    float64
	Fee     float64
	Pnl     float64
	Balance float64
	Note    string
}

// SQLite mirrors ledger rows into a queryable database. Rows are keyed
// by ULID so the primary key sorts by insertion time.
type SQLite struct {
	db *sql.DB
}

func NewSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(Schema); err != nil {
		db.Close()
		return nil, err
	}
	return &SQLite{db: db}, nil
}

func (s *SQLite) RecordEvent(r Row) error {
	_, err := s.db.Exec(`
		INSERT INTO events
		(event_id, ts, symbol, side, qty, price, fee, realized_pnl, balance, note)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id.New(), r.TS, r.Symbol, r.Side.String(), r.Qty,
		r.Price, r.Fee, r.RealizedPnl, r.Balance, r.Note,
	)
	return err
}

func (s *SQLite) RecordTrade(t TradeRecord) error {
	if t.ID == "" {
		t.ID = id.New()
	}
	_, err := s.db.Exec(`
		INSERT INTO trades
		(trade_id, ts, symbol, side, qty, entry, exit, fee, pnl, balance, note)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.TS, t.Symbol, t.Side.String(), t.Qty,
		t.Entry, t.Exit, t.Fee, t.Pnl, t.Balance, t.Note,
	)
	return err
}

// LastBalance returns the balance of the newest event row, ok=false when
// the mirror is empty.
func (s *SQLite) LastBalance() (float64, bool, error) {
	row := s.db.QueryRow(`SELECT balance FROM events ORDER BY event_id DESC LIMIT 1`)

	var b float64
	err := row.Scan(&b)
	if err == sql.ErrNoRows {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return b, true, nil
}

// ListTradesBetween returns round trips whose timestamp is within
// [start, end), oldest first.
func (s *SQLite) ListTradesBetween(start, end time.Time) ([]TradeRecord, error) {
	rows, err := s.db.Query(`
		SELECT trade_id, ts, symbol, side, qty, entry, exit, fee, pnl, balance, note
		FROM trades
		WHERE ts >= ? AND ts < ?
		ORDER BY ts ASC`, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []TradeRecord
	for rows.Next() {
		var rec TradeRecord
		var side string
		if err := rows.Scan(
			&rec.ID,
			&rec.TS,
			&rec.Symbol,
			&side,
			&rec.Qty,
			&rec.Entry,
			&rec.Exit,
			&rec.Fee,
			&rec.Pnl,
			&rec.Balance,
			&rec.Note,
		); err != nil {
			return nil, err
		}
		rec.Side = market.SideFromString(side)
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// GetTrade returns a single round trip by ID.
func (s *SQLite) GetTrade(tradeID string) (TradeRecord, error) {
	row := s.db.QueryRow(`
		SELECT trade_id, ts, symbol, side, qty, entry, exit, fee, pnl, balance, note
		FROM trades
		WHERE trade_id = ?`, tradeID)

	var rec TradeRecord
	var side string
	err := row.Scan(
		&rec.ID,
		&rec.TS,
		&rec.Symbol,
		&side,
		&rec.Qty,
		&rec.Entry,
		&rec.Exit,
		&rec.Fee,
		&rec.Pnl,
		&rec.Balance,
		&rec.Note,
	)
	if err == sql.ErrNoRows {
		return TradeRecord{}, fmt.Errorf("trade %q not found", tradeID)
	}
	if err != nil {
		return TradeRecord{}, err
	}
	rec.Side = market.SideFromString(side)
	return rec, nil
}

func (s *SQLite) Close() error {
	return s.db.Close()
}
