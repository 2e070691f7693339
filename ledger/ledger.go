// Package ledger is the append-only durable record of trade events and
// the running virtual balance.
//
// Two CSV streams coexist, one pair per UTC calendar day:
//
//   - aggregated: trades_YYYYMMDD.csv, one row per round trip (LogTrade)
//     plus marker rows (Annotate)
//   - raw: trades_raw_YYYYMMDD.csv, one row per execution event (Append)
//
// File names are partitioned by UTC day so rollover is deterministic;
// timestamps inside the rows are rendered in JST (+09:00) for the humans
// reading them. Rows are never mutated after append, and the balance
// column of the newest row is the authoritative running balance across
// restarts.
package ledger

import (
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/rustyeddy/dogebot/market"
)

// JST is the display timezone for durable timestamps, fixed at UTC+9
// regardless of the host clock.
var JST = time.FixedZone("JST", 9*60*60)

// Column layouts of the two streams. Kept in the upstream order so
// existing files remain readable.
var (
	aggHeader = []string{"timestamp", "symbol", "side", "qty", "entry", "exit", "fee", "pnl", "balance_virtual", "note"}
	rawHeader = []string{"ts", "symbol", "side", "qty", "price", "fee", "realized_pnl", "balance", "note"}
)

// Row is one raw execution event (open or close leg).
type Row struct {
	TS          time.Time
	Symbol      string
	Side        market.Side
	Qty         float64
	Price       float64
	Fee         float64
	RealizedPnl float64
	Balance     float64
	Note        string
}

// Options configures a Ledger.
type Options struct {
	Dir             string
	Symbol          string
	StartingBalance float64

	// RawPath, when set, sends all raw events to this single file instead
	// of the daily trades_raw file. Balance recovery prefers it too.
	RawPath string

	// Mirror, when set, duplicates every row into SQLite for querying.
	Mirror *SQLite

	Logger *slog.Logger

	// Now overrides the clock, for tests. Defaults to time.Now.
	Now func() time.Time
}

// Ledger owns the daily CSV pair and the in-memory virtual balance.
// Single-writer: this process assumes it is the sole writer to its own
// symbol's files.
type Ledger struct {
	dir          string
	symbol       string
	rawPathFixed string
	mirror       *SQLite
	log          *slog.Logger
	now          func() time.Time

	balance float64
}

// New creates the ledger directory if needed, ensures today's aggregated
// file has a header, and recovers the virtual balance from the most
// recent durable row (raw preferred over aggregated, falling back to the
// configured starting balance).
func New(opts Options) (*Ledger, error) {
	if opts.Dir == "" {
		opts.Dir = "logs"
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	if err := os.MkdirAll(opts.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("create ledger dir: %w", err)
	}

	l := &Ledger{
		dir:          opts.Dir,
		symbol:       opts.Symbol,
		rawPathFixed: opts.RawPath,
		mirror:       opts.Mirror,
		log:          opts.Logger,
		now:          opts.Now,
	}

	if err := ensureHeader(l.aggPath(), aggHeader); err != nil {
		return nil, fmt.Errorf("ensure aggregated header: %w", err)
	}

	l.balance = l.recoverBalance(opts.StartingBalance)
	l.log.Info("ledger ready",
		"dir", l.dir,
		"file", l.aggPath(),
		"balance", l.balance,
	)
	return l, nil
}

// Balance returns the current virtual balance. It changes only through
// LogTrade.
func (l *Ledger) Balance() float64 { return l.balance }

// AggPath returns the path of today's aggregated file.
func (l *Ledger) AggPath() string { return l.aggPath() }

// RawPath returns the path raw events are appended to (fixed path when
// configured, otherwise today's daily raw file).
func (l *Ledger) RawPath() string { return l.rawPath() }

// LogTrade records one completed round trip in the aggregated stream and
// applies its realized P&L to the virtual balance. fee is the round-trip
// fee and is already included in the returned realized P&L. The balance
// is only committed once the row is durable.
func (l *Ledger) LogTrade(side market.Side, qty, entry, exit, fee float64, note string) (float64, error) {
	if side != market.Long && side != market.Short {
		return 0, fmt.Errorf("log trade: side must be Buy or Sell")
	}

	var pnl float64
	if side == market.Long {
		pnl = (exit-entry)*qty - fee
	} else {
		pnl = (entry-exit)*qty - fee
	}
	newBalance := l.balance + pnl

	err := appendRow(l.aggPath(), aggHeader, []string{
		l.jstNow(),
		l.symbol,
		side.String(),
		f(qty),
		f(entry),
		f(exit),
		f(fee),
		f(pnl),
		f(newBalance),
		note,
	})
	if err != nil {
		return 0, fmt.Errorf("append trade row: %w", err)
	}
	l.balance = newBalance

	if l.mirror != nil {
		if err := l.mirror.RecordTrade(TradeRecord{
			TS:      l.now().In(JST),
			Symbol:  l.symbol,
			Side:    side,
			Qty:     qty,
			Entry:   entry,
			Exit:    exit,
			Fee:     fee,
			Pnl:     pnl,
			Balance: newBalance,
			Note:    note,
		}); err != nil {
			return 0, fmt.Errorf("mirror trade row: %w", err)
		}
	}
	return pnl, nil
}

// Annotate writes a marker row in the aggregated stream: numeric trade
// fields empty, balance untouched. Used to record intent (an open, a
// config change) distinct from a financial event.
func (l *Ledger) Annotate(note string) error {
	err := appendRow(l.aggPath(), aggHeader, []string{
		l.jstNow(),
		l.symbol,
		"", "", "", "", "", "",
		f(l.balance),
		note,
	})
	if err != nil {
		return fmt.Errorf("append marker row: %w", err)
	}
	return nil
}

// Append records one raw execution event. The row's timestamp is
// normalized to JST; a zero timestamp takes the current time. Callers
// are responsible for calling it exactly once per logical event.
func (l *Ledger) Append(r Row) error {
	ts := r.TS
	if ts.IsZero() {
		ts = l.now()
	}
	symbol := r.Symbol
	if symbol == "" {
		symbol = l.symbol
	}

	err := appendRow(l.rawPath(), rawHeader, []string{
		ts.In(JST).Format(time.RFC3339),
		symbol,
		r.Side.String(),
		f(r.Qty),
		f(r.Price),
		f(r.Fee),
		f(r.RealizedPnl),
		f(r.Balance),
		r.Note,
	})
	if err != nil {
		return fmt.Errorf("append raw row: %w", err)
	}

	if l.mirror != nil {
		r.TS = ts
		r.Symbol = symbol
		if err := l.mirror.RecordEvent(r); err != nil {
			return fmt.Errorf("mirror raw row: %w", err)
		}
	}
	return nil
}

// --- paths and recovery ---

func (l *Ledger) aggPath() string {
	day := l.now().UTC().Format("20060102")
	return filepath.Join(l.dir, "trades_"+day+".csv")
}

func (l *Ledger) rawPath() string {
	if l.rawPathFixed != "" {
		return l.rawPathFixed
	}
	day := l.now().UTC().Format("20060102")
	return filepath.Join(l.dir, "trades_raw_"+day+".csv")
}

// recoverBalance scans, in priority order, the fixed raw log (when
// configured), today's daily raw log, then today's aggregated log, and
// returns the balance of the last row found. The raw log wins because it
// is written on every execution event and so carries the freshest
// balance. Any read failure falls through to the next source; nothing
// here can fail startup.
func (l *Ledger) recoverBalance(starting float64) float64 {
	if l.rawPathFixed != "" {
		if b, ok := lastBalance(l.rawPathFixed, "balance"); ok {
			return b
		}
	} else {
		if b, ok := lastBalance(l.rawPath(), "balance"); ok {
			return b
		}
	}
	if b, ok := lastBalance(l.aggPath(), "balance_virtual"); ok {
		return b
	}
	return starting
}

// lastBalance returns the last non-empty value of the named column.
func lastBalance(path, column string) (float64, bool) {
	fh, err := os.Open(path)
	if err != nil {
		return 0, false
	}
	defer fh.Close()

	r := csv.NewReader(fh)
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err != nil {
		return 0, false
	}
	col := -1
	for i, name := range header {
		if name == column {
			col = i
			break
		}
	}
	if col < 0 {
		return 0, false
	}

	var last string
	for {
		rec, err := r.Read()
		if err != nil {
			break
		}
		if col < len(rec) && rec[col] != "" {
			last = rec[col]
		}
	}
	if last == "" {
		return 0, false
	}
	b, err := strconv.ParseFloat(last, 64)
	if err != nil {
		return 0, false
	}
	return b, true
}

// --- low-level append ---

// appendRow writes one fully-formed CSV row in append mode so a crash
// mid-write cannot corrupt prior rows. The header is (re)written only
// when the file is missing or empty.
func appendRow(path string, header, row []string) error {
	if err := ensureHeader(path, header); err != nil {
		return err
	}

	fh, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer fh.Close()

	w := csv.NewWriter(fh)
	if err := w.Write(row); err != nil {
		return err
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return err
	}
	return fh.Close()
}

func ensureHeader(path string, header []string) error {
	st, err := os.Stat(path)
	if err == nil && st.Size() > 0 {
		return nil
	}

	fh, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	defer fh.Close()

	w := csv.NewWriter(fh)
	if err := w.Write(header); err != nil {
		return err
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return err
	}
	return fh.Close()
}

func (l *Ledger) jstNow() string {
	return l.now().In(JST).Format(time.RFC3339)
}

func f(x float64) string {
	return strconv.FormatFloat(x, 'f', 6, 64)
}
