// Package executor turns accepted transition decisions into executions:
// it resolves a usable reference price, computes fees and realized P&L,
// and dispatches to either the dry-run (ledger-only) path or the live
// order-submission path. This is the only component that writes
// financial rows, so its failure modes are deliberately narrow:
//
//   - ErrPriceUnavailable: abort with no side effects, retried next cycle
//   - ErrOrderSubmission: logged and reported; with the default policy the
//     caller still advances state (intent is recorded, reconciliation
//     happens via the startup position sync)
//   - ErrLedgerWrite: always propagates — a silently lost ledger row
//     corrupts the recoverable balance for every future restart
package executor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/rustyeddy/dogebot/broker"
	"github.com/rustyeddy/dogebot/fees"
	"github.com/rustyeddy/dogebot/ledger"
	"github.com/rustyeddy/dogebot/market"
	"github.com/rustyeddy/dogebot/metrics"
	"github.com/rustyeddy/dogebot/notify"
)

var (
	ErrPriceUnavailable = errors.New("reference price unavailable")
	ErrOrderSubmission  = errors.New("order submission failed")
	ErrLedgerWrite      = errors.New("ledger write failed")
)

// Signal is an entry request from the strategy.
type Signal struct {
	Side  market.Side
	Qty   float64
	Price float64 // optional explicit price; 0 resolves a reference price
	Maker bool
	Note  string
}

// EntrySnapshot is the only memory of an entry's cost basis. At most one
// exists at a time: this system supports exactly one concurrent position.
type EntrySnapshot struct {
	Side  market.Side
	Qty   float64
	Price float64
	Fee   float64
	Maker bool
}

// Options configures an Executor.
type Options struct {
	Prices broker.PriceSource
	Orders broker.OrderSink
	Ledger *ledger.Ledger
	Fees   fees.Schedule

	Symbol string
	DryRun bool

	// Strict makes a failed live submission return ErrOrderSubmission so
	// the caller does not advance the state machine. The default (false)
	// preserves the upstream behavior: the strategy's belief tracks
	// intent and a never-filled order is reconciled at next restart.
	Strict bool

	Notifier notify.Notifier
	Logger   *slog.Logger
	Now      func() time.Time
}

type Executor struct {
	prices broker.PriceSource
	orders broker.OrderSink
	ledger *ledger.Ledger
	fees   fees.Schedule

	symbol string
	dryRun bool
	strict bool

	notifier notify.Notifier
	log      *slog.Logger
	now      func() time.Time

	snapshot *EntrySnapshot
}

func New(opts Options) *Executor {
	if opts.Notifier == nil {
		opts.Notifier = notify.Nop{}
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Executor{
		prices:   opts.Prices,
		orders:   opts.Orders,
		ledger:   opts.Ledger,
		fees:     opts.Fees,
		symbol:   opts.Symbol,
		dryRun:   opts.DryRun,
		strict:   opts.Strict,
		notifier: opts.Notifier,
		log:      opts.Logger,
		now:      opts.Now,
	}
}

// Snapshot returns the live entry snapshot, ok=false when flat.
func (e *Executor) Snapshot() (EntrySnapshot, bool) {
	if e.snapshot == nil {
		return EntrySnapshot{}, false
	}
	return *e.snapshot, true
}

// markPrice resolves a reference price: last trade price if positive,
// else the midpoint of the best bid/ask pair, else the midpoint of the
// first depth levels. Returns ErrPriceUnavailable when nothing resolves.
func (e *Executor) markPrice(ctx context.Context) (float64, error) {
	if last, err := e.prices.LastPrice(ctx); err == nil && last > 0 {
		return last, nil
	}

	ob, err := e.prices.Orderbook(ctx)
	if err != nil {
		return 0, fmt.Errorf("%w: orderbook: %v", ErrPriceUnavailable, err)
	}
	if mid, ok := ob.Mid(); ok {
		return mid, nil
	}
	return 0, ErrPriceUnavailable
}

// Execute opens a position per the signal. The entry fee is estimated
// against the resolved price and buffered in the entry snapshot; the
// virtual balance is untouched until the matching close.
func (e *Executor) Execute(ctx context.Context, sig Signal) error {
	if sig.Side != market.Long && sig.Side != market.Short {
		return fmt.Errorf("execute: side must be Buy or Sell")
	}
	if sig.Qty <= 0 {
		return fmt.Errorf("execute: qty must be positive")
	}

	price := sig.Price
	if price <= 0 {
		var err error
		price, err = e.markPrice(ctx)
		if err != nil {
			e.log.Error("entry aborted, price not available",
				"side", sig.Side.String(), "qty", sig.Qty)
			return err
		}
	}

	entryFee := e.fees.Fee(price, sig.Qty, sig.Maker)
	e.snapshot = &EntrySnapshot{
		Side:  sig.Side,
		Qty:   sig.Qty,
		Price: price,
		Fee:   entryFee,
		Maker: sig.Maker,
	}

	noteFull := fmt.Sprintf("OPEN %s qty=%g @ %g entry_fee~%.6f %s",
		sig.Side.String(), sig.Qty, price, entryFee, sig.Note)

	if e.dryRun {
		e.log.Info("dry-run: would place order",
			"side", sig.Side.String(), "qty", sig.Qty, "symbol", e.symbol,
			"price", price, "entry_fee", entryFee)
		metrics.IncOrder("dry", sig.Side.String())
		return e.recordOpen(sig, price, entryFee, noteFull)
	}

	if err := e.orders.PlaceMarketOrder(ctx, sig.Side, sig.Qty); err != nil {
		e.log.Error("order failed",
			"side", sig.Side.String(), "qty", sig.Qty, "symbol", e.symbol,
			"price", price, "err", err)
		e.notify(fmt.Sprintf("order failed: %s %g %s: %v", sig.Side, sig.Qty, e.symbol, err))
		if e.strict {
			return fmt.Errorf("%w: %v", ErrOrderSubmission, err)
		}
		return nil
	}

	e.log.Info("placed order",
		"side", sig.Side.String(), "qty", sig.Qty, "symbol", e.symbol, "price", price)
	metrics.IncOrder("live", sig.Side.String())
	return e.recordOpen(sig, price, entryFee, noteFull)
}

// recordOpen writes the open-leg rows: a marker in the aggregated stream
// and a raw event with pnl 0 and the balance unchanged.
func (e *Executor) recordOpen(sig Signal, price, entryFee float64, noteFull string) error {
	if err := e.ledger.Annotate(noteFull); err != nil {
		return fmt.Errorf("%w: %v", ErrLedgerWrite, err)
	}
	err := e.ledger.Append(ledger.Row{
		TS:          e.now(),
		Symbol:      e.symbol,
		Side:        sig.Side,
		Qty:         sig.Qty,
		Price:       price,
		Fee:         entryFee,
		RealizedPnl: 0,
		Balance:     e.ledger.Balance(),
		Note:        noteFull,
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrLedgerWrite, err)
	}
	return nil
}

// ClosePosition closes the externally observed position: opposite-side
// market order, round-trip fee accounting, realized P&L applied to the
// virtual balance exactly once.
//
// The entry snapshot is cleared unconditionally once a close price was
// resolved — a stuck snapshot would corrupt the next round trip's fee
// accounting. When no price resolves, the snapshot survives for retry.
func (e *Executor) ClosePosition(ctx context.Context, pos market.Position, reason string) error {
	if pos.Size == 0 {
		e.log.Info("no open position to close")
		return nil
	}

	sideEntry := pos.Side
	sideClose := sideEntry.Opposite()
	qty := pos.Size
	entry := pos.EntryPrice

	exit, err := e.markPrice(ctx)
	if err != nil {
		e.log.Error("close aborted, price not available",
			"side", sideEntry.String(), "qty", qty, "entry", entry)
		return err
	}
	defer func() { e.snapshot = nil }()

	closeFee := e.fees.Fee(exit, qty, false) // closes cross the spread
	var entryFee float64
	if e.snapshot != nil {
		entryFee = e.snapshot.Fee
	}
	roundTripFee := entryFee + closeFee

	var gross float64
	if sideEntry == market.Long {
		gross = (exit - entry) * qty
	} else {
		gross = (entry - exit) * qty
	}
	realized := gross - roundTripFee

	if e.dryRun {
		e.log.Info("dry-run: would close position",
			"side", sideEntry.String(), "qty", qty, "symbol", e.symbol,
			"entry", entry, "exit", exit, "pnl", realized, "fees", roundTripFee)
		metrics.IncOrder("dry", sideClose.String())
		noteFull := fmt.Sprintf("DRY_RUN %s (entry_fee+close_fee)", reason)
		return e.recordClose(sideEntry, qty, entry, exit, roundTripFee, noteFull)
	}

	if err := e.orders.PlaceMarketOrder(ctx, sideClose, qty); err != nil {
		e.log.Error("close order failed",
			"side", sideClose.String(), "qty", qty, "symbol", e.symbol,
			"exit", exit, "err", err)
		e.notify(fmt.Sprintf("close failed: %s %g %s: %v", sideClose, qty, e.symbol, err))
		if e.strict {
			return fmt.Errorf("%w: %v", ErrOrderSubmission, err)
		}
		return nil
	}

	e.log.Info("closed position",
		"side", sideEntry.String(), "qty", qty, "symbol", e.symbol,
		"entry", entry, "exit", exit, "pnl", realized, "fees", roundTripFee)
	metrics.IncOrder("live", sideClose.String())
	e.notify(fmt.Sprintf("closed %s %g %s @ ~%g (entry %g) pnl~%.6f fees~%.6f [%s]",
		sideEntry, qty, e.symbol, exit, entry, realized, roundTripFee, reason))
	return e.recordClose(sideEntry, qty, entry, exit, roundTripFee, reason)
}

// recordClose writes the close-leg rows: one aggregated round-trip row
// (which applies the realized P&L to the balance) and one raw event
// carrying the post-update balance.
func (e *Executor) recordClose(side market.Side, qty, entry, exit, roundTripFee float64, note string) error {
	pnl, err := e.ledger.LogTrade(side, qty, entry, exit, roundTripFee, note)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrLedgerWrite, err)
	}

	metrics.IncTrade(pnl)
	metrics.SetBalance(e.ledger.Balance())

	err = e.ledger.Append(ledger.Row{
		TS:          e.now(),
		Symbol:      e.symbol,
		Side:        side,
		Qty:         qty,
		Price:       exit,
		Fee:         roundTripFee,
		RealizedPnl: pnl,
		Balance:     e.ledger.Balance(),
		Note:        note,
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrLedgerWrite, err)
	}
	return nil
}

func (e *Executor) notify(msg string) {
	if err := e.notifier.Send(msg); err != nil {
		e.log.Warn("notification failed", "err", err)
	}
}
