// Package bot runs the poll loop: fetch market state, compute features,
// ask the strategy, gate decisions through the position tracker, and
// hand accepted transitions to the executor.
package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/rustyeddy/dogebot/broker"
	"github.com/rustyeddy/dogebot/executor"
	"github.com/rustyeddy/dogebot/indicators"
	"github.com/rustyeddy/dogebot/market"
	"github.com/rustyeddy/dogebot/metrics"
	"github.com/rustyeddy/dogebot/position"
	"github.com/rustyeddy/dogebot/strategies"
)

// Options configures a Runner.
type Options struct {
	Exchange broker.Exchange
	Tracker  *position.Tracker
	Executor *executor.Executor
	Pipeline *indicators.Pipeline
	Strategy strategies.Strategy

	Interval    time.Duration
	Timeframe   string // candle timeframe, e.g. "1m"
	CandleLimit int

	Logger *slog.Logger
}

// Runner drives one symbol through the decision cycle. It holds no
// financial state itself; the tracker carries belief and the executor
// carries the cost basis.
type Runner struct {
	exchange broker.Exchange
	tracker  *position.Tracker
	exec     *executor.Executor
	pipeline *indicators.Pipeline
	strategy strategies.Strategy

	interval    time.Duration
	timeframe   string
	candleLimit int

	log *slog.Logger
}

func NewRunner(opts Options) *Runner {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Timeframe == "" {
		opts.Timeframe = "1m"
	}
	if opts.CandleLimit <= 0 {
		opts.CandleLimit = 120
	}
	if opts.Interval <= 0 {
		opts.Interval = 15 * time.Second
	}
	return &Runner{
		exchange:    opts.Exchange,
		tracker:     opts.Tracker,
		exec:        opts.Executor,
		pipeline:    opts.Pipeline,
		strategy:    opts.Strategy,
		interval:    opts.Interval,
		timeframe:   opts.Timeframe,
		candleLimit: opts.CandleLimit,
		log:         opts.Logger,
	}
}

// Bootstrap reconciles the tracker with the exchange's view before the
// first cycle. A flat exchange forces the tracker flat so the first real
// signal after a restart produces an edge.
func (r *Runner) Bootstrap(ctx context.Context) error {
	pos, err := r.exchange.CurrentPosition(ctx)
	if err != nil {
		return fmt.Errorf("bootstrap: current position: %w", err)
	}
	r.tracker.SyncFromExternal(pos, true)
	return nil
}

// Step executes one decision cycle. Per-cycle market errors are returned
// for the caller to log and skip; only a ledger write failure should stop
// the loop.
func (r *Runner) Step(ctx context.Context) error {
	candles, err := r.exchange.Candles(ctx, r.timeframe, r.candleLimit)
	if err != nil {
		return fmt.Errorf("candles: %w", err)
	}
	last, err := r.exchange.LastPrice(ctx)
	if err != nil {
		return fmt.Errorf("last price: %w", err)
	}
	ob, err := r.exchange.Orderbook(ctx)
	if err != nil {
		return fmt.Errorf("orderbook: %w", err)
	}

	snap := r.pipeline.Compute(candles, last, ob)

	pos, err := r.exchange.CurrentPosition(ctx)
	if err != nil {
		return fmt.Errorf("current position: %w", err)
	}

	// The exchange view takes precedence over local belief, but a flat
	// view mid-run is not forced: an intent-recorded entry whose fill is
	// still in flight would otherwise re-arm the entry edge every cycle.
	r.tracker.SyncFromExternal(pos, false)

	if r.tracker.CloseEdge(r.strategy.ShouldClose(snap, pos)) {
		metrics.IncDecision("close")
		if err := r.exec.ClosePosition(ctx, pos, "signal exit"); err != nil {
			return err
		}
		r.tracker.MarkClosed()
		return nil
	}

	wantOpen := r.strategy.ShouldOpen(snap, pos)
	sig := r.strategy.Signal(snap, pos)
	if r.tracker.EntryEdge(wantOpen, sig.Side) {
		if sig.Side == market.None {
			metrics.IncDecision("decayed")
			r.log.Info("entry conditions decayed before signal, skipping")
			return nil
		}
		metrics.IncDecision(sig.Side.String())
		if err := r.exec.Execute(ctx, sig); err != nil {
			return err
		}
		r.tracker.MarkEntered(sig.Side)
		return nil
	}

	metrics.IncDecision("hold")
	return nil
}

// Run polls until the context is canceled. Cycle errors are logged and
// the loop continues, except ledger write failures, which are fatal: a
// lost row corrupts balance recovery for every later restart.
func (r *Runner) Run(ctx context.Context) error {
	if err := r.Bootstrap(ctx); err != nil {
		return err
	}

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	r.log.Info("runner started",
		"strategy", r.strategy.Name(), "interval", r.interval.String())

	for {
		if err := r.Step(ctx); err != nil {
			if errors.Is(err, executor.ErrLedgerWrite) {
				r.log.Error("ledger write failed, stopping", "err", err)
				return err
			}
			r.log.Warn("cycle skipped", "err", err)
		}

		select {
		case <-ctx.Done():
			r.log.Info("runner stopped", "reason", ctx.Err())
			return nil
		case <-ticker.C:
		}
	}
}
