// Package position tracks the bot's believed position independently of
// the exchange's own bookkeeping. Its one job is edge detection: strategy
// signals are level-triggered and recomputed every poll cycle, so the
// tracker converts them into one-shot transitions — exactly one entry per
// flat→open change and one close per open→flat change.
package position

import (
	"log/slog"

	"github.com/rustyeddy/dogebot/market"
)

// Tracker is the FLAT/LONG/SHORT state machine. It has no I/O and cannot
// fail; the only mutators are MarkEntered, MarkClosed and SyncFromExternal.
type Tracker struct {
	inPosition bool
	side       market.Side
	log        *slog.Logger
}

func NewTracker(log *slog.Logger) *Tracker {
	if log == nil {
		log = slog.Default()
	}
	return &Tracker{log: log}
}

// SyncFromExternal reconciles the internal state with an externally
// observed position snapshot.
//
// An open external view always overrides the internal state. A flat
// external view clears the state only with forceFlat set (startup: a
// stale in-process belief must not suppress the first real edge after a
// restart). Without forceFlat, a flat view is ignored: mid-run the
// exchange reports flat while a just-submitted fill is still in flight,
// and adopting it would re-arm the entry edge and duplicate the order.
// Idempotent.
func (t *Tracker) SyncFromExternal(ext market.Position, forceFlat bool) {
	prevIn, prevSide := t.inPosition, t.side

	switch {
	case ext.IsOpen:
		t.inPosition = true
		t.side = ext.Side
	case forceFlat:
		t.inPosition = false
		t.side = market.None
	}

	t.log.Info("position tracker synced from exchange",
		"in_position", t.inPosition,
		"side", t.side.String(),
		"was_in_position", prevIn,
		"was_side", prevSide.String(),
	)
}

// EntryEdge reports whether an entry transition is allowed right now:
// the strategy wants to open and the tracker is flat. Pure guard, does
// not mutate state.
func (t *Tracker) EntryEdge(wantOpen bool, side market.Side) bool {
	if wantOpen && !t.inPosition {
		t.log.Info("entry edge detected", "side", side.String())
		return true
	}
	return false
}

// CloseEdge reports whether a close transition is allowed right now:
// the strategy wants to close and the tracker holds a position.
func (t *Tracker) CloseEdge(wantClose bool) bool {
	if wantClose && t.inPosition {
		t.log.Info("close edge detected", "side", t.side.String())
		return true
	}
	return false
}

// MarkEntered records that an entry order was submitted (or at least
// attempted). Call exactly once per accepted entry edge, after the
// submission attempt — never before, so a failed attempt can retry.
func (t *Tracker) MarkEntered(side market.Side) {
	t.inPosition = true
	t.side = side
	t.log.Info("marked entered", "side", side.String())
}

// MarkClosed records that a close order was submitted. Call exactly once
// per accepted close edge.
func (t *Tracker) MarkClosed() {
	t.inPosition = false
	t.side = market.None
	t.log.Info("marked closed")
}

// InPosition reports the current internal belief.
func (t *Tracker) InPosition() bool { return t.inPosition }

// Side returns the held side, or market.None when flat.
func (t *Tracker) Side() market.Side { return t.side }
