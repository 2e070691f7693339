package position

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rustyeddy/dogebot/market"
)

func TestEntryEdgeFiresOncePerFlatPeriod(t *testing.T) {
	t.Parallel()

	tr := NewTracker(nil)

	// Level signal stays true for many cycles; only the first poll while
	// flat may fire.
	assert.True(t, tr.EntryEdge(true, market.Long))
	tr.MarkEntered(market.Long)

	for i := 0; i < 5; i++ {
		assert.False(t, tr.EntryEdge(true, market.Long))
	}

	tr.MarkClosed()
	assert.True(t, tr.EntryEdge(true, market.Short))
}

func TestEntryEdgeRequiresWantOpen(t *testing.T) {
	t.Parallel()

	tr := NewTracker(nil)
	assert.False(t, tr.EntryEdge(false, market.Long))
	assert.False(t, tr.InPosition(), "pure guard must not mutate state")
}

func TestCloseEdgeFiresOncePerOpenPeriod(t *testing.T) {
	t.Parallel()

	tr := NewTracker(nil)

	// Flat: nothing to close.
	assert.False(t, tr.CloseEdge(true))

	tr.MarkEntered(market.Short)
	assert.True(t, tr.CloseEdge(true))
	tr.MarkClosed()

	assert.False(t, tr.CloseEdge(true))
}

func TestMarkEnteredTracksSide(t *testing.T) {
	t.Parallel()

	tr := NewTracker(nil)
	tr.MarkEntered(market.Short)

	assert.True(t, tr.InPosition())
	assert.Equal(t, market.Short, tr.Side())

	tr.MarkClosed()
	assert.False(t, tr.InPosition())
	assert.Equal(t, market.None, tr.Side())
}

func TestSyncFromExternal(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		prime     func(*Tracker)
		ext       market.Position
		forceFlat bool
		wantIn    bool
		wantSide  market.Side
	}{
		{
			name:      "force_flat_clears_stale_belief",
			prime:     func(tr *Tracker) { tr.MarkEntered(market.Long) },
			ext:       market.Position{IsOpen: false},
			forceFlat: true,
			wantIn:    false,
			wantSide:  market.None,
		},
		{
			name:      "open_external_overrides_internal",
			prime:     func(tr *Tracker) {},
			ext:       market.Position{IsOpen: true, Side: market.Long, Size: 100, EntryPrice: 0.1},
			forceFlat: true,
			wantIn:    true,
			wantSide:  market.Long,
		},
		{
			name:      "open_short_external",
			prime:     func(tr *Tracker) { tr.MarkEntered(market.Long) },
			ext:       market.Position{IsOpen: true, Side: market.Short, Size: 50, EntryPrice: 0.2},
			forceFlat: false,
			wantIn:    true,
			wantSide:  market.Short,
		},
		{
			name:      "flat_external_without_force_keeps_belief",
			prime:     func(tr *Tracker) { tr.MarkEntered(market.Short) },
			ext:       market.Position{IsOpen: false},
			forceFlat: false,
			wantIn:    true,
			wantSide:  market.Short,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			tr := NewTracker(nil)
			tt.prime(tr)

			tr.SyncFromExternal(tt.ext, tt.forceFlat)
			assert.Equal(t, tt.wantIn, tr.InPosition())
			assert.Equal(t, tt.wantSide, tr.Side())

			// Idempotent: a second sync with the same input is a no-op.
			tr.SyncFromExternal(tt.ext, tt.forceFlat)
			assert.Equal(t, tt.wantIn, tr.InPosition())
			assert.Equal(t, tt.wantSide, tr.Side())
		})
	}
}

func TestMidRunFlatViewDoesNotReArmEntryEdge(t *testing.T) {
	t.Parallel()

	// After an entry the exchange keeps reporting flat until the fill
	// lands. Syncing those views without forceFlat must not erase the
	// belief, or every subsequent cycle would fire the edge again and
	// submit a duplicate order.
	tr := NewTracker(nil)
	assert.True(t, tr.EntryEdge(true, market.Long))
	tr.MarkEntered(market.Long)

	for i := 0; i < 3; i++ {
		tr.SyncFromExternal(market.Position{IsOpen: false}, false)
		assert.False(t, tr.EntryEdge(true, market.Long))
		assert.True(t, tr.InPosition())
		assert.Equal(t, market.Long, tr.Side())
	}

	// And the close edge stays available for the held position.
	assert.True(t, tr.CloseEdge(true))
}

func TestSyncReArmsEntryEdgeAfterRestart(t *testing.T) {
	t.Parallel()

	// Simulates a restart where the process previously believed it held a
	// position but the exchange reports flat.
	tr := NewTracker(nil)
	tr.MarkEntered(market.Long)

	tr.SyncFromExternal(market.Position{IsOpen: false}, true)
	assert.True(t, tr.EntryEdge(true, market.Long))
}
