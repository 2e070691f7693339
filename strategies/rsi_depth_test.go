package strategies

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rustyeddy/dogebot/indicators"
	"github.com/rustyeddy/dogebot/market"
)

func testStrategy() *RSIDepth {
	return &RSIDepth{
		BuyThreshold:   20,
		SellThreshold:  80,
		ExitLong:       55,
		ExitShort:      45,
		DepthThreshold: 0.15,
		TakerThreshold: 0.10,
		OrderSize:      100,
	}
}

func v(x float64) indicators.Value { return indicators.Value{V: x, OK: true} }

func TestShouldOpen(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		snap indicators.Snapshot
		pos  market.Position
		want bool
		side market.Side
	}{
		{
			name: "long_all_conditions",
			snap: indicators.Snapshot{RSI: v(15), DepthImbalance: v(0.3), TakerBias: v(0.2)},
			want: true,
			side: market.Long,
		},
		{
			name: "short_all_conditions",
			snap: indicators.Snapshot{RSI: v(85), DepthImbalance: v(-0.3), TakerBias: v(-0.2)},
			want: true,
			side: market.Short,
		},
		{
			name: "rsi_oversold_but_depth_disagrees",
			snap: indicators.Snapshot{RSI: v(15), DepthImbalance: v(-0.3), TakerBias: v(0.2)},
			want: false,
		},
		{
			name: "rsi_oversold_but_taker_flat",
			snap: indicators.Snapshot{RSI: v(15), DepthImbalance: v(0.3), TakerBias: v(0.05)},
			want: false,
		},
		{
			name: "rsi_neutral",
			snap: indicators.Snapshot{RSI: v(50), DepthImbalance: v(0.3), TakerBias: v(0.2)},
			want: false,
		},
		{
			name: "rsi_missing",
			snap: indicators.Snapshot{DepthImbalance: v(0.3), TakerBias: v(0.2)},
			want: false,
		},
		{
			name: "depth_missing",
			snap: indicators.Snapshot{RSI: v(15), TakerBias: v(0.2)},
			want: false,
		},
		{
			name: "already_open",
			snap: indicators.Snapshot{RSI: v(15), DepthImbalance: v(0.3), TakerBias: v(0.2)},
			pos:  market.Position{IsOpen: true, Side: market.Long},
			want: false,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			s := testStrategy()
			assert.Equal(t, tt.want, s.ShouldOpen(tt.snap, tt.pos))
			if tt.want {
				sig := s.Signal(tt.snap, tt.pos)
				assert.Equal(t, tt.side, sig.Side)
				assert.InDelta(t, 100, sig.Qty, 1e-12)
				assert.False(t, sig.Maker)
				assert.NotEmpty(t, sig.Note)
			}
		})
	}
}

func TestShouldClose(t *testing.T) {
	t.Parallel()

	long := market.Position{IsOpen: true, Side: market.Long, Size: 100}
	short := market.Position{IsOpen: true, Side: market.Short, Size: 100}

	tests := []struct {
		name string
		snap indicators.Snapshot
		pos  market.Position
		want bool
	}{
		{"long_exit_on_recovery", indicators.Snapshot{RSI: v(60)}, long, true},
		{"long_exit_at_threshold", indicators.Snapshot{RSI: v(55)}, long, true},
		{"long_hold_below_threshold", indicators.Snapshot{RSI: v(40)}, long, false},
		{"short_exit_on_dip", indicators.Snapshot{RSI: v(40)}, short, true},
		{"short_hold_above_threshold", indicators.Snapshot{RSI: v(60)}, short, false},
		{"flat_never_closes", indicators.Snapshot{RSI: v(60)}, market.Position{}, false},
		{"rsi_missing_never_closes", indicators.Snapshot{}, long, false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, testStrategy().ShouldClose(tt.snap, tt.pos))
		})
	}
}

func TestSignalDecayYieldsNoneSide(t *testing.T) {
	t.Parallel()

	// Conditions no longer hold at signal time: side must be None so the
	// caller skips the entry.
	sig := testStrategy().Signal(indicators.Snapshot{RSI: v(50)}, market.Position{})
	assert.Equal(t, market.None, sig.Side)
}

func TestRegistry(t *testing.T) {
	t.Parallel()

	s := testStrategy()
	Register(s)
	assert.Equal(t, s, Get("rsi-depth"))
	assert.Nil(t, Get("missing"))
}
