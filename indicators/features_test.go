package indicators

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rustyeddy/dogebot/market"
)

func candlesFromCloses(closes ...float64) []market.Candle {
	out := make([]market.Candle, len(closes))
	for i, c := range closes {
		out[i] = market.Candle{Close: c}
	}
	return out
}

func TestDepthImbalance(t *testing.T) {
	t.Parallel()

	ob := market.Orderbook{
		Bids: []market.Level{{Price: 0.099, Qty: 30}, {Price: 0.098, Qty: 30}},
		Asks: []market.Level{{Price: 0.101, Qty: 20}, {Price: 0.102, Qty: 20}},
	}
	v := depthImbalance(ob, 5)
	assert.True(t, v.OK)
	assert.InDelta(t, 0.2, v.V, 1e-12) // (60-40)/100

	assert.False(t, depthImbalance(market.Orderbook{}, 5).OK, "absent book yields invalid")
}

func TestLiquidityRatio(t *testing.T) {
	t.Parallel()

	bids := make([]market.Level, 10)
	asks := make([]market.Level, 10)
	for i := range bids {
		bids[i] = market.Level{Price: 0.1, Qty: 1}
		asks[i] = market.Level{Price: 0.1, Qty: 1}
	}
	v := liquidityRatio(market.Orderbook{Bids: bids, Asks: asks}, 5, 20)
	assert.True(t, v.OK)
	assert.InDelta(t, 0.5, v.V, 1e-12) // 10 of 20 units at the touch
}

func TestPipelineComputeBasics(t *testing.T) {
	t.Parallel()

	p := NewPipeline(14, 9, 21, 100)

	closes := make([]float64, 0, 30)
	for i := 0; i < 30; i++ {
		closes = append(closes, 0.1+float64(i)*0.0005)
	}

	ob := market.Orderbook{BestBid: 0.0999, BestAsk: 0.1001}
	snap := p.Compute(candlesFromCloses(closes...), 0.1, ob)

	assert.True(t, snap.RSI.OK)
	assert.InDelta(t, 100, snap.RSI.V, 1e-9, "monotone rise")
	assert.True(t, snap.SMAFast.OK)
	assert.True(t, snap.SMASlow.OK)
	assert.True(t, snap.LastClose.OK)

	assert.True(t, snap.Mid.OK)
	assert.InDelta(t, 0.1, snap.Mid.V, 1e-9)
	assert.True(t, snap.SpreadBPS.OK)
	assert.InDelta(t, 20.0, snap.SpreadBPS.V, 1e-6) // 0.0002/0.1 in bps

	assert.Equal(t, 1, p.Window().Len(), "observed price pushed into the window")
}

func TestPipelineComputeAbsentInputs(t *testing.T) {
	t.Parallel()

	p := NewPipeline(14, 9, 21, 100)
	snap := p.Compute(nil, 0, market.Orderbook{})

	assert.False(t, snap.RSI.OK)
	assert.False(t, snap.SMAFast.OK)
	assert.False(t, snap.LastClose.OK)
	assert.False(t, snap.Mid.OK)
	assert.False(t, snap.DepthImbalance.OK)
	assert.Equal(t, 0, p.Window().Len(), "no valid price to record")
}

func TestPipelineFallsBackToLastPriceForMid(t *testing.T) {
	t.Parallel()

	p := NewPipeline(14, 9, 21, 100)
	snap := p.Compute(nil, 0.2, market.Orderbook{})

	assert.True(t, snap.Mid.OK)
	assert.InDelta(t, 0.2, snap.Mid.V, 1e-12)
	assert.True(t, snap.SpreadBPS.OK)
	assert.InDelta(t, 5.0, snap.SpreadBPS.V, 1e-9) // nominal 5 bps spread
}

func TestPipelineWindowIsIsolatedPerInstance(t *testing.T) {
	t.Parallel()

	a := NewPipeline(14, 9, 21, 100)
	b := NewPipeline(14, 9, 21, 100)

	a.Compute(nil, 0.1, market.Orderbook{})
	a.Compute(nil, 0.11, market.Orderbook{})

	assert.Equal(t, 2, a.Window().Len())
	assert.Equal(t, 0, b.Window().Len(), "no shared package-level state")
}
