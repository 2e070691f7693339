package strategies

import (
	"fmt"

	"github.com/rustyeddy/dogebot/executor"
	"github.com/rustyeddy/dogebot/indicators"
	"github.com/rustyeddy/dogebot/market"
)

// RSIDepth combines RSI extremes with orderbook confirmation:
//
//   - long: RSI oversold AND bid-heavy depth AND positive taker bias
//   - short: the mirrored condition
//   - exit long when RSI recovers above ExitLong, exit short below
//     ExitShort
//
// RSI alone says "stretched"; the depth and flow filters require the
// book to lean the same way before committing.
type RSIDepth struct {
	BuyThreshold  float64 // RSI below this arms a long, e.g. 20
	SellThreshold float64 // RSI above this arms a short, e.g. 80
	ExitLong      float64 // e.g. 55
	ExitShort     float64 // e.g. 45

	DepthThreshold float64 // e.g. 0.15
	TakerThreshold float64 // e.g. 0.10

	OrderSize float64
}

func (s *RSIDepth) Name() string { return "rsi-depth" }

func (s *RSIDepth) ShouldOpen(snap indicators.Snapshot, pos market.Position) bool {
	if !snap.RSI.OK || pos.IsOpen {
		return false
	}
	return s.wantSide(snap) != market.None
}

func (s *RSIDepth) wantSide(snap indicators.Snapshot) market.Side {
	rsi := snap.RSI
	depth := snap.DepthImbalance
	taker := snap.TakerBias
	if !rsi.OK || !depth.OK || !taker.OK {
		return market.None
	}

	switch {
	case rsi.V < s.BuyThreshold && depth.V > +s.DepthThreshold && taker.V > +s.TakerThreshold:
		return market.Long
	case rsi.V > s.SellThreshold && depth.V < -s.DepthThreshold && taker.V < -s.TakerThreshold:
		return market.Short
	default:
		return market.None
	}
}

func (s *RSIDepth) ShouldClose(snap indicators.Snapshot, pos market.Position) bool {
	if !snap.RSI.OK || !pos.IsOpen {
		return false
	}
	switch pos.Side {
	case market.Long:
		return snap.RSI.V >= s.ExitLong
	case market.Short:
		return snap.RSI.V <= s.ExitShort
	default:
		return false
	}
}

func (s *RSIDepth) Signal(snap indicators.Snapshot, pos market.Position) executor.Signal {
	note := fmt.Sprintf("rsi=%s, depth=%s, taker=%s, spread_bps=%s, mom1=%s, mom5=%s, vol=%s, slope=%s, liq=%s",
		fv(snap.RSI), fv(snap.DepthImbalance), fv(snap.TakerBias),
		fv(snap.SpreadBPS), fv(snap.Mom1), fv(snap.Mom5),
		fv(snap.Volatility), fv(snap.TrendSlope), fv(snap.LiqRatio))

	return executor.Signal{
		Side:  s.wantSide(snap),
		Qty:   s.OrderSize,
		Maker: false,
		Note:  note,
	}
}

func fv(v indicators.Value) string {
	if !v.OK {
		return "NA"
	}
	return fmt.Sprintf("%g", v.V)
}
