package indicators

import (
	"math"

	"github.com/rustyeddy/dogebot/market"
)

// Snapshot is one poll cycle's worth of indicator and feature values.
type Snapshot struct {
	// Candle-derived indicators.
	RSI       Value
	SMAFast   Value
	SMASlow   Value
	LastClose Value

	// Microstructure features.
	Mid            Value
	SpreadBPS      Value
	DepthImbalance Value // (bid depth - ask depth) / total, top 5 levels
	TakerBias      Value // tick up-ratio minus down-ratio, lookback 20
	Mom1           Value // price change over 1 observation
	Mom5           Value // price change over 5 observations
	Volatility     Value // std20 / std60
	TrendSlope     Value // least-squares slope over last 30
	LiqRatio       Value // top-5 depth / top-20 depth
}

// Pipeline computes a Snapshot per poll cycle. The price window is owned
// by the pipeline's owner and injected at construction; nothing here is
// package-global.
type Pipeline struct {
	RSIPeriod int
	SMAFast   int
	SMASlow   int

	window *PriceWindow
}

func NewPipeline(rsiPeriod, smaFast, smaSlow, windowCap int) *Pipeline {
	return &Pipeline{
		RSIPeriod: rsiPeriod,
		SMAFast:   smaFast,
		SMASlow:   smaSlow,
		window:    NewPriceWindow(windowCap),
	}
}

// Window exposes the owned price window, mainly for tests that want to
// inject deterministic histories.
func (p *Pipeline) Window() *PriceWindow { return p.window }

// Compute folds the cycle's candles, last price and orderbook into a
// Snapshot, pushing the observed price into the window first.
func (p *Pipeline) Compute(candles []market.Candle, last float64, ob market.Orderbook) Snapshot {
	closes := make([]float64, 0, len(candles))
	for _, c := range candles {
		closes = append(closes, c.Close)
	}

	var snap Snapshot
	snap.RSI = RSI(closes, p.RSIPeriod)
	snap.SMAFast = SMA(closes, p.SMAFast)
	snap.SMASlow = SMA(closes, p.SMASlow)
	if len(closes) > 0 {
		snap.LastClose = valid(closes[len(closes)-1])
	}

	// Resolve mid/spread from the book, falling back to the last price
	// with a nominal spread.
	var mid, spread float64
	if bid, ask, ok := ob.Best(); ok {
		mid = (bid + ask) / 2
		spread = ask - bid
	} else if last > 0 {
		mid = last
		spread = mid * 0.0005
	}
	if last <= 0 {
		last = mid
	}

	if last > 0 {
		p.window.Push(last)
	}

	if mid > 0 {
		snap.Mid = valid(mid)
		snap.SpreadBPS = valid(spread / mid * 1e4)
	}
	snap.DepthImbalance = depthImbalance(ob, 5)
	snap.TakerBias = takerBias(p.window, 20)
	snap.Mom1 = momentum(p.window, 1)
	snap.Mom5 = momentum(p.window, 5)
	snap.Volatility = volatility(p.window, 20, 60)
	snap.TrendSlope = trendSlope(p.window, 30)
	snap.LiqRatio = liquidityRatio(ob, 5, 20)

	return snap
}

// depthImbalance is (bid - ask) / (bid + ask) over the top depth levels.
// Positive means the bid side is heavier.
func depthImbalance(ob market.Orderbook, depth int) Value {
	if len(ob.Bids) == 0 || len(ob.Asks) == 0 {
		return Value{}
	}
	b := sumQty(ob.Bids, depth)
	a := sumQty(ob.Asks, depth)
	total := a + b
	if total <= 0 {
		return valid(0)
	}
	return valid((b - a) / total)
}

func sumQty(levels []market.Level, n int) float64 {
	if n > len(levels) {
		n = len(levels)
	}
	sum := 0.0
	for _, l := range levels[:n] {
		sum += l.Qty
	}
	return sum
}

// takerBias approximates aggressor flow from tick direction: the share
// of upticks minus the share of downticks over the lookback.
func takerBias(w *PriceWindow, lookback int) Value {
	n := lookback
	if n > w.Len()-1 {
		n = w.Len() - 1
	}
	if n <= 0 {
		return valid(0)
	}

	var ups, downs int
	for i := 0; i < n; i++ {
		cur, prev := w.At(i), w.At(i+1)
		if cur > prev {
			ups++
		} else if cur < prev {
			downs++
		}
	}
	total := ups + downs
	if total == 0 {
		return valid(0)
	}
	return valid(float64(ups-downs) / float64(total))
}

func momentum(w *PriceWindow, k int) Value {
	if w.Len() <= k {
		return valid(0)
	}
	return valid(w.At(0) - w.At(k))
}

// volatility is the ratio of short-horizon to long-horizon standard
// deviation; 0 until enough history exists.
func volatility(w *PriceWindow, short, long int) Value {
	if w.Len() < long {
		return valid(0)
	}
	shortStd := stddev(w.Tail(short))
	longStd := stddev(w.Tail(long))
	if longStd == 0 {
		return valid(0)
	}
	return valid(shortStd / longStd)
}

func stddev(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	var mean float64
	for _, x := range xs {
		mean += x
	}
	mean /= float64(len(xs))

	var ss float64
	for _, x := range xs {
		d := x - mean
		ss += d * d
	}
	return math.Sqrt(ss / float64(len(xs)))
}

// trendSlope is the least-squares slope of price against observation
// index over the lookback.
func trendSlope(w *PriceWindow, lookback int) Value {
	if w.Len() < lookback {
		return valid(0)
	}
	y := w.Tail(lookback)
	n := float64(len(y))

	var sumX, sumY, sumXY, sumXX float64
	for i, v := range y {
		x := float64(i)
		sumX += x
		sumY += v
		sumXY += x * v
		sumXX += x * x
	}
	denom := n*sumXX - sumX*sumX
	if denom == 0 {
		return valid(0)
	}
	return valid((n*sumXY - sumX*sumY) / denom)
}

// liquidityRatio compares top-of-book depth to the fuller book: a value
// near 1 means liquidity is concentrated at the touch.
func liquidityRatio(ob market.Orderbook, depth, full int) Value {
	if len(ob.Bids) == 0 || len(ob.Asks) == 0 {
		return valid(0)
	}
	top := sumQty(ob.Bids, depth) + sumQty(ob.Asks, depth)
	all := sumQty(ob.Bids, full) + sumQty(ob.Asks, full)
	if all <= 0 {
		return valid(0)
	}
	return valid(top / all)
}
