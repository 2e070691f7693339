// Package market holds the value types shared by the trading core:
// sides, positions, orderbooks and candles.
package market

// Side is the direction of a position or order.
type Side int

const (
	None Side = iota
	Long
	Short
)

// String returns the exchange vocabulary for the side ("Buy"/"Sell").
// None renders as the empty string, matching the durable ledger format.
func (s Side) String() string {
	switch s {
	case Long:
		return "Buy"
	case Short:
		return "Sell"
	default:
		return ""
	}
}

// Opposite returns the side that closes s.
func (s Side) Opposite() Side {
	switch s {
	case Long:
		return Short
	case Short:
		return Long
	default:
		return None
	}
}

// SideFromString parses the exchange vocabulary back into a Side.
func SideFromString(s string) Side {
	switch s {
	case "Buy":
		return Long
	case "Sell":
		return Short
	default:
		return None
	}
}

// Position is the externally observed position snapshot for one symbol.
type Position struct {
	IsOpen     bool
	Side       Side
	Size       float64
	EntryPrice float64
}

// Level is one price level of an orderbook: price and quantity.
type Level struct {
	Price float64
	Qty   float64
}

// Orderbook carries either an explicit best bid/ask pair, depth arrays,
// or both. Zero values mean "absent".
type Orderbook struct {
	BestBid float64
	BestAsk float64
	Bids    []Level
	Asks    []Level
}

// Best resolves the best bid/ask, preferring the explicit pair over the
// depth arrays. ok is false when neither source yields positive prices.
func (ob Orderbook) Best() (bid, ask float64, ok bool) {
	if ob.BestBid > 0 && ob.BestAsk > 0 {
		return ob.BestBid, ob.BestAsk, true
	}
	if len(ob.Bids) > 0 && len(ob.Asks) > 0 {
		bb := ob.Bids[0].Price
		ba := ob.Asks[0].Price
		if bb > 0 && ba > 0 {
			return bb, ba, true
		}
	}
	return 0, 0, false
}

// Mid returns the midpoint of the best bid/ask, or ok=false if no valid
// pair can be resolved.
func (ob Orderbook) Mid() (float64, bool) {
	bid, ask, ok := ob.Best()
	if !ok {
		return 0, false
	}
	return (bid + ask) / 2, true
}

// Candle is a single OHLCV bar.
type Candle struct {
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
}
