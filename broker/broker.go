// Package broker defines the capability interfaces the trading core
// consumes from an exchange. Each interface carries the minimal method
// set one component needs, so test doubles can substitute any capability
// without touching the others.
package broker

import (
	"context"

	"github.com/rustyeddy/dogebot/market"
)

// PriceSource supplies market prices for reference-price resolution.
type PriceSource interface {
	// LastPrice returns the most recent trade price, 0 when unknown.
	LastPrice(ctx context.Context) (float64, error)
	// Orderbook returns the current book; fields may be absent.
	Orderbook(ctx context.Context) (market.Orderbook, error)
}

// PositionSource reports the exchange's view of the current position.
type PositionSource interface {
	CurrentPosition(ctx context.Context) (market.Position, error)
}

// OrderSink submits orders. Fire-and-forget from the core's perspective:
// the core does not await fill confirmation.
type OrderSink interface {
	PlaceMarketOrder(ctx context.Context, side market.Side, qty float64) error
}

// CandleSource supplies OHLCV history for indicator computation.
type CandleSource interface {
	Candles(ctx context.Context, timeframe string, limit int) ([]market.Candle, error)
}

// Exchange is the full collaborator contract a live runner wires up.
type Exchange interface {
	PriceSource
	PositionSource
	OrderSink
	CandleSource
}
