// Package bybit is the exchange-connectivity boundary. The Client below
// is a stub: it serves synthetic market data so the rest of the bot can
// run end to end without credentials. Production swaps in the real v5
// HTTP/WS calls behind the same broker interfaces.
package bybit

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"github.com/rustyeddy/dogebot/market"
	"github.com/rustyeddy/dogebot/pkg/id"
)

// Client implements broker.Exchange with deterministic dummy data.
//
//   - LastPrice: internal price, nudged slightly by fills
//   - Orderbook: best bid/ask spread around the last price
//   - CurrentPosition: always flat
//   - PlaceMarketOrder: logs and moves the internal price
//   - Candles: monotone synthetic closes
type Client struct {
	mu        sync.Mutex
	symbol    string
	lastPrice float64
	log       *slog.Logger
}

func New(symbol string, log *slog.Logger) *Client {
	if log == nil {
		log = slog.Default()
	}
	return &Client{
		symbol:    symbol,
		lastPrice: 0.1,
		log:       log,
	}
}

func (c *Client) LastPrice(ctx context.Context) (float64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastPrice, nil
}

func (c *Client) Orderbook(ctx context.Context) (market.Orderbook, error) {
	c.mu.Lock()
	mid := c.lastPrice
	c.mu.Unlock()
	if mid <= 0 {
		mid = 0.1
	}

	spread := mid * 0.0005
	if spread < 0.0001 {
		spread = 0.0001
	}
	return market.Orderbook{
		BestBid: mid - spread/2,
		BestAsk: mid + spread/2,
	}, nil
}

func (c *Client) CurrentPosition(ctx context.Context) (market.Position, error) {
	return market.Position{}, nil
}

func (c *Client) PlaceMarketOrder(ctx context.Context, side market.Side, qty float64) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.log.Info("market order", "exchange", "bybit-stub", "client_order_id", id.NewOrderID(),
		"side", side.String(), "qty", qty, "symbol", c.symbol)

	// Nudge the dummy price so repeated fills drift realistically.
	factor := 0.0002
	if strings.EqualFold(side.String(), "Sell") {
		factor = -0.0002
	}
	if c.lastPrice <= 0 {
		c.lastPrice = 0.1
	}
	c.lastPrice *= 1.0 + factor
	return nil
}

func (c *Client) Candles(ctx context.Context, timeframe string, limit int) ([]market.Candle, error) {
	c.mu.Lock()
	base := c.lastPrice
	c.mu.Unlock()
	if base <= 0 {
		base = 0.1
	}

	out := make([]market.Candle, 0, limit)
	for i := 0; i < limit; i++ {
		cl := base + float64(i)*0.0005
		out = append(out, market.Candle{
			Open:   cl,
			High:   cl * 1.002,
			Low:    cl * 0.998,
			Close:  cl,
			Volume: 10,
		})
	}
	return out, nil
}
