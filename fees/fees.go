// Package fees computes exchange fees for market and post-only orders.
package fees

// Schedule holds the configured maker/taker fee rates. Rates are
// fractions of notional (0.0006 = 6 bps) and must be non-negative.
type Schedule struct {
	MakerRate float64
	TakerRate float64
}

// Fee returns the fee for one leg: price * qty * rate. It must be applied
// once per leg; a round trip pays the sum of its entry and exit legs.
func (s Schedule) Fee(price, qty float64, isMaker bool) float64 {
	rate := s.TakerRate
	if isMaker {
		rate = s.MakerRate
	}
	return price * qty * rate
}
