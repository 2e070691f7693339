// Package indicators computes the technical indicators and market
// microstructure features the strategy consumes. A feature that cannot
// be computed from its inputs yields an invalid Value rather than an
// error or a panic; the strategy decides the fallback.
package indicators

// Value is an optional float: OK is false when the underlying inputs
// were absent or insufficient.
type Value struct {
	V  float64
	OK bool
}

func valid(v float64) Value { return Value{V: v, OK: true} }

// SMA returns the simple moving average of the last period closes.
func SMA(closes []float64, period int) Value {
	if period <= 0 || len(closes) < period {
		return Value{}
	}
	sum := 0.0
	for _, c := range closes[len(closes)-period:] {
		sum += c
	}
	return valid(sum / float64(period))
}

// RSI returns Wilder's relative strength index over the last period
// deltas. Needs period+1 closes.
func RSI(closes []float64, period int) Value {
	if period <= 0 || len(closes) < period+1 {
		return Value{}
	}

	var gain, loss float64
	for i := len(closes) - period; i < len(closes); i++ {
		diff := closes[i] - closes[i-1]
		if diff >= 0 {
			gain += diff
		} else {
			loss -= diff
		}
	}
	avgGain := gain / float64(period)
	avgLoss := loss / float64(period)
	if avgLoss == 0 {
		return valid(100)
	}
	rs := avgGain / avgLoss
	return valid(100 - 100/(1+rs))
}
