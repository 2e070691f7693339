package indicators

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSMA(t *testing.T) {
	t.Parallel()

	closes := []float64{1, 2, 3, 4, 5}

	v := SMA(closes, 3)
	assert.True(t, v.OK)
	assert.InDelta(t, 4, v.V, 1e-12)

	v = SMA(closes, 5)
	assert.True(t, v.OK)
	assert.InDelta(t, 3, v.V, 1e-12)

	assert.False(t, SMA(closes, 6).OK, "not enough closes")
	assert.False(t, SMA(nil, 3).OK)
	assert.False(t, SMA(closes, 0).OK)
}

func TestRSI(t *testing.T) {
	t.Parallel()

	// Monotone rise: no losses, RSI pegs at 100.
	up := []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15}
	v := RSI(up, 14)
	assert.True(t, v.OK)
	assert.InDelta(t, 100, v.V, 1e-12)

	// Monotone fall: no gains, RSI 0.
	down := make([]float64, 15)
	for i := range down {
		down[i] = float64(15 - i)
	}
	v = RSI(down, 14)
	assert.True(t, v.OK)
	assert.InDelta(t, 0, v.V, 1e-12)

	// Equal average gain and loss: RSI 50.
	alternating := []float64{10, 11, 10, 11, 10}
	v = RSI(alternating, 4)
	assert.True(t, v.OK)
	assert.InDelta(t, 50, v.V, 1e-9)

	assert.False(t, RSI(up, 15).OK, "needs period+1 closes")
	assert.False(t, RSI(nil, 14).OK)
}

func TestPriceWindowRing(t *testing.T) {
	t.Parallel()

	w := NewPriceWindow(3)
	assert.Equal(t, 0, w.Len())
	assert.Equal(t, 3, w.Cap())

	w.Push(1)
	w.Push(2)
	w.Push(3)
	assert.Equal(t, 3, w.Len())
	assert.InDelta(t, 3, w.At(0), 1e-12)
	assert.InDelta(t, 1, w.At(2), 1e-12)

	// Eviction: 1 drops out.
	w.Push(4)
	assert.Equal(t, 3, w.Len())
	assert.InDelta(t, 4, w.At(0), 1e-12)
	assert.InDelta(t, 2, w.At(2), 1e-12)

	assert.Equal(t, []float64{3, 4}, w.Tail(2))
	assert.Equal(t, []float64{2, 3, 4}, w.Tail(10), "tail clamps to size")
}

func TestTakerBias(t *testing.T) {
	t.Parallel()

	w := NewPriceWindow(50)
	for _, p := range []float64{1, 2, 3, 4, 5} {
		w.Push(p)
	}
	v := takerBias(w, 20)
	assert.True(t, v.OK)
	assert.InDelta(t, 1, v.V, 1e-12, "all upticks")

	w2 := NewPriceWindow(50)
	w2.Push(5)
	v = takerBias(w2, 20)
	assert.True(t, v.OK)
	assert.InDelta(t, 0, v.V, 1e-12, "single observation has no ticks")
}

func TestMomentum(t *testing.T) {
	t.Parallel()

	w := NewPriceWindow(50)
	for _, p := range []float64{1, 1.5, 2, 2.5, 3, 3.5, 4} {
		w.Push(p)
	}
	assert.InDelta(t, 0.5, momentum(w, 1).V, 1e-12)
	assert.InDelta(t, 2.5, momentum(w, 5).V, 1e-12)

	short := NewPriceWindow(50)
	short.Push(1)
	assert.InDelta(t, 0, momentum(short, 5).V, 1e-12)
}
