package indicators

// PriceWindow is a fixed-capacity ring buffer of observed prices. It is
// owned by whoever constructs it and passed into feature computation
// explicitly, so multiple symbols or instances never share history and
// tests can inject deterministic sequences.
type PriceWindow struct {
	buf  []float64
	head int
	size int
}

func NewPriceWindow(capacity int) *PriceWindow {
	if capacity <= 0 {
		capacity = 500
	}
	return &PriceWindow{buf: make([]float64, capacity)}
}

// Push appends a price, evicting the oldest when full.
func (w *PriceWindow) Push(p float64) {
	w.buf[w.head] = p
	w.head = (w.head + 1) % len(w.buf)
	if w.size < len(w.buf) {
		w.size++
	}
}

func (w *PriceWindow) Len() int { return w.size }

func (w *PriceWindow) Cap() int { return len(w.buf) }

// At returns the i-th most recent price: At(0) is the newest.
func (w *PriceWindow) At(i int) float64 {
	idx := (w.head - 1 - i + 2*len(w.buf)) % len(w.buf)
	return w.buf[idx]
}

// Tail returns up to n prices in chronological order, oldest first.
func (w *PriceWindow) Tail(n int) []float64 {
	if n > w.size {
		n = w.size
	}
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		out[n-1-i] = w.At(i)
	}
	return out
}
