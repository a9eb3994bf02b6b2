package core

// Side marks which side of the book a print consumed liquidity from.
type Side uint8

const (
	SideBuy Side = iota
	SideSell
)

func (s Side) String() string {
	switch s {
	case SideBuy:
		return "BUY"
	case SideSell:
		return "SELL"
	default:
		return "UNKNOWN"
	}
}

const (
	tapeCap   = 96
	printLife = 1.6 // seconds a print stays on the tape
)

// Print is one executed trade on the tape. Life counts down; an expired
// print is dropped.
type Print struct {
	Bin  int
	Qty  float64
	Side Side
	Life float64
}

// TradeTape is the bounded sequence of recent prints, oldest dropped first.
type TradeTape struct {
	prints []Print
}

// Append records a print, evicting the oldest when the tape is full.
func (t *TradeTape) Append(p Print) {
	if len(t.prints) >= tapeCap {
		copy(t.prints, t.prints[1:])
		t.prints = t.prints[:len(t.prints)-1]
	}
	t.prints = append(t.prints, p)
}

// Decay ages every print and drops the expired ones in place.
func (t *TradeTape) Decay(dt float64) {
	keep := t.prints[:0]
	for _, p := range t.prints {
		p.Life -= dt
		if p.Life > 0 {
			keep = append(keep, p)
		}
	}
	t.prints = keep
}

// Prints returns a copy of the tape, oldest first.
func (t *TradeTape) Prints() []Print {
	out := make([]Print, len(t.prints))
	copy(out, t.prints)
	return out
}

// Len returns the number of live prints.
func (t *TradeTape) Len() int { return len(t.prints) }

// Reset clears the tape.
func (t *TradeTape) Reset() { t.prints = t.prints[:0] }

// PriceHistory is a bounded ring buffer of past price samples, used only for
// display and statistics.
type PriceHistory struct {
	buf   []float64
	size  int
	start int
	count int
}

// NewPriceHistory creates a history with the given capacity.
func NewPriceHistory(capacity int) *PriceHistory {
	if capacity <= 0 {
		capacity = 1
	}
	return &PriceHistory{
		buf:  make([]float64, capacity),
		size: capacity,
	}
}

// Append adds a sample, overwriting the oldest when full.
func (h *PriceHistory) Append(p float64) {
	if h.count < h.size {
		h.buf[(h.start+h.count)%h.size] = p
		h.count++
		return
	}
	h.buf[h.start] = p
	h.start = (h.start + 1) % h.size
}

// Last returns the last n samples in chronological order.
// Returns a copy (not internal references).
func (h *PriceHistory) Last(n int) []float64 {
	if n <= 0 || h.count == 0 {
		return nil
	}
	if n > h.count {
		n = h.count
	}
	out := make([]float64, n)
	first := (h.start + (h.count - n)) % h.size
	for i := 0; i < n; i++ {
		out[i] = h.buf[(first+i)%h.size]
	}
	return out
}

// Count returns the number of retained samples.
func (h *PriceHistory) Count() int { return h.count }

// Reset clears the history.
func (h *PriceHistory) Reset() {
	h.start = 0
	h.count = 0
}
